// Package cli provides the command-line interface for the disclosure bot.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"idx-disclosure-bot/internal/config"
	"idx-disclosure-bot/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-11-01"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  *store.SQLiteStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "idxbot",
		Short: "IDX disclosure bot - Telegram notifications for IDX announcements",
		Long: `idxbot polls the Indonesia Stock Exchange announcement feed, stores
new disclosures in SQLite and fans them out to Telegram subscribers.

Run 'idxbot run' to start the daemon. The 'latest' and 'stats' commands
inspect the local database without touching Telegram.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}

			dataStore, err := store.NewSQLiteStore(cfg.Database.Path)
			if err != nil {
				return err
			}
			app.Store = dataStore
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				_ = app.Store.Close()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/idx-disclosure-bot)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newLatestCmd(app))
	rootCmd.AddCommand(newStatsCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
				return
			}
			output.Println("idxbot", Version, "("+BuildDate+")")
		},
	}
}
