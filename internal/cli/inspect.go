package cli

import (
	"github.com/spf13/cobra"
)

func newLatestCmd(app *App) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent disclosures in the local database",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			disclosures, err := app.Store.LatestDisclosures(cmd.Context(), count)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(disclosures)
			}

			if len(disclosures) == 0 {
				output.Println("no disclosures recorded yet")
				return nil
			}
			for _, d := range disclosures {
				output.Print("%-8s %-19s %-20s %s\n", d.StockCode, d.Date, d.Category, d.Title)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of disclosures to show")
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()

			disclosures, err := app.Store.CountDisclosures(ctx)
			if err != nil {
				return err
			}
			subscribers, err := app.Store.CountActiveSubscribers(ctx)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"disclosures":        disclosures,
					"active_subscribers": subscribers,
					"poll_interval":      app.Config.Poll.Interval.String(),
				})
			}

			output.Print("disclosures:        %d\n", disclosures)
			output.Print("active subscribers: %d\n", subscribers)
			output.Print("poll interval:      %s\n", app.Config.Poll.Interval)
			return nil
		},
	}
}
