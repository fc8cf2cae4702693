package bot

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"idx-disclosure-bot/internal/models"
	"idx-disclosure-bot/internal/store"
	"idx-disclosure-bot/internal/telegram"
)

type replyRecorder struct {
	replies map[int64][]string
}

func (r *replyRecorder) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error) {
	return nil, nil
}

func (r *replyRecorder) SendMessage(ctx context.Context, chatID int64, text string) error {
	if r.replies == nil {
		r.replies = map[int64][]string{}
	}
	r.replies[chatID] = append(r.replies[chatID], text)
	return nil
}

func newTestBot(t *testing.T) (*Bot, *store.SQLiteStore, *replyRecorder) {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "bot_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	client := &replyRecorder{}
	return New(client, s, zerolog.Nop(), 10*time.Minute), s, client
}

func message(chatID int64, text string) *telegram.Message {
	msg := &telegram.Message{Text: text}
	msg.Chat.ID = chatID
	msg.From.Username = "alice"
	return msg
}

func TestStartCommandSubscribes(t *testing.T) {
	ctx := context.Background()
	b, s, client := newTestBot(t)

	b.handleMessage(ctx, message(42, "/start"))

	subscribed, err := s.IsSubscribed(ctx, 42)
	if err != nil {
		t.Fatalf("IsSubscribed failed: %v", err)
	}
	if !subscribed {
		t.Error("chat should be subscribed after /start")
	}
	if len(client.replies[42]) != 1 || !strings.Contains(client.replies[42][0], "/latest") {
		t.Errorf("welcome message missing or wrong: %v", client.replies[42])
	}
}

func TestStopCommandUnsubscribes(t *testing.T) {
	ctx := context.Background()
	b, s, client := newTestBot(t)

	b.handleMessage(ctx, message(42, "/start"))
	b.handleMessage(ctx, message(42, "/stop"))

	subscribed, err := s.IsSubscribed(ctx, 42)
	if err != nil {
		t.Fatalf("IsSubscribed failed: %v", err)
	}
	if subscribed {
		t.Error("chat should be unsubscribed after /stop")
	}
	if len(client.replies[42]) != 2 {
		t.Fatalf("got %d replies, want 2", len(client.replies[42]))
	}
}

func TestCommandWithBotMention(t *testing.T) {
	ctx := context.Background()
	b, s, _ := newTestBot(t)

	b.handleMessage(ctx, message(42, "/start@idx_disclosure_bot"))

	subscribed, err := s.IsSubscribed(ctx, 42)
	if err != nil {
		t.Fatalf("IsSubscribed failed: %v", err)
	}
	if !subscribed {
		t.Error("mention-suffixed command should still subscribe")
	}
}

func TestUnknownCommandIgnored(t *testing.T) {
	ctx := context.Background()
	b, _, client := newTestBot(t)

	b.handleMessage(ctx, message(42, "hello there"))
	b.handleMessage(ctx, message(42, "/unknown"))

	if len(client.replies) != 0 {
		t.Errorf("unknown input should not get a reply, got %v", client.replies)
	}
}

func TestLatestCommandEmpty(t *testing.T) {
	ctx := context.Background()
	b, _, client := newTestBot(t)

	b.handleMessage(ctx, message(42, "/latest"))

	replies := client.replies[42]
	if len(replies) != 1 || !strings.Contains(replies[0], "Belum ada") {
		t.Errorf("empty database should get the no-data reply, got %v", replies)
	}
}

func TestLatestCommandListsDisclosures(t *testing.T) {
	ctx := context.Background()
	b, s, client := newTestBot(t)

	for i, id := range []string{"BBCA_1", "BBCA_2", "BBCA_3"} {
		d := &models.Disclosure{
			ID:        id,
			StockCode: "BBCA",
			Title:     "Pengumuman " + id,
			Date:      "2025-10-30 16:00:00",
			EventTime: time.Date(2025, 10, 30, 16, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Minute),
			Category:  models.CategoryOther,
			FetchedAt: time.Now(),
		}
		if _, err := s.InsertIfNew(ctx, d); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	b.handleMessage(ctx, message(42, "/latest"))

	replies := client.replies[42]
	if len(replies) != 3 {
		t.Fatalf("got %d replies, want one per disclosure", len(replies))
	}
	// Newest first.
	if !strings.Contains(replies[0], "BBCA_3") {
		t.Errorf("first reply should be the newest disclosure: %q", replies[0])
	}
}

func TestStatsCommand(t *testing.T) {
	ctx := context.Background()
	b, _, client := newTestBot(t)

	b.handleMessage(ctx, message(42, "/start"))
	b.handleMessage(ctx, message(42, "/stats"))

	replies := client.replies[42]
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	stats := replies[1]
	if !strings.Contains(stats, "Statistik") || !strings.Contains(stats, "10 menit") {
		t.Errorf("stats reply missing fields: %q", stats)
	}
}
