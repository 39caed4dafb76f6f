package progress

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/config"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/db/sqlite"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
)

func newTestConverter(t *testing.T, cfg config.CounterConfig) (*Converter, *Notifier, *ledger.Store) {
	t.Helper()

	client, err := sqlite.NewInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store := ledger.NewStore(client, zerolog.Nop())
	notifier := NewNotifier(8)
	return NewConverter(store, notifier, cfg, zerolog.Nop()), notifier, store
}

func TestCounts(t *testing.T) {
	tests := []struct {
		name      string
		channels  []string
		channelID string
		want      bool
	}{
		{name: "empty allowlist counts everything", channels: nil, channelID: "123", want: true},
		{name: "listed channel counts", channels: []string{"123", "456"}, channelID: "123", want: true},
		{name: "unlisted channel does not", channels: []string{"123"}, channelID: "789", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newTestConverter(t, config.CounterConfig{
				Channels:         tt.channels,
				MessagesPerPoint: 500,
			})
			if got := c.Counts(tt.channelID); got != tt.want {
				t.Errorf("Counts(%q) = %v, want %v", tt.channelID, got, tt.want)
			}
		})
	}
}

func TestRecordBelowThreshold(t *testing.T) {
	c, _, store := newTestConverter(t, config.CounterConfig{MessagesPerPoint: 3})
	ctx := context.Background()

	award, err := c.Record(ctx, 1, "chan")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if award != nil {
		t.Errorf("unexpected award below threshold: %+v", award)
	}

	count, threshold, err := c.Progress(ctx, 1)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if count != 1 || threshold != 3 {
		t.Errorf("expected progress 1/3, got %d/%d", count, threshold)
	}

	points, _ := store.GetPoints(ctx, 1)
	if points != 0 {
		t.Errorf("expected no points below threshold, got %d", points)
	}
}

func TestRecordConvertsAtThreshold(t *testing.T) {
	c, notifier, store := newTestConverter(t, config.CounterConfig{MessagesPerPoint: 2})
	ctx := context.Background()

	awards, cancel := notifier.Listen(ctx)
	defer cancel()

	if _, err := c.Record(ctx, 1, "chan"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	award, err := c.Record(ctx, 1, "chan")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if award == nil {
		t.Fatal("expected an award at threshold")
	}
	if award.UserID != 1 || award.ChannelID != "chan" || award.TotalPoints != 1 || award.Threshold != 2 {
		t.Errorf("unexpected award: %+v", award)
	}

	// The point committed before the award was published.
	points, _ := store.GetPoints(ctx, 1)
	if points != 1 {
		t.Errorf("expected 1 point, got %d", points)
	}
	count, _, _ := c.Progress(ctx, 1)
	if count != 0 {
		t.Errorf("expected counter reset, got %d", count)
	}

	select {
	case got := <-awards:
		if got.UserID != 1 || got.TotalPoints != 1 {
			t.Errorf("unexpected published award: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no award published to the notifier")
	}
}

func TestNotifierDropsWhenFull(t *testing.T) {
	notifier := NewNotifier(1)

	// No listener: the second send must drop instead of blocking.
	done := make(chan struct{})
	go func() {
		notifier.Send(Award{UserID: 1})
		notifier.Send(Award{UserID: 2})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full buffer")
	}
}
