package progress

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/config"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
)

// Converter turns message activity into ledger points: each qualifying
// message increments the user's counter, and crossing the configured
// threshold credits one point and zeroes the counter.
type Converter struct {
	store    *ledger.Store
	notifier *Notifier
	cfg      config.CounterConfig
	channels map[string]struct{}
	logger   zerolog.Logger
}

// NewConverter creates a converter with the configured channel allowlist
// and threshold
func NewConverter(store *ledger.Store, notifier *Notifier, cfg config.CounterConfig, logger zerolog.Logger) *Converter {
	channels := make(map[string]struct{}, len(cfg.Channels))
	for _, id := range cfg.Channels {
		channels[id] = struct{}{}
	}
	return &Converter{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		channels: channels,
		logger:   logger.With().Str("component", "progress").Logger(),
	}
}

// Counts reports whether messages in the channel feed the counter. An empty
// allowlist counts every channel.
func (c *Converter) Counts(channelID string) bool {
	if len(c.channels) == 0 {
		return true
	}
	_, ok := c.channels[channelID]
	return ok
}

// Channels returns the configured allowlist
func (c *Converter) Channels() []string {
	return c.cfg.Channels
}

// Threshold returns the current messages-per-point threshold
func (c *Converter) Threshold() int {
	return c.cfg.MessagesPerPoint
}

// Record registers one qualifying message for the user. When the counter
// reaches the threshold the conversion commits first, then an Award is
// published for the front door to announce.
func (c *Converter) Record(ctx context.Context, userID int64, channelID string) (*Award, error) {
	count, converted, total, err := c.store.IncrementAndConvert(ctx, userID, c.cfg.MessagesPerPoint)
	if err != nil {
		return nil, err
	}
	if !converted {
		c.logger.Debug().Int64("user_id", userID).Int("count", count).Msg("Message counted")
		return nil, nil
	}

	award := Award{
		UserID:      userID,
		ChannelID:   channelID,
		TotalPoints: total,
		Threshold:   c.cfg.MessagesPerPoint,
		Timestamp:   time.Now(),
	}
	c.notifier.Send(award)
	return &award, nil
}

// Progress returns the user's counter and the current threshold
func (c *Converter) Progress(ctx context.Context, userID int64) (count, threshold int, err error) {
	count, err = c.store.GetMessageCount(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return count, c.cfg.MessagesPerPoint, nil
}
