package claim

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
)

// Gate enforces the one-claim-per-user rule for the freeplay promotion.
// The claim itself is a single atomic storage operation; of two racing
// claims exactly one wins.
type Gate struct {
	store  *ledger.Store
	logger zerolog.Logger
}

// NewGate creates a claim gate over the ledger
func NewGate(store *ledger.Store, logger zerolog.Logger) *Gate {
	return &Gate{
		store:  store,
		logger: logger.With().Str("component", "claim_gate").Logger(),
	}
}

// HasClaimed reports whether the user already used their freeplay
func (g *Gate) HasClaimed(ctx context.Context, userID int64) (bool, error) {
	return g.store.HasClaimedFreeplay(ctx, userID)
}

// TryClaim claims the freeplay for the user. Returns ErrAlreadyClaimed when
// the user has claimed before.
func (g *Gate) TryClaim(ctx context.Context, userID int64) error {
	if err := g.store.TryClaimFreeplay(ctx, userID); err != nil {
		return err
	}
	g.logger.Info().Int64("user_id", userID).Msg("Freeplay claimed")
	return nil
}

// Reset re-opens eligibility for one user. Admin only.
func (g *Gate) Reset(ctx context.Context, userID int64) error {
	if err := g.store.ResetFreeplay(ctx, userID); err != nil {
		return err
	}
	g.logger.Info().Int64("user_id", userID).Msg("Freeplay claim reset")
	return nil
}

// ResetAll re-opens eligibility for everyone. Admin only.
func (g *Gate) ResetAll(ctx context.Context) error {
	if err := g.store.ResetAllFreeplays(ctx); err != nil {
		return err
	}
	g.logger.Info().Msg("All freeplay claims reset")
	return nil
}
