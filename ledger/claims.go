package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
)

// HasClaimedFreeplay reports whether the user has claimed their freeplay.
// Absence of a row means not claimed.
func (s *Store) HasClaimedFreeplay(ctx context.Context, userID int64) (bool, error) {
	var claimed int
	err := s.db.QueryRowContext(ctx,
		`SELECT claimed FROM claims WHERE user_id = ?`, userID).Scan(&claimed)
	if stderrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, errors.ErrStorage, "failed to read freeplay claim")
	}
	return claimed == 1, nil
}

// MarkFreeplayClaimed records the claim. Idempotent upsert.
func (s *Store) MarkFreeplayClaimed(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (user_id, claimed) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET claimed = 1`,
		userID)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to mark freeplay claimed")
	}
	return nil
}

// TryClaimFreeplay atomically claims the freeplay if it has not been claimed
// yet. The check and the set are one statement, so of two racing claims
// exactly one succeeds; the loser gets ErrAlreadyClaimed.
func (s *Store) TryClaimFreeplay(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO claims (user_id, claimed) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET claimed = 1 WHERE claims.claimed = 0`,
		userID)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to claim freeplay")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to claim freeplay")
	}
	if affected == 0 {
		return errors.New(errors.ErrAlreadyClaimed, "You have already claimed your freeplay! You can only claim it once.")
	}
	return nil
}

// ResetFreeplay deletes the claim row, re-opening eligibility
func (s *Store) ResetFreeplay(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM claims WHERE user_id = ?`, userID)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to reset freeplay")
	}
	return nil
}

// ResetAllFreeplays deletes every claim row
func (s *Store) ResetAllFreeplays(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM claims`)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to reset freeplays")
	}
	return nil
}
