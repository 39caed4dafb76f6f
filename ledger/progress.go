package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
)

// GetMessageCount returns the user's message counter, 0 when no row exists
func (s *Store) GetMessageCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT message_count FROM progress WHERE user_id = ?`, userID).Scan(&count)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStorage, "failed to read message count")
	}
	return count, nil
}

// IncrementMessageCount adds one to the counter and returns the new count
func (s *Store) IncrementMessageCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO progress (user_id, message_count) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET message_count = message_count + 1
		RETURNING message_count`,
		userID).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStorage, "failed to increment message count")
	}
	return count, nil
}

// ResetMessageCount sets the counter to zero
func (s *Store) ResetMessageCount(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (user_id, message_count) VALUES (?, 0)
		ON CONFLICT(user_id) DO UPDATE SET message_count = 0`,
		userID)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to reset message count")
	}
	return nil
}

// AllMessageCounts returns every progress row, descending by count
func (s *Store) AllMessageCounts(ctx context.Context) ([]ProgressEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, message_count FROM progress ORDER BY message_count DESC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to list message counts")
	}
	defer rows.Close()

	var entries []ProgressEntry
	for rows.Next() {
		var e ProgressEntry
		if err := rows.Scan(&e.UserID, &e.MessageCount); err != nil {
			return nil, errors.Wrap(err, errors.ErrStorage, "failed to scan progress row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to list message counts")
	}
	return entries, nil
}

// IncrementAndConvert increments the counter and, when it reaches the
// threshold, credits one point and zeroes the counter, all in one
// transaction. It returns the counter after the call, whether a conversion
// happened, and the point total after any credit.
//
// The counter is always compared against the threshold passed in; a
// threshold change between deployments never rescales stored counters.
func (s *Store) IncrementAndConvert(ctx context.Context, userID int64, threshold int) (count int, converted bool, totalPoints int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, 0, errors.Wrap(err, errors.ErrStorage, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO progress (user_id, message_count) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET message_count = message_count + 1
		RETURNING message_count`,
		userID).Scan(&count)
	if err != nil {
		return 0, false, 0, errors.Wrap(err, errors.ErrStorage, "failed to increment message count")
	}

	if count < threshold {
		if err := tx.Commit(); err != nil {
			return 0, false, 0, errors.Wrap(err, errors.ErrStorage, "failed to commit")
		}
		return count, false, 0, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE progress SET message_count = 0 WHERE user_id = ?`, userID); err != nil {
		return 0, false, 0, errors.Wrap(err, errors.ErrStorage, "failed to reset message count")
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO balances (user_id, points) VALUES (?, 1)
		ON CONFLICT(user_id) DO UPDATE SET points = points + 1
		RETURNING points`,
		userID).Scan(&totalPoints)
	if err != nil {
		return 0, false, 0, errors.Wrap(err, errors.ErrStorage, "failed to credit point")
	}

	if err := tx.Commit(); err != nil {
		return 0, false, 0, errors.Wrap(err, errors.ErrStorage, "failed to commit")
	}

	s.logger.Info().
		Int64("user_id", userID).
		Int("threshold", threshold).
		Int("total_points", totalPoints).
		Msg("Converted message progress into a point")

	return 0, true, totalPoints, nil
}
