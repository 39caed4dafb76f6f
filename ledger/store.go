package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/db/sqlite"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
)

// Entry is one row of the balances table
type Entry struct {
	UserID int64 `json:"userId"`
	Points int   `json:"points"`
}

// ProgressEntry is one row of the progress table
type ProgressEntry struct {
	UserID       int64 `json:"userId"`
	MessageCount int   `json:"messageCount"`
}

// Store persists per-user points, freeplay claims and message progress in
// the embedded sqlite database. Every read-modify-write runs as a single
// statement or transaction, so concurrent interactions for the same user
// cannot lose updates.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore creates a ledger store over the sqlite client
func NewStore(client *sqlite.Client, logger zerolog.Logger) *Store {
	return &Store{
		db:     client.DB(),
		logger: logger.With().Str("component", "ledger").Logger(),
	}
}

// GetPoints returns the user's balance, 0 when no row exists
func (s *Store) GetPoints(ctx context.Context, userID int64) (int, error) {
	var points int
	err := s.db.QueryRowContext(ctx,
		`SELECT points FROM balances WHERE user_id = ?`, userID).Scan(&points)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStorage, "failed to read points")
	}
	return points, nil
}

// SetPoints upserts the user's balance to an exact value
func (s *Store) SetPoints(ctx context.Context, userID int64, points int) error {
	if points < 0 {
		points = 0
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (user_id, points) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET points = excluded.points`,
		userID, points)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to set points")
	}
	return nil
}

// AddPoints credits the user's balance in a single upsert
func (s *Store) AddPoints(ctx context.Context, userID int64, amount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (user_id, points) VALUES (?, MAX(0, ?))
		ON CONFLICT(user_id) DO UPDATE SET points = MAX(0, points + excluded.points)`,
		userID, amount)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to add points")
	}
	return nil
}

// RemovePoints debits the user's balance, clamping at zero
func (s *Store) RemovePoints(ctx context.Context, userID int64, amount int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO balances (user_id, points) VALUES (?, 0)
		ON CONFLICT(user_id) DO UPDATE SET points = MAX(0, points - ?)`,
		userID, amount)
	if err != nil {
		return errors.Wrap(err, errors.ErrStorage, "failed to remove points")
	}
	return nil
}

// ResetPoints sets the user's balance to zero
func (s *Store) ResetPoints(ctx context.Context, userID int64) error {
	return s.SetPoints(ctx, userID, 0)
}

// DeductPoints atomically debits cost from the balance, failing with
// ErrInsufficientBalance when the balance is short. Returns the remaining
// balance on success. This is the conditional deduct the game play path
// relies on: the check and the write are one statement.
func (s *Store) DeductPoints(ctx context.Context, userID int64, cost int) (int, error) {
	var remaining int
	err := s.db.QueryRowContext(ctx, `
		UPDATE balances SET points = points - ?
		WHERE user_id = ? AND points >= ?
		RETURNING points`,
		cost, userID, cost).Scan(&remaining)
	if stderrors.Is(err, sql.ErrNoRows) {
		return 0, errors.New(errors.ErrInsufficientBalance, "You don't have enough points!")
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrStorage, "failed to deduct points")
	}
	return remaining, nil
}

// AllPoints returns every balance row, descending by points
func (s *Store) AllPoints(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, points FROM balances ORDER BY points DESC`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to list points")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.Points); err != nil {
			return nil, errors.Wrap(err, errors.ErrStorage, "failed to scan points row")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrStorage, "failed to list points")
	}
	return entries, nil
}
