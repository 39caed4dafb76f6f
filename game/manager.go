package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/claim"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/config"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/reward"
)

// Manager owns the ephemeral game sessions and runs the play state machine.
// Sessions transition Presented -> Played | Cancelled, or expire after the
// configured timeout with no interaction. Each session transitions at most
// once, and only the addressed user may transition it.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	store    *ledger.Store
	gate     *claim.Gate
	selector *reward.Selector
	game     config.GameConfig
	freeplay config.FreeplayConfig
	timeout  time.Duration

	ticker   *time.Ticker
	stopChan chan struct{}
	logger   zerolog.Logger
}

// NewManager creates a session manager and starts its expiry janitor
func NewManager(store *ledger.Store, gate *claim.Gate, selector *reward.Selector, cfg *config.Config, logger zerolog.Logger) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		gate:     gate,
		selector: selector,
		game:     cfg.Game,
		freeplay: cfg.Freeplay,
		timeout:  cfg.Session.Timeout,
		stopChan: make(chan struct{}),
		logger:   logger.With().Str("component", "game").Logger(),
	}
	m.start(cfg.Session.SweepInterval)
	return m
}

// start launches the expiry sweep loop
func (m *Manager) start(interval time.Duration) {
	m.ticker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-m.ticker.C:
				m.sweep()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Close stops the janitor
func (m *Manager) Close() {
	m.ticker.Stop()
	close(m.stopChan)
}

// sweep discards sessions past their lifetime
func (m *Manager) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := lo.PickBy(m.sessions, func(_ string, s *Session) bool {
		return time.Since(s.CreatedAt) > m.timeout
	})
	for id := range expired {
		delete(m.sessions, id)
	}
	if len(expired) > 0 {
		m.logger.Debug().Int("count", len(expired)).Msg("Discarded expired sessions")
	}
}

// Present creates a new session addressed to target and registers it
func (m *Manager) Present(kind Kind, target, admin int64, forced bool) *Session {
	s := newSession(kind, target, admin, forced)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info().
		Str("session_id", s.ID).
		Int64("target", target).
		Int64("admin", admin).
		Bool("forced", forced).
		Msg("Session presented")
	return s
}

// checkout validates the transition guards and reserves the session for the
// caller. The manager lock is never held across storage I/O; the busy flag
// covers the in-flight window instead.
func (m *Manager) checkout(id string, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrSessionExpired, "This game has expired.")
	}
	if time.Since(s.CreatedAt) > m.timeout {
		delete(m.sessions, id)
		return nil, errors.New(errors.ErrSessionExpired, "This game has expired.")
	}
	if s.TargetUserID != userID {
		return nil, errors.New(errors.ErrSessionNotYours, "This isn't for you!")
	}
	if s.played || s.busy {
		return nil, errors.New(errors.ErrSessionPlayed, "You already played!")
	}
	s.busy = true
	return s, nil
}

// release returns the session to the Presented state after a rejected play,
// or seals it after a successful one.
func (m *Manager) release(s *Session, played bool) {
	m.mu.Lock()
	s.busy = false
	s.played = played
	m.mu.Unlock()
}

// Play runs the session to its terminal state for userID.
//
// For the point-costing game the balance deduction happens before the played
// flag is set: a rejected attempt (insufficient balance) leaves the session
// consumable again. The deduction itself is one conditional storage update,
// so the sufficiency check and the debit cannot race.
func (m *Manager) Play(ctx context.Context, id string, userID int64) (*Result, error) {
	s, err := m.checkout(id, userID)
	if err != nil {
		return nil, err
	}

	var res *Result
	switch s.Kind {
	case KindFreeplay:
		res, err = m.playFreeplay(ctx, s)
	default:
		res, err = m.playGame(ctx, s)
	}

	if err != nil {
		m.release(s, false)
		return nil, err
	}
	m.release(s, true)
	return res, nil
}

// playGame deducts the cost and resolves trick, treat, or the forced reward
func (m *Manager) playGame(ctx context.Context, s *Session) (*Result, error) {
	remaining, err := m.store.DeductPoints(ctx, s.TargetUserID, m.game.Cost)
	if err != nil {
		return nil, err
	}

	log := m.logger.With().
		Str("session_id", s.ID).
		Int64("user_id", s.TargetUserID).
		Int64("admin", s.AdminID).
		Logger()

	if s.Forced {
		log.Info().Str("reward", m.game.ForcedLabel).Msg("Forced reward granted")
		return &Result{Outcome: OutcomeForced, Label: m.game.ForcedLabel, Remaining: remaining}, nil
	}

	if !m.selector.Flip(m.game.TreatChance) {
		log.Info().Msg("Trick")
		return &Result{Outcome: OutcomeTrick, Remaining: remaining}, nil
	}

	label, err := m.selector.Draw(m.game.Rewards)
	if err != nil {
		return nil, err
	}
	log.Info().Str("reward", label).Msg("Treat")
	return &Result{Outcome: OutcomeTreat, Label: label, Remaining: remaining}, nil
}

// playFreeplay claims the one-time freeplay and draws its reward
func (m *Manager) playFreeplay(ctx context.Context, s *Session) (*Result, error) {
	if err := m.gate.TryClaim(ctx, s.TargetUserID); err != nil {
		return nil, err
	}

	label, err := m.selector.Draw(m.freeplay.Rewards)
	if err != nil {
		return nil, err
	}
	m.logger.Info().
		Str("session_id", s.ID).
		Int64("user_id", s.TargetUserID).
		Str("reward", label).
		Msg("Freeplay played")
	return &Result{Outcome: OutcomeFreeplay, Label: label}, nil
}

// Cancel ends the session with no state change. Only the addressed user may
// cancel, and a played session stays played.
func (m *Manager) Cancel(id string, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return errors.New(errors.ErrSessionExpired, "This game has expired.")
	}
	if s.TargetUserID != userID {
		return errors.New(errors.ErrSessionNotYours, "This isn't for you!")
	}
	if s.played || s.busy {
		return errors.New(errors.ErrSessionPlayed, "You already played!")
	}
	delete(m.sessions, id)
	return nil
}

// Get returns a live session by id
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || time.Since(s.CreatedAt) > m.timeout {
		return nil, false
	}
	return s, true
}

// Len reports the number of live sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
