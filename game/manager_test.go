package game

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/claim"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/config"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/db/sqlite"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/reward"
)

func newTestManager(t *testing.T, mutate func(cfg *config.Config)) (*Manager, *ledger.Store) {
	t.Helper()

	client, err := sqlite.NewInMemory()
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store := ledger.NewStore(client, zerolog.Nop())
	gate := claim.NewGate(store, zerolog.Nop())

	cfg := &config.Config{
		Game: config.GameConfig{
			Cost:        1,
			TreatChance: 0.49,
			ForcedLabel: "Secret Dragon Canneiloni (sab)",
			Rewards:     reward.DefaultGameTable(),
		},
		Freeplay: config.FreeplayConfig{
			Rewards: reward.DefaultFreeplayTable(),
		},
		Session: config.SessionConfig{
			Timeout:       time.Minute,
			SweepInterval: 10 * time.Millisecond,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}

	m := NewManager(store, gate, reward.NewSelector(), cfg, zerolog.Nop())
	t.Cleanup(m.Close)
	return m, store
}

func TestPlayGameDeductsAndSealsSession(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	if err := store.SetPoints(ctx, 1, 5); err != nil {
		t.Fatalf("SetPoints failed: %v", err)
	}

	s := m.Present(KindGame, 1, 99, false)
	res, err := m.Play(ctx, s.ID, 1)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if res.Outcome != OutcomeTrick && res.Outcome != OutcomeTreat {
		t.Errorf("expected trick or treat, got %v", res.Outcome)
	}
	if res.Remaining != 4 {
		t.Errorf("expected 4 remaining, got %d", res.Remaining)
	}
	if res.Outcome == OutcomeTreat && res.Label == "" {
		t.Error("treat without a reward label")
	}

	// The session transitions at most once.
	_, err = m.Play(ctx, s.ID, 1)
	if errors.GetCode(err) != errors.ErrSessionPlayed {
		t.Fatalf("expected ErrSessionPlayed on second play, got %v", err)
	}

	points, _ := store.GetPoints(ctx, 1)
	if points != 4 {
		t.Errorf("expected exactly one deduction, balance 4, got %d", points)
	}
}

func TestPlayInsufficientBalanceLeavesSessionOpen(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	s := m.Present(KindGame, 1, 99, false)

	_, err := m.Play(ctx, s.ID, 1)
	if errors.GetCode(err) != errors.ErrInsufficientBalance {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// The rejected attempt must not consume the session.
	if err := store.AddPoints(ctx, 1, 1); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}
	res, err := m.Play(ctx, s.ID, 1)
	if err != nil {
		t.Fatalf("Play after topping up failed: %v", err)
	}
	if res.Remaining != 0 {
		t.Errorf("expected 0 remaining, got %d", res.Remaining)
	}
}

func TestPlayWrongUser(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	if err := store.SetPoints(ctx, 1, 1); err != nil {
		t.Fatalf("SetPoints failed: %v", err)
	}

	s := m.Present(KindGame, 1, 99, false)
	_, err := m.Play(ctx, s.ID, 2)
	if errors.GetCode(err) != errors.ErrSessionNotYours {
		t.Fatalf("expected ErrSessionNotYours, got %v", err)
	}

	// Addressed user can still play.
	if _, err := m.Play(ctx, s.ID, 1); err != nil {
		t.Fatalf("Play by addressed user failed: %v", err)
	}
}

func TestPlayForcedReward(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	if err := store.SetPoints(ctx, 1, 1); err != nil {
		t.Fatalf("SetPoints failed: %v", err)
	}

	s := m.Present(KindGame, 1, 99, true)
	res, err := m.Play(ctx, s.ID, 1)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if res.Outcome != OutcomeForced {
		t.Errorf("expected forced outcome, got %v", res.Outcome)
	}
	if res.Label != "Secret Dragon Canneiloni (sab)" {
		t.Errorf("unexpected forced label %q", res.Label)
	}

	// The forced session still costs a point.
	points, _ := store.GetPoints(ctx, 1)
	if points != 0 {
		t.Errorf("expected balance 0 after forced play, got %d", points)
	}
}

func TestPlayTreatChanceExtremes(t *testing.T) {
	ctx := context.Background()

	t.Run("chance zero always tricks", func(t *testing.T) {
		m, store := newTestManager(t, func(cfg *config.Config) {
			cfg.Game.TreatChance = 0
		})
		if err := store.SetPoints(ctx, 1, 10); err != nil {
			t.Fatalf("SetPoints failed: %v", err)
		}
		for i := 0; i < 10; i++ {
			s := m.Present(KindGame, 1, 99, false)
			res, err := m.Play(ctx, s.ID, 1)
			if err != nil {
				t.Fatalf("Play failed: %v", err)
			}
			if res.Outcome != OutcomeTrick {
				t.Fatalf("expected trick, got %v", res.Outcome)
			}
		}
	})

	t.Run("chance one always treats", func(t *testing.T) {
		m, store := newTestManager(t, func(cfg *config.Config) {
			cfg.Game.TreatChance = 1
		})
		if err := store.SetPoints(ctx, 1, 10); err != nil {
			t.Fatalf("SetPoints failed: %v", err)
		}
		for i := 0; i < 10; i++ {
			s := m.Present(KindGame, 1, 99, false)
			res, err := m.Play(ctx, s.ID, 1)
			if err != nil {
				t.Fatalf("Play failed: %v", err)
			}
			if res.Outcome != OutcomeTreat {
				t.Fatalf("expected treat, got %v", res.Outcome)
			}
			if res.Label == "" {
				t.Fatal("treat without a reward label")
			}
		}
	})
}

func TestSessionExpiry(t *testing.T) {
	m, store := newTestManager(t, func(cfg *config.Config) {
		cfg.Session.Timeout = 20 * time.Millisecond
	})
	ctx := context.Background()

	if err := store.SetPoints(ctx, 1, 1); err != nil {
		t.Fatalf("SetPoints failed: %v", err)
	}

	s := m.Present(KindGame, 1, 99, false)
	time.Sleep(50 * time.Millisecond)

	_, err := m.Play(ctx, s.ID, 1)
	if errors.GetCode(err) != errors.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	// No point was spent on the expired session.
	points, _ := store.GetPoints(ctx, 1)
	if points != 1 {
		t.Errorf("expected balance untouched at 1, got %d", points)
	}
}

func TestSweepDiscardsExpiredSessions(t *testing.T) {
	m, _ := newTestManager(t, func(cfg *config.Config) {
		cfg.Session.Timeout = 20 * time.Millisecond
	})

	m.Present(KindGame, 1, 99, false)
	m.Present(KindGame, 2, 99, false)
	if m.Len() != 2 {
		t.Fatalf("expected 2 live sessions, got %d", m.Len())
	}

	deadline := time.Now().Add(time.Second)
	for m.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if m.Len() != 0 {
		t.Errorf("expected janitor to discard expired sessions, %d left", m.Len())
	}
}

func TestFreeplayPlayedOnce(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	s := m.Present(KindFreeplay, 1, 99, false)
	res, err := m.Play(ctx, s.ID, 1)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if res.Outcome != OutcomeFreeplay {
		t.Errorf("expected freeplay outcome, got %v", res.Outcome)
	}
	if res.Label == "" {
		t.Error("freeplay without a reward label")
	}

	// Freeplay never touches the balance.
	points, _ := store.GetPoints(ctx, 1)
	if points != 0 {
		t.Errorf("expected balance 0, got %d", points)
	}

	// A second freeplay session for the same user hits the claim gate.
	s2 := m.Present(KindFreeplay, 1, 99, false)
	_, err = m.Play(ctx, s2.ID, 1)
	if errors.GetCode(err) != errors.ErrAlreadyClaimed {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}

	// After an admin reset the same session is playable again.
	if err := store.ResetFreeplay(ctx, 1); err != nil {
		t.Fatalf("ResetFreeplay failed: %v", err)
	}
	if _, err := m.Play(ctx, s2.ID, 1); err != nil {
		t.Fatalf("Play after reset failed: %v", err)
	}
}

func TestCancel(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	if err := store.SetPoints(ctx, 1, 1); err != nil {
		t.Fatalf("SetPoints failed: %v", err)
	}

	s := m.Present(KindGame, 1, 99, false)

	if err := m.Cancel(s.ID, 2); errors.GetCode(err) != errors.ErrSessionNotYours {
		t.Fatalf("expected ErrSessionNotYours cancelling as another user, got %v", err)
	}

	if err := m.Cancel(s.ID, 1); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	// A cancelled session is gone.
	if _, err := m.Play(ctx, s.ID, 1); errors.GetCode(err) != errors.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired after cancel, got %v", err)
	}
	points, _ := store.GetPoints(ctx, 1)
	if points != 1 {
		t.Errorf("expected balance untouched at 1, got %d", points)
	}
}

func TestCancelPlayedSession(t *testing.T) {
	m, store := newTestManager(t, nil)
	ctx := context.Background()

	if err := store.SetPoints(ctx, 1, 1); err != nil {
		t.Fatalf("SetPoints failed: %v", err)
	}

	s := m.Present(KindGame, 1, 99, false)
	if _, err := m.Play(ctx, s.ID, 1); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := m.Cancel(s.ID, 1); errors.GetCode(err) != errors.ErrSessionPlayed {
		t.Fatalf("expected ErrSessionPlayed cancelling a played session, got %v", err)
	}
}
