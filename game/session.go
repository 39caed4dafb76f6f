package game

import (
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes the two session variants
type Kind int

const (
	// KindGame is the point-costing trick-or-treat game
	KindGame Kind = iota
	// KindFreeplay is the one-time free game behind the claim gate
	KindFreeplay
)

// Outcome is the terminal result of a played session
type Outcome int

const (
	// OutcomeTrick means the point was spent and no reward granted
	OutcomeTrick Outcome = iota
	// OutcomeTreat means a reward label was drawn from the weighted table
	OutcomeTreat
	// OutcomeForced means the guaranteed reward was granted, bypassing the draw
	OutcomeForced
	// OutcomeFreeplay means the one-time freeplay reward was drawn
	OutcomeFreeplay
)

// Session is the ephemeral presentation of one game choice to one user.
// It lives in memory only; sessions that see no interaction within the
// configured timeout are discarded.
type Session struct {
	ID           string
	Kind         Kind
	TargetUserID int64
	AdminID      int64
	Forced       bool
	CreatedAt    time.Time

	// played marks the single allowed transition out of Presented.
	// busy guards the window while a play is in flight, so we never hold the
	// manager lock across a storage call.
	played bool
	busy   bool
}

// newSession creates a Presented session addressed to target
func newSession(kind Kind, target, admin int64, forced bool) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Kind:         kind,
		TargetUserID: target,
		AdminID:      admin,
		Forced:       forced,
		CreatedAt:    time.Now(),
	}
}

// Result is what a successful play produced
type Result struct {
	Outcome     Outcome
	Label       string
	Remaining   int
	TotalPoints int
}
