package reward

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
)

// Option is one entry of a draw table. Weight is a relative likelihood,
// weights need not sum to 100.
type Option struct {
	Label  string  `mapstructure:"label" json:"label"`
	Weight float64 `mapstructure:"weight" json:"weight"`
}

// DisplayOption is one entry of the table shown to players. Shown is a
// presentation string ("35%") and is independent of the actual draw weights.
type DisplayOption struct {
	Label string `mapstructure:"label" json:"label"`
	Shown string `mapstructure:"shown" json:"shown"`
}

// Table is an ordered weighted draw table
type Table []Option

// Validate checks that the table is drawable: non-empty with positive weights.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New(errors.ErrConfig, "reward table is empty")
	}
	for _, opt := range t {
		if opt.Label == "" {
			return errors.New(errors.ErrConfig, "reward table has an option without a label")
		}
		if opt.Weight <= 0 {
			return errors.NewWithDebug(errors.ErrConfig, "reward table has a non-positive weight", opt.Label)
		}
	}
	return nil
}

// total returns the sum of all weights
func (t Table) total() float64 {
	var sum float64
	for _, opt := range t {
		sum += opt.Weight
	}
	return sum
}

// Selector draws labels from weighted tables. Safe for concurrent use;
// interactions for different users arrive on separate goroutines.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector with a time-seeded source
func NewSelector() *Selector {
	return &Selector{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSelectorWithSource creates a selector with the given source, for tests
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{
		rng: rand.New(src),
	}
}

// Draw returns one label from the table, with probability proportional to
// its weight. The table must have been validated at construction time.
func (s *Selector) Draw(table Table) (string, error) {
	if err := table.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	roll := s.rng.Float64() * table.total()
	s.mu.Unlock()

	for _, opt := range table {
		roll -= opt.Weight
		if roll < 0 {
			return opt.Label, nil
		}
	}
	// Float accumulation can land exactly on the total; the last option wins.
	return table[len(table)-1].Label, nil
}

// Flip returns true with probability p
func (s *Selector) Flip(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}
