package reward

import (
	"math"
	"math/rand"
	"testing"
)

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr bool
	}{
		{
			name:    "empty table",
			table:   Table{},
			wantErr: true,
		},
		{
			name:    "missing label",
			table:   Table{{Label: "", Weight: 10}},
			wantErr: true,
		},
		{
			name:    "zero weight",
			table:   Table{{Label: "Prize", Weight: 0}},
			wantErr: true,
		},
		{
			name:    "negative weight",
			table:   Table{{Label: "Prize", Weight: -1}},
			wantErr: true,
		},
		{
			name:    "valid table",
			table:   Table{{Label: "A", Weight: 60}, {Label: "B", Weight: 40}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultTablesValidate(t *testing.T) {
	if err := DefaultGameTable().Validate(); err != nil {
		t.Errorf("game table invalid: %v", err)
	}
	if err := DefaultFreeplayTable().Validate(); err != nil {
		t.Errorf("freeplay table invalid: %v", err)
	}
}

func TestDrawSingleOption(t *testing.T) {
	selector := NewSelectorWithSource(rand.NewSource(1))
	table := Table{{Label: "Only", Weight: 12.5}}

	for i := 0; i < 100; i++ {
		label, err := selector.Draw(table)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		if label != "Only" {
			t.Fatalf("expected 'Only', got %q", label)
		}
	}
}

func TestDrawRejectsInvalidTable(t *testing.T) {
	selector := NewSelectorWithSource(rand.NewSource(1))
	if _, err := selector.Draw(Table{}); err == nil {
		t.Error("expected error drawing from an empty table")
	}
}

func TestDrawDistribution(t *testing.T) {
	selector := NewSelectorWithSource(rand.NewSource(42))
	table := Table{
		{Label: "common", Weight: 60},
		{Label: "uncommon", Weight: 30},
		{Label: "rare", Weight: 10},
	}

	const draws = 100000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		label, err := selector.Draw(table)
		if err != nil {
			t.Fatalf("Draw failed: %v", err)
		}
		counts[label]++
	}

	expected := map[string]float64{"common": 60, "uncommon": 30, "rare": 10}
	for label, want := range expected {
		got := float64(counts[label]) / draws * 100
		if math.Abs(got-want) > 1.5 {
			t.Errorf("label %q drawn %.2f%% of the time, expected %.1f%% ± 1.5", label, got, want)
		}
	}
}

func TestFlipExtremes(t *testing.T) {
	selector := NewSelectorWithSource(rand.NewSource(7))

	for i := 0; i < 1000; i++ {
		if selector.Flip(0) {
			t.Fatal("Flip(0) returned true")
		}
	}
	for i := 0; i < 1000; i++ {
		if !selector.Flip(1) {
			t.Fatal("Flip(1) returned false")
		}
	}
}

func TestShownFor(t *testing.T) {
	display := DefaultDisplayTable()

	if shown := ShownFor(display, "4 Tomato"); shown != "35%" {
		t.Errorf("expected '35%%', got %q", shown)
	}
	if shown := ShownFor(display, "not a reward"); shown != "" {
		t.Errorf("expected empty string for unknown label, got %q", shown)
	}
}
