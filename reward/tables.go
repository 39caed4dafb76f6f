package reward

// Default tables. These are the compiled-in defaults; deployments tune them
// through the config file without touching code.

// DefaultGameTable returns the actual draw weights for the point-costing game
func DefaultGameTable() Table {
	return Table{
		{Label: "4 Tomato", Weight: 55.5},
		{Label: "2x Mango", Weight: 20.0},
		{Label: "2x 50-100k DPS", Weight: 12.5},
		{Label: "3x Lucky Block", Weight: 7.5},
		{Label: "67", Weight: 3.5},
		{Label: "Owner Collection Payout", Weight: 1.0},
	}
}

// DefaultFreeplayTable returns the actual draw weights for the one-time freeplay
func DefaultFreeplayTable() Table {
	return Table{
		{Label: "4 Tomato", Weight: 60.0},
		{Label: "2x Mango", Weight: 30.0},
		{Label: "2x 50-100k DPS", Weight: 10.0},
	}
}

// DefaultDisplayTable returns the percentages players are shown. They do not
// match the draw weights on purpose, presentation is decoupled from mechanics.
func DefaultDisplayTable() []DisplayOption {
	return []DisplayOption{
		{Label: "4 Tomato", Shown: "35%"},
		{Label: "2x Mango", Shown: "25%"},
		{Label: "2x 50-100k DPS", Shown: "15%"},
		{Label: "3x Lucky Block", Shown: "12.5%"},
		{Label: "67", Shown: "7.5%"},
		{Label: "Owner Collection Payout", Shown: "4.5%"},
		{Label: "Secret Dragon Canneiloni (sab)", Shown: "0.5%"},
	}
}

// ShownFor returns the displayed percentage for a label, or empty when the
// label is not in the display table.
func ShownFor(display []DisplayOption, label string) string {
	for _, d := range display {
		if d.Label == label {
			return d.Shown
		}
	}
	return ""
}
