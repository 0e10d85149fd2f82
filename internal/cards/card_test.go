package cards

import "testing"

func TestWithEvolution(t *testing.T) {
	tests := []struct {
		name      string
		hasSlot   bool
		requested bool
		want      bool
	}{
		{"slot and requested", true, true, true},
		{"slot not requested", true, false, false},
		{"no slot but requested", false, true, false},
		{"no slot not requested", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owned := Card{Name: "Knight", HasEvolutionSlot: tt.hasSlot}
			resolved := owned.WithEvolution(tt.requested)

			if resolved.Evolved != tt.want {
				t.Errorf("Evolved = %v, want %v", resolved.Evolved, tt.want)
			}
			if owned.Evolved {
				t.Error("WithEvolution mutated the owned card")
			}
		})
	}
}

func TestSimplified(t *testing.T) {
	c := Card{
		ID:               26000000,
		Name:             "Knight",
		Type:             "troop",
		ElixirCost:       3,
		Level:            14,
		HasEvolutionSlot: true,
		IsHero:           false,
	}

	s := c.Simplified()

	if s.Name != "Knight" || s.Level != 14 || s.ElixirCost != 3 {
		t.Errorf("unexpected projection: %+v", s)
	}
	if !s.IsEvolved {
		t.Error("IsEvolved should reflect the unlocked evolution slot")
	}
	if s.IsHero {
		t.Error("IsHero should be false")
	}
}

func TestLookupByNameFirstWins(t *testing.T) {
	collection := []Card{
		{ID: 1, Name: "Knight", Level: 11},
		{ID: 2, Name: "Knight", Level: 14},
		{ID: 3, Name: "Fireball", Level: 12},
	}

	lookup := LookupByName(collection)

	if len(lookup) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(lookup))
	}
	if lookup["Knight"].ID != 1 {
		t.Errorf("duplicate name should resolve to the first card, got ID %d", lookup["Knight"].ID)
	}
}

func TestSimplifyLength(t *testing.T) {
	collection := []Card{{Name: "Knight"}, {Name: "Archers"}}
	if got := len(Simplify(collection)); got != 2 {
		t.Errorf("expected 2 simplified cards, got %d", got)
	}
}
