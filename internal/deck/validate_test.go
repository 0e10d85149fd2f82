package deck

import (
	"testing"

	"github.com/deftgray/clashproxy/internal/cards"
)

// buildDeck creates a deck of size cards with the requested number of hero
// and evolved cards.
func buildDeck(size, heroes, evolved int) []cards.Card {
	deck := make([]cards.Card, 0, size)
	for i := 0; i < size; i++ {
		deck = append(deck, cards.Card{
			ID:      int64(i + 1),
			Name:    string(rune('A' + i)),
			IsHero:  i < heroes,
			Evolved: i < evolved,
		})
	}
	return deck
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		deck []cards.Card
		want Violation
	}{
		{"valid plain deck", buildDeck(8, 0, 0), ViolationNone},
		{"valid with one hero", buildDeck(8, 1, 0), ViolationNone},
		{"valid with two evolutions", buildDeck(8, 0, 2), ViolationNone},
		{"valid at both caps", buildDeck(8, 1, 2), ViolationNone},
		{"too few cards", buildDeck(7, 0, 0), ViolationInvalidSize},
		{"too many cards", buildDeck(9, 0, 0), ViolationInvalidSize},
		{"empty deck", nil, ViolationInvalidSize},
		{"two heroes", buildDeck(8, 2, 0), ViolationTooManyHeroes},
		{"three evolutions", buildDeck(8, 0, 3), ViolationTooManyEvolutions},
		// Size is checked first, so an oversized deck full of heroes
		// reports the size violation.
		{"size beats hero count", buildDeck(9, 3, 3), ViolationInvalidSize},
		// Hero count is checked before evolutions.
		{"heroes beat evolutions", buildDeck(8, 2, 3), ViolationTooManyHeroes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Validate(tt.deck); got != tt.want {
				t.Errorf("Validate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateIsPure(t *testing.T) {
	deck := buildDeck(8, 1, 2)
	first := Validate(deck)
	second := Validate(deck)
	if first != second {
		t.Errorf("verdict changed between runs: %q then %q", first, second)
	}
}
