package deck

import "github.com/deftgray/clashproxy/internal/cards"

// Deck composition limits.
const (
	DeckSize      = 8
	MaxHeroes     = 1
	MaxEvolutions = 2
)

// Violation names the first composition rule a candidate deck breaks.
type Violation string

const (
	// ViolationNone means the deck is valid.
	ViolationNone Violation = ""

	// ViolationInvalidSize means the deck does not hold exactly 8 cards.
	ViolationInvalidSize Violation = "invalid_size"

	// ViolationTooManyHeroes means more than one hero card.
	ViolationTooManyHeroes Violation = "too_many_heroes"

	// ViolationTooManyEvolutions means more than two evolved cards.
	ViolationTooManyEvolutions Violation = "too_many_evolutions"
)

// Validate checks a candidate deck against the composition rules. Rules run
// in order and the first failure wins. Stateless and pure: the same deck
// always yields the same verdict.
func Validate(candidate []cards.Card) Violation {
	if len(candidate) != DeckSize {
		return ViolationInvalidSize
	}

	heroes := 0
	evolutions := 0
	for _, c := range candidate {
		if c.IsHero {
			heroes++
		}
		if c.Evolved {
			evolutions++
		}
	}

	if heroes > MaxHeroes {
		return ViolationTooManyHeroes
	}
	if evolutions > MaxEvolutions {
		return ViolationTooManyEvolutions
	}
	return ViolationNone
}
