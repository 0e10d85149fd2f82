// Package cards defines the card domain model shared by the catalog
// adapter, the suggestion generator, and the deck engine.
package cards

// Card is a single Clash Royale card as held by a collection. Cards are
// plain values; the deck engine adjusts the evolution flag by producing a
// new value, never by writing through to a fetched collection.
type Card struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	ElixirCost       int    `json:"elixirCost"`
	Level            int    `json:"level"`
	HasEvolutionSlot bool   `json:"hasEvolutionSlot"`
	IsHero           bool   `json:"isHero"`

	// Evolved is set only on deck-resolved copies. A card enters a deck
	// evolved only if the player unlocked the slot AND the suggestion
	// asked for it.
	Evolved bool `json:"evolved"`
}

// WithEvolution returns a copy of the card with the deck-facing evolution
// flag computed from the unlocked slot and the generator's request. The
// receiver is a value, so the owned card is never touched.
func (c Card) WithEvolution(requested bool) Card {
	c.Evolved = c.HasEvolutionSlot && requested
	return c
}

// SimplifiedCard is the read-only projection sent to the suggestion
// generator.
type SimplifiedCard struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	ElixirCost int    `json:"elixirCost"`
	IsEvolved  bool   `json:"isEvolved"`
	IsHero     bool   `json:"isHero"`
}

// Simplified returns the generator-facing projection of the card.
func (c Card) Simplified() SimplifiedCard {
	return SimplifiedCard{
		Name:       c.Name,
		Level:      c.Level,
		ElixirCost: c.ElixirCost,
		IsEvolved:  c.HasEvolutionSlot,
		IsHero:     c.IsHero,
	}
}

// Simplify projects a whole collection.
func Simplify(collection []Card) []SimplifiedCard {
	out := make([]SimplifiedCard, 0, len(collection))
	for _, c := range collection {
		out = append(out, c.Simplified())
	}
	return out
}

// LookupByName builds a name-to-card index. Names are the join key with the
// generator's output; on duplicate names the first card wins.
func LookupByName(collection []Card) map[string]Card {
	lookup := make(map[string]Card, len(collection))
	for _, c := range collection {
		if _, ok := lookup[c.Name]; !ok {
			lookup[c.Name] = c
		}
	}
	return lookup
}
