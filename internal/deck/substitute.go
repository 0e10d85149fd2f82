package deck

import "github.com/deftgray/clashproxy/internal/cards"

// defaultElixirCost stands in when the catalog omits a card's cost (the API
// encodes that as zero).
const defaultElixirCost = 3

// FindSubstitute picks the owned card closest to a catalog card the player
// does not own. Candidates sharing the target's type are preferred; when the
// player owns none of that type the whole collection is considered, so a
// player with at least one card always gets a match. Ranking is by absolute
// elixir-cost distance, ties broken by higher level. Returns false when the
// target id is not in the catalog or the player owns nothing.
func FindSubstitute(targetID int64, owned, catalog []cards.Card) (cards.Card, bool) {
	var target *cards.Card
	for i := range catalog {
		if catalog[i].ID == targetID {
			target = &catalog[i]
			break
		}
	}
	if target == nil {
		return cards.Card{}, false
	}

	var pool []cards.Card
	for _, c := range owned {
		if c.Type != "" && c.Type == target.Type {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = owned
	}
	if len(pool) == 0 {
		return cards.Card{}, false
	}

	targetCost := target.ElixirCost
	if targetCost == 0 {
		targetCost = defaultElixirCost
	}

	best := pool[0]
	bestDist := costDistance(best, targetCost)
	for _, c := range pool[1:] {
		dist := costDistance(c, targetCost)
		if dist < bestDist || (dist == bestDist && c.Level > best.Level) {
			best = c
			bestDist = dist
		}
	}
	return best, true
}

func costDistance(c cards.Card, targetCost int) int {
	d := c.ElixirCost - targetCost
	if d < 0 {
		return -d
	}
	return d
}
