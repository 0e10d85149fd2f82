package deck

import (
	"math"
	"strconv"
	"strings"

	"github.com/deftgray/clashproxy/internal/cards"
)

// shareLinkFormat is the copy-deck deep link understood by the game client.
const (
	shareLinkPrefix = "https://link.clashroyale.com/en/?clashroyale://copyDeck?deck="
	shareLinkSuffix = "&l=Royals"
)

// FailureReason classifies why deck generation did not produce a deck.
type FailureReason string

const (
	// FailureNone marks a successful result.
	FailureNone FailureReason = ""

	// FailureNoCardsFound means the player's collection came back empty on
	// the fresh-deck path.
	FailureNoCardsFound FailureReason = "no_cards_found"

	// FailurePlayerCardsNotFound is the completion-path twin of
	// FailureNoCardsFound.
	FailurePlayerCardsNotFound FailureReason = "player_cards_not_found"

	// FailureUpstreamUnavailable means the catalog adapter failed at the
	// transport or parsing level.
	FailureUpstreamUnavailable FailureReason = "upstream_unavailable"

	// FailureNoSuggestion means no attempt produced any suggestion.
	FailureNoSuggestion FailureReason = "no_suggestion"

	// FailureNeverValid means suggestions were produced but none survived
	// validation within the attempt budget.
	FailureNeverValid FailureReason = "never_valid"
)

// Request is the completion-variant input: a player tag, the card ids the
// caller wants forced into the deck, and a free-text play-style hint.
type Request struct {
	PlayerTag   string  `json:"playerTag"`
	PartialDeck []int64 `json:"partialDeck"`
	PlayStyle   string  `json:"playStyle"`
}

// Result is the outcome of one deck generation request. Expected failures
// are carried here rather than as errors; the Reason field distinguishes
// them.
type Result struct {
	Valid         bool          `json:"valid"`
	Deck          []cards.Card  `json:"deck,omitempty"`
	Strategy      string        `json:"strategy"`
	Tactic        string        `json:"tacticMessage"`
	AverageElixir float64       `json:"averageElixir,omitempty"`
	ShareLink     string        `json:"deepLink,omitempty"`
	Reason        FailureReason `json:"reason,omitempty"`
}

func failure(reason FailureReason, message string) *Result {
	return &Result{
		Valid:    false,
		Strategy: "N/A",
		Tactic:   message,
		Reason:   reason,
	}
}

// averageElixir is the arithmetic mean of the deck's costs, rounded half-up
// to one decimal place.
func averageElixir(deck []cards.Card) float64 {
	if len(deck) == 0 {
		return 0
	}
	sum := 0
	for _, c := range deck {
		sum += c.ElixirCost
	}
	avg := float64(sum) / float64(len(deck))
	return math.Round(avg*10) / 10
}

// shareLink builds the copy-deck deep link, ids in deck order joined by
// semicolons.
func shareLink(deck []cards.Card) string {
	ids := make([]string, 0, len(deck))
	for _, c := range deck {
		ids = append(ids, strconv.FormatInt(c.ID, 10))
	}
	return shareLinkPrefix + strings.Join(ids, ";") + shareLinkSuffix
}
