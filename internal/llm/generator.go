package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/deftgray/clashproxy/internal/cards"
)

// Strategies is the fixed vocabulary the generator must pick from. The deck
// system prompt enumerates exactly this list.
var Strategies = []string{
	"Beatdown", "Control", "Cycle", "Bait", "Siege", "Bridge Spam", "Split Lane", "Hybrid",
}

var deckSystemPrompt = `You are a Clash Royale expert. Build the best deck (8 cards) from the provided list.
ABSOLUTE STRICT RULES THAT CANNOT BE BROKEN:
1. Exactly ONE card can have "isHero": true. The other 7 MUST have "isHero": false.
2. A MAXIMUM of TWO cards can have "isEvolved": true. The rest MUST have "isEvolved": false.
Return ONLY a JSON object with keys: 'cards' (array of objects with keys: 'name', 'isEvolved' (boolean), 'isHero' (boolean), 'level' (integer)), 'strategy' (string, MUST be one of: ` +
	strategyVocabulary() +
	`), and 'tactic' (string, explanation of how to play). No markdown.`

// strategyVocabulary renders Strategies as the quoted enumeration used in
// the system prompt: 'Beatdown', 'Control', ...
func strategyVocabulary() string {
	return "'" + strings.Join(Strategies, "', '") + "'"
}

const completionSystemPromptFormat = `You are a Clash Royale expert. Complete the deck to 8 cards using the player's collection. Respect the user's selected playstyle: %s.
ABSOLUTE STRICT RULES THAT CANNOT BE BROKEN:
1. Exactly ONE card can have "isHero": true in the ENTIRE DECK. The other 7 MUST have "isHero": false.
2. A MAXIMUM of TWO cards can have "isEvolved": true in the ENTIRE DECK. The rest MUST have "isEvolved": false.
Return ONLY a JSON object with keys: 'cards' (array of objects with keys: 'name', 'isEvolved' (boolean), 'isHero' (boolean), 'level' (integer)), 'strategy' (string enum), and 'tactic' (string).`

// CardPick is one entry of the generator's suggested deck.
type CardPick struct {
	Name      string `json:"name"`
	IsEvolved bool   `json:"isEvolved"`
	IsHero    bool   `json:"isHero"`
	Level     int    `json:"level"`
}

// Suggestion is the structured deck suggestion parsed from the model.
type Suggestion struct {
	Cards    []CardPick `json:"cards"`
	Strategy string     `json:"strategy"`
	Tactic   string     `json:"tactic"`
}

// OutcomeKind classifies one generator attempt.
type OutcomeKind int

const (
	// OutcomeSuggestion carries a parsed, non-empty suggestion.
	OutcomeSuggestion OutcomeKind = iota

	// OutcomeEmpty means the model answered without any card picks.
	OutcomeEmpty

	// OutcomeMalformed means the content could not be parsed as a suggestion.
	OutcomeMalformed

	// OutcomeUnreachable means the upstream call itself failed.
	OutcomeUnreachable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuggestion:
		return "suggestion"
	case OutcomeEmpty:
		return "empty"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Outcome is the result of one generator attempt. The orchestrator switches
// on Kind instead of interpreting raw errors.
type Outcome struct {
	Kind       OutcomeKind
	Suggestion *Suggestion
	Err        error
}

// Generator asks the model for deck suggestions.
type Generator struct {
	client *Client
}

// NewGenerator creates a suggestion generator on top of an OpenRouter client.
func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

// SuggestDeck requests a fresh 8-card deck built from the whole collection.
func (g *Generator) SuggestDeck(ctx context.Context, collection []cards.SimplifiedCard) Outcome {
	prompt := buildCollectionPrompt(collection) +
		"\n\nPick 8 cards for a balanced deck. Maximize card levels. Ensure valid deck composition."

	return g.request(ctx, deckSystemPrompt, prompt)
}

// SuggestCompletion requests a deck that keeps the already-selected names
// and honors the requested play style. The model is expected, but not
// guaranteed, to keep the selected cards.
func (g *Generator) SuggestCompletion(ctx context.Context, collection []cards.SimplifiedCard, selected []string, playStyle string) Outcome {
	system := fmt.Sprintf(completionSystemPromptFormat, playStyle)
	prompt := buildCollectionPrompt(collection) +
		"\n\nI want to build a '" + playStyle + "' deck." +
		"\nI have ALREADY selected these cards: " + strings.Join(selected, ", ") +
		"\nPlease pick the remaining cards from my collection to form a complete, competitive 8-card deck. Ensure the final deck includes the cards I selected."

	return g.request(ctx, system, prompt)
}

func (g *Generator) request(ctx context.Context, system, prompt string) Outcome {
	content, err := g.client.ChatCompletion(ctx, []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		if errors.Is(err, ErrEmptyContent) {
			return Outcome{Kind: OutcomeEmpty, Err: err}
		}
		return Outcome{Kind: OutcomeUnreachable, Err: err}
	}

	suggestion, err := parseSuggestion(content)
	if err != nil {
		return Outcome{Kind: OutcomeMalformed, Err: err}
	}
	if len(suggestion.Cards) == 0 {
		return Outcome{Kind: OutcomeEmpty}
	}

	return Outcome{Kind: OutcomeSuggestion, Suggestion: suggestion}
}

// buildCollectionPrompt lists every simplified card one per line.
func buildCollectionPrompt(collection []cards.SimplifiedCard) string {
	var b strings.Builder
	b.WriteString("Here is my collection of cards:\n")
	for i, c := range collection {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s (Lvl: %d, Evo: %t, Hero: %t)", c.Name, c.Level, c.IsEvolved, c.IsHero)
	}
	return b.String()
}

// parseSuggestion parses the model's content into a Suggestion. Some models
// wrap the JSON in code fences despite instructions, so fences are stripped
// before parsing.
func parseSuggestion(content string) (*Suggestion, error) {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var suggestion Suggestion
	if err := json.Unmarshal([]byte(cleaned), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion: %w", err)
	}
	return &suggestion, nil
}

// Model reports the model the generator runs on.
func (g *Generator) Model() string {
	return g.client.Model()
}
