// Package deck implements the deck generation engine: the retry-until-valid
// orchestration loop, the composition validator, and the substitution
// resolver for completing partial decks.
package deck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/deftgray/clashproxy/internal/cards"
	"github.com/deftgray/clashproxy/internal/llm"
	"github.com/deftgray/clashproxy/internal/metrics"
)

// MaxRetries is the per-request budget of generator attempts.
const MaxRetries = 3

// CatalogProvider supplies a player's owned cards and the full catalog.
// An unknown player yields an empty collection, not an error.
type CatalogProvider interface {
	GetPlayerCards(ctx context.Context, tag string) ([]cards.Card, error)
	GetAllCards(ctx context.Context) ([]cards.Card, error)
}

// SuggestionGenerator produces candidate decks. It is an unreliable oracle:
// every attempt is classified by the outcome kind and re-validated here.
type SuggestionGenerator interface {
	SuggestDeck(ctx context.Context, collection []cards.SimplifiedCard) llm.Outcome
	SuggestCompletion(ctx context.Context, collection []cards.SimplifiedCard, selected []string, playStyle string) llm.Outcome
}

// ServiceConfig configures the orchestrator.
type ServiceConfig struct {
	// MaxRetries is the number of generator attempts per request.
	MaxRetries int

	// AttemptTimeout bounds a single generator round trip.
	AttemptTimeout time.Duration
}

// DefaultServiceConfig returns sensible defaults.
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxRetries:     MaxRetries,
		AttemptTimeout: 30 * time.Second,
	}
}

// Service orchestrates catalog fetches, generator attempts, and validation
// into a final deck result. Requests are independent: all state is request
// scoped, so concurrent requests for different players never share cards.
type Service struct {
	catalog   CatalogProvider
	generator SuggestionGenerator
	config    *ServiceConfig
	metrics   *metrics.DeckMetrics
	logger    *slog.Logger
}

// NewService creates a deck service. A nil config, metrics collector, or
// logger falls back to defaults.
func NewService(catalog CatalogProvider, generator SuggestionGenerator, config *ServiceConfig, m *metrics.DeckMetrics, logger *slog.Logger) *Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = MaxRetries
	}
	if m == nil {
		m = metrics.NewDeckMetrics()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:   catalog,
		generator: generator,
		config:    config,
		metrics:   m,
		logger:    logger,
	}
}

// Metrics exposes the collector for the status endpoint.
func (s *Service) Metrics() *metrics.DeckMetrics {
	return s.metrics
}

// GenerateDeck builds a fresh deck from the player's whole collection.
// Expected failures come back as a Result with a Reason, never as an error.
func (s *Service) GenerateDeck(ctx context.Context, playerTag string) *Result {
	log := s.logger.With("player_tag", playerTag)
	log.Info("generating deck")

	owned, err := s.fetchPlayerCards(ctx, playerTag)
	if err != nil {
		log.Error("card catalog fetch failed", "error", err)
		s.metrics.DecksFailed.Add(1)
		return failure(FailureUpstreamUnavailable, "Card catalog unavailable: "+err.Error())
	}
	if len(owned) == 0 {
		log.Warn("no cards found for player")
		s.metrics.DecksFailed.Add(1)
		return failure(FailureNoCardsFound, "Player not found or no cards available.")
	}
	log.Info("fetched player collection", "cards", len(owned))

	simplified := cards.Simplify(owned)
	lookup := cards.LookupByName(owned)

	return s.generate(ctx, log, lookup, func(ctx context.Context) llm.Outcome {
		return s.generator.SuggestDeck(ctx, simplified)
	})
}

// CompleteDeck builds a deck around the caller's partial selection. Partial
// ids the player does not own are substituted once, up front; slots with no
// substitute are dropped rather than failing the request.
func (s *Service) CompleteDeck(ctx context.Context, req Request) *Result {
	log := s.logger.With("player_tag", req.PlayerTag)
	log.Info("completing deck", "partial_cards", len(req.PartialDeck), "play_style", req.PlayStyle)

	owned, err := s.fetchPlayerCards(ctx, req.PlayerTag)
	if err != nil {
		log.Error("card catalog fetch failed", "error", err)
		s.metrics.DecksFailed.Add(1)
		return failure(FailureUpstreamUnavailable, "Card catalog unavailable: "+err.Error())
	}
	if len(owned) == 0 {
		log.Warn("player cards not found")
		s.metrics.DecksFailed.Add(1)
		return failure(FailurePlayerCardsNotFound, "Player cards not found.")
	}

	catalog, err := s.catalog.GetAllCards(ctx)
	if err != nil {
		log.Error("full catalog fetch failed", "error", err)
		s.metrics.DecksFailed.Add(1)
		return failure(FailureUpstreamUnavailable, "Card catalog unavailable: "+err.Error())
	}

	forced := s.resolveForced(log, req.PartialDeck, owned, catalog)

	simplified := cards.Simplify(owned)
	lookup := cards.LookupByName(owned)

	return s.generate(ctx, log, lookup, func(ctx context.Context) llm.Outcome {
		return s.generator.SuggestCompletion(ctx, simplified, forced, req.PlayStyle)
	})
}

// generate is the shared retry loop: ask the generator, resolve names back
// to owned cards, validate, and either return a deck or consume an attempt.
func (s *Service) generate(ctx context.Context, log *slog.Logger, lookup map[string]cards.Card, suggest func(context.Context) llm.Outcome) *Result {
	sawSuggestion := false

	for attempt := 1; attempt <= s.config.MaxRetries; attempt++ {
		s.metrics.Attempts.Add(1)
		log.Info("requesting deck suggestion", "attempt", attempt, "max_attempts", s.config.MaxRetries)

		outcome := s.suggestOnce(ctx, suggest)

		switch outcome.Kind {
		case llm.OutcomeEmpty:
			s.metrics.EmptySuggestions.Add(1)
			log.Warn("generator returned an empty suggestion", "attempt", attempt)
			continue
		case llm.OutcomeMalformed:
			s.metrics.MalformedSuggestions.Add(1)
			log.Warn("generator returned a malformed suggestion", "attempt", attempt, "error", outcome.Err)
			continue
		case llm.OutcomeUnreachable:
			s.metrics.GeneratorErrors.Add(1)
			log.Warn("generator unreachable", "attempt", attempt, "error", outcome.Err)
			continue
		}

		sawSuggestion = true
		candidate := s.resolve(log, outcome.Suggestion, lookup)

		if v := Validate(candidate); v != ViolationNone {
			s.metrics.ValidationFailures.Add(1)
			log.Warn("candidate deck rejected", "attempt", attempt, "violation", string(v), "cards", len(candidate))
			continue
		}

		s.metrics.DecksGenerated.Add(1)
		log.Info("valid deck generated", "strategy", outcome.Suggestion.Strategy)
		return &Result{
			Valid:         true,
			Deck:          candidate,
			Strategy:      outcome.Suggestion.Strategy,
			Tactic:        outcome.Suggestion.Tactic,
			AverageElixir: averageElixir(candidate),
			ShareLink:     shareLink(candidate),
		}
	}

	s.metrics.DecksFailed.Add(1)
	if !sawSuggestion {
		log.Error("no deck suggestion produced", "attempts", s.config.MaxRetries)
		return failure(FailureNoSuggestion,
			fmt.Sprintf("No deck suggestion produced after %d attempts.", s.config.MaxRetries))
	}
	log.Error("no suggestion survived validation", "attempts", s.config.MaxRetries)
	return failure(FailureNeverValid,
		fmt.Sprintf("Failed to generate a valid deck after %d attempts.", s.config.MaxRetries))
}

// suggestOnce runs one generator attempt under the per-attempt timeout and
// records its latency.
func (s *Service) suggestOnce(ctx context.Context, suggest func(context.Context) llm.Outcome) llm.Outcome {
	if s.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	outcome := suggest(ctx)
	s.metrics.RecordGeneratorDuration(time.Since(start))
	return outcome
}

// resolve maps suggested names back to owned cards. Unknown names are
// generator hallucinations: dropped and logged, the validator catches the
// resulting short deck. The evolution flag is recomputed on a copy so the
// fetched collection is never mutated.
func (s *Service) resolve(log *slog.Logger, suggestion *llm.Suggestion, lookup map[string]cards.Card) []cards.Card {
	resolved := make([]cards.Card, 0, len(suggestion.Cards))
	for _, pick := range suggestion.Cards {
		owned, ok := lookup[pick.Name]
		if !ok {
			s.metrics.UnknownNamesDropped.Add(1)
			log.Warn("suggested card not found in player's collection", "card", pick.Name)
			continue
		}
		resolved = append(resolved, owned.WithEvolution(pick.IsEvolved))
	}
	return resolved
}

// resolveForced turns the caller's partial-deck ids into names the generator
// is hinted with. Unowned ids get a best-effort substitute; ids with no
// substitute degrade the hint list instead of aborting.
func (s *Service) resolveForced(log *slog.Logger, partial []int64, owned, catalog []cards.Card) []string {
	forced := make([]string, 0, len(partial))
	for _, id := range partial {
		if c, ok := ownedByID(owned, id); ok {
			forced = append(forced, c.Name)
			continue
		}
		if sub, ok := FindSubstitute(id, owned, catalog); ok {
			s.metrics.Substitutions.Add(1)
			log.Info("substituting missing card", "target_id", id, "substitute", sub.Name)
			forced = append(forced, sub.Name)
			continue
		}
		s.metrics.SubstitutionMisses.Add(1)
		log.Warn("could not find substitute", "target_id", id)
	}
	return forced
}

func (s *Service) fetchPlayerCards(ctx context.Context, tag string) ([]cards.Card, error) {
	start := time.Now()
	owned, err := s.catalog.GetPlayerCards(ctx, tag)
	s.metrics.RecordCatalogDuration(time.Since(start))
	return owned, err
}

func ownedByID(owned []cards.Card, id int64) (cards.Card, bool) {
	for _, c := range owned {
		if c.ID == id {
			return c, true
		}
	}
	return cards.Card{}, false
}
