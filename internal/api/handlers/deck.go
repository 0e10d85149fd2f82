package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/deftgray/clashproxy/internal/api/response"
	"github.com/deftgray/clashproxy/internal/deck"
)

// DeckGenerator is the slice of the deck service the handlers depend on.
type DeckGenerator interface {
	GenerateDeck(ctx context.Context, playerTag string) *deck.Result
	CompleteDeck(ctx context.Context, req deck.Request) *deck.Result
}

// DeckHandler handles deck generation API requests.
type DeckHandler struct {
	service DeckGenerator
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(service DeckGenerator) *DeckHandler {
	return &DeckHandler{service: service}
}

// GenerateDeck builds a deck for the player in the URL.
func (h *DeckHandler) GenerateDeck(w http.ResponseWriter, r *http.Request) {
	// Tags arrive percent-encoded ("#" is "%23") and chi hands back the raw
	// segment.
	playerTag := chi.URLParam(r, "playerTag")
	if decoded, err := url.PathUnescape(playerTag); err == nil {
		playerTag = decoded
	}
	if playerTag == "" {
		response.BadRequest(w, errors.New("player tag is required"))
		return
	}

	result := h.service.GenerateDeck(r.Context(), playerTag)
	writeResult(w, result)
}

// CompleteDeck builds a deck around the cards selected in the request body.
func (h *DeckHandler) CompleteDeck(w http.ResponseWriter, r *http.Request) {
	var req deck.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.PlayerTag == "" {
		response.BadRequest(w, errors.New("player tag is required"))
		return
	}

	result := h.service.CompleteDeck(r.Context(), req)
	writeResult(w, result)
}

// writeResult maps a deck result onto an HTTP status. Domain failures such
// as an unknown player or an exhausted retry budget are still well formed
// responses; only upstream outages surface as a gateway error.
func writeResult(w http.ResponseWriter, result *deck.Result) {
	status := http.StatusOK
	if result.Reason == deck.FailureUpstreamUnavailable {
		status = http.StatusBadGateway
	}
	response.JSON(w, status, result)
}
