package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/deftgray/clashproxy/internal/cards"
	"github.com/deftgray/clashproxy/internal/deck"
)

// mockDeckService is a mock deck generator for testing handlers.
type mockDeckService struct {
	result      *deck.Result
	lastTag     string
	lastRequest deck.Request
}

func (m *mockDeckService) GenerateDeck(_ context.Context, playerTag string) *deck.Result {
	m.lastTag = playerTag
	return m.result
}

func (m *mockDeckService) CompleteDeck(_ context.Context, req deck.Request) *deck.Result {
	m.lastRequest = req
	return m.result
}

func validResult() *deck.Result {
	return &deck.Result{
		Valid: true,
		Deck: []cards.Card{
			{ID: 26000000, Name: "Knight", ElixirCost: 3},
		},
		Strategy:      "Cycle",
		Tactic:        "Keep cycling.",
		AverageElixir: 3.0,
		ShareLink:     "https://link.clashroyale.com/en/?clashroyale://copyDeck?deck=26000000&l=Royals",
	}
}

// newDeckRouter mounts the handler the way the server does, so URL params
// resolve.
func newDeckRouter(h *DeckHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/deck/{playerTag}", h.GenerateDeck)
	r.Post("/deck/complete", h.CompleteDeck)
	return r
}

func TestGenerateDeck(t *testing.T) {
	mock := &mockDeckService{result: validResult()}
	router := newDeckRouter(NewDeckHandler(mock))

	req := httptest.NewRequest(http.MethodGet, "/deck/%232PP", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if mock.lastTag != "#2PP" {
		t.Errorf("player tag = %q, want #2PP", mock.lastTag)
	}

	var body deck.Result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if !body.Valid || body.Strategy != "Cycle" {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.ShareLink == "" {
		t.Error("deep link missing from response")
	}
}

func TestGenerateDeckDomainFailureIsStill200(t *testing.T) {
	mock := &mockDeckService{result: &deck.Result{
		Valid:    false,
		Strategy: "N/A",
		Tactic:   "Player not found or no cards available.",
		Reason:   deck.FailureNoCardsFound,
	}}
	router := newDeckRouter(NewDeckHandler(mock))

	req := httptest.NewRequest(http.MethodGet, "/deck/%232PP", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body deck.Result
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Valid {
		t.Error("expected an invalid result")
	}
	if body.Tactic != "Player not found or no cards available." {
		t.Errorf("tactic message = %q", body.Tactic)
	}
}

func TestGenerateDeckUpstreamFailureIs502(t *testing.T) {
	mock := &mockDeckService{result: &deck.Result{
		Valid:    false,
		Strategy: "N/A",
		Tactic:   "Card catalog unavailable: connection refused",
		Reason:   deck.FailureUpstreamUnavailable,
	}}
	router := newDeckRouter(NewDeckHandler(mock))

	req := httptest.NewRequest(http.MethodGet, "/deck/%232PP", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestCompleteDeck(t *testing.T) {
	mock := &mockDeckService{result: validResult()}
	router := newDeckRouter(NewDeckHandler(mock))

	payload, _ := json.Marshal(deck.Request{
		PlayerTag:   "#2PP",
		PartialDeck: []int64{26000000, 27000001},
		PlayStyle:   "Beatdown",
	})
	req := httptest.NewRequest(http.MethodPost, "/deck/complete", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if mock.lastRequest.PlayerTag != "#2PP" {
		t.Errorf("player tag = %q, want #2PP", mock.lastRequest.PlayerTag)
	}
	if len(mock.lastRequest.PartialDeck) != 2 {
		t.Errorf("partial deck = %v, want 2 ids", mock.lastRequest.PartialDeck)
	}
	if mock.lastRequest.PlayStyle != "Beatdown" {
		t.Errorf("play style = %q, want Beatdown", mock.lastRequest.PlayStyle)
	}
}

func TestCompleteDeckInvalidBody(t *testing.T) {
	router := newDeckRouter(NewDeckHandler(&mockDeckService{}))

	req := httptest.NewRequest(http.MethodPost, "/deck/complete", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCompleteDeckMissingPlayerTag(t *testing.T) {
	router := newDeckRouter(NewDeckHandler(&mockDeckService{}))

	req := httptest.NewRequest(http.MethodPost, "/deck/complete", bytes.NewReader([]byte(`{"partialDeck":[1]}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
