// Package metrics collects in-process counters and latency histograms for
// the deck generation pipeline.
package metrics

import (
	"sync/atomic"
	"time"
)

// DeckMetrics tracks deck generation performance and failure modes.
type DeckMetrics struct {
	// Latency histograms (in milliseconds)
	GeneratorLatency *Histogram
	CatalogLatency   *Histogram

	// Counters
	Attempts             atomic.Uint64
	EmptySuggestions     atomic.Uint64
	MalformedSuggestions atomic.Uint64
	GeneratorErrors      atomic.Uint64
	ValidationFailures   atomic.Uint64
	UnknownNamesDropped  atomic.Uint64
	Substitutions        atomic.Uint64
	SubstitutionMisses   atomic.Uint64
	DecksGenerated       atomic.Uint64
	DecksFailed          atomic.Uint64

	startTime time.Time
}

// NewDeckMetrics creates a new metrics collector.
func NewDeckMetrics() *DeckMetrics {
	return &DeckMetrics{
		GeneratorLatency: NewHistogram(10000),
		CatalogLatency:   NewHistogram(10000),
		startTime:        time.Now(),
	}
}

// RecordGeneratorDuration records one suggestion-generator round trip.
func (m *DeckMetrics) RecordGeneratorDuration(d time.Duration) {
	m.GeneratorLatency.Record(d)
}

// RecordCatalogDuration records one catalog-adapter fetch.
func (m *DeckMetrics) RecordCatalogDuration(d time.Duration) {
	m.CatalogLatency.Record(d)
}

// LatencySummary is a point-in-time view of a latency histogram.
type LatencySummary struct {
	Count  int     `json:"count"`
	MeanMS float64 `json:"mean_ms"`
	P50MS  float64 `json:"p50_ms"`
	P95MS  float64 `json:"p95_ms"`
}

// Snapshot is a point-in-time view of all metrics, shaped for the system
// status endpoint.
type Snapshot struct {
	UptimeSeconds        float64        `json:"uptime_seconds"`
	Generator            LatencySummary `json:"generator_latency"`
	Catalog              LatencySummary `json:"catalog_latency"`
	Attempts             uint64         `json:"attempts"`
	EmptySuggestions     uint64         `json:"empty_suggestions"`
	MalformedSuggestions uint64         `json:"malformed_suggestions"`
	GeneratorErrors      uint64         `json:"generator_errors"`
	ValidationFailures   uint64         `json:"validation_failures"`
	UnknownNamesDropped  uint64         `json:"unknown_names_dropped"`
	Substitutions        uint64         `json:"substitutions"`
	SubstitutionMisses   uint64         `json:"substitution_misses"`
	DecksGenerated       uint64         `json:"decks_generated"`
	DecksFailed          uint64         `json:"decks_failed"`
}

func summarize(h *Histogram) LatencySummary {
	return LatencySummary{
		Count:  h.Count(),
		MeanMS: h.Mean(),
		P50MS:  h.Percentile(50),
		P95MS:  h.Percentile(95),
	}
}

// GetSnapshot returns the current metric values.
func (m *DeckMetrics) GetSnapshot() *Snapshot {
	return &Snapshot{
		UptimeSeconds:        time.Since(m.startTime).Seconds(),
		Generator:            summarize(m.GeneratorLatency),
		Catalog:              summarize(m.CatalogLatency),
		Attempts:             m.Attempts.Load(),
		EmptySuggestions:     m.EmptySuggestions.Load(),
		MalformedSuggestions: m.MalformedSuggestions.Load(),
		GeneratorErrors:      m.GeneratorErrors.Load(),
		ValidationFailures:   m.ValidationFailures.Load(),
		UnknownNamesDropped:  m.UnknownNamesDropped.Load(),
		Substitutions:        m.Substitutions.Load(),
		SubstitutionMisses:   m.SubstitutionMisses.Load(),
		DecksGenerated:       m.DecksGenerated.Load(),
		DecksFailed:          m.DecksFailed.Load(),
	}
}
