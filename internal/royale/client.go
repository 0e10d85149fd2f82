// Package royale implements the catalog adapter: a rate-limited client for
// the official Clash Royale API that supplies a player's owned cards and the
// full card catalog.
package royale

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/deftgray/clashproxy/internal/cards"
)

const (
	// DefaultBaseURL is the official API endpoint.
	DefaultBaseURL = "https://api.clashroyale.com/v1"

	// DefaultRateLimit spaces requests 100ms apart (10 req/sec).
	DefaultRateLimit = rate.Limit(10)

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	maxBackoff            = 16 * time.Second

	// heroRarity marks champion-tier cards; at most one per deck.
	heroRarity = "champion"
)

// ClientOptions configures the Clash Royale API client.
type ClientOptions struct {
	// BaseURL is the API endpoint, overridable for tests.
	BaseURL string

	// Token is the bearer token issued by the developer portal.
	Token string

	// RateLimit caps outbound request frequency.
	RateLimit rate.Limit

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration

	// MaxRetries is the number of retries on transient failures.
	MaxRetries int

	// InitialBackoff is the first retry delay; it doubles per retry.
	InitialBackoff time.Duration
}

// DefaultClientOptions returns sensible defaults. The token must be supplied
// by the caller.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		BaseURL:        DefaultBaseURL,
		RateLimit:      DefaultRateLimit,
		Timeout:        DefaultTimeout,
		MaxRetries:     defaultMaxRetries,
		InitialBackoff: defaultInitialBackoff,
	}
}

// Client is a Clash Royale API client with rate limiting and retries.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	token      string
	maxRetries int
	backoff    time.Duration
	userAgent  string
}

// NewClient creates a new Clash Royale API client.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = DefaultRateLimit
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.InitialBackoff == 0 {
		opts.InitialBackoff = defaultInitialBackoff
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(opts.RateLimit, 1),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		maxRetries: opts.MaxRetries,
		backoff:    opts.InitialBackoff,
		userAgent:  "clashproxy/1.0",
	}
}

// GetPlayerCards retrieves the cards owned by a player. An unknown player
// tag yields an empty collection, not an error; only transport and parsing
// failures are reported as errors.
func (c *Client) GetPlayerCards(ctx context.Context, tag string) ([]cards.Card, error) {
	endpoint := fmt.Sprintf("%s/players/%s/cards", c.baseURL, url.PathEscape(NormalizeTag(tag)))

	var list cardList
	if err := c.doRequest(ctx, endpoint, &list); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return []cards.Card{}, nil
		}
		return nil, fmt.Errorf("failed to get cards for player %s: %w", tag, err)
	}

	owned := make([]cards.Card, 0, len(list.Items))
	for _, item := range list.Items {
		owned = append(owned, item.toOwnedCard())
	}
	return owned, nil
}

// GetAllCards retrieves the full static card catalog.
func (c *Client) GetAllCards(ctx context.Context) ([]cards.Card, error) {
	endpoint := c.baseURL + "/cards"

	var list cardList
	if err := c.doRequest(ctx, endpoint, &list); err != nil {
		return nil, fmt.Errorf("failed to get card catalog: %w", err)
	}

	catalog := make([]cards.Card, 0, len(list.Items))
	for _, item := range list.Items {
		catalog = append(catalog, item.toCatalogCard())
	}
	return catalog, nil
}

// toOwnedCard maps a player-collection entry to the domain model. The
// evolution slot is unlocked once the player's evolutionLevel is positive.
func (a apiCard) toOwnedCard() cards.Card {
	return cards.Card{
		ID:               a.ID,
		Name:             a.Name,
		Type:             a.Type,
		ElixirCost:       a.ElixirCost,
		Level:            a.Level,
		HasEvolutionSlot: a.EvolutionLevel > 0,
		IsHero:           strings.EqualFold(a.Rarity, heroRarity),
	}
}

// toCatalogCard maps a catalog entry. Catalog cards carry no player state,
// so evolution capability comes from the card definition itself.
func (a apiCard) toCatalogCard() cards.Card {
	return cards.Card{
		ID:               a.ID,
		Name:             a.Name,
		Type:             a.Type,
		ElixirCost:       a.ElixirCost,
		Level:            a.MaxLevel,
		HasEvolutionSlot: a.MaxEvolutionLevel > 0,
		IsHero:           strings.EqualFold(a.Rarity, heroRarity),
	}
}

// NormalizeTag ensures a player tag carries its leading '#'. Callers often
// pass tags without it because '#' needs escaping in URLs.
func NormalizeTag(tag string) string {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" || strings.HasPrefix(tag, "#") {
		return tag
	}
	return "#" + tag
}

// doRequest performs an HTTP GET with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	var lastErr error
	backoff := c.backoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < c.maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		err = c.handleResponse(resp, endpoint, result)
		if err == nil {
			return nil
		}

		var rateLimited *rateLimitedError
		if errors.As(err, &rateLimited) && attempt < c.maxRetries {
			lastErr = err
			if rateLimited.retryAfter > 0 {
				time.Sleep(rateLimited.retryAfter)
			} else {
				time.Sleep(backoff)
			}
			backoff = minDuration(backoff*2, maxBackoff)
			continue
		}

		return err
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// rateLimitedError signals an HTTP 429 and carries the server's Retry-After
// hint when present.
type rateLimitedError struct {
	retryAfter time.Duration
}

func (e *rateLimitedError) Error() string { return "rate limited (HTTP 429)" }

// handleResponse consumes and closes the response body.
func (c *Client) handleResponse(resp *http.Response, endpoint string, result interface{}) error {
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return nil

	case http.StatusNotFound:
		return &NotFoundError{URL: endpoint}

	case http.StatusTooManyRequests:
		var retryAfter time.Duration
		if header := resp.Header.Get("Retry-After"); header != "" {
			if d, err := time.ParseDuration(header + "s"); err == nil {
				retryAfter = d
			}
		}
		return &rateLimitedError{retryAfter: retryAfter}

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Reason != "" {
			apiErr.Status = resp.StatusCode
			return &apiErr
		}
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
