package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mvlib/internal/services"
)

// Artist carries the metadata the importer records in artist.nfo files.
type Artist struct {
	Name      string
	Biography string
}

// Lookup defines the behaviour required by artist enrichment.
type Lookup interface {
	LookupArtist(ctx context.Context, name string) (Artist, error)
}

// HTTPDoer describes the HTTP client used by the lookup service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the MusicBrainz artist search endpoint.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	limiter   *rate.Limiter
	client    HTTPDoer
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.client = doer
		}
	}
}

// New constructs a MusicBrainz client. requestsPerSecond bounds the request
// rate; the public service asks for at most one request per second.
func New(baseURL, userAgent string, requestsPerSecond float64, timeoutSeconds int, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("musicbrainz base url required")
	}
	if requestsPerSecond <= 0 {
		return nil, errors.New("musicbrainz rate must be positive")
	}
	client := &Client{
		baseURL:   baseURL,
		userAgent: strings.TrimSpace(userAgent),
		timeout:   time.Duration(timeoutSeconds) * time.Second,
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		client:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchResponse struct {
	Artists []struct {
		Name           string `json:"name"`
		Disambiguation string `json:"disambiguation"`
		Type           string `json:"type"`
		Country        string `json:"country"`
		Score          int    `json:"score"`
	} `json:"artists"`
}

// LookupArtist returns the best artist match for name. The disambiguation
// line doubles as a short biography when MusicBrainz provides one.
func (c *Client) LookupArtist(ctx context.Context, name string) (Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Artist{}, services.Wrap(services.ErrValidation, "enrichment", "lookup", "empty artist name", nil)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Artist{}, services.Wrap(services.ErrTransient, "enrichment", "lookup", "rate limiter interrupted", err)
	}

	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	query := url.Values{}
	query.Set("query", `artist:"`+name+`"`)
	query.Set("fmt", "json")
	query.Set("limit", "1")
	endpoint := c.baseURL + "/artist?" + query.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Artist{}, fmt.Errorf("build musicbrainz request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return Artist{}, services.Wrap(services.ErrTimeout, "enrichment", "lookup", name, err)
		}
		return Artist{}, services.Wrap(services.ErrTransient, "enrichment", "lookup", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
		return Artist{}, services.Wrap(services.ErrTransient, "enrichment", "lookup",
			fmt.Sprintf("musicbrainz returned %d for %s", resp.StatusCode, name), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return Artist{}, services.Wrap(services.ErrExternalTool, "enrichment", "lookup",
			fmt.Sprintf("musicbrainz returned %d for %s", resp.StatusCode, name), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Artist{}, services.Wrap(services.ErrExternalTool, "enrichment", "lookup", "decode response", err)
	}
	if len(payload.Artists) == 0 {
		return Artist{}, services.Wrap(services.ErrNotFound, "enrichment", "lookup", "no match for "+name, nil)
	}

	match := payload.Artists[0]
	artist := Artist{Name: match.Name}
	if artist.Name == "" {
		artist.Name = name
	}
	artist.Biography = buildBiography(match.Disambiguation, match.Type, match.Country)
	return artist, nil
}

func buildBiography(disambiguation, artistType, country string) string {
	parts := make([]string, 0, 3)
	if disambiguation = strings.TrimSpace(disambiguation); disambiguation != "" {
		parts = append(parts, disambiguation)
	}
	if artistType = strings.TrimSpace(artistType); artistType != "" {
		parts = append(parts, strings.ToLower(artistType))
	}
	if country = strings.TrimSpace(country); country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}
