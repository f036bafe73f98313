// Package metadata wraps remote bibliographic metadata lookups (Crossref,
// OpenAlex, Unpaywall) with on-disk caching, shared request pacing, and
// graceful fallbacks. Lookup methods never return errors: any transport or
// decoding failure collapses to a nil payload plus a logged warning, and the
// engine degrades to whatever signals remain.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/luiscosio/CiteIQ/internal/logging"
)

const (
	// CrossrefEndpoint is the default Crossref REST API base URL.
	CrossrefEndpoint = "https://api.crossref.org"

	// OpenAlexEndpoint is the default OpenAlex API base URL.
	OpenAlexEndpoint = "https://api.openalex.org"

	// UnpaywallEndpoint is the default Unpaywall API base URL.
	UnpaywallEndpoint = "https://api.unpaywall.org"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 20 * time.Second

	// DefaultPause is the minimum spacing between provider requests.
	DefaultPause = 200 * time.Millisecond

	// DefaultContact identifies the client in User-Agent headers when no
	// contact email is configured.
	DefaultContact = "metadata@citeiq.local"

	userAgentProduct = "CiteIQ/0.1"
)

// Service wraps remote metadata lookups with caching and graceful fallbacks.
// One Service serves all providers so they share a single pacing budget.
type Service struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	cache         *Cache
	logger        *slog.Logger
	email         string
	crossrefBase  string
	openalexBase  string
	unpaywallBase string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = hc
	}
}

// WithEndpoints overrides the provider base URLs (for testing).
func WithEndpoints(crossref, openalex, unpaywall string) ServiceOption {
	return func(s *Service) {
		if crossref != "" {
			s.crossrefBase = strings.TrimRight(crossref, "/")
		}
		if openalex != "" {
			s.openalexBase = strings.TrimRight(openalex, "/")
		}
		if unpaywall != "" {
			s.unpaywallBase = strings.TrimRight(unpaywall, "/")
		}
	}
}

// WithEmail sets the contact email used in User-Agent headers and required
// by Unpaywall.
func WithEmail(email string) ServiceOption {
	return func(s *Service) {
		s.email = email
	}
}

// WithLogger sets the logger for lookup warnings.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCache attaches an on-disk payload cache. Cache hits bypass pacing.
func WithCache(cache *Cache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithPacing sets the minimum spacing between provider requests. A
// non-positive pause disables pacing.
func WithPacing(pause time.Duration) ServiceOption {
	return func(s *Service) {
		s.limiter = rate.NewLimiter(rate.Every(pause), 1)
	}
}

// NewService creates a metadata lookup service.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		limiter:       rate.NewLimiter(rate.Every(DefaultPause), 1),
		logger:        logging.NewNop(),
		crossrefBase:  CrossrefEndpoint,
		openalexBase:  OpenAlexEndpoint,
		unpaywallBase: UnpaywallEndpoint,
	}

	if email := os.Getenv("CITEIQ_EMAIL"); email != "" {
		s.email = email
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Email returns the configured contact email, if any.
func (s *Service) Email() string {
	return s.email
}

func (s *Service) userAgent() string {
	contact := s.email
	if contact == "" {
		contact = DefaultContact
	}
	return fmt.Sprintf("%s (mailto:%s)", userAgentProduct, contact)
}

// cacheKey builds the canonical key for a request: the endpoint URL plus the
// serialized query parameters in sorted order.
func cacheKey(rawURL string, params url.Values) string {
	return rawURL + "?" + params.Encode()
}

func statusError(provider string, statusCode int) error {
	switch {
	case statusCode == http.StatusOK:
		return nil
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status 404", ErrNotFound)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status 429", ErrRateLimited)
	default:
		return &APIError{
			StatusCode: statusCode,
			Provider:   provider,
			Message:    fmt.Sprintf("HTTP %d", statusCode),
		}
	}
}

// requestJSON performs one paced GET and returns the validated JSON body.
func (s *Service) requestJSON(ctx context.Context, provider, rawURL string, params url.Values) (json.RawMessage, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	requestURL := rawURL
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := statusError(provider, resp.StatusCode); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed JSON body", ErrInvalidResponse)
	}
	return body, nil
}

// fetch reads through the cache and collapses transport errors to nil.
func (s *Service) fetch(ctx context.Context, provider, rawURL string, params url.Values) json.RawMessage {
	key := cacheKey(rawURL, params)
	if s.cache != nil {
		if payload := s.cache.Get(key); payload != nil {
			return payload
		}
	}

	payload, err := s.requestJSON(ctx, provider, rawURL, params)
	if err != nil {
		// A 404 is a routine miss, not a provider problem.
		switch {
		case IsNotFound(err):
			s.logger.Debug("no metadata record",
				"provider", provider, "url", rawURL)
		case IsRateLimited(err):
			s.logger.Warn("provider rate limit hit, increase the request pause",
				"provider", provider, "url", rawURL)
		default:
			s.logger.Warn("metadata lookup failed",
				"provider", provider, "url", rawURL, "error", err)
		}
		return nil
	}

	if s.cache != nil {
		s.cache.Put(key, payload)
	}
	return payload
}
