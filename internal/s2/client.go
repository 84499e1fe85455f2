package s2

import (
	"bytes"
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
)

const (
	// BaseURL is the Semantic Scholar Academic Graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// RecommendationsURL is the Semantic Scholar recommendations API base URL.
	RecommendationsURL = "https://api.semanticscholar.org/recommendations/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 1 request per second for keyed access per S2 documentation.
	RateLimit = 1.0

	// BatchLimit is the number of identifiers sent per batch request.
	BatchLimit = 50

	// DefaultBatchPause is awaited between consecutive batch requests.
	DefaultBatchPause = time.Second

	// RecommendationFields are requested for recommended papers.
	RecommendationFields = "externalIds,title,authors,abstract,year,publicationDate,referenceCount,citationCount,publicationVenue,openAccessPdf"

	// DefaultRecommendationsLimit bounds the recommendations returned upstream.
	DefaultRecommendationsLimit = 100

	// DefaultSearchLimit and MaxSearchLimit bound keyword search results.
	DefaultSearchLimit = 5
	MaxSearchLimit     = 100

	// maxErrorBody bounds how much of an error response is kept in APIError.
	maxErrorBody = 300
)

// Client is a rate-limited HTTP client for the Semantic Scholar API.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	recsURL    string
	batchPause time.Duration
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom graph API base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithRecommendationsURL sets a custom recommendations API base URL (for testing).
func WithRecommendationsURL(u string) ClientOption {
	return func(c *Client) {
		c.recsURL = strings.TrimRight(u, "/")
	}
}

// WithBatchPause sets the pause between consecutive batch requests.
func WithBatchPause(d time.Duration) ClientOption {
	return func(c *Client) {
		c.batchPause = d
	}
}

// WithRateLimit sets the request rate; zero or negative disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new Semantic Scholar API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
		recsURL:    RecommendationsURL,
		batchPause: DefaultBatchPause,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Check for API key in environment
	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchBatch looks up details for up to BatchLimit papers in a single request.
// The result is aligned with ids; papers unknown upstream are nil entries.
func (c *Client) FetchBatch(ctx context.Context, ids []string, mode FetchMode) ([]*S2Paper, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("fields", FieldsParam(mode))
	endpoint := c.baseURL + "/paper/batch?" + params.Encode()

	var papers []*S2Paper
	if err := c.post(ctx, "paper_batch", endpoint, PaperBatchRequest{IDs: ids}, &papers); err != nil {
		return nil, err
	}
	batchIDsTotal.Add(float64(len(ids)))

	if len(papers) != len(ids) {
		return nil, fmt.Errorf("%w: requested %d papers, got %d", ErrInvalidResponse, len(ids), len(papers))
	}
	return papers, nil
}

// FetchBatched looks up any number of papers, BatchLimit ids per request.
// Chunks are fetched sequentially with the configured pause between them and
// the results concatenated in input order. Any chunk failure fails the whole
// call with a *BatchError; partial results are discarded.
func (c *Client) FetchBatched(ctx context.Context, ids []string, mode FetchMode) ([]*S2Paper, error) {
	results := make([]*S2Paper, 0, len(ids))
	for batch, start := 0, 0; start < len(ids); batch, start = batch+1, start+BatchLimit {
		end := min(start+BatchLimit, len(ids))

		if batch > 0 {
			if err := Pause(ctx, c.batchPause); err != nil {
				return nil, &BatchError{Batch: batch, Start: start, End: end, Err: err}
			}
		}

		c.logger.Debug("fetching paper batch", "batch", batch, "size", end-start, "mode", string(mode))
		papers, err := c.FetchBatch(ctx, ids[start:end], mode)
		if err != nil {
			return nil, &BatchError{Batch: batch, Start: start, End: end, Err: err}
		}
		results = append(results, papers...)
	}
	return results, nil
}

// Recommendations returns papers recommended for a set of positive example papers.
func (c *Client) Recommendations(ctx context.Context, positiveIDs []string, limit int) ([]S2Paper, error) {
	if len(positiveIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultRecommendationsLimit
	}

	params := url.Values{}
	params.Set("fields", RecommendationFields)
	params.Set("limit", fmt.Sprint(limit))
	endpoint := c.recsURL + "/papers?" + params.Encode()

	req := RecommendationsRequest{PositivePaperIDs: positiveIDs, NegativePaperIDs: []string{}}
	var resp RecommendationsResponse
	if err := c.post(ctx, "recommendations", endpoint, req, &resp); err != nil {
		return nil, err
	}
	return resp.RecommendedPapers, nil
}

// SearchPapers returns the papers best matching a keyword query, most relevant first.
// A non-positive limit means DefaultSearchLimit; limits above MaxSearchLimit are capped.
func (c *Client) SearchPapers(ctx context.Context, query string, limit int) ([]S2Paper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", fmt.Sprint(limit))
	params.Set("fields", strings.Join(DirectFields, ","))
	endpoint := c.baseURL + "/paper/search?" + params.Encode()

	var resp SearchResponse
	if err := c.send(ctx, "paper_search", http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	c.logger.Debug("paper search", "query", query, "total", resp.Total, "returned", len(resp.Data))
	return resp.Data, nil
}

// post sends a JSON body and decodes a JSON response into out.
func (c *Client) post(ctx context.Context, name, endpoint string, body, out any) error {
	return c.send(ctx, name, http.MethodPost, endpoint, body, out)
}

// send issues one rate-limited request and decodes a JSON response into out.
// A nil body sends no payload.
func (c *Client) send(ctx context.Context, name, method, endpoint string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		requestsTotal.WithLabelValues(name, statusLabel(err)).Inc()
		requestDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrInvalidResponse, name, err)
	}
	return nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := readErrorBody(resp.Body)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthError, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	default:
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
}

// readErrorBody extracts a short message from an error response.
func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody+1))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var apiMsg struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &apiMsg) == nil {
		if apiMsg.Error != "" {
			return apiMsg.Error
		}
		if apiMsg.Message != "" {
			return apiMsg.Message
		}
	}

	msg := strings.TrimSpace(string(data))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}

// Pause blocks for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
