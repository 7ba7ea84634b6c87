// Package api talks to the remote knowledge service over its two JSON
// endpoints, POST /ingest and POST /query.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragclient/internal/domain"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Client is an HTTP client implementing domain.RAGAPI.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Config configures the client.
type Config struct {
	BaseURL string
	// Timeout bounds a whole request. Zero leaves it to the transport.
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

var _ domain.RAGAPI = (*Client)(nil)

// NewClient validates the base URL and returns a client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: base, client: hc, logger: logger}, nil
}

// BaseURL returns the normalised service address.
func (c *Client) BaseURL() string { return c.baseURL }

// Ingest submits text for indexing.
func (c *Client) Ingest(ctx context.Context, text string) (domain.IngestReceipt, error) {
	var out ingestResponse
	if err := c.postJSON(ctx, "/ingest", ingestRequest{Text: text}, &out); err != nil {
		return domain.IngestReceipt{}, err
	}
	if out.ChunksProcessed == nil {
		return domain.IngestReceipt{}, &domain.MalformedResponseError{Err: errors.New("missing chunks_processed")}
	}
	return domain.IngestReceipt{
		ChunksProcessed: *out.ChunksProcessed,
		Message:         out.Message,
		ProcessingTime:  out.ProcessingTime,
	}, nil
}

// Query asks a question and returns the cited answer.
func (c *Client) Query(ctx context.Context, query string) (domain.AnswerResult, error) {
	var out queryResponse
	if err := c.postJSON(ctx, "/query", queryRequest{Query: query}, &out); err != nil {
		return domain.AnswerResult{}, err
	}
	if out.Answer == nil {
		return domain.AnswerResult{}, &domain.MalformedResponseError{Err: errors.New("missing answer")}
	}
	if out.Sources == nil {
		return domain.AnswerResult{}, &domain.MalformedResponseError{Err: errors.New("missing sources")}
	}
	sources := make([]domain.SourceCitation, len(*out.Sources))
	for i, s := range *out.Sources {
		sources[i] = domain.SourceCitation{
			CitationID: s.CitationID,
			SourceName: s.Source,
			Excerpt:    s.Content,
		}
	}
	return domain.AnswerResult{
		Answer:         *out.Answer,
		Sources:        sources,
		ProcessingTime: out.ProcessingTime,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return &domain.TransportError{Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	logger := c.logger.With("path", path, "request_id", reqID)
	logger.Debug("sending request", "bytes", len(data))
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Debug("request failed", "error", err, "elapsed", time.Since(start))
		return &domain.TransportError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.TransportError{Err: err}
	}
	logger.Debug("response received", "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.ServiceError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			Detail:     decodeDetail(payload),
		}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &domain.MalformedResponseError{Err: err}
	}
	return nil
}

// reasonPhrase returns the status line text after the code, e.g. "Not Found"
// for "404 Not Found".
func reasonPhrase(resp *http.Response) string {
	return strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
}

// decodeDetail extracts the optional detail field of an error body. Bodies
// that are not JSON objects carry no detail, and neither do the falsy
// values null, false, 0 and "".
func decodeDetail(payload []byte) string {
	var e errorResponse
	if err := json.Unmarshal(payload, &e); err != nil || falsy(e.Detail) {
		return ""
	}
	var detail domain.DisplayValue
	if err := json.Unmarshal(e.Detail, &detail); err != nil {
		return ""
	}
	return detail.String()
}

func falsy(raw json.RawMessage) bool {
	switch v := strings.TrimSpace(string(raw)); v {
	case "", "null", "false", `""`:
		return true
	default:
		f, err := strconv.ParseFloat(v, 64)
		return err == nil && f == 0
	}
}
