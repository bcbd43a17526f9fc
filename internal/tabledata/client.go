// Package tabledata is the HTTP client for the table-data endpoint that
// serves one rendered page of a result table.
package tabledata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	applog "github.com/maxviazov/query-explorer/internal/logger"
)

// Errors returned by FetchPage. Every failure wraps exactly one of them.
var (
	// ErrNetworkFailure covers transport errors and non-2xx responses.
	ErrNetworkFailure = errors.New("table data: network failure")

	// ErrMalformedResponse means the body was not the expected JSON document.
	ErrMalformedResponse = errors.New("table data: malformed response")
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "explorer_tabledata_requests_total",
	Help: "Table-data requests issued by the client by HTTP status",
}, []string{"status"})

// maxErrorBody bounds how much of an error response is kept for diagnostics.
const maxErrorBody = 512

// HTTPError describes a non-2xx answer from the backend.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// PageResponse is the decoded table-data payload.
type PageResponse struct {
	TableHTML    string `json:"table_html"`
	TotalPages   int    `json:"total_pages"`
	PageNumber   int    `json:"page_number,omitempty"`
	TotalRecords int    `json:"total_records,omitempty"`
}

// Config holds client settings.
type Config struct {
	BaseURL string
	// Timeout applies to the whole request; zero leaves it to ctx.
	Timeout time.Duration
}

// Client fetches table pages over HTTP.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// New builds a client for the backend at cfg.BaseURL.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base url is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	return &Client{
		base:       base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     applog.Component(logger, "tabledata", "client"),
	}, nil
}

// WithHTTPClient swaps the underlying http.Client (tests, custom transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// FetchPage requests page of tableID with recordsPerPage rows per page.
func (c *Client) FetchPage(ctx context.Context, tableID string, page, recordsPerPage int) (PageResponse, error) {
	endpoint := c.base.JoinPath("get_table_data")
	q := endpoint.Query()
	q.Set("table_name", tableID)
	q.Set("page_number", strconv.Itoa(page))
	q.Set("records_per_page", strconv.Itoa(recordsPerPage))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return PageResponse{}, fmt.Errorf("%w: build request: %v", ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues("transport_error").Inc()
		return PageResponse{}, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		httpErr := &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		c.logger.Warn().
			Str("table", tableID).
			Int("page", page).
			Int("status_code", resp.StatusCode).
			Msg("table data request rejected")
		return PageResponse{}, fmt.Errorf("%w: %w", ErrNetworkFailure, httpErr)
	}

	return decodePage(resp.Body)
}

// decodePage parses a table-data document and checks its required fields.
func decodePage(r io.Reader) (PageResponse, error) {
	var raw struct {
		TableHTML    *string `json:"table_html"`
		TotalPages   *int    `json:"total_pages"`
		PageNumber   int     `json:"page_number"`
		TotalRecords int     `json:"total_records"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return PageResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.TableHTML == nil {
		return PageResponse{}, fmt.Errorf("%w: missing table_html", ErrMalformedResponse)
	}
	if raw.TotalPages == nil {
		return PageResponse{}, fmt.Errorf("%w: missing total_pages", ErrMalformedResponse)
	}
	if *raw.TotalPages < 0 {
		return PageResponse{}, fmt.Errorf("%w: negative total_pages %d", ErrMalformedResponse, *raw.TotalPages)
	}
	return PageResponse{
		TableHTML:    *raw.TableHTML,
		TotalPages:   *raw.TotalPages,
		PageNumber:   raw.PageNumber,
		TotalRecords: raw.TotalRecords,
	}, nil
}
