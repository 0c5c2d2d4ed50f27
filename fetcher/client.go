// Package fetcher retrieves the patient collection from the upstream endpoint.
package fetcher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/giygas/patient-dashboard/interfaces"
	"github.com/giygas/patient-dashboard/logging"
	"github.com/giygas/patient-dashboard/metrics"
	"github.com/giygas/patient-dashboard/patients"
	"golang.org/x/text/encoding/charmap"
)

// Compile-time check to ensure Client implements PatientSource
var _ interfaces.PatientSource = (*Client)(nil)

// Config is the fixed upstream configuration for one deployment
type Config struct {
	URL        string
	Credential string // "user:password"
}

// NetworkError reports a transport failure or a non-2xx response.
// StatusCode is 0 when no response was received.
type NetworkError struct {
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("network error: %v", e.Err)
	}
	return fmt.Sprintf("network error: %d", e.StatusCode)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError reports a response body that is not exactly one JSON array of
// patients. Decoding is strictly typed: a field of the wrong type in any
// record, such as "age":"45", fails the whole collection.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Client fetches the patient list with a static Basic credential
type Client struct {
	httpClient *http.Client
	url        string
	authHeader string
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a client for cfg. The default http.Client has no
// timeout; the caller's context bounds each fetch.
func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		url:        cfg.URL,
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Credential)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPatients performs a single GET and decodes the patient array
func (c *Client) FetchPatients(ctx context.Context) ([]patients.Patient, error) {
	start := time.Now()
	records, err := c.fetch(ctx)

	outcome := "success"
	var netErr *NetworkError
	var parseErr *ParseError
	switch {
	case errors.As(err, &netErr):
		outcome = "network_error"
	case errors.As(err, &parseErr):
		outcome = "parse_error"
	case err != nil:
		outcome = "error"
	}
	metrics.RecordUpstreamFetch(outcome, time.Since(start))

	if err != nil {
		logging.Warn("Patient fetch failed", "url", c.url, "outcome", outcome, "error", err)
		return nil, err
	}

	logging.Debug("Patient fetch completed", "url", c.url, "records", len(records), "duration_ms", time.Since(start).Milliseconds())
	return records, nil
}

func (c *Client) fetch(ctx context.Context) ([]patients.Patient, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &NetworkError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return decodePatients(body)
}

// decodePatients parses body as a single JSON array of patients. Trailing
// data after the array is rejected. Bodies that are not valid UTF-8 are read
// as ISO-8859-1.
func decodePatients(body []byte) ([]patients.Patient, error) {
	if !utf8.Valid(body) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(body)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("failed to decode ISO-8859-1 body: %w", err)}
		}
		body = decoded
	}

	var records []patients.Patient
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &ParseError{Err: err}
	}
	return records, nil
}
