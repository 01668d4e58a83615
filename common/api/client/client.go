package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/monobilisim/logdesk/common"
	"github.com/monobilisim/logdesk/common/api/apierr"
	"github.com/monobilisim/logdesk/common/api/models"
	"github.com/rs/zerolog/log"
)

// Type aliases for commonly used types from models package
type (
	LogRecord         = models.LogRecord
	LogInput          = models.LogInput
	LogPage           = models.LogPage
	AggregateResponse = models.AggregateResponse
)

// RequestIDHeader carries a per-call id the server can log alongside ours.
const RequestIDHeader = "X-Request-ID"

type Client struct {
	URL        string
	HTTPClient *http.Client // Allows injection for testing
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		URL:        strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// ClientInit builds a client from the loaded common.Config.
func ClientInit() *Client {
	return New(common.Config.API.URL, common.Config.API.Timeout)
}

// hc returns the configured *http.Client, or http.DefaultClient if nil.
func (c *Client) hc() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// ListLogs calls the basic list endpoint.
func (c *Client) ListLogs(ctx context.Context, params map[string]string) (*LogPage, error) {
	var page LogPage
	if err := c.getJSON(ctx, "getLogs", "/logs/", params, apierr.KindNotFoundEmpty, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// QueryLogs calls the filtered list endpoint. A 404 is returned as an
// apierr.KindNotFoundEmpty error.
func (c *Client) QueryLogs(ctx context.Context, params map[string]string) (*LogPage, error) {
	var page LogPage
	if err := c.getJSON(ctx, "queryLogs", "/logs/query/", params, apierr.KindNotFoundEmpty, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AggregateLogs calls the aggregate endpoint. A 404 is returned as an
// apierr.KindNotFoundEmpty error.
func (c *Client) AggregateLogs(ctx context.Context, params map[string]string) (*AggregateResponse, error) {
	var agg AggregateResponse
	if err := c.getJSON(ctx, "getAggregatedLogs", "/logs/aggregate/", params, apierr.KindNotFoundEmpty, &agg); err != nil {
		return nil, err
	}
	return &agg, nil
}

// GetLog fetches one record. A 404 is apierr.KindNotFoundMissing.
func (c *Client) GetLog(ctx context.Context, id int) (*LogRecord, error) {
	var rec LogRecord
	op := fmt.Sprintf("getLog(%d)", id)
	if err := c.getJSON(ctx, op, recordPath(id), nil, apierr.KindNotFoundMissing, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateLog posts a new record and returns the server's copy.
func (c *Client) CreateLog(ctx context.Context, in LogInput) (*LogRecord, error) {
	return c.save(ctx, "createLog", http.MethodPost, "/logs/", in)
}

// UpdateLog replaces a record and returns the server's copy.
func (c *Client) UpdateLog(ctx context.Context, id int, in LogInput) (*LogRecord, error) {
	return c.save(ctx, fmt.Sprintf("updateLog(%d)", id), http.MethodPut, recordPath(id), in)
}

// DeleteLog removes a record.
func (c *Client) DeleteLog(ctx context.Context, id int) error {
	resp, err := c.do(ctx, fmt.Sprintf("deleteLog(%d)", id), http.MethodDelete, recordPath(id), nil, nil, apierr.KindNotFoundMissing)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// DownloadCSV streams the CSV export for params into w and returns the number
// of bytes written. A 404 here is a failure, not an empty export.
func (c *Client) DownloadCSV(ctx context.Context, params map[string]string, w io.Writer) (int64, error) {
	const op = "downloadCSV"
	resp, err := c.do(ctx, op, http.MethodGet, "/logs/download_csv/", params, nil, apierr.KindNotFoundMissing)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		log.Error().Err(err).Str("operation", op).Msg("Failed to stream CSV")
		return n, apierr.Transport(op, err)
	}
	return n, nil
}

func (c *Client) save(ctx context.Context, op, method, path string, in LogInput) (*LogRecord, error) {
	resp, err := c.do(ctx, op, method, path, nil, in, apierr.KindNotFoundMissing)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rec LogRecord
	if err := decode(op, resp, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, params map[string]string, notFound apierr.Kind, out interface{}) error {
	resp, err := c.do(ctx, op, http.MethodGet, path, params, nil, notFound)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(op, resp, out)
}

// do sends one request. Any non-2xx response is drained, closed and returned
// as an *apierr.Error; the caller owns the body of a successful response.
func (c *Client) do(ctx context.Context, op, method, path string, params map[string]string, body interface{}, notFound apierr.Kind) (*http.Response, error) {
	target := c.URL + path
	if len(params) > 0 {
		values := url.Values{}
		for k, v := range params {
			values.Set(k, v)
		}
		target += "?" + values.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			log.Error().Err(err).Str("operation", op).Msg("Failed to encode request body")
			return nil, apierr.RequestSetup(op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		log.Error().Err(err).Str("operation", op).Msg("Failed to create request")
		return nil, apierr.RequestSetup(op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().
		Str("operation", op).
		Str("method", method).
		Str("url", target).
		Str("request_id", requestID).
		Msg("Sending request")

	start := time.Now()
	resp, err := c.hc().Do(req)
	if err != nil {
		log.Error().
			Err(err).
			Str("operation", op).
			Str("request_id", requestID).
			Msg("API Error - No response")
		return nil, apierr.Transport(op, err)
	}

	log.Debug().
		Str("operation", op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Received response")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	apiErr := apierr.FromResponse(op, resp.StatusCode, data, notFound)

	ev := log.Error()
	if apiErr.Kind == apierr.KindNotFoundEmpty {
		ev = log.Debug()
	}
	ev.Str("operation", op).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Str("kind", apiErr.Kind.String()).
		Str("body", string(data)).
		Msg("API Error")

	return nil, apiErr
}

func decode(op string, resp *http.Response, out interface{}) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("operation", op).Msg("Failed to decode response")
		return &apierr.Error{
			Kind:      apierr.KindUnknownServer,
			Status:    resp.StatusCode,
			Operation: op,
			Message:   "Error: invalid response from server",
			Err:       err,
		}
	}
	return nil
}

func recordPath(id int) string {
	return "/logs/" + strconv.Itoa(id) + "/"
}
