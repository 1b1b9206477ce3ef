package kandilli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
)

// ErrFeedStatus is returned when the feed answers 200 but flags the payload
// as unusable.
var ErrFeedStatus = errors.New("feed reported failure status")

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 16 << 20

// Client fetches the Kandilli live earthquake list.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client. timeout bounds the whole request,
// including reading the body.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchEvents returns the raw records of the live list in feed order. Records
// are not validated here. Any transport, status or decoding problem is
// returned as an error and no partial result is produced.
func (c *Client) FetchEvents(ctx context.Context) ([]domain.RawEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("feed API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var feed response
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if feed.Status == nil || !*feed.Status {
		return nil, ErrFeedStatus
	}
	if feed.Result == nil {
		return nil, fmt.Errorf("%w: result missing", ErrFeedStatus)
	}

	events := make([]domain.RawEvent, len(feed.Result))
	for i, v := range feed.Result {
		events[i] = domain.RawEvent{Value: v, Position: i}
	}

	c.logger.Debug("feed fetched", "records", len(events))
	return events, nil
}

// Kandilli API response envelope.

type response struct {
	Status *bool             `json:"status"`
	Result []json.RawMessage `json:"result"`
}
