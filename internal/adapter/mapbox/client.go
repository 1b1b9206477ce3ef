package mapbox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
)

// DefaultStyle is the map style used when none is configured.
const DefaultStyle = "mapbox/streets-v12"

// ErrNoImage is returned when the API answers but does not hand back an image.
var ErrNoImage = errors.New("mapbox returned no image")

const (
	imageSize    = "600x400"
	imagePadding = "60"
	// maxImageBytes bounds the body read; Static Images tops out well below it.
	maxImageBytes = 8 << 20
)

// Client renders static map images through the Mapbox Static Images API.
type Client struct {
	token      string
	style      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Mapbox static map client.
func NewClient(token, style string, timeout time.Duration, logger *slog.Logger) *Client {
	if style == "" {
		style = DefaultStyle
	}
	return &Client{
		token: token,
		style: style,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/styles/v1",
		logger:  logger,
	}
}

// RenderMap returns a PNG showing the observer and the epicentre, framed to
// fit both pins.
func (c *Client) RenderMap(ctx context.Context, observer, epicentre domain.Geo) ([]byte, error) {
	if c.token == "" {
		return nil, errors.New("mapbox token not set")
	}

	// Mapbox uses lon,lat order.
	overlay := strings.Join([]string{
		fmt.Sprintf("pin-s-home+3b82f6(%.4f,%.4f)", observer.Lon, observer.Lat),
		fmt.Sprintf("pin-l-danger+ef4444(%.4f,%.4f)", epicentre.Lon, epicentre.Lat),
	}, ",")
	u := fmt.Sprintf("%s/%s/static/%s/auto/%s", c.baseURL, c.style, overlay, imageSize)
	params := url.Values{
		"access_token": {c.token},
		"padding":      {imagePadding},
	}

	return c.doRequest(ctx, u+"?"+params.Encode())
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL carries the access token.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("static map request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: content type %q", ErrNoImage, ct)
	}

	img, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(img) == 0 {
		return nil, ErrNoImage
	}

	c.logger.Debug("static map rendered", "bytes", len(img))
	return img, nil
}
