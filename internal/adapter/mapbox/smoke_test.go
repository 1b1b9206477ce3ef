//go:build mapbox

package mapbox

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Mapbox API and require a valid MAPBOX_TOKEN env var.
// Run with: go test -tags=mapbox ./internal/adapter/mapbox/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		t.Fatal("MAPBOX_TOKEN must be set to run smoke tests")
	}
	return NewClient(token, DefaultStyle, 10*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSmoke_RenderMap(t *testing.T) {
	c := smokeClient(t)

	img, err := c.RenderMap(context.Background(), istanbul, sindirgi)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")), "expected a PNG")
}

func TestSmoke_RenderMap_InvalidToken(t *testing.T) {
	c := smokeClient(t)
	c.token = "pk.invalid"

	_, err := c.RenderMap(context.Background(), istanbul, sindirgi)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
