package mapbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testToken         = "test-token"
	contentTypePNG    = "image/png"
	headerContentType = "Content-Type"
)

var (
	istanbul = domain.Geo{Lat: 41.0082, Lon: 28.9784}
	sindirgi = domain.Geo{Lat: 39.2400, Lon: 28.1750}
	fakePNG  = []byte("\x89PNG\r\n\x1a\nfake")
)

func testClient(baseURL string) *Client {
	c := NewClient(testToken, "", 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = baseURL
	return c
}

func TestClient_RenderMap_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t,
			"/mapbox/streets-v12/static/pin-s-home+3b82f6(28.9784,41.0082),pin-l-danger+ef4444(28.1750,39.2400)/auto/600x400",
			r.URL.Path)
		assert.Equal(t, testToken, r.URL.Query().Get("access_token"))
		assert.Equal(t, "60", r.URL.Query().Get("padding"))

		w.Header().Set(headerContentType, contentTypePNG)
		_, _ = w.Write(fakePNG)
	}))
	defer srv.Close()

	img, err := testClient(srv.URL).RenderMap(context.Background(), istanbul, sindirgi)
	require.NoError(t, err)
	assert.Equal(t, fakePNG, img)
}

func TestClient_RenderMap_CustomStyle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/mapbox/dark-v11/static/")
		w.Header().Set(headerContentType, contentTypePNG)
		_, _ = w.Write(fakePNG)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.style = "mapbox/dark-v11"

	_, err := c.RenderMap(context.Background(), istanbul, sindirgi)
	require.NoError(t, err)
}

func TestClient_RenderMap_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not Authorized - Invalid Token"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RenderMap(context.Background(), istanbul, sindirgi)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_RenderMap_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypePNG)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RenderMap(context.Background(), istanbul, sindirgi)
	assert.True(t, errors.Is(err, ErrNoImage))
}

func TestClient_RenderMap_NotAnImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).RenderMap(context.Background(), istanbul, sindirgi)
	assert.True(t, errors.Is(err, ErrNoImage))
}

func TestClient_RenderMap_MissingToken(t *testing.T) {
	c := NewClient("", "", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.RenderMap(context.Background(), istanbul, sindirgi)
	require.Error(t, err)
}

func TestClient_RenderMap_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(200 * time.Millisecond):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.RenderMap(context.Background(), istanbul, sindirgi)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), testToken)
}
