package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFeed struct {
	raws  []domain.RawEvent
	err   error
	calls int
}

func (m *mockFeed) FetchEvents(_ context.Context) ([]domain.RawEvent, error) {
	m.calls++
	return m.raws, m.err
}

type sentMessage struct {
	text  string
	photo []byte
}

// mockMessenger records every send. failAt makes the n-th send (0-based,
// counting texts and photos together) return the given error.
type mockMessenger struct {
	sent   []sentMessage
	failAt map[int]error
}

func (m *mockMessenger) SendText(_ context.Context, text string) error {
	return m.record(sentMessage{text: text})
}

func (m *mockMessenger) SendPhoto(_ context.Context, photo []byte, caption string) error {
	return m.record(sentMessage{text: caption, photo: photo})
}

func (m *mockMessenger) record(msg sentMessage) error {
	i := len(m.sent)
	m.sent = append(m.sent, msg)
	return m.failAt[i]
}

func (m *mockMessenger) texts() []string {
	out := make([]string, len(m.sent))
	for i, s := range m.sent {
		out[i] = s.text
	}
	return out
}

type mockMaps struct {
	img   []byte
	err   error
	calls []domain.Geo
}

func (m *mockMaps) RenderMap(_ context.Context, _, epicentre domain.Geo) ([]byte, error) {
	m.calls = append(m.calls, epicentre)
	return m.img, m.err
}

type mockPublisher struct {
	batches   [][]domain.Notification
	deadlines []time.Time
	err       error
}

func (m *mockPublisher) PublishBatch(ctx context.Context, ns []domain.Notification) error {
	m.batches = append(m.batches, ns)
	deadline, _ := ctx.Deadline()
	m.deadlines = append(m.deadlines, deadline)
	return m.err
}

// --- fixtures ---

var (
	turkey   = time.FixedZone("UTC+03:00", 3*3600)
	observer = domain.Observer{Geo: domain.Geo{Lat: 41.0082, Lon: 28.9784}}
	// nearby is roughly 20 km from the observer.
	nearby = domain.Geo{Lat: 40.85, Lon: 29.1}
	// distant is well outside the default 500 km radius.
	distant = domain.Geo{Lat: 37.0, Lon: 40.0}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// quakeRecord builds a feed record in the Kandilli wire shape.
func quakeRecord(t *testing.T, mag float64, title string, at time.Time, geo domain.Geo) domain.RawEvent {
	t.Helper()
	rec := map[string]any{
		"mag":       mag,
		"title":     title,
		"date_time": at.In(turkey).Format(domain.FeedTimeLayout),
		"depth":     7.5,
		"geojson": map[string]any{
			"type":        "Point",
			"coordinates": []float64{geo.Lon, geo.Lat},
		},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return domain.RawEvent{Value: data}
}

func feedOf(raws ...domain.RawEvent) []domain.RawEvent {
	for i := range raws {
		raws[i].Position = i
	}
	return raws
}

func title(i int) string {
	return fmt.Sprintf("QUAKE-%d", i)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}
