package kafka

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/config"
	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 5, 0, 0, time.FixedZone("UTC+03:00", 3*3600))
	n := domain.Notification{
		RunID:     "run-1",
		Kind:      domain.KindOverflow,
		Text:      "➕ 2 more",
		Delivered: true,
		CreatedAt: now,
	}

	msg, err := serializeToMessage(n)
	require.NoError(t, err)

	assert.Equal(t, []byte("run-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"kind":"overflow"`)
	assert.Contains(t, string(msg.Value), `"delivered":true`)
	assert.NotContains(t, string(msg.Value), `"error"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("overflow"), msg.Headers[0].Value)
	assert.Equal(t, "created_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-05-01T09:05:00+03:00"), msg.Headers[1].Value)
}

func TestSerializeToMessage_FailedSend(t *testing.T) {
	msg, err := serializeToMessage(domain.Notification{
		RunID: "run-2",
		Kind:  domain.KindAlert,
		Error: "telegram credentials not configured",
	})
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"error":"telegram credentials not configured"`)
	assert.Contains(t, string(msg.Value), `"delivered":false`)
}

func TestWriter_PublishBatch_Empty(t *testing.T) {
	// No broker is reachable at this address; an empty batch must not dial.
	w := NewWriter(&config.Config{KafkaBrokers: []string{"127.0.0.1:1"}, KafkaTopic: "t"},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer w.Close()

	require.NoError(t, w.PublishBatch(context.Background(), nil))
}
