package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
)

// Messenger delivers chat messages to the configured destination.
type Messenger interface {
	SendText(ctx context.Context, text string) error
	SendPhoto(ctx context.Context, photo []byte, caption string) error
}

// MapRenderer produces an image showing the observer and an epicentre.
type MapRenderer interface {
	RenderMap(ctx context.Context, observer, epicentre domain.Geo) ([]byte, error)
}

// Dispatcher renders notifications and hands them to the Messenger. A failed
// send is recorded and logged, and dispatch carries on with the next one.
type Dispatcher struct {
	messenger Messenger
	maps      MapRenderer
	observer  domain.Observer
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewDispatcher creates a Dispatcher. Pass a nil MapRenderer to send every
// detailed alert as text.
func NewDispatcher(m Messenger, maps MapRenderer, observer domain.Observer, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		messenger: m,
		maps:      maps,
		observer:  observer,
		logger:    logger,
		metrics:   metrics,
	}
}

// Alerts sends one message per detailed event, with a map when one can be
// rendered, followed by a single overflow summary if anything was left over.
func (d *Dispatcher) Alerts(ctx context.Context, batch domain.AlertBatch, now time.Time) []domain.Notification {
	out := make([]domain.Notification, 0, len(batch.Detailed)+1)

	for _, e := range batch.Detailed {
		out = append(out, d.alert(ctx, e, now))
	}

	if count, maxMag := batch.OverflowSummary(); count > 0 {
		out = append(out, d.text(ctx, domain.KindOverflow, domain.OverflowMessage(count, maxMag), now))
	}
	return out
}

// DailyReport sends the 24-hour rollup.
func (d *Dispatcher) DailyReport(ctx context.Context, stats domain.DailyStats, radiusKm float64, now time.Time) domain.Notification {
	return d.text(ctx, domain.KindDailyReport, domain.DailyReportMessage(stats, radiusKm), now)
}

// FeedError reports that the feed could not be read this run.
func (d *Dispatcher) FeedError(ctx context.Context, cause error, now time.Time) domain.Notification {
	return d.text(ctx, domain.KindFeedError, domain.FeedErrorMessage(cause), now)
}

// alert sends exactly one message for e: a photo with caption when a map is
// available, plain text otherwise. A failed photo upload is not retried as
// text.
func (d *Dispatcher) alert(ctx context.Context, e domain.Event, now time.Time) domain.Notification {
	distance := d.observer.DistanceKm(e)
	text := domain.AlertMessage(e, distance)

	img := d.renderMap(ctx, e)
	if img == nil {
		return d.text(ctx, domain.KindAlert, text, now)
	}

	n := domain.Notification{Kind: domain.KindAlert, Text: text, WithImage: true, CreatedAt: now}
	d.record(&n, d.messenger.SendPhoto(ctx, img, text), "title", e.Title, "distance_km", int(distance))
	return n
}

// renderMap returns nil whenever no usable image is available.
func (d *Dispatcher) renderMap(ctx context.Context, e domain.Event) []byte {
	if d.maps == nil {
		d.metrics.MapImages.WithLabelValues("disabled").Inc()
		return nil
	}

	img, err := d.maps.RenderMap(ctx, d.observer.Geo, e.Geo)
	switch {
	case err != nil:
		d.logger.Warn("map image unavailable, sending text", "title", e.Title, "error", err)
		d.metrics.MapImages.WithLabelValues("error").Inc()
		return nil
	case len(img) == 0:
		d.metrics.MapImages.WithLabelValues("empty").Inc()
		return nil
	}

	d.metrics.MapImages.WithLabelValues("success").Inc()
	return img
}

func (d *Dispatcher) text(ctx context.Context, kind domain.NotificationKind, text string, now time.Time) domain.Notification {
	n := domain.Notification{Kind: kind, Text: text, CreatedAt: now}
	d.record(&n, d.messenger.SendText(ctx, text))
	return n
}

func (d *Dispatcher) record(n *domain.Notification, err error, attrs ...any) {
	attrs = append(attrs, "kind", n.Kind, "with_image", n.WithImage)
	if err != nil {
		n.Error = err.Error()
		d.metrics.Notifications.WithLabelValues(string(n.Kind), "failed").Inc()
		d.logger.Error("notification send failed", append(attrs, "error", err)...)
		return
	}
	n.Delivered = true
	d.metrics.Notifications.WithLabelValues(string(n.Kind), "sent").Inc()
	d.logger.Info("notification sent", attrs...)
}
