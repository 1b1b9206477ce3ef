package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/couchcryptid/quake-alert-service/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// PublishTimeout bounds the outbox write so an unreachable broker cannot
// hold the run open.
const PublishTimeout = 10 * time.Second

// FeedClient returns the current contents of the earthquake feed.
type FeedClient interface {
	FetchEvents(ctx context.Context) ([]domain.RawEvent, error)
}

// Publisher receives every notification attempted during a run.
type Publisher interface {
	PublishBatch(ctx context.Context, notifications []domain.Notification) error
}

// Settings are the evaluation parameters of a run.
type Settings struct {
	Observer   domain.Observer
	Thresholds domain.Thresholds
	DailyGate  domain.DailyGate
	Location   *time.Location
}

// Report summarises one pass.
type Report struct {
	RunID         string
	Now           time.Time
	FeedErr       error
	Fetched       int
	Dropped       int
	Matched       int
	Detailed      int
	Overflow      int
	Daily         *domain.DailyStats // nil when the gate was closed
	Notifications []domain.Notification
}

// Runner performs a single fetch-evaluate-dispatch pass.
type Runner struct {
	feed       FeedClient
	dispatcher *Dispatcher
	publisher  Publisher
	clock      clockwork.Clock
	settings   Settings
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewRunner creates a Runner. The publisher may be nil.
func NewRunner(feed FeedClient, d *Dispatcher, p Publisher, clock clockwork.Clock, s Settings, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if s.Location == nil {
		s.Location = time.UTC
	}
	return &Runner{
		feed:       feed,
		dispatcher: d,
		publisher:  p,
		clock:      clock,
		settings:   s,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run executes one pass. The clock is read once and that instant drives both
// the alert filter and the daily gate. A feed failure produces a single error
// notification and nothing else. Run itself never fails; problems are logged,
// counted and reflected in the Report.
func (r *Runner) Run(ctx context.Context) Report {
	start := r.clock.Now()
	report := Report{
		RunID: uuid.NewString(),
		Now:   start.In(r.settings.Location),
	}
	logger := r.logger.With("run_id", report.RunID)
	logger.Info("run started",
		"now", report.Now.Format(domain.FeedTimeLayout),
		"max_distance_km", r.settings.Thresholds.MaxDistanceKm,
		"min_magnitude", r.settings.Thresholds.MinMagnitude,
	)

	defer func() {
		r.metrics.RunDuration.Observe(r.clock.Since(start).Seconds())
		r.metrics.LastRunTimestamp.Set(float64(r.clock.Now().Unix()))
	}()

	raws, err := r.fetch(ctx)
	if err != nil {
		logger.Error("feed fetch failed", "error", err)
		r.metrics.FeedErrors.Inc()
		report.FeedErr = err
		report.Notifications = append(report.Notifications, r.dispatcher.FeedError(ctx, err, report.Now))
		r.finish(ctx, logger, &report)
		return report
	}

	report.Fetched = len(raws)
	r.metrics.EventsFetched.Add(float64(len(raws)))

	events, dropped := Normalize(raws, r.settings.Location, logger)
	report.Dropped = dropped
	r.metrics.EventsDropped.Add(float64(dropped))

	r.evaluateAlerts(ctx, logger, events, &report)
	r.evaluateDaily(ctx, logger, events, &report)

	r.finish(ctx, logger, &report)
	return report
}

func (r *Runner) fetch(ctx context.Context) ([]domain.RawEvent, error) {
	start := r.clock.Now()
	defer func() {
		r.metrics.FeedDuration.Observe(r.clock.Since(start).Seconds())
	}()
	return r.feed.FetchEvents(ctx)
}

func (r *Runner) evaluateAlerts(ctx context.Context, logger *slog.Logger, events []domain.Event, report *Report) {
	th := r.settings.Thresholds
	alerts := domain.FilterAlerts(events, r.settings.Observer, th, report.Now)
	batch := domain.Rank(alerts, th.DetailedAlertLimit)

	report.Matched = batch.Len()
	report.Detailed = len(batch.Detailed)
	report.Overflow = len(batch.Overflow)
	r.metrics.AlertsMatched.Add(float64(batch.Len()))
	r.metrics.AlertOverflow.Add(float64(len(batch.Overflow)))

	if batch.Len() == 0 {
		logger.Info("no earthquakes matched the alert criteria")
		return
	}
	logger.Info("earthquakes matched",
		"matched", batch.Len(),
		"detailed", len(batch.Detailed),
		"overflow", len(batch.Overflow),
	)
	report.Notifications = append(report.Notifications, r.dispatcher.Alerts(ctx, batch, report.Now)...)
}

func (r *Runner) evaluateDaily(ctx context.Context, logger *slog.Logger, events []domain.Event, report *Report) {
	if !r.settings.DailyGate.Open(report.Now) {
		return
	}

	stats := domain.Aggregate(events, r.settings.Observer, r.settings.Thresholds.MaxDistanceKm, report.Now)
	report.Daily = &stats
	r.metrics.DailyReports.Inc()
	logger.Info("daily report computed",
		"count", stats.Count,
		"max_magnitude", stats.MaxMagnitude,
		"average_magnitude", stats.AverageMagnitude,
	)
	report.Notifications = append(report.Notifications,
		r.dispatcher.DailyReport(ctx, stats, r.settings.Thresholds.MaxDistanceKm, report.Now))
}

// finish stamps the run id on the notifications and publishes them.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, report *Report) {
	for i := range report.Notifications {
		report.Notifications[i].RunID = report.RunID
	}

	if r.publisher != nil && len(report.Notifications) > 0 {
		pubCtx, cancel := context.WithTimeout(ctx, PublishTimeout)
		err := r.publisher.PublishBatch(pubCtx, report.Notifications)
		cancel()
		if err != nil {
			logger.Error("publish notifications failed", "error", err)
		}
	}

	logger.Info("run finished",
		"fetched", report.Fetched,
		"dropped", report.Dropped,
		"matched", report.Matched,
		"notifications", len(report.Notifications),
		"daily_report", report.Daily != nil,
		"feed_error", report.FeedErr != nil,
	)
}
