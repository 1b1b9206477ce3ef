package pipeline

import (
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-alert-service/internal/domain"
)

// Normalize parses every raw record and keeps the valid ones in feed order.
// Invalid records are dropped and counted; they never fail the run.
func Normalize(raws []domain.RawEvent, loc *time.Location, logger *slog.Logger) (events []domain.Event, dropped int) {
	events = make([]domain.Event, 0, len(raws))
	for _, raw := range raws {
		e, err := domain.ParseRawEvent(raw, loc)
		if err != nil {
			logger.Debug("dropping feed record", "position", raw.Position, "error", err)
			dropped++
			continue
		}
		events = append(events, e)
	}
	return events, dropped
}
