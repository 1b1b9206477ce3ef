package domain

import "time"

// DailyWindow is how far back the daily rollup looks.
const DailyWindow = 24 * time.Hour

// DailyGate is the local time-of-day window in which the rollup is sent.
// A window rather than an exact minute absorbs scheduler jitter.
type DailyGate struct {
	Hour   int           `yaml:"hour"`
	Window time.Duration `yaml:"window"` // minutes past Hour, inclusive
}

// DefaultDailyGate opens from 09:00 through 09:20.
func DefaultDailyGate() DailyGate {
	return DailyGate{Hour: 9, Window: 20 * time.Minute}
}

// Open reports whether now (already in the observer's local offset) falls
// inside the gate.
func (g DailyGate) Open(now time.Time) bool {
	if now.Hour() != g.Hour {
		return false
	}
	return time.Duration(now.Minute())*time.Minute <= g.Window
}

// Aggregate computes count, maximum and mean magnitude over events within
// maxDistanceKm of the observer and at most DailyWindow old. It ignores the
// alerting magnitude and recency thresholds. The average is 0 when nothing
// qualifies.
func Aggregate(events []Event, observer Observer, maxDistanceKm float64, now time.Time) DailyStats {
	var stats DailyStats
	var sum float64

	for _, e := range events {
		if !(observer.DistanceKm(e) <= maxDistanceKm && now.Sub(e.OccurredAt) <= DailyWindow) {
			continue
		}
		if stats.Count == 0 || e.Magnitude > stats.MaxMagnitude {
			stats.MaxMagnitude = e.Magnitude
		}
		sum += e.Magnitude
		stats.Count++
	}

	if stats.Count > 0 {
		stats.AverageMagnitude = sum / float64(stats.Count)
	}
	return stats
}
