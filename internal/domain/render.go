package domain

import (
	"fmt"
	"strings"
)

// AlertMessage renders the detailed notification for a single event. The same
// text is used as a photo caption and as a plain message.
func AlertMessage(e Event, distanceKm float64) string {
	var b strings.Builder
	b.WriteString("🚨 EARTHQUAKE ALERT\n\n")
	fmt.Fprintf(&b, "📍 Location: %s\n", e.Title)
	fmt.Fprintf(&b, "📏 Distance: %d km away\n", int(distanceKm))
	fmt.Fprintf(&b, "📉 Magnitude: %.1f\n", e.Magnitude)
	fmt.Fprintf(&b, "🕒 Time: %s\n", e.OccurredAt.Format(FeedTimeLayout))
	fmt.Fprintf(&b, "⚠ Depth: %.1f km", e.DepthKm)
	return b.String()
}

// OverflowMessage summarises alerts that did not get their own message.
func OverflowMessage(count int, maxMagnitude float64) string {
	return fmt.Sprintf("➕ %d more earthquake(s) matched the alert criteria (strongest: %.1f).", count, maxMagnitude)
}

// DailyReportMessage renders the 24-hour rollup.
func DailyReportMessage(stats DailyStats, radiusKm float64) string {
	var b strings.Builder
	b.WriteString("📊 DAILY EARTHQUAKE REPORT\n\n")
	fmt.Fprintf(&b, "Last 24 hours within %d km:\n", int(radiusKm))
	fmt.Fprintf(&b, "🔢 Count: %d\n", stats.Count)
	fmt.Fprintf(&b, "📈 Strongest: %.1f\n", stats.MaxMagnitude)
	fmt.Fprintf(&b, "📉 Average: %.2f", stats.AverageMagnitude)
	return b.String()
}

// FeedErrorMessage tells the operator that this run could not evaluate anything.
func FeedErrorMessage(err error) string {
	return fmt.Sprintf("❌ Earthquake feed unavailable, no alerts were evaluated this run: %v", err)
}
