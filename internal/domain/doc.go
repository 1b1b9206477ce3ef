// Package domain models Kandilli Observatory earthquake reports and the rules
// that decide which of them are worth a chat notification.
//
// # Data Source
//
// Reports come from the Kandilli Observatory and Earthquake Research Institute
// (KOERI) live list, republished as JSON by https://api.orhanaydogdu.com.tr.
// One GET returns the most recent events:
//
//	{"status": true, "result": [{"mag": 4.2, "title": "SINDIRGI (BALIKESIR)",
//	  "date_time": "2024-04-26 15:10:03", "depth": 7.1,
//	  "geojson": {"type": "Point", "coordinates": [28.17, 39.21]}}]}
//
// # Feed Conventions
//
// Coordinates:
//
//	GeoJSON order, longitude first: coordinates[0] is longitude and
//	coordinates[1] is latitude. Swapping them moves Anatolian events into
//	the Indian Ocean, so the order is fixed in [ParseRawEvent].
//
// Time format:
//
//	"YYYY-MM-DD HH:MM:SS" with no zone. Kandilli publishes Turkish civil time
//	(UTC+3, no DST since 2016). Timestamps are interpreted in the same fixed
//	offset as the run's "now"; no conversion happens during parsing.
//
// Magnitude:
//
//	Usually a JSON number, occasionally a numeric string. Both are accepted.
//	Depth is in kilometres.
//
// # Evaluation
//
// An event triggers an immediate alert when it is within MaxDistanceKm of the
// observer, at least MinMagnitude, and no older than RecencyWindow (see
// [IsAlert]). Alerts are ranked by magnitude and capped at DetailedAlertLimit
// individual messages; the rest are summarised ([Rank]). Once a day, inside
// the [DailyGate] window, a 24-hour rollup is computed ([Aggregate]).
package domain
