package domain

import (
	"encoding/json"
	"time"
)

// RawEvent is one unprocessed element of the feed's result array.
type RawEvent struct {
	Value    json.RawMessage
	Position int // index in feed order
}

// RawQuakeRecord mirrors the Kandilli JSON object. Fields stay raw so that
// missing keys and type mismatches can be told apart during parsing.
type RawQuakeRecord struct {
	Mag      json.RawMessage `json:"mag"`
	Title    json.RawMessage `json:"title"`
	DateTime json.RawMessage `json:"date_time"`
	Depth    json.RawMessage `json:"depth"`
	GeoJSON  *struct {
		Coordinates json.RawMessage `json:"coordinates"`
	} `json:"geojson"`
}

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is the validated form of a single earthquake report.
type Event struct {
	Magnitude  float64   `json:"magnitude"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
	DepthKm    float64   `json:"depth_km"`
	Geo        Geo       `json:"geo"`
}

// Observer is the fixed point every event is evaluated against.
type Observer struct {
	Geo
}

// DistanceKm returns the great-circle distance from the observer to the event.
func (o Observer) DistanceKm(e Event) float64 {
	return Distance(o.Geo, e.Geo)
}

// Thresholds controls which events become immediate alerts.
type Thresholds struct {
	MinMagnitude       float64       `yaml:"min_magnitude"`
	MaxDistanceKm      float64       `yaml:"max_distance_km"`
	RecencyWindow      time.Duration `yaml:"recency_window"`
	DetailedAlertLimit int           `yaml:"detailed_alert_limit"`
}

// DefaultThresholds returns the stock alerting thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinMagnitude:       4.0,
		MaxDistanceKm:      500,
		RecencyWindow:      20 * time.Minute,
		DetailedAlertLimit: 5,
	}
}

// DailyStats summarises the last 24 hours of nearby activity.
type DailyStats struct {
	Count            int     `json:"count"`
	MaxMagnitude     float64 `json:"max_magnitude"`
	AverageMagnitude float64 `json:"average_magnitude"`
}

// NotificationKind labels what a chat message is about.
type NotificationKind string

const (
	KindAlert       NotificationKind = "alert"
	KindOverflow    NotificationKind = "overflow"
	KindDailyReport NotificationKind = "daily_report"
	KindFeedError   NotificationKind = "feed_error"
)

// Notification records one dispatched chat message.
type Notification struct {
	RunID     string           `json:"run_id"`
	Kind      NotificationKind `json:"kind"`
	Text      string           `json:"text"`
	WithImage bool             `json:"with_image"`
	Delivered bool             `json:"delivered"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
