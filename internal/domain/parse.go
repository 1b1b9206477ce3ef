package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FeedTimeLayout is the Kandilli timestamp format.
const FeedTimeLayout = "2006-01-02 15:04:05"

// ErrInvalidEvent marks a feed record that failed validation and was dropped.
var ErrInvalidEvent = errors.New("invalid event")

// ParseRawEvent validates a raw feed record and converts it into an Event.
// Timestamps are read in loc without any conversion. Every failure wraps
// ErrInvalidEvent.
func ParseRawEvent(raw RawEvent, loc *time.Location) (Event, error) {
	var rec RawQuakeRecord
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return Event{}, invalid("decode record", err)
	}

	mag, err := parseNumber(rec.Mag)
	if err != nil {
		return Event{}, invalid("mag", err)
	}

	var title string
	if err := decodeRequired(rec.Title, &title); err != nil {
		return Event{}, invalid("title", err)
	}

	var stamp string
	if err := decodeRequired(rec.DateTime, &stamp); err != nil {
		return Event{}, invalid("date_time", err)
	}
	// ParseInLocation tolerates a fractional-seconds suffix; the feed never sends one.
	if len(stamp) != len(FeedTimeLayout) {
		return Event{}, invalid("date_time", fmt.Errorf("unexpected format %q", stamp))
	}
	occurredAt, err := time.ParseInLocation(FeedTimeLayout, stamp, loc)
	if err != nil {
		return Event{}, invalid("date_time", err)
	}

	depth, err := parseNumber(rec.Depth)
	if err != nil {
		return Event{}, invalid("depth", err)
	}

	geo, err := parseCoordinates(rec)
	if err != nil {
		return Event{}, invalid("geojson.coordinates", err)
	}

	return Event{
		Magnitude:  mag,
		Title:      title,
		OccurredAt: occurredAt,
		DepthKm:    depth,
		Geo:        geo,
	}, nil
}

func invalid(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrInvalidEvent, field, err)
}

var errMissing = errors.New("missing")

// decodeRequired unmarshals a present, non-null JSON value into v.
func decodeRequired(data json.RawMessage, v any) error {
	if isAbsent(data) {
		return errMissing
	}
	return json.Unmarshal(data, v)
}

func isAbsent(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseNumber accepts a JSON number or a numeric string and rejects NaN and
// infinities.
func parseNumber(data json.RawMessage) (float64, error) {
	if isAbsent(data) {
		return 0, errMissing
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		var s string
		if strErr := json.Unmarshal(data, &s); strErr != nil {
			return 0, err
		}
		v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, err
		}
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite: %v", v)
	}
	return v, nil
}

// parseCoordinates reads the GeoJSON point as [longitude, latitude]. A third
// element (altitude) is tolerated and ignored.
func parseCoordinates(rec RawQuakeRecord) (Geo, error) {
	if rec.GeoJSON == nil {
		return Geo{}, errMissing
	}

	var coords []json.RawMessage
	if err := decodeRequired(rec.GeoJSON.Coordinates, &coords); err != nil {
		return Geo{}, err
	}
	if len(coords) < 2 || len(coords) > 3 {
		return Geo{}, fmt.Errorf("want 2 coordinates, got %d", len(coords))
	}

	lon, err := parseNumber(coords[0])
	if err != nil {
		return Geo{}, fmt.Errorf("longitude: %w", err)
	}
	lat, err := parseNumber(coords[1])
	if err != nil {
		return Geo{}, fmt.Errorf("latitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Geo{}, fmt.Errorf("out of range: lat=%v lon=%v", lat, lon)
	}

	return Geo{Lat: lat, Lon: lon}, nil
}
