package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/quake-alert-service/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFeedURL is the Kandilli live list republished as JSON.
const DefaultFeedURL = "https://api.orhanaydogdu.com.tr/deprem/kandilli/live"

// Config holds all service settings. It is built once at startup and never
// modified afterwards.
type Config struct {
	Observer   domain.Observer
	Thresholds domain.Thresholds
	DailyGate  domain.DailyGate

	// Location is the observer's fixed civil offset. Feed timestamps and the
	// run's "now" are both expressed in it.
	Location *time.Location

	FeedURL     string
	FeedTimeout time.Duration

	// Telegram delivery. Empty credentials disable sending.
	TelegramToken        string
	TelegramChatID       string
	TelegramTextTimeout  time.Duration
	TelegramPhotoTimeout time.Duration

	// Mapbox static map configuration.
	MapboxToken   string
	MapboxEnabled bool
	MapboxTimeout time.Duration
	MapboxStyle   string

	// Notification outbox. Empty brokers disable publishing.
	KafkaBrokers []string
	KafkaTopic   string

	PushgatewayURL string
	LogLevel       string
	LogFormat      string
}

// fileOverrides is the shape of the optional QUAKE_CONFIG_FILE.
type fileOverrides struct {
	Thresholds  domain.Thresholds `yaml:"thresholds"`
	DailyReport domain.DailyGate  `yaml:"daily_report"`
}

// Load reads configuration with priority: defaults < QUAKE_CONFIG_FILE < .env < environment.
// Variables already set in the environment are never overwritten by .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	overrides := fileOverrides{
		Thresholds:  domain.DefaultThresholds(),
		DailyReport: domain.DefaultDailyGate(),
	}
	if path := os.Getenv("QUAKE_CONFIG_FILE"); path != "" {
		if err := readOverrides(path, &overrides); err != nil {
			return nil, err
		}
	}

	observer, err := parseObserver()
	if err != nil {
		return nil, err
	}

	th, err := parseThresholds(overrides.Thresholds)
	if err != nil {
		return nil, err
	}

	gate, err := parseDailyGate(overrides.DailyReport)
	if err != nil {
		return nil, err
	}

	loc, err := LocalZone()
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parsePositiveDuration("FEED_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	textTimeout, err := parsePositiveDuration("TELEGRAM_TEXT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	photoTimeout, err := parsePositiveDuration("TELEGRAM_PHOTO_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parsePositiveDuration("MAPBOX_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		Observer:   observer,
		Thresholds: th,
		DailyGate:  gate,
		Location:   loc,

		FeedURL:     sharedcfg.EnvOrDefault("FEED_URL", DefaultFeedURL),
		FeedTimeout: feedTimeout,

		TelegramToken:        os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID:       os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramTextTimeout:  textTimeout,
		TelegramPhotoTimeout: photoTimeout,

		MapboxToken:   mapboxToken,
		MapboxEnabled: mapboxEnabled,
		MapboxTimeout: mapboxTimeout,
		MapboxStyle:   sharedcfg.EnvOrDefault("MAPBOX_STYLE", "mapbox/streets-v12"),

		KafkaBrokers: brokers,
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "quake-notifications"),

		PushgatewayURL: os.Getenv("PUSHGATEWAY_URL"),
		LogLevel:       sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
	}

	if cfg.FeedURL == "" {
		return nil, errors.New("FEED_URL is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

func readOverrides(path string, out *fileOverrides) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read QUAKE_CONFIG_FILE: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse QUAKE_CONFIG_FILE %s: %w", path, err)
	}
	return nil
}

// parseObserver reads the observer location. Both coordinates are required.
func parseObserver() (domain.Observer, error) {
	lat, err := requireFloat("OBSERVER_LAT")
	if err != nil {
		return domain.Observer{}, err
	}
	lon, err := requireFloat("OBSERVER_LON")
	if err != nil {
		return domain.Observer{}, err
	}
	if lat < -90 || lat > 90 {
		return domain.Observer{}, fmt.Errorf("OBSERVER_LAT %v out of range [-90, 90]", lat)
	}
	if lon < -180 || lon > 180 {
		return domain.Observer{}, fmt.Errorf("OBSERVER_LON %v out of range [-180, 180]", lon)
	}
	return domain.Observer{Geo: domain.Geo{Lat: lat, Lon: lon}}, nil
}

func parseThresholds(th domain.Thresholds) (domain.Thresholds, error) {
	var err error
	if th.MinMagnitude, err = parseFloat("MIN_MAGNITUDE", th.MinMagnitude); err != nil {
		return th, err
	}
	if th.MaxDistanceKm, err = parseFloat("MAX_DISTANCE_KM", th.MaxDistanceKm); err != nil {
		return th, err
	}
	if th.RecencyWindow, err = parseDuration("RECENCY_WINDOW", th.RecencyWindow.String()); err != nil {
		return th, err
	}
	if th.DetailedAlertLimit, err = parseInt("DETAILED_ALERT_LIMIT", th.DetailedAlertLimit); err != nil {
		return th, err
	}

	switch {
	case th.MaxDistanceKm <= 0:
		return th, errors.New("MAX_DISTANCE_KM must be positive")
	case th.RecencyWindow <= 0:
		return th, errors.New("RECENCY_WINDOW must be positive")
	case th.DetailedAlertLimit < 0:
		return th, errors.New("DETAILED_ALERT_LIMIT must not be negative")
	}
	return th, nil
}

func parseDailyGate(gate domain.DailyGate) (domain.DailyGate, error) {
	var err error
	if gate.Hour, err = parseInt("DAILY_REPORT_HOUR", gate.Hour); err != nil {
		return gate, err
	}
	if gate.Window, err = parseDuration("DAILY_REPORT_WINDOW", gate.Window.String()); err != nil {
		return gate, err
	}

	if gate.Hour < 0 || gate.Hour > 23 {
		return gate, errors.New("DAILY_REPORT_HOUR must be between 0 and 23")
	}
	if gate.Window < 0 || gate.Window >= time.Hour {
		return gate, errors.New("DAILY_REPORT_WINDOW must be between 0 and 59m")
	}
	return gate, nil
}

func requireFloat(key string) (float64, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s: must be a finite number", key)
	}
	return v, nil
}

func parseFloat(key string, def float64) (float64, error) {
	if os.Getenv(key) == "" {
		return def, nil
	}
	return requireFloat(key)
}

func parseInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := parseDuration(key, def)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

// LocalZone reads LOCAL_UTC_OFFSET (default 3h, Turkey time) and returns the
// matching fixed-offset location.
func LocalZone() (*time.Location, error) {
	offset, err := parseDuration("LOCAL_UTC_OFFSET", "3h")
	if err != nil {
		return nil, err
	}
	if offset < -12*time.Hour || offset > 14*time.Hour {
		return nil, errors.New("LOCAL_UTC_OFFSET must be between -12h and 14h")
	}
	return fixedZone(offset), nil
}

// fixedZone names the offset the way it is shown to users, e.g. "UTC+03:00".
func fixedZone(offset time.Duration) *time.Location {
	sign := "+"
	abs := offset
	if offset < 0 {
		sign = "-"
		abs = -offset
	}
	name := fmt.Sprintf("UTC%s%02d:%02d", sign, int(abs.Hours()), int(abs.Minutes())%60)
	return time.FixedZone(name, int(offset.Seconds()))
}
