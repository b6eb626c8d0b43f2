package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// NOTE: Configuration is stored as YAML by default. A path ending in .toml
// is read and written as TOML instead; both formats share the same keys.

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"`
	// Path is a local .ics file used instead of URL.
	Path string `yaml:"path,omitempty" toml:"path,omitempty" json:"path,omitempty"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" toml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" toml:"name" json:"name"`
	// Color is passed through to renderers (e.g. "#3b82f6").
	Color string `yaml:"color,omitempty" toml:"color,omitempty" json:"color,omitempty"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" toml:"username" json:"username"`
	Password string `yaml:"password" toml:"password" json:"password"`
}

// CaptureConfig controls the headless browser screenshot of the grid page.
type CaptureConfig struct {
	URL    string `yaml:"url" toml:"url" json:"url"`
	Output string `yaml:"output" toml:"output" json:"output"`
	Width  int    `yaml:"width" toml:"width" json:"width"`
	Height int    `yaml:"height" toml:"height" json:"height"`

	// PanelWidth / PanelHeight scale the screenshot to an e-paper panel.
	// Zero keeps the viewport size.
	PanelWidth  int `yaml:"panel_width,omitempty" toml:"panel_width,omitempty" json:"panel_width,omitempty"`
	PanelHeight int `yaml:"panel_height,omitempty" toml:"panel_height,omitempty" json:"panel_height,omitempty"`
	// Mono quantizes the PNG to white, black and red.
	Mono bool `yaml:"mono,omitempty" toml:"mono,omitempty" json:"mono,omitempty"`
	// Planes also writes packed 1bpp <output>.black.bin / <output>.red.bin.
	Planes bool `yaml:"planes,omitempty" toml:"planes,omitempty" json:"planes,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" toml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as canonical display zone (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" toml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is treated as the first day of the week
	// in calendar views. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" toml:"week_start" json:"week_start"`

	// HiddenDays lists weekdays ("saturday", "sunday", ...) left out of the
	// day and week grids. Unknown names are dropped.
	HiddenDays []string `yaml:"hidden_days,omitempty" toml:"hidden_days,omitempty" json:"hidden_days,omitempty"`

	// View selects the layout: "day", "week" (default), "month" or "hourly".
	View string `yaml:"view" toml:"view" json:"view"`

	// SlotMinutes is the slot width of the hourly view. Must divide a day.
	SlotMinutes int `yaml:"slot_minutes" toml:"slot_minutes" json:"slot_minutes"`

	// Order is the sort contract of the layout engine: "compat" or "strict".
	Order string `yaml:"order" toml:"order" json:"order"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for periodic refresh.
	RefreshCron string `yaml:"refresh" toml:"refresh" json:"refresh"`

	// ActiveDelayMS / IdleDelayMS are the debounce windows applied to change
	// notifications while the view is being watched or not.
	ActiveDelayMS int `yaml:"active_delay_ms" toml:"active_delay_ms" json:"active_delay_ms"`
	IdleDelayMS   int `yaml:"idle_delay_ms" toml:"idle_delay_ms" json:"idle_delay_ms"`

	HideTodos          bool `yaml:"hide_todos" toml:"hide_todos" json:"hide_todos"`
	HideCompletedTodos bool `yaml:"hide_completed_todos" toml:"hide_completed_todos" json:"hide_completed_todos"`
	HideSubTodos       bool `yaml:"hide_subtodos" toml:"hide_subtodos" json:"hide_subtodos"`

	// MaxOccurrencesPerEvent caps recurrence expansion per UID.
	MaxOccurrencesPerEvent int `yaml:"max_occurrences_per_event" toml:"max_occurrences_per_event" json:"max_occurrences_per_event"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level" json:"log_level"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" toml:"ics" json:"ics"`

	Capture CaptureConfig `yaml:"capture" toml:"capture" json:"capture"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" toml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen      = "127.0.0.1:8080"
	defaultTimezone    = "UTC"
	defaultView        = "week"
	defaultSlotMinutes = 15
	defaultRefreshCron = "*/15 * * * *"
	defaultActiveDelay = 50
	defaultIdleDelay   = 200
	defaultMaxOcc      = 5000
	defaultCacheDir    = "./var/ics-cache"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:                 defaultListen,
		Timezone:               defaultTimezone,
		WeekStart:              "monday",
		View:                   defaultView,
		SlotMinutes:            defaultSlotMinutes,
		Order:                  "compat",
		RefreshCron:            defaultRefreshCron,
		ActiveDelayMS:          defaultActiveDelay,
		IdleDelayMS:            defaultIdleDelay,
		MaxOccurrencesPerEvent: defaultMaxOcc,
		CacheDir:               defaultCacheDir,
		LogLevel:               "info",
		ICS:                    []ICSConfig{},
		Capture: CaptureConfig{
			URL:    "http://" + defaultListen + "/grid",
			Output: "./var/grid.png",
			Width:  1280,
			Height: 960,
		},
		BasicAuth: nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	// Unknown values fall back to monday to avoid surprising layouts.
	switch strings.ToLower(c.WeekStart) {
	case "monday", "sunday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		c.WeekStart = "monday"
	}
	c.HiddenDays = normalizeWeekdays(c.HiddenDays)
	switch strings.ToLower(c.View) {
	case "day", "week", "month", "hourly":
		c.View = strings.ToLower(c.View)
	default:
		c.View = defaultView
	}
	if c.SlotMinutes <= 0 || c.SlotMinutes > 24*60 || (24*60)%c.SlotMinutes != 0 {
		c.SlotMinutes = defaultSlotMinutes
	}
	if c.Order != "strict" {
		c.Order = "compat"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.ActiveDelayMS <= 0 {
		c.ActiveDelayMS = defaultActiveDelay
	}
	if c.IdleDelayMS <= 0 {
		c.IdleDelayMS = defaultIdleDelay
	}
	if c.MaxOccurrencesPerEvent <= 0 {
		c.MaxOccurrencesPerEvent = defaultMaxOcc
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	if c.Capture.URL == "" {
		c.Capture.URL = "http://" + c.Listen + "/grid"
	}
	if c.Capture.Output == "" {
		c.Capture.Output = "./var/grid.png"
	}
}

// Location resolves Timezone, falling back to time.Local when it is unknown.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local, err
	}
	return loc, nil
}

// FirstWeekday returns the configured start of the week.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func normalizeWeekdays(names []string) []string {
	var out []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if _, ok := weekdayNames[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// HiddenWeekdays returns HiddenDays as weekdays.
func (c *Config) HiddenWeekdays() []time.Weekday {
	var out []time.Weekday
	for _, n := range c.HiddenDays {
		if d, ok := weekdayNames[strings.ToLower(n)]; ok {
			out = append(out, d)
		}
	}
	return out
}

// ActiveDelay and IdleDelay return the debounce windows as durations.
func (c *Config) ActiveDelay() time.Duration { return time.Duration(c.ActiveDelayMS) * time.Millisecond }
func (c *Config) IdleDelay() time.Duration   { return time.Duration(c.IdleDelayMS) * time.Millisecond }

// Load loads configuration from the given path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - decode YAML (or TOML for *.toml) into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if isTOML(path) {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Encodes cfg as YAML, or TOML for *.toml paths.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := encode(path, cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".calgrid-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}

func encode(path string, cfg *Config) ([]byte, error) {
	if !isTOML(path) {
		return yaml.Marshal(cfg)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
