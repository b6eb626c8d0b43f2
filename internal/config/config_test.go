package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.View, again.View)
	assert.Equal(t, cfg.RefreshCron, again.RefreshCron)
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}

func TestLoad_YAMLNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
view: Month
week_start: friday
slot_minutes: 7
order: strict
hidden_days: [Saturday, funday, " sunday"]
ics:
  - id: work
    name: Work
    path: /tmp/work.ics
    color: "#ff0000"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "month", cfg.View)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, 15, cfg.SlotMinutes)
	assert.Equal(t, "strict", cfg.Order)
	assert.Equal(t, []string{"saturday", "sunday"}, cfg.HiddenDays)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, cfg.HiddenWeekdays())
	assert.Equal(t, defaultListen, cfg.Listen)
	assert.Equal(t, 50*time.Millisecond, cfg.ActiveDelay())
	assert.Equal(t, 200*time.Millisecond, cfg.IdleDelay())
	require.Len(t, cfg.ICS, 1)
	assert.Equal(t, "/tmp/work.ics", cfg.ICS[0].Path)
	assert.Equal(t, "#ff0000", cfg.ICS[0].Color)
}

func TestSaveLoad_TOMLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.View = "hourly"
	cfg.SlotMinutes = 30
	cfg.WeekStart = "sunday"
	cfg.HideSubTodos = true
	cfg.ICS = []ICSConfig{{ID: "home", Name: "Home", URL: "https://example.com/home.ics"}}
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, time.Sunday, loaded.FirstWeekday())
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.Timezone = "Not/AZone"
	loc, err = cfg.Location()
	assert.Error(t, err)
	assert.Equal(t, time.Local, loc)
}
