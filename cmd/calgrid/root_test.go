package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//calgrid//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:review\r\n" +
	"DTSTART:20240103T100000Z\r\n" +
	"DTEND:20240103T110000Z\r\n" +
	"SUMMARY:Review\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:offsite\r\n" +
	"DTSTART;VALUE=DATE:20240104\r\n" +
	"DTEND;VALUE=DATE:20240106\r\n" +
	"SUMMARY:Offsite\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	icsPath := filepath.Join(dir, "team.ics")
	require.NoError(t, os.WriteFile(icsPath, []byte(testICS), 0o600))

	cfgPath := filepath.Join(dir, "calgrid.yaml")
	cfg := strings.Join([]string{
		"timezone: UTC",
		"view: week",
		"log_level: error",
		"cache_dir: " + filepath.Join(dir, "cache"),
		"ics:",
		"  - id: team",
		"    path: " + icsPath,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o600))
	return cfgPath
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLayoutCommand_Text(t *testing.T) {
	cfgPath := writeConfig(t)
	out, err := runCmd(t, "layout", "--config", cfgPath, "--date", "2024-01-03", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "week 2024-01-01 .. 2024-01-07")
	assert.Contains(t, out, "Review")
	assert.Contains(t, out, "Offsite")
}

func TestLayoutCommand_JSON(t *testing.T) {
	cfgPath := writeConfig(t)
	out, err := runCmd(t, "layout", "--config", cfgPath, "--date", "2024-01-03", "--view", "month", "--json")
	require.NoError(t, err)

	var got struct {
		Kind  string `json:"kind"`
		Pages []struct {
			Lines [][]struct {
				Start    int `json:"start"`
				Duration int `json:"duration"`
			} `json:"lines"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "month", got.Kind)
	require.Len(t, got.Pages, 6)

	// Both share the first line of the first week row: the review on
	// Wednesday, the offsite on Thursday and Friday.
	first := got.Pages[0].Lines
	require.Len(t, first, 1)
	require.Len(t, first[0], 2)
	assert.Equal(t, 2, first[0][0].Start)
	assert.Equal(t, 1, first[0][0].Duration)
	assert.Equal(t, 3, first[0][1].Start)
	assert.Equal(t, 2, first[0][1].Duration)
}

func TestLayoutCommand_BadInput(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := runCmd(t, "layout", "--config", cfgPath, "--date", "yesterday")
	assert.ErrorContains(t, err, "invalid --date")

	_, err = runCmd(t, "layout", "--config", cfgPath, "--view", "year")
	assert.Error(t, err)
}
