package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgrid/internal/config"
	"calgrid/internal/model"
)

var sampleICS = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//calgrid//test//EN",
	"BEGIN:VEVENT",
	"UID:standup",
	"DTSTART:20240101T090000Z",
	"DTEND:20240101T093000Z",
	"RRULE:FREQ=DAILY;COUNT=5",
	"EXDATE:20240103T090000Z",
	"SUMMARY:Standup",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup",
	"RECURRENCE-ID:20240104T090000Z",
	"DTSTART:20240104T100000Z",
	"DTEND:20240104T103000Z",
	"SUMMARY:Standup (moved)",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:holiday",
	"DTSTART;VALUE=DATE:20240102",
	"DTEND;VALUE=DATE:20240103",
	"RELATED-TO:school-year",
	"SUMMARY:Holiday",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"SUMMARY:No UID",
	"DTSTART:20240101T090000Z",
	"END:VEVENT",
	"BEGIN:VTODO",
	"UID:report",
	"DUE:20240105T170000Z",
	"STATUS:COMPLETED",
	"PRIORITY:1",
	"SUMMARY:Report",
	"END:VTODO",
	"BEGIN:VTODO",
	"UID:report-part",
	"DTSTART:20240104T090000Z",
	"DUE:20240104T120000Z",
	"RELATED-TO:report",
	"SUMMARY:Draft",
	"END:VTODO",
	"END:VCALENDAR",
	"",
}, "\r\n")

func utc(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func firstWeek() ExpandConfig {
	return ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      utc(1, 0, 0),
		RangeEnd:        utc(8, 0, 0),
	}
}

func TestParseICS(t *testing.T) {
	src := Source{ID: "work", Color: "#00f"}
	events, err := ParseICS(src, []byte(sampleICS))
	require.NoError(t, err)
	require.Len(t, events, 5, "the component without UID is skipped")

	byUID := map[string][]ParsedEvent{}
	for _, ev := range events {
		byUID[ev.UID] = append(byUID[ev.UID], ev)
	}

	require.Len(t, byUID["standup"], 2)
	base := byUID["standup"][0]
	assert.Equal(t, "FREQ=DAILY;COUNT=5", base.RawRRule)
	assert.Equal(t, []time.Time{utc(3, 9, 0)}, base.ExDates)
	assert.Equal(t, model.KindEvent, base.Kind)
	assert.True(t, byUID["standup"][1].IsOverride)

	holiday := byUID["holiday"][0]
	assert.True(t, holiday.AllDay)
	assert.Equal(t, model.KindEvent, holiday.Kind)
	assert.Equal(t, "school-year", holiday.RelatedTo)

	report := byUID["report"][0]
	assert.Equal(t, model.KindTodo, report.Kind)
	assert.True(t, report.Completed)
	assert.Equal(t, 1, report.Priority)
	assert.Equal(t, utc(5, 17, 0), report.Start)
	assert.Equal(t, report.Start, report.End)

	part := byUID["report-part"][0]
	assert.Equal(t, "report", part.RelatedTo)
	assert.False(t, part.Completed)
	assert.Equal(t, utc(4, 9, 0), part.Start)
	assert.Equal(t, utc(4, 12, 0), part.End)
}

func TestParseICS_Empty(t *testing.T) {
	_, err := ParseICS(Source{ID: "x"}, nil)
	assert.Error(t, err)
}

func TestExpandOccurrences(t *testing.T) {
	events, err := ParseICS(Source{ID: "work", Color: "#00f"}, []byte(sampleICS))
	require.NoError(t, err)

	res, err := ExpandOccurrences(events, firstWeek())
	require.NoError(t, err)
	assert.Empty(t, res.TruncatedEvents)

	type row struct {
		uid     string
		summary string
		start   time.Time
	}
	got := make([]row, 0, len(res.Occurrences))
	for _, o := range res.Occurrences {
		got = append(got, row{o.UID, o.Summary, o.Start})
		assert.Equal(t, "#00f", o.Color)
		assert.Equal(t, "work", o.SourceID)
	}

	assert.Equal(t, []row{
		{"standup", "Standup", utc(1, 9, 0)},
		{"holiday", "Holiday", utc(2, 0, 0)},
		{"standup", "Standup", utc(2, 9, 0)},
		{"report-part", "Draft", utc(4, 9, 0)},
		{"standup", "Standup (moved)", utc(4, 10, 0)},
		{"standup", "Standup", utc(5, 9, 0)},
		{"report", "Report", utc(5, 17, 0)},
	}, got)

	holiday := res.Occurrences[1]
	assert.True(t, holiday.AllDay)
	assert.Equal(t, utc(3, 0, 0), holiday.End)
	assert.Equal(t, model.KindTodo, res.Occurrences[6].Kind)
}

func TestExpandOccurrences_Cap(t *testing.T) {
	events, err := ParseICS(Source{ID: "work"}, []byte(sampleICS))
	require.NoError(t, err)

	cfg := firstWeek()
	cfg.MaxOccurrencesPerEvent = 2
	res, err := ExpandOccurrences(events, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"standup"}, res.TruncatedEvents)
}

func TestExpandOccurrences_InvalidRange(t *testing.T) {
	cfg := firstWeek()
	cfg.RangeStart, cfg.RangeEnd = cfg.RangeEnd, cfg.RangeStart
	_, err := ExpandOccurrences(nil, cfg)
	assert.Error(t, err)
}

func TestExpandOccurrences_RecurringAllDayKeepsLength(t *testing.T) {
	loc := time.UTC
	ev := ParsedEvent{
		UID:      "sprint",
		Kind:     model.KindEvent,
		AllDay:   true,
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, loc),
		End:      time.Date(2024, 1, 4, 0, 0, 0, 0, loc),
		RawRRule: "FREQ=WEEKLY;COUNT=3",
	}
	res, err := ExpandOccurrences([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      utc(9, 0, 0),
		RangeEnd:        utc(14, 0, 0),
	})
	require.NoError(t, err)
	require.Len(t, res.Occurrences, 1)
	assert.Equal(t, utc(8, 0, 0), res.Occurrences[0].Start)
	assert.Equal(t, utc(11, 0, 0), res.Occurrences[0].End)
}

func TestCollector_LocalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "work.ics")
	require.NoError(t, os.WriteFile(path, []byte(sampleICS), 0o600))

	sources := SourcesFromConfig([]config.ICSConfig{
		{Name: "Work", Path: path},
		{ID: "empty"},
	})
	require.Len(t, sources, 1)
	assert.Equal(t, "Work", sources[0].ID)

	c := NewCollector(NewFetcher(filepath.Join(dir, "cache")), sources, time.UTC, 0)
	occs, err := c.Occurrences(context.Background(), utc(1, 0, 0), utc(8, 0, 0))
	require.NoError(t, err)
	assert.Len(t, occs, 7)
}

func TestCollector_AllSourcesFail(t *testing.T) {
	c := NewCollector(NewFetcher(t.TempDir()), []Source{{ID: "gone", Path: "/does/not/exist.ics"}}, time.UTC, 0)
	_, err := c.Occurrences(context.Background(), utc(1, 0, 0), utc(8, 0, 0))
	assert.Error(t, err)

	empty := NewCollector(NewFetcher(t.TempDir()), nil, time.UTC, 0)
	occs, err := empty.Occurrences(context.Background(), utc(1, 0, 0), utc(8, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, occs)
}

func TestFetcher_ConditionalRequests(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(sampleICS))
	}))

	f := NewFetcher(t.TempDir())
	src := Source{ID: "remote", URL: srv.URL + "/cal.ics"}

	first, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.False(t, first.FromCache)
	assert.Equal(t, sampleICS, string(first.Body))

	second, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, int32(2), hits.Load())

	// Once the server is gone the cached body is still served.
	srv.Close()
	third, err := f.FetchOne(context.Background(), src)
	require.NoError(t, err)
	assert.True(t, third.FromCache)
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://example.com/...(redacted)", redactURL("https://example.com/private.ics?token=abc"))
	assert.Equal(t, "ics://...(redacted)", redactURL("not a url"))
}
