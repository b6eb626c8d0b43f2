package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgrid/internal/layout"
	"calgrid/internal/model"
	"calgrid/internal/view"
)

func at(day, hour int) time.Time {
	return time.Date(2024, 1, day, hour, 0, 0, 0, time.UTC)
}

func entry(line, start, dur int, o *model.Occurrence) view.Entry {
	return view.Entry{
		Line:     line,
		Start:    start,
		Duration: dur,
		Occurrence: layout.Occurrence[*model.Occurrence]{
			Start: o.Start, End: o.End, AllDay: o.AllDay, Payload: o,
		},
	}
}

func weekSnapshot() *view.Snapshot {
	holiday := &model.Occurrence{UID: "h", Summary: "Holiday", AllDay: true, Color: "#ff0000", Start: at(2, 0), End: at(3, 0)}
	meeting := &model.Occurrence{UID: "m", Summary: "Meeting <b>", Location: "Room 1", Start: at(3, 10), End: at(3, 11)}
	todo := &model.Occurrence{UID: "t", Summary: "Report", Kind: model.KindTodo, Completed: true, Start: at(3, 9), End: at(3, 9)}

	return &view.Snapshot{
		Kind:        view.KindWeek,
		Anchor:      at(3, 12),
		RangeStart:  at(1, 0),
		RangeEnd:    at(8, 0),
		GeneratedAt: at(3, 12),
		Pages: []view.Page{{
			PeriodStart: at(1, 0),
			Length:      7,
			Unit:        layout.Day,
			Lines: [][]view.Entry{
				{entry(0, 1, 1, holiday), entry(0, 2, 1, meeting)},
				{entry(1, 2, 1, todo)},
			},
		}},
	}
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, weekSnapshot(), TextOptions{NoColor: true}))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "week 2024-01-01 .. 2024-01-07", lines[0])
	assert.Equal(t, "", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Mon 01      Tue 02      Wed 03"))

	// Column 1 starts at cell 12, column 2 at cell 24.
	assert.Equal(t, strings.Repeat(" ", 12)+"Holiday     Meeting <b>", lines[3])
	assert.Equal(t, strings.Repeat(" ", 24)+"[x] Report", lines[4])
}

func TestText_TruncatesAndMarksEmptyPages(t *testing.T) {
	snap := weekSnapshot()
	snap.Pages = append(snap.Pages, view.Page{PeriodStart: at(8, 0), Length: 7, Unit: layout.Day})

	var buf bytes.Buffer
	require.NoError(t, Text(&buf, snap, TextOptions{ColumnWidth: 6, NoColor: true}))
	out := buf.String()
	assert.Contains(t, out, "Holi…")
	assert.Contains(t, out, "(empty)")
}

func TestText_SlotHeaders(t *testing.T) {
	snap := &view.Snapshot{
		Kind:       view.KindHourly,
		RangeStart: at(1, 0),
		RangeEnd:   at(8, 0),
		Pages: []view.Page{{
			PeriodStart: at(1, 0),
			Length:      24,
			Unit:        layout.Unit(time.Hour),
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, snap, TextOptions{NoColor: true}))
	assert.Contains(t, buf.String(), "00:00 01:00 02:00")
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, weekSnapshot()))
	out := buf.String()

	assert.Contains(t, out, `data-ready="true"`)
	assert.Contains(t, out, "grid-template-columns: repeat(7, 1fr)")
	assert.Contains(t, out, "grid-column: 2 / span 1; grid-row: 2; background: #ff0000")
	assert.Contains(t, out, "grid-column: 3 / span 1; grid-row: 3")
	assert.Contains(t, out, `class="bar todo done"`)
	assert.Contains(t, out, "Meeting &lt;b&gt;")
	assert.NotContains(t, out, "Meeting <b>")
	assert.Contains(t, out, ">Wed 03<")
}

func TestHTML_RejectsUnsafeColor(t *testing.T) {
	snap := weekSnapshot()
	snap.Pages[0].Lines[0][0].Occurrence.Payload.Color = "red; position: fixed"

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, snap))
	assert.NotContains(t, buf.String(), "position: fixed")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, weekSnapshot()))

	var got SnapshotJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, view.KindWeek, got.Kind)
	require.Len(t, got.Pages, 1)
	assert.Zero(t, got.Pages[0].SlotMinutes)
	require.Len(t, got.Pages[0].Lines, 2)
	assert.Equal(t, "Holiday", got.Pages[0].Lines[0][0].Occurrence.Summary)
	assert.Equal(t, 2, got.Pages[0].Lines[1][0].Start)
	assert.Nil(t, got.AllDay)
}
