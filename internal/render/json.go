package render

import (
	"encoding/json"
	"io"
	"time"

	"calgrid/internal/model"
	"calgrid/internal/view"
)

// SnapshotJSON is the wire form of a snapshot served by the API and printed
// by `calgrid layout --json`.
type SnapshotJSON struct {
	Kind        view.Kind  `json:"kind"`
	Anchor      time.Time  `json:"anchor"`
	RangeStart  time.Time  `json:"range_start"`
	RangeEnd    time.Time  `json:"range_end"`
	GeneratedAt time.Time  `json:"generated_at"`
	Pages       []PageJSON `json:"pages"`
	AllDay      *PageJSON  `json:"all_day,omitempty"`
}

// PageJSON is one laid-out period. SlotMinutes is zero for day slots.
type PageJSON struct {
	PeriodStart time.Time     `json:"period_start"`
	Length      int           `json:"length"`
	SlotMinutes int           `json:"slot_minutes,omitempty"`
	Lines       [][]EntryJSON `json:"lines"`
}

// EntryJSON is one placed occurrence.
type EntryJSON struct {
	Line       int               `json:"line"`
	Start      int               `json:"start"`
	Duration   int               `json:"duration"`
	Occurrence *model.Occurrence `json:"occurrence"`
}

// NewSnapshotJSON converts snap to its wire form.
func NewSnapshotJSON(snap *view.Snapshot) SnapshotJSON {
	out := SnapshotJSON{
		Kind:        snap.Kind,
		Anchor:      snap.Anchor,
		RangeStart:  snap.RangeStart,
		RangeEnd:    snap.RangeEnd,
		GeneratedAt: snap.GeneratedAt,
		Pages:       make([]PageJSON, 0, len(snap.Pages)),
	}
	for i := range snap.Pages {
		out.Pages = append(out.Pages, newPageJSON(&snap.Pages[i]))
	}
	if snap.AllDay != nil {
		p := newPageJSON(snap.AllDay)
		out.AllDay = &p
	}
	return out
}

func newPageJSON(p *view.Page) PageJSON {
	out := PageJSON{
		PeriodStart: p.PeriodStart,
		Length:      p.Length,
		Lines:       make([][]EntryJSON, 0, len(p.Lines)),
	}
	if !p.Unit.IsDay() {
		out.SlotMinutes = int(p.Unit.Duration() / time.Minute)
	}
	for _, line := range p.Lines {
		row := make([]EntryJSON, 0, len(line))
		for _, e := range line {
			row = append(row, EntryJSON{
				Line:       e.Line,
				Start:      e.Start,
				Duration:   e.Duration,
				Occurrence: e.Occurrence.Payload,
			})
		}
		out.Lines = append(out.Lines, row)
	}
	return out
}

// JSON writes snap as indented JSON.
func JSON(w io.Writer, snap *view.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewSnapshotJSON(snap))
}
