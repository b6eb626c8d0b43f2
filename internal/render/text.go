// Package render draws laid-out snapshots for terminals, browsers and JSON
// clients.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"calgrid/internal/view"
)

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")

	styleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHeader    = lipgloss.NewStyle().Foreground(colorGray)
	styleEvent     = lipgloss.NewStyle().Reverse(true)
	styleAllDay    = lipgloss.NewStyle().Bold(true).Reverse(true)
	styleTodo      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCompleted = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
)

// TextOptions controls the terminal renderer.
type TextOptions struct {
	// ColumnWidth is the width of one slot in cells. Zero picks 12 for day
	// slots and 6 for sub-day slots.
	ColumnWidth int
	// NoColor disables styling.
	NoColor bool
}

// Text writes snap as a fixed-width grid, one block per page and one row per
// line.
func Text(w io.Writer, snap *view.Snapshot, opts TextOptions) error {
	var b strings.Builder

	title := fmt.Sprintf("%s %s .. %s", snap.Kind,
		snap.RangeStart.Format(time.DateOnly),
		snap.RangeEnd.AddDate(0, 0, -1).Format(time.DateOnly))
	b.WriteString(paint(styleTitle, title, opts.NoColor))
	b.WriteByte('\n')

	if snap.AllDay != nil {
		writePage(&b, snap.AllDay, opts)
	}
	for i := range snap.Pages {
		writePage(&b, &snap.Pages[i], opts)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writePage(b *strings.Builder, p *view.Page, opts TextOptions) {
	col := opts.ColumnWidth
	if col <= 0 {
		col = 12
		if !p.Unit.IsDay() {
			col = 6
		}
	}

	b.WriteByte('\n')
	var header strings.Builder
	for i := 0; i < p.Length; i++ {
		header.WriteString(fit(slotLabel(p, i), col))
	}
	b.WriteString(paint(styleHeader, strings.TrimRight(header.String(), " "), opts.NoColor))
	b.WriteByte('\n')

	if p.LineCount() == 0 {
		b.WriteString(paint(styleHeader, "(empty)", opts.NoColor))
		b.WriteByte('\n')
		return
	}

	for _, line := range p.Lines {
		var row strings.Builder
		cursor := 0
		for _, e := range line {
			if gap := e.Start - cursor; gap > 0 {
				row.WriteString(strings.Repeat(" ", gap*col))
			}
			// Keep one blank cell between neighbouring bars.
			cell := fit(label(e), e.Duration*col-1)
			row.WriteString(paint(entryStyle(e), cell, opts.NoColor))
			row.WriteByte(' ')
			cursor = e.End()
		}
		b.WriteString(strings.TrimRight(row.String(), " "))
		b.WriteByte('\n')
	}
}

func slotLabel(p *view.Page, i int) string {
	t := p.SlotStart(i)
	if p.Unit.IsDay() {
		return t.Format("Mon 02")
	}
	return t.Format("15:04")
}

func label(e view.Entry) string {
	o := e.Occurrence.Payload
	if o == nil {
		return "?"
	}
	s := o.Summary
	if s == "" {
		s = "(untitled)"
	}
	if o.IsTodo() {
		mark := "[ ] "
		if o.Completed {
			mark = "[x] "
		}
		s = mark + s
	}
	return s
}

func entryStyle(e view.Entry) lipgloss.Style {
	o := e.Occurrence.Payload
	switch {
	case o == nil:
		return styleEvent
	case o.IsTodo() && o.Completed:
		return styleCompleted
	case o.IsTodo():
		return styleTodo
	case o.AllDay:
		return styleAllDay
	default:
		return styleEvent
	}
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if n := xansi.StringWidth(s); n > width {
		if width == 1 {
			return "…"
		}
		return xansi.Truncate(s, width-1, "") + "…"
	} else if n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func paint(st lipgloss.Style, s string, noColor bool) string {
	if noColor {
		return s
	}
	return st.Render(s)
}
