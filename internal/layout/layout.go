// Package layout packs calendar occurrences into non-overlapping lines
// within a bounded period, the way a calendar grid stacks event bars.
//
// The engine is a pure function of its input: it keeps no state between
// calls, performs no I/O and never fails. Malformed occurrences (inverted or
// zero-length ranges) are clamped to a single slot instead of rejected.
//
// Packing is greedy first-fit: after sorting, the first remaining occurrence
// opens a new line and every later occurrence that does not intersect the
// slots already taken on that line joins it. The result is deterministic for
// a given input order but does not minimise the number of lines.
package layout

import (
	"cmp"
	"slices"
	"time"
)

// Occurrence is one concrete instance of an incidence on the timeline.
// Payload is carried through to the output untouched.
type Occurrence[P any] struct {
	Start   time.Time
	End     time.Time
	AllDay  bool
	Payload P
}

// Entry is an occurrence placed on the grid: it occupies slots
// [Start, Start+Duration) of line Line.
type Entry[P any] struct {
	Line       int
	Start      int
	Duration   int
	Occurrence Occurrence[P]
}

// End returns the first slot after the entry.
func (e Entry[P]) End() int { return e.Start + e.Duration }

// Engine holds the layout configuration. The zero value lays out every
// occurrence with OrderCompat.
type Engine[P any] struct {
	// Order selects the sort contract applied before packing.
	Order Order
	// Filters must all accept an occurrence for it to be laid out.
	Filters []Filter[P]
	// HiddenDays are weekdays left out of day periods of up to seven days.
	// An occurrence loses the hidden days at its start and is shortened by
	// those inside it; one that only covers hidden days is dropped.
	HiddenDays WeekdaySet
}

// Compute lays out occurrences in p using the default engine.
func Compute[P any](p Period, occurrences []Occurrence[P]) []Entry[P] {
	var e Engine[P]
	return e.Compute(p, occurrences)
}

type item[P any] struct {
	occ    Occurrence[P]
	offset int
	span   int
	// own is the occurrence's unclamped length in slots; the sort uses it.
	own int
}

// Compute lays out occurrences in p. Occurrences outside the period, or
// rejected by a filter, produce no entry.
func (e Engine[P]) Compute(p Period, occurrences []Occurrence[P]) []Entry[P] {
	if p.Length < 1 || len(occurrences) == 0 {
		return nil
	}

	work := make([]item[P], 0, len(occurrences))
	for _, o := range occurrences {
		if !e.accepts(o) {
			continue
		}
		it, ok := e.measure(p, o)
		if !ok {
			continue
		}
		work = append(work, it)
	}

	sortItems(work, e.Order)

	out := make([]Entry[P], 0, len(work))
	taken := make([]bool, p.Length)

	for line := 0; len(work) > 0; line++ {
		clear(taken)

		first := work[0]
		occupy(taken, first)
		out = append(out, first.entry(line))

		// In-place filter: the write index never passes the read index.
		rest := work[:0]
		for _, it := range work[1:] {
			if intersects(taken, it) {
				rest = append(rest, it)
				continue
			}
			occupy(taken, it)
			out = append(out, it.entry(line))
		}
		work = rest
	}

	return out
}

func (e Engine[P]) accepts(o Occurrence[P]) bool {
	for _, f := range e.Filters {
		if f != nil && !f(o) {
			return false
		}
	}
	return true
}

// measure computes the offset and span of o relative to p. It reports false
// when o does not intersect p or starts at or beyond its last slot.
func (e Engine[P]) measure(p Period, o Occurrence[P]) (item[P], bool) {
	if !p.Unit.IsDay() {
		return measureSlots(p, o)
	}
	it, ok := measureDays(p, o)
	if !ok || e.HiddenDays == 0 || p.Length > 7 {
		return it, ok
	}
	return hideDays(p, it, e.HiddenDays)
}

func measureDays[P any](p Period, o Occurrence[P]) (item[P], bool) {
	loc := p.Start.Location()

	endDay := daysBetween(p.Start, o.End, loc)
	if endDay < 0 {
		return item[P]{}, false
	}

	// A daily period does not extend its end date.
	last := 0
	if p.Length > 1 {
		last = p.Length
	}
	startDay := daysBetween(p.Start, o.Start, loc)
	if startDay > last {
		return item[P]{}, false
	}

	offset := max(startDay, 0)
	if offset >= p.Length {
		return item[P]{}, false
	}

	span := min(max(endDay-offset+1, 1), p.Length-offset)

	return item[P]{
		occ:    o,
		offset: offset,
		span:   span,
		own:    max(endDay-startDay+1, 1),
	}, true
}

// hideDays moves the start of it past hidden days and drops the hidden days
// it covers from its span.
func hideDays[P any](p Period, it item[P], hidden WeekdaySet) (item[P], bool) {
	isHidden := func(i int) bool { return hidden.Has(p.SlotStart(i).Weekday()) }

	for it.offset < p.Length && it.span > 0 && isHidden(it.offset) {
		it.offset++
		it.span--
	}
	if it.offset >= p.Length || it.span <= 0 {
		return item[P]{}, false
	}

	visible := 0
	for i := it.offset; i < it.offset+it.span; i++ {
		if !isHidden(i) {
			visible++
		}
	}
	it.span = visible
	return it, true
}

func measureSlots[P any](p Period, o Occurrence[P]) (item[P], bool) {
	unit := p.Unit.Duration()
	loc := p.Start.Location()

	if o.End.Before(p.Start) || !o.Start.Before(p.End()) {
		return item[P]{}, false
	}

	offset := max(floorDiv(wallSince(p.Start, o.Start, loc), unit), 0)
	if offset >= p.Length {
		return item[P]{}, false
	}

	endSlot := ceilDiv(wallSince(p.Start, o.End, loc), unit)
	span := min(max(endSlot-offset, 1), p.Length-offset)

	return item[P]{
		occ:    o,
		offset: offset,
		span:   span,
		own:    max(ceilDiv(o.End.Sub(o.Start), unit), 1),
	}, true
}

func (it item[P]) entry(line int) Entry[P] {
	return Entry[P]{
		Line:       line,
		Start:      it.offset,
		Duration:   it.span,
		Occurrence: it.occ,
	}
}

func intersects[P any](taken []bool, it item[P]) bool {
	for i := it.offset; i < it.offset+it.span; i++ {
		if taken[i] {
			return true
		}
	}
	return false
}

func occupy[P any](taken []bool, it item[P]) {
	for i := it.offset; i < it.offset+it.span; i++ {
		taken[i] = true
	}
}

// Lines groups entries by line. Each line is ordered by start slot.
func Lines[P any](entries []Entry[P]) [][]Entry[P] {
	n := LineCount(entries)
	if n == 0 {
		return nil
	}
	lines := make([][]Entry[P], n)
	for _, e := range entries {
		lines[e.Line] = append(lines[e.Line], e)
	}
	for _, l := range lines {
		slices.SortStableFunc(l, func(a, b Entry[P]) int {
			return cmp.Compare(a.Start, b.Start)
		})
	}
	return lines
}

// LineCount returns the number of lines used by entries.
func LineCount[P any](entries []Entry[P]) int {
	n := 0
	for _, e := range entries {
		if e.Line+1 > n {
			n = e.Line + 1
		}
	}
	return n
}
