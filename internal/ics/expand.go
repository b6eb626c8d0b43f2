package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

const (
	defaultMaxOccurrencesPerEvent = 5000
)

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the timezone to which all occurrences will be converted.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive time window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent is a safety cap to avoid infinite or extremely
	// large expansions. If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the list of expanded occurrences and optionally
// information about truncation.
type ExpandResult struct {
	Occurrences []model.Occurrence
	// TruncatedEvents records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedEvents []string
}

// ExpandOccurrences takes a list of ParsedEvent (typically for one or more ICS
// sources) and expands them into concrete occurrences within the given time
// range. It handles:
//
//   - Single non-recurring events and todos
//   - RRULE-based recurrence (DAILY/WEEKLY/MONTHLY/YEARLY, etc.)
//   - EXDATE for exception removal
//   - RECURRENCE-ID overrides
//   - All-day semantics (dates are kept on their calendar day)
//
// All resulting occurrences are converted into the configured display
// timezone (ExpandConfig.DisplayLocation).
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)

	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	allOccurrences := make([]model.Occurrence, 0)

	for uid, baseEvents := range baseByUID {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseEvents {
			occ, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			allOccurrences = append(allOccurrences, occ...)
		}

		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Warn("expand: truncated occurrences for UID due to cap",
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	// Map iteration above is random; the layout engine is order sensitive.
	sort.SliceStable(allOccurrences, func(i, j int) bool {
		a, b := allOccurrences[i], allOccurrences[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return a.UID < b.UID
	})
	sort.Strings(result.TruncatedEvents)

	result.Occurrences = allOccurrences
	return result, nil
}

// expandEvent expands a single ParsedEvent (base event) with its possible
// overrides within the given configuration, returning occurrences and whether
// the cap was hit.
func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	// Single non-recurring event
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}

	// Recurring event via RRULE
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	var out []model.Occurrence

	// Quick range check: if event does not intersect [RangeStart, RangeEnd], skip.
	if !timeRangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return out
	}

	baseStart := ev.Start
	baseEnd := ev.End

	// Apply any override whose RECURRENCE-ID matches this start.
	if o, ok := findOverrideForStart(ev, overrides, baseStart); ok {
		baseStart = o.Start
		baseEnd = o.End
		ev = o
	}

	out = append(out, makeOccurrence(ev, baseStart, baseEnd, cfg.DisplayLocation))
	return out
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	out := make([]model.Occurrence, 0)
	hitCap := false

	// Create base rule from RawRRule.
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}

	// Ensure Dtstart is set to the event's DTSTART.
	r.DTStart(ev.Start)

	// Build a set so we can apply EXDATE.
	var set rrule.Set
	set.RRule(r)

	// Apply EXDATEs.
	for _, ex := range ev.ExDates {
		// Best effort: align EXDATE location with event's start.
		exInLoc := ex.In(ev.Start.Location())
		set.ExDate(exInLoc)
	}

	// Adjust range into the event's original location for Between(). The
	// start is pulled back by the event length so instances that began
	// before the window but still overlap it are kept.
	length := ev.End.Sub(ev.Start)
	if length < 0 {
		length = 0
	}
	rangeStart := cfg.RangeStart.Add(-length).In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)

	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		var occEnd time.Time
		if ev.AllDay {
			// All-day: [date 00:00, date+days 00:00) in the event's timezone,
			// keeping the day count of the base event.
			days := max(calendarDays(ev.Start, ev.End), 1)
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.AddDate(0, 0, days)
		} else {
			// Preserve original duration.
			dur := ev.End.Sub(ev.Start)
			occEnd = occStart.Add(dur)
		}

		baseStart := occStart
		baseEnd := occEnd
		baseEv := ev

		// Apply override if any.
		if o, ok := findOverrideForStart(ev, overrides, occStart); ok {
			baseStart = o.Start
			baseEnd = o.End
			baseEv = o
		}

		out = append(out, makeOccurrence(baseEv, baseStart, baseEnd, cfg.DisplayLocation))
	}

	return out, hitCap
}

// findOverrideForStart finds an override event whose RECURRENCE-ID matches
// the given baseStart (in the base event's timezone) with exact time equality.
func findOverrideForStart(base ParsedEvent, overrides []ParsedEvent, baseStart time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		// Align recurrence timestamp with base event's location for comparison.
		rid := ov.Recurrence.In(baseStart.Location())
		if rid.Equal(baseStart) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeOccurrence converts a (possibly overridden) ParsedEvent + specific
// start/end time into a model.Occurrence normalized into displayLoc.
// All-day dates keep their calendar day instead of being shifted by the
// zone conversion.
func makeOccurrence(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) model.Occurrence {
	startLocal := start.In(displayLoc)
	endLocal := end.In(displayLoc)
	if ev.AllDay {
		startLocal = sameDate(start, displayLoc)
		endLocal = sameDate(end, displayLoc)
		if !endLocal.After(startLocal) {
			endLocal = startLocal.AddDate(0, 0, 1)
		}
	}

	occ := model.Occurrence{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		Kind:        ev.Kind,
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Color:       ev.Source.Color,
		Completed:   ev.Completed,
		Priority:    ev.Priority,
		RelatedTo:   ev.RelatedTo,
		AllDay:      ev.AllDay,
		Start:       startLocal,
		End:         endLocal,
	}
	if occ.Kind == "" {
		occ.Kind = model.KindEvent
	}

	// InstanceKey: use start time in RFC3339 as a stable per-instance key.
	occ.InstanceKey = startLocal.Format(time.RFC3339Nano)

	return occ
}

// calendarDays counts the calendar days between the dates of a and b.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da) / (24 * time.Hour))
}

func sameDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
