package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

// Property names read from VEVENT / VTODO components. Raw names avoid
// depending on which constants a given library version exports.
const (
	propDue             = ical.ComponentProperty("DUE")
	propStatus          = ical.ComponentProperty("STATUS")
	propCompleted       = ical.ComponentProperty("COMPLETED")
	propPercentComplete = ical.ComponentProperty("PERCENT-COMPLETE")
	propPriority        = ical.ComponentProperty("PRIORITY")
	propRelatedTo       = ical.ComponentProperty("RELATED-TO")
	propRecurrenceID    = ical.ComponentProperty("RECURRENCE-ID")
)

// ParsedEvent is the normalized representation of a VEVENT or VTODO as
// produced by the ICS parser. Recurrence expansion will operate on this type.
type ParsedEvent struct {
	Source Source

	UID  string
	Seq  int
	Kind model.Kind

	Summary     string
	Description string
	Location    string

	Start  time.Time
	End    time.Time
	AllDay bool

	// Todo state.
	Completed bool
	Priority  int
	RelatedTo string

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID (if present) in event's own timezone
	IsOverride bool       // true if this component overrides a recurring instance
}

// ParseICS parses a single ICS payload into a list of ParsedEvent.
//
//   - VEVENTs without DTSTART and VTODOs without both DTSTART and DUE are
//     skipped; a todo missing one of them is pinned to the other.
//   - All-day incidences are detected from DATE-valued DTSTART/DUE.
//   - RRULE/EXDATE/RECURRENCE-ID are recorded but not expanded; expansion
//     is done in internal/ics/expand.go.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0)

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, &comp.ComponentBase)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "id", src.ID)
			continue
		}
		events = append(events, ev)
	}

	for _, comp := range cal.Todos() {
		ev, perr := parseVTodo(src, &comp.ComponentBase)
		if perr != nil {
			appLog.Error("ics vtodo parse failed", perr, "id", src.ID)
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, cb *ical.ComponentBase) (ParsedEvent, error) {
	out, err := parseCommon(src, cb)
	if err != nil {
		return out, err
	}
	out.Kind = model.KindEvent

	startProp := cb.GetProperty(ical.ComponentPropertyDtStart)
	if startProp == nil {
		return out, errors.New("missing DTSTART")
	}
	start, dateOnly, err := parsePropTime(startProp)
	if err != nil {
		return out, err
	}
	out.Start = start
	out.AllDay = dateOnly

	out.End = out.Start
	if out.AllDay {
		out.End = out.Start.AddDate(0, 0, 1)
	}
	if endProp := cb.GetProperty(ical.ComponentPropertyDtEnd); endProp != nil {
		if end, _, err := parsePropTime(endProp); err == nil {
			out.End = end
		}
	}

	return out, nil
}

func parseVTodo(src Source, cb *ical.ComponentBase) (ParsedEvent, error) {
	out, err := parseCommon(src, cb)
	if err != nil {
		return out, err
	}
	out.Kind = model.KindTodo

	var (
		start, due         time.Time
		hasStart, hasDue   bool
		startDate, dueDate bool
	)
	if p := cb.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if t, d, err := parsePropTime(p); err == nil {
			start, startDate, hasStart = t, d, true
		}
	}
	if p := cb.GetProperty(propDue); p != nil {
		if t, d, err := parsePropTime(p); err == nil {
			due, dueDate, hasDue = t, d, true
		}
	}

	switch {
	case hasStart && hasDue:
		out.Start, out.End = start, due
		out.AllDay = startDate && dueDate
	case hasDue:
		out.Start, out.End = due, due
		out.AllDay = dueDate
	case hasStart:
		out.Start, out.End = start, start
		out.AllDay = startDate
	default:
		return out, errors.New("todo has neither DTSTART nor DUE")
	}
	if out.AllDay && !out.End.After(out.Start) {
		out.End = out.Start.AddDate(0, 0, 1)
	}

	if p := cb.GetProperty(propStatus); p != nil && strings.EqualFold(strings.TrimSpace(p.Value), "COMPLETED") {
		out.Completed = true
	}
	if p := cb.GetProperty(propCompleted); p != nil && p.Value != "" {
		out.Completed = true
	}
	if p := cb.GetProperty(propPercentComplete); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil && n >= 100 {
			out.Completed = true
		}
	}
	if p := cb.GetProperty(propPriority); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil {
			out.Priority = n
		}
	}

	return out, nil
}

// parseCommon reads the properties shared by VEVENT and VTODO.
func parseCommon(src Source, cb *ical.ComponentBase) (ParsedEvent, error) {
	var out ParsedEvent
	out.Source = src

	uidProp := cb.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	// SEQUENCE (optional, used for overrides/versioning)
	if seqProp := cb.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}

	if p := cb.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := cb.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := cb.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := cb.GetProperty(propRelatedTo); p != nil {
		out.RelatedTo = strings.TrimSpace(p.Value)
	}

	// RRULE (we only keep raw string here; expansion will be in expand.go).
	if rruleProp := cb.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	// EXDATE can appear multiple times, each with a comma-separated list.
	for _, p := range cb.GetProperties(ical.ComponentPropertyExdate) {
		loc := propLocation(&p.BaseProperty)
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, _, err := parseICSTime(part, loc); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if ridProp := cb.GetProperty(propRecurrenceID); ridProp != nil {
		if t, _, err := parsePropTime(ridProp); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

// parsePropTime parses a DATE or DATE-TIME property honoring its TZID.
// dateOnly reports a DATE value (all-day).
func parsePropTime(p *ical.IANAProperty) (t time.Time, dateOnly bool, err error) {
	t, dateOnly, err = parseICSTime(p.Value, propLocation(&p.BaseProperty))
	if err != nil {
		return t, false, err
	}
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		dateOnly = true
	}
	return t, dateOnly, nil
}

// propLocation resolves the TZID parameter of p, defaulting to time.Local
// for floating times.
func propLocation(p *ical.BaseProperty) *time.Location {
	if p.ICalParameters == nil {
		return time.Local
	}
	tzs, ok := p.ICalParameters["TZID"]
	if !ok || len(tzs) == 0 {
		return time.Local
	}
	loc, err := time.LoadLocation(strings.Trim(tzs[0], `"`))
	if err != nil {
		appLog.Debug("ics unknown TZID; using local time", "tzid", tzs[0])
		return time.Local
	}
	return loc
}

// parseICSTime parses a basic ICS date/date-time string into time.Time.
// Floating values are read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse("20060102T150405Z", v)
		return t, false, err
	}

	// Local date-time, e.g., 20250101T090000
	if strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102T150405", v, loc)
		return t, false, err
	}

	// Date-only (all-day), e.g., 20250101
	t, err := time.ParseInLocation("20060102", v, loc)
	return t, true, err
}
