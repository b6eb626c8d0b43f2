package layout

import "time"

// Unit is the width of a single slot in a Period.
//
// Day is special-cased: day slots follow calendar dates in the period's
// location, so a DST transition never shifts an occurrence into the wrong
// column. Any smaller unit divides the wall clock from the period's start, so
// 09:00 always falls in the same slot whether the day has 23, 24 or 25 hours.
type Unit time.Duration

// Day is the slot width of week and month grids.
const Day = Unit(24 * time.Hour)

// Duration returns the unit as a time.Duration.
func (u Unit) Duration() time.Duration { return time.Duration(u) }

// IsDay reports whether u uses calendar-day slots.
func (u Unit) IsDay() bool { return u <= 0 || u >= Day }

// Period is the window being laid out: Length consecutive slots of width Unit
// starting at Start.
type Period struct {
	Start  time.Time
	Length int
	Unit   Unit
}

// DayPeriod returns a period of the given number of days. start is truncated
// to its calendar date in its own location.
func DayPeriod(start time.Time, days int) Period {
	return Period{Start: startOfDay(start), Length: days, Unit: Day}
}

// SlotPeriod returns a single-day period divided into slot-wide blocks,
// e.g. 96 slots for 15 minutes. slot must divide 24h; a zero or oversized
// slot falls back to one-hour blocks.
func SlotPeriod(day time.Time, slot time.Duration) Period {
	if slot <= 0 || slot > 24*time.Hour {
		slot = time.Hour
	}
	return Period{
		Start:  startOfDay(day),
		Length: int((24 * time.Hour) / slot),
		Unit:   Unit(slot),
	}
}

// Shift returns the period moved by n whole periods. A slot period covering
// whole days moves by calendar days, so the next page of an hourly view
// starts at midnight even across a DST change.
func (p Period) Shift(n int) Period {
	if n == 0 {
		return p
	}
	out := p
	switch span := time.Duration(p.Length) * p.Unit.Duration(); {
	case p.Unit.IsDay():
		out.Start = p.Start.AddDate(0, 0, n*p.Length)
	case span%(24*time.Hour) == 0:
		out.Start = p.Start.AddDate(0, 0, n*int(span/(24*time.Hour)))
	default:
		out.Start = p.Start.Add(time.Duration(n) * span)
	}
	return out
}

// End returns the exclusive end instant of the period.
func (p Period) End() time.Time {
	if p.Unit.IsDay() {
		return p.Start.AddDate(0, 0, p.Length)
	}
	span := time.Duration(p.Length) * p.Unit.Duration()
	if span%(24*time.Hour) == 0 {
		return p.Start.AddDate(0, 0, int(span/(24*time.Hour)))
	}
	return p.Start.Add(span)
}

// SlotStart returns the instant at which slot i begins.
func (p Period) SlotStart(i int) time.Time {
	if p.Unit.IsDay() {
		return p.Start.AddDate(0, 0, i)
	}
	s := p.Start
	return time.Date(s.Year(), s.Month(), s.Day(), s.Hour(), s.Minute(), s.Second(),
		s.Nanosecond()+int(time.Duration(i)*p.Unit.Duration()), s.Location())
}

// WeekdaySet is a set of weekdays, one bit per time.Weekday.
type WeekdaySet uint8

// Weekdays returns the set holding days.
func Weekdays(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			s |= 1 << d
		}
	}
	return s
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool { return s&(1<<d) != 0 }

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, both read in loc.
func daysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	ca := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	cb := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(cb.Sub(ca) / (24 * time.Hour))
}

// wallSince returns the wall-clock distance from a to b, both read in loc.
// Unlike b.Sub(a) it ignores UTC offset changes between the two.
func wallSince(a, b time.Time, loc *time.Location) time.Duration {
	return civil(b.In(loc)).Sub(civil(a.In(loc)))
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// floorDiv and ceilDiv divide durations rounding towards -inf and +inf.
func floorDiv(d, unit time.Duration) int {
	q := d / unit
	if d%unit != 0 && d < 0 {
		q--
	}
	return int(q)
}

func ceilDiv(d, unit time.Duration) int {
	q := d / unit
	if d%unit != 0 && d > 0 {
		q++
	}
	return int(q)
}
