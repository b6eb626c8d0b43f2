package layout

import "time"

// Filter decides whether an occurrence takes part in a layout pass.
type Filter[P any] func(Occurrence[P]) bool

// AllDayOnly accepts all-day occurrences.
func AllDayOnly[P any]() Filter[P] {
	return func(o Occurrence[P]) bool { return o.AllDay }
}

// TimedOnly accepts occurrences that are not all-day.
func TimedOnly[P any]() Filter[P] {
	return func(o Occurrence[P]) bool { return !o.AllDay }
}

// MultiDayOnly accepts occurrences lasting at least one full day.
func MultiDayOnly[P any]() Filter[P] {
	return func(o Occurrence[P]) bool { return o.End.Sub(o.Start) >= 24*time.Hour }
}

// SingleDayOnly accepts occurrences shorter than one full day.
func SingleDayOnly[P any]() Filter[P] {
	return func(o Occurrence[P]) bool { return o.End.Sub(o.Start) < 24*time.Hour }
}

// Any accepts an occurrence when at least one of fs does. With no filters it
// accepts everything.
func Any[P any](fs ...Filter[P]) Filter[P] {
	return func(o Occurrence[P]) bool {
		if len(fs) == 0 {
			return true
		}
		for _, f := range fs {
			if f(o) {
				return true
			}
		}
		return false
	}
}

// Not inverts f.
func Not[P any](f Filter[P]) Filter[P] {
	return func(o Occurrence[P]) bool { return !f(o) }
}
