package model

import (
	"time"

	"calgrid/internal/layout"
)

// Filter is a layout predicate over occurrence payloads.
type Filter = layout.Filter[*Occurrence]

// HideTodos rejects todos.
func HideTodos() Filter {
	return func(o layout.Occurrence[*Occurrence]) bool {
		return o.Payload == nil || !o.Payload.IsTodo()
	}
}

// HideCompletedTodos rejects todos that are done.
func HideCompletedTodos() Filter {
	return func(o layout.Occurrence[*Occurrence]) bool {
		return o.Payload == nil || !(o.Payload.IsTodo() && o.Payload.Completed)
	}
}

// HideSubTodos rejects incidences that have a parent, events included.
func HideSubTodos() Filter {
	return func(o layout.Occurrence[*Occurrence]) bool {
		return o.Payload == nil || !o.Payload.HasParent()
	}
}

// OnlySources accepts occurrences from the given calendar sources. With no
// IDs it accepts everything.
func OnlySources(ids ...string) Filter {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(o layout.Occurrence[*Occurrence]) bool {
		if len(set) == 0 {
			return true
		}
		if o.Payload == nil {
			return false
		}
		_, ok := set[o.Payload.SourceID]
		return ok
	}
}

// ToLayout converts occurrences into engine input. All-day ends are
// exclusive midnights; the engine counts inclusive dates, so they are pulled
// back by one nanosecond.
func ToLayout(occs []Occurrence) []layout.Occurrence[*Occurrence] {
	out := make([]layout.Occurrence[*Occurrence], 0, len(occs))
	for i := range occs {
		o := &occs[i]
		end := o.End
		if o.AllDay && end.After(o.Start) {
			end = end.Add(-time.Nanosecond)
		}
		out = append(out, layout.Occurrence[*Occurrence]{
			Start:   o.Start,
			End:     end,
			AllDay:  o.AllDay,
			Payload: o,
		})
	}
	return out
}
