package model

import "time"

// Kind distinguishes events from todos.
type Kind string

const (
	KindEvent Kind = "event"
	KindTodo  Kind = "todo"
)

// Occurrence represents a single concrete instance of an event or todo
// (after recurrence expansion and timezone normalization). It is the payload
// carried through the layout engine to the renderers.
type Occurrence struct {
	SourceID string `json:"source_id"` // calendar source ID
	UID      string `json:"uid"`       // iCalendar UID

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// incidence, typically derived from the local start time.
	InstanceKey string `json:"instance_key"`

	Kind Kind `json:"kind"`

	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	// Color is the source color from configuration, if any.
	Color string `json:"color,omitempty"`

	// Todo state.
	Completed bool   `json:"completed,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	RelatedTo string `json:"related_to,omitempty"`

	AllDay bool `json:"all_day"`

	// Start / End are in the configured display timezone. For all-day
	// incidences End is the exclusive midnight after the last day.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsTodo reports whether o is a todo occurrence.
func (o *Occurrence) IsTodo() bool { return o.Kind == KindTodo }

// HasParent reports whether o is related to a parent incidence.
func (o *Occurrence) HasParent() bool { return o.RelatedTo != "" }
