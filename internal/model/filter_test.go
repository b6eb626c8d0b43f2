package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calgrid/internal/layout"
)

func TestToLayout_AllDayEndIsInclusive(t *testing.T) {
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	occs := []Occurrence{
		{UID: "holiday", AllDay: true, Start: day, End: day.AddDate(0, 0, 1)},
		{UID: "meeting", Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
	}

	got := ToLayout(occs)
	require.Len(t, got, 2)
	assert.Equal(t, day.AddDate(0, 0, 1).Add(-time.Nanosecond), got[0].End)
	assert.Same(t, &occs[0], got[0].Payload)
	assert.Equal(t, occs[1].End, got[1].End)

	// A one-day all-day event occupies exactly one column of a week.
	entries := layout.Compute(layout.DayPeriod(day.AddDate(0, 0, -1), 7), got[:1])
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Start)
	assert.Equal(t, 1, entries[0].Duration)
}

func TestPayloadFilters(t *testing.T) {
	wrap := func(o Occurrence) layout.Occurrence[*Occurrence] {
		return layout.Occurrence[*Occurrence]{Payload: &o}
	}
	event := wrap(Occurrence{Kind: KindEvent, SourceID: "work"})
	todo := wrap(Occurrence{Kind: KindTodo, SourceID: "home"})
	done := wrap(Occurrence{Kind: KindTodo, Completed: true})
	sub := wrap(Occurrence{Kind: KindTodo, RelatedTo: "parent"})
	child := wrap(Occurrence{Kind: KindEvent, RelatedTo: "parent"})

	assert.True(t, HideTodos()(event))
	assert.False(t, HideTodos()(todo))

	assert.True(t, HideCompletedTodos()(todo))
	assert.False(t, HideCompletedTodos()(done))

	assert.True(t, HideSubTodos()(todo))
	assert.False(t, HideSubTodos()(sub))
	assert.True(t, HideSubTodos()(event))
	assert.False(t, HideSubTodos()(child))

	assert.True(t, OnlySources()(todo))
	assert.True(t, OnlySources("work")(event))
	assert.False(t, OnlySources("work")(todo))
}
