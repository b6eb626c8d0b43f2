// Package view turns an occurrence source into laid-out snapshots for one
// of the supported grid kinds (day, week, month, hourly).
package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"calgrid/internal/config"
	"calgrid/internal/layout"
	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

// Kind selects which periods a snapshot covers.
type Kind string

const (
	KindDay    Kind = "day"
	KindWeek   Kind = "week"
	KindMonth  Kind = "month"
	KindHourly Kind = "hourly"
)

// monthRows is the number of week rows of a month grid; six rows fit every
// month regardless of the weekday it starts on.
const monthRows = 6

// ParseKind parses a view name. The empty string means KindWeek.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindWeek, nil
	case KindDay, KindWeek, KindMonth, KindHourly:
		return k, nil
	default:
		return "", fmt.Errorf("view: unknown kind %q", s)
	}
}

// Source yields the occurrences intersecting [from, to].
type Source interface {
	Occurrences(ctx context.Context, from, to time.Time) ([]model.Occurrence, error)
}

// Entry is a laid-out occurrence.
type Entry = layout.Entry[*model.Occurrence]

// Page is one laid-out period: a day, a week row or one day of an hourly
// view. Lines[i] holds the entries of line i ordered by start slot.
type Page struct {
	PeriodStart time.Time
	Length      int
	Unit        layout.Unit
	Lines       [][]Entry
}

// LineCount returns the number of lines on the page.
func (p *Page) LineCount() int { return len(p.Lines) }

// SlotStart returns the instant slot i of the page begins.
func (p *Page) SlotStart(i int) time.Time {
	return layout.Period{Start: p.PeriodStart, Length: p.Length, Unit: p.Unit}.SlotStart(i)
}

// Snapshot is every page of a view, published together. It is not modified
// after Build returns.
type Snapshot struct {
	Kind        Kind
	Anchor      time.Time
	RangeStart  time.Time
	RangeEnd    time.Time
	Pages       []Page
	AllDay      *Page
	GeneratedAt time.Time
}

// Options configures a Builder.
type Options struct {
	Kind      Kind
	Location  *time.Location
	WeekStart time.Weekday
	Slot      time.Duration
	Order     layout.Order
	Filters   []model.Filter

	// HiddenDays are left out of day and week grids and the all-day banner.
	HiddenDays layout.WeekdaySet
}

// OptionsFromConfig derives builder options from cfg. An unknown timezone is
// logged and replaced by the local zone.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	kind, err := ParseKind(cfg.View)
	if err != nil {
		return Options{}, err
	}
	order, err := layout.ParseOrder(cfg.Order)
	if err != nil {
		return Options{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		appLog.Warn("unknown timezone; using local time", "timezone", cfg.Timezone, "err", err)
	}

	var filters []model.Filter
	if cfg.HideTodos {
		filters = append(filters, model.HideTodos())
	}
	if cfg.HideCompletedTodos {
		filters = append(filters, model.HideCompletedTodos())
	}
	if cfg.HideSubTodos {
		filters = append(filters, model.HideSubTodos())
	}

	return Options{
		Kind:      kind,
		Location:  loc,
		WeekStart: cfg.FirstWeekday(),
		Slot:      time.Duration(cfg.SlotMinutes) * time.Minute,
		Order:     order,
		Filters:   filters,

		HiddenDays: layout.Weekdays(cfg.HiddenWeekdays()...),
	}, nil
}

// Builder computes snapshots from a Source.
type Builder struct {
	source Source
	opts   Options
	now    func() time.Time
}

// NewBuilder returns a Builder reading from source.
func NewBuilder(source Source, opts Options) *Builder {
	if opts.Kind == "" {
		opts.Kind = KindWeek
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Slot <= 0 {
		opts.Slot = 15 * time.Minute
	}
	return &Builder{source: source, opts: opts, now: time.Now}
}

// Options returns the builder configuration.
func (b *Builder) Options() Options { return b.opts }

// Location returns the display location.
func (b *Builder) Location() *time.Location { return b.opts.Location }

// Build lays out the view containing anchor.
func (b *Builder) Build(ctx context.Context, anchor time.Time) (*Snapshot, error) {
	anchor = anchor.In(b.opts.Location)
	first, n := b.periods(anchor)
	rangeEnd := first.Shift(n - 1).End()

	var allDay layout.Period
	if b.opts.Kind == KindHourly {
		allDay = layout.DayPeriod(first.Start, n)
		rangeEnd = allDay.End()
	}

	occs, err := b.source.Occurrences(ctx, first.Start, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("view: load occurrences: %w", err)
	}
	input := model.ToLayout(occs)

	engine := layout.Engine[*model.Occurrence]{
		Order:      b.opts.Order,
		Filters:    b.opts.Filters,
		HiddenDays: b.opts.HiddenDays,
	}
	if b.opts.Kind == KindHourly {
		engine.Filters = withFilters(b.opts.Filters,
			layout.TimedOnly[*model.Occurrence](),
			layout.SingleDayOnly[*model.Occurrence](),
		)
	}

	pages, err := engine.ComputePages(ctx, first, n, input)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Kind:        b.opts.Kind,
		Anchor:      anchor,
		RangeStart:  first.Start,
		RangeEnd:    rangeEnd,
		Pages:       make([]Page, 0, len(pages)),
		GeneratedAt: b.now(),
	}
	for _, p := range pages {
		snap.Pages = append(snap.Pages, newPage(p.Period, p.Entries))
	}

	if b.opts.Kind == KindHourly {
		banner := layout.Engine[*model.Occurrence]{
			Order: b.opts.Order,
			Filters: withFilters(b.opts.Filters, layout.Any(
				layout.AllDayOnly[*model.Occurrence](),
				layout.MultiDayOnly[*model.Occurrence](),
			)),
			HiddenDays: b.opts.HiddenDays,
		}
		page := newPage(allDay, banner.Compute(allDay, input))
		snap.AllDay = &page
	}

	appLog.Debug("view built",
		"kind", snap.Kind,
		"anchor", anchor.Format(time.DateOnly),
		"pages", len(snap.Pages),
		"occurrences", len(occs),
	)
	return snap, nil
}

// periods returns the first period of the view and the page count.
func (b *Builder) periods(anchor time.Time) (layout.Period, int) {
	day := layout.DayPeriod(anchor, 1).Start
	switch b.opts.Kind {
	case KindDay:
		return layout.DayPeriod(day, 1), 1
	case KindMonth:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return layout.DayPeriod(weekStart(first, b.opts.WeekStart), 7), monthRows
	case KindHourly:
		return layout.SlotPeriod(weekStart(day, b.opts.WeekStart), b.opts.Slot), 7
	default:
		return layout.DayPeriod(weekStart(day, b.opts.WeekStart), 7), 1
	}
}

// weekStart returns the first day of the week containing day.
func weekStart(day time.Time, first time.Weekday) time.Time {
	back := (int(day.Weekday()) - int(first) + 7) % 7
	return day.AddDate(0, 0, -back)
}

func withFilters(base []model.Filter, extra ...model.Filter) []model.Filter {
	out := make([]model.Filter, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func newPage(p layout.Period, entries []Entry) Page {
	return Page{
		PeriodStart: p.Start,
		Length:      p.Length,
		Unit:        p.Unit,
		Lines:       layout.Lines(entries),
	}
}
