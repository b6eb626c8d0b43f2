package ics

import (
	"context"
	"errors"
	"fmt"
	"time"

	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

// Collector turns configured sources into expanded occurrences. It is the
// occurrence source consumed by the view builder.
type Collector struct {
	fetcher  *Fetcher
	sources  []Source
	location *time.Location
	maxOcc   int
}

// NewCollector creates a Collector. A nil location means time.Local.
func NewCollector(fetcher *Fetcher, sources []Source, location *time.Location, maxOccurrences int) *Collector {
	return &Collector{
		fetcher:  fetcher,
		sources:  sources,
		location: location,
		maxOcc:   maxOccurrences,
	}
}

// Occurrences fetches, parses and expands every source for [from, to].
// Failing sources are logged and skipped; an error is returned only when no
// source produced data.
func (c *Collector) Occurrences(ctx context.Context, from, to time.Time) ([]model.Occurrence, error) {
	if len(c.sources) == 0 {
		return []model.Occurrence{}, nil
	}

	results, errs := c.fetcher.FetchAll(ctx, c.sources)
	if len(results) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("ics: all %d sources failed: %w", len(errs), errors.Join(errs...))
	}

	parsed := make([]ParsedEvent, 0)
	for _, res := range results {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics collect: parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	expanded, err := ExpandOccurrences(parsed, ExpandConfig{
		DisplayLocation:        c.location,
		RangeStart:             from,
		RangeEnd:               to,
		MaxOccurrencesPerEvent: c.maxOcc,
	})
	if err != nil {
		return nil, err
	}

	appLog.Debug("ics collect completed",
		"sources", len(c.sources),
		"fetched", len(results),
		"occurrences", len(expanded.Occurrences),
		"truncated", len(expanded.TruncatedEvents),
	)
	return expanded.Occurrences, nil
}
