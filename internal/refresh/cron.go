package refresh

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "calgrid/internal/log"
)

// Notifier is anything that can be told a refresh is due.
type Notifier interface {
	Notify() bool
}

// Cron triggers a Notifier on a standard five-field cron schedule.
type Cron struct {
	c    *cron.Cron
	spec string
}

// NewCron validates spec and prepares a schedule evaluated in loc. The
// schedule does not run until Start.
func NewCron(spec string, loc *time.Location, target Notifier) (*Cron, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("refresh: invalid cron spec %q: %w", spec, err)
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, func() {
		appLog.Debug("refresh: cron tick", "spec", spec)
		target.Notify()
	}); err != nil {
		return nil, fmt.Errorf("refresh: schedule %q: %w", spec, err)
	}

	return &Cron{c: c, spec: spec}, nil
}

// Start runs the schedule in the background.
func (c *Cron) Start() {
	appLog.Info("refresh schedule started", "spec", c.spec)
	c.c.Start()
}

// Stop halts the schedule and waits for a running tick to return.
func (c *Cron) Stop() {
	<-c.c.Stop().Done()
}

// Next returns the next scheduled tick after now.
func (c *Cron) Next(now time.Time) time.Time {
	entries := c.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Schedule.Next(now)
}
