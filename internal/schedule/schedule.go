// Package schedule wires up the cron entry that re-runs the pipeline.
// The only grammar the user config accepts is "daily HH:MM", 24-hour
// clock, interpreted in UTC.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/robfig/cron/v3"

	"jobfeed-engine/internal/logger"
)

type Daily struct {
	Hour   int
	Minute int
}

var dailyRe = regexp.MustCompile(`^daily ([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Parse accepts exactly "daily HH:MM". Anything else is an error, so a
// typo in the config surfaces at startup instead of silently never firing.
func Parse(spec string) (Daily, error) {
	m := dailyRe.FindStringSubmatch(spec)
	if m == nil {
		return Daily{}, fmt.Errorf("bad schedule %q: want \"daily HH:MM\" (24-hour clock)", spec)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return Daily{Hour: h, Minute: min}, nil
}

func (d Daily) String() string { return fmt.Sprintf("daily %02d:%02d", d.Hour, d.Minute) }

// CronSpec renders the entry for robfig/cron, pinned to UTC.
func (d Daily) CronSpec() string {
	return fmt.Sprintf("CRON_TZ=UTC %d %d * * *", d.Minute, d.Hour)
}

// Scheduler wraps robfig/cron and manages the recurring pass.
type Scheduler struct {
	cron *cron.Cron
	at   Daily
	pass func()
	log  logger.Logger
}

func New(at Daily, log logger.Logger, pass func()) *Scheduler {
	return &Scheduler{cron: cron.New(), at: at, pass: pass, log: log}
}

// Start registers the entry and starts the clock. One pass also runs
// immediately so a fresh install is populated without waiting for the
// first tick.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.at.CronSpec(), s.pass); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.log.Infof("[schedule] pass scheduled for %02d:%02d UTC each day", s.at.Hour, s.at.Minute)
	go s.pass()
	return nil
}

// Stop halts the clock and waits for an in-flight pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Infof("[schedule] stopped")
}
