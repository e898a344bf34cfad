// Package notify announces finished passes to the configured targets.
// Delivery is best-effort: a dead webhook or relay is logged and
// skipped, it never fails the run that produced the summary.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobfeed-engine/internal/logger"
	"jobfeed-engine/internal/pipeline"
)

// Notifier delivers one run summary to one target.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, sum pipeline.Summary) error
}

// Fanout delivers a summary to every target in order.
type Fanout struct {
	Targets []Notifier
	Log     logger.Logger
}

// Announce sends the summary to all targets. Passes that stored
// nothing are not announced; nobody wants an empty digest.
func (f *Fanout) Announce(ctx context.Context, sum pipeline.Summary) {
	if sum.Stored == 0 {
		return
	}
	for _, n := range f.Targets {
		if err := n.Notify(ctx, sum); err != nil {
			f.Log.Warnf("Notification via %s failed: %v", n.Name(), err)
		}
	}
}

// message renders the plain-text summary shared by all targets.
func message(sum pipeline.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job Aggregator Bot: %d new jobs stored.\n", sum.Stored)
	fmt.Fprintf(&b, "Scraped %d, %d after dedup, %d enriched.\n", sum.Scraped, sum.AfterDedup, sum.Enriched)
	fmt.Fprintf(&b, "Run %s took %s.", sum.RunID, sum.Finished.Sub(sum.Started).Round(time.Second))
	return b.String()
}
