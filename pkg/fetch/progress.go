package fetch

import (
	"sync"
	"time"

	"github.com/japanir/equitysync/pkg/logging"
)

// ProgressInterval is how many finished fetches pass between progress log
// lines.
const ProgressInterval = 10

// Tracker counts run progress and periodically logs a snapshot with an
// estimated time to completion. Safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	started   time.Time
}

// NewTracker creates a tracker for a run of total items.
func NewTracker(total int) *Tracker {
	return &Tracker{total: total, started: time.Now()}
}

// Complete records one successful fetch.
func (t *Tracker) Complete() {
	t.record(false)
}

// Fail records one failed fetch.
func (t *Tracker) Fail() {
	t.record(true)
}

func (t *Tracker) record(failed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if failed {
		t.failed++
	} else {
		t.completed++
	}

	done := t.completed + t.failed
	if done%ProgressInterval == 0 && done < t.total {
		logging.Info().
			Int("done", done).
			Int("total", t.total).
			Int("failed", t.failed).
			Dur("eta", t.etaLocked(done)).
			Msg("Fetch progress")
	}
}

// etaLocked estimates remaining time from pace so far. Caller holds mu.
func (t *Tracker) etaLocked(done int) time.Duration {
	if done == 0 {
		return 0
	}
	elapsed := time.Since(t.started)
	remaining := t.total - done
	return time.Duration(int64(elapsed) / int64(done) * int64(remaining))
}

// Counts returns the completed and failed totals so far.
func (t *Tracker) Counts() (completed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed, t.failed
}

// LogSummary logs the final tally for the run.
func (t *Tracker) LogSummary() {
	t.mu.Lock()
	defer t.mu.Unlock()

	logging.Info().
		Int("total", t.total).
		Int("succeeded", t.completed).
		Int("failed", t.failed).
		Dur("elapsed", time.Since(t.started)).
		Msg("Fetch run finished")
}
