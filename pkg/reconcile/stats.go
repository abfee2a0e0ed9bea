package reconcile

import (
	"fmt"
	"sync"
)

// RunStats partitions the processed codes into outcome counters. Every code
// contributes to exactly one counter. Safe for concurrent use so the
// destination executor can record from its workers.
type RunStats struct {
	mu          sync.Mutex
	Created     int
	Updated     int
	Skipped     int
	Unpublished int
	Failed      int
}

// Record counts one successfully executed action.
func (s *RunStats) Record(t ActionType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch t {
	case ActionCreate:
		s.Created++
	case ActionUpdate:
		s.Updated++
	case ActionUnpublish:
		s.Unpublished++
	case ActionSkip, ActionReportMissing:
		s.Skipped++
	}
}

// RecordFailure counts one action the destination rejected.
func (s *RunStats) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed++
}

// Total returns the sum of all counters.
func (s *RunStats) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Created + s.Updated + s.Skipped + s.Unpublished + s.Failed
}

// String summarizes the stats for logs and run output.
func (s *RunStats) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("created=%d updated=%d skipped=%d unpublished=%d failed=%d",
		s.Created, s.Updated, s.Skipped, s.Unpublished, s.Failed)
}

// PlanStats tallies a plan without executing it, for dry runs and
// previews. Report-missing actions count as skips.
func PlanStats(actions []Action) *RunStats {
	stats := &RunStats{}
	for _, a := range actions {
		stats.Record(a.Type)
	}
	return stats
}
