// Package reconcile classifies every securities code into exactly one
// publish action by comparing three point in time inputs: the registry
// (what should exist), the fetch results (what data we have), and the
// destination snapshot (what is currently published). Classification is a
// pure function; executing the resulting plan is the destination's job.
package reconcile

import (
	"sort"

	"github.com/japanir/equitysync/pkg/quote"
)

// ActionType tags what should happen to one code.
type ActionType string

// Action types. Every code in the registry or destination gets exactly one.
const (
	ActionCreate        ActionType = "create"
	ActionUpdate        ActionType = "update"
	ActionSkip          ActionType = "skip"
	ActionUnpublish     ActionType = "unpublish"
	ActionReportMissing ActionType = "report-missing"
)

// DestinationEntry is one published record as seen in the destination
// snapshot. A code may appear once per locale.
type DestinationEntry struct {
	Code   string
	ID     int
	Slug   string
	Locale string
}

// Snapshot is the destination's published state, captured once at run
// start and read only thereafter.
type Snapshot struct {
	entries map[string][]DestinationEntry
}

// NewSnapshot builds a snapshot from destination entries.
func NewSnapshot(entries []DestinationEntry) *Snapshot {
	s := &Snapshot{entries: make(map[string][]DestinationEntry)}
	for _, e := range entries {
		s.entries[e.Code] = append(s.entries[e.Code], e)
	}
	return s
}

// Has reports whether code has at least one published entry.
func (s *Snapshot) Has(code string) bool {
	return len(s.entries[code]) > 0
}

// Entries returns the published entries for code.
func (s *Snapshot) Entries(code string) []DestinationEntry {
	return s.entries[code]
}

// Codes returns every published code, sorted.
func (s *Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.entries))
	for c := range s.entries {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of distinct published codes.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Action is one classified decision for one code.
type Action struct {
	Code string
	Type ActionType
	// Reason explains skips and report-missing entries.
	Reason string
	// Record is the integrated fetch record, set for create and update.
	Record *quote.Quote
	// Entries are the destination entries the action touches, set for
	// update, unpublish, and report-missing.
	Entries []DestinationEntry
}

// Options modify classification.
type Options struct {
	// UpdateOnly downgrades every create to a skip.
	UpdateOnly bool
	// AutoUnpublish unpublishes registry codes whose fetch failed but
	// which are still published. Off by default; the conservative
	// behavior is a skip with a warning.
	AutoUnpublish bool
}

// Plan classifies every code in the registry and destination into exactly
// one action. Registry codes come first in registry order, then codes only
// present in the destination in sorted order, so plans are deterministic
// for identical inputs.
func Plan(registryCodes []string, quotes []*quote.Quote, dest *Snapshot, opts Options) []Action {
	if dest == nil {
		dest = NewSnapshot(nil)
	}
	fetched := quote.Index(quotes)

	actions := make([]Action, 0, len(registryCodes)+dest.Len())
	inRegistry := make(map[string]bool, len(registryCodes))

	for _, code := range registryCodes {
		if inRegistry[code] {
			continue
		}
		inRegistry[code] = true
		actions = append(actions, classify(code, fetched[code], dest, opts))
	}

	for _, code := range dest.Codes() {
		if inRegistry[code] {
			continue
		}
		actions = append(actions, Action{
			Code:    code,
			Type:    ActionReportMissing,
			Reason:  "published but absent from registry",
			Entries: dest.Entries(code),
		})
	}

	return actions
}

// classify decides the action for one registry code.
func classify(code string, q *quote.Quote, dest *Snapshot, opts Options) Action {
	published := dest.Has(code)
	succeeded := q != nil && q.Success()

	switch {
	case succeeded && !published:
		if opts.UpdateOnly {
			return Action{Code: code, Type: ActionSkip, Reason: "update-only mode", Record: q}
		}
		return Action{Code: code, Type: ActionCreate, Record: q}

	case succeeded && published:
		return Action{Code: code, Type: ActionUpdate, Record: q, Entries: dest.Entries(code)}

	case !succeeded && published:
		if opts.AutoUnpublish {
			return Action{Code: code, Type: ActionUnpublish, Reason: "fetch failed", Entries: dest.Entries(code)}
		}
		return Action{Code: code, Type: ActionSkip, Reason: "fetch failed, still published", Entries: dest.Entries(code)}

	default:
		return Action{Code: code, Type: ActionSkip, Reason: "fetch failed"}
	}
}

// Missing returns the report-missing actions from a plan, the list of
// published codes needing manual delisting review.
func Missing(actions []Action) []Action {
	var out []Action
	for _, a := range actions {
		if a.Type == ActionReportMissing {
			out = append(out, a)
		}
	}
	return out
}
