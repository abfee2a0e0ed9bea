package quote

import (
	"github.com/japanir/equitysync/pkg/registry"
)

// Merge joins registry entries with their fetched quotes into one record per
// registry entry, in registry order. Entries with no quote get a failure
// placeholder so the output always covers the full registry.
func Merge(reg *registry.Registry, quotes []*Quote) []*Quote {
	idx := Index(quotes)
	merged := make([]*Quote, 0, reg.Len())
	for _, entry := range reg.Entries() {
		q, ok := idx[entry.Code]
		if !ok {
			q = NewFailure(entry.Code, 0, nil)
			q.Error = "no fetch result"
		}
		q.Company = entry.Company
		merged = append(merged, q)
	}
	return merged
}

// SuccessCodes returns the set of codes whose fetch succeeded.
func SuccessCodes(quotes []*Quote) map[string]bool {
	codes := make(map[string]bool)
	for _, q := range quotes {
		if q.Success() {
			codes[q.Code] = true
		}
	}
	return codes
}
