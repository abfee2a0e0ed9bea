// Package registry loads and validates the authoritative list of entities
// the pipeline operates on. The registry is a CSV file with one row per
// listed company, keyed by its four character securities code.
package registry

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"golang.org/x/text/width"

	"github.com/japanir/equitysync/pkg/errors"
	"github.com/japanir/equitysync/pkg/logging"
)

// Required CSV columns. Additional columns are preserved but unused.
const (
	ColumnCode    = "code"
	ColumnCompany = "company_name"
)

// Entry is a single registry row.
type Entry struct {
	// Code is the four character securities code, e.g. "7203".
	Code string
	// Company is the company display name.
	Company string
	// Extra holds any additional CSV columns keyed by header name.
	Extra map[string]string
}

// Registry is an ordered collection of entries. Order follows the source
// file so batch runs are reproducible.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// Load reads a registry from a CSV file.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("path", path).Msg("Failed to close registry file")
		}
	}()

	reg, err := Parse(f)
	if err != nil {
		if schemaErr, ok := err.(*errors.SchemaError); ok {
			schemaErr.File = path
			return nil, schemaErr
		}
		return nil, err
	}
	return reg, nil
}

// Parse reads registry rows from r. The first row is the header and must
// contain the code and company_name columns.
func Parse(r io.Reader) (*Registry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.WrapParse("csv", "registry", err)
	}

	codeIdx, companyIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case ColumnCode:
			codeIdx = i
		case ColumnCompany:
			companyIdx = i
		}
	}
	if codeIdx < 0 || companyIdx < 0 {
		missing := []string{}
		if codeIdx < 0 {
			missing = append(missing, ColumnCode)
		}
		if companyIdx < 0 {
			missing = append(missing, ColumnCompany)
		}
		return nil, &errors.SchemaError{Columns: missing}
	}

	reg := &Registry{index: make(map[string]int)}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.WrapParse("csv", "registry", err)
		}

		code := NormalizeCode(record[codeIdx])
		if code == "" {
			continue
		}
		if !ValidCode(code) {
			logging.Warn().Str("code", code).Int("line", line).Msg("Skipping invalid securities code")
			continue
		}
		if _, dup := reg.index[code]; dup {
			logging.Warn().Str("code", code).Int("line", line).Msg("Skipping duplicate securities code")
			continue
		}

		entry := Entry{
			Code:    code,
			Company: strings.TrimSpace(record[companyIdx]),
		}
		for i, col := range header {
			if i == codeIdx || i == companyIdx || i >= len(record) {
				continue
			}
			if entry.Extra == nil {
				entry.Extra = make(map[string]string)
			}
			entry.Extra[strings.TrimSpace(strings.ToLower(col))] = strings.TrimSpace(record[i])
		}

		reg.index[code] = len(reg.entries)
		reg.entries = append(reg.entries, entry)
	}

	return reg, nil
}

// NormalizeCode trims whitespace and narrows full width digits and letters,
// which appear in registry exports produced by Japanese spreadsheet tools.
func NormalizeCode(code string) string {
	return strings.TrimSpace(width.Narrow.String(code))
}

// ValidCode reports whether code is a well formed securities code: exactly
// four alphanumeric characters.
func ValidCode(code string) bool {
	if len(code) != 4 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}

// Entries returns all registry entries in source order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// Codes returns all securities codes in source order.
func (r *Registry) Codes() []string {
	codes := make([]string, len(r.entries))
	for i, e := range r.entries {
		codes[i] = e.Code
	}
	return codes
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Lookup returns the entry for code, if present.
func (r *Registry) Lookup(code string) (Entry, bool) {
	i, ok := r.index[NormalizeCode(code)]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Has reports whether code is present in the registry.
func (r *Registry) Has(code string) bool {
	_, ok := r.index[NormalizeCode(code)]
	return ok
}

// Select returns a subset of the registry for a run. When ticker is
// non-empty only that entry is returned. Otherwise skip entries are dropped
// from the front and at most limit entries are kept (limit 0 means all).
func (r *Registry) Select(ticker string, skip, limit int) (*Registry, error) {
	if ticker != "" {
		entry, ok := r.Lookup(ticker)
		if !ok {
			code := NormalizeCode(ticker)
			if !ValidCode(code) {
				return nil, errors.NewValidationError("ticker", ticker, "must be a four character alphanumeric code")
			}
			// A valid code absent from the registry still gets a run,
			// mirroring ad hoc single ticker fetches.
			entry = Entry{Code: code}
		}
		sub := &Registry{index: map[string]int{entry.Code: 0}}
		sub.entries = []Entry{entry}
		return sub, nil
	}

	entries := r.entries
	if skip > 0 {
		if skip >= len(entries) {
			entries = nil
		} else {
			entries = entries[skip:]
		}
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	sub := &Registry{index: make(map[string]int, len(entries))}
	sub.entries = make([]Entry, len(entries))
	copy(sub.entries, entries)
	for i, e := range sub.entries {
		sub.index[e.Code] = i
	}
	return sub, nil
}
