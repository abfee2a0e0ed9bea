package reconcile

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// WritePreview renders a plan as a human readable table, used for dry runs
// before any destination write happens.
func WritePreview(w io.Writer, actions []Action) error {
	table := tablewriter.NewTable(w)
	table.Header("CODE", "ACTION", "COMPANY", "REASON")

	for _, a := range actions {
		company := ""
		if a.Record != nil {
			company = a.Record.Company
		}
		if err := table.Append(a.Code, string(a.Type), company, a.Reason); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	stats := PlanStats(actions)
	_, err := fmt.Fprintf(w, "\nPlan: %s\n", stats)
	return err
}

// WriteSummary renders end of run statistics and the report-missing list.
func WriteSummary(w io.Writer, actions []Action, stats *RunStats) error {
	if _, err := fmt.Fprintf(w, "Run complete: %s\n", stats); err != nil {
		return err
	}

	missing := Missing(actions)
	if len(missing) == 0 {
		return nil
	}

	if _, err := fmt.Fprintln(w, "\nPublished codes absent from registry (review for delisting):"); err != nil {
		return err
	}
	table := tablewriter.NewTable(w)
	table.Header("CODE", "POST ID", "SLUG", "LOCALE")
	for _, a := range missing {
		for _, e := range a.Entries {
			if err := table.Append(e.Code, fmt.Sprintf("%d", e.ID), e.Slug, e.Locale); err != nil {
				return err
			}
		}
	}
	return table.Render()
}
