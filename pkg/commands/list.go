package commands

import (
	"fmt"
	"io"

	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// ListCmd lists entries in table, JSON, or compact form.
type ListCmd struct {
	Output output.Format
	Limit  int
	Head   int
	Tail   int
	MaxURL int
}

// Run prints the listing.
func (c *ListCmd) Run(w io.Writer, h *har.Har) error {
	entries := applyLimits(output.IndexEntries(h), c.Head, c.Tail, c.Limit)

	switch c.Output {
	case output.FormatJSON:
		return output.PrintSummariesJSON(w, entries)
	case output.FormatCompact:
		for _, ie := range entries {
			fmt.Fprintf(w, "%d\t%s\t%d\t%.0fms\t%s\n",
				ie.Index,
				ie.Entry.Request.Method,
				ie.Entry.Response.Status,
				ie.Entry.Time,
				ie.Entry.Request.URL)
		}
		return nil
	default:
		output.PrintEntriesTable(w, entries, c.MaxURL)
		return nil
	}
}
