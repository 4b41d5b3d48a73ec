package commands

import (
	"fmt"
	"io"

	"github.com/sambeau/harq/pkg/filter"
	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// FilterCmd compiles an expression once and tests every entry against it.
// The result is a valid HAR document containing only the matching entries,
// or a JSON array of entries with EntriesOnly.
type FilterCmd struct {
	Expr        string
	EntriesOnly bool
}

// Run evaluates the filter. Per-record evaluation errors never abort the
// pass: the record counts as not matched and a diagnostic goes to errw.
func (c *FilterCmd) Run(w, errw io.Writer, h *har.Har) error {
	pred, err := filter.Compile(c.Expr)
	if err != nil {
		return err
	}
	return c.apply(w, errw, h, pred)
}

func (c *FilterCmd) apply(w, errw io.Writer, h *har.Har, pred *filter.Predicate) error {
	var matched []har.Entry
	var indexed []output.IndexedEntry
	var evalErrs int
	var firstErr error

	for i := range h.Log.Entries {
		e := &h.Log.Entries[i]
		ok, err := pred.Test(e)
		if err != nil {
			evalErrs++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			matched = append(matched, *e)
			indexed = append(indexed, output.IndexedEntry{Index: i + 1, Entry: e})
		}
	}

	if evalErrs > 0 {
		fmt.Fprintf(errw, "warning: %d of %d entries failed to evaluate (%v); treated as not matched\n",
			evalErrs, len(h.Log.Entries), firstErr)
	}

	if c.EntriesOnly {
		return output.PrintEntriesJSON(w, indexed)
	}
	return output.PrintHarJSON(w, har.FilterEntries(h, matched))
}
