package commands

import (
	"io"

	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// ViewCmd shows the detailed request/response/timing view of one entry.
type ViewCmd struct {
	Index       int
	Output      output.Format
	Full        bool
	NoBody      bool
	HeadersOnly bool
}

// Run prints the entry.
func (c *ViewCmd) Run(w io.Writer, h *har.Har) error {
	e, err := entryAt(h, c.Index)
	if err != nil {
		return err
	}

	if c.Output == output.FormatJSON {
		return output.PrintEntryJSON(w, e)
	}

	showBody := c.Full && !c.NoBody && !c.HeadersOnly
	output.PrintEntryDetail(w, c.Index, e, showBody)
	return nil
}
