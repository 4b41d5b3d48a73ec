package commands

import (
	"fmt"
	"io"

	"github.com/sambeau/harq/pkg/har"
)

// CountCmd prints the number of entries in the log.
type CountCmd struct{}

// Run prints the count.
func (c *CountCmd) Run(w io.Writer, h *har.Har) error {
	_, err := fmt.Fprintln(w, len(h.Log.Entries))
	return err
}
