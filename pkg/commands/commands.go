// Package commands implements the harq subcommands as testable functions
// over a loaded HAR document. Flag parsing lives in cmd/harq; each command
// here is a struct of options plus a Run method writing to an io.Writer.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// entryAt validates a 1-based index against the log.
func entryAt(h *har.Har, index int) (*har.Entry, error) {
	if index < 1 || index > len(h.Log.Entries) {
		return nil, fmt.Errorf("entry index %d out of range (1-%d)", index, len(h.Log.Entries))
	}
	return &h.Log.Entries[index-1], nil
}

// applyLimits slices a listing: head wins over tail, tail over limit.
func applyLimits(entries []output.IndexedEntry, head, tail, limit int) []output.IndexedEntry {
	switch {
	case head > 0:
		if head < len(entries) {
			return entries[:head]
		}
	case tail > 0:
		if tail < len(entries) {
			return entries[len(entries)-tail:]
		}
	case limit > 0:
		if limit < len(entries) {
			return entries[:limit]
		}
	}
	return entries
}

func printAsJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
