package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sambeau/harq/pkg/har"
)

// EntrySummary is the compact JSON shape for entry listings.
type EntrySummary struct {
	Index       int     `json:"index"`
	Method      string  `json:"method"`
	URL         string  `json:"url"`
	Status      int     `json:"status"`
	TimeMs      float64 `json:"time_ms"`
	BodySize    int64   `json:"body_size"`
	ContentType string  `json:"content_type,omitempty"`
}

// NewEntrySummary builds the summary for one indexed entry.
func NewEntrySummary(ie IndexedEntry) EntrySummary {
	ct, _ := ie.Entry.ContentType()
	return EntrySummary{
		Index:       ie.Index,
		Method:      ie.Entry.Request.Method,
		URL:         ie.Entry.Request.URL,
		Status:      ie.Entry.Response.Status,
		TimeMs:      ie.Entry.Time,
		BodySize:    ie.Entry.Response.BodySize,
		ContentType: ct,
	}
}

// PrintSummariesJSON writes entry summaries as a JSON array.
func PrintSummariesJSON(w io.Writer, entries []IndexedEntry) error {
	summaries := make([]EntrySummary, len(entries))
	for i, ie := range entries {
		summaries[i] = NewEntrySummary(ie)
	}
	return printJSON(w, summaries)
}

// PrintEntriesJSON writes the full entries as a JSON array.
func PrintEntriesJSON(w io.Writer, entries []IndexedEntry) error {
	full := make([]*har.Entry, len(entries))
	for i, ie := range entries {
		full[i] = ie.Entry
	}
	return printJSON(w, full)
}

// PrintEntryJSON writes one full entry.
func PrintEntryJSON(w io.Writer, e *har.Entry) error {
	return printJSON(w, e)
}

// PrintHarJSON writes a whole HAR document, e.g. the filtered output.
func PrintHarJSON(w io.Writer, h *har.Har) error {
	return printJSON(w, h)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// prettyJSON re-indents a JSON document, reporting whether it parsed.
func prettyJSON(text string) (string, bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return "", false
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", false
	}
	return string(b), true
}
