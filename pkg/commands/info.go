package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/araddon/dateparse"

	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// InfoCmd summarizes a HAR file: creator, capture window, entry count,
// and method/status breakdowns.
type InfoCmd struct {
	Output output.Format
}

type infoSummary struct {
	Version    string            `json:"version"`
	Creator    string            `json:"creator"`
	Browser    string            `json:"browser,omitempty"`
	Pages      int               `json:"pages"`
	Entries    int               `json:"entries"`
	Started    string            `json:"started,omitempty"`
	DurationMs float64           `json:"duration_ms,omitempty"`
	TotalMs    float64           `json:"total_time_ms"`
	Methods    map[string]int    `json:"methods"`
	Statuses   map[string]int    `json:"statuses"`
}

// Run prints the summary.
func (c *InfoCmd) Run(w io.Writer, h *har.Har) error {
	s := buildSummary(h)

	if c.Output == output.FormatJSON {
		return printAsJSON(w, s)
	}

	fmt.Fprintln(w, output.Label("HAR File Info"))
	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintf(w, "%s: %s\n", output.Label("Version"), s.Version)
	fmt.Fprintf(w, "%s: %s\n", output.Label("Creator"), s.Creator)
	if s.Browser != "" {
		fmt.Fprintf(w, "%s: %s\n", output.Label("Browser"), s.Browser)
	}
	if s.Pages > 0 {
		fmt.Fprintf(w, "%s: %d\n", output.Label("Pages"), s.Pages)
	}
	fmt.Fprintf(w, "%s: %d\n", output.Label("Entries"), s.Entries)
	if s.Started != "" {
		fmt.Fprintf(w, "%s: %s\n", output.Label("Capture started"), s.Started)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "%s: %s\n", output.Label("Capture window"), output.FormatTime(s.DurationMs))
	}
	fmt.Fprintf(w, "%s: %s\n", output.Label("Total request time"), output.FormatTime(s.TotalMs))

	printBreakdown(w, "Methods", s.Methods)
	printBreakdown(w, "Status codes", s.Statuses)
	return nil
}

func buildSummary(h *har.Har) infoSummary {
	s := infoSummary{
		Version:  h.Log.Version,
		Creator:  fmt.Sprintf("%s %s", h.Log.Creator.Name, h.Log.Creator.Version),
		Pages:    len(h.Log.Pages),
		Entries:  len(h.Log.Entries),
		Methods:  map[string]int{},
		Statuses: map[string]int{},
	}
	if b := h.Log.Browser; b != nil {
		s.Browser = fmt.Sprintf("%s %s", b.Name, b.Version)
	}

	var first, last time.Time
	for i := range h.Log.Entries {
		e := &h.Log.Entries[i]
		s.TotalMs += e.Time
		s.Methods[e.Request.Method]++
		s.Statuses[fmt.Sprintf("%d", e.Response.Status)]++

		t, err := dateparse.ParseAny(e.StartedDateTime)
		if err != nil {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		if last.IsZero() || t.After(last) {
			last = t
		}
	}
	if !first.IsZero() {
		s.Started = first.Format(time.RFC3339)
		s.DurationMs = float64(last.Sub(first)) / float64(time.Millisecond)
	}
	return s
}

func printBreakdown(w io.Writer, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "\n%s\n", output.Label(title))
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, counts[k])
	}
}
