package commands

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// TimingCmd shows the per-phase timing breakdown, optionally sorted, or a
// statistics summary.
type TimingCmd struct {
	Output  output.Format
	Sort    string
	Reverse bool
	Stats   bool
	Limit   int
}

// Run prints the timing view.
func (c *TimingCmd) Run(w io.Writer, h *har.Har) error {
	if c.Stats {
		return c.printStats(w, h)
	}
	if c.Output == output.FormatJSON {
		return c.printJSON(w, h)
	}
	return c.printTable(w, h)
}

func sortValue(e *har.Entry, field string) float64 {
	if field == "time" || field == "total" || field == "" {
		return e.Time
	}
	if v, ok := e.Timings.Phase(field); ok {
		return v
	}
	return -1
}

func (c *TimingCmd) sorted(h *har.Har) []output.IndexedEntry {
	entries := output.IndexEntries(h)
	if c.Sort != "" {
		sort.SliceStable(entries, func(i, j int) bool {
			a := sortValue(entries[i].Entry, c.Sort)
			b := sortValue(entries[j].Entry, c.Sort)
			if c.Reverse {
				return a < b
			}
			return a > b
		})
	}
	if c.Limit > 0 && c.Limit < len(entries) {
		entries = entries[:c.Limit]
	}
	return entries
}

func (c *TimingCmd) printTable(w io.Writer, h *har.Har) error {
	entries := c.sorted(h)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Host", "Total", "Blocked", "DNS", "Connect", "SSL", "Send", "Wait", "Receive"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, ie := range entries {
		e := ie.Entry
		t := &e.Timings
		table.Append([]string{
			strconv.Itoa(ie.Index),
			output.Truncate(output.ExtractHost(e.Request.URL), 30),
			output.FormatTime(e.Time),
			output.FormatOptTime(t.Blocked),
			output.FormatOptTime(t.DNS),
			output.FormatOptTime(t.Connect),
			output.FormatOptTime(t.SSL),
			output.FormatOptTime(t.Send),
			output.FormatOptTime(t.Wait),
			output.FormatOptTime(t.Receive),
		})
	}
	table.Render()
	return nil
}

func (c *TimingCmd) printStats(w io.Writer, h *har.Har) error {
	entries := h.Log.Entries
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries.")
		return nil
	}

	var total float64
	min, max := entries[0].Time, entries[0].Time
	slowest := 0
	for i, e := range entries {
		total += e.Time
		if e.Time < min {
			min = e.Time
		}
		if e.Time > max {
			max = e.Time
			slowest = i
		}
	}
	avg := total / float64(len(entries))

	fmt.Fprintln(w, output.Label("Timing Statistics"))
	fmt.Fprintln(w, "────────────────────────────────────────")
	fmt.Fprintf(w, "%s: %d\n", output.Label("Total requests"), len(entries))
	fmt.Fprintf(w, "%s: %s\n", output.Label("Total time"), output.FormatTime(total))
	fmt.Fprintf(w, "%s: %s\n", output.Label("Average time"), output.FormatTime(avg))
	fmt.Fprintf(w, "%s: %s\n", output.Label("Min time"), output.FormatTime(min))
	fmt.Fprintf(w, "%s: %s\n", output.Label("Max time"), output.FormatTime(max))
	fmt.Fprintf(w, "\n%s: #%d %s (%s)\n",
		output.Label("Slowest request"),
		slowest+1,
		output.FormatTime(entries[slowest].Time),
		output.ExtractHost(entries[slowest].Request.URL))

	// Per-phase averages over the entries that recorded each phase.
	phaseAvg := func(name string) (float64, int) {
		var sum float64
		var n int
		for i := range entries {
			if v, ok := entries[i].Timings.Phase(name); ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			return 0, 0
		}
		return sum / float64(n), n
	}

	fmt.Fprintf(w, "\n%s\n", output.Label("Average breakdown"))
	for _, name := range []string{"dns", "connect", "wait"} {
		if avg, n := phaseAvg(name); n > 0 {
			fmt.Fprintf(w, "  %s: %s\n", name, output.FormatTime(avg))
		}
	}
	return nil
}

type timingInfo struct {
	Index     int      `json:"index"`
	URL       string   `json:"url"`
	TotalMs   float64  `json:"total_ms"`
	BlockedMs *float64 `json:"blocked_ms"`
	DNSMs     *float64 `json:"dns_ms"`
	ConnectMs *float64 `json:"connect_ms"`
	SSLMs     *float64 `json:"ssl_ms"`
	SendMs    *float64 `json:"send_ms"`
	WaitMs    *float64 `json:"wait_ms"`
	ReceiveMs *float64 `json:"receive_ms"`
}

func (c *TimingCmd) printJSON(w io.Writer, h *har.Har) error {
	entries := c.sorted(h)
	infos := make([]timingInfo, len(entries))
	for i, ie := range entries {
		t := &ie.Entry.Timings
		infos[i] = timingInfo{
			Index:     ie.Index,
			URL:       ie.Entry.Request.URL,
			TotalMs:   ie.Entry.Time,
			BlockedMs: t.Blocked,
			DNSMs:     t.DNS,
			ConnectMs: t.Connect,
			SSLMs:     t.SSL,
			SendMs:    t.Send,
			WaitMs:    t.Wait,
			ReceiveMs: t.Receive,
		}
	}
	return printAsJSON(w, infos)
}
