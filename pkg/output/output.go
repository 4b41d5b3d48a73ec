// Package output renders entries as tables, JSON, or compact lines, and
// owns the color policy.
package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/sambeau/harq/pkg/har"
)

// Format selects how a command renders its results.
type Format int

const (
	FormatTable Format = iota
	FormatJSON
	FormatCompact
)

// ParseFormat parses a -o flag value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "compact":
		return FormatCompact, nil
	default:
		return FormatTable, fmt.Errorf("unknown output format %q (use table, json, or compact)", s)
	}
}

// ColorWhen is the --color policy.
type ColorWhen int

const (
	ColorAuto ColorWhen = iota
	ColorAlways
	ColorNever
)

// ParseColorWhen parses a --color flag value.
func ParseColorWhen(s string) (ColorWhen, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("unknown color mode %q (use auto, always, or never)", s)
	}
}

// Apply sets the process-wide color override. Auto colors only when
// stdout is a terminal.
func (c ColorWhen) Apply() {
	switch c {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	default:
		color.NoColor = !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
}

// IndexedEntry pairs an entry with its 1-based position in the log.
type IndexedEntry struct {
	Index int
	Entry *har.Entry
}

// IndexEntries numbers all entries in a log, 1-based.
func IndexEntries(h *har.Har) []IndexedEntry {
	out := make([]IndexedEntry, len(h.Log.Entries))
	for i := range h.Log.Entries {
		out[i] = IndexedEntry{Index: i + 1, Entry: &h.Log.Entries[i]}
	}
	return out
}

// Truncate shortens s to max characters, adding an ellipsis.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// FormatTime renders milliseconds as a human-readable duration.
func FormatTime(ms float64) string {
	switch {
	case ms < 0:
		return "-"
	case ms < 1000:
		return fmt.Sprintf("%.0fms", ms)
	case ms < 60000:
		return fmt.Sprintf("%.2fs", ms/1000)
	default:
		return fmt.Sprintf("%.2fm", ms/60000)
	}
}

// FormatOptTime renders an optional timing phase, "-" when absent.
func FormatOptTime(v *float64) string {
	if v == nil || *v < 0 {
		return "-"
	}
	return FormatTime(*v)
}

// FormatBytes renders a byte count as a human-readable size.
func FormatBytes(n int64) string {
	switch {
	case n < 0:
		return "-"
	case n < 1024:
		return fmt.Sprintf("%dB", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1fKB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/(1024*1024))
	}
}

// ExtractHost returns the host part of a URL string.
func ExtractHost(url string) string {
	s := url
	if _, rest, ok := strings.Cut(s, "://"); ok {
		s = rest
	}
	host, _, _ := strings.Cut(s, "/")
	host, _, _ = strings.Cut(host, ":")
	return host
}

// ExtractPath returns the path part of a URL string, without the query.
func ExtractPath(url string) string {
	s := url
	if _, rest, ok := strings.Cut(s, "://"); ok {
		s = rest
	}
	if i := strings.Index(s, "/"); i >= 0 {
		p, _, _ := strings.Cut(s[i:], "?")
		return p
	}
	return "/"
}
