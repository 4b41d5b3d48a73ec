package commands

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// SearchCmd finds entries matching a text or regex pattern in URLs,
// headers, or bodies.
type SearchCmd struct {
	Pattern    string
	Output     output.Format
	IgnoreCase bool
	Regex      bool
	Headers    bool
	Body       bool
	URL        bool
	Invert     bool
	Count      bool
	MaxURL     int
}

type matcher interface {
	matches(text string) bool
}

type textMatcher struct {
	pattern    string
	ignoreCase bool
}

func (m *textMatcher) matches(text string) bool {
	if m.ignoreCase {
		return strings.Contains(strings.ToLower(text), m.pattern)
	}
	return strings.Contains(text, m.pattern)
}

type regexMatcher struct{ re *regexp.Regexp }

func (m *regexMatcher) matches(text string) bool { return m.re.MatchString(text) }

// Run performs the search.
func (c *SearchCmd) Run(w io.Writer, h *har.Har) error {
	m, err := c.buildMatcher()
	if err != nil {
		return err
	}

	var found []output.IndexedEntry
	for _, ie := range output.IndexEntries(h) {
		matched := c.entryMatches(ie.Entry, m)
		if c.Invert {
			matched = !matched
		}
		if matched {
			found = append(found, ie)
		}
	}

	if c.Count {
		fmt.Fprintln(w, len(found))
		return nil
	}

	switch c.Output {
	case output.FormatJSON:
		return output.PrintSummariesJSON(w, found)
	case output.FormatCompact:
		for _, ie := range found {
			fmt.Fprintf(w, "%d\t%s\t%s\n", ie.Index, ie.Entry.Request.Method, ie.Entry.Request.URL)
		}
		return nil
	default:
		output.PrintEntriesTable(w, found, c.MaxURL)
		return nil
	}
}

func (c *SearchCmd) buildMatcher() (matcher, error) {
	if c.Regex {
		pattern := c.Pattern
		if c.IgnoreCase {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid search pattern: %w", err)
		}
		return &regexMatcher{re: re}, nil
	}
	pattern := c.Pattern
	if c.IgnoreCase {
		pattern = strings.ToLower(pattern)
	}
	return &textMatcher{pattern: pattern, ignoreCase: c.IgnoreCase}, nil
}

func (c *SearchCmd) entryMatches(e *har.Entry, m matcher) bool {
	// URL search is the default when no scope flags are given.
	searchURL := c.URL || (!c.Headers && !c.Body)

	if searchURL && m.matches(e.Request.URL) {
		return true
	}

	if c.Headers {
		for _, hdr := range e.Request.Headers {
			if m.matches(hdr.Name) || m.matches(hdr.Value) {
				return true
			}
		}
		for _, hdr := range e.Response.Headers {
			if m.matches(hdr.Name) || m.matches(hdr.Value) {
				return true
			}
		}
	}

	if c.Body {
		if pd := e.Request.PostData; pd != nil && pd.Text != "" && m.matches(pd.Text) {
			return true
		}
		if text, ok := e.Response.Content.TextContent(); ok && m.matches(text) {
			return true
		}
	}

	return false
}
