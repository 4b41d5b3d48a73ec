package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

// HeadersCmd prints request and/or response headers for one entry or all
// of them, optionally filtered by header name.
type HeadersCmd struct {
	Index    string
	Output   output.Format
	Request  bool
	Response bool
	Filter   string
}

type headerSet struct {
	Index    int          `json:"index"`
	URL      string       `json:"url"`
	Request  []har.Header `json:"request,omitempty"`
	Response []har.Header `json:"response,omitempty"`
}

// Run prints the headers.
func (c *HeadersCmd) Run(w io.Writer, h *har.Har) error {
	var entries []output.IndexedEntry
	if c.Index == "" || strings.EqualFold(c.Index, "all") {
		entries = output.IndexEntries(h)
	} else {
		n, err := strconv.Atoi(c.Index)
		if err != nil {
			return fmt.Errorf("invalid entry index %q", c.Index)
		}
		e, err := entryAt(h, n)
		if err != nil {
			return err
		}
		entries = []output.IndexedEntry{{Index: n, Entry: e}}
	}

	// Both sides are shown unless one is requested explicitly.
	showReq := c.Request || !c.Response
	showResp := c.Response || !c.Request

	sets := make([]headerSet, 0, len(entries))
	for _, ie := range entries {
		set := headerSet{Index: ie.Index, URL: ie.Entry.Request.URL}
		if showReq {
			set.Request = c.filtered(ie.Entry.Request.Headers)
		}
		if showResp {
			set.Response = c.filtered(ie.Entry.Response.Headers)
		}
		sets = append(sets, set)
	}

	if c.Output == output.FormatJSON {
		return printAsJSON(w, sets)
	}

	for i, set := range sets {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", output.Label(fmt.Sprintf("#%d", set.Index)), output.Truncate(set.URL, 80))
		if showReq {
			printHeaderBlock(w, "Request headers", set.Request)
		}
		if showResp {
			printHeaderBlock(w, "Response headers", set.Response)
		}
	}
	return nil
}

func (c *HeadersCmd) filtered(headers []har.Header) []har.Header {
	if c.Filter == "" {
		return headers
	}
	var out []har.Header
	for _, hdr := range headers {
		if strings.Contains(strings.ToLower(hdr.Name), strings.ToLower(c.Filter)) {
			out = append(out, hdr)
		}
	}
	return out
}

func printHeaderBlock(w io.Writer, title string, headers []har.Header) {
	fmt.Fprintf(w, "  %s\n", output.Label(title))
	if len(headers) == 0 {
		fmt.Fprintln(w, "    (none)")
		return
	}
	for _, hdr := range headers {
		fmt.Fprintf(w, "    %s: %s\n", hdr.Name, hdr.Value)
	}
}
