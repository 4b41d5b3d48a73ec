package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/sambeau/harq/pkg/har"
)

var (
	bold    = color.New(color.Bold)
	cyan    = color.New(color.FgCyan)
	dimmed  = color.New(color.Faint)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed)
	redBold = color.New(color.FgRed, color.Bold)
	blue    = color.New(color.FgBlue)
	magenta = color.New(color.FgMagenta)
)

// ColorizeMethod colors an HTTP method the way browsers' network panels
// tend to: safe methods green, mutations blue/yellow/red.
func ColorizeMethod(method string) string {
	switch method {
	case "GET":
		return green.Sprint(method)
	case "POST":
		return blue.Sprint(method)
	case "PUT":
		return yellow.Sprint(method)
	case "DELETE":
		return red.Sprint(method)
	case "PATCH":
		return magenta.Sprint(method)
	case "HEAD", "OPTIONS":
		return cyan.Sprint(method)
	default:
		return method
	}
}

// ColorizeStatus colors a status code by class: 2xx green, 3xx yellow,
// 4xx red, 5xx bold red.
func ColorizeStatus(status int) string {
	s := strconv.Itoa(status)
	switch {
	case status >= 200 && status < 300:
		return green.Sprint(s)
	case status >= 300 && status < 400:
		return yellow.Sprint(s)
	case status >= 400 && status < 500:
		return red.Sprint(s)
	case status >= 500 && status < 600:
		return redBold.Sprint(s)
	default:
		return s
	}
}

// Label renders a bold section label.
func Label(s string) string { return bold.Sprint(s) }

// PrintEntriesTable renders the standard entry listing.
func PrintEntriesTable(w io.Writer, entries []IndexedEntry, maxURL int) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Method", "Status", "Time", "Size", "URL"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, ie := range entries {
		e := ie.Entry
		table.Append([]string{
			strconv.Itoa(ie.Index),
			ColorizeMethod(e.Request.Method),
			ColorizeStatus(e.Response.Status),
			FormatTime(e.Time),
			FormatBytes(e.Response.BodySize),
			Truncate(e.Request.URL, maxURL),
		})
	}
	table.Render()
}

// PrintEntryDetail renders the full view of one entry.
func PrintEntryDetail(w io.Writer, index int, e *har.Entry, showBody bool) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%s Entry #%d\n", Label(">>>"), index)
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "\n%s\n", Label("REQUEST"))
	fmt.Fprintf(w, "  %s %s %s\n",
		ColorizeMethod(e.Request.Method), e.Request.URL, dimmed.Sprint(e.Request.HTTPVersion))

	if len(e.Request.Headers) > 0 {
		fmt.Fprintf(w, "\n  %s:\n", Label("Headers"))
		for _, h := range e.Request.Headers {
			fmt.Fprintf(w, "    %s: %s\n", cyan.Sprint(h.Name), h.Value)
		}
	}

	if pd := e.Request.PostData; pd != nil {
		fmt.Fprintf(w, "\n  %s: %s\n", Label("Content-Type"), pd.MimeType)
		if showBody && pd.Text != "" {
			fmt.Fprintf(w, "  %s:\n", Label("Body"))
			printBodyPreview(w, pd.Text, 500)
		}
	}

	fmt.Fprintf(w, "\n%s\n", Label("RESPONSE"))
	fmt.Fprintf(w, "  %s %s %s\n",
		ColorizeStatus(e.Response.Status), e.Response.StatusText, dimmed.Sprint(e.Response.HTTPVersion))

	if len(e.Response.Headers) > 0 {
		fmt.Fprintf(w, "\n  %s:\n", Label("Headers"))
		for _, h := range e.Response.Headers {
			fmt.Fprintf(w, "    %s: %s\n", cyan.Sprint(h.Name), h.Value)
		}
	}

	if showBody {
		if text, ok := e.Response.Content.TextContent(); ok {
			fmt.Fprintf(w, "\n  %s:\n", Label("Body"))
			printBodyPreview(w, text, 1000)
		}
	}

	fmt.Fprintf(w, "\n%s\n", Label("TIMING"))
	fmt.Fprintf(w, "  Total: %s\n", yellow.Sprint(FormatTime(e.Time)))
	t := &e.Timings
	fmt.Fprintf(w, "  blocked: %s | dns: %s | connect: %s | ssl: %s\n",
		FormatOptTime(t.Blocked), FormatOptTime(t.DNS), FormatOptTime(t.Connect), FormatOptTime(t.SSL))
	fmt.Fprintf(w, "  send: %s | wait: %s | receive: %s\n",
		FormatOptTime(t.Send), FormatOptTime(t.Wait), FormatOptTime(t.Receive))

	if e.ServerIPAddress != "" {
		fmt.Fprintf(w, "\n%s: %s\n", Label("Server IP"), e.ServerIPAddress)
	}
	fmt.Fprintf(w, "%s: %s\n\n", Label("Started"), e.StartedDateTime)
}

func printBodyPreview(w io.Writer, text string, max int) {
	preview := text
	if len(preview) > max {
		preview = fmt.Sprintf("%s... (%d bytes total)", preview[:max], len(text))
	}

	if pretty, ok := prettyJSON(preview); ok {
		preview = pretty
	}

	lines := strings.Split(preview, "\n")
	if len(lines) > 30 {
		lines = lines[:30]
	}
	for _, line := range lines {
		fmt.Fprintf(w, "    %s\n", line)
	}
}
