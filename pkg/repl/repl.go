// Package repl provides an interactive prompt for exploring a loaded HAR
// capture with filter expressions.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/harq/pkg/filter"
	"github.com/sambeau/harq/pkg/filter/errors"
	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
)

const PROMPT = "harq> "

// maxTableRows caps how many matches a single expression prints.
const maxTableRows = 20

// Field paths and method names for tab completion.
var completionWords = []string{
	// Request fields
	"method", "url", "host", "domain", "path", "scheme", "protocol", "query",
	"request.httpVersion", "request.headersSize", "request.bodySize", "request.header",
	// Response fields
	"status", "statusText", "contentType", "contentSize", "bodySize",
	"response.bodySize", "response.httpVersion", "response.headersSize", "response.header",
	// Timing fields
	"time", "blocked", "dns", "connect", "ssl", "send", "wait", "receive",
	// GraphQL fields
	"isGraphQL", "operationName", "operationType", "gql.query",
	// Misc fields
	"startedDateTime", "serverIpAddress",
	// Methods
	"contains", "startsWith", "endsWith", "matches",
	// Literals
	"true", "false",
}

// Start runs the interactive loop over a loaded capture.
func Start(out io.Writer, h *har.Har, version string) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(line string) []string {
		return filterCompletions(line)
	})

	historyFile := filepath.Join(os.TempDir(), ".harq_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintf(out, "harq v%s (%d entries loaded)\n", version, len(h.Log.Entries))
	fmt.Fprintln(out, "Type a filter expression, ':help' for commands, 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "")

	// currentEntry is the 1-based entry scalar expressions evaluate against.
	currentEntry := 1

	for {
		input, err := line.Prompt(PROMPT)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			return
		}

		line.AppendHistory(trimmed)

		if strings.HasPrefix(trimmed, ":") {
			currentEntry = handleCommand(out, h, trimmed, currentEntry)
			continue
		}

		evalExpression(out, h, trimmed, currentEntry)
	}
}

func handleCommand(out io.Writer, h *har.Har, cmd string, currentEntry int) int {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":help", ":h", ":?":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  EXPR            Filter entries; boolean expressions list matches")
		fmt.Fprintln(out, "  :view N         Show entry N in full and make it current")
		fmt.Fprintln(out, "  :count EXPR     Count entries matching EXPR")
		fmt.Fprintln(out, "  :entry          Show the current entry number")
		fmt.Fprintln(out, "  :help           Show this help")
		fmt.Fprintln(out, "  exit            Quit")
		fmt.Fprintln(out, "")
		fmt.Fprintln(out, "Non-boolean expressions (e.g. 'contentType') evaluate against the")
		fmt.Fprintln(out, "current entry, set with :view.")

	case ":entry":
		fmt.Fprintf(out, "current entry: %d\n", currentEntry)

	case ":view":
		if len(fields) != 2 {
			fmt.Fprintln(out, "usage: :view N")
			return currentEntry
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 || n > len(h.Log.Entries) {
			fmt.Fprintf(out, "invalid entry: %s (1-%d)\n", fields[1], len(h.Log.Entries))
			return currentEntry
		}
		output.PrintEntryDetail(out, n, &h.Log.Entries[n-1], false)
		return n

	case ":count":
		expr := strings.TrimSpace(strings.TrimPrefix(cmd, ":count"))
		if expr == "" {
			fmt.Fprintln(out, "usage: :count EXPR")
			return currentEntry
		}
		pred, err := filter.Compile(expr)
		if err != nil {
			printFilterError(out, expr, err)
			return currentEntry
		}
		n := 0
		for i := range h.Log.Entries {
			if ok, err := pred.Test(&h.Log.Entries[i]); err == nil && ok {
				n++
			}
		}
		fmt.Fprintln(out, n)

	default:
		fmt.Fprintf(out, "Unknown command: %s (type :help for commands)\n", fields[0])
	}
	return currentEntry
}

func evalExpression(out io.Writer, h *har.Har, expr string, currentEntry int) {
	pred, err := filter.Compile(expr)
	if err != nil {
		printFilterError(out, expr, err)
		return
	}

	var matched []output.IndexedEntry
	var firstErr error
	for _, ie := range output.IndexEntries(h) {
		ok, err := pred.Test(ie.Entry)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			matched = append(matched, ie)
		}
	}

	// A uniformly non-boolean expression is a value query: show it for
	// the current entry instead of an empty match list.
	if firstErr != nil && len(matched) == 0 {
		if fe, ok := errors.AsFilterError(firstErr); ok && fe.Class == errors.ClassPredicate {
			showValue(out, h, pred, currentEntry)
			return
		}
		printFilterError(out, expr, firstErr)
		return
	}

	if len(matched) == 0 {
		fmt.Fprintln(out, "no matches")
		return
	}

	shown := matched
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	output.PrintEntriesTable(out, shown, 60)
	if len(matched) > len(shown) {
		fmt.Fprintf(out, "... %d more (%d total)\n", len(matched)-len(shown), len(matched))
	} else {
		fmt.Fprintf(out, "%d of %d entries\n", len(matched), len(h.Log.Entries))
	}
}

func showValue(out io.Writer, h *har.Har, pred *filter.Predicate, currentEntry int) {
	entry := &h.Log.Entries[currentEntry-1]
	v, err := pred.Eval(entry)
	if err != nil {
		printFilterError(out, pred.Source(), err)
		return
	}
	if v.IsMissing() {
		fmt.Fprintf(out, "entry %d: (missing)\n", currentEntry)
		return
	}
	fmt.Fprintf(out, "entry %d: %s (%s)\n", currentEntry, v.Text(), v.Type())
}

func printFilterError(out io.Writer, expr string, err error) {
	if fe, ok := errors.AsFilterError(err); ok && fe.IsParse() {
		fmt.Fprintf(out, "parse error: %s\n", fe.Error())
		fmt.Fprintln(out, "  "+strings.ReplaceAll(fe.Caret(expr), "\n", "\n  "))
		return
	}
	fmt.Fprintf(out, "error: %v\n", err)
}

func filterCompletions(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	words := strings.Fields(line)
	lastWord := words[len(words)-1]
	prefix := line[:len(line)-len(lastWord)]

	var matches []string
	for _, word := range completionWords {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}
