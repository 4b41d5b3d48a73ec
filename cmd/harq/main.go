package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/sambeau/harq/config"
	"github.com/sambeau/harq/pkg/commands"
	"github.com/sambeau/harq/pkg/filter/errors"
	"github.com/sambeau/harq/pkg/har"
	"github.com/sambeau/harq/pkg/output"
	"github.com/sambeau/harq/pkg/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "-h", "--help", "help":
		printHelp()
		return
	case "-V", "--version", "version":
		fmt.Printf("harq version %s\n", Version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var code int
	switch cmd {
	case "info":
		code = infoCommand(args, cfg)
	case "list", "ls":
		code = listCommand(args, cfg)
	case "count":
		code = countCommand(args, cfg)
	case "view":
		code = viewCommand(args, cfg)
	case "search":
		code = searchCommand(args, cfg)
	case "filter":
		code = filterCommand(args, cfg)
	case "body":
		code = bodyCommand(args, cfg)
	case "timing":
		code = timingCommand(args, cfg)
	case "headers":
		code = headersCommand(args, cfg)
	case "repl":
		code = replCommand(args, cfg)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		code = 2
	}
	os.Exit(code)
}

func printHelp() {
	fmt.Printf(`harq - inspect and filter HAR files, version %s

Usage:
  harq <command> [options] <file> [args...]

Commands:
  info <file>                 Summarize the capture
  list <file>                 List entries (alias: ls)
  count <file>                Print the number of entries
  view <file> <n>             Show entry n in detail
  search <file> <pattern>     Find entries matching a pattern
  filter <file> <expr>        Filter entries with an expression
  body <file> <n>             Print a request or response body
  timing <file>               Per-entry timing breakdown
  headers <file> [n|all]      Print request/response headers
  repl <file>                 Interactive expression prompt

Common Options:
  -o <format>         Output format: table, json, compact
  --color <when>      Colorize output: auto, always, never
  -h, --help          Show this help message
  -V, --version       Show version information

Use '-' as the file to read a HAR document from stdin.

Filter expressions:
  harq filter api.har 'status >= 400'
  harq filter api.har 'method == "POST" && url.contains("/api/")'
  harq filter api.har 'isGraphQL && operationName == "GetUser"'
  harq filter api.har 'path.matches(/^\/v[0-9]+\//)'
`, Version)
}

// newFlagSet builds a per-command flag set with the shared flags wired to
// the config defaults.
func newFlagSet(name string, cfg *config.Config) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	formatFlag := fs.String("o", cfg.Output.Format, "Output format (table, json, compact)")
	colorFlag := fs.String("color", cfg.Output.Color, "Colorize output (auto, always, never)")
	return fs, formatFlag, colorFlag
}

// setupOutput resolves the format and color flags. Color is applied
// process-wide before any rendering.
func setupOutput(formatFlag, colorFlag string) (output.Format, error) {
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return format, err
	}
	when, err := output.ParseColorWhen(colorFlag)
	if err != nil {
		return format, err
	}
	when.Apply()
	return format, nil
}

// loadHar reads the positional file argument. When every other positional
// is present but the file is not, the document is read from stdin.
func loadHar(fs *flag.FlagSet, minArgs int, usage string) (*har.Har, []string, int) {
	rest := fs.Args()
	if len(rest) == minArgs-1 {
		rest = append([]string{"-"}, rest...)
	}
	if len(rest) < minArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		return nil, nil, 2
	}
	h, err := har.Load(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return nil, nil, 1
	}
	return h, rest[1:], 0
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func infoCommand(args []string, cfg *config.Config) int {
	fs, formatFlag, colorFlag := newFlagSet("info", cfg)
	fs.Parse(args)

	format, err := setupOutput(*formatFlag, *colorFlag)
	if err != nil {
		return fail(err)
	}
	h, _, code := loadHar(fs, 1, "harq info [options] <file>")
	if code != 0 {
		return code
	}
	cmd := &commands.InfoCmd{Output: format}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func listCommand(args []string, cfg *config.Config) int {
	fs, formatFlag, colorFlag := newFlagSet("list", cfg)
	limitFlag := fs.Int("limit", cfg.Output.Limit, "Show at most n entries (0 = all)")
	headFlag := fs.Int("head", 0, "Show only the first n entries")
	tailFlag := fs.Int("tail", 0, "Show only the last n entries")
	maxURLFlag := fs.Int("max-url", cfg.Output.MaxURL, "Truncate URLs to n characters")
	fs.Parse(args)

	format, err := setupOutput(*formatFlag, *colorFlag)
	if err != nil {
		return fail(err)
	}
	h, _, code := loadHar(fs, 1, "harq list [options] <file>")
	if code != 0 {
		return code
	}
	cmd := &commands.ListCmd{
		Output: format,
		Limit:  *limitFlag,
		Head:   *headFlag,
		Tail:   *tailFlag,
		MaxURL: *maxURLFlag,
	}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func countCommand(args []string, cfg *config.Config) int {
	fs := flag.NewFlagSet("count", flag.ExitOnError)
	fs.Parse(args)

	h, _, code := loadHar(fs, 1, "harq count <file>")
	if code != 0 {
		return code
	}
	cmd := &commands.CountCmd{}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func viewCommand(args []string, cfg *config.Config) int {
	fs, formatFlag, colorFlag := newFlagSet("view", cfg)
	fullFlag := fs.Bool("full", false, "Include body previews")
	noBodyFlag := fs.Bool("no-body", false, "Suppress body previews")
	headersOnlyFlag := fs.Bool("headers-only", false, "Show only headers")
	fs.Parse(args)

	format, err := setupOutput(*formatFlag, *colorFlag)
	if err != nil {
		return fail(err)
	}
	h, rest, code := loadHar(fs, 2, "harq view [options] <file> <n>")
	if code != 0 {
		return code
	}
	index, err := strconv.Atoi(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid entry index %q\n", rest[0])
		return 2
	}
	cmd := &commands.ViewCmd{
		Index:       index,
		Output:      format,
		Full:        *fullFlag,
		NoBody:      *noBodyFlag,
		HeadersOnly: *headersOnlyFlag,
	}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func searchCommand(args []string, cfg *config.Config) int {
	fs, formatFlag, colorFlag := newFlagSet("search", cfg)
	ignoreCaseFlag := fs.Bool("i", false, "Case-insensitive matching")
	regexFlag := fs.Bool("regex", false, "Treat the pattern as a regular expression")
	headersFlag := fs.Bool("headers", false, "Search request and response headers")
	bodyFlag := fs.Bool("body", false, "Search request and response bodies")
	urlFlag := fs.Bool("url", false, "Search URLs (default when no scope given)")
	invertFlag := fs.Bool("v", false, "Invert the match")
	countFlag := fs.Bool("count", false, "Print only the number of matches")
	maxURLFlag := fs.Int("max-url", cfg.Output.MaxURL, "Truncate URLs to n characters")
	fs.Parse(args)

	format, err := setupOutput(*formatFlag, *colorFlag)
	if err != nil {
		return fail(err)
	}
	h, rest, code := loadHar(fs, 2, "harq search [options] <file> <pattern>")
	if code != 0 {
		return code
	}
	cmd := &commands.SearchCmd{
		Pattern:    rest[0],
		Output:     format,
		IgnoreCase: *ignoreCaseFlag,
		Regex:      *regexFlag,
		Headers:    *headersFlag,
		Body:       *bodyFlag,
		URL:        *urlFlag,
		Invert:     *invertFlag,
		Count:      *countFlag,
		MaxURL:     *maxURLFlag,
	}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func filterCommand(args []string, cfg *config.Config) int {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	colorFlag := fs.String("color", cfg.Output.Color, "Colorize output (auto, always, never)")
	entriesFlag := fs.Bool("entries", false, "Output a JSON array of entries instead of a HAR document")
	watchFlag := fs.Bool("watch", false, "Re-run the filter whenever the file changes")
	fs.Parse(args)

	when, err := output.ParseColorWhen(*colorFlag)
	if err != nil {
		return fail(err)
	}
	when.Apply()

	rest := fs.Args()
	if len(rest) == 1 {
		rest = []string{"-", rest[0]}
	}
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: harq filter [options] <file> <expression>")
		return 2
	}
	path, expr := rest[0], rest[1]

	cmd := &commands.FilterCmd{Expr: expr, EntriesOnly: *entriesFlag}

	if *watchFlag {
		if err := cmd.RunWatch(path, os.Stdout, os.Stderr); err != nil {
			return failFilter(expr, err)
		}
		return 0
	}

	h, err := har.Load(path)
	if err != nil {
		return fail(err)
	}
	if err := cmd.Run(os.Stdout, os.Stderr, h); err != nil {
		return failFilter(expr, err)
	}
	return 0
}

// failFilter gives parse errors a caret diagnostic pointing into the
// expression. Anything else reports like a normal error.
func failFilter(expr string, err error) int {
	if fe, ok := errors.AsFilterError(err); ok && fe.IsParse() {
		fmt.Fprintf(os.Stderr, "Error: %s\n", fe.Error())
		fmt.Fprintf(os.Stderr, "  %s\n", fe.Caret(expr))
		return 2
	}
	return fail(err)
}

func bodyCommand(args []string, cfg *config.Config) int {
	fs := flag.NewFlagSet("body", flag.ExitOnError)
	requestFlag := fs.Bool("request", false, "Print the request body instead of the response")
	prettyFlag := fs.Bool("pretty", false, "Pretty-print JSON bodies")
	rawFlag := fs.Bool("raw", false, "Write raw bytes without charset decoding")
	fs.Parse(args)

	h, rest, code := loadHar(fs, 2, "harq body [options] <file> <n>")
	if code != 0 {
		return code
	}
	index, err := strconv.Atoi(rest[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid entry index %q\n", rest[0])
		return 2
	}
	cmd := &commands.BodyCmd{
		Index:   index,
		Request: *requestFlag,
		Pretty:  *prettyFlag,
		Raw:     *rawFlag,
	}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func timingCommand(args []string, cfg *config.Config) int {
	fs, formatFlag, colorFlag := newFlagSet("timing", cfg)
	sortFlag := fs.String("sort", "", "Sort by total time or a phase (time, dns, connect, wait, ...)")
	reverseFlag := fs.Bool("reverse", false, "Sort ascending instead of descending")
	statsFlag := fs.Bool("stats", false, "Print summary statistics instead of a table")
	limitFlag := fs.Int("limit", cfg.Output.Limit, "Show at most n entries (0 = all)")
	fs.Parse(args)

	format, err := setupOutput(*formatFlag, *colorFlag)
	if err != nil {
		return fail(err)
	}
	h, _, code := loadHar(fs, 1, "harq timing [options] <file>")
	if code != 0 {
		return code
	}
	cmd := &commands.TimingCmd{
		Output:  format,
		Sort:    *sortFlag,
		Reverse: *reverseFlag,
		Stats:   *statsFlag,
		Limit:   *limitFlag,
	}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func headersCommand(args []string, cfg *config.Config) int {
	fs, formatFlag, colorFlag := newFlagSet("headers", cfg)
	requestFlag := fs.Bool("request", false, "Show only request headers")
	responseFlag := fs.Bool("response", false, "Show only response headers")
	filterFlag := fs.String("filter", "", "Show only headers whose name contains this text")
	fs.Parse(args)

	format, err := setupOutput(*formatFlag, *colorFlag)
	if err != nil {
		return fail(err)
	}
	h, rest, code := loadHar(fs, 1, "harq headers [options] <file> [n|all]")
	if code != 0 {
		return code
	}
	index := "all"
	if len(rest) > 0 {
		index = rest[0]
	}
	cmd := &commands.HeadersCmd{
		Index:    index,
		Output:   format,
		Request:  *requestFlag,
		Response: *responseFlag,
		Filter:   *filterFlag,
	}
	if err := cmd.Run(os.Stdout, h); err != nil {
		return fail(err)
	}
	return 0
}

func replCommand(args []string, cfg *config.Config) int {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	colorFlag := fs.String("color", cfg.Output.Color, "Colorize output (auto, always, never)")
	fs.Parse(args)

	when, err := output.ParseColorWhen(*colorFlag)
	if err != nil {
		return fail(err)
	}
	when.Apply()

	rest := fs.Args()
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: harq repl <file>")
		return 2
	}
	if rest[0] == "-" {
		fmt.Fprintln(os.Stderr, "Error: repl requires a file path, not stdin")
		return 2
	}
	h, err := har.Load(rest[0])
	if err != nil {
		return fail(err)
	}
	repl.Start(os.Stdout, h, Version)
	return 0
}
