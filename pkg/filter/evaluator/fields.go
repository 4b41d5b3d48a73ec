package evaluator

import (
	"net/url"
	"strings"

	ferrors "github.com/sambeau/harq/pkg/filter/errors"
	"github.com/sambeau/harq/pkg/graphql"
)

// resolveField maps a dotted path plus optional call arguments to a typed
// value. Field names are case-sensitive; header lookups are
// case-insensitive on the header name and resolve to "" (not Missing)
// when the header is absent, so existence probes against "" work.
func (ev *evaluation) resolveField(path string, args []string) (Value, error) {
	switch path {
	// Request
	case "method":
		return String(ev.entry.Request.Method), nil
	case "url":
		return String(ev.entry.Request.URL), nil
	case "host", "domain":
		return String(extractHost(ev.entry.Request.URL)), nil
	case "path":
		return String(extractPath(ev.entry.Request.URL)), nil
	case "scheme", "protocol":
		return String(extractScheme(ev.entry.Request.URL)), nil
	case "query":
		if q, ok := extractQuery(ev.entry.Request.URL); ok {
			return String(q), nil
		}
		return Missing, nil
	case "request.httpVersion":
		return String(ev.entry.Request.HTTPVersion), nil
	case "request.headersSize":
		return Number(float64(ev.entry.Request.HeadersSize)), nil
	case "request.bodySize":
		return Number(float64(ev.entry.Request.BodySize)), nil
	case "request.header":
		name, err := headerArg(path, args)
		if err != nil {
			return Missing, err
		}
		v, _ := ev.entry.RequestHeader(name)
		return String(v), nil

	// Response
	case "status":
		return Number(float64(ev.entry.Response.Status)), nil
	case "statusText":
		return String(ev.entry.Response.StatusText), nil
	case "contentType":
		if ct, ok := ev.entry.ContentType(); ok {
			return String(ct), nil
		}
		return Missing, nil
	case "contentSize":
		return Number(float64(ev.entry.Response.Content.Size)), nil
	case "bodySize", "response.bodySize":
		return Number(float64(ev.entry.Response.BodySize)), nil
	case "response.httpVersion":
		return String(ev.entry.Response.HTTPVersion), nil
	case "response.headersSize":
		return Number(float64(ev.entry.Response.HeadersSize)), nil
	case "response.header":
		name, err := headerArg(path, args)
		if err != nil {
			return Missing, err
		}
		v, _ := ev.entry.ResponseHeader(name)
		return String(v), nil

	// Timings (milliseconds; absent phases are Missing)
	case "time":
		return Number(ev.entry.Time), nil
	case "blocked", "dns", "connect", "ssl", "send", "wait", "receive":
		if ms, ok := ev.entry.Timings.Phase(path); ok {
			return Number(ms), nil
		}
		return Missing, nil

	// GraphQL
	case "isGraphQL":
		return Bool(ev.gqlInfo().IsGraphQL), nil
	case "operationName":
		if info := ev.gqlInfo(); info.HasOperationName {
			return String(info.OperationName), nil
		}
		return Missing, nil
	case "operationType":
		if info := ev.gqlInfo(); info.HasOperationType {
			return String(info.OperationType), nil
		}
		return Missing, nil
	case "gql.query":
		if info := ev.gqlInfo(); info.HasQuery {
			return String(info.Query), nil
		}
		return Missing, nil

	// Miscellaneous
	case "startedDateTime":
		return String(ev.entry.StartedDateTime), nil
	case "serverIpAddress":
		if ev.entry.ServerIPAddress == "" {
			return Missing, nil
		}
		return String(ev.entry.ServerIPAddress), nil
	}

	name := path
	if args != nil {
		name += "(...)"
	}
	return Missing, ferrors.UndefinedField(name)
}

func headerArg(path string, args []string) (string, error) {
	if len(args) != 1 {
		return "", ferrors.Typef("%s expects exactly one header name argument", path)
	}
	return args[0], nil
}

// gqlInfo runs the GraphQL detector lazily and caches the result for the
// duration of this evaluation.
func (ev *evaluation) gqlInfo() graphql.Info {
	if ev.gql == nil {
		info := graphql.Detect(ev.entry)
		ev.gql = &info
	}
	return *ev.gql
}

// URL decomposition helpers. net/url handles the well-formed case; the
// string fallbacks keep odd capture URLs from resolving to errors.

func extractHost(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Hostname()
	}
	s := stripScheme(raw)
	host, _, _ := strings.Cut(s, "/")
	host, _, _ = strings.Cut(host, ":")
	return host
}

func extractPath(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		if u.Path == "" {
			return "/"
		}
		return u.Path
	}
	s := stripScheme(raw)
	if i := strings.Index(s, "/"); i >= 0 {
		p, _, _ := strings.Cut(s[i:], "?")
		return p
	}
	return "/"
}

func extractScheme(raw string) string {
	if u, err := url.Parse(raw); err == nil {
		return u.Scheme
	}
	scheme, _, ok := strings.Cut(raw, "://")
	if !ok {
		return ""
	}
	return scheme
}

func extractQuery(raw string) (string, bool) {
	_, q, ok := strings.Cut(raw, "?")
	return q, ok
}

func stripScheme(raw string) string {
	if _, rest, ok := strings.Cut(raw, "://"); ok {
		return rest
	}
	return raw
}
