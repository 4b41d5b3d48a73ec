// Package graphql classifies HAR entries as GraphQL traffic. Detection is
// heuristic and never fails: anything that does not look like GraphQL is
// simply not GraphQL.
package graphql

import (
	"encoding/json"
	"mime"
	"strings"

	"github.com/sambeau/harq/pkg/har"
)

// Info is the detection result. The Has* flags distinguish absent
// optional fields from empty strings.
type Info struct {
	IsGraphQL        bool
	OperationName    string
	HasOperationName bool
	OperationType    string
	HasOperationType bool
	Query            string
	HasQuery         bool
}

// Detect classifies one entry. An entry is GraphQL when its request path
// contains "graphql", or when it is a POST with an application/json body
// whose top-level JSON object has a string "query" field. The derived
// fields come from the body either way; a missing or unparseable body
// just leaves them unset.
func Detect(e *har.Entry) Info {
	var info Info

	body := requestBodyJSON(e)
	if body != nil {
		if q, ok := body["query"].(string); ok {
			info.Query = q
			info.HasQuery = true
			if t, ok := operationType(q); ok {
				info.OperationType = t
				info.HasOperationType = true
			}
		}
		if n, ok := body["operationName"].(string); ok {
			info.OperationName = n
			info.HasOperationName = true
		}
	}

	switch {
	case strings.Contains(strings.ToLower(requestPath(e)), "graphql"):
		info.IsGraphQL = true
	case isJSONPost(e) && info.HasQuery:
		info.IsGraphQL = true
	}

	return info
}

func isJSONPost(e *har.Entry) bool {
	if !strings.EqualFold(e.Request.Method, "POST") || e.Request.PostData == nil {
		return false
	}
	mt, _, err := mime.ParseMediaType(e.Request.PostData.MimeType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(e.Request.PostData.MimeType))
	}
	return mt == "application/json"
}

func requestBodyJSON(e *har.Entry) map[string]any {
	if e.Request.PostData == nil || e.Request.PostData.Text == "" {
		return nil
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(e.Request.PostData.Text), &body); err != nil {
		return nil
	}
	return body
}

func requestPath(e *har.Entry) string {
	raw := e.Request.URL
	if _, rest, ok := strings.Cut(raw, "://"); ok {
		raw = rest
	}
	i := strings.Index(raw, "/")
	if i < 0 {
		return "/"
	}
	p, _, _ := strings.Cut(raw[i:], "?")
	return p
}

// operationType reads the leading keyword of a GraphQL document: query,
// mutation, or subscription. Shorthand documents starting with '{' are
// queries.
func operationType(query string) (string, bool) {
	trimmed := strings.TrimSpace(query)

	for _, keyword := range []string{"query", "mutation", "subscription"} {
		if !strings.HasPrefix(trimmed, keyword) {
			continue
		}
		rest := trimmed[len(keyword):]
		if rest == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") ||
			strings.HasPrefix(rest, "\n") || strings.HasPrefix(rest, "(") || strings.HasPrefix(rest, "{") {
			return keyword, true
		}
	}

	if strings.HasPrefix(trimmed, "{") {
		return "query", true
	}
	return "", false
}
