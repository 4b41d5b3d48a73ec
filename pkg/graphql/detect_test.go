package graphql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sambeau/harq/pkg/har"
)

func postEntry(url, mimeType, body string) *har.Entry {
	e := &har.Entry{
		Request: har.Request{Method: "POST", URL: url},
	}
	if body != "" {
		e.Request.PostData = &har.PostData{MimeType: mimeType, Text: body}
	}
	return e
}

func TestDetectByPath(t *testing.T) {
	e := &har.Entry{Request: har.Request{Method: "GET", URL: "https://api.example.com/GraphQL?op=x"}}
	info := Detect(e)
	assert.True(t, info.IsGraphQL, "path match is case-insensitive")
	assert.False(t, info.HasQuery)
	assert.False(t, info.HasOperationName)
}

func TestDetectByBody(t *testing.T) {
	e := postEntry("https://api.example.com/data", "application/json",
		`{"operationName":"GetUser","query":"query GetUser { user { name } }"}`)
	info := Detect(e)

	assert.True(t, info.IsGraphQL)
	assert.True(t, info.HasQuery)
	assert.Equal(t, "GetUser", info.OperationName)
	assert.Equal(t, "query", info.OperationType)
}

func TestDetectByBodyWithCharsetParam(t *testing.T) {
	e := postEntry("https://api.example.com/data", "application/json; charset=utf-8",
		`{"query":"{ viewer { login } }"}`)
	info := Detect(e)

	assert.True(t, info.IsGraphQL)
	assert.Equal(t, "query", info.OperationType, "shorthand documents are queries")
	assert.False(t, info.HasOperationName)
}

func TestNotGraphQL(t *testing.T) {
	cases := []*har.Entry{
		// plain GET
		{Request: har.Request{Method: "GET", URL: "https://example.com/index.html"}},
		// JSON POST without a query field
		postEntry("https://api.example.com/users", "application/json", `{"name":"Ada"}`),
		// query field that is not a string
		postEntry("https://api.example.com/users", "application/json", `{"query":42}`),
		// right body, wrong content type
		postEntry("https://api.example.com/users", "text/plain", `{"query":"{ a }"}`),
		// GET with a query body cannot be a GraphQL POST
		{Request: har.Request{Method: "GET", URL: "https://api.example.com/users"}},
		// unparseable body
		postEntry("https://api.example.com/users", "application/json", `not json`),
	}
	for i, e := range cases {
		assert.False(t, Detect(e).IsGraphQL, "case %d", i)
	}
}

func TestOperationType(t *testing.T) {
	tests := []struct {
		query    string
		expected string
		ok       bool
	}{
		{"query GetUser { user { id } }", "query", true},
		{"query\n{ user { id } }", "query", true},
		{"query($id: ID!) { user(id: $id) { id } }", "query", true},
		{"mutation CreateUser { createUser { id } }", "mutation", true},
		{"subscription OnEvent { events { id } }", "subscription", true},
		{"{ user { id } }", "query", true},
		{"  \n\t{ user { id } }", "query", true},
		{"queryX { a }", "", false},
		{"mutations { a }", "", false},
		{"fragment F on User { id }", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := operationType(tt.query)
		assert.Equal(t, tt.ok, ok, "query %q", tt.query)
		assert.Equal(t, tt.expected, got, "query %q", tt.query)
	}
}

func TestPathDetectionStillReadsBody(t *testing.T) {
	// A /graphql URL with a mutation body reports the body-derived fields.
	e := postEntry("https://api.example.com/graphql", "application/json",
		`{"query":"mutation Save { save { ok } }"}`)
	info := Detect(e)

	assert.True(t, info.IsGraphQL)
	assert.Equal(t, "mutation", info.OperationType)
}
