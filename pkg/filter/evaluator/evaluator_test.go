package evaluator

import (
	"strings"
	"testing"

	ferrors "github.com/sambeau/harq/pkg/filter/errors"
	"github.com/sambeau/harq/pkg/filter/parser"
	"github.com/sambeau/harq/pkg/har"
)

func ms(v float64) *float64 { return &v }

func testEntry() *har.Entry {
	return &har.Entry{
		StartedDateTime: "2024-03-01T10:00:00.000Z",
		Time:            152.5,
		ServerIPAddress: "93.184.216.34",
		Request: har.Request{
			Method:      "POST",
			URL:         "https://api.example.com/v2/users?page=2",
			HTTPVersion: "HTTP/2",
			Headers: []har.Header{
				{Name: "Content-Type", Value: "application/json"},
				{Name: "Authorization", Value: "Bearer abc123"},
			},
			PostData: &har.PostData{
				MimeType: "application/json",
				Text:     `{"name":"Ada"}`,
			},
			HeadersSize: 312,
			BodySize:    14,
		},
		Response: har.Response{
			Status:      201,
			StatusText:  "Created",
			HTTPVersion: "HTTP/2",
			Headers: []har.Header{
				{Name: "Content-Type", Value: "application/json; charset=utf-8"},
				{Name: "X-Request-Id", Value: "req-42"},
			},
			Content: har.Content{
				Size:     88,
				MimeType: "application/json",
				Text:     `{"id":7,"name":"Ada"}`,
			},
			HeadersSize: 200,
			BodySize:    88,
		},
		Timings: har.Timings{
			Blocked: ms(1),
			DNS:     ms(-1), // HAR sentinel for "did not apply"
			Connect: ms(12),
			Send:    ms(0.3),
			Wait:    ms(130),
			Receive: ms(9.2),
		},
	}
}

func graphqlEntry() *har.Entry {
	return &har.Entry{
		Time: 80,
		Request: har.Request{
			Method: "POST",
			URL:    "https://api.example.com/data",
			PostData: &har.PostData{
				MimeType: "application/json",
				Text:     `{"operationName":"GetUser","query":"query GetUser($id: ID!) { user(id: $id) { name } }"}`,
			},
		},
		Response: har.Response{Status: 200},
	}
}

func evalString(t *testing.T, input string, entry *har.Entry) (Value, error) {
	t.Helper()
	expr, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("input %q: parse error: %v", input, err)
	}
	return Eval(expr, entry)
}

func testMatch(t *testing.T, input string, entry *har.Entry) (bool, error) {
	t.Helper()
	expr, err := parser.Parse(input)
	if err != nil {
		t.Fatalf("input %q: parse error: %v", input, err)
	}
	return EvalPredicate(expr, entry)
}

func TestPredicates(t *testing.T) {
	entry := testEntry()

	tests := []struct {
		input    string
		expected bool
	}{
		// Comparisons
		{`status == 201`, true},
		{`status != 201`, false},
		{`status >= 200`, true},
		{`status < 300`, true},
		{`status > 201`, false},
		{`time > 100`, true},
		{`time <= 152.5`, true},

		// Strings
		{`method == "POST"`, true},
		{`method == "get"`, false},
		{`host == "api.example.com"`, true},
		{`domain == "api.example.com"`, true},
		{`path == "/v2/users"`, true},
		{`scheme == "https"`, true},
		{`protocol == "https"`, true},
		{`query == "page=2"`, true},
		{`statusText == "Created"`, true},
		{`request.httpVersion == "HTTP/2"`, true},

		// Field type wins: status is numeric, the string side is parsed
		{`status == "201"`, true},
		{`status != "200"`, true},
		{`status == "created"`, false},
		{`"201" == status`, true},
		{`status >= "200"`, true},

		// Methods
		{`url.contains("/v2/")`, true},
		{`url.startsWith("https://")`, true},
		{`path.endsWith("users")`, true},
		{`url.matches(/\/v[0-9]+\//)`, true},
		{`url.matches(/EXAMPLE/i)`, true},
		{`url.matches(/EXAMPLE/)`, false},

		// Headers, case-insensitive names, "" when absent
		{`request.header("authorization") == "Bearer abc123"`, true},
		{`request.header("AUTHORIZATION").startsWith("Bearer ")`, true},
		{`request.header("X-Missing") == ""`, true},
		{`response.header("x-request-id") == "req-42"`, true},
		{`contentType == "application/json"`, true},

		// Timings: present phases are numbers
		{`connect > 10`, true},
		{`wait >= 130`, true},

		// Logic
		{`status == 201 && method == "POST"`, true},
		{`status == 500 || method == "POST"`, true},
		{`!(status == 500)`, true},
		{`!isGraphQL`, true},

		// Booleans
		{`true`, true},
		{`false`, false},
		{`isGraphQL == false`, true},
	}

	for _, tt := range tests {
		got, err := testMatch(t, tt.input, entry)
		if err != nil {
			t.Errorf("input %q: unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("input %q: expected=%t, got=%t", tt.input, tt.expected, got)
		}
	}
}

func TestMissingSemantics(t *testing.T) {
	// No query string, no serverIPAddress, dns carries the -1 sentinel.
	entry := &har.Entry{
		Request:  har.Request{Method: "GET", URL: "https://example.com/index.html"},
		Response: har.Response{Status: 200},
		Timings:  har.Timings{DNS: ms(-1)},
	}

	falseCases := []string{
		// Missing with equality is false for both == and !=
		`query == "page=2"`,
		`query != "page=2"`,
		`serverIpAddress == "1.2.3.4"`,
		`serverIpAddress != "1.2.3.4"`,
		`operationName == "GetUser"`,
		`operationName != "GetUser"`,
		// Missing method receiver never matches
		`query.contains("page")`,
		`operationName.startsWith("Get")`,
		`gql.query.matches(/user/)`,
	}
	for _, input := range falseCases {
		got, err := testMatch(t, input, entry)
		if err != nil {
			t.Errorf("input %q: unexpected error: %v", input, err)
			continue
		}
		if got {
			t.Errorf("input %q: expected=false, got=true", input)
		}
	}

	// Missing with ordering is a type error
	orderingCases := []string{
		`dns > 5`,
		`contentType < 10`,
	}
	for _, input := range orderingCases {
		_, err := testMatch(t, input, entry)
		fe, ok := ferrors.AsFilterError(err)
		if !ok || fe.Class != ferrors.ClassType {
			t.Errorf("input %q: expected a type error, got %v", input, err)
		}
	}
}

func TestCoercionFallback(t *testing.T) {
	// A numeric field compared against a non-numeric string falls back to
	// the number's textual representation, which never matches.
	entry := testEntry()

	got, err := testMatch(t, `status == "201 Created"`, entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected no match for a non-numeric string against a number")
	}

	// But a string field holding digits compares numerically when the
	// other side is a number.
	entry.Response.Headers = append(entry.Response.Headers, har.Header{Name: "X-Count", Value: "0042"})
	got, err = testMatch(t, `response.header("X-Count") == 42`, entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error(`expected "0042" == 42 under numeric coercion`)
	}
}

func TestShortCircuit(t *testing.T) {
	entry := testEntry()

	// The right side would fail (unknown field), but the left side already
	// decides the result.
	if got, err := testMatch(t, `false && nosuchfield == 1`, entry); err != nil || got {
		t.Errorf("false && X: expected false with no error, got %t, %v", got, err)
	}
	if got, err := testMatch(t, `true || nosuchfield == 1`, entry); err != nil || !got {
		t.Errorf("true || X: expected true with no error, got %t, %v", got, err)
	}

	// Without short-circuiting the unknown field surfaces.
	if _, err := testMatch(t, `true && nosuchfield == 1`, entry); err == nil {
		t.Error("true && X: expected an unknown-field error")
	}
}

func TestTypeErrors(t *testing.T) {
	entry := testEntry()

	tests := []struct {
		input   string
		message string
	}{
		{`method > 100`, "requires numeric operands"},
		{`status && true`, "requires boolean operands"},
		{`!status`, "requires a boolean operand"},
		{`status.contains("20")`, "requires a string receiver"},
		{`method && method`, "requires boolean operands"},
	}

	for _, tt := range tests {
		_, err := testMatch(t, tt.input, entry)
		if err == nil {
			t.Errorf("input %q: expected an error", tt.input)
			continue
		}
		fe, ok := ferrors.AsFilterError(err)
		if !ok || fe.Class != ferrors.ClassType {
			t.Errorf("input %q: expected a type error, got %v", tt.input, err)
			continue
		}
		if !strings.Contains(fe.Message, tt.message) {
			t.Errorf("input %q: error %q does not mention %q", tt.input, fe.Message, tt.message)
		}
	}
}

func TestUnknownField(t *testing.T) {
	entry := testEntry()

	_, err := testMatch(t, `bogus == 1`, entry)
	fe, ok := ferrors.AsFilterError(err)
	if !ok || fe.Class != ferrors.ClassUndefined {
		t.Fatalf("expected an undefined-field error, got %v", err)
	}
	if !strings.Contains(fe.Message, "bogus") {
		t.Errorf("error %q does not name the field", fe.Message)
	}

	// Unknown accessors parse fine and fail here.
	_, err = testMatch(t, `request.cookie("session") == "x"`, entry)
	fe, ok = ferrors.AsFilterError(err)
	if !ok || fe.Class != ferrors.ClassUndefined {
		t.Fatalf("expected an undefined-field error for an unknown accessor, got %v", err)
	}
}

func TestNotAPredicate(t *testing.T) {
	entry := testEntry()

	tests := []struct {
		input string
		typ   string
	}{
		{`status`, "number"},
		{`method`, "string"},
		{`url`, "string"},
	}

	for _, tt := range tests {
		_, err := testMatch(t, tt.input, entry)
		fe, ok := ferrors.AsFilterError(err)
		if !ok || fe.Class != ferrors.ClassPredicate {
			t.Errorf("input %q: expected a predicate error, got %v", tt.input, err)
			continue
		}
		if !strings.Contains(fe.Message, tt.typ) {
			t.Errorf("input %q: error %q does not mention %q", tt.input, fe.Message, tt.typ)
		}
	}

	// A bare boolean field is a valid predicate.
	if _, err := testMatch(t, `isGraphQL`, entry); err != nil {
		t.Errorf("isGraphQL: unexpected error: %v", err)
	}
}

func TestGraphQLFields(t *testing.T) {
	entry := graphqlEntry()

	tests := []struct {
		input    string
		expected bool
	}{
		{`isGraphQL`, true},
		{`operationName == "GetUser"`, true},
		{`operationType == "query"`, true},
		{`gql.query.contains("mutation")`, false},
		{`gql.query.contains("user(id: $id)")`, true},
		{`isGraphQL && operationType == "mutation"`, false},
	}

	for _, tt := range tests {
		got, err := testMatch(t, tt.input, entry)
		if err != nil {
			t.Errorf("input %q: unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("input %q: expected=%t, got=%t", tt.input, tt.expected, got)
		}
	}
}

func TestEvalValues(t *testing.T) {
	entry := testEntry()

	tests := []struct {
		input string
		kind  Kind
		text  string
	}{
		{`status`, KindNumber, "201"},
		{`method`, KindString, "POST"},
		{`time`, KindNumber, "152.5"},
		{`isGraphQL`, KindBool, "false"},
		{`contentType`, KindString, "application/json"},
	}

	for _, tt := range tests {
		v, err := evalString(t, tt.input, entry)
		if err != nil {
			t.Errorf("input %q: unexpected error: %v", tt.input, err)
			continue
		}
		if v.Kind() != tt.kind {
			t.Errorf("input %q: kind expected=%v, got=%v", tt.input, tt.kind, v.Kind())
		}
		if v.Text() != tt.text {
			t.Errorf("input %q: text expected=%q, got=%q", tt.input, tt.text, v.Text())
		}
	}

	v, err := evalString(t, `dns`, entry)
	if err != nil {
		t.Fatalf("dns: unexpected error: %v", err)
	}
	if !v.IsMissing() {
		t.Errorf("dns carries the -1 sentinel, expected Missing, got %v", v.Type())
	}
}
