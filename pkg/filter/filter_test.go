package filter

import (
	"sync"
	"testing"

	"github.com/sambeau/harq/pkg/har"
)

func entries() []har.Entry {
	return []har.Entry{
		{
			Time: 45,
			Request: har.Request{
				Method: "GET",
				URL:    "https://cdn.example.com/app.js",
			},
			Response: har.Response{Status: 200},
		},
		{
			Time: 310,
			Request: har.Request{
				Method: "POST",
				URL:    "https://api.example.com/graphql",
				PostData: &har.PostData{
					MimeType: "application/json",
					Text:     `{"operationName":"ListOrders","query":"query ListOrders { orders { id } }"}`,
				},
			},
			Response: har.Response{Status: 200},
		},
		{
			Time: 1200,
			Request: har.Request{
				Method: "GET",
				URL:    "https://api.example.com/v1/orders?limit=50",
			},
			Response: har.Response{Status: 503},
		},
	}
}

func TestCompileAndTest(t *testing.T) {
	tests := []struct {
		expr    string
		matched []int // 0-based indexes into entries()
	}{
		{`status >= 400`, []int{2}},
		{`method == "POST"`, []int{1}},
		{`url.contains("api.example.com")`, []int{1, 2}},
		{`isGraphQL`, []int{1}},
		{`isGraphQL && operationName == "ListOrders"`, []int{1}},
		{`time > 1000`, []int{2}},
		{`time > 1000 || isGraphQL`, []int{1, 2}},
		{`query == "limit=50"`, []int{2}},
		{`path.matches(/^\/v[0-9]+\//)`, []int{2}},
		{`method == "GET" && status == 200`, []int{0}},
	}

	all := entries()
	for _, tt := range tests {
		pred, err := Compile(tt.expr)
		if err != nil {
			t.Fatalf("expr %q: compile error: %v", tt.expr, err)
		}

		var got []int
		for i := range all {
			ok, err := pred.Test(&all[i])
			if err != nil {
				t.Fatalf("expr %q: entry %d: %v", tt.expr, i, err)
			}
			if ok {
				got = append(got, i)
			}
		}

		if len(got) != len(tt.matched) {
			t.Errorf("expr %q: expected matches %v, got %v", tt.expr, tt.matched, got)
			continue
		}
		for i := range got {
			if got[i] != tt.matched[i] {
				t.Errorf("expr %q: expected matches %v, got %v", tt.expr, tt.matched, got)
				break
			}
		}
	}
}

func TestFilterScenarios(t *testing.T) {
	ok := &har.Entry{
		Request:  har.Request{Method: "GET", URL: "https://x/users/42"},
		Response: har.Response{Status: 200},
		Time:     900,
	}
	notFound := &har.Entry{
		Request:  har.Request{Method: "GET", URL: "https://x/users/abc"},
		Response: har.Response{Status: 404},
		Time:     900,
	}
	post := &har.Entry{
		Request:  har.Request{Method: "POST", URL: "https://x/users"},
		Response: har.Response{Status: 201},
		Time:     900,
	}
	gql := &har.Entry{
		Request: har.Request{
			Method: "POST",
			URL:    "https://x/api",
			PostData: &har.PostData{
				MimeType: "application/json",
				Text:     `{"query":"query GetUser { user { id } }","operationName":"GetUser"}`,
			},
		},
		Response: har.Response{Status: 200},
	}

	tests := []struct {
		expr     string
		entry    *har.Entry
		expected bool
	}{
		{`status == 200`, ok, true},
		{`status == 200`, notFound, false},
		{`method == "POST" && time > 500`, ok, false},
		{`method == "POST" && time > 500`, post, true},
		{`url.matches(/\/users\/\d+/)`, ok, true},
		{`url.matches(/\/users\/\d+/)`, notFound, false},
		{`isGraphQL && operationName == "GetUser"`, gql, true},
		{`isGraphQL && operationName == "GetUser"`, ok, false},
		// An absent header resolves to "", not an error, so != "" is false.
		{`request.header("Authorization") != ""`, ok, false},
	}

	for _, tt := range tests {
		pred, err := Compile(tt.expr)
		if err != nil {
			t.Fatalf("expr %q: compile error: %v", tt.expr, err)
		}
		got, err := pred.Test(tt.entry)
		if err != nil {
			t.Fatalf("expr %q: %v", tt.expr, err)
		}
		if got != tt.expected {
			t.Errorf("expr %q on %s: expected=%t, got=%t",
				tt.expr, tt.entry.Request.URL, tt.expected, got)
		}
	}

	// Malformed expressions fail at compile time, before any record.
	if _, err := Compile(`status = = 200`); err == nil {
		t.Fatal("expected a compile error for 'status = = 200'")
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile(`status = 500`); err == nil {
		t.Fatal("expected a compile error")
	}
	if _, err := Compile(``); err == nil {
		t.Fatal("expected a compile error for an empty expression")
	}
}

func TestSource(t *testing.T) {
	src := `status == 200`
	pred, err := Compile(src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if pred.Source() != src {
		t.Errorf("Source() expected=%q, got=%q", src, pred.Source())
	}
}

// A compiled predicate is shared across goroutines in watch mode; the
// compiled regex must be safe for concurrent matching.
func TestConcurrentUse(t *testing.T) {
	pred, err := Compile(`url.matches(/example\.com/) && status == 200`)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	all := entries()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				for i := range all {
					if _, err := pred.Test(&all[i]); err != nil {
						t.Error(err)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
}
