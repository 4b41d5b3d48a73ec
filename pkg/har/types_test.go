package har

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimingsPhase(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	timings := Timings{
		Blocked: v(1.5),
		DNS:     v(-1),
		Wait:    v(0),
	}

	ms, ok := timings.Phase("blocked")
	assert.True(t, ok)
	assert.Equal(t, 1.5, ms)

	// -1 is the HAR sentinel for "did not apply"
	_, ok = timings.Phase("dns")
	assert.False(t, ok)

	// absent field
	_, ok = timings.Phase("connect")
	assert.False(t, ok)

	// zero is a real measurement
	ms, ok = timings.Phase("wait")
	assert.True(t, ok)
	assert.Equal(t, 0.0, ms)

	_, ok = timings.Phase("nonsense")
	assert.False(t, ok)
}

func TestHeaderLookup(t *testing.T) {
	e := &Entry{
		Request: Request{
			Headers: []Header{
				{Name: "Content-Type", Value: "application/json"},
				{Name: "X-Token", Value: "abc"},
			},
		},
		Response: Response{
			Headers: []Header{
				{Name: "CONTENT-TYPE", Value: "text/html"},
			},
		},
	}

	v, ok := e.RequestHeader("content-type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", v)

	v, ok = e.ResponseHeader("Content-Type")
	assert.True(t, ok)
	assert.Equal(t, "text/html", v)

	v, ok = e.RequestHeader("X-Missing")
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestContentType(t *testing.T) {
	e := &Entry{
		Response: Response{
			Content: Content{MimeType: "application/json"},
			Headers: []Header{{Name: "Content-Type", Value: "text/html"}},
		},
	}
	ct, ok := e.ContentType()
	assert.True(t, ok)
	assert.Equal(t, "application/json", ct, "content.mimeType wins over the header")

	e.Response.Content.MimeType = ""
	ct, ok = e.ContentType()
	assert.True(t, ok)
	assert.Equal(t, "text/html", ct)

	e.Response.Headers = nil
	_, ok = e.ContentType()
	assert.False(t, ok)
}

func TestDecodedText(t *testing.T) {
	plain := Content{Text: "hello"}
	b, ok := plain.DecodedText()
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), b)

	encoded := Content{
		Text:     base64.StdEncoding.EncodeToString([]byte(`{"ok":true}`)),
		Encoding: "base64",
	}
	s, ok := encoded.TextContent()
	assert.True(t, ok)
	assert.Equal(t, `{"ok":true}`, s)

	empty := Content{}
	_, ok = empty.DecodedText()
	assert.False(t, ok)

	bad := Content{Text: "!!not base64!!", Encoding: "base64"}
	_, ok = bad.DecodedText()
	assert.False(t, ok)
}
