// Package har models HTTP Archive (HAR) 1.2 documents and loads them from
// files or stdin. Only the fields the rest of the tool reads are typed;
// everything is preserved on round-trip through encoding/json.
package har

import (
	"encoding/base64"
	"strings"
)

// Har is the root of a HAR document.
type Har struct {
	Log Log `json:"log"`
}

// Log is the main container: metadata plus the recorded entries.
type Log struct {
	Version string   `json:"version"`
	Creator Creator  `json:"creator"`
	Browser *Creator `json:"browser,omitempty"`
	Pages   []Page   `json:"pages,omitempty"`
	Entries []Entry  `json:"entries"`
	Comment string   `json:"comment,omitempty"`
}

// Creator identifies the tool or browser that produced the capture.
type Creator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Comment string `json:"comment,omitempty"`
}

// Page groups entries belonging to one page load.
type Page struct {
	StartedDateTime string       `json:"startedDateTime"`
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	PageTimings     *PageTimings `json:"pageTimings,omitempty"`
	Comment         string       `json:"comment,omitempty"`
}

// PageTimings holds page-level load milestones.
type PageTimings struct {
	OnContentLoad *float64 `json:"onContentLoad,omitempty"`
	OnLoad        *float64 `json:"onLoad,omitempty"`
	Comment       string   `json:"comment,omitempty"`
}

// Entry is one captured request/response transaction.
type Entry struct {
	Pageref         string   `json:"pageref,omitempty"`
	StartedDateTime string   `json:"startedDateTime"`
	Time            float64  `json:"time"`
	Request         Request  `json:"request"`
	Response        Response `json:"response"`
	Cache           Cache    `json:"cache"`
	Timings         Timings  `json:"timings"`
	ServerIPAddress string   `json:"serverIPAddress,omitempty"`
	Connection      string   `json:"connection,omitempty"`
	Comment         string   `json:"comment,omitempty"`
}

// Request is the recorded HTTP request.
type Request struct {
	Method      string       `json:"method"`
	URL         string       `json:"url"`
	HTTPVersion string       `json:"httpVersion"`
	Cookies     []Cookie     `json:"cookies"`
	Headers     []Header     `json:"headers"`
	QueryString []QueryParam `json:"queryString"`
	PostData    *PostData    `json:"postData,omitempty"`
	HeadersSize int64        `json:"headersSize"`
	BodySize    int64        `json:"bodySize"`
	Comment     string       `json:"comment,omitempty"`
}

// Response is the recorded HTTP response.
type Response struct {
	Status      int      `json:"status"`
	StatusText  string   `json:"statusText"`
	HTTPVersion string   `json:"httpVersion"`
	Cookies     []Cookie `json:"cookies,omitempty"`
	Headers     []Header `json:"headers,omitempty"`
	Content     Content  `json:"content"`
	RedirectURL string   `json:"redirectURL,omitempty"`
	HeadersSize int64    `json:"headersSize"`
	BodySize    int64    `json:"bodySize"`
	Comment     string   `json:"comment,omitempty"`
}

// Cookie is a recorded cookie on either side of the transaction.
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Path     string `json:"path,omitempty"`
	Domain   string `json:"domain,omitempty"`
	Expires  string `json:"expires,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// Header is a single name/value pair.
type Header struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Comment string `json:"comment,omitempty"`
}

// QueryParam is a single parsed query-string parameter.
type QueryParam struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Comment string `json:"comment,omitempty"`
}

// PostData is the posted request body, if any.
type PostData struct {
	MimeType string      `json:"mimeType"`
	Params   []PostParam `json:"params,omitempty"`
	Text     string      `json:"text,omitempty"`
	Comment  string      `json:"comment,omitempty"`
}

// PostParam is one posted form parameter.
type PostParam struct {
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	FileName    string `json:"fileName,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// Content is the response body with its declared type and encoding.
type Content struct {
	Size        int64  `json:"size"`
	Compression *int64 `json:"compression,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Text        string `json:"text,omitempty"`
	Encoding    string `json:"encoding,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// Cache holds before/after cache state for an entry.
type Cache struct {
	BeforeRequest *CacheEntry `json:"beforeRequest,omitempty"`
	AfterRequest  *CacheEntry `json:"afterRequest,omitempty"`
	Comment       string      `json:"comment,omitempty"`
}

// CacheEntry describes one cache lookup.
type CacheEntry struct {
	Expires    string `json:"expires,omitempty"`
	LastAccess string `json:"lastAccess,omitempty"`
	ETag       string `json:"eTag,omitempty"`
	HitCount   *int64 `json:"hitCount,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// Timings is the per-phase breakdown in milliseconds. HAR uses -1 (or an
// absent field) for phases that did not apply; Phase normalizes both to
// "not present".
type Timings struct {
	Blocked *float64 `json:"blocked,omitempty"`
	DNS     *float64 `json:"dns,omitempty"`
	Connect *float64 `json:"connect,omitempty"`
	Send    *float64 `json:"send,omitempty"`
	Wait    *float64 `json:"wait,omitempty"`
	Receive *float64 `json:"receive,omitempty"`
	SSL     *float64 `json:"ssl,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

// Phase returns the named timing phase in milliseconds. The HAR -1
// sentinel and missing fields both report ok=false.
func (t *Timings) Phase(name string) (float64, bool) {
	var v *float64
	switch name {
	case "blocked":
		v = t.Blocked
	case "dns":
		v = t.DNS
	case "connect":
		v = t.Connect
	case "send":
		v = t.Send
	case "wait":
		v = t.Wait
	case "receive":
		v = t.Receive
	case "ssl":
		v = t.SSL
	}
	if v == nil || *v < 0 {
		return 0, false
	}
	return *v, true
}

// RequestHeader looks up a request header by name, case-insensitively.
func (e *Entry) RequestHeader(name string) (string, bool) {
	return headerValue(e.Request.Headers, name)
}

// ResponseHeader looks up a response header by name, case-insensitively.
func (e *Entry) ResponseHeader(name string) (string, bool) {
	return headerValue(e.Response.Headers, name)
}

func headerValue(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ContentType returns the response content type: content.mimeType when
// present, otherwise the Content-Type response header.
func (e *Entry) ContentType() (string, bool) {
	if e.Response.Content.MimeType != "" {
		return e.Response.Content.MimeType, true
	}
	return e.ResponseHeader("content-type")
}

// DecodedText returns the response body bytes, decoding base64 when the
// content declares it.
func (c *Content) DecodedText() ([]byte, bool) {
	if c.Text == "" {
		return nil, false
	}
	if c.Encoding == "base64" {
		b, err := base64.StdEncoding.DecodeString(c.Text)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return []byte(c.Text), true
}

// TextContent returns the response body as a string, decoding base64 when
// needed.
func (c *Content) TextContent() (string, bool) {
	b, ok := c.DecodedText()
	if !ok {
		return "", false
	}
	return string(b), true
}
