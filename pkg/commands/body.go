package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/sambeau/harq/pkg/har"
)

// BodyCmd extracts a request or response body.
type BodyCmd struct {
	Index   int
	Request bool
	Pretty  bool
	Raw     bool
}

// Run writes the body to w.
func (c *BodyCmd) Run(w io.Writer, h *har.Har) error {
	e, err := entryAt(h, c.Index)
	if err != nil {
		return err
	}
	if c.Request {
		return c.writeRequestBody(w, e)
	}
	return c.writeResponseBody(w, e)
}

func (c *BodyCmd) writeRequestBody(w io.Writer, e *har.Entry) error {
	pd := e.Request.PostData
	if pd == nil || pd.Text == "" {
		return fmt.Errorf("entry %d has no request body", c.Index)
	}
	if c.Pretty && strings.Contains(pd.MimeType, "json") {
		return writePrettyJSON(w, pd.Text)
	}
	fmt.Fprintln(w, pd.Text)
	return nil
}

func (c *BodyCmd) writeResponseBody(w io.Writer, e *har.Entry) error {
	content := &e.Response.Content
	data, ok := content.DecodedText()
	if !ok {
		return fmt.Errorf("entry %d has no response body", c.Index)
	}

	if c.Raw {
		_, err := w.Write(data)
		return err
	}

	text := decodeCharset(data, content.MimeType)

	if c.Pretty && strings.Contains(content.MimeType, "json") {
		return writePrettyJSON(w, text)
	}
	fmt.Fprintln(w, text)
	return nil
}

// decodeCharset converts a text body to UTF-8 using the charset declared
// in the content type. Undeclared or unknown charsets pass through as-is.
func decodeCharset(data []byte, mimeType string) string {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return string(data)
	}
	label, ok := params["charset"]
	if !ok || strings.EqualFold(label, "utf-8") {
		return string(data)
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(data))
	if err != nil {
		return string(data)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

func writePrettyJSON(w io.Writer, text string) error {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		// Not valid JSON, print as-is.
		fmt.Fprintln(w, text)
		return nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(b))
	return nil
}
