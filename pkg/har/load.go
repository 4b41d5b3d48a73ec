package har

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Load reads a HAR document from path. "-" reads stdin. Gzip-compressed
// input (a .har.gz export, or anything starting with the gzip magic) is
// decompressed transparently.
func Load(path string) (*Har, error) {
	if path == "-" {
		return Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a HAR document from r, sniffing for gzip compression.
func Parse(r io.Reader) (*Har, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("decompress HAR: %w", err)
		}
		defer gz.Close()
		return decode(gz)
	}
	return decode(br)
}

// ParseString decodes a HAR document from an in-memory JSON string.
func ParseString(s string) (*Har, error) {
	var h Har
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, fmt.Errorf("parse HAR JSON: %w", err)
	}
	return &h, nil
}

func decode(r io.Reader) (*Har, error) {
	var h Har
	dec := json.NewDecoder(r)
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("parse HAR: %w", err)
	}
	return &h, nil
}

// FilterEntries returns a copy of h containing only the given entries,
// keeping the log metadata so the result is itself a valid HAR document.
func FilterEntries(h *Har, entries []Entry) *Har {
	return &Har{
		Log: Log{
			Version: h.Log.Version,
			Creator: h.Log.Creator,
			Browser: h.Log.Browser,
			Pages:   h.Log.Pages,
			Entries: entries,
			Comment: h.Log.Comment,
		},
	}
}
