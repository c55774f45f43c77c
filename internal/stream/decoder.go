// Package stream decodes newline-delimited JSON response streams.
package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/askdokita/dokita/internal/debug"
)

// maxLineSize bounds a single record line.
const maxLineSize = 1024 * 1024

// Record is one decoded unit of a response stream. Text is the fragment to
// fold into the assistant message; it is empty for records that carry only
// metadata. Raw holds the original line.
type Record struct {
	Text string
	Raw  string
}

// Decoder splits a streamed response body into Records, one per line.
// Splitting happens on the newline byte, which never occurs inside a UTF-8
// multi-byte sequence, so arbitrary network chunk boundaries cannot corrupt
// decoded text.
type Decoder struct {
	scanner *bufio.Scanner
}

// NewDecoder wraps the given stream.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Decoder{scanner: scanner}
}

// Next returns the next record. Blank lines are skipped and lines that are
// not valid JSON are dropped without terminating the stream. Next returns
// io.EOF when the source is exhausted; any other error comes from the
// underlying reader.
func (d *Decoder) Next() (Record, error) {
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			debug.Log("[stream] dropping malformed line: %.80s", line)
			continue
		}
		return Record{
			Text: gjson.Get(line, "text").String(),
			Raw:  line,
		}, nil
	}

	if err := d.scanner.Err(); err != nil {
		return Record{}, err
	}
	return Record{}, io.EOF
}
