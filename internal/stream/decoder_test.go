package stream

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader yields at most size bytes per Read to simulate arbitrary
// network chunk boundaries.
type chunkReader struct {
	data []byte
	size int
	pos  int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.size
	if n > len(p) {
		n = len(p)
	}
	if r.pos+n > len(r.data) {
		n = len(r.data) - r.pos
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func collect(t *testing.T, d *Decoder) []Record {
	t.Helper()

	var records []Record
	for {
		rec, err := d.Next()
		if errors.Is(err, io.EOF) {
			return records
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		records = append(records, rec)
	}
}

func TestDecoder(t *testing.T) {
	t.Run("decodes one record per line", func(t *testing.T) {
		input := `{"text":"Hel"}` + "\n" + `{"text":"lo, "}` + "\n" + `{"text":"world"}` + "\n"

		records := collect(t, NewDecoder(strings.NewReader(input)))

		want := []string{"Hel", "lo, ", "world"}
		if len(records) != len(want) {
			t.Fatalf("expected %d records, got %d", len(want), len(records))
		}
		for i, text := range want {
			if records[i].Text != text {
				t.Errorf("record %d: expected %q, got %q", i, text, records[i].Text)
			}
		}
	})

	t.Run("identical records for any chunking of the byte stream", func(t *testing.T) {
		input := `{"text":"Wò shì"}` + "\n" + `{"text":"médecin généraliste"}` + "\n" + `{"grounding":true}` + "\n"

		baseline := collect(t, NewDecoder(strings.NewReader(input)))

		for size := 1; size <= len(input); size++ {
			records := collect(t, NewDecoder(&chunkReader{data: []byte(input), size: size}))
			if len(records) != len(baseline) {
				t.Fatalf("chunk size %d: expected %d records, got %d", size, len(baseline), len(records))
			}
			for i := range records {
				if records[i] != baseline[i] {
					t.Errorf("chunk size %d: record %d = %+v, want %+v", size, i, records[i], baseline[i])
				}
			}
		}
	})

	t.Run("drops malformed lines and continues", func(t *testing.T) {
		input := `{"text":"before"}` + "\n" + `{"text": oops` + "\n" + `{"text":"after"}` + "\n"

		records := collect(t, NewDecoder(strings.NewReader(input)))

		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Text != "before" || records[1].Text != "after" {
			t.Errorf("unexpected records: %+v", records)
		}
	})

	t.Run("skips blank lines", func(t *testing.T) {
		input := "\n" + `{"text":"a"}` + "\n\n   \n" + `{"text":"b"}` + "\n\n"

		records := collect(t, NewDecoder(strings.NewReader(input)))

		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("records without text carry an empty fragment", func(t *testing.T) {
		input := `{"grounding":true}` + "\n"

		records := collect(t, NewDecoder(strings.NewReader(input)))

		if len(records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(records))
		}
		if records[0].Text != "" {
			t.Errorf("expected empty text, got %q", records[0].Text)
		}
	})

	t.Run("final line without trailing newline is decoded", func(t *testing.T) {
		input := `{"text":"end"}`

		records := collect(t, NewDecoder(strings.NewReader(input)))

		if len(records) != 1 || records[0].Text != "end" {
			t.Errorf("unexpected records: %+v", records)
		}
	})

	t.Run("empty stream returns io.EOF immediately", func(t *testing.T) {
		_, err := NewDecoder(strings.NewReader("")).Next()
		if !errors.Is(err, io.EOF) {
			t.Errorf("expected io.EOF, got %v", err)
		}
	})

	t.Run("reader errors are surfaced", func(t *testing.T) {
		cause := errors.New("connection reset")
		d := NewDecoder(io.MultiReader(
			strings.NewReader(`{"text":"a"}`+"\n"),
			&failingReader{err: cause},
		))

		if _, err := d.Next(); err != nil {
			t.Fatalf("first record should decode, got %v", err)
		}
		_, err := d.Next()
		if !errors.Is(err, cause) {
			t.Errorf("expected %v, got %v", cause, err)
		}
	})
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
