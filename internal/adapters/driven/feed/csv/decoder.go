// Package csv decodes the delimited inventory feed into records keyed
// by header name.
package csv

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/custodia-labs/stocksync/internal/core/domain"
	"github.com/custodia-labs/stocksync/internal/core/ports/driven"
)

// Ensure Decoder implements the interface.
var _ driven.FeedDecoder = (*Decoder)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder opens feed files with a fixed field separator.
type Decoder struct {
	comma rune
}

// NewDecoder creates a decoder. A zero separator defaults to ';'.
func NewDecoder(comma rune) *Decoder {
	if comma == 0 {
		comma = ';'
	}
	return &Decoder{comma: comma}
}

// Open reads the header row of the file at path and returns a stream
// over the remaining rows.
func (d *Decoder) Open(ctx context.Context, path string) (driven.RecordStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.DecodeError{Path: path, Err: err}
	}

	br := bufio.NewReader(f)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	r := csv.NewReader(br)
	r.Comma = d.comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		if errors.Is(err, io.EOF) {
			err = errors.New("missing header row")
		}
		return nil, &domain.DecodeError{Path: path, Line: 1, Err: err}
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	return &stream{path: path, file: f, reader: r, columns: columns}, nil
}

// stream yields one record per data row.
type stream struct {
	path    string
	file    *os.File
	reader  *csv.Reader
	columns []string
}

// Next returns the next row. Rows whose fields are all empty are still
// records. Rows shorter than the header leave the missing columns absent;
// extra fields are ignored.
func (s *stream) Next() (domain.FeedRecord, error) {
	for {
		fields, err := s.reader.Read()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			line, _ := s.reader.FieldPos(0)
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &domain.DecodeError{Path: s.path, Line: line, Err: err}
		}
		rec := make(domain.FeedRecord, len(s.columns))
		for i, col := range s.columns {
			if i >= len(fields) {
				break
			}
			if col == "" {
				continue
			}
			rec[col] = fields[i]
		}
		return rec, nil
	}
}

// Close releases the file.
func (s *stream) Close() error {
	return s.file.Close()
}
