// Package dataset reads the raw CSV inputs of an analysis run.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("missing column")

// Options controls how a CSV file is read.
type Options struct {
	// MaxRows limits rows kept; 0 means unlimited.
	MaxRows int
	// Delimiter defaults to ','.
	Delimiter rune
}

// Frame is a CSV file held as strings: a header plus rows padded to the header width.
type Frame struct {
	Name   string
	Header []string
	Rows   [][]string
	// Total is the number of data rows in the file, Rows may hold fewer when MaxRows applied.
	Total    int
	Warnings []string

	index map[string]int
}

// ReadCSV loads a header-first CSV file.
func ReadCSV(path string, opt Options) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	fr, err := ParseCSV(f, opt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	fr.Name = filepath.Base(path)
	return fr, nil
}

// ParseCSV reads a header-first CSV stream.
func ParseCSV(r io.Reader, opt Options) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: header row required")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	fr := &Frame{Header: make([]string, len(header))}
	for i, h := range header {
		// Strip a UTF-8 BOM some exports put in front of the first name.
		fr.Header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	fr.buildIndex()

	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	ncol := len(fr.Header)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", fr.Total+1, err)
		}
		fr.Total++
		if len(fr.Rows) >= maxRows {
			continue
		}
		row := make([]string, ncol)
		copy(row, rec)
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		fr.Rows = append(fr.Rows, row)
	}
	if len(fr.Rows) < fr.Total {
		fr.Warnings = append(fr.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", len(fr.Rows), fr.Total))
	}
	return fr, nil
}

func (f *Frame) buildIndex() {
	f.index = make(map[string]int, len(f.Header))
	for i, h := range f.Header {
		key := strings.ToLower(h)
		if _, dup := f.index[key]; !dup {
			f.index[key] = i
		}
	}
}

// Index returns the position of a column, matched case-insensitively.
func (f *Frame) Index(name string) (int, bool) {
	if f.index == nil {
		f.buildIndex()
	}
	i, ok := f.index[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// Require resolves several columns at once.
func (f *Frame) Require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	var missing []string
	for i, n := range names {
		j, ok := f.Index(n)
		if !ok {
			missing = append(missing, n)
			continue
		}
		idx[i] = j
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", f.Name, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return idx, nil
}

// Column returns a copy of one column's values.
func (f *Frame) Column(name string) ([]string, error) {
	idx, err := f.Require(name)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx[0]]
	}
	return out, nil
}

// Len is the number of rows kept.
func (f *Frame) Len() int { return len(f.Rows) }

// WithRows returns a frame sharing f's header over a different row set.
func (f *Frame) WithRows(rows [][]string) *Frame {
	return &Frame{Name: f.Name, Header: f.Header, Rows: rows, Total: f.Total, Warnings: f.Warnings, index: f.index}
}
