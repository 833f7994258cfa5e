// Package csvfile implements comma separated translation files.
//
// The bilingual layout names its columns in a header row: source, target,
// context (or id), location, fuzzy, translator_comments and
// developer_comments. Headerless files have two (source, target) or three
// (context, source, target) columns.
//
// The simple layout stores key,value rows for monolingual use. The multi
// layout is the same, but repeated keys form one unit with several
// strings.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Column names understood in a header row.
const (
	ColSource             = "source"
	ColTarget             = "target"
	ColContext            = "context"
	ColID                 = "id"
	ColLocation           = "location"
	ColFuzzy              = "fuzzy"
	ColTranslatorComments = "translator_comments"
	ColDeveloperComments  = "developer_comments"
)

var knownColumns = []string{
	ColSource, ColTarget, ColContext, ColID, ColLocation, ColFuzzy,
	ColTranslatorComments, ColDeveloperComments,
}

// File is a parsed CSV file.
type File struct {
	// Header is nil for headerless files.
	Header  []string
	Rows    [][]string
	columns map[string]int
}

// Parse reads CSV data. With detectHeader, a first row made only of known
// column names is taken as the header.
func Parse(data []byte, detectHeader bool) (*File, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing CSV: %w", err)
		}
		rows = append(rows, rec)
	}

	f := &File{columns: make(map[string]int)}
	if detectHeader && len(rows) > 0 && isHeader(rows[0]) {
		f.Header = rows[0]
		rows = rows[1:]
		for i, name := range f.Header {
			f.columns[strings.ToLower(strings.TrimSpace(name))] = i
		}
		if _, ok := f.columns[ColContext]; !ok {
			if i, ok := f.columns[ColID]; ok {
				f.columns[ColContext] = i
			}
		}
	}
	f.Rows = rows
	return f, nil
}

func isHeader(row []string) bool {
	hasSource := false
	for _, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		if !slices.Contains(knownColumns, name) {
			return false
		}
		hasSource = hasSource || name == ColSource
	}
	return hasSource
}

// Column returns the index of a named column in a file with a header.
func (f *File) Column(name string) (int, bool) {
	i, ok := f.columns[name]
	return i, ok
}

// Marshal writes the header and rows.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if f.Header != nil {
		if err := w.Write(f.Header); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(f.Rows); err != nil {
		return nil, fmt.Errorf("writing CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// layout maps unit fields to columns; -1 marks an absent column.
type layout struct {
	source   int
	target   int
	context  int
	location int
	fuzzy    int
	notes    []int
}

func bilingualLayout(f *File) (layout, error) {
	if f.Header != nil {
		l := layout{source: -1, target: -1, context: -1, location: -1, fuzzy: -1}
		col := func(name string) int {
			if i, ok := f.columns[name]; ok {
				return i
			}
			return -1
		}
		l.source = col(ColSource)
		l.target = col(ColTarget)
		l.context = col(ColContext)
		l.location = col(ColLocation)
		l.fuzzy = col(ColFuzzy)
		for _, name := range []string{ColDeveloperComments, ColTranslatorComments} {
			if i := col(name); i >= 0 {
				l.notes = append(l.notes, i)
			}
		}
		if l.target < 0 {
			return l, errors.New("header has no target column")
		}
		return l, nil
	}
	width := 0
	for _, row := range f.Rows {
		width = max(width, len(row))
	}
	switch width {
	case 0, 2:
		return layout{source: 0, target: 1, context: -1, location: -1, fuzzy: -1}, nil
	case 3:
		return layout{context: 0, source: 1, target: 2, location: -1, fuzzy: -1}, nil
	default:
		return layout{}, fmt.Errorf("cannot guess the meaning of %d columns without a header", width)
	}
}

var keyValueLayout = layout{context: 0, source: 1, target: 1, location: -1, fuzzy: -1}
