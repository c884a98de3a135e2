// Package csvfile reads and writes product-feed CSVs. The feed layout is
// fixed: source text lives in column G and translations are written to
// column H. Rows are padded so both columns always exist, and the header
// row passes through untouched.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"feedtrans/internal/dedup"
)

const (
	// 0-based feed columns.
	SourceColumn = 6
	TargetColumn = 7

	minColumns = TargetColumn + 1
)

// File is a parsed feed: every row (header included) plus the non-empty
// source cells tagged with their absolute row index.
type File struct {
	Rows    [][]string
	Sources []dedup.Item
}

// Parse reads a feed CSV. Ragged rows and loosely quoted fields are
// tolerated; every row comes back padded to at least eight columns. Row 0
// is the header and contributes no source text.
func Parse(r io.Reader) (*File, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	f := &File{}
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}

		record = pad(record)
		if len(f.Rows) > 0 {
			if text := record[SourceColumn]; strings.TrimSpace(text) != "" {
				f.Sources = append(f.Sources, dedup.Item{Row: len(f.Rows), Text: text})
			}
		}
		f.Rows = append(f.Rows, record)
	}
	if len(f.Rows) == 0 {
		return nil, fmt.Errorf("empty CSV file")
	}
	return f, nil
}

// InsertTranslations writes each translation into column H of its row.
// Indexes outside the file are ignored.
func InsertTranslations(rows [][]string, translations map[int]string) {
	for i, text := range translations {
		if i < 0 || i >= len(rows) {
			continue
		}
		rows[i] = pad(rows[i])
		rows[i][TargetColumn] = text
	}
}

// Generate renders rows back to CSV text with every field quoted, empty
// ones included, matching the feed format the downstream import expects.
func Generate(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func pad(row []string) []string {
	for len(row) < minColumns {
		row = append(row, "")
	}
	return row
}
