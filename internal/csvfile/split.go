package csvfile

import (
	"fmt"
	"strings"
)

// Part is one piece of a split output file.
type Part struct {
	Name    string
	Content string
}

// SplitIfOversized breaks content into parts no larger than maxBytes,
// splitting only on row boundaries so a quoted multi-line field never tears
// across parts. Each part re-carries the header row and is named
// <base>_partN.csv. Content at or under the limit comes back as a single
// part with the original name.
func SplitIfOversized(name, content string, maxBytes int) []Part {
	if maxBytes <= 0 || len(content) <= maxBytes {
		return []Part{{Name: name, Content: content}}
	}

	records := splitRecords(content)
	if len(records) < 2 {
		return []Part{{Name: name, Content: content}}
	}
	header := records[0]
	base := strings.TrimSuffix(name, ".csv")

	var parts []Part
	var b strings.Builder
	flush := func() {
		if b.Len() > len(header) {
			parts = append(parts, Part{
				Name:    fmt.Sprintf("%s_part%d.csv", base, len(parts)+1),
				Content: b.String(),
			})
		}
		b.Reset()
		b.WriteString(header)
	}

	b.WriteString(header)
	for _, rec := range records[1:] {
		if b.Len()+len(rec) > maxBytes && b.Len() > len(header) {
			flush()
		}
		b.WriteString(rec)
	}
	flush()

	if len(parts) == 1 {
		parts[0].Name = name
	}
	return parts
}

// splitRecords cuts CSV text into logical records, each including its
// trailing newline. Newlines inside quoted fields do not end a record.
func splitRecords(content string) []string {
	var records []string
	start := 0
	inQuotes := false
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				records = append(records, content[start:i+1])
				start = i + 1
			}
		}
	}
	if start < len(content) {
		records = append(records, content[start:])
	}
	return records
}
