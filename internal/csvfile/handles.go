package csvfile

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/unicode/norm"
)

// NormalizeHandles rewrites translated handles in column H into valid URL
// slugs: lower-case ASCII, accents stripped, non-alphanumeric runs
// collapsed to single hyphens. Duplicate slugs get a zero-padded numeric
// suffix so every handle stays unique; the first occurrence keeps the bare
// slug.
//
// Handle rows are detected two ways: if the source column header is
// "Handle" the whole file is handles, otherwise any column whose header is
// "Field" or "Type" flags individual rows holding the value "handle".
func NormalizeHandles(rows [][]string) {
	if len(rows) < 2 {
		return
	}

	isHandle := handleDetector(rows[0])
	seen := make(map[string]int)
	for i := 1; i < len(rows); i++ {
		if !isHandle(rows[i]) {
			continue
		}
		rows[i] = pad(rows[i])
		text := rows[i][TargetColumn]
		if strings.TrimSpace(text) == "" {
			continue
		}

		slug := Slugify(text)
		if slug == "" {
			continue
		}
		if n := seen[slug]; n > 0 {
			seen[slug] = n + 1
			rows[i][TargetColumn] = fmt.Sprintf("%s-%03d", slug, n)
		} else {
			seen[slug] = 1
			rows[i][TargetColumn] = slug
		}
	}
}

func handleDetector(header []string) func(row []string) bool {
	if len(header) > SourceColumn && strings.EqualFold(strings.TrimSpace(header[SourceColumn]), "handle") {
		return func([]string) bool { return true }
	}
	for col, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "field", "type":
			col := col
			return func(row []string) bool {
				return col < len(row) && strings.EqualFold(strings.TrimSpace(row[col]), "handle")
			}
		}
	}
	return func([]string) bool { return false }
}

var stripAccents = runes.Remove(runes.In(unicode.Mn))

// Slugify lowers text into a hyphen-separated ASCII slug.
func Slugify(text string) string {
	flat := stripAccents.String(norm.NFD.String(text))

	var b strings.Builder
	lastHyphen := true // swallow leading separators
	for _, r := range strings.ToLower(flat) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
