// Package dedup collapses repeated source strings into unique work items so
// identical product descriptions are translated once and written back to
// every row that shared them.
package dedup

// Item is one non-empty source cell, tagged with its absolute row index.
type Item struct {
	Row  int
	Text string
}

// Unique is one distinct text value together with every row that carried it.
// Rows preserves encounter order.
type Unique struct {
	Text string
	Rows []int
}

// Result holds the deduplicated work items and their counts.
type Result struct {
	Items         []Unique
	TotalOriginal int
	TotalUnique   int
}

// Dedupe groups textually identical items (exact match, no normalization)
// into one Unique each. The output preserves the order of first occurrence,
// which keeps downstream batch numbering deterministic.
func Dedupe(items []Item) Result {
	byText := make(map[string]int, len(items))
	var uniques []Unique

	for _, item := range items {
		if pos, ok := byText[item.Text]; ok {
			uniques[pos].Rows = append(uniques[pos].Rows, item.Row)
			continue
		}
		byText[item.Text] = len(uniques)
		uniques = append(uniques, Unique{Text: item.Text, Rows: []int{item.Row}})
	}

	return Result{
		Items:         uniques,
		TotalOriginal: len(items),
		TotalUnique:   len(uniques),
	}
}

// SavedPercent returns the share of rows that deduplication avoids
// translating, as a percentage of the original count.
func (r Result) SavedPercent() float64 {
	if r.TotalOriginal == 0 {
		return 0
	}
	return (1 - float64(r.TotalUnique)/float64(r.TotalOriginal)) * 100
}
