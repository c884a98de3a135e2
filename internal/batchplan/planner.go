// Package batchplan partitions unique work items into request-sized batches.
// Markup cells travel alone so the model can focus on preserving tags; plain
// texts are packed greedily up to a character budget.
package batchplan

import (
	"strings"

	"feedtrans/internal/dedup"
)

// DefaultCharBudget is the maximum cumulative character count of a packed
// plain-text batch.
const DefaultCharBudget = 2000

// Batch groups one or more unique texts for a single provider request.
// Texts and Items stay index-aligned.
type Batch struct {
	Texts  []string
	Markup bool
	Items  []dedup.Unique
}

// ContainsMarkup reports whether a text looks like it carries HTML. The
// presence of both '<' and '>' is taken as sufficient evidence; literal
// angle brackets in plain text are accepted as false positives.
func ContainsMarkup(text string) bool {
	return strings.Contains(text, "<") && strings.Contains(text, ">")
}

// Plan splits items into batches: one singleton batch per markup item, then
// plain items greedily packed in encounter order up to charBudget characters.
// An item longer than the budget stays whole in its own batch; texts are
// never split mid-string. charBudget <= 0 selects DefaultCharBudget.
func Plan(items []dedup.Unique, charBudget int) []Batch {
	if charBudget <= 0 {
		charBudget = DefaultCharBudget
	}

	var batches []Batch
	var plain []dedup.Unique

	for _, item := range items {
		if ContainsMarkup(item.Text) {
			batches = append(batches, Batch{
				Texts:  []string{item.Text},
				Markup: true,
				Items:  []dedup.Unique{item},
			})
		} else {
			plain = append(plain, item)
		}
	}

	var current Batch
	var chars int
	for _, item := range plain {
		if chars+len(item.Text) > charBudget && len(current.Texts) > 0 {
			batches = append(batches, current)
			current = Batch{}
			chars = 0
		}
		current.Texts = append(current.Texts, item.Text)
		current.Items = append(current.Items, item)
		chars += len(item.Text)
	}
	if len(current.Texts) > 0 {
		batches = append(batches, current)
	}

	return batches
}
