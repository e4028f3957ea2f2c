// Package dashboard composes the record snapshot into filtered views and
// summary counts.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/invoice-lens/internal/domain/editor"
	"github.com/FACorreiaa/invoice-lens/internal/domain/record"
)

// StatusAll matches every status in Filter.
const StatusAll = "all"

// Summary holds the badge counts computed over the full, unfiltered set.
type Summary struct {
	Processed       int `json:"processed"`
	NeedsValidation int `json:"needsValidation"`
	Error           int `json:"error"`
}

// Filter returns the records matching both the status filter and the search
// term, preserving input order. A record matches the term when it appears
// case-insensitively in the file name or in any stringified extracted value.
func Filter(records []*record.Record, searchTerm, statusFilter string) []*record.Record {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	out := make([]*record.Record, 0, len(records))
	for _, rec := range records {
		if statusFilter != StatusAll && statusFilter != "" && string(rec.Status) != statusFilter {
			continue
		}
		if term != "" && !matches(rec, term) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FuzzyFilter is a looser variant that additionally accepts records whose
// file name fuzzy-matches the term, for typo-tolerant searching.
func FuzzyFilter(records []*record.Record, searchTerm, statusFilter string) []*record.Record {
	term := strings.ToLower(strings.TrimSpace(searchTerm))
	out := make([]*record.Record, 0, len(records))
	for _, rec := range records {
		if statusFilter != StatusAll && statusFilter != "" && string(rec.Status) != statusFilter {
			continue
		}
		if term != "" && !matches(rec, term) && !fuzzy.MatchFold(term, rec.FileName) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// SummaryCounts partitions the full set by terminal status. Badges reflect
// totals, not the current filter.
func SummaryCounts(records []*record.Record) Summary {
	var s Summary
	for _, rec := range records {
		switch rec.Status {
		case record.StatusProcessed:
			s.Processed++
		case record.StatusNeedsValidation:
			s.NeedsValidation++
		case record.StatusError:
			s.Error++
		}
	}
	return s
}

func matches(rec *record.Record, lowerTerm string) bool {
	if strings.Contains(strings.ToLower(rec.FileName), lowerTerm) {
		return true
	}
	for _, v := range rec.ExtractedValues {
		if strings.Contains(strings.ToLower(stringify(v)), lowerTerm) {
			return true
		}
	}
	return false
}

// stringify converts an extracted value to searchable text. Product lists are
// stringified field by field, consistent with what the table displays.
func stringify(v any) string {
	switch tv := v.(type) {
	case string:
		return tv
	case float64:
		return editor.FormatAmount(tv)
	case []record.Product:
		parts := make([]string, 0, len(tv))
		for _, p := range tv {
			for _, pv := range p {
				parts = append(parts, fmt.Sprintf("%v", pv))
			}
		}
		return strings.Join(parts, " ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
