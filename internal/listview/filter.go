package listview

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/cases"
)

// Predicate reports whether record matches the search term.
type Predicate[T any] func(record T, term string) bool

// Searchable records expose the text a search term is matched against.
type Searchable interface {
	SearchFields() []string
}

// ContainsFold reports whether needle occurs in haystack, ignoring case.
// Folding is Unicode aware, so "STRASSE" matches "straße".
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	folder := cases.Fold()
	return strings.Contains(folder.String(haystack), folder.String(needle))
}

// FieldsMatch builds a substring predicate over the fields returned by fields.
func FieldsMatch[T any](fields func(T) []string) Predicate[T] {
	return func(record T, term string) bool {
		term = strings.TrimSpace(term)
		for _, field := range fields(record) {
			if ContainsFold(field, term) {
				return true
			}
		}
		return false
	}
}

// FuzzyMatch builds a predicate that accepts a field when the characters of
// the term appear in it in order, e.g. "brd" matches "Bread".
func FuzzyMatch[T any](fields func(T) []string) Predicate[T] {
	return func(record T, term string) bool {
		term = strings.TrimSpace(term)
		for _, field := range fields(record) {
			if fuzzy.MatchNormalizedFold(term, field) {
				return true
			}
		}
		return false
	}
}

// DefaultPredicate matches Searchable records on their search fields and
// anything else on its formatted value.
func DefaultPredicate[T any]() Predicate[T] {
	return FieldsMatch(searchFields[T])
}

// DefaultFuzzyPredicate is the fuzzy counterpart of DefaultPredicate.
func DefaultFuzzyPredicate[T any]() Predicate[T] {
	return FuzzyMatch(searchFields[T])
}

func searchFields[T any](record T) []string {
	if s, ok := any(record).(Searchable); ok {
		return s.SearchFields()
	}
	return []string{fmt.Sprint(record)}
}

// Apply filters records for term under mode. An empty term returns the
// records unchanged. Rank mode is a stable partition: matches keep their
// relative order ahead of non-matches, which also keep theirs.
func Apply[T any](records []T, term string, mode SearchMode, match Predicate[T]) []T {
	if strings.TrimSpace(term) == "" {
		return append([]T(nil), records...)
	}

	matched := make([]T, 0, len(records))
	var rest []T
	for _, record := range records {
		if match(record, term) {
			matched = append(matched, record)
			continue
		}
		if mode == ModeRank {
			rest = append(rest, record)
		}
	}

	return append(matched, rest...)
}
