// Package listview implements client-side pagination and search over a fully
// fetched record set. A Controller owns the records, the search term and the
// current page of one list; everything the page needs to draw is derived from
// that state on demand through View.
package listview

import (
	"fmt"
	"strings"
)

// DefaultPageSize is used when a controller is built without a page size.
const DefaultPageSize = 4

// SearchMode selects what happens to records that do not match the search term.
type SearchMode int

const (
	// ModeExclude drops non-matching records.
	ModeExclude SearchMode = iota
	// ModeRank keeps every record but orders matches before non-matches.
	ModeRank
)

func (m SearchMode) String() string {
	switch m {
	case ModeRank:
		return "rank"
	case ModeExclude:
		return "exclude"
	default:
		return "exclude"
	}
}

// ParseSearchMode converts a configuration value into a SearchMode.
func ParseSearchMode(mode string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "exclude", "filter":
		return ModeExclude, nil
	case "rank", "demote":
		return ModeRank, nil
	default:
		return ModeExclude, fmt.Errorf("invalid search mode %q, must be one of %v", mode,
			[]string{"exclude", "rank"})
	}
}

// PageView is the render plan for the current page of a list.
type PageView[T any] struct {
	Items      []T  `json:"items"`
	Start      int  `json:"start"`
	End        int  `json:"end"`
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// ShowingText returns the range summary shown under a table.
func (v PageView[T]) ShowingText() string {
	return fmt.Sprintf("Showing %d to %d of %d items", v.Start, v.End, v.Total)
}

// PageText returns the "Page X of Y" indicator.
func (v PageView[T]) PageText() string {
	return fmt.Sprintf("Page %d of %d", v.Page, v.TotalPages)
}

type config[T any] struct {
	pageSize int
	mode     SearchMode
	match    Predicate[T]
}

// Option configures a Controller at construction time.
type Option[T any] func(*config[T])

// WithPageSize fixes the number of records per page. Values below one fall
// back to DefaultPageSize.
func WithPageSize[T any](size int) Option[T] {
	return func(c *config[T]) {
		c.pageSize = size
	}
}

// WithSearchMode selects the exclude or rank policy.
func WithSearchMode[T any](mode SearchMode) Option[T] {
	return func(c *config[T]) {
		c.mode = mode
	}
}

// WithPredicate replaces the default matcher.
func WithPredicate[T any](match Predicate[T]) Option[T] {
	return func(c *config[T]) {
		c.match = match
	}
}

// Controller holds the state of one paginated list. It is owned by a single
// caller and is not safe for concurrent mutation.
type Controller[T any] struct {
	records  []T
	term     string
	page     int
	pageSize int
	mode     SearchMode
	match    Predicate[T]
}

// New builds a controller with no records on page one.
func New[T any](opts ...Option[T]) *Controller[T] {
	cfg := config[T]{
		pageSize: DefaultPageSize,
		mode:     ModeExclude,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pageSize < 1 {
		cfg.pageSize = DefaultPageSize
	}
	if cfg.match == nil {
		cfg.match = DefaultPredicate[T]()
	}

	return &Controller[T]{
		page:     1,
		pageSize: cfg.pageSize,
		mode:     cfg.mode,
		match:    cfg.match,
	}
}

// SetRecords replaces the record set and returns to the first page. The
// search term is kept and applies to the new records. The last call wins.
func (c *Controller[T]) SetRecords(records []T) {
	c.records = append([]T(nil), records...)
	c.page = 1
}

// SetSearchTerm updates the search term and returns to the first page.
func (c *Controller[T]) SetSearchTerm(term string) {
	c.term = term
	c.page = 1
}

// GoToPage moves to page n when it exists. Out of range requests are ignored.
func (c *Controller[T]) GoToPage(n int) bool {
	if n < 1 || n > c.TotalPages() || n == c.page {
		return false
	}
	c.page = n
	return true
}

// NextPage advances one page unless already on the last one.
func (c *Controller[T]) NextPage() bool {
	return c.GoToPage(c.CurrentPage() + 1)
}

// PrevPage goes back one page unless already on the first one.
func (c *Controller[T]) PrevPage() bool {
	return c.GoToPage(c.CurrentPage() - 1)
}

// Filtered returns the records after the search policy is applied.
func (c *Controller[T]) Filtered() []T {
	return Apply(c.records, c.term, c.mode, c.match)
}

// TotalPages is never less than one, even for an empty list.
func (c *Controller[T]) TotalPages() int {
	return totalPages(len(c.Filtered()), c.pageSize)
}

// CurrentPage returns the page View would render.
func (c *Controller[T]) CurrentPage() int {
	return clamp(c.page, 1, c.TotalPages())
}

func (c *Controller[T]) SearchTerm() string { return c.term }

func (c *Controller[T]) PageSize() int { return c.pageSize }

func (c *Controller[T]) Mode() SearchMode { return c.mode }

// Len returns the number of records before filtering.
func (c *Controller[T]) Len() int { return len(c.records) }

// View computes the current page. It does not modify the controller, so two
// calls without a mutation in between return equal views.
func (c *Controller[T]) View() PageView[T] {
	filtered := c.Filtered()
	total := len(filtered)
	pages := totalPages(total, c.pageSize)
	page := clamp(c.page, 1, pages)

	lo := (page - 1) * c.pageSize
	hi := min(page*c.pageSize, total)

	items := make([]T, 0, hi-lo)
	items = append(items, filtered[lo:hi]...)

	start := 0
	if total > 0 {
		start = lo + 1
	}

	return PageView[T]{
		Items:      items,
		Start:      start,
		End:        hi,
		Total:      total,
		Page:       page,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}

func totalPages(count, size int) int {
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
