// Package listview is the filter, sort and paginate engine shared by the
// admin tables. One Config per entity describes how to search, filter and
// sort it; the same Config drives client-side evaluation and the query
// sent upstream for server-side tables.
package listview

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

const (
	DefaultLimit      = 10
	MaxLimit          = 100
	DefaultMaxVisible = 5
	DefaultDebounce   = time.Second
)

// Kind selects how a sort field compares.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindTime
)

// SortField extracts one sortable value from T. Only the extractor that
// matches Kind is used.
type SortField[T any] struct {
	Kind   Kind
	String func(T) string
	Number func(T) float64
	Time   func(T) time.Time
}

// Config describes a list view over T.
type Config[T any] struct {
	Name string

	// Search holds the fields matched by the free-text search.
	Search []func(T) string

	// Filters maps a categorical filter key (status, location, game, role)
	// to the field it matches exactly.
	Filters map[string]func(T) string

	// Tokens enables the tokens range filter.
	Tokens func(T) int

	Sorts map[string]SortField[T]

	// ServerSorts names sort fields the upstream API accepts that have no
	// local extractor.
	ServerSorts  []string
	DefaultSort  string
	DefaultOrder SortOrder
	DefaultLimit int

	// Debounce delays search-triggered fetches in server-side mode.
	Debounce time.Duration
}

// NewState returns the initial state for the view.
func (c Config[T]) NewState() State {
	order := c.DefaultOrder
	if !order.Valid() {
		order = Asc
	}
	return State{
		Filter: FilterState{
			Filters:   map[string]string{},
			SortBy:    c.DefaultSort,
			SortOrder: order,
		},
		Page: Pagination{Page: 1, Limit: c.limit()},
	}
}

func (c Config[T]) limit() int {
	if c.DefaultLimit > 0 {
		return c.DefaultLimit
	}
	return DefaultLimit
}

func (c Config[T]) debounce() time.Duration {
	if c.Debounce > 0 {
		return c.Debounce
	}
	return DefaultDebounce
}

// Matches reports whether item passes every active filter in f.
func (c Config[T]) Matches(item T, f FilterState) bool {
	if q := strings.TrimSpace(f.Search); q != "" && len(c.Search) > 0 {
		q = strings.ToLower(q)
		found := false
		for _, field := range c.Search {
			if strings.Contains(strings.ToLower(field(item)), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for key, want := range f.Filters {
		if want == "" {
			continue
		}
		field, ok := c.Filters[key]
		if !ok {
			continue
		}
		if !strings.EqualFold(field(item), want) {
			return false
		}
	}

	if c.Tokens != nil {
		tokens := c.Tokens(item)
		if f.TokensMin != nil && tokens < *f.TokensMin {
			return false
		}
		if f.TokensMax != nil && tokens > *f.TokensMax {
			return false
		}
	}
	return true
}

// Compare is a three-way comparison of a and b on the field by, in
// ascending order. Strings compare case-insensitively. Unknown fields
// compare equal.
func (c Config[T]) Compare(a, b T, by string) int {
	field, ok := c.Sorts[by]
	if !ok {
		return 0
	}
	switch field.Kind {
	case KindNumber:
		if field.Number == nil {
			return 0
		}
		return cmp.Compare(field.Number(a), field.Number(b))
	case KindTime:
		if field.Time == nil {
			return 0
		}
		return field.Time(a).Compare(field.Time(b))
	default:
		if field.String == nil {
			return 0
		}
		return strings.Compare(strings.ToLower(field.String(a)), strings.ToLower(field.String(b)))
	}
}

// Sort orders items in place. The sort is stable in both directions: items
// with equal keys keep their input order.
func (c Config[T]) Sort(items []T, by string, order SortOrder) {
	if _, ok := c.Sorts[by]; !ok {
		return
	}
	sign := 1
	if order == Desc {
		sign = -1
	}
	slices.SortStableFunc(items, func(a, b T) int {
		return sign * c.Compare(a, b, by)
	})
}

// Result is the outcome of a client-side evaluation.
type Result[T any] struct {
	// Items are all matching items, sorted.
	Items []T
	// FilteredCount is len(Items).
	FilteredCount int
	// ServerTotal is the unfiltered count the server reported.
	ServerTotal int
}

// Apply filters and sorts items in memory. The input slice is not modified.
func (c Config[T]) Apply(items []T, f FilterState, serverTotal int) Result[T] {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if c.Matches(item, f) {
			out = append(out, item)
		}
	}
	by := f.SortBy
	if by == "" {
		by = c.DefaultSort
	}
	order := f.SortOrder
	if !order.Valid() {
		order = c.DefaultOrder
	}
	c.Sort(out, by, order)
	return Result[T]{Items: out, FilteredCount: len(out), ServerTotal: serverTotal}
}

// Paginate returns the slice of items on page p.
func Paginate[T any](items []T, p Pagination) []T {
	if p.Limit <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Limit, len(items))
	return items[start:end]
}
