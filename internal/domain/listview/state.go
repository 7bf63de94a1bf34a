package listview

import "maps"

// SortOrder is asc or desc.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Valid reports whether o is a known order.
func (o SortOrder) Valid() bool { return o == Asc || o == Desc }

// FilterState is what an admin table is currently filtered and sorted by.
// JSON names mirror the query parameters.
type FilterState struct {
	Search    string            `json:"search"`
	Filters   map[string]string `json:"filters"`
	TokensMin *int              `json:"tokensMin,omitempty"`
	TokensMax *int              `json:"tokensMax,omitempty"`
	SortBy    string            `json:"sortBy"`
	SortOrder SortOrder         `json:"sortOrder"`
}

// Clone returns a copy that shares nothing with f.
func (f FilterState) Clone() FilterState {
	out := f
	out.Filters = maps.Clone(f.Filters)
	if f.TokensMin != nil {
		v := *f.TokensMin
		out.TokensMin = &v
	}
	if f.TokensMax != nil {
		v := *f.TokensMax
		out.TokensMax = &v
	}
	return out
}

// Pagination is 1-indexed. Total is the count the server reported.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// TotalPages is ceil(Total/Limit); zero when there is nothing to show.
func (p Pagination) TotalPages() int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// Clamp keeps Page within [1, TotalPages], or 1 when there are no pages.
func (p Pagination) Clamp() Pagination {
	pages := p.TotalPages()
	if p.Page > pages {
		p.Page = pages
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Reported takes the page block a server answered with. Zero page or
// limit fall back to p; the result is clamped.
func (p Pagination) Reported(page, limit, total int) Pagination {
	out := Pagination{Page: page, Limit: limit, Total: total}
	if out.Page < 1 {
		out.Page = p.Page
	}
	if out.Limit < 1 {
		out.Limit = p.Limit
	}
	return out.Clamp()
}

// Offset is the index of the first item on the current page.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// State is the full view state of one table. All filter mutators reset the
// page to 1.
type State struct {
	Filter FilterState `json:"filter"`
	Page   Pagination  `json:"pagination"`
}

func (s *State) SetSearch(q string) {
	s.Filter.Search = q
	s.Page.Page = 1
}

// SetFilter sets a categorical filter; an empty value removes it.
func (s *State) SetFilter(key, value string) {
	if value == "" {
		delete(s.Filter.Filters, key)
	} else {
		if s.Filter.Filters == nil {
			s.Filter.Filters = make(map[string]string)
		}
		s.Filter.Filters[key] = value
	}
	s.Page.Page = 1
}

func (s *State) SetTokensRange(minTokens, maxTokens *int) {
	s.Filter.TokensMin = minTokens
	s.Filter.TokensMax = maxTokens
	s.Page.Page = 1
}

func (s *State) SetSort(by string, order SortOrder) {
	s.Filter.SortBy = by
	if order.Valid() {
		s.Filter.SortOrder = order
	}
	s.Page.Page = 1
}

// SetLimit changes the page size, which also moves back to page 1.
func (s *State) SetLimit(limit int) {
	if limit > 0 {
		s.Page.Limit = limit
	}
	s.Page.Page = 1
}

// SetPage moves to page n, clamped to the known page count.
func (s *State) SetPage(n int) {
	s.Page.Page = n
	s.Page = s.Page.Clamp()
}

// Clone returns a deep copy.
func (s State) Clone() State {
	s.Filter = s.Filter.Clone()
	return s
}
