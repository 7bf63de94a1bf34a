package listview

import (
	"errors"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/hccc/gameroom-console/internal/pkg/validator"
)

// Query parameter names shared by the console API and the HCCC API.
const (
	ParamSearch    = "search"
	ParamTokensMin = "tokensMin"
	ParamTokensMax = "tokensMax"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamPage      = "page"
	ParamLimit     = "limit"
)

// FilterKeys are the categorical filters a list may expose.
var FilterKeys = []string{"status", "location", "game", "role"}

// Query serialises s for the upstream list endpoint. Empty fields are
// omitted.
func (c Config[T]) Query(s State) url.Values {
	q := url.Values{}
	if search := strings.TrimSpace(s.Filter.Search); search != "" {
		q.Set(ParamSearch, search)
	}
	for _, key := range FilterKeys {
		if v := s.Filter.Filters[key]; v != "" {
			q.Set(key, v)
		}
	}
	if s.Filter.TokensMin != nil {
		q.Set(ParamTokensMin, strconv.Itoa(*s.Filter.TokensMin))
	}
	if s.Filter.TokensMax != nil {
		q.Set(ParamTokensMax, strconv.Itoa(*s.Filter.TokensMax))
	}
	if s.Filter.SortBy != "" {
		q.Set(ParamSortBy, s.Filter.SortBy)
		order := s.Filter.SortOrder
		if !order.Valid() {
			order = Asc
		}
		q.Set(ParamSortOrder, string(order))
	}
	page := s.Page.Page
	if page < 1 {
		page = 1
	}
	q.Set(ParamPage, strconv.Itoa(page))
	limit := s.Page.Limit
	if limit <= 0 {
		limit = c.limit()
	}
	q.Set(ParamLimit, strconv.Itoa(limit))
	return q
}

// ErrInvalidQuery wraps the field errors of a rejected list query.
type ErrInvalidQuery struct {
	Fields map[string]string
}

func (e *ErrInvalidQuery) Error() string {
	return "invalid list query"
}

// IsInvalidQuery returns the field errors when err is an ErrInvalidQuery.
func IsInvalidQuery(err error) (map[string]string, bool) {
	var q *ErrInvalidQuery
	if errors.As(err, &q) {
		return q.Fields, true
	}
	return nil, false
}

type queryParams struct {
	SortOrder string `json:"sortOrder" validate:"sort_order"`
	Page      int    `json:"page" validate:"gte=0"`
	Limit     int    `json:"limit" validate:"gte=0,lte=100"`
	Location  string `json:"location" validate:"omitempty,location"`
	Role      string `json:"role" validate:"omitempty,role"`
	TokensMin *int   `json:"tokensMin" validate:"omitempty,gte=0"`
	TokensMax *int   `json:"tokensMax" validate:"omitempty,gte=0"`
}

// ParseQuery reads the console's list query parameters into a State.
// Unknown sort fields fall back to the default sort.
func (c Config[T]) ParseQuery(q url.Values) (State, error) {
	s := c.NewState()
	fields := map[string]string{}

	atoi := func(key string) int {
		raw := q.Get(key)
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[key] = "Must be a whole number"
		}
		return n
	}
	optional := func(key string) *int {
		if q.Get(key) == "" {
			return nil
		}
		n := atoi(key)
		return &n
	}

	params := queryParams{
		SortOrder: strings.ToLower(q.Get(ParamSortOrder)),
		Page:      atoi(ParamPage),
		Limit:     atoi(ParamLimit),
		Location:  q.Get("location"),
		Role:      q.Get("role"),
		TokensMin: optional(ParamTokensMin),
		TokensMax: optional(ParamTokensMax),
	}
	for k, v := range validator.Validate(params) {
		fields[k] = v
	}
	if params.TokensMin != nil && params.TokensMax != nil && *params.TokensMin > *params.TokensMax {
		fields[ParamTokensMax] = "Must not be less than tokensMin"
	}
	if len(fields) > 0 {
		return s, &ErrInvalidQuery{Fields: fields}
	}

	s.Filter.Search = strings.TrimSpace(q.Get(ParamSearch))
	for _, key := range FilterKeys {
		if v := q.Get(key); v != "" {
			s.Filter.Filters[key] = v
		}
	}
	s.Filter.TokensMin = params.TokensMin
	s.Filter.TokensMax = params.TokensMax
	if by := q.Get(ParamSortBy); by != "" && c.HasSort(by) {
		s.Filter.SortBy = by
	}
	if params.SortOrder != "" {
		s.Filter.SortOrder = SortOrder(params.SortOrder)
	}
	if params.Page > 0 {
		s.Page.Page = params.Page
	}
	if params.Limit > 0 {
		s.Page.Limit = params.Limit
	}
	return s, nil
}

// HasSort reports whether by is a sort field of the view.
func (c Config[T]) HasSort(by string) bool {
	if _, ok := c.Sorts[by]; ok {
		return true
	}
	return slices.Contains(c.ServerSorts, by)
}
