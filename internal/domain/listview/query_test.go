package listview

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuerySerialisesState(t *testing.T) {
	s := rowConfig.NewState()
	s.SetSearch("  john ")
	s.SetFilter("location", "mall")
	s.SetFilter("status", "succeeded")
	lo := 10
	s.SetTokensRange(&lo, nil)
	s.SetSort("tokens", Desc)
	s.Page.Total = 100
	s.SetPage(3)

	q := rowConfig.Query(s)

	assert.Equal(t, url.Values{
		"search":    {"john"},
		"location":  {"mall"},
		"status":    {"succeeded"},
		"tokensMin": {"10"},
		"sortBy":    {"tokens"},
		"sortOrder": {"desc"},
		"page":      {"3"},
		"limit":     {"10"},
	}, q)
}

func TestParseQueryRoundTrip(t *testing.T) {
	s, err := rowConfig.ParseQuery(url.Values{
		"search":    {"ann"},
		"location":  {"downtown"},
		"sortBy":    {"tokens"},
		"sortOrder": {"DESC"},
		"page":      {"2"},
		"limit":     {"25"},
		"tokensMax": {"40"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ann", s.Filter.Search)
	assert.Equal(t, "downtown", s.Filter.Filters["location"])
	assert.Equal(t, "tokens", s.Filter.SortBy)
	assert.Equal(t, Desc, s.Filter.SortOrder)
	assert.Equal(t, 2, s.Page.Page)
	assert.Equal(t, 25, s.Page.Limit)
	require.NotNil(t, s.Filter.TokensMax)
	assert.Equal(t, 40, *s.Filter.TokensMax)
}

func TestParseQueryUnknownSortFallsBack(t *testing.T) {
	s, err := rowConfig.ParseQuery(url.Values{"sortBy": {"password"}})
	require.NoError(t, err)
	assert.Equal(t, "name", s.Filter.SortBy)
}

func TestParseQueryRejectsBadInput(t *testing.T) {
	_, err := rowConfig.ParseQuery(url.Values{
		"sortOrder": {"sideways"},
		"limit":     {"500"},
		"location":  {"moon"},
		"page":      {"two"},
		"tokensMin": {"30"},
		"tokensMax": {"10"},
	})
	fields, ok := IsInvalidQuery(err)
	require.True(t, ok)
	for _, key := range []string{"sortOrder", "limit", "location", "page", "tokensMax"} {
		assert.Contains(t, fields, key)
	}
}
