package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

// Status of a game in the catalog
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

type TokenPackage struct {
	Tokens int             `json:"tokens"`
	Price  decimal.Decimal `json:"price"`
}

// Game is a catalog entry as the console serves it.
type Game struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Image         string         `json:"image,omitempty"`
	Locations     []string       `json:"locations"`
	TokenPackages []TokenPackage `json:"tokenPackages"`
	Status        Status         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// IsActive treats a missing status as active.
func (g Game) IsActive() bool {
	return g.Status == "" || g.Status == StatusActive
}

// CheapestPackage is the lowest-priced package, used for "from" prices.
func (g Game) CheapestPackage() (TokenPackage, bool) {
	if len(g.TokenPackages) == 0 {
		return TokenPackage{}, false
	}
	best := g.TokenPackages[0]
	for _, p := range g.TokenPackages[1:] {
		if p.Price.LessThan(best.Price) {
			best = p
		}
	}
	return best, true
}

func FromHCCC(g hccc.Game) Game {
	out := Game{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		Image:         g.Image,
		Locations:     g.Locations,
		TokenPackages: make([]TokenPackage, 0, len(g.TokenPackages)),
		Status:        Status(strings.ToLower(g.Status)),
		CreatedAt:     g.CreatedAt,
	}
	if out.Locations == nil {
		out.Locations = []string{}
	}
	for _, p := range g.TokenPackages {
		out.TokenPackages = append(out.TokenPackages, TokenPackage{Tokens: p.Tokens, Price: p.Price})
	}
	return out
}

func FromHCCCList(list []hccc.Game) []Game {
	out := make([]Game, 0, len(list))
	for _, g := range list {
		out = append(out, FromHCCC(g))
	}
	return out
}

// List is the admin games table. Filtering and sorting happen upstream;
// the sort table also bounds which sortBy values are accepted.
var List = listview.Config[Game]{
	Name: "games",
	Search: []func(Game) string{
		func(g Game) string { return g.Name },
		func(g Game) string { return g.Description },
	},
	Filters: map[string]func(Game) string{
		"status": func(g Game) string { return string(g.Status) },
	},
	Sorts: map[string]listview.SortField[Game]{
		"name":      {Kind: listview.KindString, String: func(g Game) string { return g.Name }},
		"createdAt": {Kind: listview.KindTime, Time: func(g Game) time.Time { return g.CreatedAt }},
	},
	DefaultSort:  "name",
	DefaultOrder: listview.Asc,
	DefaultLimit: 12,
}
