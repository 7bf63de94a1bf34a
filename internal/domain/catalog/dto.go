package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/hccc/gameroom-console/internal/domain/listview"
)

type TokenPackageRequest struct {
	Tokens int             `json:"tokens" validate:"required,gt=0"`
	Price  decimal.Decimal `json:"price"`
}

// GameRequest is the body of POST and PUT /api/admin/games.
type GameRequest struct {
	Name          string                `json:"name" validate:"required,min=2,max=120"`
	Description   string                `json:"description" validate:"max=2000"`
	Image         string                `json:"image" validate:"omitempty,url"`
	Locations     []string              `json:"locations" validate:"required,min=1,dive,location"`
	TokenPackages []TokenPackageRequest `json:"tokenPackages" validate:"required,min=1,dive"`
	Status        string                `json:"status" validate:"omitempty,oneof=active inactive"`
}

// ListResponse is one page of games.
type ListResponse struct {
	Items  []Game               `json:"items"`
	Window listview.PageWindow  `json:"window"`
	Filter listview.FilterState `json:"filter"`
}

// Card is a game as the storefront lists it.
type Card struct {
	Game
	FromPrice *decimal.Decimal `json:"fromPrice,omitempty"`
}

func CardFrom(g Game) Card {
	c := Card{Game: g}
	if p, ok := g.CheapestPackage(); ok {
		c.FromPrice = &p.Price
	}
	return c
}
