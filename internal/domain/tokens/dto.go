package tokens

import (
	"github.com/hccc/gameroom-console/internal/domain/listview"
)

// AdjustRequest is the body of POST /admin/users/{id}/tokens/adjust.
type AdjustRequest struct {
	GameID   string `json:"gameId" validate:"required"`
	Location string `json:"location" validate:"required,location"`
	Delta    int    `json:"delta" validate:"required,ne=0"`
}

// SetValueRequest is the body of PUT /admin/users/{id}/tokens/value.
type SetValueRequest struct {
	GameID   string `json:"gameId" validate:"required"`
	Location string `json:"location" validate:"required,location"`
	Tokens   *int   `json:"tokens" validate:"required,gte=0"`
}

// liveAdjust is the data of an "adjust" or "set" live frame.
type liveAdjust struct {
	UserID   string `json:"userId" validate:"required"`
	GameID   string `json:"gameId" validate:"required"`
	Location string `json:"location" validate:"required,location"`
	Delta    int    `json:"delta"`
	Tokens   *int   `json:"tokens" validate:"omitempty,gte=0"`
}

type liveLoad struct {
	UserID string `json:"userId" validate:"required"`
}

// ListResponse is one page of a user's balances as an operator sees them.
type ListResponse struct {
	Items       []View               `json:"items"`
	Window      listview.PageWindow  `json:"window"`
	Filter      listview.FilterState `json:"filter"`
	ServerTotal int                  `json:"serverTotal"`
}
