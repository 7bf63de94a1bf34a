package payment

import (
	"github.com/shopspring/decimal"

	"github.com/hccc/gameroom-console/internal/domain/listview"
)

// CheckoutRequest is the body of POST /api/v1/checkout.
type CheckoutRequest struct {
	GameID   string          `json:"gameId" validate:"required"`
	Location string          `json:"location" validate:"required,location"`
	Tokens   int             `json:"tokens" validate:"required,gt=0"`
	Price    decimal.Decimal `json:"price"`
}

// ConfirmRequest is the body of POST /api/v1/checkout/confirm. Wait keeps
// polling while the payment is pending.
type ConfirmRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
	Wait            bool   `json:"wait"`
}

type Intent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId,omitempty"`
	Status          Status `json:"status,omitempty"`
}

// Result is a payment with its interpretation.
type Result struct {
	Payment Payment `json:"payment"`
	Outcome Outcome `json:"outcome"`
}

// Overview is the admin payments dashboard.
type Overview struct {
	Stats  Stats               `json:"stats"`
	Items  []Payment           `json:"items"`
	Window listview.PageWindow `json:"window"`
	Page   listview.Pagination `json:"pagination"`
}

// ListResponse is one page of the admin payments table.
type ListResponse struct {
	Items  []Payment            `json:"items"`
	Window listview.PageWindow  `json:"window"`
	Filter listview.FilterState `json:"filter"`
}

// snapshotFrame is what the live payments view receives after each fetch.
type snapshotFrame struct {
	State  listview.State      `json:"state"`
	Items  []Payment           `json:"items"`
	Window listview.PageWindow `json:"window"`
	Error  string              `json:"error,omitempty"`
}

// liveCommand is a client frame of the live payments view.
type liveCommand struct {
	Value string `json:"value"`
	Key   string `json:"key"`
	Min   *int   `json:"min"`
	Max   *int   `json:"max"`
	By    string `json:"by"`
	Order string `json:"order"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}
