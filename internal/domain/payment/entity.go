package payment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

// Status is the processor-level payment status as reported upstream.
type Status string

const (
	StatusCreated               Status = "created"
	StatusSaved                 Status = "saved"
	StatusApproved              Status = "approved"
	StatusPayerActionRequired   Status = "payer_action_required"
	StatusProcessing            Status = "processing"
	StatusPending               Status = "pending"
	StatusSucceeded             Status = "succeeded"
	StatusCompleted             Status = "completed"
	StatusFailed                Status = "failed"
	StatusCanceled              Status = "canceled"
	StatusExpired               Status = "expired"
	StatusIncomplete            Status = "incomplete"
	StatusRefunded              Status = "refunded"
	StatusBlocked               Status = "blocked"
	StatusRequiresPaymentMethod Status = "requires_payment_method"
	StatusRequiresAction        Status = "requires_action"
)

// Normalize lower-cases s; processors disagree on case (COMPLETED).
func (s Status) Normalize() Status {
	return Status(strings.ToLower(strings.TrimSpace(string(s))))
}

// IsTerminal reports whether no further transition is expected.
func (s Status) IsTerminal() bool {
	switch s.Normalize() {
	case StatusSucceeded, StatusCompleted, StatusFailed, StatusCanceled, StatusExpired, StatusRefunded:
		return true
	}
	return false
}

type TokenPackage struct {
	Tokens int             `json:"tokens"`
	Price  decimal.Decimal `json:"price"`
}

type GameRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Payment is one token-package purchase.
type Payment struct {
	ID                 string          `json:"id"`
	OrderID            string          `json:"orderId,omitempty"`
	PaymentIntentID    string          `json:"paymentIntentId,omitempty"`
	Provider           string          `json:"provider,omitempty"`
	Status             Status          `json:"status"`
	DeclineCode        string          `json:"declineCode,omitempty"`
	NextAction         string          `json:"nextAction,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency,omitempty"`
	TokenPackage       TokenPackage    `json:"tokenPackage"`
	Game               GameRef         `json:"game"`
	Location           string          `json:"location"`
	User               *UserRef        `json:"user,omitempty"`
	TokensScheduledFor *time.Time      `json:"tokensScheduledFor,omitempty"`
	TokensAdded        bool            `json:"tokensAdded"`
	CreatedAt          time.Time       `json:"createdAt"`
}

func FromHCCC(p hccc.Payment) Payment {
	out := Payment{
		ID:                 p.ID,
		OrderID:            p.OrderID,
		PaymentIntentID:    p.PaymentIntentID,
		Provider:           p.Provider,
		Status:             Status(p.Status),
		DeclineCode:        p.DeclineCode,
		NextAction:         p.NextAction,
		Amount:             p.Amount,
		Currency:           p.Currency,
		TokenPackage:       TokenPackage{Tokens: p.TokenPackage.Tokens, Price: p.TokenPackage.Price},
		Game:               GameRef{ID: p.Game.ID, Name: p.Game.Name},
		Location:           p.Location,
		TokensScheduledFor: p.TokensScheduledFor,
		TokensAdded:        p.TokensAdded,
		CreatedAt:          p.CreatedAt,
	}
	if p.User != nil {
		out.User = &UserRef{ID: p.User.ID, Name: p.User.Name, Email: p.User.Email}
	}
	return out
}

func FromHCCCList(list []hccc.Payment) []Payment {
	out := make([]Payment, 0, len(list))
	for _, p := range list {
		out = append(out, FromHCCC(p))
	}
	return out
}

// Stats are the admin dashboard totals.
type Stats struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalPayments     int             `json:"totalPayments"`
	SucceededPayments int             `json:"succeededPayments"`
	FailedPayments    int             `json:"failedPayments"`
	PendingPayments   int             `json:"pendingPayments"`
	TokensSold        int             `json:"tokensSold"`
	AverageOrder      decimal.Decimal `json:"averageOrder"`
}

func statsFromHCCC(s hccc.PaymentStats) Stats {
	out := Stats{
		TotalRevenue:      s.TotalRevenue,
		TotalPayments:     s.TotalPayments,
		SucceededPayments: s.SucceededPayments,
		FailedPayments:    s.FailedPayments,
		PendingPayments:   s.PendingPayments,
		TokensSold:        s.TokensSold,
		AverageOrder:      decimal.Zero,
	}
	if s.SucceededPayments > 0 {
		out.AverageOrder = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.SucceededPayments))).Round(2)
	}
	return out
}

// List is the admin payments table. It runs fully server-side: the
// extractors below only serve the CSV export and tests, the upstream API
// does the filtering.
var List = listview.Config[Payment]{
	Name: "payments",
	Search: []func(Payment) string{
		func(p Payment) string { return p.OrderID },
		func(p Payment) string { return p.PaymentIntentID },
		func(p Payment) string { return p.Game.Name },
		func(p Payment) string {
			if p.User == nil {
				return ""
			}
			return p.User.Email
		},
	},
	Filters: map[string]func(Payment) string{
		"status":   func(p Payment) string { return string(p.Status.Normalize()) },
		"location": func(p Payment) string { return p.Location },
		"game":     func(p Payment) string { return p.Game.ID },
	},
	Tokens: func(p Payment) int { return p.TokenPackage.Tokens },
	Sorts: map[string]listview.SortField[Payment]{
		"createdAt": {Kind: listview.KindTime, Time: func(p Payment) time.Time { return p.CreatedAt }},
		"amount":    {Kind: listview.KindNumber, Number: func(p Payment) float64 { return p.Amount.InexactFloat64() }},
		"status":    {Kind: listview.KindString, String: func(p Payment) string { return string(p.Status) }},
		"location":  {Kind: listview.KindString, String: func(p Payment) string { return p.Location }},
	},
	DefaultSort:  "createdAt",
	DefaultOrder: listview.Desc,
	DefaultLimit: 20,
}
