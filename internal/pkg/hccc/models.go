package hccc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pagination is the block every HCCC list endpoint returns.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

type TokenPackage struct {
	Tokens int             `json:"tokens" validate:"required,min=1"`
	Price  decimal.Decimal `json:"price" validate:"required"`
}

type Game struct {
	ID            string         `json:"_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Image         string         `json:"image,omitempty"`
	Locations     []string       `json:"locations"`
	TokenPackages []TokenPackage `json:"tokenPackages"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type GameInput struct {
	Name          string         `json:"name" validate:"required,min=2,max=120"`
	Description   string         `json:"description,omitempty" validate:"max=2000"`
	Image         string         `json:"image,omitempty" validate:"omitempty,url"`
	Locations     []string       `json:"locations" validate:"required,min=1,dive,location"`
	TokenPackages []TokenPackage `json:"tokenPackages" validate:"required,min=1,dive"`
	Status        string         `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsBlocked bool      `json:"isBlocked"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,role"`
}

type TokenBalance struct {
	UserID             string     `json:"userId"`
	GameID             string     `json:"gameId"`
	GameName           string     `json:"gameName,omitempty"`
	Location           string     `json:"location"`
	Tokens             int        `json:"tokens"`
	PendingTokens      int        `json:"pendingTokens"`
	TokensScheduledFor *time.Time `json:"tokensScheduledFor"`
	UpdatedAt          time.Time  `json:"updatedAt,omitempty"`
}

// AdjustTokens is the body of POST /auth/:id/tokens/adjust. The server
// mutates by Delta, never by absolute value.
type AdjustTokens struct {
	GameID   string `json:"gameId"`
	Location string `json:"location"`
	Delta    int    `json:"delta"`
}

type GameRef struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

type Payment struct {
	ID                 string          `json:"_id"`
	OrderID            string          `json:"orderId,omitempty"`
	PaymentIntentID    string          `json:"paymentIntentId,omitempty"`
	Provider           string          `json:"provider,omitempty"`
	Status             string          `json:"status"`
	DeclineCode        string          `json:"declineCode,omitempty"`
	NextAction         string          `json:"nextAction,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency,omitempty"`
	TokenPackage       TokenPackage    `json:"tokenPackage"`
	Game               GameRef         `json:"game"`
	Location           string          `json:"location"`
	User               *UserRef        `json:"user,omitempty"`
	TokensScheduledFor *time.Time      `json:"tokensScheduledFor"`
	TokensAdded        bool            `json:"tokensAdded"`
	CreatedAt          time.Time       `json:"createdAt"`
}

type PaymentIntentRequest struct {
	GameID       string       `json:"gameId" validate:"required"`
	Location     string       `json:"location" validate:"required,location"`
	TokenPackage TokenPackage `json:"tokenPackage" validate:"required"`
}

type PaymentIntent struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId,omitempty"`
	Status          string `json:"status,omitempty"`
}

type ConfirmPayment struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
}

type PaymentStats struct {
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalPayments     int             `json:"totalPayments"`
	SucceededPayments int             `json:"succeededPayments"`
	FailedPayments    int             `json:"failedPayments"`
	PendingPayments   int             `json:"pendingPayments"`
	TokensSold        int             `json:"tokensSold"`
}

type Event struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Image       string    `json:"image,omitempty"`
	IsVisible   bool      `json:"isVisible"`
}

type EventInput struct {
	Title       string    `json:"title" validate:"required,min=2,max=160"`
	Description string    `json:"description,omitempty" validate:"max=4000"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required,location"`
	Image       string    `json:"image,omitempty" validate:"omitempty,url"`
	IsVisible   bool      `json:"isVisible"`
}

type Winner struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	GameName  string    `json:"game"`
	Prize     string    `json:"prize"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location,omitempty"`
	Image     string    `json:"image,omitempty"`
	IsVisible bool      `json:"isVisible"`
}

type WinnerInput struct {
	Name      string    `json:"name" validate:"required,min=2,max=120"`
	GameName  string    `json:"game" validate:"required"`
	Prize     string    `json:"prize" validate:"required,max=200"`
	Date      time.Time `json:"date" validate:"required"`
	Location  string    `json:"location,omitempty" validate:"omitempty,location"`
	Image     string    `json:"image,omitempty" validate:"omitempty,url"`
	IsVisible bool      `json:"isVisible"`
}

type visibility struct {
	IsVisible bool `json:"isVisible"`
}
