package tokens

import (
	"time"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

// Step is the stepper increment; decrement is disabled below it.
const Step = 5

// Key identifies one balance row.
type Key struct {
	UserID   string `json:"userId"`
	GameID   string `json:"gameId"`
	Location string `json:"location"`
}

func (k Key) String() string {
	return k.UserID + ":" + k.GameID + ":" + k.Location
}

// Balance is a confirmed token balance for (user, game, location).
type Balance struct {
	UserID             string     `json:"userId"`
	GameID             string     `json:"gameId"`
	GameName           string     `json:"gameName,omitempty"`
	Location           string     `json:"location"`
	Tokens             int        `json:"tokens"`
	PendingTokens      int        `json:"pendingTokens"`
	TokensScheduledFor *time.Time `json:"tokensScheduledFor,omitempty"`
}

func (b Balance) Key() Key {
	return Key{UserID: b.UserID, GameID: b.GameID, Location: b.Location}
}

// TotalWithPending is what the user will own once scheduled tokens land.
func (b Balance) TotalWithPending() int {
	return b.Tokens + b.PendingTokens
}

// FromHCCC converts the wire balance, flooring counts at zero.
func FromHCCC(tb hccc.TokenBalance) Balance {
	return Balance{
		UserID:             tb.UserID,
		GameID:             tb.GameID,
		GameName:           tb.GameName,
		Location:           tb.Location,
		Tokens:             max(0, tb.Tokens),
		PendingTokens:      max(0, tb.PendingTokens),
		TokensScheduledFor: tb.TokensScheduledFor,
	}
}

func FromHCCCList(list []hccc.TokenBalance) []Balance {
	out := make([]Balance, 0, len(list))
	for _, tb := range list {
		out = append(out, FromHCCC(tb))
	}
	return out
}

// Phase is the state of one key in the overlay.
type Phase string

const (
	PhaseConfirmed Phase = "confirmed"
	PhaseInFlight  Phase = "in_flight"
	PhaseFailed    Phase = "failed"
)

// View is one balance row as an operator sees it.
type View struct {
	Balance
	Key              string `json:"key"`
	Displayed        int    `json:"displayed"`
	TotalWithPending int    `json:"totalWithPending"`
	Phase            Phase  `json:"phase"`
	RequestID        uint64 `json:"requestId,omitempty"`
	Queued           *int   `json:"queued,omitempty"`
	Error            string `json:"error,omitempty"`
	CanDecrement     bool   `json:"canDecrement"`
}

// BalanceList is the admin tokens table. The upstream endpoint is not
// paginated, so the query is forwarded and the same rules re-applied
// locally over the full per-user set.
var BalanceList = listview.Config[Balance]{
	Name: "tokens",
	Search: []func(Balance) string{
		func(b Balance) string { return b.GameName },
		func(b Balance) string { return b.Location },
	},
	Filters: map[string]func(Balance) string{
		"location": func(b Balance) string { return b.Location },
		"game":     func(b Balance) string { return b.GameID },
	},
	Tokens: func(b Balance) int { return b.Tokens },
	Sorts: map[string]listview.SortField[Balance]{
		"game":          {Kind: listview.KindString, String: func(b Balance) string { return b.GameName }},
		"location":      {Kind: listview.KindString, String: func(b Balance) string { return b.Location }},
		"tokens":        {Kind: listview.KindNumber, Number: func(b Balance) float64 { return float64(b.Tokens) }},
		"pendingTokens": {Kind: listview.KindNumber, Number: func(b Balance) float64 { return float64(b.PendingTokens) }},
	},
	DefaultSort:  "game",
	DefaultOrder: listview.Asc,
	DefaultLimit: 25,
}
