// Package audit keeps a Postgres log of the token adjustments operators
// issue from the console.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Adjustment is one issued adjustment request and how it ended.
type Adjustment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	OperatorID string    `db:"operator_id" json:"operatorId"`
	UserID     string    `db:"user_id" json:"userId"`
	GameID     string    `db:"game_id" json:"gameId"`
	Location   string    `db:"location" json:"location"`
	Delta      int       `db:"delta" json:"delta"`
	Requested  int       `db:"requested" json:"requested"`
	Confirmed  *int      `db:"confirmed" json:"confirmed"`
	Outcome    string    `db:"outcome" json:"outcome"`
	Error      string    `db:"error" json:"error,omitempty"`
	TookMS     int64     `db:"took_ms" json:"tookMs"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Filter narrows List. Zero fields are ignored.
type Filter struct {
	OperatorID string
	UserID     string
	GameID     string
	Location   string
	Outcome    string
	From       *time.Time
	To         *time.Time
}
