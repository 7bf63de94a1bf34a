package audit

import (
	"time"

	"github.com/hccc/gameroom-console/internal/domain/listview"
)

// listQuery is the query of GET /api/admin/audit/adjustments.
type listQuery struct {
	OperatorID string     `json:"operatorId"`
	UserID     string     `json:"userId"`
	GameID     string     `json:"gameId"`
	Location   string     `json:"location" validate:"omitempty,location"`
	Outcome    string     `json:"outcome" validate:"omitempty,oneof=confirmed failed superseded"`
	From       *time.Time `json:"from"`
	To         *time.Time `json:"to"`
	Page       int        `json:"page" validate:"gte=0"`
	Limit      int        `json:"limit" validate:"gte=0,lte=100"`
}

func (q listQuery) filter() Filter {
	return Filter{
		OperatorID: q.OperatorID,
		UserID:     q.UserID,
		GameID:     q.GameID,
		Location:   q.Location,
		Outcome:    q.Outcome,
		From:       q.From,
		To:         q.To,
	}
}

// ListResponse is one page of the audit log.
type ListResponse struct {
	Items  []Adjustment        `json:"items"`
	Window listview.PageWindow `json:"window"`
}
