package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/domain/tokens"
)

// Store is the persistence the audit service needs.
type Store interface {
	Create(ctx context.Context, a *Adjustment) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]Adjustment, int, error)
}

// Service records adjustment outcomes and lists them. It implements
// tokens.AuditRecorder.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

var _ tokens.AuditRecorder = (*Service)(nil)

// RecordAdjustment stores one adjustment outcome.
func (s *Service) RecordAdjustment(ctx context.Context, rec tokens.AdjustmentRecord) error {
	a := &Adjustment{
		ID:         uuid.New(),
		OperatorID: rec.OperatorID,
		UserID:     rec.UserID,
		GameID:     rec.GameID,
		Location:   rec.Location,
		Delta:      rec.Delta,
		Requested:  rec.Requested,
		Confirmed:  rec.Confirmed,
		Outcome:    rec.Outcome,
		Error:      rec.Error,
		TookMS:     rec.Took.Milliseconds(),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return fmt.Errorf("insert token adjustment: %w", err)
	}
	return nil
}

// List returns one page of adjustments. The page is clamped to the last
// page when it runs past the end.
func (s *Service) List(ctx context.Context, filter Filter, p listview.Pagination) ([]Adjustment, listview.Pagination, error) {
	if p.Limit <= 0 {
		p.Limit = listview.DefaultLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}

	items, total, err := s.store.List(ctx, filter, p.Limit, p.Offset())
	if err != nil {
		return nil, p, fmt.Errorf("list token adjustments: %w", err)
	}
	p.Total = total
	clamped := p.Clamp()
	if clamped.Page != p.Page {
		items, _, err = s.store.List(ctx, filter, clamped.Limit, clamped.Offset())
		if err != nil {
			return nil, p, fmt.Errorf("list token adjustments: %w", err)
		}
	}
	return items, clamped, nil
}
