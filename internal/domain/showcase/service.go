package showcase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

// Client is the part of the HCCC client the showcase uses.
type Client interface {
	ListEvents(ctx context.Context, query url.Values) (*hccc.Page[hccc.Event], error)
	CreateEvent(ctx context.Context, in hccc.EventInput) (*hccc.Event, error)
	UpdateEvent(ctx context.Context, id string, in hccc.EventInput) (*hccc.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	SetEventVisibility(ctx context.Context, id string, visible bool) (*hccc.Event, error)

	ListWinners(ctx context.Context, query url.Values) (*hccc.Page[hccc.Winner], error)
	CreateWinner(ctx context.Context, in hccc.WinnerInput) (*hccc.Winner, error)
	UpdateWinner(ctx context.Context, id string, in hccc.WinnerInput) (*hccc.Winner, error)
	DeleteWinner(ctx context.Context, id string) error
	SetWinnerVisibility(ctx context.Context, id string, visible bool) (*hccc.Winner, error)
}

// Section is one showcase collection. R is the upstream record, T the
// console item and I the write payload.
type Section[R, T, I any] struct {
	Name   string
	Config listview.Config[T]

	convert    func(R) T
	visible    func(T) bool
	normalize  func(*I)
	list       func(Client, context.Context, url.Values) (*hccc.Page[R], error)
	create     func(Client, context.Context, I) (*R, error)
	update     func(Client, context.Context, string, I) (*R, error)
	remove     func(Client, context.Context, string) error
	visibility func(Client, context.Context, string, bool) (*R, error)
}

var Events = &Section[hccc.Event, Event, hccc.EventInput]{
	Name:    "event",
	Config:  EventList,
	convert: EventFromHCCC,
	visible: func(e Event) bool { return e.IsVisible },
	normalize: func(in *hccc.EventInput) {
		in.Title = strings.TrimSpace(in.Title)
		in.Description = strings.TrimSpace(in.Description)
		in.Location = strings.ToLower(strings.TrimSpace(in.Location))
	},
	list:       Client.ListEvents,
	create:     Client.CreateEvent,
	update:     Client.UpdateEvent,
	remove:     Client.DeleteEvent,
	visibility: Client.SetEventVisibility,
}

var Winners = &Section[hccc.Winner, Winner, hccc.WinnerInput]{
	Name:    "winner",
	Config:  WinnerList,
	convert: WinnerFromHCCC,
	visible: func(w Winner) bool { return w.IsVisible },
	normalize: func(in *hccc.WinnerInput) {
		in.Name = strings.TrimSpace(in.Name)
		in.GameName = strings.TrimSpace(in.GameName)
		in.Prize = strings.TrimSpace(in.Prize)
		in.Location = strings.ToLower(strings.TrimSpace(in.Location))
	},
	list:       Client.ListWinners,
	create:     Client.CreateWinner,
	update:     Client.UpdateWinner,
	remove:     Client.DeleteWinner,
	visibility: Client.SetWinnerVisibility,
}

func (s *Section[R, T, I]) convertAll(list []R) []T {
	out := make([]T, 0, len(list))
	for _, r := range list {
		out = append(out, s.convert(r))
	}
	return out
}

// List returns one page, hidden items included.
func (s *Section[R, T, I]) List(ctx context.Context, c Client, state listview.State) ([]T, listview.Pagination, error) {
	return s.fetch(ctx, c, s.Config.Query(state), state)
}

// Visible returns one page of the items shown on the storefront.
func (s *Section[R, T, I]) Visible(ctx context.Context, c Client, state listview.State) ([]T, listview.Pagination, error) {
	q := s.Config.Query(state)
	q.Set("isVisible", "true")
	items, p, err := s.fetch(ctx, c, q, state)
	if err != nil {
		return nil, p, err
	}
	shown := items[:0]
	for _, item := range items {
		if s.visible(item) {
			shown = append(shown, item)
		}
	}
	return shown, p, nil
}

func (s *Section[R, T, I]) fetch(ctx context.Context, c Client, q url.Values, state listview.State) ([]T, listview.Pagination, error) {
	page, err := s.list(c, ctx, q)
	if err != nil {
		return nil, listview.Pagination{}, fmt.Errorf("list %ss: %w", s.Name, err)
	}
	p := page.Pagination
	return s.convertAll(page.Items), state.Page.Reported(p.Page, p.Limit, p.Total), nil
}

func (s *Section[R, T, I]) Create(ctx context.Context, c Client, in I) (*T, error) {
	raw, err := s.create(c, ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.Name, err)
	}
	item := s.convert(*raw)
	return &item, nil
}

func (s *Section[R, T, I]) Update(ctx context.Context, c Client, id string, in I) (*T, error) {
	raw, err := s.update(c, ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", s.Name, id, err)
	}
	item := s.convert(*raw)
	return &item, nil
}

func (s *Section[R, T, I]) Delete(ctx context.Context, c Client, id string) error {
	if err := s.remove(c, ctx, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", s.Name, id, err)
	}
	return nil
}

// SetVisible shows or hides the item on the storefront.
func (s *Section[R, T, I]) SetVisible(ctx context.Context, c Client, id string, visible bool) (*T, error) {
	raw, err := s.visibility(c, ctx, id, visible)
	if err != nil {
		return nil, fmt.Errorf("set %s %s visibility: %w", s.Name, id, err)
	}
	item := s.convert(*raw)
	return &item, nil
}
