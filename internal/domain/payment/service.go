package payment

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
)

// Client is the part of the session-bound HCCC client payments use.
type Client interface {
	CreatePaymentIntent(ctx context.Context, in hccc.PaymentIntentRequest) (*hccc.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, intentID string) (*hccc.Payment, error)
	MyPayments(ctx context.Context, query url.Values) (*hccc.Page[hccc.Payment], error)
	ListPayments(ctx context.Context, query url.Values) (*hccc.Page[hccc.Payment], error)
	PaymentStats(ctx context.Context, query url.Values) (*hccc.PaymentStats, error)
}

// Service implements checkout and the admin payment views.
type Service struct {
	poller *Poller
}

func NewService(poller *Poller) *Service {
	return &Service{poller: poller}
}

// Checkout creates a payment intent for a token package.
func (s *Service) Checkout(ctx context.Context, c Client, req *CheckoutRequest) (*Intent, error) {
	intent, err := c.CreatePaymentIntent(ctx, hccc.PaymentIntentRequest{
		GameID:   req.GameID,
		Location: req.Location,
		TokenPackage: hccc.TokenPackage{
			Tokens: req.Tokens,
			Price:  req.Price,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &Intent{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.PaymentIntentID,
		OrderID:         intent.OrderID,
		Status:          Status(intent.Status),
	}, nil
}

// Refetch asks the server for the current state of the payment once. It
// is the manual "check status" action.
func (s *Service) Refetch(ctx context.Context, c Client, intentID string) (*Result, error) {
	p, err := s.fetch(ctx, c, intentID)
	if err != nil {
		return nil, err
	}
	return &Result{Payment: *p, Outcome: Interpret(*p)}, nil
}

// Confirm refetches the payment and, when wait is set, keeps polling
// while it is pending.
func (s *Service) Confirm(ctx context.Context, c Client, intentID string, wait bool) (*Result, error) {
	if !wait || s.poller == nil {
		return s.Refetch(ctx, c, intentID)
	}
	p, outcome, err := s.poller.Poll(ctx, func(ctx context.Context) (*Payment, error) {
		return s.fetch(ctx, c, intentID)
	})
	if err != nil {
		return nil, err
	}
	return &Result{Payment: *p, Outcome: outcome}, nil
}

func (s *Service) fetch(ctx context.Context, c Client, intentID string) (*Payment, error) {
	raw, err := c.ConfirmPayment(ctx, intentID)
	if err != nil {
		return nil, fmt.Errorf("confirm payment %s: %w", intentID, err)
	}
	p := FromHCCC(*raw)
	return &p, nil
}

// History returns one page of the customer's own purchases.
func (s *Service) History(ctx context.Context, c Client, state listview.State) ([]Result, listview.Pagination, error) {
	page, err := c.MyPayments(ctx, List.Query(state))
	if err != nil {
		return nil, listview.Pagination{}, fmt.Errorf("list my payments: %w", err)
	}
	items := make([]Result, 0, len(page.Items))
	for _, p := range FromHCCCList(page.Items) {
		items = append(items, Result{Payment: p, Outcome: Interpret(p)})
	}
	return items, state.Page.Reported(page.Pagination.Page, page.Pagination.Limit, page.Pagination.Total), nil
}

// List fetches one page of the admin payments table. The signature is a
// listview.Fetcher once bound to a client.
func (s *Service) List(ctx context.Context, c Client, query url.Values) (listview.PageResult[Payment], error) {
	page, err := c.ListPayments(ctx, query)
	if err != nil {
		return listview.PageResult[Payment]{}, fmt.Errorf("list payments: %w", err)
	}
	return listview.PageResult[Payment]{Items: FromHCCCList(page.Items), Total: page.Pagination.Total}, nil
}

// Fetcher binds List to c.
func (s *Service) Fetcher(c Client) listview.Fetcher[Payment] {
	return func(ctx context.Context, query url.Values) (listview.PageResult[Payment], error) {
		return s.List(ctx, c, query)
	}
}

func (s *Service) Stats(ctx context.Context, c Client, query url.Values) (*Stats, error) {
	raw, err := c.PaymentStats(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("payment stats: %w", err)
	}
	stats := statsFromHCCC(*raw)
	return &stats, nil
}

// Overview loads the stats and the first page of the table concurrently.
func (s *Service) Overview(ctx context.Context, c Client, state listview.State) (*Overview, error) {
	g, ctx := errgroup.WithContext(ctx)

	var (
		stats *Stats
		page  listview.PageResult[Payment]
	)
	g.Go(func() error {
		var err error
		stats, err = s.Stats(ctx, c, statsQuery(state))
		return err
	})
	g.Go(func() error {
		var err error
		page, err = s.List(ctx, c, List.Query(state))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := state.Page
	p.Total = page.Total
	p = p.Clamp()
	return &Overview{
		Stats:  *stats,
		Items:  page.Items,
		Window: listview.WindowFor(p),
		Page:   p,
	}, nil
}

// statsQuery keeps only the filters the stats endpoint understands.
func statsQuery(state listview.State) url.Values {
	q := url.Values{}
	for _, key := range []string{"status", "location", "game"} {
		if v := state.Filter.Filters[key]; v != "" {
			q.Set(key, v)
		}
	}
	return q
}
