package catalog

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/logger"
)

// Client is the part of the HCCC client the catalog uses.
type Client interface {
	ListGames(ctx context.Context, query url.Values) (*hccc.Page[hccc.Game], error)
	GetGame(ctx context.Context, id string) (*hccc.Game, error)
	CreateGame(ctx context.Context, in hccc.GameInput) (*hccc.Game, error)
	UpdateGame(ctx context.Context, id string, in hccc.GameInput) (*hccc.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// Service serves the storefront catalog and its admin CRUD.
type Service struct {
	public   Client
	onChange func(ctx context.Context) error
}

// NewService creates the catalog service. public is an unauthenticated
// client; onChange runs after every successful write and may be nil.
func NewService(public Client, onChange func(ctx context.Context) error) *Service {
	return &Service{public: public, onChange: onChange}
}

// Browse returns one page of active games for the storefront.
func (s *Service) Browse(ctx context.Context, state listview.State) ([]Card, listview.Pagination, error) {
	q := List.Query(state)
	q.Set("status", string(StatusActive))

	page, err := s.public.ListGames(ctx, q)
	if err != nil {
		return nil, listview.Pagination{}, fmt.Errorf("list games: %w", err)
	}
	cards := make([]Card, 0, len(page.Items))
	for _, g := range FromHCCCList(page.Items) {
		if g.IsActive() {
			cards = append(cards, CardFrom(g))
		}
	}
	return cards, state.Page.Reported(page.Pagination.Page, page.Pagination.Limit, page.Pagination.Total), nil
}

// Get returns one game through the public endpoint.
func (s *Service) Get(ctx context.Context, id string) (*Game, error) {
	raw, err := s.public.GetGame(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	g := FromHCCC(*raw)
	return &g, nil
}

// List returns one page of the admin games table, inactive games included.
func (s *Service) List(ctx context.Context, c Client, state listview.State) ([]Game, listview.Pagination, error) {
	page, err := c.ListGames(ctx, List.Query(state))
	if err != nil {
		return nil, listview.Pagination{}, fmt.Errorf("list games: %w", err)
	}
	return FromHCCCList(page.Items), state.Page.Reported(page.Pagination.Page, page.Pagination.Limit, page.Pagination.Total), nil
}

func (s *Service) Create(ctx context.Context, c Client, req *GameRequest) (*Game, error) {
	raw, err := c.CreateGame(ctx, req.input())
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	s.changed(ctx)
	g := FromHCCC(*raw)
	return &g, nil
}

func (s *Service) Update(ctx context.Context, c Client, id string, req *GameRequest) (*Game, error) {
	raw, err := c.UpdateGame(ctx, id, req.input())
	if err != nil {
		return nil, fmt.Errorf("update game %s: %w", id, err)
	}
	s.changed(ctx)
	g := FromHCCC(*raw)
	return &g, nil
}

func (s *Service) Delete(ctx context.Context, c Client, id string) error {
	if err := c.DeleteGame(ctx, id); err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	s.changed(ctx)
	return nil
}

func (s *Service) changed(ctx context.Context) {
	if s.onChange == nil {
		return
	}
	if err := s.onChange(ctx); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Catalog cache invalidation failed")
	}
}

// Normalize trims the request and checks what struct tags cannot: prices
// must be positive and package sizes unique. It returns field errors.
func (req *GameRequest) Normalize() map[string]string {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.Image = strings.TrimSpace(req.Image)

	locations := make([]string, 0, len(req.Locations))
	for _, l := range req.Locations {
		l = strings.ToLower(strings.TrimSpace(l))
		if !slices.Contains(locations, l) {
			locations = append(locations, l)
		}
	}
	req.Locations = locations

	errs := map[string]string{}
	seen := map[int]bool{}
	for i, p := range req.TokenPackages {
		field := "tokenPackages[" + strconv.Itoa(i) + "]"
		if !p.Price.IsPositive() {
			errs[field+".price"] = "Must be greater than 0"
		}
		if seen[p.Tokens] {
			errs[field+".tokens"] = "Duplicate package size"
		}
		seen[p.Tokens] = true
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (req *GameRequest) input() hccc.GameInput {
	in := hccc.GameInput{
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		Locations:     req.Locations,
		TokenPackages: make([]hccc.TokenPackage, 0, len(req.TokenPackages)),
		Status:        req.Status,
	}
	for _, p := range req.TokenPackages {
		in.TokenPackages = append(in.TokenPackages, hccc.TokenPackage{Tokens: p.Tokens, Price: p.Price})
	}
	slices.SortFunc(in.TokenPackages, func(a, b hccc.TokenPackage) int { return a.Tokens - b.Tokens })
	return in
}
