package users

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hccc/gameroom-console/internal/domain/listview"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/session"
)

// Client is the part of the HCCC client user management uses.
type Client interface {
	Me(ctx context.Context) (*hccc.User, error)
	ListUsers(ctx context.Context, query url.Values) (*hccc.Page[hccc.User], error)
	UpdateUser(ctx context.Context, id string, in hccc.UserUpdate) (*hccc.User, error)
	DeleteUser(ctx context.Context, id string) error
	BlockUser(ctx context.Context, id string, blocked bool) (*hccc.User, error)
}

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Me returns the account behind the session.
func (s *Service) Me(ctx context.Context, c Client) (*User, error) {
	raw, err := c.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("get me: %w", err)
	}
	u := FromHCCC(*raw)
	return &u, nil
}

func (s *Service) List(ctx context.Context, c Client, state listview.State) ([]User, listview.Pagination, error) {
	page, err := c.ListUsers(ctx, List.Query(state))
	if err != nil {
		return nil, listview.Pagination{}, fmt.Errorf("list users: %w", err)
	}
	p := page.Pagination
	return FromHCCCList(page.Items), state.Page.Reported(p.Page, p.Limit, p.Total), nil
}

// Update changes profile fields. An operator cannot change their own role.
func (s *Service) Update(ctx context.Context, c Client, op *session.Session, id string, req *UpdateRequest) (*User, error) {
	if req.Role != "" && op != nil && op.UserID == id && !strings.EqualFold(req.Role, op.Role) {
		return nil, ErrSelfDemote
	}
	raw, err := c.UpdateUser(ctx, id, hccc.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	u := FromHCCC(*raw)
	return &u, nil
}

func (s *Service) Delete(ctx context.Context, c Client, op *session.Session, id string) error {
	if op != nil && op.UserID == id {
		return ErrSelfDelete
	}
	if err := c.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

func (s *Service) SetBlocked(ctx context.Context, c Client, op *session.Session, id string, blocked bool) (*User, error) {
	if blocked && op != nil && op.UserID == id {
		return nil, ErrSelfBlock
	}
	raw, err := c.BlockUser(ctx, id, blocked)
	if err != nil {
		return nil, fmt.Errorf("block user %s: %w", id, err)
	}
	u := FromHCCC(*raw)
	return &u, nil
}
