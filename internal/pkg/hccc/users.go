package hccc

import (
	"context"
	"net/http"
	"net/url"
)

// Me calls GET /auth/me for the bound session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me", route: "/auth/me", auth: true}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListUsers(ctx context.Context, query url.Values) (*Page[User], error) {
	var page Page[User]
	err := c.do(ctx, call{method: http.MethodGet, path: "/auth/users", route: "/auth/users", query: query, auth: true}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, in UserUpdate) (*User, error) {
	var user User
	err := c.do(ctx, call{method: http.MethodPut, path: "/auth/" + escape(id), route: "/auth/:id", body: in, auth: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/auth/" + escape(id), route: "/auth/:id", auth: true}, nil)
}

// BlockUser calls PATCH /auth/:id/block; the server toggles or sets the
// flag from the body.
func (c *Client) BlockUser(ctx context.Context, id string, blocked bool) (*User, error) {
	var user User
	body := struct {
		IsBlocked bool `json:"isBlocked"`
	}{blocked}
	err := c.do(ctx, call{method: http.MethodPatch, path: "/auth/" + escape(id) + "/block", route: "/auth/:id/block", body: body, auth: true}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
