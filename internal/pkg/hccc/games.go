package hccc

import (
	"context"
	"net/http"
	"net/url"
)

// ListGames calls GET /games. Public.
func (c *Client) ListGames(ctx context.Context, query url.Values) (*Page[Game], error) {
	var page Page[Game]
	err := c.do(ctx, call{method: http.MethodGet, path: "/games", route: "/games", query: query}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetGame calls GET /games/:id. Public.
func (c *Client) GetGame(ctx context.Context, id string) (*Game, error) {
	var game Game
	err := c.do(ctx, call{method: http.MethodGet, path: "/games/" + escape(id), route: "/games/:id"}, &game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) CreateGame(ctx context.Context, in GameInput) (*Game, error) {
	var game Game
	err := c.do(ctx, call{method: http.MethodPost, path: "/games", route: "/games", body: in, auth: true}, &game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) UpdateGame(ctx context.Context, id string, in GameInput) (*Game, error) {
	var game Game
	err := c.do(ctx, call{method: http.MethodPut, path: "/games/" + escape(id), route: "/games/:id", body: in, auth: true}, &game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) DeleteGame(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/games/" + escape(id), route: "/games/:id", auth: true}, nil)
}
