package hccc

import (
	"context"
	"net/http"
	"net/url"
)

// Events and winners share the same admin CRUD shape on the HCCC API.

func (c *Client) ListEvents(ctx context.Context, query url.Values) (*Page[Event], error) {
	var page Page[Event]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/events", route: "/events", query: query}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	var event Event
	if err := c.do(ctx, call{method: http.MethodPost, path: "/events", route: "/events", body: in, auth: true}, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, in EventInput) (*Event, error) {
	var event Event
	if err := c.do(ctx, call{method: http.MethodPut, path: "/events/" + escape(id), route: "/events/:id", body: in, auth: true}, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/events/" + escape(id), route: "/events/:id", auth: true}, nil)
}

func (c *Client) SetEventVisibility(ctx context.Context, id string, visible bool) (*Event, error) {
	var event Event
	err := c.do(ctx, call{method: http.MethodPatch, path: "/events/" + escape(id) + "/visibility", route: "/events/:id/visibility", body: visibility{visible}, auth: true}, &event)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) ListWinners(ctx context.Context, query url.Values) (*Page[Winner], error) {
	var page Page[Winner]
	if err := c.do(ctx, call{method: http.MethodGet, path: "/winners", route: "/winners", query: query}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateWinner(ctx context.Context, in WinnerInput) (*Winner, error) {
	var winner Winner
	if err := c.do(ctx, call{method: http.MethodPost, path: "/winners", route: "/winners", body: in, auth: true}, &winner); err != nil {
		return nil, err
	}
	return &winner, nil
}

func (c *Client) UpdateWinner(ctx context.Context, id string, in WinnerInput) (*Winner, error) {
	var winner Winner
	if err := c.do(ctx, call{method: http.MethodPut, path: "/winners/" + escape(id), route: "/winners/:id", body: in, auth: true}, &winner); err != nil {
		return nil, err
	}
	return &winner, nil
}

func (c *Client) DeleteWinner(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/winners/" + escape(id), route: "/winners/:id", auth: true}, nil)
}

func (c *Client) SetWinnerVisibility(ctx context.Context, id string, visible bool) (*Winner, error) {
	var winner Winner
	err := c.do(ctx, call{method: http.MethodPatch, path: "/winners/" + escape(id) + "/visibility", route: "/winners/:id/visibility", body: visibility{visible}, auth: true}, &winner)
	if err != nil {
		return nil, err
	}
	return &winner, nil
}
