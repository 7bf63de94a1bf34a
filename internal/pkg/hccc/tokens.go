package hccc

import (
	"context"
	"net/http"
	"net/url"
)

// MyTokens calls GET /auth/me/tokens.
func (c *Client) MyTokens(ctx context.Context) ([]TokenBalance, error) {
	var balances []TokenBalance
	if err := c.do(ctx, call{method: http.MethodGet, path: "/auth/me/tokens", route: "/auth/me/tokens", auth: true}, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

// UserTokens calls GET /auth/:id/tokens. query may carry list filters.
func (c *Client) UserTokens(ctx context.Context, userID string, query url.Values) ([]TokenBalance, error) {
	var balances []TokenBalance
	err := c.do(ctx, call{method: http.MethodGet, path: "/auth/" + escape(userID) + "/tokens", route: "/auth/:id/tokens", query: query, auth: true}, &balances)
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// AdjustTokens calls POST /auth/:id/tokens/adjust and returns the
// authoritative balance after the server applied the delta.
func (c *Client) AdjustTokens(ctx context.Context, userID string, in AdjustTokens) (*TokenBalance, error) {
	var balance TokenBalance
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/" + escape(userID) + "/tokens/adjust", route: "/auth/:id/tokens/adjust", body: in, auth: true}, &balance)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}
