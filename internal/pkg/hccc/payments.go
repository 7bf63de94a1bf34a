package hccc

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) CreatePaymentIntent(ctx context.Context, in PaymentIntentRequest) (*PaymentIntent, error) {
	var intent PaymentIntent
	err := c.do(ctx, call{method: http.MethodPost, path: "/payments/create-payment-intent", route: "/payments/create-payment-intent", body: in, auth: true}, &intent)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// ConfirmPayment calls POST /payments/confirm-payment. It is also the
// refetch path for "check status": the server answers with the current
// state of the payment.
func (c *Client) ConfirmPayment(ctx context.Context, intentID string) (*Payment, error) {
	var payment Payment
	err := c.do(ctx, call{method: http.MethodPost, path: "/payments/confirm-payment", route: "/payments/confirm-payment", body: ConfirmPayment{PaymentIntentID: intentID}, auth: true}, &payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// MyPayments calls GET /payments/my, the customer's purchase history.
func (c *Client) MyPayments(ctx context.Context, query url.Values) (*Page[Payment], error) {
	var page Page[Payment]
	err := c.do(ctx, call{method: http.MethodGet, path: "/payments/my", route: "/payments/my", query: query, auth: true}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListPayments(ctx context.Context, query url.Values) (*Page[Payment], error) {
	var page Page[Payment]
	err := c.do(ctx, call{method: http.MethodGet, path: "/payments/admin/all", route: "/payments/admin/all", query: query, auth: true}, &page)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) PaymentStats(ctx context.Context, query url.Values) (*PaymentStats, error) {
	var stats PaymentStats
	err := c.do(ctx, call{method: http.MethodGet, path: "/payments/admin/stats", route: "/payments/admin/stats", query: query, auth: true}, &stats)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
