package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketOf(t *testing.T) {
	cases := map[Status]Bucket{
		"created":                 BucketPending,
		"saved":                   BucketPending,
		"approved":                BucketPending,
		"payer_action_required":   BucketPending,
		"processing":              BucketPending,
		"pending":                 BucketPending,
		"something_new":           BucketPending,
		"":                        BucketPending,
		"succeeded":               BucketSuccess,
		"COMPLETED":               BucketSuccess,
		"failed":                  BucketFailure,
		"canceled":                BucketFailure,
		"expired":                 BucketFailure,
		"incomplete":              BucketFailure,
		"refunded":                BucketFailure,
		"blocked":                 BucketFailure,
		"requires_payment_method": BucketFailure,
		"requires_action":         BucketActionRequired,
	}
	for status, want := range cases {
		assert.Equal(t, want, BucketOf(Payment{Status: status}), "status %q", status)
	}
}

func TestRequiresPaymentMethodWithNextActionWaitsForUser(t *testing.T) {
	out := Interpret(Payment{Status: StatusRequiresPaymentMethod, NextAction: "use_stripe_sdk"})
	assert.Equal(t, BucketActionRequired, out.Bucket)
	assert.False(t, out.OfferRetry)
	assert.False(t, out.OfferRefetch)
	assert.NotEmpty(t, out.Message)
}

func TestInsufficientFundsMessage(t *testing.T) {
	out := Interpret(Payment{Status: StatusRequiresPaymentMethod, DeclineCode: "insufficient_funds"})
	assert.Equal(t, BucketFailure, out.Bucket)
	assert.Equal(t, "Your card has insufficient funds. Please try a different card.", out.Message)
	assert.True(t, out.OfferRetry)
	assert.Equal(t, "x-circle", out.Icon)
}

func TestDeclineMessageIsTotal(t *testing.T) {
	for _, code := range []string{"", "insufficient_funds", "expired_card", "lost_card", "made_up_code", "INSUFFICIENT_FUNDS", "  "} {
		assert.NotEmpty(t, DeclineMessage(code), "code %q", code)
	}
	for code := range declineMessages {
		assert.NotEmpty(t, DeclineMessage(code))
	}
	assert.Equal(t, GenericDeclineMessage, DeclineMessage("made_up_code"))
	assert.Equal(t, GenericDeclineMessage, DeclineMessage("stolen_card"), "sensitive reasons are not disclosed")
}

func TestFailureWithoutDeclineCode(t *testing.T) {
	assert.Equal(t, GenericDeclineMessage, Interpret(Payment{Status: StatusFailed}).Message)
	assert.Contains(t, Interpret(Payment{Status: StatusCanceled}).Message, "canceled")

	refunded := Interpret(Payment{Status: StatusRefunded})
	assert.Equal(t, BucketFailure, refunded.Bucket)
	assert.False(t, refunded.OfferRetry)
}

func TestPendingOffersRefetch(t *testing.T) {
	out := Interpret(Payment{Status: StatusProcessing})
	assert.True(t, out.ShowSpinner)
	assert.True(t, out.OfferRefetch)
	assert.False(t, out.OfferRetry)
	assert.Equal(t, "clock", out.Icon)
}

func TestSuccessWithScheduledCrediting(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	out := Interpret(Payment{
		Status:             StatusSucceeded,
		TokenPackage:       TokenPackage{Tokens: 50},
		TokensScheduledFor: &at,
	})
	assert.Equal(t, BucketSuccess, out.Bucket)
	require.NotNil(t, out.ScheduledFor)
	assert.True(t, out.ScheduledFor.Equal(at))
	assert.Equal(t, "Your tokens will be credited on Mar 14, 2026 at 9:00 AM.", out.Banner)
	assert.Contains(t, out.Message, "scheduled")

	immediate := Interpret(Payment{Status: "COMPLETED", TokenPackage: TokenPackage{Tokens: 50}, TokensAdded: true})
	assert.Nil(t, immediate.ScheduledFor)
	assert.Empty(t, immediate.Banner)
	assert.Equal(t, "Payment successful! 50 tokens have been added to your account.", immediate.Message)
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, Status("COMPLETED").IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.False(t, StatusRequiresAction.IsTerminal())
}
