package payment

import (
	"fmt"
	"time"
)

// Bucket is the coarse UI state of a payment.
type Bucket string

const (
	BucketPending        Bucket = "pending"
	BucketSuccess        Bucket = "success"
	BucketFailure        Bucket = "failure"
	BucketActionRequired Bucket = "action_required"
)

// Outcome is what the storefront renders for a payment.
type Outcome struct {
	Bucket Bucket `json:"bucket"`
	Status Status `json:"status"`

	Message string `json:"message"`
	Icon    string `json:"icon"`

	ShowSpinner  bool `json:"showSpinner"`
	OfferRefetch bool `json:"offerRefetch"`
	OfferRetry   bool `json:"offerRetry"`

	// ScheduledFor is set on success when crediting is deferred.
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
	Banner       string     `json:"banner,omitempty"`
}

const GenericDeclineMessage = "Your card was declined. Please try a different card."

var declineMessages = map[string]string{
	"insufficient_funds":              "Your card has insufficient funds. Please try a different card.",
	"expired_card":                    "This card has expired. Please use a different card.",
	"incorrect_cvc":                   "The card's security code is incorrect. Please check it and try again.",
	"invalid_cvc":                     "The card's security code is invalid. Please check it and try again.",
	"incorrect_number":                "The card number is incorrect. Please check it and try again.",
	"invalid_number":                  "The card number is invalid. Please check it and try again.",
	"invalid_expiry_month":            "The card's expiration month is invalid. Please check it and try again.",
	"invalid_expiry_year":             "The card's expiration year is invalid. Please check it and try again.",
	"incorrect_zip":                   "The card's postal code is incorrect. Please check it and try again.",
	"processing_error":                "An error occurred while processing your card. Please try again.",
	"try_again_later":                 "Your card could not be charged right now. Please try again later.",
	"card_velocity_exceeded":          "Your card has exceeded its spending limit. Please try a different card.",
	"withdrawal_count_limit_exceeded": "Your card has exceeded its spending limit. Please try a different card.",
	"card_not_supported":              "This card does not support this type of purchase. Please try a different card.",
	"currency_not_supported":          "This card does not support payments in this currency. Please try a different card.",
	"authentication_required":         "Your bank requires authentication for this payment. Please try again and complete the verification.",
	"approve_with_id":                 "The payment could not be authorized. Please try again.",
	"call_issuer":                     "Your card was declined. Please contact your card issuer or try a different card.",
	"duplicate_transaction":           "An identical payment was submitted moments ago. Please check your purchase history before trying again.",

	// Reasons that must not be disclosed to the cardholder.
	"card_declined":           GenericDeclineMessage,
	"generic_decline":         GenericDeclineMessage,
	"do_not_honor":            GenericDeclineMessage,
	"fraudulent":              GenericDeclineMessage,
	"lost_card":               GenericDeclineMessage,
	"stolen_card":             GenericDeclineMessage,
	"pickup_card":             GenericDeclineMessage,
	"restricted_card":         GenericDeclineMessage,
	"security_violation":      GenericDeclineMessage,
	"merchant_blacklist":      GenericDeclineMessage,
	"transaction_not_allowed": GenericDeclineMessage,
}

// DeclineMessage maps a processor decline code to a user-facing message.
// It is total: unknown and empty codes get the generic message.
func DeclineMessage(code string) string {
	if msg, ok := declineMessages[code]; ok {
		return msg
	}
	return GenericDeclineMessage
}

// BucketOf classifies a status. Unknown statuses are treated as pending so
// the user is offered a refetch instead of a false failure.
func BucketOf(p Payment) Bucket {
	switch p.Status.Normalize() {
	case StatusSucceeded, StatusCompleted:
		return BucketSuccess
	case StatusRequiresAction:
		return BucketActionRequired
	case StatusRequiresPaymentMethod:
		if p.NextAction != "" {
			return BucketActionRequired
		}
		return BucketFailure
	case StatusFailed, StatusCanceled, StatusExpired, StatusIncomplete, StatusRefunded, StatusBlocked:
		return BucketFailure
	default:
		return BucketPending
	}
}

// Interpret turns a payment into the outcome shown to the customer.
func Interpret(p Payment) Outcome {
	out := Outcome{Bucket: BucketOf(p), Status: p.Status}

	switch out.Bucket {
	case BucketSuccess:
		out.Icon = "check-circle"
		out.Message = successMessage(p)
		if p.TokensScheduledFor != nil {
			at := *p.TokensScheduledFor
			out.ScheduledFor = &at
			out.Banner = fmt.Sprintf("Your tokens will be credited on %s.", at.Format("Jan 2, 2006 at 3:04 PM"))
		}

	case BucketActionRequired:
		out.Icon = "shield"
		out.Message = "Your bank requires additional verification. Please complete it and submit the payment again."

	case BucketFailure:
		out.Icon = "x-circle"
		out.Message = failureMessage(p)
		out.OfferRetry = p.Status.Normalize() != StatusRefunded

	default:
		out.Icon = "clock"
		out.Message = "Your payment is being processed. This can take a moment."
		out.ShowSpinner = true
		out.OfferRefetch = true
	}
	return out
}

func successMessage(p Payment) string {
	n := p.TokenPackage.Tokens
	if p.TokensScheduledFor != nil && !p.TokensAdded {
		return fmt.Sprintf("Payment successful! Your %d tokens are scheduled to be added to your account.", n)
	}
	if n > 0 {
		return fmt.Sprintf("Payment successful! %d tokens have been added to your account.", n)
	}
	return "Payment successful!"
}

func failureMessage(p Payment) string {
	if p.DeclineCode != "" {
		return DeclineMessage(p.DeclineCode)
	}
	switch p.Status.Normalize() {
	case StatusCanceled:
		return "The payment was canceled. You have not been charged."
	case StatusExpired:
		return "The payment session expired. Please start a new purchase."
	case StatusRefunded:
		return "This payment was refunded."
	case StatusBlocked:
		return "This payment was blocked. Please contact support."
	}
	return DeclineMessage("")
}
