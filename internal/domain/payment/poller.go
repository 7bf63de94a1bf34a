package payment

import (
	"context"
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/rs/zerolog/log"

	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/metrics"
)

// PollerConfig bounds automatic status polling.
type PollerConfig struct {
	MaxAttempts int
	Delay       time.Duration
	MaxDelay    time.Duration
}

// Poller refetches a pending payment with exponential backoff until it
// leaves the pending bucket or the attempts run out. A payment that needs
// customer action is never polled further.
type Poller struct {
	executor failsafe.Executor[*Payment]
	metrics  *metrics.Metrics
}

func NewPoller(cfg PollerConfig, m *metrics.Metrics) *Poller {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 2 * time.Second
	}
	if cfg.MaxDelay < cfg.Delay {
		cfg.MaxDelay = cfg.Delay
	}

	policy := retrypolicy.NewBuilder[*Payment]().
		HandleIf(func(p *Payment, err error) bool {
			if err != nil {
				return retryable(err)
			}
			return p != nil && BucketOf(*p) == BucketPending
		}).
		WithBackoff(cfg.Delay, cfg.MaxDelay).
		WithMaxAttempts(cfg.MaxAttempts).
		ReturnLastFailure().
		Build()

	return &Poller{executor: failsafe.With[*Payment](policy), metrics: m}
}

// Poll calls fetch until the payment settles and returns the last payment
// seen with its interpretation. A payment still pending after the last
// attempt is returned without error; the customer can refetch manually.
func (p *Poller) Poll(ctx context.Context, fetch func(ctx context.Context) (*Payment, error)) (*Payment, Outcome, error) {
	attempts := 0
	last, err := p.executor.WithContext(ctx).Get(func() (*Payment, error) {
		attempts++
		pay, err := fetch(ctx)
		if err != nil {
			p.metrics.IncPaymentPoll("error")
			return nil, err
		}
		p.metrics.IncPaymentPoll(string(BucketOf(*pay)))
		return pay, nil
	})
	if err != nil {
		return nil, Outcome{}, err
	}
	if last == nil {
		return nil, Outcome{}, errors.New("payment poll returned no payment")
	}

	outcome := Interpret(*last)
	log.Debug().
		Str("payment_intent_id", last.PaymentIntentID).
		Str("status", string(last.Status)).
		Str("bucket", string(outcome.Bucket)).
		Int("attempts", attempts).
		Msg("Payment poll finished")
	return last, outcome, nil
}

// retryable reports whether a refetch error is worth another attempt.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *hccc.TransportError
	if errors.As(err, &te) {
		return true
	}
	return hccc.StatusOf(err) >= 500
}
