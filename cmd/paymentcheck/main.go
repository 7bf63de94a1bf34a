// Command paymentcheck refetches a payment from the HCCC API and prints
// what the storefront would show for it.
//
//	paymentcheck --wait pi_123
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hccc/gameroom-console/internal/config"
	"github.com/hccc/gameroom-console/internal/domain/payment"
	"github.com/hccc/gameroom-console/internal/pkg/hccc"
	"github.com/hccc/gameroom-console/internal/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		token   string
		wait    bool
		asJSON  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "paymentcheck PAYMENT_INTENT_ID",
		Short: "Refetch a payment and print its interpretation",
		Long: `Asks the HCCC API for the current state of a payment and prints the
bucket, message and banner the storefront would render.

The bearer token defaults to $HCCC_TOKEN and must belong to the paying
customer or an admin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("a bearer token is required (--token or HCCC_TOKEN)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			api := hccc.NewClient(hccc.Options{
				BaseURL:   cfg.HCCCBaseURL,
				Timeout:   cfg.HCCCTimeout,
				UserAgent: cfg.HCCCUserAgent,
				Retries:   cfg.HCCCRetries,
			}).WithToken(token)

			svc := payment.NewService(payment.NewPoller(payment.PollerConfig{
				MaxAttempts: cfg.PaymentPollAttempts,
				Delay:       cfg.PaymentPollDelay,
				MaxDelay:    cfg.PaymentPollMaxDelay,
			}, nil))

			res, err := svc.Confirm(ctx, api, args[0], wait)
			if err != nil {
				log.Error().Err(err).Str("intent_id", args[0]).Msg("Payment check failed")
				fmt.Fprintln(cmd.ErrOrStderr(), hccc.MessageOf(err))
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", os.Getenv("HCCC_TOKEN"), "bearer token of the paying customer or an admin")
	cmd.Flags().BoolVar(&wait, "wait", false, "keep polling while the payment is pending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the payment and outcome as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")

	return cmd
}

func printResult(w io.Writer, res *payment.Result) {
	p, o := res.Payment, res.Outcome
	fmt.Fprintf(w, "payment   %s (%s)\n", p.ID, p.PaymentIntentID)
	fmt.Fprintf(w, "status    %s -> %s\n", p.Status, o.Bucket)
	fmt.Fprintf(w, "amount    %s %s\n", p.Amount.StringFixed(2), p.Currency)
	if p.Game.Name != "" {
		fmt.Fprintf(w, "package   %d tokens, %s @ %s\n", p.TokenPackage.Tokens, p.Game.Name, p.Location)
	}
	if p.DeclineCode != "" {
		fmt.Fprintf(w, "decline   %s\n", p.DeclineCode)
	}
	fmt.Fprintf(w, "message   %s\n", o.Message)
	if o.Banner != "" {
		fmt.Fprintf(w, "banner    %s\n", o.Banner)
	}
	if o.OfferRefetch {
		fmt.Fprintln(w, "hint      still pending, run again with --wait")
	}
}
