package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wuyiadepoju/subscription-billing/internal/app"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/usecases/renew_due_subscriptions"
)

func newRenewDueCmd() *cobra.Command {
	var (
		lookahead time.Duration
		lookback  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "renew-due",
		Short: "Renew every active subscription whose period ends in the window",
		Long: `Renews subscriptions whose current period ends between now-lookback and
now+lookahead. Run it from an external scheduler such as cron.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if !cmd.Flags().Changed("lookahead") {
				lookahead = cfg.RenewLookahead
			}

			ctx := cmd.Context()
			container, err := app.NewContainer(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer container.Close()

			now := time.Now().UTC()
			summary, err := container.RenewDue.Execute(ctx, renew_due_subscriptions.Request{
				From: now.Add(-lookback),
				To:   now.Add(lookahead),
			})
			if err != nil {
				return err
			}

			out, err := json.Marshal(summary)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().DurationVar(&lookahead, "lookahead", time.Hour, "renew periods ending up to this far in the future (default RENEW_LOOKAHEAD)")
	cmd.Flags().DurationVar(&lookback, "lookback", 7*24*time.Hour, "include periods that ended this long ago and were missed")
	return cmd
}
