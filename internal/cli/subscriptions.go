package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSeedPlansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-plans",
		Short: "Create or update the built-in subscription plans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), "backoffice-seed")
			if err != nil {
				return err
			}
			defer a.close()

			plans, err := a.subscriptions.SeedPlans(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed plans: %w", err)
			}
			for _, p := range plans {
				a.log.Info().Str("plan", string(p.Name)).Str("plan_id", p.ID).Str("price", p.Price.StringFixed(2)).Msg("plan seeded")
			}
			return nil
		},
	}
}

func newExpireCommand() *cobra.Command {
	var (
		every time.Duration
		once  bool
	)

	cmd := &cobra.Command{
		Use:   "expire-subscriptions",
		Short: "Mark subscriptions past their end date as expired",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !once && every <= 0 {
				return fmt.Errorf("--every must be positive, got %s", every)
			}
			a, err := bootstrap(cmd.Context(), "backoffice-expiry")
			if err != nil {
				return err
			}
			defer a.close()

			run := func(ctx context.Context) error {
				n, err := a.subscriptions.ExpireDue(ctx)
				if err != nil {
					return fmt.Errorf("expire subscriptions: %w", err)
				}
				a.log.Info().Int("expired", n).Msg("expiry run finished")
				return nil
			}

			if once {
				return run(cmd.Context())
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				if err := run(cmd.Context()); err != nil {
					a.log.Error().Err(err).Msg("expiry run failed")
				}
				select {
				case <-cmd.Context().Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().BoolVar(&once, "once", true, "Run a single pass and exit")
	cmd.Flags().DurationVar(&every, "every", time.Hour, "Interval between passes when --once=false")
	return cmd
}
