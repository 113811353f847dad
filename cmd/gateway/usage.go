package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"toolkit-gateway/middleware/ratelimit/domain"
)

func newUsageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usage <identity>",
		Short: "Show the daily quota record of an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := newDeps(a.cfg, a.log)
			defer func() { _ = d.Close() }()

			gate, err := d.gate(ctx, nil)
			if err != nil {
				return err
			}
			rec, ok, err := gate.Usage(ctx, args[0])
			if err != nil {
				return fmt.Errorf("read usage: %w", err)
			}

			key := domain.NormalizeKey(args[0])
			today := domain.PeriodKey(time.Now(), a.cfg.Location())
			limit := a.cfg.Quota.DailyLimit
			if !ok {
				fmt.Fprintf(a.out, "identity:  %s\nno usage recorded\nremaining: %d/%d (%s)\n", key, limit, limit, today)
				return nil
			}

			used := 0
			if rec.PeriodKey == today {
				used = rec.Count
			}
			fmt.Fprintf(a.out, "identity:  %s\ncount:     %d\nperiod:    %s\nupdated:   %s\nremaining: %d/%d (%s)\n",
				rec.Identity, rec.Count, rec.PeriodKey, rec.LastUpdated.Format(time.RFC3339), max(limit-used, 0), limit, today)
			return nil
		},
	}
}
