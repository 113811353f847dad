package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"toolkit-gateway/internal/config"
	"toolkit-gateway/internal/logger"
)

// app é o estado compartilhado entre os subcomandos.
type app struct {
	cfgPath string
	cfg     *config.Config
	log     *slog.Logger
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gateway",
		Short: "Prompt refinement and contact RPCs behind a daily quota",
		Long: `gateway serve the refinePrompt and submitContact callables.

Every call consumes one unit of the caller's daily quota, kept in a shared
store (memory, redis or sql) so many instances can enforce the same limit.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
			a.out = cmd.OutOrStdout()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default ./configs/config.yaml)")

	root.AddCommand(newServeCmd(a), newUsageCmd(a), newContactsCmd(a))
	return root
}
