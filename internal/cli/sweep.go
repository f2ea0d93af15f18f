package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"timetracker/internal/service"
)

func (a *app) newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close every task in progress now, like the nightly job does",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := a.load()
			if err != nil {
				return err
			}

			store, closeStore, err := openStore(cmd.Context(), cfg.Store, logger)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			svc, err := service.New(store, service.WithLogger(logger))
			if err != nil {
				return err
			}

			closed, err := svc.CloseOpenTasks(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "closed %d task(s)\n", closed)
			return err
		},
	}
}
