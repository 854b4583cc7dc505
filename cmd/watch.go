package cmd

import (
	"os/signal"
	"syscall"

	"k2age/cache"

	"github.com/spf13/cobra"
)

func newWatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Evict cached tracks whenever files under the model directory change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.withCache(ctx); err != nil {
				return err
			}
			return cache.NewInvalidator(a.cfg.TrackDir, a.cache, a.log).Run(ctx)
		},
	}
}
