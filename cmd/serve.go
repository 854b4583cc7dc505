package cmd

import (
	"os/signal"
	"syscall"

	"k2age/cache"
	"k2age/config"
	"k2age/repository"
	"k2age/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var port string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// 收到中断信号时取消 ctx
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.withInterpolator(ctx); err != nil {
				return err
			}

			var runs repository.RunRepository
			if a.cfg.DBEnabled {
				if runs, err = a.withDB(); err != nil {
					return err
				}
			}

			if watch && a.cache != nil && a.cfg.TrackSource != config.SourceMinio {
				inv := cache.NewInvalidator(a.cfg.TrackDir, a.cache, a.log)
				go func() {
					if err := inv.Run(ctx); err != nil {
						a.log.Warn("cache invalidator stopped", zap.Error(err))
					}
				}()
			}

			if port == "" {
				port = a.cfg.ServerPort
			}
			h := server.NewAPIHandler(a.estimator(), a.interp, runs, a.log)
			return server.Run(ctx, ":"+port, h, a.log)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (default SERVER_PORT)")
	cmd.Flags().BoolVar(&watch, "watch", true, "evict cached tracks when model files change")
	return cmd
}

