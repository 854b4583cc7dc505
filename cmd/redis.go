package cmd

import (
	"fmt"

	"k2age/cache"

	"github.com/spf13/cobra"
)

func newRedisCmd(g *globalFlags) *cobra.Command {
	var evict []string
	cmd := &cobra.Command{
		Use:   "redis",
		Short: "Check the Redis track cache connection",
		Long:  `Connect to Redis, run a set/get/delete round trip and, with --evict, delete the cached tracks of the given grid locators.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "redis:   %s:%s db %d\n", a.cfg.RedisHost, a.cfg.RedisPort, a.cfg.RedisDB)
			if err := a.withCache(cmd.Context()); err != nil {
				return fmt.Errorf("connect to Redis: %w", err)
			}
			fmt.Fprintln(w, "connection ok")

			if err := cache.SelfTest(cmd.Context(), a.rdb); err != nil {
				return fmt.Errorf("Redis round trip: %w", err)
			}
			fmt.Fprintln(w, "round trip ok")

			for _, loc := range evict {
				if err := a.cache.Delete(cmd.Context(), loc); err != nil {
					return err
				}
				fmt.Fprintf(w, "evicted %s\n", cache.Key(loc))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&evict, "evict", nil, "grid locators whose cached tracks are deleted")
	return cmd
}
