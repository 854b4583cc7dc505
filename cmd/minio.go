package cmd

import (
	"fmt"
	"text/tabwriter"

	"k2age/storage"

	"github.com/spf13/cobra"
)

func newMinioCmd(g *globalFlags) *cobra.Command {
	minioCmd := &cobra.Command{
		Use:   "minio",
		Short: "Manage the model grid stored in MinIO",
	}

	var dryRun bool
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Upload the local model directory to the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			store, err := storage.NewModelStore(a.cfg, a.log)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if dryRun {
				keys, err := store.PlanSync(a.cfg.TrackDir)
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintf(w, "would upload %s/%s\n", store.Bucket(), k)
				}
				return nil
			}

			if err := store.EnsureBucket(cmd.Context()); err != nil {
				return err
			}
			n, err := store.Sync(cmd.Context(), a.cfg.TrackDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "uploaded %d tracks to %s\n", n, store.Bucket())
			return nil
		},
	}
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the object keys without uploading")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the model tracks in the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			store, err := storage.NewModelStore(a.cfg, a.log)
			if err != nil {
				return err
			}

			objects, stats, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, o := range objects {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Key, storage.FormatSize(o.Size), o.LastModified.Format("2006-01-02 15:04:05"))
			}
			fmt.Fprintf(tw, "\n%d objects\t%s\t\n", stats.TotalObjects, storage.FormatSize(stats.TotalSize))
			return tw.Flush()
		},
	}

	minioCmd.AddCommand(syncCmd, listCmd)
	return minioCmd
}
