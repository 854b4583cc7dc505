package cmd

import (
	"fmt"
	"text/tabwriter"

	"k2age/core/binary"

	"github.com/spf13/cobra"
)

func newRunsCmd(g *globalFlags) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect estimates saved with --store",
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			repo, err := a.withDB()
			if err != nil {
				return err
			}
			runs, err := repo.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tMA\tMB\tFEH\tAGE\tCREATED")
			for _, r := range runs {
				age := "-"
				if r.Age != nil {
					age = fmt.Sprintf("%.4e", *r.Age)
				}
				fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%+.2f\t%s\t%s\n", r.ID, r.PrimaryMass, r.SecondaryMass, r.Metallicity, age, r.CreatedAt.Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	listCmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")

	showCmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print the track table of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			repo, err := a.withDB()
			if err != nil {
				return err
			}
			run, err := repo.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			ages, k2 := run.Track()
			return binary.WriteTable(cmd.OutOrStdout(), ages, k2)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			repo, err := a.withDB()
			if err != nil {
				return err
			}
			return repo.Delete(cmd.Context(), args[0])
		},
	}

	runsCmd.AddCommand(listCmd, showCmd, deleteCmd)
	return runsCmd
}
