package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newTrackCmd(g *globalFlags) *cobra.Command {
	var table tableFlags
	cmd := &cobra.Command{
		Use:   "track MASS FEH",
		Short: "Interpolate a single-star k2 track",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := numericArgs(cmd, args, []string{"MASS", "FEH"})
			if errors.Is(err, errHelp) {
				return cmd.Help()
			}
			if err != nil {
				return err
			}

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.withInterpolator(cmd.Context()); err != nil {
				return err
			}

			k2, err := a.interp.Interpolate(cmd.Context(), v[0], v[1])
			if err != nil {
				return err
			}
			out := table.output
			if out == "" {
				out = defaultTrackName(v[0], v[1])
			}
			if err := table.write(cmd, out, a.catalog.Ages(), a.catalog.LogAges(), k2); err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "track:   %s (%d points)\n", out, len(k2))
			}
			return nil
		},
	}
	numericCommand(cmd)
	table.register(cmd, "table file, - for stdout (default m<MASS>_feh<FEH>_k2.trk)")
	return cmd
}

func defaultTrackName(mass, feh float64) string {
	return "m" + strconv.FormatFloat(mass, 'f', -1, 64) + "_feh" + strconv.FormatFloat(feh, 'f', -1, 64) + "_k2.trk"
}
