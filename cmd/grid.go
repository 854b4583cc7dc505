package cmd

import (
	"errors"
	"fmt"
	"strings"

	"k2age/core/track"

	"github.com/spf13/cobra"
)

func newGridCmd(g *globalFlags) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Describe the model grid and optionally check that every track is present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()

			w := cmd.OutOrStdout()
			masses := a.catalog.MassAxis()
			fehs := a.catalog.MetallicityAxis()
			logAges := a.catalog.LogAges()
			fmt.Fprintf(w, "masses:        %d (%.2f to %.2f Msun)\n", masses.Len(), masses.Min(), masses.Max())
			fmt.Fprintf(w, "metallicities: %s\n", joinFloats(fehs.Values()))
			fmt.Fprintf(w, "ages:          %d (log10 %.2f to %.2f)\n", len(logAges), logAges[0], logAges[len(logAges)-1])
			if !check {
				return nil
			}

			if err := a.withInterpolator(cmd.Context()); err != nil {
				return err
			}
			var missing []string
			for i := 0; i < masses.Len(); i++ {
				for j := 0; j < fehs.Len(); j++ {
					loc, err := a.catalog.Locator(masses.Value(i), fehs.Value(j))
					if err != nil {
						return err
					}
					rc, err := a.source.Open(cmd.Context(), loc)
					if err != nil {
						if errors.Is(err, track.ErrTrackNotFound) {
							missing = append(missing, loc)
							continue
						}
						return err
					}
					rc.Close()
				}
			}
			total := masses.Len() * fehs.Len()
			fmt.Fprintf(w, "tracks:        %d/%d present\n", total-len(missing), total)
			for _, loc := range missing {
				fmt.Fprintf(w, "missing:       %s\n", loc)
			}
			if len(missing) > 0 {
				return fmt.Errorf("%d of %d tracks missing", len(missing), total)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "open every track in the configured source")
	return cmd
}

func joinFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%+.1f", v)
	}
	return strings.Join(parts, " ")
}
