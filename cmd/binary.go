package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"k2age/core/binary"
	"k2age/core/estimate"
	"k2age/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var binaryArgNames = []string{"MA", "MB", "RA", "RB", "FEH", "E", "A"}

type tableFlags struct {
	output string
	logAge bool
}

func (f *tableFlags) register(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", usage)
	cmd.Flags().BoolVar(&f.logAge, "log-age", false, "write log10(age/yr) instead of age in years")
}

// write emits the table to path, or stdout when path is "-".
func (f *tableFlags) write(cmd *cobra.Command, path string, ages, logAges, values []float64) error {
	col := ages
	if f.logAge {
		col = logAges
	}
	if path == "-" {
		return binary.WriteTable(cmd.OutOrStdout(), col, values)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := binary.WriteTable(file, col, values); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func newBinaryCmd(g *globalFlags) *cobra.Command {
	var (
		table                    tableFlags
		k2, omegaA, omegaB, omgO float64
		store                    bool
	)
	cmd := &cobra.Command{
		Use:   "binary MA MB RA RB FEH E A",
		Short: "Compute the weighted k2 track of a binary",
		Long: `Compute the apsidal motion constant track of a binary from the component
masses (Msun), radii (Rsun), shared [Fe/H], eccentricity and semi-major
axis (Rsun). With --k2 the observed log10 k2 is inverted to an age.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := numericArgs(cmd, args, binaryArgNames)
			if errors.Is(err, errHelp) {
				return cmd.Help()
			}
			if err != nil {
				return err
			}
			req := estimate.Request{
				PrimaryMass:     &v[0],
				SecondaryMass:   &v[1],
				PrimaryRadius:   &v[2],
				SecondaryRadius: &v[3],
				Metallicity:     &v[4],
				Eccentricity:    &v[5],
				SemiMajorAxis:   &v[6],
				PrimaryOmega:    optionalFloat(cmd.Flags().Changed("omega-a"), omegaA),
				SecondaryOmega:  optionalFloat(cmd.Flags().Changed("omega-b"), omegaB),
				OrbitOmega:      optionalFloat(cmd.Flags().Changed("omega-orbit"), omgO),
				ObservedK2:      optionalFloat(cmd.Flags().Changed("k2"), k2),
			}

			a, err := newApp(g)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.withInterpolator(cmd.Context()); err != nil {
				return err
			}

			res, err := a.estimator().Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := table.output
			if out == "" {
				out = a.cfg.OutputPath
			}
			if err := table.write(cmd, out, res.Ages, a.catalog.LogAges(), res.Track); err != nil {
				return err
			}
			if out != "-" {
				printSummary(cmd.OutOrStdout(), res, out)
			}

			if store {
				runs, err := a.withDB()
				if err != nil {
					return err
				}
				run := model.NewBinaryRun(req, res)
				if err := runs.Create(cmd.Context(), run); err != nil {
					return fmt.Errorf("store run: %w", err)
				}
				a.log.Info("run stored", zap.String("id", run.ID))
				fmt.Fprintf(cmd.OutOrStdout(), "run id:  %s\n", run.ID)
			}
			return nil
		},
	}
	numericCommand(cmd)
	table.register(cmd, "table file, - for stdout (default K2AGE_OUTPUT)")
	cmd.Flags().Float64Var(&k2, "k2", 0, "observed log10 k2 to invert to an age")
	cmd.Flags().Float64Var(&omegaA, "omega-a", 0, "primary angular velocity")
	cmd.Flags().Float64Var(&omegaB, "omega-b", 0, "secondary angular velocity")
	cmd.Flags().Float64Var(&omgO, "omega-orbit", 0, "mean orbital angular velocity")
	cmd.Flags().BoolVar(&store, "store", false, "save the run to the MySQL result store")
	return cmd
}

func printSummary(w io.Writer, res *estimate.Result, out string) {
	fmt.Fprintf(w, "c21:     %.6e (%s, spin ratio %.4f)\n", res.C21.Value, res.C21.Rotation, res.C21.SpinRatio)
	fmt.Fprintf(w, "c22:     %.6e (%s, spin ratio %.4f)\n", res.C22.Value, res.C22.Rotation, res.C22.SpinRatio)
	fmt.Fprintf(w, "track:   %s (%d points)\n", out, len(res.Track))
	if res.Age != nil {
		fmt.Fprintf(w, "age:     %.4e yr\n", *res.Age)
	}
}
