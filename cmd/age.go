package cmd

import (
	"errors"
	"fmt"
	"os"

	"k2age/core/binary"

	"github.com/spf13/cobra"
)

func newAgeCmd(g *globalFlags) *cobra.Command {
	var tablePath string
	cmd := &cobra.Command{
		Use:   "age K2",
		Short: "Invert an observed log10 k2 to an age using a written track table",
		Long: `Read an "age k2" table written by "binary" or "track" and return the age
at which the track reaches K2. The age is in the unit of the table's first
column.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := numericArgs(cmd, args, []string{"K2"})
			if errors.Is(err, errHelp) {
				return cmd.Help()
			}
			if err != nil {
				return err
			}

			path := tablePath
			if path == "" {
				a, err := newApp(g)
				if err != nil {
					return err
				}
				path = a.cfg.OutputPath
				a.Close()
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open table: %w", err)
			}
			defer f.Close()
			ages, k2, err := binary.ReadTable(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			age, err := binary.AgeFromObservedValue(k2, ages, v[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.6e\n", age)
			return nil
		},
	}
	numericCommand(cmd)
	cmd.Flags().StringVarP(&tablePath, "table", "t", "", "track table (default K2AGE_OUTPUT)")
	return cmd
}
