package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// globalFlags override the environment for one invocation.
type globalFlags struct {
	trackDir string
	source   string
	logLevel string
	logFile  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:   "k2age",
		Short: "Estimate the age of an eclipsing binary from its apsidal motion constant.",
		Long: `k2age interpolates Dartmouth stellar evolution tracks to the observed
masses and metallicity of a detached eclipsing binary, weights the two
internal structure constants into the system's k2 track and maps an
observed k2 back to an age.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.trackDir, "track-dir", "", "model grid directory (overrides K2AGE_TRACK_DIR)")
	pf.StringVar(&g.source, "source", "", "track source: file or minio (overrides K2AGE_TRACK_SOURCE)")
	pf.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")
	pf.StringVar(&g.logFile, "log-file", "", "rotating log file (overrides LOG_FILE)")

	rootCmd.AddCommand(
		newBinaryCmd(g),
		newTrackCmd(g),
		newAgeCmd(g),
		newGridCmd(g),
		newServeCmd(g),
		newWatchCmd(g),
		newRedisCmd(g),
		newMinioCmd(g),
		newRunsCmd(g),
	)
	return rootCmd
}

// Execute executes the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
