package cmd

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// errHelp is returned by splitArgs when -h or --help was given.
var errHelp = errors.New("help requested")

// numericCommand prepares cmd to take signed numbers as positional
// arguments. pflag reads "-0.5" as a shorthand flag, so cobra's own flag
// parsing is disabled and splitArgs does it instead.
func numericCommand(cmd *cobra.Command) *cobra.Command {
	cmd.DisableFlagParsing = true
	cmd.Args = cobra.ArbitraryArgs
	return cmd
}

// splitArgs parses the flags in args and returns the positional arguments.
// A token that parses as a number is positional unless it is the value of
// the preceding flag. Everything after "--" is positional.
func splitArgs(cmd *cobra.Command, args []string) ([]string, error) {
	cmd.InitDefaultHelpFlag()
	var positional, flagArgs []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case a == "-" || !strings.HasPrefix(a, "-") || isNumber(a):
			positional = append(positional, a)
		default:
			flagArgs = append(flagArgs, a)
			if f := lookupFlag(cmd, a); f != nil && f.NoOptDefVal == "" && i+1 < len(args) {
				i++
				flagArgs = append(flagArgs, args[i])
			}
		}
	}

	cmd.DisableFlagParsing = false
	err := cmd.ParseFlags(flagArgs)
	cmd.DisableFlagParsing = true
	if errors.Is(err, pflag.ErrHelp) {
		return nil, errHelp
	}
	if err != nil {
		return nil, err
	}
	if help, _ := cmd.Flags().GetBool("help"); help {
		return nil, errHelp
	}
	return positional, nil
}

// lookupFlag returns the flag named by a bare "--name" or "-x" token, or
// nil when the token is unknown or carries its value inline.
func lookupFlag(cmd *cobra.Command, token string) *pflag.Flag {
	var f *pflag.Flag
	switch {
	case strings.HasPrefix(token, "--"):
		name := token[2:]
		if strings.Contains(name, "=") {
			return nil
		}
		if f = cmd.Flags().Lookup(name); f == nil {
			f = cmd.InheritedFlags().Lookup(name)
		}
	case len(token) == 2:
		short := token[1:]
		if f = cmd.Flags().ShorthandLookup(short); f == nil {
			f = cmd.InheritedFlags().ShorthandLookup(short)
		}
	}
	return f
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// numericArgs parses args with splitArgs and then as floats named by names.
func numericArgs(cmd *cobra.Command, args, names []string) ([]float64, error) {
	positional, err := splitArgs(cmd, args)
	if err != nil {
		return nil, err
	}
	return parseFloats(positional, names)
}
