package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/risor-io/roll"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var evalCmd = &cobra.Command{
	Use:     "eval [expr]",
	Aliases: []string{"e"},
	Short:   "Evaluate a dice expression",
	Long: `Evaluate a dice expression and print the result. The expression is
read from standard input when no argument is given.`,
	Example: `  roll eval 3d6+2
  roll eval --seed 1423 "(1d20)d(1d20)"
  echo d20 | roll eval -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: evalHandler,
}

func evalHandler(cmd *cobra.Command, args []string) error {
	source, err := getExpression(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	seed, err := resolveSeed()
	if err != nil {
		return err
	}
	result, err := roll.Eval(source, seed, viper.GetUint64("limit"), evalOptions()...)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), red(describeError(err, source)))
		return errReported
	}
	logger.Debug().Str("expression", source).Uint64("seed", seed).Int64("result", result).Msg("evaluated")

	out := rollResult{Expression: source, Seed: seed, Result: result}
	output, err := formatOutput(out, viper.GetString("output"), viper.GetBool("no-color"), func() string {
		return strconv.FormatInt(result, 10)
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}

// getExpression returns the expression given as an argument, or else the
// first line of input.
func getExpression(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	source := strings.TrimSpace(string(data))
	if source == "" {
		return "", errors.New("no expression given")
	}
	if i := strings.IndexByte(source, '\n'); i >= 0 {
		source = strings.TrimSpace(source[:i])
	}
	return source, nil
}
