package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/risor-io/roll"
	"github.com/risor-io/roll/bytecode"
	"github.com/risor-io/roll/dis"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var disCmd = &cobra.Command{
	Use:   "dis [expr]",
	Short: "Disassemble a dice expression",
	Long: `Compile a dice expression and print its instructions along with the
evaluation stack size. With -o json the compiled roll is printed in its
serialized form.`,
	Args: cobra.MaximumNArgs(1),
	RunE: disHandler,
}

func disHandler(cmd *cobra.Command, args []string) error {
	source, err := getExpression(args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	code, err := roll.Compile(source)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), red(describeError(err, source)))
		return errReported
	}
	out := cmd.OutOrStdout()
	switch strings.ToLower(viper.GetString("output")) {
	case "json":
		data, err := bytecode.MarshalIndent(code)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	case "", "text":
		instructions, err := dis.Disassemble(code)
		if err != nil {
			return err
		}
		dis.Print(instructions, out)
		fmt.Fprintf(out, "stack size: %d\n", dis.MaxDepth(instructions))
		return nil
	default:
		return errors.New("dis supports the text and json output formats")
	}
}
