package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/risor-io/roll/errz"
	"github.com/spf13/viper"
)

// errReported is returned by commands that already printed their error.
var errReported = errors.New("error reported")

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func isTerminalIO() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

// Reads global flags from Viper and adjusts the environment accordingly.
func processGlobalFlags() error {
	if viper.GetBool("no-color") || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
	level := viper.GetString("log-level")
	if viper.GetBool("trace") {
		level = "debug"
	}
	l, err := newLogger(os.Stderr, level, viper.GetBool("no-color"))
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// describeError renders err for a person at a terminal. Compile and
// evaluation errors get a caret under the offending part of source.
func describeError(err error, source string) string {
	var e *errz.Error
	if errors.As(err, &e) {
		return e.FriendlyErrorMessage(source)
	}
	return err.Error() + "\n"
}
