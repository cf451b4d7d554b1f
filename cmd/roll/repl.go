package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/risor-io/roll"
	"github.com/risor-io/roll/rng"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const replPrompt = "> "

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Start an interactive session. Each line is rolled against a single
generator, so repeated rolls continue the same random stream.

Commands:
  !seed         print the current seed
  !seed N       restart the generator from seed N
  !seed none    restart the generator from a random seed`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd.Context())
	},
}

// replSession holds the state that persists between lines.
type replSession struct {
	seed   uint64
	gen    *rng.Wyrand
	limit  uint64
	opts   []roll.Option
	random func() uint64
}

func newReplSession(seed, limit uint64, opts []roll.Option) *replSession {
	s := &replSession{limit: limit, opts: opts, random: randomSeed}
	s.reseed(seed)
	return s
}

func (s *replSession) reseed(seed uint64) {
	s.seed = seed
	s.gen = rng.New(seed)
}

// handle processes one line of input and returns the text to print.
func (s *replSession) handle(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(line, "!seed"); ok {
		switch rest = strings.TrimSpace(rest); rest {
		case "":
			return strconv.FormatUint(s.seed, 10), nil
		case "none":
			s.reseed(s.random())
			return "", nil
		default:
			seed, err := parseSeed(rest)
			if err != nil {
				return "", err
			}
			s.reseed(seed)
			return "", nil
		}
	}
	code, err := roll.Compile(line)
	if err != nil {
		return "", err
	}
	result, err := roll.Evaluate(code, s.limit, s.gen, s.opts...)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(result, 10), nil
}

func runRepl(ctx context.Context) error {
	seed, err := resolveSeed()
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	terminal := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, replPrompt)

	// the terminal translates newlines while in raw mode
	logger = logger.Output(zerolog.ConsoleWriter{Out: terminal, NoColor: color.NoColor})

	session := newReplSession(seed, viper.GetUint64("limit"), evalOptions())
	historyPath := historyFile()
	logger.Debug().Uint64("seed", seed).Str("history", historyPath).Msg("repl started")

	for {
		if ctx != nil && ctx.Err() != nil {
			return nil
		}
		line, err := terminal.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		output, err := session.handle(line)
		if err != nil {
			fmt.Fprint(terminal, red(describeError(err, strings.TrimSpace(line))))
		} else if output != "" {
			fmt.Fprintln(terminal, output)
		}
		appendToHistory(historyPath, line)
	}
}

func historyFile() string {
	path, err := homedir.Expand("~/.roll_history")
	if err != nil {
		return ""
	}
	return path
}

func appendToHistory(path, line string) {
	line = strings.TrimSpace(line)
	if path == "" || line == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to write history")
		return
	}
	defer f.Close()
	fmt.Fprintln(f, line)
}
