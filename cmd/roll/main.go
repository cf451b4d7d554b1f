package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/risor-io/roll"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var red = color.New(color.FgRed).SprintFunc()

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "roll [expr]",
	Short: "Roll dice using standard dice notation",
	Long: `Roll dice using standard dice notation, for example "3d6+2" or
"(1d20)d(1d20)". Results are reproducible: the same expression and seed
always produce the same value.

With no expression and an interactive terminal, an interactive session is
started.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return processGlobalFlags()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && isTerminalIO() {
			return runRepl(cmd.Context())
		}
		return evalHandler(cmd, args)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.roll.yaml)")
	flags.String("seed", "", "Seed for the random number generator (random if unset)")
	flags.Uint64("limit", roll.DefaultLimit, "Maximum number of dice a single roll may throw")
	flags.StringP("output", "o", "text", "Output format: text, json or yaml")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-level", "warn", "Log level: trace, debug, info, warn or error")
	flags.Int("workers", runtime.NumCPU(), "Number of parallel workers for bench and search")
	for _, name := range []string{"seed", "limit", "output", "no-color", "log-level", "workers"} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
	rootCmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(
		outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))

	addTraceFlag(rootCmd)

	rootCmd.AddCommand(evalCmd, replCmd, disCmd, benchCmd, searchCmd, versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".roll")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("roll")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fatal(fmt.Errorf("reading config: %w", err))
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errReported) {
			os.Exit(1)
		}
		fatal(err)
	}
}
