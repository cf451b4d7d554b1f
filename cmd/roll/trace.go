package main

import (
	"github.com/risor-io/roll"
	"github.com/risor-io/roll/vm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// traceObserver logs every instruction and every die at debug level.
type traceObserver struct {
	logger zerolog.Logger
}

func (o *traceObserver) OnStep(event vm.StepEvent) {
	o.logger.Debug().
		Int("ip", event.IP).
		Stringer("instruction", event.Instruction).
		Int("column", event.Location.Column).
		Int("depth", event.StackDepth).
		Msg("step")
}

func (o *traceObserver) OnRoll(event vm.RollEvent) {
	o.logger.Debug().
		Int("ip", event.IP).
		Uint64("die", event.Die+1).
		Uint64("of", event.Times).
		Uint64("sides", event.Sides).
		Int64("face", event.Face).
		Msg("roll")
}

func addTraceFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("trace", false, "Log every instruction and die rolled")
	viper.BindPFlag("trace", cmd.PersistentFlags().Lookup("trace"))
}

// evalOptions returns the roll options implied by the global flags.
func evalOptions() []roll.Option {
	if !viper.GetBool("trace") {
		return nil
	}
	return []roll.Option{roll.WithObserver(&traceObserver{logger: logger})}
}
