package roll

import "github.com/risor-io/roll/vm"

// Option configures an evaluation.
type Option func(*options)

type options struct {
	observer vm.Observer
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	return opts
}

// WithObserver sets an observer for VM execution events. The observer is
// called for every instruction executed and for every die rolled, which makes
// it suitable for tracers and roll logs.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}
