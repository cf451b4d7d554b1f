package vm

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithObserver sets an observer for VM execution events. The observer
// receives a callback before every instruction and for every die rolled.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
