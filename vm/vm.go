package vm

// ---------------------------------------------------------------------------
// VM: trampoline and primitive bindings
// ---------------------------------------------------------------------------

// Config controls optional runtime behaviour.
type Config struct {
	// CheckChaperones verifies that every chaperone handler result is
	// chaperone-of? the value it replaced.
	CheckChaperones bool

	// MaxSteps bounds the number of trampoline steps in one run. Zero
	// means unbounded.
	MaxSteps int
}

// DefaultConfig returns the configuration used by NewVM.
func DefaultConfig() Config {
	return Config{}
}

// VM runs continuation-passing computations and owns the primitive
// bindings. A VM is single-threaded: do not call Run concurrently.
type VM struct {
	// Primitives maps names to the values they are bound to.
	Primitives map[string]Value

	config   Config
	metrics  *Metrics
	profiler *Profiler

	// result receives the values delivered to Halt.
	result []Value
}

// NewVM creates a VM with the default configuration.
func NewVM() *VM {
	return NewVMWithConfig(DefaultConfig())
}

// NewVMWithConfig creates a VM with cfg.
func NewVMWithConfig(cfg Config) *VM {
	vm := &VM{
		Primitives: make(map[string]Value),
		config:     cfg,
		metrics:    NewMetrics(),
		profiler:   NewProfiler(),
	}
	vm.registerPrimitives()
	return vm
}

// Config returns the VM's configuration.
func (vm *VM) Config() Config { return vm.config }

// Metrics returns the VM's metrics.
func (vm *VM) Metrics() *Metrics { return vm.metrics }

// Profiler returns the VM's invocation profiler.
func (vm *VM) Profiler() *Profiler { return vm.profiler }

// Lookup returns the value bound to name.
func (vm *VM) Lookup(name string) (Value, bool) {
	v, ok := vm.Primitives[name]
	return v, ok
}

func (vm *VM) define(p *Primitive) {
	vm.Primitives[p.name] = p
}

func (vm *VM) defineValue(name string, v Value) {
	vm.Primitives[name] = v
}

// Run drives t until a frame ends the run or a step fails.
func (vm *VM) Run(t Thunk) error {
	steps := 0
	for t != nil {
		if vm.config.MaxSteps > 0 {
			steps++
			if steps > vm.config.MaxSteps {
				return raise(ErrStepLimit, "vm", "more than %d steps", vm.config.MaxSteps)
			}
		}
		next, err := t()
		if err != nil {
			return err
		}
		t = next
	}
	return nil
}

// Execute runs a computation that starts in continuation Halt and returns
// the values it delivers there.
func (vm *VM) Execute(start func(vm *VM, cont Cont) (Thunk, error)) ([]Value, error) {
	saved := vm.result
	defer func() { vm.result = saved }()
	vm.result = nil

	t, err := start(vm, Halt)
	if err != nil {
		return nil, err
	}
	if err := vm.Run(t); err != nil {
		return nil, err
	}
	return vm.result, nil
}

// Call applies f to args and returns its results.
func (vm *VM) Call(f Value, args ...Value) ([]Value, error) {
	return vm.Execute(func(vm *VM, cont Cont) (Thunk, error) {
		return Apply(f, args, vm, cont)
	})
}

// Call1 applies f to args and returns its single result.
func (vm *VM) Call1(f Value, args ...Value) (Value, error) {
	vals, err := vm.Call(f, args...)
	if err != nil {
		return nil, err
	}
	return singleValue("call", vals)
}

// CallNamed applies the primitive bound to name.
func (vm *VM) CallNamed(name string, args ...Value) ([]Value, error) {
	f, ok := vm.Lookup(name)
	if !ok {
		return nil, raise(ErrLookupFailure, name, "unbound primitive")
	}
	return vm.Call(f, args...)
}
