package vm

// ---------------------------------------------------------------------------
// Continuations
// ---------------------------------------------------------------------------
//
// Every operation that may run user code is written in continuation-passing
// style: it receives the continuation that wants its result and returns the
// next Thunk for the trampoline instead of calling deeper on the Go stack.
// Frames are immutable, so a captured continuation can be resumed any
// number of times and always sees the state it was captured with.

// Thunk is one trampoline step. Returning a nil Thunk and a nil error ends
// the current run.
type Thunk func() (Thunk, error)

// Cont is a continuation frame.
type Cont interface {
	// Plug delivers the values produced by the computation this frame was
	// waiting on.
	Plug(vals []Value, vm *VM) (Thunk, error)

	// Prev returns the enclosing frame, or nil for the outermost one.
	Prev() Cont
}

// ReturnValue resumes cont with a single value.
func ReturnValue(v Value, vm *VM, cont Cont) (Thunk, error) {
	return ReturnMultiVals([]Value{v}, vm, cont)
}

// ReturnMultiVals resumes cont with any number of values.
func ReturnMultiVals(vals []Value, vm *VM, cont Cont) (Thunk, error) {
	return func() (Thunk, error) {
		return cont.Plug(vals, vm)
	}, nil
}

// haltCont is the outermost frame of a VM run.
type haltCont struct{}

func (haltCont) Prev() Cont { return nil }

func (haltCont) Plug(vals []Value, vm *VM) (Thunk, error) {
	vm.result = vals
	return nil, nil
}

// Halt is the frame that ends a run and hands its values to VM.Call.
var Halt Cont = haltCont{}

// contFunc adapts a Go closure into a frame. Callers must not capture
// mutable state in fn: the frame may be plugged more than once.
type contFunc struct {
	prev Cont
	fn   func(vals []Value, vm *VM, prev Cont) (Thunk, error)
}

func (c *contFunc) Prev() Cont { return c.prev }

func (c *contFunc) Plug(vals []Value, vm *VM) (Thunk, error) {
	return c.fn(vals, vm, c.prev)
}

// ThenCont returns a frame that runs fn with the delivered values and the
// enclosing frame prev.
func ThenCont(prev Cont, fn func(vals []Value, vm *VM, prev Cont) (Thunk, error)) Cont {
	return &contFunc{prev: prev, fn: fn}
}

// singleValue checks that exactly one value was delivered.
func singleValue(who string, vals []Value) (Value, error) {
	if len(vals) != 1 {
		return nil, arityError(who, "expected 1 result, received %d", len(vals))
	}
	return vals[0], nil
}

// ---------------------------------------------------------------------------
// First-class continuations
// ---------------------------------------------------------------------------

// Continuation is a captured continuation. Applying it abandons the
// current continuation and delivers the arguments to the captured one.
type Continuation struct {
	base
	cont Cont
}

func (*Continuation) Callable() bool { return true }
func (*Continuation) String() string { return "#<continuation>" }
func (*Continuation) transient()     {}
func (k *Continuation) Frame() Cont  { return k.cont }

// Call implements Procedure.
func (k *Continuation) Call(args []Value, vm *VM, _ Cont) (Thunk, error) {
	return ReturnMultiVals(args, vm, k.cont)
}

// CallCC applies f to the current continuation.
func CallCC(f Value, vm *VM, cont Cont) (Thunk, error) {
	return Apply(f, []Value{&Continuation{cont: cont}}, vm, cont)
}
