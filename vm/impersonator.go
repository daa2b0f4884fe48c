package vm

import "fmt"

// ---------------------------------------------------------------------------
// Wrapper lattice
// ---------------------------------------------------------------------------

// Strength says how much a wrapper may change the values passing through
// it. Impersonators may change them arbitrarily; chaperones promise to
// return values that are chaperone-of? the originals.
type Strength int

const (
	Impersonator Strength = iota
	Chaperone
)

func (s Strength) String() string {
	if s == Chaperone {
		return "chaperone"
	}
	return "impersonator"
}

// Kind is the shape of value a wrapper stands in for.
type Kind int

const (
	KindProcedure Kind = iota
	KindVector
	KindStruct
	KindBox
	KindContinuationMarkKey
)

var kindNames = [...]string{
	KindProcedure:           "procedure",
	KindVector:              "vector",
	KindStruct:              "struct",
	KindBox:                 "box",
	KindContinuationMarkKey: "continuation-mark-key",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Wrapper is implemented by every impersonator and chaperone. Target is
// the next layer in, which may itself be a Wrapper.
type Wrapper interface {
	Value
	Target() Value
	Strength() Strength
	Kind() Kind
	Properties() *PropertyTable
}

// wrapper holds the fields every layer has. It never changes after
// construction.
type wrapper struct {
	target   Value
	strength Strength
	props    *PropertyTable
}

func (w *wrapper) Target() Value              { return w.target }
func (w *wrapper) Strength() Strength         { return w.strength }
func (w *wrapper) Properties() *PropertyTable { return w.props }
func (w *wrapper) Callable() bool             { return w.target.Callable() }
func (w *wrapper) Immutable() bool            { return w.target.Immutable() }
func (w *wrapper) IsImpersonator() bool       { return w.strength == Impersonator }
func (w *wrapper) IsChaperone() bool          { return w.strength == Chaperone }
func (w *wrapper) StructType() *StructType    { return w.target.StructType() }
func (w *wrapper) String() string             { return w.target.String() }

// Base strips every wrapper layer from v.
func Base(v Value) Value {
	for {
		w, ok := v.(Wrapper)
		if !ok {
			return v
		}
		v = w.Target()
	}
}

// Depth returns the number of wrapper layers around v.
func Depth(v Value) int {
	n := 0
	for {
		w, ok := v.(Wrapper)
		if !ok {
			return n
		}
		n++
		v = w.Target()
	}
}

// ---------------------------------------------------------------------------
// Procedure wrappers
// ---------------------------------------------------------------------------

// ProcedureWrapper intercepts application. The check handler sees the
// caller's arguments first; what it returns is passed inward.
type ProcedureWrapper struct {
	wrapper
	check Value
}

func (*ProcedureWrapper) Kind() Kind { return KindProcedure }

// Check returns the check handler.
func (w *ProcedureWrapper) Check() Value { return w.check }

func (w *ProcedureWrapper) who() string {
	if w.strength == Chaperone {
		return "chaperone-procedure"
	}
	return "impersonate-procedure"
}

// Call implements Procedure.
//
// If the check handler returns one more value than it was given and the
// extra leading value is a procedure, that procedure receives the inner
// procedure's results and produces the caller's results.
func (w *ProcedureWrapper) Call(args []Value, vm *VM, cont Cont) (Thunk, error) {
	inner := cont
	if mark, ok := w.props.Get(ApplicationMark); ok {
		if p, isPair := mark.(*Pair); isPair {
			inner = WithContinuationMark(p.Car(), p.Cdr(), cont)
		}
	}
	vm.metrics.handlerInvoked("apply")

	n := len(args)
	return Apply(w.check, args, vm, ThenCont(inner, func(vals []Value, vm *VM, inner Cont) (Thunk, error) {
		switch {
		case len(vals) == n:
			return checkChaperoneResults(w, w.who(), vals, args, vm, inner, func(vm *VM, inner Cont) (Thunk, error) {
				return Apply(w.target, vals, vm, inner)
			})
		case len(vals) == n+1 && IsProcedure(vals[0]):
			post, forwarded := vals[0], vals[1:]
			return checkChaperoneResults(w, w.who(), forwarded, args, vm, inner, func(vm *VM, inner Cont) (Thunk, error) {
				return Apply(w.target, forwarded, vm, ThenCont(inner, func(results []Value, vm *VM, inner Cont) (Thunk, error) {
					return Apply(post, results, vm, inner)
				}))
			})
		}
		return nil, arityError(w.who(), "handler returned %d values for %d arguments", len(vals), n)
	}))
}

// ---------------------------------------------------------------------------
// Vector, box and struct wrappers
// ---------------------------------------------------------------------------

// VectorWrapper intercepts vector-ref and vector-set!.
type VectorWrapper struct {
	wrapper
	ref, set Value
}

func (*VectorWrapper) Kind() Kind { return KindVector }

func (w *VectorWrapper) who() string {
	if w.strength == Chaperone {
		return "chaperone-vector"
	}
	return "impersonate-vector"
}

// BoxWrapper intercepts unbox and set-box!.
type BoxWrapper struct {
	wrapper
	unbox, set Value
}

func (*BoxWrapper) Kind() Kind { return KindBox }

func (w *BoxWrapper) who() string {
	if w.strength == Chaperone {
		return "chaperone-box"
	}
	return "impersonate-box"
}

// StructWrapper intercepts selected field accessors and mutators.
// overrides[i] is a *StructFieldAccessor or *StructFieldMutator and
// handlers[i] its handler.
type StructWrapper struct {
	wrapper
	overrides []Value
	handlers  []Value
}

func (*StructWrapper) Kind() Kind { return KindStruct }

func (w *StructWrapper) who() string {
	if w.strength == Chaperone {
		return "chaperone-struct"
	}
	return "impersonate-struct"
}

// Overrides returns the number of selector/handler pairs.
func (w *StructWrapper) Overrides() int { return len(w.overrides) }

// handlerFor returns the handler this layer installs for the selector
// kind (accessor or mutator) on absolute field index field.
func (w *StructWrapper) handlerFor(field int, mutator bool) (Value, bool) {
	for i, sel := range w.overrides {
		switch s := sel.(type) {
		case *StructFieldAccessor:
			if !mutator && s.AbsoluteIndex() == field {
				return w.handlers[i], true
			}
		case *StructFieldMutator:
			if mutator && s.AbsoluteIndex() == field {
				return w.handlers[i], true
			}
		}
	}
	return nil, false
}
