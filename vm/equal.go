package vm

// ---------------------------------------------------------------------------
// Equivalence engine
// ---------------------------------------------------------------------------
//
// equal?, chaperone-of? and impersonator-of? share one traversal. The
// traversal never recurses on the Go stack: every sub-comparison is a
// Thunk and every pending comparison is an immutable frame, so a struct's
// custom equality procedure may capture or re-enter continuations and the
// comparison resumes exactly where it was.

// EqualMode selects the relation.
type EqualMode int

const (
	// ModeEqual unwraps both sides completely, ignoring strength.
	ModeEqual EqualMode = iota
	// ModeChaperoneOf looks through chaperone layers only.
	ModeChaperoneOf
	// ModeImpersonatorOf looks through every wrapper layer.
	ModeImpersonatorOf
)

func (m EqualMode) String() string {
	switch m {
	case ModeChaperoneOf:
		return "chaperone-of?"
	case ModeImpersonatorOf:
		return "impersonator-of?"
	}
	return "equal?"
}

// inProgress is a persistent list of the (a, b) pairs currently being
// compared. Pushing allocates a new head and never touches the tail, so
// frames captured by a continuation keep the list they were built with.
type inProgress struct {
	a, b Value
	next *inProgress
}

func (p *inProgress) contains(a, b Value) bool {
	for n := p; n != nil; n = n.next {
		if n.a == a && n.b == b {
			return true
		}
	}
	return false
}

type equalInfo struct {
	mode EqualMode
	seen *inProgress
}

func (info *equalInfo) enter(a, b Value) *equalInfo {
	return &equalInfo{mode: info.mode, seen: &inProgress{a: a, b: b, next: info.seen}}
}

// Equal compares a and b under mode and delivers True or False to cont.
func Equal(a, b Value, mode EqualMode, vm *VM, cont Cont) (Thunk, error) {
	vm.metrics.comparison(mode)
	return equalStep(a, b, &equalInfo{mode: mode}, vm, cont)
}

func equalLater(a, b Value, info *equalInfo, vm *VM, cont Cont) (Thunk, error) {
	return func() (Thunk, error) {
		return equalStep(a, b, info, vm, cont)
	}, nil
}

func equalStep(a, b Value, info *equalInfo, vm *VM, cont Cont) (Thunk, error) {
	vm.metrics.equalStep()
	if Eqv(a, b) {
		return ReturnValue(True, vm, cont)
	}

	switch info.mode {
	case ModeEqual:
		a, b = Base(a), Base(b)
		if Eqv(a, b) {
			return ReturnValue(True, vm, cont)
		}
	default:
		if w, ok := a.(Wrapper); ok {
			if info.mode == ModeChaperoneOf && w.IsImpersonator() {
				return ReturnValue(False, vm, cont)
			}
			return equalLater(w.Target(), b, info, vm, cont)
		}
		if w, ok := b.(Wrapper); ok {
			if info.mode == ModeChaperoneOf && w.IsImpersonator() {
				return ReturnValue(False, vm, cont)
			}
			return equalLater(a, w.Target(), info, vm, cont)
		}
	}

	if info.seen.contains(a, b) {
		return ReturnValue(True, vm, cont)
	}

	switch x := a.(type) {
	case *String:
		y, ok := b.(*String)
		return ReturnValue(FromBool(ok && x.Text() == y.Text()), vm, cont)

	case *Pair:
		// Immutable pairs close no cycle on their own, so they are not
		// recorded; long lists stay linear.
		y, ok := b.(*Pair)
		if !ok {
			break
		}
		return equalLater(x.car, y.car, info, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			if !resultTrue(vals) {
				return ReturnValue(False, vm, cont)
			}
			return equalLater(x.cdr, y.cdr, info, vm, cont)
		}))

	case *MPair:
		y, ok := b.(*MPair)
		if !ok {
			break
		}
		inner := info.enter(a, b)
		return equalLater(x.car, y.car, inner, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			if !resultTrue(vals) {
				return ReturnValue(False, vm, cont)
			}
			return equalLater(x.cdr, y.cdr, inner, vm, cont)
		}))

	case *Vector:
		y, ok := b.(*Vector)
		if !ok || len(x.items) != len(y.items) {
			break
		}
		return equalFieldsFrom(0, x.items, y.items, info.enter(a, b), vm, cont)

	case *Box:
		y, ok := b.(*Box)
		if !ok {
			break
		}
		return equalLater(x.value, y.value, info.enter(a, b), vm, cont)

	case *Struct:
		y, ok := b.(*Struct)
		if !ok || x.typ != y.typ {
			break
		}
		inner := info.enter(a, b)
		if x.typ.equal != nil {
			return equalCustom(x, y, inner, vm, cont)
		}
		if x.typ.transparent {
			return equalFieldsFrom(0, x.fields, y.fields, inner, vm, cont)
		}
	}
	return ReturnValue(False, vm, cont)
}

// equalFieldsFrom compares xs[i:] and ys[i:] pairwise. The slices are read
// at each step, so a mutation made by user code during the comparison is
// seen by the remaining steps.
func equalFieldsFrom(i int, xs, ys []Value, info *equalInfo, vm *VM, cont Cont) (Thunk, error) {
	if i == len(xs) {
		return ReturnValue(True, vm, cont)
	}
	if i == len(xs)-1 {
		return equalLater(xs[i], ys[i], info, vm, cont)
	}
	return equalLater(xs[i], ys[i], info, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
		if !resultTrue(vals) {
			return ReturnValue(False, vm, cont)
		}
		return equalFieldsFrom(i+1, xs, ys, info, vm, cont)
	}))
}

// equalCustom runs a struct type's equality procedure. It receives the two
// instances and a recur procedure that compares in the current mode.
func equalCustom(a, b *Struct, info *equalInfo, vm *VM, cont Cont) (Thunk, error) {
	recur := &equalRecur{info: info}
	return Apply(a.typ.equal, []Value{a, b, recur}, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
		v, err := singleValue(a.typ.name+" equality", vals)
		if err != nil {
			return nil, err
		}
		return ReturnValue(FromBool(IsTruthy(v)), vm, cont)
	}))
}

// equalRecur compares two sub-values under a pending comparison's mode and
// in-progress list. One is made per custom comparison.
type equalRecur struct {
	base
	info *equalInfo
}

func (*equalRecur) Callable() bool { return true }
func (*equalRecur) String() string { return "#<procedure:equal?/recur>" }
func (*equalRecur) transient()     {}

// Call implements Procedure.
func (r *equalRecur) Call(args []Value, vm *VM, cont Cont) (Thunk, error) {
	if len(args) != 2 {
		return nil, arityError("equal?/recur", "expects 2 arguments, given %d", len(args))
	}
	return equalStep(args[0], args[1], r.info, vm, cont)
}

func (vm *VM) registerEqualPrimitives() {
	vm.define(NewSimplePrimitive("eq?", 2, 2, func(args []Value) (Value, error) {
		return FromBool(Eq(args[0], args[1])), nil
	}))
	vm.define(NewSimplePrimitive("eqv?", 2, 2, func(args []Value) (Value, error) {
		return FromBool(Eqv(args[0], args[1])), nil
	}))
	for _, mode := range []EqualMode{ModeEqual, ModeChaperoneOf, ModeImpersonatorOf} {
		mode := mode
		vm.define(NewPrimitive(mode.String(), 2, 2, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
			return Equal(args[0], args[1], mode, vm, cont)
		}))
	}
}

func resultTrue(vals []Value) bool {
	return len(vals) == 1 && IsTruthy(vals[0])
}
