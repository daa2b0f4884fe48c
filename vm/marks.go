package vm

import "fmt"

// ---------------------------------------------------------------------------
// Continuation marks
// ---------------------------------------------------------------------------

// ContinuationMarkKey is a key made by make-continuation-mark-key. Any
// value can key a mark; these keys just guarantee a private one.
type ContinuationMarkKey struct {
	base
	name string
}

// NewContinuationMarkKey creates a fresh key.
func NewContinuationMarkKey(name string) *ContinuationMarkKey {
	return &ContinuationMarkKey{name: name}
}

func (k *ContinuationMarkKey) String() string {
	return fmt.Sprintf("#<continuation-mark-key:%s>", k.name)
}

// markCont is a frame that carries one mark and passes values through.
type markCont struct {
	key, val Value
	prev     Cont
}

func (m *markCont) Prev() Cont { return m.prev }

func (m *markCont) Plug(vals []Value, vm *VM) (Thunk, error) {
	return ReturnMultiVals(vals, vm, m.prev)
}

// WithContinuationMark returns the continuation a body should run in so
// that key maps to val for the body's extent. When cont already starts
// with mark frames (the body is in tail position with respect to another
// mark) a mark for the same key is replaced instead of stacked.
func WithContinuationMark(key, val Value, cont Cont) Cont {
	var top []*markCont
	for f := cont; f != nil; f = f.Prev() {
		m, ok := f.(*markCont)
		if !ok {
			break
		}
		if Eq(m.key, key) {
			rest := m.prev
			rest = &markCont{key: key, val: val, prev: rest}
			for i := len(top) - 1; i >= 0; i-- {
				rest = &markCont{key: top[i].key, val: top[i].val, prev: rest}
			}
			return rest
		}
		top = append(top, m)
	}
	return &markCont{key: key, val: val, prev: cont}
}

// ContinuationMarkFirst returns the innermost mark for key in cont.
func ContinuationMarkFirst(cont Cont, key Value) (Value, bool) {
	for f := cont; f != nil; f = f.Prev() {
		if m, ok := f.(*markCont); ok && Eq(m.key, key) {
			return m.val, true
		}
	}
	return nil, false
}

// ContinuationMarks returns every mark for key in cont, innermost first.
func ContinuationMarks(cont Cont, key Value) []Value {
	var out []Value
	for f := cont; f != nil; f = f.Prev() {
		if m, ok := f.(*markCont); ok && Eq(m.key, key) {
			out = append(out, m.val)
		}
	}
	return out
}

// MarkSet is the value of (current-continuation-marks). Frames never
// change, so holding the continuation is a snapshot.
type MarkSet struct {
	base
	cont Cont
}

func (*MarkSet) String() string { return "#<continuation-mark-set>" }

func (vm *VM) registerMarkPrimitives() {
	vm.define(NewSimplePrimitive("make-continuation-mark-key", 0, 1, func(args []Value) (Value, error) {
		name := "cmk"
		if len(args) == 1 {
			s, ok := args[0].(*Symbol)
			if !ok {
				return nil, typeError("make-continuation-mark-key", "expected symbol, given %s", args[0])
			}
			name = s.Name()
		}
		return NewContinuationMarkKey(name), nil
	}))

	vm.define(NewPrimitive("current-continuation-marks", 0, 0, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		return ReturnValue(&MarkSet{cont: cont}, vm, cont)
	}))

	vm.define(NewPrimitive("continuation-mark-set-first", 2, 3, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		frames, err := markSetFrames("continuation-mark-set-first", args[0], cont)
		if err != nil {
			return nil, err
		}
		if v, ok := ContinuationMarkFirst(frames, args[1]); ok {
			return ReturnValue(v, vm, cont)
		}
		if len(args) == 3 {
			return ReturnValue(args[2], vm, cont)
		}
		return ReturnValue(False, vm, cont)
	}))

	vm.define(NewPrimitive("continuation-mark-set->list", 2, 2, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		frames, err := markSetFrames("continuation-mark-set->list", args[0], cont)
		if err != nil {
			return nil, err
		}
		return ReturnValue(List(ContinuationMarks(frames, args[1])...), vm, cont)
	}))
}

// markSetFrames resolves a mark-set argument; #f means the current
// continuation.
func markSetFrames(who string, v Value, cont Cont) (Cont, error) {
	if v == Value(False) {
		return cont, nil
	}
	ms, ok := v.(*MarkSet)
	if !ok {
		return nil, typeError(who, "expected continuation-mark-set or #f, given %s", v)
	}
	return ms.cont, nil
}
