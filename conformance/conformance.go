// Package conformance holds executable checks of the wrapper and
// equivalence semantics. Each scenario drives a VM through its public
// primitives only, so the same checks run from tests and from the chap CLI.
package conformance

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/chaperone/vm"
)

var log = commonlog.GetLogger("chaperone.conformance")

// Scenario is one named check.
type Scenario struct {
	Name string
	Run  func(machine *vm.VM) error
}

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Run executes scenarios in order against machine.
func Run(machine *vm.VM, scenarios []Scenario) []Result {
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		start := time.Now()
		err := s.Run(machine)
		r := Result{Name: s.Name, Err: err, Duration: time.Since(start)}
		if err != nil {
			log.Errorf("%s: %v", s.Name, err)
		} else {
			log.Debugf("%s: ok", s.Name)
		}
		results = append(results, r)
	}
	return results
}

// Failures counts failed results.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed() {
			n++
		}
	}
	return n
}

// All returns the built-in scenarios.
func All() []Scenario {
	return []Scenario{
		{"impersonate-vector rejects immutable vectors", immutableVector},
		{"struct wrapping without overrides is identity", structIdentity},
		{"same-named property descriptors are distinct", distinctDescriptors},
		{"outermost property binding wins", lastWrapWins},
		{"identity handlers are transparent", identityTransparent},
		{"chaperone-of? and impersonator-of? on every kind", wrapperRelations},
		{"0.0 and -0.0 are never equivalent", signedZero},
		{"cyclic structures compare and terminate", cycles},
		{"application mark is visible only inside the call", applicationMark},
		{"chaperone-struct may intercept immutable fields", structAsymmetry},
		{"check handler may install a result wrapper", resultWrapper},
		{"custom equality survives continuation re-entry", reentry},
		{"chaperone results are verified when enabled", verification},
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var (
	identity = vm.NewPrimitive("identity", 0, vm.Variadic, func(args []vm.Value, machine *vm.VM, cont vm.Cont) (vm.Thunk, error) {
		return vm.ReturnMultiVals(args, machine, cont)
	})
	lastArg = vm.NewSimplePrimitive("last-arg", 1, vm.Variadic, func(args []vm.Value) (vm.Value, error) {
		return args[len(args)-1], nil
	})
	sum = vm.NewSimplePrimitive("sum", 0, vm.Variadic, func(args []vm.Value) (vm.Value, error) {
		var total vm.Fixnum
		for _, a := range args {
			n, ok := a.(vm.Fixnum)
			if !ok {
				return nil, fmt.Errorf("sum: not a fixnum: %s", a)
			}
			total += n
		}
		return total, nil
	})
)

func call1(machine *vm.VM, name string, args ...vm.Value) (vm.Value, error) {
	vals, err := machine.CallNamed(name, args...)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 {
		return nil, fmt.Errorf("%s returned %d values", name, len(vals))
	}
	return vals[0], nil
}

func holds(machine *vm.VM, relation string, a, b vm.Value) (bool, error) {
	v, err := call1(machine, relation, a, b)
	if err != nil {
		return false, err
	}
	return v == vm.Value(vm.True), nil
}

func expectKind(err, kind error) error {
	if err == nil {
		return fmt.Errorf("expected %v, got success", kind)
	}
	if !errors.Is(err, kind) {
		return fmt.Errorf("expected %v, got %w", kind, err)
	}
	return nil
}

func newProperty(machine *vm.VM, name string) (desc, pred, acc vm.Value, err error) {
	vals, err := machine.CallNamed("make-impersonator-property", vm.Intern(name))
	if err != nil {
		return nil, nil, nil, err
	}
	return vals[0], vals[1], vals[2], nil
}

func point() *vm.StructType {
	return vm.NewStructType("point", 2, vm.StructTypeOptions{Immutables: []int{1}, Transparent: true})
}

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

func immutableVector(machine *vm.VM) error {
	_, err := machine.CallNamed("impersonate-vector", vm.NewImmutableVector(vm.Fixnum(1)), lastArg, lastArg)
	if err := expectKind(err, vm.ErrImmutableTarget); err != nil {
		return err
	}
	if _, err := machine.CallNamed("chaperone-vector", vm.NewImmutableVector(vm.Fixnum(1)), lastArg, lastArg); err != nil {
		return fmt.Errorf("chaperone-vector: %w", err)
	}
	return nil
}

func structIdentity(machine *vm.VM) error {
	s, err := point().Make(vm.Fixnum(1), vm.Fixnum(2))
	if err != nil {
		return err
	}
	for _, prim := range []string{"impersonate-struct", "chaperone-struct"} {
		got, err := call1(machine, prim, s)
		if err != nil {
			return err
		}
		if got != vm.Value(s) {
			return fmt.Errorf("%s returned a new value", prim)
		}
	}
	return nil
}

func distinctDescriptors(machine *vm.VM) error {
	d1, p1, _, err := newProperty(machine, "p")
	if err != nil {
		return err
	}
	_, p2, _, err := newProperty(machine, "p")
	if err != nil {
		return err
	}
	w, err := call1(machine, "chaperone-box", vm.NewBox(vm.Null), lastArg, lastArg, d1, vm.True)
	if err != nil {
		return err
	}
	has1, err := machine.Call1(p1, w)
	if err != nil {
		return err
	}
	has2, err := machine.Call1(p2, w)
	if err != nil {
		return err
	}
	if has1 != vm.Value(vm.True) || has2 != vm.Value(vm.False) {
		return fmt.Errorf("predicates answered %s and %s, want #t and #f", has1, has2)
	}
	return nil
}

func lastWrapWins(machine *vm.VM) error {
	desc, _, acc, err := newProperty(machine, "p")
	if err != nil {
		return err
	}
	inner, err := call1(machine, "chaperone-vector", vm.NewVector(), lastArg, lastArg, desc, vm.Fixnum(1))
	if err != nil {
		return err
	}
	outer, err := call1(machine, "chaperone-vector", inner, lastArg, lastArg, desc, vm.Fixnum(2))
	if err != nil {
		return err
	}
	got, err := machine.Call1(acc, outer)
	if err != nil {
		return err
	}
	if got != vm.Fixnum(2) {
		return fmt.Errorf("accessor returned %s, want 2", got)
	}
	return nil
}

func identityTransparent(machine *vm.VM) error {
	st := point()
	s, err := st.Make(vm.Fixnum(3), vm.Fixnum(4))
	if err != nil {
		return err
	}
	vec := vm.NewVector(vm.Fixnum(5))
	box := vm.NewBox(vm.Fixnum(6))

	pw, err := call1(machine, "impersonate-procedure", sum, identity)
	if err != nil {
		return err
	}
	vw, err := call1(machine, "impersonate-vector", vec, lastArg, lastArg)
	if err != nil {
		return err
	}
	bw, err := call1(machine, "impersonate-box", box, lastArg, lastArg)
	if err != nil {
		return err
	}
	x, err := st.Accessor(0)
	if err != nil {
		return err
	}
	sw, err := call1(machine, "impersonate-struct", s, x, lastArg)
	if err != nil {
		return err
	}

	checks := []struct {
		what string
		run  func() (vm.Value, error)
		want vm.Value
	}{
		{"apply", func() (vm.Value, error) { return machine.Call1(pw, vm.Fixnum(1), vm.Fixnum(2)) }, vm.Fixnum(3)},
		{"vector-ref", func() (vm.Value, error) { return call1(machine, "vector-ref", vw, vm.Fixnum(0)) }, vm.Fixnum(5)},
		{"unbox", func() (vm.Value, error) { return call1(machine, "unbox", bw) }, vm.Fixnum(6)},
		{"struct field", func() (vm.Value, error) { return machine.Call1(x, sw) }, vm.Fixnum(3)},
	}
	for _, c := range checks {
		got, err := c.run()
		if err != nil {
			return fmt.Errorf("%s: %w", c.what, err)
		}
		if got != c.want {
			return fmt.Errorf("%s = %s, want %s", c.what, got, c.want)
		}
	}
	return nil
}

func wrapperRelations(machine *vm.VM) error {
	st := point()
	s, err := st.Make(vm.Fixnum(1), vm.Fixnum(2))
	if err != nil {
		return err
	}
	x, err := st.Accessor(0)
	if err != nil {
		return err
	}
	vec, box := vm.NewVector(vm.Fixnum(1)), vm.NewBox(vm.Fixnum(1))

	kinds := []struct {
		name     string
		base     vm.Value
		imp, chp string
		args     []vm.Value
	}{
		{"procedure", sum, "impersonate-procedure", "chaperone-procedure", []vm.Value{identity}},
		{"vector", vec, "impersonate-vector", "chaperone-vector", []vm.Value{lastArg, lastArg}},
		{"box", box, "impersonate-box", "chaperone-box", []vm.Value{lastArg, lastArg}},
		{"struct", s, "impersonate-struct", "chaperone-struct", []vm.Value{x, lastArg}},
	}
	for _, k := range kinds {
		chp, err := call1(machine, k.chp, append([]vm.Value{k.base}, k.args...)...)
		if err != nil {
			return err
		}
		imp, err := call1(machine, k.imp, append([]vm.Value{k.base}, k.args...)...)
		if err != nil {
			return err
		}
		want := []struct {
			relation string
			a        vm.Value
			holds    bool
		}{
			{"chaperone-of?", chp, true},
			{"impersonator-of?", chp, true},
			{"impersonator-of?", imp, true},
			{"chaperone-of?", imp, false},
		}
		for _, w := range want {
			got, err := holds(machine, w.relation, w.a, k.base)
			if err != nil {
				return err
			}
			if got != w.holds {
				return fmt.Errorf("%s: %s = %v, want %v", k.name, w.relation, got, w.holds)
			}
		}
	}
	return nil
}

func signedZero(machine *vm.VM) error {
	pos, neg := vm.Flonum(0), vm.Flonum(math.Copysign(0, -1))
	vec, err := call1(machine, "chaperone-vector", vm.NewVector(pos), lastArg, lastArg)
	if err != nil {
		return err
	}
	pairs := []struct{ a, b vm.Value }{
		{pos, neg},
		{vm.NewVector(pos), vm.NewVector(neg)},
		{vec, vm.NewVector(neg)},
	}
	for _, relation := range []string{"eqv?", "equal?", "chaperone-of?", "impersonator-of?"} {
		for i, p := range pairs {
			// eqv? does not descend into vectors.
			if relation == "eqv?" && i > 0 {
				continue
			}
			ok, err := holds(machine, relation, p.a, p.b)
			if err != nil {
				return err
			}
			if ok {
				return fmt.Errorf("(%s %s %s) = #t", relation, p.a, p.b)
			}
		}
	}
	return nil
}

func cycles(machine *vm.VM) error {
	selfRef := func() (vm.Value, error) {
		v := vm.NewVector(vm.Null)
		if _, err := machine.CallNamed("vector-set!", v, vm.Fixnum(0), v); err != nil {
			return nil, err
		}
		return v, nil
	}
	a, err := selfRef()
	if err != nil {
		return err
	}
	b, err := selfRef()
	if err != nil {
		return err
	}
	for _, relation := range []string{"equal?", "chaperone-of?", "impersonator-of?"} {
		ok, err := holds(machine, relation, a, b)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s on equal cycles = #f", relation)
		}
	}
	return nil
}

func applicationMark(machine *vm.VM) error {
	key, err := call1(machine, "make-continuation-mark-key", vm.Intern("k"))
	if err != nil {
		return err
	}
	mark, _ := machine.Lookup("impersonator-prop:application-mark")
	peek := vm.NewPrimitive("peek", 0, 0, func(args []vm.Value, machine *vm.VM, cont vm.Cont) (vm.Thunk, error) {
		if v, ok := vm.ContinuationMarkFirst(cont, key); ok {
			return vm.ReturnValue(v, machine, cont)
		}
		return vm.ReturnValue(vm.False, machine, cont)
	})
	w, err := call1(machine, "chaperone-procedure", peek, identity, mark, vm.Cons(key, vm.Fixnum(42)))
	if err != nil {
		return err
	}
	inside, err := machine.Call1(w)
	if err != nil {
		return err
	}
	outside, err := machine.Call1(peek)
	if err != nil {
		return err
	}
	if inside != vm.Fixnum(42) || outside != vm.Value(vm.False) {
		return fmt.Errorf("marks inside/outside = %s/%s, want 42/#f", inside, outside)
	}
	return nil
}

func structAsymmetry(machine *vm.VM) error {
	st := point()
	s, err := st.Make(vm.Fixnum(1), vm.Fixnum(2))
	if err != nil {
		return err
	}
	y, err := st.Accessor(1)
	if err != nil {
		return err
	}
	_, err = machine.CallNamed("impersonate-struct", s, y, lastArg)
	if err := expectKind(err, vm.ErrImmutableTarget); err != nil {
		return fmt.Errorf("impersonate-struct: %w", err)
	}
	if _, err := machine.CallNamed("chaperone-struct", s, y, lastArg); err != nil {
		return fmt.Errorf("chaperone-struct: %w", err)
	}
	return nil
}

func resultWrapper(machine *vm.VM) error {
	negate := vm.NewSimplePrimitive("negate", 1, 1, func(args []vm.Value) (vm.Value, error) {
		return -args[0].(vm.Fixnum), nil
	})
	check := vm.NewPrimitive("check", 0, vm.Variadic, func(args []vm.Value, machine *vm.VM, cont vm.Cont) (vm.Thunk, error) {
		return vm.ReturnMultiVals(append([]vm.Value{negate}, args...), machine, cont)
	})
	w, err := call1(machine, "impersonate-procedure", sum, check)
	if err != nil {
		return err
	}
	got, err := machine.Call1(w, vm.Fixnum(2), vm.Fixnum(3))
	if err != nil {
		return err
	}
	if got != vm.Fixnum(-5) {
		return fmt.Errorf("wrapped result = %s, want -5", got)
	}
	return nil
}

func reentry(machine *vm.VM) error {
	var saved vm.Value
	grab := vm.NewPrimitive("grab", 1, 1, func(args []vm.Value, machine *vm.VM, cont vm.Cont) (vm.Thunk, error) {
		saved = args[0]
		return vm.ReturnValue(vm.True, machine, cont)
	})
	capturing := vm.NewPrimitive("capturing-equal", 3, 3, func(args []vm.Value, machine *vm.VM, cont vm.Cont) (vm.Thunk, error) {
		return vm.CallCC(grab, machine, cont)
	})
	st := vm.NewStructType("cell", 1, vm.StructTypeOptions{Equal: capturing})
	a, err := st.Make(vm.Fixnum(1))
	if err != nil {
		return err
	}
	b, err := st.Make(vm.Fixnum(2))
	if err != nil {
		return err
	}

	var answers []vm.Value
	driver := vm.NewPrimitive("driver", 0, 0, func(args []vm.Value, machine *vm.VM, cont vm.Cont) (vm.Thunk, error) {
		return vm.Equal(vm.NewVector(a), vm.NewVector(b), vm.ModeEqual, machine, vm.ThenCont(cont, func(vals []vm.Value, machine *vm.VM, cont vm.Cont) (vm.Thunk, error) {
			answers = append(answers, vals...)
			if len(answers) == 1 {
				return vm.Apply(saved, []vm.Value{vm.False}, machine, cont)
			}
			return vm.ReturnValue(vm.Void, machine, cont)
		}))
	})
	if _, err := machine.Call(driver); err != nil {
		return err
	}
	if len(answers) != 2 || answers[0] != vm.Value(vm.True) || answers[1] != vm.Value(vm.False) {
		return fmt.Errorf("answers = %v, want [#t #f]", answers)
	}
	return nil
}

func verification(machine *vm.VM) error {
	cfg := machine.Config()
	cfg.CheckChaperones = true
	checking := vm.NewVMWithConfig(cfg)

	liar := vm.NewSimplePrimitive("liar", 3, 3, func(args []vm.Value) (vm.Value, error) {
		return vm.Fixnum(99), nil
	})
	w, err := call1(checking, "chaperone-vector", vm.NewVector(vm.Fixnum(1)), liar, lastArg)
	if err != nil {
		return err
	}
	_, err = checking.CallNamed("vector-ref", w, vm.Fixnum(0))
	return expectKind(err, vm.ErrChaperoneViolation)
}
