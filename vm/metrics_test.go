package vm

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountWrappers(t *testing.T) {
	vm := NewVM()
	m := vm.Metrics()

	vec := call(t, vm, "chaperone-vector", NewVector(Fixnum(1)), lastArg, lastArg)
	call(t, vm, "chaperone-vector", vec, lastArg, lastArg)
	call(t, vm, "impersonate-box", NewBox(Null), lastArg, lastArg)

	if got := testutil.ToFloat64(m.WrappersCreated(KindVector, Chaperone)); got != 2 {
		t.Errorf("vector chaperones = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.WrappersCreated(KindBox, Impersonator)); got != 1 {
		t.Errorf("box impersonators = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.WrappersCreated(KindStruct, Chaperone)); got != 0 {
		t.Errorf("struct chaperones = %v, want 0", got)
	}
}

func TestMetricsCountHandlersAndComparisons(t *testing.T) {
	vm := NewVM()
	m := vm.Metrics()

	w := call(t, vm, "chaperone-vector", NewVector(Fixnum(1)), lastArg, lastArg)
	call(t, vm, "vector-ref", w, Fixnum(0))
	call(t, vm, "vector-ref", w, Fixnum(0))
	call(t, vm, "vector-set!", w, Fixnum(0), Fixnum(2))
	call(t, vm, "chaperone-of?", w, NewVector(Fixnum(2)))

	if got := testutil.ToFloat64(m.HandlerInvocations("vector-ref")); got != 2 {
		t.Errorf("vector-ref handlers = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HandlerInvocations("vector-set!")); got != 1 {
		t.Errorf("vector-set! handlers = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Comparisons(ModeChaperoneOf)); got != 1 {
		t.Errorf("chaperone-of? comparisons = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.EqualSteps()); got < 3 {
		t.Errorf("equal steps = %v, want at least 3", got)
	}
}

func TestMetricsRegistryIsPerVM(t *testing.T) {
	a, b := NewVM(), NewVM()
	call(t, a, "chaperone-box", NewBox(Null), lastArg, lastArg)

	if got := testutil.ToFloat64(b.Metrics().WrappersCreated(KindBox, Chaperone)); got != 0 {
		t.Errorf("second VM counted %v wrappers, want 0", got)
	}
	families, err := a.Metrics().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "chaperone_wrappers_created_total" {
			found = true
		}
	}
	if !found {
		t.Error("chaperone_wrappers_created_total not gathered")
	}
}
