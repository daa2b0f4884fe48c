package vm

import (
	"strings"
	"testing"
)

func TestInspectorBaseValues(t *testing.T) {
	inspector := NewInspector(NewVM())

	tests := []struct {
		v        Value
		wantType string
	}{
		{Fixnum(42), "Fixnum"},
		{Flonum(1.5), "Flonum"},
		{True, "Boolean"},
		{NewString("s"), "String"},
		{Intern("sym"), "Symbol"},
		{List(Fixnum(1)), "Pair"},
		{Void, "Void"},
		{Null, "Null"},
		{add, "Procedure"},
		{NewContinuationMarkKey("k"), "ContinuationMarkKey"},
	}
	for _, tt := range tests {
		result := inspector.Inspect(tt.v)
		if result.Type != tt.wantType {
			t.Errorf("Inspect(%s).Type = %q, want %q", tt.v, result.Type, tt.wantType)
		}
		if len(result.Layers) != 0 {
			t.Errorf("Inspect(%s) has %d layers, want 0", tt.v, len(result.Layers))
		}
	}
}

func TestInspectorLayers(t *testing.T) {
	vm := NewVM()
	inspector := NewInspector(vm)
	desc, _, _ := makeProperty(t, vm, "owner")

	vec := NewVector(Fixnum(1), Fixnum(2))
	c := call(t, vm, "chaperone-vector", vec, lastArg, lastArg)
	i := call(t, vm, "impersonate-vector", c, lastArg, lastArg, desc, Intern("alice"))

	result := inspector.Inspect(i)
	if result.Type != "Vector" || result.Size != 2 {
		t.Errorf("Type/Size = %s/%d, want Vector/2", result.Type, result.Size)
	}
	if len(result.Layers) != 2 {
		t.Fatalf("layers = %d, want 2", len(result.Layers))
	}

	outer := result.Layers[0]
	if outer.Strength != "impersonator" || outer.Kind != "vector" || outer.Handlers != 2 {
		t.Errorf("outer layer = %+v", outer)
	}
	if len(outer.Properties) != 1 || outer.Properties[0].Name != "owner" ||
		outer.Properties[0].Value != "alice" || outer.Properties[0].ID != desc.ID().String() {
		t.Errorf("outer properties = %+v", outer.Properties)
	}
	if result.Layers[1].Strength != "chaperone" {
		t.Errorf("inner layer = %+v", result.Layers[1])
	}
	if len(result.Elements) != 2 || result.Elements[0].Value != "1" {
		t.Errorf("elements = %+v", result.Elements)
	}

	text := result.String()
	for _, want := range []string{"Vector: #(1 2)", "layer 0: impersonator vector", "owner = alice", "elements (showing 2 of 2)"} {
		if !strings.Contains(text, want) {
			t.Errorf("String() missing %q:\n%s", want, text)
		}
	}
}

func TestInspectorStructOverrides(t *testing.T) {
	vm := NewVM()
	st := pointType()
	s := mustMake(t, st, Fixnum(1), Fixnum(2))
	setX, _ := st.Mutator(0)
	w := call(t, vm, "chaperone-struct", s, accessor(t, st, 0), lastArg, setX, lastArg)

	result := NewInspector(vm).Inspect(w)
	if result.Type != "Struct" || len(result.Layers) != 1 {
		t.Fatalf("result = %+v", result)
	}
	if l := result.Layers[0]; l.Overrides != 2 || l.Handlers != 2 || l.Kind != "struct" {
		t.Errorf("layer = %+v", l)
	}
}

func TestInspectorDepthLimit(t *testing.T) {
	inner := NewVector(Fixnum(1))
	outer := NewVector(inner)
	result := NewInspector(NewVM()).InspectDepth(outer, 1)

	if len(result.Elements) != 1 {
		t.Fatalf("elements = %d, want 1", len(result.Elements))
	}
	if result.Elements[0].Elements != nil {
		t.Error("nested elements should stop at depth 0")
	}
}
