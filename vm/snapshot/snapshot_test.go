package snapshot

import (
	"bytes"
	"testing"

	"github.com/chazu/chaperone/vm"
	"github.com/google/go-cmp/cmp"
)

func lastArg() vm.Value {
	return vm.NewSimplePrimitive("last-arg", 1, vm.Variadic, func(args []vm.Value) (vm.Value, error) {
		return args[len(args)-1], nil
	})
}

func onion(t *testing.T, machine *vm.VM) (vm.Value, *vm.PropertyDescriptor) {
	t.Helper()
	desc := vm.NewPropertyDescriptor("label")
	c, err := machine.MakeVectorWrapper(vm.Chaperone, []vm.Value{vm.NewVector(vm.Fixnum(1), vm.NewString("x")), lastArg(), lastArg()})
	if err != nil {
		t.Fatalf("chaperone: %v", err)
	}
	i, err := machine.MakeVectorWrapper(vm.Impersonator, []vm.Value{c, lastArg(), lastArg(), desc, vm.Intern("outer")})
	if err != nil {
		t.Fatalf("impersonate: %v", err)
	}
	return i, desc
}

func TestSnapshotRoundTrip(t *testing.T) {
	machine := vm.NewVM()
	v, desc := onion(t, machine)

	s := Take(machine, v)
	data, err := Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	want := &Snapshot{
		Version: Version,
		Type:    "Vector",
		Value:   `#(1 "x")`,
		Size:    2,
		Layers: []Layer{
			{Kind: "vector", Strength: "impersonator", Handlers: 2, Properties: []Property{
				{Name: "label", ID: desc.ID().String(), Value: "outer"},
			}},
			{Kind: "vector", Strength: "chaperone", Handlers: 2},
		},
		Elements: []*Snapshot{
			{Version: Version, Type: "Fixnum", Value: "1"},
			{Version: Version, Type: "String", Value: `"x"`, Size: 1},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotIsCanonical(t *testing.T) {
	machine := vm.NewVM()
	v, _ := onion(t, machine)

	a, err := Marshal(Take(machine, v))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	b, err := Marshal(Take(machine, v))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("two snapshots of the same value should encode identically")
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	if _, err := Unmarshal([]byte{0xff, 0x00}); err == nil {
		t.Error("Unmarshal should fail on invalid CBOR")
	}
	data, err := Marshal(&Snapshot{Version: Version + 1, Type: "Fixnum"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if _, err := Unmarshal(data); err == nil {
		t.Error("Unmarshal should reject an unknown version")
	}
}

func TestFromInspectionNil(t *testing.T) {
	if FromInspection(nil) != nil {
		t.Error("FromInspection(nil) should be nil")
	}
}
