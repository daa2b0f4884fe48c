// Package snapshot serializes inspections of wrapped values to canonical
// CBOR so they can be stored and compared byte for byte.
package snapshot

import (
	"fmt"

	"github.com/chazu/chaperone/vm"
	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Version is written into every snapshot.
const Version = 1

// Snapshot is the wire form of a vm.InspectionResult.
type Snapshot struct {
	Version  int         `cbor:"1,keyasint"`
	Type     string      `cbor:"2,keyasint"`
	Value    string      `cbor:"3,keyasint"`
	Layers   []Layer     `cbor:"4,keyasint,omitempty"`
	Size     int         `cbor:"5,keyasint,omitempty"`
	Elements []*Snapshot `cbor:"6,keyasint,omitempty"`
}

// Layer is the wire form of one wrapper layer.
type Layer struct {
	Kind       string     `cbor:"1,keyasint"`
	Strength   string     `cbor:"2,keyasint"`
	Handlers   int        `cbor:"3,keyasint"`
	Overrides  int        `cbor:"4,keyasint,omitempty"`
	Properties []Property `cbor:"5,keyasint,omitempty"`
}

// Property is the wire form of one attached property.
type Property struct {
	Name  string `cbor:"1,keyasint"`
	ID    string `cbor:"2,keyasint"`
	Value string `cbor:"3,keyasint"`
}

// FromInspection converts an inspection result.
func FromInspection(r *vm.InspectionResult) *Snapshot {
	if r == nil {
		return nil
	}
	s := &Snapshot{
		Version: Version,
		Type:    r.Type,
		Value:   r.Value,
		Size:    r.Size,
	}
	for _, l := range r.Layers {
		layer := Layer{
			Kind:      l.Kind,
			Strength:  l.Strength,
			Handlers:  l.Handlers,
			Overrides: l.Overrides,
		}
		for _, p := range l.Properties {
			layer.Properties = append(layer.Properties, Property(p))
		}
		s.Layers = append(s.Layers, layer)
	}
	for _, e := range r.Elements {
		s.Elements = append(s.Elements, FromInspection(e))
	}
	return s
}

// Take inspects v and converts the result.
func Take(machine *vm.VM, v vm.Value) *Snapshot {
	return FromInspection(vm.NewInspector(machine).Inspect(v))
}

// Marshal serializes a Snapshot to canonical CBOR bytes.
func Marshal(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// Unmarshal deserializes a Snapshot from CBOR bytes.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	if s.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", s.Version)
	}
	return &s, nil
}
