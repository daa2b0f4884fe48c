package vm

import (
	"fmt"
	"strings"
)

// Inspector describes values for debugging, showing every wrapper layer
// between a value and the base value it stands in for.
type Inspector struct {
	vm *VM
}

// InspectionResult contains structured information about an inspected value.
type InspectionResult struct {
	Type     string              // base value type: Fixnum, Vector, Struct, Procedure, ...
	Value    string              // printed form
	Layers   []LayerInfo         // wrapper layers, outermost first
	Size     int                 // for collections: number of elements
	Elements []*InspectionResult // for collections: preview of elements (limited)
}

// LayerInfo describes one wrapper layer.
type LayerInfo struct {
	Kind       string
	Strength   string
	Handlers   int
	Overrides  int // struct wrappers: selector/handler pairs
	Properties []PropertyInfo
}

// PropertyInfo describes one property attached to a layer.
type PropertyInfo struct {
	Name  string
	ID    string
	Value string
}

// MaxElementPreview is the maximum number of collection elements to preview.
const MaxElementPreview = 10

// DefaultMaxDepth is the default recursion depth for inspection.
const DefaultMaxDepth = 3

// NewInspector creates a new Inspector attached to the given VM.
func NewInspector(vm *VM) *Inspector {
	return &Inspector{vm: vm}
}

// Inspect inspects a value with the default maximum depth.
func (i *Inspector) Inspect(v Value) *InspectionResult {
	return i.InspectDepth(v, DefaultMaxDepth)
}

// InspectDepth inspects v. Element previews stop when depth reaches 0.
func (i *Inspector) InspectDepth(v Value, depth int) *InspectionResult {
	result := &InspectionResult{Value: v.String()}

	for {
		w, ok := v.(Wrapper)
		if !ok {
			break
		}
		result.Layers = append(result.Layers, describeLayer(w))
		v = w.Target()
	}

	switch x := v.(type) {
	case Fixnum:
		result.Type = "Fixnum"
	case Flonum:
		result.Type = "Flonum"
	case *Bignum:
		result.Type = "Bignum"
	case *Bool:
		result.Type = "Boolean"
	case Char:
		result.Type = "Char"
	case *String:
		result.Type = "String"
		result.Size = len(x.s)
	case *Symbol:
		result.Type = "Symbol"
	case *Pair:
		result.Type = "Pair"
	case *MPair:
		result.Type = "MPair"
	case *Vector:
		result.Type = "Vector"
		result.Size = len(x.items)
		result.Elements = i.preview(x.items, depth)
	case *Box:
		result.Type = "Box"
		result.Size = 1
		result.Elements = i.preview([]Value{x.value}, depth)
	case *Struct:
		result.Type = "Struct"
		result.Size = len(x.fields)
		if x.typ.transparent {
			result.Elements = i.preview(x.fields, depth)
		}
	case *StructType:
		result.Type = "StructType"
	case *PropertyDescriptor:
		result.Type = "ImpersonatorProperty"
	case *ContinuationMarkKey:
		result.Type = "ContinuationMarkKey"
	case *Continuation:
		result.Type = "Continuation"
	case Procedure:
		result.Type = "Procedure"
	default:
		switch v {
		case Void:
			result.Type = "Void"
		case Null:
			result.Type = "Null"
		default:
			result.Type = fmt.Sprintf("%T", v)
		}
	}
	return result
}

func (i *Inspector) preview(items []Value, depth int) []*InspectionResult {
	if depth <= 0 {
		return nil
	}
	n := len(items)
	if n > MaxElementPreview {
		n = MaxElementPreview
	}
	out := make([]*InspectionResult, n)
	for j := 0; j < n; j++ {
		out[j] = i.InspectDepth(items[j], depth-1)
	}
	return out
}

func describeLayer(w Wrapper) LayerInfo {
	info := LayerInfo{
		Kind:     w.Kind().String(),
		Strength: w.Strength().String(),
	}
	switch x := w.(type) {
	case *ProcedureWrapper:
		info.Handlers = 1
	case *VectorWrapper, *BoxWrapper:
		info.Handlers = 2
	case *StructWrapper:
		info.Handlers = len(x.handlers)
		info.Overrides = len(x.overrides)
	}
	w.Properties().Each(func(key *PropertyDescriptor, val Value) {
		info.Properties = append(info.Properties, PropertyInfo{
			Name:  key.Name(),
			ID:    key.ID().String(),
			Value: val.String(),
		})
	})
	return info
}

// String returns a multi-line description.
func (r *InspectionResult) String() string {
	var sb strings.Builder
	r.write(&sb, 0)
	return sb.String()
}

func (r *InspectionResult) write(sb *strings.Builder, indent int) {
	prefix := strings.Repeat("  ", indent)

	sb.WriteString(prefix)
	sb.WriteString(r.Type)
	sb.WriteString(": ")
	sb.WriteString(r.Value)
	sb.WriteString("\n")

	for n, l := range r.Layers {
		fmt.Fprintf(sb, "%s  layer %d: %s %s, %d handler(s)", prefix, n, l.Strength, l.Kind, l.Handlers)
		if l.Overrides > 0 {
			fmt.Fprintf(sb, ", %d override(s)", l.Overrides)
		}
		sb.WriteString("\n")
		for _, p := range l.Properties {
			fmt.Fprintf(sb, "%s    %s = %s\n", prefix, p.Name, p.Value)
		}
	}

	if len(r.Elements) > 0 {
		fmt.Fprintf(sb, "%s  elements (showing %d of %d):\n", prefix, len(r.Elements), r.Size)
		for _, elem := range r.Elements {
			elem.write(sb, indent+2)
		}
	}
}
