package vm

import "strings"

// printDepth bounds how far String descends into compound values, which
// keeps cyclic data printable.
const printDepth = 4

func show(v Value, depth int) string {
	var sb strings.Builder
	writeValue(&sb, v, depth)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value, depth int) {
	if depth < 0 {
		sb.WriteString("...")
		return
	}
	switch x := v.(type) {
	case Wrapper:
		writeValue(sb, x.Target(), depth)
	case *Pair:
		sb.WriteByte('(')
		var cur Value = x
		for n := 0; ; n++ {
			cell, ok := cur.(*Pair)
			if !ok {
				break
			}
			if n > 0 {
				sb.WriteByte(' ')
			}
			if n >= 16 {
				sb.WriteString("...")
				cur = Null
				break
			}
			writeValue(sb, cell.car, depth-1)
			cur = cell.cdr
		}
		if cur != Null {
			sb.WriteString(" . ")
			writeValue(sb, cur, depth-1)
		}
		sb.WriteByte(')')
	case *MPair:
		sb.WriteString("(mcons ")
		writeValue(sb, x.car, depth-1)
		sb.WriteByte(' ')
		writeValue(sb, x.cdr, depth-1)
		sb.WriteByte(')')
	case *Vector:
		sb.WriteString("#(")
		for i, e := range x.items {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeValue(sb, e, depth-1)
		}
		sb.WriteByte(')')
	case *Box:
		sb.WriteString("#&")
		writeValue(sb, x.value, depth-1)
	case *Struct:
		sb.WriteString("#(struct:")
		sb.WriteString(x.typ.name)
		if x.typ.transparent {
			for _, f := range x.fields {
				sb.WriteByte(' ')
				writeValue(sb, f, depth-1)
			}
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(v.String())
	}
}
