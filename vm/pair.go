package vm

// Pair is an immutable cons cell.
type Pair struct {
	base
	car, cdr Value
}

// Cons returns a new pair.
func Cons(car, cdr Value) *Pair {
	return &Pair{car: car, cdr: cdr}
}

func (*Pair) Immutable() bool { return true }

// Car returns the first element.
func (p *Pair) Car() Value { return p.car }

// Cdr returns the rest.
func (p *Pair) Cdr() Value { return p.cdr }

func (p *Pair) String() string { return show(p, printDepth) }

// List builds a proper list.
func List(vals ...Value) Value {
	var out Value = Null
	for i := len(vals) - 1; i >= 0; i-- {
		out = Cons(vals[i], out)
	}
	return out
}

// ListToSlice converts a proper list to a slice. ok is false for improper
// lists.
func ListToSlice(v Value) (vals []Value, ok bool) {
	for v != Null {
		p, isPair := v.(*Pair)
		if !isPair {
			return nil, false
		}
		vals = append(vals, p.car)
		v = p.cdr
	}
	return vals, true
}

// MPair is a mutable pair. An MPair is never equal? to a Pair.
type MPair struct {
	base
	car, cdr Value
}

// MCons returns a new mutable pair.
func MCons(car, cdr Value) *MPair {
	return &MPair{car: car, cdr: cdr}
}

func (p *MPair) Car() Value     { return p.car }
func (p *MPair) Cdr() Value     { return p.cdr }
func (p *MPair) SetCar(v Value) { p.car = v }
func (p *MPair) SetCdr(v Value) { p.cdr = v }
func (p *MPair) String() string { return show(p, printDepth) }
