package vm

import (
	"math"
	"math/big"
	"strconv"
)

// Value is the capability view every runtime value exposes.
//
// The rest of the runtime is written against these capabilities rather
// than concrete variants, which is what lets wrappers stand in for the
// values they wrap. Wrappers answer Callable, Immutable and StructType by
// asking their target.
type Value interface {
	Callable() bool
	Immutable() bool
	IsImpersonator() bool
	IsChaperone() bool
	StructType() *StructType
	String() string
}

// base supplies the default answers for non-wrapper values.
type base struct{}

func (base) Callable() bool          { return false }
func (base) Immutable() bool         { return false }
func (base) IsImpersonator() bool    { return false }
func (base) IsChaperone() bool       { return false }
func (base) StructType() *StructType { return nil }

// ---------------------------------------------------------------------------
// Singletons
// ---------------------------------------------------------------------------

type voidValue struct{ base }

func (*voidValue) Immutable() bool { return true }
func (*voidValue) String() string  { return "#<void>" }

type nullValue struct{ base }

func (*nullValue) Immutable() bool { return true }
func (*nullValue) String() string  { return "()" }

// Bool is a boolean. Only the True and False singletons exist.
type Bool struct {
	base
	b bool
}

func (*Bool) Immutable() bool { return true }

func (v *Bool) String() string {
	if v.b {
		return "#t"
	}
	return "#f"
}

// Pre-defined singletons.
var (
	Void  Value = &voidValue{}
	Null  Value = &nullValue{}
	True        = &Bool{b: true}
	False       = &Bool{b: false}
)

// FromBool returns True or False.
func FromBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// IsTruthy reports whether v counts as true in a conditional. Only #f is
// false.
func IsTruthy(v Value) bool {
	return v != Value(False)
}

// ---------------------------------------------------------------------------
// Numbers
// ---------------------------------------------------------------------------

// Fixnum is an exact integer that fits in 64 bits.
type Fixnum int64

func (Fixnum) Callable() bool          { return false }
func (Fixnum) Immutable() bool         { return true }
func (Fixnum) IsImpersonator() bool    { return false }
func (Fixnum) IsChaperone() bool       { return false }
func (Fixnum) StructType() *StructType { return nil }
func (n Fixnum) String() string        { return strconv.FormatInt(int64(n), 10) }

// Flonum is an inexact real.
type Flonum float64

func (Flonum) Callable() bool          { return false }
func (Flonum) Immutable() bool         { return true }
func (Flonum) IsImpersonator() bool    { return false }
func (Flonum) IsChaperone() bool       { return false }
func (Flonum) StructType() *StructType { return nil }

func (f Flonum) String() string {
	x := float64(f)
	switch {
	case math.IsNaN(x):
		return "+nan.0"
	case math.IsInf(x, 1):
		return "+inf.0"
	case math.IsInf(x, -1):
		return "-inf.0"
	}
	s := strconv.FormatFloat(x, 'g', -1, 64)
	for _, c := range s {
		if c == '.' || c == 'e' {
			return s
		}
	}
	return s + ".0"
}

// Bignum is an exact integer outside the Fixnum range.
type Bignum struct {
	base
	v *big.Int
}

// NewInteger returns the exact integer n, as a Fixnum when it fits.
func NewInteger(n *big.Int) Value {
	if n.IsInt64() {
		return Fixnum(n.Int64())
	}
	return &Bignum{v: new(big.Int).Set(n)}
}

func (*Bignum) Immutable() bool  { return true }
func (b *Bignum) String() string { return b.v.String() }

// Int returns a copy of the magnitude.
func (b *Bignum) Int() *big.Int { return new(big.Int).Set(b.v) }

// IsNumber reports whether v is a number.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Fixnum, Flonum, *Bignum:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Characters and strings
// ---------------------------------------------------------------------------

// Char is a Unicode scalar value.
type Char rune

func (Char) Callable() bool          { return false }
func (Char) Immutable() bool         { return true }
func (Char) IsImpersonator() bool    { return false }
func (Char) IsChaperone() bool       { return false }
func (Char) StructType() *StructType { return nil }
func (c Char) String() string        { return "#\\" + string(rune(c)) }

// String is a string value. Literal strings are immutable.
type String struct {
	base
	s         []rune
	immutable bool
}

// NewString returns a fresh mutable string.
func NewString(s string) *String {
	return &String{s: []rune(s)}
}

// NewImmutableString returns an immutable string.
func NewImmutableString(s string) *String {
	return &String{s: []rune(s), immutable: true}
}

func (s *String) Immutable() bool { return s.immutable }
func (s *String) String() string  { return strconv.Quote(string(s.s)) }

// Text returns the string contents.
func (s *String) Text() string { return string(s.s) }

// ---------------------------------------------------------------------------
// Identity and eqv
// ---------------------------------------------------------------------------

// Eq reports object identity. Fixnums, flonums and chars are immediates and
// compare by value.
func Eq(a, b Value) bool {
	return a == b
}

// Eqv is Eq extended with numeric and character equivalence: numbers are
// eqv when they have the same exactness and the same value, with every NaN
// eqv to every other NaN and 0.0 distinct from -0.0.
func Eqv(a, b Value) bool {
	// Flonums compare by bit pattern; interface equality would merge the
	// two zeros.
	if x, ok := a.(Flonum); ok {
		y, ok := b.(Flonum)
		if !ok {
			return false
		}
		fx, fy := float64(x), float64(y)
		if math.IsNaN(fx) && math.IsNaN(fy) {
			return true
		}
		return math.Float64bits(fx) == math.Float64bits(fy)
	}
	if a == b {
		return true
	}
	switch x := a.(type) {
	case *Bignum:
		y, ok := b.(*Bignum)
		return ok && x.v.Cmp(y.v) == 0
	}
	return false
}
