package vm

import (
	"math"
	"math/big"
	"testing"
)

func TestFlonumString(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{1, "1.0"},
		{1.5, "1.5"},
		{-2, "-2.0"},
		{1e21, "1e+21"},
		{math.NaN(), "+nan.0"},
		{math.Inf(1), "+inf.0"},
		{math.Inf(-1), "-inf.0"},
	}
	for _, tt := range tests {
		if got := Flonum(tt.f).String(); got != tt.want {
			t.Errorf("Flonum(%v).String() = %q, want %q", tt.f, got, tt.want)
		}
	}
}

func TestNewIntegerNormalizes(t *testing.T) {
	if v := NewInteger(big.NewInt(42)); v != Fixnum(42) {
		t.Errorf("NewInteger(42) = %#v, want Fixnum(42)", v)
	}
	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	v := NewInteger(huge)
	b, ok := v.(*Bignum)
	if !ok {
		t.Fatalf("NewInteger(2^80) = %T, want *Bignum", v)
	}
	if b.Int().Cmp(huge) != 0 || b.String() != huge.String() {
		t.Errorf("Bignum = %s, want %s", b, huge)
	}
}

func TestEqv(t *testing.T) {
	nan := Flonum(math.NaN())
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"fixnums", Fixnum(3), Fixnum(3), true},
		{"nan", nan, Flonum(math.NaN()), true},
		{"signed zero", Flonum(0), Flonum(math.Copysign(0, -1)), false},
		{"exactness", Fixnum(2), Flonum(2), false},
		{"chars", Char('x'), Char('x'), true},
		{"fresh strings", NewString("a"), NewString("a"), false},
		{"void", Void, Void, true},
	}
	for _, tt := range tests {
		if got := Eqv(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Eqv = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTruthiness(t *testing.T) {
	for _, v := range []Value{True, Fixnum(0), Null, Void, NewString("")} {
		if !IsTruthy(v) {
			t.Errorf("IsTruthy(%s) = false", v)
		}
	}
	if IsTruthy(False) {
		t.Error("IsTruthy(#f) = true")
	}
}

func TestPrinting(t *testing.T) {
	pt := pointType()
	s, _ := pt.Make(Fixnum(1), NewString("a"))
	tests := []struct {
		v    Value
		want string
	}{
		{List(Fixnum(1), Fixnum(2)), "(1 2)"},
		{Cons(Fixnum(1), Fixnum(2)), "(1 . 2)"},
		{NewVector(Fixnum(1), Char('a')), `#(1 #\a)`},
		{NewBox(True), "#&#t"},
		{s, `#(struct:point 1 "a")`},
		{MCons(Fixnum(1), Null), "(mcons 1 ())"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSymbolInterning(t *testing.T) {
	st := NewSymbolTable()
	a := st.Intern("foo")
	b := st.Intern("foo")
	if a != b {
		t.Error("Intern should return the same symbol for the same name")
	}
	if _, ok := st.Lookup("bar"); ok {
		t.Error("Lookup should not create symbols")
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}
