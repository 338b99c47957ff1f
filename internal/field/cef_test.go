package field

import "testing"

func TestCEFMulInv(t *testing.T) {
	cases := []CEF{
		NewCEF(NewM31(1), NewM31(2), NewM31(3)),
		NewCEF(NewM31(7), NewM31(0), NewM31(0)),
		NewCEF(NewM31(0), NewM31(1), NewM31(0)),
		FromBase(NewM31(42)),
	}
	for _, a := range cases {
		inv := a.Inv()
		got := a.Mul(inv)
		if !got.IsOne() {
			t.Errorf("a * a^-1 != 1 for %+v, got %+v", a, got)
		}
	}
}

func TestCEFInvZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic inverting zero CEF")
		}
	}()
	CEF{}.Inv()
}

func TestCEFAddSubRoundTrip(t *testing.T) {
	a := NewCEF(NewM31(5), NewM31(9), NewM31(2))
	b := NewCEF(NewM31(100), NewM31(1), NewM31(7))
	if !a.Add(b).Sub(b).Equal(a) {
		t.Error("(a+b)-b != a")
	}
}

func TestCEFFromBaseIsRingHomomorphism(t *testing.T) {
	a, b := NewM31(11), NewM31(13)
	lhs := FromBase(a.Mul(b))
	rhs := FromBase(a).Mul(FromBase(b))
	if !lhs.Equal(rhs) {
		t.Error("FromBase does not commute with multiplication")
	}
}

func TestCEFDistributesOverMul(t *testing.T) {
	a := NewCEF(NewM31(1), NewM31(2), NewM31(3))
	b := NewCEF(NewM31(4), NewM31(5), NewM31(6))
	c := NewCEF(NewM31(7), NewM31(8), NewM31(9))

	lhs := a.Mul(b.Add(c))
	rhs := a.Mul(b).Add(a.Mul(c))
	if !lhs.Equal(rhs) {
		t.Errorf("a*(b+c) != a*b + a*c: got %+v vs %+v", lhs, rhs)
	}
}
