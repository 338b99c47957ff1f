package field

// M31Prime is the Mersenne prime p = 2^31 - 1 underlying the base field.
// Its defining property for circle-STARKs is p ≡ 3 (mod 4), which gives the
// curve x^2+y^2=1 over F_p exactly p+1 = 2^31 points: a multiplicative-style
// group whose order is a full power of two, the circle group.
const M31Prime uint32 = (1 << 31) - 1

// M31 is an element of the Mersenne-31 field, canonically reduced to
// [0, M31Prime). The zero value is the additive identity.
type M31 uint32

// NewM31 reduces x modulo M31Prime.
func NewM31(x uint64) M31 {
	return M31(reduceM31(x))
}

// reduceM31 folds a value using 2^31 ≡ 1 (mod p), then removes at most one
// copy of p. Valid for any x that fits the trick's range, in particular
// products of two canonical field elements (< p^2 < 2^62).
func reduceM31(x uint64) uint32 {
	for x>>31 != 0 {
		x = (x & uint64(M31Prime)) + (x >> 31)
	}
	if uint32(x) >= M31Prime {
		x -= uint64(M31Prime)
	}
	return uint32(x)
}

func (a M31) Add(b M31) M31 {
	s := uint32(a) + uint32(b)
	if s >= M31Prime {
		s -= M31Prime
	}
	return M31(s)
}

func (a M31) Sub(b M31) M31 {
	if a >= b {
		return M31(uint32(a) - uint32(b))
	}
	return M31(M31Prime - uint32(b) + uint32(a))
}

func (a M31) Neg() M31 {
	if a == 0 {
		return 0
	}
	return M31(M31Prime - uint32(a))
}

func (a M31) Mul(b M31) M31 {
	return M31(reduceM31(uint64(a) * uint64(b)))
}

func (a M31) Square() M31 {
	return a.Mul(a)
}

func (a M31) Double() M31 {
	return a.Add(a)
}

// Inv returns a^-1 via Fermat's little theorem, a^(p-2). Panics on a zero
// input: inverting zero is a programmer error, never a proof-validity one.
func (a M31) Inv() M31 {
	if a.IsZero() {
		panic("field: inverse of zero M31 element")
	}
	return a.Exp(uint64(M31Prime - 2))
}

// Exp computes a^e by repeated squaring.
func (a M31) Exp(e uint64) M31 {
	result := M31(1)
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		e >>= 1
	}
	return result
}

func (a M31) IsZero() bool { return a == 0 }
func (a M31) IsOne() bool  { return a == 1 }
func (a M31) Zero() M31    { return 0 }
func (a M31) One() M31     { return 1 }
func (a M31) Equal(b M31) bool { return a == b }

// Legendre returns 1 if a is a nonzero quadratic residue, -1 if it is a
// nonresidue, and 0 if a is zero.
func (a M31) Legendre() int {
	if a.IsZero() {
		return 0
	}
	r := a.Exp(uint64(M31Prime-1) / 2)
	if r.IsOne() {
		return 1
	}
	return -1
}

// Sqrt returns a square root of a and true, when one exists. Because
// M31Prime ≡ 3 (mod 4), a square root can be read off directly as
// a^((p+1)/4) whenever a is a residue.
func (a M31) Sqrt() (M31, bool) {
	if a.IsZero() {
		return 0, true
	}
	if a.Legendre() != 1 {
		return 0, false
	}
	r := a.Exp((uint64(M31Prime) + 1) / 4)
	if r.Mul(r) != a {
		return 0, false
	}
	return r, true
}

func (a M31) Uint32() uint32 { return uint32(a) }
