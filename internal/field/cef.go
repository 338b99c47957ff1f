package field

// cefNonResidue is a fixed cubic non-residue in M31 used to build the
// extension CEF = M31[x]/(x^3 - cefNonResidue). 5 has no cube root in M31
// since 3 | (p-1) (p = 2^31-1) and 5^((p-1)/3) != 1, which makes x^3-5
// irreducible over the base field.
const cefNonResidue uint32 = 5

// CEF is an element of the cubic extension of M31, represented in the
// basis {1, x, x^2} with x^3 = cefNonResidue. FRI's commit-phase folding
// and out-of-domain point sampling operate over CEF so that soundness
// does not rely on the base field alone.
type CEF struct {
	A0, A1, A2 M31
}

// NewCEF builds the CEF element a0 + a1·x + a2·x² from its three
// base-field coefficients.
func NewCEF(a0, a1, a2 M31) CEF { return CEF{a0, a1, a2} }

// FromBase embeds a base-field element as a CEF constant.
func FromBase(a M31) CEF { return CEF{A0: a} }

func (a CEF) Add(b CEF) CEF {
	return CEF{a.A0.Add(b.A0), a.A1.Add(b.A1), a.A2.Add(b.A2)}
}

func (a CEF) Sub(b CEF) CEF {
	return CEF{a.A0.Sub(b.A0), a.A1.Sub(b.A1), a.A2.Sub(b.A2)}
}

func (a CEF) Neg() CEF {
	return CEF{a.A0.Neg(), a.A1.Neg(), a.A2.Neg()}
}

// Mul implements multiplication in M31[x]/(x^3-c), reducing x^3 -> c and
// x^4 -> c*x as the cross terms spill into the third limb.
func (a CEF) Mul(b CEF) CEF {
	c := NewM31(uint64(cefNonResidue))
	c0 := a.A0.Mul(b.A0).Add(c.Mul(a.A1.Mul(b.A2).Add(a.A2.Mul(b.A1))))
	c1 := a.A0.Mul(b.A1).Add(a.A1.Mul(b.A0)).Add(c.Mul(a.A2.Mul(b.A2)))
	c2 := a.A0.Mul(b.A2).Add(a.A1.Mul(b.A1)).Add(a.A2.Mul(b.A0))
	return CEF{c0, c1, c2}
}

func (a CEF) Square() CEF { return a.Mul(a) }
func (a CEF) Double() CEF { return a.Add(a) }

func (a CEF) IsZero() bool {
	return a.A0.IsZero() && a.A1.IsZero() && a.A2.IsZero()
}

func (a CEF) IsOne() bool {
	return a.A0.IsOne() && a.A1.IsZero() && a.A2.IsZero()
}

func (a CEF) Zero() CEF { return CEF{} }
func (a CEF) One() CEF  { return CEF{A0: 1} }

func (a CEF) Equal(b CEF) bool {
	return a.A0 == b.A0 && a.A1 == b.A1 && a.A2 == b.A2
}

// norm computes a0^3 + c*a1^3 + c^2*a2^3 - 3*c*a0*a1*a2, the field norm
// CEF -> M31, which is nonzero exactly when a is nonzero.
func (a CEF) norm() M31 {
	c := NewM31(uint64(cefNonResidue))
	c2 := c.Square()
	three := NewM31(3)
	t1 := a.A0.Square().Mul(a.A0)
	t2 := c.Mul(a.A1.Square().Mul(a.A1))
	t3 := c2.Mul(a.A2.Square().Mul(a.A2))
	t4 := three.Mul(c).Mul(a.A0).Mul(a.A1).Mul(a.A2)
	return t1.Add(t2).Add(t3).Sub(t4)
}

// Inv returns a^-1 via the adjugate of the "multiply by a" linear map.
// Panics on zero input, mirroring M31.Inv.
func (a CEF) Inv() CEF {
	if a.IsZero() {
		panic("field: inverse of zero CEF element")
	}
	c := NewM31(uint64(cefNonResidue))
	b0 := a.A0.Square().Sub(c.Mul(a.A1).Mul(a.A2))
	b1 := c.Mul(a.A2.Square()).Sub(a.A0.Mul(a.A1))
	b2 := a.A1.Square().Sub(a.A0.Mul(a.A2))
	nInv := a.norm().Inv()
	return CEF{b0.Mul(nInv), b1.Mul(nInv), b2.Mul(nInv)}
}
