// Package geometry implements the circle-group points and domains that
// circle-STARKs evaluate polynomials over: points (x,y) on x^2+y^2=1,
// generic over any field satisfying field.Elt so the same code serves the
// base field M31 and its cubic extension CEF.
package geometry

import "github.com/vybium/circle-stark-core/internal/field"

// Point is a point on the circle curve x^2+y^2=1 over F. The circle group
// operation is complex-number-style multiplication: (x1,y1)*(x2,y2) =
// (x1x2-y1y2, x1y2+y1x2), which keeps points on the curve and is what lets
// "doubling" (self-addition) serve the same role multiplicative squaring
// plays in the usual roots-of-unity FFT.
type Point[F field.Elt[F]] struct {
	X, Y F
}

// Identity returns the group identity (1,0), built from an arbitrary
// sample element purely to reach its Zero/One methods.
func Identity[F field.Elt[F]](sample F) Point[F] {
	return Point[F]{X: sample.One(), Y: sample.Zero()}
}

// Add is the circle group operation.
func (p Point[F]) Add(q Point[F]) Point[F] {
	return Point[F]{
		X: p.X.Mul(q.X).Sub(p.Y.Mul(q.Y)),
		Y: p.X.Mul(q.Y).Add(p.Y.Mul(q.X)),
	}
}

// Double returns p+p. Doubling a point on the circle is algebraically the
// Chebyshev map x -> 2x^2-1 on the x-coordinate, the same recurrence the
// twiddle tables are built from.
func (p Point[F]) Double() Point[F] {
	return Point[F]{
		X: p.X.Square().Double().Sub(p.X.One()),
		Y: p.X.Mul(p.Y).Double(),
	}
}

// Neg returns the group inverse of p, which for a point on the unit circle
// is its conjugate (x,-y).
func (p Point[F]) Neg() Point[F] {
	return Point[F]{X: p.X, Y: p.Y.Neg()}
}

// Sub returns p + (-q).
func (p Point[F]) Sub(q Point[F]) Point[F] {
	return p.Add(q.Neg())
}

// MulScalar computes n*p under the group operation via double-and-add.
func (p Point[F]) MulScalar(n uint64) Point[F] {
	result := Identity(p.X)
	base := p
	for n > 0 {
		if n&1 == 1 {
			result = result.Add(base)
		}
		base = base.Double()
		n >>= 1
	}
	return result
}

// IsIdentity reports whether p is the group identity (1,0).
func (p Point[F]) IsIdentity() bool {
	return p.X.IsOne() && p.Y.IsZero()
}

// FromProjectiveLine maps a field element t to a circle point via the
// standard stereographic parametrization ((1-t^2)/(1+t^2), 2t/(1+t^2)),
// the inverse of the projection used to move computations between the
// circle and the projective line.
func FromProjectiveLine[F field.Elt[F]](t F) Point[F] {
	one := t.One()
	tSq := t.Square()
	denomInv := one.Add(tSq).Inv()
	return Point[F]{
		X: one.Sub(tSq).Mul(denomInv),
		Y: t.Double().Mul(denomInv),
	}
}

// VanishingEval evaluates v_n at x: the degree-2^(logN-1) polynomial whose
// zero set is exactly the x-coordinates of a standard-position order-2^logN
// subgroup, computed as the product of 2*x_k across the logN-step doubling
// recurrence x_0=x, x_{k+1}=2x_k^2-1. Used both to build FRI's folding
// weights and to correct barycentric evaluation for the domain's coset
// shift.
func VanishingEval[F field.Elt[F]](x F, logN int) F {
	result := x.One()
	for k := 0; k < logN; k++ {
		result = result.Mul(x.Double())
		x = x.Square().Double().Sub(x.One())
	}
	return result
}

// CircleBasis returns the 2^logN-entry monomial-style basis
// {1, y, x*1, x*y, x2*1, x2*y, ...} built by repeatedly doubling the
// x-coordinate under x -> 2x^2-1 and multiplying it into the basis built
// so far. Interpolated coefficients dotted with this basis reproduce
// point evaluation off the circle-FFT's natural domain (spec's
// barycentric-agreement property).
func CircleBasis[F field.Elt[F]](p Point[F], logN int) []F {
	b := make([]F, 1, 1<<logN)
	b[0] = p.X.One()
	if logN == 0 {
		return b
	}
	b = append(b, p.Y)
	x := p.X
	for i := 0; i < logN-1; i++ {
		n := len(b)
		for j := 0; j < n; j++ {
			b = append(b, b[j].Mul(x))
		}
		x = x.Square().Double().Sub(x.One())
	}
	return b
}
