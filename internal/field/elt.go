// Package field implements the base field and extension field arithmetic
// that the circle-STARK protocol is built on: the Mersenne-31 prime field
// and its cubic extension, both satisfying the Elt constraint so that
// geometry, cfft and poseidon2 packages can be written once and used over
// either.
package field

// Elt is the arithmetic surface every field element type must expose.
// Circle-domain geometry and the circle-FFT are written against this
// interface so the same code runs over the base field and its extension.
type Elt[F any] interface {
	Add(F) F
	Sub(F) F
	Mul(F) F
	Square() F
	Double() F
	Neg() F
	// Inv returns the multiplicative inverse. Callers must not invoke it
	// on a zero element; that is a programmer error, not a data error.
	Inv() F
	IsZero() bool
	IsOne() bool
	Zero() F
	One() F
	Equal(F) bool
}
