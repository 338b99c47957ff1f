package cfft

import (
	"runtime"

	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/geometry"
)

// Order distinguishes the row ordering of a CircleEvaluations table.
// NaturalOrder rows line up with Domain.Points(); CfftOrder is the
// bit-reversed permutation circle-FFT's decimation step produces.
type Order int

const (
	NaturalOrder Order = iota
	CfftOrder
)

// CircleEvaluations pairs a domain with a row-major table of values,
// one row per domain point.
type CircleEvaluations struct {
	Domain geometry.CircleDomain
	Values *Matrix[field.M31]
	Order  Order
}

// NewNaturalCircleEvaluations wraps values (already in domain.Points()
// order) as a NaturalOrder table.
func NewNaturalCircleEvaluations(domain geometry.CircleDomain, values *Matrix[field.M31]) CircleEvaluations {
	if values.Height != domain.Size() {
		panic("cfft: evaluation table height must equal domain size")
	}
	return CircleEvaluations{Domain: domain, Values: values, Order: NaturalOrder}
}

// ToCfftOrder returns a copy of e with rows permuted into bit-reversed
// (cfft) order. Plonky3 keeps this a zero-cost lazy view; Go's matrices
// are permuted eagerly here for simplicity (see DESIGN.md).
func (e CircleEvaluations) ToCfftOrder() CircleEvaluations {
	if e.Order == CfftOrder {
		return e
	}
	return CircleEvaluations{Domain: e.Domain, Values: bitReverseRows(e.Values), Order: CfftOrder}
}

// ToNaturalOrder is the inverse of ToCfftOrder (bit-reversal is its own
// inverse).
func (e CircleEvaluations) ToNaturalOrder() CircleEvaluations {
	if e.Order == NaturalOrder {
		return e
	}
	return CircleEvaluations{Domain: e.Domain, Values: bitReverseRows(e.Values), Order: NaturalOrder}
}

func bitReverseRows(m *Matrix[field.M31]) *Matrix[field.M31] {
	n := m.Height
	logN := bitLen(n) - 1
	out := NewMatrix[field.M31](n, m.Width)
	for i := 0; i < n; i++ {
		copy(out.Row(bitReverse(i, logN)), m.Row(i))
	}
	return out
}

func bitReverse(i, logN int) int {
	r := 0
	for b := 0; b < logN; b++ {
		r = (r << 1) | (i & 1)
		i >>= 1
	}
	return r
}

func bitLen(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l + 1
}

// desiredNumJobs mirrors the teacher's fork-join heuristic (itself a port
// of rayon's current_num_threads-scaled chunking): split work into more
// pieces than there are CPUs so no single goroutine straggles.
func desiredNumJobs() int {
	return 16 * runtime.GOMAXPROCS(0)
}

// Interpolate returns the monomial-basis coefficients (in CircleBasis
// order) of the unique degree-<n polynomial agreeing with e on its
// domain, via the decimation-in-frequency circle-FFT: log_n butterfly
// layers, largest block first, each dividing by this layer's twiddle
// (batch-inverted once per layer rather than inverted per element),
// finished by a single divide-by-n pass (§4.1). e must be NaturalOrder.
//
// The twiddle table is built bit-reversed (NewTwiddleTable) and the
// butterfly network never permutes rows itself, so natural-order input
// produces natural-order (CircleBasis-ordered) coefficients directly --
// there is no separate bit-reversal pass, mirroring the teacher's own
// fold twiddle layout in internal/fri.CircleFoldConfig.
func (e CircleEvaluations) Interpolate() *Matrix[field.M31] {
	if e.Order != NaturalOrder {
		e = e.ToNaturalOrder()
	}

	n := e.Domain.Size()
	m := NewMatrix[field.M31](n, e.Values.Width)
	copy(m.Values, e.Values.Values)

	table := NewTwiddleTable(e.Domain)
	runDIFLayers(m, table.Inverse)

	nInv := field.NewM31(uint64(n)).Inv()
	for i := range m.Values {
		m.Values[i] = m.Values[i].Mul(nInv)
	}
	return m
}

// Evaluate computes evaluations of the polynomial with the given
// monomial-basis coefficients over domain, in NaturalOrder, via the
// decimation-in-time circle-FFT: the same log_n-layer twiddle table
// Interpolate uses, run in reverse layer order (smallest block first)
// with non-inverted twiddles (§4.1).
//
// When coeffs.Height is smaller than domain.Size() (the low-degree
// extension case: coeffs came from interpolating a smaller source
// domain), the butterfly layers whose block size exceeds coeffs.Height
// would only ever combine a real coefficient with an implicit zero pad,
// which leaves it unchanged regardless of the twiddle multiplied in --
// so those layers are skipped entirely and their effect (replicating the
// small evaluation table across every coset translate that tiles the
// larger domain) is applied directly instead.
func Evaluate(coeffs *Matrix[field.M31], domain geometry.CircleDomain) CircleEvaluations {
	n := domain.Size()
	h := coeffs.Height
	if h <= 0 || n%h != 0 || h&(h-1) != 0 {
		panic("cfft: coefficient height must be a power of two dividing the domain size")
	}

	table := NewTwiddleTable(domain)
	reversed := reverseLayers(table.Forward)

	if h == n {
		m := NewMatrix[field.M31](n, coeffs.Width)
		copy(m.Values, coeffs.Values)
		runDITLayers(m, reversed)
		return NewNaturalCircleEvaluations(domain, m)
	}

	logH := bitLen(h) - 1

	// reversed is ordered smallest-block-first; a layer's block size is
	// <= h exactly for its first logH entries (block sizes 2, 4, ..., h),
	// which is the same prefix runDITLayers would process before ever
	// reaching a block size that straddles real data and zero padding.
	real := NewMatrix[field.M31](h, coeffs.Width)
	copy(real.Values, coeffs.Values)
	runDITLayers(real, reversed[:logH])

	out := NewMatrix[field.M31](n, coeffs.Width)
	reps := n / h
	rowLen := h * coeffs.Width
	for r := 0; r < reps; r++ {
		copy(out.Values[r*rowLen:(r+1)*rowLen], real.Values)
	}
	return NewNaturalCircleEvaluations(domain, out)
}

func reverseLayers(layers [][]field.M31) [][]field.M31 {
	out := make([][]field.M31, len(layers))
	for i, l := range layers {
		out[len(layers)-1-i] = l
	}
	return out
}

// Extrapolate performs a low-degree extension of e onto a larger domain
// sharing e.Domain's coset shift: interpolate, then evaluate on the
// bigger domain.
func (e CircleEvaluations) Extrapolate(target geometry.CircleDomain) CircleEvaluations {
	if target.LogN < e.Domain.LogN {
		panic("cfft: extrapolation target must be at least as large as the source domain")
	}
	coeffs := e.Interpolate()
	return Evaluate(coeffs, target)
}

// EvaluateAtPoint evaluates every column of the coefficient matrix coeffs
// (as Interpolate returns it) at an out-of-domain point p (typically in
// the cubic extension field), by dotting each column with
// CircleBasis(p, logN). This is the identity the barycentric-
// agreement testable property (spec §8) is stated against.
func EvaluateAtPoint(coeffs *Matrix[field.M31], p geometry.Point[field.CEF], logN int) []field.CEF {
	basis := geometry.CircleBasis(p, logN)
	out := make([]field.CEF, coeffs.Width)
	for j := 0; j < coeffs.Width; j++ {
		acc := field.CEF{}
		for k := 0; k < coeffs.Height; k++ {
			acc = acc.Add(field.FromBase(coeffs.At(k, j)).Mul(basis[k]))
		}
		out[j] = acc
	}
	return out
}
