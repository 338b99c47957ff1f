package cfft

import (
	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/geometry"
)

// YTwiddles returns the domain's layer-0 twiddle factors: the
// bit-reversed y-coordinates of the half-coset, batch-inverted. Since a
// layer-0 butterfly pair shares an x-coordinate and carries opposite y,
// the odd-in-y part of a folded pair is (a-b)*y_i^-1. Computed with a
// single batch inversion rather than one per element (§4.1).
func YTwiddles(domain geometry.CircleDomain) []field.M31 {
	return field.BatchMultiplicativeInverse(layer0Ys(domain))
}

// XTwiddles returns the domain's layer-1 twiddle factors: the
// bit-reversed x-coordinates of the half-coset, taken at stride 2 (the
// first half of the bit-reversed array), batch-inverted. Layers 2..
// log_n-1 are generated from these by the doubling map x -> 2x^2-1, each
// inverted only once its own values are complete (see NewTwiddleTable).
func XTwiddles(domain geometry.CircleDomain) []field.M31 {
	return field.BatchMultiplicativeInverse(layer1Xs(domain))
}

func layer0Ys(domain geometry.CircleDomain) []field.M31 {
	coset := domain.Coset0()
	ys := make([]field.M31, len(coset))
	for i, p := range coset {
		ys[i] = p.Y
	}
	return bitReverseM31Layer(ys)
}

func layer1Xs(domain geometry.CircleDomain) []field.M31 {
	coset := domain.Coset0()
	xs := make([]field.M31, len(coset))
	for i, p := range coset {
		xs[i] = p.X
	}
	rev := bitReverseM31Layer(xs)
	return rev[:len(rev)/2]
}

func bitReverseM31Layer(xs []field.M31) []field.M31 {
	logN := bitLen(len(xs)) - 1
	out := make([]field.M31, len(xs))
	for i, v := range xs {
		out[bitReverse(i, logN)] = v
	}
	return out
}

// TwiddleTable holds every circle-FFT butterfly layer's twiddle factors
// for a domain, in both the forward form Evaluate's DIT butterflies
// multiply by and the batch-inverted form Interpolate's DIF butterflies
// multiply by. Layer 0 is YTwiddles' source, layer 1 is XTwiddles'
// source, and each later layer applies the doubling map x -> 2x^2-1 to
// the previous layer's first half (§3's "Twiddle table", §4.1's twiddle
// recurrence); the table has log_n layers total, lengths
// n/2, n/4, ..., 1.
type TwiddleTable struct {
	Forward [][]field.M31
	Inverse [][]field.M31
}

// NewTwiddleTable precomputes every layer once per domain, so Interpolate
// and Evaluate each pay for it exactly once regardless of how many
// butterfly layers they run.
func NewTwiddleTable(domain geometry.CircleDomain) *TwiddleTable {
	y := layer0Ys(domain)
	x1 := layer1Xs(domain)
	if len(x1) == 0 {
		return &TwiddleTable{Forward: [][]field.M31{y}, Inverse: [][]field.M31{YTwiddles(domain)}}
	}

	layers := [][]field.M31{y, x1}
	cur := x1
	for len(cur) > 1 {
		half := cur[:len(cur)/2]
		next := make([]field.M31, len(half))
		for i, v := range half {
			next[i] = v.Square().Double().Sub(v.One())
		}
		layers = append(layers, next)
		cur = next
	}

	jobs := desiredNumJobs()
	inverse := make([][]field.M31, len(layers))
	inverse[0] = YTwiddles(domain)
	inverse[1] = XTwiddles(domain)
	for i := 2; i < len(layers); i++ {
		inverse[i] = field.ParallelBatchMultiplicativeInverse(layers[i], jobs)
	}

	return &TwiddleTable{Forward: layers, Inverse: inverse}
}
