package fri

import (
	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/geometry"
)

// CircleFoldConfig is the circle-FFT-flavored GenericConfig: its FoldRow
// combines a pair of sibling evaluations the same way circle-FFT's
// decimation butterfly does, using the domain's own y/x coordinates
// (doubled layer by layer) as the fold twiddle instead of roots of unity.
type CircleFoldConfig struct {
	finalPolyLen int
	yTwiddle     []field.M31   // layer 0 (length domain.Size()/2)
	xTwiddles    [][]field.M31 // layer r>=1 (each half the length of the previous)
}

// NewCircleFoldConfig precomputes every round's twiddle table from the
// domain once, up front, so FoldRow is a plain array lookup per query.
func NewCircleFoldConfig(domain geometry.CircleDomain, finalPolyLen int) *CircleFoldConfig {
	coset := domain.Coset0()
	ys := make([]field.M31, len(coset))
	xs := make([]field.M31, len(coset))
	for i, p := range coset {
		ys[i] = p.Y
		xs[i] = p.X
	}
	logN := domain.LogN
	y := bitReverseM31(ys, logN-1)

	var xLayers [][]field.M31
	cur := bitReverseM31(xs, logN-1)
	for len(cur) > 1 {
		half := cur[:len(cur)/2]
		layer := make([]field.M31, len(half))
		copy(layer, half)
		xLayers = append(xLayers, layer)

		next := make([]field.M31, len(half))
		for i, v := range half {
			next[i] = v.Square().Double().Sub(v.One())
		}
		cur = next
	}

	return &CircleFoldConfig{finalPolyLen: finalPolyLen, yTwiddle: y, xTwiddles: xLayers}
}

func bitReverseM31(xs []field.M31, logN int) []field.M31 {
	out := make([]field.M31, len(xs))
	for i, v := range xs {
		out[bitReverseIndex(i, logN)] = v
	}
	return out
}

func bitReverseIndex(i, logN int) int {
	r := 0
	for b := 0; b < logN; b++ {
		r = (r << 1) | (i & 1)
		i >>= 1
	}
	return r
}

// FoldRow combines a sibling pair of evaluations into one evaluation on
// the next (half-size) domain: even = (e0+e1)/2, odd = (e0-e1)/(2*t),
// folded = even + beta*odd, where t is this round's twiddle.
func (c *CircleFoldConfig) FoldRow(index, logFoldedHeight int, beta field.CEF, evals [2]field.CEF) field.CEF {
	var t field.M31
	if len(c.yTwiddle) == 1<<logFoldedHeight {
		t = c.yTwiddle[index>>1]
	} else {
		found := false
		for _, layer := range c.xTwiddles {
			if len(layer) == 1<<logFoldedHeight {
				t = layer[index>>1]
				found = true
				break
			}
		}
		if !found {
			panic("fri: no twiddle layer matches the requested folded height")
		}
	}

	twoInv := field.NewM31(2).Inv()
	tInv := t.Inv()
	half := field.FromBase(twoInv)

	even := evals[0].Add(evals[1]).Mul(half)
	odd := evals[0].Sub(evals[1]).Mul(half).Mul(field.FromBase(tInv))
	return even.Add(beta.Mul(odd))
}

// FinalPolyLen returns the configured length of the final polynomial's
// evaluation table.
func (c *CircleFoldConfig) FinalPolyLen() int { return c.finalPolyLen }

// ExtraQueryIndexBits is always 0: the circle-FFT input layer's height
// equals the first fold round's source height exactly, so no extra
// low-order index bits are needed to address it (see GenericConfig).
func (c *CircleFoldConfig) ExtraQueryIndexBits() int { return 0 }

// NaturalToFoldOrder reorders domain-natural-order evaluations (index i
// holding the value at shift + i*gen, as cfft.Evaluate produces over a
// CircleDomain) into the index convention FoldRow expects: pairs
// (2j, 2j+1) where j, bit-reversed over log2(N/2) bits, selects the same
// twiddle NewCircleFoldConfig precomputed from Coset0. This is the
// contract between the evaluation layer (natural order) and the folding
// layer (built bit-reversed, mirroring how the teacher's own circle-FFT
// twiddle tables are laid out); every prover must reorder through this
// function before committing the base layer FRI folds against.
func NaturalToFoldOrder(evals []field.M31) []field.M31 {
	n := len(evals)
	half := n / 2
	logHalf := bitLenInt(half) - 1
	out := make([]field.M31, n)
	for i := 0; i < half; i++ {
		j := bitReverseIndex(i, logHalf)
		out[2*j] = evals[i]
		out[2*j+1] = evals[i+half]
	}
	return out
}

func bitLenInt(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l + 1
}
