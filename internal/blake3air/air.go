package blake3air

import "github.com/vybium/circle-stark-core/internal/field"

// two16 is the limb weight modular addition constraints need: a 32-bit
// word is stored as [lo16, hi16] with value lo + hi*2^16.
var two16 = field.NewM31(1 << 16)

// EvalLimbAdditionConstraints returns the AIR residuals for a single
// modular addition a+b=sum of 32-bit words stored as 16-bit limb pairs,
// using carry16/carry32 as the witnessed overflow bits: every residual
// must be zero on a valid trace. This is the 2-operand addition shape
// Blake3's "c = c+d" steps take (columns.rs's sum_2_aux/sum_4_aux).
func EvalLimbAdditionConstraints(a, b, sum [2]field.M31, carry32, carry16 field.M31) []field.M31 {
	one := field.NewM31(1)

	lowCheck := a[0].Add(b[0]).Sub(sum[0]).Sub(carry16.Mul(two16))
	highCheck := a[1].Add(b[1]).Add(carry16).Sub(sum[1]).Sub(carry32.Mul(two16))
	carry16Bool := carry16.Mul(carry16.Sub(one))
	carry32Bool := carry32.Mul(carry32.Sub(one))

	return []field.M31{lowCheck, highCheck, carry16Bool, carry32Bool}
}

// EvalLimb3AdditionConstraints generalizes EvalLimbAdditionConstraints to
// three summands (a+b+m=sum), the shape every first-half addition in
// Blake3's G function takes (state[a] += state[b] + message word;
// columns.rs's sum_1_aux/sum_3_aux).
func EvalLimb3AdditionConstraints(a, b, m, sum [2]field.M31, carry32, carry16 field.M31) []field.M31 {
	one := field.NewM31(1)

	lowCheck := a[0].Add(b[0]).Add(m[0]).Sub(sum[0]).Sub(carry16.Mul(two16))
	highCheck := a[1].Add(b[1]).Add(m[1]).Add(carry16).Sub(sum[1]).Sub(carry32.Mul(two16))
	carry16Bool := carry16.Mul(carry16.Sub(one))
	carry32Bool := carry32.Mul(carry32.Sub(one))

	return []field.M31{lowCheck, highCheck, carry16Bool, carry32Bool}
}

// LimbsFromBits reconstructs the 32-bit value (as limb pair) that a
// 32-entry boolean decomposition encodes, least-significant bit first.
func LimbsFromBits(bits [32]field.M31) [2]field.M31 {
	var lo, hi field.M31
	weight := field.NewM31(1)
	for i := 0; i < 16; i++ {
		lo = lo.Add(bits[i].Mul(weight))
		weight = weight.Double()
	}
	weight = field.NewM31(1)
	for i := 16; i < 32; i++ {
		hi = hi.Add(bits[i].Mul(weight))
		weight = weight.Double()
	}
	return [2]field.M31{lo, hi}
}

// EvalBitDecompositionConstraints checks that bits is a valid boolean
// decomposition of limbs (every entry is 0 or 1, and the weighted sum
// reconstructs the limb pair): the link between a state row's limb
// representation and its bit representation that rotate-right shuffle
// constraints are checked against.
func EvalBitDecompositionConstraints(limbs [2]field.M31, bits [32]field.M31) []field.M31 {
	one := field.NewM31(1)
	residuals := make([]field.M31, 0, 34)
	for _, b := range bits {
		residuals = append(residuals, b.Mul(b.Sub(one)))
	}
	reconstructed := LimbsFromBits(bits)
	residuals = append(residuals,
		reconstructed[0].Sub(limbs[0]),
		reconstructed[1].Sub(limbs[1]),
	)
	return residuals
}

// EvalRotateRightConstraints checks that outBits is inBits rotated right
// by n positions, bit by bit: the constraint vocabulary Blake3's G
// function rotation steps (16, 12, 8, 7) are built from.
func EvalRotateRightConstraints(inBits, outBits [32]field.M31, n int) []field.M31 {
	residuals := make([]field.M31, 32)
	for i := 0; i < 32; i++ {
		src := (i + n) % 32
		residuals[i] = outBits[i].Sub(inBits[src])
	}
	return residuals
}

// EvalXorRotateConstraints checks that outBits equals (the value aLimbs
// encodes, XORed bitwise with srcBits) rotated right by n bits: the
// vocabulary behind every "d = rotr(d^a, n)"-style step in Blake3's G
// function, where one XOR operand (a) is stored as limbs and must be
// bit-decomposed (via aBits, a witnessed scratch array) before it can be
// XORed against the other operand, which is already bit-decomposed.
func EvalXorRotateConstraints(aLimbs [2]field.M31, aBits, srcBits, outBits [32]field.M31, n int) []field.M31 {
	residuals := EvalBitDecompositionConstraints(aLimbs, aBits)
	var xorBits [32]field.M31
	for i := range xorBits {
		xorBits[i] = aBits[i].Add(srcBits[i]).Sub(aBits[i].Mul(srcBits[i]).Double())
	}
	return append(residuals, EvalRotateRightConstraints(xorBits, outBits, n)...)
}

// QuarterRoundInputs bundles one quarter round's full operand/witness
// set, mirroring columns.rs's QuarterRound<'a,T,U>: the incoming a/b/c/d,
// the two message words it mixes in, the prime (first-half) and output
// (second-half) results, and the carry witnesses for all 4 additions.
type QuarterRoundInputs struct {
	A, C  [2]field.M31
	B, D  [32]field.M31
	MTwoI [2]field.M31

	APrime, CPrime [2]field.M31
	BPrime, DPrime [32]field.M31
	MTwoIPlusOne   [2]field.M31

	AOutput, COutput [2]field.M31
	BOutput, DOutput [32]field.M31

	Sum1Aux, Sum2Aux, Sum3Aux, Sum4Aux [2]field.M31
}

// EvalQuarterRound returns the combined residuals for one full quarter
// round of Blake3's G function: a' = a+b+m (sum_1), d' = rotr(d^a',16),
// c' = c+d' (sum_2), b' = rotr(b^c',12), then the same shape again with
// a_out/d_out/c_out/b_out and sum_3/sum_4. aPrimeBits/cPrimeBits/
// aOutputBits/cOutputBits are the scratch bit decompositions of the
// limb-encoded a'/c'/a_out/c_out values the XOR steps need.
func EvalQuarterRound(q QuarterRoundInputs, aPrimeBits, cPrimeBits, aOutputBits, cOutputBits [32]field.M31) []field.M31 {
	var residuals []field.M31

	residuals = append(residuals, EvalLimb3AdditionConstraints(q.A, LimbsFromBits(q.B), q.MTwoI, q.APrime, q.Sum1Aux[0], q.Sum1Aux[1])...)
	residuals = append(residuals, EvalXorRotateConstraints(q.APrime, aPrimeBits, q.D, q.DPrime, 16)...)
	residuals = append(residuals, EvalLimbAdditionConstraints(q.C, LimbsFromBits(q.DPrime), q.CPrime, q.Sum2Aux[0], q.Sum2Aux[1])...)
	residuals = append(residuals, EvalXorRotateConstraints(q.CPrime, cPrimeBits, q.B, q.BPrime, 12)...)

	residuals = append(residuals, EvalLimb3AdditionConstraints(q.APrime, LimbsFromBits(q.BPrime), q.MTwoIPlusOne, q.AOutput, q.Sum3Aux[0], q.Sum3Aux[1])...)
	residuals = append(residuals, EvalXorRotateConstraints(q.AOutput, aOutputBits, q.DPrime, q.DOutput, 8)...)
	residuals = append(residuals, EvalLimbAdditionConstraints(q.CPrime, LimbsFromBits(q.DOutput), q.COutput, q.Sum4Aux[0], q.Sum4Aux[1])...)
	residuals = append(residuals, EvalXorRotateConstraints(q.COutput, cOutputBits, q.BPrime, q.BOutput, 7)...)

	return residuals
}
