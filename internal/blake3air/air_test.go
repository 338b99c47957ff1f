package blake3air

import (
	"math/bits"
	"testing"

	"github.com/vybium/circle-stark-core/internal/field"
)

func limbsOf(w uint32) [2]field.M31 {
	return [2]field.M31{field.NewM31(uint64(w & 0xFFFF)), field.NewM31(uint64(w >> 16))}
}

func bitsOf(w uint32) [32]field.M31 {
	var out [32]field.M31
	for i := 0; i < 32; i++ {
		if w&(1<<uint(i)) != 0 {
			out[i] = field.NewM31(1)
		}
	}
	return out
}

func carriesOf2(a, b uint32) (carry32, carry16 field.M31) {
	lo := (a & 0xFFFF) + (b & 0xFFFF)
	c16 := lo >> 16
	hi := (a >> 16) + (b >> 16) + c16
	c32 := hi >> 16
	return field.NewM31(uint64(c32 & 1)), field.NewM31(uint64(c16 & 1))
}

func carriesOf3(a, b, m uint32) (carry32, carry16 field.M31) {
	lo := (a & 0xFFFF) + (b & 0xFFFF) + (m & 0xFFFF)
	c16 := lo >> 16
	hi := (a >> 16) + (b >> 16) + (m >> 16) + c16
	c32 := hi >> 16
	return field.NewM31(uint64(c32 & 1)), field.NewM31(uint64(c16 & 1))
}

func assertAllZero(t *testing.T, label string, residuals []field.M31) {
	t.Helper()
	for i, r := range residuals {
		if !r.IsZero() {
			t.Fatalf("%s: residual %d is non-zero: %v", label, i, r)
		}
	}
}

func hasNonZero(residuals []field.M31) bool {
	for _, r := range residuals {
		if !r.IsZero() {
			return true
		}
	}
	return false
}

func TestEvalLimbAdditionConstraintsZeroOnValidAddition(t *testing.T) {
	a, b := uint32(0xABCD1234), uint32(0x12345678)
	sum := a + b
	c32, c16 := carriesOf2(a, b)
	residuals := EvalLimbAdditionConstraints(limbsOf(a), limbsOf(b), limbsOf(sum), c32, c16)
	assertAllZero(t, "addition", residuals)
}

func TestEvalLimbAdditionConstraintsNonZeroOnWrongSum(t *testing.T) {
	a, b := uint32(1), uint32(1)
	wrongSum := uint32(3)
	residuals := EvalLimbAdditionConstraints(limbsOf(a), limbsOf(b), limbsOf(wrongSum), field.NewM31(0), field.NewM31(0))
	if !hasNonZero(residuals) {
		t.Fatal("expected a non-zero residual for a mismatched sum")
	}
}

func TestEvalLimb3AdditionConstraintsZeroOnValidAddition(t *testing.T) {
	a, b, m := uint32(10), uint32(20), uint32(7)
	sum := a + b + m
	c32, c16 := carriesOf3(a, b, m)
	residuals := EvalLimb3AdditionConstraints(limbsOf(a), limbsOf(b), limbsOf(m), limbsOf(sum), c32, c16)
	assertAllZero(t, "3-operand addition", residuals)
}

func TestEvalLimb3AdditionConstraintsNonZeroOnWrongSum(t *testing.T) {
	a, b, m := uint32(10), uint32(20), uint32(7)
	residuals := EvalLimb3AdditionConstraints(limbsOf(a), limbsOf(b), limbsOf(m), limbsOf(a+b+m+1), field.NewM31(0), field.NewM31(0))
	if !hasNonZero(residuals) {
		t.Fatal("expected a non-zero residual for a mismatched 3-operand sum")
	}
}

func TestEvalBitDecompositionConstraintsZeroOnValidDecomposition(t *testing.T) {
	w := uint32(0xDEADBEEF)
	residuals := EvalBitDecompositionConstraints(limbsOf(w), bitsOf(w))
	assertAllZero(t, "decomposition", residuals)
}

func TestEvalBitDecompositionConstraintsRejectsNonBooleanEntry(t *testing.T) {
	w := uint32(0)
	b := bitsOf(w)
	b[3] = field.NewM31(2)
	residuals := EvalBitDecompositionConstraints(limbsOf(w), b)
	if !hasNonZero(residuals) {
		t.Fatal("expected a non-zero residual for a non-boolean bit entry")
	}
}

func TestEvalRotateRightConstraintsZeroOnRealRotation(t *testing.T) {
	w := uint32(0x1)
	rotated := bits.RotateLeft32(w, -16)
	residuals := EvalRotateRightConstraints(bitsOf(w), bitsOf(rotated), 16)
	assertAllZero(t, "rotate16", residuals)
}

func TestEvalRotateRightConstraintsNonZeroOnWrongAmount(t *testing.T) {
	w := uint32(0x1)
	rotated := bits.RotateLeft32(w, -16)
	residuals := EvalRotateRightConstraints(bitsOf(w), bitsOf(rotated), 12)
	if !hasNonZero(residuals) {
		t.Fatal("expected a non-zero residual when checked against the wrong rotation amount")
	}
}

func TestEvalXorRotateConstraintsZeroOnRealXorRotation(t *testing.T) {
	a, src := uint32(0x12345678), uint32(0xFF00FF00)
	out := bits.RotateLeft32(a^src, -16)
	residuals := EvalXorRotateConstraints(limbsOf(a), bitsOf(a), bitsOf(src), bitsOf(out), 16)
	assertAllZero(t, "xor-rotate", residuals)
}

func TestEvalXorRotateConstraintsNonZeroOnWrongOutput(t *testing.T) {
	a, src := uint32(0x12345678), uint32(0xFF00FF00)
	wrongOut := bits.RotateLeft32(a^src, -12)
	residuals := EvalXorRotateConstraints(limbsOf(a), bitsOf(a), bitsOf(src), bitsOf(wrongOut), 16)
	if !hasNonZero(residuals) {
		t.Fatal("expected a non-zero residual for a wrong xor-rotate output")
	}
}

// quarterRoundRef runs Blake3's G function over real uint32 words,
// mirroring gen's quarterRound, to build a QuarterRoundInputs witness
// set a real compression would produce.
func quarterRoundRef(a, b, c, d, mx, my uint32) (q QuarterRoundInputs, aPrime, cPrime, aOutput, cOutput uint32) {
	aPrime = a + b + mx
	sum1c32, sum1c16 := carriesOf3(a, b, mx)
	dPrime := bits.RotateLeft32(d^aPrime, -16)
	cPrime = c + dPrime
	sum2c32, sum2c16 := carriesOf2(c, dPrime)
	bPrime := bits.RotateLeft32(b^cPrime, -12)

	aOutput = aPrime + bPrime + my
	sum3c32, sum3c16 := carriesOf3(aPrime, bPrime, my)
	dOutput := bits.RotateLeft32(dPrime^aOutput, -8)
	cOutput = cPrime + dOutput
	sum4c32, sum4c16 := carriesOf2(cPrime, dOutput)
	bOutput := bits.RotateLeft32(bPrime^cOutput, -7)

	return QuarterRoundInputs{
		A: limbsOf(a), C: limbsOf(c),
		B: bitsOf(b), D: bitsOf(d),
		MTwoI: limbsOf(mx),

		APrime: limbsOf(aPrime), CPrime: limbsOf(cPrime),
		BPrime: bitsOf(bPrime), DPrime: bitsOf(dPrime),
		MTwoIPlusOne: limbsOf(my),

		AOutput: limbsOf(aOutput), COutput: limbsOf(cOutput),
		BOutput: bitsOf(bOutput), DOutput: bitsOf(dOutput),

		Sum1Aux: [2]field.M31{sum1c32, sum1c16},
		Sum2Aux: [2]field.M31{sum2c32, sum2c16},
		Sum3Aux: [2]field.M31{sum3c32, sum3c16},
		Sum4Aux: [2]field.M31{sum4c32, sum4c16},
	}, aPrime, cPrime, aOutput, cOutput
}

func TestEvalQuarterRoundZeroOnRealMixingFunction(t *testing.T) {
	q, aPrime, cPrime, aOutput, cOutput := quarterRoundRef(10, 20, 30, 40, 1, 2)
	residuals := EvalQuarterRound(q, bitsOf(aPrime), bitsOf(cPrime), bitsOf(aOutput), bitsOf(cOutput))
	assertAllZero(t, "quarter round", residuals)
}

func TestEvalQuarterRoundNonZeroOnTamperedOutput(t *testing.T) {
	q, aPrime, cPrime, aOutput, cOutput := quarterRoundRef(10, 20, 30, 40, 1, 2)
	q.BOutput[0] = q.BOutput[0].Add(field.NewM31(1))
	residuals := EvalQuarterRound(q, bitsOf(aPrime), bitsOf(cPrime), bitsOf(aOutput), bitsOf(cOutput))
	if !hasNonZero(residuals) {
		t.Fatal("expected a non-zero residual for a tampered quarter-round output")
	}
}

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	var c Cols[field.M31]
	c.Inputs[3][5] = field.NewM31(1)
	c.ChainingValues[1][2][7] = field.NewM31(1)
	c.CounterLow[9] = field.NewM31(1)
	c.InitialRow0[2][1] = field.NewM31(11)
	c.FullRounds[4].StatePrime.Row0[1][0] = field.NewM31(13)
	c.FullRounds[4].AuxColumns[2][3][1] = field.NewM31(1)
	c.FullRounds[6].StateOutput.Row3[3][17] = field.NewM31(1)
	c.FinalRoundHelpers[1][4] = field.NewM31(1)
	c.Outputs[3][2][9] = field.NewM31(1)

	flat := Flatten(&c)
	if len(flat) != NumCols {
		t.Fatalf("expected flattened width %d, got %d", NumCols, len(flat))
	}
	back := Unflatten(flat)

	check := func(name string, got, want field.M31) {
		t.Helper()
		if !got.Equal(want) {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
	}
	check("Inputs[3][5]", back.Inputs[3][5], c.Inputs[3][5])
	check("ChainingValues[1][2][7]", back.ChainingValues[1][2][7], c.ChainingValues[1][2][7])
	check("CounterLow[9]", back.CounterLow[9], c.CounterLow[9])
	check("InitialRow0[2][1]", back.InitialRow0[2][1], c.InitialRow0[2][1])
	check("FullRounds[4].StatePrime.Row0[1][0]", back.FullRounds[4].StatePrime.Row0[1][0], c.FullRounds[4].StatePrime.Row0[1][0])
	check("FullRounds[4].AuxColumns[2][3][1]", back.FullRounds[4].AuxColumns[2][3][1], c.FullRounds[4].AuxColumns[2][3][1])
	check("FullRounds[6].StateOutput.Row3[3][17]", back.FullRounds[6].StateOutput.Row3[3][17], c.FullRounds[6].StateOutput.Row3[3][17])
	check("FinalRoundHelpers[1][4]", back.FinalRoundHelpers[1][4], c.FinalRoundHelpers[1][4])
	check("Outputs[3][2][9]", back.Outputs[3][2][9], c.Outputs[3][2][9])
}

func TestUnflattenRejectsWrongWidth(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a wrongly-sized row")
		}
	}()
	Unflatten(make([]field.M31, NumCols-1))
}
