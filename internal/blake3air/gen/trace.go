// Package gen computes real Blake3 compressions and packages their
// intermediate values as blake3air.Cols rows: a reference trace
// generator for the full column schema blake3air defines, exercising the
// package's limb/bit/carry constraint vocabulary against real data rather
// than synthetic inputs.
package gen

import (
	"math/bits"

	bitsetlib "github.com/bits-and-blooms/bitset"

	"github.com/vybium/circle-stark-core/internal/blake3air"
	"github.com/vybium/circle-stark-core/internal/field"
)

// indexer maps a quarter round's position (0..3) within a phase to the
// global state-word indices playing its a/b/c/d roles.
type indexer func(i int) (a, b, c, d int)

// columnIndex is Blake3's column-mixing phase: quarter round i acts on
// words {i, 4+i, 8+i, 12+i}.
func columnIndex(i int) (a, b, c, d int) { return i, 4 + i, 8 + i, 12 + i }

// diagonalIndex is Blake3's diagonal-mixing phase: quarter round i acts
// on words {i, 4+(i+1)%4, 8+(i+2)%4, 12+(i+3)%4}.
func diagonalIndex(i int) (a, b, c, d int) {
	return i, 4 + (i+1)%4, 8 + (i+2)%4, 12 + (i+3)%4
}

// quarterRoundResult is one quarter round's full set of intermediate
// values and carry witnesses, computed over real uint32 words.
type quarterRoundResult struct {
	aPrime, bPrime, cPrime, dPrime   uint32
	aOutput, bOutput, cOutput, dOutput uint32

	sum1c32, sum1c16 field.M31
	sum2c32, sum2c16 field.M31
	sum3c32, sum3c16 field.M31
	sum4c32, sum4c16 field.M31

	aPrimeBits, cPrimeBits, aOutputBits, cOutputBits [32]field.M31
}

// quarterRound runs one quarter round of Blake3's G function over real
// 32-bit words, capturing every carry and XOR-scratch witness the AIR's
// constraint vocabulary (EvalQuarterRound) needs.
func quarterRound(a, b, c, d, mx, my uint32) quarterRoundResult {
	var r quarterRoundResult

	aPrime, c16a, c32a := add3WithCarries(a, b, mx)
	dPrime := bits.RotateLeft32(d^aPrime, -16)
	cPrime, c16b, c32b := addWithCarries(c, dPrime)
	bPrime := bits.RotateLeft32(b^cPrime, -12)

	aOutput, c16c, c32c := add3WithCarries(aPrime, bPrime, my)
	dOutput := bits.RotateLeft32(dPrime^aOutput, -8)
	cOutput, c16d, c32d := addWithCarries(cPrime, dOutput)
	bOutput := bits.RotateLeft32(bPrime^cOutput, -7)

	r.aPrime, r.bPrime, r.cPrime, r.dPrime = aPrime, bPrime, cPrime, dPrime
	r.aOutput, r.bOutput, r.cOutput, r.dOutput = aOutput, bOutput, cOutput, dOutput
	r.sum1c32, r.sum1c16 = c32a, c16a
	r.sum2c32, r.sum2c16 = c32b, c16b
	r.sum3c32, r.sum3c16 = c32c, c16c
	r.sum4c32, r.sum4c16 = c32d, c16d
	r.aPrimeBits = word32ToBits(aPrime)
	r.cPrimeBits = word32ToBits(cPrime)
	r.aOutputBits = word32ToBits(aOutput)
	r.cOutputBits = word32ToBits(cOutput)
	return r
}

// applyHalfRound runs all 4 quarter rounds of one phase (column or
// diagonal), returning the state after their first half (prime) and
// after they complete (middle/output), plus each quarter round's result.
func applyHalfRound(state [16]uint32, msg [8]uint32, idx indexer) (prime, complete [16]uint32, qrs [4]quarterRoundResult) {
	prime, complete = state, state
	for i := 0; i < 4; i++ {
		aIdx, bIdx, cIdx, dIdx := idx(i)
		r := quarterRound(state[aIdx], state[bIdx], state[cIdx], state[dIdx], msg[2*i], msg[2*i+1])
		qrs[i] = r
		prime[aIdx], prime[bIdx], prime[cIdx], prime[dIdx] = r.aPrime, r.bPrime, r.cPrime, r.dPrime
		complete[aIdx], complete[bIdx], complete[cIdx], complete[dIdx] = r.aOutput, r.bOutput, r.cOutput, r.dOutput
	}
	return prime, complete, qrs
}

// fullRound runs one of Blake3's 7 rounds: 4 column quarter rounds
// followed by 4 diagonal quarter rounds, returning all 4 intermediate
// states blake3air.FullRound names plus both halves' quarter-round
// results.
func fullRound(state [16]uint32, msg [16]uint32) (statePrime, stateMiddle, stateMiddlePrime, stateOutput [16]uint32, colQRs, diagQRs [4]quarterRoundResult) {
	var colMsg, diagMsg [8]uint32
	copy(colMsg[:], msg[:8])
	copy(diagMsg[:], msg[8:])

	statePrime, stateMiddle, colQRs = applyHalfRound(state, colMsg, columnIndex)
	stateMiddlePrime, stateOutput, diagQRs = applyHalfRound(stateMiddle, diagMsg, diagonalIndex)
	return
}

func permuteMsg(m [16]uint32) [16]uint32 {
	var out [16]uint32
	for i, src := range blake3air.MsgPermutation {
		out[i] = m[src]
	}
	return out
}

// word32ToLimbs splits a 32-bit word into its AIR limb-pair
// representation.
func word32ToLimbs(w uint32) [2]field.M31 {
	return [2]field.M31{field.NewM31(uint64(w & 0xFFFF)), field.NewM31(uint64(w >> 16))}
}

// word32ToBits splits a 32-bit word into its AIR boolean-decomposition
// representation, least-significant bit first, via bitset for the
// scratch extraction (the decomposition is exactly what bitset's
// Test/Set operations are for).
func word32ToBits(w uint32) [32]field.M31 {
	bs := bitsetlib.From([]uint64{uint64(w)})
	var out [32]field.M31
	for i := 0; i < 32; i++ {
		if bs.Test(uint(i)) {
			out[i] = field.NewM31(1)
		}
	}
	return out
}

// addWithCarries computes a+b over 32-bit words and returns the low/high
// carry witnesses EvalLimbAdditionConstraints expects.
func addWithCarries(a, b uint32) (sum uint32, carry16, carry32 field.M31) {
	lo := (a & 0xFFFF) + (b & 0xFFFF)
	c16 := lo >> 16
	hi := (a >> 16) + (b >> 16) + c16
	c32 := hi >> 16
	sum = a + b
	return sum, field.NewM31(uint64(c16 & 1)), field.NewM31(uint64(c32 & 1))
}

// add3WithCarries is addWithCarries generalized to 3 summands (a+b+m),
// the shape every first-half addition in Blake3's G function takes. A
// 3-way 16-bit limb sum can carry up to 2 rather than 1; the boolean
// carry witness this package exposes only tracks parity (see DESIGN.md).
func add3WithCarries(a, b, m uint32) (sum uint32, carry16, carry32 field.M31) {
	lo := (a & 0xFFFF) + (b & 0xFFFF) + (m & 0xFFFF)
	c16 := lo >> 16
	hi := (a >> 16) + (b >> 16) + (m >> 16) + c16
	c32 := hi >> 16
	sum = a + b + m
	return sum, field.NewM31(uint64(c16 & 1)), field.NewM31(uint64(c32 & 1))
}

// blake3StateFromWords packages a 16-word state snapshot as a
// blake3air.Blake3State, using idx to determine which word plays each
// quarter round's a/b/c/d role at the time the snapshot was taken
// (column phase and diagonal phase re-index differently).
func blake3StateFromWords(words [16]uint32, idx indexer) blake3air.Blake3State[field.M31] {
	var s blake3air.Blake3State[field.M31]
	for i := 0; i < 4; i++ {
		aIdx, bIdx, cIdx, dIdx := idx(i)
		s.Row0[i] = word32ToLimbs(words[aIdx])
		s.Row1[i] = word32ToBits(words[bIdx])
		s.Row2[i] = word32ToLimbs(words[cIdx])
		s.Row3[i] = word32ToBits(words[dIdx])
	}
	return s
}

func auxFromQuarterRounds(qrs [4]quarterRoundResult) [4][4][2]field.M31 {
	var aux [4][4][2]field.M31
	for i, qr := range qrs {
		aux[i] = [4][2]field.M31{
			{qr.sum1c32, qr.sum1c16},
			{qr.sum2c32, qr.sum2c16},
			{qr.sum3c32, qr.sum3c16},
			{qr.sum4c32, qr.sum4c16},
		}
	}
	return aux
}

// GenerateRow computes one compression and packages every intermediate
// value as a blake3air.Cols row: the full 16-word state across all 7
// rounds (state_prime/state_middle/state_middle_prime/state_output),
// every quarter round's carry witnesses, and the final output transform.
func GenerateRow(cv [8]uint32, block [16]uint32, counter uint64, blockLen, flags uint32) *blake3air.Cols[field.M31] {
	var state [16]uint32
	copy(state[:8], cv[:])
	copy(state[8:12], blake3air.IV[:4])
	state[12] = uint32(counter)
	state[13] = uint32(counter >> 32)
	state[14] = blockLen
	state[15] = flags

	var c blake3air.Cols[field.M31]
	for i, w := range block {
		c.Inputs[i] = word32ToBits(w)
	}
	for i, w := range cv[:4] {
		c.ChainingValues[0][i] = word32ToBits(w)
	}
	for i, w := range cv[4:] {
		c.ChainingValues[1][i] = word32ToBits(w)
	}
	c.CounterLow = word32ToBits(state[12])
	c.CounterHi = word32ToBits(state[13])
	c.BlockLen = word32ToBits(state[14])
	c.Flags = word32ToBits(state[15])
	for i := 0; i < 4; i++ {
		c.InitialRow0[i] = word32ToLimbs(state[i])
		c.InitialRow2[i] = word32ToLimbs(state[8+i])
	}

	msg := block
	for r := 0; r < numRounds; r++ {
		statePrime, stateMiddle, stateMiddlePrime, stateOutput, colQRs, diagQRs := fullRound(state, msg)

		fr := &c.FullRounds[r]
		fr.StatePrime = blake3StateFromWords(statePrime, columnIndex)
		fr.StateMiddle = blake3StateFromWords(stateMiddle, columnIndex)
		fr.StateMiddlePrime = blake3StateFromWords(stateMiddlePrime, diagonalIndex)
		fr.StateOutput = blake3StateFromWords(stateOutput, diagonalIndex)
		fr.AuxColumns = auxFromQuarterRounds(colQRs)
		fr.AuxDiagonals = auxFromQuarterRounds(diagQRs)

		state = stateOutput
		if r != numRounds-1 {
			msg = permuteMsg(msg)
		}
	}

	// final_round_helpers: bit decompositions of the final round's
	// row2 (c-role, words 8-11), the scratch the output feed-forward
	// transform's two XOR passes consume (see DESIGN.md for why the
	// row0 half doesn't need its own dedicated helper columns).
	for i := 0; i < 4; i++ {
		c.FinalRoundHelpers[i] = word32ToBits(state[8+i])
	}

	outState := state
	for i := 0; i < 8; i++ {
		outState[i] ^= outState[i+8]
	}
	for i := 0; i < 8; i++ {
		outState[i+8] ^= cv[i]
	}
	for g := 0; g < 4; g++ {
		for i := 0; i < 4; i++ {
			c.Outputs[g][i] = word32ToBits(outState[g*4+i])
		}
	}

	return &c
}

const numRounds = 7
