// Package blake3air defines the AIR (algebraic intermediate
// representation) trace layout for a Blake3 compression-per-row circuit,
// grounded on original_source/blake3-air/src/columns.rs: the full 16-word
// state carried through all 7 rounds, the asymmetric row encoding (the
// "a"/"c" operands of every quarter round kept as 16-bit limb pairs since
// they only ever get added, the "b"/"d" operands kept bit-decomposed since
// they get XORed and rotated), and the four modular-addition carry
// witnesses each quarter round needs.
package blake3air

import "github.com/vybium/circle-stark-core/internal/assertx"

// U32Limbs is the number of 16-bit limbs a 32-bit word splits into for the
// limb-encoded rows of a Blake3State (columns.rs's U32_LIMBS).
const U32Limbs = 2

const numRounds = 7

// Blake3State is the full 16-word Blake3 compression state at one instant,
// grouped into 4 rows of 4 words each: row0 and row2 are the "a" and "c"
// operands of the round's 4 quarter rounds (limb-encoded, since a and c
// only ever get added), row1 and row3 are the "b" and "d" operands
// (bit-decomposed, since b and d get XORed against a rotated partner).
type Blake3State[T any] struct {
	Row0 [4][U32Limbs]T
	Row1 [4][32]T
	Row2 [4][U32Limbs]T
	Row3 [4][32]T
}

// FullRound is one of Blake3's 7 rounds: 4 column quarter rounds (acting
// on state words grouped {0-3},{4-7},{8-11},{12-15}) followed by 4
// diagonal quarter rounds (same groups, diagonally re-indexed), each half
// contributing two intermediate states and its own 4x4 addition-carry
// witnesses (columns.rs's FullRound<T>).
type FullRound[T any] struct {
	// StatePrime is the state after the first half of each of the 4
	// column quarter rounds (a' = a+b+m, d' = rotr(d^a',16), c' = c+d',
	// b' = rotr(b^c',12)).
	StatePrime Blake3State[T]

	// AuxColumns holds the column quarter rounds' 4 addition-carry pairs
	// each ([carry_32, carry_16] for sum_1..sum_4), indexed
	// [quarter round][sum_1..sum_4].
	AuxColumns [4][4][2]T

	// StateMiddle is the state after the column quarter rounds complete
	// (the second half: a_out = a'+b'+m', d_out = rotr(d'^a_out,8),
	// c_out = c'+d_out, b_out = rotr(b'^c_out,7)).
	StateMiddle Blake3State[T]

	// StateMiddlePrime is the state after the first half of the 4
	// diagonal quarter rounds, applied to StateMiddle.
	StateMiddlePrime Blake3State[T]

	// AuxDiagonals are the diagonal quarter rounds' carry witnesses,
	// same layout as AuxColumns.
	AuxDiagonals [4][4][2]T

	// StateOutput is the state after the diagonal quarter rounds
	// complete; also the input to the next round (or, for the last
	// round, the pre-output-transform final state).
	StateOutput Blake3State[T]
}

// Cols is the flat trace row for one Blake3 compression, grounded on
// original_source/blake3-air/src/columns.rs's Blake3Cols<T>.
type Cols[T any] struct {
	// Inputs are the 16 message words, bit-decomposed.
	Inputs [16][32]T

	// ChainingValues are the first 8 outputs of the previous compression,
	// split into the two 4-word groups the initial state's row0/row1
	// come from.
	ChainingValues [2][4][32]T

	// A few auxiliary values used to flesh out the first state.
	CounterLow [32]T
	CounterHi  [32]T
	BlockLen   [32]T
	Flags      [32]T

	// InitialRow0/InitialRow2 are the limb-encoded row0/row2 of the
	// initial state (words 0-3 = the chaining value's first half, words
	// 8-11 = Blake3's IV), needed because round 0 has no previous
	// FullRound.StateOutput to read them from.
	InitialRow0 [4][U32Limbs]T
	InitialRow2 [4][U32Limbs]T

	FullRounds [numRounds]FullRound[T]

	// FinalRoundHelpers are bit-decomposition scratch for the final
	// round's limb-encoded words, needed by the output feed-forward XOR
	// (see DESIGN.md for the exact subset covered).
	FinalRoundHelpers [4][32]T

	// Outputs are the compression's 16 output words as four 4-word
	// groups, bit-decomposed.
	Outputs [4][4][32]T
}

// NumCols is the flat-slice width one Cols[T] row occupies, the Go
// analogue of columns.rs's NUM_BLAKE3_COLS size_of-based constant. Go has
// no safe reinterpret-cast across a struct/slice boundary, so rather than
// rely on unsafe.Pointer + align_to like the Rust Borrow/BorrowMut impls,
// Flatten/Unflatten below do an explicit field-by-field copy.
var NumCols = flattenedWidth()

func flattenedWidth() int {
	var c Cols[struct{}]
	return len(Flatten(&c))
}

// Flatten copies a Cols[T] row into a single flat slice, in the same
// field order Cols is declared in.
func Flatten[T any](c *Cols[T]) []T {
	var out []T
	for _, w := range c.Inputs {
		out = append(out, w[:]...)
	}
	for _, grp := range c.ChainingValues {
		for _, w := range grp {
			out = append(out, w[:]...)
		}
	}
	out = append(out, c.CounterLow[:]...)
	out = append(out, c.CounterHi[:]...)
	out = append(out, c.BlockLen[:]...)
	out = append(out, c.Flags[:]...)
	for _, l := range c.InitialRow0 {
		out = append(out, l[:]...)
	}
	for _, l := range c.InitialRow2 {
		out = append(out, l[:]...)
	}
	for _, fr := range c.FullRounds {
		out = flattenFullRound(out, fr)
	}
	for _, h := range c.FinalRoundHelpers {
		out = append(out, h[:]...)
	}
	for _, grp := range c.Outputs {
		for _, w := range grp {
			out = append(out, w[:]...)
		}
	}
	return out
}

func flattenFullRound[T any](out []T, fr FullRound[T]) []T {
	out = flattenState(out, fr.StatePrime)
	out = flattenAux(out, fr.AuxColumns)
	out = flattenState(out, fr.StateMiddle)
	out = flattenState(out, fr.StateMiddlePrime)
	out = flattenAux(out, fr.AuxDiagonals)
	out = flattenState(out, fr.StateOutput)
	return out
}

func flattenState[T any](out []T, s Blake3State[T]) []T {
	for _, l := range s.Row0 {
		out = append(out, l[:]...)
	}
	for _, b := range s.Row1 {
		out = append(out, b[:]...)
	}
	for _, l := range s.Row2 {
		out = append(out, l[:]...)
	}
	for _, b := range s.Row3 {
		out = append(out, b[:]...)
	}
	return out
}

func flattenAux[T any](out []T, aux [4][4][2]T) []T {
	for _, qr := range aux {
		for _, pair := range qr {
			out = append(out, pair[0], pair[1])
		}
	}
	return out
}

// Unflatten is Flatten's inverse: it reads a row in the same field order
// Flatten wrote it, and panics if the slice is the wrong width.
func Unflatten[T any](row []T) *Cols[T] {
	assertx.Equal(len(row), NumCols, "blake3air: row width")
	var c Cols[T]
	i := 0
	take := func() T { v := row[i]; i++; return v }
	takeLimb := func(dst *[U32Limbs]T) {
		for j := range dst {
			dst[j] = take()
		}
	}
	takeBits := func(dst *[32]T) {
		for j := range dst {
			dst[j] = take()
		}
	}
	takeState := func(s *Blake3State[T]) {
		for j := range s.Row0 {
			takeLimb(&s.Row0[j])
		}
		for j := range s.Row1 {
			takeBits(&s.Row1[j])
		}
		for j := range s.Row2 {
			takeLimb(&s.Row2[j])
		}
		for j := range s.Row3 {
			takeBits(&s.Row3[j])
		}
	}
	takeAux := func(aux *[4][4][2]T) {
		for qr := range aux {
			for s := range aux[qr] {
				aux[qr][s][0] = take()
				aux[qr][s][1] = take()
			}
		}
	}

	for j := range c.Inputs {
		takeBits(&c.Inputs[j])
	}
	for g := range c.ChainingValues {
		for j := range c.ChainingValues[g] {
			takeBits(&c.ChainingValues[g][j])
		}
	}
	takeBits(&c.CounterLow)
	takeBits(&c.CounterHi)
	takeBits(&c.BlockLen)
	takeBits(&c.Flags)
	for j := range c.InitialRow0 {
		takeLimb(&c.InitialRow0[j])
	}
	for j := range c.InitialRow2 {
		takeLimb(&c.InitialRow2[j])
	}
	for r := range c.FullRounds {
		fr := &c.FullRounds[r]
		takeState(&fr.StatePrime)
		takeAux(&fr.AuxColumns)
		takeState(&fr.StateMiddle)
		takeState(&fr.StateMiddlePrime)
		takeAux(&fr.AuxDiagonals)
		takeState(&fr.StateOutput)
	}
	for j := range c.FinalRoundHelpers {
		takeBits(&c.FinalRoundHelpers[j])
	}
	for g := range c.Outputs {
		for j := range c.Outputs[g] {
			takeBits(&c.Outputs[g][j])
		}
	}
	return &c
}
