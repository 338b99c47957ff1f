// Package poseidon2 implements the Poseidon2 permutation over M31, used
// as the sponge hash inside the transcript and commitment packages.
// Grounded on original_source/poseidon2/src/lib.rs: external (MDS-light)
// linear layer around full rounds, internal (1+diag(v)) linear layer
// around partial rounds.
package poseidon2

import "github.com/vybium/circle-stark-core/internal/field"

// SupportedWidths lists the state widths Poseidon2's internal diagonal
// layer has constants defined for, mirroring poseidon2::SUPPORTED_WIDTHS.
var SupportedWidths = map[int]bool{
	2: true, 3: true, 4: true, 8: true, 12: true,
	16: true, 20: true, 24: true,
}

// Poseidon2 is a configured instance of the permutation: external and
// internal round constants plus the round counts for a given width and
// S-box degree.
type Poseidon2 struct {
	Width          int
	SBoxDegree     uint64
	HalfFullRounds int // RF/2
	PartialRounds  int // RP
	ExternalRC     [][]field.M31 // len 2*HalfFullRounds, each len Width
	InternalRC     []field.M31   // len PartialRounds
	diag           []field.M31   // len Width, the internal layer's diag(v)
}

// New builds a Poseidon2 instance from externally supplied round
// constants, as the teacher's EnhancedPoseidonHash constructor takes
// explicit parameters rather than deriving them implicitly.
func New(width int, sBoxDegree uint64, halfFullRounds, partialRounds int, externalRC [][]field.M31, internalRC []field.M31) *Poseidon2 {
	if !SupportedWidths[width] {
		panic("poseidon2: unsupported state width")
	}
	if len(externalRC) != 2*halfFullRounds {
		panic("poseidon2: external round constant count must be 2*halfFullRounds")
	}
	if len(internalRC) != partialRounds {
		panic("poseidon2: internal round constant count must equal partialRounds")
	}
	return &Poseidon2{
		Width:          width,
		SBoxDegree:     sBoxDegree,
		HalfFullRounds: halfFullRounds,
		PartialRounds:  partialRounds,
		ExternalRC:     externalRC,
		InternalRC:     internalRC,
		diag:           internalDiagonal(width),
	}
}

// NewFromRNG derives round constants from a deterministic byte stream,
// mirroring poseidon2::new_from_rng's role of producing a ready-to-use
// instance without hand-supplied constants (used by transcript/commit
// default configuration and by tests).
func NewFromRNG(width int, sBoxDegree uint64, halfFullRounds, partialRounds int, seed []byte) *Poseidon2 {
	stream := newConstantStream(seed)
	externalRC := make([][]field.M31, 2*halfFullRounds)
	for i := range externalRC {
		externalRC[i] = stream.nextVec(width)
	}
	internalRC := stream.nextVec(partialRounds)
	return New(width, sBoxDegree, halfFullRounds, partialRounds, externalRC, internalRC)
}

// PermuteMut applies the permutation to state in place: an initial
// external linear layer, HalfFullRounds external rounds, PartialRounds
// internal rounds, then HalfFullRounds more external rounds.
func (p *Poseidon2) PermuteMut(state []field.M31) {
	if len(state) != p.Width {
		panic("poseidon2: state length must equal configured width")
	}

	externalLinearLayer(state)

	for r := 0; r < p.HalfFullRounds; r++ {
		p.externalRound(state, r)
	}
	for r := 0; r < p.PartialRounds; r++ {
		p.internalRound(state, r)
	}
	for r := 0; r < p.HalfFullRounds; r++ {
		p.externalRound(state, p.HalfFullRounds+r)
	}
}

func (p *Poseidon2) externalRound(state []field.M31, round int) {
	rc := p.ExternalRC[round]
	for i := range state {
		state[i] = state[i].Add(rc[i])
		state[i] = sbox(state[i], p.SBoxDegree)
	}
	externalLinearLayer(state)
}

func (p *Poseidon2) internalRound(state []field.M31, round int) {
	state[0] = state[0].Add(p.InternalRC[round])
	state[0] = sbox(state[0], p.SBoxDegree)
	internalLinearLayer(state, p.diag)
}

func sbox(x field.M31, degree uint64) field.M31 {
	return x.Exp(degree)
}
