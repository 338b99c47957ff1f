// Package fri implements the verifier side of the FRI (Fast Reed-Solomon
// IOP of Proximity) low-degree test: multi-round Fiat-Shamir-driven
// folding with a proof-of-work grinding check and Merkle-batched
// openings, grounded on original_source/fri/src/verifier.rs.
package fri

import "github.com/vybium/circle-stark-core/internal/field"

// Commitment is an opaque digest produced by an Mmcs implementation.
type Commitment []byte

// Dimensions describes one matrix committed inside an Mmcs batch.
type Dimensions struct {
	Width  int
	Height int
}

// CommitPhaseProofStep is one round's worth of opening data for a single
// query: the sibling value needed to reconstruct the folded pair, plus
// the Mmcs membership proof for that round's commitment. Round 0 of a
// query's CommitPhaseOpenings opens the input commitment itself (the
// raw low-degree extension, promoted into the extension field); every
// later round opens a genuine commit-phase fold commitment.
type CommitPhaseProofStep struct {
	SiblingValue field.CEF
	OpeningProof [][]byte
}

// InputProof is the opaque, protocol-specific payload open_input needs
// per query to produce its reduced openings: for the single committed
// polynomial this module scopes to, that is just the polynomial's own
// value at the queried index (its sibling travels through the ordinary
// CommitPhaseProofStep at round 0 instead, since the input commitment is
// merged into the same commit-phase sequence as every other round).
type InputProof struct {
	ValueAtIndex field.M31
}

// ReducedOpening is one entry of the Vec<(log_height, value)> spec.md's
// open_input returns: a trace matrix's contribution to the running
// folded evaluation, injected once the commit-phase loop reaches the
// matching layer. Callers must return entries sorted by strictly
// descending LogHeight, matching spec.md's Protocol step 5.
type ReducedOpening struct {
	LogHeight int
	Value     field.CEF
}

// Proof is a complete FRI proof: one commitment per folding round, the
// final layer's evaluation table (indexed by each query's fully folded
// index), a proof-of-work witness,
// and one QueryProof per sampled index.
type Proof struct {
	CommitPhaseCommits []Commitment
	FinalPoly          []field.CEF
	PowWitness         uint64
	QueryProofs        []QueryProof
}

// QueryProof is everything the verifier needs to recheck one FRI query:
// the opaque input-layer proof open_input consumes, plus one
// CommitPhaseProofStep per commit-phase round (round 0 = the input
// commitment, outermost domain first).
type QueryProof struct {
	InputProof          InputProof
	CommitPhaseOpenings []CommitPhaseProofStep
}
