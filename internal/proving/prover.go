// Package proving implements the prover side pairing with fri.Verify: it
// commits to a trace column's low-degree extension, runs the same
// Fiat-Shamir transcript the verifier replays, and folds the committed
// evaluations down to a final polynomial, producing a proof fri.Verify
// can check end to end.
//
// original_source ships only fri/src/verifier.rs, not its matching
// prover — there is no teacher/pack file to port the commit-phase prover
// from directly, so this is built by running the verifier's own checks
// in reverse (the same transcript calls, in the same order, computing
// rather than checking each step) and documented as self-grounded for
// that reason (see DESIGN.md).
package proving

import (
	"github.com/vybium/circle-stark-core/internal/cfft"
	"github.com/vybium/circle-stark-core/internal/commit"
	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/fri"
	"github.com/vybium/circle-stark-core/internal/geometry"
	"github.com/vybium/circle-stark-core/internal/logspan"
	"github.com/vybium/circle-stark-core/internal/transcript"
)

// Proof bundles the base commitment and the inner FRI commit-phase proof
// fri.Verify consumes. The input commitment's own per-query openings
// travel inside Inner.QueryProofs (round 0 of each query's
// CommitPhaseOpenings), folded into the same commit-phase sequence as
// every later round rather than carried separately.
type Proof struct {
	InputCommitment fri.Commitment
	InputLogHeight  int
	Inner           *fri.Proof
}

// Prove commits to values (evaluations of a single trace column over the
// size-2^traceLogN standard circle domain), low-degree-extends it by
// cfg.LogBlowup, and produces a proof that the extension is close to a
// polynomial of degree < 2^traceLogN.
func Prove(traceLogN int, cfg *fri.Config, values []field.M31, label string) *Proof {
	commitSpan := logspan.Start("proving.commit_input").With("trace_log_n", traceLogN).With("log_blowup", cfg.LogBlowup)

	domain := geometry.StandardCircleDomain(traceLogN)
	valMatrix := cfft.NewMatrix[field.M31](domain.Size(), 1)
	for i, v := range values {
		valMatrix.Set(i, 0, v)
	}
	traceEvals := cfft.NewNaturalCircleEvaluations(domain, valMatrix)

	ldeLogN := traceLogN + cfg.LogBlowup
	ldeDomain := geometry.StandardCircleDomain(ldeLogN)
	lde := traceEvals.Extrapolate(ldeDomain)

	natural := make([]field.M31, ldeDomain.Size())
	for i := 0; i < ldeDomain.Size(); i++ {
		natural[i] = lde.Values.At(i, 0)
	}
	foldOrdered := fri.NaturalToFoldOrder(natural)

	// Round 0's tree commits the raw input pairs promoted into the
	// extension field, so every round (input layer included) is opened
	// and folded through the same uniform CEF-pair machinery fri.Verify
	// expects (see internal/fri/verifier.go).
	half := len(foldOrdered) / 2
	flatInput := make([]field.M31, half*6)
	for j := 0; j < half; j++ {
		a := field.FromBase(foldOrdered[2*j])
		b := field.FromBase(foldOrdered[2*j+1])
		copy(flatInput[j*6:(j+1)*6], flattenCEFPair(a, b))
	}
	inputTree := commit.BuildTree(&commit.TreeMatrix{Width: 6, Height: half, Values: flatInput})
	inputCommit := inputTree.Root()
	commitSpan.Done()

	challenger := transcript.New(label)
	challenger.ObserveCommitment(inputCommit)
	inputBeta := challenger.SampleExtensionElement()

	foldSpan := logspan.Start("proving.fold")

	const finalPolyLen = 1
	gen := fri.NewCircleFoldConfig(ldeDomain, finalPolyLen)

	logFoldedHeight := ldeLogN - 1
	current := make([]field.CEF, 1<<uint(logFoldedHeight))
	for j := range current {
		e0, e1 := foldOrdered[2*j], foldOrdered[2*j+1]
		current[j] = gen.FoldRow(2*j, logFoldedHeight, inputBeta, [2]field.CEF{field.FromBase(e0), field.FromBase(e1)})
	}

	var commits []fri.Commitment
	trees := []*commit.Tree{inputTree}
	betas := []field.CEF{inputBeta}

	for len(current) > finalPolyLen {
		half := len(current) / 2
		flatRows := make([]field.M31, half*6)
		for j := 0; j < half; j++ {
			copy(flatRows[j*6:(j+1)*6], flattenCEFPair(current[2*j], current[2*j+1]))
		}
		tree := commit.BuildTree(&commit.TreeMatrix{Width: 6, Height: half, Values: flatRows})
		c := tree.Root()
		trees = append(trees, tree)
		commits = append(commits, c)

		challenger.ObserveCommitment(c)
		beta := challenger.SampleExtensionElement()
		betas = append(betas, beta)

		logFoldedHeight--
		next := make([]field.CEF, half)
		for j := 0; j < half; j++ {
			next[j] = gen.FoldRow(2*j, logFoldedHeight, beta, [2]field.CEF{current[2*j], current[2*j+1]})
		}
		current = next
	}
	finalPoly := current
	foldSpan.With("commit_phase_rounds", len(commits)).Done()

	powWitness := challenger.Grind(cfg.ProofOfWorkBits)

	querySpan := logspan.Start("proving.query").With("num_queries", cfg.NumQueries)
	defer querySpan.Done()

	queryProofs := make([]fri.QueryProof, cfg.NumQueries)
	for q := 0; q < cfg.NumQueries; q++ {
		index := challenger.SampleBits(ldeLogN)

		idx := index
		steps := make([]fri.CommitPhaseProofStep, len(trees))
		for r, tree := range trees {
			row, path := tree.OpenBatch(idx >> 1)
			steps[r] = fri.CommitPhaseProofStep{
				SiblingValue: siblingFromRow(row, (idx^1)&1),
				OpeningProof: path,
			}
			idx >>= 1
		}
		queryProofs[q] = fri.QueryProof{
			InputProof:          fri.InputProof{ValueAtIndex: foldOrdered[index]},
			CommitPhaseOpenings: steps,
		}
	}

	return &Proof{
		InputCommitment: inputCommit,
		InputLogHeight:  ldeLogN,
		Inner: &fri.Proof{
			CommitPhaseCommits: commits,
			FinalPoly:          finalPoly,
			PowWitness:         powWitness,
			QueryProofs:        queryProofs,
		},
	}
}

func flattenCEFPair(a, b field.CEF) []field.M31 {
	return []field.M31{a.A0, a.A1, a.A2, b.A0, b.A1, b.A2}
}

func siblingFromRow(row []field.M31, which int) field.CEF {
	if which == 0 {
		return field.CEF{A0: row[0], A1: row[1], A2: row[2]}
	}
	return field.CEF{A0: row[3], A1: row[4], A2: row[5]}
}

// NewChallenger builds a fresh verifier-side transcript matching the one
// Prove seeds from label, so a caller driving fri.Verify directly gets
// an identically domain-separated sponge.
func NewChallenger(label string) *transcript.Challenger {
	return transcript.New(label)
}
