package fri

import "github.com/vybium/circle-stark-core/internal/field"

// OpenInputFunc is spec.md's open_input(index, input_proof) -> Vec<(log_height,
// value)>: given the sampled query index and the query's opaque
// InputProof, it returns the reduced openings every trace matrix
// contributes at its own height, sorted by strictly descending
// LogHeight. Implementations are responsible for verifying whatever
// commitment(s) back their own matrices; Verify never inspects InputProof
// itself, only threads it through.
type OpenInputFunc func(index int, proof InputProof) ([]ReducedOpening, error)

// Verify checks proof against inputCommit (the prover's commitment to the
// base-field low-degree extension FRI is proximity-testing), following
// spec.md §4.2's public contract verify(config, proof, challenger,
// open_input) and original_source/fri/src/verifier.rs: sample one folding
// challenge per commitment (the input commitment first, then one per
// commit-phase commitment), check proof shape and the PoW witness, then
// replay each query's fold chain -- merging in open_input's reduced
// openings at the layer they belong to, per Protocol step 5 -- and
// compare the result against the final polynomial.
//
// The input commitment is folded into the very same commit-phase
// sequence as every later round (round 0 opens it directly) rather than
// being special-cased, so a single committed polynomial is simply the
// case where open_input returns exactly one ReducedOpening, at
// inputLogHeight; nothing about the merge loop itself assumes that.
func Verify(gen GenericConfig, cfg *Config, mmcs Mmcs, challenger Challenger, inputCommit Commitment, inputLogHeight int, openInput OpenInputFunc, proof *Proof) error {
	challenger.ObserveCommitment(inputCommit)

	betas := make([]field.CEF, 1+len(proof.CommitPhaseCommits))
	betas[0] = challenger.SampleExtensionElement()
	for i, c := range proof.CommitPhaseCommits {
		challenger.ObserveCommitment(c)
		betas[i+1] = challenger.SampleExtensionElement()
	}

	if len(proof.QueryProofs) != cfg.NumQueries {
		return newErr(InvalidProofShape, "expected %d query proofs, got %d", cfg.NumQueries, len(proof.QueryProofs))
	}

	if !challenger.CheckWitness(cfg.ProofOfWorkBits, proof.PowWitness) {
		return newErr(InvalidPowWitness, "grinding witness failed check")
	}

	finalLogHeight := inputLogHeight - 1 - len(proof.CommitPhaseCommits)
	if finalLogHeight < 0 || 1<<finalLogHeight != gen.FinalPolyLen() {
		return newErr(InvalidProofShape, "final polynomial length does not match the expected folded height")
	}
	if len(proof.FinalPoly) != gen.FinalPolyLen() {
		return newErr(InvalidProofShape, "final polynomial length mismatch")
	}

	allCommits := make([]Commitment, 0, 1+len(proof.CommitPhaseCommits))
	allCommits = append(allCommits, inputCommit)
	allCommits = append(allCommits, proof.CommitPhaseCommits...)

	extraBits := gen.ExtraQueryIndexBits()

	for qi, qp := range proof.QueryProofs {
		sampled := challenger.SampleBits(inputLogHeight + extraBits)
		index := sampled >> uint(extraBits)

		reducedOpenings, err := openInput(sampled, qp.InputProof)
		if err != nil {
			return wrapErr(InvalidProofShape, err)
		}
		for i := 1; i < len(reducedOpenings); i++ {
			if reducedOpenings[i-1].LogHeight <= reducedOpenings[i].LogHeight {
				return newErr(InvalidProofShape, "reduced openings must be sorted by strictly descending log height")
			}
		}

		if len(qp.CommitPhaseOpenings) != len(allCommits) {
			return newErr(InvalidProofShape, "commit phase opening count does not match commitment count")
		}

		folded, finalIndex, err := verifyQuery(gen, mmcs, inputLogHeight, index, reducedOpenings, qp.CommitPhaseOpenings, allCommits, betas)
		if err != nil {
			return err
		}

		if !folded.Equal(proof.FinalPoly[finalIndex]) {
			return newErr(FinalPolyMismatch, "query %d: folded evaluation does not match the final polynomial", qi)
		}
	}
	return nil
}

// verifyQuery replays one query's fold chain, merging reducedOpenings in
// at the layer each belongs to (Protocol step 5: an entry at
// log_folded_height+1 is added into the running folded evaluation before
// this round's sibling reconstruction), then asserts every reduced
// opening was consumed exactly once.
func verifyQuery(gen GenericConfig, mmcs Mmcs, inputLogHeight, index int, reducedOpenings []ReducedOpening, steps []CommitPhaseProofStep, commits []Commitment, betas []field.CEF) (field.CEF, int, error) {
	roIdx := 0
	var folded field.CEF

	for r, step := range steps {
		logFoldedHeight := inputLogHeight - 1 - r

		if roIdx < len(reducedOpenings) && reducedOpenings[roIdx].LogHeight == logFoldedHeight+1 {
			folded = folded.Add(reducedOpenings[roIdx].Value)
			roIdx++
		}

		indexSib := index ^ 1
		evals := [2]field.CEF{folded, folded}
		evals[indexSib&1] = step.SiblingValue

		flat := flattenCEFPair(evals)
		dims := []Dimensions{{Width: 6, Height: 1 << logFoldedHeight}}
		if err := mmcs.VerifyBatch(commits[r], dims, index>>1, [][]field.M31{flat}, step.OpeningProof); err != nil {
			return field.CEF{}, 0, wrapErr(CommitPhaseMmcsError, err)
		}

		folded = gen.FoldRow(index, logFoldedHeight, betas[r], evals)
		index >>= 1
	}

	if roIdx != len(reducedOpenings) {
		return field.CEF{}, 0, newErr(InvalidProofShape, "verifier did not consume all reduced openings")
	}
	return folded, index, nil
}

func flattenCEFPair(evals [2]field.CEF) []field.M31 {
	return []field.M31{
		evals[0].A0, evals[0].A1, evals[0].A2,
		evals[1].A0, evals[1].A1, evals[1].A2,
	}
}
