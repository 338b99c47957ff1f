package proving

import (
	"testing"

	"github.com/vybium/circle-stark-core/internal/commit"
	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/fri"
	"github.com/vybium/circle-stark-core/internal/geometry"
)

func testColumn(n int) []field.M31 {
	values := make([]field.M31, n)
	for i := range values {
		values[i] = field.NewM31(uint64(i*i + 1))
	}
	return values
}

func testConfig() *fri.Config {
	return &fri.Config{LogBlowup: 1, NumQueries: 8, ProofOfWorkBits: 4}
}

func runVerify(t *testing.T, traceLogN int, cfg *fri.Config, proof *Proof, label string) error {
	t.Helper()
	domain := geometry.StandardCircleDomain(proof.InputLogHeight)
	gen := fri.NewCircleFoldConfig(domain, len(proof.Inner.FinalPoly))
	mmcs := commit.NewReferenceMmcs()
	challenger := NewChallenger(label)
	openInput := func(_ int, ip fri.InputProof) ([]fri.ReducedOpening, error) {
		return []fri.ReducedOpening{{LogHeight: proof.InputLogHeight, Value: field.FromBase(ip.ValueAtIndex)}}, nil
	}
	return fri.Verify(gen, cfg, mmcs, challenger, proof.InputCommitment, proof.InputLogHeight, openInput, proof.Inner)
}

func TestProveThenVerifyAccepts(t *testing.T) {
	traceLogN := 4
	cfg := testConfig()
	values := testColumn(1 << traceLogN)
	label := "prove-verify-roundtrip"

	proof := Prove(traceLogN, cfg, values, label)
	if err := runVerify(t, traceLogN, cfg, proof, label); err != nil {
		t.Fatalf("expected a genuine proof to verify, got %v", err)
	}
}

func TestVerifyRejectsTamperedOpening(t *testing.T) {
	traceLogN := 4
	cfg := testConfig()
	values := testColumn(1 << traceLogN)
	label := "tamper-opening"

	proof := Prove(traceLogN, cfg, values, label)
	proof.Inner.QueryProofs[0].InputProof.ValueAtIndex = proof.Inner.QueryProofs[0].InputProof.ValueAtIndex.Add(field.NewM31(1))

	if err := runVerify(t, traceLogN, cfg, proof, label); err == nil {
		t.Fatal("expected verification to fail for a tampered input opening")
	}
}

func TestVerifyRejectsTamperedFinalPoly(t *testing.T) {
	traceLogN := 4
	cfg := testConfig()
	values := testColumn(1 << traceLogN)
	label := "tamper-final-poly"

	proof := Prove(traceLogN, cfg, values, label)
	proof.Inner.FinalPoly[0] = proof.Inner.FinalPoly[0].Add(field.FromBase(field.NewM31(1)))

	if err := runVerify(t, traceLogN, cfg, proof, label); err == nil {
		t.Fatal("expected verification to fail for a tampered final polynomial")
	}
}

func TestVerifyRejectsBadProofOfWork(t *testing.T) {
	traceLogN := 4
	cfg := testConfig()
	values := testColumn(1 << traceLogN)
	label := "tamper-pow"

	proof := Prove(traceLogN, cfg, values, label)
	proof.Inner.PowWitness++

	if err := runVerify(t, traceLogN, cfg, proof, label); err == nil {
		t.Fatal("expected verification to fail for a bad proof-of-work witness")
	}
}

func TestVerifyRejectsWrongLabel(t *testing.T) {
	traceLogN := 4
	cfg := testConfig()
	values := testColumn(1 << traceLogN)

	proof := Prove(traceLogN, cfg, values, "original-label")

	if err := runVerify(t, traceLogN, cfg, proof, "different-label"); err == nil {
		t.Fatal("expected verification to fail when the verifier's transcript label differs from the prover's")
	}
}

func TestProveAtLargerTraceSize(t *testing.T) {
	traceLogN := 6
	cfg := testConfig()
	values := testColumn(1 << traceLogN)
	label := "larger-trace"

	proof := Prove(traceLogN, cfg, values, label)
	if err := runVerify(t, traceLogN, cfg, proof, label); err != nil {
		t.Fatalf("expected a genuine proof at a larger trace size to verify, got %v", err)
	}
}
