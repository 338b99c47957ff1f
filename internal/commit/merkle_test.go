package commit

import (
	"testing"

	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/fri"
)

func buildTestTree(n int) *Tree {
	rows := &TreeMatrix{Width: 2, Height: n, Values: make([]field.M31, n*2)}
	for i := 0; i < n; i++ {
		rows.Values[2*i] = field.NewM31(uint64(i))
		rows.Values[2*i+1] = field.NewM31(uint64(i * i))
	}
	return BuildTree(rows)
}

func dims(width, height int) []fri.Dimensions {
	return []fri.Dimensions{{Width: width, Height: height}}
}

func TestOpenBatchVerifies(t *testing.T) {
	tree := buildTestTree(16)
	root := tree.Root()
	mmcs := NewReferenceMmcs()

	for i := 0; i < 16; i++ {
		row, proof := tree.OpenBatch(i)
		if err := mmcs.VerifyBatch(root, dims(2, 16), i, [][]field.M31{row}, proof); err != nil {
			t.Fatalf("index %d: expected verification to succeed, got %v", i, err)
		}
	}
}

func TestVerifyBatchRejectsTamperedRow(t *testing.T) {
	tree := buildTestTree(16)
	root := tree.Root()
	mmcs := NewReferenceMmcs()

	row, proof := tree.OpenBatch(3)
	row[0] = row[0].Add(field.NewM31(1))
	if err := mmcs.VerifyBatch(root, dims(2, 16), 3, [][]field.M31{row}, proof); err == nil {
		t.Fatal("expected verification to fail for a tampered row")
	}
}

func TestVerifyBatchRejectsWrongRoot(t *testing.T) {
	tree := buildTestTree(16)
	mmcs := NewReferenceMmcs()

	row, proof := tree.OpenBatch(5)
	wrongRoot := append([]byte(nil), tree.Root()...)
	wrongRoot[0] ^= 0xFF
	if err := mmcs.VerifyBatch(wrongRoot, dims(2, 16), 5, [][]field.M31{row}, proof); err == nil {
		t.Fatal("expected verification to fail against the wrong root")
	}
}

func TestVerifyBatchRejectsWrongIndex(t *testing.T) {
	tree := buildTestTree(16)
	root := tree.Root()
	mmcs := NewReferenceMmcs()

	row, proof := tree.OpenBatch(5)
	if err := mmcs.VerifyBatch(root, dims(2, 16), 6, [][]field.M31{row}, proof); err == nil {
		t.Fatal("expected verification to fail when opened against the wrong index")
	}
}

func TestBuildTreeRequiresPowerOfTwoHeight(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a non-power-of-two row count")
		}
	}()
	BuildTree(&TreeMatrix{Width: 1, Height: 3, Values: make([]field.M31, 3)})
}
