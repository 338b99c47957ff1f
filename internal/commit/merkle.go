// Package commit implements a reference Mmcs (Mixed Matrix Commitment
// Scheme): a Merkle tree over Poseidon2-hashed rows, grounded on the
// teacher's core/merkle.go binary SHA-256 tree but rebuilt on an
// algebraic hash so commitment and the rest of the pipeline share one
// arithmetization-friendly primitive instead of mixing in SHA-256.
package commit

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vybium/circle-stark-core/internal/assertx"
	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/fri"
	"github.com/vybium/circle-stark-core/internal/poseidon2"
)

const (
	permWidth   = 16
	digestWidth = 8
)

// Digest is a fixed-width Poseidon2-derived commitment output.
type Digest [digestWidth]field.M31

// newDefaultPermutation returns the Poseidon2 instance every tree built
// by this package hashes with. Round counts follow the ballpark used for
// 31-bit-field Poseidon2 instances elsewhere in the ecosystem; degree 5
// is a valid S-box exponent for M31 since gcd(5, p-1) = 1.
func newDefaultPermutation() *poseidon2.Poseidon2 {
	return poseidon2.NewFromRNG(permWidth, 5, 4, 21, []byte("circle-stark-core/mmcs"))
}

func hashRow(perm *poseidon2.Poseidon2, row []field.M31) Digest {
	state := make([]field.M31, permWidth)
	rate := permWidth - digestWidth
	for start := 0; start < len(row); start += rate {
		end := min(start+rate, len(row))
		for i := start; i < end; i++ {
			state[i-start] = state[i-start].Add(row[i])
		}
		perm.PermuteMut(state)
	}
	var d Digest
	copy(d[:], state[:digestWidth])
	return d
}

func compress(perm *poseidon2.Poseidon2, left, right Digest) Digest {
	state := make([]field.M31, permWidth)
	copy(state[:digestWidth], left[:])
	copy(state[digestWidth:], right[:])
	perm.PermuteMut(state)
	var d Digest
	copy(d[:], state[:digestWidth])
	return d
}

func (d Digest) Bytes() []byte {
	buf := make([]byte, digestWidth*4)
	for i, v := range d {
		binary.LittleEndian.PutUint32(buf[i*4:], v.Uint32())
	}
	return buf
}

func digestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != digestWidth*4 {
		return d, fmt.Errorf("commit: expected %d-byte digest, got %d", digestWidth*4, len(b))
	}
	for i := range d {
		d[i] = field.NewM31(uint64(binary.LittleEndian.Uint32(b[i*4:])))
	}
	return d, nil
}

// Tree is a committed matrix: one leaf digest per row, compressed
// pairwise up to a single root.
type Tree struct {
	perm    *poseidon2.Poseidon2
	Rows    *TreeMatrix
	levels  [][]Digest // levels[0] = leaves, levels[last] = [root]
}

// TreeMatrix is the minimal row-accessor Tree needs, decoupling it from
// cfft.Matrix's generic parameterization.
type TreeMatrix struct {
	Width, Height int
	Values        []field.M31
}

func (m *TreeMatrix) Row(i int) []field.M31 { return m.Values[i*m.Width : (i+1)*m.Width] }

// BuildTree commits to rows, which must have a power-of-two row count.
func BuildTree(rows *TreeMatrix) *Tree {
	n := rows.Height
	assertx.PowerOfTwo(n, "commit: tree row count")
	perm := newDefaultPermutation()

	leaves := make([]Digest, n)
	for i := 0; i < n; i++ {
		leaves[i] = hashRow(perm, rows.Row(i))
	}

	levels := [][]Digest{leaves}
	cur := leaves
	for len(cur) > 1 {
		next := make([]Digest, len(cur)/2)
		for i := range next {
			next[i] = compress(perm, cur[2*i], cur[2*i+1])
		}
		levels = append(levels, next)
		cur = next
	}

	return &Tree{perm: perm, Rows: rows, levels: levels}
}

// Root returns the commitment to be sent to the verifier.
func (t *Tree) Root() fri.Commitment {
	return fri.Commitment(t.levels[len(t.levels)-1][0].Bytes())
}

// OpenBatch returns the opened row and Merkle authentication path for
// index.
func (t *Tree) OpenBatch(index int) ([]field.M31, [][]byte) {
	proof := make([][]byte, 0, len(t.levels)-1)
	idx := index
	for level := 0; level < len(t.levels)-1; level++ {
		sib := idx ^ 1
		proof = append(proof, t.levels[level][sib].Bytes())
		idx >>= 1
	}
	row := make([]field.M31, t.Rows.Width)
	copy(row, t.Rows.Row(index))
	return row, proof
}

// ReferenceMmcs implements fri.Mmcs against trees built by BuildTree.
type ReferenceMmcs struct {
	perm *poseidon2.Poseidon2
}

func NewReferenceMmcs() *ReferenceMmcs {
	return &ReferenceMmcs{perm: newDefaultPermutation()}
}

// VerifyBatch checks that openedValues[0] is the row committed at index
// under commitment, given its Merkle authentication path in proof.
// This reference implementation only ever opens a single matrix per
// call (dims/openedValues each length 1); FRI's verifier never batches
// multiple differently-shaped matrices into one Mmcs call.
func (m *ReferenceMmcs) VerifyBatch(commitment fri.Commitment, dims []fri.Dimensions, index int, openedValues [][]field.M31, proof [][]byte) error {
	if len(dims) != 1 || len(openedValues) != 1 {
		return fmt.Errorf("commit: reference mmcs only supports single-matrix batches")
	}
	if len(openedValues[0]) != dims[0].Width {
		return fmt.Errorf("commit: opened row width %d does not match declared width %d", len(openedValues[0]), dims[0].Width)
	}

	expectedDepth := bitLen(dims[0].Height) - 1
	if len(proof) != expectedDepth {
		return fmt.Errorf("commit: expected authentication path of depth %d, got %d", expectedDepth, len(proof))
	}

	cur := hashRow(m.perm, openedValues[0])
	idx := index
	for _, sibBytes := range proof {
		sib, err := digestFromBytes(sibBytes)
		if err != nil {
			return err
		}
		if idx&1 == 0 {
			cur = compress(m.perm, cur, sib)
		} else {
			cur = compress(m.perm, sib, cur)
		}
		idx >>= 1
	}

	if !bytes.Equal(cur.Bytes(), commitment) {
		return fmt.Errorf("commit: merkle path does not lead to the committed root")
	}
	return nil
}

func bitLen(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l + 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
