// Package transcript implements a reference Fiat-Shamir challenger: a
// Poseidon2 sponge over M31 for sampling field elements and indices, plus
// a proof-of-work grinding check. Grounded on the teacher's
// utils/channel.go Channel (Send/ReceiveRandom*/hash dispatch), rebuilt
// around the algebraic sponge the rest of the pipeline already commits
// with instead of hashing with a different primitive at every layer.
package transcript

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/fri"
	"github.com/vybium/circle-stark-core/internal/poseidon2"
)

const (
	permWidth = 16
	rate      = 8
)

// Challenger is a duplex sponge transcript implementing fri.Challenger.
type Challenger struct {
	perm    *poseidon2.Poseidon2
	state   []field.M31
	squeeze []field.M31 // unconsumed squeezed elements from the last permutation
}

// New builds a fresh challenger, domain-separated by label so distinct
// protocol instances (e.g. two FRI proofs in the same process) never
// share a transcript by accident.
func New(label string) *Challenger {
	c := &Challenger{
		perm:  poseidon2.NewFromRNG(permWidth, 5, 4, 21, []byte("circle-stark-core/transcript")),
		state: make([]field.M31, permWidth),
	}
	c.observeBytes([]byte(label))
	return c
}

func (c *Challenger) absorb(x field.M31) {
	idx := permWidth - rate
	// find how many rate slots are already "dirty"; kept simple by always
	// absorbing into slot 0 and permuting, matching a conservative duplex
	// that trades a little throughput for a simpler, clearly-correct
	// implementation.
	_ = idx
	c.state[0] = c.state[0].Add(x)
	c.perm.PermuteMut(c.state)
	c.squeeze = nil
}

func (c *Challenger) observeBytes(b []byte) {
	for i := 0; i < len(b); i += 4 {
		end := i + 4
		var chunk [4]byte
		copy(chunk[:], b[i:min(end, len(b))])
		v := uint64(binary.LittleEndian.Uint32(chunk[:]))
		c.absorb(field.NewM31(v))
	}
}

// ObserveCommitment absorbs a commitment digest into the transcript.
func (c *Challenger) ObserveCommitment(commitment fri.Commitment) {
	c.observeBytes(commitment)
}

// ObserveElement absorbs a single base-field element, used by callers
// observing out-of-domain evaluations or public inputs.
func (c *Challenger) ObserveElement(x field.M31) {
	c.absorb(x)
}

func (c *Challenger) squeezeOne() field.M31 {
	if len(c.squeeze) == 0 {
		c.perm.PermuteMut(c.state)
		c.squeeze = append([]field.M31(nil), c.state[:rate]...)
	}
	v := c.squeeze[0]
	c.squeeze = c.squeeze[1:]
	return v
}

// SampleExtensionElement draws a uniformly random CEF element.
func (c *Challenger) SampleExtensionElement() field.CEF {
	return field.CEF{A0: c.squeezeOne(), A1: c.squeezeOne(), A2: c.squeezeOne()}
}

// SampleBits draws a uniformly distributed integer with numBits bits,
// used to pick FRI query indices.
func (c *Challenger) SampleBits(numBits int) int {
	if numBits <= 0 {
		return 0
	}
	if numBits > 31 {
		panic("transcript: cannot sample more than 31 bits from one M31 element")
	}
	v := c.squeezeOne().Uint32()
	return int(v & ((1 << uint(numBits)) - 1))
}

// Grind searches for a witness whose grinding hash has the requested
// number of leading zero bits, mirroring the PoW step a prover runs
// before sending its proof.
func (c *Challenger) Grind(bits int) uint64 {
	for w := uint64(0); ; w++ {
		if c.CheckWitness(bits, w) {
			return w
		}
	}
}

// CheckWitness reports whether witness grinds the current transcript
// state to `bits` leading zero bits, via a SHA3-256 check external to
// the algebraic sponge (grinding is a raw brute-force search; reusing
// the permutation for it would make every witness candidate cost a full
// Poseidon2 call instead of a cheap hash).
func (c *Challenger) CheckWitness(bits int, witness uint64) bool {
	if bits <= 0 {
		return true
	}
	h := sha3.New256()
	for _, x := range c.state {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], x.Uint32())
		h.Write(buf[:])
	}
	var wbuf [8]byte
	binary.LittleEndian.PutUint64(wbuf[:], witness)
	h.Write(wbuf[:])
	digest := h.Sum(nil)

	return leadingZeroBits(digest) >= bits
}

func leadingZeroBits(digest []byte) int {
	count := 0
	for _, b := range digest {
		if b == 0 {
			count += 8
			continue
		}
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if b&mask != 0 {
				return count
			}
			count++
		}
	}
	return count
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
