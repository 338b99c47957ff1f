package poseidon2

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/circle-stark-core/internal/field"
)

// constantStream deterministically derives a sequence of M31 elements
// from a seed via SHAKE256, playing the role the teacher's GrainLFSR
// plays for classic Poseidon round-constant generation, built on the
// sha3 dependency already carried for the transcript's hashing instead
// of reimplementing an LFSR bit generator from scratch.
type constantStream struct {
	xof sha3.ShakeHash
}

func newConstantStream(seed []byte) *constantStream {
	xof := sha3.NewShake256()
	_, _ = xof.Write([]byte("circle-stark-core/poseidon2-rc"))
	_, _ = xof.Write(seed)
	return &constantStream{xof: xof}
}

func (s *constantStream) next() field.M31 {
	var buf [8]byte
	for {
		_, _ = s.xof.Read(buf[:])
		v := binary.LittleEndian.Uint64(buf[:]) & ((1 << 31) - 1)
		if v < uint64(field.M31Prime) {
			return field.NewM31(v)
		}
	}
}

func (s *constantStream) nextVec(n int) []field.M31 {
	out := make([]field.M31, n)
	for i := range out {
		out[i] = s.next()
	}
	return out
}
