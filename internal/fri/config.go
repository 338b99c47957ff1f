package fri

import "github.com/vybium/circle-stark-core/internal/field"

// Config holds the verifier-visible FRI parameters, grounded on the
// teacher's utils/config.go builder-style Config/DefaultConfig/With*
// pattern.
type Config struct {
	LogBlowup      int
	NumQueries     int
	ProofOfWorkBits int
}

// DefaultConfig returns conservative parameters suitable for tests and
// the CLI demo: a rate-1/2 blowup, 40 queries, and light PoW grinding.
func DefaultConfig() *Config {
	return &Config{
		LogBlowup:       1,
		NumQueries:      40,
		ProofOfWorkBits: 16,
	}
}

func (c *Config) WithLogBlowup(logBlowup int) *Config {
	c.LogBlowup = logBlowup
	return c
}

func (c *Config) WithNumQueries(n int) *Config {
	c.NumQueries = n
	return c
}

func (c *Config) WithProofOfWorkBits(bits int) *Config {
	c.ProofOfWorkBits = bits
	return c
}

// Challenger is the Fiat-Shamir transcript capability FRI needs: sampling
// folding challenges, query indices, and checking the grinding witness.
// The spec treats a concrete transcript as an external collaborator;
// internal/transcript provides the reference implementation.
type Challenger interface {
	ObserveCommitment(c Commitment)
	SampleExtensionElement() field.CEF
	SampleBits(numBits int) int
	CheckWitness(bits int, witness uint64) bool
}

// Mmcs is the batched vector commitment capability FRI needs to verify
// openings against. internal/commit provides the reference implementation.
type Mmcs interface {
	VerifyBatch(commit Commitment, dims []Dimensions, index int, openedValues [][]field.M31, proof [][]byte) error
}

// GenericConfig captures the protocol-specific folding behavior FRI's
// generic verifier is parameterized over: how two sibling evaluations at
// one layer fold into a single evaluation at the next, how many
// entries the final layer's evaluation table has, and how many
// low-order index bits the input layer consumes before folding begins.
type GenericConfig interface {
	FoldRow(index int, logFoldedHeight int, beta field.CEF, evals [2]field.CEF) field.CEF
	FinalPolyLen() int

	// ExtraQueryIndexBits returns the number of low-order bits of the
	// sampled query index that belong to the input layer rather than the
	// folding structure itself: the verifier samples
	// inputLogHeight + ExtraQueryIndexBits() bits and shifts right by
	// ExtraQueryIndexBits() before folding. Circle-FFT folding has no
	// such extra structure (the input layer's height already equals the
	// first fold's height), so CircleFoldConfig returns 0.
	ExtraQueryIndexBits() int
}
