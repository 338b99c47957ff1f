package circlestark

import (
	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/internal/fri"
	"github.com/vybium/circle-stark-core/internal/proving"
)

// Config holds the public proof-system parameters: the rate, query
// count, and grinding cost a prover and verifier must agree on.
type Config struct {
	// LogBlowup is the log2 of the low-degree extension's blowup factor.
	LogBlowup int

	// NumQueries is the number of FRI query rounds; larger is more sound.
	NumQueries int

	// ProofOfWorkBits is the number of leading zero bits a grinding
	// witness must produce, raising query soundness cheaply.
	ProofOfWorkBits int

	// TranscriptLabel domain-separates this proof's Fiat-Shamir
	// transcript from any other proof system sharing the same process.
	TranscriptLabel string
}

// DefaultConfig returns conservative parameters suitable for tests and
// the CLI demo.
func DefaultConfig() *Config {
	return &Config{
		LogBlowup:       1,
		NumQueries:      40,
		ProofOfWorkBits: 16,
		TranscriptLabel: "circle-stark-core/v1",
	}
}

func (c *Config) toFRIConfig() *fri.Config {
	return &fri.Config{LogBlowup: c.LogBlowup, NumQueries: c.NumQueries, ProofOfWorkBits: c.ProofOfWorkBits}
}

// Proof is a complete, self-contained low-degree proximity proof for a
// trace column's evaluations over a circle domain.
type Proof struct {
	TraceLogN int
	inner     *proving.Proof
}

// VerificationResult reports the outcome of checking a Proof.
type VerificationResult struct {
	// Valid reports whether the proof was accepted.
	Valid bool

	// Error holds a human-readable reason when Valid is false.
	Error string

	// VerificationTimeMicros is the wall-clock cost of verification.
	VerificationTimeMicros int64
}

// FieldElement is the public scalar type values are expressed in.
type FieldElement = field.M31
