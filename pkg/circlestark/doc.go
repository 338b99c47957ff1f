// Package circlestark provides a circle-STARK polynomial commitment and
// low-degree proximity proof system over the Mersenne-31 field.
//
// # Features
//
// - M31/CEF field arithmetic and circle-group geometry with a full
//   2^31 two-adicity, avoiding the power-of-two-minus-one field's usual
//   "no FFT" problem
// - A butterfly-network (DIF/DIT) circle-FFT (interpolate/evaluate/extrapolate)
//   over that geometry
// - Poseidon2 over M31, used both as the Merkle commitment hash and as
//   the Fiat-Shamir transcript's duplex sponge
// - A FRI (Fast Reed-Solomon IOP of Proximity) prover and verifier
// - A Blake3 compression-function AIR column/constraint schema, for
//   committing a non-algebraic hash's execution trace alongside the
//   rest of a proof
//
// # Quick Start
//
//	cfg := circlestark.DefaultConfig()
//	proof, err := circlestark.Prove(cfg, values)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := circlestark.Verify(cfg, proof)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if result.Valid {
//		fmt.Println("proof is valid")
//	}
//
// # Architecture
//
// - pkg/circlestark/: public API (this package)
// - internal/: field, geometry, cfft, poseidon2, fri, commit, transcript,
//   blake3air — private implementation, free to change without breaking
//   the public API
package circlestark
