// Command circle-stark-demo exercises the circle-STARK proof system
// end to end: it generates a pseudorandom trace column, proves a
// low-degree proximity statement about it, and verifies the proof,
// mirroring the shape of the teacher's cmd/vybium-vm-prover (read
// parameters, run the pipeline, report the result) without its
// Triton-VM-specific JSON wire format.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/vybium/circle-stark-core/internal/field"
	"github.com/vybium/circle-stark-core/pkg/circlestark"
)

func main() {
	logN := flag.Int("log-n", 10, "log2 of the trace column length")
	queries := flag.Int("queries", 40, "number of FRI query rounds")
	powBits := flag.Int("pow-bits", 16, "proof-of-work grinding bits")
	seed := flag.Int64("seed", 1, "PRNG seed for the demo trace column")
	flag.Parse()

	if *logN < 1 {
		fatal("log-n must be >= 1")
	}

	n := 1 << uint(*logN)
	values := randomColumn(n, *seed)

	cfg := circlestark.DefaultConfig()
	cfg.NumQueries = *queries
	cfg.ProofOfWorkBits = *powBits

	logStderr(fmt.Sprintf("proving a degree-<%d low-degree statement over %d values...", n, n))
	proof, err := circlestark.Prove(cfg, values)
	if err != nil {
		fatal(fmt.Sprintf("proof generation failed: %v", err))
	}
	logStderr(fmt.Sprintf("proof generated for trace log2-size %d, %d queries", proof.TraceLogN, cfg.NumQueries))

	result, err := circlestark.Verify(cfg, proof)
	if err != nil {
		fatal(fmt.Sprintf("verification could not run: %v", err))
	}

	if !result.Valid {
		fatal(fmt.Sprintf("proof rejected: %s", result.Error))
	}
	fmt.Printf("proof accepted in %dus\n", result.VerificationTimeMicros)
}

// randomColumn generates a deterministic pseudorandom trace column so
// repeated demo runs with the same seed are reproducible.
func randomColumn(n int, seed int64) []field.M31 {
	r := rand.New(rand.NewSource(seed))
	values := make([]field.M31, n)
	for i := range values {
		values[i] = field.NewM31(uint64(r.Uint32()))
	}
	return values
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

func fatal(msg string) {
	logStderr("error: " + msg)
	os.Exit(1)
}
