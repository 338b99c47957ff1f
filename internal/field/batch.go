package field

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallelBatchInvertThreshold mirrors the teacher's ParallelBatchInversion
// cutover point: below this many elements the goroutine dispatch overhead
// outweighs the saved inversions.
const parallelBatchInvertThreshold = 1000

// BatchMultiplicativeInverse inverts every element of xs at the cost of a
// single field inversion plus 3n multiplications, using Montgomery's trick:
// accumulate running products, invert the total, then back-substitute.
// This is the twiddle-inversion workhorse the circle-FFT interpolation step
// needs (§4.1): y-twiddles are inverted in bulk, never one at a time.
//
// Every element of xs must be nonzero; that is a precondition on the
// caller (twiddles are never zero on a validly constructed circle domain),
// so a zero entry panics rather than returning an error.
func BatchMultiplicativeInverse[F Elt[F]](xs []F) []F {
	n := len(xs)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []F{xs[0].Inv()}
	}

	acc := make([]F, n)
	acc[0] = xs[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(xs[i])
	}

	accInv := acc[n-1].Inv()

	results := make([]F, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(xs[i])
	}
	results[0] = accInv
	return results
}

// ParallelBatchMultiplicativeInverse splits xs into chunks run through
// BatchMultiplicativeInverse on separate goroutines via an errgroup, then
// reassembles the result in input order. Below parallelBatchInvertThreshold
// it falls back to the serial version, since fork-join overhead would
// dominate on small batches.
func ParallelBatchMultiplicativeInverse[F Elt[F]](xs []F, numWorkers int) []F {
	n := len(xs)
	if n < parallelBatchInvertThreshold || numWorkers <= 1 {
		return BatchMultiplicativeInverse(xs)
	}

	chunkSize := (n + numWorkers - 1) / numWorkers
	results := make([]F, n)

	g, _ := errgroup.WithContext(context.Background())
	for start := 0; start < n; start += chunkSize {
		start := start
		end := min(start+chunkSize, n)
		g.Go(func() error {
			copy(results[start:end], BatchMultiplicativeInverse(xs[start:end]))
			return nil
		})
	}
	_ = g.Wait() // chunk inversion never returns an error; panics propagate.
	return results
}
