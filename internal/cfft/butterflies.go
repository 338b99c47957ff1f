package cfft

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/vybium/circle-stark-core/internal/field"
)

// runDIFLayers applies layers (in order, layer 0 = the single
// whole-array block) to mat in place as decimation-in-frequency
// butterflies, the direction Interpolate runs: sum/difference first,
// twiddle multiply on the difference half.
//
// While a layer's block count stays below desiredNumJobs, there are
// too few blocks to keep every worker busy, so the work is split within
// each block instead (across the twiddle index range). Once a layer's
// block count reaches desiredNumJobs, every later layer's blocks nest
// strictly inside the current ones (each halves the previous), so from
// that point on each worker is handed a disjoint range of top-level
// blocks and runs every remaining layer for its own range serially,
// with no further synchronization (§4.1 "Parallel scheduling").
func runDIFLayers(mat *Matrix[field.M31], layers [][]field.M31) {
	jobs := desiredNumJobs()
	for li, twiddle := range layers {
		numBlocks := mat.Height / (2 * len(twiddle))
		if numBlocks >= jobs {
			runAcrossBlocks(mat, layers[li:], numBlocks, jobs, applyDifLayerInRange)
			return
		}
		difLayerSplitWithinBlocks(mat, twiddle, jobs)
	}
}

// runDITLayers applies layers (already ordered smallest-block-first,
// the reverse of the table's natural layer order) to mat in place as
// decimation-in-time butterflies, the direction Evaluate runs: twiddle
// multiply first, then sum/difference.
//
// The block-count progression is the mirror of runDIFLayers: early
// layers here have the most blocks, so the across-blocks regime (many
// independent block ranges, each run serially through every remaining
// layer) applies to the layers processed first, switching to the
// within-block split only once block count drops below desiredNumJobs.
func runDITLayers(mat *Matrix[field.M31], layers [][]field.M31) {
	jobs := desiredNumJobs()

	split := len(layers)
	for i, twiddle := range layers {
		if mat.Height/(2*len(twiddle)) < jobs {
			split = i
			break
		}
	}

	if split > 0 {
		lastTwiddle := layers[split-1]
		runAcrossBlocks(mat, layers[:split], mat.Height/(2*len(lastTwiddle)), jobs, applyDitLayerInRange)
	}
	for _, twiddle := range layers[split:] {
		ditLayerSplitWithinBlocks(mat, twiddle, jobs)
	}
}

// runAcrossBlocks partitions mat.Height into numBlocks ranges of equal
// size (inferred from the coarsest layer in layers) and assigns each
// worker a contiguous span of blocks, running every layer in layers
// against that span before returning.
func runAcrossBlocks(mat *Matrix[field.M31], layers [][]field.M31, numBlocks, jobs int, applyLayer func(*Matrix[field.M31], int, int, []field.M31)) {
	topBlockSize := mat.Height / numBlocks
	blocksPerJob := (numBlocks + jobs - 1) / jobs

	g, _ := errgroup.WithContext(context.Background())
	for startBlock := 0; startBlock < numBlocks; startBlock += blocksPerJob {
		startBlock := startBlock
		endBlock := min(startBlock+blocksPerJob, numBlocks)
		g.Go(func() error {
			for b := startBlock; b < endBlock; b++ {
				rangeBase := b * topBlockSize
				for _, twiddle := range layers {
					applyLayer(mat, rangeBase, topBlockSize, twiddle)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func applyDifLayerInRange(mat *Matrix[field.M31], rangeBase, rangeLen int, twiddle []field.M31) {
	half := len(twiddle)
	blockSize := 2 * half
	for base := rangeBase; base < rangeBase+rangeLen; base += blockSize {
		difButterflyRange(mat, base, twiddle, 0, half)
	}
}

func applyDitLayerInRange(mat *Matrix[field.M31], rangeBase, rangeLen int, twiddle []field.M31) {
	half := len(twiddle)
	blockSize := 2 * half
	for base := rangeBase; base < rangeBase+rangeLen; base += blockSize {
		ditButterflyRange(mat, base, twiddle, 0, half)
	}
}

func difLayerSplitWithinBlocks(mat *Matrix[field.M31], twiddle []field.M31, jobs int) {
	half := len(twiddle)
	blockSize := 2 * half
	chunk := (half + jobs - 1) / jobs
	if chunk < 1 {
		chunk = 1
	}

	g, _ := errgroup.WithContext(context.Background())
	for base := 0; base < mat.Height; base += blockSize {
		base := base
		for start := 0; start < half; start += chunk {
			start := start
			end := min(start+chunk, half)
			g.Go(func() error {
				difButterflyRange(mat, base, twiddle, start, end)
				return nil
			})
		}
	}
	_ = g.Wait()
}

func ditLayerSplitWithinBlocks(mat *Matrix[field.M31], twiddle []field.M31, jobs int) {
	half := len(twiddle)
	blockSize := 2 * half
	chunk := (half + jobs - 1) / jobs
	if chunk < 1 {
		chunk = 1
	}

	g, _ := errgroup.WithContext(context.Background())
	for base := 0; base < mat.Height; base += blockSize {
		base := base
		for start := 0; start < half; start += chunk {
			start := start
			end := min(start+chunk, half)
			g.Go(func() error {
				ditButterflyRange(mat, base, twiddle, start, end)
				return nil
			})
		}
	}
	_ = g.Wait()
}

// difButterflyRange applies a DIF butterfly (sum, then twiddle-inverse-
// scaled difference) to twiddle indices [start,end) of the block based
// at base.
func difButterflyRange(mat *Matrix[field.M31], base int, twiddleInv []field.M31, start, end int) {
	width := mat.Width
	half := len(twiddleInv)
	for k := start; k < end; k++ {
		tInv := twiddleInv[k]
		rowA := mat.Row(base + k)
		rowB := mat.Row(base + half + k)
		for j := 0; j < width; j++ {
			a, b := rowA[j], rowB[j]
			rowA[j] = a.Add(b)
			rowB[j] = a.Sub(b).Mul(tInv)
		}
	}
}

// ditButterflyRange applies a DIT butterfly (twiddle-scaled second
// operand, then sum/difference) to twiddle indices [start,end) of the
// block based at base.
func ditButterflyRange(mat *Matrix[field.M31], base int, twiddle []field.M31, start, end int) {
	width := mat.Width
	half := len(twiddle)
	for k := start; k < end; k++ {
		t := twiddle[k]
		rowA := mat.Row(base + k)
		rowB := mat.Row(base + half + k)
		for j := 0; j < width; j++ {
			a, b := rowA[j], rowB[j]
			tb := t.Mul(b)
			rowA[j] = a.Add(tb)
			rowB[j] = a.Sub(tb)
		}
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
