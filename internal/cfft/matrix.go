// Package cfft implements the circle-FFT: interpolation and evaluation of
// multi-column trace data over a CircleDomain, the low-degree extension
// step FRI's prover side needs and the barycentric point-evaluation step
// its verifier side needs.
package cfft

// Matrix is a row-major table of field elements: one row per domain point,
// one column per trace/polynomial column, mirroring the teacher's
// conventions for "many columns share one domain" evaluation tables.
type Matrix[F any] struct {
	Width, Height int
	Values        []F
}

// NewMatrix allocates a zero-valued Height x Width matrix.
func NewMatrix[F any](height, width int) *Matrix[F] {
	return &Matrix[F]{Width: width, Height: height, Values: make([]F, height*width)}
}

// Row returns the backing slice for row i; mutating it mutates the matrix.
func (m *Matrix[F]) Row(i int) []F {
	return m.Values[i*m.Width : (i+1)*m.Width]
}

// Col extracts column j as a fresh slice.
func (m *Matrix[F]) Col(j int) []F {
	col := make([]F, m.Height)
	for i := 0; i < m.Height; i++ {
		col[i] = m.Values[i*m.Width+j]
	}
	return col
}

func (m *Matrix[F]) At(row, col int) F { return m.Values[row*m.Width+col] }
func (m *Matrix[F]) Set(row, col int, v F) { m.Values[row*m.Width+col] = v }
