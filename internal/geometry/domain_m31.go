package geometry

import (
	"sync"

	"github.com/vybium/circle-stark-core/internal/field"
)

// circleTwoAdicity is the 2-adicity of the M31 circle group: the curve
// x^2+y^2=1 over F_p has exactly p+1 = 2^31 points because p ≡ 3 (mod 4),
// so the whole group is a single cyclic group of order 2^31.
const circleTwoAdicity = 31

var (
	circleGenOnce sync.Once
	circleGenM31  Point[field.M31]
)

// fullCircleGeneratorM31 returns a point generating the entire order-2^31
// circle group over M31. It is found constructively rather than hardcoded:
// any point P with P.MulScalar(1<<(circleTwoAdicity-1)) != identity has
// exact order 2^31 since the group's order is a single power of two, so a
// short search over x-coordinates (taking whichever gives a residue
// 1-x^2) reliably finds one.
func fullCircleGeneratorM31() Point[field.M31] {
	circleGenOnce.Do(func() {
		one := field.NewM31(1)
		for xi := uint64(2); ; xi++ {
			x := field.NewM31(xi)
			ySq := one.Sub(x.Square())
			if ySq.IsZero() {
				continue
			}
			y, ok := ySq.Sqrt()
			if !ok {
				continue
			}
			p := Point[field.M31]{X: x, Y: y}
			half := p.MulScalar(1 << (circleTwoAdicity - 1))
			if !half.IsIdentity() {
				circleGenM31 = p
				return
			}
		}
	})
	return circleGenM31
}

// SubgroupGeneratorM31 returns a generator of the order-2^logN cyclic
// subgroup of the M31 circle group, for 0 <= logN <= circleTwoAdicity.
func SubgroupGeneratorM31(logN int) Point[field.M31] {
	assertValidLogN(logN)
	return fullCircleGeneratorM31().MulScalar(1 << uint(circleTwoAdicity-logN))
}

func assertValidLogN(logN int) {
	if logN < 0 || logN > circleTwoAdicity {
		panic("geometry: log_n out of range for the M31 circle group")
	}
}

// CircleDomain is a coset shift + <gen> of size 2^LogN on the circle,
// the evaluation domain circle-FFT operates over.
type CircleDomain struct {
	LogN  int
	Shift Point[field.M31]
	Gen   Point[field.M31]
}

// StandardCircleDomain builds the canonical size-2^logN domain used for a
// fresh trace: its coset shift is a generator of the next-larger cyclic
// subgroup, which keeps the domain disjoint from any order-2^logN
// subgroup and avoids the two axis points (±1,0) that would make some
// twiddles zero.
func StandardCircleDomain(logN int) CircleDomain {
	if logN < 1 {
		panic("geometry: circle domain requires log_n >= 1")
	}
	return CircleDomain{
		LogN:  logN,
		Shift: SubgroupGeneratorM31(logN + 1),
		Gen:   SubgroupGeneratorM31(logN),
	}
}

// Size returns the number of points in the domain.
func (d CircleDomain) Size() int { return 1 << uint(d.LogN) }

// Points enumerates the domain in natural (coset) order:
// shift, shift+gen, shift+2gen, ...
func (d CircleDomain) Points() []Point[field.M31] {
	n := d.Size()
	pts := make([]Point[field.M31], n)
	cur := d.Shift
	for i := 0; i < n; i++ {
		pts[i] = cur
		cur = cur.Add(d.Gen)
	}
	return pts
}

// Coset0 returns the first half of the domain, shift + i*gen for
// i = 0 .. 2^(LogN-1)-1: the representative points the twiddle tables
// (and the symmetry between (x,y) and (x,-y)) are built from.
func (d CircleDomain) Coset0() []Point[field.M31] {
	half := 1 << uint(d.LogN-1)
	pts := make([]Point[field.M31], half)
	cur := d.Shift
	for i := 0; i < half; i++ {
		pts[i] = cur
		cur = cur.Add(d.Gen)
	}
	return pts
}

// Shrink returns the size-2^newLogN domain sharing this domain's shift,
// used to build LDE sub-domains during extrapolation.
func (d CircleDomain) Shrink(newLogN int) CircleDomain {
	if newLogN > d.LogN {
		panic("geometry: cannot shrink a circle domain to a larger size")
	}
	return CircleDomain{
		LogN:  newLogN,
		Shift: d.Shift,
		Gen:   SubgroupGeneratorM31(newLogN),
	}
}
