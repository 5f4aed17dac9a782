// Package signal implements frequency-domain band filters used to build
// band-limited feature targets. All filtering happens in float64 at target
// construction time; the transforms come from gonum's dsp/fourier package.
package signal

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Band is an inclusive frequency band over relative frequencies in cycles
// per sample. Nil bounds are open: a nil Lower matches everything below
// Upper, a nil Upper everything above Lower, and a band with both bounds
// nil contains every frequency.
type Band struct {
	Lower *float64
	Upper *float64
}

// NewBand returns a fully bounded band [lower, upper].
func NewBand(lower, upper float64) Band {
	return Band{Lower: &lower, Upper: &upper}
}

// LowPass returns the band [0, upper].
func LowPass(upper float64) Band {
	return Band{Upper: &upper}
}

// HighPass returns the band [lower, inf).
func HighPass(lower float64) Band {
	return Band{Lower: &lower}
}

// Contains reports whether frequency f lies in the band.
func (b Band) Contains(f float64) bool {
	if b.Lower != nil && f < *b.Lower {
		return false
	}
	if b.Upper != nil && f > *b.Upper {
		return false
	}
	return true
}

// Open reports whether both bounds are nil. An open band passes every
// frequency; layers treat it as "no filtering requested".
func (b Band) Open() bool {
	return b.Lower == nil && b.Upper == nil
}

// Validate rejects inverted bounds.
func (b Band) Validate() error {
	if b.Lower != nil && b.Upper != nil && *b.Lower > *b.Upper {
		return fmt.Errorf("band lower bound %v above upper bound %v", *b.Lower, *b.Upper)
	}
	return nil
}

func (b Band) String() string {
	lo, hi := "0", "inf"
	if b.Lower != nil {
		lo = fmt.Sprintf("%g", *b.Lower)
	}
	if b.Upper != nil {
		hi = fmt.Sprintf("%g", *b.Upper)
	}
	return fmt.Sprintf("[%s, %s]", lo, hi)
}

// RealKeepMask returns the coefficient keep-mask for a real FFT of length n.
// Entry i covers the relative frequency i/n; the mask has n/2+1 entries,
// matching the coefficient count of a real transform.
func RealKeepMask(n int, band Band) []bool {
	fft := fourier.NewFFT(n)
	keep := make([]bool, n/2+1)
	for i := range keep {
		keep[i] = band.Contains(math.Abs(fft.Freq(i)))
	}
	return keep
}

// FilterRows band-filters each row of m independently with a real 1D FFT.
func FilterRows(m *mat.Dense, band Band) *mat.Dense {
	_, c := m.Dims()
	return FilterRowsMask(m, RealKeepMask(c, band))
}

// FilterRowsMask filters each row of m with an explicit coefficient
// keep-mask of length cols/2+1. Dropped coefficients are zeroed before the
// inverse transform; the result is renormalized (gonum transforms are
// unnormalized, a round trip scales by the sequence length).
func FilterRowsMask(m *mat.Dense, keep []bool) *mat.Dense {
	r, c := m.Dims()
	if len(keep) != c/2+1 {
		panic(fmt.Sprintf("signal: keep mask length %d, want %d for %d columns", len(keep), c/2+1, c))
	}

	fft := fourier.NewFFT(c)
	out := mat.NewDense(r, c, nil)

	seq := make([]float64, c)
	coeff := make([]complex128, c/2+1)
	inv := 1 / float64(c)

	for i := 0; i < r; i++ {
		fft.Coefficients(coeff, mat.Row(seq, i, m))
		for j := range coeff {
			if !keep[j] {
				coeff[j] = 0
			}
		}
		fft.Sequence(seq, coeff)
		floats.Scale(inv, seq)
		out.SetRow(i, seq)
	}

	return out
}

// FilterVec band-filters a single vector with a real 1D FFT.
func FilterVec(v []float64, band Band) []float64 {
	return FilterVecMask(v, RealKeepMask(len(v), band))
}

// FilterVecMask filters a vector with an explicit coefficient keep-mask of
// length len(v)/2+1. An all-false mask yields the zero vector.
func FilterVecMask(v []float64, keep []bool) []float64 {
	out := FilterRowsMask(mat.NewDense(1, len(v), v), keep)
	return out.RawRowView(0)
}

// FilterMatrix band-filters a whole matrix treated as a single 2D plane.
func FilterMatrix(m *mat.Dense, band Band) *mat.Dense {
	r, c := m.Dims()
	plane := make([]float64, r*c)
	for i := 0; i < r; i++ {
		mat.Row(plane[i*c:(i+1)*c], i, m)
	}
	filtered := FilterPlanes([][]float64{plane}, r, c, band)
	return mat.NewDense(r, c, filtered[0])
}

// FilterPlanes band-filters each h x w plane with a 2D FFT. A coefficient
// at grid position (i, j) is kept when its radial frequency magnitude
// hypot(fy, fx) lies in the band, fy and fx being the per-axis relative
// frequencies (negative in the upper halves, as in a complex transform).
func FilterPlanes(planes [][]float64, h, w int, band Band) [][]float64 {
	rowFFT := fourier.NewCmplxFFT(w)
	colFFT := fourier.NewCmplxFFT(h)

	keep := make([]bool, h*w)
	for i := 0; i < h; i++ {
		fy := colFFT.Freq(i)
		for j := 0; j < w; j++ {
			keep[i*w+j] = band.Contains(math.Hypot(fy, rowFFT.Freq(j)))
		}
	}

	inv := 1 / float64(h*w)
	out := make([][]float64, len(planes))

	buf := make([]complex128, h*w)
	rowIn := make([]complex128, w)
	rowOut := make([]complex128, w)
	colIn := make([]complex128, h)
	colOut := make([]complex128, h)

	for p, plane := range planes {
		if len(plane) != h*w {
			panic(fmt.Sprintf("signal: plane %d has %d samples, want %d", p, len(plane), h*w))
		}

		for i, v := range plane {
			buf[i] = complex(v, 0)
		}

		// Forward transform: rows, then columns.
		for i := 0; i < h; i++ {
			copy(rowIn, buf[i*w:(i+1)*w])
			rowFFT.Coefficients(rowOut, rowIn)
			copy(buf[i*w:(i+1)*w], rowOut)
		}
		for j := 0; j < w; j++ {
			for i := 0; i < h; i++ {
				colIn[i] = buf[i*w+j]
			}
			colFFT.Coefficients(colOut, colIn)
			for i := 0; i < h; i++ {
				buf[i*w+j] = colOut[i]
			}
		}

		for i, ok := range keep {
			if !ok {
				buf[i] = 0
			}
		}

		// Inverse transform: columns, then rows.
		for j := 0; j < w; j++ {
			for i := 0; i < h; i++ {
				colIn[i] = buf[i*w+j]
			}
			colFFT.Sequence(colOut, colIn)
			for i := 0; i < h; i++ {
				buf[i*w+j] = colOut[i]
			}
		}
		for i := 0; i < h; i++ {
			copy(rowIn, buf[i*w:(i+1)*w])
			rowFFT.Sequence(rowOut, rowIn)
			copy(buf[i*w:(i+1)*w], rowOut)
		}

		filtered := make([]float64, h*w)
		for i, v := range buf {
			filtered[i] = real(v) * inv
		}
		out[p] = filtered
	}

	return out
}
