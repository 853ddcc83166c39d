package fingerprint

import (
	"fmt"
	"math"
)

// WaveletDecomposer transforms a row-major image in place. scratch may be
// nil; when it is at least WaveletScratchSize(rows, cols) long it is used
// instead of allocating.
type WaveletDecomposer interface {
	DecomposeImageInPlace(image []float64, rows, cols int, scratch []float64) error
}

// WaveletScratchSize is the scratch length HaarWavelet needs for an image.
func WaveletScratchSize(rows, cols int) int {
	return 2 * max(rows, cols)
}

// HaarWavelet applies the standard 2D Haar decomposition: a full 1D
// transform on every row, then on every column.
type HaarWavelet struct{}

func (HaarWavelet) DecomposeImageInPlace(image []float64, rows, cols int, scratch []float64) error {
	if rows <= 0 || cols <= 0 || len(image) != rows*cols {
		return fmt.Errorf("image of length %d does not match %dx%d", len(image), rows, cols)
	}

	n := max(rows, cols)
	if len(scratch) < 2*n {
		scratch = make([]float64, 2*n)
	}
	temp, column := scratch[:n], scratch[n:2*n]

	for r := 0; r < rows; r++ {
		haar1D(image[r*cols:(r+1)*cols], temp)
	}

	col := column[:rows]
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = image[r*cols+c]
		}
		haar1D(col, temp)
		for r := 0; r < rows; r++ {
			image[r*cols+c] = col[r]
		}
	}

	for i, v := range image {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: coefficient %d", ErrNonFiniteValue, i)
		}
	}
	return nil
}

// haar1D decomposes a in place. Odd-length passes leave the trailing
// element where it is.
func haar1D(a, temp []float64) {
	h := len(a)
	norm := math.Sqrt(float64(h))
	for i := range a {
		a[i] /= norm
	}

	for h > 1 {
		half := h / 2
		for i := 0; i < half; i++ {
			x, y := a[2*i], a[2*i+1]
			temp[i] = (x + y) / math.Sqrt2
			temp[half+i] = (x - y) / math.Sqrt2
		}
		copy(a[:2*half], temp[:2*half])
		h = half
	}
}
