package fingerprint

import (
	"cmp"
	"math"
	"slices"
)

// Descriptor encodes a decomposed image as a signature. indexes is caller
// scratch of length len(image); its contents are overwritten.
type Descriptor interface {
	ExtractTopWavelets(image []float64, top int, indexes []int) Signature
}

// TopWaveletDescriptor ranks coefficients by absolute value, largest first,
// with ties kept in index order. It sets the bit of the top positive and the
// top negative coefficients, up to top of each. Zero coefficients never set
// a bit, so an all-zero image yields a silent signature.
type TopWaveletDescriptor struct{}

func (TopWaveletDescriptor) ExtractTopWavelets(image []float64, top int, indexes []int) Signature {
	n := len(image)
	if len(indexes) < n {
		indexes = make([]int, n)
	}
	indexes = indexes[:n]
	PopulateIndexes(indexes)

	slices.SortStableFunc(indexes, func(a, b int) int {
		return cmp.Compare(math.Abs(image[b]), math.Abs(image[a]))
	})

	sig := make(Signature, n)
	pos, neg := 0, 0
	for _, i := range indexes {
		if pos >= top && neg >= top {
			break
		}
		switch v := image[i]; {
		case v > 0 && pos < top:
			sig[i] = true
			pos++
		case v < 0 && neg < top:
			sig[i] = true
			neg++
		}
	}
	return sig
}

// PopulateIndexes fills indexes with 0..len(indexes)-1.
func PopulateIndexes(indexes []int) {
	for i := range indexes {
		indexes[i] = i
	}
}
