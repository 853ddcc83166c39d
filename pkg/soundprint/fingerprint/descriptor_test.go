package fingerprint

import "testing"

func setBits(s Signature) []int {
	var out []int
	for i, b := range s {
		if b {
			out = append(out, i)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtractTopWaveletsSelectsEachSign(t *testing.T) {
	image := []float64{0.5, -4, 3, -0.1, 6, -2}
	sig := TopWaveletDescriptor{}.ExtractTopWavelets(image, 2, make([]int, len(image)))

	if len(sig) != len(image) {
		t.Fatalf("signature length %d, want %d", len(sig), len(image))
	}
	// positives 6 and 3, negatives -4 and -2
	if got, want := setBits(sig), []int{1, 2, 4, 5}; !equalInts(got, want) {
		t.Errorf("set bits %v, want %v", got, want)
	}
}

func TestExtractTopWaveletsBreaksTiesByIndex(t *testing.T) {
	image := []float64{2, 2, -2, -2, 2}
	sig := TopWaveletDescriptor{}.ExtractTopWavelets(image, 1, nil)

	if got, want := setBits(sig), []int{0, 2}; !equalInts(got, want) {
		t.Errorf("set bits %v, want %v", got, want)
	}
}

func TestExtractTopWaveletsIgnoresZeros(t *testing.T) {
	image := []float64{1, 0, -1, 0}
	sig := TopWaveletDescriptor{}.ExtractTopWavelets(image, 10, nil)
	if got, want := setBits(sig), []int{0, 2}; !equalInts(got, want) {
		t.Errorf("set bits %v, want %v", got, want)
	}

	silent := TopWaveletDescriptor{}.ExtractTopWavelets(make([]float64, 8), 3, nil)
	if !silent.IsSilence() {
		t.Error("all-zero image should encode as silence")
	}
}

func TestExtractTopWaveletsReusesScratch(t *testing.T) {
	indexes := []int{9, 9, 9, 9}
	image := []float64{-1, 3, 2, -5}
	TopWaveletDescriptor{}.ExtractTopWavelets(image, 1, indexes)

	// scratch ends up holding the ranking
	if want := []int{3, 1, 2, 0}; !equalInts(indexes, want) {
		t.Errorf("indexes %v, want %v", indexes, want)
	}
}
