package fingerprint

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
)

// testSignal returns n samples of two tones, a slow sweep and low-level
// noise, reproducible for a given seed.
func testSignal(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / audio.DefaultSampleRate
		out[i] = 0.4*math.Sin(2*math.Pi*440*t) +
			0.2*math.Sin(2*math.Pi*(700+300*math.Sin(t))*t) +
			0.1*(rng.Float64()*2-1)
	}
	return out
}

func testSamples(seconds int, seed uint64) *audio.Samples {
	return &audio.Samples{
		Data:       testSignal(seconds*audio.DefaultSampleRate, seed),
		SampleRate: audio.DefaultSampleRate,
	}
}

func sorted(fps []Fingerprint) []Fingerprint {
	SortBySequence(fps)
	return fps
}

// TestCreateFingerprintsDeterministicAcrossWorkers tests that the worker
// count does not change the output.
func TestCreateFingerprintsDeterministicAcrossWorkers(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Stride = NewStaticStride(0)
	cfg.NormalizeSignal = true
	samples := testSamples(30, 7)

	single, err := NewService(WithWorkers(1)).CreateFingerprints(samples, cfg)
	if err != nil {
		t.Fatalf("single worker: %v", err)
	}
	if len(single) == 0 {
		t.Fatal("expected fingerprints")
	}

	for _, workers := range []int{2, 4, 7, 64} {
		multi, err := NewService(WithWorkers(workers)).CreateFingerprints(samples, cfg)
		if err != nil {
			t.Fatalf("%d workers: %v", workers, err)
		}
		if !reflect.DeepEqual(sorted(single), sorted(multi)) {
			t.Errorf("%d workers produced different fingerprints", workers)
		}
	}
}

func TestCreateFingerprintsDoesNotMutateInput(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.NormalizeSignal = true
	samples := testSamples(5, 1)
	before := append([]float64(nil), samples.Data...)

	svc := NewService()
	first, err := svc.CreateFingerprints(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, samples.Data) {
		t.Fatal("input samples were modified")
	}

	second, err := svc.CreateFingerprints(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sorted(first), sorted(second)) {
		t.Error("repeated calls produced different fingerprints")
	}
}

func TestCreateFingerprintsShape(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Stride = NewStaticStride(0)
	samples := testSamples(20, 5)
	svc := NewService(WithWorkers(3))

	images, err := svc.CreateSpectralImages(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	fps, err := svc.CreateFingerprints(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}

	if len(fps) > len(images) {
		t.Errorf("%d fingerprints from %d images", len(fps), len(images))
	}
	seen := make(map[int]bool)
	for _, fp := range fps {
		if len(fp.Signature) != cfg.SignatureLength() {
			t.Errorf("fingerprint %d has %d bits", fp.SequenceNumber, len(fp.Signature))
		}
		if fp.Signature.IsSilence() {
			t.Errorf("fingerprint %d is silent", fp.SequenceNumber)
		}
		if ones := fp.Signature.Ones(); ones > 2*cfg.TopWavelets {
			t.Errorf("fingerprint %d has %d bits set", fp.SequenceNumber, ones)
		}
		if seen[fp.SequenceNumber] {
			t.Errorf("duplicate sequence number %d", fp.SequenceNumber)
		}
		seen[fp.SequenceNumber] = true
	}
}

func TestCreateFingerprintsWindowCount(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Stride = NewStaticStride(0)

	for _, k := range []int{1, 4, 9} {
		n := k * cfg.SamplesPerImage()
		samples := &audio.Samples{Data: testSignal(n, uint64(k)), SampleRate: cfg.SampleRate}

		fps, err := NewService(WithWorkers(4)).CreateFingerprints(samples, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if len(fps) != k {
			t.Errorf("%d samples: got %d fingerprints, want %d", n, len(fps), k)
		}
	}
}

func TestCreateFingerprintsSilence(t *testing.T) {
	cfg := DefaultConfiguration()
	samples := &audio.Samples{Data: make([]float64, 5512*10), SampleRate: cfg.SampleRate}

	fps, err := NewService().CreateFingerprints(samples, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(fps) != 0 {
		t.Errorf("got %d fingerprints from silence", len(fps))
	}
}

func TestCreateFingerprintsInvalidConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.TopWavelets = 0

	fps, err := NewService().CreateFingerprints(testSamples(5, 1), cfg)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("expected ErrInvalidConfiguration, got %v", err)
	}
	if fps != nil {
		t.Error("expected no fingerprints")
	}
}

func TestCreateFingerprintsSampleRateMismatch(t *testing.T) {
	samples := testSamples(5, 1)
	samples.SampleRate = 11025

	_, err := NewService().CreateFingerprints(samples, DefaultConfiguration())
	if !errors.Is(err, ErrSampleRateMismatch) {
		t.Errorf("expected ErrSampleRateMismatch, got %v", err)
	}
}

var errBoom = errors.New("boom")

type failingWavelet struct {
	calls   atomic.Int32
	failAt  int32
	doPanic bool
}

func (f *failingWavelet) DecomposeImageInPlace(image []float64, rows, cols int, scratch []float64) error {
	if f.calls.Add(1) == f.failAt {
		if f.doPanic {
			panic("wavelet exploded")
		}
		return errBoom
	}
	return HaarWavelet{}.DecomposeImageInPlace(image, rows, cols, scratch)
}

func TestCreateFingerprintsWorkerFailureAborts(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Stride = NewStaticStride(0)
	samples := testSamples(30, 2)

	svc := NewService(WithWorkers(4), WithWaveletDecomposer(&failingWavelet{failAt: 3}))
	fps, err := svc.CreateFingerprints(samples, cfg)
	if !errors.Is(err, errBoom) {
		t.Errorf("expected errBoom, got %v", err)
	}
	if fps != nil {
		t.Errorf("expected no partial result, got %d fingerprints", len(fps))
	}
}

func TestCreateFingerprintsWorkerPanicBecomesError(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Stride = NewStaticStride(0)

	svc := NewService(WithWorkers(2), WithWaveletDecomposer(&failingWavelet{failAt: 1, doPanic: true}))
	fps, err := svc.CreateFingerprints(testSamples(10, 2), cfg)
	if err == nil {
		t.Fatal("expected error from panicking worker")
	}
	if fps != nil {
		t.Error("expected no fingerprints")
	}
}

type countingNormalizer struct{ calls int }

func (c *countingNormalizer) NormalizeInPlace(samples []float64) { c.calls++ }

func TestNormalizerOnlyRunsWhenConfigured(t *testing.T) {
	n := &countingNormalizer{}
	svc := NewService(WithNormalizer(n))
	samples := testSamples(3, 1)

	cfg := DefaultConfiguration()
	if _, err := svc.CreateFingerprints(samples, cfg); err != nil {
		t.Fatal(err)
	}
	if n.calls != 0 {
		t.Errorf("normalizer ran %d times with NormalizeSignal off", n.calls)
	}

	cfg.NormalizeSignal = true
	if _, err := svc.CreateFingerprints(samples, cfg); err != nil {
		t.Fatal(err)
	}
	if n.calls != 1 {
		t.Errorf("normalizer ran %d times, want 1", n.calls)
	}
}

func TestCompare(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Stride = NewStaticStride(0)
	svc := NewService()

	a, err := svc.CreateFingerprints(testSamples(15, 9), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.CreateFingerprints(testSamples(15, 9), cfg)
	if err != nil {
		t.Fatal(err)
	}

	cmp, err := Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.DiffBits != 0 || cmp.DiffRatio() != 0 {
		t.Errorf("identical inputs differ in %d bits", cmp.DiffBits)
	}
	if cmp.CountA != cmp.CountB || cmp.Compared != len(a) {
		t.Errorf("unexpected comparison %+v", cmp)
	}
	if cmp.TotalBits != len(a)*cfg.SignatureLength() {
		t.Errorf("total bits %d", cmp.TotalBits)
	}

	other, err := svc.CreateFingerprints(testSamples(15, 10), cfg)
	if err != nil {
		t.Fatal(err)
	}
	cmp, err = Compare(a, other)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.DiffBits == 0 {
		t.Error("different noise produced identical fingerprints")
	}
}

// tinyImageBuilder returns a single 4x4 image regardless of configuration.
type tinyImageBuilder struct{}

func (tinyImageBuilder) CreateLogSpectrogram(samples *audio.Samples, cfg Configuration) ([]SpectralImage, error) {
	img := make([]float64, 16)
	for i := range img {
		img[i] = float64(i + 1)
	}
	return []SpectralImage{{Image: img, Rows: 4, Cols: 4, SequenceNumber: 1}}, nil
}

func TestCreateFingerprintsRejectsMisshapenImages(t *testing.T) {
	cfg := DefaultConfiguration()
	svc := NewService(WithSpectrumBuilder(tinyImageBuilder{}))

	fps, err := svc.CreateFingerprints(testSamples(3, 1), cfg)
	if !errors.Is(err, ErrImageShape) {
		t.Fatalf("expected ErrImageShape, got %v", err)
	}
	if fps != nil {
		t.Errorf("got %d fingerprints", len(fps))
	}

	// a buffer that disagrees with its declared shape
	images, err := NewService().CreateSpectralImages(testSamples(3, 1), cfg)
	if err != nil {
		t.Fatal(err)
	}
	images[0].Image = images[0].Image[:len(images[0].Image)-1]
	if _, err := svc.FingerprintImages(images, cfg); !errors.Is(err, ErrImageShape) {
		t.Errorf("expected ErrImageShape for truncated buffer, got %v", err)
	}
}

func TestComparePairsBySequenceNumber(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Stride = NewStaticStride(0)

	a, err := NewService().CreateFingerprints(testSamples(15, 9), cfg)
	if err != nil {
		t.Fatal(err)
	}
	SortBySequence(a)
	if len(a) < 6 {
		t.Fatalf("need at least 6 fingerprints, got %d", len(a))
	}

	// b lost the fifth image, as if its decoder found it silent
	b := append(slices.Clone(a[:4]), a[5:]...)

	cmp, err := Compare(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.DiffBits != 0 {
		t.Errorf("remaining pairs differ in %d bits", cmp.DiffBits)
	}
	if cmp.Compared != len(b) {
		t.Errorf("compared %d pairs, want %d", cmp.Compared, len(b))
	}
	if cmp.UnmatchedA != 1 || cmp.UnmatchedB != 0 {
		t.Errorf("unmatched %d/%d, want 1/0", cmp.UnmatchedA, cmp.UnmatchedB)
	}

	cmp, err = Compare(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if cmp.UnmatchedA != 0 || cmp.UnmatchedB != 1 || cmp.DiffBits != 0 {
		t.Errorf("reversed comparison %+v", cmp)
	}
}
