package fingerprint

import (
	"context"
	"fmt"
	"runtime"

	"github.com/mdobak/go-xerrors"
	"golang.org/x/sync/errgroup"

	"github.com/himanishpuri/SoundPrint/pkg/soundprint/audio"
)

// Service runs the fingerprinting pipeline: normalize, build spectral
// images, then decompose and encode the images on a fixed pool of workers.
// A Service holds no per-call state and may be shared.
type Service struct {
	workers    int
	normalizer Normalizer
	spectrum   SpectrumBuilder
	wavelet    WaveletDecomposer
	descriptor Descriptor
}

type Option func(*Service)

// WithWorkers sets the number of image workers. Values below 1 fall back to
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

func WithNormalizer(n Normalizer) Option {
	return func(s *Service) {
		s.normalizer = n
	}
}

func WithSpectrumBuilder(b SpectrumBuilder) Option {
	return func(s *Service) {
		s.spectrum = b
	}
}

func WithWaveletDecomposer(w WaveletDecomposer) Option {
	return func(s *Service) {
		s.wavelet = w
	}
}

func WithDescriptor(d Descriptor) Option {
	return func(s *Service) {
		s.descriptor = d
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		normalizer: RMSNormalizer{},
		spectrum:   LogSpectrumBuilder{},
		wavelet:    HaarWavelet{},
		descriptor: TopWaveletDescriptor{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

func (s *Service) Workers() int {
	return s.workers
}

// CreateSpectralImages normalizes (if configured) and builds the spectral
// images without running the wavelet stage. samples is not modified.
func (s *Service) CreateSpectralImages(samples *audio.Samples, cfg Configuration) ([]SpectralImage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if samples == nil {
		return nil, fmt.Errorf("%w: nil samples", ErrInvalidConfiguration)
	}

	src := samples
	if cfg.NormalizeSignal {
		data := make([]float64, len(samples.Data))
		copy(data, samples.Data)
		s.normalizer.NormalizeInPlace(data)
		src = &audio.Samples{Data: data, SampleRate: samples.SampleRate, Origin: samples.Origin}
	}

	images, err := s.spectrum.CreateLogSpectrogram(src, cfg)
	if err != nil {
		return nil, fmt.Errorf("building spectrogram: %w", err)
	}
	return images, nil
}

// CreateFingerprints returns one fingerprint per non-silent spectral image.
// The result has no defined order; use SortBySequence when order matters.
// Any worker failure aborts the call and no fingerprints are returned.
func (s *Service) CreateFingerprints(samples *audio.Samples, cfg Configuration) ([]Fingerprint, error) {
	images, err := s.CreateSpectralImages(samples, cfg)
	if err != nil {
		return nil, err
	}
	return s.FingerprintImages(images, cfg)
}

// FingerprintImages decomposes and encodes already built images. The image
// buffers are rewritten by the wavelet stage.
func (s *Service) FingerprintImages(images []SpectralImage, cfg Configuration) ([]Fingerprint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}
	for i := range images {
		if err := checkShape(&images[i], cfg); err != nil {
			return nil, err
		}
	}

	workers := min(s.workers, len(images))
	parts := make([][]Fingerprint, workers)
	g, ctx := errgroup.WithContext(context.Background())

	chunk := (len(images) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(images))
		if lo >= hi {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = xerrors.New(fmt.Errorf("fingerprint worker %d panicked: %v", w, r))
				}
			}()
			parts[w], err = s.runPartition(ctx, images[lo:hi], cfg)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	out := make([]Fingerprint, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// checkShape rejects images whose signatures would not be
// cfg.SignatureLength() bits long.
func checkShape(img *SpectralImage, cfg Configuration) error {
	if img.Rows != cfg.ImageLength || img.Cols != cfg.LogBins || len(img.Image) != cfg.SignatureLength() {
		return fmt.Errorf("%w: image %d is %dx%d with %d values, want %dx%d",
			ErrImageShape, img.SequenceNumber, img.Rows, img.Cols, len(img.Image), cfg.ImageLength, cfg.LogBins)
	}
	return nil
}

// runPartition processes a contiguous run of images with one scratch buffer.
func (s *Service) runPartition(ctx context.Context, images []SpectralImage, cfg Configuration) ([]Fingerprint, error) {
	sc := acquireScratch(cfg.ImageLength, cfg.LogBins)
	defer releaseScratch(sc)

	var out []Fingerprint
	for i := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img := &images[i]
		if err := s.wavelet.DecomposeImageInPlace(img.Image, img.Rows, img.Cols, sc.wavelet); err != nil {
			return nil, fmt.Errorf("decomposing image %d: %w", img.SequenceNumber, err)
		}
		sig := s.descriptor.ExtractTopWavelets(img.Image, cfg.TopWavelets, sc.indexes)
		if sig.IsSilence() {
			continue
		}
		out = append(out, Fingerprint{
			Signature:      sig,
			StartsAt:       img.StartsAt,
			SequenceNumber: img.SequenceNumber,
		})
	}
	return out, nil
}
