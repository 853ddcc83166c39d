package fingerprint

import "sync"

// scratch is the private working memory of one pipeline worker.
type scratch struct {
	indexes []int
	wavelet []float64
}

var scratchPool sync.Pool

// acquireScratch returns a buffer sized for a rows x cols image.
func acquireScratch(rows, cols int) *scratch {
	n := rows * cols
	w := WaveletScratchSize(rows, cols)
	if s, ok := scratchPool.Get().(*scratch); ok && cap(s.indexes) >= n && cap(s.wavelet) >= w {
		s.indexes = s.indexes[:n]
		s.wavelet = s.wavelet[:w]
		return s
	}
	return &scratch{
		indexes: make([]int, n),
		wavelet: make([]float64, w),
	}
}

func releaseScratch(s *scratch) {
	scratchPool.Put(s)
}
