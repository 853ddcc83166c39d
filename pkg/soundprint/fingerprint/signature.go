package fingerprint

import (
	"fmt"
	"strings"
)

// Signature is the bit vector of one fingerprint, one bit per wavelet
// coefficient.
type Signature []bool

// IsSilence reports whether no bit is set.
func (s Signature) IsSilence() bool {
	for _, b := range s {
		if b {
			return false
		}
	}
	return true
}

// Ones counts set bits.
func (s Signature) Ones() int {
	n := 0
	for _, b := range s {
		if b {
			n++
		}
	}
	return n
}

// Pack stores the signature eight bits per byte, least significant bit first.
func (s Signature) Pack() []byte {
	out := make([]byte, (len(s)+7)/8)
	for i, b := range s {
		if b {
			out[i/8] |= 1 << (i % 8)
		}
	}
	return out
}

// UnpackSignature reverses Pack for a signature of the given bit length.
func UnpackSignature(data []byte, length int) (Signature, error) {
	if length < 0 || (length+7)/8 != len(data) {
		return nil, fmt.Errorf("cannot unpack %d bytes into %d bits", len(data), length)
	}
	s := make(Signature, length)
	for i := range s {
		s[i] = data[i/8]&(1<<(i%8)) != 0
	}
	return s, nil
}

// HammingDistance counts positions where a and b differ.
func HammingDistance(a, b Signature) (int, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	d := 0
	for i := range a {
		if a[i] != b[i] {
			d++
		}
	}
	return d, nil
}

func (s Signature) String() string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, b := range s {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
