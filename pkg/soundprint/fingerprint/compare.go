package fingerprint

import (
	"fmt"
	"slices"
)

// Comparison summarizes how two fingerprint sets of the same audio differ.
type Comparison struct {
	CountA     int
	CountB     int
	DiffBits   int
	TotalBits  int
	Compared   int // fingerprint pairs with equal sequence numbers
	UnmatchedA int // fingerprints in A with no partner in B
	UnmatchedB int
}

// DiffRatio is DiffBits/TotalBits, or 0 when nothing was compared.
func (c Comparison) DiffRatio() float64 {
	if c.TotalBits == 0 {
		return 0
	}
	return float64(c.DiffBits) / float64(c.TotalBits)
}

// Compare pairs fingerprints that share a SequenceNumber and counts the
// differing bits of each pair. A fingerprint present in only one set, for
// instance because the other side found that image silent, is counted as
// unmatched. The inputs are not modified.
func Compare(a, b []Fingerprint) (Comparison, error) {
	sa, sb := slices.Clone(a), slices.Clone(b)
	SortBySequence(sa)
	SortBySequence(sb)

	c := Comparison{CountA: len(a), CountB: len(b)}
	i, j := 0, 0
	for i < len(sa) && j < len(sb) {
		switch sqA, sqB := sa[i].SequenceNumber, sb[j].SequenceNumber; {
		case sqA < sqB:
			c.UnmatchedA++
			i++
		case sqA > sqB:
			c.UnmatchedB++
			j++
		default:
			d, err := HammingDistance(sa[i].Signature, sb[j].Signature)
			if err != nil {
				return c, fmt.Errorf("sequence %d: %w", sqA, err)
			}
			c.DiffBits += d
			c.TotalBits += len(sa[i].Signature)
			c.Compared++
			i++
			j++
		}
	}
	c.UnmatchedA += len(sa) - i
	c.UnmatchedB += len(sb) - j
	return c, nil
}
