// Package wavelet implements C3: a wavelet matrix over a sequence of
// small integers, supporting access/rank/select in O(width). It is
// built over sequence_y (the predicate run) and composes directly on
// top of bitmap.Bitmap (C2) for each level's rank/select, following
// the same layered-rank-index discipline the corpus's succinct bitmap
// helper uses for its own rank/select structure (spec §4.3).
package wavelet

import "github.com/hdt-go/hdt/bitmap"

// Matrix is an immutable wavelet matrix over values in [0, 2^Width).
type Matrix struct {
	width  uint8
	n      uint64
	levels []*bitmap.Bitmap // levels[0] is the MSB level
	zeros  []uint64         // zeros[l] = number of 0s at level l
}

// Build constructs a wavelet matrix over values, each assumed to fit
// in width bits.
func Build(values []uint64, width uint8) *Matrix {
	m := &Matrix{width: width, n: uint64(len(values))}
	if width == 0 {
		return m
	}
	cur := append([]uint64(nil), values...)
	m.levels = make([]*bitmap.Bitmap, width)
	m.zeros = make([]uint64, width)

	for l := 0; l < int(width); l++ {
		bitShift := uint(width) - 1 - uint(l)
		bits := make([]bool, len(cur))
		var zeros, ones []uint64
		for i, v := range cur {
			bit := (v >> bitShift) & 1
			bits[i] = bit == 1
			if bit == 1 {
				ones = append(ones, v)
			} else {
				zeros = append(zeros, v)
			}
		}
		m.levels[l] = bitmap.NewFromBits(bits)
		m.zeros[l] = uint64(len(zeros))
		cur = append(zeros, ones...)
	}
	return m
}

// Len returns the number of values in the sequence.
func (m *Matrix) Len() uint64 { return m.n }

// Width returns the number of bits per value.
func (m *Matrix) Width() uint8 { return m.width }

// Access returns the value at position i.
func (m *Matrix) Access(i uint64) uint64 {
	var v uint64
	pos := i
	for l := 0; l < int(m.width); l++ {
		bit := m.levels[l].Get(pos)
		rank1 := m.levels[l].Rank1(pos)
		v <<= 1
		if bit {
			v |= 1
			pos = m.zeros[l] + rank1
		} else {
			pos = pos - rank1
		}
	}
	return v
}

// Rank returns the number of occurrences of value v in [0, i). This
// is the standard top-down wavelet-matrix rank traversal: at each
// level, i is re-mapped to its image in the zero- or one-partition of
// the next level. After all levels, the resulting position lies inside
// v's block of the bottom-level reordering, so subtracting the block's
// start (startOf(v)) gives the count of v in [0, i).
func (m *Matrix) Rank(v uint64, i uint64) uint64 {
	pos := i
	for l := 0; l < int(m.width); l++ {
		bitShift := uint(m.width) - 1 - uint(l)
		bit := (v >> bitShift) & 1
		rank1 := m.levels[l].Rank1(pos)
		if bit == 1 {
			pos = m.zeros[l] + rank1
		} else {
			pos = pos - rank1
		}
	}
	return pos - m.startOf(v)
}

// Select returns the position of the (k+1)-th occurrence of value v,
// or (0, false) if there are fewer than k+1 occurrences.
func (m *Matrix) Select(v uint64, k uint64) (uint64, bool) {
	pos := m.startOf(v) + k
	if pos >= m.n {
		return 0, false
	}
	// Confirm v actually occupies [startOf(v), startOf(v)+count(v)) by
	// walking back up from the bottom level to the original index.
	for l := int(m.width) - 1; l >= 0; l-- {
		bitShift := uint(m.width) - 1 - uint(l)
		bit := (v >> bitShift) & 1
		if bit == 1 {
			if pos < m.zeros[l] {
				return 0, false
			}
			rankTarget := pos - m.zeros[l]
			p, ok := m.levels[l].Select1(rankTarget)
			if !ok {
				return 0, false
			}
			pos = p
		} else {
			p, ok := selectZero(m.levels[l], pos)
			if !ok {
				return 0, false
			}
			pos = p
		}
	}
	return pos, true
}

// startOf returns the position in the bottom-level reordering where
// values equal to v would begin, found by pushing v's bit pattern
// down through each level from the top without any rank query against
// an actual position, used to bound Rank/Select's search range.
func (m *Matrix) startOf(v uint64) uint64 {
	lo, hi := uint64(0), m.n
	for l := 0; l < int(m.width); l++ {
		bitShift := uint(m.width) - 1 - uint(l)
		bit := (v >> bitShift) & 1
		rankLo := m.levels[l].Rank1(lo)
		rankHi := m.levels[l].Rank1(hi)
		if bit == 1 {
			lo = m.zeros[l] + rankLo
			hi = m.zeros[l] + rankHi
		} else {
			lo = lo - rankLo
			hi = hi - rankHi
		}
	}
	return lo
}

// selectZero returns the position of the (k+1)-th zero bit in bm.
func selectZero(bm *bitmap.Bitmap, k uint64) (uint64, bool) {
	zeros := bm.Len() - bm.Popcount()
	if k >= zeros {
		return 0, false
	}
	lo, hi := uint64(0), bm.Len()
	for lo < hi {
		mid := (lo + hi) / 2
		zerosBefore := mid - bm.Rank1(mid)
		if zerosBefore <= k {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1, true
}

// SizeInBytes reports the matrix's resident footprint.
func (m *Matrix) SizeInBytes() uint64 {
	var total uint64
	for _, lvl := range m.levels {
		total += lvl.SizeInBytes()
	}
	return total + uint64(len(m.zeros))*8
}
