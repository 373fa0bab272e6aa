// Package bitpack implements C1 of the bitmap-triples core: random
// access to a fixed-width integer sequence packed LSB-first into a
// byte/word stream. Two interchangeable implementations satisfy the
// same Sequence contract, Resident (in-memory words) and the
// file-backed variant in file.go, so storage strategies can compose
// either without the rest of the system noticing (spec §4.1, §9).
package bitpack

import "fmt"

// Sequence is the capability every bit-packed sequence variant
// implements. Reads past Len() return 0; callers must not rely on
// that and should check the index themselves (spec §4.1).
type Sequence interface {
	Get(i uint64) (uint64, error)
	Len() uint64
	Width() uint8
	SizeInBytes() uint64
}

// Resident is an in-memory bit-packed sequence: N values of Width
// bits each, packed LSB-first across a uint64 word array.
type Resident struct {
	words []uint64
	n     uint64
	width uint8
}

// NewResident packs values into a Resident sequence using width bits
// per value. It panics if any value does not fit in width bits;
// callers are expected to have sized width via MinWidth first.
func NewResident(values []uint64, width uint8) *Resident {
	if width == 0 || width > 64 {
		panic(fmt.Sprintf("bitpack: invalid width %d", width))
	}
	nWords := (uint64(len(values))*uint64(width) + 63) / 64
	r := &Resident{
		words: make([]uint64, nWords+1), // one guard word for the two-word extraction trick
		n:     uint64(len(values)),
		width: width,
	}
	mask := widthMask(width)
	for i, v := range values {
		if v&^mask != 0 {
			panic(fmt.Sprintf("bitpack: value %d does not fit in %d bits", v, width))
		}
		r.set(uint64(i), v)
	}
	return r
}

// NewResidentFromWords wraps an already bit-packed word array (e.g.
// parsed from an HDT sequence sub-section) without recopying values.
// words must have at least one guard word beyond the payload.
func NewResidentFromWords(words []uint64, n uint64, width uint8) *Resident {
	return &Resident{words: words, n: n, width: width}
}

func widthMask(width uint8) uint64 {
	if width == 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

func (r *Resident) set(i, v uint64) {
	bo := i * uint64(r.width)
	wi := bo / 64
	bi := bo % 64
	r.words[wi] |= v << bi
	if bi+uint64(r.width) > 64 {
		r.words[wi+1] |= v >> (64 - bi)
	}
}

// Get returns the i-th value, or 0 if i is out of range.
func (r *Resident) Get(i uint64) (uint64, error) {
	if i >= r.n {
		return 0, nil
	}
	bo := i * uint64(r.width)
	wi := bo / 64
	bi := bo % 64
	mask := widthMask(r.width)
	if bi+uint64(r.width) <= 64 || int(wi)+1 >= len(r.words) {
		return (r.words[wi] >> bi) & mask, nil
	}
	return ((r.words[wi] >> bi) | (r.words[wi+1] << (64 - bi))) & mask, nil
}

// Len returns the number of packed values.
func (r *Resident) Len() uint64 { return r.n }

// Width returns the number of bits per value.
func (r *Resident) Width() uint8 { return r.width }

// SizeInBytes reports the resident word array's footprint.
func (r *Resident) SizeInBytes() uint64 { return uint64(len(r.words)) * 8 }

// Words exposes the backing word array, e.g. for serialization.
func (r *Resident) Words() []uint64 { return r.words }

// MinWidth returns the minimum bit width that can represent max
// (spec §3: bits_per_entry ≥ ⌈log2(max+1)⌉).
func MinWidth(max uint64) uint8 {
	w := uint8(0)
	for (uint64(1) << w) <= max {
		w++
	}
	if w == 0 {
		w = 1
	}
	return w
}
