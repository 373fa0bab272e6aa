package bitpack

import "github.com/hdt-go/hdt/section"

// FromRaw reconstructs a Resident sequence from a section.RawSequence
// (the byte payload read off disk by section.ReadSequence), unpacking
// the byte stream into a uint64 word array with one guard word so Get
// can always perform its two-word extraction safely.
func FromRaw(raw section.RawSequence) *Resident {
	nWords := (raw.N*uint64(raw.Width)+63)/64 + 1
	words := make([]uint64, nWords)
	for i, b := range raw.Data {
		wi := i / 8
		bi := uint(i%8) * 8
		words[wi] |= uint64(b) << bi
	}
	return NewResidentFromWords(words, raw.N, raw.Width)
}

// ToRaw packs a Resident sequence back into the byte-stream form used
// on disk (little-endian bytes of the word array, truncated to the
// exact payload length), the inverse of FromRaw.
func ToRaw(r *Resident) section.RawSequence {
	nBytes := (r.n*uint64(r.width) + 7) / 8
	data := make([]byte, nBytes)
	for i := range data {
		wi := i / 8
		bi := uint(i%8) * 8
		data[i] = byte(r.words[wi] >> bi)
	}
	return section.RawSequence{Width: r.width, N: r.n, Data: data}
}
