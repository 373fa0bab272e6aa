package bitmap

import (
	"encoding/binary"
	"fmt"

	"github.com/hdt-go/hdt/section"
)

// FromRaw reconstructs a Bitmap from a section.RawBitmap payload read
// off disk, building the rank/select index over it.
func FromRaw(raw section.RawBitmap) *Bitmap {
	nWords := (raw.NumBits + 63) / 64
	words := make([]uint64, nWords)
	for i, b := range raw.Data {
		wi := i / 8
		bi := uint(i%8) * 8
		words[wi] |= uint64(b) << bi
	}
	return New(words, raw.NumBits)
}

// Marshal serializes the Bitmap to the byte-stable form the cache
// file stores (spec §6.2): numBits (u64 LE) followed by the packed
// bit data. The rank/select index is not serialized, it is cheap to
// rebuild from the bit data in index() and keeping it out of the
// format means the cache stays byte-stable across rank/select
// implementation changes.
func (b *Bitmap) Marshal() []byte {
	nBytes := (b.numBits + 7) / 8
	out := make([]byte, 8, 8+nBytes)
	binary.LittleEndian.PutUint64(out, b.numBits)
	for i := uint64(0); i < nBytes; i++ {
		wi := i / 8
		bi := uint(i%8) * 8
		out = append(out, byte(b.words[wi]>>bi))
	}
	return out
}

// Unmarshal parses the form written by Marshal and rebuilds a Bitmap
// with a freshly computed rank/select index.
func Unmarshal(data []byte) (*Bitmap, []byte, error) {
	if len(data) < 8 {
		return nil, nil, fmt.Errorf("bitmap: truncated header")
	}
	numBits := binary.LittleEndian.Uint64(data)
	nBytes := (numBits + 7) / 8
	if uint64(len(data)-8) < nBytes {
		return nil, nil, fmt.Errorf("bitmap: truncated payload")
	}
	payload := data[8 : 8+nBytes]
	nWords := (numBits + 63) / 64
	words := make([]uint64, nWords)
	for i, b := range payload {
		wi := i / 8
		bi := uint(i%8) * 8
		words[wi] |= uint64(b) << bi
	}
	return New(words, numBits), data[8+nBytes:], nil
}
