package bitpack

import "github.com/hdt-go/hdt/ioshare"

// File is a file-backed bit-packed sequence: it retains only
// (reader, dataOffset, N, W) and reconstructs one or two words per
// Get, reading at most 16 bytes per call (spec §4.1). Every Get pays
// one shared-reader critical section (one seek + one bounded read).
type File struct {
	r          *ioshare.Reader
	dataOffset int64
	n          uint64
	width      uint8
}

// NewFile wraps a shared reader over a sequence payload beginning at
// dataOffset, holding n values of width bits each.
func NewFile(r *ioshare.Reader, dataOffset int64, n uint64, width uint8) *File {
	return &File{r: r.Acquire(), dataOffset: dataOffset, n: n, width: width}
}

// Close releases this File's reference to the shared reader.
func (f *File) Close() error { return f.r.Release() }

// Get seeks to the byte(s) containing value i and reconstructs it.
func (f *File) Get(i uint64) (uint64, error) {
	if i >= f.n {
		return 0, nil
	}
	bo := i * uint64(f.width)
	byteOff := bo / 8
	bitInByte := bo % 8
	nBits := bitInByte + uint64(f.width)
	nBytes := (nBits + 7) / 8
	if nBytes > 16 {
		nBytes = 16 // capped per spec §4.1
	}
	buf := make([]byte, nBytes)
	if _, err := f.r.ReadAt(buf, f.dataOffset+int64(byteOff)); err != nil {
		return 0, err
	}
	var w0, w1 uint64
	for j := 0; j < len(buf) && j < 8; j++ {
		w0 |= uint64(buf[j]) << (8 * uint(j))
	}
	for j := 8; j < len(buf); j++ {
		w1 |= uint64(buf[j]) << (8 * uint(j-8))
	}
	mask := widthMask(f.width)
	bi := bitInByte
	if bi+uint64(f.width) <= 64 {
		return (w0 >> bi) & mask, nil
	}
	return ((w0 >> bi) | (w1 << (64 - bi))) & mask, nil
}

// Len returns the number of packed values.
func (f *File) Len() uint64 { return f.n }

// Width returns the number of bits per value.
func (f *File) Width() uint8 { return f.width }

// SizeInBytes reports the resident footprint, which for a file-backed
// sequence is just the fixed-size descriptor it retains.
func (f *File) SizeInBytes() uint64 { return 8 + 8 + 1 }
