package section

import (
	"fmt"
	"io"
)

// Location describes where one sub-section's payload lives in the
// underlying file, without requiring it to be read into memory.
// DataOffset points at the first payload byte (just past the header
// and its CRC8); DataLen is the payload length in bytes.
type Location struct {
	DataOffset int64
	DataLen    int64

	// Sequence-only fields; zero for bitmaps.
	Width uint8
	N     uint64

	// Bitmap-only field; zero for sequences.
	NumBits uint64
}

// Layout is the minimal, header-only parse of a Triples section:
// the four sub-section locations plus the order, with nothing but
// the (cheap, fixed-size) headers actually read. This is what the
// Minimal-Streaming and File-Based strategies retain (spec §4.7).
type Layout struct {
	Info ControlInfo
	BY   Location
	SY   Location
	BZ   Location
	SZ   Location
}

// seekReader adapts an io.ReadSeeker into the unbuffered byteReader
// ReadControlInfo needs, so Locate can ask the seeker for its exact
// position afterwards with no bufio read-ahead to account for.
type seekReader struct{ rs io.ReadSeeker }

func (s seekReader) Read(p []byte) (int, error) { return s.rs.Read(p) }

func (s seekReader) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(s.rs, b[:])
	return b[0], err
}

// Locate parses only the headers of the Triples section and returns
// the byte offsets/lengths of each sub-section's payload, seeking
// past data it does not need to materialize. base is the absolute
// file offset at which the Triples section begins.
func Locate(rs io.ReadSeeker, base int64) (Layout, error) {
	if _, err := rs.Seek(base, io.SeekStart); err != nil {
		return Layout{}, err
	}
	info, err := ReadControlInfo(seekReader{rs})
	if err != nil {
		return Layout{}, err
	}
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Layout{}, err
	}

	by, next, err := locateBitmap(rs, pos)
	if err != nil {
		return Layout{}, err
	}
	sy, next, err := locateSequence(rs, next)
	if err != nil {
		return Layout{}, err
	}
	bz, next, err := locateBitmap(rs, next)
	if err != nil {
		return Layout{}, err
	}
	sz, _, err := locateSequence(rs, next)
	if err != nil {
		return Layout{}, err
	}
	return Layout{Info: info, BY: by, SY: sy, BZ: bz, SZ: sz}, nil
}

func locateBitmap(rs io.ReadSeeker, at int64) (Location, int64, error) {
	if _, err := rs.Seek(at, io.SeekStart); err != nil {
		return Location{}, 0, err
	}
	var hdr [1]byte
	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return Location{}, 0, err
	}
	if hdr[0] != TagBitmap {
		return Location{}, 0, fmt.Errorf("section: expected bitmap tag at offset %d, got %d", at, hdr[0])
	}
	numBits, vlen, err := readVByteAt(rs)
	if err != nil {
		return Location{}, 0, err
	}
	if _, err := io.ReadFull(rs, hdr[:]); err != nil { // header CRC8 byte
		return Location{}, 0, err
	}
	dataOffset := at + 1 + int64(vlen) + 1
	dataLen := int64((numBits + 7) / 8)
	next := dataOffset + dataLen + 4 // skip payload + trailing CRC32
	return Location{DataOffset: dataOffset, DataLen: dataLen, NumBits: numBits}, next, nil
}

func locateSequence(rs io.ReadSeeker, at int64) (Location, int64, error) {
	if _, err := rs.Seek(at, io.SeekStart); err != nil {
		return Location{}, 0, err
	}
	var hdr [2]byte
	if _, err := io.ReadFull(rs, hdr[:]); err != nil {
		return Location{}, 0, err
	}
	if hdr[0] != TagSequence {
		return Location{}, 0, fmt.Errorf("section: expected sequence tag at offset %d, got %d", at, hdr[0])
	}
	width := hdr[1]
	if width == 0 || width > 64 {
		return Location{}, 0, fmt.Errorf("section: unsupported sequence width %d", width)
	}
	n, vlen, err := readVByteAt(rs)
	if err != nil {
		return Location{}, 0, err
	}
	var crcHdr [1]byte
	if _, err := io.ReadFull(rs, crcHdr[:]); err != nil {
		return Location{}, 0, err
	}
	dataOffset := at + 2 + int64(vlen) + 1
	dataLen := int64((n*uint64(width) + 7) / 8)
	next := dataOffset + dataLen + 4
	return Location{DataOffset: dataOffset, DataLen: dataLen, Width: width, N: n}, next, nil
}

// readVByteAt reads a vbyte at the reader's current position from an
// io.Reader, returning the decoded value and the number of bytes consumed.
func readVByteAt(r io.Reader) (uint64, int, error) {
	var v uint64
	var shift uint
	var b [1]byte
	n := 0
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, 0, err
		}
		n++
		v |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 != 0 {
			return v, n, nil
		}
		shift += 7
		if shift > 63 {
			return 0, 0, fmt.Errorf("section: vbyte overrun")
		}
	}
}
