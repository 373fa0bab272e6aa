// Package cache implements C8: the .hdt.cache file format that lets
// the Hybrid strategy skip rebuilding bitmap_y, bitmap_z,
// the wavelet matrix and op_bitmap on startup. A cache is tied to a
// (path, size, mtime) stamp of the HDT file it was built from; any
// mismatch, truncation, or CRC failure is reported as ErrInvalid and
// the caller falls back to rebuilding from the HDT file itself, a
// cache is an optimization, never a correctness dependency (spec §6.2,
// §7 CacheInvalid).
//
// Format extension (documented, see DESIGN.md): spec §6.2's byte
// table lists op_bitmap but has no field for op_sequence itself, even
// though §4.5's hybrid memory policy explicitly calls for streaming
// op_sequence "from the cache file". This package resolves that gap
// by appending an op_sequence block after the small, always-resident
// derived structures, with its own trailing CRC32 independent of the
// header's, so Load can validate and return the small part in O(small
// structures) time/memory while leaving the (potentially
// sequence_z-sized) op_sequence block to be streamed lazily via its
// recorded file offset, exactly as sequence_z itself is streamed from
// the HDT file via adjlist_z metadata.
package cache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/hdt-go/hdt/bitmap"
	"github.com/hdt-go/hdt/bitpack"
	"github.com/hdt-go/hdt/section"
	"github.com/hdt-go/hdt/triples"
	"github.com/hdt-go/hdt/wavelet"
)

// Magic identifies a .hdt.cache file.
var Magic = [8]byte{'H', 'D', 'T', 'C', 'A', 'C', 'H', 'E'}

// Version is the current cache format version.
const Version = uint32(1)

// ErrInvalid is returned (and never otherwise surfaced, spec §7) when
// a cache's stamp or checksum doesn't match; callers should silently
// rebuild.
var ErrInvalid = fmt.Errorf("cache: invalid or stale")

// Stamp ties a cache file to the exact HDT file it was derived from.
type Stamp struct {
	Size  uint64
	Mtime uint64 // nanoseconds
}

// StampFile stat()s path and returns its current Stamp.
func StampFile(path string) (Stamp, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Stamp{}, err
	}
	return Stamp{Size: uint64(fi.Size()), Mtime: uint64(fi.ModTime().UnixNano())}, nil
}

// SeqMeta is an (offset, entries, bits_per_entry) descriptor for a
// bit-packed sequence that lives in some file rather than in memory
// (spec §6.2 "adjlist_z metadata", generalized here to also describe
// op_sequence's location within the cache file itself).
type SeqMeta struct {
	Offset       int64
	Entries      uint64
	BitsPerEntry uint8
}

// Derived bundles the structures a cache file persists.
type Derived struct {
	Order    triples.Order
	BitmapY  *bitmap.Bitmap
	BitmapZ  *bitmap.Bitmap
	WaveletY *wavelet.Matrix
	OPBitmap *bitmap.Bitmap

	// SeqZ is sequence_z's location in the HDT file (not the cache).
	SeqZ SeqMeta
	// OPSequence is op_sequence's location within the cache file
	// produced by this Load, valid only together with the cache path
	// it was loaded from.
	OPSequence SeqMeta
}

// Write serializes d to path, stamped against hdtPath. opSeq is
// op_sequence's resident form, written as its own length-delimited,
// independently checksummed block (see package doc).
func Write(path, hdtPath string, d Derived, opSeq *bitpack.Resident) error {
	stamp, err := StampFile(hdtPath)
	if err != nil {
		return err
	}

	var small []byte
	small = append(small, Magic[:]...)
	small = appendU32(small, Version)
	small = append(small, byte(d.Order))
	small = appendU64(small, stamp.Size)
	small = appendU64(small, stamp.Mtime)
	small = appendBlock(small, d.BitmapY.Marshal())
	small = appendBlock(small, d.BitmapZ.Marshal())
	small = appendBlock(small, d.WaveletY.Marshal())
	small = appendBlock(small, d.OPBitmap.Marshal())
	small = appendU64(small, uint64(d.SeqZ.Offset))
	small = appendU64(small, d.SeqZ.Entries)
	small = append(small, d.SeqZ.BitsPerEntry)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(small); err != nil {
		return err
	}
	if _, err := f.Write(appendU32(nil, section.CRC32(small))); err != nil {
		return err
	}

	raw := bitpack.ToRaw(opSeq)
	var opBlock []byte
	opBlock = append(opBlock, raw.Width)
	opBlock = appendU64(opBlock, raw.N)
	opBlock = append(opBlock, raw.Data...)
	if _, err := f.Write(opBlock); err != nil {
		return err
	}
	if _, err := f.Write(appendU32(nil, section.CRC32(opBlock))); err != nil {
		return err
	}
	return f.Sync()
}

// Load validates and parses a cache file against hdtPath's current
// stamp. Only the small, always-resident derived structures are fully
// materialized; op_sequence is left on disk, described by the
// returned Derived.OPSequence for the caller to stream via ioshare
// against cachePath.
func Load(cachePath, hdtPath string) (Derived, error) {
	f, err := os.Open(cachePath)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var small []byte

	prefix := make([]byte, 29)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return Derived{}, ErrInvalid
	}
	small = append(small, prefix...)
	if [8]byte(prefix[0:8]) != Magic {
		return Derived{}, ErrInvalid
	}
	if binary.LittleEndian.Uint32(prefix[8:12]) != Version {
		return Derived{}, ErrInvalid
	}
	order := triples.Order(prefix[12])
	size := binary.LittleEndian.Uint64(prefix[13:21])
	mtime := binary.LittleEndian.Uint64(prefix[21:29])

	stamp, err := StampFile(hdtPath)
	if err != nil || stamp.Size != size || stamp.Mtime != mtime {
		return Derived{}, ErrInvalid
	}

	byBlock, err := readBlockFrom(r, &small)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	bmY, _, err := bitmap.Unmarshal(byBlock)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	bzBlock, err := readBlockFrom(r, &small)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	bmZ, _, err := bitmap.Unmarshal(bzBlock)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	wyBlock, err := readBlockFrom(r, &small)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	wave, _, err := wavelet.Unmarshal(wyBlock)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	opBmBlock, err := readBlockFrom(r, &small)
	if err != nil {
		return Derived{}, ErrInvalid
	}
	opBm, _, err := bitmap.Unmarshal(opBmBlock)
	if err != nil {
		return Derived{}, ErrInvalid
	}

	meta := make([]byte, 17)
	if _, err := io.ReadFull(r, meta); err != nil {
		return Derived{}, ErrInvalid
	}
	small = append(small, meta...)
	seqZ := SeqMeta{
		Offset:       int64(binary.LittleEndian.Uint64(meta[0:8])),
		Entries:      binary.LittleEndian.Uint64(meta[8:16]),
		BitsPerEntry: meta[16],
	}

	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return Derived{}, ErrInvalid
	}
	if binary.LittleEndian.Uint32(crcBuf[:]) != section.CRC32(small) {
		return Derived{}, ErrInvalid
	}

	// The remainder is the op_sequence block; record its location
	// without reading its payload into memory. r may have buffered
	// ahead of the true file position, so compute the offset from
	// what we know we've consumed rather than from f.Seek.
	consumed := int64(len(small)) + 4
	var opHdr [9]byte
	if _, err := io.ReadFull(r, opHdr[:]); err != nil {
		return Derived{}, ErrInvalid
	}
	width := opHdr[0]
	n := binary.LittleEndian.Uint64(opHdr[1:9])
	opDataOffset := consumed + 9

	return Derived{
		Order:      order,
		BitmapY:    bmY,
		BitmapZ:    bmZ,
		WaveletY:   wave,
		OPBitmap:   opBm,
		SeqZ:       seqZ,
		OPSequence: SeqMeta{Offset: opDataOffset, Entries: n, BitsPerEntry: width},
	}, nil
}

func appendU32(dst []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU64(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

func appendBlock(dst, block []byte) []byte {
	dst = appendU64(dst, uint64(len(block)))
	return append(dst, block...)
}

// readBlockFrom reads one length-prefixed block from r, appending
// everything it consumes (length prefix and payload) onto *small so
// the caller can checksum the small part as a whole afterward.
func readBlockFrom(r *bufio.Reader, small *[]byte) ([]byte, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	*small = append(*small, lenBuf[:]...)
	*small = append(*small, payload...)
	return payload, nil
}
