package triples

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/cespare/xxhash/v2"

	"github.com/hdt-go/hdt/bitmap"
	"github.com/hdt-go/hdt/bitpack"
)

// OPIndex is C5: the object→positions inverted index. Given
// sequence_z of length T over object alphabet [1..|O|], op_sequence
// holds, per object value in ascending order, the original z-positions
// that held it (ascending within a value); op_bitmap marks where each
// object's run begins (spec §4.5).
type OPIndex struct {
	opSequence bitpack.Sequence
	opBitmap   *bitmap.Bitmap
}

// FindOP returns the first index in op_sequence holding object o
// (1-based).
func (op *OPIndex) FindOP(o uint64) (uint64, error) {
	if o == 0 || o > op.opBitmap.Popcount() {
		return 0, ErrNotFound
	}
	pos, ok := op.opBitmap.Select1(o - 1)
	if !ok {
		return 0, ErrNotFound
	}
	return pos, nil
}

// LastOP returns the inclusive last index in op_sequence holding
// object o.
func (op *OPIndex) LastOP(o uint64) (uint64, error) {
	if o == 0 || o > op.opBitmap.Popcount() {
		return 0, ErrNotFound
	}
	if o == op.opBitmap.Popcount() {
		return op.opBitmap.Len() - 1, nil
	}
	pos, ok := op.opBitmap.Select1(o)
	if !ok {
		return op.opBitmap.Len() - 1, nil
	}
	return pos - 1, nil
}

// ObjectPosition returns the original z-position stored at op_sequence
// index k.
func (op *OPIndex) ObjectPosition(k uint64) (uint64, error) {
	if k >= op.opSequence.Len() {
		return 0, ErrNotFound
	}
	return op.opSequence.Get(k)
}

// PositionsForObject returns, in ascending order, all z-positions
// holding object o.
func (op *OPIndex) PositionsForObject(o uint64) ([]uint64, error) {
	first, err := op.FindOP(o)
	if err != nil {
		return nil, nil // spec §4.4 edge case: o > |O| yields empty, not an error
	}
	last, err := op.LastOP(o)
	if err != nil {
		return nil, nil
	}
	out := make([]uint64, 0, last-first+1)
	for k := first; k <= last; k++ {
		z, err := op.ObjectPosition(k)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, nil
}

// BuildOPEager constructs the OP index in one pass, bucketing
// positions by object value into a roaring.Bitmap per value, then
// flattening the buckets in ascending object order into the packed
// op_sequence. Intended for the Full and Hybrid-at-build strategies,
// where the whole object alphabet comfortably fits in memory.
func BuildOPEager(seqZ bitpack.Sequence, maxObject uint64) (*OPIndex, error) {
	buckets := make([]*roaring.Bitmap, maxObject+1)
	t := seqZ.Len()
	for z := uint64(0); z < t; z++ {
		o, err := seqZ.Get(z)
		if err != nil {
			return nil, err
		}
		if buckets[o] == nil {
			buckets[o] = roaring.New()
		}
		buckets[o].Add(uint32(z))
	}

	positions := make([]uint64, 0, t)
	changeBits := make([]bool, 0, t)
	for o := uint64(1); o <= maxObject; o++ {
		b := buckets[o]
		if b == nil {
			continue
		}
		it := b.Iterator()
		first := true
		for it.HasNext() {
			positions = append(positions, uint64(it.Next()))
			changeBits = append(changeBits, first)
			first = false
		}
	}

	width := bitpack.MinWidth(t)
	seq := bitpack.NewResident(positions, width)
	bm := bitmap.NewFromBits(changeBits)
	return &OPIndex{opSequence: seq, opBitmap: bm}, nil
}

// bucketEntry is one (objectValue, zPosition) pair en route to a
// bounded-memory scratch bucket during BuildOPBounded.
type bucketEntry struct {
	object uint64
	pos    uint64
}

// BuildOPBounded constructs the OP index using xxhash-sharded scratch
// buckets instead of one roaring.Bitmap per distinct object value.
// All T (object, position) entries are held in the scratch buckets at
// once, plus a per-object position map built from them, so peak memory
// still grows with T. This follows the same hash-then-sort-each-bucket strategy
// rpcpool/yellowstone-faithful's compactindexsized package uses to
// build an immutable on-disk index without holding the whole key
// space in memory at once (spec §4.5's "OP's sequence is typically
// the second-largest structure" memory-policy note; used by the
// Indexed-Streaming strategy, §4.7).
func BuildOPBounded(seqZ bitpack.Sequence, maxObject uint64, numBuckets int) (*OPIndex, error) {
	if numBuckets < 1 {
		numBuckets = 1
	}
	scratch := make([][]bucketEntry, numBuckets)
	t := seqZ.Len()
	for z := uint64(0); z < t; z++ {
		o, err := seqZ.Get(z)
		if err != nil {
			return nil, err
		}
		h := xxhash.Sum64(encodeObjectKey(o)) % uint64(numBuckets)
		scratch[h] = append(scratch[h], bucketEntry{object: o, pos: z})
	}
	for _, b := range scratch {
		sort.Slice(b, func(i, j int) bool {
			if b[i].object != b[j].object {
				return b[i].object < b[j].object
			}
			return b[i].pos < b[j].pos
		})
	}

	byObject := make(map[uint64][]uint64)
	for _, b := range scratch {
		for _, e := range b {
			byObject[e.object] = append(byObject[e.object], e.pos)
		}
	}
	for _, ps := range byObject {
		sort.Slice(ps, func(i, j int) bool { return ps[i] < ps[j] })
	}

	positions := make([]uint64, 0, t)
	changeBits := make([]bool, 0, t)
	for o := uint64(1); o <= maxObject; o++ {
		ps, ok := byObject[o]
		if !ok {
			continue
		}
		for i, p := range ps {
			positions = append(positions, p)
			changeBits = append(changeBits, i == 0)
		}
	}

	width := bitpack.MinWidth(t)
	seq := bitpack.NewResident(positions, width)
	bm := bitmap.NewFromBits(changeBits)
	return &OPIndex{opSequence: seq, opBitmap: bm}, nil
}

func encodeObjectKey(o uint64) []byte {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(o >> (8 * i))
	}
	return b[:]
}

// NewOPIndex wraps an already-built sequence/bitmap pair, e.g. one
// deserialized from the cache file (op_bitmap resident, op_sequence
// streamed from disk, spec §4.5's hybrid memory policy).
func NewOPIndex(seq bitpack.Sequence, bm *bitmap.Bitmap) *OPIndex {
	return &OPIndex{opSequence: seq, opBitmap: bm}
}

// Bitmap exposes op_bitmap, e.g. for cache serialization.
func (op *OPIndex) Bitmap() *bitmap.Bitmap { return op.opBitmap }

// Sequence exposes op_sequence, e.g. for cache serialization.
func (op *OPIndex) Sequence() bitpack.Sequence { return op.opSequence }
