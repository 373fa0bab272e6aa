package hdt

import (
	"bufio"
	"fmt"
	"math/bits"
	"os"

	"github.com/RoaringBitmap/roaring"

	"github.com/hdt-go/hdt/bitmap"
	"github.com/hdt-go/hdt/bitpack"
	"github.com/hdt-go/hdt/cache"
	"github.com/hdt-go/hdt/ioshare"
	"github.com/hdt-go/hdt/section"
	"github.com/hdt-go/hdt/triples"
	"github.com/hdt-go/hdt/wavelet"
)

// coreAccess adapts a *triples.Core, built by whichever strategy
// constructed it, to the TripleAccess contract every strategy shares.
type coreAccess struct {
	c      *triples.Core
	closer func() error
}

func (a *coreAccess) NumTriples() uint64  { return a.c.NumTriples() }
func (a *coreAccess) SizeInBytes() uint64 { return statsFromCore(a.c).SizeInBytes }
func (a *coreAccess) Stats() Stats        { return statsFromCore(a.c) }

func (a *coreAccess) FindY(x uint64) (uint64, error) {
	return translateErr("FindY", a.c.FindY(x))
}

func (a *coreAccess) LastY(x uint64) (uint64, error) {
	return translateErr("LastY", a.c.LastY(x))
}

func (a *coreAccess) GetPredicate(y uint64) (uint64, error) {
	return translateErr("GetPredicate", a.c.GetPredicate(y))
}

func (a *coreAccess) GetObject(z uint64) (uint64, error) {
	return translateErr("GetObject", a.c.GetObject(z))
}

func (a *coreAccess) IterAll() *triples.Iter { return a.c.IterAll() }

func (a *coreAccess) IterPattern(s, p, o *uint64) *triples.Iter {
	return iterPattern(a.c, s, p, o)
}

func (a *coreAccess) Close() error {
	if a.closer != nil {
		return a.closer()
	}
	return nil
}

// translateErr maps triples.ErrNotFound, the only sentinel Core
// accessors return, onto this package's public ErrNotFound (spec §7:
// point accessors surface an explicit not-found error).
func translateErr(op string, v uint64, err error) (uint64, error) {
	if err == nil {
		return v, nil
	}
	if err == triples.ErrNotFound {
		return 0, ErrNotFound
	}
	return 0, newErr(IoError, op, err)
}

func sequenceValues(seq bitpack.Sequence) []uint64 {
	n := seq.Len()
	out := make([]uint64, n)
	for i := uint64(0); i < n; i++ {
		out[i], _ = seq.Get(i)
	}
	return out
}

func maxValue(seq bitpack.Sequence) uint64 {
	var max uint64
	n := seq.Len()
	for i := uint64(0); i < n; i++ {
		if v, _ := seq.Get(i); v > max {
			max = v
		}
	}
	return max
}

func resolveOrder(raw uint8, op string) (triples.Order, error) {
	order := triples.Order(raw)
	if !order.Valid() {
		return 0, newErr(UnsupportedEncoding, op, fmt.Errorf("order %d out of range", raw))
	}
	return order, nil
}

// OpenFull implements the Full in-memory strategy (spec §4.7): every
// derived structure, bitmap_y, bitmap_z, the wavelet matrix replacing
// sequence_y, sequence_z, and an eagerly built OP index, is resident.
// No file handle is held once Open returns.
func OpenFull(path string) (TripleAccess, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenFull", err)
	}
	defer f.Close()

	all, err := section.ReadAll(f)
	if err != nil {
		return nil, newErr(MalformedFile, "OpenFull", err)
	}
	order, err := resolveOrder(all.Info.Order, "OpenFull")
	if err != nil {
		return nil, err
	}

	by := bitmap.FromRaw(all.BitmapY)
	bz := bitmap.FromRaw(all.BitmapZ)
	wave := wavelet.Build(sequenceValues(bitpack.FromRaw(all.SequenceY)), all.SequenceY.Width)
	seqZ := bitpack.FromRaw(all.SequenceZ)

	op, err := triples.BuildOPEager(seqZ, maxValue(seqZ))
	if err != nil {
		return nil, newErr(InternalInvariantViolation, "OpenFull", err)
	}

	core := &triples.Core{Order: order, BitmapY: by, BitmapZ: bz, Wave: wave, SeqZ: seqZ, OP: op}
	return &coreAccess{c: core}, nil
}

// OpenHybrid implements the Hybrid strategy (spec §4.5, §4.7, §6.2): the
// small derived structures (bitmap_y, bitmap_z, wavelet_y, op_bitmap)
// are resident, while sequence_z streams from the HDT file and
// op_sequence streams from the cache file. cachePath is tried first and
// used as-is if its stamp matches path; otherwise everything is rebuilt
// from path and a fresh cache is written on a best-effort basis.
func OpenHybrid(path, cachePath string) (TripleAccess, error) {
	hf, err := os.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenHybrid", err)
	}
	layout, err := section.Locate(hf, 0)
	hf.Close()
	if err != nil {
		return nil, newErr(MalformedFile, "OpenHybrid", err)
	}
	order, err := resolveOrder(layout.Info.Order, "OpenHybrid")
	if err != nil {
		return nil, err
	}

	hdtReader, err := ioshare.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenHybrid", err)
	}

	if derived, derr := cache.Load(cachePath, path); derr == nil {
		cacheReader, cerr := ioshare.Open(cachePath)
		if cerr != nil {
			hdtReader.Release()
			return nil, newErr(IoError, "OpenHybrid", cerr)
		}
		// sequence_z streams from the HDT file here too, rather than
		// through ReadSequence, so the warm-cache path owes it the same
		// validate-on-open check the cold path gets for free from
		// section.ReadAll.
		if err := section.ValidateCRC32(hdtReader, layout.SZ); err != nil {
			cacheReader.Release()
			hdtReader.Release()
			return nil, newErr(MalformedFile, "OpenHybrid", err)
		}
		seqZ := bitpack.NewFile(hdtReader, layout.SZ.DataOffset, derived.SeqZ.Entries, derived.SeqZ.BitsPerEntry)
		opSeq := bitpack.NewFile(cacheReader, derived.OPSequence.Offset, derived.OPSequence.Entries, derived.OPSequence.BitsPerEntry)
		op := triples.NewOPIndex(opSeq, derived.OPBitmap)
		core := &triples.Core{
			Order: derived.Order, BitmapY: derived.BitmapY, BitmapZ: derived.BitmapZ,
			Wave: derived.WaveletY, SeqZ: seqZ, OP: op,
		}
		return &coreAccess{c: core, closer: func() error {
			seqZ.Close()
			opSeq.Close()
			cerr := cacheReader.Release()
			herr := hdtReader.Release()
			if cerr != nil {
				return cerr
			}
			return herr
		}}, nil
	}

	fh, err := os.Open(path)
	if err != nil {
		hdtReader.Release()
		return nil, newErr(IoError, "OpenHybrid", err)
	}
	all, err := section.ReadAll(fh)
	fh.Close()
	if err != nil {
		hdtReader.Release()
		return nil, newErr(MalformedFile, "OpenHybrid", err)
	}

	by := bitmap.FromRaw(all.BitmapY)
	bz := bitmap.FromRaw(all.BitmapZ)
	wave := wavelet.Build(sequenceValues(bitpack.FromRaw(all.SequenceY)), all.SequenceY.Width)
	seqZFull := bitpack.FromRaw(all.SequenceZ)
	op, err := triples.BuildOPEager(seqZFull, maxValue(seqZFull))
	if err != nil {
		hdtReader.Release()
		return nil, newErr(InternalInvariantViolation, "OpenHybrid", err)
	}

	seqZ := bitpack.NewFile(hdtReader, layout.SZ.DataOffset, all.SequenceZ.N, all.SequenceZ.Width)

	opResident, ok := op.Sequence().(*bitpack.Resident)
	if !ok {
		opResident = bitpack.NewResident(sequenceValues(op.Sequence()), op.Sequence().Width())
	}
	// Best-effort: a failed cache write never blocks serving queries off
	// the structures already built in memory (spec §6.2, §7 CacheInvalid).
	_ = cache.Write(cachePath, path, cache.Derived{
		Order: order, BitmapY: by, BitmapZ: bz, WaveletY: wave, OPBitmap: op.Bitmap(),
		SeqZ: cache.SeqMeta{Offset: layout.SZ.DataOffset, Entries: all.SequenceZ.N, BitsPerEntry: all.SequenceZ.Width},
	}, opResident)

	core := &triples.Core{Order: order, BitmapY: by, BitmapZ: bz, Wave: wave, SeqZ: seqZ, OP: op}
	return &coreAccess{c: core, closer: func() error {
		seqZ.Close()
		return hdtReader.Release()
	}}, nil
}

// IndexConfig bounds what the Indexed-Streaming strategy is allowed to
// build, trading memory for query latency (spec §4.7). Index
// structures are built in priority order, bitmap_y/bitmap_z first
// (always resident, they are cheap), then the predicate index, then
// the object index; each optional index is kept only if it fits in
// what remains of MaxIndexMemory (0 = unbounded), so a later, smaller
// index can still be kept after an earlier one did not fit. Whatever
// doesn't fit falls back to the same file-streamed path
// Minimal-Streaming uses.
type IndexConfig struct {
	BuildSubjectIndex   bool
	BuildPredicateIndex bool
	BuildObjectIndex    bool
	MaxIndexMemory      uint64
	ProgressiveLoading  bool
}

// OpenIndexed implements the Indexed-Streaming strategy (spec §4.7):
// bitmap_y/bitmap_z are always resident; sequence_y, the wavelet, and
// the OP index are each built only if cfg asks for them and the
// running memory budget allows it.
func OpenIndexed(path string, cfg IndexConfig) (TripleAccess, error) {
	hf, err := os.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenIndexed", err)
	}
	layout, err := section.Locate(hf, 0)
	hf.Close()
	if err != nil {
		return nil, newErr(MalformedFile, "OpenIndexed", err)
	}
	order, err := resolveOrder(layout.Info.Order, "OpenIndexed")
	if err != nil {
		return nil, err
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenIndexed", err)
	}
	br := bufio.NewReader(fh)
	if _, err := section.ReadControlInfo(br); err != nil {
		fh.Close()
		return nil, newErr(MalformedFile, "OpenIndexed", err)
	}
	byRaw, err := section.ReadBitmap(br)
	if err != nil {
		fh.Close()
		return nil, newErr(MalformedFile, "OpenIndexed", err)
	}
	syRaw, err := section.ReadSequence(br)
	if err != nil {
		fh.Close()
		return nil, newErr(MalformedFile, "OpenIndexed", err)
	}
	bzRaw, err := section.ReadBitmap(br)
	fh.Close()
	if err != nil {
		return nil, newErr(MalformedFile, "OpenIndexed", err)
	}

	by := bitmap.FromRaw(byRaw)
	bz := bitmap.FromRaw(bzRaw)

	var budget uint64 = cfg.MaxIndexMemory
	unbounded := budget == 0
	spend := func(n uint64) bool {
		if unbounded {
			return true
		}
		if n > budget {
			return false
		}
		budget -= n
		return true
	}
	spend(by.SizeInBytes())
	spend(bz.SizeInBytes())

	hdtReader, err := ioshare.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenIndexed", err)
	}
	// sequence_z always streams from disk here, even when every index
	// is requested, so unlike bitmap_y/sequence_y/bitmap_z above it
	// never passes through ReadBitmap/ReadSequence; validate it once
	// up front instead.
	if err := section.ValidateCRC32(hdtReader, layout.SZ); err != nil {
		hdtReader.Release()
		return nil, newErr(MalformedFile, "OpenIndexed", err)
	}

	var wave *wavelet.Matrix
	var seqY bitpack.Sequence
	if cfg.BuildPredicateIndex {
		w := wavelet.Build(sequenceValues(bitpack.FromRaw(syRaw)), syRaw.Width)
		if spend(w.SizeInBytes()) {
			wave = w
		}
	}
	if wave == nil {
		if cfg.BuildSubjectIndex {
			r := bitpack.FromRaw(syRaw)
			if spend(r.SizeInBytes()) {
				seqY = r
			}
		}
		if seqY == nil {
			seqY = bitpack.NewFile(hdtReader, layout.SY.DataOffset, syRaw.N, syRaw.Width)
		}
	}

	seqZ := bitpack.NewFile(hdtReader, layout.SZ.DataOffset, layout.SZ.N, layout.SZ.Width)

	var op *triples.OPIndex
	if cfg.BuildObjectIndex {
		// A roaring bitmap of distinct object values, built in one
		// streaming pass, estimates how wide the object alphabet is
		// before committing to a bucket count for the sharded builder
		// (spec §11's frequency-estimator note).
		distinct := roaring.New()
		var scanErr error
		for z := uint64(0); z < seqZ.Len(); z++ {
			v, gerr := seqZ.Get(z)
			if gerr != nil {
				scanErr = gerr
				break
			}
			distinct.Add(uint32(v))
		}
		if scanErr == nil {
			numBuckets := int(distinct.GetCardinality()/64) + 1
			maxObj := uint64(0)
			if !distinct.IsEmpty() {
				maxObj = uint64(distinct.Maximum())
			}
			built, berr := triples.BuildOPBounded(seqZ, maxObj, numBuckets)
			if berr == nil {
				opSize := built.Bitmap().SizeInBytes() + built.Sequence().SizeInBytes()
				if spend(opSize) {
					op = built
				}
			}
		}
	}

	core := &triples.Core{Order: order, BitmapY: by, BitmapZ: bz, SeqY: seqY, Wave: wave, SeqZ: seqZ, OP: op}
	return &coreAccess{c: core, closer: func() error {
		if f, ok := seqY.(*bitpack.File); ok {
			f.Close()
		}
		seqZ.Close()
		return hdtReader.Release()
	}}, nil
}

// OpenMinimal implements the Minimal-Streaming strategy (spec §4.7):
// only bitmap_y and bitmap_z are resident, the smallest structures
// that make FindY/FindZ/GetSubjectOf/GetYOf O(1), while sequence_y
// and sequence_z both stream from the HDT file and no OP index exists,
// so object-bound queries fall back to Core's linear-scan iterators.
func OpenMinimal(path string) (TripleAccess, error) {
	hf, err := os.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenMinimal", err)
	}
	layout, err := section.Locate(hf, 0)
	hf.Close()
	if err != nil {
		return nil, newErr(MalformedFile, "OpenMinimal", err)
	}
	order, err := resolveOrder(layout.Info.Order, "OpenMinimal")
	if err != nil {
		return nil, err
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenMinimal", err)
	}
	br := bufio.NewReader(fh)
	if _, err := section.ReadControlInfo(br); err != nil {
		fh.Close()
		return nil, newErr(MalformedFile, "OpenMinimal", err)
	}
	byRaw, err := section.ReadBitmap(br)
	if err != nil {
		fh.Close()
		return nil, newErr(MalformedFile, "OpenMinimal", err)
	}
	if _, err := section.ReadSequence(br); err != nil { // sequence_y: validated, then discarded
		fh.Close()
		return nil, newErr(MalformedFile, "OpenMinimal", err)
	}
	bzRaw, err := section.ReadBitmap(br)
	fh.Close()
	if err != nil {
		return nil, newErr(MalformedFile, "OpenMinimal", err)
	}

	by := bitmap.FromRaw(byRaw)
	bz := bitmap.FromRaw(bzRaw)

	hdtReader, err := ioshare.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenMinimal", err)
	}
	// sequence_z streams straight from disk here and is never passed
	// through ReadSequence, so its CRC32 still needs checking once, up
	// front, to honor the same validate-on-open contract the other
	// three sub-sections already got above.
	if err := section.ValidateCRC32(hdtReader, layout.SZ); err != nil {
		hdtReader.Release()
		return nil, newErr(MalformedFile, "OpenMinimal", err)
	}
	seqY := bitpack.NewFile(hdtReader, layout.SY.DataOffset, layout.SY.N, layout.SY.Width)
	seqZ := bitpack.NewFile(hdtReader, layout.SZ.DataOffset, layout.SZ.N, layout.SZ.Width)

	core := &triples.Core{Order: order, BitmapY: by, BitmapZ: bz, SeqY: seqY, SeqZ: seqZ}
	return &coreAccess{c: core, closer: func() error {
		seqY.Close()
		seqZ.Close()
		return hdtReader.Release()
	}}, nil
}

// OpenFileBased implements the File-Based (zero-index) strategy (spec
// §4.7): no structure is resident, not even bitmap_y/bitmap_z's
// rank/select tables. Every navigation primitive recomputes its answer
// directly against the file bytes named by Locate's header-only parse,
// trading the other strategies' O(1)/O(log n) lookups for O(n) I/O:
// the cheapest strategy to open, the most expensive to query.
func OpenFileBased(path string) (TripleAccess, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenFileBased", err)
	}
	layout, err := section.Locate(f, 0)
	f.Close()
	if err != nil {
		return nil, newErr(MalformedFile, "OpenFileBased", err)
	}
	order, err := resolveOrder(layout.Info.Order, "OpenFileBased")
	if err != nil {
		return nil, err
	}
	r, err := ioshare.Open(path)
	if err != nil {
		return nil, newErr(IoError, "OpenFileBased", err)
	}
	// Locate only parses headers; none of the four sub-sections' CRC32s
	// have been checked yet. This strategy keeps no structure resident,
	// but it still owes every payload the same validate-on-open
	// guarantee the other strategies get from ReadBitmap/ReadSequence.
	for _, loc := range []section.Location{layout.BY, layout.SY, layout.BZ, layout.SZ} {
		if err := section.ValidateCRC32(r, loc); err != nil {
			r.Release()
			return nil, newErr(MalformedFile, "OpenFileBased", err)
		}
	}
	return &fileBasedAccess{
		order:  order,
		layout: layout,
		reader: r,
		seqY:   bitpack.NewFile(r, layout.SY.DataOffset, layout.SY.N, layout.SY.Width),
		seqZ:   bitpack.NewFile(r, layout.SZ.DataOffset, layout.SZ.N, layout.SZ.Width),
	}, nil
}

type fileBasedAccess struct {
	order  triples.Order
	layout section.Layout
	reader *ioshare.Reader
	seqY   *bitpack.File
	seqZ   *bitpack.File

	popBY    uint64
	popBYSet bool
}

func (a *fileBasedAccess) popcount(loc section.Location, cached *uint64, have *bool) (uint64, error) {
	if *have {
		return *cached, nil
	}
	p, err := a.bitmapRank1(loc, loc.NumBits)
	if err != nil {
		return 0, err
	}
	*cached, *have = p, true
	return p, nil
}

// bitmapRank1 counts set bits in [0, i) by reading the raw bitmap
// bytes off disk and popcounting them on the fly, no persisted
// rank index is kept (see OpenFileBased's doc comment).
func (a *fileBasedAccess) bitmapRank1(loc section.Location, i uint64) (uint64, error) {
	if i == 0 {
		return 0, nil
	}
	if i > loc.NumBits {
		i = loc.NumBits
	}
	nFull := i / 8
	var rank uint64
	if nFull > 0 {
		buf := make([]byte, nFull)
		if _, err := a.reader.ReadAt(buf, loc.DataOffset); err != nil {
			return 0, err
		}
		for _, b := range buf {
			rank += uint64(bits.OnesCount8(b))
		}
	}
	if rem := i % 8; rem > 0 {
		var last [1]byte
		if _, err := a.reader.ReadAt(last[:], loc.DataOffset+int64(nFull)); err != nil {
			return 0, err
		}
		for bi := uint64(0); bi < rem; bi++ {
			if last[0]&(1<<bi) != 0 {
				rank++
			}
		}
	}
	return rank, nil
}

// bitmapSelect1 finds the position of the (k+1)-th set bit via binary
// search over bitmapRank1, the zero-index equivalent of a select
// sample table.
func (a *fileBasedAccess) bitmapSelect1(loc section.Location, k uint64) (uint64, bool, error) {
	lo, hi := uint64(0), loc.NumBits
	for lo < hi {
		mid := (lo + hi) / 2
		r, err := a.bitmapRank1(loc, mid+1)
		if err != nil {
			return 0, false, err
		}
		if r <= k {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo >= loc.NumBits {
		return 0, false, nil
	}
	rAt, err := a.bitmapRank1(loc, lo+1)
	if err != nil {
		return 0, false, err
	}
	rBefore, err := a.bitmapRank1(loc, lo)
	if err != nil {
		return 0, false, err
	}
	if rAt-rBefore != 1 {
		return 0, false, nil
	}
	return lo, true, nil
}

func (a *fileBasedAccess) NumTriples() uint64 { return a.layout.SZ.N }

func (a *fileBasedAccess) SizeInBytes() uint64 {
	return a.seqY.SizeInBytes() + a.seqZ.SizeInBytes()
}

func (a *fileBasedAccess) Stats() Stats {
	return Stats{NumTriples: a.NumTriples(), SizeInBytes: a.SizeInBytes()}
}

func (a *fileBasedAccess) FindY(x uint64) (uint64, error) {
	if x == 0 {
		return 0, ErrNotFound
	}
	pop, err := a.popcount(a.layout.BY, &a.popBY, &a.popBYSet)
	if err != nil {
		return 0, newErr(IoError, "FindY", err)
	}
	if x > pop {
		return 0, ErrNotFound
	}
	pos, ok, err := a.bitmapSelect1(a.layout.BY, x-1)
	if err != nil {
		return 0, newErr(IoError, "FindY", err)
	}
	if !ok {
		return 0, ErrNotFound
	}
	return pos, nil
}

func (a *fileBasedAccess) LastY(x uint64) (uint64, error) {
	pop, err := a.popcount(a.layout.BY, &a.popBY, &a.popBYSet)
	if err != nil {
		return 0, newErr(IoError, "LastY", err)
	}
	if x == 0 || x > pop {
		return 0, ErrNotFound
	}
	if x == pop {
		return a.layout.BY.NumBits - 1, nil
	}
	pos, ok, err := a.bitmapSelect1(a.layout.BY, x)
	if err != nil {
		return 0, newErr(IoError, "LastY", err)
	}
	if !ok {
		return a.layout.BY.NumBits - 1, nil
	}
	return pos - 1, nil
}

func (a *fileBasedAccess) GetPredicate(y uint64) (uint64, error) {
	v, err := a.seqY.Get(y)
	if err != nil {
		return 0, newErr(IoError, "GetPredicate", err)
	}
	return v, nil
}

func (a *fileBasedAccess) GetObject(z uint64) (uint64, error) {
	v, err := a.seqZ.Get(z)
	if err != nil {
		return 0, newErr(IoError, "GetObject", err)
	}
	return v, nil
}

func (a *fileBasedAccess) getSubjectOf(y uint64) (uint64, error) {
	return a.bitmapRank1(a.layout.BY, y+1)
}

func (a *fileBasedAccess) getYOf(z uint64) (uint64, error) {
	r, err := a.bitmapRank1(a.layout.BZ, z+1)
	if err != nil {
		return 0, err
	}
	return r - 1, nil
}

// IterAll performs a single forward sweep of sequence_z, deriving each
// triple's y-component (and from it, its subject) through the raw
// bitmap scans above rather than any persisted index.
func (a *fileBasedAccess) IterAll() *triples.Iter {
	var z uint64
	t := a.NumTriples()
	return triples.NewIter(func() (triples.Triple, bool, error) {
		if z >= t {
			return triples.Triple{}, false, nil
		}
		o, err := a.seqZ.Get(z)
		if err != nil {
			return triples.Triple{}, false, err
		}
		y, err := a.getYOf(z)
		if err != nil {
			return triples.Triple{}, false, err
		}
		p, err := a.seqY.Get(y)
		if err != nil {
			return triples.Triple{}, false, err
		}
		x, err := a.getSubjectOf(y)
		if err != nil {
			return triples.Triple{}, false, err
		}
		s, pp, oo := a.order.ToSPO(x, p, o)
		z++
		return triples.Triple{S: s, P: pp, O: oo}, true, nil
	})
}

func (a *fileBasedAccess) IterPattern(s, p, o *uint64) *triples.Iter {
	return triples.Filter(a.IterAll(), func(t triples.Triple) bool {
		if s != nil && t.S != *s {
			return false
		}
		if p != nil && t.P != *p {
			return false
		}
		if o != nil && t.O != *o {
			return false
		}
		return true
	})
}

func (a *fileBasedAccess) Close() error {
	a.seqY.Close()
	a.seqZ.Close()
	return a.reader.Release()
}
