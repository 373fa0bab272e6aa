// Package triples implements C4 (the Bitmap-Triples navigation core)
// and C5 (the object-position index), composed from bitpack.Sequence
// (C1), bitmap.Bitmap (C2) and, optionally, wavelet.Matrix (C3). A
// Core is storage-strategy agnostic: it is handed whichever concrete
// sequence/bitmap/wavelet implementations a strategy chose to build
// or stream, and every strategy gets identical query semantics purely
// because they all drive the same Core (spec §4.4, §4.7).
package triples

import (
	"errors"

	"github.com/hdt-go/hdt/bitmap"
	"github.com/hdt-go/hdt/bitpack"
	"github.com/hdt-go/hdt/wavelet"
)

// ErrNotFound is returned by point accessors (FindY, FindTriple, ...)
// when the requested id is outside the valid range or simply absent.
// Pattern iterators never return this error; they just yield nothing
// (spec §7, OutOfRange).
var ErrNotFound = errors.New("triples: not found")

// Core holds the navigation structures for one Triples section.
// SeqY/Wave are interchangeable: a strategy supplies whichever it
// built (spec §4.3, wavelet may fully replace sequence_y once built).
type Core struct {
	Order Order

	BitmapY *bitmap.Bitmap
	BitmapZ *bitmap.Bitmap

	// SeqY supplies predicates directly; nil if Wave is set instead.
	SeqY bitpack.Sequence
	Wave *wavelet.Matrix

	SeqZ bitpack.Sequence

	// OP is the optional object-position index (C5); when nil,
	// IterObject falls back to a linear scan of SeqZ.
	OP *OPIndex
}

// SubjectCount returns |X|, the number of distinct x (subjects, under
// the declared order).
func (c *Core) SubjectCount() uint64 { return c.BitmapY.Popcount() }

// FindY returns the first Y-position for 1-based subject x.
func (c *Core) FindY(x uint64) (uint64, error) {
	if x == 0 || x > c.SubjectCount() {
		return 0, ErrNotFound
	}
	pos, ok := c.BitmapY.Select1(x - 1)
	if !ok {
		return 0, ErrNotFound
	}
	return pos, nil
}

// LastY returns the inclusive last Y-position for 1-based subject x.
func (c *Core) LastY(x uint64) (uint64, error) {
	if x == 0 || x > c.SubjectCount() {
		return 0, ErrNotFound
	}
	if x == c.SubjectCount() {
		return c.BitmapY.Len() - 1, nil
	}
	pos, ok := c.BitmapY.Select1(x)
	if !ok {
		return c.BitmapY.Len() - 1, nil
	}
	return pos - 1, nil
}

// FindZ returns the first Z-position for Y-position y.
func (c *Core) FindZ(y uint64) (uint64, error) {
	pos, ok := c.BitmapZ.Select1(y)
	if !ok {
		return 0, ErrNotFound
	}
	return pos, nil
}

// LastZ returns the inclusive last Z-position for Y-position y.
func (c *Core) LastZ(y uint64) (uint64, error) {
	if y+1 >= c.BitmapZ.Popcount() {
		return c.BitmapZ.Len() - 1, nil
	}
	pos, ok := c.BitmapZ.Select1(y + 1)
	if !ok {
		return c.BitmapZ.Len() - 1, nil
	}
	return pos - 1, nil
}

// GetPredicate returns the predicate id at Y-position y.
func (c *Core) GetPredicate(y uint64) (uint64, error) {
	if c.Wave != nil {
		if y >= c.Wave.Len() {
			return 0, ErrNotFound
		}
		return c.Wave.Access(y), nil
	}
	if y >= c.SeqY.Len() {
		return 0, ErrNotFound
	}
	return c.SeqY.Get(y)
}

// GetObject returns the object id at Z-position z.
func (c *Core) GetObject(z uint64) (uint64, error) {
	if z >= c.SeqZ.Len() {
		return 0, ErrNotFound
	}
	return c.SeqZ.Get(z)
}

// GetSubjectOf returns the 1-based subject owning Y-position y.
func (c *Core) GetSubjectOf(y uint64) uint64 {
	return c.BitmapY.Rank1(y + 1)
}

// GetYOf returns the Y-position owning Z-position z.
func (c *Core) GetYOf(z uint64) uint64 {
	return c.BitmapZ.Rank1(z+1) - 1
}

// FindYZ locates the Y-position within subject x whose predicate is
// p. Predicates within a subject are assumed sorted (canonical HDT),
// so the subject's Y-range is binary-searched through GetPredicate;
// if the search lands on a different predicate, findYZScan rescans the
// range linearly in case the sortedness assumption does not hold.
func (c *Core) FindYZ(x, p uint64) (uint64, error) {
	first, err := c.FindY(x)
	if err != nil {
		return 0, err
	}
	last, err := c.LastY(x)
	if err != nil {
		return 0, err
	}
	lo, hi := first, last+1
	for lo < hi {
		mid := lo + (hi-lo)/2
		v, err := c.GetPredicate(mid)
		if err != nil {
			return 0, err
		}
		if v < p {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > last {
		return 0, ErrNotFound
	}
	v, err := c.GetPredicate(lo)
	if err != nil {
		return 0, err
	}
	if v != p {
		return c.findYZScan(first, last, p)
	}
	return lo, nil
}

// findYZScan is the fallback linear scan used when the binary-search
// assumption (predicates sorted within a subject) is violated.
func (c *Core) findYZScan(first, last, p uint64) (uint64, error) {
	for y := first; y <= last; y++ {
		v, err := c.GetPredicate(y)
		if err != nil {
			return 0, err
		}
		if v == p {
			return y, nil
		}
	}
	return 0, ErrNotFound
}

// FindTriple locates the Z-position of triple (x,p,o), or ErrNotFound.
func (c *Core) FindTriple(x, p, o uint64) (uint64, error) {
	y, err := c.FindYZ(x, p)
	if err != nil {
		return 0, err
	}
	zFirst, err := c.FindZ(y)
	if err != nil {
		return 0, err
	}
	zLast, err := c.LastZ(y)
	if err != nil {
		return 0, err
	}
	lo, hi := zFirst, zLast+1
	for lo < hi {
		mid := lo + (hi-lo)/2
		v, err := c.GetObject(mid)
		if err != nil {
			return 0, err
		}
		if v < o {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo > zLast {
		return 0, ErrNotFound
	}
	v, err := c.GetObject(lo)
	if err != nil {
		return 0, err
	}
	if v != o {
		return 0, ErrNotFound
	}
	return lo, nil
}

// NumTriples returns T, the total number of triples (len(sequence_z)).
func (c *Core) NumTriples() uint64 { return c.SeqZ.Len() }
