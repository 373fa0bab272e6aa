// Package hdt is the Triples-subsystem core of an HDT (Header/
// Dictionary/Triples) store: a uniform, storage-strategy-agnostic
// query contract (TripleAccess) over the Bitmap-Triples encoding,
// plus five interchangeable ways to open one (spec §1, §4.6, §4.7).
//
// The dictionary that maps these integer ids to RDF terms, and the
// high-level query API that joins triple patterns against it, are
// external collaborators, this package works entirely in id space.
package hdt

import "github.com/hdt-go/hdt/triples"

// Stats reports a store's size as a per-component breakdown, since
// every storage strategy here already tracks size_in_bytes() per
// component (spec §4.6).
type Stats struct {
	NumTriples  uint64
	SizeInBytes uint64

	BitmapYBytes   uint64
	BitmapZBytes   uint64
	SequenceYBytes uint64
	WaveletYBytes  uint64
	SequenceZBytes uint64
	OPBytes        uint64
}

// TripleAccess is C6: the single capability surface every storage
// strategy exposes. Strategies differ only in latency and I/O
// fallibility, Full never fails for I/O reasons; streaming
// strategies may return an *Error with Kind IoError (spec §4.6, §4.7).
type TripleAccess interface {
	NumTriples() uint64
	SizeInBytes() uint64
	Stats() Stats

	// FindY/LastY/GetPredicate/GetObject are the raw C4 navigation
	// primitives, exposed for callers (e.g. a dictionary-joining query
	// layer) that want to walk the Y/Z adjacency directly instead of
	// through IterPattern.
	FindY(x uint64) (uint64, error)
	LastY(x uint64) (uint64, error)
	GetPredicate(y uint64) (uint64, error)
	GetObject(z uint64) (uint64, error)

	// IterAll iterates every triple in on-disk storage order.
	IterAll() *triples.Iter

	// IterPattern iterates triples matching the given pattern; a nil
	// component is a wildcard. It covers all eight pattern shapes in
	// spec §8 item 9 (SPO, SP?, S?O, S??, ?P?, ?PO, ??O, ???).
	IterPattern(s, p, o *uint64) *triples.Iter

	// Close releases any held file handles. Full holds none and Close
	// is a no-op.
	Close() error
}

// Ptr is a small convenience for building IterPattern/FindTriple-style
// arguments: Ptr(5) is a bound value, nil is a wildcard.
func Ptr(v uint64) *uint64 { return &v }

// iterPattern is shared by every strategy: given the Core's declared
// Order, it picks whichever of IterSubject/IterPredicate/IterObject
// can serve the pattern's most selective bound component, then filters
// the result for the rest (see DESIGN.md for why this is order-agnostic).
func iterPattern(c *triples.Core, s, p, o *uint64) *triples.Iter {
	comps := c.Order.Components()
	xVal := componentValue(comps[0], s, p, o)
	yVal := componentValue(comps[1], s, p, o)
	zVal := componentValue(comps[2], s, p, o)

	var base *triples.Iter
	switch {
	case xVal != nil:
		base = c.IterSubject(*xVal)
	case yVal != nil:
		base = c.IterPredicate(*yVal)
	case zVal != nil:
		base = c.IterObject(*zVal)
	default:
		base = c.IterAll()
	}

	return triples.Filter(base, func(t triples.Triple) bool {
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

// componentValue returns the pattern value bound to RDF component
// comp (0=subject, 1=predicate, 2=object), or nil if it's a wildcard.
func componentValue(comp int, s, p, o *uint64) *uint64 {
	switch comp {
	case 0:
		return s
	case 1:
		return p
	default:
		return o
	}
}

func statsFromCore(c *triples.Core) Stats {
	st := Stats{NumTriples: c.NumTriples()}
	st.BitmapYBytes = c.BitmapY.SizeInBytes()
	st.BitmapZBytes = c.BitmapZ.SizeInBytes()
	if c.Wave != nil {
		st.WaveletYBytes = c.Wave.SizeInBytes()
	}
	if c.SeqY != nil {
		st.SequenceYBytes = c.SeqY.SizeInBytes()
	}
	st.SequenceZBytes = c.SeqZ.SizeInBytes()
	if c.OP != nil {
		st.OPBytes = c.OP.Bitmap().SizeInBytes() + c.OP.Sequence().SizeInBytes()
	}
	st.SizeInBytes = st.BitmapYBytes + st.BitmapZBytes + st.SequenceYBytes +
		st.WaveletYBytes + st.SequenceZBytes + st.OPBytes
	return st
}
