package triples

// Triple is one (subject, predicate, object) result, always expressed
// in SPO terms regardless of the section's declared storage order.
type Triple struct {
	S, P, O uint64
}

// Iter is the pull-style iterator shape every C4 traversal returns,
// the same HasNext()/Next() idiom used elsewhere in this codebase for
// walking roaring.Bitmap postings.
type Iter struct {
	next func() (Triple, bool, error)
	cur  Triple
	err  error
	done bool
}

// HasNext reports whether another triple is available; it also
// advances the internal cursor, so call it exactly once per Next.
func (it *Iter) HasNext() bool {
	if it.done || it.err != nil {
		return false
	}
	t, ok, err := it.next()
	if err != nil {
		it.err = err
		return false
	}
	if !ok {
		it.done = true
		return false
	}
	it.cur = t
	return true
}

// Next returns the triple HasNext just confirmed is available.
func (it *Iter) Next() Triple { return it.cur }

// Err returns the error, if any, that terminated iteration early
// (spec §7: iterators surface errors as a final error element).
func (it *Iter) Err() error { return it.err }

// NewIter builds an Iter around a caller-supplied pull function, for
// strategies outside this package (e.g. the zero-index File-Based
// strategy) that compute triples directly rather than driving a Core.
func NewIter(next func() (Triple, bool, error)) *Iter {
	return &Iter{next: next}
}

// IterAll iterates all T triples in on-disk storage order.
func (c *Core) IterAll() *Iter {
	var z uint64
	t := c.NumTriples()
	return &Iter{next: func() (Triple, bool, error) {
		if z >= t {
			return Triple{}, false, nil
		}
		o, err := c.GetObject(z)
		if err != nil {
			return Triple{}, false, err
		}
		y := c.GetYOf(z)
		p, err := c.GetPredicate(y)
		if err != nil {
			return Triple{}, false, err
		}
		x := c.GetSubjectOf(y)
		s, pp, oo := c.Order.ToSPO(x, p, o)
		z++
		return Triple{S: s, P: pp, O: oo}, true, nil
	}}
}

// IterSubject iterates all triples whose x-component is the 1-based
// subject x, in increasing (y,z) order.
func (c *Core) IterSubject(x uint64) *Iter {
	first, err := c.FindY(x)
	if err != nil {
		return emptyIter()
	}
	last, _ := c.LastY(x)
	y := first
	var zCur, zLast uint64
	haveZRange := false
	return &Iter{next: func() (Triple, bool, error) {
		for {
			if haveZRange && zCur <= zLast {
				o, err := c.GetObject(zCur)
				if err != nil {
					return Triple{}, false, err
				}
				p, err := c.GetPredicate(y)
				if err != nil {
					return Triple{}, false, err
				}
				s, pp, oo := c.Order.ToSPO(x, p, o)
				zCur++
				return Triple{S: s, P: pp, O: oo}, true, nil
			}
			if haveZRange {
				y++
				haveZRange = false
			}
			if y > last {
				return Triple{}, false, nil
			}
			zf, err := c.FindZ(y)
			if err != nil {
				return Triple{}, false, err
			}
			zl, err := c.LastZ(y)
			if err != nil {
				return Triple{}, false, err
			}
			zCur, zLast, haveZRange = zf, zl, true
		}
	}}
}

// IterPredicate iterates all triples whose predicate is p. When a
// wavelet matrix is available it walks matches via Wave.Select in
// increasing-rank order (spec §4.4); otherwise it falls back to a
// linear scan of every y-position, which every strategy can always
// perform since sequence_y (or the wavelet standing in for it) is
// always present in some form.
func (c *Core) IterPredicate(p uint64) *Iter {
	if c.Wave != nil {
		var k uint64
		var zCur, zLast uint64
		haveZRange := false
		var x uint64
		return &Iter{next: func() (Triple, bool, error) {
			for {
				if haveZRange && zCur <= zLast {
					o, err := c.GetObject(zCur)
					if err != nil {
						return Triple{}, false, err
					}
					s, pp, oo := c.Order.ToSPO(x, p, o)
					zCur++
					return Triple{S: s, P: pp, O: oo}, true, nil
				}
				y, ok := c.Wave.Select(p, k)
				if !ok {
					return Triple{}, false, nil
				}
				k++
				zf, err := c.FindZ(y)
				if err != nil {
					return Triple{}, false, err
				}
				zl, err := c.LastZ(y)
				if err != nil {
					return Triple{}, false, err
				}
				x = c.GetSubjectOf(y)
				zCur, zLast, haveZRange = zf, zl, true
			}
		}}
	}

	var y uint64
	numY := c.BitmapZ.Popcount()
	var zCur, zLast uint64
	haveZRange := false
	var x uint64
	return &Iter{next: func() (Triple, bool, error) {
		for {
			if haveZRange && zCur <= zLast {
				o, err := c.GetObject(zCur)
				if err != nil {
					return Triple{}, false, err
				}
				s, pp, oo := c.Order.ToSPO(x, p, o)
				zCur++
				return Triple{S: s, P: pp, O: oo}, true, nil
			}
			if y >= numY {
				return Triple{}, false, nil
			}
			pred, err := c.GetPredicate(y)
			if err != nil {
				return Triple{}, false, err
			}
			if pred != p {
				y++
				continue
			}
			zf, err := c.FindZ(y)
			if err != nil {
				return Triple{}, false, err
			}
			zl, err := c.LastZ(y)
			if err != nil {
				return Triple{}, false, err
			}
			x = c.GetSubjectOf(y)
			zCur, zLast, haveZRange = zf, zl, true
			y++
		}
	}}
}

// IterObject iterates all triples whose object is o, using the OP
// index (C5) when present, or a full linear scan of sequence_z
// otherwise (spec §4.5's "omit it" memory policy).
func (c *Core) IterObject(o uint64) *Iter {
	if c.OP != nil {
		positions, err := c.OP.PositionsForObject(o)
		if err != nil {
			return errIter(err)
		}
		i := 0
		return &Iter{next: func() (Triple, bool, error) {
			if i >= len(positions) {
				return Triple{}, false, nil
			}
			z := positions[i]
			i++
			y := c.GetYOf(z)
			p, err := c.GetPredicate(y)
			if err != nil {
				return Triple{}, false, err
			}
			x := c.GetSubjectOf(y)
			s, pp, oo := c.Order.ToSPO(x, p, o)
			return Triple{S: s, P: pp, O: oo}, true, nil
		}}
	}

	var z uint64
	t := c.NumTriples()
	return &Iter{next: func() (Triple, bool, error) {
		for z < t {
			obj, err := c.GetObject(z)
			if err != nil {
				return Triple{}, false, err
			}
			if obj != o {
				z++
				continue
			}
			y := c.GetYOf(z)
			p, err := c.GetPredicate(y)
			if err != nil {
				return Triple{}, false, err
			}
			x := c.GetSubjectOf(y)
			s, pp, oo := c.Order.ToSPO(x, p, o)
			z++
			return Triple{S: s, P: pp, O: oo}, true, nil
		}
		return Triple{}, false, nil
	}}
}

// Filter wraps it, skipping any triple for which keep returns false.
// Used by the facade to narrow a base navigation iterator (chosen for
// whichever pattern component it can serve fastest) down to the full
// requested pattern.
func Filter(it *Iter, keep func(Triple) bool) *Iter {
	return &Iter{next: func() (Triple, bool, error) {
		for it.HasNext() {
			t := it.Next()
			if keep(t) {
				return t, true, nil
			}
		}
		if err := it.Err(); err != nil {
			return Triple{}, false, err
		}
		return Triple{}, false, nil
	}}
}

func emptyIter() *Iter {
	return &Iter{next: func() (Triple, bool, error) { return Triple{}, false, nil }}
}

func errIter(err error) *Iter {
	return &Iter{err: err, done: true}
}
