// Package conformance cross-checks that every storage strategy answers
// the same queries identically, since spec §4.7 promises "the same
// TripleAccess surface and the same results" regardless of which Open*
// a caller picked.
package conformance

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hdt-go/hdt"
	"github.com/hdt-go/hdt/bitmap"
	"github.com/hdt-go/hdt/bitpack"
	"github.com/hdt-go/hdt/section"
	"github.com/hdt-go/hdt/triples"
)

func encodeControlInfo(order uint8) []byte {
	out := []byte{2}
	uri := []byte("http://purl.org/HDT/hdt#triplesBitmap")
	out = section.PutVByte(out, uint64(len(uri)))
	out = append(out, uri...)
	out = section.PutVByte(out, 1)
	key := []byte("order")
	out = section.PutVByte(out, uint64(len(key)))
	out = append(out, key...)
	out = section.PutVByte(out, 1)
	out = append(out, order)
	return out
}

func encodeBitmapSection(bm *bitmap.Bitmap) []byte {
	full := bm.Marshal()
	numBits := binary.LittleEndian.Uint64(full[:8])
	data := full[8:]
	header := section.PutVByte([]byte{section.TagBitmap}, numBits)
	out := append([]byte{}, header...)
	out = append(out, section.CRC8(header))
	out = append(out, data...)
	out = section.PutUint32LE(out, section.CRC32(data))
	return out
}

func encodeSequenceSection(seq *bitpack.Resident) []byte {
	raw := bitpack.ToRaw(seq)
	header := []byte{section.TagSequence, raw.Width}
	header = section.PutVByte(header, raw.N)
	out := append([]byte{}, header...)
	out = append(out, section.CRC8(header))
	out = append(out, raw.Data...)
	out = section.PutUint32LE(out, section.CRC32(raw.Data))
	return out
}

// buildFixture writes a small but non-trivial graph, enough subjects
// and shared predicates/objects to exercise every pattern shape, and
// returns its path plus every triple it contains, in SPO order.
func buildFixture(t *testing.T) (string, []triples.Triple) {
	t.Helper()

	type group struct {
		p    uint64
		objs []uint64
	}
	subjects := [][]group{
		{{p: 1, objs: []uint64{100, 200}}, {p: 2, objs: []uint64{300}}},
		{{p: 1, objs: []uint64{100}}, {p: 3, objs: []uint64{400, 500}}},
		{{p: 2, objs: []uint64{300, 600}}},
		{{p: 4, objs: []uint64{700}}},
	}

	var predIDs, objIDs []uint64
	var yBits, zBits []bool
	var want []triples.Triple

	for si, groups := range subjects {
		for gi, g := range groups {
			predIDs = append(predIDs, g.p)
			yBits = append(yBits, gi == 0)
			for oi, o := range g.objs {
				objIDs = append(objIDs, o)
				zBits = append(zBits, oi == 0)
				want = append(want, triples.Triple{S: uint64(si + 1), P: g.p, O: o})
			}
		}
	}

	maxPred, maxObj := uint64(0), uint64(0)
	for _, p := range predIDs {
		if p > maxPred {
			maxPred = p
		}
	}
	for _, o := range objIDs {
		if o > maxObj {
			maxObj = o
		}
	}

	by := bitmap.NewFromBits(yBits)
	bz := bitmap.NewFromBits(zBits)
	seqY := bitpack.NewResident(predIDs, bitpack.MinWidth(maxPred))
	seqZ := bitpack.NewResident(objIDs, bitpack.MinWidth(maxObj))

	var buf []byte
	buf = append(buf, encodeControlInfo(uint8(triples.SPO))...)
	buf = append(buf, encodeBitmapSection(by)...)
	buf = append(buf, encodeSequenceSection(seqY)...)
	buf = append(buf, encodeBitmapSection(bz)...)
	buf = append(buf, encodeSequenceSection(seqZ)...)

	path := filepath.Join(t.TempDir(), "conformance.hdt")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path, want
}

func sortTriples(ts []triples.Triple) []triples.Triple {
	out := append([]triples.Triple(nil), ts...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].S != out[j].S {
			return out[i].S < out[j].S
		}
		if out[i].P != out[j].P {
			return out[i].P < out[j].P
		}
		return out[i].O < out[j].O
	})
	return out
}

func drain(t *testing.T, it *triples.Iter) []triples.Triple {
	t.Helper()
	var out []triples.Triple
	for it.HasNext() {
		out = append(out, it.Next())
	}
	require.NoError(t, it.Err())
	return out
}

func openAll(t *testing.T, path string) map[string]hdt.TripleAccess {
	t.Helper()
	accs := map[string]hdt.TripleAccess{}

	full, err := hdt.OpenFull(path)
	require.NoError(t, err)
	accs["full"] = full

	hybrid, err := hdt.OpenHybrid(path, path+".cache")
	require.NoError(t, err)
	accs["hybrid"] = hybrid

	indexed, err := hdt.OpenIndexed(path, hdt.IndexConfig{
		BuildSubjectIndex: true, BuildPredicateIndex: true, BuildObjectIndex: true,
	})
	require.NoError(t, err)
	accs["indexed"] = indexed

	minimal, err := hdt.OpenMinimal(path)
	require.NoError(t, err)
	accs["minimal"] = minimal

	fileBased, err := hdt.OpenFileBased(path)
	require.NoError(t, err)
	accs["file"] = fileBased

	return accs
}

func closeAll(accs map[string]hdt.TripleAccess) {
	for _, a := range accs {
		a.Close()
	}
}

func TestIterAllAgreesAcrossStrategies(t *testing.T) {
	path, want := buildFixture(t)
	accs := openAll(t, path)
	defer closeAll(accs)

	wantSorted := sortTriples(want)
	for name, acc := range accs {
		require.Equal(t, uint64(len(want)), acc.NumTriples(), "strategy %s", name)
		got := sortTriples(drain(t, acc.IterAll()))
		require.Equal(t, wantSorted, got, "strategy %s", name)
	}
}

func TestIterPatternAgreesAcrossStrategies(t *testing.T) {
	path, want := buildFixture(t)
	accs := openAll(t, path)
	defer closeAll(accs)

	patterns := []struct {
		name    string
		s, p, o *uint64
	}{
		{"SPO", hdt.Ptr(1), hdt.Ptr(1), hdt.Ptr(100)},
		{"SP?", hdt.Ptr(1), hdt.Ptr(1), nil},
		{"S?O", hdt.Ptr(3), nil, hdt.Ptr(300)},
		{"S??", hdt.Ptr(2), nil, nil},
		{"?P?", nil, hdt.Ptr(2), nil},
		{"?PO", nil, hdt.Ptr(2), hdt.Ptr(300)},
		{"??O", nil, nil, hdt.Ptr(100)},
		{"???", nil, nil, nil},
		{"absent-object", nil, nil, hdt.Ptr(999999)},
		{"absent-subject", hdt.Ptr(999), nil, nil},
	}

	for _, pat := range patterns {
		var expected []triples.Triple
		for _, tr := range want {
			if pat.s != nil && tr.S != *pat.s {
				continue
			}
			if pat.p != nil && tr.P != *pat.p {
				continue
			}
			if pat.o != nil && tr.O != *pat.o {
				continue
			}
			expected = append(expected, tr)
		}
		expectedSorted := sortTriples(expected)

		for name, acc := range accs {
			got := sortTriples(drain(t, acc.IterPattern(pat.s, pat.p, pat.o)))
			require.Equal(t, expectedSorted, got, "pattern %s, strategy %s", pat.name, name)
		}
	}
}

func TestPointAccessorsAgreeAcrossStrategies(t *testing.T) {
	path, _ := buildFixture(t)
	accs := openAll(t, path)
	defer closeAll(accs)

	for name, acc := range accs {
		y, err := acc.FindY(1)
		require.NoError(t, err, "strategy %s", name)
		require.Equal(t, uint64(0), y, "strategy %s", name)

		p, err := acc.GetPredicate(y)
		require.NoError(t, err, "strategy %s", name)
		require.Equal(t, uint64(1), p, "strategy %s", name)

		_, err = acc.FindY(0)
		require.ErrorIs(t, err, hdt.ErrNotFound, "strategy %s", name)

		_, err = acc.FindY(999)
		require.ErrorIs(t, err, hdt.ErrNotFound, "strategy %s", name)
	}
}

// TestRunHarness exercises the exported Run entry point directly,
// rather than duplicating its pattern-filtering logic inline, so a
// caller outside this file (a future fixture, a different harness)
// has a worked example of how to drive it.
func TestRunHarness(t *testing.T) {
	path, want := buildFixture(t)
	accs := openAll(t, path)
	defer closeAll(accs)

	Run(t, accs, want, []Pattern{
		{Name: "SPO", S: hdt.Ptr(1), P: hdt.Ptr(1), O: hdt.Ptr(100)},
		{Name: "S??", S: hdt.Ptr(2), P: nil, O: nil},
		{Name: "??O", S: nil, P: nil, O: hdt.Ptr(300)},
		{Name: "???", S: nil, P: nil, O: nil},
	})
}
