package hdt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hdt-go/hdt/bitmap"
	"github.com/hdt-go/hdt/bitpack"
	"github.com/hdt-go/hdt/section"
	"github.com/hdt-go/hdt/triples"
)

// The fixture below encodes the same three-subject graph used by the
// triples package's own unit tests, hand-assembled into Triples-section
// bytes so every Open* strategy can be driven against a real file.
var fixtureTriples = []triples.Triple{
	{S: 1, P: 1, O: 10}, {S: 1, P: 1, O: 20}, {S: 1, P: 2, O: 30},
	{S: 2, P: 1, O: 10},
	{S: 3, P: 3, O: 5}, {S: 3, P: 3, O: 6}, {S: 3, P: 3, O: 7},
}

func encodeControlInfo(order uint8) []byte {
	out := []byte{2} // Triples ControlInfo type tag
	uri := []byte("http://purl.org/HDT/hdt#triplesBitmap")
	out = section.PutVByte(out, uint64(len(uri)))
	out = append(out, uri...)
	out = section.PutVByte(out, 1) // one property: order
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

func buildFixtureFile(t *testing.T) string {
	t.Helper()
	predIDs := []uint64{1, 2, 1, 3}
	yBits := []bool{true, false, true, true}
	objIDs := []uint64{10, 20, 30, 10, 5, 6, 7}
	zBits := []bool{true, false, true, true, true, false, false}

	by := bitmap.NewFromBits(yBits)
	bz := bitmap.NewFromBits(zBits)
	seqY := bitpack.NewResident(predIDs, bitpack.MinWidth(3))
	seqZ := bitpack.NewResident(objIDs, bitpack.MinWidth(30))

	var buf []byte
	buf = append(buf, encodeControlInfo(uint8(triples.SPO))...)
	buf = append(buf, encodeBitmapSection(by)...)
	buf = append(buf, encodeSequenceSection(seqY)...)
	buf = append(buf, encodeBitmapSection(bz)...)
	buf = append(buf, encodeSequenceSection(seqZ)...)

	path := filepath.Join(t.TempDir(), "fixture.hdt")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func drainIter(t *testing.T, it *triples.Iter) []triples.Triple {
	t.Helper()
	var out []triples.Triple
	for it.HasNext() {
		out = append(out, it.Next())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}
	return out
}

func checkCommonAccess(t *testing.T, name string, acc TripleAccess) {
	t.Helper()
	if n := acc.NumTriples(); n != 7 {
		t.Fatalf("%s: NumTriples() = %d, want 7", name, n)
	}
	got := drainIter(t, acc.IterAll())
	if !reflect.DeepEqual(got, fixtureTriples) {
		t.Fatalf("%s: IterAll() = %v, want %v", name, got, fixtureTriples)
	}

	s := Ptr(1)
	pattern := drainIter(t, acc.IterPattern(s, nil, nil))
	want := []triples.Triple{{S: 1, P: 1, O: 10}, {S: 1, P: 1, O: 20}, {S: 1, P: 2, O: 30}}
	if !reflect.DeepEqual(pattern, want) {
		t.Fatalf("%s: IterPattern(s=1) = %v, want %v", name, pattern, want)
	}

	if err := acc.Close(); err != nil {
		t.Fatalf("%s: Close: %v", name, err)
	}
}

func TestOpenFull(t *testing.T) {
	path := buildFixtureFile(t)
	acc, err := OpenFull(path)
	if err != nil {
		t.Fatalf("OpenFull: %v", err)
	}
	checkCommonAccess(t, "Full", acc)
}

func TestOpenHybridColdAndWarmCache(t *testing.T) {
	path := buildFixtureFile(t)
	cachePath := path + ".cache"

	acc, err := OpenHybrid(path, cachePath)
	if err != nil {
		t.Fatalf("OpenHybrid (cold): %v", err)
	}
	checkCommonAccess(t, "Hybrid/cold", acc)

	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache file to be written: %v", err)
	}

	acc2, err := OpenHybrid(path, cachePath)
	if err != nil {
		t.Fatalf("OpenHybrid (warm): %v", err)
	}
	checkCommonAccess(t, "Hybrid/warm", acc2)
}

func TestOpenIndexedFullBudget(t *testing.T) {
	path := buildFixtureFile(t)
	cfg := IndexConfig{BuildSubjectIndex: true, BuildPredicateIndex: true, BuildObjectIndex: true}
	acc, err := OpenIndexed(path, cfg)
	if err != nil {
		t.Fatalf("OpenIndexed: %v", err)
	}
	checkCommonAccess(t, "Indexed/full", acc)
}

func TestOpenIndexedTightBudget(t *testing.T) {
	path := buildFixtureFile(t)
	cfg := IndexConfig{BuildSubjectIndex: true, BuildPredicateIndex: true, BuildObjectIndex: true, MaxIndexMemory: 1}
	acc, err := OpenIndexed(path, cfg)
	if err != nil {
		t.Fatalf("OpenIndexed (tight budget): %v", err)
	}
	// With a near-zero budget nothing optional should fit, but the
	// fixture must still be fully queryable through the file-streamed
	// fallbacks.
	checkCommonAccess(t, "Indexed/tight", acc)
}

func TestOpenMinimal(t *testing.T) {
	path := buildFixtureFile(t)
	acc, err := OpenMinimal(path)
	if err != nil {
		t.Fatalf("OpenMinimal: %v", err)
	}
	checkCommonAccess(t, "Minimal", acc)
}

func TestOpenFileBased(t *testing.T) {
	path := buildFixtureFile(t)
	acc, err := OpenFileBased(path)
	if err != nil {
		t.Fatalf("OpenFileBased: %v", err)
	}
	checkCommonAccess(t, "FileBased", acc)
}

func TestFindYAndGetPredicateAcrossStrategies(t *testing.T) {
	path := buildFixtureFile(t)
	opens := map[string]func() (TripleAccess, error){
		"Full":    func() (TripleAccess, error) { return OpenFull(path) },
		"Minimal": func() (TripleAccess, error) { return OpenMinimal(path) },
		"File":    func() (TripleAccess, error) { return OpenFileBased(path) },
	}
	for name, open := range opens {
		acc, err := open()
		if err != nil {
			t.Fatalf("%s: open: %v", name, err)
		}
		y, err := acc.FindY(3)
		if err != nil || y != 3 {
			t.Fatalf("%s: FindY(3) = %d, %v; want 3, nil", name, y, err)
		}
		p, err := acc.GetPredicate(y)
		if err != nil || p != 3 {
			t.Fatalf("%s: GetPredicate(3) = %d, %v; want 3, nil", name, p, err)
		}
		if _, err := acc.FindY(99); err != ErrNotFound {
			t.Fatalf("%s: FindY(99) err = %v, want ErrNotFound", name, err)
		}
		acc.Close()
	}
}
