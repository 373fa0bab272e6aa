package section

import (
	"bufio"
	"bytes"
	"testing"
)

func TestVByteRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1}
	for _, v := range values {
		buf := PutVByte(nil, v)
		got, err := ReadVByte(bufio.NewReader(bytes.NewReader(buf)))
		if err != nil {
			t.Fatalf("ReadVByte(%d): %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip %d got %d", v, got)
		}
	}
}

func TestCRC8Deterministic(t *testing.T) {
	a := CRC8([]byte("bitmap header bytes"))
	b := CRC8([]byte("bitmap header bytes"))
	if a != b {
		t.Fatalf("CRC8 not deterministic: %d != %d", a, b)
	}
	c := CRC8([]byte("different bytes"))
	if a == c {
		t.Fatalf("CRC8 collided on distinct inputs (allowed in principle, but not for these fixtures)")
	}
}

func buildSection(order uint8, numBitsY uint64, bitsY []byte, predWidth uint8, predN uint64, predData []byte,
	numBitsZ uint64, bitsZ []byte, objWidth uint8, objN uint64, objData []byte) []byte {
	var out []byte
	out = append(out, controlInfoTypeTriples)
	uri := []byte("http://purl.org/HDT/hdt#triplesBitmap")
	out = PutVByte(out, uint64(len(uri)))
	out = append(out, uri...)
	out = PutVByte(out, 1)
	key := []byte("order")
	out = PutVByte(out, uint64(len(key)))
	out = append(out, key...)
	out = PutVByte(out, 1)
	out = append(out, order)

	appendBitmap := func(numBits uint64, data []byte) {
		header := PutVByte([]byte{TagBitmap}, numBits)
		out = append(out, header...)
		out = append(out, CRC8(header))
		out = append(out, data...)
		out = PutUint32LE(out, CRC32(data))
	}
	appendSequence := func(width uint8, n uint64, data []byte) {
		header := []byte{TagSequence, width}
		header = PutVByte(header, n)
		out = append(out, header...)
		out = append(out, CRC8(header))
		out = append(out, data...)
		out = PutUint32LE(out, CRC32(data))
	}

	appendBitmap(numBitsY, bitsY)
	appendSequence(predWidth, predN, predData)
	appendBitmap(numBitsZ, bitsZ)
	appendSequence(objWidth, objN, objData)
	return out
}

func TestReadAllRoundTrip(t *testing.T) {
	data := buildSection(1,
		4, []byte{0b1101},
		2, 4, []byte{0b10011011},
		3, []byte{0b101},
		5, 3, []byte{0, 0},
	)

	all, err := ReadAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if all.Info.Order != 1 {
		t.Fatalf("Order = %d, want 1", all.Info.Order)
	}
	if all.BitmapY.NumBits != 4 {
		t.Fatalf("BitmapY.NumBits = %d, want 4", all.BitmapY.NumBits)
	}
	if all.SequenceY.Width != 2 || all.SequenceY.N != 4 {
		t.Fatalf("SequenceY = %+v", all.SequenceY)
	}
	if all.BitmapZ.NumBits != 3 {
		t.Fatalf("BitmapZ.NumBits = %d, want 3", all.BitmapZ.NumBits)
	}
	if all.SequenceZ.Width != 5 || all.SequenceZ.N != 3 {
		t.Fatalf("SequenceZ = %+v", all.SequenceZ)
	}
}

func TestReadSequenceDetectsCorruption(t *testing.T) {
	data := buildSection(1, 4, []byte{0b1101}, 2, 4, []byte{0xAB}, 3, []byte{0b101}, 5, 3, []byte{0, 0})
	data[len(data)-1] ^= 0xFF // corrupt the final sequence_z CRC32 byte

	if _, err := ReadAll(bytes.NewReader(data)); err == nil {
		t.Fatalf("expected ReadAll to detect the corrupted trailing CRC32")
	}
}

func TestLocateMatchesReadAllOffsets(t *testing.T) {
	data := buildSection(2, 4, []byte{0b1101}, 2, 4, []byte{0xAB}, 3, []byte{0b101}, 5, 3, []byte{0, 0})

	f := bytes.NewReader(data)
	layout, err := Locate(f, 0)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if layout.Info.Order != 2 {
		t.Fatalf("Locate order = %d, want 2", layout.Info.Order)
	}
	if layout.SY.N != 4 || layout.SY.Width != 2 {
		t.Fatalf("Locate SY = %+v", layout.SY)
	}
	if layout.SZ.N != 3 || layout.SZ.Width != 5 {
		t.Fatalf("Locate SZ = %+v", layout.SZ)
	}

	want, err := ReadAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	gotSY := data[layout.SY.DataOffset : layout.SY.DataOffset+layout.SY.DataLen]
	if !bytes.Equal(gotSY, want.SequenceY.Data) {
		t.Fatalf("Locate's SY data window doesn't match ReadAll's payload")
	}
	gotSZ := data[layout.SZ.DataOffset : layout.SZ.DataOffset+layout.SZ.DataLen]
	if !bytes.Equal(gotSZ, want.SequenceZ.Data) {
		t.Fatalf("Locate's SZ data window doesn't match ReadAll's payload")
	}
}
