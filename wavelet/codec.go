package wavelet

import (
	"encoding/binary"
	"fmt"

	"github.com/hdt-go/hdt/bitmap"
)

// Marshal serializes the Matrix to a byte-stable form for the cache
// file (spec §6.2): width (u8), n (u64 LE), zeros[] (u64 LE each),
// then each level's bitmap.Marshal() payload in order.
func (m *Matrix) Marshal() []byte {
	out := make([]byte, 0, 9+8*len(m.zeros))
	out = append(out, m.width)
	var nb [8]byte
	binary.LittleEndian.PutUint64(nb[:], m.n)
	out = append(out, nb[:]...)
	for _, z := range m.zeros {
		var zb [8]byte
		binary.LittleEndian.PutUint64(zb[:], z)
		out = append(out, zb[:]...)
	}
	for _, lvl := range m.levels {
		out = append(out, lvl.Marshal()...)
	}
	return out
}

// Unmarshal parses the form written by Marshal, returning the Matrix
// and the unconsumed remainder of data.
func Unmarshal(data []byte) (*Matrix, []byte, error) {
	if len(data) < 9 {
		return nil, nil, fmt.Errorf("wavelet: truncated header")
	}
	width := data[0]
	n := binary.LittleEndian.Uint64(data[1:9])
	rest := data[9:]

	m := &Matrix{width: width, n: n}
	if width == 0 {
		return m, rest, nil
	}
	m.zeros = make([]uint64, width)
	for l := 0; l < int(width); l++ {
		if len(rest) < 8 {
			return nil, nil, fmt.Errorf("wavelet: truncated zeros[%d]", l)
		}
		m.zeros[l] = binary.LittleEndian.Uint64(rest[:8])
		rest = rest[8:]
	}
	m.levels = make([]*bitmap.Bitmap, width)
	for l := 0; l < int(width); l++ {
		bm, tail, err := bitmap.Unmarshal(rest)
		if err != nil {
			return nil, nil, fmt.Errorf("wavelet: level %d: %w", l, err)
		}
		m.levels[l] = bm
		rest = tail
	}
	return m, rest, nil
}
