package bitpack

import (
	"math/rand"
	"testing"
	"testing/quick"
)

func TestResidentGetRoundTrip(t *testing.T) {
	f := func(seed int64, n uint8) bool {
		rng := rand.New(rand.NewSource(seed))
		count := int(n)%200 + 1
		width := uint8(rng.Intn(63) + 1)
		mask := widthMask(width)
		values := make([]uint64, count)
		for i := range values {
			values[i] = uint64(rng.Int63()) & mask
		}
		r := NewResident(values, width)
		if r.Len() != uint64(count) || r.Width() != width {
			return false
		}
		for i, want := range values {
			got, err := r.Get(uint64(i))
			if err != nil || got != want {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestResidentGetOutOfRangeIsZero(t *testing.T) {
	r := NewResident([]uint64{1, 2, 3}, 4)
	v, err := r.Get(100)
	if err != nil || v != 0 {
		t.Fatalf("Get(100) = %d, %v; want 0, nil", v, err)
	}
}

func TestMinWidth(t *testing.T) {
	cases := map[uint64]uint8{0: 1, 1: 1, 2: 2, 3: 2, 4: 3, 255: 8, 256: 9}
	for max, want := range cases {
		if got := MinWidth(max); got != want {
			t.Errorf("MinWidth(%d) = %d, want %d", max, got, want)
		}
	}
}

func TestFromRawToRawRoundTrip(t *testing.T) {
	values := []uint64{5, 0, 3, 12, 7, 1, 15}
	width := MinWidth(15)
	orig := NewResident(values, width)
	raw := ToRaw(orig)
	back := FromRaw(raw)
	if back.Len() != orig.Len() || back.Width() != orig.Width() {
		t.Fatalf("round trip shape mismatch")
	}
	for i, want := range values {
		got, err := back.Get(uint64(i))
		if err != nil || got != want {
			t.Fatalf("Get(%d) = %d, want %d", i, got, want)
		}
	}
}
