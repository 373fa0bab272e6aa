// Package bitmap implements C2: a Rank9Sel-class compressed bitmap
// supporting O(1) rank1/select1. The rank/select scheme (per-word
// cumulative popcount plus a sparsely sampled select index) follows
// the succinct-set bitmap used for domain-trie navigation in the
// corpus (xflash-panda-acl-engine's pkg/acl/domain succinct set),
// generalized here from a one-off trie helper into a standalone,
// serializable bitmap type (spec §4.2, §9).
package bitmap

import (
	"fmt"
	"math/bits"
)

// selectSampleRate samples the position of every Nth one bit, so
// Select1 never has to scan more than selectSampleRate/2 words on
// average before a direct rank-table lookup finishes the job.
const selectSampleRate = 64

// Bitmap is an immutable, rank/select-indexed 0/1 vector.
type Bitmap struct {
	words    []uint64
	numBits  uint64
	popcount uint64

	// rankIndex[w] = number of 1 bits in words[0:w]; len = len(words)+1.
	rankIndex []int64
	// selectSamples[k] = bit position of the (k*selectSampleRate)-th
	// one bit (0-based), used to seed the Select1 search.
	selectSamples []int64
}

// New builds a Bitmap from a 0/1 vector given as packed words
// (LSB-first) and its bit length.
func New(words []uint64, numBits uint64) *Bitmap {
	b := &Bitmap{words: words, numBits: numBits}
	b.index()
	return b
}

// NewFromBits builds a Bitmap directly from a []bool, primarily for
// tests and small synthetic fixtures.
func NewFromBits(bits []bool) *Bitmap {
	nWords := (len(bits) + 63) / 64
	words := make([]uint64, nWords)
	for i, set := range bits {
		if set {
			words[i/64] |= uint64(1) << uint(i%64)
		}
	}
	return New(words, uint64(len(bits)))
}

func (b *Bitmap) index() {
	b.rankIndex = make([]int64, len(b.words)+1)
	var samples []int64
	var count int64
	nextSample := int64(0)
	for w, word := range b.words {
		b.rankIndex[w] = count
		if word != 0 {
			base := int64(w) * 64
			ww := word
			for ww != 0 {
				tz := bits.TrailingZeros64(ww)
				pos := base + int64(tz)
				if count == nextSample {
					samples = append(samples, pos)
					nextSample += selectSampleRate
				}
				count++
				ww &= ww - 1
			}
		}
	}
	b.rankIndex[len(b.words)] = count
	b.popcount = uint64(count)
	if len(samples) == 0 {
		samples = []int64{0}
	}
	b.selectSamples = samples
}

// Len returns the bitmap's length in bits.
func (b *Bitmap) Len() uint64 { return b.numBits }

// Popcount returns the total number of 1 bits.
func (b *Bitmap) Popcount() uint64 { return b.popcount }

// Get returns the bit at position i.
func (b *Bitmap) Get(i uint64) bool {
	if i >= b.numBits {
		return false
	}
	return b.words[i/64]&(uint64(1)<<(i%64)) != 0
}

// Rank1 returns the number of 1 bits in [0, i).
func (b *Bitmap) Rank1(i uint64) uint64 {
	if i > b.numBits {
		i = b.numBits
	}
	wi := i / 64
	if int(wi) >= len(b.words) {
		return b.popcount
	}
	bi := i % 64
	base := b.rankIndex[wi]
	masked := b.words[wi] & ((uint64(1) << bi) - 1)
	return uint64(base) + uint64(bits.OnesCount64(masked))
}

// Select1 returns the 0-based index of the (k+1)-th one bit, or
// (0, false) if k >= Popcount.
func (b *Bitmap) Select1(k uint64) (uint64, bool) {
	if k >= b.popcount {
		return 0, false
	}
	sampleIdx := k / selectSampleRate
	if int(sampleIdx) >= len(b.selectSamples) {
		sampleIdx = uint64(len(b.selectSamples) - 1)
	}
	wi := uint64(b.selectSamples[sampleIdx]) / 64

	for int(wi)+1 < len(b.rankIndex) && uint64(b.rankIndex[wi+1]) <= k {
		wi++
	}
	remaining := k - uint64(b.rankIndex[wi])
	w := b.words[wi]
	for remaining > 0 {
		w &= w - 1
		remaining--
	}
	bitPos := bits.TrailingZeros64(w)
	if bitPos == 64 {
		return 0, false
	}
	return wi*64 + uint64(bitPos), true
}

// SizeInBytes reports the bitmap's resident footprint including its
// rank/select sampling structures.
func (b *Bitmap) SizeInBytes() uint64 {
	return uint64(len(b.words))*8 + uint64(len(b.rankIndex))*8 + uint64(len(b.selectSamples))*8
}

// Words exposes the backing word array, e.g. for serialization.
func (b *Bitmap) Words() []uint64 { return b.words }

func (b *Bitmap) String() string {
	return fmt.Sprintf("Bitmap{len=%d, popcount=%d}", b.numBits, b.popcount)
}
