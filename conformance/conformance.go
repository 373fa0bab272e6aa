// Package conformance provides a reusable cross-strategy test harness:
// every storage strategy promises the same TripleAccess surface and the
// same results, and Run operationalizes that promise as a single
// assertion helper instead of one-off comparison code per test file.
package conformance

import (
	"sort"
	"testing"

	"github.com/hdt-go/hdt"
	"github.com/hdt-go/hdt/triples"
)

// Pattern is one (s,p,o) query shape to check across every accessor; a
// nil component is a wildcard, matching IterPattern's own convention.
type Pattern struct {
	Name    string
	S, P, O *uint64
}

// Run drives IterAll and every pattern in patterns against every
// accessor in accs, failing tb (via Errorf, so every case still runs)
// if any accessor's result set disagrees with want or with the other
// accessors. want is the expected full triple set in any order.
func Run(tb testing.TB, accs map[string]hdt.TripleAccess, want []triples.Triple, patterns []Pattern) {
	tb.Helper()

	wantSorted := sortByComponents(want)
	for name, acc := range accs {
		if got := acc.NumTriples(); got != uint64(len(want)) {
			tb.Errorf("strategy %s: NumTriples() = %d, want %d", name, got, len(want))
		}
		got := sortByComponents(drainToSlice(tb, acc.IterAll()))
		if !triplesEqual(got, wantSorted) {
			tb.Errorf("strategy %s: IterAll() = %v, want %v", name, got, wantSorted)
		}
	}

	for _, pat := range patterns {
		var expected []triples.Triple
		for _, t := range want {
			if pat.S != nil && t.S != *pat.S {
				continue
			}
			if pat.P != nil && t.P != *pat.P {
				continue
			}
			if pat.O != nil && t.O != *pat.O {
				continue
			}
			expected = append(expected, t)
		}
		expectedSorted := sortByComponents(expected)

		for name, acc := range accs {
			got := sortByComponents(drainToSlice(tb, acc.IterPattern(pat.S, pat.P, pat.O)))
			if !triplesEqual(got, expectedSorted) {
				tb.Errorf("pattern %s, strategy %s: got %v, want %v", pat.Name, name, got, expectedSorted)
			}
		}
	}
}

func drainToSlice(tb testing.TB, it *triples.Iter) []triples.Triple {
	tb.Helper()
	var out []triples.Triple
	for it.HasNext() {
		out = append(out, it.Next())
	}
	if err := it.Err(); err != nil {
		tb.Errorf("iterator error: %v", err)
	}
	return out
}

func sortByComponents(ts []triples.Triple) []triples.Triple {
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

func triplesEqual(a, b []triples.Triple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
