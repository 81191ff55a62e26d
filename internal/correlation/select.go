package correlation

import (
	"math"
	"sort"
)

// Default thresholds used by the pipeline.
const (
	DefaultThres1 = 0.1
	DefaultThres2 = 0.3
)

// Feature is a selected column and its correlation with the target.
type Feature struct {
	Name string  `json:"name"`
	Corr float64 `json:"corr"`
}

// Selection is ordered by descending absolute target correlation.
type Selection []Feature

// Names returns the feature names in order.
func (s Selection) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the target correlation of a selected feature.
func (s Selection) Lookup(name string) (float64, bool) {
	for _, f := range s {
		if f.Name == name {
			return f.Corr, true
		}
	}
	return 0, false
}

// Select keeps the columns whose |corr(target, c)| is at least thres1, then
// removes redundant ones: for every pair of candidates whose signed
// correlation is at least thres2, the one less correlated with the target is
// dropped.
//
// Pairs are visited in candidate order (descending |corr| with the target,
// matrix order on ties), i before j, over the full candidate list. A
// candidate that was already dropped still eliminates weaker partners. On an
// exact tie the earlier candidate is kept. Negative pairwise correlation
// never marks a pair redundant.
func Select(m *Matrix, thres1, thres2 float64) Selection {
	var cand []int
	for j := 1; j < m.Len(); j++ {
		r := m.Value(0, j)
		if math.IsNaN(r) || math.Abs(r) < thres1 {
			continue
		}
		cand = append(cand, j)
	}
	sort.SliceStable(cand, func(a, b int) bool {
		return math.Abs(m.Value(0, cand[a])) > math.Abs(m.Value(0, cand[b]))
	})

	dropped := make(map[int]bool)
	for a := 0; a < len(cand); a++ {
		for b := a + 1; b < len(cand); b++ {
			i, j := cand[a], cand[b]
			r := m.Value(i, j)
			if math.IsNaN(r) || r < thres2 {
				continue
			}
			// cand is sorted, so j is never more correlated with the target than i.
			dropped[j] = true
		}
	}

	out := make(Selection, 0, len(cand))
	for _, j := range cand {
		if !dropped[j] {
			out = append(out, Feature{Name: m.names[j], Corr: m.Value(0, j)})
		}
	}
	return out
}
