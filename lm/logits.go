package lm

import (
	"container/heap"
	"math"
	"sort"
)

// TokenScore pairs a token id with its next-token score.
type TokenScore struct {
	ID    int
	Score float32
}

// Logits is a next-token score distribution.
type Logits interface {
	Score(id int) float32

	// TopK returns up to k entries sorted by descending score.
	TopK(k int) []TokenScore
}

// Dense holds one score per vocabulary entry.
type Dense []float32

func (d Dense) Score(id int) float32 {
	if id < 0 || id >= len(d) {
		return float32(math.Inf(-1))
	}
	return d[id]
}

func (d Dense) TopK(k int) []TokenScore {
	sel := newSelector(k, len(d))
	for i, v := range d {
		sel.offer(TokenScore{ID: i, Score: v})
	}
	return sel.result()
}

// Sparse holds scores for a subset of the vocabulary. Absent ids score -Inf.
// Remote backends that only report the most likely tokens return Sparse.
type Sparse map[int]float32

func (s Sparse) Score(id int) float32 {
	if v, ok := s[id]; ok {
		return v
	}
	return float32(math.Inf(-1))
}

func (s Sparse) TopK(k int) []TokenScore {
	sel := newSelector(k, len(s))
	for id, v := range s {
		sel.offer(TokenScore{ID: id, Score: v})
	}
	return sel.result()
}

// ahead reports whether a ranks before b. Ties break on the lower id so
// results do not depend on map order.
func ahead(a, b TokenScore) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// scoreHeap is a min-heap on rank: the weakest kept entry is at the root.
type scoreHeap []TokenScore

func (h scoreHeap) Len() int           { return len(h) }
func (h scoreHeap) Less(i, j int) bool { return ahead(h[j], h[i]) }
func (h scoreHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scoreHeap) Push(x any) { *h = append(*h, x.(TokenScore)) }

func (h *scoreHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// selector keeps the k best entries offered to it. NaN scores are skipped.
type selector struct {
	k int
	h scoreHeap
}

func newSelector(k, n int) *selector {
	if k < 0 || k > n {
		k = n
	}
	return &selector{k: k, h: make(scoreHeap, 0, k)}
}

func (s *selector) offer(ts TokenScore) {
	if s.k == 0 || math.IsNaN(float64(ts.Score)) {
		return
	}
	if len(s.h) < s.k {
		heap.Push(&s.h, ts)
		return
	}
	if ahead(ts, s.h[0]) {
		s.h[0] = ts
		heap.Fix(&s.h, 0)
	}
}

func (s *selector) result() []TokenScore {
	out := []TokenScore(s.h)
	sort.Slice(out, func(i, j int) bool { return ahead(out[i], out[j]) })
	return out
}
