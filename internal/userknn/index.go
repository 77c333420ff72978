// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import (
	"errors"
	"math"
	"sort"
	"sync"
)

// CosineIndex is a brute-force cosine nearest-neighbor index over user
// columns of the interaction matrix. It precomputes the top-N neighbor
// list per user at Fit time with a bounded worker pool, so Similar is a
// slice lookup.
//
// The query user itself is always reported as its own best neighbor
// with similarity 1.0, matching the item-item KNN libraries this index
// stands in for; callers that want genuine neighbors skip self.
type CosineIndex struct {
	topN    int
	workers int

	neighbors [][]Neighbor
}

// NewCosineIndex creates an index precomputing up to topN neighbors per
// user. workers <= 0 defaults to 4.
func NewCosineIndex(topN, workers int) *CosineIndex {
	if topN <= 0 {
		topN = 50
	}
	if workers <= 0 {
		workers = 4
	}
	return &CosineIndex{topN: topN, workers: workers}
}

// Fit precomputes neighbor lists from the matrix's user columns.
func (c *CosineIndex) Fit(m *Matrix) error {
	if m == nil {
		return errors.New("cosine index: nil matrix")
	}

	// Dense-map view of each user column for O(min(nnz)) dot products.
	vectors := make([]map[int]float64, m.Cols)
	norms := make([]float64, m.Cols)
	for u := 0; u < m.Cols; u++ {
		rows, weights := m.Col(u)
		vec := make(map[int]float64, len(rows))
		var norm float64
		for k, row := range rows {
			vec[row] = weights[k]
			norm += weights[k] * weights[k]
		}
		vectors[u] = vec
		norms[u] = math.Sqrt(norm)
	}

	neighbors := make([][]Neighbor, m.Cols)

	var wg sync.WaitGroup
	chunk := (m.Cols + c.workers - 1) / c.workers
	for w := 0; w < c.workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > m.Cols {
			end = m.Cols
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for u := start; u < end; u++ {
				neighbors[u] = c.computeNeighbors(u, vectors, norms)
			}
		}(start, end)
	}
	wg.Wait()

	c.neighbors = neighbors
	return nil
}

// computeNeighbors scores user u against every other user and keeps the
// topN by similarity. Candidates are scanned in ascending index order
// and sorted stably, so equal scores resolve to the lower user index.
func (c *CosineIndex) computeNeighbors(u int, vectors []map[int]float64, norms []float64) []Neighbor {
	out := make([]Neighbor, 0, len(vectors))
	out = append(out, Neighbor{User: u, Score: 1.0})

	for v := range vectors {
		if v == u {
			continue
		}
		sim := cosine(vectors[u], vectors[v], norms[u], norms[v])
		if sim > 0 {
			out = append(out, Neighbor{User: v, Score: sim})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})

	if len(out) > c.topN {
		out = out[:c.topN]
	}
	return out
}

// cosine computes the cosine similarity of two sparse vectors given
// their precomputed norms. Iterates the smaller map.
func cosine(a, b map[int]float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for row, av := range a {
		if bv, ok := b[row]; ok {
			dot += av * bv
		}
	}
	return dot / (normA * normB)
}

// Similar returns up to n precomputed neighbors for the user, descending
// by score. It returns nil for out-of-range users or before Fit.
func (c *CosineIndex) Similar(user, n int) []Neighbor {
	if c.neighbors == nil || user < 0 || user >= len(c.neighbors) {
		return nil
	}
	nbrs := c.neighbors[user]
	if n > 0 && len(nbrs) > n {
		nbrs = nbrs[:n]
	}
	return nbrs
}

// Interface compliance.
var _ SimilarityIndex = (*CosineIndex)(nil)
