// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

// Package popularity implements the frequency-ranked fallback model.
// It ranks items by their total interaction weight and serves the same
// ranking to every user, which makes it the cold-start and fallback
// answer when no personalized model applies.
package popularity

import (
	"sort"
	"sync"

	"github.com/reclens/reclens/internal/userknn"
)

// Model ranks items by aggregate interaction weight.
type Model struct {
	mu        sync.RWMutex
	sortedIDs []int64 // item ids sorted by popularity descending
	fitted    bool
}

// New creates an unfitted popularity model.
func New() *Model {
	return &Model{}
}

// Fit computes popularity scores from interactions. Safe to call again
// to refit; the ranking is replaced atomically.
func (m *Model) Fit(records []userknn.Interaction) {
	scores := make(map[int64]float64, len(records))
	for _, rec := range records {
		weight := rec.Weight
		if weight <= 0 {
			weight = 1.0
		}
		scores[rec.ItemID] += weight
	}

	type scoredItem struct {
		id    int64
		score float64
	}
	scored := make([]scoredItem, 0, len(scores))
	for id, score := range scores {
		scored = append(scored, scoredItem{id, score})
	}

	// Equal scores break toward the lower item id so refits on the
	// same data produce the same ranking.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].id < scored[j].id
	})

	ids := make([]int64, len(scored))
	for i, s := range scored {
		ids[i] = s.id
	}

	m.mu.Lock()
	m.sortedIDs = ids
	m.fitted = true
	m.mu.Unlock()
}

// Top returns the k most popular item ids, best first. It returns nil
// before Fit or for k <= 0.
func (m *Model) Top(k int) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.fitted || k <= 0 || len(m.sortedIDs) == 0 {
		return nil
	}
	if k > len(m.sortedIDs) {
		k = len(m.sortedIDs)
	}
	out := make([]int64, k)
	copy(out, m.sortedIDs[:k])
	return out
}

// IsFitted reports whether Fit has completed at least once.
func (m *Model) IsFitted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fitted
}
