// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import (
	"math"
	"testing"
)

// scenarioRecords is the canonical three-user fixture:
// u1 watched {i1, i2}, u2 watched {i1, i3}, u3 watched {i2}.
func scenarioRecords() []Interaction {
	return []Interaction{
		NewInteraction(1, 10),
		NewInteraction(1, 20),
		NewInteraction(2, 10),
		NewInteraction(2, 30),
		NewInteraction(3, 20),
	}
}

func fitCosineIndex(t *testing.T, records []Interaction, topN int) (*CosineIndex, *IDMap, *IDMap) {
	t.Helper()

	m, users, items := buildFixtureMatrix(t, records)
	idx := NewCosineIndex(topN, 2)
	if err := idx.Fit(m); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return idx, users, items
}

func TestCosineIndexSelfFirst(t *testing.T) {
	idx, users, _ := fitCosineIndex(t, scenarioRecords(), 10)

	u1, _ := users.Internal(1)
	nbrs := idx.Similar(u1, 10)
	if len(nbrs) == 0 {
		t.Fatal("no neighbors returned")
	}
	if nbrs[0].User != u1 || nbrs[0].Score != 1.0 {
		t.Errorf("expected self as best neighbor with score 1.0, got %+v", nbrs[0])
	}
}

func TestCosineIndexKnownSimilarities(t *testing.T) {
	idx, users, _ := fitCosineIndex(t, scenarioRecords(), 10)

	u1, _ := users.Internal(1)
	u2, _ := users.Internal(2)
	u3, _ := users.Internal(3)

	nbrs := idx.Similar(u1, 10)
	scores := make(map[int]float64, len(nbrs))
	for _, nb := range nbrs {
		scores[nb.User] = nb.Score
	}

	// cos(u1, u2) = 1/2, cos(u1, u3) = 1/sqrt(2).
	if got := scores[u2]; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("sim(u1, u2): expected 0.5, got %v", got)
	}
	if got := scores[u3]; math.Abs(got-1/math.Sqrt2) > 1e-12 {
		t.Errorf("sim(u1, u3): expected %v, got %v", 1/math.Sqrt2, got)
	}
}

func TestCosineIndexDescendingOrder(t *testing.T) {
	idx, users, _ := fitCosineIndex(t, scenarioRecords(), 10)

	u1, _ := users.Internal(1)
	nbrs := idx.Similar(u1, 10)
	for k := 1; k < len(nbrs); k++ {
		if nbrs[k-1].Score < nbrs[k].Score {
			t.Fatalf("neighbors not in descending order: %+v", nbrs)
		}
	}
}

func TestCosineIndexOmitsZeroSimilarity(t *testing.T) {
	idx, users, _ := fitCosineIndex(t, scenarioRecords(), 10)

	// u2 and u3 share no items.
	u2, _ := users.Internal(2)
	u3, _ := users.Internal(3)
	for _, nb := range idx.Similar(u2, 10) {
		if nb.User == u3 {
			t.Errorf("expected zero-similarity user omitted, got %+v", nb)
		}
	}
}

func TestCosineIndexTruncation(t *testing.T) {
	idx, users, _ := fitCosineIndex(t, scenarioRecords(), 2)

	u1, _ := users.Internal(1)
	if nbrs := idx.Similar(u1, 10); len(nbrs) > 2 {
		t.Errorf("expected at most topN=2 neighbors, got %d", len(nbrs))
	}
	if nbrs := idx.Similar(u1, 1); len(nbrs) != 1 {
		t.Errorf("expected n=1 truncation, got %d", len(nbrs))
	}
}

func TestCosineIndexUnfittedAndOutOfRange(t *testing.T) {
	idx := NewCosineIndex(10, 1)
	if nbrs := idx.Similar(0, 5); nbrs != nil {
		t.Errorf("expected nil before Fit, got %v", nbrs)
	}

	fitted, _, _ := fitCosineIndex(t, scenarioRecords(), 10)
	if nbrs := fitted.Similar(-1, 5); nbrs != nil {
		t.Errorf("expected nil for negative user, got %v", nbrs)
	}
	if nbrs := fitted.Similar(99, 5); nbrs != nil {
		t.Errorf("expected nil for out-of-range user, got %v", nbrs)
	}
}

func TestCosineIndexDeterministic(t *testing.T) {
	a, users, _ := fitCosineIndex(t, scenarioRecords(), 10)
	b, _, _ := fitCosineIndex(t, scenarioRecords(), 10)

	for uid := int64(1); uid <= 3; uid++ {
		u, _ := users.Internal(uid)
		na, nb := a.Similar(u, 10), b.Similar(u, 10)
		if len(na) != len(nb) {
			t.Fatalf("user %d: neighbor count differs across fits", uid)
		}
		for k := range na {
			if na[k] != nb[k] {
				t.Errorf("user %d neighbor %d differs: %+v vs %+v", uid, k, na[k], nb[k])
			}
		}
	}
}
