// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package popularity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reclens/reclens/internal/userknn"
)

func TestTopRanksByFrequency(t *testing.T) {
	m := New()
	m.Fit([]userknn.Interaction{
		userknn.NewInteraction(1, 10),
		userknn.NewInteraction(2, 10),
		userknn.NewInteraction(3, 10),
		userknn.NewInteraction(1, 20),
		userknn.NewInteraction(2, 20),
		userknn.NewInteraction(1, 30),
	})

	assert.Equal(t, []int64{10, 20, 30}, m.Top(10))
}

func TestTopRespectsWeights(t *testing.T) {
	m := New()
	m.Fit([]userknn.Interaction{
		{UserID: 1, ItemID: 10, Weight: 1.0},
		{UserID: 1, ItemID: 20, Weight: 5.0},
	})

	assert.Equal(t, []int64{20, 10}, m.Top(2))
}

func TestTopTieBreaksByItemID(t *testing.T) {
	m := New()
	m.Fit([]userknn.Interaction{
		userknn.NewInteraction(1, 30),
		userknn.NewInteraction(1, 10),
		userknn.NewInteraction(1, 20),
	})

	// All items tie on weight 1.0.
	assert.Equal(t, []int64{10, 20, 30}, m.Top(3))
}

func TestTopTruncation(t *testing.T) {
	m := New()
	m.Fit([]userknn.Interaction{
		userknn.NewInteraction(1, 10),
		userknn.NewInteraction(1, 20),
		userknn.NewInteraction(1, 30),
	})

	assert.Len(t, m.Top(2), 2)
	assert.Len(t, m.Top(100), 3)
	assert.Nil(t, m.Top(0))
	assert.Nil(t, m.Top(-1))
}

func TestTopUnfitted(t *testing.T) {
	m := New()
	assert.False(t, m.IsFitted())
	assert.Nil(t, m.Top(10))
}

func TestRefitReplacesRanking(t *testing.T) {
	m := New()
	m.Fit([]userknn.Interaction{userknn.NewInteraction(1, 10)})
	m.Fit([]userknn.Interaction{userknn.NewInteraction(1, 99)})

	assert.Equal(t, []int64{99}, m.Top(10))
}

func TestNonPositiveWeightCountsAsOne(t *testing.T) {
	m := New()
	m.Fit([]userknn.Interaction{
		{UserID: 1, ItemID: 10, Weight: 0},
		{UserID: 2, ItemID: 10, Weight: -3},
		{UserID: 1, ItemID: 20, Weight: 1.0},
	})

	// Item 10 accumulates 2.0 from the two defaulted records.
	assert.Equal(t, []int64{10, 20}, m.Top(2))
}
