// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import "time"

// Interaction represents a single user-item interaction record.
// Multiple records for the same (user, item) pair are permitted and are
// not pre-aggregated; the matrix builder sums their weights.
type Interaction struct {
	// UserID is the external user identifier. Arbitrary, never assumed
	// contiguous or zero-based.
	UserID int64 `json:"user_id"`

	// ItemID is the external item identifier.
	ItemID int64 `json:"item_id"`

	// Weight is the interaction strength. Loaders default it to 1.0
	// when the source has no weight column.
	Weight float64 `json:"weight"`
}

// NewInteraction returns an unweighted interaction (weight 1.0).
func NewInteraction(userID, itemID int64) Interaction {
	return Interaction{UserID: userID, ItemID: itemID, Weight: 1.0}
}

// Recommendation is one ranked item for one user, as produced by the
// batch prediction path.
type Recommendation struct {
	// UserID is the requesting user's external identifier.
	UserID int64 `json:"user_id"`

	// ItemID is the recommended item's external identifier.
	ItemID int64 `json:"item_id"`

	// Score is similarity times item rarity (IDF).
	Score float64 `json:"score"`

	// Rank is the 1-based position within this user's list. Ranks are
	// contiguous per user.
	Rank int `json:"rank"`
}

// Neighbor is one entry of a similarity query result: a similar user's
// internal index together with its similarity score.
type Neighbor struct {
	// User is the internal index of the similar user.
	User int

	// Score is the similarity between the query user and this user.
	Score float64
}

// SimilarityIndex is the external nearest-neighbor capability the engine
// consumes. Fit trains the index on the interaction matrix, treating
// each user column as that user's feature vector. Similar returns up to
// n neighbors in descending score order.
//
// Implementations may include the query user itself in the result (the
// bundled CosineIndex does, mirroring item-item KNN libraries); the
// engine excludes self during expansion. Similar must be safe for
// concurrent use after Fit returns.
type SimilarityIndex interface {
	Fit(m *Matrix) error
	Similar(user, n int) []Neighbor
}

// Status describes the fitted state of an engine for introspection.
type Status struct {
	Fitted       bool      `json:"fitted"`
	Users        int       `json:"users"`
	Items        int       `json:"items"`
	Interactions int       `json:"interactions"`
	ModelVersion int       `json:"model_version"`
	TrainedAt    time.Time `json:"trained_at,omitzero"`
}
