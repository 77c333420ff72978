// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

// Package userknn implements a user-based collaborative-filtering
// recommendation engine.
//
// Given a training set of user-item interactions, the engine finds users
// with similar interaction patterns through a pluggable similarity index
// and recommends the items those users consumed, weighted by similarity
// and by item rarity (a smoothed inverse document frequency).
//
// # Components
//
//   - IDMap: bijection between external identifiers and dense indices
//   - Matrix: sparse item-by-user interaction matrix (CSC layout)
//   - ItemRarity: per-item IDF weights over the training multiset
//   - WatchedIndex: per-user interaction history keyed by external id
//   - SimilarityIndex: nearest-neighbor capability over user columns
//   - Engine: orchestration, batch and single-user prediction
//
// # Prediction Paths
//
// The engine exposes two deliberately different query shapes. Predict
// ranks candidates by similarity times rarity with per-user dense ranks.
// PredictSingle flattens the neighbors' histories into a deduplicated,
// unweighted list. The asymmetry is part of the contract, not an
// implementation accident.
//
// # Thread Safety
//
// Fit swaps the full model state atomically. All prediction paths read
// an immutable snapshot and are safe for unlimited concurrent use.
package userknn
