// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

// IDMap is a bijection between external identifiers and dense zero-based
// internal indices. Indices are assigned in first-occurrence order over
// the input sequence. The map is built once at fit time and read-only
// afterward.
type IDMap struct {
	toIndex map[int64]int
	toID    []int64
}

// BuildIDMap assigns each distinct id the next unused internal index,
// starting at zero, in order of first appearance.
func BuildIDMap(ids []int64) *IDMap {
	m := &IDMap{
		toIndex: make(map[int64]int),
	}
	for _, id := range ids {
		if _, ok := m.toIndex[id]; ok {
			continue
		}
		m.toIndex[id] = len(m.toID)
		m.toID = append(m.toID, id)
	}
	return m
}

// Internal returns the dense index for an external id. The second return
// distinguishes "not found" from "found with index 0"; unseen ids are
// not an error at lookup time.
func (m *IDMap) Internal(id int64) (int, bool) {
	idx, ok := m.toIndex[id]
	return idx, ok
}

// External returns the external id for a dense index. It is the direct
// inverse of Internal, total over [0, Len).
func (m *IDMap) External(idx int) (int64, bool) {
	if idx < 0 || idx >= len(m.toID) {
		return 0, false
	}
	return m.toID[idx], true
}

// Len returns the number of distinct mapped identifiers.
func (m *IDMap) Len() int {
	return len(m.toID)
}

// IDs returns the external identifiers in internal-index order.
// The returned slice is shared; callers must not mutate it.
func (m *IDMap) IDs() []int64 {
	return m.toID
}

// userColumn extracts the user id column from interaction records.
func userColumn(records []Interaction) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.UserID
	}
	return out
}

// itemColumn extracts the item id column from interaction records.
func itemColumn(records []Interaction) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.ItemID
	}
	return out
}
