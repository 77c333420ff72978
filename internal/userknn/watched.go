// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

// WatchedIndex maps each user to the ordered sequence of items the user
// interacted with in training, duplicates preserved. It is keyed by the
// external user id: prediction paths join similarity results back to
// external ids before expanding candidates.
type WatchedIndex struct {
	items map[int64][]int64
}

// BuildWatched groups training records by user, collecting item ids in
// record order.
func BuildWatched(records []Interaction) *WatchedIndex {
	w := &WatchedIndex{
		items: make(map[int64][]int64),
	}
	for _, r := range records {
		w.items[r.UserID] = append(w.items[r.UserID], r.ItemID)
	}
	return w
}

// Items returns the watched item ids for an external user id. The slice
// is shared; callers must not mutate it.
func (w *WatchedIndex) Items(userID int64) ([]int64, bool) {
	items, ok := w.items[userID]
	return items, ok
}

// Len returns the number of users with a watch history.
func (w *WatchedIndex) Len() int {
	return len(w.items)
}
