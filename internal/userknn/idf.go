// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import "math"

// ItemRarity holds smoothed inverse-document-frequency weights per item.
// Popular items are down-weighted, rare items up-weighted. It is a pure
// function of the training interaction multiset.
type ItemRarity struct {
	total   int
	docFreq map[int64]int
	idf     map[int64]float64
}

// FitItemRarity computes, for every distinct item, its document
// frequency (number of records referencing it, not distinct users) and
// the smoothed IDF weight
//
//	idf = ln((1 + n) / (1 + doc_freq) + 1)
//
// where n is the total record count.
func FitItemRarity(records []Interaction) *ItemRarity {
	r := &ItemRarity{
		total:   len(records),
		docFreq: make(map[int64]int),
	}
	for _, rec := range records {
		r.docFreq[rec.ItemID]++
	}

	r.idf = make(map[int64]float64, len(r.docFreq))
	for item, df := range r.docFreq {
		r.idf[item] = smoothedIDF(r.total, float64(df))
	}
	return r
}

// smoothedIDF is strictly decreasing in docFreq for fixed n.
func smoothedIDF(n int, docFreq float64) float64 {
	return math.Log((1+float64(n))/(1+docFreq) + 1)
}

// IDF returns the rarity weight for an item. Items unseen at fit time
// have no entry and must be excluded from ranking by the caller.
func (r *ItemRarity) IDF(item int64) (float64, bool) {
	v, ok := r.idf[item]
	return v, ok
}

// DocFreq returns the number of training records referencing the item.
func (r *ItemRarity) DocFreq(item int64) (int, bool) {
	v, ok := r.docFreq[item]
	return v, ok
}

// TotalRecords returns n, the training record count.
func (r *ItemRarity) TotalRecords() int {
	return r.total
}

// Len returns the number of items with a rarity entry.
func (r *ItemRarity) Len() int {
	return len(r.idf)
}
