// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import (
	"fmt"
	"sort"
)

// Matrix is a sparse item-by-user interaction matrix in compressed
// sparse column layout: column u holds user u's item-weight vector.
// Cell (i, u) is the sum of weights of all interactions between
// internal item i and internal user u; duplicate (row, col) entries
// from repeated interactions are summed during construction.
//
// Fields are exported for gob serialization only. The matrix is built
// once at fit time and read-only afterward.
type Matrix struct {
	Rows int // number of items
	Cols int // number of users

	// ColPtr has Cols+1 entries; column u occupies [ColPtr[u], ColPtr[u+1]).
	ColPtr []int

	// RowIdx holds row (item) indices, ascending within each column.
	RowIdx []int

	// Data holds the summed weights parallel to RowIdx.
	Data []float64
}

// BuildMatrix constructs the interaction matrix from raw records using
// the given mappers. Every record must resolve through both mappers:
// the mappers are derived from the same dataset, so a miss indicates
// caller misuse and fails construction rather than being skipped.
func BuildMatrix(records []Interaction, users, items *IDMap) (*Matrix, error) {
	type entry struct {
		row    int
		weight float64
	}

	cols := make([][]entry, users.Len())
	for n, r := range records {
		u, ok := users.Internal(r.UserID)
		if !ok {
			return nil, fmt.Errorf("matrix build: record %d references unmapped user %d", n, r.UserID)
		}
		i, ok := items.Internal(r.ItemID)
		if !ok {
			return nil, fmt.Errorf("matrix build: record %d references unmapped item %d", n, r.ItemID)
		}
		cols[u] = append(cols[u], entry{row: i, weight: r.Weight})
	}

	m := &Matrix{
		Rows:   items.Len(),
		Cols:   users.Len(),
		ColPtr: make([]int, users.Len()+1),
	}

	for u, col := range cols {
		sort.Slice(col, func(a, b int) bool { return col[a].row < col[b].row })

		// Coalesce duplicate rows by summing weights.
		for j := 0; j < len(col); {
			row := col[j].row
			sum := 0.0
			for ; j < len(col) && col[j].row == row; j++ {
				sum += col[j].weight
			}
			m.RowIdx = append(m.RowIdx, row)
			m.Data = append(m.Data, sum)
		}
		m.ColPtr[u+1] = len(m.RowIdx)
	}

	return m, nil
}

// Col returns the row indices and weights of user column u. The slices
// alias the matrix storage and must not be mutated.
func (m *Matrix) Col(u int) (rows []int, weights []float64) {
	lo, hi := m.ColPtr[u], m.ColPtr[u+1]
	return m.RowIdx[lo:hi], m.Data[lo:hi]
}

// NNZ returns the number of stored entries.
func (m *Matrix) NNZ() int {
	return len(m.Data)
}

// At returns the value at (row, col). Intended for tests and small
// matrices; prediction paths use Col.
func (m *Matrix) At(row, col int) float64 {
	rows, weights := m.Col(col)
	for k, r := range rows {
		if r == row {
			return weights[k]
		}
	}
	return 0
}
