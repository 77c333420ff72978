// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import (
	"encoding/gob"
	"errors"
	"fmt"
	"time"
)

// State is the serializable form of a fitted engine. It captures the
// identifier mappings, the interaction matrix, rarity weights and
// watched-items index; the similarity index is not serialized but
// deterministically refitted from the matrix on Restore, so a
// round-tripped engine answers queries identically to the original.
type State struct {
	// UserIDs and ItemIDs list external ids in internal-index order.
	UserIDs []int64
	ItemIDs []int64

	Matrix Matrix

	TotalRecords int
	DocFreq      map[int64]int
	IDF          map[int64]float64

	Watched map[int64][]int64

	TrainedAt time.Time
	Version   int
}

// State extracts the serializable model state. Returns ErrNotFitted on
// an unfitted engine.
func (e *Engine) State() (*State, error) {
	st := e.snapshot()
	if st == nil {
		return nil, ErrNotFitted
	}

	return &State{
		UserIDs:      st.users.IDs(),
		ItemIDs:      st.items.IDs(),
		Matrix:       *st.matrix,
		TotalRecords: st.rarity.total,
		DocFreq:      st.rarity.docFreq,
		IDF:          st.rarity.idf,
		Watched:      st.watched.items,
		TrainedAt:    st.trainedAt,
		Version:      st.version,
	}, nil
}

// Restore replaces the engine's model with a previously captured state,
// refitting the similarity index from the stored matrix. Restore either
// completes or fails atomically.
func (e *Engine) Restore(s *State) error {
	if s == nil {
		return errors.New("restore: nil state")
	}
	if len(s.UserIDs) == 0 || len(s.ItemIDs) == 0 {
		return errors.New("restore: state has no mapped identifiers")
	}
	if s.Matrix.Rows != len(s.ItemIDs) || s.Matrix.Cols != len(s.UserIDs) {
		return fmt.Errorf("restore: matrix shape (%d, %d) does not match mappings (%d, %d)",
			s.Matrix.Rows, s.Matrix.Cols, len(s.ItemIDs), len(s.UserIDs))
	}

	matrix := s.Matrix

	index := e.newIndex()
	if err := index.Fit(&matrix); err != nil {
		return fmt.Errorf("restore: refit similarity index: %w", err)
	}

	e.mu.Lock()
	e.state = &fitted{
		users:  BuildIDMap(s.UserIDs),
		items:  BuildIDMap(s.ItemIDs),
		matrix: &matrix,
		rarity: &ItemRarity{
			total:   s.TotalRecords,
			docFreq: s.DocFreq,
			idf:     s.IDF,
		},
		watched:   &WatchedIndex{items: s.Watched},
		index:     index,
		trainedAt: s.TrainedAt,
		version:   s.Version,
	}
	e.mu.Unlock()

	e.logger.Info().
		Int("users", len(s.UserIDs)).
		Int("items", len(s.ItemIDs)).
		Int("version", s.Version).
		Time("trained_at", s.TrainedAt).
		Msg("model restored")

	return nil
}

// Gob registration for the blob store.
//
//nolint:gochecknoinits // gob.Register must run at package init
func init() {
	gob.Register(State{})
}
