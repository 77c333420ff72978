// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package userknn

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config contains engine configuration.
type Config struct {
	// NeighborUsers is the number of similar users requested from the
	// similarity index per query. Typical range: 20-100.
	NeighborUsers int

	// DefaultTopK is the number of recommendations returned when the
	// caller passes topK <= 0.
	DefaultTopK int

	// Workers bounds the parallelism of the bundled similarity index.
	Workers int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		NeighborUsers: 50,
		DefaultTopK:   10,
		Workers:       4,
	}
}

// Validate checks configuration bounds.
func (c Config) Validate() error {
	if c.NeighborUsers <= 0 {
		return fmt.Errorf("neighbor_users must be positive, got %d", c.NeighborUsers)
	}
	if c.DefaultTopK <= 0 {
		return fmt.Errorf("default_top_k must be positive, got %d", c.DefaultTopK)
	}
	return nil
}

// fitted is the complete immutable model state produced by one Fit.
// Predictions operate on a snapshot of this struct; a nil snapshot
// means the engine is unfitted. Collecting all fit-time state here (in
// place of scattered attributes guarded by a boolean) makes "predict
// before fit" unrepresentable past the snapshot check.
type fitted struct {
	users   *IDMap
	items   *IDMap
	matrix  *Matrix
	rarity  *ItemRarity
	watched *WatchedIndex
	index   SimilarityIndex

	trainedAt time.Time
	version   int
}

// Engine is the user-based collaborative-filtering recommendation
// engine. Safe for unlimited concurrent prediction after Fit.
type Engine struct {
	cfg    Config
	logger zerolog.Logger

	// newIndex builds a fresh similarity index per fit.
	newIndex func() SimilarityIndex

	mu    sync.RWMutex
	state *fitted
}

// Option configures an Engine.
type Option func(*Engine)

// WithIndexFactory overrides the similarity index construction. The
// factory is invoked once per Fit; any implementation satisfying the
// SimilarityIndex contract is substitutable.
func WithIndexFactory(f func() SimilarityIndex) Option {
	return func(e *Engine) {
		e.newIndex = f
	}
}

// NewEngine creates an unfitted engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger.With().Str("component", "userknn").Logger(),
	}
	e.newIndex = func() SimilarityIndex {
		return NewCosineIndex(cfg.NeighborUsers, cfg.Workers)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// IsFitted reports whether a successful Fit has completed.
func (e *Engine) IsFitted() bool {
	return e.snapshot() != nil
}

// Status returns fitted-state introspection data.
func (e *Engine) Status() Status {
	st := e.snapshot()
	if st == nil {
		return Status{}
	}
	return Status{
		Fitted:       true,
		Users:        st.users.Len(),
		Items:        st.items.Len(),
		Interactions: st.rarity.TotalRecords(),
		ModelVersion: st.version,
		TrainedAt:    st.trainedAt,
	}
}

// Fit builds the full model from training records: identifier mappers
// (first-occurrence order over their respective columns), the sparse
// interaction matrix, the watched-items index, item rarity weights, and
// the similarity index over user columns. Fit either completes or fails
// atomically, leaving prior state untouched.
func (e *Engine) Fit(records []Interaction) error {
	if len(records) == 0 {
		return ErrEmptyTrainingSet
	}

	start := time.Now()

	users := BuildIDMap(userColumn(records))
	items := BuildIDMap(itemColumn(records))

	matrix, err := BuildMatrix(records, users, items)
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	watched := BuildWatched(records)
	rarity := FitItemRarity(records)

	index := e.newIndex()
	if err := index.Fit(matrix); err != nil {
		return fmt.Errorf("fit similarity index: %w", err)
	}

	e.mu.Lock()
	version := 1
	if e.state != nil {
		version = e.state.version + 1
	}
	e.state = &fitted{
		users:     users,
		items:     items,
		matrix:    matrix,
		rarity:    rarity,
		watched:   watched,
		index:     index,
		trainedAt: time.Now(),
		version:   version,
	}
	e.mu.Unlock()

	e.logger.Info().
		Int("users", users.Len()).
		Int("items", items.Len()).
		Int("interactions", len(records)).
		Int("nnz", matrix.NNZ()).
		Int("version", version).
		Dur("elapsed", time.Since(start)).
		Msg("model fitted")

	return nil
}

// snapshot returns the current immutable model state, or nil when
// unfitted.
func (e *Engine) snapshot() *fitted {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Predict generates ranked recommendations for a batch of users.
//
// For each distinct input user (first-occurrence order), the similarity
// index is queried for up to NeighborUsers similar users; every similar
// user other than the requester is expanded into its watched items.
// When multiple similar users contribute the same item, the highest
// similarity wins (neighbors arrive in descending score order, so the
// first contribution is kept). Candidates without a rarity entry are
// dropped. Final score is similarity times IDF; ties rank the lower
// internal item index first. Ranks are 1-based and contiguous per user.
//
// A user present in the input but absent from training fails the whole
// call with a UserNotFoundError; a trained user with no usable
// neighbors simply contributes no tuples.
func (e *Engine) Predict(userIDs []int64, topK int) ([]Recommendation, error) {
	st := e.snapshot()
	if st == nil {
		return nil, ErrNotFitted
	}
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}

	var out []Recommendation
	seen := make(map[int64]struct{}, len(userIDs))
	for _, uid := range userIDs {
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}

		recs, err := e.predictOne(st, uid, topK)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

// candidate is one scored item surviving deduplication.
type candidate struct {
	item    int64
	itemIdx int
	score   float64
}

// predictOne runs the batch scoring pipeline for a single user.
func (e *Engine) predictOne(st *fitted, userID int64, topK int) ([]Recommendation, error) {
	uidx, ok := st.users.Internal(userID)
	if !ok {
		return nil, &UserNotFoundError{UserID: userID}
	}

	neighbors := st.index.Similar(uidx, e.cfg.NeighborUsers)

	// Expansion with dedup-by-best-similarity. Neighbors are already in
	// descending score order, so keeping the first occurrence of each
	// item implements "highest similarity wins" with a stable tie-break.
	var cands []candidate
	taken := make(map[int64]struct{})
	for _, nb := range neighbors {
		if nb.User == uidx {
			continue
		}
		simID, ok := st.users.External(nb.User)
		if !ok {
			continue
		}
		items, ok := st.watched.Items(simID)
		if !ok {
			continue
		}
		for _, item := range items {
			if _, dup := taken[item]; dup {
				continue
			}
			taken[item] = struct{}{}

			// Items without a rarity entry cannot be ranked and are
			// silently dropped.
			idf, ok := st.rarity.IDF(item)
			if !ok {
				continue
			}
			itemIdx, ok := st.items.Internal(item)
			if !ok {
				continue
			}
			cands = append(cands, candidate{item: item, itemIdx: itemIdx, score: nb.Score * idf})
		}
	}

	// Score descending; equal scores rank the lower internal item index
	// first (pinned deterministic tie-break).
	sort.SliceStable(cands, func(a, b int) bool {
		if cands[a].score != cands[b].score {
			return cands[a].score > cands[b].score
		}
		return cands[a].itemIdx < cands[b].itemIdx
	})

	if len(cands) > topK {
		cands = cands[:topK]
	}

	recs := make([]Recommendation, len(cands))
	for i, c := range cands {
		recs[i] = Recommendation{
			UserID: userID,
			ItemID: c.item,
			Score:  c.score,
			Rank:   i + 1,
		}
	}
	return recs, nil
}

// PredictSingle returns up to topK item ids for one user using the
// simplified lookup path: the neighbors' watched items are flattened
// and deduplicated with no similarity or rarity weighting and no
// ranking. Items absent from the item mapper are silently dropped. The
// user's own watched items are not excluded. Deduplication preserves
// first-appearance order so repeated calls return identical output.
//
// This path is intentionally asymmetric with Predict; do not unify.
func (e *Engine) PredictSingle(userID int64, topK int) ([]int64, error) {
	st := e.snapshot()
	if st == nil {
		return nil, ErrNotFitted
	}
	if topK <= 0 {
		topK = e.cfg.DefaultTopK
	}

	uidx, ok := st.users.Internal(userID)
	if !ok {
		return nil, &UserNotFoundError{UserID: userID}
	}

	neighbors := st.index.Similar(uidx, e.cfg.NeighborUsers)

	out := make([]int64, 0, topK)
	seen := make(map[int64]struct{})
	for _, nb := range neighbors {
		simID, ok := st.users.External(nb.User)
		if !ok || simID == userID {
			continue
		}
		items, ok := st.watched.Items(simID)
		if !ok {
			continue
		}
		for _, item := range items {
			if _, dup := seen[item]; dup {
				continue
			}
			if _, mapped := st.items.Internal(item); !mapped {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}

	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
