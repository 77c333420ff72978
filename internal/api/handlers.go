// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reclens/reclens/internal/metrics"
	"github.com/reclens/reclens/internal/userknn"
)

// Engine is the personalized recommendation model consumed by the
// handlers. *userknn.Engine satisfies it.
type Engine interface {
	Predict(userIDs []int64, topK int) ([]userknn.Recommendation, error)
	PredictSingle(userID int64, topK int) ([]int64, error)
	Status() userknn.Status
}

// PopularityModel is the frequency-ranked fallback served as "top".
type PopularityModel interface {
	Top(k int) []int64
	IsFitted() bool
}

// HandlerConfig holds request handling settings.
type HandlerConfig struct {
	// DefaultK is the recommendation count when ?k= is absent.
	DefaultK int

	// MaxUserID is the exclusive upper bound on accepted user ids.
	MaxUserID int64
}

// Handler implements the HTTP handlers of the service.
type Handler struct {
	engine Engine
	top    PopularityModel
	cfg    HandlerConfig
	logger zerolog.Logger
}

// NewHandler creates a handler serving the given models.
func NewHandler(engine Engine, top PopularityModel, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		top:    top,
		cfg:    cfg,
		logger: logger,
	}
}

// RecoResponse is the bare payload of GET /reco/{model}/{user}.
type RecoResponse struct {
	UserID int64   `json:"user_id"`
	Items  []int64 `json:"items"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("I am alive"))
}

// Reco handles GET /reco/{model}/{user}. The optional ?k= query
// parameter overrides the configured recommendation count.
func (h *Handler) Reco(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	model := chi.URLParam(r, "model")

	userID, err := strconv.ParseInt(chi.URLParam(r, "user"), 10, 64)
	if err != nil {
		NewResponseWriter(w, r).Error(http.StatusBadRequest, ErrCodeInvalidUserID, "user id must be an integer")
		return
	}

	k := h.cfg.DefaultK
	if raw := r.URL.Query().Get("k"); raw != "" {
		k, err = strconv.Atoi(raw)
		if err != nil || k < 1 {
			NewResponseWriter(w, r).BadRequest("k must be a positive integer")
			return
		}
	}

	h.logger.Info().Str("model", model).Int64("user_id", userID).Int("k", k).Msg("Recommendation request")

	// Ids beyond the accepted range are treated as unknown users.
	if userID > h.cfg.MaxUserID {
		metrics.RecordReco(model, "user_not_found", 0, time.Since(start))
		NewResponseWriter(w, r).Error(http.StatusNotFound, ErrCodeUserNotFound,
			"user "+strconv.FormatInt(userID, 10)+" not found")
		return
	}

	var items []int64
	switch model {
	case "top":
		if !h.top.IsFitted() {
			metrics.RecordReco(model, "model_not_ready", 0, time.Since(start))
			NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeModelNotReady, "model top is not trained yet")
			return
		}
		items = h.top.Top(k)

	case "userknn":
		items, err = h.engine.PredictSingle(userID, k)
		if err != nil {
			h.writeEngineError(w, r, model, userID, err, start)
			return
		}

	default:
		metrics.RecordReco(model, "model_not_found", 0, time.Since(start))
		NewResponseWriter(w, r).Error(http.StatusNotFound, ErrCodeModelNotFound, "model "+model+" not found")
		return
	}

	if items == nil {
		items = []int64{}
	}
	metrics.RecordReco(model, "ok", len(items), time.Since(start))
	writeJSON(w, http.StatusOK, RecoResponse{UserID: userID, Items: items})
}

// BatchRecoRequest is the payload of POST /api/v1/reco/batch.
type BatchRecoRequest struct {
	UserIDs []int64 `json:"user_ids"`
	K       int     `json:"k,omitempty"`
}

// BatchReco handles POST /api/v1/reco/batch: ranked recommendations
// for several users in one call.
func (h *Handler) BatchReco(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rw := NewResponseWriter(w, r)

	var req BatchRecoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body: " + err.Error())
		return
	}
	if len(req.UserIDs) == 0 {
		rw.BadRequest("user_ids must not be empty")
		return
	}
	k := req.K
	if k == 0 {
		k = h.cfg.DefaultK
	}
	if k < 1 {
		rw.BadRequest("k must be a positive integer")
		return
	}
	for _, userID := range req.UserIDs {
		if userID > h.cfg.MaxUserID {
			metrics.RecordReco("userknn", "user_not_found", 0, time.Since(start))
			rw.Error(http.StatusNotFound, ErrCodeUserNotFound,
				"user "+strconv.FormatInt(userID, 10)+" not found")
			return
		}
	}

	recs, err := h.engine.Predict(req.UserIDs, k)
	if err != nil {
		h.writeEngineError(w, r, "userknn", 0, err, start)
		return
	}
	if recs == nil {
		recs = []userknn.Recommendation{}
	}

	metrics.RecordReco("userknn", "ok", len(recs), time.Since(start))
	rw.Success(map[string]interface{}{
		"recommendations": recs,
	})
}

// ModelStatus describes the readiness of one served model.
type ModelStatus struct {
	Name   string `json:"name"`
	Fitted bool   `json:"fitted"`
}

// StatusResponse is the payload of GET /api/v1/status.
type StatusResponse struct {
	Engine userknn.Status `json:"engine"`
	Models []ModelStatus  `json:"models"`
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.engine.Status()
	NewResponseWriter(w, r).Success(StatusResponse{
		Engine: status,
		Models: []ModelStatus{
			{Name: "userknn", Fitted: status.Fitted},
			{Name: "top", Fitted: h.top.IsFitted()},
		},
	})
}

// writeEngineError maps engine errors to HTTP responses.
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, model string, userID int64, err error, start time.Time) {
	rw := NewResponseWriter(w, r)

	var notFound *userknn.UserNotFoundError
	switch {
	case errors.Is(err, userknn.ErrNotFitted):
		metrics.RecordReco(model, "model_not_ready", 0, time.Since(start))
		rw.Error(http.StatusServiceUnavailable, ErrCodeModelNotReady, "model "+model+" is not trained yet")

	case errors.As(err, &notFound):
		metrics.RecordReco(model, "user_not_found", 0, time.Since(start))
		rw.Error(http.StatusNotFound, ErrCodeUserNotFound,
			"user "+strconv.FormatInt(notFound.UserID, 10)+" not found")

	default:
		h.logger.Error().Err(err).Str("model", model).Int64("user_id", userID).Msg("Recommendation failed")
		metrics.RecordReco(model, "error", 0, time.Since(start))
		rw.InternalError("recommendation failed")
	}
}
