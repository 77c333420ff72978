// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclens/reclens/internal/userknn"
)

// stubEngine scripts engine responses per user id.
type stubEngine struct {
	single  map[int64][]int64
	batch   []userknn.Recommendation
	err     error
	status  userknn.Status
	lastK   int
	lastIDs []int64
}

func (s *stubEngine) Predict(userIDs []int64, topK int) ([]userknn.Recommendation, error) {
	s.lastIDs, s.lastK = userIDs, topK
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func (s *stubEngine) PredictSingle(userID int64, topK int) ([]int64, error) {
	s.lastK = topK
	if s.err != nil {
		return nil, s.err
	}
	if items, ok := s.single[userID]; ok {
		return items, nil
	}
	return nil, &userknn.UserNotFoundError{UserID: userID}
}

func (s *stubEngine) Status() userknn.Status { return s.status }

// stubTop is a scripted popularity model.
type stubTop struct {
	items  []int64
	fitted bool
	lastK  int
}

func (s *stubTop) Top(k int) []int64 {
	s.lastK = k
	if !s.fitted {
		return nil
	}
	if k > len(s.items) {
		k = len(s.items)
	}
	return s.items[:k]
}

func (s *stubTop) IsFitted() bool { return s.fitted }

func newTestServer(engine *stubEngine, top *stubTop) http.Handler {
	h := NewHandler(engine, top, HandlerConfig{DefaultK: 10, MaxUserID: 1_000_000_000}, zerolog.Nop())
	return NewRouter(h, NewMiddleware(nil)).Setup()
}

func defaultStubs() (*stubEngine, *stubTop) {
	engine := &stubEngine{
		single: map[int64][]int64{1: {20, 10, 30}},
		batch: []userknn.Recommendation{
			{UserID: 1, ItemID: 20, Score: 0.9, Rank: 1},
			{UserID: 1, ItemID: 10, Score: 0.5, Rank: 2},
		},
		status: userknn.Status{Fitted: true, Users: 3, Items: 3, Interactions: 5, ModelVersion: 1},
	}
	top := &stubTop{items: []int64{10, 20, 30}, fitted: true}
	return engine, top
}

func doRequest(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I am alive", rec.Body.String())
}

func TestRecoUserKNN(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/reco/userknn/1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RecoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.UserID)
	assert.Equal(t, []int64{20, 10, 30}, resp.Items)
}

func TestRecoTop(t *testing.T) {
	engine, top := defaultStubs()
	srv := newTestServer(engine, top)
	rec := doRequest(t, srv, http.MethodGet, "/reco/top/42", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RecoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.UserID)
	assert.Equal(t, []int64{10, 20, 30}, resp.Items)
	// Default k reaches the model.
	assert.Equal(t, 10, top.lastK)
}

func TestRecoKParameter(t *testing.T) {
	engine, top := defaultStubs()
	srv := newTestServer(engine, top)

	rec := doRequest(t, srv, http.MethodGet, "/reco/top/1?k=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, top.lastK)

	rec = doRequest(t, srv, http.MethodGet, "/reco/userknn/1?k=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, engine.lastK)
}

func TestRecoInvalidK(t *testing.T) {
	srv := newTestServer(defaultStubs())

	for _, k := range []string{"abc", "0", "-5"} {
		rec := doRequest(t, srv, http.MethodGet, "/reco/top/1?k="+k, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "k=%s", k)
	}
}

func TestRecoInvalidUserID(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/reco/userknn/notanumber", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, ErrCodeInvalidUserID, resp.Error.Code)
}

func TestRecoUserIDAboveBound(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/reco/userknn/1000000001", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, ErrCodeUserNotFound, resp.Error.Code)
}

func TestRecoUnknownModel(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/reco/mystery/1", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, ErrCodeModelNotFound, resp.Error.Code)
}

func TestRecoUnknownUser(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/reco/userknn/999", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, ErrCodeUserNotFound, resp.Error.Code)
}

func TestRecoModelNotReady(t *testing.T) {
	engine, top := defaultStubs()
	engine.err = userknn.ErrNotFitted
	top.fitted = false
	srv := newTestServer(engine, top)

	for _, model := range []string{"userknn", "top"} {
		rec := doRequest(t, srv, http.MethodGet, "/reco/"+model+"/1", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, "model %s", model)
		resp := decodeError(t, rec)
		assert.Equal(t, ErrCodeModelNotReady, resp.Error.Code)
	}
}

func TestRecoEmptyItemsIsArray(t *testing.T) {
	engine, top := defaultStubs()
	engine.single[7] = nil
	srv := newTestServer(engine, top)

	rec := doRequest(t, srv, http.MethodGet, "/reco/userknn/7", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items":[]`)
}

func TestBatchReco(t *testing.T) {
	engine, top := defaultStubs()
	srv := newTestServer(engine, top)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/reco/batch", `{"user_ids":[1,2],"k":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []int64{1, 2}, engine.lastIDs)
	assert.Equal(t, 5, engine.lastK)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	recs, ok := data["recommendations"].([]interface{})
	require.True(t, ok)
	assert.Len(t, recs, 2)
}

func TestBatchRecoDefaultsK(t *testing.T) {
	engine, top := defaultStubs()
	srv := newTestServer(engine, top)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/reco/batch", `{"user_ids":[1]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, engine.lastK)
}

func TestBatchRecoValidation(t *testing.T) {
	srv := newTestServer(defaultStubs())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"empty user ids", `{"user_ids":[]}`, http.StatusBadRequest},
		{"negative k", `{"user_ids":[1],"k":-1}`, http.StatusBadRequest},
		{"user above bound", `{"user_ids":[1000000001]}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/api/v1/reco/batch", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestBatchRecoNotFitted(t *testing.T) {
	engine, top := defaultStubs()
	engine.err = userknn.ErrNotFitted
	srv := newTestServer(engine, top)

	rec := doRequest(t, srv, http.MethodPost, "/api/v1/reco/batch", `{"user_ids":[1]}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, ErrCodeModelNotReady, resp.Error.Code)
}

func TestStatus(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool           `json:"success"`
		Data    StatusResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Engine.Fitted)
	assert.Equal(t, 3, resp.Data.Engine.Users)
	require.Len(t, resp.Data.Models, 2)
	assert.Equal(t, "userknn", resp.Data.Models[0].Name)
	assert.Equal(t, "top", resp.Data.Models[1].Name)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(defaultStubs())
	rec := doRequest(t, srv, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_requests_total")
}
