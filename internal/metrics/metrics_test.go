// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/reco/{model}/{user}", "200"))
	RecordAPIRequest("GET", "/reco/{model}/{user}", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/reco/{model}/{user}", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordReco(t *testing.T) {
	before := testutil.ToFloat64(RecoRequestsTotal.WithLabelValues("userknn", "ok"))
	RecordReco("userknn", "ok", 10, 5*time.Millisecond)
	after := testutil.ToFloat64(RecoRequestsTotal.WithLabelValues("userknn", "ok"))
	assert.Equal(t, before+1, after)

	// Failed outcomes count but do not observe durations.
	beforeErr := testutil.ToFloat64(RecoRequestsTotal.WithLabelValues("userknn", "user_not_found"))
	RecordReco("userknn", "user_not_found", 0, time.Millisecond)
	afterErr := testutil.ToFloat64(RecoRequestsTotal.WithLabelValues("userknn", "user_not_found"))
	assert.Equal(t, beforeErr+1, afterErr)
}

func TestRecordTraining(t *testing.T) {
	RecordTraining(100, 50, 2000, 3, time.Second, nil)
	assert.Equal(t, float64(100), testutil.ToFloat64(ModelUsers))
	assert.Equal(t, float64(50), testutil.ToFloat64(ModelItems))
	assert.Equal(t, float64(2000), testutil.ToFloat64(ModelInteractions))
	assert.Equal(t, float64(3), testutil.ToFloat64(ModelVersion))

	beforeErr := testutil.ToFloat64(TrainRunsTotal.WithLabelValues("error"))
	RecordTraining(0, 0, 0, 0, 0, errors.New("bad dataset"))
	afterErr := testutil.ToFloat64(TrainRunsTotal.WithLabelValues("error"))
	assert.Equal(t, beforeErr+1, afterErr)

	// A failed run must not clobber the gauges.
	assert.Equal(t, float64(100), testutil.ToFloat64(ModelUsers))
}
