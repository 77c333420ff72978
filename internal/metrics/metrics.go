// Reclens - User-Based Collaborative Filtering Recommendation Service
// Copyright 2026 Reclens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reclens/reclens

// Package metrics exposes Prometheus instrumentation for the
// recommendation service: API latency and throughput, prediction
// outcomes per model, and training runs.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"model", "outcome"}, // outcome: "ok", "user_not_found", "model_not_ready", "error"
	)

	RecoDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reco_duration_seconds",
			Help:    "Recommendation computation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model"},
	)

	RecoItemsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reco_items_returned",
			Help:    "Number of items returned per recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"model"},
	)

	// Training Metrics
	TrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "train_duration_seconds",
			Help:    "Model training duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		},
	)

	TrainRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "train_runs_total",
			Help: "Total number of training runs",
		},
		[]string{"outcome"}, // "ok", "error"
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_users",
			Help: "Number of users in the fitted model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_items",
			Help: "Number of items in the fitted model",
		},
	)

	ModelInteractions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_interactions",
			Help: "Number of interaction records in the fitted model",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_version",
			Help: "Version counter of the currently served model",
		},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordReco records a recommendation request outcome.
func RecordReco(model, outcome string, items int, duration time.Duration) {
	RecoRequestsTotal.WithLabelValues(model, outcome).Inc()
	if outcome == "ok" {
		RecoDuration.WithLabelValues(model).Observe(duration.Seconds())
		RecoItemsReturned.WithLabelValues(model).Observe(float64(items))
	}
}

// RecordTraining records a training run and, on success, the fitted
// model's dimensions.
func RecordTraining(users, items, interactions, version int, duration time.Duration, err error) {
	if err != nil {
		TrainRunsTotal.WithLabelValues("error").Inc()
		return
	}
	TrainRunsTotal.WithLabelValues("ok").Inc()
	TrainDuration.Observe(duration.Seconds())
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
	ModelInteractions.Set(float64(interactions))
	ModelVersion.Set(float64(version))
}
