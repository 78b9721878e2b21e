// Mixtape - Playlist Continuation Model Training
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mixtape

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mixtape"

// Label values.
const (
	LabelPositive   = "positive"
	LabelNegative   = "negative"
	SplitTrain      = "train"
	SplitValidation = "validation"
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

var (
	// Dataset Metrics
	RecordsFlattened = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_flattened_total",
			Help:      "Total number of interaction records produced by the flattener",
		},
	)

	RecordsMalformed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_malformed_total",
			Help:      "Total number of track entries skipped as malformed",
		},
	)

	TracksIndexed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracks_indexed",
			Help:      "Number of distinct track URIs in the current index",
		},
	)

	MatrixPlaylists = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_playlists",
			Help:      "Row count of the current interaction matrix",
		},
	)

	MatrixNonzeros = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "matrix_nonzeros",
			Help:      "Stored cells in the current interaction matrix",
		},
	)

	// Sampling Metrics
	InstancesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_generated_total",
			Help:      "Total number of training instances generated",
		},
		[]string{"label"}, // "positive", "negative"
	)

	SamplingExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sampling_exhausted_total",
			Help:      "Negative slots skipped after the retry cap",
		},
	)

	GenerateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Time to generate one epoch of training instances",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms to ~164s
		},
	)

	// Training Metrics
	EpochDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "epoch_duration_seconds",
			Help:      "Time to train one epoch",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8), // 100ms to ~27m
		},
	)

	TrainingLoss = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "training_loss",
			Help:      "Binary cross-entropy of the last epoch",
		},
		[]string{"split"}, // "train", "validation"
	)

	TrainingAccuracy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "training_accuracy",
			Help:      "Accuracy at threshold 0.5 of the last epoch",
		},
		[]string{"split"},
	)

	TrainingEpochs = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_epochs_total",
			Help:      "Total number of completed training epochs",
		},
	)

	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_runs_total",
			Help:      "Total number of finished training runs",
		},
		[]string{"status"}, // "success", "failed", "cancelled"
	)

	// Recommendation Metrics
	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommend_duration_seconds",
			Help:      "Time to score and rank one playlist",
			Buckets:   prometheus.DefBuckets,
		},
	)

	RecommendSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommend_skipped_total",
			Help:      "Challenge playlists skipped for having no training row",
		},
	)

	// Storage Metrics
	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Duration of artifact store operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Total number of failed artifact store operations",
		},
		[]string{"operation"},
	)
)

// RecordFlatten records one flattening pass.
func RecordFlatten(records, malformed int) {
	RecordsFlattened.Add(float64(records))
	RecordsMalformed.Add(float64(malformed))
}

// SetDatasetShape publishes the index and matrix sizes.
func SetDatasetShape(tracks, playlists, nonzeros int) {
	TracksIndexed.Set(float64(tracks))
	MatrixPlaylists.Set(float64(playlists))
	MatrixNonzeros.Set(float64(nonzeros))
}

// RecordGeneration records one generated epoch.
func RecordGeneration(positives, negatives, exhausted int, duration time.Duration) {
	InstancesGenerated.WithLabelValues(LabelPositive).Add(float64(positives))
	InstancesGenerated.WithLabelValues(LabelNegative).Add(float64(negatives))
	SamplingExhausted.Add(float64(exhausted))
	GenerateDuration.Observe(duration.Seconds())
}

// RecordEpoch records one training epoch. Validation values are only
// published when the epoch held instances out.
func RecordEpoch(loss, accuracy, valLoss, valAccuracy float64, valInstances int, duration time.Duration) {
	TrainingEpochs.Inc()
	EpochDuration.Observe(duration.Seconds())
	TrainingLoss.WithLabelValues(SplitTrain).Set(loss)
	TrainingAccuracy.WithLabelValues(SplitTrain).Set(accuracy)
	if valInstances > 0 {
		TrainingLoss.WithLabelValues(SplitValidation).Set(valLoss)
		TrainingAccuracy.WithLabelValues(SplitValidation).Set(valAccuracy)
	}
}

// RecordTrainingRun records a finished run by status.
func RecordTrainingRun(status string) {
	TrainingRuns.WithLabelValues(status).Inc()
}

// RecordRecommendation records the ranking time of one playlist.
func RecordRecommendation(duration time.Duration) {
	RecommendDuration.Observe(duration.Seconds())
}

// RecordRecommendSkipped counts challenge playlists that could not be ranked.
func RecordRecommendSkipped(n int) {
	RecommendSkipped.Add(float64(n))
}

// RecordStorageOperation records an artifact store operation.
func RecordStorageOperation(operation string, duration time.Duration, err error) {
	StorageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StorageErrors.WithLabelValues(operation).Inc()
	}
}
