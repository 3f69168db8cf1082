// Package metrics records cache, toolset and module-load measurements through
// OpenTelemetry and exposes them with the configured exporter.
package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Eviction reasons.
const (
	EvictionTTL  = "ttl"
	EvictionSize = "size"
)

// Recorder holds the instruments used across the server. All methods are
// safe for concurrent use.
type Recorder struct {
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	cacheEvictions metric.Int64Counter
	constructions  metric.Int64Counter
	transitions    metric.Int64Counter
	loadDuration   metric.Float64Histogram
}

// NewRecorder creates the instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	cacheHits, err := meter.Int64Counter(
		"fmpmcp.cache.hits",
		metric.WithDescription("Requests served by an existing client server"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"fmpmcp.cache.misses",
		metric.WithDescription("Requests that required constructing a client server"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	cacheEvictions, err := meter.Int64Counter(
		"fmpmcp.cache.evictions",
		metric.WithDescription("Client servers removed from the cache"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	constructions, err := meter.Int64Counter(
		"fmpmcp.server.constructions",
		metric.WithDescription("Client server constructions by mode and outcome"),
		metric.WithUnit("{server}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"fmpmcp.toolset.transitions",
		metric.WithDescription("Toolset enable/disable calls by outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"fmpmcp.module.load.duration_ms",
		metric.WithDescription("Module construction time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Recorder{
		cacheHits:      cacheHits,
		cacheMisses:    cacheMisses,
		cacheEvictions: cacheEvictions,
		constructions:  constructions,
		transitions:    transitions,
		loadDuration:   loadDuration,
	}, nil
}

// NewNoopRecorder returns a Recorder whose instruments discard everything.
func NewNoopRecorder() *Recorder {
	r, err := NewRecorder(noop.NewMeterProvider().Meter("fmpmcp"))
	if err != nil {
		// The no-op meter never fails to create instruments.
		panic(err)
	}
	return r
}

func (r *Recorder) CacheHit(ctx context.Context) {
	r.cacheHits.Add(ctx, 1)
}

func (r *Recorder) CacheMiss(ctx context.Context) {
	r.cacheMisses.Add(ctx, 1)
}

func (r *Recorder) CacheEviction(ctx context.Context, reason string) {
	r.cacheEvictions.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (r *Recorder) ServerConstructed(ctx context.Context, mode string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.constructions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	))
}

// RecordToolsetTransition satisfies dynamic.TransitionRecorder.
func (r *Recorder) RecordToolsetTransition(ctx context.Context, op, outcome string) {
	r.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func (r *Recorder) ModuleLoaded(ctx context.Context, module string, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.loadDuration.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(
		attribute.String("module", module),
		attribute.String("outcome", outcome),
	))
}
