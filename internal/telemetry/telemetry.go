// Package telemetry records render metrics and traces.
//
// Metrics live in a private Prometheus registry and are exported once per
// run with WriteTextfile, in the text format read by node_exporter's
// textfile collector. Spans go to the global OpenTelemetry tracer
// provider, which is a no-op unless the embedding program installs one.
package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/contestgen/internal/errors"
	"github.com/vango-dev/contestgen/internal/placeholder"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "contestgen"

// Span names.
const (
	SpanGenerate = "scaffold.generate"
	SpanRender   = "template.render"
)

// Render error kinds.
const (
	KindUnresolved = "unresolved"
	KindMalformed  = "malformed"
	KindOther      = "other"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "contestgen").
	Namespace string

	// Buckets are the histogram buckets for render duration.
	Buckets []float64

	// Registry receives the collectors. Default: a fresh registry.
	Registry *prometheus.Registry

	// TracerName is the name of the tracer (default: "contestgen").
	TracerName string
}

// Option configures Telemetry.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithBuckets sets the render duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "contestgen",
		Buckets:    []float64{.0001, .0005, .001, .005, .01, .05, .1},
		TracerName: defaultTracerName,
	}
}

// Telemetry holds the collectors for one run.
type Telemetry struct {
	registry *prometheus.Registry
	tracer   trace.Tracer

	rendersTotal   *prometheus.CounterVec
	renderErrors   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	filesTotal     *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(opts ...Option) *Telemetry {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(config.Registry)
	return &Telemetry{
		registry: config.Registry,
		tracer:   otel.Tracer(config.TracerName),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "renders_total",
			Help:      "Total number of template renders",
		}, []string{"template", "status"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "render_errors_total",
			Help:      "Total number of failed renders by error kind",
		}, []string{"kind"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "render_duration_seconds",
			Help:      "Template render duration in seconds",
			Buckets:   config.Buckets,
		}, []string{"template"}),

		filesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "files_total",
			Help:      "Total number of output files by action",
		}, []string{"action"}),
	}
}

// Registry returns the registry holding the collectors.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// Observe runs fn inside a template.render span and records its outcome
// under the template label name.
func (t *Telemetry) Observe(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := t.StartSpan(ctx, SpanRender, attribute.String("contestgen.template", name))
	start := time.Now()

	err := fn(ctx)

	t.renderDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
		t.renderErrors.WithLabelValues(ErrorKind(err)).Inc()
	}
	t.rendersTotal.WithLabelValues(name, status).Inc()
	EndSpan(span, err)
	return err
}

// RecordFile counts an output file by action ("written", "skipped",
// "updated").
func (t *Telemetry) RecordFile(action string) {
	t.filesTotal.WithLabelValues(action).Inc()
}

// StartSpan starts a span on the telemetry tracer.
func (t *Telemetry) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span, sets its status and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var ce *errors.ContestgenError
		if errors.As(err, &ce) {
			span.SetAttributes(attribute.String("contestgen.error_code", ce.Code))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ErrorKind classifies a render error for the render_errors_total label.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, placeholder.ErrUnresolvedPlaceholder):
		return KindUnresolved
	case errors.Is(err, placeholder.ErrMalformedTemplate):
		return KindMalformed
	default:
		return KindOther
	}
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (t *Telemetry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, t.registry); err != nil {
		return errors.New("E146").WithDetail(path).Wrap(err)
	}
	return nil
}
