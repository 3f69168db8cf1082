package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"fmpmcp/internal/config"
)

// Provider owns the meter provider and, for the prometheus exporter, the
// scrape handler.
type Provider struct {
	mp       *sdkmetric.MeterProvider
	handler  http.Handler
	recorder *Recorder
}

// NewProvider builds a provider for the named exporter: prometheus, stdout or
// none. stdout writes to w, or os.Stdout when w is nil.
func NewProvider(exporter string, w io.Writer) (*Provider, error) {
	var reader sdkmetric.Reader
	var handler http.Handler

	switch exporter {
	case config.MetricsExporterPrometheus:
		reg := prometheus.NewRegistry()
		exp, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		reader = exp
		handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	case config.MetricsExporterStdout:
		if w == nil {
			w = os.Stdout
		}
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exp)

	case config.MetricsExporterNone, "":
		reader = sdkmetric.NewManualReader()

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", exporter)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := NewRecorder(mp.Meter("fmpmcp"))
	if err != nil {
		_ = mp.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to create instruments: %w", err)
	}

	return &Provider{mp: mp, handler: handler, recorder: rec}, nil
}

// Recorder returns the instruments bound to this provider.
func (p *Provider) Recorder() *Recorder {
	return p.recorder
}

// Handler returns the scrape handler, or nil when the exporter is not prometheus.
func (p *Provider) Handler() http.Handler {
	return p.handler
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
