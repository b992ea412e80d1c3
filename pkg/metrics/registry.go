// Package metrics provides Prometheus instrumentation for the upload
// server.
//
// The package holds a process-global registry that is created by
// InitRegistry. Collectors are only constructed when the registry
// exists; otherwise the constructors return nil and the instrumented
// call sites degrade to no-ops. This keeps the metrics surface optional
// with zero overhead when disabled:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	handler := tus.NewHandler(store, pipeline, cfg, metrics.NewUploadMetrics())
//
//	// Without metrics (zero overhead)
//	handler := tus.NewHandler(store, pipeline, cfg, nil)
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	mu       sync.Mutex
	registry *prometheus.Registry
)

// InitRegistry creates the process-global metrics registry and seeds it
// with the standard Go runtime and process collectors. Calling it more
// than once is safe; subsequent calls return the existing registry.
func InitRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return registry
}

// GetRegistry returns the global registry, or nil if InitRegistry has
// not been called.
func GetRegistry() *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// Handler returns the Prometheus exposition handler for the global
// registry, or nil if metrics are disabled.
func Handler() http.Handler {
	reg := GetRegistry()
	if reg == nil {
		return nil
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
