package metrics

import (
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// labelNames are the only labels interaction metrics carry
var labelNames = []string{"command", "subcommand", "error_code"}

// Collector records interaction metrics into a Prometheus registry.
// Metric families are created lazily on first use.
type Collector struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// IncrementCounter adds one to the named counter
func (c *Collector) IncrementCounter(name string, labels map[string]string) {
	c.mu.Lock()
	vec, ok := c.counters[name]
	if !ok {
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: name,
			Help: "Discord interactions counter " + name,
		}, labelNames)
		if err := c.registry.Register(vec); err != nil {
			c.mu.Unlock()
			log.Printf("[Metrics] Failed to register counter %s: %v", name, err)
			return
		}
		c.counters[name] = vec
	}
	c.mu.Unlock()

	vec.With(normalize(labels)).Inc()
}

// ObserveHistogram records value in the named histogram
func (c *Collector) ObserveHistogram(name string, value float64, labels map[string]string) {
	c.mu.Lock()
	vec, ok := c.histograms[name]
	if !ok {
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    "Discord interactions histogram " + name,
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, labelNames)
		if err := c.registry.Register(vec); err != nil {
			c.mu.Unlock()
			log.Printf("[Metrics] Failed to register histogram %s: %v", name, err)
			return
		}
		c.histograms[name] = vec
	}
	c.mu.Unlock()

	vec.With(normalize(labels)).Observe(value)
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// normalize fills every known label and drops unknown ones
func normalize(labels map[string]string) prometheus.Labels {
	out := make(prometheus.Labels, len(labelNames))
	for _, name := range labelNames {
		out[name] = labels[name]
	}
	return out
}
