// Package promexport exposes engine counters as Prometheus metrics.
//
// The Exporter is a prometheus.Collector over Engine.Stats(): the engine
// keeps its own lock-free counters and the exporter translates a snapshot
// on every scrape, so the engine core stays free of registry plumbing.
//
//	exp := promexport.New(eng)
//	prometheus.MustRegister(exp)
package promexport

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bernotieno/mini-framework/pkg/state"
)

// Config configures the exporter.
type Config struct {
	// Namespace is the metrics namespace (default: "minifw").
	Namespace string

	// Subsystem is the metrics subsystem (default: "state").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// Option configures the exporter.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "minifw",
		Subsystem: "state",
	}
}

// Exporter implements prometheus.Collector for one engine.
type Exporter struct {
	eng *state.Engine

	sets          *prometheus.Desc
	merges        *prometheus.Desc
	notifications *prometheus.Desc
	deferred      *prometheus.Desc
	storms        *prometheus.Desc
	panics        *prometheus.Desc
	evictions     *prometheus.Desc
	rejections    *prometheus.Desc
	subscribers   *prometheus.Desc
	computed      *prometheus.Desc
}

// New creates an exporter for eng. Register it with a prometheus.Registerer
// to start serving metrics.
func New(eng *state.Engine, opts ...Option) *Exporter {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(cfg.Namespace, cfg.Subsystem, name),
			help, nil, cfg.ConstLabels,
		)
	}

	return &Exporter{
		eng:           eng,
		sets:          desc("sets_total", "Path-scoped mutations applied."),
		merges:        desc("merges_total", "Root merges applied."),
		notifications: desc("notifications_delivered_total", "Subscriber callbacks completed."),
		deferred:      desc("deferred_notifications_total", "Notifications deferred onto an active burst."),
		storms:        desc("storms_tripped_total", "Bursts aborted by the per-cycle update budget."),
		panics:        desc("callback_panics_total", "Subscriber callbacks recovered from a panic."),
		evictions:     desc("subscribers_evicted_total", "Subscribers removed after a defect-shaped panic."),
		rejections:    desc("input_rejections_total", "Public calls refused for invalid input."),
		subscribers:   desc("subscribers", "Live subscriptions in the registry."),
		computed:      desc("computed_entries", "Registered computed values."),
	}
}

// Describe implements prometheus.Collector.
func (x *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- x.sets
	ch <- x.merges
	ch <- x.notifications
	ch <- x.deferred
	ch <- x.storms
	ch <- x.panics
	ch <- x.evictions
	ch <- x.rejections
	ch <- x.subscribers
	ch <- x.computed
}

// Collect implements prometheus.Collector.
func (x *Exporter) Collect(ch chan<- prometheus.Metric) {
	stats := x.eng.Stats()

	counter := func(d *prometheus.Desc, v int64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}
	counter(x.sets, stats.Sets)
	counter(x.merges, stats.Merges)
	counter(x.notifications, stats.NotificationsDelivered)
	counter(x.deferred, stats.DeferredNotifications)
	counter(x.storms, stats.StormsTripped)
	counter(x.panics, stats.CallbackPanics)
	counter(x.evictions, stats.SubscribersEvicted)
	counter(x.rejections, stats.InputRejections)

	ch <- prometheus.MustNewConstMetric(x.subscribers, prometheus.GaugeValue, float64(stats.Subscribers))
	ch <- prometheus.MustNewConstMetric(x.computed, prometheus.GaugeValue, float64(stats.ComputedEntries))
}
