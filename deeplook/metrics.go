package deeplook

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the latest dashboard as Prometheus gauges, typically written to
// a node_exporter textfile directory after each load.
type Metrics struct {
	registry *prometheus.Registry

	projects  prometheus.Gauge
	items     prometheus.Gauge
	goodRate  prometheus.Gauge
	status    *prometheus.GaugeVec
	project   *prometheus.GaugeVec
	weakness  *prometheus.GaugeVec
	unmatched prometheus.Gauge
}

// NewMetrics registers the DeepLook gauges on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		projects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "deeplook",
			Name:      "projects",
			Help:      "Number of result sources in the current batch.",
		}),
		items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "deeplook",
			Name:      "items",
			Help:      "Number of audit items across all projects.",
		}),
		goodRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "deeplook",
			Name:      "good_rate_percent",
			Help:      "Rounded share of adequate items.",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deeplook",
			Name:      "status_items",
			Help:      "Audit items per result status across all projects.",
		}, []string{"status"}),
		project: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deeplook",
			Name:      "project_status_items",
			Help:      "Audit items per project and result status.",
		}, []string{"project", "status"}),
		weakness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deeplook",
			Name:      "weakness_deficient_items",
			Help:      "Deficient occurrences of the top ranked item codes.",
		}, []string{"code", "rank"}),
		unmatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "deeplook",
			Name:      "unmatched_items",
			Help:      "Audit items whose code has no guidance entry.",
		}),
	}
	m.registry.MustRegister(m.projects, m.items, m.goodRate, m.status, m.project, m.weakness, m.unmatched)
	return m
}

// Registry returns the registry holding the gauges.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe replaces every gauge value with the state of projects.
func (m *Metrics) Observe(projects []*Project, d Dashboard) {
	m.projects.Set(float64(d.ProjectCount))
	m.items.Set(float64(d.ItemCount))
	m.goodRate.Set(float64(d.GoodRate))

	m.status.Reset()
	for _, c := range d.Distribution.Counts {
		m.status.WithLabelValues(labelValue(string(c.Status))).Set(float64(c.Count))
	}
	m.project.Reset()
	for _, p := range d.Projects {
		for _, c := range p.Distribution.Counts {
			m.project.WithLabelValues(labelValue(p.Label), labelValue(string(c.Status))).Set(float64(c.Count))
		}
	}
	m.weakness.Reset()
	for i, w := range d.Weaknesses {
		m.weakness.WithLabelValues(labelValue(w.Code), fmt.Sprint(i+1)).Set(float64(w.Count))
	}
	unmatched := 0
	for _, p := range projects {
		unmatched += countUnmatched(p)
	}
	m.unmatched.Set(float64(unmatched))
}

// labelValue replaces invalid UTF-8, which the client rejects as a label value.
func labelValue(v string) string {
	return strings.ToValidUTF8(v, "\uFFFD")
}

// WriteTextfile writes the gauges in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
