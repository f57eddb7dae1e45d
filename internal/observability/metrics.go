// Package observability exposes board-wide watermark metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	catalogRenderedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activityboard",
		Subsystem: "view",
		Name:      "last_catalog_rendered_timestamp_seconds",
		Help:      "Unix timestamp of the most recent catalog rendered into the board.",
	})
	catalogSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "activityboard",
		Subsystem: "view",
		Name:      "rendered_activities",
		Help:      "Number of activities in the most recently rendered catalog.",
	})
)

func init() {
	prometheus.MustRegister(catalogRenderedGauge, catalogSizeGauge)
}

// RecordCatalogRendered updates the render watermark and catalog size.
func RecordCatalogRendered(ts time.Time, activities int) {
	catalogSizeGauge.Set(float64(activities))
	if ts.IsZero() {
		return
	}
	catalogRenderedGauge.Set(float64(ts.Unix()))
}
