// SPDX-License-Identifier: MPL-2.0

// Package metrics holds the prometheus collectors of the artifact cache and
// the part loader. Collectors are registered on a private Registry so that
// embedding programs decide whether and where to expose them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// ResultHit is a lookup answered from the cache.
	ResultHit = "hit"
	// ResultLocal is a lookup answered from the local repository.
	ResultLocal = "local"
	// ResultMiss is a lookup that required a download.
	ResultMiss = "miss"
	// ResultBuilt is a part constructed by the loader.
	ResultBuilt = "built"
	// ResultError is a failed operation.
	ResultError = "error"

	// OutcomeOK is a successful download.
	OutcomeOK = "ok"
	// OutcomeNotFound is a download the host could not serve.
	OutcomeNotFound = "not_found"
	// OutcomeError is a failed download.
	OutcomeError = "error"
)

var (
	// Registry holds every depot collector.
	Registry = prometheus.NewRegistry()

	// CacheLookups counts artifact resolutions by result.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depot_cache_lookups_total",
			Help: "Number of artifact resolutions by result.",
		},
		[]string{"result"},
	)

	// Downloads counts download attempts by host and outcome.
	Downloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depot_downloads_total",
			Help: "Number of artifact download attempts by host and outcome.",
		},
		[]string{"host", "outcome"},
	)

	// DownloadDuration observes successful download durations by host.
	DownloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "depot_download_duration_seconds",
			Help:    "Time taken to download an artifact.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"host"},
	)

	// PartLoads counts part loads by result.
	PartLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "depot_part_loads_total",
			Help: "Number of part load requests by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		CacheLookups,
		Downloads,
		DownloadDuration,
		PartLoads,
	)
}

// Handler serves the registry in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
