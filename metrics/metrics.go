// Package metrics exposes jukebox counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TracksStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jukebox_tracks_started_total",
		Help: "Player processes spawned.",
	})

	AutoAdvances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jukebox_auto_advances_total",
		Help: "Tracks started because the previous one finished naturally.",
	})

	PlaybackFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jukebox_playback_failures_total",
		Help: "Player processes that could not start or exited with an error.",
	})

	VolumeChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jukebox_volume_changes_total",
		Help: "Successful mixer invocations.",
	})

	CatalogTracks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "jukebox_catalog_tracks",
		Help: "Tracks in the catalog.",
	})
)
