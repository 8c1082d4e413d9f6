package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesAppended counts every message appended to the log, client
	// posts and server-generated status announcements alike.
	MessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatroom_messages_appended_total",
		Help: "Total messages appended to the log.",
	})

	// ParticipantsActive tracks the current size of the registry.
	ParticipantsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chatroom_participants_active",
		Help: "Participants currently present in the room.",
	})

	// ReaperSweeps counts completed presence sweeps.
	ReaperSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatroom_reaper_sweeps_total",
		Help: "Presence sweeps completed by the reaper.",
	})

	// ReaperEvictions counts participants evicted for staleness.
	ReaperEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatroom_reaper_evictions_total",
		Help: "Participants evicted after their heartbeat went stale.",
	})

	// RetentionPurged counts status messages removed by the retention job.
	RetentionPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chatroom_retention_purged_total",
		Help: "Status messages purged by the retention job.",
	})
)
