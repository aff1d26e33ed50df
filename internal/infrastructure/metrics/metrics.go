package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Assistant-API Metrics
var (
	// Conversation turn counters
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zooworld",
			Subsystem: "assistant_api",
			Name:      "turns_total",
			Help:      "Total conversation turn requests",
		},
		[]string{"status"},
	)

	// Reply generator latency
	ReplyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "zooworld",
			Subsystem: "assistant_api",
			Name:      "reply_duration_seconds",
			Help:      "Reply generator call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// Prompt compilation counters
	PromptCompilations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zooworld",
			Subsystem: "assistant_api",
			Name:      "prompt_compilations_total",
			Help:      "Prompt compiler invocations",
		},
		[]string{"result"},
	)

	// Prompt cache lookups
	PromptCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zooworld",
			Subsystem: "assistant_api",
			Name:      "prompt_cache_lookups_total",
			Help:      "Compiled prompt cache lookups",
		},
		[]string{"outcome"},
	)

	// Sandbox lifecycle transitions
	SandboxTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zooworld",
			Subsystem: "assistant_api",
			Name:      "sandbox_transitions_total",
			Help:      "Sandbox lifecycle transitions by target state",
		},
		[]string{"to"},
	)

	// History deletions
	HistoryDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zooworld",
			Subsystem: "assistant_api",
			Name:      "history_deletions_total",
			Help:      "Conversation history deletions by scope",
		},
		[]string{"scope"},
	)
)
