// Package rtmetrics wires the runtime's internal counters (mailbox depth,
// in-flight chunks, operator throughput, react timeouts) to the
// process-wide Prometheus registry via the metrics package.
package rtmetrics

import "github.com/czx-lab/flowrt/metrics"

const namespace = "flowrt"

var (
	// MailboxDepth tracks the number of envelopes currently queued behind
	// an actor, labeled by pid.
	MailboxDepth = metrics.NewGauge(&metrics.VectorOption{
		Namespace: namespace,
		Subsystem: "actor",
		Name:      "mailbox_depth",
		Help:      "Number of envelopes queued behind an actor's mailbox.",
		Labels:    []string{"pid"},
	})

	// ChunksInFlight tracks chunks currently submitted to the pool but not
	// yet returned, labeled by pid.
	ChunksInFlight = metrics.NewGauge(&metrics.VectorOption{
		Namespace: namespace,
		Subsystem: "actor",
		Name:      "chunks_in_flight",
		Help:      "Chunks submitted to the pool and not yet finished, per actor.",
		Labels:    []string{"pid"},
	})

	// ReactTimeouts counts react(timeout) chunks that fired because no
	// message arrived in time, labeled by pid.
	ReactTimeouts = metrics.NewCounter(&metrics.VectorOption{
		Namespace: namespace,
		Subsystem: "actor",
		Name:      "react_timeouts_total",
		Help:      "Count of react timeout chunks fired, per actor.",
		Labels:    []string{"pid"},
	})

	// OperatorRounds counts completed gather/apply rounds per operator
	// (forks are not labeled separately), the throughput signal named in
	// spec §6.
	OperatorRounds = metrics.NewCounter(&metrics.VectorOption{
		Namespace: namespace,
		Subsystem: "operator",
		Name:      "rounds_total",
		Help:      "Completed gather/apply rounds, per operator.",
		Labels:    []string{"operator"},
	})

	// OperatorErrors counts body panics recovered by an operator's default
	// or overridden error handler, per operator.
	OperatorErrors = metrics.NewCounter(&metrics.VectorOption{
		Namespace: namespace,
		Subsystem: "operator",
		Name:      "errors_total",
		Help:      "Body panics recovered per operator.",
		Labels:    []string{"operator"},
	})
)
