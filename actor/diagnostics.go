package actor

import (
	"github.com/czx-lab/flowrt/eventbus"
	"github.com/czx-lab/flowrt/xlog"
)

// EvtActorException is published on the default event bus every time
// reportDiagnostic runs, carrying the owning PID and the error as data.
const EvtActorException = "actor.exception"

// reportDiagnostic is the process-wide diagnostic sink named in spec §6. It
// receives the errors recovered from chunk bodies and from a BlockingActor
// worker's Exec, tagged with the actor's PID standing in for a thread
// identity. Panics raised inside the hooks themselves are not recovered and
// do not reach it.
func reportDiagnostic(pid string, seq uint64, err error) {
	xlog.Write().Sugar().Errorw("actor diagnostic",
		"pid", pid,
		"chunk", seq,
		"error", err,
	)
	eventbus.DefaultBus.Publish(EvtActorException, struct {
		PID string
		Err error
	}{PID: pid, Err: err})
}
