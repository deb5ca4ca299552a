// Package flowrt is the process-level facade: it owns the registry of
// runtime components (actor groups, supervisors, operators) a process
// wires together, and the init/run/teardown sequence around them. It is
// the process-wide global state named in the design notes — started once,
// torn down only after every registered component has stopped.
package flowrt

import (
	"log"
	"os"
	"os/signal"
	"syscall"
)

var version = "0.1.0"

// Version reports the module version.
func Version() string {
	return version
}

// Run registers mods, initializes and starts them, then blocks until an
// interrupt or termination signal, at which point it stops every module in
// reverse registration order.
func Run(mods ...Component) {
	log.Printf("flowrt %v starting up", version)

	for i := range mods {
		Register(mods[i])
	}
	Init()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-sig

	log.Printf("flowrt shutting down (signal: %v)", sig)
	Destroy()
}
