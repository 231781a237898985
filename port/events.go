package port

import (
	"github.com/packetio/dataplane/core/events"
)

var emitter = events.NewEmitter()

const (
	evtPortNew    = "PortNew"
	evtPortUp     = "PortUp"
	evtPortDown   = "PortDown"
	evtPortClosed = "PortClosed"
)

// OnPortNew registers a callback when a port is created.
// Returns a function that cancels the callback registration.
func OnPortNew(cb func(*Port)) (cancel func()) {
	return emitter.On(evtPortNew, cb)
}

// OnPortUp registers a callback when a port goes administratively up.
// Returns a function that cancels the callback registration.
func OnPortUp(cb func(*Port)) (cancel func()) {
	return emitter.On(evtPortUp, cb)
}

// OnPortDown registers a callback when a port goes administratively down.
// Returns a function that cancels the callback registration.
func OnPortDown(cb func(*Port)) (cancel func()) {
	return emitter.On(evtPortDown, cb)
}

// OnPortClosed registers a callback when a port is closed.
// Returns a function that cancels the callback registration.
func OnPortClosed(cb func(*Port)) (cancel func()) {
	return emitter.On(evtPortClosed, cb)
}
