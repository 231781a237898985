package port

import (
	"sync"
)

// FlowControlFunc is invoked from the drain path when a ring retains
// backlog, so an external traffic manager can throttle producers.
// It is called synchronously on the worker; it must not block and must not
// re-enter the transmit path for the same port.
type FlowControlFunc func(p *Port, backlog int)

var (
	flowControlMutex sync.Mutex
	flowControl      FlowControlFunc
)

// SetFlowControl registers the process-wide flow control callback.
// At most one callback may be registered; ports capture it at creation.
func SetFlowControl(cb FlowControlFunc) {
	flowControlMutex.Lock()
	defer flowControlMutex.Unlock()
	if flowControl != nil && cb != nil {
		logger.Panic("flow control callback already registered")
	}
	flowControl = cb
}

// ClearFlowControl removes the process-wide flow control callback.
func ClearFlowControl() {
	SetFlowControl(nil)
}

func registeredFlowControl() FlowControlFunc {
	flowControlMutex.Lock()
	defer flowControlMutex.Unlock()
	return flowControl
}
