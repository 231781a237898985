// Package mockdev provides an in-memory transmit primitive, usable as a
// stand-in device in tests and benchmarks.
package mockdev

import (
	"errors"
	"sync"

	"github.com/packetio/dataplane/pktbuf"
	"github.com/packetio/dataplane/port"
)

// ErrSend is returned by a scripted rejection.
var ErrSend = errors.New("mock device error")

// SendRecord describes one Send invocation.
type SendRecord struct {
	Queue    int
	Offered  int
	Accepted int
}

// Config configures a mock driver.
type Config struct {
	Kind      port.Kind
	Queues    int // default 1
	NeedsLock bool

	// Accept scripts successive Send calls: a value >= 0 caps the accepted
	// count of one call, -1 rejects the call with ErrSend. Once the script
	// is exhausted every call is fully accepted.
	Accept []int

	// FreeAccepted emulates device completion by returning accepted
	// packets to their pools, as a NIC does after DMA. Leave false when a
	// test wants to inspect accepted packets through its own references.
	FreeAccepted bool

	// AfterSend is the variant-specific post-accept hook, e.g. vhost
	// interrupt coalescing toward the peer. Invoked after each call that
	// accepted at least one packet.
	AfterSend func(queue, accepted int)

	// StartErr and StopErr, if set, fail the corresponding admin
	// transition.
	StartErr error
	StopErr  error
}

// Driver is a mock transmit primitive. Send may be invoked concurrently
// from multiple workers.
type Driver struct {
	cfg Config

	mutex   sync.Mutex
	script  []int
	calls   []SendRecord
	started bool
}

var _ interface {
	port.Driver
	port.AdminDriver
} = &Driver{}

// New creates a mock driver.
func New(cfg Config) *Driver {
	if cfg.Queues <= 0 {
		cfg.Queues = 1
	}
	return &Driver{
		cfg:    cfg,
		script: append([]int{}, cfg.Accept...),
	}
}

// Kind returns the configured device variant.
func (d *Driver) Kind() port.Kind {
	return d.cfg.Kind
}

// QueueCount returns the configured number of queues.
func (d *Driver) QueueCount() int {
	return d.cfg.Queues
}

// NeedsLock returns the configured locking quirk.
func (d *Driver) NeedsLock() bool {
	return d.cfg.NeedsLock
}

// Send accepts packets according to the script.
func (d *Driver) Send(queue int, pkts []*pktbuf.Packet) (int, error) {
	d.mutex.Lock()
	accepted := len(pkts)
	if len(d.script) > 0 {
		v := d.script[0]
		d.script = d.script[1:]
		if v < 0 {
			d.calls = append(d.calls, SendRecord{Queue: queue, Offered: len(pkts)})
			d.mutex.Unlock()
			return 0, ErrSend
		}
		if v < accepted {
			accepted = v
		}
	}
	d.calls = append(d.calls, SendRecord{Queue: queue, Offered: len(pkts), Accepted: accepted})
	d.mutex.Unlock()

	if d.cfg.FreeAccepted {
		for _, pkt := range pkts[:accepted] {
			pktbuf.Free(pkt)
		}
	}
	if d.cfg.AfterSend != nil && accepted > 0 {
		d.cfg.AfterSend(queue, accepted)
	}
	return accepted, nil
}

// Start begins the admin-up transition.
func (d *Driver) Start() error {
	if d.cfg.StartErr != nil {
		return d.cfg.StartErr
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.started = true
	return nil
}

// Stop begins the admin-down transition.
func (d *Driver) Stop() error {
	if d.cfg.StopErr != nil {
		return d.cfg.StopErr
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.started = false
	return nil
}

// IsStarted reports whether the device has been started.
func (d *Driver) IsStarted() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.started
}

// Calls returns a copy of recorded Send invocations.
func (d *Driver) Calls() []SendRecord {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return append([]SendRecord{}, d.calls...)
}

// CountAccepted sums accepted packets over all recorded calls.
func (d *Driver) CountAccepted() (n int) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	for _, c := range d.calls {
		n += c.Accepted
	}
	return n
}
