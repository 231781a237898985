// Package port implements the transmit path of a dataplane device port:
// per-worker transmit rings, the burst-send engine with its
// retry/backpressure policy, queue locking for devices with fewer queues
// than workers, packet replication for fan-out, and flow control.
package port

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/packetio/dataplane/core/logging"
	"github.com/packetio/dataplane/pktbuf"
	"github.com/packetio/dataplane/txring"
)

var logger = logging.New("port")

// MaxBurst is the largest batch accepted by TxBurst in one call.
const MaxBurst = 256

// Kind identifies a device variant.
type Kind int

// Device variants.
const (
	// Ethernet is a hardware NIC queue. Accepted descriptors are owned by
	// the device after Send.
	Ethernet Kind = iota

	// Vhost is a virtual host-facing queue. The device copies descriptors
	// on Send, so the driver frees accepted descriptors itself and may run
	// an interrupt-coalescing hook; the engine sees only the accepted count.
	Vhost

	// Kni is a kernel-facing interface with Ethernet-like send semantics.
	Kni
)

func (k Kind) String() string {
	switch k {
	case Ethernet:
		return "ethernet"
	case Vhost:
		return "vhost"
	case Kni:
		return "kni"
	}
	return fmt.Sprintf("%d", int(k))
}

// Driver is the underlying transmit primitive of a device.
//
// Send offers a contiguous run of packets to a queue and returns how many
// were accepted; acceptance consumes a prefix atomically. A non-nil error
// means the device rejected the burst with nothing consumed. Drivers read
// packets through the Desc view only.
type Driver interface {
	Kind() Kind
	QueueCount() int

	// NeedsLock reports a device-class quirk requiring queue locking even
	// when queues are not shared across workers.
	NeedsLock() bool

	Send(queue int, pkts []*pktbuf.Packet) (int, error)
}

// AdminDriver is implemented by drivers whose device must be started and
// stopped around admin state changes. Start and Stop may block for bounded
// delays; the port runs them on a dedicated goroutine, never on a worker.
type AdminDriver interface {
	Start() error
	Stop() error
}

// Config configures a Port.
type Config struct {
	// Name is the port name, unique within the process.
	Name string

	// Workers is the number of producer workers, each owning one transmit
	// ring. Default is 1.
	Workers int

	// RingCapacity is the per-worker ring capacity. The caller must size it
	// to exceed the largest unflushed burst; overflow is a configuration
	// error, not backpressure. Aligned with txring.AlignCapacity.
	RingCapacity int

	// PoolConfig configures the per-worker packet pools used for
	// replication and recycling.
	PoolConfig pktbuf.PoolConfig

	// FlowControl, if set, overrides the process-wide registration for this
	// port. With a callback present, rings retain backlog across calls and
	// the callback receives the backlog depth; without one, leftover
	// packets are dropped at the end of every call.
	FlowControl FlowControlFunc
}

// Port is a dataplane device port.
type Port struct {
	name    string
	driver  Driver
	nQueues int
	shared  bool // queues contended: locks in use

	rings   []*txring.Ring
	pools   []*pktbuf.Pool
	recycle [][]*pktbuf.Packet
	locks   []queueLock
	cnt     []counters

	flowctl FlowControlFunc
	traceFn TraceFunc

	adminC    chan bool
	adminDone chan struct{}
	upMutex   sync.RWMutex
	up        bool
}

var (
	portsMutex sync.Mutex
	ports      = map[string]*Port{}
)

// New creates a Port over a driver.
func New(driver Driver, cfg Config) (*Port, error) {
	if driver == nil {
		return nil, errors.New("driver is nil")
	}
	if cfg.Name == "" {
		return nil, errors.New("port name is empty")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	nQueues := driver.QueueCount()
	if nQueues <= 0 {
		return nil, errors.New("driver has no queues")
	}

	p := &Port{
		name:      cfg.Name,
		driver:    driver,
		nQueues:   nQueues,
		shared:    driver.NeedsLock() || cfg.Workers > nQueues,
		rings:     make([]*txring.Ring, cfg.Workers),
		pools:     make([]*pktbuf.Pool, cfg.Workers),
		recycle:   make([][]*pktbuf.Packet, cfg.Workers),
		cnt:       make([]counters, cfg.Workers),
		flowctl:   cfg.FlowControl,
		adminC:    make(chan bool, 4),
		adminDone: make(chan struct{}),
	}
	for i := range p.rings {
		p.rings[i] = txring.New(cfg.RingCapacity)
		p.pools[i] = pktbuf.NewPool(cfg.PoolConfig)
	}
	if p.shared {
		p.locks = make([]queueLock, nQueues)
	}
	if p.flowctl == nil {
		p.flowctl = registeredFlowControl()
	}

	portsMutex.Lock()
	defer portsMutex.Unlock()
	if _, ok := ports[p.name]; ok {
		return nil, fmt.Errorf("port %s already exists", p.name)
	}
	ports[p.name] = p

	go p.adminLoop()

	logger.Info("port created",
		zap.String("port", p.name),
		zap.Stringer("kind", driver.Kind()),
		zap.Int("queues", nQueues),
		zap.Int("workers", cfg.Workers),
		zap.Bool("locked", p.shared),
	)
	emitter.EmitSync(evtPortNew, p)
	return p, nil
}

// Name returns the port name.
func (p *Port) Name() string {
	return p.name
}

// Kind returns the device variant.
func (p *Port) Kind() Kind {
	return p.driver.Kind()
}

// Workers returns the number of producer workers.
func (p *Port) Workers() int {
	return len(p.rings)
}

// Pool returns the packet pool owned by a worker.
func (p *Port) Pool(wk int) *pktbuf.Pool {
	return p.pools[wk]
}

// Ring returns the transmit ring owned by a worker.
func (p *Port) Ring(wk int) *txring.Ring {
	return p.rings[wk]
}

// Close stops the admin process and releases the port.
// Workers must have stopped beforehand.
func (p *Port) Close() error {
	portsMutex.Lock()
	if ports[p.name] != p {
		portsMutex.Unlock()
		return errors.New("port already closed")
	}
	delete(ports, p.name)
	portsMutex.Unlock()

	close(p.adminC)
	<-p.adminDone

	var e error
	if closer, ok := p.driver.(io.Closer); ok {
		e = multierr.Append(e, closer.Close())
	}
	logger.Info("port closed", zap.String("port", p.name))
	emitter.EmitSync(evtPortClosed, p)
	return e
}

// Get retrieves a port by name.
func Get(name string) *Port {
	portsMutex.Lock()
	defer portsMutex.Unlock()
	return ports[name]
}

// List returns all open ports.
func List() (list []*Port) {
	portsMutex.Lock()
	defer portsMutex.Unlock()
	for _, p := range ports {
		list = append(list, p)
	}
	return list
}
