// Package portmetrics exposes port transmit counters as Prometheus
// metrics. Counters are read on each scrape; values are approximate while
// workers are running.
package portmetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/packetio/dataplane/port"
)

type collector struct {
	txFrames       *prometheus.Desc
	txOctets       *prometheus.Desc
	txBursts       *prometheus.Desc
	ringFull       *prometheus.Desc
	txDropped      *prometheus.Desc
	deviceRejected *prometheus.Desc
	replicaFails   *prometheus.Desc
	pending        *prometheus.Desc
}

// NewCollector creates a prometheus.Collector over all open ports.
func NewCollector() prometheus.Collector {
	labels := []string{"port"}
	return &collector{
		txFrames: prometheus.NewDesc(
			"dataplane_tx_frames_total",
			"Descriptors accepted by the device.",
			labels, nil,
		),
		txOctets: prometheus.NewDesc(
			"dataplane_tx_octets_total",
			"Bytes accepted by the device.",
			labels, nil,
		),
		txBursts: prometheus.NewDesc(
			"dataplane_tx_bursts_total",
			"Transmit primitive invocations.",
			labels, nil,
		),
		ringFull: prometheus.NewDesc(
			"dataplane_tx_ring_full_total",
			"Packets dropped because a batch would overflow the ring.",
			labels, nil,
		),
		txDropped: prometheus.NewDesc(
			"dataplane_tx_dropped_total",
			"Pending packets dropped after an incomplete drain.",
			labels, nil,
		),
		deviceRejected: prometheus.NewDesc(
			"dataplane_tx_device_rejected_total",
			"Bursts rejected by the device with an error.",
			labels, nil,
		),
		replicaFails: prometheus.NewDesc(
			"dataplane_tx_replica_fails_total",
			"Fan-out copies lost to allocator exhaustion.",
			labels, nil,
		),
		pending: prometheus.NewDesc(
			"dataplane_tx_pending",
			"Backlog retained across worker rings.",
			labels, nil,
		),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.txFrames
	ch <- c.txOctets
	ch <- c.txBursts
	ch <- c.ringFull
	ch <- c.txDropped
	ch <- c.deviceRejected
	ch <- c.replicaFails
	ch <- c.pending
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range port.List() {
		cnt := p.ReadCounters()
		name := p.Name()
		counter := func(desc *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(v), name)
		}
		counter(c.txFrames, cnt.TxFrames)
		counter(c.txOctets, cnt.TxOctets)
		counter(c.txBursts, cnt.TxBursts)
		counter(c.ringFull, cnt.RingFull)
		counter(c.txDropped, cnt.TxDropped)
		counter(c.deviceRejected, cnt.DeviceRejected)
		counter(c.replicaFails, cnt.ReplicaFails)
		ch <- prometheus.MustNewConstMetric(c.pending, prometheus.GaugeValue, float64(p.Pending()), name)
	}
}
