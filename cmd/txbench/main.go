// Command txbench exercises the transmit path against a mock device and
// reports throughput and counters.
package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/packetio/dataplane/core/logging"
	"github.com/packetio/dataplane/pktbuf"
	"github.com/packetio/dataplane/port"
	"github.com/packetio/dataplane/port/mockdev"
	"github.com/packetio/dataplane/port/portmetrics"
	"github.com/packetio/dataplane/worker"
)

var logger = logging.New("txbench")

var app = &cli.App{
	Usage: "Transmit path benchmark over a mock device.",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "workers", Value: 2, Usage: "producer worker `count`"},
		&cli.IntFlag{Name: "queues", Value: 1, Usage: "device queue `count`"},
		&cli.IntFlag{Name: "ring", Value: 1024, Usage: "ring `capacity` per worker"},
		&cli.IntFlag{Name: "burst", Value: 64, Usage: "packets per `batch`"},
		&cli.IntFlag{Name: "rounds", Value: 10000, Usage: "batches per worker"},
		&cli.IntFlag{Name: "payload", Value: 64, Usage: "UDP payload `octets`"},
		&cli.UintFlag{Name: "clones", Usage: "fan-out `copies` per packet"},
		&cli.BoolFlag{Name: "flowcontrol", Usage: "register a flow control callback"},
		&cli.BoolFlag{Name: "pin", Usage: "pin workers to CPU cores"},
		&cli.StringFlag{Name: "metrics", Usage: "serve Prometheus metrics on `addr` while running"},
	},
	Action: run,
}

func makeFrame(payloadLen int) []byte {
	payload := make([]byte, payloadLen)
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(192, 0, 2, 1),
		DstIP:    net.IPv4(192, 0, 2, 2),
	}
	udp := &layers.UDP{SrcPort: 9000, DstPort: 9000}
	udp.SetNetworkLayerForChecksum(ip)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if e := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); e != nil {
		logger.Fatal("cannot serialize frame")
	}
	return buf.Bytes()
}

func run(c *cli.Context) error {
	nWorkers := c.Int("workers")
	burst := c.Int("burst")
	if burst < 1 || burst > port.MaxBurst {
		return fmt.Errorf("burst must be between 1 and %d", port.MaxBurst)
	}
	rounds := c.Int("rounds")
	clones := uint16(c.Uint("clones"))

	cfg := port.Config{
		Name:         "bench",
		Workers:      nWorkers,
		RingCapacity: c.Int("ring"),
		PoolConfig: pktbuf.PoolConfig{
			Capacity: 4 * burst * (1 + int(clones)),
			Dataroom: pktbuf.DefaultDataroom,
		},
	}

	var notified atomic.Uint64
	if c.Bool("flowcontrol") {
		cfg.FlowControl = func(_ *port.Port, _ int) { notified.Add(1) }
	}

	dev := mockdev.New(mockdev.Config{Queues: c.Int("queues"), FreeAccepted: true})
	p, e := port.New(dev, cfg)
	if e != nil {
		return e
	}
	defer p.Close()
	p.SetAdminState(true)

	if addr := c.String("metrics"); addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(portmetrics.NewCollector())
		go http.ListenAndServe(addr, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	frame := makeFrame(c.Int("payload"))
	start := time.Now()
	workers := make([]*worker.Worker, nWorkers)
	done := make(chan int, nWorkers)
	for wk := range workers {
		cpu := -1
		if c.Bool("pin") {
			cpu = wk
		}
		workers[wk] = worker.New(worker.Config{ID: wk, CPU: cpu})
		workers[wk].Launch(func(w *worker.Worker) {
			wk := w.ID()
			pool := p.Pool(wk)
			sent := 0
			for i := 0; i < rounds; i++ {
				select {
				case <-w.Stopping():
					done <- sent
					return
				default:
				}
				pkts := make([]*pktbuf.Packet, 0, burst)
				for len(pkts) < burst {
					pkt := pool.Alloc()
					if pkt == nil {
						break
					}
					pkt.Append(frame)
					pkt.View().Clones = clones
					pkts = append(pkts, pkt)
				}
				sent += p.TxBurst(wk, pkts)
			}
			done <- sent
		})
	}

	total := 0
	for range workers {
		total += <-done
	}
	elapsed := time.Since(start)
	for _, w := range workers {
		w.Stop()
	}

	cnt := p.ReadCounters()
	fmt.Println(cnt)
	fmt.Printf("transmitted %d packets in %v (%.0f pps)\n",
		total, elapsed, float64(total)/elapsed.Seconds())
	if c.Bool("flowcontrol") {
		fmt.Printf("flow control notifications: %d, final backlog %d\n",
			notified.Load(), p.Pending())
	}
	return nil
}

func main() {
	if e := app.Run(os.Args); e != nil {
		logger.Fatal(e.Error())
	}
}
