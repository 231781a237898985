package portmetrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/packetio/dataplane/core/testenv"
	"github.com/packetio/dataplane/pktbuf"
	"github.com/packetio/dataplane/port"
	"github.com/packetio/dataplane/port/mockdev"
	"github.com/packetio/dataplane/port/portmetrics"
)

var makeAR = testenv.MakeAR

func TestCollect(t *testing.T) {
	assert, require := makeAR(t)

	p, e := port.New(mockdev.New(mockdev.Config{FreeAccepted: true}), port.Config{
		Name:         "metrics0",
		RingCapacity: 32,
		PoolConfig:   pktbuf.PoolConfig{Capacity: 16, Dataroom: 128},
	})
	require.NoError(e)
	defer p.Close()

	pool := p.Pool(0)
	pkts := make([]*pktbuf.Packet, 5)
	for i := range pkts {
		pkts[i] = pool.Alloc()
		pkts[i].Append(make([]byte, 100))
	}
	p.TxBurst(0, pkts)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(reg.Register(portmetrics.NewCollector()))
	mfs, e := reg.Gather()
	require.NoError(e)

	byName := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if v := m.GetCounter(); v != nil {
				byName[mf.GetName()] = v.GetValue()
			} else if g := m.GetGauge(); g != nil {
				byName[mf.GetName()] = g.GetValue()
			}
		}
	}
	assert.EqualValues(5, byName["dataplane_tx_frames_total"])
	assert.EqualValues(500, byName["dataplane_tx_octets_total"])
	assert.EqualValues(0, byName["dataplane_tx_pending"])
}
