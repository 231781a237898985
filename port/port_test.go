package port_test

import (
	"testing"
	"time"

	"github.com/packetio/dataplane/pktbuf"
	"github.com/packetio/dataplane/port"
	"github.com/packetio/dataplane/port/mockdev"
)

func TestPortRegistry(t *testing.T) {
	assert, require := makeAR(t)

	p, e := port.New(mockdev.New(mockdev.Config{}), port.Config{Name: "reg0"})
	require.NoError(e)
	assert.Same(p, port.Get("reg0"))
	assert.Contains(port.List(), p)

	_, e = port.New(mockdev.New(mockdev.Config{}), port.Config{Name: "reg0"})
	assert.Error(e)

	require.NoError(p.Close())
	assert.Nil(port.Get("reg0"))
	assert.Error(p.Close())
}

func TestPortNewErrors(t *testing.T) {
	assert, _ := makeAR(t)

	_, e := port.New(nil, port.Config{Name: "bad"})
	assert.Error(e)
	_, e = port.New(mockdev.New(mockdev.Config{}), port.Config{})
	assert.Error(e)
}

func TestAdminStateEvents(t *testing.T) {
	assert, require := makeAR(t)

	dev := mockdev.New(mockdev.Config{})
	p, e := port.New(dev, port.Config{Name: "admin0"})
	require.NoError(e)

	upC := make(chan *port.Port, 1)
	downC := make(chan *port.Port, 1)
	closedC := make(chan *port.Port, 1)
	defer port.OnPortUp(func(fp *port.Port) { upC <- fp })()
	defer port.OnPortDown(func(fp *port.Port) { downC <- fp })()
	defer port.OnPortClosed(func(fp *port.Port) { closedC <- fp })()

	assert.False(p.IsUp())
	p.SetAdminState(true)
	select {
	case fp := <-upC:
		assert.Same(p, fp)
	case <-time.After(time.Second):
		require.FailNow("PortUp event not emitted")
	}
	assert.True(p.IsUp())
	assert.True(dev.IsStarted())

	p.SetAdminState(false)
	select {
	case <-downC:
	case <-time.After(time.Second):
		require.FailNow("PortDown event not emitted")
	}
	assert.False(p.IsUp())
	assert.False(dev.IsStarted())

	require.NoError(p.Close())
	select {
	case <-closedC:
	case <-time.After(time.Second):
		require.FailNow("PortClosed event not emitted")
	}
}

func TestAdminStartError(t *testing.T) {
	assert, require := makeAR(t)

	dev := mockdev.New(mockdev.Config{StartErr: mockdev.ErrSend})
	p, e := port.New(dev, port.Config{Name: "admin1"})
	require.NoError(e)
	defer p.Close()

	p.SetAdminState(true)
	time.Sleep(50 * time.Millisecond)
	assert.False(p.IsUp())
}

func TestGlobalFlowControl(t *testing.T) {
	assert, require := makeAR(t)

	backlogs := make(chan int, 1)
	port.SetFlowControl(func(_ *port.Port, backlog int) { backlogs <- backlog })
	defer port.ClearFlowControl()

	dev := mockdev.New(mockdev.Config{FreeAccepted: true, Accept: []int{3}})
	p, e := port.New(dev, port.Config{
		Name:         "fcGlobal",
		RingCapacity: 32,
		PoolConfig:   pktbuf.PoolConfig{Capacity: 16, Dataroom: 128},
	})
	require.NoError(e)
	defer p.Close()

	assert.Equal(3, p.TxBurst(0, makePackets(p.Pool(0), 8, 64)))
	assert.Equal(5, <-backlogs)
	assert.Equal(5, p.Pending())

	// second registration is rejected
	assert.Panics(func() { port.SetFlowControl(func(*port.Port, int) {}) })
}

func TestTxTrace(t *testing.T) {
	assert, require := makeAR(t)

	dev := mockdev.New(mockdev.Config{FreeAccepted: true})
	p, e := port.New(dev, port.Config{
		Name:         "trace0",
		RingCapacity: 32,
		PoolConfig:   pktbuf.PoolConfig{Capacity: 16, Dataroom: 256},
	})
	require.NoError(e)
	defer p.Close()

	var traces []port.TxTrace
	p.EnableTrace(func(tr port.TxTrace) { traces = append(traces, tr) })

	pool := p.Pool(0)
	pkts := makePackets(pool, 3, 100)
	pkts[1].View().Flags |= pktbuf.FlagTraced
	want := append([]byte{}, pkts[1].Desc().Bytes()[:64]...)

	assert.Equal(3, p.TxBurst(0, pkts))
	require.Len(traces, 1)
	assert.Equal("trace0", traces[0].Port)
	assert.Equal(0, traces[0].Worker)
	assert.EqualValues(100, traces[0].PktLen)
	assert.Equal(want, traces[0].Data)

	p.DisableTrace()
	more := makePackets(pool, 1, 50)
	more[0].View().Flags |= pktbuf.FlagTraced
	p.TxBurst(0, more)
	assert.Len(traces, 1)
}

func TestCountersStringClear(t *testing.T) {
	assert, require := makeAR(t)

	dev := mockdev.New(mockdev.Config{FreeAccepted: true})
	p, e := port.New(dev, port.Config{
		Name:         "cnt0",
		RingCapacity: 32,
		PoolConfig:   pktbuf.PoolConfig{Capacity: 16, Dataroom: 128},
	})
	require.NoError(e)
	defer p.Close()

	p.TxBurst(0, makePackets(p.Pool(0), 4, 64))
	cnt := p.ReadCounters()
	assert.EqualValues(4, cnt.TxFrames)
	assert.Contains(cnt.String(), "4frm")

	p.ClearCounters()
	assert.EqualValues(0, p.ReadCounters().TxFrames)
}
