package port

import (
	"github.com/packetio/dataplane/pktbuf"
)

// txTraceBytes is the number of leading data bytes captured per trace.
const txTraceBytes = 64

// TxTrace is a capture of one packet as it entered a transmit ring.
type TxTrace struct {
	Port    string
	Worker  int
	PktLen  uint32
	NbSegs  uint16
	DataOff uint16
	Data    []byte // copy of leading data bytes
}

// TraceFunc receives transmit traces. It runs on the worker, so it must
// return promptly.
type TraceFunc func(t TxTrace)

// EnableTrace installs a trace callback. Packets carrying FlagTraced are
// captured during enqueue. Install before starting traffic.
func (p *Port) EnableTrace(fn TraceFunc) {
	p.traceFn = fn
}

// DisableTrace removes the trace callback.
func (p *Port) DisableTrace() {
	p.traceFn = nil
}

func (p *Port) traceTx(wk int, pkt *pktbuf.Packet) {
	if p.traceFn == nil || pkt.View().Flags&pktbuf.FlagTraced == 0 {
		return
	}
	d := pkt.Desc()
	data := d.Bytes()
	if len(data) > txTraceBytes {
		data = data[:txTraceBytes]
	}
	p.traceFn(TxTrace{
		Port:    p.name,
		Worker:  wk,
		PktLen:  d.PktLen,
		NbSegs:  d.NbSegs,
		DataOff: d.DataOff,
		Data:    append([]byte{}, data...),
	})
}
