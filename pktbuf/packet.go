package pktbuf

import (
	"unsafe"
)

// Flags are boolean attributes on the generic view.
type Flags uint32

// View flag bits.
const (
	// FlagReplicaFailed marks a packet whose replication failed during enqueue.
	// The transmit path must not insert such a packet into a ring.
	FlagReplicaFailed Flags = 1 << iota

	// FlagTraced selects a packet for transmit tracing.
	FlagTraced
)

// Desc is the device-native descriptor of one packet segment.
// The transmit primitive consumes descriptors, never views.
type Desc struct {
	DataOff uint16 // data start within buf
	DataLen uint16 // data bytes in this segment
	PktLen  uint32 // total bytes in the chain; meaningful on first segment
	NbSegs  uint16 // segment count; meaningful on first segment
	Port    uint16 // port identifier

	buf  []byte
	next *Desc
	pool *Pool
}

// View is the generic buffer view of the same packet segment.
// The upstream pipeline mutates the view; Reconcile folds the drift back
// into the descriptor before the packet reaches a device.
type View struct {
	Offset int16  // data start relative to the end of the headroom
	Length uint16 // data bytes in this segment
	Flags  Flags
	Clones uint16 // independent copies required at transmit; 0 = no fan-out
}

// Packet is one segment: the descriptor and the view in one allocation.
// Desc is the first field, so a *Desc is also the address of its Packet.
type Packet struct {
	d Desc
	v View
}

var viewOffset = unsafe.Offsetof(Packet{}.v)

// Desc returns the device-native view.
func (pkt *Packet) Desc() *Desc { return &pkt.d }

// View returns the generic view.
func (pkt *Packet) View() *View { return &pkt.v }

// FromDesc recovers the Packet co-located with a descriptor.
func FromDesc(d *Desc) *Packet {
	return (*Packet)(unsafe.Pointer(d))
}

// FromView recovers the Packet co-located with a view.
func FromView(v *View) *Packet {
	return (*Packet)(unsafe.Add(unsafe.Pointer(v), -int(viewOffset)))
}

// Bytes returns the data bytes of this segment as seen by the device.
func (d *Desc) Bytes() []byte {
	return d.buf[d.DataOff : uint32(d.DataOff)+uint32(d.DataLen)]
}

// Headroom returns the number of unused bytes before the data.
func (d *Desc) Headroom() int {
	return int(d.DataOff)
}

// Next returns the next segment descriptor, or nil on the last segment.
func (d *Desc) Next() *Desc {
	return d.next
}

// Bytes returns the data bytes of this segment as seen by the pipeline.
func (v *View) Bytes() []byte {
	d := &FromView(v).d
	off := Headroom + int(v.Offset)
	return d.buf[off : off+int(v.Length)]
}

// Append copies data into the segment after existing data, updating both
// views. Panics if the segment lacks tailroom.
func (pkt *Packet) Append(data []byte) {
	d := &pkt.d
	off := int(d.DataOff) + int(d.DataLen)
	if off+len(data) > len(d.buf) {
		logger.Panic("append exceeds tailroom")
	}
	copy(d.buf[off:], data)
	d.DataLen += uint16(len(data))
	d.PktLen += uint32(len(data))
	pkt.v.Length = d.DataLen
}

// Chain appends seg as the last segment of pkt.
// pkt must be a first segment; seg must be a single segment.
func (pkt *Packet) Chain(seg *Packet) {
	last := &pkt.d
	for last.next != nil {
		last = last.next
	}
	last.next = &seg.d
	pkt.d.NbSegs += seg.d.NbSegs
	pkt.d.PktLen += uint32(seg.d.DataLen)
}

// TotalViewLength sums View.Length over the segment chain.
// This is the pipeline's notion of packet length, which may have drifted
// from Desc.PktLen through header push/pop.
func (pkt *Packet) TotalViewLength() int {
	total := 0
	for d := &pkt.d; d != nil; d = d.next {
		total += int(FromDesc(d).v.Length)
	}
	return total
}

// Reconcile folds view drift into the descriptor, so both views agree
// before the packet is handed to a transmit primitive. The length delta is
// applied to the first segment, matching where header push/pop occurs.
func (pkt *Packet) Reconcile() {
	d, v := &pkt.d, &pkt.v
	delta := int32(pkt.TotalViewLength()) - int32(d.PktLen)
	newDataLen := uint16(int32(d.DataLen) + delta)
	d.DataLen = newDataLen
	d.PktLen = uint32(int32(d.PktLen) + delta)
	d.DataOff = uint16(Headroom + int(v.Offset))
	v.Length = newDataLen
}
