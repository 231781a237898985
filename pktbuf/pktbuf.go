// Package pktbuf implements packet buffers for the transmit path.
//
// Each packet segment is a single allocation carrying two views of the same
// bytes: the device-native descriptor (Desc) and the generic buffer view
// (View), co-located at a fixed relative offset so that either can be
// recovered from the other without a lookup.
package pktbuf

import (
	"github.com/packetio/dataplane/core/logging"
)

var logger = logging.New("pktbuf")

// Headroom is the number of bytes reserved before the data area of each
// segment, available for prepending headers.
const Headroom = 128

// DefaultDataroom is the default payload capacity of one segment.
const DefaultDataroom = 2048
