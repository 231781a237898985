package pktbuf_test

import (
	"github.com/packetio/dataplane/core/testenv"
)

var (
	makeAR       = testenv.MakeAR
	bytesFromHex = testenv.BytesFromHex
	randBytes    = testenv.RandBytes
)
