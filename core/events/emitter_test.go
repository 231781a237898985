package events_test

import (
	"testing"

	"github.com/packetio/dataplane/core/events"
	"github.com/packetio/dataplane/core/testenv"
)

var makeAR = testenv.MakeAR

func TestOnCancel(t *testing.T) {
	assert, _ := makeAR(t)

	nA, nB, nC := 0, 0, 0
	fA := func() { nA++ }
	fB := func() { nB++ }
	fC := func() { nC++ }

	emitter := events.NewEmitter()
	cancelA := emitter.On(1, fA)
	emitter.On(1, fB)
	emitter.Once(2, fC)

	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(1, nB)

	cancelA()
	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(2, nB)

	cancelA()
	emitter.EmitSync(1)
	assert.Equal(1, nA)
	assert.Equal(3, nB)

	emitter.EmitSync(2)
	emitter.EmitSync(2)
	assert.Equal(1, nC)
}
