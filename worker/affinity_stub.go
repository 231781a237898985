//go:build !linux

package worker

import (
	"errors"
)

func setAffinity(cpu int) error {
	return errors.New("CPU affinity not supported on this platform")
}
