//go:build linux

package worker

import (
	"golang.org/x/sys/unix"
)

// setAffinity restricts the calling thread to one CPU.
func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
