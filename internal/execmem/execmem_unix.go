//go:build linux || darwin

package execmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// platformBuffer on unix is the raw mmap'd slice; Finalize/Release both
// need it verbatim, so the generic Buffer.data and this type point at
// the same memory rather than copying.
type platformBuffer struct {
	mem []byte
}

func platformAlloc(size int) (platformBuffer, []byte, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return platformBuffer{}, nil, fmt.Errorf("mmap: %w", err)
	}
	return platformBuffer{mem: mem}, mem, nil
}

func platformFinalize(pb platformBuffer) error {
	if err := unix.Mprotect(pb.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("mprotect rx: %w", err)
	}
	return nil
}

func platformRelease(pb platformBuffer, _ int) error {
	if err := unix.Munmap(pb.mem); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
