//go:build !linux && !darwin

package execmem

// platformBuffer on non-unix targets is a plain heap allocation. There
// is no portable mmap/mprotect primitive in the pack's dependency set
// for these platforms, so Finalize is a documented no-op here rather
// than an unenforced security boundary pretending to be enforced — the
// RW/RX separation guarantee only holds on linux/darwin.
type platformBuffer struct{}

func platformAlloc(size int) (platformBuffer, []byte, error) {
	return platformBuffer{}, make([]byte, size), nil
}

func platformFinalize(platformBuffer) error {
	return nil
}

func platformRelease(platformBuffer, int) error {
	return nil
}
