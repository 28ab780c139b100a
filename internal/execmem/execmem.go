// Package execmem manages the writable-then-executable memory pages that
// back a compiled program's trace (internal/jit's Trace). A buffer is
// always mapped read/write during compilation, flipped to read/execute
// exactly once, and never made writable again for the rest of its
// lifetime — the only sequence in which code and data can share a page
// without opening a write-after-exec gadget window.
package execmem

import "fmt"

// Buffer is an executable memory region. It starts out writable (Bytes
// returns a read/write slice); after Finalize it is read/execute only
// and Bytes panics if called again, since no code in this module should
// ever need to read back memory it just marked executable.
type Buffer struct {
	data     []byte
	size     int
	final    bool
	platform platformBuffer
}

// Alloc reserves size bytes of fresh, zeroed, writable memory.
func Alloc(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("execmem: invalid size %d", size)
	}
	pb, data, err := platformAlloc(size)
	if err != nil {
		return nil, fmt.Errorf("execmem: alloc: %w", err)
	}
	return &Buffer{data: data, size: size, platform: pb}, nil
}

// Bytes returns the buffer's writable backing slice. Must not be called
// after Finalize.
func (b *Buffer) Bytes() []byte {
	if b.final {
		panic("execmem: Bytes called on a finalized (read/execute) buffer")
	}
	return b.data
}

// Finalize flips the buffer from read/write to read/execute. After this
// call the buffer's contents are immutable for the remainder of its
// life; the only valid operation left is Release.
func (b *Buffer) Finalize() error {
	if b.final {
		return nil
	}
	if err := platformFinalize(b.platform); err != nil {
		return fmt.Errorf("execmem: finalize: %w", err)
	}
	b.final = true
	return nil
}

// Release unmaps the buffer. The Buffer must not be used afterward.
func (b *Buffer) Release() error {
	if err := platformRelease(b.platform, b.size); err != nil {
		return fmt.Errorf("execmem: release: %w", err)
	}
	b.data = nil
	return nil
}
