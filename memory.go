package randomx

import (
	"sync"
	"unsafe"
)

// Memory alignment for optimal CPU cache performance; scratchpad sizing
// itself lives in scratchpad.go.
const cacheLineSize = 64

// Global pools for memory reuse to minimize allocations

var (
	// vmPool recycles virtualMachine instances (each carrying its own 2
	// MiB scratchpad) across hash calls. Get returns a VM with a stale
	// register file and scratchpad body; callers must call reset before
	// using it, which reseeds both.
	vmPool = sync.Pool{
		New: func() interface{} {
			return newVM()
		},
	}
)

// poolGetVM retrieves a VM instance from the pool. The caller must call
// vm.reset(input, ds, c) before use.
func poolGetVM() *virtualMachine {
	return vmPool.Get().(*virtualMachine)
}

// poolPutVM clears sensitive state and returns a VM instance to the pool.
func poolPutVM(vm *virtualMachine) {
	if vm != nil {
		vm.release()
		vmPool.Put(vm)
	}
}

// allocateAlignedDataset allocates a large aligned buffer for dataset storage.
// The dataset is read-only after initialization, so GC scanning is minimal.
func allocateAlignedDataset(size int) []byte {
	// Allocate slightly larger to allow alignment
	buf := make([]byte, size+cacheLineSize)

	// Calculate aligned offset
	offset := cacheLineSize - (int(uintptr(unsafe.Pointer(&buf[0]))) % cacheLineSize)
	if offset == cacheLineSize {
		offset = 0
	}

	// Return aligned slice
	return buf[offset : offset+size]
}

// releaseDataset releases a dataset buffer.
// In Go, we rely on GC, but we can hint that the data is no longer needed.
func releaseDataset(data []byte) {
	// Clear reference to help GC
	// The actual memory will be freed by the garbage collector
	data = nil
}

// zeroBytes clears a byte slice securely.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
