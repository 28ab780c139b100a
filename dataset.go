package randomx

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rxhash-go/randomx/internal/ssjit"
)

const (
	// Dataset size in bytes (2080 MB for RandomX v1.1.x)
	datasetSize = 2080 * 1024 * 1024

	// Number of dataset items (each item is 64 bytes)
	datasetItems = datasetSize / 64

	// datasetJobMinItems is the floor a job's item count starts at: jobs
	// only shrink below it if the total item count divided by the worker
	// count falls under it, in which case the floor halves until every
	// worker gets at least one job.
	datasetJobMinItems = 32768
)

// dataset holds the full RandomX dataset for fast mode operation.
// The dataset is ~2 GB and is generated from the cache.
type dataset struct {
	data []byte // Full dataset (2+ GB)
}

// newDataset creates and initializes a new RandomX dataset from the cache.
// This is an expensive operation taking 20-30 seconds.
func newDataset(c *cache) (*dataset, error) {
	if c == nil || len(c.data) == 0 {
		return nil, fmt.Errorf("invalid cache")
	}

	ds := &dataset{
		data: allocateAlignedDataset(datasetSize),
	}
	ds.generate(c)
	return ds, nil
}

// datasetJob is one contiguous item range a worker claims and expands in
// a single call to ssjit.Range.
type datasetJob struct {
	start uint64
	count int
}

// planJobs partitions the item space into jobs of datasetJobMinItems
// items apiece (the last job takes the remainder and may be shorter),
// with at least one job per worker: the
// floor halves (doubling how many jobs fit) until the item count divided
// by the worker count clears it, so a handful of workers on a small
// dataset still each get a job instead of most sitting idle.
func planJobs(totalItems uint64, workers int) []datasetJob {
	if workers < 1 {
		workers = 1
	}
	minItems := uint64(datasetJobMinItems)
	for minItems > 1 && totalItems/minItems < uint64(workers) {
		minItems /= 2
	}
	if minItems < 1 {
		minItems = 1
	}

	jobs := make([]datasetJob, 0, totalItems/minItems+1)
	for start := uint64(0); start < totalItems; start += minItems {
		count := minItems
		if start+count > totalItems {
			count = totalItems - start
		}
		jobs = append(jobs, datasetJob{start: start, count: int(count)})
	}
	return jobs
}

// generate creates all dataset items from the cache. Worker goroutines
// atomically pop job indices from a shared counter and expand each job's
// item range via ssjit.Range, so a slow job never stalls workers that
// finished their own early.
func (ds *dataset) generate(c *cache) {
	workers := runtime.NumCPU()
	jobs := planJobs(datasetItems, workers)
	if workers > len(jobs) {
		workers = len(jobs)
	}

	fetch := func(registerValue uint64) []byte {
		return c.getItem(uint32(registerValue % uint64(cacheItems)))
	}

	var nextJob atomic.Uint64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := nextJob.Add(1) - 1
				if idx >= uint64(len(jobs)) {
					return
				}
				job := jobs[idx]
				offset := job.start * 64
				ssjit.Range(job.start, job.count, &c.programs, fetch, ds.data[offset:offset+uint64(job.count)*64])
			}
		}()
	}
	wg.Wait()
}

// release frees the dataset resources.
func (ds *dataset) release() {
	if ds.data != nil {
		releaseDataset(ds.data)
		ds.data = nil
	}
}

// getItem returns the dataset item at the specified index.
// Each item is 64 bytes. Thread-safe for reads after initialization.
func (ds *dataset) getItem(index uint64) []byte {
	if index >= datasetItems {
		index = index % datasetItems
	}
	offset := index * 64
	return ds.data[offset : offset+64]
}
