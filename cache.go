package randomx

import (
	"github.com/rxhash-go/randomx/internal/argon2d"
	"github.com/rxhash-go/randomx/internal/blake2rng"
	"github.com/rxhash-go/randomx/internal/superscalar"
)

const (
	// cacheSize is the RandomX cache size in bytes: 262144 Argon2d blocks
	// of 1024 bytes each (256 MiB).
	cacheSize = argon2d.CacheMemoryBlocks * 1024

	// cacheItems is the number of 64-byte items the cache can be read as.
	cacheItems = cacheSize / 64

	// datasetProgramCount is the number of superscalar programs chained
	// together to expand one cache item into one dataset item (spec §4.7).
	datasetProgramCount = 8
)

// cache holds the RandomX cache initialized from a seed using Argon2d.
// The cache is used to generate dataset items in light mode or to
// initialize the full dataset in fast mode.
type cache struct {
	data     []byte                                  // Raw cache data (256 MiB)
	key      []byte                                   // Cache key (seed) used to generate this cache
	programs [datasetProgramCount]*superscalar.Program // dataset item expansion chain
}

// newCache creates a new RandomX cache from the given seed.
func newCache(seed []byte) (*cache, error) {
	if len(seed) == 0 {
		return nil, newError(InvalidArgument, "cache seed must not be empty")
	}

	cacheData, err := argon2d.Argon2dCache(seed)
	if err != nil {
		return nil, wrapError(Internal, "argon2d cache construction failed", err)
	}
	if len(cacheData) != cacheSize {
		return nil, wrapError(Internal, "argon2d output size mismatch", nil)
	}

	c := &cache{
		key:  append([]byte(nil), seed...),
		data: cacheData,
	}
	c.generatePrograms()
	return c, nil
}

// generatePrograms derives the 8 superscalar programs dataset-item
// expansion chains through, one continuous blake2rng.Generator seeded
// from the cache key (spec §4.5/§4.7: no per-program reseed — each
// program's instructions continue drawing from where the previous one
// left off).
func (c *cache) generatePrograms() {
	rng := blake2rng.New(c.key, 0)
	for i := 0; i < datasetProgramCount; i++ {
		c.programs[i] = superscalar.Generate(rng)
	}
}

// release frees the cache resources.
func (c *cache) release() {
	if c.data != nil {
		zeroBytes(c.data)
		c.data = nil
	}
	c.key = nil
}

// getItem returns the cache item at the specified index. Each item is
// 64 bytes.
func (c *cache) getItem(index uint32) []byte {
	if index >= cacheItems {
		index = index % cacheItems
	}
	offset := index * 64
	return c.data[offset : offset+64]
}
