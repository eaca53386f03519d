package ipmark

// Cache maps raw address text to a previously rendered decoration.
//
// A Cache grows monotonically over one run; there is no eviction. Callers
// follow a check-then-insert discipline: probe with Get, and only compute
// and Put on a miss. A hit performs a single map lookup and allocates
// nothing. The cache is single-owner; share across concurrent processing
// contexts only with external synchronization.
type Cache struct {
	entries map[string]string
}

// cacheSizeHint pre-sizes the map for typical log runs to limit rehashing.
const cacheSizeHint = 4096

// NewCache creates an empty decoration cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]string, cacheSizeHint)}
}

// Get returns the cached decoration for key.
//
// The string conversion in the map index does not allocate, so the hit path
// is allocation-free.
func (c *Cache) Get(key []byte) (string, bool) {
	value, ok := c.entries[string(key)]
	return value, ok
}

// Put stores a decoration for key, overwriting any previous value.
func (c *Cache) Put(key []byte, value string) {
	c.entries[string(key)] = value
}

// Len returns the number of cached decorations.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Snapshot copies the cache contents, for persistence between runs.
func (c *Cache) Snapshot() map[string]string {
	out := make(map[string]string, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}

// Restore merges previously snapshotted entries into the cache. Existing
// keys are not overwritten.
func (c *Cache) Restore(entries map[string]string) {
	for k, v := range entries {
		if _, ok := c.entries[k]; !ok {
			c.entries[k] = v
		}
	}
}
