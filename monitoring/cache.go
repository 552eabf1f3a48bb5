package monitoring

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/mohae/deepcopy"

	"github.com/kimm528/ringfitmanager/config"
	"github.com/kimm528/ringfitmanager/health"
)

type cacheEntry struct {
	snapshot health.Snapshot
	expiry   time.Time
}

// SnapshotCache keeps the latest snapshot of each device for a short
// while. Readers receive copies they are free to modify.
type SnapshotCache struct {
	expiration time.Duration
	lru        *simplelru.LRU
	mu         *sync.Mutex
	now        func() time.Time
}

func NewSnapshotCache(cfg *config.Config) (*SnapshotCache, error) {
	return NewSnapshotCacheWithClock(cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL, time.Now)
}

func NewSnapshotCacheWithClock(size int, expiration time.Duration, now func() time.Time) (*SnapshotCache, error) {
	var onEvict simplelru.EvictCallback
	lru, err := simplelru.NewLRU(size, onEvict)
	if err != nil {
		return nil, err
	}

	return &SnapshotCache{
		expiration: expiration,
		lru:        lru,
		mu:         &sync.Mutex{},
		now:        now,
	}, nil
}

func (c *SnapshotCache) Get(mac string) (health.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(mac)
	if !ok {
		return health.Snapshot{}, false
	}
	entry := e.(cacheEntry)
	if c.now().After(entry.expiry) {
		c.lru.Remove(mac)
		return health.Snapshot{}, false
	}
	return deepcopy.Copy(entry.snapshot).(health.Snapshot), true
}

func (c *SnapshotCache) Add(mac string, snapshot health.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.lru.Add(mac, cacheEntry{
		snapshot: deepcopy.Copy(snapshot).(health.Snapshot),
		expiry:   c.now().Add(c.expiration),
	})
}

func (c *SnapshotCache) Remove(mac string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Remove(mac)
}

func (c *SnapshotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lru.Len()
}
