package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/bentpower/ercotsum-go/types"
)

// SnapshotCache keeps the last computed snapshot on disk with a short
// expiry window. Staleness here is a freshness policy, not correctness:
// a concurrent writer uses the same atomic replace as the data files.
type SnapshotCache struct {
	path   string
	maxAge time.Duration
}

func NewSnapshotCache(path string, maxAge time.Duration) *SnapshotCache {
	return &SnapshotCache{path: path, maxAge: maxAge}
}

// Load returns the cached snapshot when it is still within the expiry
// window. Any read or decode problem just means a cache miss.
func (c *SnapshotCache) Load() (*types.Snapshot, bool) {
	if c.maxAge <= 0 {
		return nil, false
	}
	info, err := os.Stat(c.path)
	if err != nil || time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}
	var snap types.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (c *SnapshotCache) Store(snap *types.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return atomicWrite(c.path, data)
}
