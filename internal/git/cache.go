package git

import (
	"sync"
	"time"
)

// CachedService wraps a Service with a TTL cache around Snapshot, the one
// expensive read. Write operations invalidate the cache so the next
// snapshot is fresh.
//
// Multiple consumers (the refresh coordinator, the status bar, a
// registry-wide refresh) may request a snapshot within the same cycle;
// without caching each request spawns a dozen git subprocesses.
type CachedService struct {
	inner Service
	ttl   time.Duration

	mu     sync.Mutex
	snap   *Snapshot
	err    error
	count  int
	expiry time.Time
}

// Compile-time check.
var _ Service = (*CachedService)(nil)

// NewCachedService wraps an existing Service with a TTL cache.
// Recommended TTL: 1-2 seconds, enough to coalesce one refresh cycle.
func NewCachedService(inner Service, ttl time.Duration) *CachedService {
	return &CachedService{inner: inner, ttl: ttl}
}

// Invalidate clears the cached snapshot. Called after any write.
func (c *CachedService) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.err = nil
	c.mu.Unlock()
}

func (c *CachedService) invalidateAndReturn(err error) error {
	if err == nil {
		c.Invalidate()
	}
	return err
}

// RepoRoot delegates to the inner service.
func (c *CachedService) RepoRoot() string { return c.inner.RepoRoot() }

// GitDir delegates to the inner service.
func (c *CachedService) GitDir() string { return c.inner.GitDir() }

// Snapshot returns the cached snapshot when fresh and gathered with at
// least recentCount recent commits; otherwise delegates and caches.
func (c *CachedService) Snapshot(recentCount int) (*Snapshot, error) {
	c.mu.Lock()
	if c.snap != nil && c.count >= recentCount && time.Now().Before(c.expiry) {
		snap, err := c.snap, c.err
		c.mu.Unlock()
		return snap, err
	}
	c.mu.Unlock()

	snap, err := c.inner.Snapshot(recentCount)

	c.mu.Lock()
	c.snap, c.err = snap, err
	c.count = recentCount
	c.expiry = time.Now().Add(c.ttl)
	c.mu.Unlock()
	return snap, err
}

// Stage stages paths and invalidates the cache.
func (c *CachedService) Stage(paths ...string) error {
	return c.invalidateAndReturn(c.inner.Stage(paths...))
}

// StageAll stages all changes and invalidates the cache.
func (c *CachedService) StageAll() error {
	return c.invalidateAndReturn(c.inner.StageAll())
}

// Unstage unstages paths and invalidates the cache.
func (c *CachedService) Unstage(paths ...string) error {
	return c.invalidateAndReturn(c.inner.Unstage(paths...))
}

// UnstageAll unstages all changes and invalidates the cache.
func (c *CachedService) UnstageAll() error {
	return c.invalidateAndReturn(c.inner.UnstageAll())
}

// Checkout restores paths and invalidates the cache.
func (c *CachedService) Checkout(paths ...string) error {
	return c.invalidateAndReturn(c.inner.Checkout(paths...))
}

// Remove deletes untracked paths and invalidates the cache.
func (c *CachedService) Remove(paths ...string) error {
	return c.invalidateAndReturn(c.inner.Remove(paths...))
}

// ApplyPatch applies a patch and invalidates the cache.
func (c *CachedService) ApplyPatch(patch string, opts ApplyOptions) error {
	return c.invalidateAndReturn(c.inner.ApplyPatch(patch, opts))
}

// StashPop pops a stash entry and invalidates the cache.
func (c *CachedService) StashPop(index int) error {
	return c.invalidateAndReturn(c.inner.StashPop(index))
}

// StashApply applies a stash entry and invalidates the cache.
func (c *CachedService) StashApply(index int) error {
	return c.invalidateAndReturn(c.inner.StashApply(index))
}

// StashDrop drops a stash entry and invalidates the cache.
func (c *CachedService) StashDrop(index int) error {
	return c.invalidateAndReturn(c.inner.StashDrop(index))
}
