package status

import (
	"sort"
	"sync"
)

// Registry tracks the open repositories, keyed by working-directory
// root. It is owned by the application and passed to the operations
// that need cross-repository enumeration; nothing reaches it as
// ambient state. Each root has its own tree, permit, and buffer; the
// registry adds no cross-repository synchronization.
type Registry struct {
	mu    sync.Mutex
	repos map[string]*Repository
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{repos: make(map[string]*Repository)}
}

// Add registers a repository under its workdir, replacing any previous
// handle for the same root.
func (g *Registry) Add(r *Repository) {
	g.mu.Lock()
	g.repos[r.Workdir()] = r
	g.mu.Unlock()
}

// Remove drops the repository registered under workdir.
func (g *Registry) Remove(workdir string) {
	g.mu.Lock()
	delete(g.repos, workdir)
	g.mu.Unlock()
}

// Get returns the repository for workdir, or nil.
func (g *Registry) Get(workdir string) *Repository {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.repos[workdir]
}

// All returns the registered repositories in stable workdir order.
func (g *Registry) All() []*Repository {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.repos))
	for k := range g.repos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*Repository, 0, len(keys))
	for _, k := range keys {
		out = append(out, g.repos[k])
	}
	return out
}

// RefreshAll requests a refresh on every registered repository.
// Busy repositories are skipped, matching single-repository semantics.
func (g *Registry) RefreshAll() {
	for _, r := range g.All() {
		_, _ = r.Refresh(KeyPath{})
	}
}
