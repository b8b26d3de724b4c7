package watcher

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry tracks one active Watcher per repo path, process-global.
// Re-registering a repo replaces and closes the prior watcher (spec.md
// §4.6 lifecycle).
type Registry struct {
	mu       sync.Mutex
	watchers map[string]*Watcher
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{watchers: make(map[string]*Watcher)}
}

// Register starts (or replaces) the watcher for repoRoot.
func (r *Registry) Register(repoRoot, storageSub string, log zerolog.Logger) (*Watcher, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.watchers[repoRoot]; ok {
		prev.Close()
		delete(r.watchers, repoRoot)
	}

	w, err := New(repoRoot, storageSub, log)
	if err != nil {
		return nil, err
	}
	r.watchers[repoRoot] = w
	return w, nil
}

// Unregister stops and drops the watcher for repoRoot, if any.
func (r *Registry) Unregister(repoRoot string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if w, ok := r.watchers[repoRoot]; ok {
		w.Close()
		delete(r.watchers, repoRoot)
	}
}

// Get returns the active watcher for repoRoot, if registered.
func (r *Registry) Get(repoRoot string) (*Watcher, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watchers[repoRoot]
	return w, ok
}
