// Package respfile implements the response-file writer (§4.2) and the
// process-wide temp-file registry that reclaims the paths it creates.
package respfile

import (
	"os"
	"sync"
)

// Registry records temp paths and reclaims them at process end, unless
// keep-temps was requested (§4.2, §5's "Temp-file registry is process-wide;
// cleared at exit unless keep-temps is set"). A Registry is the one piece of
// the driver context in §9's "fold into a single driver context" note that
// genuinely needs to be shared and mutated from multiple call sites, so it
// is built around a mutex rather than assumed single-threaded.
type Registry struct {
	mu        sync.Mutex
	paths     []string
	keepTemps bool
}

// NewRegistry creates a Registry. When keepTemps is true, Cleanup is a
// no-op -- paths are left on disk for debugging.
func NewRegistry(keepTemps bool) *Registry {
	return &Registry{keepTemps: keepTemps}
}

// Register records path so Cleanup will remove it later.
func (r *Registry) Register(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Cleanup removes every registered path, unless keep-temps was requested.
// It collects and returns every removal error rather than stopping at the
// first one, since leaving some temp files behind shouldn't prevent
// cleaning up the rest.
func (r *Registry) Cleanup() []error {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	keep := r.keepTemps
	r.mu.Unlock()

	if keep {
		return nil
	}

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errs
}
