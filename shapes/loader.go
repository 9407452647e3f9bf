package shapes

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Loader reads and compiles profiles from disk, caching the compiled
// result per path. Concurrent loads of the same path are collapsed into
// a single read.
type Loader struct {
	g  singleflight.Group
	mu struct {
		sync.Mutex
		cache map[string]*Compiled
	}
}

// NewLoader creates an empty loader.
func NewLoader() *Loader {
	l := &Loader{}
	l.mu.cache = make(map[string]*Compiled)
	return l
}

func (l *Loader) getCached(path string) (*Compiled, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.mu.cache[path]
	return c, ok
}

// Load returns the compiled profile at path, reading the file at most
// once per cache lifetime.
func (l *Loader) Load(path string) (*Compiled, error) {
	if c, ok := l.getCached(path); ok {
		return c, nil
	}
	ci, err, _ := l.g.Do(path, func() (interface{}, error) {
		p, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		c, err := p.Compile()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		l.mu.cache[path] = c
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return ci.(*Compiled), nil
}

// Invalidate drops the cached profile for path, forcing the next Load to
// reread the file.
func (l *Loader) Invalidate(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.mu.cache, path)
}
