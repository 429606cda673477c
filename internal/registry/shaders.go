package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"tent/internal/scene"

	"go.uber.org/zap"
)

var ErrRegistryClosed = errors.New("shader registry closed")

// ShaderSpec names a shading program and its source files
type ShaderSpec struct {
	Name     string
	Vertex   string
	Fragment string
}

// CompileFunc builds the program for spec. release frees it again.
type CompileFunc func(spec ShaderSpec) (id uint32, release func(), err error)

type shaderEntry struct {
	id      uint32
	release func()
}

// Shaders maps shader names to compiled programs. It is created once at
// startup, filled by Init and emptied by Close.
type Shaders struct {
	mu      sync.RWMutex
	entries map[string]shaderEntry
	closed  bool
	log     *zap.Logger
}

func NewShaders(log *zap.Logger) *Shaders {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shaders{entries: make(map[string]shaderEntry), log: log}
}

// Init compiles every spec. Programs that fail are left out and their
// errors are joined; the rest stay usable.
func (r *Shaders) Init(specs []ShaderSpec, compile CompileFunc) error {
	var errs []error
	for _, spec := range specs {
		id, release, err := compile(spec)
		if err != nil {
			r.log.Error("shader failed to build", zap.String("shader", spec.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("shader %q: %w", spec.Name, err))
			continue
		}
		if err := r.Register(spec.Name, id, release); err != nil {
			if release != nil {
				release()
			}
			errs = append(errs, err)
			continue
		}
		r.log.Debug("shader registered", zap.String("shader", spec.Name), zap.Uint32("id", id))
	}
	return errors.Join(errs...)
}

// Register adds or replaces a program. A replaced program is released.
func (r *Shaders) Register(name string, id uint32, release func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRegistryClosed
	}
	if old, ok := r.entries[name]; ok && old.release != nil {
		old.release()
	}
	r.entries[name] = shaderEntry{id: id, release: release}
	return nil
}

// Lookup implements scene.ShaderRegistry
func (r *Shaders) Lookup(name string) (scene.ShaderHandle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return scene.ShaderHandle{}, ErrRegistryClosed
	}
	e, ok := r.entries[name]
	if !ok {
		return scene.ShaderHandle{}, fmt.Errorf("%w: %q", scene.ErrUnknownShader, name)
	}
	return scene.ShaderHandle{Name: name, ID: e.id}, nil
}

// Names returns the registered names in sorted order
func (r *Shaders) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases every program. Later lookups fail with ErrRegistryClosed.
func (r *Shaders) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	for name, e := range r.entries {
		if e.release != nil {
			e.release()
		}
		delete(r.entries, name)
	}
	r.closed = true
}
