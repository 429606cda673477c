package scene

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"tent/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const (
	DefaultShaderName  = "generic"
	DefaultTexturePath = "Textures/wall.jpg"
	DefaultMaxLights   = 32
)

// Handle is a generation-checked reference to an entity. It stays valid
// while the entity is owned by the manager that issued it, regardless of
// how other entities are added, removed or moved.
type Handle struct {
	index uint32
	gen   uint32
}

// Valid reports whether h was issued by a manager. It says nothing about
// whether the entity still exists; use ObjectManager.Get for that.
func (h Handle) Valid() bool {
	return h.gen != 0
}

type slot struct {
	gen uint32
	d   Drawable
}

// LightSource is implemented by variants that contribute a light record
type LightSource interface {
	Record() LightRecord
}

// ObjectManager owns the scene's entities. Entities live in an arena of
// slots; order holds the insertion order the editor shows and draws.
type ObjectManager struct {
	slots []slot
	free  []uint32
	order []Handle

	lights   *LightBuffer
	shaders  ShaderRegistry
	textures TextureLoader

	defaultShader  string
	defaultTexture string

	log *zap.Logger
}

// ManagerOption configures an ObjectManager during construction
type ManagerOption func(*ObjectManager)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *ObjectManager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithMaxLights sets the light buffer capacity
func WithMaxLights(n int) ManagerOption {
	return func(m *ObjectManager) {
		m.lights = NewLightBuffer(n)
	}
}

// WithDefaultShader sets the shader name spawned primitives resolve
func WithDefaultShader(name string) ManagerOption {
	return func(m *ObjectManager) {
		m.defaultShader = name
	}
}

// WithDefaultTexture sets the texture path spawned primitives load
func WithDefaultTexture(path string) ManagerOption {
	return func(m *ObjectManager) {
		m.defaultTexture = path
	}
}

// NewObjectManager creates an empty manager. textures may be nil, in which
// case entities only carry texture paths.
func NewObjectManager(shaders ShaderRegistry, textures TextureLoader, opts ...ManagerOption) *ObjectManager {
	m := &ObjectManager{
		lights:         NewLightBuffer(DefaultMaxLights),
		shaders:        shaders,
		textures:       textures,
		defaultShader:  DefaultShaderName,
		defaultTexture: DefaultTexturePath,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add appends d to the collection. Tags are not checked for uniqueness.
// A drawable without a shader gets the default one; if that is not
// registered nothing is added.
func (m *ObjectManager) Add(d Drawable) (Handle, error) {
	if d == nil {
		return Handle{}, ErrNilDrawable
	}
	b := d.Common()
	if b.owner != nil {
		return Handle{}, ErrAlreadyOwned
	}
	shader, err := m.shaderFor(b)
	if err != nil {
		return Handle{}, err
	}
	b.Shader = shader
	h := m.alloc(d)
	b.owner = m
	m.order = append(m.order, h)
	return h, nil
}

// RemoveAt erases the entity at index. Later entities shift down by one and
// the removed entity's handle stops resolving.
func (m *ObjectManager) RemoveAt(index int) error {
	if index < 0 || index >= len(m.order) {
		return &BoundsError{Index: index, Len: len(m.order)}
	}
	h := m.order[index]
	m.log.Debug("removing object",
		zap.Int("index", index),
		zap.String("tag", m.slots[h.index].d.Common().Tag))
	m.release(h)
	m.order = slices.Delete(m.order, index, index+1)
	return nil
}

// Remove erases the entity h refers to
func (m *ObjectManager) Remove(h Handle) error {
	i := m.IndexOf(h)
	if i < 0 {
		return &BoundsError{Index: i, Len: len(m.order)}
	}
	return m.RemoveAt(i)
}

// Move repositions the entity at from so it ends up at index to
func (m *ObjectManager) Move(from, to int) error {
	n := len(m.order)
	if from < 0 || from >= n {
		return &BoundsError{Index: from, Len: n}
	}
	if to < 0 || to >= n {
		return &BoundsError{Index: to, Len: n}
	}
	h := m.order[from]
	m.order = slices.Delete(m.order, from, from+1)
	m.order = slices.Insert(m.order, to, h)
	return nil
}

// Clear releases every entity
func (m *ObjectManager) Clear() {
	for _, h := range m.order {
		m.release(h)
	}
	m.order = m.order[:0]
}

// Replace swaps the whole collection for ds. Nothing changes if any entry
// is nil, owned elsewhere, listed twice or left without a shader that
// resolves.
func (m *ObjectManager) Replace(ds []Drawable) error {
	seen := make(map[Drawable]struct{}, len(ds))
	shaders := make([]ShaderHandle, len(ds))
	for i, d := range ds {
		if d == nil {
			return fmt.Errorf("replace entry %d: %w", i, ErrNilDrawable)
		}
		if d.Common().owner != nil {
			return fmt.Errorf("replace entry %d: %w", i, ErrAlreadyOwned)
		}
		if _, dup := seen[d]; dup {
			return fmt.Errorf("replace entry %d: listed twice: %w", i, ErrAlreadyOwned)
		}
		seen[d] = struct{}{}
		shader, err := m.shaderFor(d.Common())
		if err != nil {
			return fmt.Errorf("replace entry %d: %w", i, err)
		}
		shaders[i] = shader
	}
	m.Clear()
	for i, d := range ds {
		b := d.Common()
		b.Shader = shaders[i]
		h := m.alloc(d)
		b.owner = m
		m.order = append(m.order, h)
	}
	return nil
}

// shaderFor returns b's shader, resolving the default when b has none
func (m *ObjectManager) shaderFor(b *Base) (ShaderHandle, error) {
	if b.Shader.Name != "" {
		return b.Shader, nil
	}
	shader, err := lookupShader(m.shaders, m.defaultShader)
	if err != nil {
		return ShaderHandle{}, &ConfigError{Op: "add", Name: m.defaultShader, Err: err}
	}
	return shader, nil
}

// LoadPrimitive spawns a fresh entity of kind wired to the default shader
// and texture. Unknown kinds and shaders create nothing. A texture that
// fails to load leaves a placeholder and is only logged.
func (m *ObjectManager) LoadPrimitive(kind Kind, tag string, position, rotation, scale mgl32.Vec3) (Handle, error) {
	d, err := NewDrawable(kind, tag, Transform{Position: position, Rotation: rotation, Scale: scale})
	if err != nil {
		m.log.Warn("primitive not created", zap.String("kind", kind.String()), zap.Error(err))
		return Handle{}, err
	}

	shader, err := lookupShader(m.shaders, m.defaultShader)
	if err != nil {
		m.log.Warn("primitive not created", zap.String("shader", m.defaultShader), zap.Error(err))
		return Handle{}, &ConfigError{Op: "load primitive", Name: m.defaultShader, Err: err}
	}

	b := d.Common()
	b.Shader = shader
	b.Texture, err = loadTexture(m.textures, m.defaultTexture)
	if err != nil {
		m.log.Warn("using placeholder texture", zap.String("path", m.defaultTexture), zap.Error(err))
	}
	return m.Add(d)
}

// DrawAll runs one frame: pack every light into the light buffer, upload
// and bind it once, then render each active entity in insertion order.
// A light pass that would overrun the buffer writes nothing and is
// reported; geometry is still drawn.
func (m *ObjectManager) DrawAll(b Backend) error {
	defer profiling.Track("scene.DrawAll")()

	var errs []error
	if err := m.syncLights(b); err != nil {
		errs = append(errs, err)
	}
	for _, h := range m.order {
		d := m.slots[h.index].d
		if !d.Common().Active {
			continue
		}
		if err := d.Render(b); err != nil {
			errs = append(errs, fmt.Errorf("draw %q: %w", d.Common().Tag, err))
		}
	}
	return errors.Join(errs...)
}

// syncLights packs light i at the i-th position among all lights in
// iteration order, active or not. Filtering lights before this loop would
// shift every later light's slot.
func (m *ObjectManager) syncLights(b Backend) error {
	defer profiling.Track("scene.syncLights")()

	n := m.LightCount()
	if n > m.lights.Capacity() {
		return &BufferOverrunError{Lights: n, Capacity: m.lights.Capacity()}
	}

	m.lights.Reset()
	i := 0
	for _, h := range m.order {
		d := m.slots[h.index].d
		if !d.IsLight() {
			continue
		}
		src, ok := d.(LightSource)
		if !ok {
			return fmt.Errorf("entity %q is flagged as a light but has no light record", d.Common().Tag)
		}
		if err := m.lights.Pack(i, src.Record()); err != nil {
			return err
		}
		i++
	}

	if data := m.lights.Bytes(); len(data) > 0 {
		if err := b.WriteLights(0, data); err != nil {
			return fmt.Errorf("write light buffer: %w", err)
		}
	}
	if err := b.BindLights(); err != nil {
		return fmt.Errorf("bind light buffer: %w", err)
	}
	return nil
}

// Len returns the number of entities
func (m *ObjectManager) Len() int {
	return len(m.order)
}

// LightCount returns the number of light entities, active or not
func (m *ObjectManager) LightCount() int {
	n := 0
	for _, h := range m.order {
		if m.slots[h.index].d.IsLight() {
			n++
		}
	}
	return n
}

// Lights returns the light entities in buffer slot order
func (m *ObjectManager) Lights() []*Light {
	var out []*Light
	for _, h := range m.order {
		if l, ok := m.slots[h.index].d.(*Light); ok {
			out = append(out, l)
		}
	}
	return out
}

// LightBuffer exposes the staging buffer filled by the last DrawAll
func (m *ObjectManager) LightBuffer() *LightBuffer {
	return m.lights
}

// At returns the entity at index, or nil when out of range
func (m *ObjectManager) At(index int) Drawable {
	if index < 0 || index >= len(m.order) {
		return nil
	}
	return m.slots[m.order[index].index].d
}

// HandleAt returns the handle of the entity at index
func (m *ObjectManager) HandleAt(index int) (Handle, error) {
	if index < 0 || index >= len(m.order) {
		return Handle{}, &BoundsError{Index: index, Len: len(m.order)}
	}
	return m.order[index], nil
}

// Get resolves a handle
func (m *ObjectManager) Get(h Handle) (Drawable, bool) {
	if !h.Valid() || int(h.index) >= len(m.slots) {
		return nil, false
	}
	s := m.slots[h.index]
	if s.gen != h.gen || s.d == nil {
		return nil, false
	}
	return s.d, true
}

// IndexOf returns the current position of h, or -1
func (m *ObjectManager) IndexOf(h Handle) int {
	if _, ok := m.Get(h); !ok {
		return -1
	}
	return slices.Index(m.order, h)
}

// All iterates the entities in draw order with their indices
func (m *ObjectManager) All() iter.Seq2[int, Drawable] {
	return func(yield func(int, Drawable) bool) {
		for i, h := range m.order {
			if !yield(i, m.slots[h.index].d) {
				return
			}
		}
	}
}

func (m *ObjectManager) alloc(d Drawable) Handle {
	if n := len(m.free); n > 0 {
		idx := m.free[n-1]
		m.free = m.free[:n-1]
		m.slots[idx].d = d
		return Handle{index: idx, gen: m.slots[idx].gen}
	}
	m.slots = append(m.slots, slot{gen: 1, d: d})
	return Handle{index: uint32(len(m.slots) - 1), gen: 1}
}

func (m *ObjectManager) release(h Handle) {
	s := &m.slots[h.index]
	s.d.Common().owner = nil
	s.d = nil
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	m.free = append(m.free, h.index)
}

func lookupShader(shaders ShaderRegistry, name string) (ShaderHandle, error) {
	if shaders == nil {
		return ShaderHandle{}, ErrUnknownShader
	}
	h, err := shaders.Lookup(name)
	if err != nil {
		if errors.Is(err, ErrUnknownShader) {
			return ShaderHandle{}, err
		}
		return ShaderHandle{}, fmt.Errorf("%w: %w", ErrUnknownShader, err)
	}
	return h, nil
}

func loadTexture(textures TextureLoader, path string) (Texture, error) {
	placeholder := Texture{Path: path}
	if textures == nil || path == "" {
		return placeholder, nil
	}
	tex, err := textures.Load(path)
	if err != nil {
		return placeholder, err
	}
	tex.Path = path
	return tex, nil
}
