package scene

import (
	"errors"
	"fmt"
	"os"

	"tent/internal/profiling"
	"tent/pkg/scenefile"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// LightPolicy decides what Load does with light records
type LightPolicy int

const (
	// RetainLights inserts lights with their stored color and attenuation
	RetainLights LightPolicy = iota
	// DropLights validates light records but does not insert them. Scenes
	// written by older editors relied on this.
	DropLights
)

func (p LightPolicy) String() string {
	if p == DropLights {
		return "drop"
	}
	return "retain"
}

// ParseLightPolicy maps "retain" and "drop" to a policy
func ParseLightPolicy(s string) (LightPolicy, error) {
	switch s {
	case "retain", "":
		return RetainLights, nil
	case "drop":
		return DropLights, nil
	}
	return RetainLights, fmt.Errorf("unknown light policy %q", s)
}

// RecordIssue describes a record that was skipped or loaded degraded
type RecordIssue struct {
	Record int
	Tag    string
	Err    error
}

// LoadReport summarizes a successful Load
type LoadReport struct {
	Path         string
	Loaded       int
	Lights       int
	DroppedLight int
	Skipped      []RecordIssue
	Placeholders []RecordIssue
}

// Loader moves scenes between an ObjectManager and scene files. Shader and
// texture lookups go through the manager's collaborators.
type Loader struct {
	policy LightPolicy
	log    *zap.Logger

	hash   uint64
	hashed bool
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLightPolicy selects how light records are loaded
func WithLightPolicy(p LightPolicy) LoaderOption {
	return func(l *Loader) { l.policy = p }
}

// WithLoaderLogger sets the logger
func WithLoaderLogger(log *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{policy: RetainLights, log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the light policy in effect
func (l *Loader) Policy() LightPolicy {
	return l.policy
}

// Load replaces the contents of m with the scene stored at path. On any
// returned error m is left exactly as it was. Records with an unknown type
// or shader are skipped and listed in the report.
func (l *Loader) Load(m *ObjectManager, path string) (*LoadReport, error) {
	defer profiling.Track("scene.Load")()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	doc, err := scenefile.Decode(data)
	if err != nil {
		return nil, toParseError(path, err)
	}

	report := &LoadReport{Path: path}
	built := make([]Drawable, 0, len(doc.SceneObjects))
	for i, rec := range doc.SceneObjects {
		d, err := l.build(m, path, i, rec, report)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				l.log.Error("scene load aborted", zap.String("path", path), zap.Error(err))
				return nil, err
			}
			l.log.Error("skipping scene record",
				zap.Int("record", i),
				zap.String("tag", rec.Tag),
				zap.Error(err))
			report.Skipped = append(report.Skipped, RecordIssue{Record: i, Tag: rec.Tag, Err: err})
			continue
		}
		if d == nil {
			continue
		}
		built = append(built, d)
	}

	if err := m.Replace(built); err != nil {
		return nil, err
	}
	report.Loaded = len(built)
	l.remember(m)

	l.log.Info("scene loaded",
		zap.String("path", path),
		zap.Int("entities", report.Loaded),
		zap.Int("lights", report.Lights),
		zap.Int("skipped", len(report.Skipped)),
		zap.Stringer("lightPolicy", l.policy))
	return report, nil
}

// build turns one record into a drawable. A nil drawable with a nil error
// means the record was intentionally not inserted.
func (l *Loader) build(m *ObjectManager, path string, i int, rec scenefile.Record, report *LoadReport) (Drawable, error) {
	kind := ParseKind(rec.Type)
	if kind == KindNone {
		return nil, &ConfigError{Op: "load record", Name: rec.Type, Err: ErrUnknownKind}
	}
	if (kind == KindLight) != rec.IsLight {
		return nil, &ParseError{
			Path:   path,
			Record: i,
			Field:  scenefile.FieldIsLight,
			Err:    fmt.Errorf("%w: type %s with isLight=%t", ErrInvalidField, rec.Type, rec.IsLight),
		}
	}

	color := mgl32.Vec4{1, 1, 1, 1}
	att := DefaultAttenuation()
	if kind == KindLight {
		if rec.Color != nil {
			color = mgl32.Vec4(*rec.Color)
		}
		if rec.Attenuation != nil {
			att = Attenuation{
				Constant:  rec.Attenuation.Constant,
				Linear:    rec.Attenuation.Linear,
				Quadratic: rec.Attenuation.Quadratic,
			}
		}
		if err := att.Validate(); err != nil {
			return nil, &ParseError{Path: path, Record: i, Field: scenefile.FieldAttenuation, Err: err}
		}
		if l.policy == DropLights {
			report.DroppedLight++
			return nil, nil
		}
	}

	shader, err := lookupShader(m.shaders, rec.Shader)
	if err != nil {
		return nil, &ConfigError{Op: "load record", Name: rec.Shader, Err: err}
	}

	d, err := NewDrawable(kind, rec.Tag, Transform{
		Position: mgl32.Vec3(rec.Position),
		Rotation: mgl32.Vec3(rec.Rotation),
		Scale:    mgl32.Vec3(rec.Scale),
	})
	if err != nil {
		return nil, err
	}

	b := d.Common()
	b.Active = rec.IsActive
	b.Shader = shader
	b.Texture, err = loadTexture(m.textures, rec.Texture)
	if err != nil {
		l.log.Warn("using placeholder texture",
			zap.Int("record", i),
			zap.String("path", rec.Texture),
			zap.Error(err))
		report.Placeholders = append(report.Placeholders, RecordIssue{Record: i, Tag: rec.Tag, Err: err})
	}

	if light, ok := d.(*Light); ok {
		light.Color = color
		light.Attenuation = att
		report.Lights++
	}
	return d, nil
}

// Save writes every entity of m to path in collection order. The previous
// file is replaced atomically.
func (l *Loader) Save(m *ObjectManager, path string) error {
	defer profiling.Track("scene.Save")()

	data, err := scenefile.Marshal(ToDocument(m))
	if err != nil {
		// nothing is written for a collection that cannot be encoded
		return &ParseError{Path: path, Record: -1, Err: fmt.Errorf("%w: %v", ErrInvalidField, err)}
	}
	if err := scenefile.WriteFile(path, data); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	l.hash = xxhash.Sum64(data)
	l.hashed = true

	l.log.Info("scene saved", zap.String("path", path), zap.Int("entities", m.Len()))
	return nil
}

// Modified reports whether m differs from what was last loaded or saved.
// A manager that was never loaded or saved is modified once it holds
// anything.
func (l *Loader) Modified(m *ObjectManager) bool {
	if !l.hashed {
		return m.Len() > 0
	}
	data, err := scenefile.Marshal(ToDocument(m))
	if err != nil {
		return true
	}
	return xxhash.Sum64(data) != l.hash
}

// Forget drops the recorded baseline, as after New Scene
func (l *Loader) Forget() {
	l.hash = 0
	l.hashed = false
}

func (l *Loader) remember(m *ObjectManager) {
	data, err := scenefile.Marshal(ToDocument(m))
	if err != nil {
		l.hashed = false
		return
	}
	l.hash = xxhash.Sum64(data)
	l.hashed = true
}

// ToDocument converts the collection to its file form
func ToDocument(m *ObjectManager) *scenefile.Document {
	doc := &scenefile.Document{SceneObjects: make([]scenefile.Record, 0, m.Len())}
	for _, d := range m.All() {
		b := d.Common()
		rec := scenefile.Record{
			Type:     d.Kind().String(),
			Tag:      b.Tag,
			Position: b.Position,
			Rotation: b.Rotation,
			Scale:    b.Scale,
			Texture:  b.Texture.Path,
			Shader:   b.Shader.Name,
			IsActive: b.Active,
			IsLight:  d.IsLight(),
		}
		if light, ok := d.(*Light); ok {
			c := [4]float32(light.Color)
			rec.Color = &c
			rec.Attenuation = &scenefile.Attenuation{
				Constant:  light.Attenuation.Constant,
				Linear:    light.Attenuation.Linear,
				Quadratic: light.Attenuation.Quadratic,
			}
		}
		doc.SceneObjects = append(doc.SceneObjects, rec)
	}
	return doc
}

func toParseError(path string, err error) error {
	var fe *scenefile.FieldError
	if errors.As(err, &fe) {
		return &ParseError{Path: path, Record: fe.Record, Field: fe.Field, Err: fe.Err}
	}
	return &ParseError{Path: path, Record: -1, Err: fmt.Errorf("%w: %v", ErrMalformedScene, err)}
}
