// Package editor holds the state of an editing session: which scene file is
// open, which entity is selected and the edits the inspector applies.
package editor

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"unicode/utf8"

	"tent/internal/scene"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// MaxTagBytes is the longest tag the generator accepts
const MaxTagBytes = 31

var (
	ErrNoSelection = errors.New("nothing selected")
	ErrNotLight    = errors.New("selection is not a light")
	ErrNoPath      = errors.New("scene has no file path")
	ErrNonFinite   = errors.New("transform has a non-finite component")
)

// GeneratorKinds are the kinds offered by the primitive generator, in
// combo box order
var GeneratorKinds = []scene.Kind{scene.KindCube, scene.KindQuad, scene.KindSphere, scene.KindLight}

// Row is one visible line of the object list
type Row struct {
	Index    int
	Handle   scene.Handle
	Tag      string
	Kind     scene.Kind
	Active   bool
	Selected bool
}

// Session is the editor's view of one scene
type Session struct {
	objects *scene.ObjectManager
	loader  *scene.Loader
	log     *zap.Logger

	path     string
	selected scene.Handle
	filter   TextFilter

	// hash of the file contents last read or written by this session
	diskHash uint64
}

func NewSession(objects *scene.ObjectManager, loader *scene.Loader, path string, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{objects: objects, loader: loader, path: path, log: log}
}

// Objects returns the managed collection
func (s *Session) Objects() *scene.ObjectManager {
	return s.objects
}

// Path returns the scene file path
func (s *Session) Path() string {
	return s.path
}

// Title is the window title: file name plus a marker when modified
func (s *Session) Title(app string) string {
	name := "untitled"
	if s.path != "" {
		name = filepath.Base(s.path)
	}
	if s.Modified() {
		name += "*"
	}
	return fmt.Sprintf("%s - %s", app, name)
}

// Modified reports unsaved changes
func (s *Session) Modified() bool {
	return s.loader.Modified(s.objects)
}

// TruncateTag cuts tag to MaxTagBytes without splitting a UTF-8 sequence
func TruncateTag(tag string) string {
	if len(tag) <= MaxTagBytes {
		return tag
	}
	cut := MaxTagBytes
	for cut > 0 && !utf8.RuneStart(tag[cut]) {
		cut--
	}
	return tag[:cut]
}

// Spawn creates a primitive from the generator's combo index at the origin
// with unit scale
func (s *Session) Spawn(comboIndex int, tag string) (scene.Handle, error) {
	kind := scene.KindNone
	if comboIndex >= 0 && comboIndex < len(GeneratorKinds) {
		kind = GeneratorKinds[comboIndex]
	}
	t := scene.DefaultTransform()
	h, err := s.objects.LoadPrimitive(kind, TruncateTag(tag), t.Position, t.Rotation, t.Scale)
	if err != nil {
		return scene.Handle{}, err
	}
	s.log.Debug("spawned", zap.Stringer("kind", kind), zap.String("tag", tag))
	return h, nil
}

// SetFilter replaces the object list filter
func (s *Session) SetFilter(text string) {
	s.filter = ParseFilter(text)
}

// Filter returns the current filter
func (s *Session) Filter() TextFilter {
	return s.filter
}

// Rows lists the entities that pass the filter in collection order
func (s *Session) Rows() []Row {
	var rows []Row
	for i, d := range s.objects.All() {
		b := d.Common()
		if !s.filter.Pass(b.Tag) {
			continue
		}
		h, _ := s.objects.HandleAt(i)
		rows = append(rows, Row{
			Index:    i,
			Handle:   h,
			Tag:      b.Tag,
			Kind:     d.Kind(),
			Active:   b.Active,
			Selected: h == s.selected,
		})
	}
	return rows
}

// Select makes h the selection. A stale handle clears it.
func (s *Session) Select(h scene.Handle) bool {
	if _, ok := s.objects.Get(h); !ok {
		s.selected = scene.Handle{}
		return false
	}
	s.selected = h
	return true
}

// SelectIndex selects the entity at a collection index
func (s *Session) SelectIndex(i int) bool {
	h, err := s.objects.HandleAt(i)
	if err != nil {
		s.selected = scene.Handle{}
		return false
	}
	return s.Select(h)
}

// ClearSelection drops the selection
func (s *Session) ClearSelection() {
	s.selected = scene.Handle{}
}

// Selected returns the selected entity. It implements the selection
// outline's source.
func (s *Session) Selected() (scene.Drawable, bool) {
	return s.objects.Get(s.selected)
}

// SelectedIndex returns the collection index of the selection, or -1
func (s *Session) SelectedIndex() int {
	return s.objects.IndexOf(s.selected)
}

// RemoveSelected deletes the selected entity and clears the selection
func (s *Session) RemoveSelected() error {
	i := s.SelectedIndex()
	if i < 0 {
		return ErrNoSelection
	}
	if err := s.objects.RemoveAt(i); err != nil {
		return err
	}
	s.selected = scene.Handle{}
	return nil
}

func (s *Session) selection() (*scene.Base, error) {
	d, ok := s.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	return d.Common(), nil
}

func (s *Session) selectedLight() (*scene.Light, error) {
	d, ok := s.Selected()
	if !ok {
		return nil, ErrNoSelection
	}
	if !d.IsLight() {
		return nil, ErrNotLight
	}
	l, ok := d.(*scene.Light)
	if !ok {
		return nil, ErrNotLight
	}
	return l, nil
}

// SetTag renames the selection
func (s *Session) SetTag(tag string) error {
	b, err := s.selection()
	if err != nil {
		return err
	}
	b.Tag = TruncateTag(tag)
	return nil
}

// SetActive toggles whether the selection is drawn
func (s *Session) SetActive(active bool) error {
	b, err := s.selection()
	if err != nil {
		return err
	}
	b.Active = active
	return nil
}

// SetTransform replaces the selection's transform. NaN and infinite
// components are rejected and leave the selection unchanged.
func (s *Session) SetTransform(t scene.Transform) error {
	b, err := s.selection()
	if err != nil {
		return err
	}
	for _, v := range []mgl32.Vec3{t.Position, t.Rotation, t.Scale} {
		for _, c := range v {
			if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
				return ErrNonFinite
			}
		}
	}
	b.Transform = t
	return nil
}

// SetLightColor sets the selected light's color
func (s *Session) SetLightColor(c mgl32.Vec4) error {
	l, err := s.selectedLight()
	if err != nil {
		return err
	}
	l.Color = c
	return nil
}

// SetAttenuation sets the selected light's linear and quadratic terms. The
// constant term is kept.
func (s *Session) SetAttenuation(linear, quadratic float32) error {
	l, err := s.selectedLight()
	if err != nil {
		return err
	}
	att := l.Attenuation
	att.Linear, att.Quadratic = linear, quadratic
	if err := att.Validate(); err != nil {
		return err
	}
	l.Attenuation = att
	return nil
}

// New empties the scene. The file path is kept for the next save.
func (s *Session) New() {
	s.objects.Clear()
	s.loader.Forget()
	s.selected = scene.Handle{}
	s.diskHash = 0
	s.log.Info("new scene")
}

// Open loads path and makes it the session's file
func (s *Session) Open(path string) (*scene.LoadReport, error) {
	report, err := s.loader.Load(s.objects, path)
	if err != nil {
		return nil, err
	}
	s.path = path
	s.selected = scene.Handle{}
	s.diskHash = fileHash(path)
	return report, nil
}

// Save writes the scene to the session's file
func (s *Session) Save() error {
	if s.path == "" {
		return ErrNoPath
	}
	return s.SaveAs(s.path)
}

// SaveAs writes the scene to path and makes it the session's file
func (s *Session) SaveAs(path string) error {
	if err := s.loader.Save(s.objects, path); err != nil {
		return err
	}
	s.path = path
	s.diskHash = fileHash(path)
	return nil
}

// Reloaded reports what ExternalChange did
type Reloaded int

const (
	ReloadSkipped Reloaded = iota
	ReloadDone
	ReloadConflict
)

// ExternalChange reacts to the scene file changing on disk. Writes the
// session made itself are ignored; unsaved local edits are never
// overwritten.
func (s *Session) ExternalChange() (Reloaded, error) {
	if s.path == "" {
		return ReloadSkipped, nil
	}
	h := fileHash(s.path)
	if h == 0 || h == s.diskHash {
		return ReloadSkipped, nil
	}
	if s.Modified() {
		s.log.Warn("scene changed on disk, keeping unsaved edits", zap.String("path", s.path))
		return ReloadConflict, nil
	}
	report, err := s.Open(s.path)
	if err != nil {
		return ReloadSkipped, err
	}
	s.log.Info("scene reloaded", zap.String("path", s.path), zap.Int("entities", report.Loaded))
	return ReloadDone, nil
}

// fileHash returns 0 when the file cannot be read
func fileHash(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}
