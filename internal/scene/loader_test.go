package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tent/pkg/scenefile"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestLoader(t *testing.T, opts ...LoaderOption) *Loader {
	opts = append([]LoaderOption{WithLoaderLogger(zaptest.NewLogger(t))}, opts...)
	return NewLoader(opts...)
}

func record(typ, tag string, isLight bool, extra string) string {
	light := "false"
	if isLight {
		light = "true"
	}
	s := `{"type":"` + typ + `","tag":"` + tag + `",` +
		`"position":[1,2,3],"rotation":[0,45,0],"scale":[1,1,1],` +
		`"texture":"Textures/wall.jpg","shader":"generic",` +
		`"isActive":true,"isLight":` + light
	if extra != "" {
		s += "," + extra
	}
	return s + "}"
}

func scene(records ...string) string {
	return `{"SceneObjects":[` + strings.Join(records, ",") + `]}`
}

const threeCubesTwoLights = `{"SceneObjects":[
	{"type":"CUBE","tag":"c1","position":[0,0,0],"rotation":[0,0,0],"scale":[1,1,1],"texture":"Textures/wall.jpg","shader":"generic","isActive":true,"isLight":false},
	{"type":"LIGHT","tag":"red","position":[5,5,0],"rotation":[0,0,0],"scale":[0.2,0.2,0.2],"texture":"Textures/wall.jpg","shader":"generic","isActive":true,"isLight":true,
	 "color":[1,0,0,1],"attenuation":{"constant":1,"linear":0.7,"quadratic":1.8}},
	{"type":"CUBE","tag":"c2","position":[2,0,0],"rotation":[0,0,0],"scale":[1,1,1],"texture":"Textures/wall.jpg","shader":"generic","isActive":true,"isLight":false},
	{"type":"LIGHT","tag":"blue","position":[-5,5,0],"rotation":[0,0,0],"scale":[0.2,0.2,0.2],"texture":"Textures/wall.jpg","shader":"generic","isActive":true,"isLight":true,
	 "color":[0,0,1,1],"attenuation":{"constant":1,"linear":0.35,"quadratic":0.44}},
	{"type":"CUBE","tag":"c3","position":[4,0,0],"rotation":[0,0,0],"scale":[1,1,1],"texture":"Textures/wall.jpg","shader":"generic","isActive":false,"isLight":false}
]}`

func TestSaveLoadRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	a := spawn(t, m, KindCube, "crate")
	spawn(t, m, KindSphere, "ball")
	l := spawn(t, m, KindLight, "lamp")
	spawn(t, m, KindQuad, "floor")

	ad, _ := m.Get(a)
	ad.Common().Position = mgl32.Vec3{1.5, -2, 3}
	ad.Common().Rotation = mgl32.Vec3{10, 20, 30}
	ad.Common().Scale = mgl32.Vec3{0, 2, 1}
	ad.Common().Active = false
	ld, _ := m.Get(l)
	ld.(*Light).Color = mgl32.Vec4{0.1, 0.2, 0.3, 1}

	path := filepath.Join(t.TempDir(), "scene.json")
	loader := newTestLoader(t)
	require.NoError(t, loader.Save(m, path))

	restored, _ := newTestManager(t)
	report, err := loader.Load(restored, path)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Loaded)
	require.Equal(t, m.Len(), restored.Len())

	for i := range m.Len() {
		want, got := m.At(i), restored.At(i)
		assert.Equal(t, want.Kind(), got.Kind(), "record %d", i)
		wb, gb := want.Common(), got.Common()
		assert.Equal(t, wb.Tag, gb.Tag)
		assert.Equal(t, wb.Position, gb.Position)
		assert.Equal(t, wb.Rotation, gb.Rotation)
		assert.Equal(t, wb.Scale, gb.Scale)
		assert.Equal(t, wb.Active, gb.Active)
		assert.Equal(t, wb.Shader.Name, gb.Shader.Name)
		assert.Equal(t, wb.Texture.Path, gb.Texture.Path)
	}
	assert.Equal(t, mgl32.Vec4{0.1, 0.2, 0.3, 1}, restored.At(2).(*Light).Color)
}

func TestSaveLoadRoundTripKeepsAddedEntities(t *testing.T) {
	m, _ := newTestManager(t)
	spawn(t, m, KindSphere, "spawned")
	d, err := NewDrawable(KindCube, "hand-added", DefaultTransform())
	require.NoError(t, err)
	_, err = m.Add(d)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "scene.json")
	loader := newTestLoader(t)
	require.NoError(t, loader.Save(m, path))

	restored, _ := newTestManager(t)
	report, err := loader.Load(restored, path)
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	require.Equal(t, 2, restored.Len())
	assert.Equal(t, "hand-added", restored.At(1).Common().Tag)
	assert.Equal(t, DefaultShaderName, restored.At(1).Common().Shader.Name)
}

func TestSaveNonFiniteIsParseError(t *testing.T) {
	m, _ := newTestManager(t)
	h := spawn(t, m, KindCube, "c")
	d, _ := m.Get(h)
	d.Common().Position = mgl32.Vec3{float32(math.NaN()), 0, 0}

	path := filepath.Join(t.TempDir(), "scene.json")
	err := newTestLoader(t).Save(m, path)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, ErrInvalidField)
	var ioe *IOError
	assert.False(t, errors.As(err, &ioe))
	assert.NoFileExists(t, path)
}

func TestSaveWritesRealTypeAndShader(t *testing.T) {
	m, _ := newTestManager(t, WithDefaultShader("light"))
	spawn(t, m, KindSphere, "s")

	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, newTestLoader(t).Save(m, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := scenefile.Decode(data)
	require.NoError(t, err)
	require.Len(t, doc.SceneObjects, 1)
	assert.Equal(t, "SPHERE", doc.SceneObjects[0].Type)
	assert.Equal(t, "light", doc.SceneObjects[0].Shader)
}

func TestSaveFailureIsIOError(t *testing.T) {
	m, _ := newTestManager(t)
	path := filepath.Join(t.TempDir(), "missing-dir", "scene.json")

	err := newTestLoader(t).Save(m, path)
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, path, ioe.Path)
}

func TestLoadMissingFile(t *testing.T) {
	m, _ := newTestManager(t)
	spawn(t, m, KindCube, "keep")

	_, err := newTestLoader(t).Load(m, filepath.Join(t.TempDir(), "nope.json"))
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, 1, m.Len())
}

func TestLoadMalformedDocuments(t *testing.T) {
	docs := map[string]string{
		"not json":       `{"SceneObjects": [`,
		"top level list": `[]`,
		"no array":       `{"Objects": []}`,
		"array is map":   `{"SceneObjects": {}}`,
		"record is num":  `{"SceneObjects": [1]}`,
	}
	for name, content := range docs {
		t.Run(name, func(t *testing.T) {
			m, _ := newTestManager(t)
			spawn(t, m, KindCube, "keep")

			_, err := newTestLoader(t).Load(m, writeScene(t, content))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, ErrMalformedScene)
			assert.Equal(t, 1, m.Len())
		})
	}
}

func TestLoadMissingPositionLeavesManagerUntouched(t *testing.T) {
	m, _ := newTestManager(t)
	before := []Handle{spawn(t, m, KindCube, "a"), spawn(t, m, KindLight, "b")}

	bad := `{"type":"CUBE","tag":"broken","rotation":[0,0,0],"scale":[1,1,1],` +
		`"texture":"Textures/wall.jpg","shader":"generic","isActive":true,"isLight":false}`
	path := writeScene(t, scene(record("CUBE", "ok", false, ""), bad))

	_, err := newTestLoader(t).Load(m, path)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Record)
	assert.Equal(t, "position", pe.Field)
	assert.ErrorIs(t, err, ErrMissingField)

	require.Equal(t, 2, m.Len())
	for i, h := range before {
		assert.Equal(t, i, m.IndexOf(h), "handle %d must still resolve in place", i)
	}
}

func TestLoadRejectsBadFields(t *testing.T) {
	tests := map[string]struct {
		record string
		field  string
	}{
		"short vector": {
			`{"type":"CUBE","tag":"x","position":[1,2],"rotation":[0,0,0],"scale":[1,1,1],"texture":"t","shader":"generic","isActive":true,"isLight":false}`,
			"position",
		},
		"string scale": {
			`{"type":"CUBE","tag":"x","position":[1,2,3],"rotation":[0,0,0],"scale":"big","texture":"t","shader":"generic","isActive":true,"isLight":false}`,
			"scale",
		},
		"numeric tag": {
			`{"type":"CUBE","tag":7,"position":[1,2,3],"rotation":[0,0,0],"scale":[1,1,1],"texture":"t","shader":"generic","isActive":true,"isLight":false}`,
			"tag",
		},
		"null shader": {
			`{"type":"CUBE","tag":"x","position":[1,2,3],"rotation":[0,0,0],"scale":[1,1,1],"texture":"t","shader":null,"isActive":true,"isLight":false}`,
			"shader",
		},
		"type and flag disagree": {
			record("CUBE", "x", true, ""),
			"isLight",
		},
		"zero attenuation": {
			record("LIGHT", "x", true, `"attenuation":{"constant":0,"linear":0,"quadratic":0}`),
			"attenuation",
		},
		"negative attenuation": {
			record("LIGHT", "x", true, `"attenuation":{"constant":1,"linear":-1,"quadratic":0}`),
			"attenuation",
		},
		"short color": {
			record("LIGHT", "x", true, `"color":[1,1,1]`),
			"color",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			m, _ := newTestManager(t)
			_, err := newTestLoader(t).Load(m, writeScene(t, scene(tt.record)))
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 0, pe.Record)
			assert.Equal(t, tt.field, pe.Field)
			assert.Equal(t, 0, m.Len())
		})
	}
}

func TestLoadSkipsUnknownTypeAndShader(t *testing.T) {
	m, _ := newTestManager(t)
	spawn(t, m, KindCube, "replaced")

	path := writeScene(t, scene(
		record("CUBE", "a", false, ""),
		record("TORUS", "b", false, ""),
		strings.Replace(record("QUAD", "c", false, ""), `"generic"`, `"toon"`, 1),
		record("SPHERE", "d", false, ""),
	))
	report, err := newTestLoader(t).Load(m, path)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Equal(t, "a", m.At(0).Common().Tag)
	assert.Equal(t, "d", m.At(1).Common().Tag)

	require.Len(t, report.Skipped, 2)
	assert.Equal(t, 1, report.Skipped[0].Record)
	assert.ErrorIs(t, report.Skipped[0].Err, ErrUnknownKind)
	assert.Equal(t, 2, report.Skipped[1].Record)
	assert.ErrorIs(t, report.Skipped[1].Err, ErrUnknownShader)
}

func TestLoadTexturePlaceholder(t *testing.T) {
	m, tex := newTestManager(t)
	tex.fail["Textures/wall.jpg"] = true

	report, err := newTestLoader(t).Load(m, writeScene(t, scene(record("CUBE", "a", false, ""))))
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	assert.False(t, m.At(0).Common().Texture.Loaded())
	assert.Equal(t, "Textures/wall.jpg", m.At(0).Common().Texture.Path)
	assert.Len(t, report.Placeholders, 1)
}

func TestLoadDropLights(t *testing.T) {
	m, _ := newTestManager(t)
	report, err := newTestLoader(t, WithLightPolicy(DropLights)).Load(m, writeScene(t, threeCubesTwoLights))
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 0, m.LightCount())
	assert.Equal(t, 2, report.DroppedLight)
	for _, d := range m.All() {
		assert.Equal(t, KindCube, d.Kind())
	}
}

func TestLoadRetainLightsPacksFileValues(t *testing.T) {
	m, _ := newTestManager(t)
	report, err := newTestLoader(t).Load(m, writeScene(t, threeCubesTwoLights))
	require.NoError(t, err)

	assert.Equal(t, 5, m.Len())
	assert.Equal(t, 2, report.Lights)
	assert.False(t, m.At(4).Common().Active)

	be := &fakeBackend{}
	require.NoError(t, m.DrawAll(be))
	require.Len(t, be.writes, 1)
	require.Len(t, be.writes[0].data, 2*LightRecordSize)

	red := be.record(0)
	assert.Equal(t, mgl32.Vec3{5, 5, 0}, red.Position)
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, red.Color)
	assert.Equal(t, Attenuation{Constant: 1, Linear: 0.7, Quadratic: 1.8}, red.Attenuation)

	blue := be.record(1)
	assert.Equal(t, mgl32.Vec4{0, 0, 1, 1}, blue.Color)
	assert.Equal(t, Attenuation{Constant: 1, Linear: 0.35, Quadratic: 0.44}, blue.Attenuation)
}

func TestLoadLightDefaults(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := newTestLoader(t).Load(m, writeScene(t, scene(record("LIGHT", "plain", true, ""))))
	require.NoError(t, err)

	l := m.Lights()
	require.Len(t, l, 1)
	assert.Equal(t, mgl32.Vec4{1, 1, 1, 1}, l[0].Color)
	assert.Equal(t, DefaultAttenuation(), l[0].Attenuation)
}

func TestModified(t *testing.T) {
	m, _ := newTestManager(t)
	loader := newTestLoader(t)
	assert.False(t, loader.Modified(m))

	spawn(t, m, KindCube, "a")
	assert.True(t, loader.Modified(m))

	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, loader.Save(m, path))
	assert.False(t, loader.Modified(m))

	m.At(0).Common().Position = mgl32.Vec3{0, 1, 0}
	assert.True(t, loader.Modified(m))

	_, err := loader.Load(m, path)
	require.NoError(t, err)
	assert.False(t, loader.Modified(m))

	loader.Forget()
	assert.True(t, loader.Modified(m))
}

func TestParseLightPolicy(t *testing.T) {
	p, err := ParseLightPolicy("drop")
	require.NoError(t, err)
	assert.Equal(t, DropLights, p)

	p, err = ParseLightPolicy("")
	require.NoError(t, err)
	assert.Equal(t, RetainLights, p)

	_, err = ParseLightPolicy("keep")
	assert.Error(t, err)
}
