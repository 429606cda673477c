package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestDecodeOverridesDefaults(t *testing.T) {
	s, err := Decode(strings.NewReader(`
window:
  width: 1280
scenePath: levels/one.json
lightPolicy: drop
maxLights: 8
shaders:
  generic:
    vertex: a.vert
    fragment: a.frag
  toon:
    vertex: t.vert
    fragment: t.frag
`))
	require.NoError(t, err)
	assert.Equal(t, 1280, s.Window.Width)
	assert.Equal(t, 900, s.Window.Height, "unset fields keep their default")
	assert.Equal(t, "levels/one.json", s.ScenePath)
	assert.Equal(t, "drop", s.LightPolicy)
	assert.Equal(t, 8, s.MaxLights)
	assert.Len(t, s.Shaders, 2)
	assert.Equal(t, "t.frag", s.Shaders["toon"].Fragment)
}

func TestDecodeEmptyAndUnknown(t *testing.T) {
	s, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 32, s.MaxLights)

	_, err = Decode(strings.NewReader("maxLigths: 4\n"))
	assert.Error(t, err, "typos are rejected")
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Settings)
		check func(*testing.T, Settings)
	}{
		{"lights low", func(s *Settings) { s.MaxLights = 0 }, func(t *testing.T, s Settings) { assert.Equal(t, 1, s.MaxLights) }},
		{"lights high", func(s *Settings) { s.MaxLights = 9999 }, func(t *testing.T, s Settings) { assert.Equal(t, 256, s.MaxLights) }},
		{"fps negative", func(s *Settings) { s.FPSLimit = -5 }, func(t *testing.T, s Settings) { assert.Equal(t, 0, s.FPSLimit) }},
		{"fps high", func(s *Settings) { s.FPSLimit = 5000 }, func(t *testing.T, s Settings) { assert.Equal(t, 1000, s.FPSLimit) }},
		{"window", func(s *Settings) { s.Window.Width, s.Window.Height = 10, 10 }, func(t *testing.T, s Settings) {
			assert.Equal(t, 320, s.Window.Width)
			assert.Equal(t, 240, s.Window.Height)
		}},
		{"policy", func(s *Settings) { s.LightPolicy = "maybe" }, func(t *testing.T, s Settings) { assert.Equal(t, "retain", s.LightPolicy) }},
		{"camera", func(s *Settings) { s.Camera.MaxSpeed = 1 }, func(t *testing.T, s Settings) {
			assert.Equal(t, s.Camera.Speed, s.Camera.MaxSpeed)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.edit(&s)
			s.Clamp()
			tt.check(t, s)
		})
	}
}

func TestApplyAndAccessors(t *testing.T) {
	t.Cleanup(func() { Apply(Default()) })

	s := Default()
	s.MaxLights = 500
	s.FPSLimit = 60
	Apply(s)

	assert.Equal(t, 256, GetMaxLights())
	assert.Equal(t, 60, GetFPSLimit())

	SetFPSLimit(-1)
	assert.Equal(t, 0, GetFPSLimit())

	// callers cannot mutate the shared shader table
	got := Current()
	got.Shaders["generic"] = ShaderProgram{}
	assert.NotEmpty(t, Current().Shaders["generic"].Vertex)
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tent.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxLights: [1, 2]\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
