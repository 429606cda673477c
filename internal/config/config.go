package config

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Limits applied by Clamp
const (
	MinMaxLights    = 1
	MaxMaxLights    = 256
	MaxFPSLimit     = 1000
	MinWindowWidth  = 320
	MinWindowHeight = 240
)

// ShaderProgram names the sources of one shading program
type ShaderProgram struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type WindowSettings struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type LogSettings struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

type CameraSettings struct {
	Speed       float32 `yaml:"speed"`
	MaxSpeed    float32 `yaml:"maxSpeed"`
	Sensitivity float32 `yaml:"sensitivity"`
}

// Settings is the editor configuration
type Settings struct {
	Window WindowSettings `yaml:"window"`
	Log    LogSettings    `yaml:"log"`
	Camera CameraSettings `yaml:"camera"`

	ScenePath      string                   `yaml:"scenePath"`
	WatchScene     bool                     `yaml:"watchScene"`
	LightPolicy    string                   `yaml:"lightPolicy"`
	DefaultTexture string                   `yaml:"defaultTexture"`
	DefaultShader  string                   `yaml:"defaultShader"`
	Shaders        map[string]ShaderProgram `yaml:"shaders"`
	OutlineShader  ShaderProgram            `yaml:"outlineShader"`

	MaxLights    int `yaml:"maxLights"`
	LightBinding int `yaml:"lightBinding"`
	FPSLimit     int `yaml:"fpsLimit"`
}

// Default returns the built-in settings
func Default() Settings {
	return Settings{
		Window: WindowSettings{Width: 1600, Height: 900, Title: "tent"},
		Log:    LogSettings{Level: "info", Encoding: "console"},
		Camera: CameraSettings{Speed: 2.5, MaxSpeed: 10, Sensitivity: 0.1},

		ScenePath:      "scene.json",
		WatchScene:     true,
		LightPolicy:    "retain",
		DefaultTexture: "Textures/wall.jpg",
		DefaultShader:  "generic",
		Shaders: map[string]ShaderProgram{
			"generic": {Vertex: "assets/shaders/generic.vert", Fragment: "assets/shaders/generic.frag"},
		},
		OutlineShader: ShaderProgram{Vertex: "assets/shaders/outline.vert", Fragment: "assets/shaders/outline.frag"},

		MaxLights:    32,
		LightBinding: 1,
		FPSLimit:     144,
	}
}

// Clamp forces every numeric field into its supported range
func (s *Settings) Clamp() {
	s.MaxLights = min(max(s.MaxLights, MinMaxLights), MaxMaxLights)
	s.FPSLimit = min(max(s.FPSLimit, 0), MaxFPSLimit)
	s.Window.Width = max(s.Window.Width, MinWindowWidth)
	s.Window.Height = max(s.Window.Height, MinWindowHeight)
	s.LightBinding = max(s.LightBinding, 0)
	if s.LightPolicy != "drop" {
		s.LightPolicy = "retain"
	}
	if s.Camera.Speed <= 0 {
		s.Camera.Speed = Default().Camera.Speed
	}
	if s.Camera.MaxSpeed < s.Camera.Speed {
		s.Camera.MaxSpeed = s.Camera.Speed
	}
	if s.Camera.Sensitivity <= 0 {
		s.Camera.Sensitivity = Default().Camera.Sensitivity
	}
}

// Decode reads YAML settings from r on top of the defaults
func Decode(r io.Reader) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, err
	}
	s.Clamp()
	return s, nil
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		s := Default()
		s.Clamp()
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Settings{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return s, nil
}

var (
	mu      sync.RWMutex
	current = Default()
)

// Apply clamps s and makes it the process-wide settings
func Apply(s Settings) {
	s.Clamp()
	s.Shaders = maps.Clone(s.Shaders)
	mu.Lock()
	current = s
	mu.Unlock()
}

// Current returns a copy of the process-wide settings
func Current() Settings {
	mu.RLock()
	defer mu.RUnlock()
	s := current
	s.Shaders = maps.Clone(current.Shaders)
	return s
}

// GetFPSLimit returns the frame cap; 0 means unlimited
func GetFPSLimit() int {
	mu.RLock()
	defer mu.RUnlock()
	return current.FPSLimit
}

// SetFPSLimit sets the frame cap
func SetFPSLimit(limit int) {
	mu.Lock()
	defer mu.Unlock()
	current.FPSLimit = min(max(limit, 0), MaxFPSLimit)
}

// GetMaxLights returns the light buffer capacity
func GetMaxLights() int {
	mu.RLock()
	defer mu.RUnlock()
	return current.MaxLights
}
