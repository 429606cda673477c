package sceneview

import (
	"errors"
	"testing"

	"tent/internal/graphics"
	renderer "tent/internal/graphics/renderer"
	"tent/internal/scene"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubDrawer struct {
	errs  []error
	calls int
	seen  scene.Backend
}

func (s *stubDrawer) DrawAll(b scene.Backend) error {
	s.seen = b
	err := s.errs[s.calls%len(s.errs)]
	s.calls++
	return err
}

func TestRenderLogsEachDistinctErrorOnce(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	broken := errors.New("light buffer overrun")
	d := &stubDrawer{errs: []error{broken, broken, nil, broken}}
	backend := graphics.NewSceneBackend(4, 1)
	v := NewSceneView(d, backend, zap.New(core))

	ctx := renderer.RenderContext{Camera: graphics.NewCamera(800, 600)}
	for range 4 {
		v.Render(ctx)
	}

	assert.Equal(t, 4, d.calls)
	assert.Same(t, backend, d.seen)
	assert.Equal(t, 2, logs.Len(), "repeat suppressed, logged again after recovery")
}
