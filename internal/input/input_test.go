package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
)

func TestKeyEdges(t *testing.T) {
	im := NewInputManager()

	im.HandleKeyEvent(glfw.KeyDelete, glfw.Press)
	assert.True(t, im.IsActive(ActionRemove))
	assert.True(t, im.JustPressed(ActionRemove))

	im.PostUpdate()
	im.HandleKeyEvent(glfw.KeyDelete, glfw.Repeat)
	assert.True(t, im.IsActive(ActionRemove))
	assert.False(t, im.JustPressed(ActionRemove), "repeat is not a new press")

	im.HandleKeyEvent(glfw.KeyDelete, glfw.Release)
	assert.False(t, im.IsActive(ActionRemove))
	assert.True(t, im.JustReleased(ActionRemove))

	im.PostUpdate()
	assert.False(t, im.JustReleased(ActionRemove))
}

func TestSharedKeyDrivesBothActions(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyLeftShift, glfw.Press)
	assert.True(t, im.IsActive(ActionFast))
	assert.True(t, im.IsActive(ActionModShift))
}

func TestMouseButtonBinding(t *testing.T) {
	im := NewInputManager()
	im.HandleMouseButtonEvent(glfw.MouseButtonRight, glfw.Press)
	assert.True(t, im.IsActive(ActionLook))
	im.HandleMouseButtonEvent(glfw.MouseButtonRight, glfw.Release)
	assert.False(t, im.IsActive(ActionLook))
}

func TestUnbindKey(t *testing.T) {
	im := NewInputManager()
	im.UnbindKey(glfw.KeyW)
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	assert.False(t, im.IsActive(ActionMoveForward))

	im.BindKey(glfw.KeyUp, ActionMoveForward)
	im.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	assert.True(t, im.IsActive(ActionMoveForward))

	assert.False(t, im.IsActive(ActionCount))
	assert.Equal(t, "unknown", ActionCount.String())
	assert.Equal(t, "remove", ActionRemove.String())
}

func TestCursorAndScroll(t *testing.T) {
	im := NewInputManager()

	im.HandleCursorEvent(100, 100)
	dx, dy := im.CursorDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)

	im.HandleCursorEvent(110, 90)
	im.HandleCursorEvent(115, 95)
	dx, dy = im.CursorDelta()
	assert.Equal(t, 15.0, dx)
	assert.Equal(t, 5.0, dy)

	im.HandleScrollEvent(1)
	im.HandleScrollEvent(-3)
	assert.Equal(t, -2.0, im.ScrollDelta())

	im.PostUpdate()
	dx, dy = im.CursorDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
	assert.Zero(t, im.ScrollDelta())

	im.ResetCursor()
	im.HandleCursorEvent(500, 500)
	dx, _ = im.CursorDelta()
	assert.Zero(t, dx, "first event after reset only sets the reference")
}

func TestEditorBindings(t *testing.T) {
	im := NewInputManager()
	im.HandleMouseButtonEvent(glfw.MouseButtonLeft, glfw.Press)
	assert.True(t, im.JustPressed(ActionPick))

	im.HandleKeyEvent(glfw.KeyF, glfw.Press)
	assert.True(t, im.JustPressed(ActionToggleWireframe))
	assert.Equal(t, "toggle_wireframe", ActionToggleWireframe.String())
	assert.Equal(t, "mod_shift", ActionModShift.String())
}
