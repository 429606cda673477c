package main

import (
	"fmt"
	"time"

	"tent/internal/config"
	"tent/internal/editor"
	"tent/internal/graphics"
	"tent/internal/input"
	"tent/internal/picking"
	"tent/internal/profiling"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// EditorLoop manages the main frame loop state
type EditorLoop struct {
	window   *glfw.Window
	app      *Editor
	input    *input.InputManager
	log      *zap.Logger
	title    string
	limiter  *FPSLimiter
	history  profiling.FrameHistory
	spawnIdx int
	spawned  int

	showProfiling bool
	lastTitle     time.Time
	lastTime      time.Time
}

func NewEditorLoop(window *glfw.Window, app *Editor, s config.Settings, log *zap.Logger) *EditorLoop {
	return &EditorLoop{
		window:   window,
		app:      app,
		input:    app.Input,
		log:      log,
		title:    s.Window.Title,
		limiter:  NewFPSLimiter(),
		lastTime: time.Now(),
	}
}

// Run ticks until the window is closed
func (l *EditorLoop) Run() {
	for !l.window.ShouldClose() {
		l.tick()
	}
}

func (l *EditorLoop) tick() {
	profiling.ResetFrame()
	now := time.Now()
	dt := now.Sub(l.lastTime).Seconds()
	l.lastTime = now
	l.history.Push(float32(dt))

	func() { defer profiling.Track("glfw.PollEvents")(); glfw.PollEvents() }()

	l.moveCamera(float32(dt))
	l.handleActions()
	l.drainWatcher()

	l.app.Renderer.Render(dt)

	func() { defer profiling.Track("glfw.SwapBuffers")(); l.window.SwapBuffers() }()

	// Clear edge flags at end of frame
	l.input.PostUpdate()

	if time.Since(l.lastTitle) >= time.Second {
		l.updateTitle()
		l.lastTitle = time.Now()
	}

	focused := l.window.GetAttrib(glfw.Focused) == glfw.True
	l.limiter.Wait(!focused)
}

func (l *EditorLoop) moveCamera(dt float32) {
	cam := l.app.Renderer.GetCamera()
	fast := l.input.IsActive(input.ActionFast)
	moves := []struct {
		action input.Action
		dir    graphics.Direction
	}{
		{input.ActionMoveForward, graphics.Forward},
		{input.ActionMoveBackward, graphics.Backward},
		{input.ActionMoveLeft, graphics.Left},
		{input.ActionMoveRight, graphics.Right},
		{input.ActionMoveUp, graphics.Up},
		{input.ActionMoveDown, graphics.Down},
	}
	for _, m := range moves {
		if l.input.IsActive(m.action) {
			cam.Move(m.dir, dt, fast)
		}
	}

	// mouse look only while the look button is held
	if l.input.JustPressed(input.ActionLook) {
		l.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		l.input.ResetCursor()
	}
	if l.input.JustReleased(input.ActionLook) {
		l.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	if l.input.IsActive(input.ActionLook) {
		dx, dy := l.input.CursorDelta()
		cam.Look(float32(dx), float32(dy))
	}
	if dy := l.input.ScrollDelta(); dy != 0 {
		cam.Zoom(float32(dy))
	}
}

func (l *EditorLoop) handleActions() {
	s := l.app.Session

	if l.input.JustPressed(input.ActionQuit) {
		l.window.SetShouldClose(true)
	}
	if l.input.JustPressed(input.ActionToggleProfiling) {
		l.showProfiling = !l.showProfiling
	}
	if l.input.JustPressed(input.ActionToggleWireframe) {
		l.app.View.Wireframe = !l.app.View.Wireframe
	}
	if l.input.JustPressed(input.ActionCycleKind) {
		l.spawnIdx = (l.spawnIdx + 1) % len(editor.GeneratorKinds)
		l.log.Info("generator kind", zap.Stringer("kind", editor.GeneratorKinds[l.spawnIdx]))
	}
	if l.input.JustPressed(input.ActionSpawn) {
		l.spawned++
		kind := editor.GeneratorKinds[l.spawnIdx]
		tag := fmt.Sprintf("%s %d", kind, l.spawned)
		if h, err := s.Spawn(l.spawnIdx, tag); err != nil {
			l.log.Error("spawn", zap.Error(err))
		} else {
			s.Select(h)
		}
	}
	if l.input.JustPressed(input.ActionRemove) {
		if err := s.RemoveSelected(); err != nil {
			l.log.Warn("remove", zap.Error(err))
		}
	}
	if l.input.JustPressed(input.ActionToggleActive) {
		if d, ok := s.Selected(); ok {
			_ = s.SetActive(!d.Common().Active)
		}
	}
	if l.input.JustPressed(input.ActionPick) {
		l.pick()
	}
	if l.input.JustPressed(input.ActionSelectNext) {
		l.stepSelection(1)
	}
	if l.input.JustPressed(input.ActionSelectPrev) {
		l.stepSelection(-1)
	}
	if l.input.JustPressed(input.ActionSave) {
		if err := s.Save(); err != nil {
			l.log.Error("save", zap.Error(err))
		} else {
			l.log.Info("scene saved", zap.String("path", s.Path()))
		}
	}
	if l.input.JustPressed(input.ActionOpen) && s.Path() != "" {
		if report, err := s.Open(s.Path()); err != nil {
			l.log.Error("open", zap.Error(err))
		} else {
			logReport(l.log, report)
		}
	}
	if l.input.JustPressed(input.ActionNewScene) {
		s.New()
		l.spawned = 0
	}
}

// pick selects the entity under the cursor, or clears the selection when
// the click hits nothing
func (l *EditorLoop) pick() {
	s := l.app.Session
	x, y := l.window.GetCursorPos()
	w, h := l.window.GetSize()
	origin, dir, err := l.app.Renderer.GetCamera().ScreenRay(x, y, w, h)
	if err != nil {
		return
	}
	hit := picking.Raycast(origin, dir, picking.MinPickDistance, picking.MaxPickDistance, s.Objects().All())
	if !hit.Hit {
		s.ClearSelection()
		return
	}
	s.SelectIndex(hit.Index)
}

// stepSelection moves the selection through the visible rows, wrapping
// at either end
func (l *EditorLoop) stepSelection(step int) {
	s := l.app.Session
	rows := s.Rows()
	if len(rows) == 0 {
		s.ClearSelection()
		return
	}
	cur := -1
	for i, r := range rows {
		if r.Selected {
			cur = i
			break
		}
	}
	next := 0
	if cur >= 0 {
		next = (cur + step + len(rows)) % len(rows)
	} else if step < 0 {
		next = len(rows) - 1
	}
	s.Select(rows[next].Handle)
}

func (l *EditorLoop) drainWatcher() {
	w := l.app.Watcher
	if w == nil {
		return
	}
	select {
	case <-w.Changes():
		result, err := l.app.Session.ExternalChange()
		if err != nil {
			l.log.Error("reload", zap.Error(err))
		} else if result == editor.ReloadConflict {
			l.log.Warn("scene file changed on disk; save to overwrite or open to discard local edits")
		}
	default:
	}
}

func (l *EditorLoop) updateTitle() {
	title := l.app.Session.Title(l.title)
	title = fmt.Sprintf("%s | %.0f FPS | %d objects", title, l.history.AverageFPS(), l.app.Session.Objects().Len())
	l.window.SetTitle(title)
	if l.showProfiling {
		l.log.Info("frame", zap.String("top", profiling.TopN(5)))
	}
}
