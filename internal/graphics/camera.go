package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Direction is a camera movement direction
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

const (
	MinFOV   = 1.0
	MaxFOV   = 45.0
	maxPitch = 89.0
)

// Camera is a free-flying perspective camera driven by keyboard and mouse
type Camera struct {
	Position mgl32.Vec3
	WorldUp  mgl32.Vec3
	Yaw      float32
	Pitch    float32

	Speed       float32
	MaxSpeed    float32
	Sensitivity float32

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	front mgl32.Vec3
	right mgl32.Vec3
	up    mgl32.Vec3
}

// NewCamera places the camera at (0,0,3) looking down -Z
func NewCamera(width, height int) *Camera {
	c := &Camera{
		Position:    mgl32.Vec3{0, 0, 3},
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         -90,
		Speed:       2.5,
		MaxSpeed:    10,
		Sensitivity: 0.1,
		FOV:         MaxFOV,
		NearPlane:   0.1,
		FarPlane:    100.0,
	}
	c.SetViewport(width, height)
	c.updateVectors()
	return c
}

// SetViewport updates the aspect ratio
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	target := c.Position.Add(c.front)
	return mgl32.LookAtV(c.Position, target, c.up)
}

// Front returns the unit view direction
func (c *Camera) Front() mgl32.Vec3 {
	return c.front
}

// Move translates the camera. fast selects MaxSpeed.
func (c *Camera) Move(dir Direction, dt float32, fast bool) {
	speed := c.Speed
	if fast {
		speed = c.MaxSpeed
	}
	step := speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.front.Mul(step))
	case Backward:
		c.Position = c.Position.Sub(c.front.Mul(step))
	case Left:
		c.Position = c.Position.Sub(c.right.Mul(step))
	case Right:
		c.Position = c.Position.Add(c.right.Mul(step))
	case Up:
		c.Position = c.Position.Add(c.WorldUp.Mul(step))
	case Down:
		c.Position = c.Position.Sub(c.WorldUp.Mul(step))
	}
}

// Look turns the camera by a mouse offset in pixels. Pitch is held inside
// (-89, 89) degrees so the view never flips.
func (c *Camera) Look(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	c.Pitch = min(max(c.Pitch, -maxPitch), maxPitch)
	c.updateVectors()
}

// Zoom narrows or widens the field of view by a scroll offset
func (c *Camera) Zoom(dy float32) {
	c.FOV = min(max(c.FOV-dy, MinFOV), MaxFOV)
}

func (c *Camera) updateVectors() {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	front := mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}
	c.front = front.Normalize()
	c.right = c.front.Cross(c.WorldUp).Normalize()
	c.up = c.right.Cross(c.front).Normalize()
}

// ScreenRay returns the world-space ray through a window position. x and y
// are in window coordinates with the origin at the top left.
func (c *Camera) ScreenRay(x, y float64, width, height int) (origin, dir mgl32.Vec3, err error) {
	view := c.GetViewMatrix()
	proj := c.GetProjectionMatrix()
	wy := float32(height) - float32(y)
	near, err := mgl32.UnProject(mgl32.Vec3{float32(x), wy, 0}, view, proj, 0, 0, width, height)
	if err != nil {
		return origin, dir, err
	}
	far, err := mgl32.UnProject(mgl32.Vec3{float32(x), wy, 1}, view, proj, 0, 0, width, height)
	if err != nil {
		return origin, dir, err
	}
	return c.Position, far.Sub(near).Normalize(), nil
}
