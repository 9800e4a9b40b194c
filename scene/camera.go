package scene

import "cogentcore.org/core/math32"

// Camera is a perspective camera looking at Target.
type Camera struct {
	FOV    float32 // vertical field of view in degrees
	Aspect float32
	Near   float32
	Far    float32

	Position math32.Vector3
	Target   math32.Vector3
	Up       math32.Vector3

	projection math32.Matrix4
}

// NewCamera returns a camera at position looking at the origin with an
// up-to-date projection.
func NewCamera(fov, aspect, near, far float32, position math32.Vector3) *Camera {
	c := &Camera{
		FOV: fov, Aspect: aspect, Near: near, Far: far,
		Position: position,
		Up:       math32.Vec3(0, 1, 0),
	}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix recomputes the projection after FOV, Aspect,
// Near or Far changed.
func (c *Camera) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection.SetPerspective(c.FOV, aspect, c.Near, c.Far)
}

// SetAspect sets the aspect ratio and refreshes the projection when it
// changed.
func (c *Camera) SetAspect(aspect float32) {
	if aspect == c.Aspect {
		return
	}
	c.Aspect = aspect
	c.UpdateProjectionMatrix()
}

// Projection returns the last computed projection matrix.
func (c *Camera) Projection() math32.Matrix4 { return c.projection }

// View returns the world-to-camera matrix: the inverse of the camera's
// own pose facing Target.
func (c *Camera) View() math32.Matrix4 {
	up := c.Up
	if up == (math32.Vector3{}) {
		up = math32.Vec3(0, 1, 0)
	}
	var look math32.Quat
	look.SetFromRotationMatrix(math32.NewLookAt(c.Position, c.Target, up))
	var pose math32.Matrix4
	pose.SetTransform(c.Position, look, math32.Vec3(1, 1, 1))
	view, err := pose.Inverse()
	if err != nil {
		return *math32.Identity4()
	}
	return *view
}

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() math32.Matrix4 {
	view := c.View()
	var vp math32.Matrix4
	vp.MulMatrices(&c.projection, &view)
	return vp
}
