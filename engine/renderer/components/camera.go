package components

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/math"
)

/**
 * @brief Represents a camera looking from Position at Target. Matrices are
 * column-major and points are columns, so ViewProjection = Projection * View.
 */
type Camera struct {
	Projection     mgl32.Mat4
	View           mgl32.Mat4
	ViewProjection mgl32.Mat4
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() or FollowTarget()
	 * so the view matrix is recalculated when needed.
	 */
	Position mgl32.Vec3
	/** @brief The point the camera looks at. Same rule as Position. */
	Target mgl32.Vec3
	/** @brief Up vector used by look-at. */
	Up mgl32.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool

	viewBuilds uint64
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.Projection = mgl32.Ident4()
	c.View = mgl32.Ident4()
	c.ViewProjection = mgl32.Ident4()
	c.Position = mgl32.Vec3{0, 0, 0}
	c.Target = mgl32.Vec3{0, 0, 0}
	c.Up = mgl32.Vec3{0, 1, 0}
	c.IsDirty = false
	c.viewBuilds = 0
}

/**
 * @brief Replaces the projection with an orthographic one. Degenerate
 * bounds fail with core.ErrInvalidProjectionBounds and leave the camera
 * unchanged.
 */
func (c *Camera) SetOrthographicProjection(left, right, bottom, top, near, far float32) error {
	m, ok := math.Orthographic(left, right, bottom, top, near, far)
	if !ok {
		err := fmt.Errorf("%w: ortho(%g, %g, %g, %g, %g, %g)", core.ErrInvalidProjectionBounds, left, right, bottom, top, near, far)
		core.LogError(err.Error())
		return err
	}
	c.Projection = m
	c.ViewProjection = c.Projection.Mul4(c.View)
	return nil
}

// SetPerspectiveProjection is the perspective counterpart; fovy is in radians.
func (c *Camera) SetPerspectiveProjection(fovy, aspect, near, far float32) error {
	m, ok := math.Perspective(fovy, aspect, near, far)
	if !ok {
		err := fmt.Errorf("%w: perspective(%g, %g, %g, %g)", core.ErrInvalidProjectionBounds, fovy, aspect, near, far)
		core.LogError(err.Error())
		return err
	}
	c.Projection = m
	c.ViewProjection = c.Projection.Mul4(c.View)
	return nil
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	if position != c.Position {
		c.Position = position
		c.IsDirty = true
	}
}

func (c *Camera) SetTarget(target mgl32.Vec3) {
	if target != c.Target {
		c.Target = target
		c.IsDirty = true
	}
}

/**
 * @brief Rebuilds the view and combined matrices if the camera moved since
 * the last call. When Position equals Target there is no forward direction;
 * the previous view is kept. Returns true if the matrices were rebuilt.
 */
func (c *Camera) UpdateViewMatrix() bool {
	if !c.IsDirty {
		return false
	}
	c.IsDirty = false
	view, ok := math.LookAt(c.Position, c.Target, c.Up)
	if !ok {
		core.LogWarn("camera: degenerate look-at from %v to %v, keeping previous view", c.Position, c.Target)
		return false
	}
	c.View = view
	c.ViewProjection = c.Projection.Mul4(c.View)
	c.viewBuilds++
	return true
}

/**
 * @brief Places the camera at targetPos+offset looking at targetPos. Meant to
 * be called once per simulation tick; repeated calls with the same arguments
 * do not rebuild anything.
 */
func (c *Camera) FollowTarget(targetPos, offset mgl32.Vec3) {
	c.SetTarget(targetPos)
	c.SetPosition(targetPos.Add(offset))
	c.UpdateViewMatrix()
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	c.UpdateViewMatrix()
	return c.ViewProjection
}

// ViewBuilds returns how many times the view matrix was rebuilt.
func (c *Camera) ViewBuilds() uint64 {
	return c.viewBuilds
}
