package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/math"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
)

// InvalidHandle marks the absence of a scene handle. Valid handles start at 0.
const InvalidHandle uint32 = 0xFFFFFFFF

// DefaultMaxObjectCount is the registry bound used when none is configured.
const DefaultMaxObjectCount uint32 = 32

/** @brief The scene system configuration. */
type SceneSystemConfig struct {
	/** @brief The maximum number of objects the registry holds. */
	MaxObjectCount uint32
}

/**
 * @brief An object registered with the scene. Objects are never removed
 * individually; they live until the scene is shut down.
 */
type SceneObject struct {
	Handle      uint32
	ModelMatrix mgl32.Mat4
	Visible     bool
	Tint        mgl32.Vec4
	Geometry    *metadata.Geometry
	Transform   *math.Transform
}

/**
 * @brief The resource registry: a bounded array of scene objects addressed by
 * opaque sequential handles. Slots are never reused.
 */
type SceneSystem struct {
	Config  *SceneSystemConfig
	objects []SceneObject
}

func NewSceneSystem(config *SceneSystemConfig) (*SceneSystem, error) {
	if config.MaxObjectCount == 0 {
		err := fmt.Errorf("func NewSceneSystem - config.MaxObjectCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	if config.MaxObjectCount == InvalidHandle {
		err := fmt.Errorf("func NewSceneSystem - config.MaxObjectCount must be < %d", InvalidHandle)
		core.LogError(err.Error())
		return nil, err
	}
	return &SceneSystem{
		Config:  config,
		objects: make([]SceneObject, 0, config.MaxObjectCount),
	}, nil
}

/**
 * @brief Registers uploaded geometry as a new visible object with an identity
 * model matrix.
 *
 * @return The new handle, or core.ErrCapacityExceeded when the registry is full.
 */
func (s *SceneSystem) AddMesh(geometry *metadata.Geometry) (uint32, error) {
	if s.Full() {
		err := fmt.Errorf("scene: %w: all %d slots in use", core.ErrCapacityExceeded, s.Config.MaxObjectCount)
		core.LogError(err.Error())
		return InvalidHandle, err
	}
	handle := uint32(len(s.objects))
	s.objects = append(s.objects, SceneObject{
		Handle:      handle,
		ModelMatrix: mgl32.Ident4(),
		Visible:     true,
		Tint:        mgl32.Vec4{1, 1, 1, 1},
		Geometry:    geometry,
		Transform:   math.TransformCreate(),
	})
	return handle, nil
}

func (s *SceneSystem) get(handle uint32) (*SceneObject, error) {
	if handle >= uint32(len(s.objects)) {
		err := fmt.Errorf("scene: %w: %d", core.ErrInvalidHandle, handle)
		core.LogError(err.Error())
		return nil, err
	}
	return &s.objects[handle], nil
}

/**
 * @brief Recomposes the model matrix: scale, then rotate (Euler XYZ,
 * radians), then translate.
 */
func (s *SceneSystem) UpdateModelMatrix(handle uint32, position, rotation, scale mgl32.Vec3) error {
	obj, err := s.get(handle)
	if err != nil {
		return err
	}
	obj.Transform.SetPositionRotationScale(position, rotation, scale)
	obj.ModelMatrix = obj.Transform.GetLocal()
	return nil
}

// SetVisibility toggles whether the object is drawn. Hidden objects stay registered.
func (s *SceneSystem) SetVisibility(handle uint32, visible bool) error {
	obj, err := s.get(handle)
	if err != nil {
		return err
	}
	obj.Visible = visible
	return nil
}

func (s *SceneSystem) SetTint(handle uint32, tint mgl32.Vec4) error {
	obj, err := s.get(handle)
	if err != nil {
		return err
	}
	obj.Tint = tint
	return nil
}

// Get returns a copy of the object registered under handle.
func (s *SceneSystem) Get(handle uint32) (SceneObject, bool) {
	if handle >= uint32(len(s.objects)) {
		return SceneObject{}, false
	}
	return s.objects[handle], true
}

// Each visits objects in ascending handle order until fn returns false.
func (s *SceneSystem) Each(fn func(obj *SceneObject) bool) {
	for i := range s.objects {
		if !fn(&s.objects[i]) {
			return
		}
	}
}

func (s *SceneSystem) Count() int    { return len(s.objects) }
func (s *SceneSystem) Capacity() int { return int(s.Config.MaxObjectCount) }
func (s *SceneSystem) Full() bool    { return uint32(len(s.objects)) >= s.Config.MaxObjectCount }

// Shutdown tears the registry down; every handle becomes invalid.
func (s *SceneSystem) Shutdown() error {
	s.objects = s.objects[:0]
	return nil
}
