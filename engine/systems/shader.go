package systems

import (
	"fmt"

	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of shaders held in the system. */
	MaxShaderCount uint16
}

type ShaderSystem struct {
	// This system's configuration.
	Config *ShaderSystemConfig
	// A lookup table for shader name->shader
	Lookup map[string]*metadata.Shader

	resources *ResourceSystem
}

func NewShaderSystem(config *ShaderSystemConfig, rs *ResourceSystem) (*ShaderSystem, error) {
	if config.MaxShaderCount == 0 {
		err := fmt.Errorf("NewShaderSystem - config.MaxShaderCount must be greater than 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &ShaderSystem{
		Config:    config,
		Lookup:    make(map[string]*metadata.Shader),
		resources: rs,
	}, nil
}

/**
 * @brief Creates a program on the remote. Any failure is reported as
 * core.ErrShaderProgramCreationFailed.
 */
func (ss *ShaderSystem) Create(config *metadata.ShaderConfig) (*metadata.Shader, error) {
	if s, ok := ss.Lookup[config.Name]; ok {
		return s, nil
	}
	if len(ss.Lookup) >= int(ss.Config.MaxShaderCount) {
		err := fmt.Errorf("shader '%s': %w: %w", config.Name, core.ErrShaderProgramCreationFailed, core.ErrCapacityExceeded)
		core.LogError(err.Error())
		return nil, err
	}
	if config.VertexSource == "" || config.FragmentSource == "" {
		err := fmt.Errorf("shader '%s': %w: both stages need source", config.Name, core.ErrShaderProgramCreationFailed)
		core.LogError(err.Error())
		return nil, err
	}

	source := []byte(config.VertexSource + config.FragmentSource)
	id, err := ss.resources.Create("create program '"+config.Name+"'", func(cb *protocol.CommandBuffer) {
		cb.AppendPayload(protocol.OpCreateProgram, uint32(len(config.VertexSource)), source)
	})
	if err != nil {
		return nil, fmt.Errorf("shader '%s': %w: %w", config.Name, core.ErrShaderProgramCreationFailed, err)
	}

	s := &metadata.Shader{ID: id, Name: config.Name}
	ss.Lookup[config.Name] = s
	core.LogInfo("shader '%s' created with remote id %d", config.Name, id)
	return s, nil
}

// Get returns a created shader by name.
func (ss *ShaderSystem) Get(name string) (*metadata.Shader, error) {
	s, ok := ss.Lookup[name]
	if !ok {
		err := fmt.Errorf("shader '%s' not found", name)
		core.LogError(err.Error())
		return nil, err
	}
	return s, nil
}

func (ss *ShaderSystem) Shutdown() error {
	ss.Lookup = make(map[string]*metadata.Shader)
	return nil
}

// BuiltinWorldShader is the program the renderer draws scene objects with.
var BuiltinWorldShader = &metadata.ShaderConfig{
	Name: metadata.BUILTIN_SHADER_NAME_WORLD,
	VertexSource: `#version 300 es
layout(location = 0) in vec3 in_position;
layout(location = 1) in vec3 in_normal;
uniform mat4 u_mvp;
uniform mat4 u_model;
out vec3 v_normal;
out vec3 v_world;
void main() {
	v_normal = mat3(u_model) * in_normal;
	v_world = (u_model * vec4(in_position, 1.0)).xyz;
	gl_Position = u_mvp * vec4(in_position, 1.0);
}
`,
	FragmentSource: `#version 300 es
precision mediump float;
uniform vec3 u_light_dir;
uniform vec3 u_view_pos;
uniform vec4 u_tint;
in vec3 v_normal;
in vec3 v_world;
out vec4 out_colour;
void main() {
	vec3 n = normalize(v_normal);
	vec3 l = normalize(-u_light_dir);
	float diffuse = max(dot(n, l), 0.0);
	vec3 h = normalize(l + normalize(u_view_pos - v_world));
	float spec = pow(max(dot(n, h), 0.0), 32.0);
	out_colour = vec4(u_tint.rgb * (0.2 + diffuse) + vec3(spec * 0.3), u_tint.a);
}
`,
}
