package metadata

// Attribute and uniform locations agreed with the remote's built-in program.
const (
	AttribPosition uint32 = 0
	AttribNormal   uint32 = 1
	AttribTexcoord uint32 = 2
)

const (
	UniformMVP uint32 = iota
	UniformModel
	UniformLightDirection
	UniformViewPosition
	UniformTint
)

/**
 * @brief Represents a shader program created on the remote.
 */
type Shader struct {
	/** @brief The remote program id. 0 until created. */
	ID uint32
	/** @brief The shader name. */
	Name string
}

/**
 * @brief Source for a program. Both stages travel in one payload: the vertex
 * source first, immediately followed by the fragment source.
 */
type ShaderConfig struct {
	Name           string
	VertexSource   string
	FragmentSource string
}

const BUILTIN_SHADER_NAME_WORLD string = "Shader.Builtin.World"
