package metadata

/** @brief The default texture name. */
const DEFAULT_TEXTURE_NAME string = "default"

/**
 * @brief Represents a texture uploaded to the remote.
 */
type Texture struct {
	/** @brief The remote texture id. */
	ID uint32
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The texture name. */
	Name string
	/** @brief True when any pixel has alpha below 255. */
	HasTransparency bool
}

// MaxTextureDimension is the largest width or height that fits the packed
// UploadTexture size operand.
const MaxTextureDimension = 0xFFFF
