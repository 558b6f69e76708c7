package systems

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/spaghettifunk/tether/engine/core"
	"github.com/spaghettifunk/tether/engine/protocol"
	"github.com/spaghettifunk/tether/engine/renderer/metadata"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
}

type TextureSystem struct {
	Config *TextureSystemConfig
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*metadata.Texture
	resources              *ResourceSystem
}

func NewTextureSystem(config *TextureSystemConfig, rs *ResourceSystem) (*TextureSystem, error) {
	if config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &TextureSystem{
		Config:                 config,
		RegisteredTextureTable: make(map[string]*metadata.Texture),
		resources:              rs,
	}, nil
}

/**
 * @brief Decodes an image (png, jpeg, bmp, tiff or webp) and uploads it.
 */
func (ts *TextureSystem) Load(name string, r io.Reader) (*metadata.Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		err = fmt.Errorf("texture '%s': %w: %w", name, core.ErrResourceCreationFailed, err)
		core.LogError(err.Error())
		return nil, err
	}
	core.LogDebug("texture '%s' decoded as %s", name, format)
	return ts.Upload(name, img)
}

/**
 * @brief Converts img to tightly packed RGBA and uploads it to the remote.
 */
func (ts *TextureSystem) Upload(name string, img image.Image) (*metadata.Texture, error) {
	if t, ok := ts.RegisteredTextureTable[name]; ok {
		return t, nil
	}
	if uint32(len(ts.RegisteredTextureTable)) >= ts.Config.MaxTextureCount {
		err := fmt.Errorf("texture '%s': %w: %d textures loaded", name, core.ErrCapacityExceeded, len(ts.RegisteredTextureTable))
		core.LogError(err.Error())
		return nil, err
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 || width > metadata.MaxTextureDimension || height > metadata.MaxTextureDimension {
		err := fmt.Errorf("texture '%s': %w: unsupported size %dx%d", name, core.ErrResourceCreationFailed, width, height)
		core.LogError(err.Error())
		return nil, err
	}

	rgba := toRGBA(img)
	id, err := ts.resources.Create("upload texture '"+name+"'", func(cb *protocol.CommandBuffer) {
		cb.AppendPayload(protocol.OpUploadTexture, protocol.PackSize(uint32(width), uint32(height)), rgba.Pix)
	})
	if err != nil {
		return nil, err
	}

	t := &metadata.Texture{
		ID:              id,
		Width:           uint32(width),
		Height:          uint32(height),
		Name:            name,
		HasTransparency: !rgba.Opaque(),
	}
	ts.RegisteredTextureTable[name] = t
	return t, nil
}

// Get returns a previously uploaded texture.
func (ts *TextureSystem) Get(name string) (*metadata.Texture, bool) {
	t, ok := ts.RegisteredTextureTable[name]
	return t, ok
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == b.Dx()*4 && b.Min == (image.Point{}) &&
		len(rgba.Pix) == b.Dx()*b.Dy()*4 {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func (ts *TextureSystem) Shutdown() error {
	ts.RegisteredTextureTable = make(map[string]*metadata.Texture)
	return nil
}
