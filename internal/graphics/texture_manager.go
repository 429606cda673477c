package graphics

import (
	"image"
	"sync"

	"tent/internal/scene"

	"go.uber.org/zap"
)

// TextureCache loads each texture path once. It implements
// scene.TextureLoader.
type TextureCache struct {
	mu       sync.RWMutex
	textures map[string]scene.Texture

	decode  func(path string) (*image.RGBA, error)
	upload  func(img *image.RGBA) uint32
	release func(id uint32)
	log     *zap.Logger
}

// NewTextureCache creates a cache that decodes from disk and uploads to GL
func NewTextureCache(log *zap.Logger) *TextureCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &TextureCache{
		textures: make(map[string]scene.Texture),
		decode:   DecodeImage,
		upload:   UploadTexture,
		release:  DeleteTexture,
		log:      log,
	}
}

// Load returns the cached texture for path, loading it on first use.
// Failures are not cached so a fixed file loads on the next attempt.
func (c *TextureCache) Load(path string) (scene.Texture, error) {
	c.mu.RLock()
	if tex, ok := c.textures[path]; ok {
		c.mu.RUnlock()
		return tex, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double check locking
	if tex, ok := c.textures[path]; ok {
		return tex, nil
	}

	img, err := c.decode(path)
	if err != nil {
		return scene.Texture{Path: path}, err
	}
	tex := scene.Texture{
		Path:   path,
		ID:     c.upload(img),
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
	}
	c.textures[path] = tex
	c.log.Debug("texture loaded", zap.String("path", path), zap.Int("width", tex.Width), zap.Int("height", tex.Height))
	return tex, nil
}

// Len returns the number of cached textures
func (c *TextureCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.textures)
}

// Dispose frees every cached texture
func (c *TextureCache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for path, tex := range c.textures {
		c.release(tex.ID)
		delete(c.textures, path)
	}
}
