package kb

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for validation
	_ "image/png"
	"os"
)

const (
	// MaxImageFileSize caps one source image at 100MB.
	MaxImageFileSize = 100 * 1024 * 1024

	// MaxImagePixels caps image dimensions at 50 megapixels to bound the
	// memory needed to rasterize one page.
	MaxImagePixels = 50 * 1024 * 1024
)

// ValidateImage checks that path is a decodable image within the configured
// size and dimension limits. Only the image header is read; corrupt pixel
// data surfaces later as a batch assembly error.
func ValidateImage(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > MaxImageFileSize {
		return fmt.Errorf("file too large (%.1f MB)", float64(info.Size())/1024/1024)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return fmt.Errorf("not a valid image: %w", err)
	}
	switch format {
	case "jpeg", "png":
	default:
		return fmt.Errorf("unsupported image format %q", format)
	}
	if cfg.Width*cfg.Height > MaxImagePixels {
		return fmt.Errorf("image too large (%dx%d pixels)", cfg.Width, cfg.Height)
	}
	return nil
}
