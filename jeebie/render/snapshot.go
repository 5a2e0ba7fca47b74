package render

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"

	"golang.org/x/image/draw"

	"github.com/valerio/go-jeebie-cgb/jeebie/video"
)

// Image converts a frame to an RGBA image at native resolution.
func Image(frame *video.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			r, g, b := frame.Pixel(x, y)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xFF})
		}
	}
	return img
}

// Scale enlarges img by an integer factor with nearest neighbour sampling,
// keeping pixel edges sharp.
func Scale(img image.Image, scale int) image.Image {
	if scale <= 1 {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()*scale, bounds.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}

// WritePNG encodes frame as a PNG scaled by scale.
func WritePNG(w io.Writer, frame *video.FrameBuffer, scale int) error {
	if frame == nil {
		return fmt.Errorf("no frame to encode")
	}
	return png.Encode(w, Scale(Image(frame), scale))
}

// SavePNG writes frame to path as a PNG scaled by scale.
func SavePNG(path string, frame *video.FrameBuffer, scale int) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if err := WritePNG(file, frame, scale); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	if err := file.Close(); err != nil {
		return err
	}

	slog.Info("snapshot saved", "path", path,
		"size", fmt.Sprintf("%dx%d", video.FramebufferWidth*max(scale, 1), video.FramebufferHeight*max(scale, 1)))
	return nil
}

// Digest returns the hex SHA-256 of the raw frame bytes. Equal digests mean
// bit-identical frames.
func Digest(frame *video.FrameBuffer) string {
	sum := sha256.Sum256(frame.Bytes())
	return hex.EncodeToString(sum[:])
}
