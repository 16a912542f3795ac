package graphics

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"shadow-demo/internal/logging"
)

// DecodeImage reads a png, jpeg, bmp or tiff file into tightly packed RGBA,
// flipped so the first row is the bottom of the image as GL expects.
func DecodeImage(path string) (*image.RGBA, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	flipRows(rgba)
	return rgba, nil
}

func flipRows(img *image.RGBA) {
	h := img.Rect.Dy()
	row := make([]byte, img.Stride)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : (y+1)*img.Stride]
		bottom := img.Pix[(h-1-y)*img.Stride : (h-y)*img.Stride]
		copy(row, top)
		copy(top, bottom)
		copy(bottom, row)
	}
}

// LoadTexture decodes path and uploads it. Failures are logged and return the
// zero handle, which the shade pass replaces with plain white.
func LoadTexture(b Backend, path string) (TextureHandle, error) {
	img, err := DecodeImage(path)
	if err != nil {
		logging.Warn("texture load failed", "path", path, "err", err)
		return 0, err
	}
	return b.UploadTexture(img), nil
}
