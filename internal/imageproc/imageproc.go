// Package imageproc turns an image file into the normalized, channel-first
// tensor the classification networks were trained on.
package imageproc

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
	"github.com/nfnt/resize"
)

const (
	ResizeSize = 256
	CropSize   = 224
	Channels   = 3
)

// ImageNet channel statistics, R, G, B.
var (
	Mean = [Channels]float32{0.485, 0.456, 0.406}
	Std  = [Channels]float32{0.229, 0.224, 0.225}
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// DecodeError reports an image that could not be read or used.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Tensor is a 3x224x224 image laid out channel, height, width.
type Tensor struct {
	Data []float32
}

// Shape returns the tensor dimensions without a batch axis.
func (t Tensor) Shape() [3]int {
	return [3]int{Channels, CropSize, CropSize}
}

// Preprocess decodes the image at path and normalizes it.
func Preprocess(path string) (Tensor, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return Tensor{}, &DecodeError{Path: path, Err: err}
	}

	t, err := FromImage(img)
	if err != nil {
		return Tensor{}, &DecodeError{Path: path, Err: err}
	}
	return t, nil
}

// FromImage runs the resize, crop and normalize steps on a decoded image.
func FromImage(img image.Image) (Tensor, error) {
	rgb, err := dropAlpha(img)
	if err != nil {
		return Tensor{}, err
	}

	resized := resize.Resize(ResizeSize, ResizeSize, rgb, resize.Bilinear)

	// (256-224)/2 is exact, so floor and round agree on 16.
	offset := (ResizeSize - CropSize) / 2
	b := resized.Bounds()
	rect := image.Rect(b.Min.X+offset, b.Min.Y+offset, b.Min.X+offset+CropSize, b.Min.Y+offset+CropSize)
	cropped := transform.Crop(resized, rect)

	return normalize(cropped), nil
}

// dropAlpha copies img into an opaque RGBA image holding the straight
// (non-premultiplied) colour values.
func dropAlpha(img image.Image) (*image.RGBA, error) {
	switch img.(type) {
	case *image.Alpha, *image.Alpha16:
		return nil, fmt.Errorf("%w: alpha-only image", ErrUnsupportedFormat)
	case *image.RGBA, *image.RGBA64, *image.NRGBA, *image.NRGBA64,
		*image.Gray, *image.Gray16, *image.YCbCr, *image.NYCbCrA,
		*image.CMYK, *image.Paletted:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedFormat, img)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedFormat)
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return out, nil
}

func normalize(img *image.RGBA) Tensor {
	b := img.Bounds()
	plane := CropSize * CropSize
	data := make([]float32, Channels*plane)

	for y := 0; y < CropSize; y++ {
		for x := 0; x < CropSize; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			i := y*CropSize + x
			data[i] = (float32(c.R)/255 - Mean[0]) / Std[0]
			data[plane+i] = (float32(c.G)/255 - Mean[1]) / Std[1]
			data[2*plane+i] = (float32(c.B)/255 - Mean[2]) / Std[2]
		}
	}

	return Tensor{Data: data}
}
