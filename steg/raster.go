package steg

import (
	"image"
	"image/draw"
	"math"
)

// BytesPerPixel is the number of bytes per pixel in a Raster (R, G, B, A).
const BytesPerPixel = 4

// Raster is a decoded RGBA image: Width*Height pixels stored row-major in Pix,
// four non-premultiplied bytes per pixel.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// NewRaster allocates a zeroed (transparent black) raster.
func NewRaster(width, height int) *Raster {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*BytesPerPixel),
	}
}

// Validate checks that the dimensions are positive and addressable and that
// Pix has exactly Width*Height*4 bytes.
func (r *Raster) Validate() error {
	if r == nil {
		return &CodecError{Op: "raster", Message: "raster cannot be nil", Err: ErrInvalidRaster}
	}
	if !validDims(r.Width, r.Height) {
		return newCodecError("raster", ErrInvalidRaster, "invalid dimensions %dx%d", r.Width, r.Height)
	}
	if want := r.Width * r.Height * BytesPerPixel; len(r.Pix) != want {
		return newCodecError("raster", ErrInvalidRaster,
			"pixel buffer is %d bytes, expected %d for %dx%d", len(r.Pix), want, r.Width, r.Height)
	}
	return nil
}

// validDims reports whether width x height is positive and its pixel buffer
// size fits in an int.
func validDims(width, height int) bool {
	return width > 0 && height > 0 && width <= math.MaxInt/BytesPerPixel/height
}

// Clone returns a deep copy of the raster.
func (r *Raster) Clone() *Raster {
	pix := make([]byte, len(r.Pix))
	copy(pix, r.Pix)
	return &Raster{Width: r.Width, Height: r.Height, Pix: pix}
}

// FromImage converts any image to a Raster. *image.NRGBA input is copied
// byte for byte; other color models go through image/draw, which is exact
// for opaque pixels.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(b.Dx(), b.Dy())

	if src, ok := img.(*image.NRGBA); ok {
		rowLen := r.Width * BytesPerPixel
		for y := 0; y < r.Height; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(r.Pix[y*rowLen:(y+1)*rowLen], src.Pix[off:off+rowLen])
		}
		return r
	}

	dst := r.NRGBA()
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return r
}

// NRGBA returns an *image.NRGBA view sharing Pix with the raster, suitable
// for png.Encode.
func (r *Raster) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    r.Pix,
		Stride: r.Width * BytesPerPixel,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}
