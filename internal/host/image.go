package host

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/absfs/stegcrypt/steg"
)

// ErrUnsupportedOutput is returned when a stego image would be written in a
// lossy or unknown format.
var ErrUnsupportedOutput = errors.New("output image must be a .png file")

// decodeRaster decodes a PNG, JPEG or GIF image into a raster.
func decodeRaster(data []byte) (*steg.Raster, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to decode image")
	}
	return steg.FromImage(img), format, nil
}

// encodePNG encodes r losslessly.
func encodePNG(r *steg.Raster) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, r.NRGBA()); err != nil {
		return nil, errors.Wrap(err, "failed to encode png")
	}
	return buf.Bytes(), nil
}

func checkOutputPath(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		return errors.Wrapf(ErrUnsupportedOutput, "%s", name)
	}
	return nil
}
