package steg

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const (
	// Delimiter terminates every embedded message. It is a wire-format
	// constant shared by Embed and Extract.
	Delimiter = "###END###"

	// BitsPerPixel is the number of payload bits stored per pixel (R, G, B).
	BitsPerPixel = 3
)

var delimiter = []byte(Delimiter)

// Codec embeds and extracts delimiter-framed messages. The zero value scans
// the whole image on extraction.
type Codec struct {
	// MaxScanBits caps the number of channel LSBs Extract examines. Zero
	// means the full image capacity. The bound is rounded down to whole bytes.
	MaxScanBits int
}

// DefaultCodec scans the full image capacity.
var DefaultCodec = Codec{}

// Capacity returns the number of payload bits the raster can hold.
func Capacity(img *Raster) int {
	if img == nil || !validDims(img.Width, img.Height) {
		return 0
	}
	return BitsPerPixel * img.Width * img.Height
}

// MaxMessageLen returns the longest message, in bytes, that Embed accepts
// for this raster.
func MaxMessageLen(img *Raster) int {
	return maxChars(Capacity(img))
}

func maxChars(bits int) int {
	n := bits/8 - len(delimiter)
	if n < 0 {
		return 0
	}
	return n
}

// Embed hides message in img using DefaultCodec.
func Embed(img *Raster, message string) (*Raster, error) {
	return DefaultCodec.Embed(img, message)
}

// Extract recovers a message from img using DefaultCodec.
func Extract(img *Raster) (string, error) {
	return DefaultCodec.Extract(img)
}

// HasHiddenMessage reports whether img carries a non-empty message.
func HasHiddenMessage(img *Raster) bool {
	return DefaultCodec.HasHiddenMessage(img)
}

// Embed returns a copy of img with message + Delimiter written into the LSBs
// of its R, G and B channels. img itself is not modified. Channels past the
// end of the frame and every alpha byte are left exactly as they were.
func (c Codec) Embed(img *Raster, message string) (*Raster, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if !utf8.ValidString(message) {
		return nil, newCodecError("embed", ErrInvalidMessage, "message is not valid UTF-8")
	}

	frame := make([]byte, 0, len(message)+len(delimiter))
	frame = append(frame, message...)
	frame = append(frame, delimiter...)

	// The first delimiter in the frame must be the terminator, otherwise
	// Extract would stop early and return a truncated message.
	if i := strings.Index(string(frame), Delimiter); i != len(message) {
		return nil, newCodecError("embed", ErrDelimiterInMessage,
			"message contains the frame delimiter %q", Delimiter)
	}

	required := len(frame) * 8
	available := Capacity(img)
	if required > available {
		return nil, &CapacityError{
			Required:  required,
			Available: available,
			MaxChars:  maxChars(available),
		}
	}

	out := img.Clone()
	for bit := 0; bit < required; bit++ {
		b := (frame[bit/8] >> (7 - uint(bit%8))) & 1
		i := channelOffset(bit)
		out.Pix[i] = out.Pix[i]&^1 | b
	}
	return out, nil
}

// Extract reads channel LSBs in embed order and returns the bytes preceding
// the first Delimiter. It stops as soon as the delimiter is complete.
//
// A *NotFoundError is returned when the scan bound is reached without a
// delimiter, or when the framed bytes are not valid UTF-8.
func (c Codec) Extract(img *Raster) (string, error) {
	if err := img.Validate(); err != nil {
		return "", err
	}

	limit := Capacity(img)
	if c.MaxScanBits > 0 && c.MaxScanBits < limit {
		limit = c.MaxScanBits
	}
	limit -= limit % 8

	buf := make([]byte, 0, 64)
	var cur byte
	for bit := 0; bit < limit; bit++ {
		cur = cur<<1 | img.Pix[channelOffset(bit)]&1
		if bit%8 != 7 {
			continue
		}
		buf = append(buf, cur)
		cur = 0

		if !bytes.HasSuffix(buf, delimiter) {
			continue
		}
		payload := buf[:len(buf)-len(delimiter)]
		if !utf8.Valid(payload) {
			return "", &NotFoundError{ScannedBits: bit + 1, Reason: "framed bytes are not valid UTF-8"}
		}
		return string(payload), nil
	}

	return "", &NotFoundError{ScannedBits: limit, Reason: "no delimiter"}
}

// HasHiddenMessage reports whether Extract succeeds with non-empty text.
func (c Codec) HasHiddenMessage(img *Raster) bool {
	msg, err := c.Extract(img)
	return err == nil && msg != ""
}

// channelOffset maps a payload bit index to its byte offset in Pix, skipping
// the alpha channel.
func channelOffset(bit int) int {
	return (bit/BitsPerPixel)*BytesPerPixel + bit%BitsPerPixel
}
