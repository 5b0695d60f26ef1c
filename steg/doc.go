// Package steg hides UTF-8 text in the least-significant bits of an RGBA
// raster and recovers it again.
//
// # Frame Format
//
// A message is framed as the message bytes followed by [Delimiter]. The frame
// is expanded to bits, most-significant bit first, and written one bit per
// color channel:
//   - channel order within a pixel: R, G, B (alpha is never touched)
//   - pixel order: row-major, starting at the top-left pixel
//
// An image of W x H pixels therefore holds 3*W*H bits. [Delimiter] is part of
// the wire format: any implementation that wants to read images produced by
// this package must use the same sentinel.
//
// # Basic Usage
//
//	img := steg.FromImage(decoded) // decoded by the caller, e.g. png.Decode
//
//	out, err := steg.Embed(img, "meet at dawn")
//	if err != nil {
//	    var capErr *steg.CapacityError
//	    if errors.As(err, &capErr) {
//	        fmt.Printf("message too long, max %d bytes\n", capErr.MaxChars)
//	    }
//	    return err
//	}
//
//	// Re-encode losslessly. JPEG destroys the payload.
//	png.Encode(w, out.NRGBA())
//
//	msg, err := steg.Extract(out)
//	if errors.Is(err, steg.ErrNotFound) {
//	    // nothing hidden
//	}
//
// # Extraction
//
// Extraction is strict: a message is reported only when the delimiter is
// found within the scan bound and the bytes preceding it are valid UTF-8.
// The package never guesses. [InspectLSB] reports bit statistics for
// diagnostics, but its result is not evidence that a message exists.
//
// Embed never mutates its input; it returns a modified copy. All functions
// are safe for concurrent use on distinct or shared read-only rasters.
package steg
