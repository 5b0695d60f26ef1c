// Package host connects the steg and filecipher packages to files.
//
// A Service reads inputs through a Storage and decodes PNG, JPEG and GIF
// images into rasters. Stego images are always written back as PNG. The
// configured password policy is enforced before encryption, and every
// operation is logged under its own ID.
//
// Errors from steg and filecipher are returned unchanged so callers can
// inspect them with errors.As. Storage failures are wrapped with the path
// involved.
package host
