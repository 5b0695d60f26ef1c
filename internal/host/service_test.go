package host

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"testing"

	"github.com/absfs/memfs"
	"github.com/stretchr/testify/require"

	"github.com/absfs/stegcrypt/filecipher"
	"github.com/absfs/stegcrypt/internal/config"
	"github.com/absfs/stegcrypt/internal/logger"
	"github.com/absfs/stegcrypt/steg"
)

const testPassword = "correct horse"

func newTestService(t *testing.T, mutate func(*config.Config)) (*Service, *FSStorage) {
	t.Helper()
	fs, err := memfs.NewFS()
	require.NoError(t, err)
	for _, dir := range []string{"/in", "/out", "/plain", "/dec"} {
		require.NoError(t, fs.MkdirAll(dir, 0755))
	}

	cfg := config.NewDefaultConfig()
	cfg.KDF.Iterations = 1000
	cfg.BatchWorkers = 4
	if mutate != nil {
		mutate(cfg)
	}

	storage := NewFSStorage(fs)
	svc, err := New(storage, cfg, logger.NewDiscardLogger())
	require.NoError(t, err)
	return svc, storage
}

func noiseImage(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

func writePNG(t *testing.T, s Storage, name string, img image.Image) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, s.WriteFile(name, buf.Bytes()))
}

func requireMissing(t *testing.T, s Storage, name string) {
	t.Helper()
	_, err := s.ReadFile(name)
	require.Error(t, err, "%s should not exist", name)
}

func TestService_EmbedExtract(t *testing.T) {
	svc, storage := newTestService(t, nil)
	ctx := context.Background()
	writePNG(t, storage, "/cover.png", noiseImage(64, 48, 1))

	res, err := svc.EmbedMessage(ctx, "/cover.png", "/stego.png", "meet at dawn")
	require.NoError(t, err)
	require.Equal(t, 64, res.Width)
	require.Equal(t, 48, res.Height)
	require.Equal(t, len("meet at dawn"), res.MessageBytes)
	require.Equal(t, 64*48*3/8-len(steg.Delimiter), res.MaxBytes)

	msg, err := svc.ExtractMessage(ctx, "/stego.png")
	require.NoError(t, err)
	require.Equal(t, "meet at dawn", msg)

	found, err := svc.HasHiddenMessage(ctx, "/stego.png")
	require.NoError(t, err)
	require.True(t, found)

	found, err = svc.HasHiddenMessage(ctx, "/cover.png")
	require.NoError(t, err)
	require.False(t, found)
}

func TestService_EmbedFromJPEG(t *testing.T) {
	svc, storage := newTestService(t, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, noiseImage(32, 32, 2), nil))
	require.NoError(t, storage.WriteFile("/photo.jpg", buf.Bytes()))

	_, err := svc.EmbedMessage(ctx, "/photo.jpg", "/photo.png", "lossless now")
	require.NoError(t, err)

	msg, err := svc.ExtractMessage(ctx, "/photo.png")
	require.NoError(t, err)
	require.Equal(t, "lossless now", msg)
}

func TestService_EmbedRejectsLossyOutput(t *testing.T) {
	svc, storage := newTestService(t, nil)
	writePNG(t, storage, "/cover.png", noiseImage(16, 16, 3))

	for _, out := range []string{"/out.jpg", "/out.gif", "/out"} {
		_, err := svc.EmbedMessage(context.Background(), "/cover.png", out, "hi")
		require.ErrorIs(t, err, ErrUnsupportedOutput)
		requireMissing(t, storage, out)
	}

	_, err := svc.EmbedMessage(context.Background(), "/cover.png", "/OUT.PNG", "hi")
	require.NoError(t, err)
}

func TestService_EmbedCapacityError(t *testing.T) {
	svc, storage := newTestService(t, nil)
	writePNG(t, storage, "/tiny.png", noiseImage(4, 4, 4))

	_, err := svc.EmbedMessage(context.Background(), "/tiny.png", "/out.png", "this will not fit")
	var capErr *steg.CapacityError
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, 48, capErr.Available)
	requireMissing(t, storage, "/out.png")
}

func TestService_ExtractNotFound(t *testing.T) {
	svc, storage := newTestService(t, nil)
	writePNG(t, storage, "/black.png", image.NewNRGBA(image.Rect(0, 0, 20, 20)))

	_, err := svc.ExtractMessage(context.Background(), "/black.png")
	require.True(t, steg.IsNotFoundError(err), "got %v", err)
}

func TestService_ExtractMaxScanBits(t *testing.T) {
	long := string(bytes.Repeat([]byte{'a'}, 100))
	svc, storage := newTestService(t, func(c *config.Config) { c.MaxScanBits = 8 * 50 })
	writePNG(t, storage, "/cover.png", noiseImage(64, 64, 5))

	_, err := svc.EmbedMessage(context.Background(), "/cover.png", "/stego.png", long)
	require.NoError(t, err)

	_, err = svc.ExtractMessage(context.Background(), "/stego.png")
	require.ErrorIs(t, err, steg.ErrNotFound)
}

func TestService_MissingAndCorruptImages(t *testing.T) {
	svc, storage := newTestService(t, nil)
	require.NoError(t, storage.WriteFile("/junk.png", []byte("not an image")))

	_, err := svc.ExtractMessage(context.Background(), "/nope.png")
	require.Error(t, err)
	require.False(t, steg.IsNotFoundError(err))
	require.Contains(t, err.Error(), "/nope.png")

	_, err = svc.Capacity(context.Background(), "/junk.png")
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func TestService_Capacity(t *testing.T) {
	svc, storage := newTestService(t, nil)
	writePNG(t, storage, "/cover.png", noiseImage(10, 10, 6))

	info, err := svc.Capacity(context.Background(), "/cover.png")
	require.NoError(t, err)
	require.Equal(t, "png", info.Format)
	require.Equal(t, 300, info.Bits)
	require.Equal(t, 28, info.MaxBytes)
}

func TestService_InspectLSB(t *testing.T) {
	svc, storage := newTestService(t, nil)
	black := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 3; i < len(black.Pix); i += 4 {
		black.Pix[i] = 0xff
	}
	writePNG(t, storage, "/black.png", black)

	stats, err := svc.InspectLSB(context.Background(), "/black.png", 96)
	require.NoError(t, err)
	require.Equal(t, 96, stats.Channels)
	require.Equal(t, 0, stats.Ones)
}

func TestService_CancelledContext(t *testing.T) {
	svc, storage := newTestService(t, nil)
	writePNG(t, storage, "/cover.png", noiseImage(8, 8, 7))
	require.NoError(t, storage.WriteFile("/plain.txt", []byte("data")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EmbedMessage(ctx, "/cover.png", "/out.png", "hi")
	require.ErrorIs(t, err, context.Canceled)

	_, err = svc.EncryptFile(ctx, "/plain.txt", "/plain.enc", []byte(testPassword))
	require.ErrorIs(t, err, context.Canceled)

	_, err = svc.EncryptStream(ctx, "/plain.txt", "/plain.enc", []byte(testPassword))
	require.ErrorIs(t, err, context.Canceled)
	requireMissing(t, storage, "/plain.enc")
}

func TestService_EncryptDecryptFile(t *testing.T) {
	for _, suite := range []filecipher.CipherSuite{filecipher.CipherAES256GCM, filecipher.CipherChaCha20Poly1305} {
		t.Run(suite.String(), func(t *testing.T) {
			svc, storage := newTestService(t, func(c *config.Config) { c.Cipher = suite })
			ctx := context.Background()
			plaintext := bytes.Repeat([]byte("secret report "), 100)
			require.NoError(t, storage.WriteFile("/report.txt", plaintext))

			enc, err := svc.EncryptFile(ctx, "/report.txt", "/report.enc", []byte(testPassword))
			require.NoError(t, err)
			require.Equal(t, int64(len(plaintext)), enc.InputBytes)
			require.Equal(t, int64(filecipher.HeaderSize+len(plaintext)+filecipher.TagSize), enc.OutputBytes)

			dec, err := svc.DecryptFile(ctx, "/report.enc", "/report.out", []byte(testPassword))
			require.NoError(t, err)
			require.Equal(t, int64(len(plaintext)), dec.OutputBytes)

			got, err := storage.ReadFile("/report.out")
			require.NoError(t, err)
			require.Equal(t, plaintext, got)
		})
	}
}

func TestService_EncryptEmptyFile(t *testing.T) {
	svc, storage := newTestService(t, nil)
	require.NoError(t, storage.WriteFile("/empty", nil))

	res, err := svc.EncryptFile(context.Background(), "/empty", "/empty.enc", []byte(testPassword))
	require.NoError(t, err)
	require.Equal(t, int64(44), res.OutputBytes)

	_, err = svc.DecryptFile(context.Background(), "/empty.enc", "/empty.out", []byte(testPassword))
	require.NoError(t, err)
	got, err := storage.ReadFile("/empty.out")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestService_EncryptWeakPassword(t *testing.T) {
	svc, storage := newTestService(t, nil)
	require.NoError(t, storage.WriteFile("/a.txt", []byte("a")))

	_, err := svc.EncryptFile(context.Background(), "/a.txt", "/a.enc", []byte("short"))
	require.ErrorIs(t, err, ErrWeakPassword)
	requireMissing(t, storage, "/a.enc")

	_, err = svc.EncryptStream(context.Background(), "/a.txt", "/a.enc", []byte("short"))
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestService_DecryptFailuresWriteNothing(t *testing.T) {
	svc, storage := newTestService(t, nil)
	ctx := context.Background()
	require.NoError(t, storage.WriteFile("/a.txt", []byte("attack at dawn")))
	_, err := svc.EncryptFile(ctx, "/a.txt", "/a.enc", []byte(testPassword))
	require.NoError(t, err)

	_, err = svc.DecryptFile(ctx, "/a.enc", "/a.out", []byte("wrong password"))
	var cryptoErr *filecipher.CryptoError
	require.ErrorAs(t, err, &cryptoErr)
	require.Equal(t, "crypto error: decrypt: decryption failed", err.Error())
	requireMissing(t, storage, "/a.out")

	require.NoError(t, storage.WriteFile("/short.enc", make([]byte, 10)))
	_, err = svc.DecryptFile(ctx, "/short.enc", "/short.out", []byte(testPassword))
	var formatErr *filecipher.FormatError
	require.ErrorAs(t, err, &formatErr)
	requireMissing(t, storage, "/short.out")
}

func TestService_Stream(t *testing.T) {
	svc, storage := newTestService(t, nil)
	ctx := context.Background()
	plaintext := make([]byte, filecipher.StreamSegmentSize+4096)
	rand.New(rand.NewSource(8)).Read(plaintext)
	require.NoError(t, storage.WriteFile("/big.bin", plaintext))

	enc, err := svc.EncryptStream(ctx, "/big.bin", "/big.scs", []byte(testPassword))
	require.NoError(t, err)
	require.Equal(t, int64(len(plaintext)), enc.InputBytes)

	dec, err := svc.DecryptStream(ctx, "/big.scs", "/big.out", []byte(testPassword))
	require.NoError(t, err)
	require.Equal(t, int64(len(plaintext)), dec.OutputBytes)

	got, err := storage.ReadFile("/big.out")
	require.NoError(t, err)
	require.True(t, bytes.Equal(plaintext, got))

	_, err = svc.DecryptStream(ctx, "/big.scs", "/wrong.out", []byte("not the password"))
	require.True(t, filecipher.IsCryptoError(err), "got %v", err)
	requireMissing(t, storage, "/wrong.out")

	_, err = svc.DecryptStream(ctx, "/big.bin", "/foreign.out", []byte(testPassword))
	require.True(t, filecipher.IsFormatError(err), "got %v", err)
	requireMissing(t, storage, "/foreign.out")

	_, err = svc.DecryptStream(ctx, "/big.scs", "/big.out", []byte("not the password"))
	require.True(t, filecipher.IsCryptoError(err), "got %v", err)
	got, err = storage.ReadFile("/big.out")
	require.NoError(t, err)
	require.True(t, bytes.Equal(plaintext, got), "failed decrypt must keep the existing output")
}

func TestService_StreamMissingInput(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.EncryptStream(context.Background(), "/nope", "/nope.scs", []byte(testPassword))
	require.Error(t, err)
	require.Contains(t, err.Error(), "/nope")
}

func TestNew_InvalidConfig(t *testing.T) {
	fs, err := memfs.NewFS()
	require.NoError(t, err)

	_, err = New(nil, nil, nil)
	require.Error(t, err)

	cfg := config.NewDefaultConfig()
	cfg.BatchWorkers = 0
	_, err = New(NewFSStorage(fs), cfg, nil)
	require.Error(t, err)

	svc, err := New(NewFSStorage(fs), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestPasswordPolicy(t *testing.T) {
	p := PasswordPolicy{MinLength: 8}

	require.NoError(t, p.Check([]byte("12345678")))
	require.NoError(t, p.Check([]byte("pässwörd")))
	require.ErrorIs(t, p.Check([]byte("1234567")), ErrWeakPassword)
	require.ErrorIs(t, p.Check([]byte("ééé")), ErrWeakPassword)
	require.ErrorIs(t, p.Check(nil), ErrWeakPassword)
}

func TestDecodeRaster_Formats(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 3, 2))
	gray.SetGray(1, 1, color.Gray{Y: 200})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gray))

	r, format, err := decodeRaster(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 3, r.Width)
	require.Equal(t, 2, r.Height)
	require.Equal(t, []byte{200, 200, 200, 255}, r.Pix[(1*3+1)*4:(1*3+1)*4+4])

	_, _, err = decodeRaster([]byte("GIF89a"))
	require.Error(t, err)
	require.False(t, errors.Is(err, steg.ErrInvalidRaster))
}
