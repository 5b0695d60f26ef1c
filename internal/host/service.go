package host

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/absfs/stegcrypt/filecipher"
	"github.com/absfs/stegcrypt/internal/config"
	"github.com/absfs/stegcrypt/internal/logger"
	"github.com/absfs/stegcrypt/steg"
)

// Service runs steganography and file encryption operations against a
// Storage. It is safe for concurrent use.
type Service struct {
	storage Storage
	codec   steg.Codec
	cipher  *filecipher.Cipher
	policy  PasswordPolicy
	batch   BatchConfig
	log     logger.Logger
}

// New creates a Service from cfg. A nil log discards output.
func New(storage Storage, cfg *config.Config, log logger.Logger) (*Service, error) {
	if storage == nil {
		return nil, errors.New("storage cannot be nil")
	}
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c, err := cfg.NewCipher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewDiscardLogger()
	}

	return &Service{
		storage: storage,
		codec:   cfg.Codec(),
		cipher:  c,
		policy:  PasswordPolicy{MinLength: cfg.MinPasswordLength},
		batch:   BatchConfig{MaxWorkers: cfg.BatchWorkers, MinJobsForParallel: defaultMinJobsForParallel},
		log:     log,
	}, nil
}

// EmbedResult describes a completed embed.
type EmbedResult struct {
	Width, Height int
	MessageBytes  int
	MaxBytes      int
}

// CapacityInfo describes how much text an image can hide.
type CapacityInfo struct {
	Width, Height int
	Format        string
	Bits          int
	MaxBytes      int
}

// FileResult describes a completed encryption or decryption.
type FileResult struct {
	InputBytes  int64
	OutputBytes int64
}

// operation returns a logger tagged with a fresh operation ID.
func (s *Service) operation(name string) logger.Logger {
	return s.log.WithField("op", uuid.NewString()).WithField("cmd", name)
}

func (s *Service) loadRaster(ctx context.Context, name string) (*steg.Raster, string, error) {
	data, err := s.storage.ReadFile(name)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to read image %s", name)
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return decodeRaster(data)
}

// EmbedMessage hides message in the image at in and writes a PNG to out.
// The output path must end in .png.
func (s *Service) EmbedMessage(ctx context.Context, in, out, message string) (*EmbedResult, error) {
	log := s.operation("embed")
	if err := checkOutputPath(out); err != nil {
		return nil, err
	}

	img, format, err := s.loadRaster(ctx, in)
	if err != nil {
		log.Errorf("load %s: %v", in, err)
		return nil, err
	}
	log.Debugf("decoded %s image %dx%d from %s", format, img.Width, img.Height, in)

	stego, err := s.codec.Embed(img, message)
	if err != nil {
		log.Warnf("embed into %s: %v", in, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := encodePNG(stego)
	if err != nil {
		return nil, err
	}
	if err := s.storage.WriteFile(out, data); err != nil {
		log.Errorf("write %s: %v", out, err)
		return nil, errors.Wrapf(err, "failed to write image %s", out)
	}

	log.Infof("embedded %d bytes into %s", len(message), out)
	return &EmbedResult{
		Width:        img.Width,
		Height:       img.Height,
		MessageBytes: len(message),
		MaxBytes:     steg.MaxMessageLen(img),
	}, nil
}

// ExtractMessage recovers the message hidden in the image at in.
func (s *Service) ExtractMessage(ctx context.Context, in string) (string, error) {
	log := s.operation("extract")
	img, _, err := s.loadRaster(ctx, in)
	if err != nil {
		log.Errorf("load %s: %v", in, err)
		return "", err
	}

	msg, err := s.codec.Extract(img)
	if err != nil {
		log.Debugf("extract from %s: %v", in, err)
		return "", err
	}
	log.Infof("extracted %d bytes from %s", len(msg), in)
	return msg, nil
}

// HasHiddenMessage reports whether the image at in carries a non-empty
// message.
func (s *Service) HasHiddenMessage(ctx context.Context, in string) (bool, error) {
	log := s.operation("check")
	img, _, err := s.loadRaster(ctx, in)
	if err != nil {
		log.Errorf("load %s: %v", in, err)
		return false, err
	}

	found := s.codec.HasHiddenMessage(img)
	log.Debugf("%s hidden message: %t", in, found)
	return found, nil
}

// Capacity reports how much text the image at in can hide.
func (s *Service) Capacity(ctx context.Context, in string) (*CapacityInfo, error) {
	img, format, err := s.loadRaster(ctx, in)
	if err != nil {
		return nil, err
	}
	return &CapacityInfo{
		Width:    img.Width,
		Height:   img.Height,
		Format:   format,
		Bits:     steg.Capacity(img),
		MaxBytes: steg.MaxMessageLen(img),
	}, nil
}

// InspectLSB returns best-effort LSB statistics over the first n channels of
// the image at in. They are a heuristic only and never used by extraction.
func (s *Service) InspectLSB(ctx context.Context, in string, n int) (steg.LSBStats, error) {
	img, _, err := s.loadRaster(ctx, in)
	if err != nil {
		return steg.LSBStats{}, err
	}
	return steg.InspectLSB(img, n)
}

// EncryptFile encrypts in to out as a single container.
func (s *Service) EncryptFile(ctx context.Context, in, out string, password []byte) (*FileResult, error) {
	log := s.operation("encrypt")
	if err := s.policy.Check(password); err != nil {
		return nil, err
	}

	plaintext, err := s.storage.ReadFile(in)
	if err != nil {
		log.Errorf("read %s: %v", in, err)
		return nil, errors.Wrapf(err, "failed to read %s", in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sealed, err := s.cipher.Encrypt(plaintext, string(password))
	if err != nil {
		log.Errorf("encrypt %s: %v", in, err)
		return nil, err
	}
	if err := s.storage.WriteFile(out, sealed); err != nil {
		log.Errorf("write %s: %v", out, err)
		return nil, errors.Wrapf(err, "failed to write %s", out)
	}

	log.Infof("encrypted %s (%d bytes) to %s", in, len(plaintext), out)
	return &FileResult{InputBytes: int64(len(plaintext)), OutputBytes: int64(len(sealed))}, nil
}

// DecryptFile decrypts the container at in to out. Nothing is written when
// decryption fails.
func (s *Service) DecryptFile(ctx context.Context, in, out string, password []byte) (*FileResult, error) {
	log := s.operation("decrypt")
	sealed, err := s.storage.ReadFile(in)
	if err != nil {
		log.Errorf("read %s: %v", in, err)
		return nil, errors.Wrapf(err, "failed to read %s", in)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plaintext, err := s.cipher.Decrypt(sealed, string(password))
	if err != nil {
		log.Warnf("decrypt %s: %v", in, err)
		return nil, err
	}
	if err := s.storage.WriteFile(out, plaintext); err != nil {
		log.Errorf("write %s: %v", out, err)
		return nil, errors.Wrapf(err, "failed to write %s", out)
	}

	log.Infof("decrypted %s to %s (%d bytes)", in, out, len(plaintext))
	return &FileResult{InputBytes: int64(len(sealed)), OutputBytes: int64(len(plaintext))}, nil
}

// EncryptStream encrypts in to out as a stream container without holding the
// file in memory.
func (s *Service) EncryptStream(ctx context.Context, in, out string, password []byte) (*FileResult, error) {
	log := s.operation("encrypt-stream")
	if err := s.policy.Check(password); err != nil {
		return nil, err
	}

	n, err := s.pipe(ctx, in, out, func(dst io.Writer, src io.Reader) (int64, error) {
		return s.cipher.EncryptStream(dst, src, string(password))
	})
	if err != nil {
		log.Errorf("encrypt %s: %v", in, err)
		return nil, err
	}
	log.Infof("encrypted %s (%d bytes) to %s", in, n, out)
	return &FileResult{InputBytes: n}, nil
}

// DecryptStream decrypts a stream container at in to out. The output is
// written atomically, so a failed segment leaves no partial plaintext.
func (s *Service) DecryptStream(ctx context.Context, in, out string, password []byte) (*FileResult, error) {
	log := s.operation("decrypt-stream")
	n, err := s.pipe(ctx, in, out, func(dst io.Writer, src io.Reader) (int64, error) {
		return s.cipher.DecryptStream(dst, src, string(password))
	})
	if err != nil {
		log.Warnf("decrypt %s: %v", in, err)
		return nil, err
	}
	log.Infof("decrypted %s to %s (%d bytes)", in, out, n)
	return &FileResult{OutputBytes: n}, nil
}

// pipe runs transform from the file at in into the file at out. The
// transform's own error wins over the storage error it causes.
func (s *Service) pipe(ctx context.Context, in, out string, transform func(io.Writer, io.Reader) (int64, error)) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	src, err := s.storage.Open(in)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to open %s", in)
	}
	defer src.Close()

	type result struct {
		n   int64
		err error
	}
	done := make(chan result, 1)
	pr, pw := io.Pipe()

	go func() {
		n, err := transform(pw, &ctxReader{ctx: ctx, r: src})
		pw.CloseWithError(err)
		done <- result{n, err}
	}()

	werr := s.storage.WriteFrom(out, pr)
	pr.CloseWithError(errPipeClosed)
	res := <-done

	if res.err != nil {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if werr != nil && errors.Is(res.err, errPipeClosed) {
			return 0, errors.Wrapf(werr, "failed to write %s", out)
		}
		return 0, res.err
	}
	if werr != nil {
		return 0, errors.Wrapf(werr, "failed to write %s", out)
	}
	return res.n, nil
}

var errPipeClosed = errors.New("output closed")

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
