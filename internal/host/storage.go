package host

import (
	"bytes"
	"io"
	"os"

	"github.com/absfs/absfs"
	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
)

// Storage is the file access the Service needs. Writes are all-or-nothing:
// a failed WriteFile or WriteFrom leaves no file behind.
type Storage interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte) error
	Open(name string) (io.ReadCloser, error)
	WriteFrom(name string, r io.Reader) error
}

// FileSystem is the subset of absfs.FileSystem used by FSStorage.
type FileSystem interface {
	Open(name string) (absfs.File, error)
	Create(name string) (absfs.File, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
}

// tempSuffix names the scratch file FSStorage writes before renaming.
const tempSuffix = ".tmp"

// FSStorage stores files on an absfs filesystem such as memfs.
type FSStorage struct {
	fs FileSystem
}

// NewFSStorage wraps fs.
func NewFSStorage(fs FileSystem) *FSStorage {
	return &FSStorage{fs: fs}
}

// ReadFile reads the whole file.
func (s *FSStorage) ReadFile(name string) ([]byte, error) {
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile replaces name with data.
func (s *FSStorage) WriteFile(name string, data []byte) error {
	return s.WriteFrom(name, bytes.NewReader(data))
}

// Open opens name for reading.
func (s *FSStorage) Open(name string) (io.ReadCloser, error) {
	return s.fs.Open(name)
}

// WriteFrom copies r into a temporary file next to name and renames it over
// name once the copy succeeds. On failure name is left as it was.
func (s *FSStorage) WriteFrom(name string, r io.Reader) error {
	tmp := name + tempSuffix
	f, err := s.fs.Create(tmp)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := s.fs.Remove(tmp); rerr != nil {
			return errors.Wrapf(err, "failed to remove partial file %s: %v", tmp, rerr)
		}
		return err
	}

	if old, err := s.fs.Open(name); err == nil {
		old.Close()
		if err := s.fs.Remove(name); err != nil {
			s.fs.Remove(tmp)
			return errors.Wrapf(err, "failed to replace %s", name)
		}
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		s.fs.Remove(tmp)
		return errors.Wrapf(err, "failed to rename %s", tmp)
	}
	return nil
}

// DiskStorage stores files on the local disk. Writes go to a temporary file
// that is renamed over the destination once complete.
type DiskStorage struct{}

// NewDiskStorage returns a DiskStorage.
func NewDiskStorage() *DiskStorage {
	return &DiskStorage{}
}

// ReadFile reads the whole file.
func (DiskStorage) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile atomically replaces name with data.
func (DiskStorage) WriteFile(name string, data []byte) error {
	return atomic.WriteFile(name, bytes.NewReader(data))
}

// Open opens name for reading.
func (DiskStorage) Open(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// WriteFrom atomically replaces name with the contents of r.
func (DiskStorage) WriteFrom(name string, r io.Reader) error {
	return atomic.WriteFile(name, r)
}
