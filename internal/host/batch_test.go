package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/absfs/stegcrypt/internal/config"
)

func TestBatch_EncryptDecrypt(t *testing.T) {
	svc, storage := newTestService(t, nil)
	ctx := context.Background()

	var inputs []string
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("/in/file%d.txt", i)
		require.NoError(t, storage.WriteFile(name, []byte(fmt.Sprintf("contents of file %d", i))))
		inputs = append(inputs, name)
	}

	results, err := svc.Batch(ctx, BatchEncrypt, inputs, "/out", []byte(testPassword))
	require.NoError(t, err)
	require.Len(t, results, len(inputs))

	var sealed []string
	for i, r := range results {
		require.NoError(t, r.Err)
		require.Equal(t, inputs[i], r.Input)
		require.Equal(t, filepath.Join("/out", filepath.Base(inputs[i])+EncryptedExt), r.Output)
		sealed = append(sealed, r.Output)
	}

	results, err = svc.Batch(ctx, BatchDecrypt, sealed, "/plain", []byte(testPassword))
	require.NoError(t, err)
	for i, r := range results {
		require.NoError(t, r.Err)
		require.Equal(t, filepath.Join("/plain", fmt.Sprintf("file%d.txt", i)), r.Output)

		got, err := storage.ReadFile(r.Output)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("contents of file %d", i), string(got))
	}
}

func TestBatch_PartialFailure(t *testing.T) {
	svc, storage := newTestService(t, nil)
	require.NoError(t, storage.WriteFile("/a.txt", []byte("a")))
	require.NoError(t, storage.WriteFile("/c.txt", []byte("c")))

	results, err := svc.Batch(context.Background(), BatchEncrypt, []string{"/a.txt", "/missing.txt", "/c.txt"}, "/", []byte(testPassword))
	require.NoError(t, err)
	require.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	require.NoError(t, results[2].Err)
}

func TestBatch_Sequential(t *testing.T) {
	svc, storage := newTestService(t, func(c *config.Config) { c.BatchWorkers = 1 })
	require.NoError(t, storage.WriteFile("/a.txt", []byte("a")))
	require.NoError(t, storage.WriteFile("/b.txt", []byte("b")))

	results, err := svc.Batch(context.Background(), BatchEncrypt, []string{"/a.txt", "/b.txt"}, "/", []byte(testPassword))
	require.NoError(t, err)
	for _, r := range results {
		require.NoError(t, r.Err)
	}
}

func TestBatch_WrongPassword(t *testing.T) {
	svc, storage := newTestService(t, nil)
	require.NoError(t, storage.WriteFile("/a.txt", []byte("a")))
	_, err := svc.Batch(context.Background(), BatchEncrypt, []string{"/a.txt"}, "/", []byte(testPassword))
	require.NoError(t, err)

	results, err := svc.Batch(context.Background(), BatchDecrypt, []string{"/a.txt.enc"}, "/dec", []byte("wrong password"))
	require.NoError(t, err)
	require.Error(t, results[0].Err)
	requireMissing(t, storage, "/dec/a.txt")
}

func TestBatch_WeakPasswordRejectedUpFront(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.Batch(context.Background(), BatchEncrypt, []string{"/a.txt"}, "/", []byte("weak"))
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestBatch_Cancelled(t *testing.T) {
	svc, storage := newTestService(t, nil)
	require.NoError(t, storage.WriteFile("/a.txt", []byte("a")))
	require.NoError(t, storage.WriteFile("/b.txt", []byte("b")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.Batch(ctx, BatchEncrypt, []string{"/a.txt", "/b.txt"}, "/", []byte(testPassword))
	require.NoError(t, err)
	for _, r := range results {
		require.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestBatch_EmptyAndInvalid(t *testing.T) {
	svc, _ := newTestService(t, nil)

	results, err := svc.Batch(context.Background(), BatchDecrypt, nil, "/", nil)
	require.NoError(t, err)
	require.Empty(t, results)

	_, err = svc.Batch(context.Background(), BatchMode(9), []string{"/a"}, "/", []byte(testPassword))
	require.Error(t, err)
}

func TestBatchOutput(t *testing.T) {
	tests := []struct {
		mode  BatchMode
		input string
		want  string
	}{
		{BatchEncrypt, "/x/report.pdf", filepath.Join("out", "report.pdf.enc")},
		{BatchDecrypt, "/x/report.pdf.enc", filepath.Join("out", "report.pdf")},
		{BatchDecrypt, "/x/report.bin", filepath.Join("out", "report.bin.dec")},
		{BatchDecrypt, "/x/.enc", filepath.Join("out", ".enc.dec")},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, batchOutput(tt.mode, "out", tt.input), "%s %s", tt.mode, tt.input)
	}
}

func TestBatchConfig_Validate(t *testing.T) {
	require.NoError(t, (&BatchConfig{MaxWorkers: 4, MinJobsForParallel: 2}).Validate())
	require.Error(t, (&BatchConfig{MaxWorkers: -1, MinJobsForParallel: 2}).Validate())
	require.Error(t, (&BatchConfig{MaxWorkers: 2048, MinJobsForParallel: 2}).Validate())
	require.Error(t, (&BatchConfig{MaxWorkers: 4}).Validate())
}

func TestRunSafe_RecoversPanic(t *testing.T) {
	var r BatchResult
	runSafe(func(int) { panic("boom") }, 0, &r)
	require.Error(t, r.Err)
	require.Contains(t, r.Err.Error(), "boom")
}

func TestDiskStorage(t *testing.T) {
	dir := t.TempDir()
	s := NewDiskStorage()
	name := filepath.Join(dir, "data.bin")

	require.NoError(t, s.WriteFile(name, []byte("on disk")))
	got, err := s.ReadFile(name)
	require.NoError(t, err)
	require.Equal(t, "on disk", string(got))

	f, err := s.Open(name)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	err = s.WriteFrom(name, &failingReader{})
	require.Error(t, err)
	got, err = os.ReadFile(name)
	require.NoError(t, err)
	require.Equal(t, "on disk", string(got), "failed write must leave the old file intact")
}

func TestFSStorage_FailedWriteRemovesFile(t *testing.T) {
	_, storage := newTestService(t, nil)

	err := storage.WriteFrom("/partial.bin", &failingReader{})
	require.Error(t, err)
	requireMissing(t, storage, "/partial.bin")
	requireMissing(t, storage, "/partial.bin"+tempSuffix)
}

func TestFSStorage_FailedWriteKeepsOldFile(t *testing.T) {
	_, storage := newTestService(t, nil)

	require.NoError(t, storage.WriteFile("/keep.bin", []byte("original")))
	err := storage.WriteFrom("/keep.bin", &failingReader{})
	require.Error(t, err)

	got, err := storage.ReadFile("/keep.bin")
	require.NoError(t, err)
	require.Equal(t, "original", string(got))
	requireMissing(t, storage, "/keep.bin"+tempSuffix)

	require.NoError(t, storage.WriteFile("/keep.bin", []byte("replaced")))
	got, err = storage.ReadFile("/keep.bin")
	require.NoError(t, err)
	require.Equal(t, "replaced", string(got))
}

// failingReader yields a few bytes and then fails.
type failingReader struct {
	done bool
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.done {
		return 0, fmt.Errorf("read failed")
	}
	f.done = true
	return copy(p, "partial"), nil
}
