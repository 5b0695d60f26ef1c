package host

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

const (
	defaultMinJobsForParallel = 2

	// EncryptedExt is appended to batch-encrypted files.
	EncryptedExt = ".enc"
	decryptedExt = ".dec"
)

// BatchConfig controls the batch worker pool
type BatchConfig struct {
	// MaxWorkers is the maximum number of worker goroutines
	// If 0, defaults to runtime.NumCPU()
	MaxWorkers int

	// MinJobsForParallel is the minimum number of files to use parallel processing
	// Below this threshold, sequential processing is used
	MinJobsForParallel int
}

// Validate checks if the batch configuration is valid
func (b *BatchConfig) Validate() error {
	if b.MaxWorkers < 0 {
		return errors.New("batch max workers cannot be negative")
	}
	if b.MaxWorkers > 1024 {
		return errors.New("batch max workers must not exceed 1024")
	}
	if b.MinJobsForParallel < 1 {
		return errors.New("batch min jobs threshold must be at least 1")
	}
	return nil
}

// BatchMode selects the operation a batch applies to every file.
type BatchMode int

const (
	// BatchEncrypt seals each file into NAME.enc
	BatchEncrypt BatchMode = iota
	// BatchDecrypt opens each file, dropping a trailing .enc
	BatchDecrypt
)

func (m BatchMode) String() string {
	switch m {
	case BatchEncrypt:
		return "encrypt"
	case BatchDecrypt:
		return "decrypt"
	default:
		return "unknown"
	}
}

// BatchResult is the outcome for one input file.
type BatchResult struct {
	Input  string
	Output string
	Result *FileResult
	Err    error
}

// batchOutput names the output file for input inside dir.
func batchOutput(mode BatchMode, dir, input string) string {
	base := filepath.Base(input)
	if mode == BatchEncrypt {
		return filepath.Join(dir, base+EncryptedExt)
	}
	if trimmed := strings.TrimSuffix(base, EncryptedExt); trimmed != base && trimmed != "" {
		return filepath.Join(dir, trimmed)
	}
	return filepath.Join(dir, base+decryptedExt)
}

// Batch encrypts or decrypts every input into outDir with the single-buffer
// container format. Files are independent: one failure does not stop the
// others, and the results are in input order. Cancelling ctx marks the
// remaining files with the context error.
func (s *Service) Batch(ctx context.Context, mode BatchMode, inputs []string, outDir string, password []byte) ([]BatchResult, error) {
	if err := s.batch.Validate(); err != nil {
		return nil, err
	}
	if mode != BatchEncrypt && mode != BatchDecrypt {
		return nil, errors.Errorf("unsupported batch mode %d", mode)
	}
	if mode == BatchEncrypt {
		if err := s.policy.Check(password); err != nil {
			return nil, err
		}
	}

	results := make([]BatchResult, len(inputs))
	for i, in := range inputs {
		results[i] = BatchResult{Input: in, Output: batchOutput(mode, outDir, in)}
	}
	if len(results) == 0 {
		return results, nil
	}

	run := func(idx int) {
		r := &results[idx]
		if err := ctx.Err(); err != nil {
			r.Err = err
			return
		}
		if mode == BatchEncrypt {
			r.Result, r.Err = s.EncryptFile(ctx, r.Input, r.Output, password)
		} else {
			r.Result, r.Err = s.DecryptFile(ctx, r.Input, r.Output, password)
		}
	}

	// Determine number of workers
	numWorkers := s.batch.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	// Limit workers to number of jobs
	if numWorkers > len(results) {
		numWorkers = len(results)
	}

	// Check if parallel processing is worth it
	if len(results) < s.batch.MinJobsForParallel || numWorkers == 1 {
		for i := range results {
			runSafe(run, i, &results[i])
		}
		return results, nil
	}

	var wg sync.WaitGroup
	jobChan := make(chan int, len(results))

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				runSafe(run, idx, &results[idx])
			}
		}()
	}

	for i := range results {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	return results, nil
}

// runSafe converts a panic in one job into that job's error so the
// remaining files are still processed.
func runSafe(run func(int), idx int, r *BatchResult) {
	defer func() {
		if p := recover(); p != nil {
			r.Err = fmt.Errorf("panic in batch worker: %v", p)
		}
	}()
	run(idx)
}
