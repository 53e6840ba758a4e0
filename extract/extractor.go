// Copyright 2026 Qabase Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extract

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/qabase/qabase/core"
)

// supportedExtensions maps a lowercase file extension to whether the
// extractor can process it.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".xlsx": true,
	".xls":  true,
	".txt":  true,
	".csv":  true,
}

// IsSupported reports whether the extractor can process the given file,
// judged by its extension.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// FileResult holds the outcome of extracting a single file during a
// directory sweep.
type FileResult struct {
	Path    string
	Records []core.QARecord
	Err     error
}

// Flatten concatenates the records of every successful result, in the
// order the files were visited.
func Flatten(results []FileResult) []core.QARecord {
	var records []core.QARecord
	for _, result := range results {
		if result.Err == nil {
			records = append(records, result.Records...)
		}
	}
	return records
}

// Extractor reads question/answer pairs out of document files.
// Directory sweeps fan out over a worker pool.
type Extractor struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithPoolSize sets the worker pool size for directory sweeps.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Extractor) error {
		if size < 1 {
			size = 1
		}

		if e.pool != nil {
			e.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates an extractor.
func New(opts ...Option) (*Extractor, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		pool:   pool,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	return e, nil
}

// Release releases the worker pool.
// The extractor should not be used after calling Release.
func (e *Extractor) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// ExtractFile reads one document and returns the question/answer pairs
// found in it. The file's base name becomes the source label, with the
// sheet name appended for workbook formats.
func (e *Extractor) ExtractFile(path string) ([]core.QARecord, error) {
	fileName := filepath.Base(path)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := readPDF(path)
		if err != nil {
			return nil, err
		}
		return ExtractPairs(text, fileName), nil

	case ".docx":
		text, err := readWord(path)
		if err != nil {
			return nil, err
		}
		return ExtractPairs(text, fileName), nil

	case ".xlsx", ".xls":
		return readExcel(path, fileName)

	case ".csv":
		return readDelimited(path, fileName)

	case ".txt":
		text, err := readText(path)
		if err != nil {
			return nil, err
		}
		return ExtractPairs(text, fileName), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}

// ExtractDirectory walks root recursively and extracts every supported
// file, fanning the work out over the pool. Results come back in walk
// order. A file that fails to parse gets its error recorded in the
// corresponding FileResult and logged; it never aborts the sweep.
func (e *Extractor) ExtractDirectory(ctx context.Context, root string) ([]FileResult, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryNotFound, root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsSupported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("extracting documents", "dir", root, "files", len(paths))

	results := make([]FileResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		i, path := i, path
		results[i].Path = path

		wg.Add(1)
		submitErr := e.pool.Submit(func() {
			defer wg.Done()

			if ctxErr := ctx.Err(); ctxErr != nil {
				results[i].Err = ctxErr
				return
			}

			records, err := e.ExtractFile(path)
			if err != nil {
				e.logger.Error("skipping document", "path", path, "err", err)
				results[i].Err = err
				return
			}

			e.logger.Info("extracted document", "path", path, "records", len(records))
			results[i].Records = records
		})
		if submitErr != nil {
			wg.Done()
			results[i].Err = submitErr
		}
	}

	wg.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return results, ctxErr
	}
	return results, nil
}
