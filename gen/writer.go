package gen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Writer writes a Generator's output files to outDir in parallel,
// grounded on compiler/gen/writer.go's TemplateWriter.GenerateAll.
type Writer struct {
	outDir  string
	workers int

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks write performance.
type WriterMetrics struct {
	FilesWritten int
	TotalBytes   int64
}

// NewWriter returns a Writer that writes into outDir using
// runtime.GOMAXPROCS(0) workers by default.
func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir, workers: runtime.GOMAXPROCS(0)}
}

// WithWorkers overrides the worker count.
func (w *Writer) WithWorkers(n int) *Writer {
	if n > 0 {
		w.workers = n
	}
	return w
}

// Metrics returns a snapshot of the write metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// WriteAll writes every file, fanning out across w.workers goroutines. It
// is the only suspension point in the generator framework (§5): pure
// generation (Generator.Generate) is synchronous, only the filesystem
// write is parallelized.
func (w *Writer) WriteAll(ctx context.Context, files []GeneratedFile) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)

	for _, f := range files {
		f := f
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeOne(f)
			}
		})
	}
	return eg.Wait()
}

func (w *Writer) writeOne(f GeneratedFile) error {
	path := filepath.Join(w.outDir, f.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", f.Filename, err)
	}
	if err := os.WriteFile(path, f.Content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.Filename, err)
	}
	w.mu.Lock()
	w.metrics.FilesWritten++
	w.metrics.TotalBytes += int64(len(f.Content))
	w.mu.Unlock()
	return nil
}
