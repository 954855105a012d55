package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig bounds the size of the on-disk log.
type RotationConfig struct {
	// MaxSizeMB caps the active log file size in megabytes. Zero
	// disables rotation entirely.
	MaxSizeMB int
	// MaxBackups is how many rotated files to keep. Zero keeps none.
	MaxBackups int
	// Compress gzips rotated files.
	Compress bool
}

// DefaultRotationConfig matches the documented logging defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 10, MaxBackups: 3}
}

// RotatingWriter is an io.Writer over a log file that moves the file
// aside and starts a fresh one whenever a write pushes it past the
// configured cap. Backups are numbered reparto.log.1 (newest) through
// reparto.log.N (oldest), with a .gz suffix when compression is on.
// Safe for concurrent use.
type RotatingWriter struct {
	path     string
	limit    int64
	keep     int
	compress bool

	mu   sync.Mutex
	file *os.File
	size int64
}

// NewRotatingWriter opens path for appending, creating parent
// directories as needed. With a zero MaxSizeMB the writer never rotates
// and simply appends.
func NewRotatingWriter(path string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		path:     path,
		limit:    int64(config.MaxSizeMB) * 1024 * 1024,
		keep:     config.MaxBackups,
		compress: config.Compress,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

// open (re)opens the active log file and records its size. Callers hold
// mu.
func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(rw.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	rw.file = f
	rw.size = st.Size()
	return nil
}

// Write appends p to the active file, then rotates if the write pushed
// the file over the cap. A failed rotation is reported on stderr and the
// writer keeps appending to the oversized file rather than dropping
// entries.
func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, fmt.Errorf("log file is closed")
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	if err != nil {
		return n, err
	}

	if rw.limit > 0 && rw.size >= rw.limit {
		if rerr := rw.rotate(); rerr != nil {
			fmt.Fprintf(os.Stderr, "reparto: log rotation failed: %v\n", rerr)
		}
	}
	return n, nil
}

// rotate closes the active file, moves it into the newest backup slot,
// and opens a fresh one. With MaxBackups zero the full log is dropped
// instead of kept. Callers hold mu.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil

	rw.shiftBackups()

	if rw.keep > 0 {
		target := rw.backupName(1)
		if err := os.Rename(rw.path, target); err != nil {
			if reopenErr := rw.open(); reopenErr != nil {
				return fmt.Errorf("failed to move full log aside: %w", reopenErr)
			}
			return fmt.Errorf("failed to move full log aside: %w", err)
		}
		if rw.compress {
			if err := gzipFile(target); err != nil {
				fmt.Fprintf(os.Stderr, "reparto: log compression failed: %v\n", err)
			}
		}
	} else {
		if err := os.Remove(rw.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove full log: %w", err)
		}
	}

	return rw.open()
}

// shiftBackups ages existing backups by one slot. The backup in the last
// slot falls off the end.
func (rw *RotatingWriter) shiftBackups() {
	for n := rw.keep; n >= 1; n-- {
		for _, ext := range []string{"", ".gz"} {
			name := rw.backupName(n) + ext
			if _, err := os.Stat(name); err != nil {
				continue
			}
			if n == rw.keep {
				os.Remove(name)
				continue
			}
			os.Rename(name, rw.backupName(n+1)+ext)
		}
	}
}

// backupName returns the path of the n-th backup, 1 being the newest.
func (rw *RotatingWriter) backupName(n int) string {
	return fmt.Sprintf("%s.%d", rw.path, n)
}

// gzipFile replaces path with path.gz.
func gzipFile(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(dst)
	_, err = io.Copy(zw, src)
	if err == nil {
		err = zw.Close()
	} else {
		zw.Close()
	}
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path + ".gz")
		return err
	}
	return os.Remove(path)
}

// Sync flushes the active file.
func (rw *RotatingWriter) Sync() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	return rw.file.Sync()
}

// Close syncs and closes the active file. Further writes fail.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	err := rw.file.Sync()
	if cerr := rw.file.Close(); err == nil {
		err = cerr
	}
	rw.file = nil
	return err
}

// CurrentSize reports the size of the active log file in bytes.
func (rw *RotatingWriter) CurrentSize() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.size
}
