// Package servicelog implements the per-service rotating log writer
// described in §4.3: one append-only file per running service, a
// structured header written at every epoch start, size-triggered
// rotation with numeric suffixes, and retention by age or count cap.
package servicelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// File permission constants, matching the daemon's ambient logging writer.
const (
	dirPermissions  os.FileMode = 0o750
	filePermissions os.FileMode = 0o600
)

// defaultMaxSizeBytes is the rotation trigger: file size checked before each Write.
const defaultMaxSizeBytes int64 = 10 * 1024 * 1024

// defaultRetention is how long rotated files are kept before deletion.
const defaultRetention = 3 * 24 * time.Hour

// defaultMaxRotated caps how many rotated files are kept regardless of age.
const defaultMaxRotated = 10

// Options configures a Writer's rotation policy; a zero Options uses the
// package defaults.
type Options struct {
	MaxSizeBytes int64
	Retention    time.Duration
	MaxRotated   int
}

func (o Options) withDefaults() Options {
	if o.MaxSizeBytes <= 0 {
		o.MaxSizeBytes = defaultMaxSizeBytes
	}
	if o.Retention <= 0 {
		o.Retention = defaultRetention
	}
	if o.MaxRotated <= 0 {
		o.MaxRotated = defaultMaxRotated
	}
	return o
}

// EpochHeader describes the structured header that marks the start of every
// epoch's output; it is written once the child's PID is known, so it follows
// the child's start.
type EpochHeader struct {
	ServiceID         string
	PID               int
	LocalPort         int
	RemotePort        int
	Technology        string
	ConnectionSummary string
	Platform          string
	DaemonVersion     string
}

// Writer is a mutex-protected, size-rotating append writer for one
// service's log file.
type Writer struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	size    int64
	options Options
}

// Open creates (or appends to) the log file at path, ready for epoch
// headers and rotation-checked writes.
//
// Params:
//   - path: the service's log file path.
//   - opts: rotation policy; zero value uses package defaults.
//
// Returns:
//   - *Writer: a ready-to-use writer.
//   - error: any error creating the directory or opening the file.
func Open(path string, opts Options) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating service log directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return nil, fmt.Errorf("opening service log: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat service log: %w", err)
	}
	return &Writer{path: path, file: file, size: info.Size(), options: opts.withDefaults()}, nil
}

// Path returns the writer's current log file path, exposed so the adapter
// can hand the same path to the spawned child's stdout/stderr.
//
// Returns:
//   - string: the log file path.
func (w *Writer) Path() string {
	return w.path
}

// File returns the underlying *os.File for the current epoch, for callers
// (the subprocess adapter) that need an *os.File to assign as a child's
// stdout/stderr.
//
// Returns:
//   - *os.File: the currently open log file.
func (w *Writer) File() *os.File {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file
}

// WriteEpochHeader writes a structured header marking the start of a new
// epoch, then checks whether the file is already due for rotation.
//
// Params:
//   - h: the epoch's identifying details.
//
// Returns:
//   - error: any error writing the header or rotating.
func (w *Writer) WriteEpochHeader(h EpochHeader) error {
	line := fmt.Sprintf(
		"==== epoch start %s service=%s pid=%d local=%d remote=%d tech=%s conn=%q platform=%s daemon=%s ====\n",
		time.Now().UTC().Format(time.RFC3339), h.ServiceID, h.PID, h.LocalPort, h.RemotePort,
		h.Technology, h.ConnectionSummary, h.Platform, h.DaemonVersion,
	)
	return w.Write([]byte(line))
}

// Write appends p to the log file, rotating first if the file is already
// at or beyond the size threshold.
//
// Params:
//   - p: the bytes to append.
//
// Returns:
//   - error: any error rotating or writing.
func (w *Writer) Write(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size >= w.options.MaxSizeBytes {
		if err := w.rotateLocked(); err != nil {
			return err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return err
}

// Close flushes and closes the underlying file.
//
// Returns:
//   - error: any error closing the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// rotateLocked renames the current file to its next numeric suffix,
// reopens a fresh file at path, and prunes old rotated files. Caller must
// hold w.mu.
func (w *Writer) rotateLocked() error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing before rotation: %w", err)
	}
	if err := shiftRotated(w.path, w.options.MaxRotated); err != nil {
		return err
	}
	if err := os.Rename(w.path, w.path+".1"); err != nil {
		return fmt.Errorf("rotating service log: %w", err)
	}
	file, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePermissions)
	if err != nil {
		return fmt.Errorf("reopening service log: %w", err)
	}
	w.file = file
	w.size = 0
	return pruneRetention(w.path, w.options.Retention, w.options.MaxRotated)
}

// shiftRotated renames path.N to path.N+1 for every existing rotated file,
// from the highest index down, making room for a new path.1. Anything
// that would exceed maxKept is deleted rather than shifted further.
func shiftRotated(path string, maxKept int) error {
	for i := maxKept - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", path, i)
		dst := fmt.Sprintf("%s.%d", path, i+1)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if i+1 > maxKept {
			_ = os.Remove(src)
			continue
		}
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("shifting rotated log %s: %w", src, err)
		}
	}
	return nil
}

// pruneRetention deletes rotated files older than retention or beyond
// maxKept by count, whichever prunes more aggressively.
func pruneRetention(path string, retention time.Duration, maxKept int) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil //nolint:nilerr // best-effort cleanup; a read failure here must not block writing.
	}

	type rotated struct {
		name string
		mod  time.Time
	}
	var found []rotated
	for _, e := range entries {
		if e.IsDir() || !isRotatedName(e.Name(), base) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		found = append(found, rotated{name: e.Name(), mod: info.ModTime()})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mod.After(found[j].mod) })

	now := time.Now()
	for i, f := range found {
		if i >= maxKept || now.Sub(f.mod) > retention {
			_ = os.Remove(filepath.Join(dir, f.name))
		}
	}
	return nil
}

// isRotatedName reports whether name looks like base's rotated sibling
// (base + "." + digits).
func isRotatedName(name, base string) bool {
	if len(name) <= len(base)+1 || name[:len(base)+1] != base+"." {
		return false
	}
	suffix := name[len(base)+1:]
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
