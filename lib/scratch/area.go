// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

package scratch

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gridcast/gridcast/lib/clock"
)

// Extension is appended to every stored frame name.
const Extension = ".png"

// ErrInvalidName is returned for names that cannot become a file in
// the scratch directory.
var ErrInvalidName = errors.New("scratch: invalid frame name")

// Entry describes one stored frame.
type Entry struct {
	Path   string
	Size   int
	Digest Digest
}

// Area is a scratch directory.
type Area struct {
	directory string
	clock     clock.Clock
	logger    *slog.Logger
}

// Open creates directory if needed and returns an Area rooted there.
// A nil clock means clock.Real(); a nil logger means slog.Default().
func Open(directory string, clk clock.Clock, logger *slog.Logger) (*Area, error) {
	if directory == "" {
		return nil, errors.New("scratch: directory is required")
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("scratch: creating %s: %w", directory, err)
	}
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Area{directory: directory, clock: clk, logger: logger}, nil
}

// Directory returns the root directory.
func (a *Area) Directory() string {
	return a.directory
}

// FileName maps a frame name to its file name. Path separators and
// NUL become underscores; names that would still escape or alias the
// directory are rejected.
func FileName(name string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return cleaned + Extension, nil
}

// Path returns where the frame called name is stored.
func (a *Area) Path(name string) (string, error) {
	fileName, err := FileName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(a.directory, fileName), nil
}

// Write stores data as the frame called name, replacing any previous
// frame of that name.
func (a *Area) Write(name string, data []byte) (Entry, error) {
	path, err := a.Path(name)
	if err != nil {
		return Entry{}, err
	}

	file, err := os.CreateTemp(a.directory, ".incoming-*")
	if err != nil {
		return Entry{}, fmt.Errorf("scratch: creating temporary file: %w", err)
	}
	temporaryPath := file.Name()

	// Write, sync, close, rename. On any failure remove the temporary
	// file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return Entry{}, fmt.Errorf("scratch: writing %s: %w", name, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return Entry{}, fmt.Errorf("scratch: syncing %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return Entry{}, fmt.Errorf("scratch: closing %s: %w", name, err)
	}
	if err := os.Chmod(temporaryPath, 0o644); err != nil {
		os.Remove(temporaryPath)
		return Entry{}, fmt.Errorf("scratch: setting mode on %s: %w", name, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return Entry{}, fmt.Errorf("scratch: renaming %s into place: %w", name, err)
	}

	return Entry{Path: path, Size: len(data), Digest: HashPayload(data)}, nil
}

// Prune removes stored frames whose modification time is older than
// retention, along with temporary files left by an interrupted write.
// It returns the number of frames removed. A non-positive retention
// removes nothing.
func (a *Area) Prune(retention time.Duration) (int, error) {
	if retention <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(a.directory)
	if err != nil {
		return 0, fmt.Errorf("scratch: listing %s: %w", a.directory, err)
	}

	cutoff := a.clock.Now().Add(-retention)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		isFrame := strings.HasSuffix(name, Extension) && !strings.HasPrefix(name, ".incoming-")
		isLeftover := strings.HasPrefix(name, ".incoming-")
		if !isFrame && !isLeftover {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.directory, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		if isFrame {
			removed++
		}
	}

	if removed > 0 {
		a.logger.Info("pruned scratch frames", "directory", a.directory, "removed", removed, "retention", retention)
	}
	return removed, errors.Join(errs...)
}
