// Copyright 2026 The Gridcast Authors
// SPDX-License-Identifier: Apache-2.0

// Package instance enforces one running daemon per lock file.
//
// The lock is an advisory flock on a file; the kernel releases it when
// the holder exits, so a crashed daemon never leaves a stale lock
// behind. The holder's PID is written into the file for operators.
package instance

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning is returned when another process holds the lock.
var ErrAlreadyRunning = errors.New("instance: another instance is already running")

// Lock is a held single-instance lock.
type Lock struct {
	path string
	file *os.File
}

// Acquire takes the lock at path without blocking. If another process
// holds it, the error wraps ErrAlreadyRunning and names the holder's
// PID when known.
func Acquire(path string) (*Lock, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("instance: opening %s: %w", path, err)
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		holder := readHolder(file)
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			if holder > 0 {
				return nil, fmt.Errorf("%w (pid %d, lock %s)", ErrAlreadyRunning, holder, path)
			}
			return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
		}
		return nil, fmt.Errorf("instance: locking %s: %w", path, err)
	}

	if err := file.Truncate(0); err == nil {
		file.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{path: path, file: file}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. The file is left in place; removing it would
// let a concurrent Acquire lock a different inode.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.file.Truncate(0)
	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if unlockErr != nil {
		return fmt.Errorf("instance: unlocking %s: %w", l.path, unlockErr)
	}
	return closeErr
}

func readHolder(file *os.File) int {
	buffer := make([]byte, 32)
	count, _ := file.ReadAt(buffer, 0)
	pid, err := strconv.Atoi(strings.TrimSpace(string(buffer[:count])))
	if err != nil {
		return 0
	}
	return pid
}
