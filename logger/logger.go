// Package logger routes the standard logger to stdout and, optionally, a
// size-rotated log file.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Rotator implements io.Writer and handles log file rotation based on size.
type Rotator struct {
	Filename   string
	MaxSize    int64 // bytes
	MaxBackups int
	file       *os.File
	size       int64
	mu         sync.Mutex
}

// Setup points the standard logger at stdout plus filename. An empty
// filename logs to stdout only.
func Setup(filename string, maxSizeMB int64, maxBackups int) error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if filename == "" {
		log.SetOutput(os.Stdout)
		return nil
	}
	rotator := &Rotator{
		Filename:   filename,
		MaxSize:    maxSizeMB * 1024 * 1024,
		MaxBackups: maxBackups,
	}
	if err := rotator.openExistingOrNew(); err != nil {
		log.SetOutput(os.Stdout)
		return fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return nil
}

func (r *Rotator) openExistingOrNew() error {
	info, err := os.Stat(r.Filename)
	if os.IsNotExist(err) {
		return r.openNew()
	}
	if err != nil {
		return err
	}
	f, err := os.OpenFile(r.Filename, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *Rotator) openNew() error {
	f, err := os.OpenFile(r.Filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	r.file = f
	r.size = 0
	return nil
}

// Write satisfies io.Writer, rotating first when p would overflow MaxSize.
func (r *Rotator) Write(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err = r.openExistingOrNew(); err != nil {
			return 0, err
		}
	}
	if r.MaxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.MaxSize {
		if err := r.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}

	n, err = r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close releases the current file.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate shifts log.N to log.N+1, the live file to log.1, and reopens.
func (r *Rotator) rotate() error {
	if r.file != nil {
		r.file.Close()
	}
	for i := r.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.Filename, i)
		if _, err := os.Stat(oldPath); os.IsNotExist(err) {
			continue
		}
		os.Rename(oldPath, fmt.Sprintf("%s.%d", r.Filename, i+1))
	}
	if r.MaxBackups > 0 {
		if _, err := os.Stat(r.Filename); err == nil {
			os.Rename(r.Filename, r.Filename+".1")
		}
	}
	return r.openNew()
}
