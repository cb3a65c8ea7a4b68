package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// rotatingFile is a zapcore.WriteSyncer that rolls the log over once it grows
// past maxSize bytes, keeping count numbered backups (path.1 is the newest).
type rotatingFile struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	count   int
	file    *os.File
	size    int64
}

func openRotatingFile(path string, maxSize int64, count int) (*rotatingFile, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	r := &rotatingFile{path: path, maxSize: maxSize, count: count, file: file}
	if stat, err := file.Stat(); err == nil {
		r.size = stat.Size()
	}
	return r, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, fmt.Errorf("log file closed")
	}
	n, err := r.file.Write(p)
	r.size += int64(n)
	if err == nil && r.maxSize > 0 && r.size > r.maxSize {
		err = r.rotate()
	}
	return n, err
}

func (r *rotatingFile) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

func (r *rotatingFile) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
}

// rotate must be called with r.mu held.
func (r *rotatingFile) rotate() error {
	r.file.Close()
	r.file = nil

	if r.count > 0 {
		os.Remove(fmt.Sprintf("%s.%d", r.path, r.count))
		for i := r.count - 1; i >= 1; i-- {
			os.Rename(fmt.Sprintf("%s.%d", r.path, i), fmt.Sprintf("%s.%d", r.path, i+1))
		}
		os.Rename(r.path, r.path+".1")
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	r.file = file
	r.size = 0
	return nil
}
