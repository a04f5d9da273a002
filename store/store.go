// Package store persists the calibrated stroke lengths and the last
// position of the lock.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"doorlock/lock"
)

// ErrNotFound is returned when a record has never been written.
var ErrNotFound = errors.New("record not written")

const (
	lengthsFile  = "lengths.yaml"
	positionFile = "position.yaml"
)

// tempFile is the part of *os.File used to write a record.
type tempFile interface {
	Write(p []byte) (int, error)
	Sync() error
	Close() error
}

var createFile = func(name string) (tempFile, error) { return os.Create(name) }

// Config holds the location of the persistent records.
type Config struct {
	Dir string `yaml:"dir"` // e.g. "/var/lib/doorlock"
}

type lengthsRecord struct {
	Open    int `yaml:"open"`
	Close   int `yaml:"close"`
	Release int `yaml:"release"`
}

type positionRecord struct {
	Position string `yaml:"position"`
}

// File stores each record as a YAML file in a directory.
type File struct {
	mu  sync.Mutex
	dir string
}

// NewFile creates a file store, creating the directory if needed.
func NewFile(cfg Config) (*File, error) {
	if cfg.Dir == "" {
		return nil, errors.New("store: no directory configured")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &File{dir: cfg.Dir}, nil
}

// LoadLengths implements lock.Store.LoadLengths.
func (f *File) LoadLengths() (lock.Lengths, error) {
	var r lengthsRecord
	if err := f.read(lengthsFile, &r); err != nil {
		return lock.Lengths{}, err
	}
	return lock.Lengths{Open: r.Open, Close: r.Close, Release: r.Release}, nil
}

// SaveLengths implements lock.Store.SaveLengths.
func (f *File) SaveLengths(l lock.Lengths) error {
	return f.write(lengthsFile, lengthsRecord{Open: l.Open, Close: l.Close, Release: l.Release})
}

// LoadPosition implements lock.Store.LoadPosition.
func (f *File) LoadPosition() (lock.Position, error) {
	var r positionRecord
	if err := f.read(positionFile, &r); err != nil {
		return lock.Locked, err
	}
	p, err := lock.ParsePosition(r.Position)
	if err != nil {
		return lock.Locked, fmt.Errorf("%s: %w", positionFile, err)
	}
	return p, nil
}

// SavePosition implements lock.Store.SavePosition.
func (f *File) SavePosition(p lock.Position) error {
	return f.write(positionFile, positionRecord{Position: p.String()})
}

func (f *File) read(name string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// write replaces the record through a temp file and rename.
func (f *File) write(name string, v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(f.dir, name)
	file, err := createFile(path + ".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	_, err = file.Write(data)
	if err == nil {
		err = file.Sync()
	}
	if err = multierr.Append(err, file.Close()); err != nil {
		os.Remove(path + ".tmp")
		return fmt.Errorf("write %s: %w", name, err)
	}

	if err := os.Rename(path+".tmp", path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
