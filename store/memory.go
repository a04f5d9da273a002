package store

import (
	"sync"

	"doorlock/lock"
)

// Memory keeps the records in memory. Used by the simulator board.
type Memory struct {
	mu       sync.Mutex
	lengths  lock.Lengths
	position lock.Position
}

// NewMemory creates a memory store holding the given records.
func NewMemory(l lock.Lengths, p lock.Position) *Memory {
	return &Memory{lengths: l, position: p}
}

// LoadLengths implements lock.Store.LoadLengths.
func (m *Memory) LoadLengths() (lock.Lengths, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lengths, nil
}

// SaveLengths implements lock.Store.SaveLengths.
func (m *Memory) SaveLengths(l lock.Lengths) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lengths = l
	return nil
}

// LoadPosition implements lock.Store.LoadPosition.
func (m *Memory) LoadPosition() (lock.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position, nil
}

// SavePosition implements lock.Store.SavePosition.
func (m *Memory) SavePosition(p lock.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = p
	return nil
}
