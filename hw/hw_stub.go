//go:build !linux

package hw

func newCdev(cfg Config) (*Board, error) { return nil, ErrNotSupported }

func newMem(cfg Config) (*Board, error) { return nil, ErrNotSupported }

type evdevButton struct{}

func newEvdevButton(device, key string) (*evdevButton, error) { return nil, ErrNotSupported }

func (b *evdevButton) Get() bool    { return true }
func (b *evdevButton) Close() error { return nil }

func newRpio(cfg Config) (*Board, error) { return nil, ErrNotSupported }
