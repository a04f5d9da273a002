//go:build linux

package hw

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kenshaw/evdev"
	log "github.com/sirupsen/logrus"
)

// evdevButton presents a key of an input device as an active-low pin.
type evdevButton struct {
	dev     *evdev.Evdev
	key     string
	pressed atomic.Bool
	cancel  context.CancelFunc
}

func newEvdevButton(device, key string) (*evdevButton, error) {
	dev, err := evdev.OpenFile(device)
	if err != nil {
		return nil, fmt.Errorf("open evdev %s: %w", device, err)
	}
	log.Printf("hw: button device %s (%s)", device, dev.Name())

	ctx, cancel := context.WithCancel(context.Background())
	b := &evdevButton{dev: dev, key: key, cancel: cancel}
	go b.run(ctx)
	return b, nil
}

func (b *evdevButton) run(ctx context.Context) {
	ch := b.dev.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-ch:
			if event == nil {
				log.Warnln("hw: button device closed")
				return
			}
			switch event.Type.(type) {
			case evdev.KeyType:
				if b.key != "" && evdev.KeyType(event.Code).String() != b.key {
					continue
				}
				// 1 press, 0 release, 2 autorepeat
				switch event.Value {
				case 1:
					b.pressed.Store(true)
				case 0:
					b.pressed.Store(false)
				}
			}
		}
	}
}

func (b *evdevButton) Get() bool { return !b.pressed.Load() }

func (b *evdevButton) Close() error {
	b.cancel()
	return b.dev.Close()
}
