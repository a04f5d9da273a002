//go:build !screen

package indicator

import (
	"errors"
	"testing"

	"doorlock/video"
)

func TestVideoNotCompiled(t *testing.T) {
	if _, err := New(Config{VideoEnabled: true}); !errors.Is(err, video.ErrScreenNotCompiled) {
		t.Errorf("New error %v, want ErrScreenNotCompiled", err)
	}
}
