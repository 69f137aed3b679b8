package api

import (
	"testing"

	"github.com/framewire/broker/internal/frame"
)

func frameFor(t *testing.T, s string) (frame.Frame, error) {
	t.Helper()
	return frame.New([]byte(s), 1<<20)
}
