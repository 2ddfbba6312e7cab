package hostcpu

import (
	"errors"
	"testing"

	"github.com/xyproto/vise"
)

func TestDetectIsDecisive(t *testing.T) {
	p, err := Detect(vise.DefaultKnobs())
	if (p == nil) == (err == nil) {
		t.Fatalf("Detect must return a profile or an error, got %v / %v", p, err)
	}
	if err != nil && !errors.Is(err, ErrNoVectorFile) {
		t.Fatalf("unexpected error kind: %v", err)
	}
	if p != nil && p.Name() == "" {
		t.Error("detected profile carries no name")
	}
}
