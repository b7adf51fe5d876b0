package window_test

import (
	"testing"

	"github.com/actionsum/quickswitch/pkg/integrations/wayland"
	"github.com/actionsum/quickswitch/pkg/integrations/x11"
	"github.com/actionsum/quickswitch/pkg/window"
)

func TestDetectorsImplementInterfaces(t *testing.T) {
	tests := []struct {
		name     string
		detector interface{}
	}{
		{"x11", (*x11.Detector)(nil)},
		{"wayland", (*wayland.Detector)(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.detector.(window.Detector); !ok {
				t.Errorf("%s does not implement window.Detector", tt.name)
			}
			if _, ok := tt.detector.(window.Lister); !ok {
				t.Errorf("%s does not implement window.Lister", tt.name)
			}
			if _, ok := tt.detector.(window.Raiser); !ok {
				t.Errorf("%s does not implement window.Raiser", tt.name)
			}
		})
	}
}

func TestDisplayServerNames(t *testing.T) {
	if got := wayland.NewDetector(nil).GetDisplayServer(); got != "wayland" {
		t.Errorf("wayland GetDisplayServer() = %s, want wayland", got)
	}
	if got := (&x11.Detector{}).GetDisplayServer(); got != "x11" {
		t.Errorf("x11 GetDisplayServer() = %s, want x11", got)
	}
}
