package detector

import (
	"fmt"
	"log"
	"os"

	"github.com/actionsum/quickswitch/pkg/integrations/process"
	"github.com/actionsum/quickswitch/pkg/integrations/wayland"
	"github.com/actionsum/quickswitch/pkg/integrations/x11"
	"github.com/actionsum/quickswitch/pkg/window"
)

// Desktop detects the focused window and can enumerate and raise windows
type Desktop interface {
	window.Detector
	window.Lister
	window.Raiser
}

// New picks a detector for the current session, trying Wayland compositors
// before X11 (which also covers XWayland sessions).
func New(procs *process.Lister) (Desktop, error) {
	server := DetectDisplayServer()

	if server == "wayland" {
		det := wayland.NewDetector(procs)
		if det.IsAvailable() {
			return det, nil
		}
		log.Printf("Wayland compositor not supported, trying X11")
	}

	if os.Getenv("DISPLAY") != "" {
		det := x11.NewDetector()
		if det.IsAvailable() {
			return det, nil
		}
		det.Close()
	}

	return nil, fmt.Errorf("no usable window detector for display server %q", server)
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
