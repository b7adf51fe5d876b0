package window

// WindowInfo represents information about the currently focused window
type WindowInfo struct {
	AppName       string // WM_CLASS class, app_id or process name
	WindowTitle   string
	ProcessName   string
	PID           int
	WindowID      uint32 // 0 when the display server does not expose ids
	DisplayServer string // "x11" or "wayland"
}

// Detector is the interface that all window detection implementations must satisfy
type Detector interface {
	// GetFocusedWindow returns information about the currently focused window
	GetFocusedWindow() (*WindowInfo, error)

	// IsAvailable checks if this detector can run on the current system
	IsAvailable() bool

	// GetDisplayServer returns the display server type ("x11" or "wayland")
	GetDisplayServer() string

	// Close cleans up any resources used by the detector
	Close() error
}

// Raiser brings an existing top-level window to the front
type Raiser interface {
	Activate(windowID uint32) error
}

// Lister enumerates the top-level client windows managed by the window manager
type Lister interface {
	ClientWindows() ([]WindowInfo, error)
}
