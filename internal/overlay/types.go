package overlay

// Visibility is the resolved show/hide decision
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// Override is the manual toggle state
type Override int

const (
	Shown Override = iota
	Suppressed
)

func (o Override) String() string {
	if o == Suppressed {
		return "suppressed"
	}
	return "shown"
}

// Point is a window offset in pixels. Y grows upwards from the bottom edge.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width and height in pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// View is the floating bar as seen by the window manager
type View interface {
	// Attach maps the view at the given bottom-anchored offset
	Attach(pos Point) error
	// Detach unmaps the view
	Detach() error
	// Attached reports whether the view is currently mapped
	Attached() bool
	// Move applies a new offset to an attached view
	Move(pos Point) error
	// Size returns the current view size
	Size() Size
	// SetCollapsed hides or shows the icon row
	SetCollapsed(collapsed bool) error
}

// Screen reports the visible display bounds
type Screen interface {
	Bounds() Size
}

// State is a snapshot of the controller
type State struct {
	Visibility Visibility `json:"-"`
	Override   Override   `json:"-"`
	Attached   bool       `json:"attached"`
	Collapsed  bool       `json:"collapsed"`
	LastApp    string     `json:"last_app"`
	Monitored  bool       `json:"monitored"`
	Position   Point      `json:"position"`
}

// InputKind identifies a user action on the overlay
type InputKind int

const (
	InputPointerDown InputKind = iota + 1
	InputPointerMove
	InputPointerUp
	InputToggle
	InputCollapse
	InputLaunch
)

// Input is one user action. X and Y are raw screen coordinates; Target is
// the platform ID for InputLaunch.
type Input struct {
	Kind   InputKind
	X, Y   int
	Target string
}
