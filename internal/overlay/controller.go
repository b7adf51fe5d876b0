package overlay

import "log"

// Controller resolves automatic classification and the manual toggle into
// attach/detach calls on a View. It is not safe for concurrent use; all
// methods must be called from the goroutine that owns the view.
type Controller struct {
	view   View
	screen Screen

	sampled   bool // a classification has been observed
	monitored bool // last classification was a monitored app
	lastApp   string

	override  Override
	collapsed bool

	pos Point

	// drag baseline
	dragging    bool
	startPos    Point
	startPointX int
	startPointY int
}

// NewController creates a controller positioned at the initial offset
func NewController(view View, screen Screen, initial Point) *Controller {
	return &Controller{
		view:   view,
		screen: screen,
		pos:    initial,
	}
}

// Observe feeds one foreground classification
func (c *Controller) Observe(app string, monitored bool) Visibility {
	c.sampled = true
	c.lastApp = app
	c.monitored = monitored
	return c.apply()
}

// Toggle flips the manual override and returns the new effective visibility
func (c *Controller) Toggle() Visibility {
	if c.override == Suppressed {
		c.override = Shown
	} else {
		c.override = Suppressed
	}
	return c.apply()
}

// SetOverride sets the manual override explicitly
func (c *Controller) SetOverride(o Override) Visibility {
	c.override = o
	return c.apply()
}

// Effective returns the resolved visibility without touching the view
func (c *Controller) Effective() Visibility {
	if c.override == Suppressed {
		return Hidden
	}
	if c.sampled && c.monitored {
		return Visible
	}
	return Hidden
}

func (c *Controller) apply() Visibility {
	v := c.Effective()
	attached := c.view.Attached()
	switch {
	case v == Visible && !attached:
		if err := c.view.Attach(c.pos); err != nil {
			log.Printf("Overlay attach ignored: %v", err)
		}
	case v == Hidden && attached:
		if err := c.view.Detach(); err != nil {
			log.Printf("Overlay detach ignored: %v", err)
		}
	}
	return v
}

// PointerDown records the drag baseline
func (c *Controller) PointerDown(rawX, rawY int) {
	c.dragging = true
	c.startPos = c.pos
	c.startPointX = rawX
	c.startPointY = rawY
}

// PointerMove repositions the view relative to the baseline. Vertical motion
// is inverted because the offset is measured from the bottom edge.
func (c *Controller) PointerMove(rawX, rawY int) Point {
	if !c.dragging {
		return c.pos
	}

	next := Point{
		X: c.startPos.X + (rawX - c.startPointX),
		Y: c.startPos.Y - (rawY - c.startPointY),
	}
	c.pos = Clamp(next, c.screen.Bounds(), c.view.Size())

	if c.view.Attached() {
		if err := c.view.Move(c.pos); err != nil {
			log.Printf("Overlay move ignored: %v", err)
		}
	}
	return c.pos
}

// PointerUp ends the drag
func (c *Controller) PointerUp() {
	c.dragging = false
}

// ToggleCollapsed hides or shows the icon row
func (c *Controller) ToggleCollapsed() bool {
	c.collapsed = !c.collapsed
	if err := c.view.SetCollapsed(c.collapsed); err != nil {
		log.Printf("Overlay collapse ignored: %v", err)
	}
	// the view may have shrunk or grown, keep it on screen
	c.pos = Clamp(c.pos, c.screen.Bounds(), c.view.Size())
	if c.view.Attached() {
		if err := c.view.Move(c.pos); err != nil {
			log.Printf("Overlay move ignored: %v", err)
		}
	}
	return c.collapsed
}

// Shutdown force-hides the view. Safe to call repeatedly.
func (c *Controller) Shutdown() {
	c.dragging = false
	if !c.view.Attached() {
		return
	}
	if err := c.view.Detach(); err != nil {
		log.Printf("Overlay detach ignored: %v", err)
	}
}

func (c *Controller) Position() Point {
	return c.pos
}

func (c *Controller) Attached() bool {
	return c.view.Attached()
}

func (c *Controller) Snapshot() State {
	return State{
		Visibility: c.Effective(),
		Override:   c.override,
		Attached:   c.view.Attached(),
		Collapsed:  c.collapsed,
		LastApp:    c.lastApp,
		Monitored:  c.sampled && c.monitored,
		Position:   c.pos,
	}
}

// Clamp bounds p to [0, screen-view] on both axes
func Clamp(p Point, screen, view Size) Point {
	return Point{
		X: clampInt(p.X, 0, screen.Width-view.Width),
		Y: clampInt(p.Y, 0, screen.Height-view.Height),
	}
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
