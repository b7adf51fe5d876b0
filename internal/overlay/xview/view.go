// Package xview draws the floating bar as override-redirect X11 windows.
package xview

import (
	"log"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"

	"github.com/actionsum/quickswitch/internal/overlay"
	"github.com/actionsum/quickswitch/pkg/apps"
)

const (
	handleColor = 0x444444
	toggleColor = 0x222222
	toggleSize  = 40
	toggleInset = 16

	// releases closer than this to the press are clicks
	clickSlop = 4
)

// Layout is the bar geometry in pixels
type Layout struct {
	CellSize int
	Margin   int
}

func (l Layout) cellSpan() int {
	return l.CellSize + 2*l.Margin
}

// View is an overlay.View backed by an X connection
type View struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	layout Layout

	bar    xproto.Window
	toggle xproto.Window
	cells  map[xproto.Window]string // child window -> platform ID, "" for the handle
	count  int

	mu     sync.Mutex
	mapped bool
	size   overlay.Size

	inputs chan overlay.Input
	quit   chan struct{}
	done   chan struct{}
}

// Open connects to the X server and creates the bar and toggle windows.
// The toggle window is mapped immediately; the bar starts unmapped.
func Open(platforms []apps.Platform, layout Layout) (*View, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	v := &View{
		conn:   conn,
		screen: xproto.Setup(conn).DefaultScreen(conn),
		layout: layout,
		cells:  make(map[xproto.Window]string, len(platforms)+1),
		count:  len(platforms) + 1,
		inputs: make(chan overlay.Input, 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	v.size = v.expandedSize()

	if err := v.createBar(platforms); err != nil {
		conn.Close()
		return nil, err
	}
	if err := v.createToggle(); err != nil {
		conn.Close()
		return nil, err
	}

	go v.readEvents()
	return v, nil
}

func (v *View) expandedSize() overlay.Size {
	span := v.layout.cellSpan()
	return overlay.Size{Width: span * v.count, Height: span}
}

func (v *View) collapsedSize() overlay.Size {
	span := v.layout.cellSpan()
	return overlay.Size{Width: span, Height: span}
}

func (v *View) newWindow(parent xproto.Window, x, y, w, h int, color uint32, overrideRedirect bool, events uint32) (xproto.Window, error) {
	win, err := xproto.NewWindowId(v.conn)
	if err != nil {
		return 0, errors.Wrap(err, "failed to allocate window id")
	}

	mask := uint32(xproto.CwBackPixel | xproto.CwEventMask)
	values := []uint32{color}
	if overrideRedirect {
		mask = xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask
		values = append(values, 1)
	}
	values = append(values, events)

	err = xproto.CreateWindowChecked(v.conn, v.screen.RootDepth, win, parent,
		int16(x), int16(y), uint16(w), uint16(h), 0,
		xproto.WindowClassInputOutput, v.screen.RootVisual, mask, values).Check()
	if err != nil {
		return 0, errors.Wrap(err, "failed to create window")
	}
	return win, nil
}

func (v *View) createBar(platforms []apps.Platform) error {
	events := uint32(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskButtonMotion)
	bar, err := v.newWindow(v.screen.Root, 0, 0, v.size.Width, v.size.Height, 0x000000, true, events)
	if err != nil {
		return err
	}
	v.bar = bar
	v.markDock(bar)

	span := v.layout.cellSpan()
	m := v.layout.Margin
	colors := []uint32{handleColor}
	ids := []string{""}
	for _, p := range platforms {
		colors = append(colors, p.Color)
		ids = append(ids, p.ID)
	}
	for i, color := range colors {
		cell, err := v.newWindow(bar, i*span+m, m, v.layout.CellSize, v.layout.CellSize, color, false, 0)
		if err != nil {
			return err
		}
		v.cells[cell] = ids[i]
		xproto.MapWindow(v.conn, cell)
	}
	return nil
}

// markDock tags the bar for compositors that skip shadows and effects on docks
func (v *View) markDock(win xproto.Window) {
	atom := func(name string) xproto.Atom {
		reply, err := xproto.InternAtom(v.conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return xproto.AtomNone
		}
		return reply.Atom
	}
	setAtom := func(prop, value string) {
		data := make([]byte, 4)
		xgb.Put32(data, uint32(atom(value)))
		xproto.ChangeProperty(v.conn, xproto.PropModeReplace, win, atom(prop), xproto.AtomAtom, 32, 1, data)
	}
	setAtom("_NET_WM_WINDOW_TYPE", "_NET_WM_WINDOW_TYPE_DOCK")
	setAtom("_NET_WM_STATE", "_NET_WM_STATE_ABOVE")
}

func (v *View) createToggle() error {
	events := uint32(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease)
	toggle, err := v.newWindow(v.screen.Root, toggleInset, toggleInset, toggleSize, toggleSize, toggleColor, true, events)
	if err != nil {
		return err
	}
	v.toggle = toggle
	if err := xproto.MapWindowChecked(v.conn, toggle).Check(); err != nil {
		return errors.Wrap(err, "failed to map toggle window")
	}
	return nil
}

// Inputs delivers user actions on the bar and toggle windows
func (v *View) Inputs() <-chan overlay.Input {
	return v.inputs
}

// Bounds implements overlay.Screen
func (v *View) Bounds() overlay.Size {
	return overlay.Size{Width: int(v.screen.WidthInPixels), Height: int(v.screen.HeightInPixels)}
}

func (v *View) Size() overlay.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.size
}

func (v *View) Attached() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mapped
}

// topLeft converts a bottom-anchored offset into root window coordinates
func (v *View) topLeft(pos overlay.Point) (int, int) {
	size := v.Size()
	return pos.X, v.Bounds().Height - size.Height - pos.Y
}

func (v *View) Attach(pos overlay.Point) error {
	if err := v.Move(pos); err != nil {
		return err
	}
	if err := xproto.MapWindowChecked(v.conn, v.bar).Check(); err != nil {
		return errors.Wrap(err, "failed to map overlay")
	}
	xproto.ConfigureWindow(v.conn, v.bar, xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})

	v.mu.Lock()
	v.mapped = true
	v.mu.Unlock()
	return nil
}

func (v *View) Detach() error {
	if err := xproto.UnmapWindowChecked(v.conn, v.bar).Check(); err != nil {
		return errors.Wrap(err, "failed to unmap overlay")
	}
	v.mu.Lock()
	v.mapped = false
	v.mu.Unlock()
	return nil
}

func (v *View) Move(pos overlay.Point) error {
	x, y := v.topLeft(pos)
	err := xproto.ConfigureWindowChecked(v.conn, v.bar,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))}).Check()
	if err != nil {
		return errors.Wrap(err, "failed to move overlay")
	}
	return nil
}

func (v *View) SetCollapsed(collapsed bool) error {
	v.mu.Lock()
	if collapsed {
		v.size = v.collapsedSize()
	} else {
		v.size = v.expandedSize()
	}
	size := v.size
	v.mu.Unlock()

	err := xproto.ConfigureWindowChecked(v.conn, v.bar,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(size.Width), uint32(size.Height)}).Check()
	if err != nil {
		return errors.Wrap(err, "failed to resize overlay")
	}
	return nil
}

// Close destroys the windows and the connection
func (v *View) Close() error {
	close(v.quit)
	xproto.DestroyWindow(v.conn, v.bar)
	xproto.DestroyWindow(v.conn, v.toggle)
	v.conn.Close()
	<-v.done
	return nil
}

func (v *View) readEvents() {
	defer close(v.done)
	defer close(v.inputs)

	var pressX, pressY int
	var pressChild xproto.Window

	for {
		ev, xerr := v.conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return
		}
		if xerr != nil {
			log.Printf("X11 error on overlay connection: %v", xerr)
			continue
		}

		switch e := ev.(type) {
		case xproto.ButtonPressEvent:
			if e.Event == v.toggle {
				continue
			}
			pressX, pressY, pressChild = int(e.RootX), int(e.RootY), e.Child
			v.emit(overlay.Input{Kind: overlay.InputPointerDown, X: pressX, Y: pressY})

		case xproto.MotionNotifyEvent:
			v.emit(overlay.Input{Kind: overlay.InputPointerMove, X: int(e.RootX), Y: int(e.RootY)})

		case xproto.ButtonReleaseEvent:
			if e.Event == v.toggle {
				v.emit(overlay.Input{Kind: overlay.InputToggle})
				continue
			}
			v.emit(overlay.Input{Kind: overlay.InputPointerUp, X: int(e.RootX), Y: int(e.RootY)})
			if !isClick(pressX, pressY, int(e.RootX), int(e.RootY)) || e.Child != pressChild {
				continue
			}
			id, ok := v.cells[e.Child]
			switch {
			case !ok:
			case id == "":
				v.emit(overlay.Input{Kind: overlay.InputCollapse})
			default:
				v.emit(overlay.Input{Kind: overlay.InputLaunch, Target: id})
			}
		}
	}
}

// emit delivers in to the consumer. Pointer moves are dropped when the
// consumer lags; every other input waits for it until Close.
func (v *View) emit(in overlay.Input) {
	if in.Kind == overlay.InputPointerMove {
		select {
		case v.inputs <- in:
		default:
		}
		return
	}

	select {
	case v.inputs <- in:
	case <-v.quit:
	}
}

func isClick(x0, y0, x1, y1 int) bool {
	dx, dy := x1-x0, y1-y0
	return dx*dx+dy*dy <= clickSlop*clickSlop
}

// Available reports whether an X display can be opened for the overlay
func Available() bool {
	conn, err := xgb.NewConn()
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
