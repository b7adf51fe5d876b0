package x11

import (
	"encoding/binary"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_WM_NAME",
	"_NET_WM_PID",
	"WM_NAME",
	"WM_CLASS",
	"UTF8_STRING",
}

// client is a thin wrapper over an X connection with the EWMH atoms interned
type client struct {
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window
	atoms  map[string]xproto.Atom
}

func newClient() (*client, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to X server")
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	c := &client{
		conn:   conn,
		screen: screen,
		root:   screen.Root,
		atoms:  make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) getProperty(win xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, win, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

func (c *client) activeWindow() (xproto.Window, error) {
	data, err := c.getProperty(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err == nil && len(data) >= 4 {
		if win := xproto.Window(binary.LittleEndian.Uint32(data)); win != 0 {
			return win, nil
		}
	}

	focus, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get input focus")
	}
	if focus.Focus == 0 || focus.Focus == c.root {
		return 0, errors.New("no active window found")
	}
	return c.topLevel(focus.Focus), nil
}

func (c *client) topLevel(win xproto.Window) xproto.Window {
	for {
		reply, err := xproto.QueryTree(c.conn, win).Reply()
		if err != nil || reply.Parent == c.root || reply.Parent == 0 {
			return win
		}
		win = reply.Parent
	}
}

func (c *client) clientList() ([]xproto.Window, error) {
	data, err := c.getProperty(c.root, c.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 1024)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read _NET_CLIENT_LIST")
	}
	wins := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		wins = append(wins, xproto.Window(binary.LittleEndian.Uint32(data[i:])))
	}
	return wins, nil
}

func (c *client) windowName(win xproto.Window) string {
	if data, err := c.getProperty(win, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 256); err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	if data, err := c.getProperty(win, c.atoms["WM_NAME"], xproto.AtomString, 256); err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}
	return ""
}

func (c *client) windowClass(win xproto.Window) (instance, class string) {
	data, err := c.getProperty(win, c.atoms["WM_CLASS"], xproto.AtomString, 256)
	if err != nil || len(data) == 0 {
		return "", ""
	}
	return splitWMClass(data)
}

func (c *client) windowPID(win xproto.Window) int {
	data, err := c.getProperty(win, c.atoms["_NET_WM_PID"], xproto.AtomCardinal, 1)
	if err != nil || len(data) < 4 {
		return 0
	}
	return int(binary.LittleEndian.Uint32(data))
}

// activate asks the window manager to raise and focus win
func (c *client) activate(win xproto.Window) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   c.atoms["_NET_ACTIVE_WINDOW"],
		// source indication 2 = pager, so the WM does not apply focus stealing prevention
		Data: xproto.ClientMessageDataUnionData32New([]uint32{2, xproto.TimeCurrentTime, 0, 0, 0}),
	}
	mask := uint32(xproto.EventMaskSubstructureRedirect | xproto.EventMaskSubstructureNotify)
	if err := xproto.SendEventChecked(c.conn, false, c.root, mask, string(ev.Bytes())).Check(); err != nil {
		return errors.Wrap(err, "failed to send _NET_ACTIVE_WINDOW")
	}
	return nil
}

// splitWMClass splits the raw WM_CLASS value into instance and class
func splitWMClass(data []byte) (instance, class string) {
	parts := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
	if len(parts) >= 1 {
		instance = parts[0]
	}
	if len(parts) >= 2 {
		class = parts[1]
	}
	return instance, class
}
