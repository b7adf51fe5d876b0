package wayland

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/actionsum/quickswitch/pkg/window"
)

const (
	compositorSway     = "sway"
	compositorHyprland = "hyprland"
	compositorUnknown  = "unknown"
)

// Processes resolves compositor and client processes
type Processes interface {
	FindByName(names ...string) (int, bool, error)
	NameOf(pid int) (string, error)
}

type runFunc func(name string, args ...string) ([]byte, error)

// Detector implements window.Detector, window.Lister and window.Raiser for
// sway and Hyprland. Hyprland windows are addressed by client pid.
type Detector struct {
	compositor string
	procs      Processes
	run        runFunc
}

// NewDetector creates a new Wayland detector
func NewDetector(procs Processes) *Detector {
	d := &Detector{
		procs: procs,
		run:   runCommand,
	}
	d.compositor = detectCompositor(procs)
	return d
}

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// detectCompositor prefers the compositor's IPC environment and falls back
// to looking for its process
func detectCompositor(procs Processes) string {
	if os.Getenv("SWAYSOCK") != "" {
		return compositorSway
	}
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		return compositorHyprland
	}
	if procs == nil {
		return compositorUnknown
	}
	if _, ok, _ := procs.FindByName("sway"); ok {
		return compositorSway
	}
	if _, ok, _ := procs.FindByName("Hyprland"); ok {
		return compositorHyprland
	}
	return compositorUnknown
}

// IsAvailable checks if Wayland detection is available
func (d *Detector) IsAvailable() bool {
	switch d.compositor {
	case compositorSway:
		return commandExists("swaymsg")
	case compositorHyprland:
		return commandExists("hyprctl")
	default:
		return false
	}
}

// GetDisplayServer returns "wayland"
func (d *Detector) GetDisplayServer() string {
	return "wayland"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	var info *window.WindowInfo
	switch d.compositor {
	case compositorSway:
		nodes, err := d.swayViews()
		if err != nil {
			return nil, err
		}
		for i := range nodes {
			if nodes[i].Focused {
				info = nodes[i].info()
				break
			}
		}
		if info == nil {
			return nil, fmt.Errorf("sway reports no focused window")
		}
	case compositorHyprland:
		out, err := d.run("hyprctl", "activewindow", "-j")
		if err != nil {
			return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
		}
		var c hyprClient
		if err := json.Unmarshal(out, &c); err != nil {
			return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
		}
		if c.Class == "" {
			return nil, fmt.Errorf("hyprland reports no active window")
		}
		info = c.info()
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}

	d.fillProcessName(info)
	return info, nil
}

// ClientWindows lists the compositor's toplevel windows
func (d *Detector) ClientWindows() ([]window.WindowInfo, error) {
	var out []window.WindowInfo
	switch d.compositor {
	case compositorSway:
		nodes, err := d.swayViews()
		if err != nil {
			return nil, err
		}
		for i := range nodes {
			out = append(out, *nodes[i].info())
		}
	case compositorHyprland:
		raw, err := d.run("hyprctl", "clients", "-j")
		if err != nil {
			return nil, fmt.Errorf("failed to execute hyprctl: %w", err)
		}
		var clients []hyprClient
		if err := json.Unmarshal(raw, &clients); err != nil {
			return nil, fmt.Errorf("failed to parse hyprctl output: %w", err)
		}
		for i := range clients {
			out = append(out, *clients[i].info())
		}
	default:
		return nil, fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}

	for i := range out {
		d.fillProcessName(&out[i])
	}
	return out, nil
}

// Activate focuses a window returned by ClientWindows
func (d *Detector) Activate(windowID uint32) error {
	var err error
	switch d.compositor {
	case compositorSway:
		_, err = d.run("swaymsg", fmt.Sprintf("[con_id=%d]", windowID), "focus")
	case compositorHyprland:
		_, err = d.run("hyprctl", "dispatch", "focuswindow", "pid:"+strconv.FormatUint(uint64(windowID), 10))
	default:
		return fmt.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
	if err != nil {
		return fmt.Errorf("failed to focus window %d: %w", windowID, err)
	}
	return nil
}

func (d *Detector) swayViews() ([]swayNode, error) {
	out, err := d.run("swaymsg", "-t", "get_tree", "-r")
	if err != nil {
		return nil, fmt.Errorf("failed to execute swaymsg: %w", err)
	}
	var root swayNode
	if err := json.Unmarshal(out, &root); err != nil {
		return nil, fmt.Errorf("failed to parse sway tree: %w", err)
	}
	var views []swayNode
	root.collectViews(&views)
	return views, nil
}

func (d *Detector) fillProcessName(info *window.WindowInfo) {
	info.ProcessName = info.AppName
	if d.procs == nil || info.PID <= 0 {
		return
	}
	if name, err := d.procs.NameOf(info.PID); err == nil && name != "" {
		info.ProcessName = name
	}
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}

type swayNode struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Focused bool   `json:"focused"`
	AppID   string `json:"app_id"`
	PID     int    `json:"pid"`

	WindowProperties *struct {
		Class string `json:"class"`
	} `json:"window_properties"`

	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

// collectViews appends every node that holds an application window
func (n *swayNode) collectViews(out *[]swayNode) {
	if (n.Type == "con" || n.Type == "floating_con") && n.PID > 0 {
		*out = append(*out, *n)
	}
	for i := range n.Nodes {
		n.Nodes[i].collectViews(out)
	}
	for i := range n.FloatingNodes {
		n.FloatingNodes[i].collectViews(out)
	}
}

func (n *swayNode) info() *window.WindowInfo {
	app := n.AppID
	if app == "" && n.WindowProperties != nil {
		// XWayland clients carry WM_CLASS instead of an app_id
		app = n.WindowProperties.Class
	}
	if app == "" {
		app = "Unknown"
	}
	return &window.WindowInfo{
		AppName:       app,
		WindowTitle:   n.Name,
		PID:           n.PID,
		WindowID:      uint32(n.ID),
		DisplayServer: "wayland",
	}
}

type hyprClient struct {
	Class string `json:"class"`
	Title string `json:"title"`
	PID   int    `json:"pid"`
}

func (c *hyprClient) info() *window.WindowInfo {
	app := c.Class
	if app == "" {
		app = "Unknown"
	}
	return &window.WindowInfo{
		AppName:       app,
		WindowTitle:   c.Title,
		PID:           c.PID,
		WindowID:      uint32(c.PID),
		DisplayServer: "wayland",
	}
}
