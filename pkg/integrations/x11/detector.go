package x11

import (
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jezek/xgb/xproto"

	"github.com/actionsum/quickswitch/pkg/window"
)

// Detector implements window.Detector for X11
type Detector struct {
	client     *client
	hasXdotool bool
	hasXprop   bool
}

// NewDetector creates a new X11 detector. The native connection is preferred;
// xdotool and xprop are used when no connection can be opened.
func NewDetector() *Detector {
	d := &Detector{}
	c, err := newClient()
	if err != nil {
		log.Printf("X11 native connection unavailable, falling back to command line tools: %v", err)
	} else {
		d.client = c
	}
	d.hasXdotool = d.commandExists("xdotool")
	d.hasXprop = d.commandExists("xprop")
	return d
}

// commandExists checks if a command is available in PATH
func (d *Detector) commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// IsAvailable checks if X11 detection is available
func (d *Detector) IsAvailable() bool {
	return d.client != nil || d.hasXdotool
}

// GetDisplayServer returns "x11"
func (d *Detector) GetDisplayServer() string {
	return "x11"
}

// GetFocusedWindow returns information about the currently focused window
func (d *Detector) GetFocusedWindow() (*window.WindowInfo, error) {
	if d.client != nil {
		return d.getFocusedWindowNative()
	}
	if d.hasXdotool {
		return d.getFocusedWindowXdotool()
	}
	return nil, fmt.Errorf("no X11 detection method available (X connection or xdotool required)")
}

func (d *Detector) getFocusedWindowNative() (*window.WindowInfo, error) {
	win, err := d.client.activeWindow()
	if err != nil {
		return nil, err
	}
	info := d.describe(win)
	return &info, nil
}

func (d *Detector) describe(win xproto.Window) window.WindowInfo {
	instance, class := d.client.windowClass(win)
	appName := class
	if appName == "" {
		appName = instance
	}
	return window.WindowInfo{
		AppName:       appName,
		WindowTitle:   d.client.windowName(win),
		ProcessName:   instance,
		PID:           d.client.windowPID(win),
		WindowID:      uint32(win),
		DisplayServer: "x11",
	}
}

// getFocusedWindowXdotool uses xdotool to get focused window info
func (d *Detector) getFocusedWindowXdotool() (*window.WindowInfo, error) {
	windowIDOutput, err := exec.Command("xdotool", "getactivewindow").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to get active x11 window ID: %w", err)
	}
	windowID := strings.TrimSpace(string(windowIDOutput))

	info := &window.WindowInfo{AppName: "Unknown", DisplayServer: "x11"}
	if id, err := strconv.ParseUint(windowID, 10, 32); err == nil {
		info.WindowID = uint32(id)
	}

	if nameOutput, err := exec.Command("xdotool", "getwindowname", windowID).Output(); err == nil {
		info.WindowTitle = strings.TrimSpace(string(nameOutput))
	}

	if d.hasXprop {
		if classOutput, err := exec.Command("xprop", "-id", windowID, "WM_CLASS").Output(); err == nil {
			if class := parseWMClass(string(classOutput)); class != "" {
				info.AppName = class
			}
		}
	}

	if pidOutput, err := exec.Command("xdotool", "getwindowpid", windowID).Output(); err == nil {
		pid := strings.TrimSpace(string(pidOutput))
		info.PID, _ = strconv.Atoi(pid)
		if psOutput, err := exec.Command("ps", "-p", pid, "-o", "comm=").Output(); err == nil {
			info.ProcessName = strings.TrimSpace(string(psOutput))
			if info.AppName == "Unknown" && info.ProcessName != "" {
				info.AppName = info.ProcessName
			}
		}
	}

	return info, nil
}

// ClientWindows lists the windows in _NET_CLIENT_LIST
func (d *Detector) ClientWindows() ([]window.WindowInfo, error) {
	if d.client == nil {
		return nil, fmt.Errorf("client list requires a native X11 connection")
	}
	wins, err := d.client.clientList()
	if err != nil {
		return nil, err
	}
	infos := make([]window.WindowInfo, 0, len(wins))
	for _, win := range wins {
		infos = append(infos, d.describe(win))
	}
	return infos, nil
}

// Activate raises the given window through the window manager
func (d *Detector) Activate(windowID uint32) error {
	if d.client != nil {
		return d.client.activate(xproto.Window(windowID))
	}
	if d.hasXdotool {
		if err := exec.Command("xdotool", "windowactivate", strconv.FormatUint(uint64(windowID), 10)).Run(); err != nil {
			return fmt.Errorf("xdotool windowactivate failed: %w", err)
		}
		return nil
	}
	return fmt.Errorf("no X11 method available to activate window %#x", windowID)
}

// parseWMClass extracts the class name from xprop WM_CLASS output
func parseWMClass(output string) string {
	parts := strings.Split(output, "=")
	if len(parts) < 2 {
		return ""
	}

	classInfo := strings.TrimSpace(parts[1])
	classInfo = strings.Trim(classInfo, "\"")

	classes := strings.Split(classInfo, ",")
	if len(classes) > 0 {
		className := strings.TrimSpace(classes[len(classes)-1])
		className = strings.Trim(className, "\" ")
		return className
	}

	return ""
}

// Close cleans up resources
func (d *Detector) Close() error {
	if d.client != nil {
		d.client.close()
		d.client = nil
	}
	return nil
}
