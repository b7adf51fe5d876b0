package wayland

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/actionsum/quickswitch/pkg/window"
)

const swayTree = `{
  "id": 1, "type": "root", "nodes": [
    {"id": 2, "type": "output", "nodes": [
      {"id": 3, "type": "workspace", "nodes": [
        {"id": 10, "type": "con", "name": "Telegram", "app_id": "org.telegram.desktop", "pid": 4001, "focused": false, "nodes": []},
        {"id": 11, "type": "con", "name": "WhatsApp", "pid": 4002, "focused": true,
         "window_properties": {"class": "whatsapp-desktop"}, "nodes": []}
      ],
      "floating_nodes": [
        {"id": 12, "type": "floating_con", "name": "Picker", "app_id": "picker", "pid": 4003, "nodes": []}
      ]}
    ]}
  ]
}`

type fakeProcs struct {
	names map[int]string
}

func (p fakeProcs) FindByName(names ...string) (int, bool, error) { return 0, false, nil }

func (p fakeProcs) NameOf(pid int) (string, error) {
	if n, ok := p.names[pid]; ok {
		return n, nil
	}
	return "", fmt.Errorf("no process %d", pid)
}

type recorder struct {
	calls   []string
	outputs map[string]string
	err     error
}

func (r *recorder) run(name string, args ...string) ([]byte, error) {
	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.outputs[call]), nil
}

func newTestDetector(compositor string, r *recorder) *Detector {
	return &Detector{
		compositor: compositor,
		procs:      fakeProcs{names: map[int]string{4002: "whatsapp"}},
		run:        r.run,
	}
}

func TestGetDisplayServer(t *testing.T) {
	d := newTestDetector(compositorSway, &recorder{})
	if got := d.GetDisplayServer(); got != "wayland" {
		t.Errorf("GetDisplayServer() = %s, want wayland", got)
	}
}

func TestSwayFocusedWindow(t *testing.T) {
	r := &recorder{outputs: map[string]string{"swaymsg -t get_tree -r": swayTree}}
	d := newTestDetector(compositorSway, r)

	info, err := d.GetFocusedWindow()
	if err != nil {
		t.Fatalf("GetFocusedWindow() error = %v", err)
	}
	want := window.WindowInfo{
		AppName:       "whatsapp-desktop",
		WindowTitle:   "WhatsApp",
		ProcessName:   "whatsapp",
		PID:           4002,
		WindowID:      11,
		DisplayServer: "wayland",
	}
	if *info != want {
		t.Errorf("GetFocusedWindow() = %+v, want %+v", *info, want)
	}
}

func TestSwayClientWindows(t *testing.T) {
	r := &recorder{outputs: map[string]string{"swaymsg -t get_tree -r": swayTree}}
	d := newTestDetector(compositorSway, r)

	windows, err := d.ClientWindows()
	if err != nil {
		t.Fatalf("ClientWindows() error = %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("ClientWindows() returned %d windows, want 3", len(windows))
	}
	if windows[0].AppName != "org.telegram.desktop" || windows[0].ProcessName != "org.telegram.desktop" {
		t.Errorf("first window = %+v", windows[0])
	}
	if windows[2].WindowID != 12 {
		t.Errorf("floating window id = %d, want 12", windows[2].WindowID)
	}
}

func TestHyprlandFocusedWindow(t *testing.T) {
	r := &recorder{outputs: map[string]string{
		"hyprctl activewindow -j": `{"class": "telegram-desktop", "title": "Saved Messages", "pid": 77}`,
	}}
	d := newTestDetector(compositorHyprland, r)

	info, err := d.GetFocusedWindow()
	if err != nil {
		t.Fatalf("GetFocusedWindow() error = %v", err)
	}
	if info.AppName != "telegram-desktop" || info.WindowTitle != "Saved Messages" || info.WindowID != 77 {
		t.Errorf("GetFocusedWindow() = %+v", info)
	}
}

func TestHyprlandNoActiveWindow(t *testing.T) {
	r := &recorder{outputs: map[string]string{"hyprctl activewindow -j": `{}`}}
	d := newTestDetector(compositorHyprland, r)

	if _, err := d.GetFocusedWindow(); err == nil {
		t.Error("GetFocusedWindow() expected error for empty reply")
	}
}

func TestActivate(t *testing.T) {
	tests := []struct {
		compositor string
		want       string
	}{
		{compositorSway, "swaymsg [con_id=11] focus"},
		{compositorHyprland, "hyprctl dispatch focuswindow pid:77"},
	}

	for _, tt := range tests {
		t.Run(tt.compositor, func(t *testing.T) {
			r := &recorder{}
			d := newTestDetector(tt.compositor, r)
			id := uint32(11)
			if tt.compositor == compositorHyprland {
				id = 77
			}
			if err := d.Activate(id); err != nil {
				t.Fatalf("Activate() error = %v", err)
			}
			if len(r.calls) != 1 || r.calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", r.calls, tt.want)
			}
		})
	}
}

func TestCommandFailure(t *testing.T) {
	r := &recorder{err: errors.New("exit status 1")}
	d := newTestDetector(compositorSway, r)

	if _, err := d.GetFocusedWindow(); err == nil {
		t.Error("GetFocusedWindow() expected error")
	}
	if err := d.Activate(1); err == nil {
		t.Error("Activate() expected error")
	}
}

func TestUnknownCompositor(t *testing.T) {
	d := newTestDetector(compositorUnknown, &recorder{})
	if d.IsAvailable() {
		t.Error("IsAvailable() = true for unknown compositor")
	}
	if _, err := d.GetFocusedWindow(); err == nil {
		t.Error("GetFocusedWindow() expected error")
	}
}

func TestDetectCompositorFromEnv(t *testing.T) {
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	t.Setenv("SWAYSOCK", "/run/user/1000/sway-ipc.sock")
	if got := detectCompositor(nil); got != compositorSway {
		t.Errorf("detectCompositor() = %s, want sway", got)
	}

	t.Setenv("SWAYSOCK", "")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc")
	if got := detectCompositor(nil); got != compositorHyprland {
		t.Errorf("detectCompositor() = %s, want hyprland", got)
	}

	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "")
	if got := detectCompositor(fakeProcs{}); got != compositorUnknown {
		t.Errorf("detectCompositor() = %s, want unknown", got)
	}
}
