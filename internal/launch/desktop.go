package launch

import (
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/actionsum/quickswitch/pkg/apps"
	"github.com/actionsum/quickswitch/pkg/window"
)

// WindowFinder finds tasks among the window manager's client windows
type WindowFinder struct {
	lister window.Lister
}

func NewWindowFinder(lister window.Lister) *WindowFinder {
	return &WindowFinder{lister: lister}
}

func (f *WindowFinder) FindTask(p apps.Platform) (Task, bool, error) {
	windows, err := f.lister.ClientWindows()
	if err != nil {
		return Task{}, false, err
	}
	for _, w := range windows {
		if matchesPlatform(p, w.AppName) || matchesPlatform(p, w.ProcessName) {
			return Task{WindowID: w.WindowID, PID: w.PID}, true, nil
		}
	}
	return Task{}, false, nil
}

// ProcessLister finds a running process by executable name
type ProcessLister interface {
	FindByName(names ...string) (int, bool, error)
}

// ProcessFinder finds tasks in the process table. Tasks found this way carry no window.
type ProcessFinder struct {
	lister ProcessLister
}

func NewProcessFinder(lister ProcessLister) *ProcessFinder {
	return &ProcessFinder{lister: lister}
}

func (f *ProcessFinder) FindTask(p apps.Platform) (Task, bool, error) {
	names := []string{p.WMClass}
	if bin := commandBinary(p.Command); bin != "" && bin != "xdg-open" {
		names = append(names, bin)
	}
	pid, ok, err := f.lister.FindByName(names...)
	if err != nil || !ok {
		return Task{}, false, err
	}
	return Task{PID: pid}, true, nil
}

// ChainFinder asks each finder in turn and returns the first hit
type ChainFinder []TaskFinder

func (c ChainFinder) FindTask(p apps.Platform) (Task, bool, error) {
	var firstErr error
	for _, f := range c {
		task, ok, err := f.FindTask(p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return task, true, nil
		}
	}
	return Task{}, false, firstErr
}

// CommandStarter raises windows through the window manager and starts new
// tasks by running the platform command in its own session.
type CommandStarter struct {
	raiser   window.Raiser
	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

func NewCommandStarter(raiser window.Raiser) *CommandStarter {
	return &CommandStarter{
		raiser:   raiser,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

func (s *CommandStarter) BringToFront(p apps.Platform, t Task) error {
	if t.WindowID == 0 {
		// single-instance apps forward a second start to the running instance
		log.Printf("%s is running (pid %d) without a known window, re-running its command", p.ID, t.PID)
		return s.StartNew(p, Options{})
	}
	if s.raiser == nil {
		return errors.Wrap(ErrLaunchFailed, "no window manager connection")
	}
	if err := s.raiser.Activate(t.WindowID); err != nil {
		return errors.Wrapf(ErrLaunchFailed, "raise %#x: %v", t.WindowID, err)
	}
	return nil
}

func (s *CommandStarter) StartNew(p apps.Platform, opts Options) error {
	fields := strings.Fields(p.Command)
	if len(fields) == 0 {
		return errors.Wrapf(ErrNotInstalled, "%s has no launch command", p.ID)
	}
	path, err := s.lookPath(fields[0])
	if err != nil {
		return errors.Wrapf(ErrNotInstalled, "%s: %v", fields[0], err)
	}

	cmd := exec.Command(path, fields[1:]...)
	cmd.Env = os.Environ()
	if opts.ExcludeFromRecents {
		// X11 has no recents list; the hint is passed on for launchers that read it
		cmd.Env = append(cmd.Env, "QUICKSWITCH_EXCLUDE_FROM_RECENTS=1")
	}
	if err := s.start(cmd); err != nil {
		return errors.Wrapf(ErrLaunchFailed, "start %s: %v", path, err)
	}
	log.Printf("Started %s (%s)", p.ID, p.Command)
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func commandBinary(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}

func matchesPlatform(p apps.Platform, name string) bool {
	if name == "" || p.WMClass == "" {
		return false
	}
	return strings.EqualFold(name, p.WMClass)
}
