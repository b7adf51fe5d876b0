package launch

import (
	"log"

	"github.com/pkg/errors"

	"github.com/actionsum/quickswitch/pkg/apps"
)

var (
	ErrInvalidTarget = errors.New("target is not a known platform")
	ErrNotInstalled  = errors.New("application is not installed")
	ErrLaunchFailed  = errors.New("application launch failed")
)

// Task is a running instance of an application
type Task struct {
	WindowID uint32 // 0 when the instance has no known top-level window
	PID      int
}

// Options are the flags passed when starting a new task
type Options struct {
	ExcludeFromRecents bool
}

// TaskFinder looks up a running task for a platform
type TaskFinder interface {
	FindTask(p apps.Platform) (Task, bool, error)
}

// Starter performs the single OS call of a dispatch
type Starter interface {
	BringToFront(p apps.Platform, t Task) error
	StartNew(p apps.Platform, opts Options) error
}

// Outcome tells which branch a dispatch took
type Outcome int

const (
	Reordered Outcome = iota + 1
	Started
)

func (o Outcome) String() string {
	switch o {
	case Reordered:
		return "reordered"
	case Started:
		return "started"
	default:
		return "none"
	}
}

// Dispatcher brings a running platform to front or starts a new task for it
type Dispatcher struct {
	table   *apps.Table
	finder  TaskFinder
	starter Starter
}

func NewDispatcher(table *apps.Table, finder TaskFinder, starter Starter) *Dispatcher {
	return &Dispatcher{table: table, finder: finder, starter: starter}
}

// Launch dispatches target, which is a platform ID or package identifier
func (d *Dispatcher) Launch(target string) (Outcome, error) {
	p, ok := d.table.Resolve(target)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidTarget, "%q", target)
	}

	task, running, err := d.finder.FindTask(p)
	if err != nil {
		// treated as not running
		log.Printf("Task lookup for %s failed: %v", p.Package, err)
		running = false
	}

	if running {
		if err := d.starter.BringToFront(p, task); err != nil {
			return 0, wrapLaunch(err, p)
		}
		return Reordered, nil
	}

	if err := d.starter.StartNew(p, Options{ExcludeFromRecents: true}); err != nil {
		return 0, wrapLaunch(err, p)
	}
	return Started, nil
}

func wrapLaunch(err error, p apps.Platform) error {
	if errors.Is(err, ErrNotInstalled) || errors.Is(err, ErrLaunchFailed) {
		return errors.Wrap(err, p.Package)
	}
	return errors.Wrapf(ErrLaunchFailed, "%s: %v", p.Package, err)
}
