// Package floating runs the floating bar: it feeds watcher classifications
// and user input into the overlay controller from a single goroutine.
package floating

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/actionsum/quickswitch/internal/overlay"
	"github.com/actionsum/quickswitch/internal/watcher"
)

// Inputs delivers user actions on the overlay
type Inputs interface {
	Inputs() <-chan overlay.Input
}

// Preferences is the subset of the store used at cold start
type Preferences interface {
	LastOpenedApp() (string, bool, error)
	IsFirstRun() (bool, error)
	CompleteFirstRun() error
}

type Options struct {
	// OnLaunch is called from the service goroutine when a cell is clicked
	// and when the last opened app is restored.
	OnLaunch func(target string)
}

type Service struct {
	watcher *watcher.Watcher
	ctrl    *overlay.Controller
	inputs  <-chan overlay.Input
	prefs   Preferences
	launch  func(string)

	requests chan func(*overlay.Controller)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	last   overlay.State
}

func NewService(w *watcher.Watcher, ctrl *overlay.Controller, inputs Inputs, prefs Preferences, opts Options) *Service {
	s := &Service{
		watcher:  w,
		ctrl:     ctrl,
		prefs:    prefs,
		launch:   opts.OnLaunch,
		requests: make(chan func(*overlay.Controller)),
	}
	if inputs != nil {
		s.inputs = inputs.Inputs()
	}
	if s.launch == nil {
		s.launch = func(string) {}
	}
	return s
}

// Start begins watching and handling input
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return fmt.Errorf("floating service is already running")
	}
	if err := s.watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	log.Println("Floating service started")
	go s.run(ctx, s.done)
	return nil
}

// EnsureStarted starts the service unless it is already running
func (s *Service) EnsureStarted() error {
	if s.IsRunning() {
		return nil
	}
	err := s.Start(context.Background())
	if err != nil && s.IsRunning() {
		return nil
	}
	return err
}

// Stop halts the watcher and hides the bar. Safe to call when stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("Floating service stopped")
}

func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Snapshot returns the controller state. When stopped it returns the state
// captured at shutdown.
func (s *Service) Snapshot() overlay.State {
	var state overlay.State
	if s.do(func(c *overlay.Controller) { state = c.Snapshot() }) {
		return state
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Toggle flips the manual override. It reports false when not running.
func (s *Service) Toggle() (overlay.Visibility, bool) {
	var v overlay.Visibility
	ok := s.do(func(c *overlay.Controller) { v = c.Toggle() })
	return v, ok
}

// Restore relaunches the last opened app, except on the very first run
// which only clears the first-run flag.
func (s *Service) Restore() {
	if s.prefs == nil {
		return
	}

	first, err := s.prefs.IsFirstRun()
	if err != nil {
		log.Printf("Failed to read first run flag: %v", err)
		return
	}
	if first {
		if err := s.prefs.CompleteFirstRun(); err != nil {
			log.Printf("Failed to clear first run flag: %v", err)
		}
		return
	}

	pkg, ok, err := s.prefs.LastOpenedApp()
	if err != nil {
		log.Printf("Failed to read last opened app: %v", err)
		return
	}
	if !ok {
		return
	}
	log.Printf("Restoring last opened app %s", pkg)
	s.do(func(*overlay.Controller) { s.launch(pkg) })
}

// do runs fn on the service goroutine and waits for it
func (s *Service) do(fn func(*overlay.Controller)) bool {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return false
	}

	finished := make(chan struct{})
	select {
	case s.requests <- func(c *overlay.Controller) {
		fn(c)
		close(finished)
	}:
	case <-done:
		return false
	}
	<-finished
	return true
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	inputs := s.inputs
	classifications := s.watcher.C()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return

		case c := <-classifications:
			s.ctrl.Observe(c.App, c.Monitored)

		case in, ok := <-inputs:
			if !ok {
				inputs = nil
				continue
			}
			s.handle(in)

		case fn := <-s.requests:
			fn(s.ctrl)
		}
	}
}

func (s *Service) handle(in overlay.Input) {
	switch in.Kind {
	case overlay.InputPointerDown:
		s.ctrl.PointerDown(in.X, in.Y)
	case overlay.InputPointerMove:
		s.ctrl.PointerMove(in.X, in.Y)
	case overlay.InputPointerUp:
		s.ctrl.PointerUp()
	case overlay.InputToggle:
		log.Printf("Overlay toggled: %s", s.ctrl.Toggle())
	case overlay.InputCollapse:
		s.ctrl.ToggleCollapsed()
	case overlay.InputLaunch:
		s.launch(in.Target)
	}
}

func (s *Service) shutdown() {
	s.watcher.Stop()
	// discard a sample published before the watcher stopped
	select {
	case <-s.watcher.C():
	default:
	}
	s.ctrl.Shutdown()

	s.mu.Lock()
	s.last = s.ctrl.Snapshot()
	s.mu.Unlock()
}
