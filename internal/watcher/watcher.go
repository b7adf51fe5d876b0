package watcher

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/actionsum/quickswitch/pkg/apps"
)

// Source reports the most recently used application in a time window
type Source interface {
	// MostRecent returns the identifier of the application last used in
	// (from, to], or "" when nothing was used.
	MostRecent(from, to time.Time) (string, error)
}

// ErrorRecorder receives sampling failures
type ErrorRecorder interface {
	RecordError(err error)
}

// Classification is one processed foreground sample
type Classification struct {
	App       string
	Monitored bool
	At        time.Time
}

// Options configures the sampling cadence
type Options struct {
	Interval time.Duration
	Lookback time.Duration
	Recorder ErrorRecorder
	Now      func() time.Time
}

// Watcher polls a Source on a fixed cadence and publishes classifications
// through a single-slot channel that always holds the latest value.
type Watcher struct {
	source    Source
	monitored apps.MonitoredSet
	interval  time.Duration
	lookback  time.Duration
	recorder  ErrorRecorder
	now       func() time.Time

	out chan Classification

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr string
}

func New(source Source, monitored apps.MonitoredSet, opts Options) *Watcher {
	if opts.Interval <= 0 {
		opts.Interval = 100 * time.Millisecond
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 500 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Watcher{
		source:    source,
		monitored: monitored,
		interval:  opts.Interval,
		lookback:  opts.Lookback,
		recorder:  opts.Recorder,
		now:       opts.Now,
		out:       make(chan Classification, 1),
	}
}

// C returns the classification channel
func (w *Watcher) C() <-chan Classification {
	return w.out
}

// Start begins sampling in a background goroutine. The first sample is taken immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return fmt.Errorf("watcher is already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	log.Printf("Starting foreground watcher with %v poll interval and %v lookback", w.interval, w.lookback)
	go w.run(ctx, w.done)
	return nil
}

// Stop cancels the pending sample and waits for the loop to exit. No
// classification is published after Stop returns. Safe to call when stopped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	log.Println("Foreground watcher stopped")
}

func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

func (w *Watcher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if c, ok := w.Sample(); ok {
				if ctx.Err() != nil {
					return
				}
				w.publish(c)
			}
			// rescheduled only after the sample finished, so one is in flight at a time
			timer.Reset(w.interval)
		}
	}
}

// Sample takes one foreground sample. It reports false when there is no
// classification: nothing was used in the window or the query failed.
func (w *Watcher) Sample() (Classification, bool) {
	now := w.now()
	app, err := w.source.MostRecent(now.Add(-w.lookback), now)
	if err != nil {
		w.reportError(err)
		return Classification{}, false
	}
	w.lastErr = ""
	if app == "" {
		return Classification{}, false
	}
	return Classification{
		App:       app,
		Monitored: w.monitored.Contains(app),
		At:        now,
	}, true
}

// reportError logs a failure once per distinct consecutive error
func (w *Watcher) reportError(err error) {
	msg := err.Error()
	if msg == w.lastErr {
		return
	}
	w.lastErr = msg
	log.Printf("Foreground query failed: %v", err)
	if w.recorder != nil {
		w.recorder.RecordError(err)
	}
}

func (w *Watcher) publish(c Classification) {
	for {
		select {
		case w.out <- c:
			return
		default:
		}
		// drop the stale value so the slot holds only the latest sample
		select {
		case <-w.out:
		default:
		}
	}
}
