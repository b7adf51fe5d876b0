// Package usage turns a focused-window detector into a usage statistics
// facility that answers "which application was used last in this window".
package usage

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/quickswitch/pkg/apps"
	"github.com/actionsum/quickswitch/pkg/window"
)

// ErrNoAccess is returned when the detector cannot run on this system
var ErrNoAccess = errors.New("usage access not available")

// Stats records the last time each application owned the focus. It is
// meant to be queried from a single goroutine.
type Stats struct {
	detector window.Detector
	table    *apps.Table
	now      func() time.Time
	lastUsed map[string]time.Time
}

func NewStats(detector window.Detector, table *apps.Table) *Stats {
	return &Stats{
		detector: detector,
		table:    table,
		now:      time.Now,
		lastUsed: make(map[string]time.Time),
	}
}

// HasAccess reports whether the underlying detector is usable
func (s *Stats) HasAccess() bool {
	return s.detector != nil && s.detector.IsAvailable()
}

// MostRecent samples the focused window and returns the application with the
// latest use inside (from, to]. The window focused now counts as used at to,
// so it is always part of the answer.
func (s *Stats) MostRecent(from, to time.Time) (string, error) {
	if !s.HasAccess() {
		return "", ErrNoAccess
	}

	info, err := s.detector.GetFocusedWindow()
	if err != nil {
		return "", errors.Wrap(err, "failed to query focused window")
	}
	if id := s.Identify(info); id != "" {
		at := s.now()
		if at.After(to) {
			at = to
		}
		s.lastUsed[id] = at
	}

	var best string
	var bestAt time.Time
	for id, at := range s.lastUsed {
		if !at.After(from) {
			delete(s.lastUsed, id)
			continue
		}
		if at.After(to) {
			continue
		}
		if best == "" || at.After(bestAt) {
			best, bestAt = id, at
		}
	}
	return best, nil
}

// Identify maps a window to an application identifier. Windows of known
// platforms map to their package; everything else to its lowercased name.
func (s *Stats) Identify(info *window.WindowInfo) string {
	if info == nil {
		return ""
	}
	for _, name := range []string{info.AppName, info.ProcessName} {
		if name == "" || name == "Unknown" {
			continue
		}
		if p, ok := s.table.ByClass(name); ok {
			return p.Package
		}
	}
	name := info.AppName
	if name == "" || name == "Unknown" {
		name = info.ProcessName
	}
	if name == "Unknown" {
		return ""
	}
	return strings.ToLower(name)
}
