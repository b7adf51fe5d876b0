package process

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v4/process"
)

// Lister answers "is this application running" from the process table
type Lister struct {
	processes func() ([]*process.Process, error)
}

func NewLister() *Lister {
	return &Lister{processes: process.Processes}
}

// IsAvailable reports whether the process table can be read
func (l *Lister) IsAvailable() bool {
	procs, err := l.processes()
	return err == nil && len(procs) > 0
}

// FindByName returns the pid of the first process whose executable name
// matches one of names, case-insensitively. Process names are truncated to
// 15 characters by the kernel, so longer names match on their prefix.
func (l *Lister) FindByName(names ...string) (int, bool, error) {
	wanted := normalize(names)
	if len(wanted) == 0 {
		return 0, false, nil
	}

	procs, err := l.processes()
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to list processes")
	}

	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if matches(strings.ToLower(name), wanted) {
			return int(p.Pid), true, nil
		}
	}
	return 0, false, nil
}

const commLen = 15

func matches(name string, wanted []string) bool {
	for _, w := range wanted {
		if name == w {
			return true
		}
		if len(name) == commLen && len(w) > commLen && strings.HasPrefix(w, name) {
			return true
		}
	}
	return false
}

func normalize(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(filepath.Base(strings.TrimSpace(n)))
		if n != "" && n != "." {
			out = append(out, n)
		}
	}
	return out
}

// NameOf returns the executable name of pid
func (l *Lister) NameOf(pid int) (string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", errors.Wrapf(err, "no process %d", pid)
	}
	name, err := p.Name()
	if err != nil {
		return "", errors.Wrapf(err, "failed to read name of process %d", pid)
	}
	return name, nil
}
