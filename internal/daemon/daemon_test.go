package daemon

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPIDLifecycle(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "quickswitch.pid"))

	pid, err := d.ReadPID()
	if err != nil || pid != 0 {
		t.Fatalf("ReadPID() on missing file = %d, %v; want 0, nil", pid, err)
	}

	if err := d.WritePID(); err != nil {
		t.Fatalf("WritePID() error = %v", err)
	}

	running, pid, err := d.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error = %v", err)
	}
	if !running || pid != os.Getpid() {
		t.Errorf("IsRunning() = %v, %d; want true, %d", running, pid, os.Getpid())
	}

	if err := d.RemovePID(); err != nil {
		t.Fatalf("RemovePID() error = %v", err)
	}
	if err := d.RemovePID(); err != nil {
		t.Errorf("RemovePID() on missing file error = %v", err)
	}
}

func TestInvalidPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quickswitch.pid")
	if err := os.WriteFile(path, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}

	d := New(path)
	if _, err := d.ReadPID(); err == nil {
		t.Error("ReadPID() expected error for garbage content")
	}
}

func TestStopWhenNotRunning(t *testing.T) {
	d := New(filepath.Join(t.TempDir(), "quickswitch.pid"))
	if err := d.Stop(); err != ErrNotRunning {
		t.Errorf("Stop() error = %v; want ErrNotRunning", err)
	}
}

func TestIsChild(t *testing.T) {
	t.Setenv(ChildEnv, "")
	if IsChild() {
		t.Error("IsChild() = true without marker")
	}
	t.Setenv(ChildEnv, "1")
	if !IsChild() {
		t.Error("IsChild() = false with marker")
	}
}
