package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/quickswitch/internal/models"
)

func newTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), path
}

func TestLastOpenedAppDefaultsToNone(t *testing.T) {
	repo, _ := newTestRepo(t)

	pkg, ok, err := repo.LastOpenedApp()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, pkg)
}

func TestLastOpenedAppOverwrites(t *testing.T) {
	repo, _ := newTestRepo(t)

	require.NoError(t, repo.SetLastOpenedApp("com.whatsapp"))
	require.NoError(t, repo.SetLastOpenedApp("org.telegram.messenger"))

	pkg, ok, err := repo.LastOpenedApp()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "org.telegram.messenger", pkg)
}

func TestLastOpenedAppSurvivesReopen(t *testing.T) {
	repo, path := newTestRepo(t)
	require.NoError(t, repo.SetLastOpenedApp("com.linkedin.android"))

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	pkg, ok, err := NewRepository(db).LastOpenedApp()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "com.linkedin.android", pkg)
}

func TestFirstRun(t *testing.T) {
	repo, _ := newTestRepo(t)

	first, err := repo.IsFirstRun()
	require.NoError(t, err)
	assert.True(t, first)

	require.NoError(t, repo.CompleteFirstRun())
	first, err = repo.IsFirstRun()
	require.NoError(t, err)
	assert.False(t, first)
}

func TestErrorRecorder(t *testing.T) {
	repo, _ := newTestRepo(t)
	rec := repo.Recorder("watcher")

	rec.RecordError(errors.New("usage access revoked"))
	rec.RecordError(errors.New("BadWindow"))

	logs, err := repo.RecentErrors(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, "watcher", l.Source)
	}

	n, err := repo.DeleteErrorsBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	logs, err = repo.RecentErrors(10)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestCreateErrorLog(t *testing.T) {
	repo, _ := newTestRepo(t)
	entry := &models.ErrorLog{Timestamp: time.Now(), Source: "bridge", ErrorMsg: "icon decode failed"}
	require.NoError(t, repo.CreateErrorLog(entry))
	assert.NotZero(t, entry.ID)
}
