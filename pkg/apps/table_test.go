package apps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableOrder(t *testing.T) {
	tbl := Default()
	platforms := tbl.Platforms()
	require.Len(t, platforms, len(Order))
	for i, p := range platforms {
		assert.Equal(t, Order[i], p.ID)
	}
}

func TestResolve(t *testing.T) {
	tbl := Default()

	tests := []struct {
		name   string
		target string
		wantID string
		wantOK bool
	}{
		{"by id", "telegram", "telegram", true},
		{"by package", "com.whatsapp", "whatsapp", true},
		{"tiktok package", "com.zhiliaoapp.musically", "tiktok", true},
		{"unknown", "com.example.other", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := tbl.Resolve(tt.target)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestByClassIsCaseInsensitive(t *testing.T) {
	p, ok := Default().ByClass("TelegramDesktop")
	require.True(t, ok)
	assert.Equal(t, "org.telegram.messenger", p.Package)
}

func TestMonitoredSet(t *testing.T) {
	set := Default().Monitored()
	assert.Equal(t, 7, set.Len())
	assert.True(t, set.Contains("com.instagram.android"))
	assert.False(t, set.Contains("com.example.other"))
	assert.False(t, set.Contains(""))

	custom := NewMonitoredSet("app.chat", "", "app.chat")
	assert.Equal(t, []string{"app.chat"}, custom.List())

	var zero MonitoredSet
	assert.False(t, zero.Contains("app.chat"))
	assert.Equal(t, 0, zero.Len())
}

func TestNewTableDuplicatesKeepFirstPosition(t *testing.T) {
	tbl := NewTable([]Platform{
		{ID: "a", Package: "pkg.a"},
		{ID: "b", Package: "pkg.b"},
		{ID: "a", Package: "pkg.a2"},
	})
	platforms := tbl.Platforms()
	require.Len(t, platforms, 2)
	assert.Equal(t, "pkg.a2", platforms[0].Package)
	assert.Equal(t, "b", platforms[1].ID)
}
