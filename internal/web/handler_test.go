package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/quickswitch/internal/bridge"
	"github.com/actionsum/quickswitch/internal/config"
	"github.com/actionsum/quickswitch/internal/overlay"
)

type recordingChannels struct {
	channel string
	call    bridge.Call
	result  bridge.Result
}

func (c *recordingChannels) Handle(channel string, call bridge.Call) bridge.Result {
	c.channel = channel
	c.call = call
	return c.result
}

type stubStatus struct {
	running bool
	state   overlay.State
	toggled bool
}

func (s *stubStatus) IsRunning() bool         { return s.running }
func (s *stubStatus) Snapshot() overlay.State { return s.state }
func (s *stubStatus) Toggle() (overlay.Visibility, bool) {
	s.toggled = true
	return overlay.Hidden, s.running
}

func newMux(channels Channels, status StatusProvider) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(config.Default(), channels, status).SetupRoutes(mux)
	return mux
}

func TestChannelCall(t *testing.T) {
	channels := &recordingChannels{result: bridge.Result{Value: true}}
	mux := newMux(channels, nil)

	body := `{"method":"launchApp","args":{"packageName":"com.whatsapp"}}`
	req := httptest.NewRequest(http.MethodPost, "/channel/app_launcher", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "app_launcher", channels.channel)
	assert.Equal(t, "launchApp", channels.call.Method)
	assert.Equal(t, "com.whatsapp", channels.call.Args["packageName"])
	assert.JSONEq(t, `{"result":true}`, rec.Body.String())
}

func TestChannelError(t *testing.T) {
	channels := &recordingChannels{result: bridge.Result{Error: &bridge.Error{Code: bridge.CodeIconError, Message: "no icon"}}}
	mux := newMux(channels, nil)

	req := httptest.NewRequest(http.MethodPost, "/channel/app_icons", strings.NewReader(`{"method":"getAppIcon","args":{}}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":{"code":"ICON_ERROR","message":"no icon"}}`, rec.Body.String())
}

func TestChannelNotImplemented(t *testing.T) {
	mux := newMux(&recordingChannels{result: bridge.Result{NotImplemented: true}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/channel/other", strings.NewReader(`{"method":"x"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestChannelRejectsBadRequests(t *testing.T) {
	mux := newMux(&recordingChannels{}, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"wrong method", http.MethodGet, "/channel/app_launcher", "", http.StatusMethodNotAllowed},
		{"missing channel", http.MethodPost, "/channel/", "{}", http.StatusNotFound},
		{"bad json", http.MethodPost, "/channel/app_launcher", "{", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestStatus(t *testing.T) {
	status := &stubStatus{
		running: true,
		state: overlay.State{
			Visibility: overlay.Visible,
			Attached:   true,
			LastApp:    "com.twitter.android",
			Monitored:  true,
			Position:   overlay.Point{X: 10, Y: 16},
		},
	}
	mux := newMux(&recordingChannels{}, status)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Running bool `json:"running"`
		Overlay struct {
			Visibility string        `json:"visibility"`
			Attached   bool          `json:"attached"`
			LastApp    string        `json:"last_app"`
			Position   overlay.Point `json:"position"`
		} `json:"overlay"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Running)
	assert.Equal(t, "visible", got.Overlay.Visibility)
	assert.True(t, got.Overlay.Attached)
	assert.Equal(t, "com.twitter.android", got.Overlay.LastApp)
	assert.Equal(t, overlay.Point{X: 10, Y: 16}, got.Overlay.Position)
}

func TestToggle(t *testing.T) {
	status := &stubStatus{running: true}
	mux := newMux(&recordingChannels{}, status)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/toggle", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, status.toggled)

	status.running = false
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/toggle", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	newMux(&recordingChannels{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/toggle", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(&recordingChannels{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
