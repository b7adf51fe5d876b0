// Package bridge implements the two method channels exposed to an external
// UI: app_launcher.launchApp and app_icons.getAppIcon.
package bridge

import (
	"log"

	"github.com/pkg/errors"

	"github.com/actionsum/quickswitch/internal/launch"
	"github.com/actionsum/quickswitch/pkg/apps"
)

const (
	ChannelAppLauncher = "app_launcher"
	ChannelAppIcons    = "app_icons"

	MethodLaunchApp  = "launchApp"
	MethodGetAppIcon = "getAppIcon"
)

// Error codes returned across the bridge
const (
	CodeInvalidPackage    = "INVALID_PACKAGE"
	CodeOverlayPermission = "OVERLAY_PERMISSION"
	CodeAppNotFound       = "APP_NOT_FOUND"
	CodeLaunchError       = "LAUNCH_ERROR"
	CodeIconError         = "ICON_ERROR"
)

// Call is one method invocation on a channel
type Call struct {
	Method string            `json:"method"`
	Args   map[string]string `json:"args"`
}

// Error is a coded failure
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the reply to a Call. Exactly one of Value, Error and
// NotImplemented is set.
type Result struct {
	Value          any    `json:"result,omitempty"`
	Error          *Error `json:"error,omitempty"`
	NotImplemented bool   `json:"not_implemented,omitempty"`
}

func success(v any) Result {
	return Result{Value: v}
}

func failure(code, msg string) Result {
	return Result{Error: &Error{Code: code, Message: msg}}
}

type Launcher interface {
	Launch(target string) (launch.Outcome, error)
}

type IconExporter interface {
	Export(p apps.Platform) (string, error)
}

type Preferences interface {
	SetLastOpenedApp(pkg string) error
}

// Permissions reports the overlay-draw grant
type Permissions interface {
	CanDrawOverlays() bool
}

// ServiceStarter makes sure the floating bar service is running
type ServiceStarter interface {
	EnsureStarted() error
}

type Bridge struct {
	table    *apps.Table
	launcher Launcher
	icons    IconExporter
	prefs    Preferences
	perms    Permissions
	service  ServiceStarter
}

func New(table *apps.Table, launcher Launcher, icons IconExporter, prefs Preferences, perms Permissions, service ServiceStarter) *Bridge {
	return &Bridge{
		table:    table,
		launcher: launcher,
		icons:    icons,
		prefs:    prefs,
		perms:    perms,
		service:  service,
	}
}

// Handle routes a call to its method
func (b *Bridge) Handle(channel string, call Call) Result {
	switch {
	case channel == ChannelAppLauncher && call.Method == MethodLaunchApp:
		return b.LaunchApp(call.Args["packageName"])
	case channel == ChannelAppIcons && call.Method == MethodGetAppIcon:
		return b.GetAppIcon(call.Args["packageName"])
	default:
		return Result{NotImplemented: true}
	}
}

// LaunchApp launches pkg, a package identifier or platform ID. Checks run in
// this order:
//
//   - empty or unknown pkg answers INVALID_PACKAGE and stores nothing
//   - the package is saved as last_opened_app; a store failure is only logged
//   - without the overlay grant it answers OVERLAY_PERMISSION and launches nothing
//   - the floating service is started, then the launch is dispatched
func (b *Bridge) LaunchApp(pkg string) Result {
	if pkg == "" {
		return failure(CodeInvalidPackage, "Package name is required")
	}
	p, ok := b.table.Resolve(pkg)
	if !ok {
		return failure(CodeInvalidPackage, "Unknown package "+pkg)
	}

	if b.prefs != nil {
		if err := b.prefs.SetLastOpenedApp(p.Package); err != nil {
			log.Printf("Failed to save last opened app: %v", err)
		}
	}

	if b.perms != nil && !b.perms.CanDrawOverlays() {
		return failure(CodeOverlayPermission, "Overlay permission is required")
	}

	if b.service != nil {
		if err := b.service.EnsureStarted(); err != nil {
			log.Printf("Floating service not started: %v", err)
		}
	}

	outcome, err := b.launcher.Launch(p.Package)
	if err != nil {
		switch {
		case errors.Is(err, launch.ErrNotInstalled):
			return failure(CodeAppNotFound, "Application "+p.Package+" not installed")
		case errors.Is(err, launch.ErrInvalidTarget):
			return failure(CodeInvalidPackage, err.Error())
		default:
			return failure(CodeLaunchError, err.Error())
		}
	}
	log.Printf("Launched %s (%s)", p.Package, outcome)
	return success(true)
}

// GetAppIcon exports the icon of pkg and returns the file path
func (b *Bridge) GetAppIcon(pkg string) Result {
	if pkg == "" {
		return failure(CodeInvalidPackage, "Package name is required")
	}
	p, ok := b.table.Resolve(pkg)
	if !ok {
		return failure(CodeIconError, "Unknown package "+pkg)
	}
	path, err := b.icons.Export(p)
	if err != nil {
		return failure(CodeIconError, err.Error())
	}
	return success(path)
}
