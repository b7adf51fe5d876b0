package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/actionsum/quickswitch/internal/bridge"
	"github.com/actionsum/quickswitch/internal/config"
	"github.com/actionsum/quickswitch/internal/daemon"
	"github.com/actionsum/quickswitch/internal/database"
	"github.com/actionsum/quickswitch/internal/floating"
	"github.com/actionsum/quickswitch/internal/iconcache"
	"github.com/actionsum/quickswitch/internal/launch"
	"github.com/actionsum/quickswitch/internal/overlay"
	"github.com/actionsum/quickswitch/internal/overlay/xview"
	"github.com/actionsum/quickswitch/internal/watcher"
	"github.com/actionsum/quickswitch/internal/web"
	"github.com/actionsum/quickswitch/pkg/apps"
	"github.com/actionsum/quickswitch/pkg/detector"
	"github.com/actionsum/quickswitch/pkg/integrations/process"
	"github.com/actionsum/quickswitch/pkg/usage"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

const (
	errorRetention = 7 * 24 * time.Hour
	iconRetention  = 24 * time.Hour
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "start":
		startDaemon(false)
	case "serve":
		startDaemon(true)
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "launch":
		launchApp()
	case "icon":
		exportIcon()
	case "apps":
		listApps()
	case "version":
		fmt.Printf("quickswitch version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`quickswitch - Floating quick-launch bar for social apps

Usage:
  quickswitch <command> [options]

Commands:
  start              Start the floating bar daemon
  serve              Start the daemon with the local bridge server
  stop               Stop the daemon
  status             Show daemon status, current window and recent errors
  launch <app>       Bring an app to front or start it (id or package)
  icon <app>         Export an app icon and print its path
  apps               List the configured apps
  version            Show version information
  help               Show this help message

Examples:
  quickswitch serve
  quickswitch launch telegram
  quickswitch icon com.whatsapp
  quickswitch stop

Environment Variables:
  QUICKSWITCH_CONFIG            Config file path (TOML)
  QUICKSWITCH_DB_PATH           Database file path
  QUICKSWITCH_POLL_INTERVAL_MS  Foreground poll interval in milliseconds
  QUICKSWITCH_LOOKBACK_MS       Usage lookback window in milliseconds
  QUICKSWITCH_APPS              Comma separated app ids to show
  QUICKSWITCH_ICON_CACHE_DIR    Directory for exported icons
  QUICKSWITCH_PID_FILE          PID file path
  QUICKSWITCH_LOG_FILE          Log file path when detached
  QUICKSWITCH_WEB_HOST          Bridge server host
  QUICKSWITCH_WEB_PORT          Bridge server port

Version: %s
`, version)
}

func loadConfig() *config.Config {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func startDaemon(withWeb bool) {
	cfg := loadConfig()

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	if !daemon.IsChild() {
		pid, err := daemon.Spawn(os.Args)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("Daemon started successfully (PID: %d)\n", pid)
		if withWeb {
			fmt.Printf("Bridge available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
		}
		fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
		return
	}

	runDaemon(cfg, dm, withWeb)
}

// overlayGrant answers the overlay-draw permission check
type overlayGrant bool

func (g overlayGrant) CanDrawOverlays() bool {
	return bool(g)
}

// components are the pieces shared by the daemon and the one-shot commands
type components struct {
	table      *apps.Table
	procs      *process.Lister
	desktop    detector.Desktop
	dispatcher *launch.Dispatcher
	icons      *iconcache.Cache
}

func newComponents(cfg *config.Config) (*components, error) {
	c := &components{
		table: cfg.Table(),
		procs: process.NewLister(),
		icons: iconcache.New(cfg.Icons.CacheDir, cfg.Icons.Size),
	}

	desk, err := detector.New(c.procs)
	if err != nil {
		return nil, err
	}
	c.desktop = desk

	finder := launch.ChainFinder{launch.NewWindowFinder(desk), launch.NewProcessFinder(c.procs)}
	c.dispatcher = launch.NewDispatcher(c.table, finder, launch.NewCommandStarter(desk))
	return c, nil
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, withWeb bool) {
	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	repo := database.NewRepository(db)

	if n, err := repo.DeleteErrorsBefore(time.Now().Add(-errorRetention)); err != nil {
		log.Printf("Failed to prune error log: %v", err)
	} else if n > 0 {
		log.Printf("Pruned %d old error log entries", n)
	}

	comp, err := newComponents(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize window detector: %v", err)
	}
	defer comp.desktop.Close()
	log.Printf("Window detector initialized: %s", comp.desktop.GetDisplayServer())

	if _, err := comp.icons.Prune(iconRetention); err != nil {
		log.Printf("Failed to prune icon cache: %v", err)
	}

	if err := dm.WritePID(); err != nil {
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer dm.RemovePID()

	var br *bridge.Bridge
	var svc *floating.Service

	view, err := xview.Open(comp.table.Platforms(), xview.Layout{
		CellSize: cfg.Overlay.CellSize,
		Margin:   cfg.Overlay.Margin,
	})
	if err != nil {
		log.Printf("Overlay unavailable, running without the floating bar: %v", err)
	} else {
		defer view.Close()

		w := watcher.New(usage.NewStats(comp.desktop, comp.table), comp.table.Monitored(), watcher.Options{
			Interval: cfg.Watcher.PollInterval,
			Lookback: cfg.Watcher.Lookback,
			Recorder: repo.Recorder("watcher"),
		})
		ctrl := overlay.NewController(view, view, overlay.Point{X: cfg.Overlay.OffsetX, Y: cfg.Overlay.OffsetY})
		svc = floating.NewService(w, ctrl, view, repo, floating.Options{
			OnLaunch: func(target string) {
				if res := br.LaunchApp(target); res.Error != nil {
					log.Printf("Launch of %s failed: %s: %s", target, res.Error.Code, res.Error.Message)
				}
			},
		})
	}

	if svc != nil {
		br = bridge.New(comp.table, comp.dispatcher, comp.icons, repo, overlayGrant(true), svc)
	} else {
		br = bridge.New(comp.table, comp.dispatcher, comp.icons, repo, overlayGrant(false), nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if svc != nil {
		if err := svc.Start(ctx); err != nil {
			log.Fatalf("Failed to start floating service: %v", err)
		}
		svc.Restore()
	}

	var webServer *web.Server
	if withWeb {
		var status web.StatusProvider
		if svc != nil {
			status = svc
		}
		webServer = web.NewServer(cfg, br, status)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Bridge server error: %v", err)
				sigChan <- syscall.SIGTERM
			}
		}()
		log.Printf("Bridge available at: http://%s", webServer.GetAddress())
	}

	log.Println("Starting quickswitch daemon...")
	log.Printf("Configuration:\n%s", cfg.String())

	<-sigChan
	log.Println("Received shutdown signal")

	if svc != nil {
		svc.Stop()
	}
	cancel()

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down bridge server: %v", err)
		}
	}

	log.Println("Daemon stopped successfully")
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop daemon: %v", err)
	}

	fmt.Println("Daemon stopped successfully")
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Poll Interval: %v\n", cfg.Watcher.PollInterval)
		fmt.Printf("Bridge: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	fmt.Printf("Overlay: %v\n", xview.Available())

	if db, err := database.Open(cfg.Database.Path); err == nil {
		defer db.Close()
		fmt.Printf("Database: %s\n", db.Path())
		repo := database.NewRepository(db)
		if last, ok, err := repo.LastOpenedApp(); err == nil && ok {
			fmt.Printf("Last Opened: %s\n", last)
		}
		if errs, err := repo.RecentErrors(5); err == nil && len(errs) > 0 {
			fmt.Printf("\nRecent Errors:\n")
			for _, e := range errs {
				fmt.Printf("  %s [%s] %s\n", e.Timestamp.Format(time.RFC3339), e.Source, e.ErrorMsg)
			}
		}
	}

	det, err := detector.New(process.NewLister())
	if err != nil {
		fmt.Printf("\nCould not detect current window: %v\n", err)
		return
	}
	defer det.Close()

	windowInfo, err := det.GetFocusedWindow()
	if err == nil && windowInfo != nil {
		fmt.Printf("\nCurrent Window:\n")
		fmt.Printf("  App: %s\n", windowInfo.AppName)
		fmt.Printf("  Title: %s\n", windowInfo.WindowTitle)
		fmt.Printf("  Display: %s\n", windowInfo.DisplayServer)
	}
}

func appArg() string {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: quickswitch %s <app>\n", os.Args[1])
		os.Exit(1)
	}
	return os.Args[2]
}

// oneShotBridge builds a bridge without the floating service
func oneShotBridge(cfg *config.Config) (*bridge.Bridge, func()) {
	comp, err := newComponents(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize window detector: %v", err)
	}

	var prefs bridge.Preferences
	closeDB := func() {}
	if db, err := database.Open(cfg.Database.Path); err != nil {
		log.Printf("Last opened app will not be saved: %v", err)
	} else {
		prefs = database.NewRepository(db)
		closeDB = func() { db.Close() }
	}

	br := bridge.New(comp.table, comp.dispatcher, comp.icons, prefs, overlayGrant(xview.Available()), nil)
	return br, func() {
		closeDB()
		comp.desktop.Close()
	}
}

func launchApp() {
	target := appArg()
	br, cleanup := oneShotBridge(config.New())
	defer cleanup()

	res := br.LaunchApp(target)
	if res.Error != nil {
		cleanup()
		log.Fatalf("%s: %s", res.Error.Code, res.Error.Message)
	}
	fmt.Printf("Launched %s\n", target)
}

func exportIcon() {
	target := appArg()
	cfg := config.New()
	icons := iconcache.New(cfg.Icons.CacheDir, cfg.Icons.Size)
	br := bridge.New(cfg.Table(), nil, icons, nil, nil, nil)

	res := br.GetAppIcon(target)
	if res.Error != nil {
		log.Fatalf("%s: %s", res.Error.Code, res.Error.Message)
	}
	fmt.Println(res.Value)
}

func listApps() {
	cfg := config.New()
	table := cfg.Table()
	procs := process.NewLister()
	finder := launch.NewProcessFinder(procs)

	fmt.Printf("%-10s %-26s %-8s %s\n", "ID", "PACKAGE", "RUNNING", "COMMAND")
	for _, p := range table.Platforms() {
		_, running, err := finder.FindTask(p)
		state := "no"
		if err != nil {
			state = "?"
		} else if running {
			state = "yes"
		}
		fmt.Printf("%-10s %-26s %-8s %s\n", p.ID, p.Package, state, p.Command)
	}
}
