package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/Veraticus/stretchia/pkg/api"
	"github.com/Veraticus/stretchia/pkg/config"
	"github.com/Veraticus/stretchia/pkg/events"
	"github.com/Veraticus/stretchia/pkg/export"
	"github.com/Veraticus/stretchia/pkg/idle"
	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/notification"
	"github.com/Veraticus/stretchia/pkg/session"
	"github.com/Veraticus/stretchia/pkg/status"
	"github.com/Veraticus/stretchia/pkg/store/postgres"
	"github.com/Veraticus/stretchia/pkg/store/sqlite"
	"github.com/Veraticus/stretchia/pkg/timer"
	"github.com/Veraticus/stretchia/pkg/tray"
)

const shutdownTimeout = 5 * time.Second

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config *config.Config
	Logger logrus.FieldLogger

	Store       interfaces.Store
	Tracker     *timer.Tracker
	Probe       interfaces.IdleProbe
	Session     *session.Service
	Coordinator *timer.Coordinator
	Hub         *events.Hub

	Notifier            notification.Notifier
	RateLimiter         interfaces.RateLimiter
	NotificationManager *notification.Manager

	StatusIndicator *status.Indicator
	StatusReporter  *status.Reporter
	TrayRenderer    *tray.Renderer
	Tray            *tray.Tray
	Exporter        *export.KafkaExporter
	Server          *http.Server
}

// NewDependencies creates all dependencies with the given configuration
func NewDependencies(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:  cfg,
		Logger:  logger,
		Tracker: timer.NewTracker(nil),
		Probe:   idle.NewProbe(),
		Hub:     events.NewHub(),
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	deps.Store = st

	// Status line only when stderr is a terminal.
	statusEnabled := cfg.StatusLine.Enabled && isatty.IsTerminal(os.Stderr.Fd())
	deps.StatusIndicator = status.NewIndicator(os.Stderr, statusEnabled)
	deps.StatusReporter = status.NewReporter(deps.StatusIndicator, logger.WithField("component", "reminder"))

	var exporter interfaces.SessionExporter
	if cfg.ExportEnabled() {
		host, _ := os.Hostname()
		deps.Exporter, err = export.NewKafkaExporter(cfg.Export.Kafka.Brokers, cfg.Export.Kafka.Topic, host)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("creating exporter: %w", err)
		}
		exporter = deps.Exporter
	}
	deps.Session = session.NewService(deps.Tracker, st, exporter, logger.WithField("component", "session"))

	sinks := events.Fanout{deps.Hub, deps.StatusIndicator}
	if !cfg.Quiet {
		if cfg.NotificationsEnabled() {
			deps.Notifier = notification.NewNtfyClient(cfg.Ntfy.Server, cfg.Ntfy.Topic)
		} else {
			deps.Notifier = notification.NewLogNotifier(logger.WithField("component", "reminder"))
		}
		if cfg.Ntfy.RateLimit.MaxMessages > 0 {
			deps.RateLimiter = notification.NewWindowRateLimiter(cfg.Ntfy.RateLimit.Window, cfg.Ntfy.RateLimit.MaxMessages)
		}
		deps.NotificationManager = notification.NewManager(deps.Notifier, deps.RateLimiter, deps.StatusReporter,
			logger.WithField("component", "notification"))
		sinks = append(sinks, notification.NewStageNotifier(deps.NotificationManager))
	}

	renderers := timer.MultiRenderer{deps.StatusIndicator}
	if cfg.Tray.Enabled {
		deps.TrayRenderer = tray.NewRenderer()
		renderers = append(renderers, deps.TrayRenderer)
		// The HTTP address is only known once Run listens.
		deps.Tray = tray.New(deps.Session, deps.TrayRenderer, "", logger.WithField("component", "tray"))
		sinks = append(sinks, deps.Tray)
	}

	deps.Coordinator = timer.NewCoordinator(deps.Tracker, deps.Probe, renderers, sinks, st,
		cfg.TickInterval, logger.WithField("component", "timer"))

	if cfg.API.Address != "" {
		cfgSrv := api.DefaultServerConfig()
		cfgSrv.Address = cfg.API.Address
		handler := api.NewHandler(deps.Session, deps.Hub, logger.WithField("component", "api"))
		deps.Server = api.NewServer(cfgSrv, handler.Routes())
	}

	return deps, nil
}

func openStore(ctx context.Context, cfg *config.Config) (interfaces.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return repo, nil
	default:
		path := cfg.Storage.Path
		if path == "" {
			p, err := sqlite.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		s, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	}
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	if d.Session != nil {
		d.Session.Close()
	}

	if d.StatusIndicator != nil {
		_ = d.StatusIndicator.Clear() // Best effort
	}

	if d.NotificationManager != nil {
		_ = d.NotificationManager.Close()
	}

	if d.Exporter != nil {
		if err := d.Exporter.Close(); err != nil {
			d.Logger.WithError(err).Warn("closing exporter")
		}
	}

	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.WithError(err).Warn("closing store")
		}
	}
}

// Application represents the main application
type Application struct {
	deps *Dependencies

	mu   sync.Mutex
	addr net.Addr
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run loads the stored thresholds, then runs the tick loop, the HTTP
// surface and, when enabled, the tray until ctx is cancelled or the tray
// quits. The tray requires Run to be called from the main goroutine.
func (a *Application) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := a.deps.Session.ApplySettings(ctx)
	a.deps.Logger.WithFields(logrus.Fields{
		"afk_threshold_s": t.AFKThresholdS,
		"warn_at_min":     t.WarnAtMin,
		"shake_at_min":    t.ShakeAtMin,
	}).Info("stretchia started")

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	if srv := a.deps.Server; srv != nil {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", srv.Addr, err)
		}
		a.mu.Lock()
		a.addr = ln.Addr()
		a.mu.Unlock()
		a.deps.Logger.WithField("addr", ln.Addr().String()).Info("http surface listening")

		// Requests inherit ctx so event streams end before Shutdown waits on them.
		srv.BaseContext = func(net.Listener) context.Context { return ctx }

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
				cancel()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.deps.Coordinator.Run(ctx)
	}()

	if ui := a.deps.Tray; ui != nil {
		ui.SetUIURL(a.uiURL())
		go func() {
			<-ctx.Done()
			ui.Quit()
		}()
		ui.Run(ctx, cancel)
	} else {
		<-ctx.Done()
	}

	if srv := a.deps.Server; srv != nil {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.deps.Logger.WithError(err).Warn("http shutdown")
		}
	}
	wg.Wait()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http surface: %w", err)
	default:
		return nil
	}
}

// Addr returns the bound HTTP address, or nil before Run listens.
func (a *Application) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addr
}

func (a *Application) uiURL() string {
	if addr := a.Addr(); addr != nil {
		return "http://" + addr.String()
	}
	return ""
}
