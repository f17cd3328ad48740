package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"auctionserver/internal/config"
	apperrors "auctionserver/internal/errors"
	"auctionserver/internal/infrastructure"
	"auctionserver/internal/storage"
)

// ListenFunc binds the server socket. net.Listen in production.
type ListenFunc func(network, address string) (net.Listener, error)

// Options configures NewApplication. Zero values select production defaults.
type Options struct {
	// EnvFile is the dotenv file to load; defaults to ".env".
	EnvFile string
	// SkipEnvFile reads the process environment only.
	SkipEnvFile bool
	// Connector opens the database; defaults to a MongoConnector.
	Connector storage.Connector
	// Listen binds the TCP listener; defaults to net.Listen.
	Listen ListenFunc
	// Stdout receives console logs; defaults to os.Stdout.
	Stdout io.Writer
	// Logger replaces the configured logger.
	Logger *slog.Logger
}

// Application represents the main application container
type Application struct {
	Config   *config.Config
	Logger   *slog.Logger
	Router   *chi.Mux
	Server   *http.Server
	Store    *storage.Store
	Errors   *apperrors.ErrorHandler
	Registry *prometheus.Registry

	TracerProvider trace.TracerProvider

	connector      storage.Connector
	shutdownTracer infrastructure.ShutdownFunc
	listen         ListenFunc
	logCloser      io.Closer
	started        atomic.Bool

	mu       sync.Mutex
	listener net.Listener
}

// NewApplication loads configuration and assembles the router and server.
// No network resource is acquired here; that happens in Run.
func NewApplication(opts Options) (*Application, error) {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	bootstrap := opts.Logger
	if bootstrap == nil {
		// Console output opens no file, so NewLogger cannot fail here.
		bootstrap, _, _ = infrastructure.NewLogger(config.LoggingConfig{Level: "info", Output: "console"}, stdout)
	}

	cfg, err := config.Load(config.LoadOptions{EnvFile: opts.EnvFile, SkipEnvFile: opts.SkipEnvFile})
	if err != nil {
		if errors.Is(err, config.ErrMissingDatabaseURI) {
			bootstrap.Error("DATABASE_CLOUD environment variable is not defined")
			return nil, &StartupError{Stage: StageMissingDatabaseURI, Err: err}
		}
		bootstrap.Error("Failed to load environment variables", slog.String("error", err.Error()))
		return nil, &StartupError{Stage: StageConfig, Err: err}
	}

	logger, closer := opts.Logger, io.Closer(nil)
	if logger == nil {
		logger, closer, err = infrastructure.NewLogger(cfg.Logging, stdout)
		if err != nil {
			bootstrap.Error("Failed to initialize logger", slog.String("error", err.Error()))
			return nil, &StartupError{Stage: StageLogger, Err: err}
		}
	}

	logger.Info("Environment variables loaded",
		slog.String("database_uri", cfg.RedactedDatabaseURI()),
		slog.Int("port", cfg.Server.Port))

	a := &Application{
		Config:    cfg,
		Logger:    logger,
		Store:     storage.NewStore(),
		Errors:    apperrors.NewErrorHandler(logger, cfg.Logging.Development),
		Registry:  prometheus.NewRegistry(),
		connector: opts.Connector,
		listen:    opts.Listen,
		logCloser: closer,
	}
	if a.connector == nil {
		a.connector = &storage.MongoConnector{
			DatabaseName: cfg.Database.Name,
			Timeout:      cfg.Database.ConnectTimeout,
			Logger:       infrastructure.WithComponent(logger, "storage"),
		}
	}
	if a.listen == nil {
		a.listen = net.Listen
	}

	a.TracerProvider, a.shutdownTracer, err = infrastructure.NewTracerProvider(cfg.Tracing, stdout, logger)
	if err != nil {
		logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		return nil, &StartupError{Stage: StageConfig, Err: err}
	}

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.setupRouter()
	a.createServer()

	return a, nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Address(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Run connects to the database, then binds the listener and serves until ctx
// is cancelled. The listener is never bound unless the connect succeeded.
// Startup failures are returned as *StartupError.
func (a *Application) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return errors.New("application already started")
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	if err := a.connect(ctx); err != nil {
		_ = a.shutdownTracer(context.Background())
		return err
	}

	ln, err := a.bind()
	if err != nil {
		_ = a.Store.Close(context.Background())
		_ = a.shutdownTracer(context.Background())
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error("Server error", slog.String("error", err.Error()))
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})
	return g.Wait()
}

func (a *Application) connect(ctx context.Context) error {
	db, err := a.connector.Connect(ctx, a.Config.Database.URI)
	if err != nil {
		a.Logger.ErrorContext(ctx, "MongoDB connection failed", slog.String("error", err.Error()))
		return &StartupError{Stage: StageDatabase, Err: err}
	}
	if err := a.Store.Set(db); err != nil {
		_ = db.Close(context.Background())
		return &StartupError{Stage: StageDatabase, Err: err}
	}
	a.Logger.InfoContext(ctx, "Connected to MongoDB", slog.String("database", db.Name()))
	return nil
}

func (a *Application) bind() (net.Listener, error) {
	ln, err := a.listen("tcp", a.Server.Addr)
	if err != nil {
		a.Logger.Error("Failed to bind listener",
			slog.String("address", a.Server.Addr),
			slog.String("error", err.Error()))
		return nil, &StartupError{Stage: StageListen, Err: err}
	}

	a.mu.Lock()
	a.listener = ln
	a.mu.Unlock()

	a.Logger.Info("Server running",
		slog.Int("port", a.Config.Server.Port),
		slog.String("address", ln.Addr().String()))
	return ln, nil
}

// Addr returns the bound address, or nil before the listener is bound.
func (a *Application) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// shutdown drains in-flight requests, then closes the database.
func (a *Application) shutdown() error {
	a.Logger.Info("Shutting down application")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("database close error: %w", err))
	}
	if err := a.shutdownTracer(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("Shutdown incomplete", slog.String("error", err.Error()))
		return err
	}

	a.Logger.Info("Application shutdown complete")
	return nil
}

// Close releases the log file, if any.
func (a *Application) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}
