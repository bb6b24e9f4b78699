package app

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"datastudio/internal/config"
	apierrors "datastudio/internal/errors"
	"datastudio/internal/infrastructure"
	custommiddleware "datastudio/internal/middleware"
	"datastudio/internal/services"
	handlers "datastudio/internal/transport/http"
	"datastudio/pkg/contracts"
)

// AppName is the human-readable application name used in startup logs.
const AppName = "Data Analysis Studio"

var (
	// BuildTime is set at compile time via -ldflags for release builds.
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	// Deterministic per version and day, good enough to tell builds apart.
	h := sha256.New()
	h.Write([]byte(contracts.Version))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config          *config.Config
	Logger          *slog.Logger
	Metrics         *infrastructure.MetricsProvider
	PipelineMetrics *infrastructure.PipelineMetrics
	Router          *chi.Mux
	Server          *http.Server
	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService
	FrontendFS      fs.FS
}

// NewApplication creates a new application instance with dependency injection.
// The frontend filesystem holds the embedded studio UI; pass nil to run the
// API without it.
func NewApplication(frontendFS fs.FS) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("build_id", BuildID))

	metrics, err := infrastructure.InitializeMetrics(infrastructure.DefaultMetricsConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	pipelineMetrics, err := infrastructure.NewPipelineMetrics(metrics.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	app := &Application{
		Config:          cfg,
		Logger:          logger,
		Metrics:         metrics,
		PipelineMetrics: pipelineMetrics,
		FrontendFS:      frontendFS,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() {
	a.AnalysisService = services.NewAnalysisService(
		a.Config.Analysis,
		a.Config.Export,
		a.Logger,
		a.PipelineMetrics,
	)

	a.HealthService = services.NewHealthServiceWithBuildInfo(
		contracts.Version,
		BuildTime,
		BuildID,
		a.AnalysisService,
		a.Logger,
	)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID must run first so every later middleware sees the trace_id.
	r.Use(custommiddleware.RequestID)
	r.Use(custommiddleware.RealIP)

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.StructuredLogger(a.Logger))
		r.Use(custommiddleware.Recoverer(a.Logger))
		r.Use(custommiddleware.SecurityHeaders)
		r.Use(custommiddleware.CORS(a.getCORSConfig()))

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupFrontend(r)
	})

	// Prometheus scrape endpoint stays outside the middleware group so
	// scrapes are not logged, rate limited, or counted against CORS.
	if a.Metrics != nil && a.Metrics.PrometheusHTTP != nil {
		r.Handle("/metrics", a.Metrics.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		errorHandler := apierrors.NewErrorHandler(a.Logger, false)
		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		metaHandler := handlers.NewMetaHandler(a.Config.Analysis, a.Config.Export)
		r.Mount("/meta", metaHandler.Routes())

		analysisHandler := handlers.NewAnalysisHandler(
			a.AnalysisService,
			a.Config.Analysis.MaxUploadBytes,
			a.Logger,
			errorHandler,
		)
		r.Mount("/analysis", analysisHandler.Routes())

		// Client-side log forwarding from the studio UI
		r.Post("/logs", handlers.NewClientLogHandler(a.Logger).Handle)
	})
}

// setupFrontend configures serving of the embedded studio UI
func (a *Application) setupFrontend(r chi.Router) {
	if a.FrontendFS == nil {
		a.Logger.Warn("Frontend filesystem not available, UI routes disabled")
		return
	}

	// Catch-all so the single-page UI loads on any non-API path.
	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.Compress(5))
		r.Get("/*", a.serveFrontend(a.FrontendFS))
	})
}

// serveFrontend serves files from the embedded frontend, falling back to
// index.html for unmatched paths.
func (a *Application) serveFrontend(frontendFS fs.FS) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		urlPath := path.Clean(r.URL.Path)

		if urlPath != "/" {
			name := strings.TrimPrefix(urlPath, "/")
			if file, err := frontendFS.Open(name); err == nil {
				stat, statErr := file.Stat()
				if statErr == nil && !stat.IsDir() {
					w.Header().Set("Content-Type", contentTypeFor(name))
					w.Header().Set("Cache-Control", "public, max-age=86400")
					io.Copy(w, file)
					file.Close()
					return
				}
				file.Close()
			}
		}

		indexFile, err := frontendFS.Open("index.html")
		if err != nil {
			a.Logger.ErrorContext(r.Context(), "Failed to open index.html",
				slog.String("error", err.Error()),
				slog.String("path", urlPath))
			http.Error(w, "Frontend not available", http.StatusServiceUnavailable)
			return
		}
		defer indexFile.Close()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		io.Copy(w, indexFile)
	}
}

// contentTypeFor maps frontend file extensions to MIME types. Embedded
// filesystems bypass the OS MIME database, so the mapping is explicit.
func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".png":
		return "image/png"
	case ".ico":
		return "image/x-icon"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// getCORSConfig returns CORS configuration for the embedded UI plus any
// origins configured for external frontends.
func (a *Application) getCORSConfig() custommiddleware.CORSConfig {
	origins := []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS {
		origins = append(origins, a.Config.Security.AllowedOrigins...)
	}

	return custommiddleware.CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
		Logger:         a.Logger,
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run starts the HTTP server and blocks until an interrupt arrives or the
// server fails. Shutdown is graceful within Server.ShutdownTimeout.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := fmt.Sprintf("http://%s", a.Server.Addr)
	a.Logger.InfoContext(ctx, "Application started",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", url))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		// Shutdown gets a fresh context; gctx is already cancelled.
		return a.Stop(context.Background())
	})

	g.Go(func() error {
		a.openBrowserWhenReady(gctx, url)
		return nil
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if a.Metrics != nil {
		if err := a.Metrics.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down metrics",
				slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// openBrowserWhenReady polls the health endpoint and opens the default
// browser once the server answers. Set DATASTUDIO_NO_BROWSER to skip.
func (a *Application) openBrowserWhenReady(ctx context.Context, url string) {
	if os.Getenv("DATASTUDIO_NO_BROWSER") != "" {
		return
	}

	healthURL := url + "/api/health"
	for i := 0; i < 10; i++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}

		resp, err := http.Get(healthURL)
		if err != nil {
			continue
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}

		if err := openBrowser(url); err != nil {
			a.Logger.WarnContext(ctx, "Could not open browser",
				slog.String("error", err.Error()),
				slog.String("url", url))
			fmt.Printf("\n%s is running. Open your browser at %s\n\n", AppName, url)
		}
		return
	}

	a.Logger.WarnContext(ctx, "Server did not become ready for browser opening",
		slog.String("url", healthURL))
}

// openBrowser launches the platform default browser for the given URL.
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
