package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"auctionserver/internal/config"
	customMiddleware "auctionserver/internal/middleware"
	"auctionserver/internal/storage"
	handlers "auctionserver/internal/transport/http"
)

// routeGroup is a mounted collaborator and the collection behind it.
type routeGroup struct {
	prefix     string
	resource   string
	collection string
}

var routeGroups = []routeGroup{
	{prefix: "/api/users", resource: "user", collection: storage.UsersCollection},
	{prefix: "/api/product", resource: "product", collection: storage.ProductsCollection},
	{prefix: "/api/bidding", resource: "bidding", collection: storage.BiddingsCollection},
	{prefix: "/api/category", resource: "category", collection: storage.CategoriesCollection},
}

// setupRouter wires middleware and routes. The order of the parsers, CORS and
// the route registrations is fixed; every error ends in a.Errors.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Ordering: Tracing → RequestID → RealIP → Logger → Metrics → Recover
	r.Use(customMiddleware.Tracing(a.TracerProvider))
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.NewMetrics(a.Registry).Handler)
	r.Use(a.Errors.Recover)

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.Errors.HandleError,
		).Handler)
	}

	limit := a.Config.Server.JSONBodyLimit
	r.Use(customMiddleware.JSONBody(limit, a.Errors.HandleError))
	r.Use(customMiddleware.Cookies)
	r.Use(customMiddleware.URLEncoded(limit, a.Errors.HandleError))
	r.Use(customMiddleware.CORS(a.getCORSConfig()))

	r.NotFound(a.Errors.NotFound)
	r.MethodNotAllowed(a.Errors.MethodNotAllowed)

	for _, g := range routeGroups {
		repo := storage.NewRepository(a.Store, g.collection)
		r.Mount(g.prefix, handlers.NewResourceHandler(g.resource, repo, a.Errors, a.Logger).Routes())
	}

	uploads := handlers.NewUploadsHandler(a.Config.Paths.UploadsDir, a.Errors, a.Logger)
	r.Get("/uploads/*", a.Errors.Wrap(uploads.Serve))
	r.Head("/uploads/*", a.Errors.Wrap(uploads.Serve))

	r.Get("/", handlers.Home)

	health := handlers.NewHealthHandler(a.Store, config.AppVersion, a.Logger)
	r.Get("/api/health", a.Errors.Wrap(health.HealthCheck))
	r.Get("/api/health/live", health.LivenessCheck)
	r.Handle("/metrics", handlers.MetricsHandler(a.Registry))

	a.Router = r
}

func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			customMiddleware.RequestIDHeader,
		},
		ExposedHeaders:   []string{customMiddleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
	a.Logger.Debug("CORS configured", slog.Any("allowed_origins", cfg.AllowedOrigins))
	return cfg
}
