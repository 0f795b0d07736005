package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/andriyanb/artikel-be/internal/auth"
	"github.com/andriyanb/artikel-be/internal/config"
	"github.com/andriyanb/artikel-be/internal/http/handlers"
	"github.com/andriyanb/artikel-be/internal/middleware"
	"github.com/andriyanb/artikel-be/internal/storage"
	"github.com/andriyanb/artikel-be/internal/upload"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, users storage.UserStore, articles storage.ArticleStore, uploads *upload.Store, logger *zap.SugaredLogger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, users, articles, uploads, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// NewRouter assembles the full route tree with middleware applied.
func NewRouter(cfg config.Config, users storage.UserStore, articles storage.ArticleStore, uploads *upload.Store, logger *zap.SugaredLogger) chi.Router {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Server is running"))
	})

	health := handlers.NewHealthHandler(time.Now())
	health.Routes(r)

	authHandler := handlers.NewAuthHandler(users, tokens, logger)
	r.Route("/api/users", authHandler.Routes)

	articleHandler := handlers.NewArticleHandler(articles, uploads, logger)
	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/approved", articleHandler.ListApproved)
		r.Get("/slug/{slug}", articleHandler.GetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))
			r.Post("/submit", articleHandler.Submit)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/pending", articleHandler.ListPending)
				r.Get("/rejected", articleHandler.ListRejected)
				r.Post("/review/{articleId}", articleHandler.Review)
			})
		})
	})

	fileServer(r, "/uploads", http.Dir(uploads.Dir()))

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

// fileServer mounts a static file tree on the router.
func fileServer(r chi.Router, path string, root http.FileSystem) {
	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.RouteContext(r.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, r)
	})
}
