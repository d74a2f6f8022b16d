// Package shareserver publishes shared bookmarks over HTTP so a share
// link opens without an account.
package shareserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nikbrunner/shelf/internal/backend"
	"github.com/nikbrunner/shelf/internal/logger"
	"github.com/nikbrunner/shelf/internal/model"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	log     logger.Logger
	started time.Time
}

// Params holds parameters for creating a new Server.
type Params struct {
	Addr           string
	Reader         backend.SharedReader
	Logger         logger.Logger
	AllowedOrigins []string
}

// sharedBookmark is the public view of a bookmark. Visit counts and link
// health stay private.
type sharedBookmark struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds the HTTP server (router, middlewares, routes).
func New(p Params) *Server {
	log := p.Logger
	if log == nil {
		log = logger.Nop()
	}
	started := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(accessLog(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: p.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"uptime_seconds": time.Since(started).Seconds(),
		})
	})
	r.Get("/shared/{shareID}", sharedHandler(p.Reader, log))

	return &Server{
		http: &http.Server{
			Addr:              p.Addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		log:     log,
		started: started,
	}
}

// Handler returns the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.Infof("share server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("share server shutting down")
	return s.http.Shutdown(ctx)
}

func sharedHandler(reader backend.SharedReader, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shareID := chi.URLParam(r, "shareID")

		bookmarks, err := reader.SharedBookmarks(r.Context(), shareID)
		if err != nil {
			log.Error("read share failed", logger.String("share_id", shareID), logger.Error(err))
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "share unavailable"})
			return
		}

		out := make([]sharedBookmark, len(bookmarks))
		for i, b := range bookmarks {
			out[i] = toShared(b)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toShared(b model.Bookmark) sharedBookmark {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return sharedBookmark{
		ID:          b.ID,
		Title:       b.Title,
		URL:         b.URL,
		Description: b.Description,
		Tags:        tags,
		Category:    b.Category,
		CreatedAt:   b.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
