package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/service/i"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds the dependencies of the HTTP router.
type RouterConfig struct {
	ArenaManager   i.ArenaManager
	Socket         http.Handler
	AllowedOrigins []string
	Logger         i.Logger
}

type apiError struct {
	Error string `json:"error"`
}

// NewRouter mounts the websocket endpoint and the read-only JSON API.
func NewRouter(c RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if c.Logger != nil {
		r.Use(requestLogger(c.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: c.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if c.Socket != nil {
		r.Handle("/ws", c.Socket)
	}

	r.Route("/api/v1", func(sub chi.Router) {
		sub.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		sub.Get("/scoreboard", func(w http.ResponseWriter, r *http.Request) {
			if c.ArenaManager == nil {
				errorJSON(w, http.StatusServiceUnavailable, "arena unavailable")
				return
			}
			writeJSON(w, http.StatusOK, c.ArenaManager.Scoreboard())
		})
		sub.Get("/state", func(w http.ResponseWriter, r *http.Request) {
			if c.ArenaManager == nil {
				errorJSON(w, http.StatusServiceUnavailable, "arena unavailable")
				return
			}
			writeJSON(w, http.StatusOK, c.ArenaManager.Snapshot())
		})
	})

	return r
}

func requestLogger(logger i.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug(fmt.Sprintf("%s %s %d %s [%s]",
				r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context())))
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}
