// Package web provides the HTTP server and JSON API handlers for the
// results management backend.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/b-balajis/rms-backend/internal/config"
	"github.com/b-balajis/rms-backend/internal/core"
	"github.com/b-balajis/rms-backend/internal/store"
	mw "github.com/b-balajis/rms-backend/internal/web/middleware"
)

// Server is the HTTP server for the results management API.
type Server struct {
	engine  *core.Engine
	store   *store.Store
	limiter *core.IngestLimiter
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance.
func NewServer(engine *core.Engine, st *store.Store, cfg *config.Config) *Server {
	s := &Server{
		engine:  engine,
		store:   st,
		limiter: core.NewIngestLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/faculty", func(r chi.Router) {
			// Result sheet ingestion. Uploads get a stricter per-IP rate
			// on top of the concurrency limiter.
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					uploadLimiter := newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute)
					r.Use(uploadLimiter.middleware)
				}
				r.Post("/upload/create-records", s.handleCreateRecords)
				r.Patch("/upload/update-records", s.handleUpdateRecords)
				r.Patch("/upload/update-supply-marks", s.handleUpdateSupplyMarks)
			})

			// Student queries and manual maintenance
			r.Get("/get-all-students", s.handleGetAllStudents)
			r.Get("/get-student-details", s.handleGetStudentDetails)
			r.Post("/add-student", s.handleAddStudent)
		})

		// Self-service lookup by roll number
		r.Get("/student/get-student-details/{rollNumber}", s.handleStudentByRoll)

		// Curriculum catalog
		r.Route("/subjects", func(r chi.Router) {
			r.Get("/", s.handleListSubjects)
			r.Post("/", s.handleCreateSubject)
			r.Post("/upload", s.handleUploadSubjects)
			r.Put("/{code}", s.handleUpdateSubject)
			r.Delete("/{code}", s.handleDeleteSubject)
		})

		// Department catalog
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", s.handleListDepartments)
			r.Post("/", s.handleCreateDepartment)
			r.Put("/{code}", s.handleUpdateDepartment)
			r.Delete("/{code}", s.handleDeleteDepartment)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ActiveIngests returns the number of ingestion batches currently running.
func (s *Server) ActiveIngests() int {
	return s.limiter.ActiveCount()
}

// WaitForIngests blocks until running ingestion batches finish or the
// context expires. Called during graceful shutdown.
func (s *Server) WaitForIngests(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// handleHealth reports process liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// JSON-only API, nothing should be loadable as a document
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	// Check if we have tokens left
	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// RealIP middleware has already rewritten RemoteAddr
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate limit exceeded",
				Message: "Too many requests",
				Action:  "Please wait a minute and try again",
				Code:    "UPL002",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
