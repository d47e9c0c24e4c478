// internal/httpserver/server.go
//
// HTTP server wiring for the felt backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/leaderboard".
//   - Run endpoints: POST /run/new plus one POST per engine action; the
//     client re-reads the session snapshot from each response.
//   - JWT run cookie: the cookie (or bearer token) carries the run id so a
//     browser sticks to its own run without accounts.
//   - SQLite persistence of run history (engine state itself lives in the
//     in-memory store; the engine performs no I/O).
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the cookie works).
//   - Engine errors map to the wire as {success:false, error: reason}:
//     wrong-phase calls are 409, bad arguments 400, per the engine's
//     invalid-action / invalid-argument split.

package httpserver

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/dkarger/felt/internal/catalog"
	"github.com/dkarger/felt/internal/store"
)

const runCookie = "felt_run"

// Server bundles router, live-run store, balance data, and DB handle.
type Server struct {
	r     *chi.Mux
	store store.Store
	data  *catalog.Data
	db    *sql.DB
	locks sync.Map // run id -> *sync.Mutex
}

// runLock returns the mutex serializing requests on one run. The engine is
// single-threaded; the host owns making that true across concurrent POSTs
// bearing the same run cookie.
func (s *Server) runLock(runID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(runID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, data *catalog.Data, db *sql.DB) *Server {
	s := &Server{r: chi.NewRouter(), store: st, data: data, db: db}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"felt","endpoints":["/health","POST /run/new","GET /run","/leaderboard"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountRunRoutes()

	s.r.Get("/leaderboard", s.handleLeaderboard)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --------------------------- run cookie (JWT) -------------------------------

func jwtSecret() []byte {
	sec := os.Getenv("JWT_SECRET")
	if sec == "" {
		sec = "dev-secret-change-me"
	}
	return []byte(sec)
}

// signRunToken issues a token binding the caller to a run id.
func signRunToken(runID string) (string, time.Time, error) {
	exp := time.Now().Add(7 * 24 * time.Hour)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"runId": runID,
		"exp":   exp.Unix(),
	})
	signed, err := tok.SignedString(jwtSecret())
	return signed, exp, err
}

// setRunCookie attaches the signed run token.
func setRunCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     runCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// bearerOrCookie extracts a token from the Authorization header or cookie.
func bearerOrCookie(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	if c, err := r.Cookie(runCookie); err == nil {
		return c.Value
	}
	return ""
}

// runIDFromRequest verifies the token and returns the bound run id.
func runIDFromRequest(r *http.Request) string {
	tokenStr := bearerOrCookie(r)
	if tokenStr == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	id, _ := claims["runId"].(string)
	return id
}

// newRunID returns a compact hex identifier for a run.
func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		log.Warn().Err(err).Msg("run id entropy read failed")
	}
	return hex.EncodeToString(b[:])
}

// writeJSON is the common success path.
func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}
