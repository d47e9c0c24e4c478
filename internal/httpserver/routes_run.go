// internal/httpserver/routes_run.go
//
// Run lifecycle and action endpoints. A run is one engine instance: created
// by POST /run/new, addressed by the signed run cookie, driven by one POST
// per player action. Every action response carries the fresh session
// snapshot, mirroring the engine's "mutate, then re-read" contract.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkarger/felt/internal/game"
	"github.com/dkarger/felt/internal/rng"
	"github.com/dkarger/felt/internal/shop"
)

// actionRes is the wire shape of every run mutation.
type actionRes struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Session *game.Session `json:"session,omitempty"`
}

func (s *Server) mountRunRoutes() {
	s.r.Post("/run/new", s.handleNewRun)
	s.r.Get("/run", s.handleGetRun)

	s.r.Post("/run/spin-slot", s.action("spinSlot", func(e *game.Engine, _ string) error { return e.SpinSlot() }))
	s.r.Post("/run/select", s.action("selectCard", func(e *game.Engine, id string) error { return e.SelectCard(id) }))
	s.r.Post("/run/deselect", s.action("deselectCard", func(e *game.Engine, id string) error { return e.DeselectCard(id) }))
	s.r.Post("/run/play", s.action("playHand", func(e *game.Engine, _ string) error { return e.PlayHand() }))
	s.r.Post("/run/discard", s.action("discardSelected", func(e *game.Engine, _ string) error { return e.DiscardSelected() }))
	s.r.Post("/run/spin-wheel", s.action("spinRoulette", func(e *game.Engine, _ string) error { return e.SpinRoulette() }))
	s.r.Post("/run/skip-wheel", s.action("skipRoulette", func(e *game.Engine, _ string) error { return e.SkipRoulette() }))
	s.r.Post("/run/buy", s.action("buyItem", func(e *game.Engine, id string) error { return e.BuyItem(id) }))
	s.r.Post("/run/reroll", s.action("rerollShop", func(e *game.Engine, _ string) error { return e.RerollShop() }))
	s.r.Post("/run/leave-shop", s.action("leaveShop", func(e *game.Engine, _ string) error { return e.LeaveShop() }))
}

// newRunReq allows partial config overrides at start time.
type newRunReq struct {
	Config *game.Config `json:"config"`
}

// handleNewRun builds an engine, wires its event stream into logging and
// run-history persistence, starts the game, and binds the caller via
// cookie.
func (s *Server) handleNewRun(w http.ResponseWriter, r *http.Request) {
	var req newRunReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	runID := newRunID()
	logger := log.With().Str("run", runID).Logger()

	var src rng.Source
	if req.Config != nil && req.Config.Seed != 0 {
		src = rng.NewSeeded(req.Config.Seed)
	} else {
		src = rng.Default()
	}

	eng := game.New(s.data, src, game.NewEmitter(logger), logger)
	s.subscribePersistence(eng, runID)

	if err := eng.StartGame(req.Config); err != nil {
		http.Error(w, `{"error":"start_failed"}`, http.StatusInternalServerError)
		return
	}
	if err := s.store.Save(r.Context(), runID, eng); err != nil {
		log.Error().Err(err).Msg("save run")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.Exec(`INSERT INTO runs (id, started_at, status, round, score) VALUES (?,?,?,1,0)`,
		runID, now, "playing"); err != nil {
		log.Warn().Err(err).Str("runId", runID).Msg("insert run row")
	}

	tok, exp, err := signRunToken(runID)
	if err != nil {
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	setRunCookie(w, tok, exp)
	writeJSON(w, map[string]any{"runId": runID, "session": eng.Session()})
}

// subscribePersistence mirrors engine progress into the runs table.
// Best-effort: a failed write logs and play continues.
func (s *Server) subscribePersistence(eng *game.Engine, runID string) {
	eng.Events().Subscribe(game.EvRoundEnd, func(ev game.Event) {
		p, ok := ev.Payload.(game.RoundEndPayload)
		if !ok {
			return
		}
		if _, err := s.db.Exec(`UPDATE runs SET round=?, score=? WHERE id=?`, p.Round, p.Score, runID); err != nil {
			log.Warn().Err(err).Str("runId", runID).Msg("update run progress")
		}
	})
	eng.Events().Subscribe(game.EvGameOver, func(ev game.Event) {
		p, ok := ev.Payload.(game.GameOverPayload)
		if !ok {
			return
		}
		now := time.Now().UTC().Format(time.RFC3339)
		if _, err := s.db.Exec(`UPDATE runs SET status='ended', finished_at=?, round=?, score=? WHERE id=?`,
			now, p.Round, p.Score, runID); err != nil {
			log.Warn().Err(err).Str("runId", runID).Msg("finish run")
		}
	})
}

// handleGetRun returns the caller's current session snapshot.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.engineFor(w, r)
	if !ok {
		return
	}
	mu := s.runLock(runIDFromRequest(r))
	mu.Lock()
	defer mu.Unlock()
	writeJSON(w, actionRes{Success: true, Session: eng.Session()})
}

// actionReq is the optional body of an action POST.
type actionReq struct {
	CardID string `json:"cardId"`
	ItemID string `json:"itemId"`
}

// action adapts one engine method into an HTTP handler with the shared
// error mapping.
func (s *Server) action(name string, call func(e *game.Engine, id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eng, ok := s.engineFor(w, r)
		if !ok {
			return
		}
		mu := s.runLock(runIDFromRequest(r))
		mu.Lock()
		defer mu.Unlock()

		var req actionReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		id := req.CardID
		if id == "" {
			id = req.ItemID
		}

		if err := call(eng, id); err != nil {
			w.WriteHeader(statusFor(err))
			writeJSON(w, actionRes{Success: false, Error: err.Error()})
			return
		}
		if err := s.store.Save(r.Context(), runIDFromRequest(r), eng); err != nil {
			log.Warn().Err(err).Str("action", name).Msg("save run after action")
		}
		writeJSON(w, actionRes{Success: true, Session: eng.Session()})
	}
}

// engineFor resolves the caller's run or writes the error response.
func (s *Server) engineFor(w http.ResponseWriter, r *http.Request) (*game.Engine, bool) {
	runID := runIDFromRequest(r)
	if runID == "" {
		http.Error(w, `{"error":"no_run"}`, http.StatusUnauthorized)
		return nil, false
	}
	eng, err := s.store.Get(r.Context(), runID)
	if err != nil {
		http.Error(w, `{"error":"run_not_found"}`, http.StatusNotFound)
		return nil, false
	}
	return eng, true
}

// statusFor maps engine error classes onto HTTP codes: wrong phase is a
// conflict with the machine's state, everything else is a bad argument.
func statusFor(err error) int {
	if errors.Is(err, game.ErrWrongPhase) {
		return http.StatusConflict
	}
	switch {
	case errors.Is(err, shop.ErrItemNotFound),
		errors.Is(err, game.ErrCardNotFound),
		errors.Is(err, game.ErrNotSelected):
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// handleLeaderboard returns the top finished runs by score.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := s.db.Query(`SELECT id, round, score, COALESCE(finished_at,'')
	                         FROM runs WHERE status='ended'
	                         ORDER BY score DESC, round DESC LIMIT ?`, limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	type lbRow struct {
		RunID      string `json:"runId"`
		Round      int    `json:"round"`
		Score      int    `json:"score"`
		FinishedAt string `json:"finishedAt,omitempty"`
	}
	out := []lbRow{}
	for rows.Next() {
		var row lbRow
		if err := rows.Scan(&row.RunID, &row.Round, &row.Score, &row.FinishedAt); err == nil {
			out = append(out, row)
		}
	}
	writeJSON(w, out)
}
