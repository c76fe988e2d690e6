package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/logicalx/logicalx/internal/app/engagement"
	"github.com/logicalx/logicalx/internal/domain"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// ─── Request Bodies ─────────────────────────────────────────────────────────

type answerRequest struct {
	Selected *int `json:"selected"`
}

type subscribeRequest struct {
	Plan string `json:"plan"`
}

type subscribeResponse struct {
	Plan      domain.Plan `json:"plan"`
	Celebrate bool        `json:"celebrate"`
}

type navigateRequest struct {
	View string `json:"view"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ─── Session ────────────────────────────────────────────────────────────────

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Login(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Logout(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	st := s.session.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":  st.Today,
		"tasks": st.Tasks,
	})
}

// ─── Puzzle ─────────────────────────────────────────────────────────────────

func (s *Server) handleStartTask(w http.ResponseWriter, r *http.Request) {
	pv, err := s.session.StartTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

func (s *Server) handlePlayNow(w http.ResponseWriter, r *http.Request) {
	pv, err := s.session.PlayNow(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pv)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if req.Selected == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "selected is required")
		return
	}

	out, err := s.session.Submit(*req.Selected)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Acknowledge(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Abandon(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// ─── Plan & View ────────────────────────────────────────────────────────────

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	plan, err := domain.ParsePlan(req.Plan)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	celebrate, err := s.session.Subscribe(plan)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subscribeResponse{Plan: plan, Celebrate: celebrate})
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	view, err := domain.ParseView(req.View)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.session.Navigate(view); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	notices := s.session.TakeNotices()
	if notices == nil {
		notices = []engagement.Notice{}
	}
	writeJSON(w, http.StatusOK, notices)
}

// ─── Catalogs ───────────────────────────────────────────────────────────────

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.board == nil {
		writeJSON(w, http.StatusOK, []domain.LeaderboardEntry{})
		return
	}

	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := s.board.Top(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engagement.Plans())
}
