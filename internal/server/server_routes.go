package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/brk3/habitcal/internal/dateinput"
	"github.com/brk3/habitcal/internal/logger"
	"github.com/brk3/habitcal/internal/syncer"
	"github.com/brk3/habitcal/pkg/habit"
	"github.com/brk3/habitcal/pkg/versioninfo"
	"github.com/go-chi/chi/v5"
)

func (s *Server) getVersionInfo(w http.ResponseWriter, _ *http.Request) {
	info := versioninfo.VersionInfo{
		Version:   versioninfo.Version,
		BuildDate: versioninfo.BuildDate,
	}
	if err := writeJSON(w, http.StatusOK, info); err != nil {
		logger.Error("Failed to serialize version info response", "error", err)
		http.Error(w, `{"error":"failed to serialize version info"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) listHabits(w http.ResponseWriter, _ *http.Request) {
	habits := s.engine.Store().Habits()
	if err := writeJSON(w, http.StatusOK, HabitListResponse{Habits: habits}); err != nil {
		logger.Error("Failed to serialize habit list response", "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var req CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid JSON in create habit request", "error", err)
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	target, err := dateinput.Parse(req.Date, s.now())
	if err != nil {
		badRequest(w, err)
		return
	}
	freq := habit.Daily
	if !target.IsZero() {
		freq = habit.Specific
	}

	h, err := s.engine.CreateHabit(req.Name, freq, target)
	if err != nil {
		badRequest(w, err)
		return
	}
	logger.Info("Habit created", "habit_id", h.ID, "name", h.Name, "target_date", h.TargetDate)

	code := http.StatusCreated
	if s.engine.Mode() == syncer.ModeNetworkOnly {
		code = http.StatusAccepted
	}
	if err := writeJSON(w, code, h); err != nil {
		logger.Error("Failed to serialize create habit response", "error", err)
	}
}

func (s *Server) createSeries(w http.ResponseWriter, r *http.Request) {
	var req CreateSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Invalid JSON in create series request", "error", err)
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	start := habit.DateOf(s.now())
	if req.Start != "" {
		var err error
		if start, err = dateinput.Parse(req.Start, s.now()); err != nil {
			badRequest(w, err)
			return
		}
	}

	habits, err := s.engine.CreateSeries(req.Prefix, start, req.Count)
	if err != nil {
		badRequest(w, err)
		return
	}
	logger.Info("Series created", "prefix", req.Prefix, "start", start, "count", len(habits))

	code := http.StatusCreated
	if s.engine.Mode() == syncer.ModeNetworkOnly {
		code = http.StatusAccepted
	}
	if err := writeJSON(w, code, HabitListResponse{Habits: habits}); err != nil {
		logger.Error("Failed to serialize create series response", "error", err)
	}
}

func (s *Server) getDay(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	if err := writeJSON(w, http.StatusOK, s.engine.Store().Day(d)); err != nil {
		logger.Error("Failed to serialize day response", "date", d, "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

// completeHabit logs habit_id as done on the date. Repeating the request is
// harmless: a habit that is already done answers 200 without a new log.
func (s *Server) completeHabit(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dateParam(w, r)
	if !ok {
		return
	}
	habitID := chi.URLParam(r, "habit_id")
	if _, found := s.engine.Store().Habit(habitID); !found {
		http.Error(w, `{"error":"habit not found"}`, http.StatusNotFound)
		return
	}

	added, err := s.engine.Complete(habitID, d)
	if err != nil {
		badRequest(w, err)
		return
	}

	code := http.StatusOK
	if added {
		code = http.StatusCreated
		logger.Info("Habit completed", "habit_id", habitID, "date", d)
	}
	if err := writeJSON(w, code, s.engine.Store().Day(d)); err != nil {
		logger.Error("Failed to serialize completion response", "error", err)
	}
}

func (s *Server) sync(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.FetchSnapshot(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf(`{"error":%q}`, "sync failed: "+err.Error()), http.StatusBadGateway)
		return
	}
	snap := s.engine.Store().Snapshot()
	resp := SyncResponse{Habits: len(snap.Habits), Logs: len(snap.Logs)}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize sync response", "error", err)
	}
}

func (s *Server) listWrites(w http.ResponseWriter, _ *http.Request) {
	resp := WritesResponse{Writes: s.engine.Writes(), Counts: s.engine.WriteCounts()}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.Error("Failed to serialize writes response", "error", err)
		http.Error(w, `{"error":"failed to serialize response"}`, http.StatusInternalServerError)
		return
	}
}

func (s *Server) clearFailedWrites(w http.ResponseWriter, _ *http.Request) {
	n := s.engine.ClearFailedWrites()
	logger.Info("Cleared failed writes", "count", n)
	if err := writeJSON(w, http.StatusOK, ClearWritesResponse{Cleared: n}); err != nil {
		logger.Error("Failed to serialize clear writes response", "error", err)
	}
}

func (s *Server) dateParam(w http.ResponseWriter, r *http.Request) (habit.Date, bool) {
	raw := chi.URLParam(r, "date")
	d, err := dateinput.Parse(raw, s.now())
	if err != nil || d.IsZero() {
		http.Error(w, `{"error":"invalid date"}`, http.StatusBadRequest)
		return habit.Date{}, false
	}
	return d, true
}

func badRequest(w http.ResponseWriter, err error) {
	var msg string
	switch {
	case errors.Is(err, syncer.ErrNameRequired),
		errors.Is(err, syncer.ErrDateRequired),
		errors.Is(err, syncer.ErrCountRequired),
		errors.Is(err, syncer.ErrCountTooLarge),
		errors.Is(err, syncer.ErrHabitRequired),
		errors.Is(err, syncer.ErrFrequency),
		errors.Is(err, dateinput.ErrUnrecognized):
		msg = err.Error()
	default:
		msg = "invalid request"
		logger.Warn("Rejected request", "error", err)
	}
	http.Error(w, fmt.Sprintf(`{"error":%q}`, msg), http.StatusBadRequest)
}
