package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/codedaily-app/backend/challenge"
	"github.com/codedaily-app/backend/httpjson"
	"github.com/codedaily-app/backend/srvcerror"
)

func (httpserver *HttpServer) scheduleChallenge(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	type scheduleRequest struct {
		Date            string               `json:"date"` // YYYY-MM-DD
		Title           string               `json:"title"`
		Difficulty      string               `json:"difficulty"`
		Category        string               `json:"category"`
		Tests           []challenge.TestCase `json:"tests"`
		ScoringCriteria map[string]float64   `json:"scoring_criteria"`
		MaxPoints       int                  `json:"max_points"`
		Prizes          []challenge.Prize    `json:"prizes"`
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("malformed request body"))
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("date must be formatted YYYY-MM-DD"))
		return
	}

	ch, err := httpserver.catalog.Schedule(r.Context(), challenge.ScheduleParams{
		Title:           req.Title,
		Difficulty:      req.Difficulty,
		Category:        req.Category,
		Tests:           req.Tests,
		ScoringCriteria: req.ScoringCriteria,
		MaxPoints:       req.MaxPoints,
		Prizes:          req.Prizes,
	}, date)
	if err != nil {
		// a scheduling conflict carries the requested date's occupant
		// so the caller can see who holds the slot
		var srvcErr *srvcerror.Error
		if errors.As(err, &srvcErr) && srvcErr.ErrorCode() == challenge.ErrCodeSchedulingConflict && ch != nil {
			httpjson.WriteErrorJsonData(w, srvcErr.Error(), srvcErr.HttpStatusCode(), srvcErr.ErrorCode(), ch)
			return
		}
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	httpjson.WriteSuccessJsonCode(w, ch, http.StatusCreated)
}

func (httpserver *HttpServer) getChallengeByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("date must be formatted YYYY-MM-DD"))
		return
	}
	ch, err := httpserver.catalog.Lookup(r.Context(), date)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, ch)
}

func (httpserver *HttpServer) listChallenges(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from, to := now.AddDate(0, 0, -30), now.AddDate(0, 0, 30)
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			httpjson.HandleError(slog.Default(), w, errInvalidRequest("from must be formatted YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.DateOnly, v)
		if err != nil {
			httpjson.HandleError(slog.Default(), w, errInvalidRequest("to must be formatted YYYY-MM-DD"))
			return
		}
		to = parsed
	}
	challenges, err := httpserver.catalog.List(r.Context(), from, to)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, challenges)
}

func (httpserver *HttpServer) announceWinners(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	challengeUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("invalid challenge uuid"))
		return
	}
	winners, err := httpserver.rankSrvc.AnnounceWinners(r.Context(), challengeUUID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, winners)
}
