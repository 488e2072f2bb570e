package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/codedaily-app/backend/httpjson"
	"github.com/codedaily-app/backend/subm"
)

func (httpserver *HttpServer) createSubmission(w http.ResponseWriter, r *http.Request) {
	userUUID, err := requireUser(r)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	type createSubmissionRequest struct {
		ChallengeUUID         string `json:"challenge_uuid"`
		Artifact              string `json:"artifact"`
		CompletionTimeSeconds int    `json:"completion_time_seconds"`
	}

	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("malformed request body"))
		return
	}
	challengeUUID, err := uuid.Parse(req.ChallengeUUID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("invalid challenge uuid"))
		return
	}
	if req.CompletionTimeSeconds < 0 {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("completion time must be non-negative"))
		return
	}

	submission, err := httpserver.submSrvc.Submit(r.Context(), subm.SubmitParams{
		UserUUID:              userUUID,
		ChallengeUUID:         challengeUUID,
		Artifact:              req.Artifact,
		CompletionTimeSeconds: req.CompletionTimeSeconds,
	})
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	httpjson.WriteSuccessJsonCode(w, submission, http.StatusCreated)
}

func (httpserver *HttpServer) getSubmission(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("invalid submission uuid"))
		return
	}
	submission, err := httpserver.submSrvc.GetSubm(r.Context(), id)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, submission)
}

func (httpserver *HttpServer) listSubmissions(w http.ResponseWriter, r *http.Request) {
	challengeUUID, err := uuid.Parse(r.URL.Query().Get("challenge"))
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("challenge query parameter is required"))
		return
	}
	subms, err := httpserver.submSrvc.ListSubms(r.Context(), challengeUUID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, subms)
}

func (httpserver *HttpServer) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	challengeUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("invalid challenge uuid"))
		return
	}
	board, err := httpserver.submSrvc.Leaderboard(r.Context(), challengeUUID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}

	type leaderboardRow struct {
		Rank                  int       `json:"rank"`
		UserUUID              uuid.UUID `json:"user_uuid"`
		ScoreTotal            int       `json:"score_total"`
		Rating                string    `json:"rating"`
		CompletionTimeSeconds int       `json:"completion_time_seconds"`
		PrizeEligible         bool      `json:"prize_eligible"`
	}
	rows := make([]leaderboardRow, len(board))
	for i, s := range board {
		rank := i + 1
		if s.Rank != nil {
			rank = *s.Rank
		}
		rows[i] = leaderboardRow{
			Rank:                  rank,
			UserUUID:              s.UserUUID,
			ScoreTotal:            s.Score.Total,
			Rating:                s.Score.Rating,
			CompletionTimeSeconds: s.CompletionTimeSeconds,
			PrizeEligible:         s.PrizeEligible,
		}
	}
	httpjson.WriteSuccessJson(w, rows)
}
