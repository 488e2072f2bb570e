package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/codedaily-app/backend/httpjson"
)

func (httpserver *HttpServer) getUserPoints(w http.ResponseWriter, r *http.Request) {
	userUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		httpjson.HandleError(slog.Default(), w, errInvalidRequest("invalid user uuid"))
		return
	}
	total, entries, err := httpserver.ledgerSrvc.UserPoints(r.Context(), userUUID)
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, map[string]any{
		"total":   total,
		"entries": entries,
	})
}

// getStats serves the read-only admin projections: aggregate counts,
// the recent activity feed and the generation trend.
func (httpserver *HttpServer) getStats(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	catalogStats, err := httpserver.catalog.Stats(r.Context())
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	activityStats, err := httpserver.submSrvc.Stats(r.Context())
	if err != nil {
		httpjson.HandleError(slog.Default(), w, err)
		return
	}
	httpjson.WriteSuccessJson(w, map[string]any{
		"challenges":  catalogStats,
		"submissions": activityStats,
	})
}
