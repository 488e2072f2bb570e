package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/codedaily-app/backend/auth"
	"github.com/codedaily-app/backend/challenge"
	"github.com/codedaily-app/backend/ledger"
	"github.com/codedaily-app/backend/ranking"
	"github.com/codedaily-app/backend/subm"
)

type HttpServer struct {
	catalog    *challenge.CatalogSrvc
	submSrvc   *subm.SubmSrvc
	rankSrvc   *ranking.RankSrvc
	ledgerSrvc *ledger.LedgerSrvc
	router     *chi.Mux
}

func NewHttpServer(
	catalog *challenge.CatalogSrvc,
	submSrvc *subm.SubmSrvc,
	rankSrvc *ranking.RankSrvc,
	ledgerSrvc *ledger.LedgerSrvc,
	jwtKey []byte,
) *HttpServer {
	router := chi.NewRouter()

	logger := httplog.NewLogger("codedaily", httplog.Options{
		LogLevel:         slog.LevelDebug,
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
	})

	router.Use(httplog.RequestLogger(logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://codedaily.app", "https://www.codedaily.app"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(auth.GetJwtAuthMiddleware(jwtKey))

	server := &HttpServer{
		catalog:    catalog,
		submSrvc:   submSrvc,
		rankSrvc:   rankSrvc,
		ledgerSrvc: ledgerSrvc,
		router:     router,
	}

	server.routes()

	return server
}

func (httpserver *HttpServer) Start(address string) error {
	return http.ListenAndServe(address, httpserver.router)
}

func (httpserver *HttpServer) Router() http.Handler {
	return httpserver.router
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router
	r.Post("/challenges", httpserver.scheduleChallenge)
	r.Get("/challenges", httpserver.listChallenges)
	r.Get("/challenges/{date}", httpserver.getChallengeByDate)
	r.Get("/challenges/{uuid}/leaderboard", httpserver.getLeaderboard)
	r.Post("/challenges/{uuid}/winners", httpserver.announceWinners)
	r.Post("/submissions", httpserver.createSubmission)
	r.Get("/submissions", httpserver.listSubmissions)
	r.Get("/submissions/{uuid}", httpserver.getSubmission)
	r.Get("/users/{uuid}/points", httpserver.getUserPoints)
	r.Get("/stats", httpserver.getStats)
}
