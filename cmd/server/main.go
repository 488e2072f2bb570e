package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/codedaily-app/backend/artifact"
	"github.com/codedaily-app/backend/challenge"
	"github.com/codedaily-app/backend/conf"
	"github.com/codedaily-app/backend/execsrvc"
	"github.com/codedaily-app/backend/http"
	"github.com/codedaily-app/backend/ledger"
	"github.com/codedaily-app/backend/notify"
	"github.com/codedaily-app/backend/ranking"
	"github.com/codedaily-app/backend/subm"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey == "" {
		slog.Error("JWT_KEY is not set")
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), conf.GetPgConnStrFromEnv())
	if err != nil {
		slog.Error("failed to create pg pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	catalog := challenge.NewCatalogSrvc(challenge.NewPgChallengeRepo(pool))

	runner, err := execsrvc.NewSqsRunner(
		conf.GetExecSubmQueueUrl(),
		conf.GetExecRespQueueUrl(),
	)
	if err != nil {
		slog.Error("failed to create execution runner", "error", err)
		os.Exit(1)
	}
	defer runner.Close()

	var notifier notify.Notifier = notify.NewSlogNotifier()
	if queueUrl := conf.GetNotifQueueUrl(); queueUrl != "" {
		notifier, err = notify.NewSqsNotifier(queueUrl)
		if err != nil {
			slog.Error("failed to create notifier", "error", err)
			os.Exit(1)
		}
	}

	rewardTable, err := ledger.LoadRewardTable(conf.GetRewardTablePath())
	if err != nil {
		slog.Error("failed to load reward table", "error", err)
		os.Exit(1)
	}
	ledgerSrvc := ledger.NewLedgerSrvc(ledger.NewPgLedgerRepo(pool), rewardTable)
	defer ledgerSrvc.Close()

	submRepo := subm.NewPgSubmRepo(pool)
	rankSrvc := ranking.NewRankSrvc(submRepo, catalog, ledgerSrvc, notifier)
	submSrvc := subm.NewSubmSrvc(submRepo, catalog, runner, rankSrvc, ledgerSrvc, notifier)

	if bucket := conf.GetArtifactS3Bucket(); bucket != "" {
		store, err := artifact.NewStore(bucket)
		if err != nil {
			slog.Error("failed to create artifact store", "error", err)
			os.Exit(1)
		}
		submSrvc.WithArtifactMirror(store)
	}

	httpServer := http.NewHttpServer(catalog, submSrvc, rankSrvc, ledgerSrvc, []byte(jwtKey))

	address := ":8080"
	log.Printf("Starting server on %s", address)
	err = httpServer.Start(address)
	log.Printf("Server stopped with error: %v", err)
}
