package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// GetPgConnStrFromEnv assembles a Postgres connection string from the
// POSTGRES_* environment variables. Off localhost the password comes
// from AWS Secrets Manager rather than the environment.
func GetPgConnStrFromEnv() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "codedaily")
	db := envOr("POSTGRES_DB", "codedaily")
	ssl := envOr("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, resolvePgPassword(host), db, ssl)
}

func resolvePgPassword(host string) string {
	if host == "localhost" {
		return os.Getenv("POSTGRES_PW")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	secretName := MustGetEnv("POSTGRES_PASSWORD_SECRET_NAME")
	raw, err := fetchSecret(ctx, secretName)
	if err != nil {
		panic(fmt.Sprintf("failed to get postgres password from AWS: %v", err))
	}
	var secret struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		panic(fmt.Sprintf("failed to parse postgres password secret: %v", err))
	}
	return secret.Password
}

func fetchSecret(ctx context.Context, secretName string) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", err
	}
	svc := secretsmanager.NewFromConfig(cfg)
	result, err := svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return "", err
	}
	return *result.SecretString, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
