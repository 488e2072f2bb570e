package conf

import (
	"fmt"
	"os"
)

// MustGetEnv returns the value of the environment variable or panics.
// Used at process startup where a missing variable is fatal anyway.
func MustGetEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("%s is not set", key))
	}
	return v
}

// GetExecSubmQueueUrl returns the SQS queue url that execution
// requests are enqueued to.
func GetExecSubmQueueUrl() string {
	return MustGetEnv("EXEC_SUBM_QUEUE_URL")
}

// GetExecRespQueueUrl returns the SQS queue url that per-test
// execution results arrive on.
func GetExecRespQueueUrl() string {
	return MustGetEnv("EXEC_RESP_QUEUE_URL")
}

// GetNotifQueueUrl returns the SQS queue url of the notification sink.
// Empty means notifications are only logged.
func GetNotifQueueUrl() string {
	return os.Getenv("NOTIF_QUEUE_URL")
}

// GetArtifactS3Bucket returns the bucket that raw solution artifacts
// are mirrored to. Empty disables mirroring.
func GetArtifactS3Bucket() string {
	return os.Getenv("ARTIFACT_S3_BUCKET")
}

// GetRewardTablePath returns the path of the TOML reward table
// override file. Empty means compiled-in defaults.
func GetRewardTablePath() string {
	return os.Getenv("REWARD_TABLE_PATH")
}
