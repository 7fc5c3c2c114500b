package worker

import (
	"portfolio-web/internal/config"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) {
	commitHandler := NewCommitTaskHandler(db, redisClient, cfg)

	mux.HandleFunc(TaskTypeImportCommit, commitHandler.Handle)
}
