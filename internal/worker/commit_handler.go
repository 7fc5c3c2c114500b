package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"portfolio-web/internal/config"
	"portfolio-web/internal/models"
	"portfolio-web/internal/repository"
	"portfolio-web/internal/service"
	"portfolio-web/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// TaskTypeImportCommit is the asynq task type for committing a previewed
// import session to the transactions table.
const TaskTypeImportCommit = "import:commit"

// ProgressKey is the Redis key the commit worker writes fractional progress
// to and the progress endpoint polls.
func ProgressKey(sessionCode string) string {
	return fmt.Sprintf("import:progress:%s", sessionCode)
}

type CommitTaskHandler struct {
	redis         *redis.Client
	cfg           *config.Config
	importRepo    *repository.ImportRepository
	commitService *service.CommitService
}

func NewCommitTaskHandler(db *sqlx.DB, redisClient *redis.Client, cfg *config.Config) *CommitTaskHandler {
	importRepo := repository.NewImportRepository(db)
	txRepo := repository.NewTransactionRepository(db)

	return &CommitTaskHandler{
		redis:         redisClient,
		cfg:           cfg,
		importRepo:    importRepo,
		commitService: service.NewCommitService(txRepo, utils.GetLogger()),
	}
}

type CommitTaskPayload struct {
	SessionID   int    `json:"session_id"`
	SessionCode string `json:"session_code"`
	UserID      int    `json:"user_id"`
}

func (h *CommitTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload CommitTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log := utils.GetLogger().WithField("session_code", payload.SessionCode)
	log.Info("Starting import commit")

	session, err := h.importRepo.GetSessionByID(payload.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	// Only sessions the handler moved into importing are eligible. Anything
	// else means a stale or duplicate task; skip without error.
	if session.State != string(service.ImportStateImporting) {
		log.WithField("state", session.State).Info("Session is not importing, skipping commit")
		return nil
	}

	rows, err := h.importRepo.GetAllRowsBySession(session.ID)
	if err != nil {
		return fmt.Errorf("failed to load staged rows: %w", err)
	}

	progressKey := ProgressKey(session.SessionCode)
	progress := func(committed, total int) {
		pct := float64(committed) / float64(total) * 100
		h.redis.Set(ctx, progressKey, fmt.Sprintf("%.2f", pct), 0)
	}
	mark := func(row *models.ImportRow) error {
		return h.importRepo.MarkRowCommitted(row.ID)
	}

	committed, commitErr := h.commitService.CommitRows(rows, payload.UserID, mark, progress)

	session.CommittedRows = committed

	if commitErr != nil {
		// Failed commit: the session returns to preview with progress reset,
		// keeping per-row committed flags so a retry skips the durable prefix.
		next, _ := service.Transition(service.ImportStateImporting, service.EventCommitFailed)
		session.State = string(next)
		session.Progress = 0
		session.ErrorMessage = commitErr.Error()
		h.redis.Set(ctx, progressKey, "0", 0)

		if err := h.importRepo.UpdateSession(session); err != nil {
			return fmt.Errorf("failed to record commit failure: %w", err)
		}

		log.WithField("committed", committed).WithField("error", commitErr.Error()).
			Warn("Import commit failed, session returned to preview")
		return nil
	}

	next, _ := service.Transition(service.ImportStateImporting, service.EventCommitSucceeded)
	session.State = string(next)
	session.Progress = 100
	session.ErrorMessage = ""
	h.redis.Set(ctx, progressKey, "100", 0)

	if err := h.importRepo.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to record commit success: %w", err)
	}

	log.WithField("committed", committed).Info("Import commit completed")
	return nil
}
