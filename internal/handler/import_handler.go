package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"portfolio-web/internal/config"
	"portfolio-web/internal/models"
	"portfolio-web/internal/repository"
	"portfolio-web/internal/service"
	"portfolio-web/internal/utils"
	"portfolio-web/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type ImportHandler struct {
	importRepo   *repository.ImportRepository
	companyRepo  *repository.CompanyRepository
	excelService *service.ExcelService
	asynqClient  *asynq.Client
	redis        *redis.Client
	cfg          *config.Config
}

func NewImportHandler(
	importRepo *repository.ImportRepository,
	companyRepo *repository.CompanyRepository,
	excelService *service.ExcelService,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	cfg *config.Config,
) *ImportHandler {
	return &ImportHandler{
		importRepo:   importRepo,
		companyRepo:  companyRepo,
		excelService: excelService,
		asynqClient:  asynqClient,
		redis:        redisClient,
		cfg:          cfg,
	}
}

// Upload receives a filled template, extracts and validates every row, and
// stages the result as a session in preview state. Validation errors never
// fail the upload; they come back in the report for row-level display.
func (h *ImportHandler) Upload(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File is required", err)
	}

	if err := h.excelService.ValidateExtension(file.Filename); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if file.Size > int64(h.cfg.UploadMaxSize) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File size exceeds maximum limit", nil)
	}

	sessionCode := fmt.Sprintf("IMPORT-%s", uuid.New().String()[:8])

	filePath := filepath.Join(h.cfg.UploadPath, fmt.Sprintf("%s%s", sessionCode, filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, filePath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save file", err)
	}

	companies, err := h.companyRepo.GetActiveRefs()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load companies", err)
	}

	report, err := h.excelService.ParseTransactionFile(filePath, companies)
	if err != nil {
		var capErr *service.RowCapError
		switch {
		case errors.Is(err, service.ErrUnrecognizedTemplate):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
		case errors.As(err, &capErr):
			return utils.ErrorResponse(c, fiber.StatusBadRequest, capErr.Error(), nil)
		default:
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse Excel file", err)
		}
	}

	state, err := service.Transition(service.ImportStateUpload, service.EventParsed)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to initialize session", err)
	}

	session := &models.ImportSession{
		SessionCode: sessionCode,
		UserID:      userID,
		Filename:    file.Filename,
		State:       string(state),
		TotalRows:   report.TotalRows,
		ValidRows:   report.ValidCount,
		ErrorRows:   report.ErrorCount,
	}

	if err := h.importRepo.CreateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create import session", err)
	}

	if err := h.importRepo.BulkInsertRows(session.ID, report.ValidRows); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to stage rows", err)
	}
	if err := h.importRepo.BulkInsertRowErrors(session.ID, report.RowErrors); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to stage row errors", err)
	}

	return utils.SuccessResponse(c, "File uploaded successfully", fiber.Map{
		"session":     session,
		"total_rows":  report.TotalRows,
		"valid_rows":  report.ValidCount,
		"error_rows":  report.ErrorCount,
		"import_time": report.ImportTime,
		"preview":     previewRows(report.ValidRows, 10),
		"row_errors":  report.RowErrors,
	})
}

// GetPreview returns the session summary plus a page of staged rows and the
// full error list, everything the preview screen renders.
func (h *ImportHandler) GetPreview(c *fiber.Ctx) error {
	session, err := h.sessionForUser(c)
	if session == nil {
		return err
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	rows, total, err := h.importRepo.GetRowsBySession(session.ID, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve staged rows", err)
	}

	rowErrors, err := h.importRepo.GetRowErrorsBySession(session.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve row errors", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"session":    session,
		"rows":       rows,
		"row_errors": rowErrors,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Import session retrieved successfully", responseData, pagination)
}

// Commit moves the session into importing and queues the background commit.
// It requires at least one valid row; a file of only errors cannot commit.
func (h *ImportHandler) Commit(c *fiber.Ctx) error {
	session, err := h.sessionForUser(c)
	if session == nil {
		return err
	}

	if session.ValidRows < 1 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Nothing to import: the file contains no valid rows", nil)
	}

	next, err := service.Transition(service.ImportState(session.State), service.EventCommit)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, err.Error(), nil)
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available (Redis not connected)", nil)
	}

	session.State = string(next)
	session.Progress = 0
	session.ErrorMessage = ""
	if err := h.importRepo.UpdateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	payload, _ := json.Marshal(worker.CommitTaskPayload{
		SessionID:   session.ID,
		SessionCode: session.SessionCode,
		UserID:      session.UserID,
	})

	task := asynq.NewTask(worker.TaskTypeImportCommit, payload)
	info, err := h.asynqClient.Enqueue(task)
	if err != nil {
		// Roll the state back so the user can retry the commit.
		h.importRepo.UpdateSessionState(session.ID, string(service.ImportStatePreview))
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue import task", err)
	}

	return utils.SuccessResponse(c, "Import started", fiber.Map{
		"job_id":  info.ID,
		"session": session,
	})
}

// Back discards the staged preview and returns the session to upload so a
// corrected file can replace it.
func (h *ImportHandler) Back(c *fiber.Ctx) error {
	session, err := h.sessionForUser(c)
	if session == nil {
		return err
	}

	next, err := service.Transition(service.ImportState(session.State), service.EventBack)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, err.Error(), nil)
	}

	if err := h.importRepo.ClearRows(session.ID); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to clear staged rows", err)
	}

	session.State = string(next)
	session.TotalRows = 0
	session.ValidRows = 0
	session.ErrorRows = 0
	session.CommittedRows = 0
	session.Progress = 0
	session.ErrorMessage = ""
	if err := h.importRepo.UpdateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	return utils.SuccessResponse(c, "Session returned to upload", session)
}

// Cancel abandons the session. An importing session cannot be canceled; it
// either completes or falls back to preview on its own.
func (h *ImportHandler) Cancel(c *fiber.Ctx) error {
	session, err := h.sessionForUser(c)
	if session == nil {
		return err
	}

	next, err := service.Transition(service.ImportState(session.State), service.EventCancel)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, err.Error(), nil)
	}

	session.State = string(next)
	if err := h.importRepo.UpdateSession(session); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update session", err)
	}

	return utils.SuccessResponse(c, "Import session canceled", session)
}

// Progress reads the live commit progress: the Redis key the worker updates
// per row, falling back to the persisted session value when Redis has none.
func (h *ImportHandler) Progress(c *fiber.Ctx) error {
	session, err := h.sessionForUser(c)
	if session == nil {
		return err
	}

	progress := session.Progress
	if h.redis != nil {
		if val, err := h.redis.Get(c.Context(), worker.ProgressKey(session.SessionCode)).Result(); err == nil {
			if parsed, err := strconv.ParseFloat(val, 64); err == nil {
				progress = parsed
			}
		}
	}

	return utils.SuccessResponse(c, "Progress retrieved successfully", fiber.Map{
		"session_code":  session.SessionCode,
		"state":         session.State,
		"progress":      progress,
		"error_message": session.ErrorMessage,
	})
}

// DownloadTemplate generates a fresh import template workbook and sends it.
func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	fileName := "transaction_import_template.xlsx"
	outputPath := filepath.Join(h.cfg.ExportPath, fileName)

	if err := h.excelService.GenerateImportTemplate(outputPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate template", err)
	}

	return c.Download(outputPath, fileName)
}

// DownloadErrorReport exports the session's row errors as a workbook so the
// user can fix the source file offline.
func (h *ImportHandler) DownloadErrorReport(c *fiber.Ctx) error {
	session, err := h.sessionForUser(c)
	if session == nil {
		return err
	}

	rowErrors, err := h.importRepo.GetRowErrorsBySession(session.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve row errors", err)
	}

	report := &models.ImportReport{
		RowErrors:  rowErrors,
		TotalRows:  session.TotalRows,
		ValidCount: session.ValidRows,
		ErrorCount: session.ErrorRows,
		ImportTime: time.Now(),
	}

	fileName := fmt.Sprintf("import_errors_%s_%s.xlsx", session.SessionCode, time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(h.cfg.ExportPath, fileName)

	if err := h.excelService.GenerateRowErrorReport(report, outputPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate error report", err)
	}

	return c.Download(outputPath, fileName)
}

// sessionForUser loads the session addressed by the :code param and enforces
// that it belongs to the authenticated user (admins see all sessions).
func (h *ImportHandler) sessionForUser(c *fiber.Ctx) (*models.ImportSession, error) {
	code := c.Params("code")

	session, err := h.importRepo.GetSessionByCode(code)
	if err != nil {
		return nil, utils.ErrorResponse(c, fiber.StatusNotFound, "Import session not found", err)
	}

	userID := c.Locals("user_id").(int)
	role, _ := c.Locals("role").(string)
	if session.UserID != userID && role != "admin" {
		return nil, utils.ErrorResponse(c, fiber.StatusForbidden, "Import session belongs to another user", nil)
	}

	return session, nil
}

func previewRows(rows []models.ImportRow, limit int) []models.ImportRow {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
