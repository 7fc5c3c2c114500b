package handler

import (
	"strconv"
	"time"

	"portfolio-web/internal/models"
	"portfolio-web/internal/repository"
	"portfolio-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	txRepo      *repository.TransactionRepository
	companyRepo *repository.CompanyRepository
}

func NewTransactionHandler(txRepo *repository.TransactionRepository, companyRepo *repository.CompanyRepository) *TransactionHandler {
	return &TransactionHandler{
		txRepo:      txRepo,
		companyRepo: companyRepo,
	}
}

func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	companyID, _ := strconv.Atoi(c.Query("company_id"))

	transactions, total, err := h.txRepo.FindAll(userID, companyID, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve transactions", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"transactions": transactions,
		"pagination":   pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Transactions retrieved successfully", responseData, pagination)
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid transaction ID", err)
	}

	tx, err := h.txRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Transaction not found", err)
	}
	if tx.UserID != userID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Transaction belongs to another user", nil)
	}

	return utils.SuccessResponse(c, "Transaction retrieved successfully", tx)
}

func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	var req models.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	tx, err := h.buildTransaction(userID, req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}

	if err := h.txRepo.Create(tx); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create transaction", err)
	}

	return utils.SuccessResponse(c, "Transaction created successfully", tx)
}

func (h *TransactionHandler) UpdateTransaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid transaction ID", err)
	}

	existing, err := h.txRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Transaction not found", err)
	}
	if existing.UserID != userID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Transaction belongs to another user", nil)
	}

	var req models.TransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	tx, err := h.buildTransaction(userID, req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), nil)
	}
	tx.ID = existing.ID

	if err := h.txRepo.Update(tx); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update transaction", err)
	}

	return utils.SuccessResponse(c, "Transaction updated successfully", tx)
}

func (h *TransactionHandler) DeleteTransaction(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(int)

	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid transaction ID", err)
	}

	existing, err := h.txRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Transaction not found", err)
	}
	if existing.UserID != userID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Transaction belongs to another user", nil)
	}

	if err := h.txRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete transaction", err)
	}

	return utils.SuccessResponse(c, "Transaction deleted successfully", nil)
}

// buildTransaction validates a manual-entry request against the same rules the
// import pipeline applies to spreadsheet rows.
func (h *TransactionHandler) buildTransaction(userID int, req models.TransactionRequest) (*models.Transaction, error) {
	if req.Type != models.TransactionTypeBuy && req.Type != models.TransactionTypeSell {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Type must be exactly 'Buy' or 'Sell'")
	}
	if req.Quantity.Sign() <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid quantity")
	}
	if req.Price.Sign() <= 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid price")
	}
	fees := req.Fees
	if fees.Sign() < 0 {
		fees = fees.Abs()
	}

	tradeDate, err := time.Parse("2006-01-02", req.TradeDate)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid date format")
	}

	company, err := h.companyRepo.FindByID(req.CompanyID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Company not found in system")
	}

	return &models.Transaction{
		UserID:      userID,
		CompanyID:   company.ID,
		CompanyName: company.Name,
		TradeDate:   tradeDate,
		Type:        req.Type,
		Quantity:    req.Quantity,
		Price:       req.Price,
		Fees:        fees,
		Total:       req.Quantity.Mul(req.Price),
		Remarks:     req.Remarks,
	}, nil
}
