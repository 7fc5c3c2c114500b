package handler

import (
	"strconv"
	"time"

	"portfolio-web/internal/models"
	"portfolio-web/internal/repository"
	"portfolio-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type CompanyHandler struct {
	companyRepo *repository.CompanyRepository
	priceRepo   *repository.PriceRepository
}

func NewCompanyHandler(companyRepo *repository.CompanyRepository, priceRepo *repository.PriceRepository) *CompanyHandler {
	return &CompanyHandler{
		companyRepo: companyRepo,
		priceRepo:   priceRepo,
	}
}

func (h *CompanyHandler) GetCompanies(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	search := c.Query("search")

	companies, total, err := h.companyRepo.FindAll(params.Limit, offset, search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve companies", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"companies":  companies,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Companies retrieved successfully", responseData, pagination)
}

func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid company ID", err)
	}

	company, err := h.companyRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", err)
	}

	return utils.SuccessResponse(c, "Company retrieved successfully", company)
}

func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req models.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Company name is required", nil)
	}

	company := &models.Company{
		Name:     req.Name,
		Symbol:   req.Symbol,
		Sector:   req.Sector,
		IsActive: req.IsActive,
	}

	if err := h.companyRepo.Create(company); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create company", err)
	}

	return utils.SuccessResponse(c, "Company created successfully", company)
}

func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid company ID", err)
	}

	company, err := h.companyRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", err)
	}

	var req models.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Name == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Company name is required", nil)
	}

	company.Name = req.Name
	company.Symbol = req.Symbol
	company.Sector = req.Sector
	company.IsActive = req.IsActive

	if err := h.companyRepo.Update(company); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update company", err)
	}

	return utils.SuccessResponse(c, "Company updated successfully", company)
}

func (h *CompanyHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid company ID", err)
	}

	if err := h.companyRepo.Delete(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete company", err)
	}

	return utils.SuccessResponse(c, "Company deleted successfully", nil)
}

func (h *CompanyHandler) GetPriceHistory(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid company ID", err)
	}

	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	points, total, err := h.priceRepo.HistoryByCompany(id, params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve price history", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"prices":     points,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Price history retrieved successfully", responseData, pagination)
}

func (h *CompanyHandler) AddPricePoint(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid company ID", err)
	}

	if _, err := h.companyRepo.FindByID(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Company not found", err)
	}

	var req models.PricePointRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Price.Sign() <= 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Price must be greater than zero", nil)
	}

	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	point := &models.PricePoint{
		CompanyID:  id,
		Price:      req.Price,
		RecordedAt: recordedAt,
	}

	if err := h.priceRepo.Add(point); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add price point", err)
	}

	return utils.SuccessResponse(c, "Price point added successfully", point)
}

func (h *CompanyHandler) GetLatestPrice(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid company ID", err)
	}

	point, err := h.priceRepo.Latest(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No price recorded for this company", err)
	}

	return utils.SuccessResponse(c, "Latest price retrieved successfully", point)
}
