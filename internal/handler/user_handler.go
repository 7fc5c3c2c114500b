package handler

import (
	"strconv"

	"portfolio-web/internal/models"
	"portfolio-web/internal/repository"
	"portfolio-web/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
	}
}

func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)
	search := c.Query("search")

	users, total, err := h.userRepo.FindAll(params.Limit, offset, search)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve users", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))

	responseData := fiber.Map{
		"users":      users,
		"pagination": pagination,
	}

	return utils.PaginatedResponseBuilder(c, "Users retrieved successfully", responseData, pagination)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", err)
	}

	user, err := h.userRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", err)
	}

	return utils.SuccessResponse(c, "User retrieved successfully", user)
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", err)
	}

	user, err := h.userRepo.FindByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", err)
	}

	var req models.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if req.Name == "" || req.Username == "" || req.Email == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Name, username and email are required", nil)
	}

	user.Name = req.Name
	user.Username = req.Username
	user.Email = req.Email
	user.IsActive = req.IsActive
	if req.Role != "" {
		user.Role = req.Role
	}

	if err := h.userRepo.Update(user); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update user", err)
	}

	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hash password", err)
		}
		if err := h.userRepo.UpdatePassword(user.ID, hash); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update password", err)
		}
	}

	return utils.SuccessResponse(c, "User updated successfully", user)
}

func (h *UserHandler) DeactivateUser(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid user ID", err)
	}

	if id == c.Locals("user_id").(int) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot deactivate your own account", nil)
	}

	if err := h.userRepo.Deactivate(id); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate user", err)
	}

	return utils.SuccessResponse(c, "User deactivated successfully", nil)
}
