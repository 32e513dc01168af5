package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandlers handles category-related HTTP requests
type CategoryHandlers struct {
	categoryService services.CategoryService
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(categoryService services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{
		categoryService: categoryService,
	}
}

// CategoryRequest is the create and rename payload
type CategoryRequest struct {
	Name string `json:"name"`
}

// ListCategories handles GET /categories
func (h *CategoryHandlers) ListCategories(c echo.Context) error {
	limit, offset := common.ParsePagination(c)

	categories, err := h.categoryService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return sendServiceError(c, "retrieve categories", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"categories": categories,
		"limit":      limit,
		"offset":     offset,
	})
}

// GetCategory handles GET /categories/:id
func (h *CategoryHandlers) GetCategory(c echo.Context) error {
	categoryID, err := common.ValidateUUID(c.Param("id"), "category_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	category, err := h.categoryService.GetByID(c.Request().Context(), categoryID)
	if err != nil {
		return sendServiceError(c, "retrieve category", err)
	}
	return c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /categories
func (h *CategoryHandlers) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	category, err := h.categoryService.Create(c.Request().Context(), req.Name)
	if err != nil {
		return sendServiceError(c, "create category", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message":  "Category created successfully",
		"category": category,
	})
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandlers) UpdateCategory(c echo.Context) error {
	categoryID, err := common.ValidateUUID(c.Param("id"), "category_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	category, err := h.categoryService.Rename(c.Request().Context(), categoryID, req.Name)
	if err != nil {
		return sendServiceError(c, "update category", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandlers) DeleteCategory(c echo.Context) error {
	categoryID, err := common.ValidateUUID(c.Param("id"), "category_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.categoryService.Delete(c.Request().Context(), categoryID); err != nil {
		return sendServiceError(c, "delete category", err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Category deleted successfully"})
}
