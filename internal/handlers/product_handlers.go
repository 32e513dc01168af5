package handlers

import (
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const maxImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ProductHandlers handles HTTP requests for products
type ProductHandlers struct {
	productService services.ProductService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{
		productService: productService,
	}
}

// CreateProductRequest is the admin create payload
type CreateProductRequest struct {
	Name        string          `json:"name"`
	CategoryID  *string         `json:"category_id"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// CreateProduct handles POST /products
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return common.SendValidationError(c, "name", err.Error())
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
	if req.CategoryID != nil && *req.CategoryID != "" {
		categoryID, err := common.ValidateUUID(*req.CategoryID, "category_id")
		if err != nil {
			return common.SendValidationError(c, "category_id", err.Error())
		}
		product.CategoryID = &categoryID
	}

	if err := h.productService.Create(ctx, product); err != nil {
		return sendServiceError(c, "create product", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Product created successfully",
		"product": product,
	})
}

// ListProducts handles GET /products
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := common.ParsePagination(c)
	filter := &models.ProductFilter{
		Query:  c.QueryParam("q"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.QueryParam("category_id"); raw != "" {
		categoryID, err := common.ValidateUUID(raw, "category_id")
		if err != nil {
			return common.SendValidationError(c, "category_id", err.Error())
		}
		filter.CategoryID = &categoryID
	}

	products, err := h.productService.List(ctx, filter)
	if err != nil {
		return sendServiceError(c, "retrieve products", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"products": products,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	product, err := h.productService.GetByID(c.Request().Context(), productID)
	if err != nil {
		return sendServiceError(c, "retrieve product", err)
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var update models.ProductUpdate
	if err := c.Bind(&update); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	product, err := h.productService.Update(c.Request().Context(), productID, &update)
	if err != nil {
		return sendServiceError(c, "update product", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.productService.Delete(c.Request().Context(), productID); err != nil {
		return sendServiceError(c, "delete product", err)
	}
	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Product deleted successfully"})
}

// UploadProductImage handles POST /products/:id/image
func (h *ProductHandlers) UploadProductImage(c echo.Context) error {
	productID, err := common.ValidateUUID(c.Param("id"), "product_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	file, err := c.FormFile("image")
	if err != nil {
		return common.SendValidationError(c, "image", "Image file is required")
	}
	if file.Size > maxImageSize {
		return common.SendValidationError(c, "image", "File size exceeds maximum limit of 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to open image file")
	}
	defer src.Close()

	// sniff the first 512 bytes, then rewind for the upload
	buffer := make([]byte, 512)
	n, _ := src.Read(buffer)
	contentType := http.DetectContentType(buffer[:n])
	if !allowedImageTypes[contentType] {
		return common.SendValidationError(c, "image", "Only JPEG, PNG, GIF, and WebP images are allowed")
	}
	if _, err := src.Seek(0, 0); err != nil {
		return common.SendServerError(c, "Failed to read image file")
	}

	product, err := h.productService.UploadProductImage(c.Request().Context(), productID, file.Filename, contentType, src, file.Size)
	if err != nil {
		return sendServiceError(c, "upload image", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Image uploaded successfully",
		"product": product,
	})
}
