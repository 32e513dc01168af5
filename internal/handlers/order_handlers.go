package handlers

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/common"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// OrderHandlers handles HTTP requests for orders
type OrderHandlers struct {
	orderService services.OrderServiceInterface
}

// NewOrderHandlers creates a new order handlers instance
func NewOrderHandlers(orderService services.OrderServiceInterface) *OrderHandlers {
	return &OrderHandlers{
		orderService: orderService,
	}
}

// PlaceOrderRequest is the checkout payload
type PlaceOrderRequest struct {
	Items []struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

// UpdateOrderStatusRequest is the admin status change payload
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

func messageJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, common.MessageResponse{Message: message})
}

// PlaceOrder handles POST /orders
//
//	@Summary		Place an order
//	@Description	Locks each product row, checks stock, snapshots prices and creates the order atomically.
//	@Tags			orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PlaceOrderRequest	true	"Cart lines"
//	@Success		201		{object}	map[string]interface{}
//	@Failure		400		{object}	common.MessageResponse
//	@Failure		401		{object}	map[string]string
//	@Failure		500		{object}	common.MessageResponse
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandlers) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return messageJSON(c, http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Items) == 0 {
		return messageJSON(c, http.StatusBadRequest, "Order must contain at least one item")
	}

	lines := make([]models.OrderLineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := common.ValidateUUID(item.ProductID, "product_id")
		if err != nil {
			return messageJSON(c, http.StatusBadRequest, err.Error())
		}
		lines = append(lines, models.OrderLineRequest{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := h.orderService.PlaceOrder(ctx, userID, lines)
	if err != nil {
		var validationErr *services.ValidationError
		var stockErr *services.StockError
		switch {
		case errors.As(err, &validationErr):
			return messageJSON(c, http.StatusBadRequest, validationErr.Error())
		case errors.As(err, &stockErr):
			return messageJSON(c, http.StatusBadRequest, stockErr.Error())
		default:
			log.Printf("ERROR: checkout for user %s failed: %v", userID, err)
			return messageJSON(c, http.StatusInternalServerError, "Failed to place order")
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Order placed successfully",
		"order":   order,
	})
}

// ListOrders handles GET /orders and GET /admin/orders
//
//	@Summary	List orders
//	@Tags		orders
//	@Produce	json
//	@Param		limit	query		int	false	"Page size"
//	@Param		offset	query		int	false	"Page offset"
//	@Success	200		{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/orders [get]
func (h *OrderHandlers) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	viewer, ok := common.GetViewerFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	limit, offset := common.ParsePagination(c)
	orders, err := h.orderService.ListOrders(ctx, viewer, limit, offset)
	if err != nil {
		log.Printf("ERROR: listing orders for %s: %v", viewer.UserID, err)
		return common.SendServerError(c, "Failed to retrieve orders")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"limit":  limit,
		"offset": offset,
	})
}

// GetOrder handles GET /orders/:id
//
//	@Summary	Get an order
//	@Tags		orders
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	models.Order
//	@Failure	403	{object}	common.ErrorResponse
//	@Failure	404	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/orders/{id} [get]
func (h *OrderHandlers) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	viewer, ok := common.GetViewerFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	order, err := h.orderService.GetOrder(ctx, viewer, orderID)
	if err != nil {
		return h.orderError(c, orderID, err)
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PUT /admin/orders/:id
//
//	@Summary	Update order status
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Order ID"
//	@Param		request	body		UpdateOrderStatusRequest	true	"New status"
//	@Success	200		{object}	map[string]interface{}
//	@Failure	400		{object}	common.ErrorResponse
//	@Failure	404		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/admin/orders/{id} [put]
func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	order, err := h.orderService.UpdateOrderStatus(ctx, orderID, req.Status)
	if err != nil {
		return h.orderError(c, orderID, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Order status updated successfully",
		"order":   order,
	})
}

// DeleteOrder handles DELETE /admin/orders/:id
//
//	@Summary	Delete an order
//	@Tags		admin
//	@Produce	json
//	@Param		id	path		string	true	"Order ID"
//	@Success	200	{object}	common.MessageResponse
//	@Failure	404	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/admin/orders/{id} [delete]
func (h *OrderHandlers) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := common.ValidateUUID(c.Param("id"), "order_id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.orderService.DeleteOrder(ctx, orderID); err != nil {
		return h.orderError(c, orderID, err)
	}

	return c.JSON(http.StatusOK, common.MessageResponse{Message: "Order deleted successfully"})
}

// ListOrderItems handles GET /order-items
//
//	@Summary	List order items
//	@Tags		admin
//	@Produce	json
//	@Success	200	{object}	map[string]interface{}
//	@Security	BearerAuth
//	@Router		/order-items [get]
func (h *OrderHandlers) ListOrderItems(c echo.Context) error {
	ctx := c.Request().Context()

	limit, offset := common.ParsePagination(c)
	items, err := h.orderService.ListOrderItems(ctx, limit, offset)
	if err != nil {
		log.Printf("ERROR: listing order items: %v", err)
		return common.SendServerError(c, "Failed to retrieve order items")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_items": items,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *OrderHandlers) orderError(c echo.Context, orderID uuid.UUID, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return common.SendValidationError(c, validationErr.Field, validationErr.Message)
	case errors.Is(err, services.ErrOrderNotFound):
		return common.SendNotFoundError(c, "Order")
	case errors.Is(err, services.ErrForbidden):
		return common.SendForbiddenError(c)
	default:
		log.Printf("ERROR: order %s: %v", orderID, err)
		return common.SendServerError(c, "Failed to process order")
	}
}
