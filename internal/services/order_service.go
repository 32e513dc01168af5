package services

import (
	"context"
	"errors"
	"log"

	"storefront/internal/caching"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single checkout line
const MaxLineQuantity = 10000

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// OrderServiceInterface defines the interface for order service operations
type OrderServiceInterface interface {
	// PlaceOrder validates stock, snapshots prices, decrements inventory and
	// records the order with its items in one transaction. Nothing persists on failure.
	PlaceOrder(ctx context.Context, userID uuid.UUID, lines []models.OrderLineRequest) (*models.Order, error)
	GetOrder(ctx context.Context, viewer models.Viewer, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, viewer models.Viewer, limit, offset int) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	ListOrderItems(ctx context.Context, limit, offset int) ([]*models.OrderItem, error)
}

type orderService struct {
	db           repositories.DB
	cacheService caching.CacheService
}

// NewOrderService creates a new order service instance. cacheService may be nil.
func NewOrderService(db repositories.DB, cacheService caching.CacheService) OrderServiceInterface {
	return &orderService{
		db:           db,
		cacheService: cacheService,
	}
}

func validateOrderLines(userID uuid.UUID, lines []models.OrderLineRequest) error {
	if userID == uuid.Nil {
		return &ValidationError{Field: "user_id", Message: "is required"}
	}
	if len(lines) == 0 {
		return &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return &ValidationError{Field: "items.product_id", Message: "is required"}
		}
		if line.Quantity < 1 {
			return &ValidationError{Field: "items.quantity", Message: "must be at least 1"}
		}
		if line.Quantity > MaxLineQuantity {
			return &ValidationError{Field: "items.quantity", Message: "must not exceed 10000"}
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committing on nil and rolling back otherwise
func (s *orderService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "begin transaction", Err: err}
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			log.Printf("WARN: rollback failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	return nil
}

func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []models.OrderLineRequest) (*models.Order, error) {
	if err := validateOrderLines(userID, lines); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Status: models.OrderStatusPending,
	}

	err := s.inTx(ctx, func(tx pgx.Tx) error {
		productRepo := repositories.NewProductRepo(tx)
		orderRepo := repositories.NewOrderRepo(tx)
		orderItemRepo := repositories.NewOrderItemRepo(tx)

		total := decimal.Zero
		items := make([]*models.OrderItem, 0, len(lines))

		// Lines are locked one at a time in request order, so a repeated
		// product sees the decrement of its earlier line.
		for i, line := range lines {
			product, err := productRepo.GetForUpdate(ctx, line.ProductID)
			if errors.Is(err, repositories.ErrNotFound) {
				return &StockError{Line: i, ProductID: line.ProductID, Requested: line.Quantity, Err: ErrProductNotFound}
			}
			if err != nil {
				return &PersistenceError{Op: "lock product", Err: err}
			}

			if product.Quantity < line.Quantity {
				return &StockError{
					Line:        i,
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   product.Quantity,
					Err:         ErrInsufficientStock,
				}
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))

			if err := productRepo.DecrementStock(ctx, product.ID, line.Quantity); err != nil {
				if errors.Is(err, repositories.ErrStockConflict) {
					return &StockError{Line: i, ProductID: product.ID, ProductName: product.Name, Requested: line.Quantity, Available: product.Quantity, Err: ErrInsufficientStock}
				}
				return &PersistenceError{Op: "decrement stock", Err: err}
			}
			product.Quantity -= line.Quantity

			items = append(items, &models.OrderItem{
				ID:        uuid.New(),
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
				Product:   product,
			})
		}

		order.TotalAmount = total
		if err := orderRepo.Create(ctx, order); err != nil {
			return &PersistenceError{Op: "insert order", Err: err}
		}
		for _, item := range items {
			if err := orderItemRepo.Create(ctx, item); err != nil {
				return &PersistenceError{Op: "insert order item", Err: err}
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		var persistErr *PersistenceError
		if errors.As(err, &persistErr) {
			log.Printf("ERROR: placing order %s for user %s failed: %v", order.ID, userID, err)
		} else {
			log.Printf("order for user %s rejected: %v", userID, err)
		}
		return nil, err
	}

	s.evictProducts(ctx, order.Items)
	return order, nil
}

// evictProducts drops cached catalog entries whose quantity just changed
func (s *orderService) evictProducts(ctx context.Context, items []*models.OrderItem) {
	if s.cacheService == nil {
		return
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		if err := s.cacheService.DeleteProduct(ctx, item.ProductID); err != nil {
			log.Printf("WARN: failed to invalidate cache for product %s: %v", item.ProductID, err)
		}
	}
}

func (s *orderService) GetOrder(ctx context.Context, viewer models.Viewer, orderID uuid.UUID) (*models.Order, error) {
	order, err := repositories.NewOrderRepo(s.db).GetByID(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get order", Err: err}
	}

	if !viewer.IsAdmin() && order.UserID != viewer.UserID {
		return nil, ErrForbidden
	}

	if err := s.attachItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, viewer models.Viewer, limit, offset int) ([]*models.Order, error) {
	limit, offset = normalizePage(limit, offset)

	orderRepo := repositories.NewOrderRepo(s.db)
	var (
		orders []*models.Order
		err    error
	)
	if viewer.IsAdmin() {
		orders, err = orderRepo.List(ctx, limit, offset)
	} else {
		orders, err = orderRepo.ListByUserID(ctx, viewer.UserID, limit, offset)
	}
	if err != nil {
		return nil, &PersistenceError{Op: "list orders", Err: err}
	}

	if err := s.attachItems(ctx, orders...); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return orders, nil
}

func (s *orderService) attachItems(ctx context.Context, orders ...*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}

	items, err := repositories.NewOrderItemRepo(s.db).ListByOrderIDs(ctx, ids)
	if err != nil {
		return &PersistenceError{Op: "list order items", Err: err}
	}
	for _, o := range orders {
		o.Items = items[o.ID]
		if o.Items == nil {
			o.Items = []*models.OrderItem{}
		}
	}
	return nil
}

// UpdateOrderStatus writes any valid status over the current one
func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	if !models.IsValidOrderStatus(status) {
		return nil, &ValidationError{Field: "status", Message: "must be one of pending, processing, shipped, completed, cancelled"}
	}

	order, err := repositories.NewOrderRepo(s.db).UpdateStatus(ctx, orderID, status)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "update order status", Err: err}
	}

	if err := s.attachItems(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes the order and its items. Stock is not restored.
func (s *orderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	err := repositories.NewOrderRepo(s.db).Delete(ctx, orderID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return &PersistenceError{Op: "delete order", Err: err}
	}
	return nil
}

func (s *orderService) ListOrderItems(ctx context.Context, limit, offset int) ([]*models.OrderItem, error) {
	limit, offset = normalizePage(limit, offset)
	items, err := repositories.NewOrderItemRepo(s.db).List(ctx, limit, offset)
	if err != nil {
		return nil, &PersistenceError{Op: "list order items", Err: err}
	}
	if items == nil {
		items = []*models.OrderItem{}
	}
	return items, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
