package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type OrderItemRepository interface {
	Create(ctx context.Context, item *models.OrderItem) error
	// ListByOrderIDs returns the items of the given orders with their products, keyed by order id
	ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]*models.OrderItem, error)
	List(ctx context.Context, limit, offset int) ([]*models.OrderItem, error)
}

const orderItemWithProductColumns = `
	oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.created_at, oi.updated_at,
	p.id, p.category_id, p.name, p.description, p.price, p.quantity, p.image_key, p.created_at, p.updated_at`

type orderItemRepo struct {
	db DB
}

func NewOrderItemRepo(db DB) OrderItemRepository {
	return &orderItemRepo{db: db}
}

func scanOrderItemWithProduct(row scanner) (*models.OrderItem, error) {
	item := &models.OrderItem{Product: &models.Product{}}
	p := item.Product
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.CreatedAt, &item.UpdatedAt,
		&p.ID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.ImageKey, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *orderItemRepo) Create(ctx context.Context, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice).
		Scan(&item.CreatedAt, &item.UpdatedAt)
	return translateError(err)
}

func (r *orderItemRepo) ListByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]*models.OrderItem, error) {
	items := make(map[uuid.UUID][]*models.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	query := `
		SELECT ` + orderItemWithProductColumns + `
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.line_no ASC
	`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItemWithProduct(rows)
		if err != nil {
			return nil, err
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}

func (r *orderItemRepo) List(ctx context.Context, limit, offset int) ([]*models.OrderItem, error) {
	query := `
		SELECT ` + orderItemWithProductColumns + `
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		ORDER BY oi.created_at DESC, oi.line_no DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item, err := scanOrderItemWithProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
