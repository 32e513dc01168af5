package repositories

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/google/uuid"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// GetForUpdate reads the product row and holds an exclusive row lock until
	// the surrounding transaction ends. Only meaningful on a transaction-bound repository.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	// Update writes only the non-nil fields of update, so columns the edit
	// leaves alone (quantity included) keep whatever committed value they hold.
	Update(ctx context.Context, id uuid.UUID, update *models.ProductUpdate) (*models.Product, error)
	SetImageKey(ctx context.Context, id uuid.UUID, key *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error)
}

const productColumns = `id, category_id, name, description, price, quantity, image_key, created_at, updated_at`

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

func scanProduct(row scanner) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(&product.ID, &product.CategoryID, &product.Name, &product.Description, &product.Price, &product.Quantity, &product.ImageKey, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, description, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, product.ID, product.CategoryID, product.Name, product.Description, product.Price, product.Quantity).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	return translateError(err)
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return product, nil
}

func (r *productRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
		FOR UPDATE
	`
	product, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}
	return product, nil
}

func (r *productRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `
		UPDATE products
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE id = $2 AND quantity >= $1
	`
	tag, err := r.db.Exec(ctx, query, quantity, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStockConflict
	}
	return nil
}

func (r *productRepo) Update(ctx context.Context, id uuid.UUID, update *models.ProductUpdate) (*models.Product, error) {
	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.CategoryID != nil {
		set("category_id", *update.CategoryID)
	}
	if update.Name != nil {
		set("name", *update.Name)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.Price != nil {
		set("price", *update.Price)
	}
	if update.Quantity != nil {
		set("quantity", *update.Quantity)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE products
		SET %s
		WHERE id = $%d
		RETURNING `+productColumns, strings.Join(sets, ", "), len(args))
	product, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return product, nil
}

func (r *productRepo) SetImageKey(ctx context.Context, id uuid.UUID, key *string) error {
	query := `UPDATE products SET image_key = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, key, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	if filter == nil {
		filter = &models.ProductFilter{}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE 1 = 1
	`
	args := []any{}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		query += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (r *productRepo) ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE quantity <= $1
		ORDER BY quantity ASC, name ASC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
