package repositories

import (
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
)

var fixedTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func stringPtr(s string) *string {
	return &s
}

var productColumnNames = []string{"id", "category_id", "name", "description", "price", "quantity", "image_key", "created_at", "updated_at"}

func productRow(rows *pgxmock.Rows, p *models.Product) *pgxmock.Rows {
	return rows.AddRow(p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.Quantity, p.ImageKey, fixedTime, fixedTime)
}

func newProduct(name, price string, quantity int) *models.Product {
	return &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
}
