package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/crypto/bcrypt"
)

// Seeded by the initial migration
var (
	AdminRoleID    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	CustomerRoleID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	DSN     string
	Cleanup func() error
}

// SetupTestDB connects to TEST_DATABASE_URL when set, otherwise starts a
// throwaway postgres container. Migrations are applied either way.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	dsn := os.Getenv("TEST_DATABASE_URL")
	terminate := func() error { return nil }
	if dsn == "" {
		container, err := postgres.Run(ctx, "postgres:16-alpine",
			postgres.WithDatabase("storefront_test"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			postgres.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("Failed to start postgres container: %v", err)
		}
		terminate = func() error { return testcontainers.TerminateContainer(container) }

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			_ = terminate()
			t.Fatalf("Failed to read container connection string: %v", err)
		}
	}

	if err := database.Migrate(dsn); err != nil {
		_ = terminate()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	pool, err := database.NewPool(ctx, dsn, database.PoolOptions{MaxConns: 20, MaxConnLifetime: time.Minute})
	if err != nil {
		_ = terminate()
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		DSN:  dsn,
		Cleanup: func() error {
			pool.Close()
			return terminate()
		},
	}
}

// Truncate empties every table except the seeded roles
func Truncate(t *testing.T, db *TestDB) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(), `TRUNCATE order_items, orders, products, categories, users CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SetupTestUser creates a user with the given role and password "password123"
func SetupTestUser(t *testing.T, db *TestDB, roleID uuid.UUID) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		RoleID:       roleID,
		Name:         "Test User",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: string(hash),
	}
	query := `
		INSERT INTO users (id, role_id, name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err = db.Pool.Exec(context.Background(), query, user.ID, user.RoleID, user.Name, user.Email, user.PasswordHash)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// SetupTestCategory creates a test category for testing
func SetupTestCategory(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	categoryID := uuid.New()
	query := `
		INSERT INTO categories (id, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, categoryID, "Category "+categoryID.String()[:8])
	if err != nil {
		t.Fatalf("Failed to create test category: %v", err)
	}
	return categoryID
}

// SetupTestProduct creates a product with the given price and stock
func SetupTestProduct(t *testing.T, db *TestDB, name, price string, quantity int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
	query := `
		INSERT INTO products (id, name, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, product.ID, product.Name, product.Price, product.Quantity)
	if err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

// ProductQuantity reads the current stock of a product
func ProductQuantity(t *testing.T, db *TestDB, productID uuid.UUID) int {
	t.Helper()
	var quantity int
	if err := db.Pool.QueryRow(context.Background(), `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&quantity); err != nil {
		t.Fatalf("Failed to read product quantity: %v", err)
	}
	return quantity
}

// CountRows returns the number of rows in table
func CountRows(t *testing.T, db *TestDB, table string) int {
	t.Helper()
	var count int
	if err := db.Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return count
}
