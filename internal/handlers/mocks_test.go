package handlers

import (
	"context"
	"io"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []models.OrderLineRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, lines)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, viewer models.Viewer, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, viewer, orderID)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, viewer models.Viewer, limit, offset int) ([]*models.Order, error) {
	args := m.Called(ctx, viewer, limit, offset)
	orders, _ := args.Get(0).([]*models.Order)
	return orders, args.Error(1)
}

func (m *MockOrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	args := m.Called(ctx, orderID, status)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *MockOrderService) ListOrderItems(ctx context.Context, limit, offset int) ([]*models.OrderItem, error) {
	args := m.Called(ctx, limit, offset)
	items, _ := args.Get(0).([]*models.OrderItem)
	return items, args.Error(1)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, update *models.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, id, update)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	args := m.Called(ctx, filter)
	products, _ := args.Get(0).([]*models.Product)
	return products, args.Error(1)
}

func (m *MockProductService) ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error) {
	args := m.Called(ctx, threshold, limit)
	products, _ := args.Get(0).([]*models.Product)
	return products, args.Error(1)
}

func (m *MockProductService) UploadProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (*models.Product, error) {
	args := m.Called(ctx, productID, filename, contentType, reader, size)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *MockCategoryService) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, id)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *MockCategoryService) Rename(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	args := m.Called(ctx, id, name)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *MockCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryService) List(ctx context.Context, limit, offset int) ([]*models.Category, error) {
	args := m.Called(ctx, limit, offset)
	categories, _ := args.Get(0).([]*models.Category)
	return categories, args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, *models.TokenResponse, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	token, _ := args.Get(1).(*models.TokenResponse)
	return user, token, args.Error(2)
}

func (m *MockAuthService) GenerateToken(user *models.User) (*models.TokenResponse, error) {
	args := m.Called(user)
	token, _ := args.Get(0).(*models.TokenResponse)
	return token, args.Error(1)
}

func (m *MockAuthService) ValidateToken(token string) (*models.TokenClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*models.TokenClaims)
	return claims, args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, productID)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return m.Called(ctx, product, ttl).Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	return m.Called(ctx, productID).Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fakePinger struct {
	err error
}

func (p fakePinger) Ping(context.Context) error {
	return p.err
}
