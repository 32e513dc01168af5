package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProductServer(svc *MockProductService) *echo.Echo {
	h := NewProductHandlers(svc)
	e := echo.New()
	e.GET("/products", h.ListProducts)
	e.GET("/products/:id", h.GetProduct)
	e.POST("/products", h.CreateProduct)
	e.PUT("/products/:id", h.UpdateProduct)
	e.DELETE("/products/:id", h.DeleteProduct)
	e.POST("/products/:id/image", h.UploadProductImage)
	return e
}

func TestCreateProduct(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Widget" && p.Price.Equal(decimal.RequireFromString("12.50")) && p.Quantity == 4
	})).Return(nil).Once()

	rec := doJSON(newProductServer(svc), http.MethodPost, "/products", `{"name":"Widget","price":"12.50","quantity":4}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product created successfully")
	svc.AssertExpectations(t)
}

func TestCreateProductValidation(t *testing.T) {
	svc := new(MockProductService)

	rec := doJSON(newProductServer(svc), http.MethodPost, "/products", `{"name":"  ","price":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(newProductServer(svc), http.MethodPost, "/products", `{"name":"Widget","category_id":"bad"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "category_id")

	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateProductUnknownCategory(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Create", mock.Anything, mock.Anything).Return(services.ErrCategoryNotFound).Once()

	body := `{"name":"Widget","price":"1","category_id":"` + uuid.NewString() + `"}`
	rec := doJSON(newProductServer(svc), http.MethodPost, "/products", body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductReadsAndWrites(t *testing.T) {
	productID := uuid.New()
	product := &models.Product{ID: productID, Name: "Widget", Price: decimal.RequireFromString("10"), Quantity: 3}

	tests := []struct {
		name       string
		setup      func(svc *MockProductService)
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name: "get found",
			setup: func(svc *MockProductService) {
				svc.On("GetByID", mock.Anything, productID).Return(product, nil).Once()
			},
			method: http.MethodGet, path: "/products/" + productID.String(), wantStatus: http.StatusOK,
		},
		{
			name: "get missing",
			setup: func(svc *MockProductService) {
				svc.On("GetByID", mock.Anything, productID).Return(nil, services.ErrProductNotFound).Once()
			},
			method: http.MethodGet, path: "/products/" + productID.String(), wantStatus: http.StatusNotFound,
		},
		{
			name: "update price",
			setup: func(svc *MockProductService) {
				svc.On("Update", mock.Anything, productID, mock.MatchedBy(func(u *models.ProductUpdate) bool {
					return u.Price != nil && u.Price.Equal(decimal.RequireFromString("99.99")) && u.Name == nil
				})).Return(product, nil).Once()
			},
			method: http.MethodPut, path: "/products/" + productID.String(), body: `{"price":"99.99"}`, wantStatus: http.StatusOK,
		},
		{
			name: "delete in use",
			setup: func(svc *MockProductService) {
				svc.On("Delete", mock.Anything, productID).Return(services.ErrProductInUse).Once()
			},
			method: http.MethodDelete, path: "/products/" + productID.String(), wantStatus: http.StatusConflict,
		},
		{
			name: "list with category",
			setup: func(svc *MockProductService) {
				svc.On("List", mock.Anything, mock.MatchedBy(func(f *models.ProductFilter) bool {
					return f.CategoryID != nil && *f.CategoryID == productID && f.Query == "wid" && f.Limit == 5
				})).Return([]*models.Product{product}, nil).Once()
			},
			method: http.MethodGet, path: "/products?category_id=" + productID.String() + "&q=wid&limit=5", wantStatus: http.StatusOK,
		},
		{
			name: "list failure",
			setup: func(svc *MockProductService) {
				svc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			method: http.MethodGet, path: "/products", wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			tt.setup(svc)

			rec := doJSON(newProductServer(svc), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func multipartImage(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadProductImage(t *testing.T) {
	productID := uuid.New()
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	svc := new(MockProductService)
	svc.On("UploadProductImage", mock.Anything, productID, "photo.png", "image/png", mock.Anything, int64(len(png))).
		Return(&models.Product{ID: productID, ImageURL: "http://minio/presigned"}, nil).Once()

	body, contentType := multipartImage(t, "photo.png", png)
	req := httptest.NewRequest(http.MethodPost, "/products/"+productID.String()+"/image", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	newProductServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http://minio/presigned")
	svc.AssertExpectations(t)
}

func TestUploadProductImageRejectsNonImage(t *testing.T) {
	svc := new(MockProductService)

	body, contentType := multipartImage(t, "notes.png", []byte("just some plain text pretending"))
	req := httptest.NewRequest(http.MethodPost, "/products/"+uuid.NewString()+"/image", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	newProductServer(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "UploadProductImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadProductImageMissingFile(t *testing.T) {
	rec := doJSON(newProductServer(new(MockProductService)), http.MethodPost, "/products/"+uuid.NewString()+"/image", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func newCategoryServer(svc *MockCategoryService) *echo.Echo {
	h := NewCategoryHandlers(svc)
	e := echo.New()
	e.GET("/categories", h.ListCategories)
	e.GET("/categories/:id", h.GetCategory)
	e.POST("/categories", h.CreateCategory)
	e.PUT("/categories/:id", h.UpdateCategory)
	e.DELETE("/categories/:id", h.DeleteCategory)
	return e
}

func TestCategoryHandlers(t *testing.T) {
	categoryID := uuid.New()
	category := &models.Category{ID: categoryID, Name: "Tools"}

	tests := []struct {
		name       string
		setup      func(svc *MockCategoryService)
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name: "create",
			setup: func(svc *MockCategoryService) {
				svc.On("Create", mock.Anything, "Tools").Return(category, nil).Once()
			},
			method: http.MethodPost, path: "/categories", body: `{"name":"Tools"}`, wantStatus: http.StatusCreated,
		},
		{
			name: "create duplicate",
			setup: func(svc *MockCategoryService) {
				svc.On("Create", mock.Anything, "Tools").Return(nil, services.ErrCategoryExists).Once()
			},
			method: http.MethodPost, path: "/categories", body: `{"name":"Tools"}`, wantStatus: http.StatusConflict,
		},
		{
			name: "create blank",
			setup: func(svc *MockCategoryService) {
				svc.On("Create", mock.Anything, "").Return(nil, &services.ValidationError{Field: "name", Message: "is required"}).Once()
			},
			method: http.MethodPost, path: "/categories", body: `{"name":""}`, wantStatus: http.StatusBadRequest,
		},
		{
			name: "get missing",
			setup: func(svc *MockCategoryService) {
				svc.On("GetByID", mock.Anything, categoryID).Return(nil, services.ErrCategoryNotFound).Once()
			},
			method: http.MethodGet, path: "/categories/" + categoryID.String(), wantStatus: http.StatusNotFound,
		},
		{
			name: "rename",
			setup: func(svc *MockCategoryService) {
				svc.On("Rename", mock.Anything, categoryID, "Hardware").Return(category, nil).Once()
			},
			method: http.MethodPut, path: "/categories/" + categoryID.String(), body: `{"name":"Hardware"}`, wantStatus: http.StatusOK,
		},
		{
			name: "delete",
			setup: func(svc *MockCategoryService) {
				svc.On("Delete", mock.Anything, categoryID).Return(nil).Once()
			},
			method: http.MethodDelete, path: "/categories/" + categoryID.String(), wantStatus: http.StatusOK,
		},
		{
			name: "list",
			setup: func(svc *MockCategoryService) {
				svc.On("List", mock.Anything, 0, 0).Return([]*models.Category{category}, nil).Once()
			},
			method: http.MethodGet, path: "/categories", wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCategoryService)
			tt.setup(svc)

			rec := doJSON(newCategoryServer(svc), tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCatalogRejectsMalformedIDs(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "get product", method: http.MethodGet, path: "/products/xyz"},
		{name: "update product", method: http.MethodPut, path: "/products/xyz", body: `{"name":"Lamp"}`},
		{name: "delete product", method: http.MethodDelete, path: "/products/xyz"},
		{name: "upload image", method: http.MethodPost, path: "/products/xyz/image"},
		{name: "get category", method: http.MethodGet, path: "/categories/12345"},
		{name: "rename category", method: http.MethodPut, path: "/categories/12345", body: `{"name":"Tools"}`},
		{name: "delete category", method: http.MethodDelete, path: "/categories/12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := new(MockProductService)
			categories := new(MockCategoryService)
			e := newProductServer(products)
			categoryHandlers := NewCategoryHandlers(categories)
			e.GET("/categories/:id", categoryHandlers.GetCategory)
			e.PUT("/categories/:id", categoryHandlers.UpdateCategory)
			e.DELETE("/categories/:id", categoryHandlers.DeleteCategory)

			rec := doJSON(e, tt.method, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")
			assert.Empty(t, products.Calls)
			assert.Empty(t, categories.Calls)
		})
	}
}
