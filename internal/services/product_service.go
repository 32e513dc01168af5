package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/caching"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
)

const (
	productCacheTTL = 15 * time.Minute
	imageURLExpiry  = time.Hour
)

type ProductService interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, update *models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error)
	ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error)
	UploadProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (*models.Product, error)
}

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	minioService MinioService
	cacheService caching.CacheService
	bucket       string
}

// NewProductService wires the catalog service. minioService and cacheService may be nil.
func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, minioService MinioService, cacheService caching.CacheService, bucket string) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		minioService: minioService,
		cacheService: cacheService,
		bucket:       bucket,
	}
}

func validateProduct(product *models.Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if product.Price.IsNegative() {
		return &ValidationError{Field: "price", Message: "cannot be negative"}
	}
	if product.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "cannot be negative"}
	}
	return nil
}

func (s *productService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.categoryRepo.GetByID(ctx, *categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}

func (s *productService) Create(ctx context.Context, product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if err := validateProduct(product); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, product.CategoryID); err != nil {
		return err
	}

	product.ID = uuid.New()
	err := s.productRepo.Create(ctx, product)
	if errors.Is(err, repositories.ErrInUse) {
		return ErrCategoryNotFound
	}
	return err
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cacheService != nil {
		if cachedProduct, err := s.cacheService.GetProduct(ctx, id); cachedProduct != nil {
			return cachedProduct, nil
		} else if err != nil {
			// cache errors never fail the read
			log.Printf("WARN: cache error for product %s: %v", id, err)
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	s.attachImageURL(ctx, product)

	if s.cacheService != nil {
		if cacheErr := s.cacheService.SetProduct(ctx, product, productCacheTTL); cacheErr != nil {
			log.Printf("WARN: failed to cache product %s: %v", id, cacheErr)
		}
	}
	return product, nil
}

// Update applies an admin edit. Existing order items keep their snapshot prices.
// The stored row is read only to validate the merged result; the write itself
// touches just the edited columns so a concurrent checkout's decrement survives.
func (s *productService) Update(ctx context.Context, id uuid.UUID, update *models.ProductUpdate) (*models.Product, error) {
	current, err := s.productRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		update.Name = &trimmed
	}
	merged := *current
	update.Apply(&merged)
	if err := validateProduct(&merged); err != nil {
		return nil, err
	}
	if update.CategoryID != nil {
		if err := s.checkCategory(ctx, update.CategoryID); err != nil {
			return nil, err
		}
	}

	product, err := s.productRepo.Update(ctx, id, update)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	s.attachImageURL(ctx, product)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	err = s.productRepo.Delete(ctx, id)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, repositories.ErrInUse):
		return ErrProductInUse
	case err != nil:
		return err
	}
	s.invalidate(ctx, id)

	if product.ImageKey != nil && s.minioService != nil {
		if err := s.minioService.DeleteImage(ctx, s.bucket, *product.ImageKey); err != nil {
			log.Printf("WARN: failed to delete image %s for product %s: %v", *product.ImageKey, id, err)
		}
	}
	return nil
}

func (s *productService) List(ctx context.Context, filter *models.ProductFilter) ([]*models.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		s.attachImageURL(ctx, p)
	}
	if products == nil {
		products = []*models.Product{}
	}
	return products, nil
}

func (s *productService) ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error) {
	return s.productRepo.ListLowStock(ctx, threshold, limit)
}

func (s *productService) UploadProductImage(ctx context.Context, productID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (*models.Product, error) {
	if s.minioService == nil {
		return nil, errors.New("image storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return nil, &ValidationError{Field: "image", Message: "must be a jpg, png, gif or webp file"}
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", productID, uuid.NewString(), ext)
	if err := s.minioService.UploadImage(ctx, s.bucket, key, reader, size, contentType); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	if err := s.productRepo.SetImageKey(ctx, productID, &key); err != nil {
		if delErr := s.minioService.DeleteImage(ctx, s.bucket, key); delErr != nil {
			log.Printf("WARN: failed to remove orphaned image %s: %v", key, delErr)
		}
		return nil, err
	}

	if product.ImageKey != nil {
		if err := s.minioService.DeleteImage(ctx, s.bucket, *product.ImageKey); err != nil {
			log.Printf("WARN: failed to delete previous image %s: %v", *product.ImageKey, err)
		}
	}
	product.ImageKey = &key
	s.invalidate(ctx, productID)
	s.attachImageURL(ctx, product)
	return product, nil
}

func (s *productService) attachImageURL(ctx context.Context, product *models.Product) {
	if product.ImageKey == nil || s.minioService == nil {
		return
	}
	url, err := s.minioService.GetPresignedURL(ctx, s.bucket, *product.ImageKey, imageURLExpiry)
	if err != nil {
		log.Printf("WARN: failed to presign image for product %s: %v", product.ID, err)
		return
	}
	product.ImageURL = url
}

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if cacheErr := s.cacheService.DeleteProduct(ctx, id); cacheErr != nil {
		log.Printf("WARN: failed to invalidate cache for product %s: %v", id, cacheErr)
	}
}
