package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "storefront/docs"
	"storefront/internal/caching"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/jobs"
	"storefront/internal/jobs/background"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/pkg/database"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const version = "1.0.0"

// @title						Storefront API
// @version					1.0
// @description				Catalog, checkout and order administration.
// @BasePath					/v1
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.URL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	pool, err := database.NewPool(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Redis is optional; the cache and the login limiter both fail open
	var cacheSvc caching.CacheService
	if cfg.Redis.Enabled {
		cacheSvc = caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	var minioSvc services.MinioService
	if cfg.Minio.Enabled {
		svc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err != nil {
			log.Printf("WARN: MinIO unavailable, image uploads disabled: %v", err)
		} else {
			if err := svc.EnsureBucketExists(ctx, cfg.Minio.Bucket); err != nil {
				log.Printf("WARN: could not ensure bucket %s: %v", cfg.Minio.Bucket, err)
			}
			minioSvc = svc
		}
	}

	var jwks *keyfunc.JWKS
	if cfg.Auth.JWKSURL != "" {
		jwks, err = keyfunc.Get(cfg.Auth.JWKSURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.Printf("WARN: JWKS refresh failed: %v", err)
			},
		})
		if err != nil {
			log.Fatalf("Failed to load JWKS from %s: %v", cfg.Auth.JWKSURL, err)
		}
		defer jwks.EndBackground()
	}

	// Create repositories
	userRepo := repositories.NewUserRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	categoryRepo := repositories.NewCategoryRepo(pool)
	productRepo := repositories.NewProductRepo(pool)

	// Create services
	authSvc := services.NewAuthService(userRepo, roleRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTLSeconds)
	categorySvc := services.NewCategoryService(categoryRepo)
	productSvc := services.NewProductService(productRepo, categoryRepo, minioSvc, cacheSvc, cfg.Minio.Bucket)
	orderSvc := services.NewOrderService(pool, cacheSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc)
	productHandlers := handlers.NewProductHandlers(productSvc)
	orderHandlers := handlers.NewOrderHandlers(orderSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	versions := middleware.NewVersionMiddleware()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(versions.APIVersionResolver())

	e.GET("/health", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	authenticated := middleware.Authenticate(middleware.NewJWTConfig(cfg.Auth.JWTSecret, jwks))
	adminOnly := append(append([]echo.MiddlewareFunc{}, authenticated...), middleware.RequireAdmin(), middleware.AuditAdminActions())

	v1 := versions.VersionRoute(e, "v1")

	// Public routes
	v1.POST("/auth/register", authHandlers.Register)
	v1.POST("/auth/login", authHandlers.Login,
		middleware.RateLimit(cacheSvc, "login", cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow))
	v1.GET("/products", productHandlers.ListProducts)
	v1.GET("/products/:id", productHandlers.GetProduct)
	v1.GET("/categories", categoryHandlers.ListCategories)
	v1.GET("/categories/:id", categoryHandlers.GetCategory)

	// Authenticated routes
	v1.GET("/me", authHandlers.Me, authenticated...)
	v1.POST("/orders", orderHandlers.PlaceOrder, authenticated...)
	v1.GET("/orders", orderHandlers.ListOrders, authenticated...)
	v1.GET("/orders/:id", orderHandlers.GetOrder, authenticated...)

	// Admin routes
	v1.POST("/products", productHandlers.CreateProduct, adminOnly...)
	v1.PUT("/products/:id", productHandlers.UpdateProduct, adminOnly...)
	v1.DELETE("/products/:id", productHandlers.DeleteProduct, adminOnly...)
	v1.POST("/products/:id/image", productHandlers.UploadProductImage, adminOnly...)
	v1.POST("/categories", categoryHandlers.CreateCategory, adminOnly...)
	v1.PUT("/categories/:id", categoryHandlers.UpdateCategory, adminOnly...)
	v1.DELETE("/categories/:id", categoryHandlers.DeleteCategory, adminOnly...)
	v1.GET("/admin/orders", orderHandlers.ListOrders, adminOnly...)
	v1.PUT("/admin/orders/:id", orderHandlers.UpdateOrderStatus, adminOnly...)
	v1.DELETE("/admin/orders/:id", orderHandlers.DeleteOrder, adminOnly...)
	v1.GET("/order-items", orderHandlers.ListOrderItems, adminOnly...)

	// Background jobs
	alertSvc := jobs.NewInventoryAlertService(productSvc, cfg.Jobs.LowStockThreshold)
	scheduler, err := background.NewJobScheduler(alertSvc, cfg.Jobs.LowStockInterval)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()

	go func() {
		log.Printf("Storefront server v%s starting on port %d", version, cfg.Server.Port)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-quit.Done()

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: HTTP shutdown: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("WARN: scheduler shutdown: %v", err)
	}
}
