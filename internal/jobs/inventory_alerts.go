package jobs

import (
	"context"
	"log"

	"storefront/internal/models"

	"github.com/google/uuid"
)

const (
	defaultLowStockThreshold = 10
	lowStockReportLimit      = 500
)

// LowStockLister is satisfied by services.ProductService
type LowStockLister interface {
	ListLowStock(ctx context.Context, threshold, limit int) ([]*models.Product, error)
}

type InventoryAlert struct {
	ProductID    uuid.UUID
	ProductName  string
	CurrentStock int
	Threshold    int
}

// InventoryAlertService reports catalog products at or below a stock threshold.
// It only reads; orders and stock are never modified.
type InventoryAlertService struct {
	products  LowStockLister
	threshold int
}

func NewInventoryAlertService(products LowStockLister, threshold int) *InventoryAlertService {
	if threshold <= 0 {
		threshold = defaultLowStockThreshold
	}
	return &InventoryAlertService{
		products:  products,
		threshold: threshold,
	}
}

func (a *InventoryAlertService) CheckLowStock(ctx context.Context) ([]InventoryAlert, error) {
	products, err := a.products.ListLowStock(ctx, a.threshold, lowStockReportLimit)
	if err != nil {
		log.Printf("Failed to list low stock products: %v", err)
		return nil, err
	}

	alerts := make([]InventoryAlert, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, InventoryAlert{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CurrentStock: p.Quantity,
			Threshold:    a.threshold,
		})
	}
	return alerts, nil
}

func (a *InventoryAlertService) LogLowStockAlerts(alerts []InventoryAlert) {
	if len(alerts) == 0 {
		log.Println("No low stock alerts to log")
		return
	}

	log.Printf("Low stock alerts (%d products at or below %d units):", len(alerts), a.threshold)
	for _, alert := range alerts {
		log.Printf("- Product '%s' (%s) has %d units", alert.ProductName, alert.ProductID, alert.CurrentStock)
	}
}

// ScheduledLowStockCheck is the body of the periodic low-stock job
func (a *InventoryAlertService) ScheduledLowStockCheck(ctx context.Context) error {
	log.Println("Starting scheduled low stock check")

	alerts, err := a.CheckLowStock(ctx)
	if err != nil {
		log.Printf("Scheduled low stock check failed: %v", err)
		return err
	}
	a.LogLowStockAlerts(alerts)

	log.Println("Scheduled low stock check completed successfully")
	return nil
}
