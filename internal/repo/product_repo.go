// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the inventory threshold queries the
// health sweep scans. Product lifecycle is owned by the POS; only reads
// live here.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/rxhub/pharmacy-alerts/internal/domain"
)

// ListLowStockProducts returns products at or below their reorder level,
// ordered by name. Products with no reorder level configured never match.
func ListLowStockProducts(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("reorder_level > 0 AND stock_quantity <= reorder_level").
		Order("name ASC").
		Find(&out).Error
	return out, err
}

// ListExpiringProducts returns products whose expiry falls inside (now,
// now+within], ordered soonest first. Already-expired stock is excluded;
// pulling it off the shelf is a different workflow than an expiry warning.
func ListExpiringProducts(ctx context.Context, db *gorm.DB, within time.Duration, now time.Time) ([]domain.Product, error) {
	now = now.UTC()
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date > ? AND expiry_date <= ?", now, now.Add(within)).
		Order("expiry_date ASC").
		Find(&out).Error
	return out, err
}
