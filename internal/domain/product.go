package domain

import "time"

// Product is the slice of the POS inventory the health sweep reads. Product
// lifecycle (creation, stock mutations, pricing) is owned by the point-of-sale
// system; this service only scans for low-stock and near-expiry rows.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name used in alert titles.
//   - SKU: unique stock keeping unit.
//   - StockQuantity: units currently on hand.
//   - ReorderLevel: threshold at or below which a low-stock alert fires.
//   - ExpiryDate: optional batch expiry; nil for non-perishable items.
type Product struct {
	ID            string     `json:"id"             gorm:"type:char(36);primaryKey"`
	Name          string     `json:"name"           gorm:"type:varchar(255);not null"`
	SKU           string     `json:"sku"            gorm:"type:varchar(64);not null;uniqueIndex:ux_products_sku"`
	StockQuantity int        `json:"stock_quantity" gorm:"not null;default:0"`
	ReorderLevel  int        `json:"reorder_level"  gorm:"not null;default:0"`
	ExpiryDate    *time.Time `json:"expiry_date,omitempty" gorm:"index"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }
