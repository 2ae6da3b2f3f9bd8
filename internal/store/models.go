package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a tracked product. Inactive products stay queryable but are
// skipped by the background refresh worker.
type Product struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description,omitempty" db:"description"`
	Category    string           `json:"category,omitempty" db:"category"`
	Brand       string           `json:"brand,omitempty" db:"brand"`
	SKU         *string          `json:"sku,omitempty" db:"sku"`
	ImageURL    string           `json:"image_url,omitempty" db:"image_url"`
	TargetPrice *decimal.Decimal `json:"target_price,omitempty" db:"target_price"`
	IsActive    bool             `json:"is_active" db:"is_active"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// Price is one stored price observation for a product at a retailer
type Price struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	ProductID     uuid.UUID        `json:"product_id" db:"product_id"`
	Retailer      string           `json:"retailer" db:"retailer"`
	Price         decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty" db:"original_price"`
	Currency      string           `json:"currency" db:"currency"`
	Availability  bool             `json:"availability" db:"availability"`
	StockStatus   string           `json:"stock_status,omitempty" db:"stock_status"`
	URL           string           `json:"url" db:"url"`
	IsPromotional bool             `json:"is_promotional" db:"is_promotional"`
	PromotionText string           `json:"promotion_text,omitempty" db:"promotion_text"`
	DeliveryInfo  string           `json:"delivery_info,omitempty" db:"delivery_info"`
	ScrapedAt     time.Time        `json:"scraped_at" db:"scraped_at"`
}

// Alert is a price-drop notification request. Alerts are stored and managed
// through the API; delivery is not implemented yet.
type Alert struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	Email       string          `json:"email" db:"email"`
	TargetPrice decimal.Decimal `json:"target_price" db:"target_price"`
	Active      bool            `json:"active" db:"active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	TriggeredAt *time.Time      `json:"triggered_at,omitempty" db:"triggered_at"`
}
