package product

import "time"

type Product struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	BrandID     *int64     `json:"brand_id,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status"`
	Variants    []*Variant `json:"variants"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Variant is one purchasable configuration of a product. CurrencyPrice is
// the foreign-currency cost basis; Price and DiscountPrice are the derived
// local-currency display prices, recomputed on every exchange-rate change.
type Variant struct {
	ID            int64   `json:"id"`
	ProductID     int64   `json:"product_id"`
	Color         string  `json:"color"`
	Kind          string  `json:"kind"`
	Stock         int     `json:"stock"`
	CurrencyPrice float64 `json:"currency_price"`
	Price         int64   `json:"price"`
	DiscountPrice int64   `json:"discount_price"`
}

type CreateProductInput struct {
	Name        string  `json:"name" validate:"required"`
	BrandID     *int64  `json:"brand_id"`
	CategoryID  *int64  `json:"category_id"`
	Description *string `json:"description"`
}

type CreateVariantInput struct {
	ProductID       int64   `json:"product_id" validate:"required"`
	Color           string  `json:"color"`
	Kind            string  `json:"kind"`
	Stock           int     `json:"stock" validate:"gte=0"`
	CurrencyPrice   float64 `json:"currency_price" validate:"gt=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lt=100"`
}
