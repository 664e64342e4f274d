package order

import "time"

// Status values mirror the stored string codes.
type Status string

const (
	StatusSubmitted Status = "1"
	StatusDelivered Status = "2"
	StatusCanceled  Status = "3"
	StatusReturned  Status = "4"
)

// PaymentType distinguishes manual settlement from the online gateway.
type PaymentType string

const (
	PaymentManual PaymentType = "0"
	PaymentOnline PaymentType = "1"
)

const (
	PaymentStatusUnpaid = 0
	PaymentStatusPaid   = 1
)

type Order struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"user_id"`
	AddressID      *int64      `json:"address_id,omitempty"`
	TotalCost      int64       `json:"total_cost"`
	IRRTotalCost   int64       `json:"irr_total_cost"`
	DiscountCode   *string     `json:"discount_code,omitempty"`
	DiscountAmount int64       `json:"discount_amount"`
	ServiceCost    int64       `json:"service_cost"`
	GuaranteeCost  int64       `json:"guarantee_cost"`
	BusinessProfit int64       `json:"business_profit"`
	ShippingCost   int64       `json:"shipping_cost"`
	DeliveryType   string      `json:"type_of_delivery"`
	PaymentType    PaymentType `json:"type_of_payment"`
	Status         Status      `json:"status"`
	PaymentStatus  int         `json:"payment_status"`
	Authority      *string     `json:"payment_authority,omitempty"`
	Description    string      `json:"description"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	Items          []OrderItem `json:"items"`
}

// ItemsCost recovers the cost basis before discount from the stored
// components, per the pricing identity.
func (o *Order) ItemsCost() int64 {
	return o.TotalCost + o.DiscountAmount -
		o.ServiceCost - o.GuaranteeCost - o.BusinessProfit - o.ShippingCost
}

// OrderItem records the variant's price at order-creation time; later
// price changes never alter historical orders.
type OrderItem struct {
	ID            int64 `json:"id"`
	OrderID       int64 `json:"order_id"`
	ProductID     int64 `json:"product_id"`
	VariantID     int64 `json:"variant_id"`
	Quantity      int   `json:"quantity"`
	Price         int64 `json:"price"`
	DiscountPrice int64 `json:"discount_price"`
}

type ItemInput struct {
	ID            *int64 `json:"id,omitempty"`
	VariantID     int64  `json:"variant_id" validate:"required"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
	Price         int64  `json:"price" validate:"gt=0"`
	DiscountPrice int64  `json:"discount_price" validate:"gte=0"`
}

type CreateInput struct {
	AddressID    *int64      `json:"address_id"`
	Items        []ItemInput `json:"items" validate:"required,min=1,dive"`
	DiscountCode *string     `json:"discount_code"`
	DeliveryType string      `json:"type_of_delivery"`
	PaymentType  PaymentType `json:"type_of_payment" validate:"required,oneof=0 1"`
	Mobile       string      `json:"mobile"`
}

// Percentages override the configured defaults; admin-only.
type Percentages struct {
	Service        *float64 `json:"services_percentage"`
	Guarantee      *float64 `json:"guarantee_percentage"`
	BusinessProfit *float64 `json:"business_profit_percentage"`
	Shipping       *float64 `json:"shipping_percentage"`
}

type AdminCreateInput struct {
	UserID      int64 `json:"user_id" validate:"required"`
	CreateInput
	Percentages
	// Predetermined component costs the admin client displays; must agree
	// with the server-side calculation.
	ServiceCost    *int64 `json:"service_cost"`
	GuaranteeCost  *int64 `json:"guarantee_cost"`
	BusinessProfit *int64 `json:"business_profit"`
	ShippingCost   *int64 `json:"shipping_cost"`
}

type UpdateInput struct {
	AddressID    *int64      `json:"address_id"`
	Items        []ItemInput `json:"items"`
	DiscountCode *string     `json:"discount_code"`
	DeliveryType *string     `json:"type_of_delivery"`
	Percentages
}

// CreateResult is what the creation flows hand back to the client:
// either a gateway redirect, or a link into the dashboard / manual
// finalize-payment flow.
type CreateResult struct {
	Order       *Order `json:"order"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Link        string `json:"link,omitempty"`
}

type Filter struct {
	UserID        *int64
	Status        *Status
	PaymentStatus *int
}
