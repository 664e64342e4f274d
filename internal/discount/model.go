package discount

import "time"

type CodeType string

const (
	TypeFixed      CodeType = "fixed"
	TypePercentage CodeType = "percentage"
)

type DiscountCode struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Type         CodeType  `json:"type"`
	Value        int64     `json:"value"`
	MinOrder     int64     `json:"min_order"`
	MaxAmount    *int64    `json:"max_amount,omitempty"`
	MaxUses      *int64    `json:"max_uses,omitempty"`
	UsedCount    int64     `json:"used_count"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Active       bool      `json:"active"`
	UserSpecific bool      `json:"user_specific"`
	CreatedAt    time.Time `json:"created_at"`
}

type CreateCodeInput struct {
	Code         string    `json:"code" validate:"required"`
	Type         CodeType  `json:"type" validate:"required,oneof=fixed percentage"`
	Value        int64     `json:"value" validate:"gt=0"`
	MinOrder     int64     `json:"min_order" validate:"gte=0"`
	MaxAmount    *int64    `json:"max_amount"`
	MaxUses      *int64    `json:"max_uses"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required"`
	Active       bool      `json:"active"`
	UserSpecific bool      `json:"user_specific"`
}
