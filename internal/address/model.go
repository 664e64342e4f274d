package address

import "time"

type Address struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	Name  string `json:"name"`
	Phone string `json:"phone"`

	Address1 string  `json:"address_line1"`
	Address2 *string `json:"address_line2,omitempty"`

	City     string `json:"city"`
	Province string `json:"province"`
	Postal   string `json:"postal_code"`

	IsDefault bool      `json:"is_default"`
	IsActive  bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateAddressInput struct {
	Name         string  `json:"name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	AddressLine1 string  `json:"address_line1" validate:"required"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city" validate:"required"`
	Province     string  `json:"province" validate:"required"`
	PostalCode   string  `json:"postal_code" validate:"required,len=10"`
	SetAsDefault bool    `json:"set_as_default"`
}

type UpdateAddressInput struct {
	AddressID    int64   `json:"address_id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	AddressLine1 string  `json:"address_line1" validate:"required"`
	AddressLine2 *string `json:"address_line2"`
	City         string  `json:"city" validate:"required"`
	Province     string  `json:"province" validate:"required"`
	PostalCode   string  `json:"postal_code" validate:"required,len=10"`
	SetAsDefault bool    `json:"set_as_default"`
}
