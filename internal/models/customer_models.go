package models

import "time"

// Customer types.
const (
	CustomerRetail    = "retail"
	CustomerWholesale = "wholesale"
)

// Customer is a buyer known to the chain. PasswordHash is only set for
// customers who registered on the storefront.
type Customer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          *string   `json:"email,omitempty"`
	Address        *string   `json:"address,omitempty"`
	PasswordHash   string    `json:"password_hash,omitempty"`
	CustomerType   string    `json:"customer_type"`
	LoyaltyPoints  int64     `json:"loyalty_points"`
	TotalPurchases float64   `json:"total_purchases"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Supplier provides stock to the chain.
type Supplier struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Address       *string   `json:"address,omitempty"`
	GSTNumber     *string   `json:"gst_number,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
