//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strconv"
	"strings"
)

// Product is a catalog item as returned by the API.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stockQuantity"`
	Active        *bool     `json:"isActive,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
	UpdatedAt     Timestamp `json:"updatedAt"`
}

// IsActive reports whether the product is active. Absent means active.
func (p Product) IsActive() bool {
	return p.Active == nil || *p.Active
}

// InStock reports whether any units are available.
func (p Product) InStock() bool { return p.StockQuantity > 0 }

// ProductInput is the create/update payload.
type ProductInput struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stockQuantity"`
	Active        *bool   `json:"isActive,omitempty"`
}

// ProductForm is raw operator input before validation.
// Price and StockQuantity stay textual so malformed numbers can be reported per field.
type ProductForm struct {
	Name          string
	Description   string
	Price         string
	Category      string
	StockQuantity string
	Active        *bool
}

// Input converts a validated form into the API payload.
// An empty stock quantity becomes zero.
func (f ProductForm) Input() ProductInput {
	price, _ := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	stock, _ := strconv.Atoi(strings.TrimSpace(f.StockQuantity))
	return ProductInput{
		Name:          strings.TrimSpace(f.Name),
		Description:   strings.TrimSpace(f.Description),
		Price:         price,
		Category:      strings.TrimSpace(f.Category),
		StockQuantity: stock,
		Active:        f.Active,
	}
}

// ProductFilter narrows a paged product listing.
type ProductFilter struct {
	PageRequest
	Category string
	MinPrice *float64
	MaxPrice *float64
}
