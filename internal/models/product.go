package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFilter holds listing criteria for catalog queries
type ProductFilter struct {
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Query      string     `json:"query,omitempty"` // name match, case-insensitive
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CategoryID  *uuid.UUID      `json:"category_id" db:"category_id"`
	Name        string          `json:"name" db:"name"`
	Description *string         `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	ImageKey    *string         `json:"-" db:"image_key"`
	ImageURL    string          `json:"image_url,omitempty" db:"-"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// ProductUpdate carries the editable fields of a product; nil fields are left unchanged
type ProductUpdate struct {
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
}

// Apply copies the non-nil fields onto p
func (u *ProductUpdate) Apply(p *Product) {
	if u.CategoryID != nil {
		p.CategoryID = u.CategoryID
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
}
