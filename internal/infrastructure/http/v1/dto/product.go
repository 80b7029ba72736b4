package dto

import (
	"warebase/internal/core/types"
	"warebase/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    *string `json:"category"`
	IsActive    *bool   `json:"isActive"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.SKU, r.Name)
	p.Description = r.Description
	if r.Unit != "" {
		p.Unit = r.Unit
	}
	p.Price = types.NewMoney(r.Price)
	p.Category = r.Category
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Unit        string  `json:"unit" binding:"required"`
	Price       float64 `json:"price" binding:"min=0"`
	Category    *string `json:"category"`
	IsActive    bool    `json:"isActive"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.SKU
	p.Name = r.Name
	p.Description = r.Description
	p.Unit = r.Unit
	p.Price = types.NewMoney(r.Price)
	p.Category = r.Category
	p.IsActive = r.IsActive
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID           string      `json:"id"`
	SKU          string      `json:"sku"`
	Name         string      `json:"name"`
	Description  *string     `json:"description,omitempty"`
	Unit         string      `json:"unit"`
	Price        types.Money `json:"price"`
	Category     *string     `json:"category,omitempty"`
	IsActive     bool        `json:"isActive"`
	DeletionMark bool        `json:"deletionMark"`
	Version      int         `json:"version"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:           p.ID.String(),
		SKU:          p.Code,
		Name:         p.Name,
		Description:  p.Description,
		Unit:         p.Unit,
		Price:        p.Price,
		Category:     p.Category,
		IsActive:     p.IsActive,
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
	}
}
