package models

import (
	"time"
)

type ProductStatus string

const (
	StatusAvailable ProductStatus = "available"
	StatusSold      ProductStatus = "sold"
	StatusReserved  ProductStatus = "reserved"
)

// MaxProductImages is how many images a listing keeps; older ones are evicted.
const MaxProductImages = 5

type Product struct {
	ID               int           `json:"id"`
	Title            string        `json:"title"`
	Description      *string       `json:"description,omitempty"`
	Brand            *string       `json:"brand,omitempty"`
	Model            *string       `json:"model,omitempty"`
	Condition        string        `json:"condition"`
	OriginalPrice    *float64      `json:"originalPrice,omitempty"`
	AIEstimatedPrice *float64      `json:"aiEstimatedPrice,omitempty"`
	UserPrice        float64       `json:"userPrice"`
	UsageDuration    int           `json:"usageDuration"`
	CategoryID       int           `json:"categoryId"`
	SellerID         int           `json:"sellerId"`
	Status           ProductStatus `json:"status"`
	Images           []string      `json:"images"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`

	// Joined columns
	CategoryName string `json:"categoryName,omitempty"`
	SellerName   string `json:"sellerName,omitempty"`
}

// ProductDetail is a product with its latest pricing analysis and reviews.
type ProductDetail struct {
	Product
	PricingFactors *PricingFactors `json:"pricingFactors,omitempty"`
	Reviews        []Review        `json:"reviews"`
	AverageRating  float64         `json:"averageRating"`
	ReviewCount    int             `json:"reviewCount"`
}

// ProductListParams contains parameters for listing products
type ProductListParams struct {
	Limit      int
	Offset     int
	CategoryID *int
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	Condition  string
	Status     string
	SortBy     string // createdAt | price
	SortOrder  string // asc | desc
}

type CreateProductRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Brand         *string  `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model         *string  `json:"model,omitempty" validate:"omitempty,max=100"`
	Condition     string   `json:"condition" validate:"required,condition"`
	OriginalPrice *float64 `json:"originalPrice,omitempty" validate:"omitempty,gte=0,lte=1000000000"`
	UserPrice     float64  `json:"userPrice" validate:"required,gt=0"`
	UsageDuration *int     `json:"usageDuration,omitempty" validate:"omitempty,gte=0,lte=1200"`
	CategoryID    int      `json:"categoryId" validate:"required,gt=0"`
	SellerID      *int     `json:"sellerId,omitempty" validate:"omitempty,gt=0"`
}

type UpdateProductRequest struct {
	Title         *string        `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	Brand         *string        `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model         *string        `json:"model,omitempty" validate:"omitempty,max=100"`
	Condition     *string        `json:"condition,omitempty" validate:"omitempty,condition"`
	OriginalPrice *float64       `json:"originalPrice,omitempty" validate:"omitempty,gte=0,lte=1000000000"`
	UserPrice     *float64       `json:"userPrice,omitempty" validate:"omitempty,gt=0"`
	UsageDuration *int           `json:"usageDuration,omitempty" validate:"omitempty,gte=0,lte=1200"`
	CategoryID    *int           `json:"categoryId,omitempty" validate:"omitempty,gt=0"`
	Status        *ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=available sold reserved"`
}
