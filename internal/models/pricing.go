package models

import (
	"time"
)

// PricingFactors is one stored run of the estimator for a product.
type PricingFactors struct {
	ID                 int       `json:"id"`
	ProductID          int       `json:"productId"`
	BrandValue         float64   `json:"brandValue"`
	MarketDemand       float64   `json:"marketDemand"`
	ConditionScore     float64   `json:"conditionScore"`
	UsageDuration      int       `json:"usageDuration"`
	FunctionalityScore float64   `json:"functionalityScore"`
	OverallScore       float64   `json:"overallScore"`
	CreatedAt          time.Time `json:"createdAt"`
}

type PriceType string

const (
	PriceTypeUser        PriceType = "user_price"
	PriceTypeAIEstimated PriceType = "ai_estimated"
	PriceTypeDeal        PriceType = "deal_price"
)

type PricePoint struct {
	ID         int       `json:"id"`
	ProductID  int       `json:"productId"`
	PriceType  PriceType `json:"priceType"`
	Price      float64   `json:"price"`
	RecordedAt time.Time `json:"recordedAt"`
}
