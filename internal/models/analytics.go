package models

import (
	"time"
)

// Analytics is the marketplace dashboard payload.
type Analytics struct {
	TotalProducts      int                 `json:"totalProducts"`
	TotalUsers         int                 `json:"totalUsers"`
	TotalTransactions  int                 `json:"totalTransactions"`
	TotalRevenue       float64             `json:"totalRevenue"`
	AveragePrice       float64             `json:"averagePrice"`
	PriceAccuracy      float64             `json:"priceAccuracy"`
	CategoryStats      []CategoryStat      `json:"categoryStats"`
	PriceRangeStats    []PriceRangeStat    `json:"priceRangeStats"`
	ConditionStats     []ConditionStat     `json:"conditionStats"`
	BrandStats         []BrandStat         `json:"brandStats"`
	RecentTransactions []RecentTransaction `json:"recentTransactions"`
}

type CategoryStat struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type PriceRangeStat struct {
	Range      string  `json:"range"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ConditionStat struct {
	Condition string  `json:"condition"`
	Count     int     `json:"count"`
	AvgPrice  float64 `json:"avgPrice"`
}

type BrandStat struct {
	Brand    string  `json:"brand"`
	Count    int     `json:"count"`
	AvgPrice float64 `json:"avgPrice"`
}

type RecentTransaction struct {
	ID               int       `json:"id"`
	ProductTitle     string    `json:"productTitle"`
	DealPrice        float64   `json:"dealPrice"`
	AIEstimatedPrice *float64  `json:"aiEstimatedPrice,omitempty"`
	Accuracy         *float64  `json:"accuracy,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
