package models

import (
	"time"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

type Transaction struct {
	ID        int               `json:"id"`
	BuyerID   int               `json:"buyerId"`
	SellerID  int               `json:"sellerId"`
	ProductID int               `json:"productId"`
	DealPrice float64           `json:"dealPrice"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

type PurchaseRequest struct {
	DealPrice *float64 `json:"dealPrice,omitempty" validate:"omitempty,gt=0"`
}
