package models

import (
	"time"
)

// Category is a node of the two-level category tree.
type Category struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	ParentID    *int       `json:"parentId"`
	CreatedAt   time.Time  `json:"createdAt"`
	Children    []Category `json:"children,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	ParentID    *int    `json:"parentId,omitempty" validate:"omitempty,gt=0"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}
