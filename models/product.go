package models

import "time"

type Product struct {
	ID          int       `db:"id" json:"id"`
	OwnerID     int       `db:"owner_id" json:"ownerId"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	PriceCents  int64     `db:"price_cents" json:"priceCents"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type CreateProductRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	PriceCents  int64  `json:"priceCents" binding:"required,gt=0"`
}

type UpdateProductRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	PriceCents  int64  `json:"priceCents" binding:"required,gt=0"`
}
