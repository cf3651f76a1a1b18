package models

import "time"

type Favorite struct {
	UserID    int       `db:"user_id" json:"userId"`
	ProductID int       `db:"product_id" json:"productId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type AddFavoriteRequest struct {
	ProductID int `json:"productId" binding:"required,gt=0"`
}

// FavoriteProduct is a favorite joined with the product it points at,
// as listed on a user's favorites page.
type FavoriteProduct struct {
	Product
	FavoritedAt time.Time `db:"favorited_at" json:"favoritedAt"`
}
