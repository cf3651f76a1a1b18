package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stallpoint/api/models"
)

type FavoriteStore struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

func NewFavoriteStore(db *sqlx.DB, logger *zap.SugaredLogger) *FavoriteStore {
	return &FavoriteStore{db: db, logger: logger}
}

// AddFavorite marks a product as a favorite of the user. Adding an existing
// favorite is idempotent.
func (s *FavoriteStore) AddFavorite(ctx context.Context, userID, productID int) error {
	query := `
		INSERT INTO favorites (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING;
	`
	if _, err := s.db.ExecContext(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

func (s *FavoriteStore) RemoveFavorite(ctx context.Context, userID, productID int) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("favorite (%d, %d): %w", userID, productID, ErrNotFound)
	}
	return nil
}

// ListFavorites returns the user's favorite products, most recently
// favorited first.
func (s *FavoriteStore) ListFavorites(ctx context.Context, userID int) ([]models.FavoriteProduct, error) {
	favorites := make([]models.FavoriteProduct, 0)
	query := `
		SELECT p.id, p.owner_id, p.title, p.description, p.price_cents,
		       p.created_at, p.updated_at, f.created_at AS favorited_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC;
	`
	if err := s.db.SelectContext(ctx, &favorites, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}
