package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"stallpoint/api/models"
)

type ProductStore struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

func NewProductStore(db *sqlx.DB, logger *zap.SugaredLogger) *ProductStore {
	return &ProductStore{db: db, logger: logger}
}

func (s *ProductStore) CreateProduct(ctx context.Context, ownerID int, req models.CreateProductRequest) (*models.Product, error) {
	product := &models.Product{}
	query := `
		INSERT INTO products (owner_id, title, description, price_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, title, description, price_cents, created_at, updated_at;
	`
	err := s.db.QueryRowxContext(ctx, query, ownerID, req.Title, req.Description, req.PriceCents).StructScan(product)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Infow("product created", "id", product.ID, "owner", ownerID)
	return product, nil
}

func (s *ProductStore) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	product := &models.Product{}
	query := `
		SELECT id, owner_id, title, description, price_cents, created_at, updated_at
		FROM products
		WHERE id = $1;
	`
	if err := s.db.GetContext(ctx, product, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *ProductStore) ListProductsByOwner(ctx context.Context, ownerID int) ([]models.Product, error) {
	products := make([]models.Product, 0)
	query := `
		SELECT id, owner_id, title, description, price_cents, created_at, updated_at
		FROM products
		WHERE owner_id = $1
		ORDER BY created_at DESC;
	`
	if err := s.db.SelectContext(ctx, &products, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *ProductStore) UpdateProduct(ctx context.Context, id, ownerID int, req models.UpdateProductRequest) (*models.Product, error) {
	product := &models.Product{}
	query := `
		UPDATE products
		SET title = $3, description = $4, price_cents = $5, updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, description, price_cents, created_at, updated_at;
	`
	err := s.db.QueryRowxContext(ctx, query, id, ownerID, req.Title, req.Description, req.PriceCents).StructScan(product)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %d for owner %d: %w", id, ownerID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *ProductStore) DeleteProduct(ctx context.Context, id, ownerID int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %d for owner %d: %w", id, ownerID, ErrNotFound)
	}
	return nil
}
