package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"stallpoint/api/models"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("already exists")

const pqUniqueViolation = "23505"

type UserStore struct {
	db     *sqlx.DB
	logger *zap.SugaredLogger
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sqlx.DB, logger *zap.SugaredLogger) *UserStore {
	return &UserStore{db: db, logger: logger}
}

// CreateUser inserts a new user into the database.
func (s *UserStore) CreateUser(ctx context.Context, email, displayName string, hashedPassword []byte) (*models.User, error) {
	user := &models.User{}
	query := `
		INSERT INTO users (email, display_name, hashed_password)
		VALUES ($1, $2, $3)
		RETURNING id, email, display_name, created_at, updated_at;
	`
	err := s.db.QueryRowxContext(ctx, query, email, displayName, hashedPassword).StructScan(user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, fmt.Errorf("user with email '%s': %w", email, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Infow("user created", "id", user.ID, "email", user.Email)
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, display_name, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
	if err := s.db.GetContext(ctx, user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email '%s': %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, display_name, hashed_password, created_at, updated_at
		FROM users
		WHERE id = $1;
	`
	if err := s.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// UpdateProfile updates the mutable profile fields of a user.
func (s *UserStore) UpdateProfile(ctx context.Context, id int, displayName string) (*models.User, error) {
	user := &models.User{}
	query := `
		UPDATE users
		SET display_name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, display_name, created_at, updated_at;
	`
	err := s.db.QueryRowxContext(ctx, query, id, displayName).StructScan(user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
