package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/stashport/internal/domain"
)

// ProfileRepo defines the persistence operations for user profiles.
type ProfileRepo interface {
	// Ensure inserts the profile if no row with its ID exists. An existing
	// row, including one inserted concurrently, is left untouched.
	Ensure(ctx context.Context, p domain.Profile) error

	// GetByID returns a profile. Returns domain.ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error)
}

// pgProfileRepo is the Postgres implementation of ProfileRepo.
type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

func (r *pgProfileRepo) Ensure(ctx context.Context, p domain.Profile) error {
	const q = `
		INSERT INTO user_profiles (id, email, display_name, avatar_color)
		VALUES (@id, @email, @display_name, @avatar_color)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":           p.ID,
		"email":        p.Email,
		"display_name": p.DisplayName,
		"avatar_color": p.AvatarColor,
	})
	if err != nil {
		return fmt.Errorf("repo.ProfileRepo.Ensure: %w", err)
	}
	return nil
}

func (r *pgProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Profile, error) {
	const q = `
		SELECT id, email, display_name, avatar_color, created_at
		FROM user_profiles
		WHERE id = @id`

	var (
		p   domain.Profile
		pid pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).
		Scan(&pid, &p.Email, &p.DisplayName, &p.AvatarColor, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.GetByID: %w", domain.ErrNotFound)
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.GetByID: %w", err)
	}
	p.ID = uuid.UUID(pid.Bytes)
	return p, nil
}
