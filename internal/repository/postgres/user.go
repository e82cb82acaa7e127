package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, first_name, last_name, role, date_of_birth, municipality_id, barangay_id, COALESCE(push_token, ''), is_verified, created_at FROM users WHERE id = $1`
	logger.DatabaseCall("SELECT", "users", "userID", id)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.DateOfBirth, &u.MunicipalityID, &u.BarangayID, &u.PushToken, &u.IsVerified, &u.CreatedAt)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("user %d", id))
	}
	return u, nil
}
