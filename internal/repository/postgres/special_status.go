package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
)

type specialStatusRepository struct {
	db *sql.DB
}

func NewSpecialStatusRepository(db *sql.DB) repository.SpecialStatusRepository {
	return &specialStatusRepository{db: db}
}

var specialStatusColumns = []string{
	"id", "user_id", "status_type", "status", "COALESCE(school_name, '')", "semester_start", "semester_end",
	"COALESCE(disability_type, '')", "COALESCE(id_number, '')", "COALESCE(document_key, '')", "expires_at",
	"renewal_of", "reviewed_by", "rejection_reason", "created_at", "updated_at",
}

func scanSpecialStatus(row scanner) (*domain.SpecialStatus, error) {
	s := &domain.SpecialStatus{}
	err := row.Scan(&s.ID, &s.UserID, &s.StatusType, &s.Status, &s.SchoolName, &s.SemesterStart, &s.SemesterEnd,
		&s.DisabilityType, &s.IDNumber, &s.DocumentKey, &s.ExpiresAt, &s.RenewalOf, &s.ReviewedBy,
		&s.RejectionReason, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create relies on the partial unique index over (user_id, status_type) for
// pending and approved rows; a race surfaces as domain.ErrConflict.
func (r *specialStatusRepository) Create(ctx context.Context, s *domain.SpecialStatus) error {
	now := time.Now().UTC()
	query := `INSERT INTO special_statuses (user_id, status_type, status, school_name, semester_start, semester_end, disability_type, id_number, document_key, expires_at, renewal_of, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12) RETURNING id`
	logger.DatabaseCall("INSERT", "special_statuses", "userID", s.UserID, "type", s.StatusType)
	err := r.db.QueryRowContext(ctx, query, s.UserID, s.StatusType, s.Status, nullable(s.SchoolName), s.SemesterStart,
		s.SemesterEnd, nullable(s.DisabilityType), nullable(s.IDNumber), nullable(s.DocumentKey), s.ExpiresAt,
		s.RenewalOf, now).Scan(&s.ID)
	logger.DatabaseResult("INSERT", 1, err, "specialStatusID", s.ID)
	if err != nil {
		return mapError(err, "special status")
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

func (r *specialStatusRepository) GetByID(ctx context.Context, id int32) (*domain.SpecialStatus, error) {
	query, args, err := psql.Select(specialStatusColumns...).From("special_statuses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	s, err := scanSpecialStatus(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("special status %d", id))
	}
	return s, nil
}

func (r *specialStatusRepository) Update(ctx context.Context, s *domain.SpecialStatus) error {
	s.UpdatedAt = time.Now().UTC()
	query := `UPDATE special_statuses SET status=$1, expires_at=$2, reviewed_by=$3, rejection_reason=$4, document_key=$5, updated_at=$6 WHERE id=$7`
	res, err := r.db.ExecContext(ctx, query, s.Status, s.ExpiresAt, s.ReviewedBy, s.RejectionReason,
		nullable(s.DocumentKey), s.UpdatedAt, s.ID)
	if err != nil {
		return mapError(err, "special status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("special status %d: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

// ExistsActiveOrPending treats approved rows past expires_at as inactive.
func (r *specialStatusRepository) ExistsActiveOrPending(ctx context.Context, userID int32, t domain.SpecialStatusType, now time.Time) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM special_statuses
	            WHERE user_id = $1 AND status_type = $2
	              AND (status = 'pending' OR (status = 'approved' AND (expires_at IS NULL OR expires_at > $3))))`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, t, now).Scan(&exists)
	return exists, err
}

func (r *specialStatusRepository) ListByUser(ctx context.Context, userID int32) ([]domain.SpecialStatus, error) {
	return r.list(ctx, psql.Select(specialStatusColumns...).From("special_statuses").
		Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"))
}

func (r *specialStatusRepository) ListActiveByUser(ctx context.Context, userID int32, now time.Time) ([]domain.SpecialStatus, error) {
	return r.list(ctx, psql.Select(specialStatusColumns...).From("special_statuses").
		Where(sq.Eq{"user_id": userID, "status": domain.SpecialStatusApproved}).
		Where(sq.Or{sq.Eq{"expires_at": nil}, sq.Gt{"expires_at": now}}))
}

func (r *specialStatusRepository) ExpireDue(ctx context.Context, now time.Time) ([]domain.SpecialStatus, error) {
	query := `UPDATE special_statuses SET status = 'expired', updated_at = $1
	          WHERE status = 'approved' AND expires_at IS NOT NULL AND expires_at <= $1
	          RETURNING ` + strings.Join(specialStatusColumns, ", ")
	logger.DatabaseCall("UPDATE", "special_statuses", "operation", "expire_due")
	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.SpecialStatus
	for rows.Next() {
		s, err := scanSpecialStatus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	logger.DatabaseResult("UPDATE", int64(len(out)), rows.Err())
	return out, rows.Err()
}

func (r *specialStatusRepository) list(ctx context.Context, b sq.SelectBuilder) ([]domain.SpecialStatus, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SpecialStatus
	for rows.Next() {
		s, err := scanSpecialStatus(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
