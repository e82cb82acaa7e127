package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type applicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

var applicationColumns = []string{
	"a.id", "a.application_number", "a.program_id", "a.user_id", "a.status", "a.rejection_reason",
	"a.supporting_documents", "a.application_data", "a.documents_pending", "a.reviewed_by", "a.reviewed_at",
	"a.created_at", "a.updated_at",
}

func scanApplication(row scanner) (*domain.Application, error) {
	a := &domain.Application{}
	var data []byte
	err := row.Scan(&a.ID, &a.ApplicationNumber, &a.ProgramID, &a.UserID, &a.Status, &a.RejectionReason,
		pq.Array(&a.SupportingDocuments), &data, &a.DocumentsPending, &a.ReviewedBy, &a.ReviewedAt,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unjsonb(data, &a.ApplicationData); err != nil {
		return nil, fmt.Errorf("application %d has invalid data: %w", a.ID, err)
	}
	return a, nil
}

func (r *applicationRepository) Create(ctx context.Context, a *domain.Application) error {
	logger.EnterMethod("applicationRepository.Create", "programID", a.ProgramID, "userID", a.UserID)

	data, err := jsonb(a.ApplicationData)
	if err != nil {
		return fmt.Errorf("failed to marshal application data: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT INTO applications (application_number, program_id, user_id, status, supporting_documents, application_data, documents_pending, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`
	logger.DatabaseCall("INSERT", "applications", "number", a.ApplicationNumber)
	err = r.db.QueryRowContext(ctx, query, a.ApplicationNumber, a.ProgramID, a.UserID, a.Status,
		pq.Array(a.SupportingDocuments), data, a.DocumentsPending, now).Scan(&a.ID)
	logger.DatabaseResult("INSERT", 1, err, "applicationID", a.ID)
	if err != nil {
		logger.ExitMethodWithError("applicationRepository.Create", err, "number", a.ApplicationNumber)
		return mapError(err, "application")
	}
	a.CreatedAt, a.UpdatedAt = now, now
	logger.ExitMethod("applicationRepository.Create", "applicationID", a.ID)
	return nil
}

func (r *applicationRepository) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	query, args, err := psql.Select(applicationColumns...).From("applications a").Where(sq.Eq{"a.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	a, err := scanApplication(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("application %d", id))
	}
	return a, nil
}

func (r *applicationRepository) UpdateDocuments(ctx context.Context, a *domain.Application) error {
	a.UpdatedAt = time.Now().UTC()
	query := `UPDATE applications SET supporting_documents=$1, documents_pending=$2, updated_at=$3 WHERE id=$4`
	return r.exec(ctx, a.ID, query, pq.Array(a.SupportingDocuments), a.DocumentsPending, a.UpdatedAt, a.ID)
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, a *domain.Application) error {
	a.UpdatedAt = time.Now().UTC()
	query := `UPDATE applications SET status=$1, rejection_reason=$2, reviewed_by=$3, reviewed_at=$4, updated_at=$5 WHERE id=$6`
	return r.exec(ctx, a.ID, query, a.Status, a.RejectionReason, a.ReviewedBy, a.ReviewedAt, a.UpdatedAt, a.ID)
}

func (r *applicationRepository) exec(ctx context.Context, id int32, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("application %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Application, error) {
	return r.list(ctx, psql.Select(applicationColumns...).From("applications a").
		Where(sq.Eq{"a.user_id": userID}).OrderBy("a.created_at DESC"))
}

// List scopes by the owning program's municipality.
func (r *applicationRepository) List(ctx context.Context, f repository.ApplicationFilter) ([]domain.Application, error) {
	b := psql.Select(applicationColumns...).From("applications a").
		Join("programs p ON p.id = a.program_id").OrderBy("a.created_at DESC")
	if f.MunicipalityID != nil {
		b = b.Where(sq.Eq{"p.municipality_id": *f.MunicipalityID})
	}
	if f.ProgramID != nil {
		b = b.Where(sq.Eq{"a.program_id": *f.ProgramID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"a.status": f.Status})
	}
	return r.list(ctx, b)
}

func (r *applicationRepository) list(ctx context.Context, b sq.SelectBuilder) ([]domain.Application, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
