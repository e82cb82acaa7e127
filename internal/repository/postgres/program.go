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

type programRepository struct {
	db *sql.DB
}

func NewProgramRepository(db *sql.DB) repository.ProgramRepository {
	return &programRepository{db: db}
}

var programColumns = []string{
	"id", "name", "code", "program_type", "COALESCE(description, '')", "duration_days", "municipality_id",
	"eligibility_criteria", "requirements", "is_active", "completed_at", "created_by", "created_at", "updated_at",
}

func scanProgram(row scanner) (*domain.Program, error) {
	p := &domain.Program{}
	var criteria []byte
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Type, &p.Description, &p.DurationDays, &p.MunicipalityID,
		&criteria, pq.Array(&p.Requirements), &p.IsActive, &p.CompletedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(criteria) > 0 {
		p.EligibilityCriteria = &domain.EligibilityCriteria{}
		if err := unjsonb(criteria, p.EligibilityCriteria); err != nil {
			return nil, fmt.Errorf("program %d has invalid eligibility criteria: %w", p.ID, err)
		}
	}
	return p, nil
}

func (r *programRepository) Create(ctx context.Context, p *domain.Program) error {
	logger.EnterMethod("programRepository.Create", "code", p.Code)

	criteria, err := jsonb(p.EligibilityCriteria)
	if err != nil {
		return fmt.Errorf("failed to marshal eligibility criteria: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT INTO programs (name, code, program_type, description, duration_days, municipality_id, eligibility_criteria, requirements, is_active, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11) RETURNING id`
	logger.DatabaseCall("INSERT", "programs", "code", p.Code)
	err = r.db.QueryRowContext(ctx, query, p.Name, p.Code, p.Type, p.Description, p.DurationDays, p.MunicipalityID,
		criteria, pq.Array(p.Requirements), p.IsActive, p.CreatedBy, now).Scan(&p.ID)
	logger.DatabaseResult("INSERT", 1, err, "programID", p.ID)
	if err != nil {
		logger.ExitMethodWithError("programRepository.Create", err, "code", p.Code)
		return mapError(err, "program")
	}
	p.CreatedAt, p.UpdatedAt = now, now
	logger.ExitMethod("programRepository.Create", "programID", p.ID)
	return nil
}

func (r *programRepository) GetByID(ctx context.Context, id int32) (*domain.Program, error) {
	query, args, err := psql.Select(programColumns...).From("programs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProgram(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("program %d", id))
	}
	return p, nil
}

// Update never rewrites name or code.
func (r *programRepository) Update(ctx context.Context, p *domain.Program) error {
	criteria, err := jsonb(p.EligibilityCriteria)
	if err != nil {
		return fmt.Errorf("failed to marshal eligibility criteria: %w", err)
	}
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE programs SET program_type=$1, description=$2, duration_days=$3, municipality_id=$4, eligibility_criteria=$5, requirements=$6, is_active=$7, completed_at=$8, updated_at=$9 WHERE id=$10`
	res, err := r.db.ExecContext(ctx, query, p.Type, p.Description, p.DurationDays, p.MunicipalityID, criteria,
		pq.Array(p.Requirements), p.IsActive, p.CompletedAt, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("program %d: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *programRepository) List(ctx context.Context, f repository.ProgramFilter) ([]domain.Program, error) {
	b := psql.Select(programColumns...).From("programs").OrderBy("name")
	if f.ActiveOnly {
		b = b.Where(sq.Eq{"is_active": true})
	}
	if f.MunicipalityID != nil {
		if f.IncludeProvincial {
			b = b.Where(sq.Or{sq.Eq{"municipality_id": *f.MunicipalityID}, sq.Eq{"municipality_id": nil}})
		} else {
			b = b.Where(sq.Eq{"municipality_id": *f.MunicipalityID})
		}
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	logger.DatabaseCall("SELECT", "programs", "filter", f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
