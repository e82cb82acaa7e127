package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type documentTypeRepository struct {
	db *sql.DB
}

func NewDocumentTypeRepository(db *sql.DB) repository.DocumentTypeRepository {
	return &documentTypeRepository{db: db}
}

var documentTypeColumns = []string{
	"id", "name", "code", "COALESCE(description, '')", "fee", "processing_days", "supports_digital",
	"authority_level", "municipality_id", "barangay_id", "requirements", "fee_tiers", "exemption_rules", "is_active",
}

func scanDocumentType(row scanner) (*domain.DocumentType, error) {
	d := &domain.DocumentType{}
	var tiers, rules []byte
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.Fee, &d.ProcessingDays, &d.SupportsDigital,
		&d.AuthorityLevel, &d.MunicipalityID, &d.BarangayID, pq.Array(&d.Requirements), &tiers, &rules, &d.IsActive)
	if err != nil {
		return nil, err
	}
	if err := unjsonb(tiers, &d.FeeTiers); err != nil {
		return nil, fmt.Errorf("document type %d has invalid fee tiers: %w", d.ID, err)
	}
	if err := unjsonb(rules, &d.ExemptionRules); err != nil {
		return nil, fmt.Errorf("document type %d has invalid exemption rules: %w", d.ID, err)
	}
	return d, nil
}

func (r *documentTypeRepository) GetByID(ctx context.Context, id int32) (*domain.DocumentType, error) {
	query, args, err := psql.Select(documentTypeColumns...).From("document_types").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	d, err := scanDocumentType(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("document type %d", id))
	}
	return d, nil
}

func (r *documentTypeRepository) List(ctx context.Context, f repository.DocumentTypeFilter) ([]domain.DocumentType, error) {
	b := psql.Select(documentTypeColumns...).From("document_types").OrderBy("authority_level DESC", "name")
	if f.ActiveOnly {
		b = b.Where(sq.Eq{"is_active": true})
	}

	scope := sq.Or{}
	if f.MunicipalityID != nil {
		scope = append(scope, sq.And{
			sq.Eq{"authority_level": domain.AuthorityMunicipal},
			sq.Or{sq.Eq{"municipality_id": *f.MunicipalityID}, sq.Eq{"municipality_id": nil}},
		})
	}
	if f.BarangayID != nil {
		scope = append(scope, sq.And{
			sq.Eq{"authority_level": domain.AuthorityBarangay},
			sq.Eq{"barangay_id": *f.BarangayID},
		})
	}
	if len(scope) > 0 {
		b = b.Where(scope)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DocumentType
	for rows.Next() {
		d, err := scanDocumentType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
