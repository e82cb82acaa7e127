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
)

type documentRequestRepository struct {
	db *sql.DB
}

func NewDocumentRequestRepository(db *sql.DB) repository.DocumentRequestRepository {
	return &documentRequestRepository{db: db}
}

var documentRequestColumns = []string{
	"id", "request_number", "user_id", "document_type_id", "municipality_id", "barangay_id", "delivery_method",
	"pickup_location", "purpose_type", "COALESCE(purpose_other, '')", "COALESCE(business_type, '')", "civil_status",
	"age", "COALESCE(remarks, '')", "requirements_submitted", "requirement_files", "documents_pending",
	"original_fee", "final_fee", "COALESCE(exemption_type, '')", "status", "rejection_reason",
	"COALESCE(claim_code_hash, '')", "ready_at", "completed_at", "created_at", "updated_at",
}

func scanDocumentRequest(row scanner) (*domain.DocumentRequest, error) {
	d := &domain.DocumentRequest{}
	var files []byte
	err := row.Scan(&d.ID, &d.RequestNumber, &d.UserID, &d.DocumentTypeID, &d.MunicipalityID, &d.BarangayID,
		&d.DeliveryMethod, &d.PickupLocation, &d.PurposeType, &d.PurposeOther, &d.BusinessType, &d.CivilStatus,
		&d.Age, &d.Remarks, &d.RequirementsSubmitted, &files, &d.DocumentsPending,
		&d.OriginalFee, &d.FinalFee, &d.ExemptionType, &d.Status, &d.RejectionReason,
		&d.ClaimCodeHash, &d.ReadyAt, &d.CompletedAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unjsonb(files, &d.RequirementFiles); err != nil {
		return nil, fmt.Errorf("document request %d has invalid requirement files: %w", d.ID, err)
	}
	return d, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *documentRequestRepository) Create(ctx context.Context, d *domain.DocumentRequest) error {
	logger.EnterMethod("documentRequestRepository.Create", "userID", d.UserID, "documentTypeID", d.DocumentTypeID)

	files, err := jsonb(d.RequirementFiles)
	if err != nil {
		return fmt.Errorf("failed to marshal requirement files: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT INTO document_requests (request_number, user_id, document_type_id, municipality_id, barangay_id, delivery_method, pickup_location, purpose_type, purpose_other, business_type, civil_status, age, remarks, requirements_submitted, requirement_files, documents_pending, original_fee, final_fee, exemption_type, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $21) RETURNING id`
	logger.DatabaseCall("INSERT", "document_requests", "number", d.RequestNumber)
	err = r.db.QueryRowContext(ctx, query, d.RequestNumber, d.UserID, d.DocumentTypeID, d.MunicipalityID, d.BarangayID,
		d.DeliveryMethod, d.PickupLocation, d.PurposeType, nullable(d.PurposeOther), nullable(d.BusinessType),
		d.CivilStatus, d.Age, nullable(d.Remarks), d.RequirementsSubmitted, files, d.DocumentsPending,
		d.OriginalFee, d.FinalFee, nullable(d.ExemptionType), d.Status, now).Scan(&d.ID)
	logger.DatabaseResult("INSERT", 1, err, "requestID", d.ID)
	if err != nil {
		logger.ExitMethodWithError("documentRequestRepository.Create", err, "number", d.RequestNumber)
		return mapError(err, "document request")
	}
	d.CreatedAt, d.UpdatedAt = now, now
	logger.ExitMethod("documentRequestRepository.Create", "requestID", d.ID)
	return nil
}

func (r *documentRequestRepository) GetByID(ctx context.Context, id int32) (*domain.DocumentRequest, error) {
	query, args, err := psql.Select(documentRequestColumns...).From("document_requests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	d, err := scanDocumentRequest(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("document request %d", id))
	}
	return d, nil
}

// UpdateRequirements stores the uploaded files and the recomputed fee.
func (r *documentRequestRepository) UpdateRequirements(ctx context.Context, d *domain.DocumentRequest) error {
	files, err := jsonb(d.RequirementFiles)
	if err != nil {
		return fmt.Errorf("failed to marshal requirement files: %w", err)
	}
	d.UpdatedAt = time.Now().UTC()
	query := `UPDATE document_requests SET requirement_files=$1, requirements_submitted=$2, documents_pending=$3, original_fee=$4, final_fee=$5, exemption_type=$6, updated_at=$7 WHERE id=$8`
	return r.exec(ctx, d.ID, query, files, d.RequirementsSubmitted, d.DocumentsPending, d.OriginalFee, d.FinalFee,
		nullable(d.ExemptionType), d.UpdatedAt, d.ID)
}

func (r *documentRequestRepository) UpdateStatus(ctx context.Context, d *domain.DocumentRequest) error {
	d.UpdatedAt = time.Now().UTC()
	query := `UPDATE document_requests SET status=$1, rejection_reason=$2, claim_code_hash=$3, ready_at=$4, completed_at=$5, updated_at=$6 WHERE id=$7`
	return r.exec(ctx, d.ID, query, d.Status, d.RejectionReason, nullable(d.ClaimCodeHash), d.ReadyAt, d.CompletedAt,
		d.UpdatedAt, d.ID)
}

func (r *documentRequestRepository) exec(ctx context.Context, id int32, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("document request %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *documentRequestRepository) ListByUser(ctx context.Context, userID int32) ([]domain.DocumentRequest, error) {
	return r.list(ctx, psql.Select(documentRequestColumns...).From("document_requests").
		Where(sq.Eq{"user_id": userID}).OrderBy("created_at DESC"))
}

func (r *documentRequestRepository) List(ctx context.Context, f repository.DocumentRequestFilter) ([]domain.DocumentRequest, error) {
	b := psql.Select(documentRequestColumns...).From("document_requests").OrderBy("created_at DESC")
	if f.MunicipalityID != nil {
		b = b.Where(sq.Eq{"municipality_id": *f.MunicipalityID})
	}
	if f.BarangayID != nil {
		b = b.Where(sq.Eq{"barangay_id": *f.BarangayID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": f.Status})
	}
	return r.list(ctx, b)
}

func (r *documentRequestRepository) list(ctx context.Context, b sq.SelectBuilder) ([]domain.DocumentRequest, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.DocumentRequest
	for rows.Next() {
		d, err := scanDocumentRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
