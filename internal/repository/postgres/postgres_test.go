package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var programRowColumns = []string{"id", "name", "code", "program_type", "description", "duration_days", "municipality_id",
	"eligibility_criteria", "requirements", "is_active", "completed_at", "created_by", "created_at", "updated_at"}

func TestProgramRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgramRepository(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(programRowColumns).
			AddRow(1, "Senior Ayuda", "SR-AYUDA", "financial", "Cash aid", nil, 5,
				[]byte(`{"age_min":60,"location_required":true}`), `{"Senior Citizen ID","Barangay Certificate"}`,
				true, nil, 9, now, now)

		mock.ExpectQuery("SELECT (.+) FROM programs WHERE id = \\$1").
			WithArgs(int32(1)).
			WillReturnRows(rows)

		p, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Senior Ayuda", p.Name)
		assert.Equal(t, domain.ProgramTypeFinancial, p.Type)
		require.NotNil(t, p.MunicipalityID)
		assert.Equal(t, int32(5), *p.MunicipalityID)
		require.NotNil(t, p.EligibilityCriteria)
		assert.Equal(t, 60, *p.EligibilityCriteria.AgeMin)
		assert.True(t, p.EligibilityCriteria.LocationRequired)
		assert.Equal(t, []string{"Senior Citizen ID", "Barangay Certificate"}, p.Requirements)
	})

	t.Run("Null criteria", func(t *testing.T) {
		rows := sqlmock.NewRows(programRowColumns).
			AddRow(2, "Open Ayuda", "OPEN", "general", "", nil, nil, nil, `{}`, true, nil, 9, now, now)
		mock.ExpectQuery("SELECT (.+) FROM programs WHERE id = \\$1").WithArgs(int32(2)).WillReturnRows(rows)

		p, err := repo.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, p.EligibilityCriteria)
		assert.Nil(t, p.MunicipalityID)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM programs WHERE id = \\$1").WithArgs(int32(3)).WillReturnError(sql.ErrNoRows)
		_, err := repo.GetByID(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgramRepository(db)

	p := &domain.Program{
		Name:                "Scholarship",
		Code:                "SCHOLAR",
		Type:                domain.ProgramTypeEducational,
		MunicipalityID:      ptr(int32(5)),
		EligibilityCriteria: &domain.EligibilityCriteria{AgeMin: ptr(15), AgeMax: ptr(25)},
		Requirements:        []string{"Report Card"},
		IsActive:            true,
		CreatedBy:           9,
	}

	mock.ExpectQuery("INSERT INTO programs").
		WithArgs(p.Name, p.Code, p.Type, p.Description, p.DurationDays, p.MunicipalityID,
			[]byte(`{"age_min":15,"age_max":25}`), pq.Array(p.Requirements), true, int32(9), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, int32(11), p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgramRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT (.+) FROM programs WHERE is_active = \$1 AND \(municipality_id = \$2 OR municipality_id IS NULL\) ORDER BY name`).
		WithArgs(true, int32(5)).
		WillReturnRows(sqlmock.NewRows(programRowColumns).
			AddRow(1, "A", "A", "general", "", nil, 5, nil, `{}`, true, nil, 9, now, now).
			AddRow(2, "B", "B", "health", "", 30, nil, nil, `{}`, true, nil, 9, now, now))

	out, err := repo.List(context.Background(), repository.ProgramFilter{MunicipalityID: ptr(int32(5)), IncludeProvincial: true, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int32(30), *out[1].DurationDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepository_UpdateNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewProgramRepository(db)

	mock.ExpectExec("UPDATE programs SET").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Update(context.Background(), &domain.Program{ID: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

var documentTypeRowColumns = []string{"id", "name", "code", "description", "fee", "processing_days", "supports_digital",
	"authority_level", "municipality_id", "barangay_id", "requirements", "fee_tiers", "exemption_rules", "is_active"}

func TestDocumentTypeRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentTypeRepository(db)
	ctx := context.Background()

	t.Run("GetByID decodes tiers and map-form exemptions", func(t *testing.T) {
		rows := sqlmock.NewRows(documentTypeRowColumns).
			AddRow(4, "Business Clearance", "BIZ", "", "100.00", 3, false, "municipal", 5, nil,
				`{"DTI Registration"}`, []byte(`{"big_business":"500.00","small_business":100}`),
				[]byte(`{"student":true,"senior":{"reduced_fee":20}}`), true)
		mock.ExpectQuery("SELECT (.+) FROM document_types WHERE id = \\$1").WithArgs(int32(4)).WillReturnRows(rows)

		d, err := repo.GetByID(ctx, 4)
		require.NoError(t, err)
		assert.True(t, d.Fee.Equal(decimal.NewFromInt(100)))
		assert.True(t, d.FeeTiers["big_business"].Equal(decimal.NewFromInt(500)))
		require.Len(t, d.ExemptionRules, 2)
		assert.Equal(t, domain.SpecialStatusSenior, d.ExemptionRules[0].Status)
		assert.True(t, d.ExemptionRules[0].ReducedFee.Equal(decimal.NewFromInt(20)))
		assert.Equal(t, domain.SpecialStatusStudent, d.ExemptionRules[1].Status)
	})

	t.Run("List scopes municipal and barangay documents", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM document_types WHERE is_active = \$1 AND \(\(authority_level = \$2 AND \(municipality_id = \$3 OR municipality_id IS NULL\)\) OR \(authority_level = \$4 AND barangay_id = \$5\)\)`).
			WithArgs(true, domain.AuthorityMunicipal, int32(5), domain.AuthorityBarangay, int32(51)).
			WillReturnRows(sqlmock.NewRows(documentTypeRowColumns).
				AddRow(1, "Cedula", "CTC", "", "50", 1, true, "municipal", 5, nil, `{}`, nil, nil, true))

		out, err := repo.List(ctx, repository.DocumentTypeFilter{MunicipalityID: ptr(int32(5)), BarangayID: ptr(int32(51)), ActiveOnly: true})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Nil(t, out[0].ExemptionRules)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRequestRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRequestRepository(db)
	ctx := context.Background()

	newRequest := func() *domain.DocumentRequest {
		return &domain.DocumentRequest{
			RequestNumber:  "DR-20261018-ABC234",
			UserID:         7,
			DocumentTypeID: 1,
			MunicipalityID: 5,
			DeliveryMethod: domain.DeliveryPickup,
			PickupLocation: ptr(domain.PickupMunicipal),
			PurposeType:    domain.PurposeEmployment,
			CivilStatus:    domain.CivilStatusSingle,
			OriginalFee:    decimal.NewFromInt(50),
			FinalFee:       decimal.Zero,
			ExemptionType:  "SENIOR",
			Status:         domain.DocumentRequestPending,
		}
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO document_requests").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

		req := newRequest()
		require.NoError(t, repo.Create(ctx, req))
		assert.Equal(t, int32(42), req.ID)
	})

	t.Run("Duplicate number", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO document_requests").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "document_requests_request_number_key"})

		err := repo.Create(ctx, newRequest())
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "document_requests_request_number_key")
	})

	t.Run("Other failure passes through", func(t *testing.T) {
		boom := errors.New("connection reset")
		mock.ExpectQuery("INSERT INTO document_requests").WillReturnError(boom)
		err := repo.Create(ctx, newRequest())
		assert.ErrorIs(t, err, boom)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRequestRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRequestRepository(db)
	now := time.Now()

	cols := []string{"id", "request_number", "user_id", "document_type_id", "municipality_id", "barangay_id", "delivery_method",
		"pickup_location", "purpose_type", "purpose_other", "business_type", "civil_status", "age", "remarks",
		"requirements_submitted", "requirement_files", "documents_pending", "original_fee", "final_fee", "exemption_type",
		"status", "rejection_reason", "claim_code_hash", "ready_at", "completed_at", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT (.+) FROM document_requests WHERE id = \\$1").
		WithArgs(int32(42)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(42, "DR-20261018-ABC234", 7, 1, 5, 51, "pickup", "barangay",
			"employment", "", "", "single", 30, "", true, []byte(`{"Valid ID":"document-requests/42/valid-id.pdf"}`),
			false, "50.00", "0.00", "SENIOR", "pending", nil, "", nil, nil, now, now))

	d, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, d.PickupLocation)
	assert.Equal(t, domain.PickupBarangay, *d.PickupLocation)
	assert.Equal(t, "document-requests/42/valid-id.pdf", d.RequirementFiles["Valid ID"])
	assert.True(t, d.FinalFee.IsZero())
	assert.Equal(t, int32(30), *d.Age)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRequestRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewDocumentRequestRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM document_requests WHERE municipality_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
		WithArgs(int32(5), domain.DocumentRequestPending).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	out, err := repo.List(context.Background(), repository.DocumentRequestFilter{MunicipalityID: ptr(int32(5)), Status: domain.DocumentRequestPending})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpecialStatusRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSpecialStatusRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 1, 0, 0, 0, time.UTC)

	cols := []string{"id", "user_id", "status_type", "status", "school_name", "semester_start", "semester_end",
		"disability_type", "id_number", "document_key", "expires_at", "renewal_of", "reviewed_by", "rejection_reason",
		"created_at", "updated_at"}

	t.Run("ExistsActiveOrPending", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int32(7), domain.SpecialStatusStudent, now).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.ExistsActiveOrPending(ctx, 7, domain.SpecialStatusStudent, now)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ExpireDue returns expired rows", func(t *testing.T) {
		end := now.Add(-time.Hour)
		mock.ExpectQuery("UPDATE special_statuses SET status = 'expired'").
			WithArgs(now).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(3, 7, "student", "expired", "PRMSU", nil, end, "", "", "", end, nil, 9, nil, now, now))

		out, err := repo.ExpireDue(ctx, now)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, domain.SpecialStatusExpired, out[0].Status)
		assert.Equal(t, "PRMSU", out[0].SchoolName)
	})

	t.Run("Create conflict", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO special_statuses").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "special_statuses_one_open_per_type"})
		err := repo.Create(ctx, &domain.SpecialStatus{UserID: 7, StatusType: domain.SpecialStatusPWD, Status: domain.SpecialStatusPending})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository(t *testing.T) {
	db, mock := newMock(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		n := &domain.Notification{UserID: 7, Title: "Ready for pickup", Message: "Bring your claim code", Attributes: map[string]string{"type": "DOCUMENT_REQUEST"}}
		mock.ExpectQuery("INSERT INTO notifications").
			WithArgs(int32(7), n.Title, n.Message, false, []byte(`{"type":"DOCUMENT_REQUEST"}`), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		require.NoError(t, repo.Create(ctx, n))
		assert.Equal(t, int32(5), n.ID)
	})

	t.Run("List", func(t *testing.T) {
		mock.ExpectQuery("SELECT count").WithArgs(int32(7)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT id, user_id, title").
			WithArgs(int32(7), int32(20), int32(0)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "is_read", "attributes", "created_at"}).
				AddRow(5, 7, "t", "m", false, []byte(`{"a":"b"}`), time.Now()))

		notes, total, err := repo.List(ctx, 7, 20, 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1), total)
		assert.Equal(t, "b", notes[0].Attributes["a"])
	})

	t.Run("MarkAsRead not found", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET is_read").WithArgs(int32(9), int32(7)).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.MarkAsRead(ctx, 9, 7), domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
