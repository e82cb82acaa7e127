package repository

import (
	"context"
	"time"

	"munlink-backend/internal/domain"
)

// Lookups of a missing row return an error wrapping domain.ErrNotFound.
// Unique violations wrap domain.ErrConflict.

type UserRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.User, error)
}

type LocationRepository interface {
	ListMunicipalities(ctx context.Context) ([]domain.Municipality, error)
	ListBarangays(ctx context.Context) ([]domain.Barangay, error)
}

// ProgramFilter selects programs of one municipality. IncludeProvincial adds
// province-wide programs (no municipality).
type ProgramFilter struct {
	MunicipalityID    *int32
	IncludeProvincial bool
	ActiveOnly        bool
}

type ProgramRepository interface {
	Create(ctx context.Context, p *domain.Program) error
	GetByID(ctx context.Context, id int32) (*domain.Program, error)
	Update(ctx context.Context, p *domain.Program) error
	List(ctx context.Context, filter ProgramFilter) ([]domain.Program, error)
}

type ApplicationFilter struct {
	MunicipalityID *int32
	ProgramID      *int32
	Status         domain.ApplicationStatus
}

type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id int32) (*domain.Application, error)
	UpdateDocuments(ctx context.Context, a *domain.Application) error
	UpdateStatus(ctx context.Context, a *domain.Application) error
	ListByUser(ctx context.Context, userID int32) ([]domain.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]domain.Application, error)
}

// DocumentTypeFilter returns municipal documents of MunicipalityID together
// with barangay documents of BarangayID.
type DocumentTypeFilter struct {
	MunicipalityID *int32
	BarangayID     *int32
	ActiveOnly     bool
}

type DocumentTypeRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.DocumentType, error)
	List(ctx context.Context, filter DocumentTypeFilter) ([]domain.DocumentType, error)
}

type DocumentRequestFilter struct {
	MunicipalityID *int32
	BarangayID     *int32
	Status         domain.DocumentRequestStatus
}

type DocumentRequestRepository interface {
	Create(ctx context.Context, r *domain.DocumentRequest) error
	GetByID(ctx context.Context, id int32) (*domain.DocumentRequest, error)
	UpdateRequirements(ctx context.Context, r *domain.DocumentRequest) error
	UpdateStatus(ctx context.Context, r *domain.DocumentRequest) error
	ListByUser(ctx context.Context, userID int32) ([]domain.DocumentRequest, error)
	List(ctx context.Context, filter DocumentRequestFilter) ([]domain.DocumentRequest, error)
}

type SpecialStatusRepository interface {
	Create(ctx context.Context, s *domain.SpecialStatus) error
	GetByID(ctx context.Context, id int32) (*domain.SpecialStatus, error)
	Update(ctx context.Context, s *domain.SpecialStatus) error
	ExistsActiveOrPending(ctx context.Context, userID int32, statusType domain.SpecialStatusType, now time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.SpecialStatus, error)
	ListActiveByUser(ctx context.Context, userID int32, now time.Time) ([]domain.SpecialStatus, error)
	// ExpireDue marks approved statuses whose expires_at has passed as
	// expired and returns them.
	ExpireDue(ctx context.Context, now time.Time) ([]domain.SpecialStatus, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
