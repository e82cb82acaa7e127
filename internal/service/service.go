package service

import (
	"context"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/eligibility"
	"munlink-backend/internal/fees"
)

type ProgramService interface {
	List(ctx context.Context, municipalityID *int32) ([]domain.Program, error)
	Get(ctx context.Context, id int32) (*domain.Program, error)
	Create(ctx context.Context, actor *domain.User, p *domain.Program) (*domain.Program, error)
	Update(ctx context.Context, actor *domain.User, p *domain.Program) (*domain.Program, error)
	Retire(ctx context.Context, actor *domain.User, id int32) (*domain.Program, error)
}

type DocumentTypeService interface {
	List(ctx context.Context, municipalityID, barangayID *int32) ([]domain.DocumentType, error)
	Get(ctx context.Context, id int32) (*domain.DocumentType, error)
}

// DocumentRequestInput is a resident's submission. PendingLabels names
// requirement files the client uploads in a separate call; Files are
// uploaded right after the record is created.
type DocumentRequestInput struct {
	DocumentTypeID         int32
	BrowsingMunicipalityID *int32
	DeliveryMethod         domain.DeliveryMethod
	PickupLocation         domain.PickupLocation
	PurposeType            domain.PurposeType
	PurposeOther           string
	BusinessType           string
	CivilStatus            domain.CivilStatus
	Age                    *int32
	Remarks                string
	ConsentAcknowledged    bool
	PendingLabels          []string
	Files                  []domain.FileUpload
}

type FeePreviewInput struct {
	DocumentTypeID        int32
	PurposeType           domain.PurposeType
	BusinessType          string
	RequirementsSubmitted bool
}

// StatusUpdate moves a document request. Reason is required for rejection
// and ClaimCode for completing a pickup.
type StatusUpdate struct {
	Status    domain.DocumentRequestStatus
	Reason    string
	ClaimCode string
}

type DocumentRequestService interface {
	// Submit creates the request and then uploads any files. When the upload
	// fails the created request is returned together with a *domain.UploadError.
	Submit(ctx context.Context, userID int32, in DocumentRequestInput) (*domain.DocumentRequest, error)
	UploadRequirements(ctx context.Context, userID, requestID int32, files []domain.FileUpload) (*domain.DocumentRequest, error)
	PreviewFee(ctx context.Context, userID int32, in FeePreviewInput) (fees.Calculation, error)
	Get(ctx context.Context, actor *domain.User, id int32) (*domain.DocumentRequest, error)
	ListMine(ctx context.Context, userID int32) ([]domain.DocumentRequest, error)
	ListForAdmin(ctx context.Context, actor *domain.User, status domain.DocumentRequestStatus) ([]domain.DocumentRequest, error)
	UpdateStatus(ctx context.Context, actor *domain.User, id int32, update StatusUpdate) (*domain.DocumentRequest, error)
}

// ApplicationInput is a benefit-program application. AttachmentCount counts
// documents the client will upload separately.
type ApplicationInput struct {
	ProgramID       int32
	ApplicationData map[string]string
	AttachmentCount int
	Files           []domain.FileUpload
}

type ApplicationService interface {
	Evaluate(ctx context.Context, userID, programID int32) (*eligibility.Result, error)
	Submit(ctx context.Context, userID int32, in ApplicationInput) (*domain.Application, error)
	UploadDocuments(ctx context.Context, userID, applicationID int32, files []domain.FileUpload) (*domain.Application, error)
	Get(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error)
	ListMine(ctx context.Context, userID int32) ([]domain.Application, error)
	ListForAdmin(ctx context.Context, actor *domain.User, programID *int32, status domain.ApplicationStatus) ([]domain.Application, error)
	StartReview(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error)
	Approve(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error)
	Reject(ctx context.Context, actor *domain.User, id int32, reason string) (*domain.Application, error)
}

type SpecialStatusInput struct {
	StatusType     domain.SpecialStatusType
	SchoolName     string
	SemesterStart  *time.Time
	SemesterEnd    *time.Time
	DisabilityType string
	IDNumber       string
	Document       *domain.FileUpload
}

type SpecialStatusService interface {
	Apply(ctx context.Context, userID int32, in SpecialStatusInput) (*domain.SpecialStatus, error)
	Renew(ctx context.Context, userID, priorID int32, in SpecialStatusInput) (*domain.SpecialStatus, error)
	// Approve sets expiresAt when given; student statuses default to the
	// semester end.
	Approve(ctx context.Context, actor *domain.User, id int32, expiresAt *time.Time) (*domain.SpecialStatus, error)
	Reject(ctx context.Context, actor *domain.User, id int32, reason string) (*domain.SpecialStatus, error)
	ListMine(ctx context.Context, userID int32) ([]domain.SpecialStatus, error)
	ActiveTypes(ctx context.Context, userID int32, now time.Time) (fees.StatusSet, error)
	ExpireDue(ctx context.Context, now time.Time) ([]domain.SpecialStatus, error)
}

type NotificationService interface {
	// Notify stores an in-app notification and then tries email and push.
	// Only the in-app write can fail the call.
	Notify(ctx context.Context, userID int32, title, message string, attrs map[string]string) error
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

type EmailSender interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
