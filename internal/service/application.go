package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/eligibility"
	"munlink-backend/internal/location"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/metrics"
	"munlink-backend/internal/repository"
	"munlink-backend/internal/storage"
	"munlink-backend/internal/utils"
	"munlink-backend/internal/workflow"
)

const kindApplication = "application"

type applicationService struct {
	appRepo     repository.ApplicationRepository
	programRepo repository.ProgramRepository
	userRepo    repository.UserRepository
	storage     storage.StorageInterface
	notifier    NotificationService
	metrics     *metrics.Metrics
	loc         *time.Location
}

func NewApplicationService(
	appRepo repository.ApplicationRepository,
	programRepo repository.ProgramRepository,
	userRepo repository.UserRepository,
	store storage.StorageInterface,
	notifier NotificationService,
	m *metrics.Metrics,
	loc *time.Location,
) ApplicationService {
	if loc == nil {
		loc = time.UTC
	}
	return &applicationService{
		appRepo:     appRepo,
		programRepo: programRepo,
		userRepo:    userRepo,
		storage:     store,
		notifier:    notifier,
		metrics:     m,
		loc:         loc,
	}
}

func applicationRetryPath(id int32) string {
	return fmt.Sprintf("/applications/%d/documents", id)
}

func (s *applicationService) evaluate(user *domain.User, program *domain.Program) eligibility.Result {
	res := eligibility.Evaluate(program.EligibilityCriteria, eligibility.ApplicantFromUser(user), program.MunicipalityID, time.Now().In(s.loc))
	s.metrics.IncrementEligibility(res.Overall)
	return res
}

func (s *applicationService) Evaluate(ctx context.Context, userID, programID int32) (*eligibility.Result, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}
	res := s.evaluate(user, program)
	return &res, nil
}

func (s *applicationService) Submit(ctx context.Context, userID int32, in ApplicationInput) (*domain.Application, error) {
	logger.EnterMethod("applicationService.Submit", "userID", userID, "programID", in.ProgramID)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.ExitMethodWithError("applicationService.Submit", err, "reason", "user lookup failed")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	program, err := s.programRepo.GetByID(ctx, in.ProgramID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}

	data := cleanApplicationData(in.ApplicationData)
	draft := workflow.ApplicationDraft{
		Program:         program,
		ApplicationData: data,
		AttachmentCount: len(in.Files) + in.AttachmentCount,
	}
	if program != nil {
		draft.Eligibility = s.evaluate(user, program)
	}
	if err := workflow.CheckApplication(draft); err != nil {
		s.metrics.IncrementSubmission(kindApplication, "rejected")
		logger.ExitMethod("applicationService.Submit", "refused", err.Error())
		return nil, err
	}

	number, err := utils.ReferenceNumber(utils.PrefixApplication, time.Now().In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to generate application number: %w", err)
	}

	app := &domain.Application{
		ApplicationNumber:   number,
		ProgramID:           program.ID,
		UserID:              userID,
		Status:              domain.ApplicationStatusPending,
		SupportingDocuments: []string{},
		ApplicationData:     data,
		DocumentsPending:    draft.AttachmentCount > 0,
	}
	if err := s.appRepo.Create(ctx, app); err != nil {
		s.metrics.IncrementSubmission(kindApplication, "failed")
		logger.ExitMethodWithError("applicationService.Submit", err, "number", number)
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewSubmissionError("You already have an open application for "+program.Name+". This looks like a duplicate.", err)
		}
		return nil, domain.NewSubmissionError("", err)
	}
	s.metrics.IncrementSubmission(kindApplication, "created")

	notify(ctx, s.notifier, userID, "Application received",
		fmt.Sprintf("Your application %s to %s was received.", app.ApplicationNumber, program.Name),
		map[string]string{"application_id": fmt.Sprint(app.ID), "application_number": app.ApplicationNumber})

	if len(in.Files) > 0 {
		if err := s.storeDocuments(ctx, app, in.Files); err != nil {
			logger.ExitMethodWithError("applicationService.Submit", err, "applicationID", app.ID)
			return app, &domain.UploadError{
				RecordID:     app.ID,
				RecordNumber: app.ApplicationNumber,
				RetryPath:    applicationRetryPath(app.ID),
				Err:          err,
			}
		}
	}

	logger.ExitMethod("applicationService.Submit", "applicationID", app.ID, "number", app.ApplicationNumber)
	return app, nil
}

// cleanApplicationData drops blank values so an all-whitespace letter does
// not count as written.
func cleanApplicationData(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out
}

func (s *applicationService) UploadDocuments(ctx context.Context, userID, applicationID int32, files []domain.FileUpload) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, fmt.Errorf("application %d: %w", applicationID, domain.ErrForbidden)
	}
	if app.Status.IsTerminal() {
		return nil, fmt.Errorf("application %s is %s: %w", app.ApplicationNumber, app.Status, domain.ErrInvalidTransition)
	}
	if len(files) == 0 {
		return nil, domain.NewValidationError("files", "files_required", "Choose at least one file to upload")
	}

	if err := s.storeDocuments(ctx, app, files); err != nil {
		return app, &domain.UploadError{
			RecordID:     app.ID,
			RecordNumber: app.ApplicationNumber,
			RetryPath:    applicationRetryPath(app.ID),
			Err:          err,
		}
	}
	return app, nil
}

// storeDocuments uploads files and appends their keys once each. Documents
// stay pending until a call stores every file it was given.
func (s *applicationService) storeDocuments(ctx context.Context, app *domain.Application, files []domain.FileUpload) error {
	stored, uploadErr := uploadFiles(ctx, s.storage, storage.PrefixApplications, app.ID, files)
	if uploadErr != nil {
		s.metrics.IncrementUploadFailure(kindApplication)
	}
	if len(stored) == 0 {
		return uploadErr
	}

	for _, f := range stored {
		if !slices.Contains(app.SupportingDocuments, f.Key) {
			app.SupportingDocuments = append(app.SupportingDocuments, f.Key)
		}
	}
	app.DocumentsPending = uploadErr != nil

	if err := s.appRepo.UpdateDocuments(ctx, app); err != nil {
		return errors.Join(uploadErr, fmt.Errorf("failed to record uploaded documents: %w", err))
	}
	return uploadErr
}

func (s *applicationService) Get(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID == actor.ID {
		return app, nil
	}
	program, err := s.programRepo.GetByID(ctx, app.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if actor.Role.IsAdmin() && location.ScopeFor(actor).Covers(program.MunicipalityID, nil) {
		return app, nil
	}
	// barangay admins read the applications of their municipality
	if actor.Role == domain.RoleBarangayAdmin && actor.MunicipalityID != nil &&
		program.MunicipalityID != nil && *program.MunicipalityID == *actor.MunicipalityID {
		return app, nil
	}
	return nil, fmt.Errorf("application %d: %w", id, domain.ErrForbidden)
}

func (s *applicationService) ListMine(ctx context.Context, userID int32) ([]domain.Application, error) {
	return s.appRepo.ListByUser(ctx, userID)
}

func (s *applicationService) ListForAdmin(ctx context.Context, actor *domain.User, programID *int32, status domain.ApplicationStatus) ([]domain.Application, error) {
	scope := location.ScopeFor(actor)
	if !actor.Role.IsAdmin() || scope.None {
		return nil, fmt.Errorf("list applications: %w", domain.ErrForbidden)
	}
	return s.appRepo.List(ctx, repository.ApplicationFilter{
		MunicipalityID: scope.MunicipalityID,
		ProgramID:      programID,
		Status:         status,
	})
}

func (s *applicationService) StartReview(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error) {
	return s.transition(ctx, actor, id, domain.ApplicationStatusUnderReview, "")
}

func (s *applicationService) Approve(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error) {
	return s.transition(ctx, actor, id, domain.ApplicationStatusApproved, "")
}

func (s *applicationService) Reject(ctx context.Context, actor *domain.User, id int32, reason string) (*domain.Application, error) {
	return s.transition(ctx, actor, id, domain.ApplicationStatusRejected, reason)
}

func (s *applicationService) transition(ctx context.Context, actor *domain.User, id int32, next domain.ApplicationStatus, reason string) (*domain.Application, error) {
	logger.EnterMethod("applicationService.transition", "actorID", actor.ID, "applicationID", id, "next", next)

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, app.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("failed to load program: %w", err)
	}
	if !location.CanAdminister(actor, program.MunicipalityID, nil) {
		return nil, fmt.Errorf("application %d: %w", id, domain.ErrForbidden)
	}
	if !app.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("cannot move application %s from %s to %s: %w", app.ApplicationNumber, app.Status, next, domain.ErrInvalidTransition)
	}
	if next == domain.ApplicationStatusRejected {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return nil, domain.NewValidationError("reason", "reason_required", "A rejection reason is required")
		}
		app.RejectionReason = &reason
	}

	now := time.Now().UTC()
	reviewer := actor.ID
	app.Status = next
	app.ReviewedBy = &reviewer
	app.ReviewedAt = &now
	if err := s.appRepo.UpdateStatus(ctx, app); err != nil {
		logger.ExitMethodWithError("applicationService.transition", err, "applicationID", id)
		return nil, fmt.Errorf("failed to update application: %w", err)
	}

	var title, message string
	switch next {
	case domain.ApplicationStatusUnderReview:
		title, message = "Application under review", fmt.Sprintf("Your application %s to %s is now under review.", app.ApplicationNumber, program.Name)
	case domain.ApplicationStatusApproved:
		title, message = "Application approved", fmt.Sprintf("Your application %s to %s was approved.", app.ApplicationNumber, program.Name)
	case domain.ApplicationStatusRejected:
		title, message = "Application rejected", fmt.Sprintf("Your application %s to %s was rejected: %s", app.ApplicationNumber, program.Name, reason)
	}
	notify(ctx, s.notifier, app.UserID, title, message, map[string]string{
		"application_id": fmt.Sprint(app.ID),
		"status":         string(app.Status),
	})

	logger.ExitMethod("applicationService.transition", "applicationID", id, "status", app.Status)
	return app, nil
}
