package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/fees"
	"munlink-backend/internal/location"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/repository"
	"munlink-backend/internal/storage"
	"munlink-backend/internal/utils"
)

// SeniorAge is the minimum age for senior citizen status.
const SeniorAge = 60

type specialStatusService struct {
	statusRepo repository.SpecialStatusRepository
	userRepo   repository.UserRepository
	storage    storage.StorageInterface
	notifier   NotificationService
	loc        *time.Location
}

func NewSpecialStatusService(statusRepo repository.SpecialStatusRepository, userRepo repository.UserRepository, store storage.StorageInterface, notifier NotificationService, loc *time.Location) SpecialStatusService {
	if loc == nil {
		loc = time.UTC
	}
	return &specialStatusService{statusRepo: statusRepo, userRepo: userRepo, storage: store, notifier: notifier, loc: loc}
}

func (s *specialStatusService) Apply(ctx context.Context, userID int32, in SpecialStatusInput) (*domain.SpecialStatus, error) {
	return s.apply(ctx, userID, in, nil)
}

func (s *specialStatusService) apply(ctx context.Context, userID int32, in SpecialStatusInput, renewalOf *int32) (*domain.SpecialStatus, error) {
	logger.EnterMethod("specialStatusService.apply", "userID", userID, "type", in.StatusType)
	now := time.Now().In(s.loc)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if v := specialStatusViolations(user, in, now); len(v) > 0 {
		return nil, &domain.ValidationError{Violations: v}
	}

	exists, err := s.statusRepo.ExistsActiveOrPending(ctx, userID, in.StatusType, now)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing statuses: %w", err)
	}
	if exists {
		return nil, duplicateStatusError(in.StatusType, domain.ErrConflict)
	}

	status := &domain.SpecialStatus{
		UserID:         userID,
		StatusType:     in.StatusType,
		Status:         domain.SpecialStatusPending,
		SchoolName:     strings.TrimSpace(in.SchoolName),
		SemesterStart:  in.SemesterStart,
		SemesterEnd:    in.SemesterEnd,
		DisabilityType: strings.TrimSpace(in.DisabilityType),
		IDNumber:       strings.TrimSpace(in.IDNumber),
		RenewalOf:      renewalOf,
	}

	// Proof is keyed by holder and type so a re-application replaces it.
	if in.Document != nil {
		key := storage.ObjectKey(storage.PrefixSpecialStatuses, userID, string(in.StatusType)+" proof", in.Document.Filename)
		if err := s.storage.PutObject(ctx, key, in.Document.ContentType, in.Document.Content); err != nil {
			logger.ExitMethodWithError("specialStatusService.apply", err, "reason", "proof upload failed")
			return nil, domain.NewSubmissionError("We could not store your proof document. Please try again.", err)
		}
		status.DocumentKey = key
	}

	if err := s.statusRepo.Create(ctx, status); err != nil {
		logger.ExitMethodWithError("specialStatusService.apply", err, "userID", userID)
		if errors.Is(err, domain.ErrConflict) {
			return nil, duplicateStatusError(in.StatusType, err)
		}
		return nil, domain.NewSubmissionError("", err)
	}

	logger.ExitMethod("specialStatusService.apply", "statusID", status.ID)
	return status, nil
}

func duplicateStatusError(t domain.SpecialStatusType, err error) error {
	return domain.NewSubmissionError(fmt.Sprintf("You already have an active or pending %s status. This looks like a duplicate.", t.ExemptionLabel()), err)
}

func specialStatusViolations(user *domain.User, in SpecialStatusInput, now time.Time) []domain.Violation {
	var v []domain.Violation
	add := func(field, rule, msg string) {
		v = append(v, domain.Violation{Field: field, Rule: rule, Message: msg})
	}

	switch in.StatusType {
	case domain.SpecialStatusStudent:
		if strings.TrimSpace(in.SchoolName) == "" {
			add("school_name", "required", "Enter the name of your school")
		}
		switch {
		case in.SemesterStart == nil || in.SemesterEnd == nil:
			add("semester_end", "required", "Enter the start and end of the current semester")
		case !in.SemesterEnd.After(*in.SemesterStart):
			add("semester_end", "invalid", "The semester must end after it starts")
		case !in.SemesterEnd.After(now):
			add("semester_end", "expired", "The semester you entered has already ended")
		}
	case domain.SpecialStatusPWD:
		if strings.TrimSpace(in.DisabilityType) == "" {
			add("disability_type", "required", "Enter the type of disability")
		}
	case domain.SpecialStatusSenior:
		if user.DateOfBirth == nil {
			add("date_of_birth", "required", "Add your date of birth to your profile first")
		} else if utils.Age(*user.DateOfBirth, now) < SeniorAge {
			add("date_of_birth", "too_young", fmt.Sprintf("Senior citizen status starts at age %d", SeniorAge))
		}
	default:
		add("status_type", "invalid", "Choose student, PWD or senior")
	}
	return v
}

// Renew files a new pending status referencing an expired one. An approved
// status already past its expiry is marked expired first.
func (s *specialStatusService) Renew(ctx context.Context, userID, priorID int32, in SpecialStatusInput) (*domain.SpecialStatus, error) {
	prior, err := s.statusRepo.GetByID(ctx, priorID)
	if err != nil {
		return nil, err
	}
	if prior.UserID != userID {
		return nil, fmt.Errorf("special status %d: %w", priorID, domain.ErrForbidden)
	}
	if in.StatusType == "" {
		in.StatusType = prior.StatusType
	}
	if in.StatusType != prior.StatusType {
		return nil, domain.NewValidationError("status_type", "mismatch", "A renewal must keep the same status type")
	}

	now := time.Now().In(s.loc)
	if prior.Status == domain.SpecialStatusApproved && prior.ExpiresAt != nil && !now.Before(*prior.ExpiresAt) {
		prior.Status = domain.SpecialStatusExpired
		if err := s.statusRepo.Update(ctx, prior); err != nil {
			return nil, fmt.Errorf("failed to expire special status: %w", err)
		}
	}
	if prior.Status != domain.SpecialStatusExpired {
		return nil, fmt.Errorf("special status %d is %s: %w", priorID, prior.Status, domain.ErrInvalidTransition)
	}

	if in.SchoolName == "" {
		in.SchoolName = prior.SchoolName
	}
	if in.DisabilityType == "" {
		in.DisabilityType = prior.DisabilityType
	}
	if in.IDNumber == "" {
		in.IDNumber = prior.IDNumber
	}
	return s.apply(ctx, userID, in, &prior.ID)
}

func (s *specialStatusService) review(ctx context.Context, actor *domain.User, id int32) (*domain.SpecialStatus, error) {
	status, err := s.statusRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	holder, err := s.userRepo.GetByID(ctx, status.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load status holder: %w", err)
	}
	if !location.CanAdminister(actor, holder.MunicipalityID, holder.BarangayID) {
		return nil, fmt.Errorf("special status %d: %w", id, domain.ErrForbidden)
	}
	if status.Status != domain.SpecialStatusPending {
		return nil, fmt.Errorf("special status %d is %s: %w", id, status.Status, domain.ErrInvalidTransition)
	}
	return status, nil
}

func (s *specialStatusService) Approve(ctx context.Context, actor *domain.User, id int32, expiresAt *time.Time) (*domain.SpecialStatus, error) {
	status, err := s.review(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().In(s.loc)
	if expiresAt == nil && status.StatusType == domain.SpecialStatusStudent {
		expiresAt = status.SemesterEnd
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return nil, domain.NewValidationError("expires_at", "expired", "The expiry date has already passed")
	}

	reviewer := actor.ID
	status.Status = domain.SpecialStatusApproved
	status.ExpiresAt = expiresAt
	status.ReviewedBy = &reviewer
	if err := s.statusRepo.Update(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to approve special status: %w", err)
	}

	msg := fmt.Sprintf("Your %s status was approved. Eligible document fees are now exempted.", status.StatusType.ExemptionLabel())
	if status.ExpiresAt != nil {
		msg += fmt.Sprintf(" It is valid until %s.", utils.DateOf(status.ExpiresAt.In(s.loc)))
	}
	notify(ctx, s.notifier, status.UserID, "Special status approved", msg, map[string]string{
		"special_status_id": fmt.Sprint(status.ID),
		"status_type":       string(status.StatusType),
	})
	return status, nil
}

func (s *specialStatusService) Reject(ctx context.Context, actor *domain.User, id int32, reason string) (*domain.SpecialStatus, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewValidationError("reason", "reason_required", "A rejection reason is required")
	}
	status, err := s.review(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	reviewer := actor.ID
	status.Status = domain.SpecialStatusRejected
	status.RejectionReason = &reason
	status.ReviewedBy = &reviewer
	if err := s.statusRepo.Update(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to reject special status: %w", err)
	}

	notify(ctx, s.notifier, status.UserID, "Special status rejected",
		fmt.Sprintf("Your %s status application was rejected: %s", status.StatusType.ExemptionLabel(), reason),
		map[string]string{"special_status_id": fmt.Sprint(status.ID), "status_type": string(status.StatusType)})
	return status, nil
}

func (s *specialStatusService) ListMine(ctx context.Context, userID int32) ([]domain.SpecialStatus, error) {
	return s.statusRepo.ListByUser(ctx, userID)
}

func (s *specialStatusService) ActiveTypes(ctx context.Context, userID int32, now time.Time) (fees.StatusSet, error) {
	active, err := s.statusRepo.ListActiveByUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	types := make([]domain.SpecialStatusType, 0, len(active))
	for _, st := range active {
		types = append(types, st.StatusType)
	}
	return fees.NewStatusSet(types...), nil
}

// ExpireDue marks lapsed statuses expired and tells each holder to renew.
func (s *specialStatusService) ExpireDue(ctx context.Context, now time.Time) ([]domain.SpecialStatus, error) {
	expired, err := s.statusRepo.ExpireDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to expire special statuses: %w", err)
	}
	for _, st := range expired {
		notify(ctx, s.notifier, st.UserID, "Special status expired",
			fmt.Sprintf("Your %s status has expired. Renew it to keep your fee exemptions.", st.StatusType.ExemptionLabel()),
			map[string]string{"special_status_id": fmt.Sprint(st.ID), "status_type": string(st.StatusType)})
	}
	logger.InfoContext(ctx, "Expired special statuses", "count", len(expired))
	return expired, nil
}
