package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"munlink-backend/internal/cache"
	"munlink-backend/internal/domain"
	"munlink-backend/internal/eligibility"
	"munlink-backend/internal/location"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/repository"
)

const programsCachePrefix = "programs:"

type programService struct {
	programRepo repository.ProgramRepository
	cache       *cache.Cache
	staleTime   time.Duration
}

func NewProgramService(programRepo repository.ProgramRepository, c *cache.Cache, staleTime time.Duration) ProgramService {
	return &programService{programRepo: programRepo, cache: c, staleTime: staleTime}
}

// List returns the active programs of a municipality together with
// province-wide programs. A nil municipality lists every active program.
func (s *programService) List(ctx context.Context, municipalityID *int32) ([]domain.Program, error) {
	return cache.Fetch(ctx, s.cache, cache.Query[[]domain.Program]{
		Key:       cache.Key("programs", "municipality", municipalityID),
		StaleTime: s.staleTime,
		Fetcher: func(ctx context.Context) ([]domain.Program, error) {
			return s.programRepo.List(ctx, repository.ProgramFilter{
				MunicipalityID:    municipalityID,
				IncludeProvincial: true,
				ActiveOnly:        true,
			})
		},
	})
}

func (s *programService) Get(ctx context.Context, id int32) (*domain.Program, error) {
	return s.programRepo.GetByID(ctx, id)
}

func (s *programService) Create(ctx context.Context, actor *domain.User, p *domain.Program) (*domain.Program, error) {
	logger.EnterMethod("programService.Create", "actorID", actor.ID, "code", p.Code)

	if !location.CanAdminister(actor, p.MunicipalityID, nil) {
		logger.ExitMethodWithError("programService.Create", domain.ErrForbidden, "actorID", actor.ID)
		return nil, fmt.Errorf("create program: %w", domain.ErrForbidden)
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	var v []domain.Violation
	if p.Name == "" {
		v = append(v, domain.Violation{Field: "name", Rule: "required", Message: "Program name is required"})
	}
	if p.Code == "" {
		v = append(v, domain.Violation{Field: "code", Rule: "required", Message: "Program code is required"})
	}
	if p.Type == "" {
		p.Type = domain.ProgramTypeGeneral
	}
	if !p.Type.Valid() {
		v = append(v, domain.Violation{Field: "program_type", Rule: "invalid", Message: fmt.Sprintf("Unknown program type %q", p.Type)})
	}
	criteria, err := eligibility.NormalizeCriteria(p.EligibilityCriteria)
	if err != nil {
		v = append(v, domain.Violation{Field: "eligibility_criteria", Rule: "invalid", Message: err.Error()})
	}
	if len(v) > 0 {
		return nil, &domain.ValidationError{Violations: v}
	}

	p.EligibilityCriteria = criteria
	p.IsActive = true
	p.CompletedAt = nil
	p.CreatedBy = actor.ID
	if err := s.programRepo.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("programService.Create", err, "code", p.Code)
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	s.invalidate(ctx)
	logger.ExitMethod("programService.Create", "programID", p.ID)
	return p, nil
}

// Update applies the mutable fields of p to the stored program. Name and
// code never change after creation.
func (s *programService) Update(ctx context.Context, actor *domain.User, p *domain.Program) (*domain.Program, error) {
	existing, err := s.programRepo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !location.CanAdminister(actor, existing.MunicipalityID, nil) || !location.CanAdminister(actor, p.MunicipalityID, nil) {
		return nil, fmt.Errorf("update program %d: %w", p.ID, domain.ErrForbidden)
	}

	var v []domain.Violation
	if p.Name != "" && strings.TrimSpace(p.Name) != existing.Name {
		v = append(v, domain.Violation{Field: "name", Rule: "immutable", Message: "Program name cannot be changed"})
	}
	if p.Code != "" && !strings.EqualFold(strings.TrimSpace(p.Code), existing.Code) {
		v = append(v, domain.Violation{Field: "code", Rule: "immutable", Message: "Program code cannot be changed"})
	}
	if p.Type != "" && !p.Type.Valid() {
		v = append(v, domain.Violation{Field: "program_type", Rule: "invalid", Message: fmt.Sprintf("Unknown program type %q", p.Type)})
	}
	criteria, err := eligibility.NormalizeCriteria(p.EligibilityCriteria)
	if err != nil {
		v = append(v, domain.Violation{Field: "eligibility_criteria", Rule: "invalid", Message: err.Error()})
	}
	if len(v) > 0 {
		return nil, &domain.ValidationError{Violations: v}
	}

	if p.Type != "" {
		existing.Type = p.Type
	}
	existing.Description = p.Description
	existing.DurationDays = p.DurationDays
	existing.MunicipalityID = p.MunicipalityID
	existing.EligibilityCriteria = criteria
	existing.Requirements = p.Requirements

	if err := s.programRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("failed to update program: %w", err)
	}
	s.invalidate(ctx)
	return existing, nil
}

// Retire closes a program to new applications. Programs are never deleted.
func (s *programService) Retire(ctx context.Context, actor *domain.User, id int32) (*domain.Program, error) {
	p, err := s.programRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !location.CanAdminister(actor, p.MunicipalityID, nil) {
		return nil, fmt.Errorf("retire program %d: %w", id, domain.ErrForbidden)
	}
	if !p.IsActive {
		return p, nil
	}

	now := time.Now().UTC()
	p.IsActive = false
	p.CompletedAt = &now
	if err := s.programRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to retire program: %w", err)
	}
	s.invalidate(ctx)
	logger.Info("Program retired", "programID", id, "actorID", actor.ID)
	return p, nil
}

func (s *programService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, programsCachePrefix); err != nil {
		logger.WarnContext(ctx, "Failed to invalidate program cache", "error", err)
	}
}
