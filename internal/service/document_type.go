package service

import (
	"context"
	"time"

	"munlink-backend/internal/cache"
	"munlink-backend/internal/domain"
	"munlink-backend/internal/repository"
)

type documentTypeService struct {
	docTypeRepo repository.DocumentTypeRepository
	cache       *cache.Cache
	staleTime   time.Duration
}

func NewDocumentTypeService(docTypeRepo repository.DocumentTypeRepository, c *cache.Cache, staleTime time.Duration) DocumentTypeService {
	return &documentTypeService{docTypeRepo: docTypeRepo, cache: c, staleTime: staleTime}
}

// List returns the active municipal documents of municipalityID and the
// barangay documents of barangayID.
func (s *documentTypeService) List(ctx context.Context, municipalityID, barangayID *int32) ([]domain.DocumentType, error) {
	return cache.Fetch(ctx, s.cache, cache.Query[[]domain.DocumentType]{
		Key:       cache.Key("document-types", municipalityID, barangayID),
		StaleTime: s.staleTime,
		Fetcher: func(ctx context.Context) ([]domain.DocumentType, error) {
			return s.docTypeRepo.List(ctx, repository.DocumentTypeFilter{
				MunicipalityID: municipalityID,
				BarangayID:     barangayID,
				ActiveOnly:     true,
			})
		},
	})
}

func (s *documentTypeService) Get(ctx context.Context, id int32) (*domain.DocumentType, error) {
	return s.docTypeRepo.GetByID(ctx, id)
}
