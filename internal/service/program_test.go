package service_test

import (
	"context"
	"testing"
	"time"

	"munlink-backend/internal/cache"
	"munlink-backend/internal/domain"
	"munlink-backend/internal/repository"
	"munlink-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newProgramService(repo *MockProgramRepo) service.ProgramService {
	return service.NewProgramService(repo, cache.New(cache.NewMemoryStore(), nil), time.Minute)
}

func TestProgramService_ListIsCached(t *testing.T) {
	ctx := context.Background()
	repo := new(MockProgramRepo)
	svc := newProgramService(repo)

	filter := repository.ProgramFilter{MunicipalityID: int32Ptr(1), IncludeProvincial: true, ActiveOnly: true}
	repo.On("List", mock.Anything, filter).Return([]domain.Program{*seniorProgram()}, nil).Once()

	first, err := svc.List(ctx, int32Ptr(1))
	require.NoError(t, err)
	second, err := svc.List(ctx, int32Ptr(1))
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Equal(t, first[0].Code, second[0].Code)
	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestProgramService_Create(t *testing.T) {
	ctx := context.Background()
	admin := &domain.User{ID: 90, Role: domain.RoleMunicipalAdmin, MunicipalityID: int32Ptr(1)}

	t.Run("Legacy age is normalized and the cache dropped", func(t *testing.T) {
		repo := new(MockProgramRepo)
		svc := newProgramService(repo)

		repo.On("List", mock.Anything, mock.Anything).Return([]domain.Program{}, nil).Twice()
		_, err := svc.List(ctx, int32Ptr(1))
		require.NoError(t, err)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.Program")).Return(nil)
		p, err := svc.Create(ctx, admin, &domain.Program{
			Name:                "Pensyon ng Lolo at Lola",
			Code:                "pll",
			MunicipalityID:      int32Ptr(1),
			EligibilityCriteria: &domain.EligibilityCriteria{Age: "60-120"},
		})
		require.NoError(t, err)
		assert.Equal(t, "PLL", p.Code)
		assert.Equal(t, domain.ProgramTypeGeneral, p.Type)
		assert.True(t, p.IsActive)
		assert.Equal(t, int32(90), p.CreatedBy)
		require.NotNil(t, p.EligibilityCriteria.AgeMin)
		assert.Equal(t, 60, *p.EligibilityCriteria.AgeMin)
		require.NotNil(t, p.EligibilityCriteria.AgeMax)
		assert.Equal(t, 120, *p.EligibilityCriteria.AgeMax)
		assert.Empty(t, p.EligibilityCriteria.Age)

		_, err = svc.List(ctx, int32Ptr(1))
		require.NoError(t, err)
		repo.AssertNumberOfCalls(t, "List", 2)
	})

	t.Run("Province-wide programs need a provincial admin", func(t *testing.T) {
		repo := new(MockProgramRepo)
		svc := newProgramService(repo)

		_, err := svc.Create(ctx, admin, &domain.Program{Name: "Zambales Scholars", Code: "ZS"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("Unreadable criteria are refused", func(t *testing.T) {
		repo := new(MockProgramRepo)
		svc := newProgramService(repo)

		_, err := svc.Create(ctx, admin, &domain.Program{
			Name:                "Bad",
			Code:                "BAD",
			MunicipalityID:      int32Ptr(1),
			EligibilityCriteria: &domain.EligibilityCriteria{Age: "adults"},
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.HasRule("invalid"))
	})
}

func TestProgramService_UpdateAndRetire(t *testing.T) {
	ctx := context.Background()
	admin := &domain.User{ID: 90, Role: domain.RoleMunicipalAdmin, MunicipalityID: int32Ptr(1)}

	t.Run("Name and code are immutable", func(t *testing.T) {
		repo := new(MockProgramRepo)
		svc := newProgramService(repo)
		repo.On("GetByID", ctx, int32(11)).Return(seniorProgram(), nil)

		_, err := svc.Update(ctx, admin, &domain.Program{ID: 11, Name: "Renamed", Code: "SCCA", MunicipalityID: int32Ptr(1)})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.True(t, verr.HasRule("immutable"))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Description changes are saved", func(t *testing.T) {
		repo := new(MockProgramRepo)
		svc := newProgramService(repo)
		repo.On("GetByID", ctx, int32(11)).Return(seniorProgram(), nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Program")).Return(nil)

		p, err := svc.Update(ctx, admin, &domain.Program{ID: 11, Description: "Quarterly stipend", MunicipalityID: int32Ptr(1), Requirements: []string{"Senior Citizen ID"}})
		require.NoError(t, err)
		assert.Equal(t, "Quarterly stipend", p.Description)
		assert.Equal(t, "SCCA", p.Code)
	})

	t.Run("Retire is soft", func(t *testing.T) {
		repo := new(MockProgramRepo)
		svc := newProgramService(repo)
		repo.On("GetByID", ctx, int32(11)).Return(seniorProgram(), nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.Program")).Return(nil)

		p, err := svc.Retire(ctx, admin, 11)
		require.NoError(t, err)
		assert.False(t, p.IsActive)
		assert.NotNil(t, p.CompletedAt)
	})
}

func TestDocumentTypeService_ListIsCached(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDocumentTypeRepo)
	svc := service.NewDocumentTypeService(repo, cache.New(cache.NewMemoryStore(), nil), time.Minute)

	filter := repository.DocumentTypeFilter{MunicipalityID: int32Ptr(1), BarangayID: int32Ptr(10), ActiveOnly: true}
	repo.On("List", mock.Anything, filter).Return([]domain.DocumentType{*residencyCertificate()}, nil).Once()

	for i := 0; i < 3; i++ {
		list, err := svc.List(ctx, int32Ptr(1), int32Ptr(10))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "CERT-RES", list[0].Code)
		assert.Equal(t, domain.SpecialStatusSenior, list[0].ExemptionRules[0].Status)
	}
	repo.AssertNumberOfCalls(t, "List", 1)
}
