package http_test

import (
	"context"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/eligibility"
	"munlink-backend/internal/fees"
	"munlink-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockProgramService struct{ mock.Mock }

func (m *MockProgramService) List(ctx context.Context, municipalityID *int32) ([]domain.Program, error) {
	args := m.Called(ctx, municipalityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Program), args.Error(1)
}

func (m *MockProgramService) Get(ctx context.Context, id int32) (*domain.Program, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Program), args.Error(1)
}

func (m *MockProgramService) Create(ctx context.Context, actor *domain.User, p *domain.Program) (*domain.Program, error) {
	args := m.Called(ctx, actor, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Program), args.Error(1)
}

func (m *MockProgramService) Update(ctx context.Context, actor *domain.User, p *domain.Program) (*domain.Program, error) {
	args := m.Called(ctx, actor, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Program), args.Error(1)
}

func (m *MockProgramService) Retire(ctx context.Context, actor *domain.User, id int32) (*domain.Program, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Program), args.Error(1)
}

type MockDocumentRequestService struct{ mock.Mock }

func (m *MockDocumentRequestService) Submit(ctx context.Context, userID int32, in service.DocumentRequestInput) (*domain.DocumentRequest, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequest), args.Error(1)
}

func (m *MockDocumentRequestService) UploadRequirements(ctx context.Context, userID, requestID int32, files []domain.FileUpload) (*domain.DocumentRequest, error) {
	args := m.Called(ctx, userID, requestID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequest), args.Error(1)
}

func (m *MockDocumentRequestService) PreviewFee(ctx context.Context, userID int32, in service.FeePreviewInput) (fees.Calculation, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(fees.Calculation), args.Error(1)
}

func (m *MockDocumentRequestService) Get(ctx context.Context, actor *domain.User, id int32) (*domain.DocumentRequest, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequest), args.Error(1)
}

func (m *MockDocumentRequestService) ListMine(ctx context.Context, userID int32) ([]domain.DocumentRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentRequest), args.Error(1)
}

func (m *MockDocumentRequestService) ListForAdmin(ctx context.Context, actor *domain.User, status domain.DocumentRequestStatus) ([]domain.DocumentRequest, error) {
	args := m.Called(ctx, actor, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentRequest), args.Error(1)
}

func (m *MockDocumentRequestService) UpdateStatus(ctx context.Context, actor *domain.User, id int32, update service.StatusUpdate) (*domain.DocumentRequest, error) {
	args := m.Called(ctx, actor, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequest), args.Error(1)
}

type MockApplicationService struct{ mock.Mock }

func (m *MockApplicationService) Evaluate(ctx context.Context, userID, programID int32) (*eligibility.Result, error) {
	args := m.Called(ctx, userID, programID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eligibility.Result), args.Error(1)
}

func (m *MockApplicationService) Submit(ctx context.Context, userID int32, in service.ApplicationInput) (*domain.Application, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationService) UploadDocuments(ctx context.Context, userID, applicationID int32, files []domain.FileUpload) (*domain.Application, error) {
	args := m.Called(ctx, userID, applicationID, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationService) Get(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationService) ListMine(ctx context.Context, userID int32) ([]domain.Application, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationService) ListForAdmin(ctx context.Context, actor *domain.User, programID *int32, status domain.ApplicationStatus) ([]domain.Application, error) {
	args := m.Called(ctx, actor, programID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}

func (m *MockApplicationService) StartReview(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationService) Approve(ctx context.Context, actor *domain.User, id int32) (*domain.Application, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationService) Reject(ctx context.Context, actor *domain.User, id int32, reason string) (*domain.Application, error) {
	args := m.Called(ctx, actor, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
