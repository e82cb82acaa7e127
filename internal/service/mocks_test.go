package service_test

import (
	"context"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/fees"
	"munlink-backend/internal/repository"
	"munlink-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockProgramRepo
type MockProgramRepo struct {
	mock.Mock
}

func (m *MockProgramRepo) Create(ctx context.Context, p *domain.Program) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProgramRepo) GetByID(ctx context.Context, id int32) (*domain.Program, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Program), args.Error(1)
}
func (m *MockProgramRepo) Update(ctx context.Context, p *domain.Program) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockProgramRepo) List(ctx context.Context, filter repository.ProgramFilter) ([]domain.Program, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Program), args.Error(1)
}

// MockApplicationRepo
type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, a *domain.Application) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil && a.ID == 0 {
		a.ID = 100
	}
	return args.Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) UpdateDocuments(ctx context.Context, a *domain.Application) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, a *domain.Application) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}
func (m *MockApplicationRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Application, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) List(ctx context.Context, filter repository.ApplicationFilter) ([]domain.Application, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Application), args.Error(1)
}

// MockDocumentTypeRepo
type MockDocumentTypeRepo struct {
	mock.Mock
}

func (m *MockDocumentTypeRepo) GetByID(ctx context.Context, id int32) (*domain.DocumentType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentType), args.Error(1)
}
func (m *MockDocumentTypeRepo) List(ctx context.Context, filter repository.DocumentTypeFilter) ([]domain.DocumentType, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.DocumentType), args.Error(1)
}

// MockDocumentRequestRepo
type MockDocumentRequestRepo struct {
	mock.Mock
}

func (m *MockDocumentRequestRepo) Create(ctx context.Context, r *domain.DocumentRequest) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil && r.ID == 0 {
		r.ID = 42
	}
	return args.Error(0)
}
func (m *MockDocumentRequestRepo) GetByID(ctx context.Context, id int32) (*domain.DocumentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequest), args.Error(1)
}
func (m *MockDocumentRequestRepo) UpdateRequirements(ctx context.Context, r *domain.DocumentRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockDocumentRequestRepo) UpdateStatus(ctx context.Context, r *domain.DocumentRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
func (m *MockDocumentRequestRepo) ListByUser(ctx context.Context, userID int32) ([]domain.DocumentRequest, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.DocumentRequest), args.Error(1)
}
func (m *MockDocumentRequestRepo) List(ctx context.Context, filter repository.DocumentRequestFilter) ([]domain.DocumentRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.DocumentRequest), args.Error(1)
}

// MockSpecialStatusRepo
type MockSpecialStatusRepo struct {
	mock.Mock
}

func (m *MockSpecialStatusRepo) Create(ctx context.Context, s *domain.SpecialStatus) error {
	args := m.Called(ctx, s)
	if args.Error(0) == nil && s.ID == 0 {
		s.ID = 7
	}
	return args.Error(0)
}
func (m *MockSpecialStatusRepo) GetByID(ctx context.Context, id int32) (*domain.SpecialStatus, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusRepo) Update(ctx context.Context, s *domain.SpecialStatus) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
func (m *MockSpecialStatusRepo) ExistsActiveOrPending(ctx context.Context, userID int32, t domain.SpecialStatusType, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, t, now)
	return args.Bool(0), args.Error(1)
}
func (m *MockSpecialStatusRepo) ListByUser(ctx context.Context, userID int32) ([]domain.SpecialStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusRepo) ListActiveByUser(ctx context.Context, userID int32, now time.Time) ([]domain.SpecialStatus, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).([]domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusRepo) ExpireDue(ctx context.Context, now time.Time) ([]domain.SpecialStatus, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.SpecialStatus), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockStorage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}
func (m *MockStorage) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, userID int32, title, message string, attrs map[string]string) error {
	args := m.Called(ctx, userID, title, message, attrs)
	return args.Error(0)
}
func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, notificationID int32) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

// MockSpecialStatusService
type MockSpecialStatusService struct {
	mock.Mock
}

func (m *MockSpecialStatusService) Apply(ctx context.Context, userID int32, in service.SpecialStatusInput) (*domain.SpecialStatus, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusService) Renew(ctx context.Context, userID, priorID int32, in service.SpecialStatusInput) (*domain.SpecialStatus, error) {
	args := m.Called(ctx, userID, priorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusService) Approve(ctx context.Context, actor *domain.User, id int32, expiresAt *time.Time) (*domain.SpecialStatus, error) {
	args := m.Called(ctx, actor, id, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusService) Reject(ctx context.Context, actor *domain.User, id int32, reason string) (*domain.SpecialStatus, error) {
	args := m.Called(ctx, actor, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusService) ListMine(ctx context.Context, userID int32) ([]domain.SpecialStatus, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.SpecialStatus), args.Error(1)
}
func (m *MockSpecialStatusService) ActiveTypes(ctx context.Context, userID int32, now time.Time) (fees.StatusSet, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fees.StatusSet), args.Error(1)
}
func (m *MockSpecialStatusService) ExpireDue(ctx context.Context, now time.Time) ([]domain.SpecialStatus, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.SpecialStatus), args.Error(1)
}

// MockEmailSender
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, to, toName, subject, body string) error {
	args := m.Called(ctx, to, toName, subject, body)
	return args.Error(0)
}

// MockPushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	args := m.Called(ctx, token, title, body, data)
	return args.Error(0)
}
