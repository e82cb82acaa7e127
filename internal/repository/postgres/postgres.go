package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.LocationRepository
	repository.ProgramRepository
	repository.ApplicationRepository
	repository.DocumentTypeRepository
	repository.DocumentRequestRepository
	repository.SpecialStatusRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                        db,
		UserRepository:            NewUserRepository(db),
		LocationRepository:        NewLocationRepository(db),
		ProgramRepository:         NewProgramRepository(db),
		ApplicationRepository:     NewApplicationRepository(db),
		DocumentTypeRepository:    NewDocumentTypeRepository(db),
		DocumentRequestRepository: NewDocumentRequestRepository(db),
		SpecialStatusRepository:   NewSpecialStatusRepository(db),
		NotificationRepository:    NewNotificationRepository(db),
	}
}

// Ping checks database connectivity for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const uniqueViolation = "23505"

// mapError translates driver errors into domain sentinels.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("duplicate %s (%s): %w", what, pqErr.Constraint, domain.ErrConflict)
	}
	return err
}

// jsonb marshals v for a JSONB column; nil values are stored as NULL.
func jsonb(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return b, nil
}

func unjsonb(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
