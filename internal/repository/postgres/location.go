package postgres

import (
	"context"
	"database/sql"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/repository"
)

type locationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) repository.LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) ListMunicipalities(ctx context.Context) ([]domain.Municipality, error) {
	query := `SELECT id, province_id, name, slug FROM municipalities ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Municipality
	for rows.Next() {
		var m domain.Municipality
		if err := rows.Scan(&m.ID, &m.ProvinceID, &m.Name, &m.Slug); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *locationRepository) ListBarangays(ctx context.Context) ([]domain.Barangay, error) {
	query := `SELECT id, municipality_id, name, slug FROM barangays ORDER BY municipality_id, name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Barangay
	for rows.Next() {
		var b domain.Barangay
		if err := rows.Scan(&b.ID, &b.MunicipalityID, &b.Name, &b.Slug); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
