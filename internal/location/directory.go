package location

import (
	"fmt"
	"sort"

	"munlink-backend/internal/domain"
)

// ZambalesMunicipalities lists the municipalities served, in the order used
// by the seed data.
var ZambalesMunicipalities = []string{
	"Botolan", "Cabangan", "Candelaria", "Castillejos", "Iba", "Masinloc", "Palauig",
	"San Antonio", "San Felipe", "San Marcelino", "San Narciso", "Santa Cruz", "Subic",
}

// Directory is an immutable province -> municipality -> barangay lookup.
type Directory struct {
	municipalities map[int32]domain.Municipality
	barangays      map[int32]domain.Barangay
	byMunicipality map[int32][]domain.Barangay
	ordered        []domain.Municipality
}

// NewDirectory indexes the hierarchy. Every barangay must reference a known
// municipality.
func NewDirectory(municipalities []domain.Municipality, barangays []domain.Barangay) (*Directory, error) {
	d := &Directory{
		municipalities: make(map[int32]domain.Municipality, len(municipalities)),
		barangays:      make(map[int32]domain.Barangay, len(barangays)),
		byMunicipality: make(map[int32][]domain.Barangay),
	}

	for _, m := range municipalities {
		d.municipalities[m.ID] = m
		d.ordered = append(d.ordered, m)
	}
	sort.Slice(d.ordered, func(i, j int) bool { return d.ordered[i].Name < d.ordered[j].Name })

	for _, b := range barangays {
		if _, ok := d.municipalities[b.MunicipalityID]; !ok {
			return nil, fmt.Errorf("barangay %d references unknown municipality %d", b.ID, b.MunicipalityID)
		}
		d.barangays[b.ID] = b
		d.byMunicipality[b.MunicipalityID] = append(d.byMunicipality[b.MunicipalityID], b)
	}
	for id := range d.byMunicipality {
		list := d.byMunicipality[id]
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	return d, nil
}

func (d *Directory) Municipality(id int32) (*domain.Municipality, bool) {
	m, ok := d.municipalities[id]
	if !ok {
		return nil, false
	}
	return &m, true
}

// MunicipalityOf resolves an optional id; nil or unknown ids yield nil.
func (d *Directory) MunicipalityOf(id *int32) *domain.Municipality {
	if id == nil {
		return nil
	}
	m, _ := d.Municipality(*id)
	return m
}

func (d *Directory) Barangay(id int32) (*domain.Barangay, bool) {
	b, ok := d.barangays[id]
	if !ok {
		return nil, false
	}
	return &b, true
}

func (d *Directory) Municipalities() []domain.Municipality {
	return append([]domain.Municipality(nil), d.ordered...)
}

func (d *Directory) BarangaysOf(municipalityID int32) []domain.Barangay {
	return append([]domain.Barangay(nil), d.byMunicipality[municipalityID]...)
}

func (d *Directory) BarangayBelongsTo(barangayID, municipalityID int32) bool {
	b, ok := d.barangays[barangayID]
	return ok && b.MunicipalityID == municipalityID
}
