package location

import "munlink-backend/internal/domain"

// Scope is the slice of the hierarchy a user may administer. Nil fields are
// unrestricted.
type Scope struct {
	MunicipalityID *int32
	BarangayID     *int32
	None           bool
}

// ScopeFor derives the admin scope of a user. Residents administer nothing.
func ScopeFor(u *domain.User) Scope {
	if u == nil {
		return Scope{None: true}
	}
	switch u.Role {
	case domain.RoleSuperAdmin, domain.RoleProvincialAdmin:
		return Scope{}
	case domain.RoleMunicipalAdmin:
		if u.MunicipalityID == nil {
			return Scope{None: true}
		}
		return Scope{MunicipalityID: u.MunicipalityID}
	case domain.RoleBarangayAdmin:
		if u.MunicipalityID == nil || u.BarangayID == nil {
			return Scope{None: true}
		}
		return Scope{MunicipalityID: u.MunicipalityID, BarangayID: u.BarangayID}
	}
	return Scope{None: true}
}

// Covers reports whether a record owned by (municipalityID, barangayID) falls
// inside the scope. A barangay admin covers only records of their barangay;
// municipality-wide records are outside it.
func (s Scope) Covers(municipalityID, barangayID *int32) bool {
	if s.None {
		return false
	}
	if s.MunicipalityID != nil && (municipalityID == nil || *municipalityID != *s.MunicipalityID) {
		return false
	}
	if s.BarangayID != nil && (barangayID == nil || *barangayID != *s.BarangayID) {
		return false
	}
	return true
}

// CanAdminister gates admin transitions on a record.
func CanAdminister(u *domain.User, municipalityID, barangayID *int32) bool {
	return u != nil && u.Role.IsAdmin() && ScopeFor(u).Covers(municipalityID, barangayID)
}

// CanFileIn reports whether a resident may create records for a municipality:
// only their registered one.
func CanFileIn(u *domain.User, municipalityID int32) bool {
	return u != nil && u.MunicipalityID != nil && *u.MunicipalityID == municipalityID
}
