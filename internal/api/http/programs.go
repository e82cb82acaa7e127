package http

import (
	"net/http"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/eligibility"
)

type createProgramRequest struct {
	Name                string                      `json:"name" validate:"required,max=200"`
	Code                string                      `json:"code" validate:"required,max=50"`
	ProgramType         string                      `json:"program_type" validate:"omitempty,oneof=general financial educational health livelihood"`
	Description         string                      `json:"description" validate:"max=5000"`
	DurationDays        *int32                      `json:"duration_days" validate:"omitempty,gte=1"`
	MunicipalityID      *int32                      `json:"municipality_id" validate:"omitempty,gt=0"`
	EligibilityCriteria *domain.EligibilityCriteria `json:"eligibility_criteria"`
	Requirements        []string                    `json:"requirements" validate:"omitempty,max=20,dive,required,max=200"`
}

// updateProgramRequest carries name and code only so a changed value can be
// refused; they are never written.
type updateProgramRequest struct {
	Name                string                      `json:"name"`
	Code                string                      `json:"code"`
	ProgramType         string                      `json:"program_type" validate:"omitempty,oneof=general financial educational health livelihood"`
	Description         string                      `json:"description" validate:"max=5000"`
	DurationDays        *int32                      `json:"duration_days" validate:"omitempty,gte=1"`
	MunicipalityID      *int32                      `json:"municipality_id" validate:"omitempty,gt=0"`
	EligibilityCriteria *domain.EligibilityCriteria `json:"eligibility_criteria"`
	Requirements        []string                    `json:"requirements" validate:"omitempty,max=20,dive,required,max=200"`
}

type eligibilityResponse struct {
	eligibility.Result
	Reasons             []string `json:"reasons"`
	RequiresExplanation bool     `json:"requires_explanation"`
}

func (s *Server) listPrograms(w http.ResponseWriter, r *http.Request) {
	muni, err := queryID(r, "municipality_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	programs, err := s.svc.Programs.List(r.Context(), muni)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if programs == nil {
		programs = []domain.Program{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"programs": programs})
}

func (s *Server) getProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := s.svc.Programs.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProgram(w http.ResponseWriter, r *http.Request) {
	var req createProgramRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := s.svc.Programs.Create(r.Context(), ActorFromContext(r.Context()), &domain.Program{
		Name:                req.Name,
		Code:                req.Code,
		Type:                domain.ProgramType(req.ProgramType),
		Description:         req.Description,
		DurationDays:        req.DurationDays,
		MunicipalityID:      req.MunicipalityID,
		EligibilityCriteria: req.EligibilityCriteria,
		Requirements:        req.Requirements,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req updateProgramRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := s.svc.Programs.Update(r.Context(), ActorFromContext(r.Context()), &domain.Program{
		ID:                  id,
		Name:                req.Name,
		Code:                req.Code,
		Type:                domain.ProgramType(req.ProgramType),
		Description:         req.Description,
		DurationDays:        req.DurationDays,
		MunicipalityID:      req.MunicipalityID,
		EligibilityCriteria: req.EligibilityCriteria,
		Requirements:        req.Requirements,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) retireProgram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	p, err := s.svc.Programs.Retire(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) evaluateEligibility(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	res, err := s.svc.Applications.Evaluate(r.Context(), ActorFromContext(r.Context()).ID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	reasons := res.Reasons()
	if reasons == nil {
		reasons = []string{}
	}
	writeJSON(w, http.StatusOK, eligibilityResponse{
		Result:              *res,
		Reasons:             reasons,
		RequiresExplanation: res.RequiresExplanation(),
	})
}
