package http

import (
	"net/http"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/service"
)

type specialStatusRequest struct {
	StatusType     string     `json:"status_type" validate:"omitempty,oneof=student pwd senior"`
	SchoolName     string     `json:"school_name" validate:"max=200"`
	SemesterStart  *time.Time `json:"semester_start"`
	SemesterEnd    *time.Time `json:"semester_end"`
	DisabilityType string     `json:"disability_type" validate:"max=100"`
	IDNumber       string     `json:"id_number" validate:"max=100"`
}

type approveStatusRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

func (req specialStatusRequest) input(files []domain.FileUpload) service.SpecialStatusInput {
	in := service.SpecialStatusInput{
		StatusType:     domain.SpecialStatusType(req.StatusType),
		SchoolName:     req.SchoolName,
		SemesterStart:  req.SemesterStart,
		SemesterEnd:    req.SemesterEnd,
		DisabilityType: req.DisabilityType,
		IDNumber:       req.IDNumber,
	}
	if len(files) > 0 {
		in.Document = &files[0]
	}
	return in
}

func (s *Server) applySpecialStatus(w http.ResponseWriter, r *http.Request) {
	var req specialStatusRequest
	files, err := decodeSubmission(w, r, &req, s.opts.Uploads)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if req.StatusType == "" {
		writeServiceError(w, r, domain.NewValidationError("status_type", "required", "status_type is required"))
		return
	}
	st, err := s.svc.SpecialStatuses.Apply(r.Context(), ActorFromContext(r.Context()).ID, req.input(files))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// renewSpecialStatus accepts an empty body; unset fields are copied from the
// prior record.
func (s *Server) renewSpecialStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req specialStatusRequest
	var files []domain.FileUpload
	if r.ContentLength != 0 {
		if files, err = decodeSubmission(w, r, &req, s.opts.Uploads); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	st, err := s.svc.SpecialStatuses.Renew(r.Context(), ActorFromContext(r.Context()).ID, id, req.input(files))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) listMySpecialStatuses(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.SpecialStatuses.ListMine(r.Context(), ActorFromContext(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []domain.SpecialStatus{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"special_statuses": list})
}

func (s *Server) approveSpecialStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req approveStatusRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}
	}
	st, err := s.svc.SpecialStatuses.Approve(r.Context(), ActorFromContext(r.Context()), id, req.ExpiresAt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) rejectSpecialStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req rejectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	st, err := s.svc.SpecialStatuses.Reject(r.Context(), ActorFromContext(r.Context()), id, req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
