package http

import (
	"net/http"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/service"
)

type submitApplicationRequest struct {
	ProgramID       int32             `json:"program_id" validate:"required,gt=0"`
	ApplicationData map[string]string `json:"application_data" validate:"omitempty,max=50,dive,max=10000"`
	AttachmentCount int               `json:"attachment_count" validate:"gte=0,lte=10"`
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type applicationResponse struct {
	*domain.Application
	UploadError *uploadErrorBody `json:"upload_error,omitempty"`
}

func (s *Server) submitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	files, err := decodeSubmission(w, r, &req, s.opts.Uploads)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app, err := s.svc.Applications.Submit(r.Context(), ActorFromContext(r.Context()).ID, service.ApplicationInput{
		ProgramID:       req.ProgramID,
		ApplicationData: req.ApplicationData,
		AttachmentCount: req.AttachmentCount,
		Files:           files,
	})
	uploadErr, err := splitUploadError(r, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, applicationResponse{Application: app, UploadError: uploadErr})
}

func (s *Server) uploadApplicationDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	files, err := decodeFiles(w, r, s.opts.Uploads)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app, err := s.svc.Applications.UploadDocuments(r.Context(), ActorFromContext(r.Context()).ID, id, files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) listMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.svc.Applications.ListMine(r.Context(), ActorFromContext(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (s *Server) getApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app, err := s.svc.Applications.Get(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) adminListApplications(w http.ResponseWriter, r *http.Request) {
	programID, err := queryID(r, "program_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := domain.ApplicationStatus(r.URL.Query().Get("status"))
	apps, err := s.svc.Applications.ListForAdmin(r.Context(), ActorFromContext(r.Context()), programID, status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (s *Server) reviewApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app, err := s.svc.Applications.StartReview(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) approveApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	app, err := s.svc.Applications.Approve(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) rejectApplication(w http.ResponseWriter, r *http.Request) {
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
	app, err := s.svc.Applications.Reject(r.Context(), ActorFromContext(r.Context()), id, req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
