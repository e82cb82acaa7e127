// Package http is the REST surface of MunLink. Routes are named after their
// entry in config.EndpointSecurityConfig, which decides their security level.
package http

import (
	"context"
	"net/http"

	"munlink-backend/internal/location"
	"munlink-backend/internal/metrics"
	"munlink-backend/internal/security"
	"munlink-backend/internal/service"
	"munlink-backend/internal/storage"

	"github.com/gorilla/mux"
)

type Services struct {
	Programs         service.ProgramService
	DocumentTypes    service.DocumentTypeService
	DocumentRequests service.DocumentRequestService
	Applications     service.ApplicationService
	SpecialStatuses  service.SpecialStatusService
	Notifications    service.NotificationService
}

type Options struct {
	Tokens    security.TokenManager
	Directory *location.Directory
	Metrics   *metrics.Metrics

	// MetricsHandler is mounted at MetricsPath when set
	MetricsHandler http.Handler
	MetricsPath    string

	// Health reports whether the service can reach its dependencies
	Health func(ctx context.Context) error

	// MockStorage mounts the local presigned URL routes when non-nil
	MockStorage *storage.MockStorageService

	Uploads UploadLimits
}

type Server struct {
	svc  Services
	opts Options
}

// NewRouter wires every route behind request id, panic recovery, logging and
// authentication middleware.
func NewRouter(svc Services, opts Options) *mux.Router {
	s := &Server{svc: svc, opts: opts}
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	})
	r.Use(requestID, recoverPanics, observe(opts.Metrics), authenticate(opts.Tokens))

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet).Name("Health")
	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, opts.MetricsHandler).Methods(http.MethodGet).Name("Metrics")
	}
	r.HandleFunc("/locations", s.listLocations).Methods(http.MethodGet).Name("ListLocations")

	// Programs and applications
	r.HandleFunc("/programs", s.listPrograms).Methods(http.MethodGet).Name("ListPrograms")
	r.HandleFunc("/programs", s.createProgram).Methods(http.MethodPost).Name("CreateProgram")
	r.HandleFunc("/programs/{id:[0-9]+}", s.getProgram).Methods(http.MethodGet).Name("GetProgram")
	r.HandleFunc("/programs/{id:[0-9]+}", s.updateProgram).Methods(http.MethodPut).Name("UpdateProgram")
	r.HandleFunc("/programs/{id:[0-9]+}/retire", s.retireProgram).Methods(http.MethodPost).Name("RetireProgram")
	r.HandleFunc("/programs/{id:[0-9]+}/eligibility", s.evaluateEligibility).Methods(http.MethodGet).Name("EvaluateEligibility")

	r.HandleFunc("/applications", s.submitApplication).Methods(http.MethodPost).Name("SubmitApplication")
	r.HandleFunc("/applications", s.listMyApplications).Methods(http.MethodGet).Name("ListMyApplications")
	r.HandleFunc("/applications/{id:[0-9]+}", s.getApplication).Methods(http.MethodGet).Name("GetApplication")
	r.HandleFunc("/applications/{id:[0-9]+}/documents", s.uploadApplicationDocuments).Methods(http.MethodPost).Name("UploadApplicationDocuments")
	r.HandleFunc("/admin/applications", s.adminListApplications).Methods(http.MethodGet).Name("AdminListApplications")
	r.HandleFunc("/admin/applications/{id:[0-9]+}/review", s.reviewApplication).Methods(http.MethodPost).Name("ReviewApplication")
	r.HandleFunc("/admin/applications/{id:[0-9]+}/approve", s.approveApplication).Methods(http.MethodPost).Name("ApproveApplication")
	r.HandleFunc("/admin/applications/{id:[0-9]+}/reject", s.rejectApplication).Methods(http.MethodPost).Name("RejectApplication")

	// Documents
	r.HandleFunc("/document-types", s.listDocumentTypes).Methods(http.MethodGet).Name("ListDocumentTypes")
	r.HandleFunc("/fee-preview", s.previewFee).Methods(http.MethodPost).Name("PreviewFee")
	r.HandleFunc("/document-requests", s.submitDocumentRequest).Methods(http.MethodPost).Name("SubmitDocumentRequest")
	r.HandleFunc("/document-requests", s.listMyDocumentRequests).Methods(http.MethodGet).Name("ListMyDocumentRequests")
	r.HandleFunc("/document-requests/{id:[0-9]+}", s.getDocumentRequest).Methods(http.MethodGet).Name("GetDocumentRequest")
	r.HandleFunc("/document-requests/{id:[0-9]+}/requirements", s.uploadDocumentRequirements).Methods(http.MethodPost).Name("UploadDocumentRequirements")
	r.HandleFunc("/admin/document-requests", s.adminListDocumentRequests).Methods(http.MethodGet).Name("AdminListDocumentRequests")
	r.HandleFunc("/admin/document-requests/{id:[0-9]+}/status", s.updateDocumentRequestStatus).Methods(http.MethodPost).Name("UpdateDocumentRequestStatus")

	// Special statuses
	r.HandleFunc("/special-statuses", s.applySpecialStatus).Methods(http.MethodPost).Name("ApplySpecialStatus")
	r.HandleFunc("/special-statuses", s.listMySpecialStatuses).Methods(http.MethodGet).Name("ListMySpecialStatuses")
	r.HandleFunc("/special-statuses/{id:[0-9]+}/renew", s.renewSpecialStatus).Methods(http.MethodPost).Name("RenewSpecialStatus")
	r.HandleFunc("/admin/special-statuses/{id:[0-9]+}/approve", s.approveSpecialStatus).Methods(http.MethodPost).Name("ApproveSpecialStatus")
	r.HandleFunc("/admin/special-statuses/{id:[0-9]+}/reject", s.rejectSpecialStatus).Methods(http.MethodPost).Name("RejectSpecialStatus")

	// Notifications
	r.HandleFunc("/notifications", s.listNotifications).Methods(http.MethodGet).Name("ListNotifications")
	r.HandleFunc("/notifications/{id:[0-9]+}/read", s.markNotificationRead).Methods(http.MethodPost).Name("MarkNotificationRead")

	if opts.MockStorage != nil {
		registerMockStorageRoutes(r, NewMockStorageHandler(opts.MockStorage, opts.Uploads.AllowedTypes, opts.Uploads.MaxBytes))
	}
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type municipalityView struct {
	ID        int32          `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Barangays []barangayView `json:"barangays"`
}

type barangayView struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (s *Server) listLocations(w http.ResponseWriter, r *http.Request) {
	var out []municipalityView
	if s.opts.Directory != nil {
		for _, m := range s.opts.Directory.Municipalities() {
			v := municipalityView{ID: m.ID, Name: m.Name, Slug: m.Slug, Barangays: []barangayView{}}
			for _, b := range s.opts.Directory.BarangaysOf(m.ID) {
				v.Barangays = append(v.Barangays, barangayView{ID: b.ID, Name: b.Name, Slug: b.Slug})
			}
			out = append(out, v)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"municipalities": out})
}
