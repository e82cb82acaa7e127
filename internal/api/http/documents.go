package http

import (
	"encoding/json"
	"net/http"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/fees"
	"munlink-backend/internal/service"

	"github.com/shopspring/decimal"
)

type submitDocumentRequest struct {
	DocumentTypeID         int32    `json:"document_type_id" validate:"required,gt=0"`
	BrowsingMunicipalityID *int32   `json:"browsing_municipality_id" validate:"omitempty,gt=0"`
	DeliveryMethod         string   `json:"delivery_method" validate:"required,oneof=digital pickup"`
	PickupLocation         string   `json:"pickup_location" validate:"omitempty,oneof=municipal barangay"`
	PurposeType            string   `json:"purpose_type" validate:"required"`
	PurposeOther           string   `json:"purpose_other" validate:"max=500"`
	BusinessType           string   `json:"business_type" validate:"max=100"`
	CivilStatus            string   `json:"civil_status" validate:"required"`
	Age                    *int32   `json:"age" validate:"omitempty,gte=0,lte=150"`
	Remarks                string   `json:"remarks" validate:"max=2000"`
	ConsentAcknowledged    bool     `json:"consent_acknowledged"`
	PendingLabels          []string `json:"pending_labels" validate:"omitempty,max=20,dive,required,max=200"`
}

type feePreviewRequest struct {
	DocumentTypeID        int32  `json:"document_type_id" validate:"required,gt=0"`
	PurposeType           string `json:"purpose_type" validate:"required"`
	BusinessType          string `json:"business_type" validate:"max=100"`
	RequirementsSubmitted bool   `json:"requirements_submitted"`
}

type statusUpdateRequest struct {
	Status    string `json:"status" validate:"required,oneof=processing ready_for_pickup completed rejected"`
	Reason    string `json:"reason" validate:"max=1000"`
	ClaimCode string `json:"claim_code" validate:"omitempty,len=6,numeric"`
}

// money renders an amount with two decimals as a JSON number, so a preview
// and the stored request print identically.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

type feeCalculationView struct {
	OriginalFee    json.Number `json:"original_fee"`
	FinalFee       json.Number `json:"final_fee"`
	ExemptionType  string      `json:"exemption_type,omitempty"`
	ExemptionLabel string      `json:"exemption_label,omitempty"`
}

func feeView(c fees.Calculation) feeCalculationView {
	return feeCalculationView{
		OriginalFee:    money(c.OriginalFee),
		FinalFee:       money(c.FinalFee),
		ExemptionType:  c.ExemptionType,
		ExemptionLabel: c.Label(),
	}
}

type documentRequestView struct {
	*domain.DocumentRequest
	OriginalFee    json.Number        `json:"original_fee"`
	FinalFee       json.Number        `json:"final_fee"`
	FeeCalculation feeCalculationView `json:"fee_calculation"`
	UploadError    *uploadErrorBody   `json:"upload_error,omitempty"`
}

func documentRequestResponse(req *domain.DocumentRequest, uploadErr *uploadErrorBody) documentRequestView {
	calc := fees.Calculation{OriginalFee: req.OriginalFee, FinalFee: req.FinalFee, ExemptionType: req.ExemptionType}
	return documentRequestView{
		DocumentRequest: req,
		OriginalFee:     money(req.OriginalFee),
		FinalFee:        money(req.FinalFee),
		FeeCalculation:  feeView(calc),
		UploadError:     uploadErr,
	}
}

func documentRequestList(reqs []domain.DocumentRequest) []documentRequestView {
	out := make([]documentRequestView, 0, len(reqs))
	for i := range reqs {
		out = append(out, documentRequestResponse(&reqs[i], nil))
	}
	return out
}

type documentTypeView struct {
	*domain.DocumentType
	Fee      json.Number            `json:"fee"`
	FeeTiers map[string]json.Number `json:"fee_tiers,omitempty"`
}

func (s *Server) listDocumentTypes(w http.ResponseWriter, r *http.Request) {
	muni, err := queryID(r, "municipality_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	brgy, err := queryID(r, "barangay_id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	docs, err := s.svc.DocumentTypes.List(r.Context(), muni, brgy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]documentTypeView, 0, len(docs))
	for i := range docs {
		v := documentTypeView{DocumentType: &docs[i], Fee: money(docs[i].Fee)}
		if docs[i].HasFeeTiers() {
			v.FeeTiers = make(map[string]json.Number, len(docs[i].FeeTiers))
			for k, amount := range docs[i].FeeTiers {
				v.FeeTiers[k] = money(amount)
			}
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_types": out})
}

func (s *Server) previewFee(w http.ResponseWriter, r *http.Request) {
	var req feePreviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	calc, err := s.svc.DocumentRequests.PreviewFee(r.Context(), ActorFromContext(r.Context()).ID, service.FeePreviewInput{
		DocumentTypeID:        req.DocumentTypeID,
		PurposeType:           domain.PurposeType(req.PurposeType),
		BusinessType:          req.BusinessType,
		RequirementsSubmitted: req.RequirementsSubmitted,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"fee_calculation": feeView(calc)})
}

func (s *Server) submitDocumentRequest(w http.ResponseWriter, r *http.Request) {
	var req submitDocumentRequest
	files, err := decodeSubmission(w, r, &req, s.opts.Uploads)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	created, err := s.svc.DocumentRequests.Submit(r.Context(), ActorFromContext(r.Context()).ID, service.DocumentRequestInput{
		DocumentTypeID:         req.DocumentTypeID,
		BrowsingMunicipalityID: req.BrowsingMunicipalityID,
		DeliveryMethod:         domain.DeliveryMethod(req.DeliveryMethod),
		PickupLocation:         domain.PickupLocation(req.PickupLocation),
		PurposeType:            domain.PurposeType(req.PurposeType),
		PurposeOther:           req.PurposeOther,
		BusinessType:           req.BusinessType,
		CivilStatus:            domain.CivilStatus(req.CivilStatus),
		Age:                    req.Age,
		Remarks:                req.Remarks,
		ConsentAcknowledged:    req.ConsentAcknowledged,
		PendingLabels:          req.PendingLabels,
		Files:                  files,
	})
	uploadErr, err := splitUploadError(r, err)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, documentRequestResponse(created, uploadErr))
}

func (s *Server) uploadDocumentRequirements(w http.ResponseWriter, r *http.Request) {
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
	updated, err := s.svc.DocumentRequests.UploadRequirements(r.Context(), ActorFromContext(r.Context()).ID, id, files)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentRequestResponse(updated, nil))
}

func (s *Server) listMyDocumentRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.svc.DocumentRequests.ListMine(r.Context(), ActorFromContext(r.Context()).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_requests": documentRequestList(reqs)})
}

func (s *Server) getDocumentRequest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := s.svc.DocumentRequests.Get(r.Context(), ActorFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentRequestResponse(req, nil))
}

func (s *Server) adminListDocumentRequests(w http.ResponseWriter, r *http.Request) {
	status := domain.DocumentRequestStatus(r.URL.Query().Get("status"))
	reqs, err := s.svc.DocumentRequests.ListForAdmin(r.Context(), ActorFromContext(r.Context()), status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_requests": documentRequestList(reqs)})
}

func (s *Server) updateDocumentRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var req statusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := s.svc.DocumentRequests.UpdateStatus(r.Context(), ActorFromContext(r.Context()), id, service.StatusUpdate{
		Status:    domain.DocumentRequestStatus(req.Status),
		Reason:    req.Reason,
		ClaimCode: req.ClaimCode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentRequestResponse(updated, nil))
}
