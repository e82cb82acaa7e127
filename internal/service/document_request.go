package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"munlink-backend/internal/domain"
	"munlink-backend/internal/fees"
	"munlink-backend/internal/location"
	"munlink-backend/internal/logger"
	"munlink-backend/internal/metrics"
	"munlink-backend/internal/repository"
	"munlink-backend/internal/security"
	"munlink-backend/internal/storage"
	"munlink-backend/internal/utils"
	"munlink-backend/internal/workflow"
)

const kindDocumentRequest = "document_request"

type documentRequestService struct {
	requestRepo repository.DocumentRequestRepository
	docTypeRepo repository.DocumentTypeRepository
	userRepo    repository.UserRepository
	statuses    SpecialStatusService
	directory   *location.Directory
	storage     storage.StorageInterface
	notifier    NotificationService
	metrics     *metrics.Metrics
	loc         *time.Location
}

func NewDocumentRequestService(
	requestRepo repository.DocumentRequestRepository,
	docTypeRepo repository.DocumentTypeRepository,
	userRepo repository.UserRepository,
	statuses SpecialStatusService,
	directory *location.Directory,
	store storage.StorageInterface,
	notifier NotificationService,
	m *metrics.Metrics,
	loc *time.Location,
) DocumentRequestService {
	if loc == nil {
		loc = time.UTC
	}
	return &documentRequestService{
		requestRepo: requestRepo,
		docTypeRepo: docTypeRepo,
		userRepo:    userRepo,
		statuses:    statuses,
		directory:   directory,
		storage:     store,
		notifier:    notifier,
		metrics:     m,
		loc:         loc,
	}
}

func documentRequestRetryPath(id int32) string {
	return fmt.Sprintf("/document-requests/%d/requirements", id)
}

func (s *documentRequestService) Submit(ctx context.Context, userID int32, in DocumentRequestInput) (*domain.DocumentRequest, error) {
	logger.EnterMethod("documentRequestService.Submit", "userID", userID, "documentTypeID", in.DocumentTypeID)
	now := time.Now().In(s.loc)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		logger.ExitMethodWithError("documentRequestService.Submit", err, "reason", "user lookup failed")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	doc, err := s.docTypeRepo.GetByID(ctx, in.DocumentTypeID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.ExitMethodWithError("documentRequestService.Submit", err, "reason", "document type lookup failed")
		return nil, fmt.Errorf("failed to load document type: %w", err)
	}

	draft := workflow.DocumentRequestDraft{
		DocumentType:           doc,
		RegisteredMunicipality: s.directory.MunicipalityOf(user.MunicipalityID),
		RegisteredBarangayID:   user.BarangayID,
		BrowsingMunicipality:   s.directory.MunicipalityOf(in.BrowsingMunicipalityID),
		PurposeType:            in.PurposeType,
		PurposeOther:           in.PurposeOther,
		CivilStatus:            in.CivilStatus,
		BusinessType:           in.BusinessType,
		DeliveryMethod:         in.DeliveryMethod,
		PickupLocation:         in.PickupLocation,
		AttachedRequirements:   countLabels(in.Files, in.PendingLabels),
		ConsentAcknowledged:    in.ConsentAcknowledged,
	}
	violations := workflow.CheckDocumentRequest(draft)
	if doc != nil {
		violations = append(violations, unknownRequirementViolations(doc, in.Files)...)
	}
	if len(violations) > 0 {
		s.metrics.IncrementSubmission(kindDocumentRequest, "rejected")
		logger.ExitMethod("documentRequestService.Submit", "violations", len(violations))
		return nil, &domain.ValidationError{Violations: violations}
	}

	active, err := s.statuses.ActiveTypes(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load special statuses: %w", err)
	}

	// Nothing has reached storage yet, so exemptions wait for the upload
	// unless the document has no requirements at all.
	ready := len(doc.Requirements) == 0
	calc := fees.Calculate(doc, fees.Input{
		PurposeType:           in.PurposeType,
		BusinessType:          in.BusinessType,
		RequirementsSubmitted: ready,
		SpecialStatuses:       active,
	})

	number, err := utils.ReferenceNumber(utils.PrefixDocumentRequest, now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate request number: %w", err)
	}

	req := &domain.DocumentRequest{
		RequestNumber:         number,
		UserID:                userID,
		DocumentTypeID:        doc.ID,
		MunicipalityID:        *user.MunicipalityID,
		DeliveryMethod:        in.DeliveryMethod,
		PurposeType:           in.PurposeType,
		PurposeOther:          strings.TrimSpace(in.PurposeOther),
		BusinessType:          in.BusinessType,
		CivilStatus:           in.CivilStatus,
		Age:                   in.Age,
		Remarks:               strings.TrimSpace(in.Remarks),
		RequirementsSubmitted: ready,
		RequirementFiles:      map[string]string{},
		DocumentsPending:      !ready,
		OriginalFee:           calc.OriginalFee,
		FinalFee:              calc.FinalFee,
		ExemptionType:         calc.ExemptionType,
		Status:                domain.DocumentRequestPending,
	}
	if doc.AuthorityLevel == domain.AuthorityBarangay {
		req.BarangayID = doc.BarangayID
	}
	if in.DeliveryMethod == domain.DeliveryPickup {
		pickup := in.PickupLocation
		req.PickupLocation = &pickup
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		s.metrics.IncrementSubmission(kindDocumentRequest, "failed")
		logger.ExitMethodWithError("documentRequestService.Submit", err, "number", number)
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.NewSubmissionError("This looks like a duplicate request. Check your existing requests before submitting again.", err)
		}
		return nil, domain.NewSubmissionError("", err)
	}
	s.metrics.IncrementSubmission(kindDocumentRequest, "created")

	notify(ctx, s.notifier, userID, "Document request received",
		fmt.Sprintf("Your request %s for %s was received.", req.RequestNumber, doc.Name),
		map[string]string{"document_request_id": fmt.Sprint(req.ID), "request_number": req.RequestNumber})

	if len(in.Files) > 0 {
		if err := s.storeRequirements(ctx, req, doc, in.Files, active); err != nil {
			logger.ExitMethodWithError("documentRequestService.Submit", err, "requestID", req.ID)
			return req, &domain.UploadError{
				RecordID:     req.ID,
				RecordNumber: req.RequestNumber,
				RetryPath:    documentRequestRetryPath(req.ID),
				Err:          err,
			}
		}
	}

	logger.ExitMethod("documentRequestService.Submit", "requestID", req.ID, "number", req.RequestNumber)
	return req, nil
}

// UploadRequirements is the retry path after a failed upload. Keys are
// deterministic so repeating a call overwrites the same objects.
func (s *documentRequestService) UploadRequirements(ctx context.Context, userID, requestID int32, files []domain.FileUpload) (*domain.DocumentRequest, error) {
	logger.EnterMethod("documentRequestService.UploadRequirements", "userID", userID, "requestID", requestID, "files", len(files))

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, fmt.Errorf("document request %d: %w", requestID, domain.ErrForbidden)
	}
	if req.Status.IsTerminal() {
		return nil, fmt.Errorf("document request %s is %s: %w", req.RequestNumber, req.Status, domain.ErrInvalidTransition)
	}
	if len(files) == 0 {
		return nil, domain.NewValidationError("files", "files_required", "Choose at least one file to upload")
	}

	doc, err := s.docTypeRepo.GetByID(ctx, req.DocumentTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load document type: %w", err)
	}
	if v := unknownRequirementViolations(doc, files); len(v) > 0 {
		return nil, &domain.ValidationError{Violations: v}
	}

	active, err := s.statuses.ActiveTypes(ctx, userID, time.Now().In(s.loc))
	if err != nil {
		return nil, fmt.Errorf("failed to load special statuses: %w", err)
	}

	if err := s.storeRequirements(ctx, req, doc, files, active); err != nil {
		logger.ExitMethodWithError("documentRequestService.UploadRequirements", err, "requestID", requestID)
		return req, &domain.UploadError{
			RecordID:     req.ID,
			RecordNumber: req.RequestNumber,
			RetryPath:    documentRequestRetryPath(req.ID),
			Err:          err,
		}
	}
	logger.ExitMethod("documentRequestService.UploadRequirements", "requestID", requestID, "pending", req.DocumentsPending)
	return req, nil
}

// storeRequirements uploads files, records the stored keys and, once every
// requirement has a file, recomputes the fee with exemptions unlocked.
func (s *documentRequestService) storeRequirements(ctx context.Context, req *domain.DocumentRequest, doc *domain.DocumentType, files []domain.FileUpload, active fees.StatusSet) error {
	stored, uploadErr := uploadFiles(ctx, s.storage, storage.PrefixDocumentRequests, req.ID, files)
	if uploadErr != nil {
		s.metrics.IncrementUploadFailure(kindDocumentRequest)
	}
	if len(stored) == 0 {
		return uploadErr
	}

	if req.RequirementFiles == nil {
		req.RequirementFiles = map[string]string{}
	}
	for _, f := range stored {
		req.RequirementFiles[f.Label] = f.Key
	}

	attached := make(map[string]int, len(req.RequirementFiles))
	for label := range req.RequirementFiles {
		attached[label] = 1
	}
	ready := workflow.RequirementsReady(doc.Requirements, attached)
	req.RequirementsSubmitted = ready
	req.DocumentsPending = !ready

	calc := fees.Calculate(doc, fees.Input{
		PurposeType:           req.PurposeType,
		BusinessType:          req.BusinessType,
		RequirementsSubmitted: ready,
		SpecialStatuses:       active,
	})
	req.OriginalFee, req.FinalFee, req.ExemptionType = calc.OriginalFee, calc.FinalFee, calc.ExemptionType
	if ready && calc.Exempted() {
		s.metrics.IncrementFeeExemption(calc.ExemptionType)
	}

	if err := s.requestRepo.UpdateRequirements(ctx, req); err != nil {
		return errors.Join(uploadErr, fmt.Errorf("failed to record uploaded files: %w", err))
	}
	return uploadErr
}

func unknownRequirementViolations(doc *domain.DocumentType, files []domain.FileUpload) []domain.Violation {
	var unknown []string
	for _, f := range files {
		label := fileLabel(f)
		if !slices.Contains(doc.Requirements, label) && !slices.Contains(unknown, label) {
			unknown = append(unknown, label)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	return []domain.Violation{{
		Field:   "files",
		Rule:    "unknown_requirement",
		Message: fmt.Sprintf("%s does not ask for: %s", doc.Name, strings.Join(unknown, ", ")),
	}}
}

func (s *documentRequestService) PreviewFee(ctx context.Context, userID int32, in FeePreviewInput) (fees.Calculation, error) {
	doc, err := s.docTypeRepo.GetByID(ctx, in.DocumentTypeID)
	if err != nil {
		return fees.Calculation{}, err
	}
	active, err := s.statuses.ActiveTypes(ctx, userID, time.Now().In(s.loc))
	if err != nil {
		return fees.Calculation{}, fmt.Errorf("failed to load special statuses: %w", err)
	}
	return fees.Calculate(doc, fees.Input{
		PurposeType:           in.PurposeType,
		BusinessType:          in.BusinessType,
		RequirementsSubmitted: in.RequirementsSubmitted,
		SpecialStatuses:       active,
	}), nil
}

func (s *documentRequestService) Get(ctx context.Context, actor *domain.User, id int32) (*domain.DocumentRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID == actor.ID || location.CanAdminister(actor, &req.MunicipalityID, req.BarangayID) {
		return req, nil
	}
	return nil, fmt.Errorf("document request %d: %w", id, domain.ErrForbidden)
}

func (s *documentRequestService) ListMine(ctx context.Context, userID int32) ([]domain.DocumentRequest, error) {
	return s.requestRepo.ListByUser(ctx, userID)
}

func (s *documentRequestService) ListForAdmin(ctx context.Context, actor *domain.User, status domain.DocumentRequestStatus) ([]domain.DocumentRequest, error) {
	scope := location.ScopeFor(actor)
	if !actor.Role.IsAdmin() || scope.None {
		return nil, fmt.Errorf("list document requests: %w", domain.ErrForbidden)
	}
	return s.requestRepo.List(ctx, repository.DocumentRequestFilter{
		MunicipalityID: scope.MunicipalityID,
		BarangayID:     scope.BarangayID,
		Status:         status,
	})
}

func (s *documentRequestService) UpdateStatus(ctx context.Context, actor *domain.User, id int32, update StatusUpdate) (*domain.DocumentRequest, error) {
	logger.EnterMethod("documentRequestService.UpdateStatus", "actorID", actor.ID, "requestID", id, "status", update.Status)

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !location.CanAdminister(actor, &req.MunicipalityID, req.BarangayID) {
		return nil, fmt.Errorf("document request %d: %w", id, domain.ErrForbidden)
	}
	if !req.Status.CanTransitionTo(update.Status, req.DeliveryMethod) {
		return nil, fmt.Errorf("cannot move request %s from %s to %s: %w", req.RequestNumber, req.Status, update.Status, domain.ErrInvalidTransition)
	}

	now := time.Now().UTC()
	var claimCode string
	switch update.Status {
	case domain.DocumentRequestProcessing:
		if req.DocumentsPending {
			return nil, domain.NewValidationError("status", "documents_pending", "The resident has not finished uploading the required documents")
		}
	case domain.DocumentRequestRejected:
		reason := strings.TrimSpace(update.Reason)
		if reason == "" {
			return nil, domain.NewValidationError("reason", "reason_required", "A rejection reason is required")
		}
		req.RejectionReason = &reason
	case domain.DocumentRequestReadyForPickup:
		code, err := utils.ClaimCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate claim code: %w", err)
		}
		hash, err := security.HashClaimCode(code)
		if err != nil {
			return nil, err
		}
		claimCode = code
		req.ClaimCodeHash = hash
		req.ReadyAt = &now
	case domain.DocumentRequestCompleted:
		if req.DeliveryMethod == domain.DeliveryPickup {
			if err := security.VerifyClaimCode(req.ClaimCodeHash, strings.TrimSpace(update.ClaimCode)); err != nil {
				return nil, domain.NewValidationError("claim_code", "claim_code_mismatch", "The claim code does not match this request")
			}
		}
		req.CompletedAt = &now
	}

	req.Status = update.Status
	if err := s.requestRepo.UpdateStatus(ctx, req); err != nil {
		logger.ExitMethodWithError("documentRequestService.UpdateStatus", err, "requestID", id)
		return nil, fmt.Errorf("failed to update document request: %w", err)
	}

	title, message := documentRequestNotice(req, claimCode)
	notify(ctx, s.notifier, req.UserID, title, message, map[string]string{
		"document_request_id": fmt.Sprint(req.ID),
		"request_number":      req.RequestNumber,
		"status":              string(req.Status),
	})

	logger.ExitMethod("documentRequestService.UpdateStatus", "requestID", id, "status", req.Status)
	return req, nil
}

func documentRequestNotice(req *domain.DocumentRequest, claimCode string) (string, string) {
	switch req.Status {
	case domain.DocumentRequestProcessing:
		return "Document request in process", fmt.Sprintf("Your request %s is now being processed.", req.RequestNumber)
	case domain.DocumentRequestReadyForPickup:
		where := "the municipal hall"
		if req.PickupLocation != nil && *req.PickupLocation == domain.PickupBarangay {
			where = "your barangay hall"
		}
		return "Document ready for pickup", fmt.Sprintf("Your request %s is ready for pickup at %s. Present claim code %s.", req.RequestNumber, where, claimCode)
	case domain.DocumentRequestCompleted:
		return "Document request completed", fmt.Sprintf("Your request %s is complete.", req.RequestNumber)
	case domain.DocumentRequestRejected:
		reason := ""
		if req.RejectionReason != nil {
			reason = *req.RejectionReason
		}
		return "Document request rejected", fmt.Sprintf("Your request %s was rejected: %s", req.RequestNumber, reason)
	}
	return "Document request updated", fmt.Sprintf("Your request %s is now %s.", req.RequestNumber, req.Status)
}
