package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityResident                      // Any valid access token
	SecurityAdmin                         // Access token with an admin role
)

// EndpointSecurityConfig maps named HTTP routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public catalogues
	"ListPrograms":      SecurityPublic,
	"ListDocumentTypes": SecurityPublic,
	"ListLocations":     SecurityPublic,
	"Health":            SecurityPublic,
	"Metrics":           SecurityPublic,
	"MockUpload":        SecurityPublic,
	"MockDownload":      SecurityPublic,

	// Programs and applications
	"GetProgram":                 SecurityPublic,
	"EvaluateEligibility":        SecurityResident,
	"CreateProgram":              SecurityAdmin,
	"UpdateProgram":              SecurityAdmin,
	"RetireProgram":              SecurityAdmin,
	"SubmitApplication":          SecurityResident,
	"UploadApplicationDocuments": SecurityResident,
	"ListMyApplications":         SecurityResident,
	"GetApplication":             SecurityResident,
	"AdminListApplications":      SecurityAdmin,
	"ReviewApplication":          SecurityAdmin,
	"ApproveApplication":         SecurityAdmin,
	"RejectApplication":          SecurityAdmin,

	// Documents
	"SubmitDocumentRequest":       SecurityResident,
	"UploadDocumentRequirements":  SecurityResident,
	"ListMyDocumentRequests":      SecurityResident,
	"GetDocumentRequest":          SecurityResident,
	"PreviewFee":                  SecurityResident,
	"AdminListDocumentRequests":   SecurityAdmin,
	"UpdateDocumentRequestStatus": SecurityAdmin,

	// Special statuses
	"ApplySpecialStatus":    SecurityResident,
	"RenewSpecialStatus":    SecurityResident,
	"ListMySpecialStatuses": SecurityResident,
	"ApproveSpecialStatus":  SecurityAdmin,
	"RejectSpecialStatus":   SecurityAdmin,

	// Notifications
	"ListNotifications":    SecurityResident,
	"MarkNotificationRead": SecurityResident,
}

// GetSecurityLevel returns the security level for a given route name
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
