package entity

import "time"

// Status estados del ciclo de vida de una solicitud de admisión.
type Status string

const (
	StatusEnquiry          Status = "ENQUIRY"
	StatusApplied          Status = "APPLIED"
	StatusDocumentsPending Status = "DOCUMENTS_PENDING"
	StatusVerified         Status = "VERIFIED"
	StatusTestScheduled    Status = "TEST_SCHEDULED"
	StatusTestCompleted    Status = "TEST_COMPLETED"
	StatusApproved         Status = "APPROVED"
	StatusRejected         Status = "REJECTED"
	StatusFeeCalculated    Status = "FEE_CALCULATED"
	StatusInvoiced         Status = "INVOICED"
	StatusAdmitted         Status = "ADMITTED"
)

// IsTerminal indica si el estado es final: una solicitud admitida o
// rechazada nunca se reabre para mutaciones de cuota/factura.
func (s Status) IsTerminal() bool {
	return s == StatusAdmitted || s == StatusRejected
}

// Application es el agregado central del módulo de admisiones.
// Number y CreatedAt son inmutables después de la creación; Version
// soporta el chequeo optimista de concurrencia en Update.
type Application struct {
	Number        string
	TenantID      string
	StudentName   string
	StudentType   string
	GuardianName  string
	GuardianPhone string
	ClassSection  string
	SessionID     string
	ReferralCode  string
	PromoCode     string
	Status        Status
	Approved      bool
	Completed     bool
	Fee           *FeeBreakdown
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
