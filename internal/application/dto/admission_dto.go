package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Comandos y consultas tipados que el despachador expone a la capa de
// presentación (excluida del núcleo). Las etiquetas validate las evalúa el
// despachador; una falla mapea a domain.ErrValidation.

// SubmitApplicationCommand crea la solicitud y la lleva de Enquiry a Applied.
type SubmitApplicationCommand struct {
	TenantID      string `json:"tenant_id" validate:"required"`
	StudentName   string `json:"student_name" validate:"required"`
	StudentType   string `json:"student_type"`
	GuardianName  string `json:"guardian_name" validate:"required"`
	GuardianPhone string `json:"guardian_phone" validate:"required"`
	ClassSection  string `json:"class_section" validate:"required"`
	SessionID     string `json:"session_id" validate:"required"`
	ReferralCode  string `json:"referral_code"`
	PromoCode     string `json:"promo_code"`
}

// UploadDocumentCommand adjunta un documento a la solicitud.
type UploadDocumentCommand struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
	DocumentType      string `json:"document_type" validate:"required"`
	DocumentRef       string `json:"document_ref" validate:"required"`
}

// VerifyDocumentsCommand verifica que los documentos obligatorios estén.
type VerifyDocumentsCommand struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
}

// ScheduleTestCommand agenda el examen (solo clases que lo exigen).
type ScheduleTestCommand struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
}

// SkipTestCommand aprueba directo cuando la clase no exige examen.
type SkipTestCommand struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
}

// RecordTestResultCommand registra el resultado del examen.
type RecordTestResultCommand struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
	Passed            bool   `json:"passed"`
}

// CalculateFeeQuery calcula la cuota aplicable a la solicitud.
type CalculateFeeQuery struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
}

// IssueInvoiceCommand emite la factura (exactamente una por solicitud).
type IssueInvoiceCommand struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
}

// ConfirmAdmissionCommand cierra el ciclo: Invoiced -> Admitted.
type ConfirmAdmissionCommand struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
}

// ViewApplicationQuery consulta de solo lectura del estado completo.
type ViewApplicationQuery struct {
	TenantID          string `json:"tenant_id" validate:"required"`
	ApplicationNumber string `json:"application_number" validate:"required"`
}

// ListApplicationsQuery listado filtrado para llamadores de reportes.
type ListApplicationsQuery struct {
	TenantID     string `json:"tenant_id" validate:"required"`
	Status       string `json:"status"`
	SessionID    string `json:"session_id"`
	ClassSection string `json:"class_section"`
	Limit        int    `json:"limit" validate:"min=0,max=500"`
	Offset       int    `json:"offset" validate:"min=0"`
}

// FeeLineItemResponse una línea del desglose de cuota.
type FeeLineItemResponse struct {
	Type            string          `json:"type"`
	GroupID         string          `json:"group_id"`
	Name            string          `json:"name"`
	BaseAmount      decimal.Decimal `json:"base_amount"`
	TaxPercent      decimal.Decimal `json:"tax_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountSources []string        `json:"discount_sources,omitempty"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
}

// FeeBreakdownResponse desglose completo con total general.
type FeeBreakdownResponse struct {
	Lines        []FeeLineItemResponse `json:"lines"`
	Total        decimal.Decimal       `json:"total"`
	CalculatedAt time.Time             `json:"calculated_at"`
}

// InvoiceLineResponse snapshot de línea facturada.
type InvoiceLineResponse struct {
	Type           string          `json:"type"`
	Name           string          `json:"name"`
	BaseAmount     decimal.Decimal `json:"base_amount"`
	TaxPercent     decimal.Decimal `json:"tax_percent"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// InvoiceResponse factura emitida.
type InvoiceResponse struct {
	ID                string                `json:"id"`
	Number            string                `json:"number"`
	ApplicationNumber string                `json:"application_number"`
	Total             decimal.Decimal       `json:"total"`
	IssuedAt          time.Time             `json:"issued_at"`
	Lines             []InvoiceLineResponse `json:"lines"`
}

// ApplicationSnapshot vista completa de la solicitud: estado, cuota y
// factura si existe.
type ApplicationSnapshot struct {
	Number        string                `json:"number"`
	TenantID      string                `json:"tenant_id"`
	StudentName   string                `json:"student_name"`
	StudentType   string                `json:"student_type"`
	GuardianName  string                `json:"guardian_name"`
	GuardianPhone string                `json:"guardian_phone"`
	ClassSection  string                `json:"class_section"`
	SessionID     string                `json:"session_id"`
	Status        string                `json:"status"`
	Approved      bool                  `json:"approved"`
	Completed     bool                  `json:"completed"`
	Documents     []string              `json:"documents"`
	Fee           *FeeBreakdownResponse `json:"fee,omitempty"`
	Invoice       *InvoiceResponse      `json:"invoice,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}
