package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice factura de admisión. Se emite exactamente una vez por solicitud;
// las líneas son inmutables después de la emisión (las correcciones crean
// un asiento reverso, nunca una edición en sitio).
type Invoice struct {
	ID                string
	TenantID          string
	ApplicationNumber string
	Number            string
	Sequence          int64
	Period            string
	Total             decimal.Decimal
	IssuedAt          time.Time
	Lines             []*InvoiceLine
}

// InvoiceLine snapshot de una línea de cuota al momento de la emisión.
type InvoiceLine struct {
	ID             string
	InvoiceID      string
	FeeID          string
	Type           FeeType
	Name           string
	BaseAmount     decimal.Decimal
	TaxPercent     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
}

// InvoiceSequence contador monótono por (campus, período YYYY-MM) para el
// número legible de factura. Vive en el almacén del campus; los contadores
// en memoria de proceso están prohibidos (no sobreviven reinicios).
type InvoiceSequence struct {
	TenantID  string
	Period    string
	LastValue int64
	UpdatedAt time.Time
}
