package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeType componente de cobro dentro de una cuota.
type FeeType string

const (
	FeeTuition   FeeType = "TUITION"
	FeeTransport FeeType = "TRANSPORT"
	FeeActivity  FeeType = "ACTIVITY"
	FeeAdmission FeeType = "ADMISSION"
	FeeLibrary   FeeType = "LIBRARY"
)

// FeeEntity entrada del tarifario base para (sesión, clase/sección).
// Datos de referencia administrados fuera del núcleo.
type FeeEntity struct {
	ID         string
	Type       FeeType
	GroupID    string
	Name       string
	BaseAmount decimal.Decimal
	TaxPercent decimal.Decimal
}

// DiscountSource origen de un descuento aplicado.
type DiscountSource string

const (
	DiscountSibling  DiscountSource = "SIBLING"
	DiscountReferral DiscountSource = "REFERRAL"
	DiscountPromo    DiscountSource = "PROMO"
	DiscountStaff    DiscountSource = "STAFF"
)

// DiscountRule regla de descuento de referencia: porcentaje sobre la base
// antes de impuestos, o monto fijo. Una regla aplica por código (referral,
// promo), por tipo de estudiante (staff/beca) o por origen (hermanos).
type DiscountRule struct {
	ID          string
	Source      DiscountSource
	Code        string
	StudentType string
	Percent     decimal.Decimal
	FlatAmount  decimal.Decimal
	Approved    bool
	ValidFrom   time.Time
	ValidUntil  time.Time
}

// IsValidAt indica si la regla está aprobada y vigente en el instante dado.
// Ventanas en cero significan sin límite.
func (r DiscountRule) IsValidAt(t time.Time) bool {
	if !r.Approved {
		return false
	}
	if !r.ValidFrom.IsZero() && t.Before(r.ValidFrom) {
		return false
	}
	if !r.ValidUntil.IsZero() && t.After(r.ValidUntil) {
		return false
	}
	return true
}

// FeeLineItem una línea calculada de la cuota. Transitoria: solo se
// persiste como snapshot al emitir la factura.
type FeeLineItem struct {
	FeeID           string           `json:"fee_id"`
	Type            FeeType          `json:"type"`
	GroupID         string           `json:"group_id"`
	Name            string           `json:"name"`
	BaseAmount      decimal.Decimal  `json:"base_amount"`
	TaxPercent      decimal.Decimal  `json:"tax_percent"`
	DiscountAmount  decimal.Decimal  `json:"discount_amount"`
	DiscountSources []DiscountSource `json:"discount_sources,omitempty"`
	FinalAmount     decimal.Decimal  `json:"final_amount"`
}

// FeeBreakdown desglose completo de la cuota con total general.
type FeeBreakdown struct {
	Lines        []FeeLineItem   `json:"lines"`
	Total        decimal.Decimal `json:"total"`
	CalculatedAt time.Time       `json:"calculated_at"`
}
