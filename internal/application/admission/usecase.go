package admission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/pkg/logger"
)

// Tipos de evento publicados por el puerto de notificaciones.
const (
	NotifySubmitted     = "application.submitted"
	NotifyDocsVerified  = "application.documents_verified"
	NotifyTestScheduled = "application.test_scheduled"
	NotifyApproved      = "application.approved"
	NotifyRejected      = "application.rejected"
	NotifyFeeCalculated = "application.fee_calculated"
	NotifyInvoiceIssued = "invoice.issued"
	NotifyAdmitted      = "application.admitted"
)

// UseCase orquesta el flujo de admisión sobre el handle de campus que el
// despachador resuelve por petición. No guarda repositorios: cada llamada
// recibe el TenantStore ya atado al campus correcto.
type UseCase struct {
	fees  FeeScheduleProvider
	reqs  DocumentRequirementProvider
	notif Notifier
	log   *logger.Logger
}

// NewUseCase construye el caso de uso con sus colaboradores externos.
func NewUseCase(fees FeeScheduleProvider, reqs DocumentRequirementProvider, notif Notifier, log *logger.Logger) *UseCase {
	return &UseCase{fees: fees, reqs: reqs, notif: notif, log: log}
}

// getApplication carga la solicitud y mapea la ausencia a ErrNotFound.
func (uc *UseCase) getApplication(ctx context.Context, store TenantStore, number string) (*entity.Application, error) {
	app, err := store.Applications().GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("consultar solicitud: %w", err)
	}
	if app == nil {
		return nil, domain.ErrNotFound
	}
	return app, nil
}

func newApplicationNumber() string {
	return "ADM-" + uuid.New().String()
}

func toFeeResponse(bd *entity.FeeBreakdown) *dto.FeeBreakdownResponse {
	resp := &dto.FeeBreakdownResponse{
		Lines:        make([]dto.FeeLineItemResponse, 0, len(bd.Lines)),
		Total:        bd.Total,
		CalculatedAt: bd.CalculatedAt,
	}
	for _, l := range bd.Lines {
		sources := make([]string, 0, len(l.DiscountSources))
		for _, s := range l.DiscountSources {
			sources = append(sources, string(s))
		}
		resp.Lines = append(resp.Lines, dto.FeeLineItemResponse{
			Type:            string(l.Type),
			GroupID:         l.GroupID,
			Name:            l.Name,
			BaseAmount:      l.BaseAmount,
			TaxPercent:      l.TaxPercent,
			DiscountAmount:  l.DiscountAmount,
			DiscountSources: sources,
			FinalAmount:     l.FinalAmount,
		})
	}
	return resp
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:                inv.ID,
		Number:            inv.Number,
		ApplicationNumber: inv.ApplicationNumber,
		Total:             inv.Total,
		IssuedAt:          inv.IssuedAt,
		Lines:             make([]dto.InvoiceLineResponse, 0, len(inv.Lines)),
	}
	for _, l := range inv.Lines {
		resp.Lines = append(resp.Lines, dto.InvoiceLineResponse{
			Type:           string(l.Type),
			Name:           l.Name,
			BaseAmount:     l.BaseAmount,
			TaxPercent:     l.TaxPercent,
			DiscountAmount: l.DiscountAmount,
			FinalAmount:    l.FinalAmount,
		})
	}
	return resp
}
