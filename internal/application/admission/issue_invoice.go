package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/admission"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// IssueInvoice emite la factura de la solicitud, exactamente una vez.
// Todo ocurre dentro de una transacción del almacén del campus: cabecera,
// snapshot de líneas y el avance FeeCalculated -> Invoiced persisten
// juntos o nada persiste. La relectura dentro de la transacción más el
// Update optimista por versión y el índice único por solicitud garantizan
// que una segunda emisión concurrente falle con ErrAlreadyInvoiced o
// ErrConcurrentModification en vez de producir dos facturas.
func (uc *UseCase) IssueInvoice(ctx context.Context, store TenantStore, in dto.IssueInvoiceCommand) (*dto.InvoiceResponse, error) {
	var resp *dto.InvoiceResponse

	err := store.InTx(ctx, func(txs TenantStore) error {
		app, err := txs.Applications().GetByNumber(ctx, in.ApplicationNumber)
		if err != nil {
			return fmt.Errorf("consultar solicitud: %w", err)
		}
		if app == nil {
			return domain.ErrNotFound
		}
		// Relectura fresca: otra petición pudo avanzar la solicitud
		// después de que esta entró.
		if app.Status == entity.StatusInvoiced || app.Status == entity.StatusAdmitted {
			return domain.ErrAlreadyInvoiced
		}
		if err := admission.EnsureMutable(app, admission.EventIssueInvoice); err != nil {
			return err
		}
		next, err := admission.Next(app.Status, admission.EventIssueInvoice)
		if err != nil {
			return err
		}
		if app.Fee == nil {
			return fmt.Errorf("%w: la solicitud no tiene cuota calculada", domain.ErrValidation)
		}

		now := time.Now().UTC()
		period := now.Format("2006-01")
		seq, err := txs.Invoices().NextSequence(ctx, app.TenantID, period)
		if err != nil {
			return fmt.Errorf("consecutivo de factura: %w", err)
		}

		inv := &entity.Invoice{
			ID:                uuid.New().String(),
			TenantID:          app.TenantID,
			ApplicationNumber: app.Number,
			Number:            fmt.Sprintf("%s-%s-%06d", strings.ToUpper(app.TenantID), period, seq),
			Sequence:          seq,
			Period:            period,
			Total:             app.Fee.Total,
			IssuedAt:          now,
		}
		if err := txs.Invoices().Create(ctx, inv); err != nil {
			return err
		}
		for _, l := range app.Fee.Lines {
			line := &entity.InvoiceLine{
				ID:             uuid.New().String(),
				InvoiceID:      inv.ID,
				FeeID:          l.FeeID,
				Type:           l.Type,
				Name:           l.Name,
				BaseAmount:     l.BaseAmount,
				TaxPercent:     l.TaxPercent,
				DiscountAmount: l.DiscountAmount,
				FinalAmount:    l.FinalAmount,
			}
			if err := txs.Invoices().CreateLine(ctx, line); err != nil {
				return fmt.Errorf("guardar línea de factura: %w", err)
			}
			inv.Lines = append(inv.Lines, line)
		}

		app.Status = next
		app.UpdatedAt = now
		if err := txs.Applications().Update(ctx, app); err != nil {
			return err
		}
		resp = toInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// La notificación va después del commit: su falla jamás revierte nada.
	uc.notif.Notify(ctx, in.TenantID, in.ApplicationNumber, NotifyInvoiceIssued)
	uc.log.Info().
		Str("tenant", in.TenantID).
		Str("application", in.ApplicationNumber).
		Str("invoice", resp.Number).
		Msg("factura emitida")
	return resp, nil
}
