package admission

import (
	"context"
	"fmt"

	"github.com/tu-usuario/admission-core/internal/application/dto"
)

// ViewApplication consulta de solo lectura: estado, documentos, cuota y
// factura si existe. No toca la máquina de estados ni el generador.
func (uc *UseCase) ViewApplication(ctx context.Context, store TenantStore, in dto.ViewApplicationQuery) (*dto.ApplicationSnapshot, error) {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return nil, err
	}

	docs, err := store.Documents().ListByApplication(ctx, app.Number)
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	docTypes := make([]string, 0, len(docs))
	for _, d := range docs {
		docTypes = append(docTypes, string(d.Type))
	}

	snap := &dto.ApplicationSnapshot{
		Number:        app.Number,
		TenantID:      app.TenantID,
		StudentName:   app.StudentName,
		StudentType:   app.StudentType,
		GuardianName:  app.GuardianName,
		GuardianPhone: app.GuardianPhone,
		ClassSection:  app.ClassSection,
		SessionID:     app.SessionID,
		Status:        string(app.Status),
		Approved:      app.Approved,
		Completed:     app.Completed,
		Documents:     docTypes,
		CreatedAt:     app.CreatedAt,
		UpdatedAt:     app.UpdatedAt,
	}
	if app.Fee != nil {
		snap.Fee = toFeeResponse(app.Fee)
	}

	inv, err := store.Invoices().GetByApplication(ctx, app.Number)
	if err != nil {
		return nil, fmt.Errorf("consultar factura: %w", err)
	}
	if inv != nil {
		lines, err := store.Invoices().GetLines(ctx, inv.ID)
		if err != nil {
			return nil, fmt.Errorf("consultar líneas de factura: %w", err)
		}
		inv.Lines = lines
		snap.Invoice = toInvoiceResponse(inv)
	}
	return snap, nil
}
