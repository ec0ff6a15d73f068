package admission

import (
	"context"
	"fmt"

	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

// ListApplications listado de solo lectura para los llamadores de reportes.
// Vista ligera: sin documentos ni factura.
func (uc *UseCase) ListApplications(ctx context.Context, store TenantStore, in dto.ListApplicationsQuery) ([]*dto.ApplicationSnapshot, error) {
	f := repository.ApplicationFilter{
		Status:       entity.Status(in.Status),
		SessionID:    in.SessionID,
		ClassSection: in.ClassSection,
		Limit:        in.Limit,
		Offset:       in.Offset,
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	apps, err := store.Applications().FindByFilter(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar solicitudes: %w", err)
	}

	out := make([]*dto.ApplicationSnapshot, 0, len(apps))
	for _, app := range apps {
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
			CreatedAt:     app.CreatedAt,
			UpdatedAt:     app.UpdatedAt,
		}
		if app.Fee != nil {
			snap.Fee = toFeeResponse(app.Fee)
		}
		out = append(out, snap)
	}
	return out, nil
}
