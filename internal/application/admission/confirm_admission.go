package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain/admission"
)

// ConfirmAdmission cierra el ciclo de vida: Invoiced -> Admitted. Admitted
// es terminal; ninguna mutación posterior de cuota o factura es posible.
func (uc *UseCase) ConfirmAdmission(ctx context.Context, store TenantStore, in dto.ConfirmAdmissionCommand) error {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return err
	}
	if err := admission.EnsureMutable(app, admission.EventConfirmAdmission); err != nil {
		return err
	}
	next, err := admission.Next(app.Status, admission.EventConfirmAdmission)
	if err != nil {
		return err
	}

	app.Status = next
	app.Completed = true
	app.UpdatedAt = time.Now().UTC()
	if err := store.Applications().Update(ctx, app); err != nil {
		return fmt.Errorf("actualizar solicitud: %w", err)
	}
	uc.notif.Notify(ctx, app.TenantID, app.Number, NotifyAdmitted)
	return nil
}
