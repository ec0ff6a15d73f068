package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/admission"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// ScheduleTest agenda el examen de admisión. Guard: solo si la clase
// destino exige examen; si no lo exige, la transición se rechaza.
func (uc *UseCase) ScheduleTest(ctx context.Context, store TenantStore, in dto.ScheduleTestCommand) error {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return err
	}
	if err := admission.EnsureMutable(app, admission.EventScheduleTest); err != nil {
		return err
	}
	next, err := admission.Next(app.Status, admission.EventScheduleTest)
	if err != nil {
		return err
	}
	required, err := uc.reqs.TestRequired(ctx, app.TenantID, app.ClassSection)
	if err != nil {
		return fmt.Errorf("consultar requisito de examen: %w", err)
	}
	if !required {
		return &domain.TransitionError{From: string(app.Status), Event: string(admission.EventScheduleTest)}
	}

	app.Status = next
	app.UpdatedAt = time.Now().UTC()
	if err := store.Applications().Update(ctx, app); err != nil {
		return fmt.Errorf("actualizar solicitud: %w", err)
	}
	uc.notif.Notify(ctx, app.TenantID, app.Number, NotifyTestScheduled)
	return nil
}

// SkipTest aprueba directo (Verified -> Approved) cuando la clase destino
// no exige examen.
func (uc *UseCase) SkipTest(ctx context.Context, store TenantStore, in dto.SkipTestCommand) error {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return err
	}
	if err := admission.EnsureMutable(app, admission.EventSkipTest); err != nil {
		return err
	}
	next, err := admission.Next(app.Status, admission.EventSkipTest)
	if err != nil {
		return err
	}
	required, err := uc.reqs.TestRequired(ctx, app.TenantID, app.ClassSection)
	if err != nil {
		return fmt.Errorf("consultar requisito de examen: %w", err)
	}
	if required {
		return &domain.TransitionError{From: string(app.Status), Event: string(admission.EventSkipTest)}
	}

	app.Status = next
	app.Approved = true
	app.UpdatedAt = time.Now().UTC()
	if err := store.Applications().Update(ctx, app); err != nil {
		return fmt.Errorf("actualizar solicitud: %w", err)
	}
	uc.notif.Notify(ctx, app.TenantID, app.Number, NotifyApproved)
	return nil
}

// RecordTestResult registra el resultado del examen: aprobado avanza a
// Approved, reprobado cierra la solicitud en Rejected (terminal).
func (uc *UseCase) RecordTestResult(ctx context.Context, store TenantStore, in dto.RecordTestResultCommand) error {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return err
	}
	ev := admission.EventRecordResultFail
	if in.Passed {
		ev = admission.EventRecordResultPass
	}
	if err := admission.EnsureMutable(app, ev); err != nil {
		return err
	}
	next, err := admission.Next(app.Status, ev)
	if err != nil {
		return err
	}

	app.Status = next
	app.Approved = next == entity.StatusApproved
	app.UpdatedAt = time.Now().UTC()
	if err := store.Applications().Update(ctx, app); err != nil {
		return fmt.Errorf("actualizar solicitud: %w", err)
	}
	event := NotifyRejected
	if in.Passed {
		event = NotifyApproved
	}
	uc.notif.Notify(ctx, app.TenantID, app.Number, event)
	return nil
}
