package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain/admission"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// SubmitApplication crea la solicitud en Enquiry y dispara submit hacia
// Applied. El guard de campos requeridos ya lo evaluó el despachador vía
// etiquetas validate. Retorna el número de solicitud asignado (inmutable).
func (uc *UseCase) SubmitApplication(ctx context.Context, store TenantStore, in dto.SubmitApplicationCommand) (string, error) {
	studentType := strings.TrimSpace(in.StudentType)
	if studentType == "" {
		studentType = "regular"
	}

	now := time.Now().UTC()
	app := &entity.Application{
		Number:        newApplicationNumber(),
		TenantID:      store.Tenant().ID,
		StudentName:   strings.TrimSpace(in.StudentName),
		StudentType:   studentType,
		GuardianName:  strings.TrimSpace(in.GuardianName),
		GuardianPhone: strings.TrimSpace(in.GuardianPhone),
		ClassSection:  in.ClassSection,
		SessionID:     in.SessionID,
		ReferralCode:  strings.TrimSpace(in.ReferralCode),
		PromoCode:     strings.TrimSpace(in.PromoCode),
		Status:        entity.StatusEnquiry,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	next, err := admission.Next(app.Status, admission.EventSubmit)
	if err != nil {
		return "", err
	}
	app.Status = next

	if err := store.Applications().Create(ctx, app); err != nil {
		return "", fmt.Errorf("crear solicitud: %w", err)
	}

	uc.log.Info().
		Str("tenant", app.TenantID).
		Str("application", app.Number).
		Str("class_section", app.ClassSection).
		Msg("solicitud de admisión recibida")
	uc.notif.Notify(ctx, app.TenantID, app.Number, NotifySubmitted)
	return app.Number, nil
}
