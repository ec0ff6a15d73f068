package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/admission"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/fee"
)

// CalculateFee carga el tarifario de (sesión, clase/sección), resuelve los
// descuentos aplicables y produce el desglose, avanzando Approved ->
// FeeCalculated. El desglose se persiste como snapshot en la solicitud:
// la factura cobra exactamente lo que se cotizó.
func (uc *UseCase) CalculateFee(ctx context.Context, store TenantStore, in dto.CalculateFeeQuery) (*dto.FeeBreakdownResponse, error) {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return nil, err
	}
	// Guard defensivo "no facturada ya", independiente de la tabla.
	if app.Status == entity.StatusInvoiced || app.Status == entity.StatusAdmitted {
		return nil, domain.ErrAlreadyInvoiced
	}
	if err := admission.EnsureMutable(app, admission.EventCalculateFee); err != nil {
		return nil, err
	}
	next, err := admission.Next(app.Status, admission.EventCalculateFee)
	if err != nil {
		return nil, err
	}

	schedule, err := uc.fees.GetFeeSchedule(ctx, app.TenantID, app.SessionID, app.ClassSection)
	if err != nil {
		return nil, fmt.Errorf("consultar tarifario: %w", err)
	}
	rules := uc.resolveDiscounts(ctx, store, app)

	bd := fee.Calculate(schedule, rules)
	app.Fee = &bd
	app.Status = next
	app.UpdatedAt = time.Now().UTC()
	if err := store.Applications().Update(ctx, app); err != nil {
		return nil, fmt.Errorf("actualizar solicitud: %w", err)
	}
	uc.notif.Notify(ctx, app.TenantID, app.Number, NotifyFeeCalculated)
	return toFeeResponse(&bd), nil
}

// resolveDiscounts arma las reglas aplicables: hermanos (otra solicitud
// activa del mismo acudiente en la sesión), referido, promo y staff/beca
// por tipo de estudiante. Un código inválido o vencido se ignora con un
// warning observable, nunca es fatal. Tipo de estudiante desconocido
// significa "sin descuento especial".
func (uc *UseCase) resolveDiscounts(ctx context.Context, store TenantStore, app *entity.Application) []entity.DiscountRule {
	now := time.Now().UTC()
	discounts := store.Discounts()
	var rules []entity.DiscountRule

	if n, err := store.Applications().CountActiveSiblings(ctx, app.GuardianPhone, app.SessionID, app.Number); err == nil && n > 0 {
		if r, err := discounts.GetBySource(ctx, entity.DiscountSibling); err == nil && r != nil {
			if r.IsValidAt(now) {
				rules = append(rules, *r)
			} else {
				uc.log.Warn().
					Str("application", app.Number).
					Str("rule", r.ID).
					Msg("regla de hermanos vencida o sin aprobar, se ignora")
			}
		}
	}

	if app.ReferralCode != "" {
		r, err := discounts.GetByCode(ctx, app.ReferralCode)
		if err == nil && r != nil && r.Source == entity.DiscountReferral && r.IsValidAt(now) {
			rules = append(rules, *r)
		} else {
			uc.log.Warn().
				Str("application", app.Number).
				Str("referral_code", app.ReferralCode).
				Msg("código de referido inválido, se ignora para el cálculo")
		}
	}

	if app.PromoCode != "" {
		r, err := discounts.GetByCode(ctx, app.PromoCode)
		if err == nil && r != nil && r.Source == entity.DiscountPromo && r.IsValidAt(now) {
			rules = append(rules, *r)
		} else {
			uc.log.Warn().
				Str("application", app.Number).
				Str("promo_code", app.PromoCode).
				Msg("código promocional inválido o vencido, se ignora")
		}
	}

	if r, err := discounts.GetByStudentType(ctx, app.StudentType); err == nil && r != nil {
		if r.IsValidAt(now) {
			rules = append(rules, *r)
		} else {
			uc.log.Warn().
				Str("application", app.Number).
				Str("student_type", app.StudentType).
				Str("rule", r.ID).
				Msg("regla por tipo de estudiante vencida o sin aprobar, se ignora")
		}
	}
	return rules
}
