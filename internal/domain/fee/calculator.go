package fee

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// Regla fija del motor: los descuentos se calculan aditivamente sobre la
// base ANTES de impuestos, el total de descuentos por línea se tope a la
// base, y el monto final es base*(1+imp) - descuento. Con el tope, el
// final nunca es negativo. Cambiar esto rompe los vectores de prueba.
const DiscountPolicy = "additive-pretax-capped"

var hundred = decimal.NewFromInt(100)

// Calculate produce el desglose de cuota para un tarifario y las reglas de
// descuento ya resueltas como aplicables. Tarifario vacío retorna desglose
// vacío con total cero (hay configuraciones de clase exentas de cuota).
func Calculate(schedule []entity.FeeEntity, rules []entity.DiscountRule) entity.FeeBreakdown {
	bd := entity.FeeBreakdown{
		Lines:        make([]entity.FeeLineItem, 0, len(schedule)),
		Total:        decimal.Zero,
		CalculatedAt: time.Now().UTC(),
	}
	if len(schedule) == 0 {
		return bd
	}

	// Descuentos porcentuales: porcentaje de la base de cada línea.
	// Montos fijos: se consumen línea a línea hasta agotar el monto.
	flatRemaining := decimal.Zero
	var flatSources []entity.DiscountSource
	percentTotal := decimal.Zero
	var percentSources []entity.DiscountSource
	for _, r := range rules {
		if r.Percent.IsPositive() {
			percentTotal = percentTotal.Add(r.Percent)
			percentSources = append(percentSources, r.Source)
		}
		if r.FlatAmount.IsPositive() {
			flatRemaining = flatRemaining.Add(r.FlatAmount)
			flatSources = append(flatSources, r.Source)
		}
	}

	for _, fe := range schedule {
		taxed := fe.BaseAmount.Mul(decimal.NewFromInt(1).Add(fe.TaxPercent.Div(hundred)))

		discount := fe.BaseAmount.Mul(percentTotal).Div(hundred)
		var sources []entity.DiscountSource
		if discount.IsPositive() {
			sources = append(sources, percentSources...)
		}
		if flatRemaining.IsPositive() {
			take := decimal.Min(flatRemaining, fe.BaseAmount.Sub(discount))
			if take.IsPositive() {
				discount = discount.Add(take)
				flatRemaining = flatRemaining.Sub(take)
				sources = append(sources, flatSources...)
			}
		}
		// Tope: la suma de descuentos de una línea nunca excede su base.
		if discount.GreaterThan(fe.BaseAmount) {
			discount = fe.BaseAmount
		}
		if discount.IsNegative() {
			discount = decimal.Zero
		}

		final := taxed.Sub(discount).Round(2)
		bd.Lines = append(bd.Lines, entity.FeeLineItem{
			FeeID:           fe.ID,
			Type:            fe.Type,
			GroupID:         fe.GroupID,
			Name:            fe.Name,
			BaseAmount:      fe.BaseAmount,
			TaxPercent:      fe.TaxPercent,
			DiscountAmount:  discount.Round(2),
			DiscountSources: sources,
			FinalAmount:     final,
		})
		bd.Total = bd.Total.Add(final)
	}
	return bd
}
