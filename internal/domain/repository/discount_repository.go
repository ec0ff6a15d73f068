package repository

import (
	"context"

	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// DiscountRepository datos de referencia de descuentos (solo lectura para
// el motor de cuotas). Todos los métodos retornan (nil, nil) si no hay regla.
type DiscountRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.DiscountRule, error)
	GetByStudentType(ctx context.Context, studentType string) (*entity.DiscountRule, error)
	GetBySource(ctx context.Context, source entity.DiscountSource) (*entity.DiscountRule, error)
}
