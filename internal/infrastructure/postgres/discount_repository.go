package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

var _ repository.DiscountRepository = (*DiscountRepo)(nil)

// DiscountRepo implementación de DiscountRepository (solo lectura).
type DiscountRepo struct {
	q Querier
}

// NewDiscountRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDiscountRepository(q Querier) *DiscountRepo {
	return &DiscountRepo{q: q}
}

const discountColumns = `
	id, source, code, student_type, percent, flat_amount, approved, valid_from, valid_until`

// GetByCode busca una regla por código (referido o promo); (nil, nil) si no hay.
func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (*entity.DiscountRule, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_rules WHERE lower(code) = lower($1)`
	return r.getOne(ctx, query, code)
}

// GetByStudentType busca la regla staff/beca del tipo de estudiante.
func (r *DiscountRepo) GetByStudentType(ctx context.Context, studentType string) (*entity.DiscountRule, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_rules WHERE lower(student_type) = lower($1)`
	return r.getOne(ctx, query, studentType)
}

// GetBySource busca la regla genérica de un origen (p. ej. hermanos).
func (r *DiscountRepo) GetBySource(ctx context.Context, source entity.DiscountSource) (*entity.DiscountRule, error) {
	query := `SELECT ` + discountColumns + ` FROM discount_rules
		WHERE source = $1 AND COALESCE(code, '') = '' AND COALESCE(student_type, '') = ''`
	return r.getOne(ctx, query, string(source))
}

func (r *DiscountRepo) getOne(ctx context.Context, query string, arg any) (*entity.DiscountRule, error) {
	var rule entity.DiscountRule
	var source string
	var code, studentType *string
	var validFrom, validUntil *time.Time
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&rule.ID, &source, &code, &studentType,
		&rule.Percent, &rule.FlatAmount, &rule.Approved,
		&validFrom, &validUntil,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get discount rule: %w", err)
	}
	rule.Source = entity.DiscountSource(source)
	rule.Code = derefStr(code)
	rule.StudentType = derefStr(studentType)
	// Ventana NULL significa sin límite (tiempo cero en la entidad).
	if validFrom != nil {
		rule.ValidFrom = *validFrom
	}
	if validUntil != nil {
		rule.ValidUntil = *validUntil
	}
	return &rule, nil
}
