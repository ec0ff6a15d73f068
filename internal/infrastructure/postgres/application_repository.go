package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

var _ repository.ApplicationRepository = (*ApplicationRepo)(nil)

// ApplicationRepo implementación de ApplicationRepository (usable con pool o tx).
type ApplicationRepo struct {
	q Querier
}

// NewApplicationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApplicationRepository(q Querier) *ApplicationRepo {
	return &ApplicationRepo{q: q}
}

const applicationColumns = `
	number, tenant_id, student_name, student_type, guardian_name, guardian_phone,
	class_section, session_id, referral_code, promo_code, status, approved,
	completed, fee_breakdown, version, created_at, updated_at`

// GetByNumber obtiene la solicitud; retorna (nil, nil) si no existe.
func (r *ApplicationRepo) GetByNumber(ctx context.Context, number string) (*entity.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE number = $1`
	app, err := scanApplication(r.q.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// Create persiste la solicitud recién presentada.
func (r *ApplicationRepo) Create(ctx context.Context, app *entity.Application) error {
	feeJSON, err := marshalFee(app.Fee)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(ctx, query,
		app.Number, app.TenantID, app.StudentName, app.StudentType,
		app.GuardianName, app.GuardianPhone, app.ClassSection, app.SessionID,
		nullIfEmpty(app.ReferralCode), nullIfEmpty(app.PromoCode),
		string(app.Status), app.Approved, app.Completed, feeJSON,
		app.Version, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("application number already exists: %w", err)
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// Update actualiza con chequeo optimista por versión. Number y created_at
// nunca se tocan. Cero filas afectadas significa que otra petición ganó:
// ErrConcurrentModification.
func (r *ApplicationRepo) Update(ctx context.Context, app *entity.Application) error {
	feeJSON, err := marshalFee(app.Fee)
	if err != nil {
		return err
	}
	query := `
		UPDATE applications
		SET student_name   = $3,
		    student_type   = $4,
		    guardian_name  = $5,
		    guardian_phone = $6,
		    class_section  = $7,
		    session_id     = $8,
		    referral_code  = $9,
		    promo_code     = $10,
		    status         = $11,
		    approved       = $12,
		    completed      = $13,
		    fee_breakdown  = $14,
		    version        = version + 1,
		    updated_at     = $15
		WHERE number = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		app.Number, app.Version,
		app.StudentName, app.StudentType, app.GuardianName, app.GuardianPhone,
		app.ClassSection, app.SessionID,
		nullIfEmpty(app.ReferralCode), nullIfEmpty(app.PromoCode),
		string(app.Status), app.Approved, app.Completed, feeJSON,
		app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	app.Version++
	return nil
}

// FindByFilter listado de solo lectura con filtros opcionales.
func (r *ApplicationRepo) FindByFilter(ctx context.Context, f repository.ApplicationFilter) ([]*entity.Application, error) {
	where := "WHERE 1=1"
	args := []any{}
	argIndex := 1

	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(f.Status))
		argIndex++
	}
	if f.SessionID != "" {
		where += fmt.Sprintf(" AND session_id = $%d", argIndex)
		args = append(args, f.SessionID)
		argIndex++
	}
	if f.ClassSection != "" {
		where += fmt.Sprintf(" AND class_section = $%d", argIndex)
		args = append(args, f.ClassSection)
		argIndex++
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM applications %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		applicationColumns, where, argIndex, argIndex+1)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*entity.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// CountActiveSiblings cuenta otras solicitudes no rechazadas del mismo
// acudiente en la misma sesión.
func (r *ApplicationRepo) CountActiveSiblings(ctx context.Context, guardianPhone, sessionID, excludeNumber string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM applications
		WHERE guardian_phone = $1 AND session_id = $2 AND number <> $3 AND status <> $4`
	var n int
	err := r.q.QueryRow(ctx, query, guardianPhone, sessionID, excludeNumber, string(entity.StatusRejected)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count siblings: %w", err)
	}
	return n, nil
}

func marshalFee(fee *entity.FeeBreakdown) ([]byte, error) {
	if fee == nil {
		return nil, nil
	}
	b, err := json.Marshal(fee)
	if err != nil {
		return nil, fmt.Errorf("marshal fee breakdown: %w", err)
	}
	return b, nil
}

func scanApplication(row pgx.Row) (*entity.Application, error) {
	var app entity.Application
	var referral, promo *string
	var status string
	var feeJSON []byte
	err := row.Scan(
		&app.Number, &app.TenantID, &app.StudentName, &app.StudentType,
		&app.GuardianName, &app.GuardianPhone, &app.ClassSection, &app.SessionID,
		&referral, &promo, &status, &app.Approved, &app.Completed,
		&feeJSON, &app.Version, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	app.ReferralCode = derefStr(referral)
	app.PromoCode = derefStr(promo)
	app.Status = entity.Status(status)
	if len(feeJSON) > 0 {
		var fee entity.FeeBreakdown
		if err := json.Unmarshal(feeJSON, &fee); err != nil {
			return nil, fmt.Errorf("unmarshal fee breakdown: %w", err)
		}
		app.Fee = &fee
	}
	return &app, nil
}
