package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera. El índice único sobre application_number
// es el cerrojo contra la doble emisión: 23505 mapea a ErrAlreadyInvoiced.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, tenant_id, application_number, number, sequence, period, total, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		inv.ID, inv.TenantID, inv.ApplicationNumber, inv.Number,
		inv.Sequence, inv.Period, inv.Total, inv.IssuedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyInvoiced
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// CreateLine persiste una línea del snapshot.
func (r *InvoiceRepo) CreateLine(ctx context.Context, line *entity.InvoiceLine) error {
	query := `
		INSERT INTO invoice_lines (id, invoice_id, fee_id, fee_type, name, base_amount, tax_percent, discount_amount, final_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.InvoiceID, line.FeeID, string(line.Type), line.Name,
		line.BaseAmount, line.TaxPercent, line.DiscountAmount, line.FinalAmount,
	)
	if err != nil {
		return fmt.Errorf("insert invoice line: %w", err)
	}
	return nil
}

// GetByApplication obtiene la factura de una solicitud; (nil, nil) si no hay.
func (r *InvoiceRepo) GetByApplication(ctx context.Context, applicationNumber string) (*entity.Invoice, error) {
	query := `
		SELECT id, tenant_id, application_number, number, sequence, period, total, issued_at
		FROM invoices WHERE application_number = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, applicationNumber).Scan(
		&inv.ID, &inv.TenantID, &inv.ApplicationNumber, &inv.Number,
		&inv.Sequence, &inv.Period, &inv.Total, &inv.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetLines obtiene el snapshot de líneas de una factura.
func (r *InvoiceRepo) GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	query := `
		SELECT id, invoice_id, fee_id, fee_type, name, base_amount, tax_percent, discount_amount, final_amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var out []*entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		var feeType string
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.FeeID, &feeType, &l.Name,
			&l.BaseAmount, &l.TaxPercent, &l.DiscountAmount, &l.FinalAmount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		l.Type = entity.FeeType(feeType)
		out = append(out, &l)
	}
	return out, rows.Err()
}

// NextSequence incrementa y retorna el consecutivo (campus, período) con un
// upsert atómico a nivel de base de datos: nunca duplica bajo concurrencia
// y sobrevive reinicios del proceso.
func (r *InvoiceRepo) NextSequence(ctx context.Context, tenantID, period string) (int64, error) {
	query := `
		INSERT INTO invoice_sequences (tenant_id, period, last_value, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (tenant_id, period)
		DO UPDATE SET last_value = invoice_sequences.last_value + 1, updated_at = now()
		RETURNING last_value`
	var seq int64
	if err := r.q.QueryRow(ctx, query, tenantID, period).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return seq, nil
}
