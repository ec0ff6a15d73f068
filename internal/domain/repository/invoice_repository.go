package repository

import (
	"context"

	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia de facturas y su consecutivo.
type InvoiceRepository interface {
	// Create persiste la cabecera. Una segunda factura para la misma
	// solicitud viola el índice único y retorna domain.ErrAlreadyInvoiced.
	Create(ctx context.Context, inv *entity.Invoice) error
	CreateLine(ctx context.Context, line *entity.InvoiceLine) error
	// GetByApplication retorna (nil, nil) si la solicitud no tiene factura.
	GetByApplication(ctx context.Context, applicationNumber string) (*entity.Invoice, error)
	GetLines(ctx context.Context, invoiceID string) ([]*entity.InvoiceLine, error)
	// NextSequence incrementa y retorna el consecutivo (campus, período)
	// de forma atómica a nivel del almacén: nunca produce duplicados bajo
	// emisión concurrente y sobrevive reinicios del proceso.
	NextSequence(ctx context.Context, tenantID, period string) (int64, error)
}
