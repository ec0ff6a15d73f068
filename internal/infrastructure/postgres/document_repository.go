package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Add persiste la referencia del documento cargado.
func (r *DocumentRepo) Add(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO documents (id, application_number, document_type, document_ref, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.ApplicationNumber, string(doc.Type), doc.Ref, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// ListByApplication obtiene los documentos de una solicitud.
func (r *DocumentRepo) ListByApplication(ctx context.Context, applicationNumber string) ([]*entity.Document, error) {
	query := `
		SELECT id, application_number, document_type, document_ref, uploaded_at
		FROM documents WHERE application_number = $1 ORDER BY uploaded_at`
	rows, err := r.q.Query(ctx, query, applicationNumber)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var out []*entity.Document
	for rows.Next() {
		var d entity.Document
		var docType string
		if err := rows.Scan(&d.ID, &d.ApplicationNumber, &docType, &d.Ref, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.Type = entity.DocumentType(docType)
		out = append(out, &d)
	}
	return out, rows.Err()
}
