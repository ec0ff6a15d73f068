package repository

import (
	"context"

	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// DocumentRepository puerto de persistencia de documentos de una solicitud.
type DocumentRepository interface {
	Add(ctx context.Context, doc *entity.Document) error
	ListByApplication(ctx context.Context, applicationNumber string) ([]*entity.Document, error)
}
