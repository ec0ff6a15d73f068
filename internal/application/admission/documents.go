package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/admission"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// UploadDocument adjunta un documento. El primer documento dispara
// uploadDocuments (Applied -> DocumentsPending); cargas adicionales en
// DocumentsPending no cambian el estado.
func (uc *UseCase) UploadDocument(ctx context.Context, store TenantStore, in dto.UploadDocumentCommand) error {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return err
	}
	if err := admission.EnsureMutable(app, admission.EventUploadDocuments); err != nil {
		return err
	}

	if app.Status != entity.StatusDocumentsPending {
		next, err := admission.Next(app.Status, admission.EventUploadDocuments)
		if err != nil {
			return err
		}
		app.Status = next
	}

	doc := &entity.Document{
		ID:                uuid.New().String(),
		ApplicationNumber: app.Number,
		Type:              entity.DocumentType(in.DocumentType),
		Ref:               in.DocumentRef,
		UploadedAt:        time.Now().UTC(),
	}

	// Documento y avance de estado persisten juntos o no persisten.
	return store.InTx(ctx, func(txs TenantStore) error {
		if err := txs.Documents().Add(ctx, doc); err != nil {
			return fmt.Errorf("guardar documento: %w", err)
		}
		app.UpdatedAt = doc.UploadedAt
		if err := txs.Applications().Update(ctx, app); err != nil {
			return fmt.Errorf("actualizar solicitud: %w", err)
		}
		return nil
	})
}

// VerifyDocuments valida que todos los documentos obligatorios de la clase
// estén presentes y avanza DocumentsPending -> Verified. Si falta alguno
// falla con ErrMissingDocuments y el estado almacenado queda intacto.
func (uc *UseCase) VerifyDocuments(ctx context.Context, store TenantStore, in dto.VerifyDocumentsCommand) error {
	app, err := uc.getApplication(ctx, store, in.ApplicationNumber)
	if err != nil {
		return err
	}
	if err := admission.EnsureMutable(app, admission.EventVerify); err != nil {
		return err
	}
	next, err := admission.Next(app.Status, admission.EventVerify)
	if err != nil {
		return err
	}

	mandatory, err := uc.reqs.GetMandatoryDocuments(ctx, app.TenantID, app.ClassSection)
	if err != nil {
		return fmt.Errorf("consultar documentos obligatorios: %w", err)
	}
	docs, err := store.Documents().ListByApplication(ctx, app.Number)
	if err != nil {
		return fmt.Errorf("listar documentos: %w", err)
	}
	present := make(map[entity.DocumentType]bool, len(docs))
	for _, d := range docs {
		present[d.Type] = true
	}
	var missing []string
	for _, m := range mandatory {
		if !present[m] {
			missing = append(missing, string(m))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingDocuments, strings.Join(missing, ", "))
	}

	app.Status = next
	app.UpdatedAt = time.Now().UTC()
	if err := store.Applications().Update(ctx, app); err != nil {
		return fmt.Errorf("actualizar solicitud: %w", err)
	}
	uc.notif.Notify(ctx, app.TenantID, app.Number, NotifyDocsVerified)
	return nil
}
