package dispatch

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tu-usuario/admission-core/internal/application/admission"
	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain"
)

// Dispatcher es el punto de entrada uniforme para la capa de presentación:
// valida el comando/consulta tipado, resuelve el campus y delega en el
// caso de uso. Las consultas solo atraviesan resolver y repositorio; nunca
// tocan la máquina de estados ni el generador de facturas.
type Dispatcher struct {
	resolver admission.StoreResolver
	uc       *admission.UseCase
	validate *validator.Validate
}

// New construye el despachador.
func New(resolver admission.StoreResolver, uc *admission.UseCase) *Dispatcher {
	return &Dispatcher{
		resolver: resolver,
		uc:       uc,
		validate: validator.New(),
	}
}

// check valida etiquetas validate del DTO; una falla mapea a ErrValidation.
func (d *Dispatcher) check(in any) error {
	if err := d.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	return nil
}

func (d *Dispatcher) store(ctx context.Context, tenantID string) (admission.TenantStore, error) {
	return d.resolver.Resolve(ctx, tenantID)
}

// SubmitApplication crea y presenta una solicitud; retorna su número.
func (d *Dispatcher) SubmitApplication(ctx context.Context, in dto.SubmitApplicationCommand) (string, error) {
	if err := d.check(in); err != nil {
		return "", err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return "", err
	}
	return d.uc.SubmitApplication(ctx, store, in)
}

// UploadDocument adjunta un documento a la solicitud.
func (d *Dispatcher) UploadDocument(ctx context.Context, in dto.UploadDocumentCommand) error {
	if err := d.check(in); err != nil {
		return err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return err
	}
	return d.uc.UploadDocument(ctx, store, in)
}

// VerifyDocuments verifica documentos obligatorios.
func (d *Dispatcher) VerifyDocuments(ctx context.Context, in dto.VerifyDocumentsCommand) error {
	if err := d.check(in); err != nil {
		return err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return err
	}
	return d.uc.VerifyDocuments(ctx, store, in)
}

// ScheduleTest agenda el examen de admisión.
func (d *Dispatcher) ScheduleTest(ctx context.Context, in dto.ScheduleTestCommand) error {
	if err := d.check(in); err != nil {
		return err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return err
	}
	return d.uc.ScheduleTest(ctx, store, in)
}

// SkipTest aprueba directo cuando la clase no exige examen.
func (d *Dispatcher) SkipTest(ctx context.Context, in dto.SkipTestCommand) error {
	if err := d.check(in); err != nil {
		return err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return err
	}
	return d.uc.SkipTest(ctx, store, in)
}

// RecordTestResult registra el resultado del examen.
func (d *Dispatcher) RecordTestResult(ctx context.Context, in dto.RecordTestResultCommand) error {
	if err := d.check(in); err != nil {
		return err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return err
	}
	return d.uc.RecordTestResult(ctx, store, in)
}

// CalculateFee calcula la cuota aplicable y retorna el desglose.
func (d *Dispatcher) CalculateFee(ctx context.Context, in dto.CalculateFeeQuery) (*dto.FeeBreakdownResponse, error) {
	if err := d.check(in); err != nil {
		return nil, err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	return d.uc.CalculateFee(ctx, store, in)
}

// IssueInvoice emite la factura, exactamente una vez por solicitud.
func (d *Dispatcher) IssueInvoice(ctx context.Context, in dto.IssueInvoiceCommand) (*dto.InvoiceResponse, error) {
	if err := d.check(in); err != nil {
		return nil, err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	return d.uc.IssueInvoice(ctx, store, in)
}

// ConfirmAdmission confirma la admisión (estado terminal Admitted).
func (d *Dispatcher) ConfirmAdmission(ctx context.Context, in dto.ConfirmAdmissionCommand) error {
	if err := d.check(in); err != nil {
		return err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return err
	}
	return d.uc.ConfirmAdmission(ctx, store, in)
}

// ViewApplication consulta el estado completo de una solicitud.
func (d *Dispatcher) ViewApplication(ctx context.Context, in dto.ViewApplicationQuery) (*dto.ApplicationSnapshot, error) {
	if err := d.check(in); err != nil {
		return nil, err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	return d.uc.ViewApplication(ctx, store, in)
}

// ListApplications listado filtrado para reportes.
func (d *Dispatcher) ListApplications(ctx context.Context, in dto.ListApplicationsQuery) ([]*dto.ApplicationSnapshot, error) {
	if err := d.check(in); err != nil {
		return nil, err
	}
	store, err := d.store(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}
	return d.uc.ListApplications(ctx, store, in)
}
