package admission

import (
	"context"

	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

// TenantStore es el handle de acceso a datos atado al almacén de un campus.
// Lo produce el resolver una vez por petición y es propiedad exclusiva de
// esa petición; nunca se comparte entre peticiones ni entre campus.
type TenantStore interface {
	Tenant() entity.Tenant
	Applications() repository.ApplicationRepository
	Documents() repository.DocumentRepository
	Invoices() repository.InvoiceRepository
	Discounts() repository.DiscountRepository
	// InTx ejecuta fn con los repositorios atados a una transacción del
	// almacén del campus: o todo persiste o nada (commit/rollback).
	InTx(ctx context.Context, fn func(TenantStore) error) error
}

// StoreResolver resuelve un identificador de campus al handle de su
// almacén. Campus desconocido, vacío o deshabilitado falla con
// domain.ErrTenantNotFound.
type StoreResolver interface {
	Resolve(ctx context.Context, tenantID string) (TenantStore, error)
}

// Notifier puerto de notificaciones (email/SMS viven fuera del núcleo).
// Fire-and-forget: una falla aquí jamás revierte la transacción del núcleo,
// por eso no retorna error.
type Notifier interface {
	Notify(ctx context.Context, tenantID, applicationNumber, eventType string)
}

// FeeScheduleProvider datos de referencia del tarifario, eventualmente
// consistentes con la configuración administrativa.
type FeeScheduleProvider interface {
	GetFeeSchedule(ctx context.Context, tenantID, sessionID, classSection string) ([]entity.FeeEntity, error)
}

// DocumentRequirementProvider configuración por clase: documentos
// obligatorios y si la clase exige examen de admisión.
type DocumentRequirementProvider interface {
	GetMandatoryDocuments(ctx context.Context, tenantID, classSection string) ([]entity.DocumentType, error)
	TestRequired(ctx context.Context, tenantID, classSection string) (bool, error)
}
