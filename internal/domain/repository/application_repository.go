package repository

import (
	"context"

	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// ApplicationFilter filtro de solo lectura para listados de reporte.
type ApplicationFilter struct {
	Status       entity.Status
	SessionID    string
	ClassSection string
	Limit        int
	Offset       int
}

// ApplicationRepository puerto de persistencia del agregado Application.
// Cada instancia está atada al almacén de exactamente un campus; ninguna
// operación cruza campus.
type ApplicationRepository interface {
	// GetByNumber retorna (nil, nil) si no existe; el caso de uso lo mapea
	// a domain.ErrNotFound.
	GetByNumber(ctx context.Context, number string) (*entity.Application, error)
	Create(ctx context.Context, app *entity.Application) error
	// Update es optimista: compara Version y la incrementa. Cero filas
	// afectadas retorna domain.ErrConcurrentModification. Nunca toca
	// Number ni CreatedAt.
	Update(ctx context.Context, app *entity.Application) error
	FindByFilter(ctx context.Context, f ApplicationFilter) ([]*entity.Application, error)
	// CountActiveSiblings cuenta otras solicitudes no rechazadas del mismo
	// acudiente en la misma sesión (insumo del descuento por hermanos).
	CountActiveSiblings(ctx context.Context, guardianPhone, sessionID, excludeNumber string) (int, error)
}
