package notify

import (
	"context"

	"github.com/tu-usuario/admission-core/internal/application/admission"
	"github.com/tu-usuario/admission-core/pkg/logger"
)

var _ admission.Notifier = (*Console)(nil)

// Console binding de desarrollo del puerto de notificaciones: escribe el
// evento al log en vez de enviar email/SMS. La entrega real vive fuera
// del núcleo.
type Console struct {
	log *logger.Logger
}

// NewConsole construye el notificador de consola.
func NewConsole(log *logger.Logger) *Console {
	return &Console{log: log}
}

// Notify registra el evento. Nunca retorna error: el puerto es
// fire-and-forget por contrato.
func (c *Console) Notify(_ context.Context, tenantID, applicationNumber, eventType string) {
	c.log.Info().
		Str("tenant", tenantID).
		Str("application", applicationNumber).
		Str("event", eventType).
		Msg("notificación emitida")
}
