package entity

import "time"

// Tenant identifica un campus/sede. Cada campus tiene su propio almacén
// físico de datos; el descriptor de conexión vive aquí y es inmutable
// después del registro.
type Tenant struct {
	ID        string
	Name      string
	DSN       string
	IsActive  bool
	CreatedAt time.Time
}
