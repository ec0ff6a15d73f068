package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/admission-core/internal/application/admission"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/pkg/config"
	"github.com/tu-usuario/admission-core/pkg/logger"
)

var (
	_ admission.StoreResolver               = (*Registry)(nil)
	_ admission.FeeScheduleProvider         = (*Registry)(nil)
	_ admission.DocumentRequirementProvider = (*Registry)(nil)
)

// Registry resuelve un campus a su pool de PostgreSQL. Un pool por campus,
// creado perezosamente y cacheado para la vida del proceso; el handle por
// petición es el Store respaldado por ese pool. El contexto del campus se
// pasa explícito en cada llamada, nunca como estado ambiente mutable.
type Registry struct {
	mu      sync.Mutex
	tenants map[string]config.TenantConfig
	pools   map[string]*pgxpool.Pool
	log     *logger.Logger
}

// NewRegistry construye el registro a partir de la configuración de campus.
func NewRegistry(tenants []config.TenantConfig, log *logger.Logger) *Registry {
	m := make(map[string]config.TenantConfig, len(tenants))
	for _, t := range tenants {
		m[t.ID] = t
	}
	return &Registry{
		tenants: m,
		pools:   make(map[string]*pgxpool.Pool),
		log:     log,
	}
}

// Resolve retorna el handle del almacén del campus. Campus desconocido o
// deshabilitado falla rápido con ErrTenantNotFound.
func (r *Registry) Resolve(ctx context.Context, tenantID string) (admission.TenantStore, error) {
	pool, tc, err := r.pool(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	tenant := entity.Tenant{ID: tc.ID, Name: tc.Name, DSN: tc.DSN, IsActive: tc.Enabled}
	return newStore(tenant, pool), nil
}

func (r *Registry) pool(ctx context.Context, tenantID string) (*pgxpool.Pool, config.TenantConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tc, ok := r.tenants[tenantID]
	if !ok || !tc.Enabled {
		return nil, config.TenantConfig{}, domain.ErrTenantNotFound
	}
	if pool, ok := r.pools[tenantID]; ok {
		return pool, tc, nil
	}
	pool, err := NewPool(ctx, tc.DSN)
	if err != nil {
		return nil, config.TenantConfig{}, fmt.Errorf("conectar almacén del campus %s: %w", tenantID, err)
	}
	r.log.Info().Str("tenant", tenantID).Msg("pool de campus creado")
	r.pools[tenantID] = pool
	return pool, tc, nil
}

// Close libera todos los pools cacheados.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, pool := range r.pools {
		pool.Close()
		delete(r.pools, id)
	}
}

// GetFeeSchedule binding del puerto de tarifario: lee fee_schedules del
// almacén del campus, en el orden administrado (position).
func (r *Registry) GetFeeSchedule(ctx context.Context, tenantID, sessionID, classSection string) ([]entity.FeeEntity, error) {
	pool, _, err := r.pool(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT fee_id, fee_type, group_id, name, base_amount, tax_percent
		FROM fee_schedules
		WHERE session_id = $1 AND class_section = $2
		ORDER BY position, fee_id`
	rows, err := pool.Query(ctx, query, sessionID, classSection)
	if err != nil {
		return nil, fmt.Errorf("consultar tarifario: %w", err)
	}
	defer rows.Close()
	var out []entity.FeeEntity
	for rows.Next() {
		var fe entity.FeeEntity
		var feeType string
		if err := rows.Scan(&fe.ID, &feeType, &fe.GroupID, &fe.Name, &fe.BaseAmount, &fe.TaxPercent); err != nil {
			return nil, fmt.Errorf("scan tarifa: %w", err)
		}
		fe.Type = entity.FeeType(feeType)
		out = append(out, fe)
	}
	return out, rows.Err()
}

// GetMandatoryDocuments binding del puerto de requisitos documentales.
func (r *Registry) GetMandatoryDocuments(ctx context.Context, tenantID, classSection string) ([]entity.DocumentType, error) {
	pool, _, err := r.pool(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	query := `SELECT document_type FROM mandatory_documents WHERE class_section = $1 ORDER BY document_type`
	rows, err := pool.Query(ctx, query, classSection)
	if err != nil {
		return nil, fmt.Errorf("consultar documentos obligatorios: %w", err)
	}
	defer rows.Close()
	var out []entity.DocumentType
	for rows.Next() {
		var dt string
		if err := rows.Scan(&dt); err != nil {
			return nil, fmt.Errorf("scan documento obligatorio: %w", err)
		}
		out = append(out, entity.DocumentType(dt))
	}
	return out, rows.Err()
}

// TestRequired binding del flag de examen por clase. Clase sin fila
// significa "sin examen".
func (r *Registry) TestRequired(ctx context.Context, tenantID, classSection string) (bool, error) {
	pool, _, err := r.pool(ctx, tenantID)
	if err != nil {
		return false, err
	}
	query := `SELECT COALESCE(
		(SELECT test_required FROM class_settings WHERE class_section = $1), false)`
	var required bool
	if err := pool.QueryRow(ctx, query, classSection).Scan(&required); err != nil {
		return false, fmt.Errorf("consultar requisito de examen: %w", err)
	}
	return required, nil
}
