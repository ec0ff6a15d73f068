package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/admission-core/internal/application/admission"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

var _ admission.TenantStore = (*Store)(nil)

// Store handle de acceso a datos de un campus. Fuera de transacción los
// repositorios van contra el pool; InTx los re-ata a una transacción.
type Store struct {
	tenant entity.Tenant
	pool   *pgxpool.Pool
	q      Querier
}

func newStore(tenant entity.Tenant, pool *pgxpool.Pool) *Store {
	return &Store{tenant: tenant, pool: pool, q: pool}
}

func (s *Store) Tenant() entity.Tenant { return s.tenant }

func (s *Store) Applications() repository.ApplicationRepository {
	return NewApplicationRepository(s.q)
}

func (s *Store) Documents() repository.DocumentRepository {
	return NewDocumentRepository(s.q)
}

func (s *Store) Invoices() repository.InvoiceRepository {
	return NewInvoiceRepository(s.q)
}

func (s *Store) Discounts() repository.DiscountRepository {
	return NewDiscountRepository(s.q)
}

// InTx inicia una transacción, ejecuta fn con un Store atado a la tx y
// hace Commit o Rollback. Una cancelación antes del commit deja el almacén
// en su estado previo; después del commit ya no se honra.
func (s *Store) InTx(ctx context.Context, fn func(admission.TenantStore) error) error {
	if s.pool == nil {
		// Ya dentro de una transacción: reutilizarla.
		return fn(s)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txStore := &Store{tenant: s.tenant, q: tx}
	if err := fn(txStore); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
