package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tu-usuario/admission-core/internal/application/admission"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/domain/repository"
)

var (
	_ admission.StoreResolver               = (*Registry)(nil)
	_ admission.TenantStore                 = (*Store)(nil)
	_ admission.FeeScheduleProvider         = (*Registry)(nil)
	_ admission.DocumentRequirementProvider = (*Registry)(nil)
)

// Registry resolver de campus respaldado en memoria. Se usa en pruebas y
// en desarrollo; el binding de producción vive en infrastructure/postgres.
type Registry struct {
	mu      sync.RWMutex
	tenants map[string]*Store
}

// NewRegistry construye un registro vacío.
func NewRegistry() *Registry {
	return &Registry{tenants: make(map[string]*Store)}
}

// Register crea el almacén en memoria de un campus y lo registra.
func (r *Registry) Register(t entity.Tenant) *Store {
	s := &Store{
		tenant: t,
		st: &storeState{
			apps:          make(map[string]*entity.Application),
			docs:          make(map[string][]*entity.Document),
			invoicesByApp: make(map[string]*entity.Invoice),
			lines:         make(map[string][]*entity.InvoiceLine),
			seqs:          make(map[string]int64),
			schedules:     make(map[string][]entity.FeeEntity),
			mandatory:     make(map[string][]entity.DocumentType),
			testRequired:  make(map[string]bool),
		},
	}
	r.mu.Lock()
	r.tenants[t.ID] = s
	r.mu.Unlock()
	return s
}

// Resolve retorna el handle del campus o ErrTenantNotFound si el campus no
// está registrado o está deshabilitado.
func (r *Registry) Resolve(_ context.Context, tenantID string) (admission.TenantStore, error) {
	r.mu.RLock()
	s, ok := r.tenants[tenantID]
	r.mu.RUnlock()
	if !ok || !s.tenant.IsActive {
		return nil, domain.ErrTenantNotFound
	}
	return s, nil
}

func (r *Registry) storeFor(tenantID string) (*Store, error) {
	r.mu.RLock()
	s, ok := r.tenants[tenantID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	return s, nil
}

// GetFeeSchedule implementa el puerto de tarifario con los datos sembrados.
func (r *Registry) GetFeeSchedule(_ context.Context, tenantID, sessionID, classSection string) ([]entity.FeeEntity, error) {
	s, err := r.storeFor(tenantID)
	if err != nil {
		return nil, err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return append([]entity.FeeEntity(nil), s.st.schedules[scheduleKey(sessionID, classSection)]...), nil
}

// GetMandatoryDocuments implementa el puerto de requisitos documentales.
func (r *Registry) GetMandatoryDocuments(_ context.Context, tenantID, classSection string) ([]entity.DocumentType, error) {
	s, err := r.storeFor(tenantID)
	if err != nil {
		return nil, err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return append([]entity.DocumentType(nil), s.st.mandatory[classSection]...), nil
}

// TestRequired indica si la clase exige examen de admisión.
func (r *Registry) TestRequired(_ context.Context, tenantID, classSection string) (bool, error) {
	s, err := r.storeFor(tenantID)
	if err != nil {
		return false, err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	return s.st.testRequired[classSection], nil
}

func scheduleKey(sessionID, classSection string) string {
	return sessionID + "|" + classSection
}

// Store handle de un campus. Fuera de transacción cada operación espera a
// que no haya transacción abierta; la vista transaccional (inTx) comparte
// el mismo estado con el txMu ya tomado por InTx.
type Store struct {
	tenant entity.Tenant
	inTx   bool
	st     *storeState
}

// storeState datos compartidos entre el handle normal y su vista
// transaccional. txMu serializa transacciones completas y deja afuera las
// operaciones sueltas mientras una transacción está abierta, como los
// candados de fila en postgres; mu protege los mapas.
type storeState struct {
	mu   sync.Mutex
	txMu sync.Mutex

	apps          map[string]*entity.Application
	docs          map[string][]*entity.Document
	invoicesByApp map[string]*entity.Invoice
	lines         map[string][]*entity.InvoiceLine
	discounts     []entity.DiscountRule
	seqs          map[string]int64
	schedules     map[string][]entity.FeeEntity
	mandatory     map[string][]entity.DocumentType
	testRequired  map[string]bool
}

func (s *Store) Tenant() entity.Tenant { return s.tenant }

func (s *Store) Applications() repository.ApplicationRepository { return &appRepo{s} }
func (s *Store) Documents() repository.DocumentRepository       { return &docRepo{s} }
func (s *Store) Invoices() repository.InvoiceRepository         { return &invoiceRepo{s} }
func (s *Store) Discounts() repository.DiscountRepository       { return &discountRepo{s} }

// acquire toma los candados que corresponden al contexto de la llamada y
// retorna la función que los libera. Las operaciones sueltas esperan el
// cierre de la transacción abierta; dentro de la transacción txMu ya es
// nuestro y basta con mu.
func (s *Store) acquire() func() {
	if s.inTx {
		s.st.mu.Lock()
		return s.st.mu.Unlock
	}
	s.st.txMu.Lock()
	s.st.mu.Lock()
	return func() {
		s.st.mu.Unlock()
		s.st.txMu.Unlock()
	}
}

// InTx emula una transacción: serializa contra otras transacciones y contra
// operaciones sueltas, toma un snapshot y lo restaura si fn falla o el
// contexto se cancela antes del commit. Como ninguna otra escritura puede
// intercalarse mientras la transacción está abierta, restaurar el snapshot
// descarta exactamente lo escrito por fn, jamás un commit ajeno.
func (s *Store) InTx(ctx context.Context, fn func(admission.TenantStore) error) error {
	if s.inTx {
		// Ya dentro de una transacción: reutilizarla.
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.st.snapshot()
	txs := &Store{tenant: s.tenant, inTx: true, st: s.st}
	if err := fn(txs); err != nil {
		s.st.restore(snap)
		return err
	}
	// Cancelación antes del commit: se revierte igual que una falla de fn.
	if err := ctx.Err(); err != nil {
		s.st.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	apps          map[string]*entity.Application
	docs          map[string][]*entity.Document
	invoicesByApp map[string]*entity.Invoice
	lines         map[string][]*entity.InvoiceLine
	seqs          map[string]int64
}

func (st *storeState) snapshot() storeSnapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	snap := storeSnapshot{
		apps:          make(map[string]*entity.Application, len(st.apps)),
		docs:          make(map[string][]*entity.Document, len(st.docs)),
		invoicesByApp: make(map[string]*entity.Invoice, len(st.invoicesByApp)),
		lines:         make(map[string][]*entity.InvoiceLine, len(st.lines)),
		seqs:          make(map[string]int64, len(st.seqs)),
	}
	for k, v := range st.apps {
		snap.apps[k] = copyApplication(v)
	}
	for k, v := range st.docs {
		snap.docs[k] = append([]*entity.Document(nil), v...)
	}
	for k, v := range st.invoicesByApp {
		cp := *v
		snap.invoicesByApp[k] = &cp
	}
	for k, v := range st.lines {
		snap.lines[k] = append([]*entity.InvoiceLine(nil), v...)
	}
	for k, v := range st.seqs {
		snap.seqs[k] = v
	}
	return snap
}

func (st *storeState) restore(snap storeSnapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.apps = snap.apps
	st.docs = snap.docs
	st.invoicesByApp = snap.invoicesByApp
	st.lines = snap.lines
	st.seqs = snap.seqs
}

// Siembra de datos de referencia (pruebas y desarrollo).

func (s *Store) SeedFeeSchedule(sessionID, classSection string, fees []entity.FeeEntity) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.schedules[scheduleKey(sessionID, classSection)] = fees
}

func (s *Store) SeedMandatoryDocuments(classSection string, docs []entity.DocumentType) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.mandatory[classSection] = docs
}

func (s *Store) SeedTestRequired(classSection string, required bool) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.testRequired[classSection] = required
}

func (s *Store) SeedDiscount(r entity.DiscountRule) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.discounts = append(s.st.discounts, r)
}

func copyApplication(app *entity.Application) *entity.Application {
	cp := *app
	if app.Fee != nil {
		fee := *app.Fee
		fee.Lines = append([]entity.FeeLineItem(nil), app.Fee.Lines...)
		cp.Fee = &fee
	}
	return &cp
}

// appRepo implementación en memoria de ApplicationRepository.
type appRepo struct{ s *Store }

func (r *appRepo) GetByNumber(_ context.Context, number string) (*entity.Application, error) {
	defer r.s.acquire()()
	app, ok := r.s.st.apps[number]
	if !ok {
		return nil, nil
	}
	return copyApplication(app), nil
}

func (r *appRepo) Create(_ context.Context, app *entity.Application) error {
	defer r.s.acquire()()
	if _, exists := r.s.st.apps[app.Number]; exists {
		return domain.ErrConcurrentModification
	}
	r.s.st.apps[app.Number] = copyApplication(app)
	return nil
}

func (r *appRepo) Update(_ context.Context, app *entity.Application) error {
	defer r.s.acquire()()
	stored, ok := r.s.st.apps[app.Number]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != app.Version {
		return domain.ErrConcurrentModification
	}
	app.Version++
	cp := copyApplication(app)
	// Number y CreatedAt son inmutables.
	cp.Number = stored.Number
	cp.CreatedAt = stored.CreatedAt
	r.s.st.apps[cp.Number] = cp
	return nil
}

func (r *appRepo) FindByFilter(_ context.Context, f repository.ApplicationFilter) ([]*entity.Application, error) {
	defer r.s.acquire()()
	var out []*entity.Application
	for _, app := range r.s.st.apps {
		if f.Status != "" && app.Status != f.Status {
			continue
		}
		if f.SessionID != "" && app.SessionID != f.SessionID {
			continue
		}
		if f.ClassSection != "" && app.ClassSection != f.ClassSection {
			continue
		}
		out = append(out, copyApplication(app))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *appRepo) CountActiveSiblings(_ context.Context, guardianPhone, sessionID, excludeNumber string) (int, error) {
	defer r.s.acquire()()
	n := 0
	for _, app := range r.s.st.apps {
		if app.Number == excludeNumber || app.Status == entity.StatusRejected {
			continue
		}
		if app.GuardianPhone == guardianPhone && app.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

// docRepo implementación en memoria de DocumentRepository.
type docRepo struct{ s *Store }

func (r *docRepo) Add(_ context.Context, doc *entity.Document) error {
	defer r.s.acquire()()
	cp := *doc
	r.s.st.docs[doc.ApplicationNumber] = append(r.s.st.docs[doc.ApplicationNumber], &cp)
	return nil
}

func (r *docRepo) ListByApplication(_ context.Context, applicationNumber string) ([]*entity.Document, error) {
	defer r.s.acquire()()
	return append([]*entity.Document(nil), r.s.st.docs[applicationNumber]...), nil
}

// invoiceRepo implementación en memoria de InvoiceRepository.
type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	defer r.s.acquire()()
	// Emula el índice único por solicitud.
	if _, exists := r.s.st.invoicesByApp[inv.ApplicationNumber]; exists {
		return domain.ErrAlreadyInvoiced
	}
	cp := *inv
	cp.Lines = nil
	r.s.st.invoicesByApp[inv.ApplicationNumber] = &cp
	return nil
}

func (r *invoiceRepo) CreateLine(_ context.Context, line *entity.InvoiceLine) error {
	defer r.s.acquire()()
	cp := *line
	r.s.st.lines[line.InvoiceID] = append(r.s.st.lines[line.InvoiceID], &cp)
	return nil
}

func (r *invoiceRepo) GetByApplication(_ context.Context, applicationNumber string) (*entity.Invoice, error) {
	defer r.s.acquire()()
	inv, ok := r.s.st.invoicesByApp[applicationNumber]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *invoiceRepo) GetLines(_ context.Context, invoiceID string) ([]*entity.InvoiceLine, error) {
	defer r.s.acquire()()
	return append([]*entity.InvoiceLine(nil), r.s.st.lines[invoiceID]...), nil
}

func (r *invoiceRepo) NextSequence(_ context.Context, tenantID, period string) (int64, error) {
	defer r.s.acquire()()
	key := tenantID + "|" + period
	r.s.st.seqs[key]++
	return r.s.st.seqs[key], nil
}

// discountRepo implementación en memoria de DiscountRepository.
type discountRepo struct{ s *Store }

func (r *discountRepo) GetByCode(_ context.Context, code string) (*entity.DiscountRule, error) {
	defer r.s.acquire()()
	for i := range r.s.st.discounts {
		if strings.EqualFold(r.s.st.discounts[i].Code, code) {
			cp := r.s.st.discounts[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *discountRepo) GetByStudentType(_ context.Context, studentType string) (*entity.DiscountRule, error) {
	defer r.s.acquire()()
	for i := range r.s.st.discounts {
		if r.s.st.discounts[i].StudentType != "" && strings.EqualFold(r.s.st.discounts[i].StudentType, studentType) {
			cp := r.s.st.discounts[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *discountRepo) GetBySource(_ context.Context, source entity.DiscountSource) (*entity.DiscountRule, error) {
	defer r.s.acquire()()
	for i := range r.s.st.discounts {
		if r.s.st.discounts[i].Source == source && r.s.st.discounts[i].Code == "" && r.s.st.discounts[i].StudentType == "" {
			cp := r.s.st.discounts[i]
			return &cp, nil
		}
	}
	return nil, nil
}
