package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appadm "github.com/tu-usuario/admission-core/internal/application/admission"
	"github.com/tu-usuario/admission-core/internal/application/dispatch"
	"github.com/tu-usuario/admission-core/internal/application/dto"
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
	"github.com/tu-usuario/admission-core/internal/infrastructure/memory"
	"github.com/tu-usuario/admission-core/internal/infrastructure/notify"
	"github.com/tu-usuario/admission-core/pkg/logger"
)

// Pruebas de flujo completo: despachador + casos de uso + almacén en
// memoria, exactamente el cableado de producción salvo el binding postgres.

const (
	testSession = "2026-2027"
	testClass   = "grade-1"
)

func newEnv(t *testing.T) (*memory.Registry, *dispatch.Dispatcher) {
	t.Helper()
	reg := memory.NewRegistry()
	uc := appadm.NewUseCase(reg, reg, notify.NewConsole(logger.Nop()), logger.Nop())
	return reg, dispatch.New(reg, uc)
}

// registerCampus registra un campus activo con el tarifario estándar de las
// pruebas: matrícula 1000 con 5% de impuesto, acta de nacimiento obligatoria
// y sin examen de admisión.
func registerCampus(reg *memory.Registry, id string) *memory.Store {
	s := reg.Register(entity.Tenant{ID: id, Name: strings.ToUpper(id), IsActive: true, CreatedAt: time.Now()})
	s.SeedFeeSchedule(testSession, testClass, []entity.FeeEntity{{
		ID:         "fee-tuition",
		Type:       entity.FeeTuition,
		Name:       "Matrícula",
		BaseAmount: decimal.NewFromInt(1000),
		TaxPercent: decimal.NewFromInt(5),
	}})
	s.SeedMandatoryDocuments(testClass, []entity.DocumentType{entity.DocBirthCertificate})
	s.SeedTestRequired(testClass, false)
	return s
}

func submit(t *testing.T, d *dispatch.Dispatcher, tenantID, guardianPhone string) string {
	t.Helper()
	num, err := d.SubmitApplication(context.Background(), dto.SubmitApplicationCommand{
		TenantID:      tenantID,
		StudentName:   "Ana Pérez",
		GuardianName:  "Luis Pérez",
		GuardianPhone: guardianPhone,
		ClassSection:  testClass,
		SessionID:     testSession,
	})
	require.NoError(t, err, "SubmitApplication no debe fallar con datos completos")
	require.NotEmpty(t, num, "el número de solicitud es obligatorio")
	return num
}

// advanceToFeeCalculated lleva una solicitud nueva hasta FeeCalculated por
// la ruta sin examen.
func advanceToFeeCalculated(t *testing.T, d *dispatch.Dispatcher, tenantID, guardianPhone string) string {
	t.Helper()
	ctx := context.Background()
	num := submit(t, d, tenantID, guardianPhone)
	require.NoError(t, d.UploadDocument(ctx, dto.UploadDocumentCommand{
		TenantID: tenantID, ApplicationNumber: num,
		DocumentType: string(entity.DocBirthCertificate), DocumentRef: "s3://docs/acta.pdf",
	}))
	require.NoError(t, d.VerifyDocuments(ctx, dto.VerifyDocumentsCommand{TenantID: tenantID, ApplicationNumber: num}))
	require.NoError(t, d.SkipTest(ctx, dto.SkipTestCommand{TenantID: tenantID, ApplicationNumber: num}))
	_, err := d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: tenantID, ApplicationNumber: num})
	require.NoError(t, err)
	return num
}

func view(t *testing.T, d *dispatch.Dispatcher, tenantID, num string) *dto.ApplicationSnapshot {
	t.Helper()
	snap, err := d.ViewApplication(context.Background(), dto.ViewApplicationQuery{
		TenantID: tenantID, ApplicationNumber: num,
	})
	require.NoError(t, err)
	return snap
}

// TestFlujoCompleto_SinExamen recorre el ciclo de vida entero por la ruta
// sin examen: Enquiry -> Applied -> DocumentsPending -> Verified ->
// Approved -> FeeCalculated -> Invoiced -> Admitted, con los montos del
// vector de referencia (1000 base, 5% de impuesto, total 1050).
func TestFlujoCompleto_SinExamen(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	num := submit(t, d, "norte", "3001112233")
	assert.Equal(t, string(entity.StatusApplied), view(t, d, "norte", num).Status,
		"submit deja la solicitud en Applied")

	require.NoError(t, d.UploadDocument(ctx, dto.UploadDocumentCommand{
		TenantID: "norte", ApplicationNumber: num,
		DocumentType: string(entity.DocBirthCertificate), DocumentRef: "s3://docs/acta.pdf",
	}))
	assert.Equal(t, string(entity.StatusDocumentsPending), view(t, d, "norte", num).Status)

	require.NoError(t, d.VerifyDocuments(ctx, dto.VerifyDocumentsCommand{TenantID: "norte", ApplicationNumber: num}))
	assert.Equal(t, string(entity.StatusVerified), view(t, d, "norte", num).Status)

	require.NoError(t, d.SkipTest(ctx, dto.SkipTestCommand{TenantID: "norte", ApplicationNumber: num}))
	snap := view(t, d, "norte", num)
	assert.Equal(t, string(entity.StatusApproved), snap.Status)
	assert.True(t, snap.Approved, "skipTest marca la solicitud como aprobada")

	bd, err := d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: "norte", ApplicationNumber: num})
	require.NoError(t, err)
	require.Len(t, bd.Lines, 1)
	assert.True(t, bd.Total.Equal(decimal.NewFromInt(1050)),
		"1000 base con 5%% de impuesto debe totalizar 1050, obtenido %s", bd.Total)

	inv, err := d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: num})
	require.NoError(t, err)
	assert.True(t, inv.Total.Equal(decimal.NewFromInt(1050)), "la factura cobra lo cotizado")
	require.Len(t, inv.Lines, 1, "el snapshot de líneas acompaña la cabecera")
	period := time.Now().UTC().Format("2006-01")
	assert.Equal(t, fmt.Sprintf("NORTE-%s-000001", period), inv.Number,
		"el número de factura es CAMPUS-PERIODO-consecutivo")

	require.NoError(t, d.ConfirmAdmission(ctx, dto.ConfirmAdmissionCommand{TenantID: "norte", ApplicationNumber: num}))
	snap = view(t, d, "norte", num)
	assert.Equal(t, string(entity.StatusAdmitted), snap.Status)
	assert.True(t, snap.Completed, "confirmar admisión marca el ciclo como completo")
	require.NotNil(t, snap.Invoice, "la vista incluye la factura emitida")
	assert.Equal(t, inv.Number, snap.Invoice.Number)
	require.NotNil(t, snap.Fee, "la vista incluye el desglose calculado")
	assert.Contains(t, snap.Documents, string(entity.DocBirthCertificate))
}

// TestDescuentoHermanos_TotalConDescuento con otra solicitud activa del
// mismo acudiente y la regla de hermanos al 10%, la cuota pasa de 1050 a
// 950: el descuento (100) se calcula sobre la base antes de impuestos.
func TestDescuentoHermanos_TotalConDescuento(t *testing.T) {
	reg, d := newEnv(t)
	store := registerCampus(reg, "norte")
	store.SeedDiscount(entity.DiscountRule{
		ID: "disc-sibling", Source: entity.DiscountSibling,
		Percent: decimal.NewFromInt(10), Approved: true,
	})
	ctx := context.Background()

	// Primera solicitud del acudiente: queda activa en Applied.
	submit(t, d, "norte", "3009998877")

	num := submit(t, d, "norte", "3009998877")
	require.NoError(t, d.UploadDocument(ctx, dto.UploadDocumentCommand{
		TenantID: "norte", ApplicationNumber: num,
		DocumentType: string(entity.DocBirthCertificate), DocumentRef: "s3://docs/acta.pdf",
	}))
	require.NoError(t, d.VerifyDocuments(ctx, dto.VerifyDocumentsCommand{TenantID: "norte", ApplicationNumber: num}))
	require.NoError(t, d.SkipTest(ctx, dto.SkipTestCommand{TenantID: "norte", ApplicationNumber: num}))

	bd, err := d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: "norte", ApplicationNumber: num})
	require.NoError(t, err)
	require.Len(t, bd.Lines, 1)
	assert.True(t, bd.Lines[0].DiscountAmount.Equal(decimal.NewFromInt(100)),
		"10%% de la base 1000, obtenido %s", bd.Lines[0].DiscountAmount)
	assert.True(t, bd.Total.Equal(decimal.NewFromInt(950)),
		"1050 - 100 = 950, obtenido %s", bd.Total)
	assert.Contains(t, bd.Lines[0].DiscountSources, string(entity.DiscountSibling))
}

// TestDescuentoHermanos_SinOtraSolicitud sin otra solicitud activa del
// acudiente la regla de hermanos no aplica aunque esté sembrada.
func TestDescuentoHermanos_SinOtraSolicitud(t *testing.T) {
	reg, d := newEnv(t)
	store := registerCampus(reg, "norte")
	store.SeedDiscount(entity.DiscountRule{
		ID: "disc-sibling", Source: entity.DiscountSibling,
		Percent: decimal.NewFromInt(10), Approved: true,
	})

	num := advanceToFeeCalculated(t, d, "norte", "3000000001")
	snap := view(t, d, "norte", num)
	require.NotNil(t, snap.Fee)
	assert.True(t, snap.Fee.Total.Equal(decimal.NewFromInt(1050)),
		"sin hermano activo el total es 1050, obtenido %s", snap.Fee.Total)
}

// TestCodigoReferido_ValidoEInvalido un código de referido vigente aplica
// su porcentaje; uno inexistente se ignora sin fallar el cálculo.
func TestCodigoReferido_ValidoEInvalido(t *testing.T) {
	reg, d := newEnv(t)
	store := registerCampus(reg, "norte")
	store.SeedDiscount(entity.DiscountRule{
		ID: "disc-ref", Source: entity.DiscountReferral, Code: "AMIGO10",
		Percent: decimal.NewFromInt(10), Approved: true,
	})
	ctx := context.Background()

	run := func(referral string) decimal.Decimal {
		num, err := d.SubmitApplication(ctx, dto.SubmitApplicationCommand{
			TenantID: "norte", StudentName: "Ana Pérez", GuardianName: "Luis Pérez",
			GuardianPhone: "30012345" + referral, ClassSection: testClass,
			SessionID: testSession, ReferralCode: referral,
		})
		require.NoError(t, err)
		require.NoError(t, d.UploadDocument(ctx, dto.UploadDocumentCommand{
			TenantID: "norte", ApplicationNumber: num,
			DocumentType: string(entity.DocBirthCertificate), DocumentRef: "ref",
		}))
		require.NoError(t, d.VerifyDocuments(ctx, dto.VerifyDocumentsCommand{TenantID: "norte", ApplicationNumber: num}))
		require.NoError(t, d.SkipTest(ctx, dto.SkipTestCommand{TenantID: "norte", ApplicationNumber: num}))
		bd, err := d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: "norte", ApplicationNumber: num})
		require.NoError(t, err)
		return bd.Total
	}

	assert.True(t, run("AMIGO10").Equal(decimal.NewFromInt(950)),
		"código vigente descuenta 10% de la base")
	assert.True(t, run("NOEXISTE").Equal(decimal.NewFromInt(1050)),
		"código inexistente se ignora, nunca es fatal")
}

// TestReglasVencidas_SeIgnoran reglas sembradas pero vencidas o sin aprobar
// no aplican ni hacen fallar el cálculo: el total queda sin descuento.
func TestReglasVencidas_SeIgnoran(t *testing.T) {
	reg, d := newEnv(t)
	store := registerCampus(reg, "norte")
	store.SeedDiscount(entity.DiscountRule{
		ID: "disc-staff", Source: entity.DiscountStaff, StudentType: "staff",
		Percent: decimal.NewFromInt(20), Approved: true,
		ValidUntil: time.Now().UTC().Add(-time.Hour),
	})
	store.SeedDiscount(entity.DiscountRule{
		ID: "disc-sibling", Source: entity.DiscountSibling,
		Percent: decimal.NewFromInt(10), Approved: false,
	})
	ctx := context.Background()

	// Otra solicitud activa del acudiente: el origen hermanos sí se evalúa,
	// pero su regla está sin aprobar.
	submit(t, d, "norte", "3006660001")

	num, err := d.SubmitApplication(ctx, dto.SubmitApplicationCommand{
		TenantID: "norte", StudentName: "Ana Pérez", StudentType: "staff",
		GuardianName: "Luis Pérez", GuardianPhone: "3006660001",
		ClassSection: testClass, SessionID: testSession,
	})
	require.NoError(t, err)
	require.NoError(t, d.UploadDocument(ctx, dto.UploadDocumentCommand{
		TenantID: "norte", ApplicationNumber: num,
		DocumentType: string(entity.DocBirthCertificate), DocumentRef: "ref",
	}))
	require.NoError(t, d.VerifyDocuments(ctx, dto.VerifyDocumentsCommand{TenantID: "norte", ApplicationNumber: num}))
	require.NoError(t, d.SkipTest(ctx, dto.SkipTestCommand{TenantID: "norte", ApplicationNumber: num}))

	bd, err := d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: "norte", ApplicationNumber: num})
	require.NoError(t, err)
	require.Len(t, bd.Lines, 1)
	assert.Empty(t, bd.Lines[0].DiscountSources, "ninguna regla inválida deja rastro en la línea")
	assert.True(t, bd.Total.Equal(decimal.NewFromInt(1050)),
		"reglas vencidas o sin aprobar no descuentan: esperado 1050, obtenido %s", bd.Total)
}

// TestEmisionIdempotente_SegundaFalla la segunda emisión sobre la misma
// solicitud falla con ErrAlreadyInvoiced y no produce otra factura.
func TestEmisionIdempotente_SegundaFalla(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	num := advanceToFeeCalculated(t, d, "norte", "3001112233")
	first, err := d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: num})
	require.NoError(t, err)

	_, err = d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced, "reintento debe fallar, no duplicar")

	// También después de cerrar el ciclo.
	require.NoError(t, d.ConfirmAdmission(ctx, dto.ConfirmAdmissionCommand{TenantID: "norte", ApplicationNumber: num}))
	_, err = d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)

	snap := view(t, d, "norte", num)
	require.NotNil(t, snap.Invoice)
	assert.Equal(t, first.Number, snap.Invoice.Number, "la factura visible sigue siendo la primera")
}

// TestEmisionConcurrente_SoloUnaFactura N emisiones simultáneas sobre la
// misma solicitud producen exactamente una factura; las demás fallan con
// ErrAlreadyInvoiced o ErrConcurrentModification.
func TestEmisionConcurrente_SoloUnaFactura(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	num := advanceToFeeCalculated(t, d, "norte", "3001112233")

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: num})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t,
			errors.Is(err, domain.ErrAlreadyInvoiced) || errors.Is(err, domain.ErrConcurrentModification),
			"falla inesperada en emisión concurrente: %v", err)
	}
	assert.Equal(t, 1, ok, "exactamente una emisión debe ganar")

	snap := view(t, d, "norte", num)
	assert.Equal(t, string(entity.StatusInvoiced), snap.Status)
	require.NotNil(t, snap.Invoice, "la única factura queda visible")
}

// TestAislamientoDeCampus una solicitud de un campus es invisible desde
// otro; un campus desconocido o deshabilitado falla con ErrTenantNotFound.
func TestAislamientoDeCampus(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	registerCampus(reg, "sur")
	reg.Register(entity.Tenant{ID: "cerrado", Name: "Cerrado", IsActive: false})
	ctx := context.Background()

	num := submit(t, d, "norte", "3001112233")

	_, err := d.ViewApplication(ctx, dto.ViewApplicationQuery{TenantID: "sur", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrNotFound,
		"el almacén de otro campus no conoce la solicitud")

	_, err = d.ViewApplication(ctx, dto.ViewApplicationQuery{TenantID: "fantasma", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound, "campus no registrado")

	_, err = d.SubmitApplication(ctx, dto.SubmitApplicationCommand{
		TenantID: "cerrado", StudentName: "Ana", GuardianName: "Luis",
		GuardianPhone: "300", ClassSection: testClass, SessionID: testSession,
	})
	assert.ErrorIs(t, err, domain.ErrTenantNotFound, "campus deshabilitado")
}

// TestAislamientoDeCampus_ConsecutivosIndependientes cada campus lleva su
// propio consecutivo de facturas: ambos emiten el número 000001.
func TestAislamientoDeCampus_ConsecutivosIndependientes(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	registerCampus(reg, "sur")
	ctx := context.Background()
	period := time.Now().UTC().Format("2006-01")

	numA := advanceToFeeCalculated(t, d, "norte", "3001")
	numB := advanceToFeeCalculated(t, d, "sur", "3002")

	invA, err := d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: numA})
	require.NoError(t, err)
	invB, err := d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "sur", ApplicationNumber: numB})
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("NORTE-%s-000001", period), invA.Number)
	assert.Equal(t, fmt.Sprintf("SUR-%s-000001", period), invB.Number,
		"el consecutivo del segundo campus arranca en 1, no comparte secuencia")
}

// TestVerificar_DocumentosFaltantes verificar sin el documento obligatorio
// falla con ErrMissingDocuments nombrando lo que falta, y el estado
// almacenado queda intacto.
func TestVerificar_DocumentosFaltantes(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	num := submit(t, d, "norte", "3001112233")
	require.NoError(t, d.UploadDocument(ctx, dto.UploadDocumentCommand{
		TenantID: "norte", ApplicationNumber: num,
		DocumentType: string(entity.DocPhoto), DocumentRef: "s3://docs/foto.jpg",
	}))

	err := d.VerifyDocuments(ctx, dto.VerifyDocumentsCommand{TenantID: "norte", ApplicationNumber: num})
	require.ErrorIs(t, err, domain.ErrMissingDocuments)
	assert.Contains(t, err.Error(), string(entity.DocBirthCertificate),
		"el error nombra el documento faltante")

	assert.Equal(t, string(entity.StatusDocumentsPending), view(t, d, "norte", num).Status,
		"un rechazo de verificación jamás mueve el estado")
}

// TestExamenRequerido_AprobadoYReprobado clase con examen: skipTest se
// rechaza, el resultado aprobado avanza a Approved y el reprobado cierra
// en Rejected (terminal).
func TestExamenRequerido_AprobadoYReprobado(t *testing.T) {
	reg, d := newEnv(t)
	store := registerCampus(reg, "norte")
	store.SeedFeeSchedule(testSession, "grade-9", []entity.FeeEntity{{
		ID: "fee-tuition", Type: entity.FeeTuition, Name: "Matrícula",
		BaseAmount: decimal.NewFromInt(1000), TaxPercent: decimal.NewFromInt(5),
	}})
	store.SeedMandatoryDocuments("grade-9", []entity.DocumentType{entity.DocBirthCertificate})
	store.SeedTestRequired("grade-9", true)
	ctx := context.Background()

	start := func(phone string) string {
		num, err := d.SubmitApplication(ctx, dto.SubmitApplicationCommand{
			TenantID: "norte", StudentName: "Ana Pérez", GuardianName: "Luis Pérez",
			GuardianPhone: phone, ClassSection: "grade-9", SessionID: testSession,
		})
		require.NoError(t, err)
		require.NoError(t, d.UploadDocument(ctx, dto.UploadDocumentCommand{
			TenantID: "norte", ApplicationNumber: num,
			DocumentType: string(entity.DocBirthCertificate), DocumentRef: "ref",
		}))
		require.NoError(t, d.VerifyDocuments(ctx, dto.VerifyDocumentsCommand{TenantID: "norte", ApplicationNumber: num}))
		return num
	}

	// Aprobado.
	pass := start("3005550001")
	err := d.SkipTest(ctx, dto.SkipTestCommand{TenantID: "norte", ApplicationNumber: pass})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition,
		"la clase exige examen: no se puede aprobar directo")
	require.NoError(t, d.ScheduleTest(ctx, dto.ScheduleTestCommand{TenantID: "norte", ApplicationNumber: pass}))
	assert.Equal(t, string(entity.StatusTestScheduled), view(t, d, "norte", pass).Status)
	require.NoError(t, d.RecordTestResult(ctx, dto.RecordTestResultCommand{
		TenantID: "norte", ApplicationNumber: pass, Passed: true,
	}))
	snap := view(t, d, "norte", pass)
	assert.Equal(t, string(entity.StatusApproved), snap.Status)
	assert.True(t, snap.Approved)

	// Reprobado: terminal, nada más puede pasar.
	fail := start("3005550002")
	require.NoError(t, d.ScheduleTest(ctx, dto.ScheduleTestCommand{TenantID: "norte", ApplicationNumber: fail}))
	require.NoError(t, d.RecordTestResult(ctx, dto.RecordTestResultCommand{
		TenantID: "norte", ApplicationNumber: fail, Passed: false,
	}))
	snap = view(t, d, "norte", fail)
	assert.Equal(t, string(entity.StatusRejected), snap.Status)
	assert.False(t, snap.Approved)

	_, err = d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: "norte", ApplicationNumber: fail})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "Rejected es terminal")
	err = d.UploadDocument(ctx, dto.UploadDocumentCommand{
		TenantID: "norte", ApplicationNumber: fail,
		DocumentType: string(entity.DocPhoto), DocumentRef: "ref",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "ninguna mutación sobre un terminal")
}

// TestTransicionesIlegales_DesdeElDespachador eventos fuera de orden fallan
// con ErrInvalidTransition sin tocar la solicitud.
func TestTransicionesIlegales_DesdeElDespachador(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	num := submit(t, d, "norte", "3001112233")

	_, err := d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "emitir desde Applied es ilegal")

	_, err = d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: "norte", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "calcular cuota desde Applied es ilegal")

	err = d.ConfirmAdmission(ctx, dto.ConfirmAdmissionCommand{TenantID: "norte", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, string(entity.StatusApplied), view(t, d, "norte", num).Status,
		"los rechazos no mueven el estado")
}

// TestCalcularCuota_DespuesDeFacturar recalcular después de emitir falla
// con ErrAlreadyInvoiced: la factura cobra exactamente lo cotizado.
func TestCalcularCuota_DespuesDeFacturar(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	num := advanceToFeeCalculated(t, d, "norte", "3001112233")
	_, err := d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: num})
	require.NoError(t, err)

	_, err = d.CalculateFee(ctx, dto.CalculateFeeQuery{TenantID: "norte", ApplicationNumber: num})
	assert.ErrorIs(t, err, domain.ErrAlreadyInvoiced)
}

// TestValidacion_ComandosIncompletos el despachador rechaza comandos sin
// campos requeridos con ErrValidation antes de resolver el campus.
func TestValidacion_ComandosIncompletos(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	_, err := d.SubmitApplication(ctx, dto.SubmitApplicationCommand{
		TenantID: "norte", GuardianName: "Luis", GuardianPhone: "300",
		ClassSection: testClass, SessionID: testSession,
	})
	assert.ErrorIs(t, err, domain.ErrValidation, "falta el nombre del estudiante")

	err = d.UploadDocument(ctx, dto.UploadDocumentCommand{TenantID: "norte", ApplicationNumber: "ADM-x"})
	assert.ErrorIs(t, err, domain.ErrValidation, "faltan tipo y referencia del documento")

	_, err = d.ViewApplication(ctx, dto.ViewApplicationQuery{ApplicationNumber: "ADM-x"})
	assert.ErrorIs(t, err, domain.ErrValidation, "falta el campus")
}

// TestSolicitudInexistente operaciones sobre números desconocidos fallan
// con ErrNotFound.
func TestSolicitudInexistente(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	_, err := d.ViewApplication(ctx, dto.ViewApplicationQuery{TenantID: "norte", ApplicationNumber: "ADM-no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = d.IssueInvoice(ctx, dto.IssueInvoiceCommand{TenantID: "norte", ApplicationNumber: "ADM-no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestListarSolicitudes_Filtros el listado filtra por estado y respeta el
// límite pedido.
func TestListarSolicitudes_Filtros(t *testing.T) {
	reg, d := newEnv(t)
	registerCampus(reg, "norte")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		submit(t, d, "norte", fmt.Sprintf("30000000%d", i))
	}
	advanceToFeeCalculated(t, d, "norte", "3009990000")

	applied, err := d.ListApplications(ctx, dto.ListApplicationsQuery{
		TenantID: "norte", Status: string(entity.StatusApplied),
	})
	require.NoError(t, err)
	assert.Len(t, applied, 3, "solo las solicitudes en Applied")

	limited, err := d.ListApplications(ctx, dto.ListApplicationsQuery{TenantID: "norte", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2, "el límite acota el listado")
}
