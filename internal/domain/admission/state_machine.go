package admission

import (
	"github.com/tu-usuario/admission-core/internal/domain"
	"github.com/tu-usuario/admission-core/internal/domain/entity"
)

// Event disparadores del ciclo de vida de una solicitud.
type Event string

const (
	EventSubmit           Event = "submit"
	EventUploadDocuments  Event = "uploadDocuments"
	EventVerify           Event = "verify"
	EventScheduleTest     Event = "scheduleTest"
	EventSkipTest         Event = "skipTest"
	EventRecordResultPass Event = "recordResult(pass)"
	EventRecordResultFail Event = "recordResult(fail)"
	EventCalculateFee     Event = "calculateFee"
	EventIssueInvoice     Event = "issueInvoice"
	EventConfirmAdmission Event = "confirmAdmission"
)

// States todos los estados del ciclo de vida. Útil para recorridos
// exhaustivos en pruebas.
var States = []entity.Status{
	entity.StatusEnquiry,
	entity.StatusApplied,
	entity.StatusDocumentsPending,
	entity.StatusVerified,
	entity.StatusTestScheduled,
	entity.StatusTestCompleted,
	entity.StatusApproved,
	entity.StatusRejected,
	entity.StatusFeeCalculated,
	entity.StatusInvoiced,
	entity.StatusAdmitted,
}

// Events todos los eventos reconocidos.
var Events = []Event{
	EventSubmit,
	EventUploadDocuments,
	EventVerify,
	EventScheduleTest,
	EventSkipTest,
	EventRecordResultPass,
	EventRecordResultFail,
	EventCalculateFee,
	EventIssueInvoice,
	EventConfirmAdmission,
}

type transition struct {
	from  entity.Status
	event Event
}

// Tabla de transiciones legales. Los guards (campos requeridos, documentos
// obligatorios, examen requerido, no facturada) los evalúa cada caso de uso
// antes de aplicar la transición; la tabla solo encierra la topología.
var transitions = map[transition]entity.Status{
	{entity.StatusEnquiry, EventSubmit}:                 entity.StatusApplied,
	{entity.StatusApplied, EventUploadDocuments}:        entity.StatusDocumentsPending,
	{entity.StatusDocumentsPending, EventVerify}:        entity.StatusVerified,
	{entity.StatusVerified, EventScheduleTest}:          entity.StatusTestScheduled,
	{entity.StatusVerified, EventSkipTest}:              entity.StatusApproved,
	{entity.StatusTestScheduled, EventRecordResultPass}: entity.StatusApproved,
	{entity.StatusTestScheduled, EventRecordResultFail}: entity.StatusRejected,
	{entity.StatusApproved, EventCalculateFee}:          entity.StatusFeeCalculated,
	{entity.StatusFeeCalculated, EventIssueInvoice}:     entity.StatusInvoiced,
	{entity.StatusInvoiced, EventConfirmAdmission}:      entity.StatusAdmitted,
}

// Next retorna el estado destino para (estado, evento), o TransitionError
// si el par no está en la tabla. Nunca muta nada: el estado almacenado
// queda intacto ante un rechazo.
func Next(from entity.Status, ev Event) (entity.Status, error) {
	to, ok := transitions[transition{from, ev}]
	if !ok {
		return from, &domain.TransitionError{From: string(from), Event: string(ev)}
	}
	return to, nil
}

// CanFire indica si el evento es legal desde el estado dado.
func CanFire(from entity.Status, ev Event) bool {
	_, ok := transitions[transition{from, ev}]
	return ok
}

// EnsureMutable es el guard consolidado "ya admitida/rechazada": todo caso
// de uso mutador lo invoca antes de cualquier otra cosa, independiente de
// la tabla, para que peticiones duplicadas concurrentes no re-ejecuten
// cálculo de cuota ni re-emitan facturas.
func EnsureMutable(app *entity.Application, ev Event) error {
	if app.Status.IsTerminal() {
		return &domain.TransitionError{From: string(app.Status), Event: string(ev)}
	}
	return nil
}
