package entity

import "time"

// DocumentType tipo de documento adjunto a una solicitud.
type DocumentType string

const (
	DocBirthCertificate    DocumentType = "BIRTH_CERTIFICATE"
	DocTransferCertificate DocumentType = "TRANSFER_CERTIFICATE"
	DocPhoto               DocumentType = "PHOTO"
	DocAddressProof        DocumentType = "ADDRESS_PROOF"
	DocReportCard          DocumentType = "REPORT_CARD"
)

// Document referencia a un documento cargado para una solicitud.
// Ref es opaco para el núcleo (ruta, clave de objeto, etc.).
type Document struct {
	ID                string
	ApplicationNumber string
	Type              DocumentType
	Ref               string
	UploadedAt        time.Time
}
