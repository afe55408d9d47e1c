package repository

import "context"

// ClaveSecuencia identifica una secuencia de numeración independiente.
type ClaveSecuencia struct {
	TallerID string
	Serie    string
	Anio     int
}

// SecuenciaAllocator reserva el siguiente número de una secuencia.
// Debe ejecutarse dentro de la misma transacción que persiste la factura emitida:
// si la transacción se revierte, el número no se consume.
type SecuenciaAllocator interface {
	Siguiente(ctx context.Context, clave ClaveSecuencia) (int64, error)
}
