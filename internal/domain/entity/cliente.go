package entity

import (
	"time"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// Cliente representa un cliente del taller (facturación).
// NIF guarda el valor tal como está persistido: los registros antiguos pueden no superar la validación,
// por eso se valida al facturar (NIFValido) y no al leer.
type Cliente struct {
	ID        string
	TallerID  string
	Nombre    string
	NIF       string
	Email     string
	Telefono  string
	Direccion string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	DeletedBy string
}

// NIFValido devuelve el NIF validado o ValidationError si el valor persistido no es correcto.
func (c *Cliente) NIFValido() (valueobject.NIF, error) {
	return valueobject.NewNIF(c.NIF)
}

// Eliminado indica borrado lógico.
func (c *Cliente) Eliminado() bool { return c.DeletedAt != nil }
