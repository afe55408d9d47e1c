package dto

// CrearClienteRequest body para POST /api/clientes.
type CrearClienteRequest struct {
	Nombre    string `json:"nombre" validate:"required,max=200"`
	NIF       string `json:"nif" validate:"required,max=20"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Telefono  string `json:"telefono,omitempty" validate:"max=30"`
	Direccion string `json:"direccion,omitempty" validate:"max=300"`
}

// ClienteResponse cliente en respuestas.
type ClienteResponse struct {
	ID        string `json:"id"`
	TallerID  string `json:"taller_id"`
	Nombre    string `json:"nombre"`
	NIF       string `json:"nif"`
	Email     string `json:"email,omitempty"`
	Telefono  string `json:"telefono,omitempty"`
	Direccion string `json:"direccion,omitempty"`
}

// ActualizarClienteRequest body para PUT /api/clientes/:id. Solo se cambian los campos presentes.
type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre,omitempty" validate:"omitempty,min=1,max=200"`
	NIF       *string `json:"nif,omitempty" validate:"omitempty,max=20"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Telefono  *string `json:"telefono,omitempty" validate:"omitempty,max=30"`
	Direccion *string `json:"direccion,omitempty" validate:"omitempty,max=300"`
}
