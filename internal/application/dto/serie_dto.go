package dto

// CrearSerieRequest body para POST /api/series.
type CrearSerieRequest struct {
	Codigo         string `json:"codigo" validate:"required,max=10"`
	Descripcion    string `json:"descripcion,omitempty" validate:"max=200"`
	Tipo           string `json:"tipo,omitempty" validate:"omitempty,oneof=NORMAL RECTIFICATIVA SIMPLIFICADA PROFORMA"`
	Predeterminada bool   `json:"predeterminada"`
}

// SerieResponse serie configurada del taller.
type SerieResponse struct {
	ID             string `json:"id"`
	Codigo         string `json:"codigo"`
	Descripcion    string `json:"descripcion,omitempty"`
	Tipo           string `json:"tipo"`
	Predeterminada bool   `json:"predeterminada"`
	Activa         bool   `json:"activa"`
}
