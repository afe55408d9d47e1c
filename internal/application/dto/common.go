package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// LimitePorDefecto y LimiteMaximo acotan el tamaño de página.
const (
	LimitePorDefecto = 20
	LimiteMaximo     = 100
)

// DefaultPage aplica valores por defecto si Limit/Offset no son válidos.
func (p *PageRequest) DefaultPage() {
	p.Limit, p.Offset = NormalizarPagina(p.Limit, p.Offset)
}

// NormalizarPagina aplica el límite por defecto y el máximo.
func NormalizarPagina(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = LimitePorDefecto
	}
	if limit > LimiteMaximo {
		limit = LimiteMaximo
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
