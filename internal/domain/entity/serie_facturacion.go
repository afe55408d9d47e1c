package entity

import "time"

// SerieFacturacion es una serie de numeración configurada por el taller.
// Cada taller puede tener varias series (ordinarias, rectificativas...) y una de ellas es la predeterminada.
type SerieFacturacion struct {
	ID           string
	TallerID     string
	Codigo       string // ej: "FA", "R"
	Descripcion  string
	Tipo         TipoFactura // tipo de factura que se emite con esta serie
	Predetermina bool
	Activa       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
