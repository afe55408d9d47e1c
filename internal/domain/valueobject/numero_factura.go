package valueobject

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
)

// SecuenciaMaxima es el mayor número representable con 6 dígitos.
const SecuenciaMaxima = 999_999

var (
	patronSerie  = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)
	patronNumero = regexp.MustCompile(`^([A-Z0-9]{1,10})-(\d{4})-(\d{6})$`)
)

// Serie es una corriente de numeración con nombre (ej: "FA").
type Serie struct {
	codigo string
}

// NewSerie normaliza a mayúsculas y valida 1..10 caracteres alfanuméricos.
func NewSerie(raw string) (Serie, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !patronSerie.MatchString(s) {
		return Serie{}, domain.Validation("serie %q inválida: 1 a 10 caracteres alfanuméricos", raw)
	}
	return Serie{codigo: s}, nil
}

// String devuelve el código de la serie.
func (s Serie) String() string { return s.codigo }

// IsZero indica una serie sin inicializar.
func (s Serie) IsZero() bool { return s.codigo == "" }

// NumeroFactura es el número legal SERIE-AAAA-NNNNNN.
type NumeroFactura struct {
	serie     Serie
	anio      int
	secuencia int64
}

// NewNumeroFactura construye el número desde sus tres partes.
func NewNumeroFactura(serie Serie, anio int, secuencia int64) (NumeroFactura, error) {
	if serie.IsZero() {
		return NumeroFactura{}, domain.Validation("número de factura sin serie")
	}
	if anio < 1000 || anio > 9999 {
		return NumeroFactura{}, domain.Validation("año %d inválido en número de factura", anio)
	}
	if secuencia < 1 || secuencia > SecuenciaMaxima {
		return NumeroFactura{}, domain.Validation("secuencia %d fuera de rango [1, %d]", secuencia, SecuenciaMaxima)
	}
	return NumeroFactura{serie: serie, anio: anio, secuencia: secuencia}, nil
}

// ParseNumeroFactura interpreta "FA-2024-000001".
func ParseNumeroFactura(raw string) (NumeroFactura, error) {
	m := patronNumero.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(raw)))
	if m == nil {
		return NumeroFactura{}, domain.Validation("número de factura %q no sigue el formato SERIE-AAAA-NNNNNN", raw)
	}
	serie, err := NewSerie(m[1])
	if err != nil {
		return NumeroFactura{}, err
	}
	anio, _ := strconv.Atoi(m[2])
	sec, _ := strconv.ParseInt(m[3], 10, 64)
	return NewNumeroFactura(serie, anio, sec)
}

// Serie devuelve la serie del número.
func (n NumeroFactura) Serie() Serie { return n.serie }

// Anio devuelve el año.
func (n NumeroFactura) Anio() int { return n.anio }

// Secuencia devuelve el contador dentro de (serie, año).
func (n NumeroFactura) Secuencia() int64 { return n.secuencia }

// IsZero indica un número sin asignar.
func (n NumeroFactura) IsZero() bool { return n.secuencia == 0 }

// String formatea SERIE-AAAA-NNNNNN.
func (n NumeroFactura) String() string {
	if n.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s-%04d-%06d", n.serie.codigo, n.anio, n.secuencia)
}

// Equal compara las tres partes.
func (n NumeroFactura) Equal(o NumeroFactura) bool {
	return n.serie == o.serie && n.anio == o.anio && n.secuencia == o.secuencia
}

// Compare ordena por serie, luego año y luego secuencia numérica (nunca lexicográfica).
// Devuelve -1, 0 o 1.
func (n NumeroFactura) Compare(o NumeroFactura) int {
	switch {
	case n.serie.codigo != o.serie.codigo:
		return strings.Compare(n.serie.codigo, o.serie.codigo)
	case n.anio != o.anio:
		return cmpInt(int64(n.anio), int64(o.anio))
	default:
		return cmpInt(n.secuencia, o.secuencia)
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
