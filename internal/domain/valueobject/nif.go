package valueobject

import (
	"strings"
	"unicode"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
)

// TipoNIF distingue las tres variantes de identificador fiscal español.
type TipoNIF string

const (
	TipoDNI TipoNIF = "DNI" // persona física residente
	TipoNIE TipoNIF = "NIE" // persona física extranjera
	TipoCIF TipoNIF = "CIF" // persona jurídica
)

// letras de control DNI/NIE: índice = número módulo 23.
const letrasDNI = "TRWAGMYFPDXBNJZSQVHLCKE"

// letras de control CIF cuando el dígito se expresa como letra.
const letrasCIF = "JABCDEFGHI"

// Letras de organización admitidas en el primer carácter de un CIF.
const (
	letrasOrganizacion   = "ABCDEFGHJNPQRSUVW"
	organizacionConLetra = "NPQRSW" // control obligatoriamente letra
	organizacionConDigit = "ABEH"   // control obligatoriamente dígito
)

// NIF es un identificador fiscal validado (estructura y dígito/letra de control), normalizado a mayúsculas.
type NIF struct {
	valor string
	tipo  TipoNIF
}

// NewNIF normaliza (mayúsculas, sin espacios, guiones ni puntos) y valida el identificador.
// No hay valor por defecto: cualquier entrada mal formada devuelve ValidationError.
func NewNIF(raw string) (NIF, error) {
	s := normalizarNIF(raw)
	if len(s) != 9 {
		return NIF{}, domain.Validation("NIF %q: debe tener 9 caracteres", raw)
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9':
		if err := validarDNI(s); err != nil {
			return NIF{}, err
		}
		return NIF{valor: s, tipo: TipoDNI}, nil
	case c == 'X' || c == 'Y' || c == 'Z':
		prefijo := map[byte]byte{'X': '0', 'Y': '1', 'Z': '2'}[c]
		if err := validarDNI(string(prefijo) + s[1:]); err != nil {
			return NIF{}, domain.Validation("NIE %q: %s", s, domain.Message(err))
		}
		return NIF{valor: s, tipo: TipoNIE}, nil
	case strings.IndexByte(letrasOrganizacion, c) >= 0:
		if err := validarCIF(s); err != nil {
			return NIF{}, err
		}
		return NIF{valor: s, tipo: TipoCIF}, nil
	default:
		return NIF{}, domain.Validation("NIF %q: primer carácter no reconocido", raw)
	}
}

// String devuelve el NIF normalizado.
func (n NIF) String() string { return n.valor }

// Tipo devuelve la variante (DNI, NIE o CIF).
func (n NIF) Tipo() TipoNIF { return n.tipo }

// IsZero indica un NIF no inicializado.
func (n NIF) IsZero() bool { return n.valor == "" }

// Equal compara dos NIF normalizados.
func (n NIF) Equal(o NIF) bool { return n.valor == o.valor }

func normalizarNIF(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func validarDNI(s string) error {
	num := 0
	for i := 0; i < 8; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return domain.Validation("NIF %q: los 8 primeros caracteres deben ser dígitos", s)
		}
		num = num*10 + int(d-'0')
	}
	esperada := letrasDNI[num%23]
	if s[8] != esperada {
		return domain.Validation("NIF %q: letra de control incorrecta, se esperaba %c", s, esperada)
	}
	return nil
}

func validarCIF(s string) error {
	org := s[0]
	var suma int
	for i := 1; i <= 7; i++ {
		d := s[i]
		if d < '0' || d > '9' {
			return domain.Validation("CIF %q: posiciones 2 a 8 deben ser dígitos", s)
		}
		n := int(d - '0')
		// posiciones impares (1ª, 3ª, 5ª, 7ª del bloque numérico) se doblan y se suman sus cifras
		if i%2 == 1 {
			n *= 2
			n = n/10 + n%10
		}
		suma += n
	}
	digito := (10 - suma%10) % 10
	letra := letrasCIF[digito]
	control := s[8]

	switch {
	case strings.IndexByte(organizacionConLetra, org) >= 0:
		if control != letra {
			return domain.Validation("CIF %q: carácter de control incorrecto, se esperaba %c", s, letra)
		}
	case strings.IndexByte(organizacionConDigit, org) >= 0:
		if control != byte('0'+digito) {
			return domain.Validation("CIF %q: dígito de control incorrecto, se esperaba %d", s, digito)
		}
	default:
		if control != letra && control != byte('0'+digito) {
			return domain.Validation("CIF %q: carácter de control incorrecto", s)
		}
	}
	return nil
}
