package entity

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Dani0091/taller-saas-sub000/internal/domain"
	"github.com/Dani0091/taller-saas-sub000/internal/domain/valueobject"
)

// EstadoFactura es el estado persistido de una factura.
type EstadoFactura string

const (
	EstadoBorrador EstadoFactura = "DRAFT"
	EstadoEmitida  EstadoFactura = "ISSUED"
	EstadoPagada   EstadoFactura = "PAID"
	EstadoAnulada  EstadoFactura = "VOIDED"

	// EstadoVencida no se persiste: es una emitida cuya fecha de vencimiento ya pasó.
	// Solo se usa como filtro de listado.
	EstadoVencida EstadoFactura = "OVERDUE"
)

// Valido indica si el estado es uno de los persistibles.
func (e EstadoFactura) Valido() bool {
	switch e {
	case EstadoBorrador, EstadoEmitida, EstadoPagada, EstadoAnulada:
		return true
	}
	return false
}

// TipoFactura distingue la clase legal del documento.
type TipoFactura string

const (
	TipoNormal        TipoFactura = "NORMAL"
	TipoRectificativa TipoFactura = "RECTIFICATIVA"
	TipoSimplificada  TipoFactura = "SIMPLIFICADA"
	TipoProforma      TipoFactura = "PROFORMA"
)

// Valido indica si el tipo pertenece al catálogo.
func (t TipoFactura) Valido() bool {
	switch t {
	case TipoNormal, TipoRectificativa, TipoSimplificada, TipoProforma:
		return true
	}
	return false
}

// EstadoInforme es el estado del envío al sistema de cumplimiento externo.
type EstadoInforme string

const (
	InformePendiente  EstadoInforme = "PENDING"
	InformeProcesando EstadoInforme = "PROCESSING"
	InformeFirmado    EstadoInforme = "SIGNED"
	InformeError      EstadoInforme = "ERROR"
)

// Valido indica si el estado de informe es conocido.
func (e EstadoInforme) Valido() bool {
	switch e {
	case InformePendiente, InformeProcesando, InformeFirmado, InformeError:
		return true
	}
	return false
}

// InformeExterno agrupa los campos que rellena el colaborador de cumplimiento.
type InformeExterno struct {
	ID     string
	URL    string
	Estado EstadoInforme
}

// ParamsFactura son los datos de creación de un borrador.
type ParamsFactura struct {
	TallerID         string
	ClienteID        string
	OrdenID          string
	Serie            valueobject.Serie
	Tipo             TipoFactura
	NIFCliente       valueobject.NIF
	Retencion        valueobject.Retencion
	FechaVencimiento *time.Time
	Observaciones    string
	Lineas           []NuevaLinea
	Actor            string
	Ahora            time.Time
}

// Factura es la raíz del agregado de facturación. Sus líneas solo se crean y modifican a través de ella.
type Factura struct {
	id               string
	tallerID         string
	serie            valueobject.Serie
	numero           valueobject.NumeroFactura
	tipo             TipoFactura
	estado           EstadoFactura
	ordenID          string
	clienteID        string
	nifCliente       valueobject.NIF
	fechaEmision     *time.Time
	fechaVencimiento *time.Time
	lineas           []*LineaFactura
	retencion        valueobject.Retencion
	observaciones    string
	informe          InformeExterno
	motivoAnulacion  string

	creadaPor  string
	emitidaPor string
	pagadaPor  string
	anuladaPor string
	emitidaEn  *time.Time
	pagadaEn   *time.Time
	anuladaEn  *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
	deletedBy  string
}

// NuevaFactura crea un borrador sin número. Asigna el ID de la factura y el de cada línea
// antes de devolverla, de modo que ninguna línea existe sin su FacturaID.
func NuevaFactura(p ParamsFactura) (*Factura, error) {
	if strings.TrimSpace(p.TallerID) == "" {
		return nil, domain.Validation("el taller es obligatorio")
	}
	if strings.TrimSpace(p.ClienteID) == "" {
		return nil, domain.Validation("el cliente es obligatorio")
	}
	if p.Serie.IsZero() {
		return nil, domain.Validation("la serie es obligatoria")
	}
	tipo := p.Tipo
	if tipo == "" {
		tipo = TipoNormal
	}
	if !tipo.Valido() {
		return nil, domain.Validation("tipo de factura %q no reconocido", p.Tipo)
	}

	f := &Factura{
		id:               uuid.NewString(),
		tallerID:         p.TallerID,
		serie:            p.Serie,
		tipo:             tipo,
		estado:           EstadoBorrador,
		ordenID:          p.OrdenID,
		clienteID:        p.ClienteID,
		nifCliente:       p.NIFCliente,
		fechaVencimiento: copiarFecha(p.FechaVencimiento),
		retencion:        p.Retencion,
		observaciones:    strings.TrimSpace(p.Observaciones),
		creadaPor:        p.Actor,
		createdAt:        p.Ahora,
		updatedAt:        p.Ahora,
	}
	lineas, err := f.construirLineas(p.Lineas)
	if err != nil {
		return nil, err
	}
	f.lineas = lineas
	return f, nil
}

func (f *Factura) construirLineas(in []NuevaLinea) ([]*LineaFactura, error) {
	out := make([]*LineaFactura, 0, len(in))
	for i, nl := range in {
		l, err := nuevaLineaFactura(uuid.NewString(), f.id, i+1, nl)
		if err != nil {
			return nil, domain.Validation("línea %d: %s", i+1, domain.Message(err))
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *Factura) exigirBorrador(accion string) error {
	if f.deletedAt != nil {
		return domain.BusinessRule("la factura %s está eliminada", f.id)
	}
	if f.estado != EstadoBorrador {
		return domain.BusinessRule("no se puede %s: la factura está en estado %s", accion, f.estado)
	}
	return nil
}

// ── Líneas ────────────────────────────────────────────────────────────────────

// AgregarLinea añade una línea al final. Solo en borrador.
func (f *Factura) AgregarLinea(in NuevaLinea) (*LineaFactura, error) {
	if err := f.exigirBorrador("añadir líneas"); err != nil {
		return nil, err
	}
	l, err := nuevaLineaFactura(uuid.NewString(), f.id, len(f.lineas)+1, in)
	if err != nil {
		return nil, err
	}
	f.lineas = append(f.lineas, l)
	return l, nil
}

// EliminarLinea quita una línea y recompacta las posiciones. Solo en borrador.
func (f *Factura) EliminarLinea(lineaID string) error {
	if err := f.exigirBorrador("eliminar líneas"); err != nil {
		return err
	}
	idx := f.indiceLinea(lineaID)
	if idx < 0 {
		return domain.NotFound("línea %s no encontrada en la factura", lineaID)
	}
	f.lineas = append(f.lineas[:idx], f.lineas[idx+1:]...)
	for i, l := range f.lineas {
		l.posicion = i + 1
	}
	return nil
}

// ActualizarLinea reemplaza los datos de una línea existente. Solo en borrador.
func (f *Factura) ActualizarLinea(lineaID string, in NuevaLinea) error {
	if err := f.exigirBorrador("modificar líneas"); err != nil {
		return err
	}
	idx := f.indiceLinea(lineaID)
	if idx < 0 {
		return domain.NotFound("línea %s no encontrada en la factura", lineaID)
	}
	return f.lineas[idx].Actualizar(in)
}

// ReemplazarLineas sustituye todas las líneas. Si alguna es inválida no cambia nada.
func (f *Factura) ReemplazarLineas(in []NuevaLinea) error {
	if err := f.exigirBorrador("modificar líneas"); err != nil {
		return err
	}
	lineas, err := f.construirLineas(in)
	if err != nil {
		return err
	}
	f.lineas = lineas
	return nil
}

func (f *Factura) indiceLinea(id string) int {
	for i, l := range f.lineas {
		if l.id == id {
			return i
		}
	}
	return -1
}

// ── Cabecera (borrador) ───────────────────────────────────────────────────────

// CongelarNIF guarda la instantánea del NIF del cliente.
func (f *Factura) CongelarNIF(nif valueobject.NIF) error {
	if err := f.exigirBorrador("cambiar el NIF"); err != nil {
		return err
	}
	if nif.IsZero() {
		return domain.Validation("NIF del cliente vacío")
	}
	f.nifCliente = nif
	return nil
}

// CambiarCliente reasigna el cliente y su NIF.
func (f *Factura) CambiarCliente(clienteID string, nif valueobject.NIF) error {
	if err := f.exigirBorrador("cambiar el cliente"); err != nil {
		return err
	}
	if strings.TrimSpace(clienteID) == "" {
		return domain.Validation("el cliente es obligatorio")
	}
	f.clienteID = clienteID
	f.nifCliente = nif
	return nil
}

func (f *Factura) CambiarRetencion(r valueobject.Retencion) error {
	if err := f.exigirBorrador("cambiar la retención"); err != nil {
		return err
	}
	f.retencion = r
	return nil
}

func (f *Factura) CambiarFechaVencimiento(fecha *time.Time) error {
	if err := f.exigirBorrador("cambiar el vencimiento"); err != nil {
		return err
	}
	f.fechaVencimiento = copiarFecha(fecha)
	return nil
}

func (f *Factura) CambiarObservaciones(obs string) error {
	if err := f.exigirBorrador("cambiar las observaciones"); err != nil {
		return err
	}
	f.observaciones = strings.TrimSpace(obs)
	return nil
}

// Tocar registra una modificación del borrador.
func (f *Factura) Tocar(ahora time.Time) { f.updatedAt = ahora }

// ── Transiciones ──────────────────────────────────────────────────────────────

// AsignarNumero fija el número legal. Solo una vez y solo en borrador; el estado no cambia.
func (f *Factura) AsignarNumero(numero valueobject.NumeroFactura) error {
	if err := f.exigirBorrador("asignar número"); err != nil {
		return err
	}
	if !f.numero.IsZero() {
		return domain.BusinessRule("la factura ya tiene número %s", f.numero)
	}
	if numero.IsZero() {
		return domain.Validation("número de factura vacío")
	}
	if numero.Serie() != f.serie {
		return domain.BusinessRule("el número %s no pertenece a la serie %s", numero, f.serie)
	}
	f.numero = numero
	return nil
}

// Emitir pasa de borrador a emitida. Exige número y al menos una línea; a partir de aquí las
// líneas son de solo lectura.
func (f *Factura) Emitir(actor string, ahora time.Time) error {
	if err := f.exigirBorrador("emitir"); err != nil {
		return err
	}
	if f.numero.IsZero() {
		return domain.BusinessRule("no se puede emitir una factura sin número")
	}
	if len(f.lineas) == 0 {
		return domain.BusinessRule("no se puede emitir una factura sin líneas")
	}
	emision := ahora
	f.estado = EstadoEmitida
	f.fechaEmision = &emision
	f.emitidaPor = actor
	f.emitidaEn = &emision
	f.informe.Estado = InformePendiente
	f.updatedAt = ahora
	f.sellarLineas()
	return nil
}

// MarcarPagada pasa de emitida a pagada.
func (f *Factura) MarcarPagada(actor string, ahora time.Time) error {
	if f.estado != EstadoEmitida {
		return domain.BusinessRule("solo se puede marcar como pagada una factura emitida (estado actual %s)", f.estado)
	}
	t := ahora
	f.estado = EstadoPagada
	f.pagadaPor = actor
	f.pagadaEn = &t
	f.updatedAt = ahora
	return nil
}

// Anular pasa una factura emitida o pagada a anulada. Conserva el número: la secuencia no se reutiliza.
func (f *Factura) Anular(motivo, actor string, ahora time.Time) error {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return domain.BusinessRule("no se puede anular sin motivo")
	}
	if f.estado != EstadoEmitida && f.estado != EstadoPagada {
		return domain.BusinessRule("solo se puede anular una factura emitida o pagada (estado actual %s)", f.estado)
	}
	t := ahora
	f.estado = EstadoAnulada
	f.motivoAnulacion = motivo
	f.anuladaPor = actor
	f.anuladaEn = &t
	f.updatedAt = ahora
	return nil
}

// RegistrarInformeExterno guarda el resultado del envío al sistema de cumplimiento.
func (f *Factura) RegistrarInformeExterno(inf InformeExterno, ahora time.Time) error {
	if f.estado == EstadoBorrador {
		return domain.BusinessRule("un borrador no tiene informe externo")
	}
	if !inf.Estado.Valido() {
		return domain.Validation("estado de informe %q no reconocido", inf.Estado)
	}
	f.informe = InformeExterno{
		ID:     strings.TrimSpace(inf.ID),
		URL:    strings.TrimSpace(inf.URL),
		Estado: inf.Estado,
	}
	f.updatedAt = ahora
	return nil
}

// Eliminar descarta un borrador sin número (borrado lógico).
func (f *Factura) Eliminar(actor string, ahora time.Time) error {
	if err := f.exigirBorrador("eliminar"); err != nil {
		return err
	}
	if !f.numero.IsZero() {
		return domain.BusinessRule("la factura %s tiene número asignado y no se puede eliminar", f.numero)
	}
	t := ahora
	f.deletedAt = &t
	f.deletedBy = actor
	f.updatedAt = ahora
	return nil
}

func (f *Factura) sellarLineas() {
	for _, l := range f.lineas {
		l.sellada = true
	}
}

// EstaVencida indica si la factura emitida superó su fecha de vencimiento.
func (f *Factura) EstaVencida(ahora time.Time) bool {
	return f.estado == EstadoEmitida && f.fechaVencimiento != nil && f.fechaVencimiento.Before(ahora)
}

// ── Totales ───────────────────────────────────────────────────────────────────

// TramoIVA es la base y la cuota agregadas de un tipo de IVA.
type TramoIVA struct {
	Porcentaje int
	Base       decimal.Decimal
	Cuota      decimal.Decimal
}

// Totales son los importes derivados de las líneas. Nunca se persisten.
type Totales struct {
	BaseImponible    decimal.Decimal
	IVA              decimal.Decimal
	RetencionImporte decimal.Decimal
	Total            decimal.Decimal
	Desglose         []TramoIVA
}

// Totales calcula base = Σ neto, iva = Σ impuesto, retención = base × %, total = base + iva − retención.
func (f *Factura) Totales() Totales {
	base, iva := decimal.Zero, decimal.Zero
	tramos := make(map[int]*TramoIVA)
	for _, l := range f.lineas {
		imp := l.Importes()
		base = base.Add(imp.Neto.Decimal())
		iva = iva.Add(imp.Impuesto.Decimal())

		t, ok := tramos[l.ivaPorcentaje]
		if !ok {
			t = &TramoIVA{Porcentaje: l.ivaPorcentaje, Base: decimal.Zero, Cuota: decimal.Zero}
			tramos[l.ivaPorcentaje] = t
		}
		t.Base = t.Base.Add(imp.Neto.Decimal())
		t.Cuota = t.Cuota.Add(imp.Impuesto.Decimal())
	}
	ret := f.retencion.Importe(base)

	desglose := make([]TramoIVA, 0, len(tramos))
	for _, t := range tramos {
		desglose = append(desglose, *t)
	}
	sort.Slice(desglose, func(i, j int) bool { return desglose[i].Porcentaje > desglose[j].Porcentaje })

	return Totales{
		BaseImponible:    base,
		IVA:              iva,
		RetencionImporte: ret,
		Total:            base.Add(iva).Sub(ret),
		Desglose:         desglose,
	}
}

// ── Accesores ─────────────────────────────────────────────────────────────────

func (f *Factura) ID() string                        { return f.id }
func (f *Factura) TallerID() string                  { return f.tallerID }
func (f *Factura) Serie() valueobject.Serie          { return f.serie }
func (f *Factura) Numero() valueobject.NumeroFactura { return f.numero }
func (f *Factura) Tipo() TipoFactura                 { return f.tipo }
func (f *Factura) Estado() EstadoFactura             { return f.estado }
func (f *Factura) OrdenID() string                   { return f.ordenID }
func (f *Factura) ClienteID() string                 { return f.clienteID }
func (f *Factura) NIFCliente() valueobject.NIF       { return f.nifCliente }
func (f *Factura) FechaEmision() *time.Time          { return copiarFecha(f.fechaEmision) }
func (f *Factura) FechaVencimiento() *time.Time      { return copiarFecha(f.fechaVencimiento) }
func (f *Factura) Retencion() valueobject.Retencion  { return f.retencion }
func (f *Factura) Observaciones() string             { return f.observaciones }
func (f *Factura) Informe() InformeExterno           { return f.informe }
func (f *Factura) MotivoAnulacion() string           { return f.motivoAnulacion }
func (f *Factura) CreatedAt() time.Time              { return f.createdAt }
func (f *Factura) UpdatedAt() time.Time              { return f.updatedAt }
func (f *Factura) Eliminada() bool                   { return f.deletedAt != nil }

// Lineas devuelve las líneas en orden de posición.
func (f *Factura) Lineas() []*LineaFactura {
	out := make([]*LineaFactura, len(f.lineas))
	copy(out, f.lineas)
	return out
}

// ── Persistencia ──────────────────────────────────────────────────────────────

// FacturaDatos es la representación plana de la cabecera para adaptadores de persistencia.
type FacturaDatos struct {
	ID               string
	TallerID         string
	Serie            valueobject.Serie
	Numero           valueobject.NumeroFactura
	Tipo             TipoFactura
	Estado           EstadoFactura
	OrdenID          string
	ClienteID        string
	NIFCliente       valueobject.NIF
	FechaEmision     *time.Time
	FechaVencimiento *time.Time
	Retencion        valueobject.Retencion
	Observaciones    string
	Informe          InformeExterno
	MotivoAnulacion  string
	CreadaPor        string
	EmitidaPor       string
	PagadaPor        string
	AnuladaPor       string
	EmitidaEn        *time.Time
	PagadaEn         *time.Time
	AnuladaEn        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        *time.Time
	DeletedBy        string
}

// Datos devuelve la instantánea de la cabecera.
func (f *Factura) Datos() FacturaDatos {
	return FacturaDatos{
		ID:               f.id,
		TallerID:         f.tallerID,
		Serie:            f.serie,
		Numero:           f.numero,
		Tipo:             f.tipo,
		Estado:           f.estado,
		OrdenID:          f.ordenID,
		ClienteID:        f.clienteID,
		NIFCliente:       f.nifCliente,
		FechaEmision:     copiarFecha(f.fechaEmision),
		FechaVencimiento: copiarFecha(f.fechaVencimiento),
		Retencion:        f.retencion,
		Observaciones:    f.observaciones,
		Informe:          f.informe,
		MotivoAnulacion:  f.motivoAnulacion,
		CreadaPor:        f.creadaPor,
		EmitidaPor:       f.emitidaPor,
		PagadaPor:        f.pagadaPor,
		AnuladaPor:       f.anuladaPor,
		EmitidaEn:        copiarFecha(f.emitidaEn),
		PagadaEn:         copiarFecha(f.pagadaEn),
		AnuladaEn:        copiarFecha(f.anuladaEn),
		CreatedAt:        f.createdAt,
		UpdatedAt:        f.updatedAt,
		DeletedAt:        copiarFecha(f.deletedAt),
		DeletedBy:        f.deletedBy,
	}
}

// ReconstruirFactura rehidrata el agregado desde persistencia. Verifica la coherencia mínima
// (estado conocido, número en toda factura no borrador, líneas de esta factura); los importes de
// cada línea se revalidan.
func ReconstruirFactura(d FacturaDatos, lineas []LineaDatos) (*Factura, error) {
	if d.ID == "" || d.TallerID == "" {
		return nil, domain.Validation("factura persistida sin identificador o taller")
	}
	if !d.Estado.Valido() {
		return nil, domain.Validation("factura %s con estado %q desconocido", d.ID, d.Estado)
	}
	if d.Estado != EstadoBorrador && d.Numero.IsZero() {
		return nil, domain.Validation("factura %s en estado %s sin número", d.ID, d.Estado)
	}
	f := &Factura{
		id:               d.ID,
		tallerID:         d.TallerID,
		serie:            d.Serie,
		numero:           d.Numero,
		tipo:             d.Tipo,
		estado:           d.Estado,
		ordenID:          d.OrdenID,
		clienteID:        d.ClienteID,
		nifCliente:       d.NIFCliente,
		fechaEmision:     copiarFecha(d.FechaEmision),
		fechaVencimiento: copiarFecha(d.FechaVencimiento),
		retencion:        d.Retencion,
		observaciones:    d.Observaciones,
		informe:          d.Informe,
		motivoAnulacion:  d.MotivoAnulacion,
		creadaPor:        d.CreadaPor,
		emitidaPor:       d.EmitidaPor,
		pagadaPor:        d.PagadaPor,
		anuladaPor:       d.AnuladaPor,
		emitidaEn:        copiarFecha(d.EmitidaEn),
		pagadaEn:         copiarFecha(d.PagadaEn),
		anuladaEn:        copiarFecha(d.AnuladaEn),
		createdAt:        d.CreatedAt,
		updatedAt:        d.UpdatedAt,
		deletedAt:        copiarFecha(d.DeletedAt),
		deletedBy:        d.DeletedBy,
	}
	ordenadas := make([]LineaDatos, len(lineas))
	copy(ordenadas, lineas)
	sort.SliceStable(ordenadas, func(i, j int) bool { return ordenadas[i].Posicion < ordenadas[j].Posicion })

	f.lineas = make([]*LineaFactura, 0, len(ordenadas))
	for _, ld := range ordenadas {
		if ld.FacturaID != d.ID {
			return nil, domain.Validation("línea %s no pertenece a la factura %s", ld.ID, d.ID)
		}
		l, err := nuevaLineaFactura(ld.ID, d.ID, ld.Posicion, NuevaLinea{
			Tipo:                ld.Tipo,
			Descripcion:         ld.Descripcion,
			Referencia:          ld.Referencia,
			Cantidad:            ld.Cantidad,
			PrecioUnitario:      ld.PrecioUnitario,
			DescuentoPorcentaje: ld.DescuentoPorcentaje,
			DescuentoImporte:    ld.DescuentoImporte,
			IVAPorcentaje:       ld.IVAPorcentaje,
		})
		if err != nil {
			return nil, err
		}
		f.lineas = append(f.lineas, l)
	}
	if f.estado != EstadoBorrador {
		f.sellarLineas()
	}
	return f, nil
}

func copiarFecha(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
