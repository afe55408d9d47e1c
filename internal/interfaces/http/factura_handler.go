package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
)

// FacturaService lo implementa *billing.FacturaUseCase.
type FacturaService interface {
	CrearBorrador(ctx context.Context, tallerID, actor string, in dto.CrearFacturaRequest) (*dto.FacturaResponse, error)
	CrearDesdeOrden(ctx context.Context, tallerID, actor string, in dto.CrearDesdeOrdenRequest) (*dto.FacturaResponse, error)
	ActualizarBorrador(ctx context.Context, tallerID, actor, id string, in dto.ActualizarFacturaRequest) (*dto.FacturaResponse, error)
	EliminarBorrador(ctx context.Context, tallerID, actor, id string) error
	Emitir(ctx context.Context, tallerID, actor, id string) (*dto.FacturaResponse, error)
	Anular(ctx context.Context, tallerID, actor, id string, in dto.AnularFacturaRequest) (*dto.FacturaResponse, error)
	MarcarPagada(ctx context.Context, tallerID, actor, id string) (*dto.FacturaResponse, error)
	ActualizarInformeExterno(ctx context.Context, tallerID, id string, in dto.InformeExternoRequest) (*dto.FacturaResponse, error)
	Obtener(ctx context.Context, tallerID, id string) (*dto.FacturaResponse, error)
	ObtenerPorNumero(ctx context.Context, tallerID, numero string) (*dto.FacturaResponse, error)
	Listar(ctx context.Context, tallerID string, in dto.FiltroFacturasRequest) (*dto.FacturaListResponse, error)
	ContarPorEstado(ctx context.Context, tallerID string) (*dto.ResumenFacturasResponse, error)
}

// FacturaHandler maneja las peticiones HTTP de facturas (protegido).
type FacturaHandler struct {
	uc FacturaService
}

// NewFacturaHandler construye el handler.
func NewFacturaHandler(uc FacturaService) *FacturaHandler {
	return &FacturaHandler{uc: uc}
}

// Create godoc
// @Summary      Crear factura en borrador
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearFacturaRequest  true  "Cliente, serie y líneas"
// @Success      201   {object}  dto.FacturaResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/facturas [post]
func (h *FacturaHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.CrearBorrador(c.Context(), GetTallerID(c), GetUserID(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateDesdeOrden godoc
// @Summary      Crear borrador desde una orden de reparación finalizada
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearDesdeOrdenRequest  true  "Orden a facturar"
// @Success      201   {object}  dto.FacturaResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/facturas/desde-orden [post]
func (h *FacturaHandler) CreateDesdeOrden(c *fiber.Ctx) error {
	var in dto.CrearDesdeOrdenRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.CrearDesdeOrden(c.Context(), GetTallerID(c), GetUserID(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar facturas
// @Tags         facturas
// @Security     Bearer
// @Produce      json
// @Param        estado      query  string  false  "DRAFT, ISSUED, PAID, VOIDED u OVERDUE"
// @Param        cliente_id  query  string  false  "Cliente"
// @Param        serie       query  string  false  "Serie"
// @Param        desde       query  string  false  "Fecha de emisión desde (YYYY-MM-DD)"
// @Param        hasta       query  string  false  "Fecha de emisión hasta (YYYY-MM-DD)"
// @Param        limit       query  int     false  "Tamaño de página (máx. 100)"
// @Param        offset      query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.FacturaListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/facturas [get]
func (h *FacturaHandler) List(c *fiber.Ctx) error {
	var in dto.FiltroFacturasRequest
	if err := c.QueryParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Listar(c.Context(), GetTallerID(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// Resumen godoc
// @Summary      Número de facturas por estado
// @Tags         facturas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ResumenFacturasResponse
// @Router       /api/facturas/resumen [get]
func (h *FacturaHandler) Resumen(c *fiber.Ctx) error {
	out, err := h.uc.ContarPorEstado(c.Context(), GetTallerID(c))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// GetByID GET /api/facturas/:id
func (h *FacturaHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Obtener(c.Context(), GetTallerID(c), c.Params("id"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// GetByNumero GET /api/facturas/numero/:numero (ej. FA-2024-000001)
func (h *FacturaHandler) GetByNumero(c *fiber.Ctx) error {
	out, err := h.uc.ObtenerPorNumero(c.Context(), GetTallerID(c), c.Params("numero"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Modificar un borrador
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "Factura"
// @Param        body  body  dto.ActualizarFacturaRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.FacturaResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id} [put]
func (h *FacturaHandler) Update(c *fiber.Ctx) error {
	var in dto.ActualizarFacturaRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.ActualizarBorrador(c.Context(), GetTallerID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/facturas/:id (solo borradores)
func (h *FacturaHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.EliminarBorrador(c.Context(), GetTallerID(c), GetUserID(c), c.Params("id")); err != nil {
		return responderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Emitir godoc
// @Summary      Emitir factura (asigna número correlativo)
// @Tags         facturas
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "Factura"
// @Success      200  {object}  dto.FacturaResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/emitir [post]
func (h *FacturaHandler) Emitir(c *fiber.Ctx) error {
	out, err := h.uc.Emitir(c.Context(), GetTallerID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// Pagar POST /api/facturas/:id/pagar
func (h *FacturaHandler) Pagar(c *fiber.Ctx) error {
	out, err := h.uc.MarcarPagada(c.Context(), GetTallerID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// Anular godoc
// @Summary      Anular factura emitida
// @Tags         facturas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true   "Factura"
// @Param        body  body  dto.AnularFacturaRequest  false  "Motivo"
// @Success      200   {object}  dto.FacturaResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/facturas/{id}/anular [post]
func (h *FacturaHandler) Anular(c *fiber.Ctx) error {
	var in dto.AnularFacturaRequest
	// el motivo es opcional: se admite cuerpo vacío
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return cuerpoInvalido(c)
		}
	}
	out, err := h.uc.Anular(c.Context(), GetTallerID(c), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// Informe PUT /api/facturas/:id/informe
func (h *FacturaHandler) Informe(c *fiber.Ctx) error {
	var in dto.InformeExternoRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.ActualizarInformeExterno(c.Context(), GetTallerID(c), c.Params("id"), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}
