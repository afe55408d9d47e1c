package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
)

// ClienteService lo implementa *billing.ClienteUseCase.
type ClienteService interface {
	Create(ctx context.Context, tallerID string, in dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	List(ctx context.Context, tallerID string, page dto.PageRequest) ([]*dto.ClienteResponse, error)
	Update(ctx context.Context, tallerID, id string, in dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Delete(ctx context.Context, tallerID, actor, id string) error
}

// ClienteHandler maneja las peticiones HTTP de clientes (protegido).
type ClienteHandler struct {
	uc ClienteService
}

// NewClienteHandler construye el handler.
func NewClienteHandler(uc ClienteService) *ClienteHandler {
	return &ClienteHandler{uc: uc}
}

// Create godoc
// @Summary      Alta de cliente
// @Tags         clientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearClienteRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.ClienteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/clientes [post]
func (h *ClienteHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearClienteRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Create(c.Context(), GetTallerID(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/clientes?limit=20&offset=0
func (h *ClienteHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return cuerpoInvalido(c)
	}
	list, err := h.uc.List(c.Context(), GetTallerID(c), page)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(list)
}

// Update godoc
// @Summary      Modificar cliente
// @Tags         clientes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del cliente"
// @Param        body  body  dto.ActualizarClienteRequest  true  "Campos a cambiar"
// @Success      200   {object}  dto.ClienteResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/clientes/{id} [put]
func (h *ClienteHandler) Update(c *fiber.Ctx) error {
	var in dto.ActualizarClienteRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Update(c.Context(), GetTallerID(c), c.Params("id"), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(out)
}

// Delete DELETE /api/clientes/:id
func (h *ClienteHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetTallerID(c), GetUserID(c), c.Params("id")); err != nil {
		return responderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
