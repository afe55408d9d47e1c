package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/Dani0091/taller-saas-sub000/internal/application/dto"
)

// SerieService lo implementa *billing.SerieUseCase.
type SerieService interface {
	Crear(ctx context.Context, tallerID string, in dto.CrearSerieRequest) (*dto.SerieResponse, error)
	Listar(ctx context.Context, tallerID string) ([]*dto.SerieResponse, error)
}

// SerieHandler administra las series de numeración del taller.
type SerieHandler struct {
	uc SerieService
}

// NewSerieHandler construye el handler.
func NewSerieHandler(uc SerieService) *SerieHandler {
	return &SerieHandler{uc: uc}
}

// Create godoc
// @Summary      Alta de serie de numeración
// @Tags         series
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CrearSerieRequest  true  "Serie"
// @Success      201   {object}  dto.SerieResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/series [post]
func (h *SerieHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearSerieRequest
	if err := c.BodyParser(&in); err != nil {
		return cuerpoInvalido(c)
	}
	out, err := h.uc.Crear(c.Context(), GetTallerID(c), in)
	if err != nil {
		return responderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List GET /api/series
func (h *SerieHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.Listar(c.Context(), GetTallerID(c))
	if err != nil {
		return responderError(c, err)
	}
	return c.JSON(list)
}
