package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName   string
	FacturaUC FacturaService
	ClienteUC ClienteService
	SerieUC   SerieService
	JWTSecret string
	Gatherer  prometheus.Gatherer // nil = registro por defecto
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token con taller_id)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	gestion := RequireRole(RolAdmin, RolOficina)

	facturas := protected.Group("/facturas")
	facturaHandler := NewFacturaHandler(deps.FacturaUC)
	facturas.Post("/", gestion, facturaHandler.Create)
	facturas.Post("/desde-orden", gestion, facturaHandler.CreateDesdeOrden)
	facturas.Get("/", facturaHandler.List)
	facturas.Get("/resumen", facturaHandler.Resumen)
	facturas.Get("/numero/:numero", facturaHandler.GetByNumero)
	facturas.Get("/:id", facturaHandler.GetByID)
	facturas.Put("/:id", gestion, facturaHandler.Update)
	facturas.Delete("/:id", gestion, facturaHandler.Delete)
	facturas.Post("/:id/emitir", gestion, facturaHandler.Emitir)
	facturas.Post("/:id/pagar", gestion, facturaHandler.Pagar)
	facturas.Post("/:id/anular", RequireRole(RolAdmin), facturaHandler.Anular)
	facturas.Put("/:id/informe", RequireRole(RolAdmin, RolIntegracion), facturaHandler.Informe)

	clientes := protected.Group("/clientes")
	clienteHandler := NewClienteHandler(deps.ClienteUC)
	clientes.Post("/", gestion, clienteHandler.Create)
	clientes.Get("/", clienteHandler.List)
	clientes.Put("/:id", gestion, clienteHandler.Update)
	clientes.Delete("/:id", gestion, clienteHandler.Delete)

	series := protected.Group("/series")
	serieHandler := NewSerieHandler(deps.SerieUC)
	series.Get("/", serieHandler.List)
	series.Post("/", RequireRole(RolAdmin), serieHandler.Create)
}
