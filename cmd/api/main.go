package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dani0091/taller-saas-sub000/internal/application/billing"
	"github.com/Dani0091/taller-saas-sub000/internal/infrastructure/cache"
	"github.com/Dani0091/taller-saas-sub000/internal/infrastructure/metrics"
	"github.com/Dani0091/taller-saas-sub000/internal/infrastructure/postgres"
	httpRouter "github.com/Dani0091/taller-saas-sub000/internal/interfaces/http"
	"github.com/Dani0091/taller-saas-sub000/pkg/config"
	"github.com/Dani0091/taller-saas-sub000/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("serie_defecto", cfg.Factura.SerieDefecto).
		Str("zona", cfg.Factura.Zona).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	facturaRepo := postgres.NewFacturaRepository(pool)
	clienteRepo := postgres.NewClienteRepository(pool)
	ordenRepo := postgres.NewOrdenRepository(pool)
	serieRepo := postgres.NewSerieRepository(pool)

	facturaUC := billing.NewFacturaUseCase(facturaRepo, clienteRepo, ordenRepo, serieRepo, billing.Config{
		SerieDefecto:    cfg.Factura.SerieDefecto,
		DiasVencimiento: cfg.Factura.DiasVencimiento,
		IVADefecto:      cfg.Factura.IVADefecto,
		Zona:            cfg.Factura.Location(),
	}, log).ConMetricas(metrics.NewMetricas(prometheus.DefaultRegisterer))

	// Redis es opcional: sin REDIS_ADDR el resumen se calcula siempre en PostgreSQL
	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, resumen sin caché")
		} else {
			defer rdb.Close()
			facturaUC.ConCache(cache.NewResumenCache(rdb, cfg.Redis.TTL))
		}
	}
	clienteUC := billing.NewClienteUseCase(clienteRepo)
	serieUC := billing.NewSerieUseCase(serieRepo)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller Facturación API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:   cfg.App.Name,
		FacturaUC: facturaUC,
		ClienteUC: clienteUC,
		SerieUC:   serieUC,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
