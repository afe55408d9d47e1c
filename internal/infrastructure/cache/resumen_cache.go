package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dani0091/taller-saas-sub000/internal/domain/entity"
	"github.com/Dani0091/taller-saas-sub000/pkg/config"
)

const prefijoResumen = "facturas:resumen"

// NewRedis abre el cliente y comprueba la conexión.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ResumenCache guarda en Redis el conteo de facturas por estado de cada taller.
type ResumenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResumenCache crea la caché. Con client nil se comporta como caché vacía.
func NewResumenCache(client *redis.Client, ttl time.Duration) *ResumenCache {
	return &ResumenCache{client: client, ttl: ttl}
}

func claveGeneracion(tallerID string) string {
	return prefijoResumen + ":gen:" + tallerID
}

func clave(tallerID string, generacion int64) string {
	return fmt.Sprintf("%s:%s:%d", prefijoResumen, tallerID, generacion)
}

// Obtener devuelve el conteo de la generación vigente del taller. En un fallo devuelve la
// generación leída para que Guardar no pise una invalidación posterior.
func (c *ResumenCache) Obtener(ctx context.Context, tallerID string) (map[entity.EstadoFactura]int, int64, bool, error) {
	if c == nil || c.client == nil {
		return nil, 0, false, nil
	}
	gen, err := c.client.Get(ctx, claveGeneracion(tallerID)).Int64()
	if err != nil && err != redis.Nil {
		return nil, 0, false, err
	}
	payload, err := c.client.Get(ctx, clave(tallerID, gen)).Bytes()
	if err == redis.Nil {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, gen, false, err
	}
	var conteo map[entity.EstadoFactura]int
	if err := json.Unmarshal(payload, &conteo); err != nil {
		// entrada corrupta: se trata como fallo de caché
		return nil, gen, false, nil
	}
	return conteo, gen, true, nil
}

// Guardar escribe el conteo bajo la generación leída en Obtener, con el TTL configurado.
// Si entretanto hubo una invalidación la entrada queda huérfana y caduca sola.
func (c *ResumenCache) Guardar(ctx context.Context, tallerID string, generacion int64, conteo map[entity.EstadoFactura]int) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(conteo)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, clave(tallerID, generacion), raw, c.ttl).Err()
}

// Invalidar avanza la generación del taller; las entradas anteriores dejan de leerse.
func (c *ResumenCache) Invalidar(ctx context.Context, tallerID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, claveGeneracion(tallerID)).Err()
}
