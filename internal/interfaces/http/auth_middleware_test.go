package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/Dani0091/taller-saas-sub000/internal/interfaces/http"
	pkgjwt "github.com/Dani0091/taller-saas-sub000/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testTallerID  = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "taller-facturacion-test"
	testExpMin    = 60
)

// buildTestApp monta AuthMiddleware + RequireRole delante de un handler que responde 200.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTallerID, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_PermiteRolIncluido(t *testing.T) {
	app := buildTestApp(apphttp.RolAdmin, apphttp.RolOficina)
	resp := doRequest(t, app, tokenForRole(t, apphttp.RolOficina))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "oficina", body["role"])
}

func TestRequireRole_RolNoIncluido_Retorna403(t *testing.T) {
	app := buildTestApp(apphttp.RolAdmin)
	resp := doRequest(t, app, tokenForRole(t, apphttp.RolMecanico))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RolAdmin)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testTallerID, "", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

// Política de rutas de la API: quién puede llamar a cada operación.
func TestRouter_PoliticaDeRoles(t *testing.T) {
	const (
		admin   = apphttp.RolAdmin
		oficina = apphttp.RolOficina
		mecanic = apphttp.RolMecanico
		integra = apphttp.RolIntegracion
	)
	todos := []string{admin, oficina, mecanic, integra}
	gestion := []string{admin, oficina}
	informe := map[string]string{"estado": "SIGNED"}

	rutas := []struct {
		metodo     string
		ruta       string
		body       interface{}
		permitidos []string
	}{
		{http.MethodGet, "/api/facturas", nil, todos},
		{http.MethodGet, "/api/facturas/resumen", nil, todos},
		{http.MethodGet, "/api/facturas/f1", nil, todos},
		{http.MethodGet, "/api/facturas/numero/FA-2024-000001", nil, todos},
		{http.MethodPost, "/api/facturas", map[string]string{}, gestion},
		{http.MethodPost, "/api/facturas/desde-orden", map[string]string{}, gestion},
		{http.MethodPut, "/api/facturas/f1", map[string]string{}, gestion},
		{http.MethodDelete, "/api/facturas/f1", nil, gestion},
		{http.MethodPost, "/api/facturas/f1/emitir", nil, gestion},
		{http.MethodPost, "/api/facturas/f1/pagar", nil, gestion},
		{http.MethodPost, "/api/facturas/f1/anular", nil, []string{admin}},
		{http.MethodPut, "/api/facturas/f1/informe", informe, []string{admin, integra}},
		{http.MethodGet, "/api/clientes", nil, todos},
		{http.MethodPost, "/api/clientes", map[string]string{}, gestion},
		{http.MethodPut, "/api/clientes/c1", map[string]string{}, gestion},
		{http.MethodDelete, "/api/clientes/c1", nil, gestion},
		{http.MethodGet, "/api/series", nil, todos},
		{http.MethodPost, "/api/series", map[string]string{}, []string{admin}},
	}

	app, _, _ := nuevaApp(t)
	for _, r := range rutas {
		for _, rol := range todos {
			permitido := false
			for _, p := range r.permitidos {
				permitido = permitido || p == rol
			}
			resp := peticion(t, app, r.metodo, r.ruta, rol, r.body)
			resp.Body.Close()
			if permitido {
				assert.Less(t, resp.StatusCode, 400, "%s %s como %s", r.metodo, r.ruta, rol)
			} else {
				assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s como %s", r.metodo, r.ruta, rol)
			}
		}
		resp := peticion(t, app, r.metodo, r.ruta, "", r.body)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s sin token", r.metodo, r.ruta)
	}
}

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RolAdmin)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(apphttp.RolAdmin)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtractaClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"taller_id": apphttp.GetTallerID(c),
			"role":      apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTallerID, body["taller_id"])
	assert.Equal(t, "admin", body["role"])
}

func TestAuthMiddleware_TokenSinTaller_Retorna401(t *testing.T) {
	app := buildTestApp("admin")
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "", "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode,
		"sin taller no se puede acotar ninguna consulta")
}

func TestAuthMiddleware_EsquemaDistintoDeBearer_Retorna401(t *testing.T) {
	app := buildTestApp("admin")
	resp := doRequest(t, app, "Basic dXNlcjpwYXNz")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}
