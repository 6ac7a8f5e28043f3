package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
	"github.com/jhoicas/strategic-ledger/internal/application/usecase"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/metrics"
	redisstore "github.com/jhoicas/strategic-ledger/internal/infrastructure/redis"
	"github.com/jhoicas/strategic-ledger/internal/infrastructure/sqlite"
	apphttp "github.com/jhoicas/strategic-ledger/internal/interfaces/http"
)

type apiEnv struct {
	app     *fiber.App
	metrics *metrics.Registry
	ready   error
}

// setupAPI arma la API completa sobre SQLite en memoria y Redis simulado.
func setupAPI(t *testing.T) *apiEnv {
	t.Helper()
	db, err := sqlite.Open(sqlite.MemoryPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	reg, err := metrics.New(false)
	require.NoError(t, err)

	runner := sqlite.NewTxRunner(db)
	resources := sqlite.NewResourceRepository(db)
	movements := sqlite.NewMovementRepository(db)
	departments := sqlite.NewDepartmentRepository(db)
	require.NoError(t, departments.Create(context.Background(), &entity.Department{ID: "ventas", Name: "Ventas", CreatedAt: time.Now().UTC()}))

	env := &apiEnv{metrics: reg}
	env.app = apphttp.NewApp(apphttp.AppConfig{
		Name:    "ledger-test",
		Metrics: reg,
		Ready:   func(context.Context) error { return env.ready },
	}, apphttp.RouterDeps{
		ResourceUC:    usecase.NewResourceUseCase(resources, movements, departments),
		MovementQuery: usecase.NewMovementQueryUseCase(resources, movements, 8),
		DepartmentUC:  usecase.NewDepartmentUseCase(departments),
		RecordMovement: ledger.NewRecordMovementUseCase(runner, runner, nil, ledger.Options{
			Idempotency: redisstore.NewIdempotencyStore(rdb, time.Hour),
			Metrics:     reg,
		}),
		BalanceSeries: ledger.NewBalanceSeriesUseCase(runner, nil, reg),
		JWTSecret:     testJWTSecret,
	})
	return env
}

func (e *apiEnv) do(t *testing.T, method, path, role string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *apiEnv) createResource(t *testing.T, name, initial string) dto.ResourceResponse {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/resources", "hr", map[string]any{
		"name":           name,
		"initialBalance": initial,
		"departmentId":   "ventas",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.ResourceResponse](t, resp)
}

func (e *apiEnv) recordMovement(t *testing.T, resourceID, typ, qty string) *http.Response {
	t.Helper()
	return e.do(t, http.MethodPost, "/api/movements", "employee", map[string]any{
		"resourceId":   resourceID,
		"movementType": typ,
		"quantity":     qty,
	})
}

func TestAPI_CrearRecurso(t *testing.T) {
	env := setupAPI(t)

	res := env.createResource(t, "Vacaciones 2026", "100.5")

	assert.Equal(t, "vacaciones-2026", res.Slug)
	assert.Equal(t, "active", res.Status)
	assert.Equal(t, "Ventas", res.DepartmentName)
	assert.True(t, decimal.RequireFromString("100.5").Equal(res.CurrentBalance))
}

func TestAPI_CrearRecurso_Errores(t *testing.T) {
	env := setupAPI(t)
	env.createResource(t, "Bolsa formación", "1")

	tests := []struct {
		name      string
		role      string
		body      any
		wantCode  int
		wantError string
		wantField string
	}{
		{"ManagerProhibido", "manager", map[string]any{"name": "X", "initialBalance": "1"}, http.StatusForbidden, "FORBIDDEN", ""},
		{"NombreVacio", "hr", map[string]any{"name": "", "initialBalance": "1"}, http.StatusBadRequest, "VALIDATION", "name"},
		{"SaldoNegativo", "hr", map[string]any{"name": "Cupo", "initialBalance": "-5"}, http.StatusBadRequest, "VALIDATION", "initialBalance"},
		{"CuerpoMalformado", "hr", `{"name":`, http.StatusBadRequest, "INVALID_BODY", ""},
		{"SaldoNoNumerico", "hr", `{"name":"Cupo","initialBalance":"diez"}`, http.StatusBadRequest, "VALIDATION", "initialBalance"},
		{"SlugDuplicado", "hr", map[string]any{"name": "Bolsa Formación", "initialBalance": "3"}, http.StatusConflict, "CONFLICT", ""},
		{"SinToken", "", map[string]any{"name": "Cupo", "initialBalance": "1"}, http.StatusUnauthorized, "MISSING_TOKEN", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/resources", tt.role, tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, tt.wantError, body.Code)
			assert.Equal(t, tt.wantField, body.Field)
		})
	}
}

func TestAPI_ListarRecursos(t *testing.T) {
	env := setupAPI(t)
	env.createResource(t, "Cupo Norte", "1")
	env.createResource(t, "Cupo Sur", "2")
	env.createResource(t, "Horas extra", "3")

	resp := env.do(t, http.MethodGet, "/api/resources?q=cupo&pageSize=1", "employee", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.ResourceListResponse](t, resp)

	assert.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Page.Total)
	assert.Equal(t, 1, out.Page.PageSize)

	resp = env.do(t, http.MethodGet, "/api/resources?status=borrado", "employee", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_RegistrarMovimientoYConsultarDetalle(t *testing.T) {
	env := setupAPI(t)
	res := env.createResource(t, "Presupuesto", "10")

	resp := env.recordMovement(t, res.ID, "ENTRY", "5")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.RecordMovementResponse](t, resp)
	assert.True(t, decimal.NewFromInt(15).Equal(created.Resource.CurrentBalance))
	assert.Equal(t, int64(1), created.Movement.Sequence)
	assert.Equal(t, testUserID, created.Movement.PerformedBy)

	resp = env.recordMovement(t, res.ID, "EXIT", "20")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "las salidas pueden dejar el saldo en negativo")

	resp = env.do(t, http.MethodGet, "/api/resources/"+res.ID, "manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[dto.ResourceDetailResponse](t, resp)
	assert.True(t, decimal.NewFromInt(-5).Equal(detail.CurrentBalance))
	assert.True(t, decimal.NewFromInt(5).Equal(detail.Totals.Entries))
	assert.True(t, decimal.NewFromInt(20).Equal(detail.Totals.Exits))
	assert.Equal(t, 2, detail.Totals.Count)
}

func TestAPI_RegistrarMovimiento_Errores(t *testing.T) {
	env := setupAPI(t)
	res := env.createResource(t, "Presupuesto", "10")

	tests := []struct {
		name      string
		body      any
		wantCode  int
		wantError string
		wantField string
		wantMsg   string
	}{
		{"CantidadCero", map[string]any{"resourceId": res.ID, "movementType": "ENTRY", "quantity": "0"}, http.StatusBadRequest, "VALIDATION", "quantity", "cantidad inválida"},
		{"SalidaNegativa", map[string]any{"resourceId": res.ID, "movementType": "EXIT", "quantity": "-1"}, http.StatusBadRequest, "VALIDATION", "quantity", "cantidad inválida"},
		{"AjusteCero", map[string]any{"resourceId": res.ID, "movementType": "ADJUSTMENT", "quantity": "0"}, http.StatusBadRequest, "VALIDATION", "quantity", "cantidad inválida"},
		{"TipoDesconocido", map[string]any{"resourceId": res.ID, "movementType": "TRANSFER", "quantity": "1"}, http.StatusBadRequest, "VALIDATION", "movementType", ""},
		{"RecursoInexistente", map[string]any{"resourceId": "no-existe", "movementType": "ENTRY", "quantity": "1"}, http.StatusNotFound, "NOT_FOUND", "", ""},
		{"CantidadNoNumerica", `{"resourceId":"x","movementType":"ENTRY","quantity":"abc"}`, http.StatusBadRequest, "VALIDATION", "quantity", "cantidad inválida"},
		{"CantidadBooleana", `{"resourceId":"x","movementType":"ENTRY","quantity":true}`, http.StatusBadRequest, "VALIDATION", "quantity", "cantidad inválida"},
		{"CuerpoMalformado", `{"resourceId":`, http.StatusBadRequest, "INVALID_BODY", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/movements", "hr", tt.body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			body := decode[dto.ErrorResponse](t, resp)
			assert.Equal(t, tt.wantError, body.Code)
			assert.Equal(t, tt.wantField, body.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Message)
			}
		})
	}

	resp := env.do(t, http.MethodGet, "/api/resources/"+res.ID, "hr", nil)
	detail := decode[dto.ResourceDetailResponse](t, resp)
	assert.True(t, decimal.NewFromInt(10).Equal(detail.CurrentBalance), "un movimiento rechazado no altera el saldo")
	assert.Equal(t, 0, detail.Totals.Count)
}

func TestAPI_IdempotencyKeyReproduceRespuesta(t *testing.T) {
	env := setupAPI(t)
	res := env.createResource(t, "Presupuesto", "10")
	body := map[string]any{"resourceId": res.ID, "movementType": "ENTRY", "quantity": "2"}

	first := env.do(t, http.MethodPost, "/api/movements", "hr", body, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, first.StatusCode)
	original := decode[dto.RecordMovementResponse](t, first)

	second := env.do(t, http.MethodPost, "/api/movements", "hr", body, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get(apphttp.HeaderIdempotentReplay))
	replayed := decode[dto.RecordMovementResponse](t, second)
	assert.Equal(t, original.Movement.ID, replayed.Movement.ID)

	resp := env.do(t, http.MethodGet, "/api/movements?resourceId="+res.ID, "hr", nil)
	list := decode[dto.MovementListResponse](t, resp)
	assert.Equal(t, 1, list.Page.Total, "el reintento no crea un segundo movimiento")
}

func TestAPI_MovimientosConcurrentes(t *testing.T) {
	env := setupAPI(t)
	res := env.createResource(t, "Cupo", "0")

	const writers = 20
	token := tokenForRole(t, "employee")
	var wg sync.WaitGroup
	codes := make([]int, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, _ := json.Marshal(map[string]any{"resourceId": res.ID, "movementType": "ENTRY", "quantity": "1.25"})
			req := httptest.NewRequest(http.MethodPost, "/api/movements", bytes.NewReader(raw))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", token)
			resp, err := env.app.Test(req, -1)
			if err == nil {
				codes[i] = resp.StatusCode
				_ = resp.Body.Close()
			}
		}(i)
	}
	wg.Wait()
	for _, c := range codes {
		require.Equal(t, http.StatusCreated, c)
	}

	resp := env.do(t, http.MethodGet, "/api/resources/"+res.ID+"/integrity", "hr", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[dto.IntegrityReportResponse](t, resp)
	assert.True(t, report.Consistent)
	assert.True(t, decimal.RequireFromString("25").Equal(report.CurrentBalance))
	assert.Equal(t, writers, report.MovementCount)
}

func TestAPI_ListarMovimientos(t *testing.T) {
	env := setupAPI(t)
	res := env.createResource(t, "Cupo", "0")
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusCreated, env.recordMovement(t, res.ID, "ENTRY", "1").StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/api/movements?resourceId="+res.ID, "employee", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page1 := decode[dto.MovementListResponse](t, resp)
	require.Len(t, page1.Items, 8, "tamaño de página por defecto")
	assert.Equal(t, int64(10), page1.Items[0].Sequence, "más reciente primero")

	resp = env.do(t, http.MethodGet, "/api/movements?resourceId="+res.ID+"&page=2", "employee", nil)
	page2 := decode[dto.MovementListResponse](t, resp)
	assert.Len(t, page2.Items, 2)

	resp = env.do(t, http.MethodGet, "/api/movements", "employee", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "resourceId", decode[dto.ErrorResponse](t, resp).Field)

	resp = env.do(t, http.MethodGet, "/api/movements?resourceId=no-existe", "employee", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_SerieDeSaldo(t *testing.T) {
	env := setupAPI(t)
	res := env.createResource(t, "Cupo", "10")
	env.recordMovement(t, res.ID, "ENTRY", "5")
	env.recordMovement(t, res.ID, "ADJUSTMENT", "-2.5")

	resp := env.do(t, http.MethodGet, "/api/resources/"+res.ID+"/series", "employee", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	series := decode[dto.BalanceSeriesResponse](t, resp)

	require.Len(t, series.Points, 3)
	assert.True(t, decimal.RequireFromString("12.5").Equal(series.FinalBalance))
	assert.True(t, series.Consistent)

	resp = env.do(t, http.MethodGet, "/api/resources/no-existe/series", "employee", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_Departamentos(t *testing.T) {
	env := setupAPI(t)

	resp := env.do(t, http.MethodGet, "/api/departments", "employee", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.DepartmentResponse](t, resp)

	require.Len(t, list, 1)
	assert.Equal(t, "Ventas", list[0].Name)
}

func TestAPI_HealthYMetrics(t *testing.T) {
	env := setupAPI(t)
	res := env.createResource(t, "Cupo", "1")
	env.recordMovement(t, res.ID, "ENTRY", "1")

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env.ready = errors.New("db caída")
	resp = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `ledger_movements_recorded_total{type="ENTRY"} 1`)
	assert.Contains(t, string(raw), "ledger_http_requests_total")
}

func TestAPI_RutaInexistente(t *testing.T) {
	env := setupAPI(t)

	resp := env.do(t, http.MethodGet, "/nada", "", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)
}
