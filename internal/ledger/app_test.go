package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/retail-ledger/internal/config"
	httpdelivery "github.com/tair/retail-ledger/internal/ledger/delivery/http"
	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/repository"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	ErrorKind string          `json:"error_kind"`
	Message   string          `json:"message"`
}

type testServer struct {
	router *mux.Router
	store  *repository.MemoryStore
}

func testConfig() *config.Config {
	return &config.Config{
		Executor: config.ExecutorConfig{MaxAttempts: 3, BaseDelay: time.Millisecond},
		Installment: config.InstallmentConfig{
			MaxMonths:      24,
			GraceDays:      5,
			LateFeePercent: decimal.NewFromInt(2),
		},
		Pricing: config.PricingConfig{
			FloorPercent:     decimal.NewFromInt(50),
			CustomPriceRoles: []domain.Role{domain.RoleManager, domain.RoleOperations},
		},
		Redis: config.RedisConfig{TTL: time.Minute},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := repository.NewMemoryStore()
	app, err := InitializeApp(testConfig(), store, store, nil, command.NoopNotifier{}, prometheus.NewRegistry())
	require.NoError(t, err)

	router := mux.NewRouter()
	app.Handler.RegisterRoutes(router, httpdelivery.HeaderActorMiddleware())
	app.Handler.RegisterHealthCheck(router, store)
	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, role string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set("X-Actor-Uid", "u-"+role)
		req.Header.Set("X-Actor-Name", "Test "+role)
		req.Header.Set("X-Actor-Location", "nairobi")
		req.Header.Set("X-Actor-Role", role)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) createStock(t *testing.T, qty int) {
	t.Helper()
	code, env := s.do(t, "POST", "/api/stock", "manager", map[string]interface{}{
		"item_code":    "A54",
		"brand":        "Samsung",
		"model":        "Galaxy A54",
		"quantity":     qty,
		"cost_price":   "700",
		"retail_price": "1000",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
}

func TestAPI_SaleLifecycle(t *testing.T) {
	s := newTestServer(t)
	s.createStock(t, 2)

	code, env := s.do(t, "POST", "/api/sales", "clerk", map[string]interface{}{
		"item_code": "A54",
		"quantity":  1,
		"customer":  map[string]string{"name": "Wanjiru"},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var sale domain.SaleRecord
	require.NoError(t, json.Unmarshal(env.Data, &sale))
	assert.Equal(t, "nairobi", sale.Location)
	assert.Equal(t, 1, sale.StockAfter)

	code, env = s.do(t, "GET", "/api/stock/nairobi/A54", "clerk", nil)
	require.Equal(t, http.StatusOK, code)
	var item domain.StockItem
	require.NoError(t, json.Unmarshal(env.Data, &item))
	assert.Equal(t, 1, item.Quantity)

	code, env = s.do(t, "GET", "/api/audit?transaction_id="+sale.TransactionID, "clerk", nil)
	require.Equal(t, http.StatusOK, code)
	var entries []domain.AuditLogEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, -1, entries[0].QuantityDelta)

	code, env = s.do(t, "GET", "/api/analytics/sales-summary", "clerk", nil)
	require.Equal(t, http.StatusOK, code)
	var summary struct {
		Transactions int `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 1, summary.Transactions)
}

func TestAPI_ErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	s.createStock(t, 1)

	code, env := s.do(t, "POST", "/api/sales", "clerk", map[string]interface{}{"item_code": "A54", "quantity": 2})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.False(t, env.Success)
	assert.Equal(t, string(domain.KindValidation), env.ErrorKind)
	assert.Equal(t, "insufficient stock", env.Message)

	code, env = s.do(t, "GET", "/api/stock/mombasa/A54", "clerk", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, string(domain.KindNotFound), env.ErrorKind)

	code, _ = s.do(t, "POST", "/api/sales", "clerk", map[string]interface{}{"item_code": "A54", "bogus": true})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = s.do(t, "GET", "/api/stock", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = s.do(t, "POST", "/api/consistency/scan", "clerk", nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestAPI_ExhaustedRetriesAreConflicts(t *testing.T) {
	s := newTestServer(t)
	s.createStock(t, 1)
	s.store.FailNextCommits(3, nil)

	code, env := s.do(t, "POST", "/api/sales", "clerk", map[string]interface{}{"item_code": "A54", "quantity": 1})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, domain.RetryMessage, env.Message)
}

func TestAPI_FaultyAndInstallmentFlows(t *testing.T) {
	s := newTestServer(t)
	s.createStock(t, 3)

	code, env := s.do(t, "POST", "/api/faulty", "clerk", map[string]interface{}{
		"item_code":         "A54",
		"fault_description": "no signal",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var report domain.FaultyPhoneReport
	require.NoError(t, json.Unmarshal(env.Data, &report))

	for _, status := range []string{"In Repair", "Fixed"} {
		code, env = s.do(t, "PATCH", fmt.Sprintf("/api/faulty/%s/status", report.ID), "clerk", map[string]interface{}{"status": status})
		require.Equal(t, http.StatusOK, code, env.Message)
	}

	code, env = s.do(t, "GET", "/api/faulty/"+report.ID, "clerk", nil)
	require.Equal(t, http.StatusOK, code)
	var view struct {
		Report domain.FaultyPhoneReport `json:"report"`
		Repair *domain.RepairRecord     `json:"repair"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, domain.FaultyFixed, view.Report.Status)
	assert.NotNil(t, view.Repair)

	code, env = s.do(t, "POST", "/api/installments", "clerk", map[string]interface{}{
		"customer":     map[string]string{"name": "Otieno"},
		"total_amount": "300000",
		"down_payment": "100000",
		"months":       4,
		"start_date":   "2024-01-10",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created command.CreateInstallmentResult
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.True(t, decimal.NewFromInt(50000).Equal(created.Plan.MonthlyPayment))

	code, env = s.do(t, "POST", fmt.Sprintf("/api/installments/%s/payments", created.Plan.ID), "clerk", map[string]interface{}{
		"amount": "50000",
		"date":   "2024-02-10",
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(t, "POST", fmt.Sprintf("/api/installments/%s/cancel", created.Plan.ID), "manager", nil)
	require.Equal(t, http.StatusOK, code)

	code, env = s.do(t, "POST", fmt.Sprintf("/api/installments/%s/payments", created.Plan.ID), "clerk", map[string]interface{}{"amount": "50000"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestAPI_ConsistencyScan(t *testing.T) {
	s := newTestServer(t)
	s.createStock(t, 3)

	code, env := s.do(t, "POST", "/api/consistency/scan", "operations", nil)
	require.Equal(t, http.StatusOK, code)
	var report struct {
		Findings []json.RawMessage `json:"findings"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Empty(t, report.Findings)

	s.store.Seed(domain.StockItem{ID: "bad", ItemCode: "X", Location: "nairobi", Brand: "b", Model: "m", Quantity: -1})

	code, env = s.do(t, "POST", "/api/consistency/scan", "manager", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.NotEmpty(t, report.Findings)
}

func TestAPI_Health(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}
