package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftshop/internal/auth"
	"giftshop/internal/config"
	"giftshop/internal/model"
	"giftshop/internal/service"
	"giftshop/internal/store/memstore"
	"giftshop/pkg/response"
)

type fixture struct {
	router   http.Handler
	verifier *auth.Verifier
	st       *memstore.MemStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.BotToken = "test-bot-token"
	cfg.Auth.AdminUserID = "admin"
	cfg.Business.DefaultAssetPrice = "1.0"
	cfg.Business.ReadRetryCount = 1
	cfg.Kafka.Topic.ShopEvents = "shop.events"

	st := memstore.New()
	verifier := auth.NewVerifier(cfg.Auth.BotToken, time.Hour)

	accountService := service.NewAccountService(st, cfg)
	catalogService, err := service.NewCatalogService(st, nil, cfg)
	require.NoError(t, err)
	purchaseService := service.NewPurchaseService(st, nil, cfg)
	creditService := service.NewCreditService(st, cfg)

	h := NewHandler(accountService, catalogService, purchaseService, creditService, cfg.Auth.AdminUserID)
	return &fixture{
		router:   SetupRouter(h, verifier),
		verifier: verifier,
		st:       st,
	}
}

func (f *fixture) credential(userID string) string {
	values := url.Values{}
	values.Set("user_id", userID)
	values.Set("auth_date", fmt.Sprintf("%d", time.Now().Unix()))
	return f.verifier.Sign(values)
}

func (f *fixture) do(t *testing.T, method, path, cred, body string) *response.Response {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cred != "" {
		req.Header.Set("X-Init-Data", cred)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func (f *fixture) seedAsset(t *testing.T, id int64, price float64) {
	t.Helper()
	err := f.st.Catalog().Insert(context.Background(), &model.Asset{
		AssetID:     id,
		ExternalRef: fmt.Sprintf("ref-%d", id),
		DisplayName: fmt.Sprintf("Gift %d", id),
		Price:       decimal.NewFromFloat(price),
	})
	require.NoError(t, err)
}

func TestRouter_Purchase(t *testing.T) {
	t.Run("verified buyer purchases an asset", func(t *testing.T) {
		f := newFixture(t)
		f.seedAsset(t, 7, 2.5)
		_, err := f.st.Ledger().ApplyDelta(context.Background(), "42", decimal.NewFromFloat(3))
		require.NoError(t, err)

		resp := f.do(t, http.MethodPost, "/api/v1/purchase/execute", f.credential("42"),
			`{"asset_id": 7}`)
		assert.Equal(t, response.CodeSuccess, resp.Code)

		resp = f.do(t, http.MethodPost, "/api/v1/purchase/execute", f.credential("42"),
			`{"asset_id": 7}`)
		assert.Equal(t, response.CodeAlreadyOwned, resp.Code)
	})

	t.Run("missing or forged credential rejected", func(t *testing.T) {
		f := newFixture(t)
		f.seedAsset(t, 7, 2.5)

		resp := f.do(t, http.MethodPost, "/api/v1/purchase/execute", "", `{"asset_id": 7}`)
		assert.Equal(t, response.CodeInvalidCredential, resp.Code)

		resp = f.do(t, http.MethodPost, "/api/v1/purchase/execute",
			"user_id=42&hash=deadbeef", `{"asset_id": 7}`)
		assert.Equal(t, response.CodeInvalidCredential, resp.Code)
	})

	t.Run("insufficient funds carries the balance", func(t *testing.T) {
		f := newFixture(t)
		f.seedAsset(t, 7, 2.5)

		resp := f.do(t, http.MethodPost, "/api/v1/purchase/execute", f.credential("42"),
			`{"asset_id": 7}`)
		assert.Equal(t, response.CodeInsufficientFunds, resp.Code)

		data, ok := resp.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, data, "balance")
	})
}

func TestRouter_Credit(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/credit/issue", f.credential("admin"),
		`{"target_id": "42", "amount": "10"}`)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	resp = f.do(t, http.MethodPost, "/api/v1/credit/issue", f.credential("42"),
		`{"target_id": "42", "amount": "10"}`)
	assert.Equal(t, response.CodeUnauthorized, resp.Code)

	resp = f.do(t, http.MethodGet, "/api/v1/account/balance", f.credential("42"), "")
	assert.Equal(t, response.CodeSuccess, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "10", data["balance"])
}

func TestRouter_Catalog(t *testing.T) {
	f := newFixture(t)
	f.seedAsset(t, 7, 2.5)

	t.Run("list is public", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/catalog/list", "", "")
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("ingest is admin-only", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/api/v1/catalog/ingest", f.credential("42"),
			`{"external_ref": "ev-9", "display_name": "Gift"}`)
		assert.Equal(t, response.CodeUnauthorized, resp.Code)

		resp = f.do(t, http.MethodPost, "/api/v1/catalog/ingest", f.credential("admin"),
			`{"external_ref": "ev-9", "display_name": "Gift"}`)
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})
}

func TestRouter_History(t *testing.T) {
	f := newFixture(t)
	_, err := f.st.Ledger().ApplyDelta(context.Background(), "42", decimal.NewFromFloat(10))
	require.NoError(t, err)

	t.Run("defaults apply", func(t *testing.T) {
		resp := f.do(t, http.MethodGet, "/api/v1/account/history", f.credential("42"), "")
		assert.Equal(t, response.CodeSuccess, resp.Code)
	})

	t.Run("malformed or out-of-range pagination rejected", func(t *testing.T) {
		for _, query := range []string{
			"page=abc",
			"page=0",
			"page=-1",
			"page_size=abc",
			"page_size=0",
			"page_size=1000",
		} {
			resp := f.do(t, http.MethodGet, "/api/v1/account/history?"+query, f.credential("42"), "")
			assert.Equal(t, response.CodeParamError, resp.Code, query)
		}
	})
}

func TestRouter_SettleExternalPayment(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPost, "/api/v1/payment/callback", "",
		`{"user_id": "42", "kind": "points", "amount": 100, "payment_ref": "pay-1"}`)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(100), data["stars"])
}
