package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sedifex-backend-go/internal/db"
	"sedifex-backend-go/internal/identity"
	"sedifex-backend-go/internal/middleware"
	"sedifex-backend-go/internal/plans"
	"sedifex-backend-go/internal/tenancy"
)

type testEnv struct {
	router *gin.Engine
	store  *db.MemoryStore
	idp    *identity.MemoryProvider
}

// injectAuth stands in for the token-verifying middleware: it stores the
// given identity in the Gin context the same way VerifyToken does.
func injectAuth(uid string, claims map[string]any) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid != "" {
			c.Set(middleware.ContextUserID, uid)
			c.Set(middleware.ContextUserClaims, claims)
		}
		c.Next()
	}
}

func newTestEnv(t *testing.T, uid string, claims map[string]any) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	idp := identity.NewMemoryProvider()
	billing := plans.BillingConfig{TrialDays: 14, Provider: plans.DefaultProvider, PlanCodes: map[string]string{}}
	service := tenancy.NewService(store, idp, billing, zap.NewNop())
	handler := NewTenancyHandler(service, zap.NewNop())

	router := gin.New()
	authed := router.Group("/", injectAuth(uid, claims))
	authed.POST("/store/initialize", handler.InitializeStore)
	authed.POST("/store/access", handler.ResolveStoreAccess)
	authed.POST("/staff", handler.ManageStaffAccount)

	return &testEnv{router: router, store: store, idp: idp}
}

func (e *testEnv) post(t *testing.T, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)

	payload := map[string]any{}
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	}
	return recorder, payload
}

func TestInitializeStoreEndpoint(t *testing.T) {
	t.Run("returns 200 with the provisioned documents", func(t *testing.T) {
		env := newTestEnv(t, "u1", map[string]any{"email": "owner@example.com"})
		recorder, payload := env.post(t, "/store/initialize", `{"planId": "pro"}`)

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, true, payload["ok"])
		assert.Equal(t, "u1", payload["storeId"])

		claims := payload["claims"].(map[string]any)
		assert.Equal(t, "owner", claims["role"])

		storeDoc := payload["store"].(map[string]any)
		data := storeDoc["data"].(map[string]any)
		billing := data["billing"].(map[string]any)
		assert.Equal(t, "pro", billing["planId"])

		start := data["contractStart"].(map[string]any)
		assert.Contains(t, start, "_millis")
	})

	t.Run("accepts an empty body", func(t *testing.T) {
		env := newTestEnv(t, "u1", map[string]any{})
		recorder, payload := env.post(t, "/store/initialize", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, true, payload["ok"])
	})

	t.Run("maps malformed JSON to 400", func(t *testing.T) {
		env := newTestEnv(t, "u1", map[string]any{})
		recorder, payload := env.post(t, "/store/initialize", `{"planId":`)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, false, payload["ok"])
		assert.Equal(t, "invalid-argument", payload["code"])
	})

	t.Run("maps an invalid plan to 400", func(t *testing.T) {
		env := newTestEnv(t, "u1", map[string]any{})
		recorder, payload := env.post(t, "/store/initialize", `{"planId": "gold"}`)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "Choose a valid Sedifex plan.", payload["message"])
	})

	t.Run("maps a missing identity to 401", func(t *testing.T) {
		env := newTestEnv(t, "", nil)
		recorder, payload := env.post(t, "/store/initialize", `{}`)
		require.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Equal(t, "unauthenticated", payload["code"])
	})
}

func TestResolveStoreAccessEndpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("maps a missing assignment to 403", func(t *testing.T) {
		env := newTestEnv(t, "ghost", map[string]any{})
		recorder, payload := env.post(t, "/store/access", "")
		require.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, "permission-denied", payload["code"])
	})

	t.Run("maps a missing store to 412", func(t *testing.T) {
		env := newTestEnv(t, "u1", map[string]any{})
		require.NoError(t, env.store.Collection("teamMembers").Doc("u1").Set(ctx, map[string]any{"storeId": "s1"}, false))

		recorder, payload := env.post(t, "/store/access", "")
		require.Equal(t, http.StatusPreconditionFailed, recorder.Code)
		assert.Equal(t, "failed-precondition", payload["code"])
	})

	t.Run("resolves an active membership", func(t *testing.T) {
		env := newTestEnv(t, "u1", map[string]any{})
		require.NoError(t, env.store.Collection("teamMembers").Doc("u1").Set(ctx, map[string]any{
			"storeId":       "s1",
			"role":          "owner",
			"workspaceSlug": "acme",
		}, false))
		require.NoError(t, env.store.Collection("stores").Doc("s1").Set(ctx, map[string]any{"status": "Active"}, false))

		recorder, payload := env.post(t, "/store/access", "")
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, true, payload["ok"])
		assert.Equal(t, "s1", payload["storeId"])
		assert.Equal(t, "acme", payload["workspaceSlug"])
	})

	t.Run("maps an inactive store to 403", func(t *testing.T) {
		env := newTestEnv(t, "u1", map[string]any{})
		require.NoError(t, env.store.Collection("teamMembers").Doc("u1").Set(ctx, map[string]any{"storeId": "s1"}, false))
		require.NoError(t, env.store.Collection("stores").Doc("s1").Set(ctx, map[string]any{"status": "Suspended"}, false))

		recorder, payload := env.post(t, "/store/access", "")
		require.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Contains(t, payload["message"], "inactive")
	})
}

func TestManageStaffAccountEndpoint(t *testing.T) {
	t.Run("maps a non-owner caller to 403", func(t *testing.T) {
		env := newTestEnv(t, "u2", map[string]any{"role": "staff"})
		recorder, payload := env.post(t, "/staff", `{"storeId": "s1", "email": "a@b.com", "role": "staff"}`)
		require.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, "Owner access required", payload["message"])
	})

	t.Run("creates a staff account for an owner", func(t *testing.T) {
		env := newTestEnv(t, "owner-1", map[string]any{"role": "owner"})
		recorder, payload := env.post(t, "/staff", `{
			"storeId": "s1",
			"email": "Staff@Example.com",
			"role": "staff",
			"password": "secret123"
		}`)
		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, true, payload["ok"])
		assert.Equal(t, true, payload["created"])
		assert.Equal(t, "staff@example.com", payload["email"])
		assert.Equal(t, "staff", payload["role"])
		assert.NotEmpty(t, payload["uid"])
	})

	t.Run("maps a validation failure to 400", func(t *testing.T) {
		env := newTestEnv(t, "owner-1", map[string]any{"role": "owner"})
		recorder, payload := env.post(t, "/staff", `{"email": "a@b.com", "role": "staff"}`)
		require.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "A storeId is required", payload["message"])
	})

	t.Run("maps a provisioning failure to 500", func(t *testing.T) {
		env := newTestEnv(t, "owner-1", map[string]any{"role": "owner"})
		recorder, payload := env.post(t, "/staff", `{"storeId": "s1", "email": "new@b.com", "role": "staff"}`)
		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		assert.Equal(t, "internal", payload["code"])
	})
}

func TestPlansEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	billing := plans.BillingConfig{
		TrialDays: 14,
		Provider:  plans.DefaultProvider,
		PlanCodes: map[string]string{"starter": "", "pro": "PLN_pro", "enterprise": ""},
	}
	router.GET("/plans", NewPlansHandler(billing).ListPlans)

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))

	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, float64(14), payload["trialDays"])
	assert.Equal(t, "paystack", payload["provider"])

	entries := payload["plans"].([]any)
	require.Len(t, entries, 3)
	first := entries[0].(map[string]any)
	assert.Equal(t, "starter", first["id"])
	assert.Equal(t, float64(99), first["monthlyGhs"])

	codes := payload["planCodes"].(map[string]any)
	assert.Equal(t, "PLN_pro", codes["pro"])
}
