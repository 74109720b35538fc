package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/wholesale-backoffice/internal/categories"
	"github.com/angelmondragon/wholesale-backoffice/internal/customers"
	"github.com/angelmondragon/wholesale-backoffice/pkg/config"
	pkgerrors "github.com/angelmondragon/wholesale-backoffice/pkg/errors"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubCustomers struct {
	customers.Service

	grantedTo uuid.UUID
	grant     customers.GrantInput
	revoked   [2]uuid.UUID
	revokeErr error
}

func (s *stubCustomers) Grant(ctx context.Context, customerID uuid.UUID, input customers.GrantInput) (*customers.InventoryEntryDTO, error) {
	s.grantedTo, s.grant = customerID, input
	return &customers.InventoryEntryDTO{AdminItemID: input.AdminItemID}, nil
}

func (s *stubCustomers) Revoke(ctx context.Context, customerID, adminItemID uuid.UUID) error {
	s.revoked = [2]uuid.UUID{customerID, adminItemID}
	return s.revokeErr
}

type stubCategories struct {
	categories.Service
	created categories.CreateInput
}

func (s *stubCategories) Create(ctx context.Context, input categories.CreateInput) (*categories.CategoryDTO, error) {
	s.created = input
	return &categories.CategoryDTO{ID: uuid.New(), Name: input.Name}, nil
}

func withParams(req *http.Request, kv ...string) *http.Request {
	rc := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rc.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(testConfig()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", rec.Header().Get("X-Backoffice-Env"))
}

func TestHealthReadyReportsDownDependency(t *testing.T) {
	deps := map[string]Pinger{
		"postgres": pingFunc(func(ctx context.Context) error { return nil }),
		"redis":    pingFunc(func(ctx context.Context) error { return errors.New("connection refused") }),
	}
	rec := httptest.NewRecorder()
	HealthReady(testConfig(), nil, deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var env struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, string(pkgerrors.CodeDependency), env.Error.Code)
	require.Equal(t, "down", env.Error.Details["redis"])
	require.Equal(t, "up", env.Error.Details["postgres"])
}

func TestHealthReadyAllUp(t *testing.T) {
	deps := map[string]Pinger{"postgres": pingFunc(func(ctx context.Context) error { return nil })}
	rec := httptest.NewRecorder()
	HealthReady(testConfig(), nil, deps).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGrantInventoryItem(t *testing.T) {
	svc := &stubCustomers{}
	customerID, itemID := uuid.New(), uuid.New()
	req := withParams(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"adminItemId":"`+itemID.String()+`"}`)), "customerId", customerID.String())
	rec := httptest.NewRecorder()
	GrantInventoryItem(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, customerID, svc.grantedTo)
	require.Equal(t, itemID, svc.grant.AdminItemID)
}

func TestRevokeInventoryItem(t *testing.T) {
	svc := &stubCustomers{}
	customerID, itemID := uuid.New(), uuid.New()
	req := withParams(httptest.NewRequest(http.MethodDelete, "/", nil), "customerId", customerID.String(), "itemId", itemID.String())
	rec := httptest.NewRecorder()
	RevokeInventoryItem(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, [2]uuid.UUID{customerID, itemID}, svc.revoked)
}

func TestRevokeInventoryItemNotGranted(t *testing.T) {
	svc := &stubCustomers{revokeErr: pkgerrors.New(pkgerrors.CodeNotFound, "item not granted")}
	req := withParams(httptest.NewRequest(http.MethodDelete, "/", nil), "customerId", uuid.NewString(), "itemId", uuid.NewString())
	rec := httptest.NewRecorder()
	RevokeInventoryItem(svc, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCategoryTrimsName(t *testing.T) {
	svc := &stubCategories{}
	rec := httptest.NewRecorder()
	CreateCategory(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"  Dairy  ","description":"   "}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Dairy", svc.created.Name)
	require.Nil(t, svc.created.Description)
}

func TestGetCategoryRejectsBadID(t *testing.T) {
	rec := httptest.NewRecorder()
	GetCategory(&stubCategories{}, nil).ServeHTTP(rec, withParams(httptest.NewRequest(http.MethodGet, "/", nil), "categoryId", "x"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
