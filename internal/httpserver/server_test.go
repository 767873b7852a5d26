package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_api/internal/auth"
	"github.com/Skotchmaster/food_api/internal/db"
	"github.com/Skotchmaster/food_api/internal/events"
	"github.com/Skotchmaster/food_api/internal/models"
	"github.com/Skotchmaster/food_api/internal/repo"
	"github.com/Skotchmaster/food_api/internal/service"
	"github.com/Skotchmaster/food_api/internal/tokens"
	"github.com/Skotchmaster/food_api/internal/transport"
)

var testSecret = []byte("test-jwt-secret")

type testServer struct {
	e      *echo.Echo
	repo   *repo.GormRepo
	users  *service.UserService
	events *events.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gdb, err := db.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tm, err := tokens.NewManager(testSecret, 30*time.Minute)
	require.NoError(t, err)

	r := repo.New(gdb)
	rec := &events.Recorder{}
	users := &service.UserService{Repo: r, Events: rec}

	_, err = users.EnsureAdmin(context.Background(), "admin", "admin")
	require.NoError(t, err)

	e := New(&Deps{
		AuthHandler: &AuthHTTP{Svc: &service.AuthService{Repo: r, Tokens: tm, Events: rec}},
		UserHandler: &UserHTTP{Svc: users},
		FoodHandler: &FoodHTTP{Svc: &service.FoodService{Repo: r, Events: rec}},
		Gate:        auth.NewGate(&auth.Validator{Tokens: tm, Users: r}),
	}, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	return &testServer{e: e, repo: r, users: users, events: rec}
}

func (s *testServer) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(auth.HeaderAccessToken, token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res transport.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (s *testServer) createUser(t *testing.T, adminToken, username, password string, admin bool) transport.UserResponse {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/user", adminToken, map[string]any{
		"username": username, "password": password, "admin": admin,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var u transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	return u
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/login", "", map[string]string{"username": "admin", "password": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res transport.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Token)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), res.ExpiresAt, 5*time.Second)

	rec = s.do(t, http.MethodPost, "/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", "", map[string]string{"username": "ghost", "password": "admin"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")
}

func TestUsers_AdminFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")

	rec := s.do(t, http.MethodGet, "/user", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.True(t, users[0].Admin)

	rec = s.do(t, http.MethodPost, "/user", admin, map[string]any{"username": "alice", "password": "secret"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "password")

	var alice transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alice))
	assert.False(t, alice.Admin)
	assert.Len(t, alice.PublicID, 36)

	rec = s.do(t, http.MethodPost, "/user", admin, map[string]any{"username": "alice", "password": "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPut, "/user/"+alice.PublicID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admin":true`)

	rec = s.do(t, http.MethodDelete, "/user/"+alice.PublicID, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/user/"+alice.PublicID, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/user/"+alice.PublicID, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsers_NonAdminIsForbidden(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	bob := s.createUser(t, admin, "bob", "builder", false)
	token := s.login(t, "bob", "builder")

	rec := s.do(t, http.MethodPost, "/user", token, map[string]any{"username": "eve", "password": "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"Unauthorized operation"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/user", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/user/"+bob.PublicID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var adminID string
	for _, u := range mustListUsers(t, s, admin) {
		if u.Admin {
			adminID = u.PublicID
		}
	}
	rec = s.do(t, http.MethodGet, "/user/"+adminID, token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func mustListUsers(t *testing.T, s *testServer, token string) []transport.UserResponse {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/user", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []transport.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	return users
}

func TestAuth_TokenRejections(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")

	rec := s.do(t, http.MethodGet, "/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/food", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tm, err := tokens.NewManager(testSecret, 30*time.Minute)
	require.NoError(t, err)
	claims, err := tm.Parse(admin)
	require.NoError(t, err)
	expired, _, err := tm.WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).Issue(claims.Subject)
	require.NoError(t, err)

	rec = s.do(t, http.MethodGet, "/user", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Invalid token"}`, rec.Body.String())
}

func TestAuth_DeletedUserTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	carol := s.createUser(t, admin, "carol", "pw", false)
	token := s.login(t, "carol", "pw")

	rec := s.do(t, http.MethodGet, "/food", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/user/"+carol.PublicID, admin, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/food", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFood_Flow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")
	s.createUser(t, admin, "dan", "pw", false)
	token := s.login(t, "dan", "pw")

	for _, f := range []transport.CreateFoodRequest{
		{Name: "apples", Location: "farm stand", Zipcode: 10001},
		{Name: "bread", Location: "bakery", Zipcode: 10001},
		{Name: "soup", Location: "shelter", Zipcode: 20002},
	} {
		rec := s.do(t, http.MethodPost, "/food", token, f)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/food/10001", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Food
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	for _, it := range items {
		assert.EqualValues(t, 10001, it.Zipcode)
	}

	rec = s.do(t, http.MethodGet, "/food/99999", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/food/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/food?page=1&size=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page transport.FoodPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.EqualValues(t, 3, page.Meta.Total)
	assert.Len(t, page.Data, 2)

	rec = s.do(t, http.MethodGet, "/food/search?q=brea", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found transport.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.EqualValues(t, 1, found.Total)
	id := found.Data[0].ID

	rec = s.do(t, http.MethodGet, "/food/search", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	target := "/food/item/" + strconv.FormatUint(uint64(id), 10)
	rec = s.do(t, http.MethodPatch, target, token, map[string]string{"name": "rye"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, target, admin, map[string]string{"name": "rye"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"rye"`)

	rec = s.do(t, http.MethodDelete, target, admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, target, admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFood_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin", "admin")

	rec := s.do(t, http.MethodPost, "/food", admin, map[string]any{"location": "nowhere"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "name")
	assert.Contains(t, rec.Body.String(), "zipcode")

	rec = s.do(t, http.MethodPost, "/food", admin, map[string]any{"name": "x", "zipcode": -5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", nil).Code)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestLoginHandler_InvalidBody(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte(`{"username":`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := &AuthHTTP{}
	err := h.Login(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}
