package wealthapi_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wealth-management/internal/app/wealthapi"
	"github.com/magabrotheeeer/wealth-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wealth-management/internal/lib/jwt"
	"github.com/magabrotheeeer/wealth-management/internal/lib/password"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/services/auth"
	"github.com/magabrotheeeer/wealth-management/internal/services/portfolio"
	"github.com/magabrotheeeer/wealth-management/internal/storage/repository"
)

type memStore struct {
	mu         sync.Mutex
	users      map[int64]*models.User
	portfolios map[int64]*models.Portfolio
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{users: map[int64]*models.User{}, portfolios: map[int64]*models.Portfolio{}}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, repository.ErrAlreadyExists
		}
	}
	user.ID = s.id()
	user.CreatedAt = time.Now()
	s.users[user.ID] = &user
	cp := user
	return &cp, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memStore) UpdateUserProfile(_ context.Context, id int64, firstName, lastName string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if firstName != "" {
		u.FirstName = firstName
	}
	if lastName != "" {
		u.LastName = lastName
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) DeactivateUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsActive = false
	return nil
}

func (s *memStore) CreatePortfolio(_ context.Context, userID int64, in models.PortfolioInput) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Portfolio{ID: s.id(), Name: in.Name, Description: in.Description, UserID: userID, CreatedAt: time.Now()}
	s.portfolios[p.ID] = p
	cp := *p
	return &cp, nil
}

func (s *memStore) GetPortfolio(_ context.Context, id int64) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memStore) ListPortfolios(_ context.Context, userID int64, _ models.Page) ([]*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var list []*models.Portfolio
	for _, p := range s.portfolios {
		if p.UserID == userID {
			cp := *p
			list = append(list, &cp)
		}
	}
	return list, nil
}

func (s *memStore) UpdatePortfolio(_ context.Context, id, userID int64, in models.PortfolioInput) (*models.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[id]
	if !ok || p.UserID != userID {
		return nil, repository.ErrNotFound
	}
	p.Name, p.Description = in.Name, in.Description
	cp := *p
	return &cp, nil
}

func (s *memStore) DeletePortfolio(_ context.Context, id, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[id]
	if !ok || p.UserID != userID {
		return 0, nil
	}
	delete(s.portfolios, id)
	return 1, nil
}

type testAPI struct {
	server *httptest.Server
	store  *memStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMemStore()

	tokens, err := jwt.NewJWTMaker("test-secret", 30*time.Minute)
	require.NoError(t, err)
	authService := auth.New(logger, store, password.NewHasher(4), tokens)

	router := chi.NewRouter()
	wealthapi.RegisterRoutes(router, logger, wealthapi.Services{
		Resolver:   authService,
		Users:      authService,
		Portfolios: portfolio.New(logger, store),
	}, wealthapi.RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		Metrics:        middlewarectx.NewMetrics(prometheus.NewRegistry()),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testAPI{server: srv, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, token, body string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, a.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func (a *testAPI) signUp(t *testing.T, email string) string {
	t.Helper()
	resp, _ := a.do(t, http.MethodPost, "/users", "",
		`{"email":"`+email+`","first_name":"Test","last_name":"User","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	form := url.Values{"username": {email}, "password": {"s3cret"}}
	tokenResp, err := a.server.Client().PostForm(a.server.URL+"/auth/token", form)
	require.NoError(t, err)
	defer tokenResp.Body.Close()
	require.Equal(t, http.StatusOK, tokenResp.StatusCode)

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.NewDecoder(tokenResp.Body).Decode(&out))
	require.Equal(t, "bearer", out.TokenType)
	return out.AccessToken
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	for _, token := range []string{"", "not-a-jwt"} {
		resp, body := api.do(t, http.MethodGet, "/portfolios", token, "")

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		assert.JSONEq(t, `{"status":"Error","error":"could not validate credentials"}`, body)
	}
}

func TestForeignPortfolioIndistinguishableFromMissing(t *testing.T) {
	api := newTestAPI(t)
	alice := api.signUp(t, "alice@example.com")
	bob := api.signUp(t, "bob@example.com")

	resp, body := api.do(t, http.MethodPost, "/portfolios", bob, `{"name":"Bob's"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		Data models.Portfolio `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	bobsPath := "/portfolios/" + strconv.FormatInt(created.Data.ID, 10)

	foreignResp, foreignBody := api.do(t, http.MethodGet, bobsPath, alice, "")
	missingResp, missingBody := api.do(t, http.MethodGet, "/portfolios/99999", alice, "")

	assert.Equal(t, http.StatusNotFound, foreignResp.StatusCode)
	assert.Equal(t, foreignResp.StatusCode, missingResp.StatusCode)
	assert.Equal(t, foreignBody, missingBody)

	delResp, _ := api.do(t, http.MethodDelete, bobsPath, alice, "")
	assert.Equal(t, http.StatusNotFound, delResp.StatusCode)

	ownResp, ownBody := api.do(t, http.MethodGet, bobsPath, bob, "")
	assert.Equal(t, http.StatusOK, ownResp.StatusCode)
	assert.Contains(t, ownBody, `"name":"Bob's"`)

	listResp, listBody := api.do(t, http.MethodGet, "/portfolios", alice, "")
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	assert.JSONEq(t, `{"status":"OK","data":[]}`, listBody)
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	api := newTestAPI(t)
	token := api.signUp(t, "carol@example.com")

	resp, _ := api.do(t, http.MethodGet, "/users/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/users/me/deactivate", token, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/users/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTrailingSlashPaths(t *testing.T) {
	api := newTestAPI(t)

	resp, _ := api.do(t, http.MethodPost, "/users/", "",
		`{"email":"dave@example.com","first_name":"Dave","last_name":"User","password":"s3cret"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	token := api.signUp(t, "erin@example.com")

	resp, body := api.do(t, http.MethodPost, "/portfolios/", token, `{"name":"Slashed"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, `"name":"Slashed"`)

	resp, body = api.do(t, http.MethodGet, "/portfolios/", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"name":"Slashed"`)

	resp, _ = api.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodOptions, api.server.URL+"/portfolios", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
