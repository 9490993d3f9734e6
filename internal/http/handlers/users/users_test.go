package users_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/wealth-management/internal/http/handlers/users"
	"github.com/magabrotheeeer/wealth-management/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wealth-management/internal/models"
	"github.com/magabrotheeeer/wealth-management/internal/services/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockService) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockService) UpdateProfile(ctx context.Context, userID int64, in models.ProfileInput) (*models.User, error) {
	args := m.Called(ctx, userID, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockService) Deactivate(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

var alice = &models.User{ID: 1, Email: "alice@example.com", FirstName: "Alice", LastName: "Smith", IsActive: true}

func newRouter(svc users.Service) http.Handler {
	h := users.New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Post("/users", h.Register)
	r.Post("/auth/token", h.Token)
	r.Get("/users/me", h.Me)
	r.Put("/users/me", h.UpdateMe)
	r.Post("/users/me/deactivate", h.Deactivate)
	return r
}

func TestRegister(t *testing.T) {
	in := models.RegisterInput{Email: "alice@example.com", FirstName: "Alice", LastName: "Smith", Password: "s3cret"}
	body := `{"email":"alice@example.com","first_name":"Alice","last_name":"Smith","password":"s3cret"}`

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "успешная регистрация",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, in).Return(&models.User{
					ID: 1, Email: in.Email, FirstName: "Alice", LastName: "Smith", IsActive: true, HashedPassword: "$2a$10$hash",
				}, nil)
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"email":"alice@example.com"`,
		},
		{
			name: "email уже занят",
			body: body,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, in).Return(nil, fmt.Errorf("auth.Register: %w", auth.ErrInvalidCredentials))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"error":"email already registered"`,
		},
		{
			name:       "некорректный email",
			body:       strings.Replace(body, "alice@example.com", "alice", 1),
			setupMock:  func(_ *MockService) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   "field Email must be a valid email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "hash")
			svc.AssertExpectations(t)
		})
	}
}

func TestToken(t *testing.T) {
	form := url.Values{"username": {"alice@example.com"}, "password": {"s3cret"}, "grant_type": {"password"}}.Encode()

	tests := []struct {
		name        string
		contentType string
		body        string
		loginErr    error
		wantStatus  int
		wantBody    string
	}{
		{
			name:        "форма OAuth2",
			contentType: "application/x-www-form-urlencoded",
			body:        form,
			wantStatus:  http.StatusOK,
			wantBody:    `{"access_token":"jwt-token","token_type":"bearer"}`,
		},
		{
			name:        "JSON",
			contentType: "application/json",
			body:        `{"username":"alice@example.com","password":"s3cret"}`,
			wantStatus:  http.StatusOK,
			wantBody:    `{"access_token":"jwt-token","token_type":"bearer"}`,
		},
		{
			name:        "неверный пароль",
			contentType: "application/x-www-form-urlencoded",
			body:        form,
			loginErr:    fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials),
			wantStatus:  http.StatusUnauthorized,
			wantBody:    `{"status":"Error","error":"incorrect username or password"}`,
		},
		{
			name:        "хранилище недоступно",
			contentType: "application/json",
			body:        `{"username":"alice@example.com","password":"s3cret"}`,
			loginErr:    errors.New("db down"),
			wantStatus:  http.StatusInternalServerError,
			wantBody:    `{"status":"Error","error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Login", mock.Anything, "alice@example.com", "s3cret").Return("jwt-token", tt.loginErr)

			req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestToken_MissingPassword(t *testing.T) {
	svc := new(MockService)

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader("username=alice%40example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestMeEndpoints(t *testing.T) {
	svc := new(MockService)
	svc.On("UpdateProfile", mock.Anything, alice.ID, models.ProfileInput{FirstName: "Alicia"}).
		Return(&models.User{ID: 1, Email: alice.Email, FirstName: "Alicia", LastName: "Smith", IsActive: true}, nil)
	svc.On("Deactivate", mock.Anything, alice.ID).Return(nil)
	router := newRouter(svc)

	send := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(middlewarectx.WithUser(req.Context(), alice))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	me := send(http.MethodGet, "/users/me", "")
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"first_name":"Alice"`)

	updated := send(http.MethodPut, "/users/me", `{"first_name":"Alicia"}`)
	assert.Equal(t, http.StatusOK, updated.Code)
	assert.Contains(t, updated.Body.String(), `"first_name":"Alicia"`)

	deactivated := send(http.MethodPost, "/users/me/deactivate", "")
	assert.Equal(t, http.StatusNoContent, deactivated.Code)

	svc.AssertExpectations(t)
}
