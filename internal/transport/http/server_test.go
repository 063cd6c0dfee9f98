package http_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	httpapp "photoflow/internal/app/http"
	"photoflow/internal/domain/models"
	"photoflow/internal/services/auth"
	photoservice "photoflow/internal/services/photo_service"
	"photoflow/internal/storage"
	httprouters "photoflow/internal/transport/http"
	"photoflow/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) IsAuthenticated(ctx context.Context, token string) bool {
	args := m.Called(ctx, token)
	return args.Bool(0)
}

type MockPhotoService struct {
	mock.Mock
}

func (m *MockPhotoService) UploadPhoto(ctx context.Context, input dto.PhotoUploadInput) (*models.Photo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockPhotoService) ListPhotos(ctx context.Context, scope photoservice.ListScope) ([]models.Photo, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Photo), args.Error(1)
}

func (m *MockPhotoService) UpdatePhoto(ctx context.Context, input dto.PhotoUpdateInput) (*models.Photo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Photo), args.Error(1)
}

func (m *MockPhotoService) DeletePhoto(ctx context.Context, photoID uuid.UUID, src string) error {
	args := m.Called(ctx, photoID, src)
	return args.Error(0)
}

func newTestServer(t *testing.T, authSvc *MockAuthService, photoSvc *MockPhotoService) *echo.Echo {
	t.Helper()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	routers := httprouters.NewRouter(log, authSvc, photoSvc, "admin_session", false, 3600)

	srv := httpapp.New(log, "test-secret", "localhost", "0", t.TempDir(), routers)
	srv.BuildRouters()

	return srv.Echo()
}

// loginAndGetCookie runs the form login and returns the session cookie the
// server handed back.
func loginAndGetCookie(t *testing.T, e *echo.Echo, authSvc *MockAuthService) *http.Cookie {
	t.Helper()

	authSvc.On("Login", mock.Anything, "admin", "hunter2").Return("tok-123", nil).Once()

	form := url.Values{"username": {"admin"}, "password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/admin/photos", rec.Header().Get("Location"))

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "admin_session" {
			return cookie
		}
	}

	t.Fatal("no session cookie in login response")
	return nil
}

func TestLoginFlow(t *testing.T) {
	t.Run("valid credentials set a session cookie and redirect to the panel", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		cookie := loginAndGetCookie(t, e, authSvc)

		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
		assert.False(t, cookie.Secure)
		authSvc.AssertExpectations(t)
	})

	t.Run("bad credentials redirect back with an error code", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		authSvc.On("Login", mock.Anything, "admin", "wrong").
			Return("", auth.ErrInvalidCredentials).Once()

		form := url.Values{"username": {"admin"}, "password": {"wrong"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login?error=credentials", rec.Header().Get("Location"))
	})

	t.Run("missing configuration surfaces as a generic server error", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		authSvc.On("Login", mock.Anything, "admin", "hunter2").
			Return("", auth.ErrNotConfigured).Once()

		form := url.Values{"username": {"admin"}, "password": {"hunter2"}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login?error=server", rec.Header().Get("Location"))
	})

	t.Run("empty form never reaches the credential gate", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(""))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin/login?error=invalid", rec.Header().Get("Location"))
		authSvc.AssertNotCalled(t, "Login")
	})
}

func TestRouteGuards(t *testing.T) {
	t.Run("admin page without a session redirects to login", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		authSvc.On("IsAuthenticated", mock.Anything, "").Return(false).Once()

		req := httptest.NewRequest(http.MethodGet, "/admin/photos", nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	})

	t.Run("login page with a live session redirects to the panel", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		cookie := loginAndGetCookie(t, e, authSvc)
		authSvc.On("IsAuthenticated", mock.Anything, "tok-123").Return(true).Once()

		req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/admin/photos", rec.Header().Get("Location"))
	})

	t.Run("admin API without a session answers 401, not a redirect", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		authSvc.On("IsAuthenticated", mock.Anything, "").Return(false).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/photos", nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"authentication_required"`)
		photoSvc.AssertNotCalled(t, "ListPhotos")
	})

	t.Run("admin API with a live session goes through", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		cookie := loginAndGetCookie(t, e, authSvc)
		authSvc.On("IsAuthenticated", mock.Anything, "tok-123").Return(true).Once()
		photoSvc.On("ListPhotos", mock.Anything, photoservice.ScopeAdmin).
			Return([]models.Photo{{ID: uuid.New()}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/photos", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"success"`)
	})

	t.Run("login page without a session renders the form", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		authSvc.On("IsAuthenticated", mock.Anything, "").Return(false).Once()

		req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLogout(t *testing.T) {
	authSvc := new(MockAuthService)
	photoSvc := new(MockPhotoService)
	e := newTestServer(t, authSvc, photoSvc)

	cookie := loginAndGetCookie(t, e, authSvc)
	authSvc.On("Logout", mock.Anything, "tok-123").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
	authSvc.AssertExpectations(t)

	// The replacement cookie must be expired.
	for _, c := range rec.Result().Cookies() {
		if c.Name == "admin_session" {
			assert.Less(t, c.MaxAge, 0)
		}
	}
}

func TestListPublicPhotos(t *testing.T) {
	t.Run("success envelope", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		photoSvc.On("ListPhotos", mock.Anything, photoservice.ScopePublic).
			Return([]models.Photo{{ID: uuid.New(), Src: "https://example.com/a.jpg"}}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"success"`)
		assert.Contains(t, rec.Body.String(), "https://example.com/a.jpg")
	})

	t.Run("backend failure answers 500 without detail", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		photoSvc.On("ListPhotos", mock.Anything, photoservice.ScopePublic).
			Return(nil, assert.AnError).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/photos", nil)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	})
}

func TestUpdatePhoto_ErrorMapping(t *testing.T) {
	withSession := func(t *testing.T, authSvc *MockAuthService, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
		t.Helper()

		cookie := loginAndGetCookie(t, e, authSvc)
		authSvc.On("IsAuthenticated", mock.Anything, "tok-123").Return(true).Once()

		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()

		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("malformed id answers 400", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		rec := withSession(t, authSvc, e, http.MethodPatch, "/api/v1/admin/photos/not-a-uuid", `{"alt":"x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		photoSvc.AssertNotCalled(t, "UpdatePhoto")
	})

	t.Run("unknown photo answers 404", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		photoSvc.On("UpdatePhoto", mock.Anything, mock.Anything).
			Return(nil, storage.ErrPhotoNotFound).Once()

		rec := withSession(t, authSvc, e, http.MethodPatch, "/api/v1/admin/photos/"+uuid.NewString(), `{"alt":"x"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("field errors answer 400 with the offending fields", func(t *testing.T) {
		authSvc := new(MockAuthService)
		photoSvc := new(MockPhotoService)
		e := newTestServer(t, authSvc, photoSvc)

		ve := models.NewPhotoValidationError()
		ve.Add("alt", "alt must be at most 255 characters")
		photoSvc.On("UpdatePhoto", mock.Anything, mock.Anything).Return(nil, ve).Once()

		rec := withSession(t, authSvc, e, http.MethodPatch, "/api/v1/admin/photos/"+uuid.NewString(), `{"alt":"x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"alt"`)
	})
}

func TestDeletePhoto(t *testing.T) {
	authSvc := new(MockAuthService)
	photoSvc := new(MockPhotoService)
	e := newTestServer(t, authSvc, photoSvc)

	cookie := loginAndGetCookie(t, e, authSvc)
	authSvc.On("IsAuthenticated", mock.Anything, "tok-123").Return(true).Once()

	id := uuid.New()
	src := "https://example.com/a.jpg"
	photoSvc.On("DeletePhoto", mock.Anything, id, src).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/photos/"+id.String(),
		strings.NewReader(`{"src":"`+src+`"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	photoSvc.AssertExpectations(t)
}
