package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"photoflow/internal/domain/models"
	"photoflow/internal/lib/logger/sl"
	"photoflow/internal/services/auth"
	photoservice "photoflow/internal/services/photo_service"
	"photoflow/internal/storage"
	"photoflow/internal/transport/http/dto"
	"photoflow/internal/transport/http/dto/request"
	"photoflow/internal/transport/http/dto/response"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// SessionIDKey is the key the opaque session token is stored under inside
// the signed cookie.
const SessionIDKey = "sid"

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context, token string) error
	IsAuthenticated(ctx context.Context, token string) bool
}

type PhotoService interface {
	UploadPhoto(ctx context.Context, input dto.PhotoUploadInput) (*models.Photo, error)
	ListPhotos(ctx context.Context, scope photoservice.ListScope) ([]models.Photo, error)
	UpdatePhoto(ctx context.Context, input dto.PhotoUpdateInput) (*models.Photo, error)
	DeletePhoto(ctx context.Context, photoID uuid.UUID, src string) error
}

type Routers struct {
	log          *slog.Logger
	AuthService  AuthService
	PhotoService PhotoService
	cookieName   string
	secureCookie bool
	cookieMaxAge int
}

func NewRouter(log *slog.Logger, authService AuthService, photoService PhotoService, cookieName string, secureCookie bool, cookieMaxAge int) *Routers {
	return &Routers{
		log:          log,
		AuthService:  authService,
		PhotoService: photoService,
		cookieName:   cookieName,
		secureCookie: secureCookie,
		cookieMaxAge: cookieMaxAge,
	}
}

// SessionToken extracts the opaque token from the signed session cookie.
func (r *Routers) SessionToken(c echo.Context) string {
	sess, err := session.Get(r.cookieName, c)
	if err != nil {
		return ""
	}

	token, _ := sess.Values[SessionIDKey].(string)
	return token
}

// Gallery renders the public portfolio page. Photos are fetched by the page
// itself from the public API after mount.
func (r *Routers) Gallery(c echo.Context) error {
	return c.Render(http.StatusOK, "gallery.html", nil)
}

// LoginPage renders the credential form. The route guard redirects
// authenticated admins away before this handler runs.
func (r *Routers) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", map[string]interface{}{
		"Error": c.QueryParam("error"),
	})
}

// AdminPhotosPage renders the admin panel shell; the panel drives the
// guarded JSON API for data and mutations.
func (r *Routers) AdminPhotosPage(c echo.Context) error {
	return c.Render(http.StatusOK, "admin.html", nil)
}

// Login godoc
// @Summary Admin login
// @Description Validates admin credentials and establishes a session cookie.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce html
// @Param username formData string true "Admin username"
// @Param password formData string true "Admin password"
// @Success 303 "Redirect to /admin/photos"
// @Failure 303 "Redirect back to /admin/login with an error"
// @Router /admin/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/login?error=invalid")
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login form", sl.Err(err))
		return c.Redirect(http.StatusSeeOther, "/admin/login?error=invalid")
	}

	token, err := r.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			// Detail stays in the server log; the user sees a generic error.
			log.Error("login unavailable", sl.Err(err))
			return c.Redirect(http.StatusSeeOther, "/admin/login?error=server")
		}

		log.Warn("login failed", slog.String("username", req.Username))
		return c.Redirect(http.StatusSeeOther, "/admin/login?error=credentials")
	}

	if err := r.setSessionCookie(c, token); err != nil {
		log.Error("failed to persist session cookie", sl.Err(err))
		return c.Redirect(http.StatusSeeOther, "/admin/login?error=server")
	}

	return c.Redirect(http.StatusSeeOther, "/admin/photos")
}

// Logout godoc
// @Summary Admin logout
// @Description Revokes the server-side session and clears the cookie.
// @Tags auth
// @Success 303 "Redirect to /admin/login"
// @Router /admin/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	token := r.SessionToken(c)
	if err := r.AuthService.Logout(c.Request().Context(), token); err != nil {
		r.log.Warn("logout cleanup failed", slog.String("op", op), sl.Err(err))
	}

	r.clearSessionCookie(c)

	return c.Redirect(http.StatusSeeOther, "/admin/login")
}

// ListPublicPhotos godoc
// @Summary Public gallery listing
// @Description Photos ordered by display_order, ties broken by newest first. Records without a valid http(s) src are filtered out.
// @Tags photos
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Photo}
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/photos [get]
func (r *Routers) ListPublicPhotos(c echo.Context) error {
	const op = "http.routers.ListPublicPhotos"

	photos, err := r.PhotoService.ListPhotos(c.Request().Context(), photoservice.ScopePublic)
	if err != nil {
		r.log.Error("failed to list public photos", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(photos))
}

// ListAdminPhotos godoc
// @Summary Admin photo listing
// @Description Full listing, including records hidden from the gallery.
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=[]models.Photo}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security AdminSession
// @Router /api/v1/admin/photos [get]
func (r *Routers) ListAdminPhotos(c echo.Context) error {
	const op = "http.routers.ListAdminPhotos"

	photos, err := r.PhotoService.ListPhotos(c.Request().Context(), photoservice.ScopeAdmin)
	if err != nil {
		r.log.Error("failed to list photos", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(photos))
}

// UploadPhoto godoc
// @Summary Upload a photo
// @Description Stores the image in the bucket and creates the metadata record. display_order defaults to max+1.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file (max 10MB)"
// @Param alt formData string false "Accessibility label"
// @Param description formData string false "Hover description"
// @Param display_order formData integer false "Explicit display order"
// @Success 201 {object} response.Response{data=models.Photo}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security AdminSession
// @Router /api/v1/admin/photos [post]
func (r *Routers) UploadPhoto(c echo.Context) error {
	const op = "http.routers.UploadPhoto"

	log := r.log.With(slog.String("op", op))

	input := dto.PhotoUploadInput{
		Alt:         c.FormValue("alt"),
		Description: c.FormValue("description"),
	}

	if file, err := c.FormFile("file"); err == nil {
		input.File = file
	}

	if orderStr := c.FormValue("display_order"); orderStr != "" {
		order, err := strconv.Atoi(orderStr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(map[string][]string{
				"display_order": {"display_order must be an integer"},
			}))
		}
		input.DisplayOrder = &order
	}

	photo, err := r.PhotoService.UploadPhoto(c.Request().Context(), input)
	if err != nil {
		return r.photoError(c, log, err)
	}

	log.Info("photo uploaded", slog.String("photo_id", photo.ID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(photo))
}

// UpdatePhoto godoc
// @Summary Update photo metadata
// @Description Partial update of alt, description and display_order. src is immutable.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Photo UUID" format(uuid)
// @Param request body dto.PhotoUpdateInput true "Fields to update"
// @Success 200 {object} response.Response{data=models.Photo}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security AdminSession
// @Router /api/v1/admin/photos/{id} [patch]
func (r *Routers) UpdatePhoto(c echo.Context) error {
	const op = "http.routers.UpdatePhoto"

	log := r.log.With(slog.String("op", op))

	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(map[string][]string{
			"id": {"invalid photo ID format"},
		}))
	}

	var input dto.PhotoUpdateInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	input.ID = photoID

	if err := c.Validate(input); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	photo, err := r.PhotoService.UpdatePhoto(c.Request().Context(), input)
	if err != nil {
		return r.photoError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(photo))
}

// DeletePhoto godoc
// @Summary Delete a photo
// @Description Removes the storage object (best-effort) and the metadata row.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Photo UUID" format(uuid)
// @Param request body dto.PhotoDeleteInput true "src the record was served with"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security AdminSession
// @Router /api/v1/admin/photos/{id} [delete]
func (r *Routers) DeletePhoto(c echo.Context) error {
	const op = "http.routers.DeletePhoto"

	log := r.log.With(slog.String("op", op))

	photoID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(map[string][]string{
			"id": {"invalid photo ID format"},
		}))
	}

	var input dto.PhotoDeleteInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(input); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_failed", err.Error()))
	}

	if err := r.PhotoService.DeletePhoto(c.Request().Context(), photoID, input.Src); err != nil {
		return r.photoError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.Response{
		Status:  "success",
		Message: "Photo deleted",
	})
}

// photoError maps service failures onto the response taxonomy: field-level
// validation errors, not-found, and generic backend failures. Backend detail
// is logged, never returned.
func (r *Routers) photoError(c echo.Context, log *slog.Logger, err error) error {
	var ve *models.PhotoValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(ve.Fields))
	}

	if errors.Is(err, storage.ErrPhotoNotFound) {
		return c.JSON(http.StatusNotFound, response.ErrPhotoNotFound)
	}

	log.Error("operation failed", sl.Err(err))

	return c.JSON(http.StatusInternalServerError, response.ErrInternal)
}

func (r *Routers) setSessionCookie(c echo.Context, token string) error {
	sess, err := session.Get(r.cookieName, c)
	if err != nil {
		return err
	}

	sess.Options.HttpOnly = true
	sess.Options.Secure = r.secureCookie
	sess.Options.SameSite = http.SameSiteLaxMode
	sess.Options.MaxAge = r.cookieMaxAge
	sess.Options.Path = "/"

	sess.Values[SessionIDKey] = token

	return sess.Save(c.Request(), c.Response())
}

func (r *Routers) clearSessionCookie(c echo.Context) {
	sess, err := session.Get(r.cookieName, c)
	if err != nil {
		return
	}

	sess.Options.MaxAge = -1
	sess.Values = map[interface{}]interface{}{}

	_ = sess.Save(c.Request(), c.Response())
}
